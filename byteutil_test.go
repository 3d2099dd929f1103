package nbt

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriter_Primitives(t *testing.T) {
	tests := []struct {
		f    Format
		want string
	}{
		{BigEndian, "ff 1234 00000001 0102030405060708 3f800000 3ff0000000000000 0003 616263 00000002 0102 00000001 fffffffe"},
		{LittleEndian, "ff 3412 01000000 0807060504030201 0000803f 000000000000f03f 0300 616263 02000000 0102 01000000 feffffff"},
	}
	for _, tt := range tests {
		t.Run(tt.f.String(), func(t *testing.T) {
			w := tt.f.NewWriter(nil)
			_ = w.WriteByte(0xff)
			w.WriteShort(0x1234)
			w.WriteInt(1)
			w.WriteLong(0x0102030405060708)
			w.WriteFloat(1)
			w.WriteDouble(1)
			ensure(w.WriteString("abc"))
			ensure(w.WriteByteArray([]byte{1, 2}))
			ensure(w.WriteIntArray([]int32{-2}))

			if diff := cmp.Diff(hexData(tt.want), w.Bytes()); diff != "" {
				t.Fatalf("Bytes() mismatch (-want +got):\n%s", diff)
			}
			if w.Len() != len(w.Bytes()) {
				t.Fatalf("Len() = %d, wanted %d", w.Len(), len(w.Bytes()))
			}
		})
	}
}

func TestReader_Primitives(t *testing.T) {
	for _, f := range []Format{BigEndian, LittleEndian} {
		t.Run(f.String(), func(t *testing.T) {
			w := f.NewWriter(nil)
			_ = w.WriteByte(0x80)
			w.WriteShort(-2)
			w.WriteInt(math.MinInt32)
			w.WriteLong(math.MaxInt64)
			w.WriteFloat(0.3)
			w.WriteDouble(-0.1)
			ensure(w.WriteString("héllo"))
			ensure(w.WriteByteArray([]byte{9, 8, 7}))
			ensure(w.WriteIntArray([]int32{1, math.MaxInt32}))

			r := f.NewReader(w.Bytes())
			if v := must(r.ReadSignedByte()); v != -128 {
				t.Errorf("ReadSignedByte = %d, wanted -128", v)
			}
			if v := must(r.ReadSignedShort()); v != -2 {
				t.Errorf("ReadSignedShort = %d, wanted -2", v)
			}
			if v := must(r.ReadInt()); v != math.MinInt32 {
				t.Errorf("ReadInt = %d, wanted MinInt32", v)
			}
			if v := must(r.ReadLong()); v != math.MaxInt64 {
				t.Errorf("ReadLong = %d, wanted MaxInt64", v)
			}
			if v := must(r.ReadFloat()); v != 0.3 {
				t.Errorf("ReadFloat = %v, wanted 0.3", v)
			}
			if v := must(r.ReadDouble()); v != -0.1 {
				t.Errorf("ReadDouble = %v, wanted -0.1", v)
			}
			if v := must(r.ReadString()); v != "héllo" {
				t.Errorf("ReadString = %q, wanted héllo", v)
			}
			if diff := cmp.Diff([]byte{9, 8, 7}, must(r.ReadByteArray())); diff != "" {
				t.Errorf("ReadByteArray mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]int32{1, math.MaxInt32}, must(r.ReadIntArray())); diff != "" {
				t.Errorf("ReadIntArray mismatch (-want +got):\n%s", diff)
			}
			if r.Remaining() != 0 || r.Offset() != len(w.Bytes()) {
				t.Fatalf("Remaining() = %d, Offset() = %d, wanted 0, %d", r.Remaining(), r.Offset(), len(w.Bytes()))
			}
		})
	}
}

func TestReader_ByteArrayDoesNotAlias(t *testing.T) {
	data := hexData("00000002 0102")
	v := must(BigEndian.NewReader(data).ReadByteArray())
	data[4] = 0xff
	if v[0] != 1 {
		t.Fatalf("ReadByteArray aliases its input")
	}
}

func TestReader_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		read func(r *Reader) error
		kind error
		off  int
	}{
		{"truncated int", "0001", func(r *Reader) error { _, err := r.ReadInt(); return err }, io.ErrUnexpectedEOF, 0},
		{"truncated string", "0005 6162", func(r *Reader) error { _, err := r.ReadString(); return err }, io.ErrUnexpectedEOF, 2},
		{"string too long", "8000", func(r *Reader) error { _, err := r.ReadString(); return err }, ErrValueRange, 0},
		{"negative byte array", "ffffffff", func(r *Reader) error { _, err := r.ReadByteArray(); return err }, nil, 0},
		{"negative int array", "80000000", func(r *Reader) error { _, err := r.ReadIntArray(); return err }, nil, 0},
		{"huge int array", "7fffffff 00000001", func(r *Reader) error { _, err := r.ReadIntArray(); return err }, io.ErrUnexpectedEOF, 4},
		{"truncated byte array", "00000003 01", func(r *Reader) error { _, err := r.ReadByteArray(); return err }, io.ErrUnexpectedEOF, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(BigEndian.NewReader(hexData(tt.data)))
			var de *DataError
			if !errors.As(err, &de) {
				t.Fatalf("err = %v, wanted *DataError", err)
			}
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("errors.Is(err, ErrDecode) = false")
			}
			if tt.kind != nil && !errors.Is(err, tt.kind) {
				t.Fatalf("err = %v, wanted %v", err, tt.kind)
			}
			if de.Off != tt.off {
				t.Fatalf("de.Off = %d, wanted %d", de.Off, tt.off)
			}
		})
	}
}

func TestWriter_StringBound(t *testing.T) {
	w := BigEndian.NewWriter(nil)
	if err := w.WriteString(strings.Repeat("x", MaxStringLen)); err != nil {
		t.Fatalf("WriteString(32767 bytes) = %v, wanted nil", err)
	}
	n := w.Len()
	if err := w.WriteString(strings.Repeat("x", MaxStringLen+1)); !errors.Is(err, ErrValueRange) {
		t.Fatalf("WriteString(32768 bytes) = %v, wanted ErrValueRange", err)
	}
	if w.Len() != n {
		t.Fatalf("failed WriteString wrote %d bytes", w.Len()-n)
	}
}

func TestEnsureCapacity(t *testing.T) {
	buf := ensureCapacity([]byte{1, 2}, 100)
	if cap(buf) < 100 || len(buf) != 2 || buf[1] != 2 {
		t.Fatalf("ensureCapacity = len %d cap %d, wanted len 2 cap >= 100", len(buf), cap(buf))
	}
	same := ensureCapacity(buf, 10)
	if &same[0] != &buf[0] {
		t.Fatalf("ensureCapacity reallocated a large enough buffer")
	}
}
