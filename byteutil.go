package nbt

import (
	"encoding/binary"
	"io"
	"math"
)

type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

func ensureCapacity(buf []byte, minCap int) []byte {
	c := cap(buf)
	if minCap > c {
		if c < 16 {
			c = 16
		}
		for minCap > c {
			c <<= 1
		}
		old := buf
		buf = make([]byte, len(old), c)
		copy(buf, old)
	}
	return buf
}

// Writer appends wire primitives to a buffer in one byte order.
type Writer struct {
	buf   []byte
	order byteOrder
}

// NewWriter returns a Writer appending to buf.
func (f Format) NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf, order: f.order}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) EnsureExtra(n int) {
	w.buf = ensureCapacity(w.buf, len(w.buf)+n)
}

func (w *Writer) WriteByte(v byte) error {
	w.buf = append(w.buf, v)
	return nil
}

func (w *Writer) WriteShort(v int16) {
	w.buf = w.order.AppendUint16(w.buf, uint16(v))
}

func (w *Writer) WriteInt(v int32) {
	w.buf = w.order.AppendUint32(w.buf, uint32(v))
}

func (w *Writer) WriteLong(v int64) {
	w.buf = w.order.AppendUint64(w.buf, uint64(v))
}

func (w *Writer) WriteFloat(v float32) {
	w.buf = w.order.AppendUint32(w.buf, math.Float32bits(v))
}

func (w *Writer) WriteDouble(v float64) {
	w.buf = w.order.AppendUint64(w.buf, math.Float64bits(v))
}

// WriteByteArray writes a signed 32-bit length followed by the raw bytes.
func (w *Writer) WriteByteArray(v []byte) error {
	if err := checkArrayLen("ByteArray", len(v)); err != nil {
		return err
	}
	w.EnsureExtra(4 + len(v))
	w.WriteInt(int32(len(v)))
	w.buf = append(w.buf, v...)
	return nil
}

// WriteString writes an unsigned 16-bit byte length followed by the bytes
// of v, failing with ErrValueRange if v is longer than MaxStringLen.
func (w *Writer) WriteString(v string) error {
	if err := checkStringLen(len(v)); err != nil {
		return err
	}
	w.EnsureExtra(2 + len(v))
	w.buf = w.order.AppendUint16(w.buf, uint16(len(v)))
	w.buf = append(w.buf, v...)
	return nil
}

// WriteIntArray writes a signed 32-bit count followed by the values.
func (w *Writer) WriteIntArray(v []int32) error {
	if err := checkArrayLen("IntArray", len(v)); err != nil {
		return err
	}
	w.EnsureExtra(4 + 4*len(v))
	w.WriteInt(int32(len(v)))
	for _, x := range v {
		w.buf = w.order.AppendUint32(w.buf, uint32(x))
	}
	return nil
}

// Reader decodes wire primitives from a buffer in one byte order. Every
// failure is a *DataError carrying the offset.
type Reader struct {
	orig  []byte
	buf   []byte
	order binary.ByteOrder
}

// NewReader returns a Reader positioned at the start of data.
func (f Format) NewReader(data []byte) *Reader {
	return &Reader{orig: data, buf: data, order: f.order}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return len(r.orig) - len(r.buf)
}

func (r *Reader) Remaining() int {
	return len(r.buf)
}

func (r *Reader) errf(err error, format string, args ...any) error {
	return dataErrf(r.orig, r.Offset(), err, format, args...)
}

func (r *Reader) raw(n int) ([]byte, error) {
	if len(r.buf) < n {
		return nil, r.errf(io.ErrUnexpectedEOF, "not enough data: %d bytes remaining, %d wanted", len(r.buf), n)
	}
	v := r.buf[:n]
	r.buf = r.buf[n:]
	return v, nil
}

func (r *Reader) ReadByte() (byte, error) {
	b, err := r.raw(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadSignedByte() (int8, error) {
	b, err := r.ReadByte()
	return int8(b), err
}

// ReadShort reads an unsigned 16-bit integer.
func (r *Reader) ReadShort() (uint16, error) {
	b, err := r.raw(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

func (r *Reader) ReadSignedShort() (int16, error) {
	v, err := r.ReadShort()
	return int16(v), err
}

func (r *Reader) ReadInt() (int32, error) {
	b, err := r.raw(4)
	if err != nil {
		return 0, err
	}
	return int32(r.order.Uint32(b)), nil
}

func (r *Reader) ReadLong() (int64, error) {
	b, err := r.raw(8)
	if err != nil {
		return 0, err
	}
	return int64(r.order.Uint64(b)), nil
}

func (r *Reader) ReadFloat() (float32, error) {
	b, err := r.raw(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(r.order.Uint32(b)), nil
}

func (r *Reader) ReadDouble() (float64, error) {
	b, err := r.raw(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(r.order.Uint64(b)), nil
}

// readLength reads a signed 32-bit length prefix, rejecting negative values.
func (r *Reader) readLength(what string) (int, error) {
	off := r.Offset()
	n, err := r.ReadInt()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, dataErrf(r.orig, off, nil, "%s length cannot be less than zero (%d < 0)", what, n)
	}
	return int(n), nil
}

// ReadByteArray reads a signed 32-bit length and that many bytes. The
// result does not alias the input buffer.
func (r *Reader) ReadByteArray() ([]byte, error) {
	n, err := r.readLength("ByteArray")
	if err != nil {
		return nil, err
	}
	b, err := r.raw(n)
	if err != nil {
		return nil, err
	}
	v := make([]byte, n)
	copy(v, b)
	return v, nil
}

// ReadString reads an unsigned 16-bit length and that many bytes, failing
// if the length exceeds MaxStringLen.
func (r *Reader) ReadString() (string, error) {
	off := r.Offset()
	n, err := r.ReadShort()
	if err != nil {
		return "", err
	}
	if int(n) > MaxStringLen {
		return "", dataErrf(r.orig, off, ErrValueRange, "string length too large (%d > %d)", n, MaxStringLen)
	}
	b, err := r.raw(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadIntArray reads a signed 32-bit count followed by that many 32-bit
// integers.
func (r *Reader) ReadIntArray() ([]int32, error) {
	n, err := r.readLength("IntArray")
	if err != nil {
		return nil, err
	}
	if n > len(r.buf)/4 {
		return nil, r.errf(io.ErrUnexpectedEOF, "not enough data: %d bytes remaining, IntArray of %d wanted", len(r.buf), n)
	}
	b, _ := r.raw(n * 4)
	v := make([]int32, n)
	for i := range v {
		v[i] = int32(r.order.Uint32(b[i*4:]))
	}
	return v, nil
}
