package nbt

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestTagType(t *testing.T) {
	tests := []struct {
		typ   TagType
		name  string
		valid bool
	}{
		{TypeEnd, "End", false},
		{TypeByte, "Byte", true},
		{TypeShort, "Short", true},
		{TypeInt, "Int", true},
		{TypeLong, "Long", true},
		{TypeFloat, "Float", true},
		{TypeDouble, "Double", true},
		{TypeByteArray, "ByteArray", true},
		{TypeString, "String", true},
		{TypeList, "List", true},
		{TypeCompound, "Compound", true},
		{TypeIntArray, "IntArray", true},
		{12, "TagType(12)", false},
		{255, "TagType(255)", false},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.name {
			t.Errorf("TagType(%d).String() = %q, wanted %q", uint8(tt.typ), got, tt.name)
		}
		if got := tt.typ.Valid(); got != tt.valid {
			t.Errorf("TagType(%d).Valid() = %v, wanted %v", uint8(tt.typ), got, tt.valid)
		}
	}
}

func TestNewInteger_Range(t *testing.T) {
	tests := []struct {
		name string
		f    func(int64) error
		min  int64
		max  int64
	}{
		{"Byte", func(v int64) error { _, err := NewByte(v); return err }, math.MinInt8, math.MaxInt8},
		{"Short", func(v int64) error { _, err := NewShort(v); return err }, math.MinInt16, math.MaxInt16},
		{"Int", func(v int64) error { _, err := NewInt(v); return err }, math.MinInt32, math.MaxInt32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range []int64{tt.min, tt.max, 0, -1} {
				if err := tt.f(v); err != nil {
					t.Errorf("New%s(%d) = %v, wanted nil", tt.name, v, err)
				}
			}
			for _, v := range []int64{tt.min - 1, tt.max + 1, math.MinInt64, math.MaxInt64} {
				if err := tt.f(v); !errors.Is(err, ErrValueRange) {
					t.Errorf("New%s(%d) = %v, wanted ErrValueRange", tt.name, v, err)
				}
			}
		})
	}

	if v := must(NewByte(-128)); v != Byte(-128) {
		t.Fatalf("NewByte(-128) = %d, wanted -128", v)
	}
}

func TestNewFloat_Truncates(t *testing.T) {
	f := NewFloat(0.3)
	if float32(f) != float32(0.3) {
		t.Fatalf("NewFloat(0.3) = %v, wanted %v", float32(f), float32(0.3))
	}
	if float64(f) == 0.3 {
		t.Fatalf("NewFloat(0.3) kept double precision")
	}
}

func TestNewString_Length(t *testing.T) {
	if _, err := NewString(strings.Repeat("x", MaxStringLen)); err != nil {
		t.Fatalf("NewString(32767 bytes) = %v, wanted nil", err)
	}
	if _, err := NewString(strings.Repeat("x", MaxStringLen+1)); !errors.Is(err, ErrValueRange) {
		t.Fatalf("NewString(32768 bytes) = %v, wanted ErrValueRange", err)
	}
	// length is in bytes, not characters
	if _, err := NewString(strings.Repeat("é", MaxStringLen/2+1)); !errors.Is(err, ErrValueRange) {
		t.Fatalf("NewString(16384 two-byte runes) = %v, wanted ErrValueRange", err)
	}
}

func TestTag_String(t *testing.T) {
	tests := []struct {
		tag  Tag
		want string
	}{
		{Byte(-1), "TAG_Byte=-1"},
		{Short(300), "TAG_Short=300"},
		{Int(1), "TAG_Int=1"},
		{Long(-1 << 40), "TAG_Long=-1099511627776"},
		{Float(0.5), "TAG_Float=0.5"},
		{Double(0.1), "TAG_Double=0.1"},
		{ByteArray{1, 0xff}, "TAG_ByteArray=(2) 01ff"},
		{String("a\"b"), `TAG_String="a\"b"`},
		{IntArray{1, -2}, "TAG_IntArray=[1,-2]"},
		{NewList(TypeEnd), "TAG_List<End>=[]"},
		{NewCompound(), "TAG_Compound={}"},
		{must(ListOf(Int(1), Int(2))), "TAG_List<Int>=[\n  TAG_Int=1\n  TAG_Int=2\n]"},
	}
	for _, tt := range tests {
		if got := tt.tag.String(); got != tt.want {
			t.Errorf("String() = %q, wanted %q", got, tt.want)
		}
	}

	c := NewCompound()
	c.SetInt("a", 1)
	sub := NewCompound()
	ensure(sub.SetString("b", "x"))
	c.Set("sub", sub)
	want := "TAG_Compound={\n  \"a\" => TAG_Int=1\n  \"sub\" => TAG_Compound={\n    \"b\" => TAG_String=\"x\"\n  }\n}"
	if got := c.String(); got != want {
		t.Fatalf("String() = %q, wanted %q", got, want)
	}

	sub.Set("self", c)
	if got := c.String(); !strings.Contains(got, "<cycle>") {
		t.Fatalf("String() of cyclic tree = %q, wanted <cycle> marker", got)
	}
}
