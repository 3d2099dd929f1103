package nbt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TagType is the wire type id of a tag.
type TagType uint8

const (
	TypeEnd TagType = iota
	TypeByte
	TypeShort
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeByteArray
	TypeString
	TypeList
	TypeCompound
	TypeIntArray
)

const (
	// MaxStringLen is the maximum encoded byte length of a String tag or a
	// tag name.
	MaxStringLen = math.MaxInt16

	// MaxArrayLen is the maximum element count of a ByteArray, IntArray or
	// List.
	MaxArrayLen = math.MaxInt32
)

func (t TagType) String() string {
	switch t {
	case TypeEnd:
		return "End"
	case TypeByte:
		return "Byte"
	case TypeShort:
		return "Short"
	case TypeInt:
		return "Int"
	case TypeLong:
		return "Long"
	case TypeFloat:
		return "Float"
	case TypeDouble:
		return "Double"
	case TypeByteArray:
		return "ByteArray"
	case TypeString:
		return "String"
	case TypeList:
		return "List"
	case TypeCompound:
		return "Compound"
	case TypeIntArray:
		return "IntArray"
	default:
		return fmt.Sprintf("TagType(%d)", uint8(t))
	}
}

// Valid reports whether t names a value-carrying tag type. End is not
// valid: it only terminates compounds and marks untyped empty lists.
func (t TagType) Valid() bool {
	return t > TypeEnd && t <= TypeIntArray
}

// Tag is one node of a tag tree. The set of implementations is closed:
// Byte, Short, Int, Long, Float, Double, ByteArray, String, *List,
// *Compound and IntArray.
type Tag interface {
	Type() TagType
	String() string

	stringify(sb *strings.Builder, indent int, vs visitSet)
}

type (
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []byte
	String    string
	IntArray  []int32
)

// NewByte returns a Byte tag, failing with ErrValueRange if v does not fit
// into a signed 8-bit integer.
func NewByte(v int64) (Byte, error) {
	if v < math.MinInt8 || v > math.MaxInt8 {
		return 0, rangeErrf("Byte value %d outside %d..%d", v, math.MinInt8, math.MaxInt8)
	}
	return Byte(v), nil
}

// NewShort returns a Short tag, failing with ErrValueRange if v does not
// fit into a signed 16-bit integer.
func NewShort(v int64) (Short, error) {
	if v < math.MinInt16 || v > math.MaxInt16 {
		return 0, rangeErrf("Short value %d outside %d..%d", v, math.MinInt16, math.MaxInt16)
	}
	return Short(v), nil
}

// NewInt returns an Int tag, failing with ErrValueRange if v does not fit
// into a signed 32-bit integer.
func NewInt(v int64) (Int, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, rangeErrf("Int value %d outside %d..%d", v, math.MinInt32, math.MaxInt32)
	}
	return Int(v), nil
}

// NewFloat returns a Float tag holding v rounded to single precision.
func NewFloat(v float64) Float {
	return Float(float32(v))
}

func NewByteArray(v []byte) (ByteArray, error) {
	if err := checkArrayLen("ByteArray", len(v)); err != nil {
		return nil, err
	}
	return ByteArray(v), nil
}

func NewString(v string) (String, error) {
	if err := checkStringLen(len(v)); err != nil {
		return "", err
	}
	return String(v), nil
}

func NewIntArray(v []int32) (IntArray, error) {
	if err := checkArrayLen("IntArray", len(v)); err != nil {
		return nil, err
	}
	return IntArray(v), nil
}

func checkStringLen(n int) error {
	if n > MaxStringLen {
		return rangeErrf("string length too large (%d > %d)", n, MaxStringLen)
	}
	return nil
}

func checkArrayLen(what string, n int) error {
	if int64(n) > MaxArrayLen {
		return rangeErrf("%s length too large (%d > %d)", what, n, int64(MaxArrayLen))
	}
	return nil
}

func (Byte) Type() TagType      { return TypeByte }
func (Short) Type() TagType     { return TypeShort }
func (Int) Type() TagType       { return TypeInt }
func (Long) Type() TagType      { return TypeLong }
func (Float) Type() TagType     { return TypeFloat }
func (Double) Type() TagType    { return TypeDouble }
func (ByteArray) Type() TagType { return TypeByteArray }
func (String) Type() TagType    { return TypeString }
func (IntArray) Type() TagType  { return TypeIntArray }

func (v Byte) String() string      { return tagString(v) }
func (v Short) String() string     { return tagString(v) }
func (v Int) String() string       { return tagString(v) }
func (v Long) String() string      { return tagString(v) }
func (v Float) String() string     { return tagString(v) }
func (v Double) String() string    { return tagString(v) }
func (v ByteArray) String() string { return tagString(v) }
func (v String) String() string    { return tagString(v) }
func (v IntArray) String() string  { return tagString(v) }

func (v Byte) stringify(sb *strings.Builder, _ int, _ visitSet) {
	writeTagPrefix(sb, v)
	sb.WriteString(strconv.FormatInt(int64(v), 10))
}

func (v Short) stringify(sb *strings.Builder, _ int, _ visitSet) {
	writeTagPrefix(sb, v)
	sb.WriteString(strconv.FormatInt(int64(v), 10))
}

func (v Int) stringify(sb *strings.Builder, _ int, _ visitSet) {
	writeTagPrefix(sb, v)
	sb.WriteString(strconv.FormatInt(int64(v), 10))
}

func (v Long) stringify(sb *strings.Builder, _ int, _ visitSet) {
	writeTagPrefix(sb, v)
	sb.WriteString(strconv.FormatInt(int64(v), 10))
}

func (v Float) stringify(sb *strings.Builder, _ int, _ visitSet) {
	writeTagPrefix(sb, v)
	sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
}

func (v Double) stringify(sb *strings.Builder, _ int, _ visitSet) {
	writeTagPrefix(sb, v)
	sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 64))
}

func (v ByteArray) stringify(sb *strings.Builder, _ int, _ visitSet) {
	writeTagPrefix(sb, v)
	fmt.Fprintf(sb, "(%d) %x", len(v), []byte(v))
}

func (v String) stringify(sb *strings.Builder, _ int, _ visitSet) {
	writeTagPrefix(sb, v)
	sb.WriteString(strconv.Quote(string(v)))
}

func (v IntArray) stringify(sb *strings.Builder, _ int, _ visitSet) {
	writeTagPrefix(sb, v)
	sb.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(int64(x), 10))
	}
	sb.WriteByte(']')
}

const indentStep = "  "

func tagString(t Tag) string {
	var sb strings.Builder
	t.stringify(&sb, 0, visitSet{})
	return sb.String()
}

func writeTagPrefix(sb *strings.Builder, t Tag) {
	sb.WriteString("TAG_")
	sb.WriteString(t.Type().String())
	sb.WriteByte('=')
}

func writeIndent(sb *strings.Builder, indent int) {
	for range indent {
		sb.WriteString(indentStep)
	}
}
