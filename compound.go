package nbt

import (
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"
)

// Compound is an insertion-ordered mapping of unique names to tags.
type Compound struct {
	keys []string
	vals map[string]Tag
}

func NewCompound() *Compound {
	return &Compound{vals: make(map[string]Tag)}
}

func (c *Compound) Type() TagType { return TypeCompound }

func (c *Compound) Len() int { return len(c.keys) }

// Keys returns the names in insertion order.
func (c *Compound) Keys() []string { return slices.Clone(c.keys) }

// Get returns the tag stored under name, or nil.
func (c *Compound) Get(name string) Tag { return c.vals[name] }

func (c *Compound) Has(name string) bool {
	_, ok := c.vals[name]
	return ok
}

// Set stores t under name. An existing entry keeps its position.
func (c *Compound) Set(name string, t Tag) {
	if t == nil {
		panic("nbt: nil tag")
	}
	if c.vals == nil {
		c.vals = make(map[string]Tag)
	}
	if _, ok := c.vals[name]; !ok {
		c.keys = append(c.keys, name)
	}
	c.vals[name] = t
}

// Remove deletes the given names; missing names are ignored.
func (c *Compound) Remove(names ...string) {
	for _, name := range names {
		if _, ok := c.vals[name]; !ok {
			continue
		}
		delete(c.vals, name)
		if i := slices.Index(c.keys, name); i >= 0 {
			c.keys = slices.Delete(c.keys, i, i+1)
		}
	}
}

// All iterates over entries in insertion order.
func (c *Compound) All() iter.Seq2[string, Tag] {
	return func(yield func(string, Tag) bool) {
		for _, k := range c.keys {
			if !yield(k, c.vals[k]) {
				return
			}
		}
	}
}

// Clone returns a deep copy of c.
func (c *Compound) Clone() (*Compound, error) {
	cl := cloner{visitSet{}}
	return cl.cloneCompound(c)
}

// Merge returns a new compound holding a deep copy of c overlaid with a
// deep copy of other's entries. Entries of other win on collision. Neither
// input is modified.
func (c *Compound) Merge(other *Compound) (*Compound, error) {
	cl := cloner{visitSet{}}
	result, err := cl.cloneCompound(c)
	if err != nil {
		return nil, err
	}
	for _, k := range other.keys {
		v, err := cl.clone(other.vals[k])
		if err != nil {
			return nil, err
		}
		result.Set(k, v)
	}
	return result, nil
}

func (c *Compound) String() string { return tagString(c) }

func getAs[T Tag](c *Compound, name string, want TagType) (T, error) {
	var zero T
	t, ok := c.vals[name]
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	v, ok := t.(T)
	if !ok {
		return zero, &TypeMismatchError{Want: want, Got: t.Type(), Msg: "tag " + strconv.Quote(name)}
	}
	return v, nil
}

func (c *Compound) GetByte(name string) (int8, error) {
	v, err := getAs[Byte](c, name, TypeByte)
	return int8(v), err
}

func (c *Compound) GetShort(name string) (int16, error) {
	v, err := getAs[Short](c, name, TypeShort)
	return int16(v), err
}

func (c *Compound) GetInt(name string) (int32, error) {
	v, err := getAs[Int](c, name, TypeInt)
	return int32(v), err
}

func (c *Compound) GetLong(name string) (int64, error) {
	v, err := getAs[Long](c, name, TypeLong)
	return int64(v), err
}

func (c *Compound) GetFloat(name string) (float32, error) {
	v, err := getAs[Float](c, name, TypeFloat)
	return float32(v), err
}

func (c *Compound) GetDouble(name string) (float64, error) {
	v, err := getAs[Double](c, name, TypeDouble)
	return float64(v), err
}

func (c *Compound) GetByteArray(name string) ([]byte, error) {
	v, err := getAs[ByteArray](c, name, TypeByteArray)
	return []byte(v), err
}

func (c *Compound) GetString(name string) (string, error) {
	v, err := getAs[String](c, name, TypeString)
	return string(v), err
}

func (c *Compound) GetIntArray(name string) ([]int32, error) {
	v, err := getAs[IntArray](c, name, TypeIntArray)
	return []int32(v), err
}

func (c *Compound) GetList(name string) (*List, error) {
	return getAs[*List](c, name, TypeList)
}

func (c *Compound) GetCompound(name string) (*Compound, error) {
	return getAs[*Compound](c, name, TypeCompound)
}

func (c *Compound) SetByte(name string, v int8)      { c.Set(name, Byte(v)) }
func (c *Compound) SetShort(name string, v int16)    { c.Set(name, Short(v)) }
func (c *Compound) SetInt(name string, v int32)      { c.Set(name, Int(v)) }
func (c *Compound) SetLong(name string, v int64)     { c.Set(name, Long(v)) }
func (c *Compound) SetFloat(name string, v float32)  { c.Set(name, Float(v)) }
func (c *Compound) SetDouble(name string, v float64) { c.Set(name, Double(v)) }

func (c *Compound) SetByteArray(name string, v []byte) error {
	t, err := NewByteArray(v)
	if err != nil {
		return err
	}
	c.Set(name, t)
	return nil
}

func (c *Compound) SetString(name string, v string) error {
	t, err := NewString(v)
	if err != nil {
		return err
	}
	c.Set(name, t)
	return nil
}

func (c *Compound) SetIntArray(name string, v []int32) error {
	t, err := NewIntArray(v)
	if err != nil {
		return err
	}
	c.Set(name, t)
	return nil
}

func (c *Compound) stringify(sb *strings.Builder, indent int, vs visitSet) {
	sb.WriteString("TAG_Compound=")
	if !vs.enter(c) {
		sb.WriteString("<cycle>")
		return
	}
	defer vs.leave(c)
	if len(c.keys) == 0 {
		sb.WriteString("{}")
		return
	}
	sb.WriteString("{\n")
	for _, k := range c.keys {
		writeIndent(sb, indent+1)
		sb.WriteString(strconv.Quote(k))
		sb.WriteString(" => ")
		c.vals[k].stringify(sb, indent+1, vs)
		sb.WriteByte('\n')
	}
	writeIndent(sb, indent)
	sb.WriteByte('}')
}
