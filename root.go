package nbt

import (
	"strconv"
	"strings"
)

// Root is a top-level tag together with its name, as framed on the wire.
// The name is often empty.
type Root struct {
	tag  Tag
	name string
}

// NewRoot pairs t with name. It panics if t is nil.
func NewRoot(t Tag, name string) Root {
	if t == nil {
		panic("nbt: nil root tag")
	}
	return Root{tag: t, name: name}
}

func (r Root) Tag() Tag { return r.tag }

func (r Root) Name() string { return r.name }

// Compound returns the root tag as a compound, which is what nearly all
// NBT documents hold, or a *TypeMismatchError.
func (r Root) Compound() (*Compound, error) {
	c, ok := r.tag.(*Compound)
	if !ok {
		got := TypeEnd
		if r.tag != nil {
			got = r.tag.Type()
		}
		return nil, &TypeMismatchError{Want: TypeCompound, Got: got, Msg: "root tag"}
	}
	return c, nil
}

// Equal reports whether both roots have the same name and equal tags.
func (r Root) Equal(other Root) bool {
	return r.name == other.name && Equal(r.tag, other.tag)
}

func (r Root) String() string {
	var sb strings.Builder
	sb.WriteString("ROOT ")
	sb.WriteString(strconv.Quote(r.name))
	sb.WriteString(" ")
	if r.tag == nil {
		sb.WriteString("<empty>")
	} else {
		r.tag.stringify(&sb, 0, visitSet{})
	}
	return sb.String()
}
