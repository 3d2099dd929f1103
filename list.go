package nbt

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// List is an ordered sequence of tags that all share one element type.
//
// An empty list may have element type End, meaning "not yet decided"; the
// first inserted tag then fixes the type. Once a list is non-empty its
// element type can no longer change.
type List struct {
	elemType TagType
	items    []Tag
}

// NewList returns an empty list with the given element type. Pass TypeEnd
// to let the first inserted tag decide.
func NewList(elemType TagType) *List {
	return &List{elemType: elemType}
}

// ListOf returns a list holding tags, which must all be of the same type.
func ListOf(tags ...Tag) (*List, error) {
	l := &List{items: make([]Tag, 0, len(tags))}
	for _, t := range tags {
		if err := l.Push(t); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *List) Type() TagType { return TypeList }

// ElemType returns the element type, or TypeEnd for an untyped empty list.
func (l *List) ElemType() TagType { return l.elemType }

// SetElemType changes the element type of an empty list.
func (l *List) SetElemType(t TagType) error {
	if len(l.items) != 0 {
		return &TypeMismatchError{Want: l.elemType, Got: t, Msg: "cannot change element type of non-empty list"}
	}
	if t != TypeEnd && !t.Valid() {
		return fmt.Errorf("nbt: invalid list element type %d", uint8(t))
	}
	l.elemType = t
	return nil
}

func (l *List) Len() int { return len(l.items) }

// Get returns the i-th element. It panics if i is out of range.
func (l *List) Get(i int) Tag { return l.items[i] }

// Set replaces the i-th element. It panics if i is out of range.
func (l *List) Set(i int, t Tag) error {
	_ = l.items[i]
	if err := l.checkFixed(t); err != nil {
		return err
	}
	l.items[i] = t
	return nil
}

// Push appends t.
func (l *List) Push(t Tag) error {
	if err := l.check(t); err != nil {
		return err
	}
	l.items = append(l.items, t)
	return nil
}

// Pop removes and returns the last element, or nil if the list is empty.
func (l *List) Pop() Tag {
	n := len(l.items)
	if n == 0 {
		return nil
	}
	t := l.items[n-1]
	l.items[n-1] = nil
	l.items = l.items[:n-1]
	return t
}

// Unshift prepends t.
func (l *List) Unshift(t Tag) error {
	return l.Insert(0, t)
}

// Shift removes and returns the first element, or nil if the list is empty.
func (l *List) Shift() Tag {
	if len(l.items) == 0 {
		return nil
	}
	t := l.items[0]
	l.items = slices.Delete(l.items, 0, 1)
	return t
}

// Insert inserts t at position i, shifting later elements. It panics if
// i > Len().
func (l *List) Insert(i int, t Tag) error {
	if i < 0 || i > len(l.items) {
		panic(fmt.Sprintf("nbt: list insert index %d out of range [0:%d]", i, len(l.items)))
	}
	if err := l.check(t); err != nil {
		return err
	}
	l.items = slices.Insert(l.items, i, t)
	return nil
}

// Remove deletes the i-th element. It panics if i is out of range.
func (l *List) Remove(i int) {
	l.items = slices.Delete(l.items, i, i+1)
}

// First returns the first element, or nil if the list is empty.
func (l *List) First() Tag {
	if len(l.items) == 0 {
		return nil
	}
	return l.items[0]
}

// Last returns the last element, or nil if the list is empty.
func (l *List) Last() Tag {
	if len(l.items) == 0 {
		return nil
	}
	return l.items[len(l.items)-1]
}

func (l *List) All() iter.Seq2[int, Tag] {
	return func(yield func(int, Tag) bool) {
		for i, t := range l.items {
			if !yield(i, t) {
				return
			}
		}
	}
}

// Clone returns a deep copy of l.
func (l *List) Clone() (*List, error) {
	c := cloner{visitSet{}}
	return c.cloneList(l)
}

func (l *List) String() string { return tagString(l) }

func (l *List) check(t Tag) error {
	if t == nil {
		panic("nbt: nil tag")
	}
	if l.elemType == TypeEnd {
		l.elemType = t.Type()
		return nil
	}
	return l.checkFixed(t)
}

func (l *List) checkFixed(t Tag) error {
	if t == nil {
		panic("nbt: nil tag")
	}
	if got := t.Type(); got != l.elemType {
		return &TypeMismatchError{Want: l.elemType, Got: got, Msg: "list elements must all have the same type"}
	}
	return nil
}

func (l *List) stringify(sb *strings.Builder, indent int, vs visitSet) {
	sb.WriteString("TAG_List<")
	sb.WriteString(l.elemType.String())
	sb.WriteString(">=")
	if !vs.enter(l) {
		sb.WriteString("<cycle>")
		return
	}
	defer vs.leave(l)
	if len(l.items) == 0 {
		sb.WriteString("[]")
		return
	}
	sb.WriteString("[\n")
	for _, t := range l.items {
		writeIndent(sb, indent+1)
		t.stringify(sb, indent+1, vs)
		sb.WriteByte('\n')
	}
	writeIndent(sb, indent)
	sb.WriteByte(']')
}
