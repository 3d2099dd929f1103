package nbt

import (
	"bytes"
	"fmt"
	"math"
	"slices"
)

// visitSet holds the containers currently on the traversal path.
type visitSet map[any]struct{}

func (vs visitSet) enter(c any) bool {
	if _, found := vs[c]; found {
		return false
	}
	vs[c] = struct{}{}
	return true
}

func (vs visitSet) leave(c any) {
	delete(vs, c)
}

// Equal reports whether a and b are structurally equal.
//
// Compounds are equal when they hold the same names mapped to equal tags,
// regardless of insertion order. Lists are compared positionally; empty
// lists are equal whatever element type they declare. Floats are compared
// at single precision, bit for bit.
func Equal(a, b Tag) bool {
	return equal(a, b, make(map[[2]any]struct{}))
}

func equal(a, b Tag, onPath map[[2]any]struct{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a := a.(type) {
	case Byte:
		b, ok := b.(Byte)
		return ok && a == b
	case Short:
		b, ok := b.(Short)
		return ok && a == b
	case Int:
		b, ok := b.(Int)
		return ok && a == b
	case Long:
		b, ok := b.(Long)
		return ok && a == b
	case Float:
		b, ok := b.(Float)
		return ok && math.Float32bits(float32(a)) == math.Float32bits(float32(b))
	case Double:
		b, ok := b.(Double)
		return ok && a == b
	case ByteArray:
		b, ok := b.(ByteArray)
		return ok && bytes.Equal(a, b)
	case String:
		b, ok := b.(String)
		return ok && a == b
	case IntArray:
		b, ok := b.(IntArray)
		return ok && slices.Equal(a, b)
	case *List:
		b, ok := b.(*List)
		if !ok || len(a.items) != len(b.items) {
			return false
		}
		// an empty list's element type does not survive encoding
		if len(a.items) > 0 && a.elemType != b.elemType {
			return false
		}
		if a == b {
			return true
		}
		pair := [2]any{a, b}
		if _, found := onPath[pair]; found {
			return true
		}
		onPath[pair] = struct{}{}
		defer delete(onPath, pair)
		for i := range a.items {
			if !equal(a.items[i], b.items[i], onPath) {
				return false
			}
		}
		return true
	case *Compound:
		b, ok := b.(*Compound)
		if !ok || len(a.keys) != len(b.keys) {
			return false
		}
		if a == b {
			return true
		}
		pair := [2]any{a, b}
		if _, found := onPath[pair]; found {
			return true
		}
		onPath[pair] = struct{}{}
		defer delete(onPath, pair)
		for k, av := range a.vals {
			bv, ok := b.vals[k]
			if !ok || !equal(av, bv, onPath) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("nbt: unknown tag %T", a))
	}
}

// Clone returns a deep copy of t. Scalar tags, including ByteArray and
// IntArray, share their payload with the original. Cloning a container
// that contains itself fails with ErrCyclicStructure.
func Clone(t Tag) (Tag, error) {
	c := cloner{visitSet{}}
	return c.clone(t)
}

type cloner struct {
	visiting visitSet
}

func (c cloner) clone(t Tag) (Tag, error) {
	switch t := t.(type) {
	case *List:
		return c.cloneList(t)
	case *Compound:
		return c.cloneCompound(t)
	default:
		return t, nil
	}
}

func (c cloner) cloneList(l *List) (*List, error) {
	if !c.visiting.enter(l) {
		return nil, fmt.Errorf("%w: list contains itself", ErrCyclicStructure)
	}
	defer c.visiting.leave(l)

	result := &List{elemType: l.elemType, items: make([]Tag, len(l.items))}
	for i, t := range l.items {
		v, err := c.clone(t)
		if err != nil {
			return nil, err
		}
		result.items[i] = v
	}
	return result, nil
}

func (c cloner) cloneCompound(src *Compound) (*Compound, error) {
	if !c.visiting.enter(src) {
		return nil, fmt.Errorf("%w: compound contains itself", ErrCyclicStructure)
	}
	defer c.visiting.leave(src)

	result := &Compound{
		keys: slices.Clone(src.keys),
		vals: make(map[string]Tag, len(src.keys)),
	}
	for _, k := range src.keys {
		v, err := c.clone(src.vals[k])
		if err != nil {
			return nil, err
		}
		result.vals[k] = v
	}
	return result, nil
}
