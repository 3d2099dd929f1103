package nbt

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompound_SetKeepsOrder(t *testing.T) {
	c := NewCompound()
	c.SetInt("b", 1)
	c.SetInt("a", 2)
	c.SetInt("c", 3)
	c.SetInt("a", 20)

	if diff := cmp.Diff([]string{"b", "a", "c"}, c.Keys()); diff != "" {
		t.Fatalf("Keys() mismatch (-want +got):\n%s", diff)
	}
	if v := must(c.GetInt("a")); v != 20 {
		t.Fatalf("GetInt(a) = %d, wanted 20", v)
	}

	c.Remove("b", "missing")
	if diff := cmp.Diff([]string{"a", "c"}, c.Keys()); diff != "" {
		t.Fatalf("Keys() after Remove mismatch (-want +got):\n%s", diff)
	}
	if c.Has("b") || c.Get("b") != nil {
		t.Fatalf("removed key still present")
	}

	var keys []string
	for k := range c.All() {
		keys = append(keys, k)
	}
	if diff := cmp.Diff([]string{"a", "c"}, keys); diff != "" {
		t.Fatalf("All() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompound_ZeroValue(t *testing.T) {
	var c Compound
	c.SetInt("x", 1)
	if c.Len() != 1 || !c.Has("x") {
		t.Fatalf("zero Compound did not accept Set")
	}
}

func TestCompound_TypedGetters(t *testing.T) {
	c := sampleCompound()

	if v := must(c.GetByte("byte")); v != -5 {
		t.Errorf("GetByte = %d, wanted -5", v)
	}
	if v := must(c.GetShort("short")); v != 1234 {
		t.Errorf("GetShort = %d, wanted 1234", v)
	}
	if v := must(c.GetLong("long")); v != 1<<40 {
		t.Errorf("GetLong = %d, wanted %d", v, int64(1<<40))
	}
	if v := must(c.GetFloat("float")); v != 0.3 {
		t.Errorf("GetFloat = %v, wanted 0.3", v)
	}
	if v := must(c.GetDouble("double")); v != 2.5 {
		t.Errorf("GetDouble = %v, wanted 2.5", v)
	}
	if v := must(c.GetString("string")); v != "héllo" {
		t.Errorf("GetString = %q, wanted héllo", v)
	}
	if diff := cmp.Diff([]byte{0, 1, 0xff}, must(c.GetByteArray("bytes"))); diff != "" {
		t.Errorf("GetByteArray mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int32{1, -2, 3}, must(c.GetIntArray("ints"))); diff != "" {
		t.Errorf("GetIntArray mismatch (-want +got):\n%s", diff)
	}
	if l := must(c.GetList("list")); l.Len() != 2 {
		t.Errorf("GetList.Len() = %d, wanted 2", l.Len())
	}
	if sub := must(c.GetCompound("inner")); must(sub.GetInt("x")) != 1 {
		t.Errorf("GetCompound(inner).x != 1")
	}

	_, err := c.GetInt("string")
	var tme *TypeMismatchError
	if !errors.As(err, &tme) || tme.Want != TypeInt || tme.Got != TypeString {
		t.Fatalf("GetInt(string) = %v, wanted TypeMismatchError Int/String", err)
	}
	if _, err := c.GetInt("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetInt(nope) = %v, wanted ErrNotFound", err)
	}
}

func TestCompound_SetterBounds(t *testing.T) {
	c := NewCompound()
	if err := c.SetString("s", string(make([]byte, MaxStringLen+1))); !errors.Is(err, ErrValueRange) {
		t.Fatalf("SetString(32768 bytes) = %v, wanted ErrValueRange", err)
	}
	if c.Has("s") {
		t.Fatalf("rejected value was stored")
	}
}

func TestCompound_SetNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Set(nil) did not panic")
		}
	}()
	NewCompound().Set("x", nil)
}

func TestCompound_Merge(t *testing.T) {
	a := NewCompound()
	a.SetInt("x", 1)
	a.SetInt("y", 2)
	aSub := NewCompound()
	aSub.SetInt("deep", 1)
	a.Set("sub", aSub)

	b := NewCompound()
	b.SetInt("z", 3)
	b.SetInt("x", 10)

	m := must(a.Merge(b))
	if diff := cmp.Diff([]string{"x", "y", "sub", "z"}, m.Keys()); diff != "" {
		t.Fatalf("Merge keys mismatch (-want +got):\n%s", diff)
	}
	if v := must(m.GetInt("x")); v != 10 {
		t.Fatalf("merged x = %d, wanted 10", v)
	}
	if v := must(a.GetInt("x")); v != 1 {
		t.Fatalf("receiver modified: x = %d, wanted 1", v)
	}
	if b.Len() != 2 {
		t.Fatalf("argument modified: Len() = %d, wanted 2", b.Len())
	}

	mSub := must(m.GetCompound("sub"))
	mSub.SetInt("deep", 99)
	if v := must(aSub.GetInt("deep")); v != 1 {
		t.Fatalf("Merge shared a nested compound with the receiver")
	}
}
