package nbt

import (
	"encoding/hex"
	"log/slog"
	"strings"
	"testing"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func ensure(err error) {
	if err != nil {
		panic(err)
	}
}

// hexData decodes hex ignoring whitespace, e.g. "0a 0000 00".
func hexData(s string) []byte {
	return must(hex.DecodeString(strings.Join(strings.Fields(s), "")))
}

type logWriter struct{ t testing.TB }

func (c *logWriter) Write(buf []byte) (int, error) {
	c.t.Log(strings.TrimSuffix(string(buf), "\n"))
	return len(buf), nil
}

func testLogger(t testing.TB) *slog.Logger {
	return slog.New(slog.NewTextHandler(&logWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// sampleCompound returns a tree using every tag type.
func sampleCompound() *Compound {
	c := NewCompound()
	c.SetByte("byte", -5)
	c.SetShort("short", 1234)
	c.SetInt("int", -123456)
	c.SetLong("long", 1<<40)
	c.SetFloat("float", 0.3)
	c.SetDouble("double", 2.5)
	ensure(c.SetByteArray("bytes", []byte{0, 1, 0xff}))
	ensure(c.SetString("string", "héllo"))
	ensure(c.SetIntArray("ints", []int32{1, -2, 3}))

	l := must(ListOf(String("a"), String("b")))
	c.Set("list", l)
	c.Set("empty", NewList(TypeEnd))
	c.Set("emptyInts", NewList(TypeInt))

	inner := NewCompound()
	inner.SetInt("x", 1)
	c.Set("inner", inner)
	c.Set("nested", must(ListOf(must(inner.Clone()))))
	return c
}
