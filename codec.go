package nbt

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Format is a byte-order profile of the binary encoding. The two profiles
// differ only in how multi-byte fields, including length prefixes, are
// packed.
type Format struct {
	order byteOrder
	name  string
}

var (
	BigEndian    = Format{binary.BigEndian, "big-endian"}
	LittleEndian = Format{binary.LittleEndian, "little-endian"}
)

func (f Format) String() string { return f.name }

// Valid reports whether f is one of the predefined profiles rather than the
// zero Format.
func (f Format) Valid() bool { return f.order != nil }

// ParseFormat returns the profile with the given name, as returned by
// Format.String.
func ParseFormat(name string) (Format, error) {
	switch name {
	case BigEndian.name:
		return BigEndian, nil
	case LittleEndian.name:
		return LittleEndian, nil
	default:
		return Format{}, fmt.Errorf("nbt: unknown format %q", name)
	}
}

// DuplicateKeyPolicy decides what the binary decoder does when a compound
// holds the same name twice.
type DuplicateKeyPolicy int

const (
	// DuplicateKeyReject fails the read with an error matching both ErrDecode
	// and ErrDuplicateKey.
	DuplicateKeyReject DuplicateKeyPolicy = iota

	// DuplicateKeyKeepFirst keeps the first entry and discards later ones.
	// Use only for legacy data known to contain such duplicates.
	DuplicateKeyKeepFirst
)

func (p DuplicateKeyPolicy) String() string {
	switch p {
	case DuplicateKeyReject:
		return "reject"
	case DuplicateKeyKeepFirst:
		return "keep-first"
	default:
		return fmt.Sprintf("DuplicateKeyPolicy(%d)", int(p))
	}
}

// ReadOptions configures a binary read. The zero value reads without a
// depth limit and rejects duplicate compound keys.
type ReadOptions struct {
	// MaxDepth limits the nesting of lists and compounds; 0 means unlimited.
	MaxDepth int

	DuplicateKeys DuplicateKeyPolicy

	// Logger receives debug records about discarded duplicate keys.
	Logger *slog.Logger
}

var errNoTag = errors.New("nbt: root has no tag")

// Read decodes one named root tag from the start of data and returns it
// along with the number of bytes consumed.
func (f Format) Read(data []byte, opt ReadOptions) (Root, int, error) {
	return f.ReadAt(data, 0, opt)
}

// ReadAt decodes one named root tag starting at off and returns it along
// with the offset just past it.
func (f Format) ReadAt(data []byte, off int, opt ReadOptions) (Root, int, error) {
	if off < 0 || off > len(data) {
		return Root{}, 0, dataErrf(data, off, nil, "offset out of range")
	}
	d := newDecoder(f, data, opt)
	d.r.buf = data[off:]
	root, err := d.readRoot()
	if err != nil {
		return Root{}, 0, err
	}
	return root, d.r.Offset(), nil
}

// ReadHeadless decodes a tag of type typ that was written without a type
// byte or name, and returns it along with the number of bytes consumed.
func (f Format) ReadHeadless(data []byte, typ TagType, opt ReadOptions) (Tag, int, error) {
	d := newDecoder(f, data, opt)
	if !typ.Valid() {
		return nil, 0, d.r.errf(nil, "cannot read headless tag of type %v", typ)
	}
	t, err := d.readPayload(typ, 0)
	if err != nil {
		return nil, 0, err
	}
	return t, d.r.Offset(), nil
}

// ReadMultiple decodes back-to-back named roots until data is exhausted.
func (f Format) ReadMultiple(data []byte, opt ReadOptions) ([]Root, error) {
	d := newDecoder(f, data, opt)
	var roots []Root
	for d.r.Remaining() > 0 {
		root, err := d.readRoot()
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	return roots, nil
}

// Write encodes root as a named tag.
func (f Format) Write(root Root) ([]byte, error) {
	return f.AppendRoot(nil, root)
}

// AppendRoot appends the encoding of root to buf.
func (f Format) AppendRoot(buf []byte, root Root) ([]byte, error) {
	e := newEncoder(f, buf)
	if err := e.writeRoot(root); err != nil {
		return buf, err
	}
	return e.w.Bytes(), nil
}

// WriteHeadless encodes t without a type byte or name.
func (f Format) WriteHeadless(t Tag) ([]byte, error) {
	if t == nil {
		return nil, errNoTag
	}
	e := newEncoder(f, nil)
	if err := e.writePayload(t); err != nil {
		return nil, err
	}
	return e.w.Bytes(), nil
}

// WriteMultiple encodes roots back to back.
func (f Format) WriteMultiple(roots []Root) ([]byte, error) {
	e := newEncoder(f, nil)
	for _, root := range roots {
		if err := e.writeRoot(root); err != nil {
			return nil, err
		}
	}
	return e.w.Bytes(), nil
}

type decoder struct {
	r      *Reader
	guard  depthGuard
	policy DuplicateKeyPolicy
	logger *slog.Logger
}

func newDecoder(f Format, data []byte, opt ReadOptions) *decoder {
	d := &decoder{
		r:      f.NewReader(data),
		policy: opt.DuplicateKeys,
		logger: opt.Logger,
	}
	d.guard = depthGuard{
		max: opt.MaxDepth,
		exceeded: func(max int) error {
			return d.r.errf(ErrDepthExceeded, "nesting deeper than %d", max)
		},
	}
	return d
}

func (d *decoder) readRoot() (Root, error) {
	off := d.r.Offset()
	b, err := d.r.ReadByte()
	if err != nil {
		return Root{}, err
	}
	typ := TagType(b)
	if typ == TypeEnd {
		return Root{}, dataErrf(d.r.orig, off, nil, "found End tag at the start of buffer")
	}
	if !typ.Valid() {
		return Root{}, dataErrf(d.r.orig, off, nil, "unknown tag type %d", b)
	}
	name, err := d.r.ReadString()
	if err != nil {
		return Root{}, err
	}
	t, err := d.readPayload(typ, off)
	if err != nil {
		return Root{}, err
	}
	return Root{tag: t, name: name}, nil
}

// readPayload decodes the body of a tag of type typ. typeOff is the offset
// of the type byte, used for error reporting.
func (d *decoder) readPayload(typ TagType, typeOff int) (Tag, error) {
	switch typ {
	case TypeByte:
		v, err := d.r.ReadSignedByte()
		return Byte(v), err
	case TypeShort:
		v, err := d.r.ReadSignedShort()
		return Short(v), err
	case TypeInt:
		v, err := d.r.ReadInt()
		return Int(v), err
	case TypeLong:
		v, err := d.r.ReadLong()
		return Long(v), err
	case TypeFloat:
		v, err := d.r.ReadFloat()
		return Float(v), err
	case TypeDouble:
		v, err := d.r.ReadDouble()
		return Double(v), err
	case TypeByteArray:
		v, err := d.r.ReadByteArray()
		return ByteArray(v), err
	case TypeString:
		v, err := d.r.ReadString()
		return String(v), err
	case TypeList:
		return d.readList()
	case TypeCompound:
		return d.readCompound()
	case TypeIntArray:
		v, err := d.r.ReadIntArray()
		return IntArray(v), err
	default:
		return nil, dataErrf(d.r.orig, typeOff, nil, "unknown tag type %d", uint8(typ))
	}
}

func (d *decoder) readList() (*List, error) {
	var list *List
	err := d.guard.enter(func() error {
		typeOff := d.r.Offset()
		b, err := d.r.ReadByte()
		if err != nil {
			return err
		}
		elemType := TagType(b)
		n, err := d.r.readLength("List")
		if err != nil {
			return err
		}
		if n == 0 {
			// some encoders write an arbitrary element type for empty lists
			list = &List{elemType: TypeEnd}
			return nil
		}
		if elemType == TypeEnd {
			return dataErrf(d.r.orig, typeOff, nil, "non-empty list (%d elements) of End tags", n)
		}
		if !elemType.Valid() {
			return dataErrf(d.r.orig, typeOff, nil, "unknown list element type %d", b)
		}
		// every element occupies at least one byte
		if n > d.r.Remaining() {
			return d.r.errf(io.ErrUnexpectedEOF, "list of %d elements cannot fit into %d remaining bytes", n, d.r.Remaining())
		}
		items := make([]Tag, 0, n)
		for range n {
			t, err := d.readPayload(elemType, typeOff)
			if err != nil {
				return err
			}
			items = append(items, t)
		}
		list = &List{elemType: elemType, items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (d *decoder) readCompound() (*Compound, error) {
	c := NewCompound()
	err := d.guard.enter(func() error {
		for {
			off := d.r.Offset()
			b, err := d.r.ReadByte()
			if err != nil {
				return err
			}
			typ := TagType(b)
			if typ == TypeEnd {
				return nil
			}
			if !typ.Valid() {
				return dataErrf(d.r.orig, off, nil, "unknown tag type %d", b)
			}
			name, err := d.r.ReadString()
			if err != nil {
				return err
			}
			t, err := d.readPayload(typ, off)
			if err != nil {
				return err
			}
			if c.Has(name) {
				if d.policy != DuplicateKeyKeepFirst {
					return dataErrf(d.r.orig, off, ErrDuplicateKey, "duplicate compound key %q", name)
				}
				if d.logger != nil {
					d.logger.LogAttrs(context.Background(), slog.LevelDebug, "nbt: ignoring duplicate compound key", slog.String("key", name), slog.Int("off", off), slog.String("type", typ.String()))
				}
				continue
			}
			c.Set(name, t)
		}
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

type encoder struct {
	w        *Writer
	visiting visitSet
}

func newEncoder(f Format, buf []byte) *encoder {
	return &encoder{w: f.NewWriter(buf), visiting: visitSet{}}
}

func (e *encoder) writeRoot(root Root) error {
	if root.tag == nil {
		return errNoTag
	}
	e.w.WriteByte(byte(root.tag.Type()))
	if err := e.w.WriteString(root.name); err != nil {
		return fmt.Errorf("nbt: root name: %w", err)
	}
	return e.writePayload(root.tag)
}

func (e *encoder) writePayload(t Tag) error {
	switch t := t.(type) {
	case Byte:
		e.w.WriteByte(byte(t))
	case Short:
		e.w.WriteShort(int16(t))
	case Int:
		e.w.WriteInt(int32(t))
	case Long:
		e.w.WriteLong(int64(t))
	case Float:
		e.w.WriteFloat(float32(t))
	case Double:
		e.w.WriteDouble(float64(t))
	case ByteArray:
		return e.w.WriteByteArray(t)
	case String:
		return e.w.WriteString(string(t))
	case IntArray:
		return e.w.WriteIntArray(t)
	case *List:
		return e.writeList(t)
	case *Compound:
		return e.writeCompound(t)
	default:
		panic(fmt.Sprintf("nbt: unknown tag %T", t))
	}
	return nil
}

func (e *encoder) writeList(l *List) error {
	if !e.visiting.enter(l) {
		return fmt.Errorf("%w: list contains itself", ErrCyclicStructure)
	}
	defer e.visiting.leave(l)

	if err := checkArrayLen("List", len(l.items)); err != nil {
		return err
	}
	e.w.WriteByte(byte(l.elemType))
	e.w.WriteInt(int32(len(l.items)))
	for i, t := range l.items {
		if t.Type() != l.elemType {
			return &TypeMismatchError{Want: l.elemType, Got: t.Type(), Msg: fmt.Sprintf("list element %d", i)}
		}
		if err := e.writePayload(t); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeCompound(c *Compound) error {
	if !e.visiting.enter(c) {
		return fmt.Errorf("%w: compound contains itself", ErrCyclicStructure)
	}
	defer e.visiting.leave(c)

	for _, k := range c.keys {
		t := c.vals[k]
		e.w.WriteByte(byte(t.Type()))
		if err := e.w.WriteString(k); err != nil {
			return fmt.Errorf("nbt: key %.32q: %w", k, err)
		}
		if err := e.writePayload(t); err != nil {
			return fmt.Errorf("nbt: %.32q: %w", k, err)
		}
	}
	e.w.WriteByte(byte(TypeEnd))
	return nil
}
