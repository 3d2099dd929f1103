package store

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// MetaEncoding selects how record metadata is serialized. The numeric
// values are persisted in every record.
type MetaEncoding uint8

const (
	MsgPack MetaEncoding = iota
	CBOR
)

func (enc MetaEncoding) String() string {
	switch enc {
	case MsgPack:
		return "msgpack"
	case CBOR:
		return "cbor"
	default:
		return fmt.Sprintf("MetaEncoding(%d)", uint8(enc))
	}
}

var cborEncMode cbor.EncMode

func init() {
	var err error
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	cborEncMode, err = opts.EncMode()
	if err != nil {
		panic("store: CBOR encoder initialization failed: " + err.Error())
	}
}

func (enc MetaEncoding) appendMeta(buf []byte, m *Meta) []byte {
	switch enc {
	case MsgPack:
		bb := bytes.NewBuffer(buf)
		e := msgpack.GetEncoder()
		e.Reset(bb)
		e.SetSortMapKeys(true)
		err := e.Encode(m)
		msgpack.PutEncoder(e)
		if err != nil {
			panic(fmt.Errorf("failed to encode %T using MsgPack: %w", m, err))
		}
		return bb.Bytes()
	case CBOR:
		raw, err := cborEncMode.Marshal(m)
		if err != nil {
			panic(fmt.Errorf("failed to encode %T using CBOR: %w", m, err))
		}
		return append(buf, raw...)
	default:
		panic("unsupported encoding")
	}
}

func (enc MetaEncoding) decodeMeta(data []byte, m *Meta) error {
	switch enc {
	case MsgPack:
		var r bytes.Reader
		r.Reset(data)
		d := msgpack.GetDecoder()
		d.Reset(&r)
		err := d.Decode(m)
		msgpack.PutDecoder(d)
		if err != nil {
			return fmt.Errorf("%w: failed to decode msgpack into %T: %v", ErrCorrupt, m, err)
		}
		return nil
	case CBOR:
		if err := cbor.Unmarshal(data, m); err != nil {
			return fmt.Errorf("%w: failed to decode CBOR into %T: %v", ErrCorrupt, m, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown metadata encoding %d", ErrCorrupt, uint8(enc))
	}
}
