// Package compress wraps the general-purpose compressors that NBT files are
// commonly stored with. NBT itself knows nothing about compression: callers
// compress an encoded buffer before storing it and decompress it before
// decoding.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Method identifies a compression algorithm. The numeric values are
// persisted by the store package and must not change.
type Method uint8

const (
	None Method = 0
	Gzip Method = 1
	Zlib Method = 2
	Zstd Method = 3
	LZ4  Method = 4
)

// DefaultLevel selects each method's default level. For Gzip and Zlib that
// is level 7, which is what most NBT producers use.
const DefaultLevel = -1

const defaultDeflateLevel = 7

var ErrDecompress = errors.New("compress: malformed compressed data")

func (m Method) String() string {
	switch m {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Zlib:
		return "zlib"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

func ParseMethod(name string) (Method, error) {
	switch name {
	case "none":
		return None, nil
	case "gzip":
		return Gzip, nil
	case "zlib":
		return Zlib, nil
	case "zstd":
		return Zstd, nil
	case "lz4":
		return LZ4, nil
	default:
		return 0, fmt.Errorf("compress: unknown method %q", name)
	}
}

// zstd encoders and decoders are safe for concurrent use and costly to
// set up, so the default-level pair is shared.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("compress: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress compresses data with m at the given level. Levels follow each
// library's convention: 1-9 for Gzip, Zlib and LZ4 (0 is LZ4's fast mode),
// and zstd's 1-22 scale for Zstd. None returns data unchanged.
func Compress(data []byte, m Method, level int) ([]byte, error) {
	switch m {
	case None:
		return data, nil
	case Gzip:
		if level == DefaultLevel {
			level = defaultDeflateLevel
		}
		var buf bytes.Buffer
		w, err := gzip.NewWriterLevel(&buf, level)
		if err != nil {
			return nil, fmt.Errorf("gzip compress: %w", err)
		}
		return finish(&buf, w, data, "gzip")
	case Zlib:
		if level == DefaultLevel {
			level = defaultDeflateLevel
		}
		var buf bytes.Buffer
		w, err := zlib.NewWriterLevel(&buf, level)
		if err != nil {
			return nil, fmt.Errorf("zlib compress: %w", err)
		}
		return finish(&buf, w, data, "zlib")
	case Zstd:
		if level == DefaultLevel {
			return zstdEncoder.EncodeAll(data, nil), nil
		}
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		if err != nil {
			return nil, fmt.Errorf("zstd compress: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	case LZ4:
		lvl, err := lz4Level(level)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if err := w.Apply(lz4.CompressionLevelOption(lvl)); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return finish(&buf, w, data, "lz4")
	default:
		return nil, fmt.Errorf("compress: unsupported method %v", m)
	}
}

func finish(buf *bytes.Buffer, w io.WriteCloser, data []byte, what string) ([]byte, error) {
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("%s compress: %w", what, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s compress: %w", what, err)
	}
	return buf.Bytes(), nil
}

var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

func lz4Level(level int) (lz4.CompressionLevel, error) {
	if level == DefaultLevel {
		return lz4.Fast, nil
	}
	if level < 0 || level >= len(lz4Levels) {
		return 0, fmt.Errorf("lz4 compress: invalid level %d", level)
	}
	return lz4Levels[level], nil
}

// Detect guesses the method from the leading magic bytes. Data that matches
// no known header is reported as None.
func Detect(data []byte) Method {
	switch {
	case len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b:
		return Gzip
	case len(data) >= 4 && data[0] == 0x28 && data[1] == 0xb5 && data[2] == 0x2f && data[3] == 0xfd:
		return Zstd
	case len(data) >= 4 && data[0] == 0x04 && data[1] == 0x22 && data[2] == 0x4d && data[3] == 0x18:
		return LZ4
	case len(data) >= 2 && data[0]&0x0f == 8 && data[0]>>4 <= 7 && (uint16(data[0])<<8|uint16(data[1]))%31 == 0:
		return Zlib
	default:
		return None
	}
}

// Decompress detects the method of data and decompresses it. Data in no
// recognized format is returned unchanged, since NBT is often stored raw.
// Corrupt input fails with an error wrapping ErrDecompress.
//
// The zlib and LZ4 headers can also begin raw NBT (a String or Long root
// with an unlucky name length), so when either fails to decompress the data
// is returned unchanged as well. Use DecompressMethod to get the error.
func Decompress(data []byte) ([]byte, error) {
	m := Detect(data)
	out, err := DecompressMethod(data, m)
	if err != nil && (m == Zlib || m == LZ4) {
		return data, nil
	}
	return out, err
}

// DecompressMethod decompresses data known to be compressed with m.
func DecompressMethod(data []byte, m Method) ([]byte, error) {
	switch m {
	case None:
		return data, nil
	case Gzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", ErrDecompress, err)
		}
		return readAll(r, "gzip")
	case Zlib:
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: zlib: %v", ErrDecompress, err)
		}
		return readAll(r, "zlib")
	case Zstd:
		out, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrDecompress, err)
		}
		return out, nil
	case LZ4:
		return readAll(io.NopCloser(lz4.NewReader(bytes.NewReader(data))), "lz4")
	default:
		return nil, fmt.Errorf("compress: unsupported method %v", m)
	}
}

func readAll(r io.ReadCloser, what string) ([]byte, error) {
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecompress, what, err)
	}
	return out, nil
}
