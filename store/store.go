/*
Package store keeps encoded NBT roots in a bbolt database under string keys.

Each record carries its own format, compression method and an xxhash
checksum, so records written with different options can be read back by a
store opened with any options:

	[checksum: 8 bytes, big-endian xxhash64 of everything that follows]
	[metadata encoding: 1 byte]
	[metadata length: uvarint]
	[metadata]
	[payload: the root, encoded and then compressed]
*/
package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.etcd.io/bbolt"

	"github.com/andreyvit/nbt"
	"github.com/andreyvit/nbt/compress"
)

var (
	ErrNotFound = errors.New("store: key not found")
	ErrChecksum = errors.New("store: checksum mismatch")
	ErrCorrupt  = errors.New("store: corrupted record")
)

const (
	defaultBucket = "roots"
	checksumSize  = 8
)

type Options struct {
	Logger *slog.Logger

	// Format is used for new records; the zero value means nbt.BigEndian.
	Format nbt.Format

	// Compression and Level apply to new records. A nil Level means
	// compress.DefaultLevel; 0 is a real level for every method.
	Compression compress.Method
	Level       *int

	MetaEncoding MetaEncoding

	// ReadOptions configure decoding in Get. When its Logger is nil, the
	// store's logger is used.
	ReadOptions nbt.ReadOptions

	// Bucket names the bbolt bucket holding the records, "roots" by
	// default.
	Bucket string

	IsTesting bool

	// Timeout bounds waiting for the database file lock.
	Timeout time.Duration
}

// Meta describes a stored record.
type Meta struct {
	Name        string          `msgpack:"name" cbor:"1,keyasint"`
	Format      string          `msgpack:"fmt" cbor:"2,keyasint"`
	Compression compress.Method `msgpack:"comp" cbor:"3,keyasint"`
	RawSize     int             `msgpack:"raw" cbor:"4,keyasint"`
	Written     time.Time       `msgpack:"at" cbor:"5,keyasint"`
}

type Store struct {
	bdb     *bbolt.DB
	opt     Options
	level   int
	bucket  string
	logger  *slog.Logger
	readOpt nbt.ReadOptions
}

func Open(path string, opt Options) (*Store, error) {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if !opt.Format.Valid() {
		opt.Format = nbt.BigEndian
	}
	level := compress.DefaultLevel
	if opt.Level != nil {
		level = *opt.Level
	}
	if opt.Bucket == "" {
		opt.Bucket = defaultBucket
	}
	readOpt := opt.ReadOptions
	if readOpt.Logger == nil {
		readOpt.Logger = opt.Logger
	}

	bdb, err := openBolt(path, opt)
	if err != nil {
		return nil, err
	}
	return &Store{
		bdb:     bdb,
		opt:     opt,
		level:   level,
		bucket:  opt.Bucket,
		logger:  opt.Logger,
		readOpt: readOpt,
	}, nil
}

func (s *Store) Close() error {
	return s.bdb.Close()
}

// Put encodes root and stores it under key, replacing any previous record.
func (s *Store) Put(key string, root nbt.Root) error {
	if key == "" {
		return errors.New("store: empty key")
	}
	raw, err := s.opt.Format.Write(root)
	if err != nil {
		return fmt.Errorf("store: %s: %w", key, err)
	}
	payload, err := compress.Compress(raw, s.opt.Compression, s.level)
	if err != nil {
		return fmt.Errorf("store: %s: %w", key, err)
	}
	meta := Meta{
		Name:        root.Name(),
		Format:      s.opt.Format.String(),
		Compression: s.opt.Compression,
		RawSize:     len(raw),
		Written:     time.Now().UTC().Truncate(time.Millisecond),
	}
	rec := encodeRecord(s.opt.MetaEncoding, &meta, payload)

	err = s.bdb.Update(func(tx *bbolt.Tx) error {
		b, err := createRootsBucket(tx, s.bucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), rec)
	})
	if err != nil {
		return fmt.Errorf("store: %s: %w", key, err)
	}
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "store: put", slog.String("key", key), slog.Int("raw", len(raw)), slog.Int("size", len(rec)), slog.String("comp", s.opt.Compression.String()))
	return nil
}

// Get decodes the root stored under key.
func (s *Store) Get(key string) (nbt.Root, error) {
	rec, err := s.load(key)
	if err != nil {
		return nbt.Root{}, err
	}
	meta, payload, err := decodeRecord(rec)
	if err != nil {
		return nbt.Root{}, fmt.Errorf("%s: %w", key, err)
	}
	format, err := nbt.ParseFormat(meta.Format)
	if err != nil {
		return nbt.Root{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	raw, err := compress.DecompressMethod(payload, meta.Compression)
	if err != nil {
		return nbt.Root{}, fmt.Errorf("store: %s: %w", key, err)
	}
	root, n, err := format.Read(raw, s.readOpt)
	if err != nil {
		return nbt.Root{}, fmt.Errorf("store: %s: %w", key, err)
	}
	if n != len(raw) {
		return nbt.Root{}, fmt.Errorf("%w: %s: %d trailing bytes", ErrCorrupt, key, len(raw)-n)
	}
	return root, nil
}

// Stat returns the metadata of the record under key.
func (s *Store) Stat(key string) (Meta, error) {
	rec, err := s.load(key)
	if err != nil {
		return Meta{}, err
	}
	meta, _, err := decodeRecord(rec)
	if err != nil {
		return Meta{}, fmt.Errorf("%s: %w", key, err)
	}
	return *meta, nil
}

// Delete removes the record under key, failing with ErrNotFound if there
// is none.
func (s *Store) Delete(key string) error {
	return s.bdb.Update(func(tx *bbolt.Tx) error {
		b := rootsBucket(tx, s.bucket)
		if b == nil || b.Get(unsafeBytesFromString(key)) == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, key)
		}
		return b.Delete([]byte(key))
	})
}

// Keys returns the keys starting with prefix, in byte order.
func (s *Store) Keys(prefix string) ([]string, error) {
	var keys []string
	err := s.bdb.View(func(tx *bbolt.Tx) error {
		b := rootsBucket(tx, s.bucket)
		if b == nil {
			return nil
		}
		return scanKeys(b, []byte(prefix), func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

// load returns a copy of the record under key; bbolt values are only valid
// inside the transaction.
func (s *Store) load(key string) ([]byte, error) {
	var rec []byte
	err := s.bdb.View(func(tx *bbolt.Tx) error {
		b := rootsBucket(tx, s.bucket)
		if b == nil {
			return nil
		}
		rec = bytes.Clone(b.Get(unsafeBytesFromString(key)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return rec, nil
}

func encodeRecord(enc MetaEncoding, meta *Meta, payload []byte) []byte {
	metaBuf := enc.appendMeta(nil, meta)

	buf := make([]byte, checksumSize, checksumSize+1+binary.MaxVarintLen64+len(metaBuf)+len(payload))
	buf = append(buf, byte(enc))
	buf = binary.AppendUvarint(buf, uint64(len(metaBuf)))
	buf = append(buf, metaBuf...)
	buf = append(buf, payload...)
	binary.BigEndian.PutUint64(buf, xxhash.Sum64(buf[checksumSize:]))
	return buf
}

func decodeRecord(rec []byte) (*Meta, []byte, error) {
	if len(rec) < checksumSize+1 {
		return nil, nil, fmt.Errorf("%w: record too short (%d bytes)", ErrCorrupt, len(rec))
	}
	body := rec[checksumSize:]
	if want, got := binary.BigEndian.Uint64(rec), xxhash.Sum64(body); want != got {
		return nil, nil, fmt.Errorf("%w: stored %016x, computed %016x", ErrChecksum, want, got)
	}
	enc := MetaEncoding(body[0])
	n, sz := binary.Uvarint(body[1:])
	if sz <= 0 || n > uint64(len(body)-1-sz) {
		return nil, nil, fmt.Errorf("%w: invalid metadata length", ErrCorrupt)
	}
	metaBuf := body[1+sz : 1+sz+int(n)]
	payload := body[1+sz+int(n):]

	meta := new(Meta)
	if err := enc.decodeMeta(metaBuf, meta); err != nil {
		return nil, nil, err
	}
	return meta, payload, nil
}
