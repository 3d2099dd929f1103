package nbt

import (
	"github.com/andreyvit/nbt/compress"
)

// ReadCompressed decompresses data, detecting the method from its header,
// and decodes one root from the result. Uncompressed data is decoded as
// is. Decompression errors are returned unchanged.
//
// Unlike Read, ReadCompressed requires the whole decompressed buffer to be
// consumed by the root.
func (f Format) ReadCompressed(data []byte, opt ReadOptions) (Root, error) {
	raw, err := compress.Decompress(data)
	if err != nil {
		return Root{}, err
	}
	root, n, err := f.Read(raw, opt)
	if err != nil {
		return Root{}, err
	}
	if n != len(raw) {
		return Root{}, dataErrf(raw, n, nil, "%d trailing bytes after root", len(raw)-n)
	}
	return root, nil
}

// WriteCompressed encodes root and compresses the result with method at
// the given level; use compress.DefaultLevel for the method's default.
func (f Format) WriteCompressed(root Root, method compress.Method, level int) ([]byte, error) {
	raw, err := f.Write(root)
	if err != nil {
		return nil, err
	}
	return compress.Compress(raw, method, level)
}
