package nbt

import (
	"errors"
	"fmt"
)

var (
	ErrDecode          = errors.New("nbt: malformed data")
	ErrDepthExceeded   = errors.New("nbt: maximum nesting depth exceeded")
	ErrValueRange      = errors.New("nbt: value out of range")
	ErrDuplicateKey    = errors.New("nbt: duplicate key")
	ErrSyntax          = errors.New("nbt: syntax error")
	ErrTypeMismatch    = errors.New("nbt: tag type mismatch")
	ErrCyclicStructure = errors.New("nbt: cyclic structure")
	ErrNotFound        = errors.New("nbt: tag not found")
)

// DataError describes malformed binary input. It always matches ErrDecode
// under errors.Is, and additionally matches Err (e.g. ErrDepthExceeded,
// ErrDuplicateKey, io.ErrUnexpectedEOF) when set.
type DataError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("nbt: %s at offset %d: %v: (%d) %x", e.Msg, e.Off, e.Err, n, e.Data)
		} else {
			return fmt.Sprintf("nbt: %s at offset %d: (%d) %x", e.Msg, e.Off, n, e.Data)
		}
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		if e.Err != nil {
			return fmt.Sprintf("nbt: %s at offset %d: %v: (%d) %x...%x", e.Msg, e.Off, e.Err, n, p, s)
		} else {
			return fmt.Sprintf("nbt: %s at offset %d: (%d) %x...%x", e.Msg, e.Off, n, p, s)
		}
	}
}

// SyntaxError is returned by the text parser. Off is the byte offset into
// the original input. It always matches ErrSyntax under errors.Is, and
// additionally matches Err.
type SyntaxError struct {
	Off int
	Err error
	Msg string
}

func syntaxErrf(off int, err error, format string, args ...any) error {
	if err == nil {
		err = ErrSyntax
	}
	return &SyntaxError{off, err, fmt.Sprintf(format, args...)}
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: %s at offset %d", e.Err, e.Msg, e.Off)
}

// TypeMismatchError is returned when a tag of one type is found where
// another was required.
type TypeMismatchError struct {
	Want TagType
	Got  TagType
	Msg  string
}

func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

func (e *TypeMismatchError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("nbt: %s: expected %v, got %v", e.Msg, e.Want, e.Got)
	}
	return fmt.Sprintf("nbt: expected %v, got %v", e.Want, e.Got)
}

func rangeErrf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValueRange}, args...)...)
}
