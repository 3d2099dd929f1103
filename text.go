package nbt

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseOptions configures ParseTextWithOptions.
type ParseOptions struct {
	// MaxDepth limits the nesting of lists and compounds, counting the
	// document itself; 0 means unlimited.
	MaxDepth int
}

// ParseText parses the JSON-like text form of a compound, such as
//
//	{name:"Steve", pos:[1.5d, 64d, -3.25d], health:20s, tags:{op:1b}}
//
// Unquoted numbers take a type suffix: b (Byte), s (Short), l (Long),
// f (Float) or d (Double). Without a suffix, integers become Int and
// numbers with a fraction or exponent become Float. Anything else that is
// not quoted becomes a String.
//
// ParseText limits nesting to DefaultMaxDepth. Every error is a
// *SyntaxError carrying the offset into s.
func ParseText(s string) (*Compound, error) {
	return ParseTextWithOptions(s, ParseOptions{MaxDepth: DefaultMaxDepth})
}

func ParseTextWithOptions(s string, opt ParseOptions) (*Compound, error) {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}

	p := &textParser{s: s, pos: start, end: end}
	p.guard = depthGuard{
		max: opt.MaxDepth,
		exceeded: func(max int) error {
			return syntaxErrf(p.pos-1, ErrDepthExceeded, "nesting deeper than %d", max)
		},
	}

	if p.pos >= p.end || s[p.pos] != '{' {
		return nil, syntaxErrf(p.pos, nil, "expected compound start")
	}
	p.pos++
	c, err := p.parseCompound()
	if err != nil {
		return nil, err
	}
	for p.pos < p.end && isSpace(s[p.pos]) {
		p.pos++
	}
	if p.pos < p.end {
		return nil, syntaxErrf(p.pos, nil, "unexpected trailing characters %.32q", s[p.pos:p.end])
	}
	return c, nil
}

type textParser struct {
	s     string
	pos   int
	end   int
	guard depthGuard
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// skipWhitespace reports whether a value follows. It consumes the
// terminator and returns false if the container is empty.
func (p *textParser) skipWhitespace(term byte) (bool, error) {
	for p.pos < p.end {
		c := p.s[p.pos]
		if c == term {
			p.pos++
			return false, nil
		}
		if !isSpace(c) {
			return true, nil
		}
		p.pos++
	}
	return false, syntaxErrf(p.pos, nil, "unexpected end of input, expected %q", term)
}

// readBreak consumes a separator and reports whether it was the
// terminator rather than a comma.
func (p *textParser) readBreak(term byte) (bool, error) {
	if p.pos >= p.end {
		return false, syntaxErrf(p.pos, nil, "unexpected end of input, expected %q", term)
	}
	c := p.s[p.pos]
	switch c {
	case ',':
		p.pos++
		return false, nil
	case term:
		p.pos++
		return true, nil
	default:
		return false, syntaxErrf(p.pos, nil, "unexpected %q", c)
	}
}

func (p *textParser) parseCompound() (*Compound, error) {
	c := NewCompound()
	err := p.guard.enter(func() error {
		more, err := p.skipWhitespace('}')
		if err != nil || !more {
			return err
		}
		for p.pos < p.end {
			keyOff := p.pos
			k, err := p.readKey()
			if err != nil {
				return err
			}
			if c.Has(k) {
				return syntaxErrf(keyOff, ErrDuplicateKey, "duplicate compound key %q", k)
			}
			v, err := p.readValue()
			if err != nil {
				return err
			}
			c.Set(k, v)

			done, err := p.readBreak('}')
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
		return syntaxErrf(p.pos, nil, "unexpected end of input, expected '}'")
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (p *textParser) parseList() (*List, error) {
	l := NewList(TypeEnd)
	err := p.guard.enter(func() error {
		more, err := p.skipWhitespace(']')
		if err != nil || !more {
			return err
		}
		for p.pos < p.end {
			off := p.pos
			v, err := p.readValue()
			if err != nil {
				return err
			}
			if l.elemType != TypeEnd && l.elemType != v.Type() {
				return syntaxErrf(off, ErrTypeMismatch, "list of %v cannot hold %v", l.elemType, v.Type())
			}
			l.items = append(l.items, v)
			l.elemType = v.Type()

			done, err := p.readBreak(']')
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
		return syntaxErrf(p.pos, nil, "unexpected end of input, expected ']'")
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// readQuoted reads the rest of a quoted string whose opening quote has
// already been consumed. A backslash makes the next byte literal.
func (p *textParser) readQuoted(openOff int) (string, error) {
	var sb strings.Builder
	for p.pos < p.end {
		c := p.s[p.pos]
		p.pos++
		switch c {
		case '"':
			return sb.String(), nil
		case '\\':
			if p.pos >= p.end {
				return "", syntaxErrf(openOff, nil, "unterminated string")
			}
			sb.WriteByte(p.s[p.pos])
			p.pos++
		default:
			sb.WriteByte(c)
		}
	}
	return "", syntaxErrf(openOff, nil, "unterminated string")
}

func (p *textParser) readKey() (string, error) {
	var (
		key      []byte
		valueOff = -1
		quoted   bool
	)
	for p.pos < p.end {
		off := p.pos
		c := p.s[p.pos]
		p.pos++

		if c == ':' {
			return p.finishKey(key, valueOff, quoted)
		}
		if isSpace(c) && (valueOff < 0 || quoted) {
			continue
		}
		if quoted {
			return "", syntaxErrf(off, nil, "unexpected %q after end of key", c)
		}
		switch c {
		case '"':
			if valueOff >= 0 {
				return "", syntaxErrf(off, nil, "unexpected quote")
			}
			s, err := p.readQuoted(off)
			if err != nil {
				return "", err
			}
			key, valueOff, quoted = []byte(s), off, true
		case '{', '}', '[', ']', ',':
			return "", syntaxErrf(off, nil, "unexpected %q in key (enclose in double quotes for literal)", c)
		default:
			if valueOff < 0 {
				valueOff = off
			}
			key = append(key, c)
		}
	}
	return "", syntaxErrf(p.pos, nil, "unexpected end of input, expected ':'")
}

func (p *textParser) finishKey(key []byte, off int, quoted bool) (string, error) {
	if !quoted {
		key = trimTrailingSpace(key)
	}
	if len(key) == 0 {
		if off < 0 {
			off = p.pos - 1
		}
		return "", syntaxErrf(off, nil, "invalid empty key")
	}
	if err := checkStringLen(len(key)); err != nil {
		return "", syntaxErrf(off, err, "key too long")
	}
	return string(key), nil
}

// readValue reads a value up to, but not including, the next ',', '}' or
// ']', or the end of input.
func (p *textParser) readValue() (Tag, error) {
	var (
		word     []byte
		wordOff  = -1
		result   Tag
		foundEnd bool
	)
	for p.pos < p.end {
		off := p.pos
		c := p.s[p.pos]

		if c == ',' || c == '}' || c == ']' {
			foundEnd = true
			break
		}
		p.pos++

		if wordOff < 0 || result != nil {
			if isSpace(c) {
				continue
			}
			if result != nil {
				return nil, syntaxErrf(off, nil, "unexpected %q after end of value", c)
			}
		}

		switch c {
		case '"':
			if wordOff >= 0 {
				return nil, syntaxErrf(off, nil, "unexpected quote")
			}
			s, err := p.readQuoted(off)
			if err != nil {
				return nil, err
			}
			t, err := NewString(s)
			if err != nil {
				return nil, syntaxErrf(off, err, "invalid string")
			}
			result = t
		case '{':
			if wordOff >= 0 {
				return nil, syntaxErrf(off, nil, "unexpected compound start (enclose in double quotes for literal)")
			}
			c, err := p.parseCompound()
			if err != nil {
				return nil, err
			}
			result = c
		case '[':
			if wordOff >= 0 {
				return nil, syntaxErrf(off, nil, "unexpected list start (enclose in double quotes for literal)")
			}
			l, err := p.parseList()
			if err != nil {
				return nil, err
			}
			result = l
		default:
			if wordOff < 0 {
				wordOff = off
			}
			word = append(word, c)
		}
	}

	if result != nil {
		return result, nil
	}
	if wordOff < 0 {
		return nil, syntaxErrf(p.pos, nil, "empty value")
	}
	if !foundEnd {
		return nil, syntaxErrf(p.pos, nil, "unexpected end of input")
	}
	return parseBareword(string(trimTrailingSpace(word)), wordOff)
}

func trimTrailingSpace(b []byte) []byte {
	for len(b) > 0 && isSpace(b[len(b)-1]) {
		b = b[:len(b)-1]
	}
	return b
}

// parseBareword picks the tag type of an unquoted value.
func parseBareword(v string, off int) (Tag, error) {
	var suffix byte
	part := v
	switch last := v[len(v)-1] | 0x20; last {
	case 'b', 's', 'l', 'f', 'd':
		if isNumeric(v[:len(v)-1]) {
			suffix, part = last, v[:len(v)-1]
		}
	}
	if suffix == 0 && !isNumeric(part) {
		t, err := NewString(v)
		if err != nil {
			return nil, syntaxErrf(off, err, "invalid string")
		}
		return t, nil
	}

	fractional := strings.ContainsAny(part, ".eE")
	switch suffix {
	case 'f', 'd':
		return parseTextFloat(part, suffix, off)
	case 0:
		if fractional {
			return parseTextFloat(part, 'f', off)
		}
	default:
		// Some parsers quietly turn "1.5b" into a Float. We reject it so the
		// suffix always decides the type.
		if fractional {
			return nil, syntaxErrf(off, ErrValueRange, "%q is not an integer", v)
		}
	}

	n, err := strconv.ParseInt(part, 10, 64)
	if err != nil {
		return nil, syntaxErrf(off, ErrValueRange, "integer %q out of range", v)
	}
	var t Tag
	switch suffix {
	case 'b':
		t, err = NewByte(n)
	case 's':
		t, err = NewShort(n)
	case 'l':
		t = Long(n)
	default:
		t, err = NewInt(n)
	}
	if err != nil {
		return nil, syntaxErrf(off, err, "invalid value %q", v)
	}
	return t, nil
}

func parseTextFloat(part string, suffix byte, off int) (Tag, error) {
	bitSize := 64
	if suffix == 'f' {
		bitSize = 32
	}
	f, err := strconv.ParseFloat(part, bitSize)
	if err != nil {
		return nil, syntaxErrf(off, ErrValueRange, "number %q out of range", part)
	}
	if suffix == 'f' {
		return NewFloat(f), nil
	}
	return Double(f), nil
}

// isNumeric reports whether s is a decimal number with an optional sign,
// fraction and exponent, such as "-12", "+.5", "3." or "1e-7".
func isNumeric(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && isDigit(s[i]) {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// FormatText renders c in the form accepted by ParseText. ByteArray and
// IntArray have no text syntax and are written as lists of Byte and Int.
// Infinite and NaN floats cannot be written and fail with ErrValueRange.
func FormatText(c *Compound) (string, error) {
	f := textFormatter{visiting: visitSet{}}
	if err := f.writeCompound(c); err != nil {
		return "", err
	}
	return f.sb.String(), nil
}

type textFormatter struct {
	sb       strings.Builder
	visiting visitSet
}

func (f *textFormatter) writeCompound(c *Compound) error {
	if !f.visiting.enter(c) {
		return fmt.Errorf("%w: compound contains itself", ErrCyclicStructure)
	}
	defer f.visiting.leave(c)

	f.sb.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			f.sb.WriteByte(',')
		}
		if k == "" {
			return errors.New("nbt: empty key cannot be written as text")
		}
		if isBareKey(k) {
			f.sb.WriteString(k)
		} else {
			f.writeQuoted(k)
		}
		f.sb.WriteByte(':')
		if err := f.writeValue(c.vals[k]); err != nil {
			return fmt.Errorf("nbt: %.32q: %w", k, err)
		}
	}
	f.sb.WriteByte('}')
	return nil
}

func (f *textFormatter) writeList(l *List) error {
	if !f.visiting.enter(l) {
		return fmt.Errorf("%w: list contains itself", ErrCyclicStructure)
	}
	defer f.visiting.leave(l)

	f.sb.WriteByte('[')
	for i, t := range l.items {
		if i > 0 {
			f.sb.WriteByte(',')
		}
		if err := f.writeValue(t); err != nil {
			return err
		}
	}
	f.sb.WriteByte(']')
	return nil
}

func (f *textFormatter) writeValue(t Tag) error {
	switch t := t.(type) {
	case Byte:
		f.sb.WriteString(strconv.FormatInt(int64(t), 10))
		f.sb.WriteByte('b')
	case Short:
		f.sb.WriteString(strconv.FormatInt(int64(t), 10))
		f.sb.WriteByte('s')
	case Int:
		f.sb.WriteString(strconv.FormatInt(int64(t), 10))
	case Long:
		f.sb.WriteString(strconv.FormatInt(int64(t), 10))
		f.sb.WriteByte('l')
	case Float:
		return f.writeFloat(float64(t), 32, 'f')
	case Double:
		return f.writeFloat(float64(t), 64, 'd')
	case ByteArray:
		f.sb.WriteByte('[')
		for i, b := range t {
			if i > 0 {
				f.sb.WriteByte(',')
			}
			f.sb.WriteString(strconv.Itoa(int(int8(b))))
			f.sb.WriteByte('b')
		}
		f.sb.WriteByte(']')
	case String:
		f.writeQuoted(string(t))
	case IntArray:
		f.sb.WriteByte('[')
		for i, v := range t {
			if i > 0 {
				f.sb.WriteByte(',')
			}
			f.sb.WriteString(strconv.FormatInt(int64(v), 10))
		}
		f.sb.WriteByte(']')
	case *List:
		return f.writeList(t)
	case *Compound:
		return f.writeCompound(t)
	default:
		panic(fmt.Sprintf("nbt: unknown tag %T", t))
	}
	return nil
}

func (f *textFormatter) writeFloat(v float64, bitSize int, suffix byte) error {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return rangeErrf("%v has no text form", v)
	}
	f.sb.WriteString(strconv.FormatFloat(v, 'g', -1, bitSize))
	f.sb.WriteByte(suffix)
	return nil
}

func (f *textFormatter) writeQuoted(s string) {
	f.sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if c := s[i]; c == '"' || c == '\\' {
			f.sb.WriteByte('\\')
		}
		f.sb.WriteByte(s[i])
	}
	f.sb.WriteByte('"')
}

func isBareKey(k string) bool {
	for i := 0; i < len(k); i++ {
		switch c := k[i]; c {
		case '{', '}', '[', ']', ',', ':', '"', '\\':
			return false
		default:
			if isSpace(c) {
				return false
			}
		}
	}
	return true
}
