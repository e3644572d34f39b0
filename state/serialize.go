package state

import (
	"fmt"
	"interaction-lab/errors"
	"strconv"
	"strings"
)

// Wire grammar, fields in declaration order:
//
//	fields  = [token] { "," [token] }      trailing unset fields are dropped
//	token   = scalar | "[" [token {"," token}] "]" | "{" fields "}"
//	scalar  = escaped text, "\e" being the empty string
const (
	escapeChar  = '\\'
	emptyString = `\e`
)

func isSpecial(c byte) bool {
	switch c {
	case escapeChar, ',', '[', ']', '{', '}':
		return true
	}
	return false
}

// Encode serializes the set fields of s positionally.
func Encode(s *State) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	w := &writer{}
	w.writeFields(s.schema.fields, s.values)
	return w.String(), nil
}

// Decode rebuilds a State from the output of Encode. Anything else fails with ErrInvalidEncodedCustomID.
func Decode(schema *Schema, payload string) (*State, error) {
	st := schema.New()
	p := &parser{src: payload}
	if err := p.readFields(schema.fields, st.values, 0); err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.fail("unexpected trailing data")
	}
	return st, nil
}

type writer struct {
	strings.Builder
}

func (w *writer) writeRaw(s string) {
	w.WriteString(s)
}

func (w *writer) writeString(s string) {
	if s == "" {
		w.WriteString(emptyString)
		return
	}
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i]) {
			w.WriteByte(escapeChar)
		}
		w.WriteByte(s[i])
	}
}

func (w *writer) writeFields(fields []FieldDef, values map[string]any) {
	last := -1
	for i, f := range fields {
		if _, ok := values[f.Name]; ok {
			last = i
		}
	}
	for i := 0; i <= last; i++ {
		if i > 0 {
			w.WriteByte(',')
		}
		if v, ok := values[fields[i].Name]; ok {
			fields[i].Type.write(w, v)
		}
	}
}

type parser struct {
	src string
	pos int
}

func (p *parser) fail(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d", errors.ErrInvalidEncodedCustomID, fmt.Sprintf(format, args...), p.pos)
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) consume(c byte) bool {
	if !p.eof() && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

// atEnd reports the end of the current field list; closing is 0 at top level.
func (p *parser) atEnd(closing byte) bool {
	if p.eof() {
		return true
	}
	return closing != 0 && p.src[p.pos] == closing
}

func (p *parser) atFieldEnd(closing byte) bool {
	return p.atEnd(closing) || p.src[p.pos] == ','
}

// readFields accepts only what writeFields produces: a list never ends with an empty position.
func (p *parser) readFields(fields []FieldDef, values map[string]any, closing byte) error {
	if p.atEnd(closing) {
		return nil
	}
	empty := false
	for i, f := range fields {
		if i > 0 {
			if p.atEnd(closing) {
				break
			}
			if !p.consume(',') {
				return p.fail("expected ','")
			}
		}
		if p.atFieldEnd(closing) {
			empty = true
			continue
		}
		v, err := f.Type.read(p)
		if err != nil {
			return err
		}
		values[f.Name] = v
		empty = false
	}
	if !p.atEnd(closing) {
		return p.fail("more positions than declared fields")
	}
	if empty {
		return p.fail("trailing empty position")
	}
	return nil
}

// scalar returns the raw, still escaped, text up to the next unescaped delimiter.
func (p *parser) scalar() string {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		if c == escapeChar && p.pos+1 < len(p.src) {
			p.pos += 2
			continue
		}
		if c == ',' || c == ']' || c == '}' || c == '[' || c == '{' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) readString() (string, error) {
	raw := p.scalar()
	if raw == emptyString {
		return "", nil
	}
	if raw == "" {
		return "", p.fail("missing string")
	}
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != escapeChar {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(raw) || !isSpecial(raw[i+1]) {
			return "", p.fail("bad escape sequence")
		}
		i++
		b.WriteByte(raw[i])
	}
	return b.String(), nil
}

func (p *parser) readInt() (int64, error) {
	raw := p.scalar()
	n, err := strconv.ParseInt(raw, 36, 64)
	if err != nil {
		return 0, p.fail("number %q", raw)
	}
	// Only canonical forms round trip.
	if strconv.FormatInt(n, 36) != raw {
		return 0, p.fail("non canonical number %q", raw)
	}
	return n, nil
}

func (p *parser) readIndex(size int) (int, error) {
	n, err := p.readInt()
	if err != nil {
		return 0, err
	}
	if n < 0 || n >= int64(size) {
		return 0, p.fail("index %d out of range", n)
	}
	return int(n), nil
}
