// Package state declares typed view state and packs it into the positional text carried by custom ids.
package state

import (
	"fmt"
	"interaction-lab/errors"
	"math"
	"reflect"
	"strconv"
	"time"
	"unicode/utf8"
)

type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindDate
	KindEnum
	KindChoice
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "boolean"
	case KindDate:
		return "date"
	case KindEnum:
		return "enum"
	case KindChoice:
		return "choice"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// FieldType is the declared type of one schema field.
// Values handed to a FieldType are canonicalized first: int64, bool, string,
// time.Time (UTC, millisecond precision), []any and map[string]any.
type FieldType interface {
	Kind() Kind
	normalize(v any) (any, error)
	write(w *writer, v any)
	read(p *parser) (any, error)
}

// FieldDef binds a name to a FieldType. Order inside a schema or object is the wire order.
type FieldDef struct {
	Name string
	Type FieldType
}

func Field(name string, t FieldType) FieldDef {
	return FieldDef{Name: name, Type: t}
}

type stringType struct{}

func String() FieldType { return stringType{} }

func (stringType) Kind() Kind { return KindString }

// Custom ids are text: bytes that are not UTF-8 would come back rejected.
func (stringType) normalize(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.String {
		return nil, fmt.Errorf("%w: expected string, got %T", errors.ErrInvalidFieldValue, v)
	}
	if !utf8.ValidString(rv.String()) {
		return nil, fmt.Errorf("%w: string is not valid utf-8", errors.ErrInvalidFieldValue)
	}
	return rv.String(), nil
}

func (stringType) write(w *writer, v any) {
	w.writeString(v.(string))
}

func (stringType) read(p *parser) (any, error) {
	s, err := p.readString()
	if err != nil {
		return nil, err
	}
	if !utf8.ValidString(s) {
		return nil, p.fail("string is not valid utf-8")
	}
	return s, nil
}

type intType struct{}

func Int() FieldType { return intType{} }

func (intType) Kind() Kind { return KindInt }

func (intType) normalize(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, fmt.Errorf("%w: expected integer, got nil", errors.ErrInvalidFieldValue)
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows int64", errors.ErrInvalidFieldValue, u)
		}
		return int64(u), nil
	default:
		return nil, fmt.Errorf("%w: expected integer, got %T", errors.ErrInvalidFieldValue, v)
	}
}

func (intType) write(w *writer, v any) {
	w.writeRaw(strconv.FormatInt(v.(int64), 36))
}

func (intType) read(p *parser) (any, error) {
	return p.readInt()
}

type boolType struct{}

func Bool() FieldType { return boolType{} }

func (boolType) Kind() Kind { return KindBool }

func (boolType) normalize(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Bool {
		return nil, fmt.Errorf("%w: expected boolean, got %T", errors.ErrInvalidFieldValue, v)
	}
	return rv.Bool(), nil
}

func (boolType) write(w *writer, v any) {
	if v.(bool) {
		w.writeRaw("1")
		return
	}
	w.writeRaw("0")
}

func (boolType) read(p *parser) (any, error) {
	switch raw := p.scalar(); raw {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return nil, p.fail("boolean %q", raw)
	}
}

type dateType struct{}

// Date stores an instant as epoch milliseconds. Sub-millisecond precision and zone are dropped.
func Date() FieldType { return dateType{} }

func (dateType) Kind() Kind { return KindDate }

func (dateType) normalize(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return time.UnixMilli(t.UnixMilli()).UTC(), nil
	case *time.Time:
		if t != nil {
			return time.UnixMilli(t.UnixMilli()).UTC(), nil
		}
	}
	return nil, fmt.Errorf("%w: expected time.Time, got %T", errors.ErrInvalidFieldValue, v)
}

func (dateType) write(w *writer, v any) {
	w.writeRaw(strconv.FormatInt(v.(time.Time).UnixMilli(), 36))
}

func (dateType) read(p *parser) (any, error) {
	ms, err := p.readInt()
	if err != nil {
		return nil, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

type enumType struct {
	literals []string
	index    map[string]int
}

// Enum accepts one of a fixed literal set. Only the literal's position is encoded,
// so appending literals is safe across deployments while reordering is not.
func Enum(literals ...string) FieldType {
	e := enumType{literals: append([]string(nil), literals...), index: make(map[string]int, len(literals))}
	for i, l := range literals {
		if _, dup := e.index[l]; !dup {
			e.index[l] = i
		}
	}
	return e
}

func (enumType) Kind() Kind { return KindEnum }

func (e enumType) Literals() []string {
	return append([]string(nil), e.literals...)
}

func (e enumType) normalize(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.String {
		return nil, fmt.Errorf("%w: expected enum literal, got %T", errors.ErrInvalidFieldValue, v)
	}
	if _, ok := e.index[rv.String()]; !ok {
		return nil, fmt.Errorf("%w: %q is not one of %v", errors.ErrInvalidFieldValue, rv.String(), e.literals)
	}
	return rv.String(), nil
}

func (e enumType) write(w *writer, v any) {
	w.writeRaw(strconv.FormatInt(int64(e.index[v.(string)]), 36))
}

func (e enumType) read(p *parser) (any, error) {
	i, err := p.readIndex(len(e.literals))
	if err != nil {
		return nil, err
	}
	return e.literals[i], nil
}

type arrayType struct {
	elem FieldType
}

func Array(elem FieldType) FieldType {
	return arrayType{elem: elem}
}

func (arrayType) Kind() Kind { return KindArray }

func (a arrayType) Elem() FieldType { return a.elem }

func (a arrayType) normalize(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, fmt.Errorf("%w: expected slice, got %T", errors.ErrInvalidFieldValue, v)
	}
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		n, err := a.elem.normalize(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func (a arrayType) write(w *writer, v any) {
	w.writeRaw("[")
	for i, item := range v.([]any) {
		if i > 0 {
			w.writeRaw(",")
		}
		a.elem.write(w, item)
	}
	w.writeRaw("]")
}

func (a arrayType) read(p *parser) (any, error) {
	if !p.consume('[') {
		return nil, p.fail("expected '['")
	}
	out := make([]any, 0)
	if p.consume(']') {
		return out, nil
	}
	for {
		if p.atFieldEnd(']') {
			return nil, p.fail("empty array element")
		}
		item, err := a.elem.read(p)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
		if p.consume(']') {
			return out, nil
		}
		if !p.consume(',') {
			return nil, p.fail("expected ',' or ']'")
		}
	}
}

type objectType struct {
	fields []FieldDef
}

// Object groups named fields. Its fields are positional like the top level of a schema.
func Object(fields ...FieldDef) FieldType {
	return objectType{fields: append([]FieldDef(nil), fields...)}
}

func (objectType) Kind() Kind { return KindObject }

func (o objectType) Fields() []FieldDef {
	return append([]FieldDef(nil), o.fields...)
}

func (o objectType) normalize(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("%w: expected map[string]any, got %T", errors.ErrInvalidFieldValue, v)
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		name := iter.Key().String()
		def, ok := findField(o.fields, name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", errors.ErrUnknownField, name)
		}
		item := iter.Value().Interface()
		if item == nil {
			continue
		}
		n, err := def.Type.normalize(item)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = n
	}
	return out, nil
}

func (o objectType) write(w *writer, v any) {
	w.writeRaw("{")
	w.writeFields(o.fields, v.(map[string]any))
	w.writeRaw("}")
}

func (o objectType) read(p *parser) (any, error) {
	if !p.consume('{') {
		return nil, p.fail("expected '{'")
	}
	out := make(map[string]any)
	if err := p.readFields(o.fields, out, '}'); err != nil {
		return nil, err
	}
	if !p.consume('}') {
		return nil, p.fail("expected '}'")
	}
	return out, nil
}

func findField(fields []FieldDef, name string) (FieldDef, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}
