package state

import (
	"fmt"
	"interaction-lab/errors"
	"unicode/utf8"
)

// Schema is the ordered field declaration owned by one view.
type Schema struct {
	fields []FieldDef
	index  map[string]int
}

// NewSchema validates field names (non-empty, unique per level) and types.
func NewSchema(fields ...FieldDef) (*Schema, error) {
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	s := &Schema{
		fields: append([]FieldDef(nil), fields...),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		s.index[f.Name] = i
	}
	return s, nil
}

// MustSchema is NewSchema for package level declarations.
func MustSchema(fields ...FieldDef) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func validateFields(fields []FieldDef) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return fmt.Errorf("%w: empty field name", errors.ErrInvalidSchema)
		}
		if f.Type == nil {
			return fmt.Errorf("%w: field %q has no type", errors.ErrInvalidSchema, f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: field %q declared twice", errors.ErrInvalidSchema, f.Name)
		}
		seen[f.Name] = struct{}{}
		if err := validateType(f.Type); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	return nil
}

func validateType(t FieldType) error {
	switch ft := t.(type) {
	case arrayType:
		if ft.elem == nil {
			return fmt.Errorf("%w: array without element type", errors.ErrInvalidSchema)
		}
		return validateType(ft.elem)
	case objectType:
		return validateFields(ft.fields)
	case enumType:
		if len(ft.literals) == 0 || len(ft.index) != len(ft.literals) {
			return fmt.Errorf("%w: enum literals must be unique and non-empty", errors.ErrInvalidSchema)
		}
		for _, l := range ft.literals {
			if !utf8.ValidString(l) {
				return fmt.Errorf("%w: enum literal %q is not valid utf-8", errors.ErrInvalidSchema, l)
			}
		}
	}
	return nil
}

func (s *Schema) Fields() []FieldDef {
	return append([]FieldDef(nil), s.fields...)
}

func (s *Schema) Lookup(name string) (FieldType, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i].Type, true
}

// New returns an empty State for this schema.
func (s *Schema) New() *State {
	return &State{schema: s, values: make(map[string]any)}
}

func (s *Schema) Decode(payload string) (*State, error) {
	return Decode(s, payload)
}

var empty = MustSchema()

// Empty is the schema of views that carry no state.
func Empty() *Schema {
	return empty
}
