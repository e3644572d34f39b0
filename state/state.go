package state

import (
	"fmt"
	"interaction-lab/errors"
	"time"
)

// BareMarker prefixes a custom id that still has to be wrapped with its view's prefix.
const BareMarker = "\x00"

// State is one interaction's values for a Schema. Setters chain and keep the
// first error, which is reported by Err, Encode and CustomID.
type State struct {
	schema *Schema
	values map[string]any
	err    error
}

func (s *State) Schema() *Schema {
	return s.schema
}

func (s *State) Err() error {
	return s.err
}

// Set stores v under name after checking it against the field type. A nil v unsets the field.
func (s *State) Set(name string, v any) *State {
	if s.err != nil {
		return s
	}
	t, ok := s.schema.Lookup(name)
	if !ok {
		s.err = fmt.Errorf("%w: %q", errors.ErrUnknownField, name)
		return s
	}
	if v == nil {
		delete(s.values, name)
		return s
	}
	n, err := t.normalize(v)
	if err != nil {
		s.err = fmt.Errorf("field %q: %w", name, err)
		return s
	}
	s.values[name] = n
	return s
}

func (s *State) SetString(name, v string) *State { return s.Set(name, v) }
func (s *State) SetInt(name string, v int64) *State { return s.Set(name, v) }
func (s *State) SetBool(name string, v bool) *State { return s.Set(name, v) }
func (s *State) SetDate(name string, v time.Time) *State { return s.Set(name, v) }
func (s *State) SetEnum(name, literal string) *State { return s.Set(name, literal) }
func (s *State) SetChoice(name, handler string) *State { return s.Set(name, handler) }
func (s *State) SetArray(name string, v any) *State { return s.Set(name, v) }
func (s *State) SetObject(name string, v map[string]any) *State {
	return s.Set(name, v)
}

func (s *State) Unset(name string) *State {
	return s.Set(name, nil)
}

func (s *State) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

func (s *State) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

func (s *State) String(name string) (string, bool) {
	v, ok := s.values[name].(string)
	return v, ok
}

func (s *State) Int(name string) (int64, bool) {
	v, ok := s.values[name].(int64)
	return v, ok
}

func (s *State) Bool(name string) (bool, bool) {
	v, ok := s.values[name].(bool)
	return v, ok
}

func (s *State) Date(name string) (time.Time, bool) {
	v, ok := s.values[name].(time.Time)
	return v, ok
}

func (s *State) Enum(name string) (string, bool) {
	return s.String(name)
}

func (s *State) Choice(name string) (string, bool) {
	return s.String(name)
}

func (s *State) Array(name string) ([]any, bool) {
	v, ok := s.values[name].([]any)
	return v, ok
}

func (s *State) Object(name string) (map[string]any, bool) {
	v, ok := s.values[name].(map[string]any)
	return v, ok
}

// Values returns a copy of the set fields.
func (s *State) Values() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = deepCopy(v)
	}
	return out
}

func (s *State) Clone() *State {
	return &State{schema: s.schema, values: s.Values(), err: s.err}
}

func (s *State) Encode() (string, error) {
	return Encode(s)
}

// CustomID returns a bare reference to this state. The dispatch engine rewrites
// it under the prefix of the view answering the interaction.
func (s *State) CustomID() (string, error) {
	payload, err := Encode(s)
	if err != nil {
		return "", err
	}
	return BareMarker + payload, nil
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = deepCopy(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = deepCopy(item)
		}
		return out
	default:
		return v
	}
}
