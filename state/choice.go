package state

import (
	"fmt"
	"interaction-lab/errors"
	"reflect"
	"strconv"
)

// HandlerChoice is implemented by every ChoiceSet, whatever its handler type.
type HandlerChoice interface {
	FieldType
	HandlerFor(name string) (any, bool)
}

// ChoiceSet is a field type whose values are named handlers.
// Handlers are registered once at load time and encoded by registration index,
// so the registration order is part of the wire format: append, never reorder.
type ChoiceSet[H any] struct {
	names    []string
	handlers []H
	index    map[string]int
}

func NewChoiceSet[H any]() *ChoiceSet[H] {
	return &ChoiceSet[H]{index: make(map[string]int)}
}

// Register appends a handler. It panics on a duplicate name since choice sets
// are only built while views are declared.
func (c *ChoiceSet[H]) Register(name string, handler H) *ChoiceSet[H] {
	if _, dup := c.index[name]; dup {
		panic(fmt.Sprintf("%v: choice %q registered twice", errors.ErrInvalidSchema, name))
	}
	c.index[name] = len(c.names)
	c.names = append(c.names, name)
	c.handlers = append(c.handlers, handler)
	return c
}

func (c *ChoiceSet[H]) Kind() Kind { return KindChoice }

func (c *ChoiceSet[H]) Names() []string {
	return append([]string(nil), c.names...)
}

// Index returns the registration index of a handler name.
func (c *ChoiceSet[H]) Index(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

func (c *ChoiceSet[H]) Handler(name string) (H, bool) {
	var zero H
	i, ok := c.index[name]
	if !ok {
		return zero, false
	}
	return c.handlers[i], true
}

func (c *ChoiceSet[H]) HandlerFor(name string) (any, bool) {
	h, ok := c.Handler(name)
	if !ok {
		return nil, false
	}
	return h, true
}

// Resolve returns the handler selected by a choice field of s.
func (c *ChoiceSet[H]) Resolve(s *State, field string) (H, bool) {
	var zero H
	name, ok := s.Choice(field)
	if !ok {
		return zero, false
	}
	return c.Handler(name)
}

func (c *ChoiceSet[H]) normalize(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.String {
		return nil, fmt.Errorf("%w: expected choice name, got %T", errors.ErrInvalidFieldValue, v)
	}
	if _, ok := c.index[rv.String()]; !ok {
		return nil, fmt.Errorf("%w: choice %q is not registered", errors.ErrInvalidFieldValue, rv.String())
	}
	return rv.String(), nil
}

func (c *ChoiceSet[H]) write(w *writer, v any) {
	w.writeRaw(strconv.FormatInt(int64(c.index[v.(string)]), 36))
}

func (c *ChoiceSet[H]) read(p *parser) (any, error) {
	i, err := p.readIndex(len(c.names))
	if err != nil {
		return nil, err
	}
	return c.names[i], nil
}
