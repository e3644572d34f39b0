// Package customid builds and parses the opaque identifiers attached to interactive components.
//
// An id is the compression of Marker + prefix + "." + payload. The marker rides
// inside the compressed unit, so strings that were never produced here are rejected
// before any field is decoded, and the prefix comes back without touching the schema.
package customid

import (
	"fmt"
	"interaction-lab/errors"
	"interaction-lab/state"
	"strings"
	"unicode/utf16"
)

const (
	// MaxLength is the platform limit, in UTF-16 units.
	MaxLength = 100
	Marker    = "\x01"
	separator = "."
)

// Build packs prefix and serialized payload into a custom id.
func Build(prefix, payload string) (string, error) {
	if prefix == "" || strings.Contains(prefix, separator) {
		return "", fmt.Errorf("%w: prefix %q", errors.ErrInvalidView, prefix)
	}
	id, err := state.Compress(Marker + prefix + separator + payload)
	if err != nil {
		return "", err
	}
	if n := Length(id); n > MaxLength {
		return "", fmt.Errorf("%w: %d units for prefix %q (max %d)", errors.ErrCustomIDTooLong, n, prefix, MaxLength)
	}
	return id, nil
}

// Parse returns the view prefix and the serialized payload of a custom id.
func Parse(id string) (prefix, payload string, err error) {
	text, err := state.Decompress(id)
	if err != nil {
		return "", "", err
	}
	rest, ok := strings.CutPrefix(text, Marker)
	if !ok {
		return "", "", fmt.Errorf("%w: missing format marker", errors.ErrInvalidEncodedCustomID)
	}
	prefix, payload, ok = strings.Cut(rest, separator)
	if !ok || prefix == "" {
		return "", "", fmt.Errorf("%w: missing prefix", errors.ErrInvalidEncodedCustomID)
	}
	return prefix, payload, nil
}

// Encode serializes s and builds its custom id under prefix.
func Encode(prefix string, s *state.State) (string, error) {
	payload, err := s.Encode()
	if err != nil {
		return "", err
	}
	return Build(prefix, payload)
}

// Decode parses id and decodes its payload with the schema registered for its prefix.
func Decode(id string, schemaFor func(prefix string) (*state.Schema, bool)) (string, *state.State, error) {
	prefix, payload, err := Parse(id)
	if err != nil {
		return "", nil, err
	}
	schema, ok := schemaFor(prefix)
	if !ok {
		return prefix, nil, fmt.Errorf("%w: prefix %q", errors.ErrUnknownView, prefix)
	}
	st, err := schema.Decode(payload)
	if err != nil {
		return prefix, nil, err
	}
	return prefix, st, nil
}

// Length counts UTF-16 units, the unit the platform limit is expressed in.
func Length(id string) int {
	return len(utf16.Encode([]rune(id)))
}
