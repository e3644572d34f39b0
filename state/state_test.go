package state

import (
	"interaction-lab/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type page string

func fullSchema(choices *ChoiceSet[string]) *Schema {
	return MustSchema(
		Field("name", String()),
		Field("count", Int()),
		Field("enabled", Bool()),
		Field("since", Date()),
		Field("page", Enum("general", "notifications", "privacy")),
		Field("action", choices),
		Field("tags", Array(String())),
		Field("filter", Object(
			Field("min", Int()),
			Field("max", Int()),
			Field("label", String()),
		)),
		Field("rows", Array(Object(Field("id", Int()), Field("seen", Bool())))),
	)
}

func testChoices() *ChoiceSet[string] {
	return NewChoiceSet[string]().Register("open", "A").Register("close", "B")
}

func TestState_RoundTrip(t *testing.T) {
	schema := fullSchema(testChoices())
	since := time.Date(2024, 3, 1, 12, 30, 0, 123_456_789, time.FixedZone("X", 3600))

	tests := []struct {
		name  string
		build func(s *State) *State
	}{
		{"empty state", func(s *State) *State { return s }},
		{"only first field", func(s *State) *State { return s.SetString("name", "alice") }},
		{"only last field", func(s *State) *State {
			return s.SetArray("rows", []map[string]any{{"id": 1}, {"seen": true}})
		}},
		{"gap in the middle", func(s *State) *State { return s.SetInt("count", -42).SetEnum("page", "privacy") }},
		{"empty string", func(s *State) *State { return s.SetString("name", "") }},
		{"special characters", func(s *State) *State { return s.SetString("name", `a,b[c]{d}\e\`) }},
		{"literal escape marker", func(s *State) *State { return s.SetString("name", `\e`) }},
		{"unicode", func(s *State) *State { return s.SetString("name", "héllo 世界 🎉") }},
		{"empty array and object", func(s *State) *State {
			return s.SetArray("tags", []string{}).SetObject("filter", map[string]any{})
		}},
		{"array with empty strings", func(s *State) *State { return s.SetArray("tags", []string{"", "x", ""}) }},
		{"partial object", func(s *State) *State {
			return s.SetObject("filter", map[string]any{"max": 10, "label": "top,10"})
		}},
		{"everything", func(s *State) *State {
			return s.SetString("name", "bob").
				SetInt("count", 1<<40).
				SetBool("enabled", false).
				SetDate("since", since).
				SetEnum("page", "notifications").
				SetChoice("action", "close").
				SetArray("tags", []page{"a", "b"}).
				SetObject("filter", map[string]any{"min": 0, "max": 99, "label": ""}).
				SetArray("rows", []map[string]any{{"id": 1, "seen": true}, {}})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			original := tt.build(schema.New())
			req.NoError(original.Err())

			payload, err := original.Encode()
			req.NoError(err)

			decoded, err := Decode(schema, payload)
			req.NoError(err)
			req.Equal(original.Values(), decoded.Values())

			again, err := decoded.Encode()
			req.NoError(err)
			req.Equal(payload, again)
		})
	}
}

func TestState_Encoding_Is_Positional(t *testing.T) {
	req := require.New(t)
	schema := MustSchema(Field("a", Int()), Field("b", Int()), Field("c", Int()))

	payload, err := schema.New().SetInt("b", 35).Encode()
	req.NoError(err)
	req.Equal(",z", payload)

	payload, err = schema.New().Encode()
	req.NoError(err)
	req.Equal("", payload)
}

func TestState_Dates_Are_Milliseconds_In_UTC(t *testing.T) {
	req := require.New(t)
	schema := MustSchema(Field("at", Date()))
	at := time.Date(2025, 1, 2, 3, 4, 5, 6_789_000, time.FixedZone("Y", -7200))

	st := schema.New().SetDate("at", at)
	payload, err := st.Encode()
	req.NoError(err)

	decoded, err := schema.Decode(payload)
	req.NoError(err)
	got, ok := decoded.Date("at")
	req.True(ok)
	req.True(got.Equal(at.Truncate(time.Millisecond)))
	req.Equal(time.UTC, got.Location())
}

func TestState_Choice_Is_Encoded_By_Registration_Index(t *testing.T) {
	req := require.New(t)
	schema := MustSchema(Field("action", NewChoiceSet[string]().Register("A", "handler-a").Register("B", "handler-b")))

	payload, err := schema.New().SetChoice("action", "B").Encode()
	req.NoError(err)
	req.Equal("1", payload)

	// Same registration order after a restart.
	restarted := NewChoiceSet[string]().Register("A", "handler-a").Register("B", "handler-b")
	decoded, err := MustSchema(Field("action", restarted)).Decode(payload)
	req.NoError(err)

	handler, ok := restarted.Resolve(decoded, "action")
	req.True(ok)
	req.Equal("handler-b", handler)
}

func TestState_Setters(t *testing.T) {
	schema := fullSchema(testChoices())

	t.Run("should keep the first error", func(t *testing.T) {
		req := require.New(t)
		st := schema.New().SetInt("missing", 1).SetString("name", "ok")
		req.ErrorIs(st.Err(), errors.ErrUnknownField)
		req.False(st.Has("name"))

		_, err := st.Encode()
		req.ErrorIs(err, errors.ErrUnknownField)
		_, err = st.CustomID()
		req.ErrorIs(err, errors.ErrUnknownField)
	})

	t.Run("should reject values of the wrong type", func(t *testing.T) {
		req := require.New(t)
		req.ErrorIs(schema.New().Set("count", "seven").Err(), errors.ErrInvalidFieldValue)
		req.ErrorIs(schema.New().SetEnum("page", "billing").Err(), errors.ErrInvalidFieldValue)
		req.ErrorIs(schema.New().SetChoice("action", "explode").Err(), errors.ErrInvalidFieldValue)
		req.ErrorIs(schema.New().SetArray("tags", []int{1}).Err(), errors.ErrInvalidFieldValue)
		req.ErrorIs(schema.New().SetObject("filter", map[string]any{"nope": 1}).Err(), errors.ErrUnknownField)
	})

	t.Run("should reject strings that are not utf-8", func(t *testing.T) {
		req := require.New(t)
		req.ErrorIs(schema.New().SetString("name", "ab\xff").Err(), errors.ErrInvalidFieldValue)
		req.ErrorIs(schema.New().SetArray("tags", []string{"ok", "\xc3"}).Err(), errors.ErrInvalidFieldValue)
		req.ErrorIs(schema.New().SetObject("filter", map[string]any{"label": "\xff"}).Err(), errors.ErrInvalidFieldValue)

		_, err := schema.New().SetString("name", "ab\xff").CustomID()
		req.ErrorIs(err, errors.ErrInvalidFieldValue)
	})

	t.Run("should unset with nil", func(t *testing.T) {
		req := require.New(t)
		st := schema.New().SetInt("count", 3).Unset("count")
		req.NoError(st.Err())
		req.False(st.Has("count"))
	})

	t.Run("should not share nested values between clones", func(t *testing.T) {
		req := require.New(t)
		st := schema.New().SetArray("tags", []string{"a"})
		clone := st.Clone()
		tags, _ := clone.Array("tags")
		tags[0] = "mutated"

		original, _ := st.Array("tags")
		req.Equal([]any{"a"}, original)
	})

	t.Run("should prefix bare custom ids", func(t *testing.T) {
		req := require.New(t)
		id, err := schema.New().SetInt("count", 5).CustomID()
		req.NoError(err)
		req.Equal(BareMarker+",5", id)
	})
}

func TestDecode_Rejects_Malformed_Payloads(t *testing.T) {
	schema := fullSchema(testChoices())

	for _, payload := range []string{
		",,,,,,,,,,",           // more positions than fields
		"a,ZZ",                 // non canonical number
		"a,1,2",                // boolean must be 0 or 1
		"a,,,,9",               // enum index out of range
		"a,,,,,5",              // choice index out of range
		"a,,,,,,[x",            // unterminated array
		"a,,,,,,[,]",           // empty array element
		"a,,,,,,,{1,2,3,4}",    // too many object positions
		`bad\q`,                // unknown escape
		"[a]",                  // array where a string is expected
		"a,-",                  // not a number
		"a,",                   // trailing empty position
		"a\xff",               // not utf-8
		",",                    // only empty positions
		"a,,,,,,,{1,}",         // trailing empty position inside an object
		"a,,,,,,,{1},",         // trailing empty position after an object
	} {
		t.Run(payload, func(t *testing.T) {
			req := require.New(t)
			_, err := Decode(schema, payload)
			req.ErrorIs(err, errors.ErrInvalidEncodedCustomID)
		})
	}
}

func TestNewSchema_Validation(t *testing.T) {
	req := require.New(t)

	_, err := NewSchema(Field("a", Int()), Field("a", String()))
	req.ErrorIs(err, errors.ErrInvalidSchema)

	_, err = NewSchema(Field("", Int()))
	req.ErrorIs(err, errors.ErrInvalidSchema)

	_, err = NewSchema(Field("o", Object(Field("x", Int()), Field("x", Int()))))
	req.ErrorIs(err, errors.ErrInvalidSchema)

	_, err = NewSchema(Field("e", Enum("a", "a")))
	req.ErrorIs(err, errors.ErrInvalidSchema)

	_, err = NewSchema(Field("e", Enum("ok", "\xff")))
	req.ErrorIs(err, errors.ErrInvalidSchema)

	req.Panics(func() {
		NewChoiceSet[int]().Register("x", 1).Register("x", 2)
	})
}
