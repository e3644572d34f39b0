package customid_test

import (
	"interaction-lab/customid"
	"interaction-lab/errors"
	"interaction-lab/state"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var counterSchema = state.MustSchema(state.Field("counter", state.Int()))

func TestEncode_Then_Parse(t *testing.T) {
	req := require.New(t)

	id, err := customid.Encode("s", counterSchema.New().SetInt("counter", 5))
	req.NoError(err)
	req.LessOrEqual(customid.Length(id), customid.MaxLength)

	prefix, payload, err := customid.Parse(id)
	req.NoError(err)
	req.Equal("s", prefix)

	decoded, err := counterSchema.Decode(payload)
	req.NoError(err)
	counter, ok := decoded.Int("counter")
	req.True(ok)
	req.Equal(int64(5), counter)

	// encode(decode(x)) == x
	again, err := customid.Encode(prefix, decoded)
	req.NoError(err)
	req.Equal(id, again)
}

func TestDecode_Uses_The_Schema_Of_The_Prefix(t *testing.T) {
	req := require.New(t)
	id, err := customid.Encode("s", counterSchema.New().SetInt("counter", 7))
	req.NoError(err)

	schemas := map[string]*state.Schema{"s": counterSchema}
	lookup := func(prefix string) (*state.Schema, bool) {
		s, ok := schemas[prefix]
		return s, ok
	}

	prefix, st, err := customid.Decode(id, lookup)
	req.NoError(err)
	req.Equal("s", prefix)
	req.Equal(map[string]any{"counter": int64(7)}, st.Values())

	other, err := customid.Build("unknown", "")
	req.NoError(err)
	_, _, err = customid.Decode(other, lookup)
	req.ErrorIs(err, errors.ErrUnknownView)
}

func TestParse_Rejects_Tampered_Ids(t *testing.T) {
	withoutMarker, err := state.Compress("s.5")
	require.NoError(t, err)
	withoutPrefix, err := state.Compress(customid.Marker + ".5")
	require.NoError(t, err)
	withoutSeparator, err := state.Compress(customid.Marker + "s")
	require.NoError(t, err)

	for name, id := range map[string]string{
		"plain text":        "settings:open",
		"empty":             "",
		"missing marker":    withoutMarker,
		"missing prefix":    withoutPrefix,
		"missing separator": withoutSeparator,
	} {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			_, _, err := customid.Parse(id)
			req.ErrorIs(err, errors.ErrInvalidEncodedCustomID)
		})
	}
}

func TestBuild_Fails_When_Too_Long(t *testing.T) {
	req := require.New(t)
	schema := state.MustSchema(state.Field("blob", state.String()))

	// Random-looking text does not compress.
	var b strings.Builder
	seed := uint32(7)
	for i := 0; i < 400; i++ {
		seed = seed*1664525 + 1013904223
		b.WriteByte(byte('!' + seed>>24%90))
	}

	_, err := customid.Encode("s", schema.New().SetString("blob", b.String()))
	req.ErrorIs(err, errors.ErrCustomIDTooLong)
}

func TestBuild_Rejects_Bad_Prefixes(t *testing.T) {
	req := require.New(t)
	_, err := customid.Build("", "x")
	req.ErrorIs(err, errors.ErrInvalidView)
	_, err = customid.Build("a.b", "x")
	req.ErrorIs(err, errors.ErrInvalidView)
}
