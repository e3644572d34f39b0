package runtime

import (
	"fmt"
	"interaction-lab/customid"
	"interaction-lab/domain"
	"interaction-lab/errors"
	"interaction-lab/state"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"user error shown as is", fmt.Errorf("save: %w", errors.User("Name is taken")), "Name is taken"},
		{"missing permissions", fmt.Errorf("edit: %w", errors.ErrMissingPermissions), messagePermissions},
		{"tampered custom id", errors.ErrInvalidEncodedCustomID, messageOutdated},
		{"removed view", errors.ErrUnknownView, messageOutdated},
		{"timeout", errors.ErrOffloadTimeout, messageTimeout},
		{"anything else", fmt.Errorf("database is down"), messageGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := RenderError(tt.err, false)

			require.Equal(t, tt.want, data.Content)
			require.Equal(t, domain.FlagEphemeral, data.Flags)
		})
	}

	t.Run("should append details when verbose", func(t *testing.T) {
		data := RenderError(fmt.Errorf("database is down"), true)

		require.Contains(t, data.Content, messageGeneric)
		require.Contains(t, data.Content, "database is down")
	})

	t.Run("should never add details to user errors", func(t *testing.T) {
		require.Equal(t, "Nope", RenderError(errors.User("Nope"), true).Content)
	})
}

func TestRewriteResponse(t *testing.T) {
	req := require.New(t)
	schema := state.MustSchema(state.Field("n", state.Int()))
	bare, err := schema.New().SetInt("n", 3).CustomID()
	req.NoError(err)
	foreign, err := customid.Build("other", "9")
	req.NoError(err)

	original := domain.ModalResponse(bare, "Edit",
		domain.ActionRow(domain.Button(bare, "Go", domain.ButtonPrimary), domain.Button(foreign, "Elsewhere", domain.ButtonSecondary)),
		domain.ActionRow(domain.LinkButton("https://example.org", "Docs")),
	)

	got, err := rewriteResponse("v", original)
	req.NoError(err)

	prefix, payload, err := customid.Parse(got.Data.CustomID)
	req.NoError(err)
	req.Equal("v", prefix)
	req.Equal("3", payload)

	row := got.Data.Components[0].Components
	prefix, _, err = customid.Parse(row[0].CustomID)
	req.NoError(err)
	req.Equal("v", prefix)
	// Ids already built for another view are left alone.
	req.Equal(foreign, row[1].CustomID)
	req.Empty(got.Data.Components[1].Components[0].CustomID)

	// The handler's response is not mutated.
	req.Equal(bare, original.Data.CustomID)
	req.Equal(bare, original.Data.Components[0].Components[0].CustomID)

	nilResp, err := rewriteResponse("v", nil)
	req.NoError(err)
	req.Nil(nilResp)
}
