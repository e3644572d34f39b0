package views

import (
	"context"
	"fmt"
	"interaction-lab/contract"
	"interaction-lab/customid"
	"interaction-lab/domain"
	"interaction-lab/mocks"
	"interaction-lab/runtime"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newEngine(t *testing.T, rest contract.IRestClient, offloader *runtime.Offloader) *runtime.Engine {
	t.Helper()
	registry := runtime.NewRegistry()
	require.NoError(t, registry.Register(All()...))
	return runtime.NewEngine(slog.Default(), registry, rest, offloader, false)
}

func member(id string) *domain.Member {
	return &domain.Member{User: &domain.User{ID: id, Username: "user" + id}}
}

func slash(name string, userID string, options ...domain.CommandOption) *domain.Interaction {
	return &domain.Interaction{
		ID:     "i-cmd",
		Type:   domain.InteractionCommand,
		Token:  "tok",
		Member: member(userID),
		Data:   &domain.InteractionData{Name: name, Type: domain.CommandChatInput, Options: options},
	}
}

func press(customID, userID string, values ...string) *domain.Interaction {
	return &domain.Interaction{
		ID:     "i-click",
		Type:   domain.InteractionComponent,
		Token:  "tok",
		Member: member(userID),
		Data:   &domain.InteractionData{CustomID: customID, Values: values},
	}
}

// find returns the custom id of the first component with label, or of the select with placeholder.
func find(t *testing.T, data *domain.ResponseData, label string) string {
	t.Helper()
	for _, row := range data.Components {
		for _, c := range row.Components {
			if c.Label == label || c.Placeholder == label {
				return c.CustomID
			}
		}
	}
	require.Failf(t, "component not found", "%q", label)
	return ""
}

func TestAll_Fit_The_Custom_ID_Budget(t *testing.T) {
	req := require.New(t)
	registry := runtime.NewRegistry()
	req.NoError(registry.Register(All()...))

	req.NoError(registry.VerifyBudgets())
	for _, v := range registry.Views() {
		n, err := v.WorstCaseLength()
		req.NoError(err)
		req.LessOrEqual(n, customid.MaxLength, v.Prefix)
	}
	req.Len(registry.Commands(), 3)
}

func TestCounter(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	e := newEngine(t, nil, nil)

	outcome := e.Handle(ctx, slash("counter", "1", domain.CommandOption{Name: "start", Value: float64(5)}))
	req.Equal("Count: **5**", outcome.Response.Data.Content)

	outcome = e.Handle(ctx, press(find(t, outcome.Response.Data, "+1"), "1"))
	req.Equal("Count: **6**", outcome.Response.Data.Content)

	t.Run("should refuse clicks from someone else", func(t *testing.T) {
		other := e.Handle(ctx, press(find(t, outcome.Response.Data, "+1"), "2"))

		require.Equal(t, "Only <@1> can use this counter.", other.Response.Data.Content)
		require.Equal(t, domain.FlagEphemeral, other.Response.Data.Flags)
	})

	outcome = e.Handle(ctx, press(find(t, outcome.Response.Data, "-1"), "1"))
	req.Equal("Count: **5**", outcome.Response.Data.Content)

	outcome = e.Handle(ctx, press(find(t, outcome.Response.Data, "Reset"), "1"))
	req.Equal("Count: **0**", outcome.Response.Data.Content)

	t.Run("should refuse a start that is not a whole 64-bit number", func(t *testing.T) {
		for _, start := range []float64{2.5, 1e300, -1e19, 1 << 63} {
			refused := e.Handle(ctx, slash("counter", "1", domain.CommandOption{Name: "start", Value: start}))

			require.Equal(t, "Start must be a whole number that fits in 64 bits.", refused.Response.Data.Content, "start %v", start)
			require.Equal(t, domain.FlagEphemeral, refused.Response.Data.Flags)
		}
	})

	t.Run("should accept the lowest 64-bit start", func(t *testing.T) {
		accepted := e.Handle(ctx, slash("counter", "1", domain.CommandOption{Name: "start", Value: float64(math.MinInt64)}))

		require.Equal(t, fmt.Sprintf("Count: **%d**", int64(math.MinInt64)), accepted.Response.Data.Content)
	})
}

func TestSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("should walk through pages and edits", func(t *testing.T) {
		req := require.New(t)
		e := newEngine(t, nil, nil)

		outcome := e.Handle(ctx, slash("settings", "1"))
		req.Equal(domain.FlagEphemeral, outcome.Response.Data.Flags)
		req.Equal("Settings: general", outcome.Response.Data.Embeds[0].Title)

		outcome = e.Handle(ctx, press(find(t, outcome.Response.Data, "Disable"), "1"))
		req.Contains(outcome.Response.Data.Embeds[0].Description, "Notifications: off")

		outcome = e.Handle(ctx, press(find(t, outcome.Response.Data, "Page"), "1", "notifications"))
		req.Equal("Settings: notifications", outcome.Response.Data.Embeds[0].Title)
		// Toggling survived the page change.
		req.Contains(outcome.Response.Data.Embeds[0].Description, "Notifications: off")

		outcome = e.Handle(ctx, press(find(t, outcome.Response.Data, "Weekly digest day"), "1", "fri"))
		req.Contains(outcome.Response.Data.Embeds[0].Description, "Digest: fri at 09:00")

		outcome = e.Handle(ctx, press(find(t, outcome.Response.Data, "Snooze 1h"), "1"))
		req.Contains(outcome.Response.Data.Embeds[0].Description, "Quiet until")

		// Edit tags opens a modal whose submission comes back to this view
		modal := e.Handle(ctx, press(find(t, outcome.Response.Data, "Edit tags"), "1"))
		req.Equal(domain.ResponseModal, modal.Response.Type)
		prefix, _, err := customid.Parse(modal.Response.Data.CustomID)
		req.NoError(err)
		req.Equal(SettingsPrefix, prefix)

		submitted := e.Handle(ctx, &domain.Interaction{
			Type:   domain.InteractionModalSubmit,
			Member: member("1"),
			Data: &domain.InteractionData{
				CustomID: modal.Response.Data.CustomID,
				Components: []domain.Component{domain.ActionRow(
					domain.TextInput("tags", "Tags", 1, " Go, rust ,go,"),
				)},
			},
		})
		req.Equal(domain.ResponseUpdateMessage, submitted.Response.Type)
		req.Contains(submitted.Response.Data.Embeds[0].Description, "Tags: go, rust")
		req.Contains(submitted.Response.Data.Embeds[0].Description, "Digest: fri at 09:00")
	})

	t.Run("should reject too many tags", func(t *testing.T) {
		req := require.New(t)
		e := newEngine(t, nil, nil)
		view := Settings()
		id, err := runtime.CustomIDFor(view, view.NewState())
		req.NoError(err)

		outcome := e.Handle(ctx, &domain.Interaction{
			Type: domain.InteractionModalSubmit,
			Data: &domain.InteractionData{
				CustomID:   id,
				Components: []domain.Component{domain.ActionRow(domain.TextInput("tags", "Tags", 1, "a,b,c,d"))},
			},
		})

		req.Equal("At most 3 tags.", outcome.Response.Data.Content)
	})

	t.Run("should complete page names", func(t *testing.T) {
		req := require.New(t)
		e := newEngine(t, nil, nil)
		in := slash("settings", "1", domain.CommandOption{Name: "page", Value: "no", Focused: true})
		in.Type = domain.InteractionAutocomplete

		outcome := e.Handle(ctx, in)

		req.Equal(domain.ResponseAutocompleteResult, outcome.Response.Type)
		req.Equal([]domain.AutocompleteChoice{{Name: "notifications", Value: "notifications"}}, outcome.Response.Data.Choices)
	})

	t.Run("should reject an unknown page option", func(t *testing.T) {
		e := newEngine(t, nil, nil)

		outcome := e.Handle(ctx, slash("settings", "1", domain.CommandOption{Name: "page", Value: "billing"}))

		require.Equal(t, `Unknown page "billing".`, outcome.Response.Data.Content)
	})

	t.Run("should save in a continuation", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		rest := mocks.NewMockIRestClient(ctrl)
		bg := runtime.NewBackground(slog.Default())
		offloader := runtime.NewOffloader(slog.Default(), rest, bg, nil, time.Second, false)
		e := newEngine(t, rest, offloader)

		panel := e.Handle(ctx, slash("settings", "1"))
		outcome := e.Handle(ctx, press(find(t, panel.Response.Data, "Save"), "1"))
		req.True(outcome.Deferred())
		req.Equal(domain.ResponseDeferredUpdateMessage, outcome.Response.Type)

		gomock.InOrder(
			rest.EXPECT().
				CreateFollowup(gomock.Any(), "tok", gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, data *domain.ResponseData) error {
					req.Contains(data.Content, "Settings saved.")
					return nil
				}),
			rest.EXPECT().
				EditOriginal(gomock.Any(), "tok", gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, data *domain.ResponseData) error {
					req.Empty(data.Components)
					return nil
				}),
		)

		outcome.Launch()
		req.NoError(bg.Wait(ctx))
	})
}

func TestAnnouncement(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	rest := mocks.NewMockIRestClient(ctrl)
	e := newEngine(t, rest, nil)
	view, ok := e.Registry().FindByPrefix(AnnouncementPrefix)
	req.True(ok)

	var posted *domain.ResponseData
	rest.EXPECT().
		CreateMessage(gomock.Any(), "c-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, data *domain.ResponseData) (string, error) {
			posted = data
			return "m-1", nil
		})

	st, err := AnnouncementState(view.NewState(), "  Release 2.0  ")
	req.NoError(err)
	id, err := e.Send(ctx, view, "c-1", st)
	req.NoError(err)
	req.Equal("m-1", id)
	req.Contains(posted.Content, "**Release 2.0**")

	outcome := e.Handle(ctx, press(find(t, posted, "Got it"), "7"))
	req.Contains(outcome.Response.Data.Content, "Acknowledged by 1, last by <@7>")

	again := e.Handle(ctx, press(find(t, outcome.Response.Data, "Got it"), "7"))
	req.Equal("You already acknowledged this.", again.Response.Data.Content)

	_, err = AnnouncementState(view.NewState(), "   ")
	req.Error(err)
	_, err = AnnouncementState(view.NewState(), worstTopic+"!")
	req.Error(err)
}
