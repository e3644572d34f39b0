package views

import (
	"context"
	"fmt"
	"interaction-lab/domain"
	"interaction-lab/errors"
	"interaction-lab/runtime"
	"interaction-lab/state"
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	SettingsPrefix = "settings"

	maxTags      = 3
	maxTagLength = 12
	snoozeFor    = time.Hour
)

var (
	settingsPages = []string{"general", "notifications", "privacy"}
	weekdays      = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}
)

// Settings is a multi page settings panel. The draft being edited travels in the custom ids
// until "Save", which posts a summary through a deferred continuation.
func Settings() *runtime.View {
	actions := state.NewChoiceSet[runtime.Handler]()
	schema := state.MustSchema(
		state.Field("page", state.Enum(settingsPages...)),
		state.Field("enabled", state.Bool()),
		state.Field("quiet_until", state.Date()),
		state.Field("tags", state.Array(state.String())),
		state.Field("digest", state.Object(
			state.Field("day", state.Enum(weekdays...)),
			state.Field("hour", state.Int()),
		)),
		state.Field("action", actions),
	)

	actions.
		Register("page", settingsPage).
		Register("toggle", settingsToggle).
		Register("snooze", settingsSnooze).
		Register("digest", settingsDigest).
		Register("edit_tags", settingsEditTags).
		Register("save", settingsSave)

	return &runtime.View{
		Prefix: SettingsPrefix,
		Schema: schema,
		Command: &runtime.CommandSpec{
			Name:        "settings",
			Type:        domain.CommandChatInput,
			Description: "Edit your notification settings",
			Options: []runtime.OptionSpec{
				{Name: "page", Description: "Page to open", Type: runtime.OptionString, Autocomplete: true},
			},
		},
		OnCommand: func(_ context.Context, c *runtime.Context) (*runtime.Outcome, error) {
			st := c.State.SetBool("enabled", true)
			if opt, ok := c.Interaction.Data.Option("page"); ok {
				page := opt.StringValue()
				if !lo.Contains(settingsPages, page) {
					return nil, errors.User("Unknown page %q.", page)
				}
				st.SetEnum("page", page)
			}
			data, err := renderSettings(st, true)
			if err != nil {
				return nil, err
			}
			data.Flags = domain.FlagEphemeral
			return runtime.Reply(domain.MessageResponse(data)), nil
		},
		OnAutocomplete: func(_ context.Context, c *runtime.Context) (*runtime.Outcome, error) {
			focused, _ := c.Interaction.Data.Focused()
			typed := strings.ToLower(focused.StringValue())
			choices := lo.FilterMap(settingsPages, func(page string, _ int) (domain.AutocompleteChoice, bool) {
				return domain.AutocompleteChoice{Name: page, Value: page}, strings.HasPrefix(page, typed)
			})
			return runtime.Reply(domain.AutocompleteResponse(choices...)), nil
		},
		OnModal: settingsTagsSubmitted,
		WorstCase: func() *state.State {
			return schema.New().
				SetEnum("page", "notifications").
				SetBool("enabled", false).
				SetDate("quiet_until", time.Date(9999, 12, 31, 23, 59, 59, 999_000_000, time.UTC)).
				SetArray("tags", []string{"abcdefghijkl", "mnopqrstuvwx", "yz0123456789"}).
				SetObject("digest", map[string]any{"day": "sun", "hour": 23}).
				SetChoice("action", "edit_tags")
		},
	}
}

func settingsPage(_ context.Context, c *runtime.Context) (*runtime.Outcome, error) {
	values := c.Values()
	if len(values) != 1 || !lo.Contains(settingsPages, values[0]) {
		return nil, errors.User("Pick one of the pages.")
	}
	return settingsUpdate(c.State.SetEnum("page", values[0]))
}

func settingsToggle(_ context.Context, c *runtime.Context) (*runtime.Outcome, error) {
	enabled, _ := c.State.Bool("enabled")
	return settingsUpdate(c.State.SetBool("enabled", !enabled))
}

func settingsSnooze(_ context.Context, c *runtime.Context) (*runtime.Outcome, error) {
	if until, ok := c.State.Date("quiet_until"); ok && until.After(time.Now()) {
		return settingsUpdate(c.State.Unset("quiet_until"))
	}
	return settingsUpdate(c.State.SetDate("quiet_until", time.Now().Add(snoozeFor).Truncate(time.Minute)))
}

// settingsDigest moves the weekly digest to the day picked in the select menu, at 9 by default.
func settingsDigest(_ context.Context, c *runtime.Context) (*runtime.Outcome, error) {
	values := c.Values()
	if len(values) != 1 || !lo.Contains(weekdays, values[0]) {
		return nil, errors.User("Pick one day.")
	}
	digest, ok := c.State.Object("digest")
	if !ok {
		digest = map[string]any{"hour": 9}
	}
	digest["day"] = values[0]
	return settingsUpdate(c.State.SetObject("digest", digest))
}

func settingsEditTags(_ context.Context, c *runtime.Context) (*runtime.Outcome, error) {
	id, err := c.State.Clone().Unset("action").CustomID()
	if err != nil {
		return nil, err
	}
	tags, _ := c.State.Array("tags")
	current := strings.Join(lo.Map(tags, func(t any, _ int) string { return t.(string) }), ", ")
	return runtime.Reply(domain.ModalResponse(id, "Tags",
		domain.ActionRow(domain.TextInput("tags", fmt.Sprintf("Up to %d tags, comma separated", maxTags), 1, current)),
	)), nil
}

func settingsTagsSubmitted(_ context.Context, c *runtime.Context) (*runtime.Outcome, error) {
	raw := c.ModalValues()["tags"]
	tags := lo.Uniq(lo.Compact(lo.Map(strings.Split(raw, ","), func(t string, _ int) string {
		return strings.ToLower(strings.TrimSpace(t))
	})))
	if len(tags) > maxTags {
		return nil, errors.User("At most %d tags.", maxTags)
	}
	if long, found := lo.Find(tags, func(t string) bool { return len(t) > maxTagLength }); found {
		return nil, errors.User("Tag %q is longer than %d characters.", long, maxTagLength)
	}
	if len(tags) == 0 {
		return settingsUpdate(c.State.Unset("tags"))
	}
	return settingsUpdate(c.State.SetArray("tags", tags))
}

// settingsSave acknowledges at once, then publishes the summary and locks the panel.
func settingsSave(_ context.Context, c *runtime.Context) (*runtime.Outcome, error) {
	return c.Defer(domain.DeferredUpdate(), func(ctx context.Context, f *runtime.Followup) error {
		summary := describeSettings(f.State)
		if err := f.Send(ctx, &domain.ResponseData{Content: "Settings saved.\n" + summary, Flags: domain.FlagEphemeral}); err != nil {
			return err
		}
		data, err := renderSettings(f.State, false)
		if err != nil {
			return err
		}
		return f.EditOriginal(ctx, data)
	}, runtime.WithTimeout(time.Minute), runtime.WithTimeoutHook(func(ctx context.Context, f *runtime.Followup) {
		_ = f.Send(ctx, &domain.ResponseData{Content: "Saving took too long, please try again.", Flags: domain.FlagEphemeral})
	}))
}

func settingsUpdate(st *state.State) (*runtime.Outcome, error) {
	data, err := renderSettings(st, true)
	if err != nil {
		return nil, err
	}
	return runtime.Reply(domain.UpdateResponse(data)), nil
}

func describeSettings(st *state.State) string {
	var b strings.Builder
	enabled, _ := st.Bool("enabled")
	fmt.Fprintf(&b, "Notifications: %s\n", lo.Ternary(enabled, "on", "off"))
	if until, ok := st.Date("quiet_until"); ok {
		fmt.Fprintf(&b, "Quiet until: <t:%d:t>\n", until.Unix())
	}
	if tags, ok := st.Array("tags"); ok {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(lo.Map(tags, func(t any, _ int) string { return t.(string) }), ", "))
	}
	if digest, ok := st.Object("digest"); ok {
		if day, ok := digest["day"].(string); ok {
			hour, _ := digest["hour"].(int64)
			fmt.Fprintf(&b, "Digest: %s at %02d:00\n", day, hour)
		}
	}
	return b.String()
}

func renderSettings(st *state.State, editable bool) (*domain.ResponseData, error) {
	page, ok := st.Enum("page")
	if !ok {
		page = settingsPages[0]
	}
	idFor := func(action string) (string, error) {
		return st.Clone().SetChoice("action", action).CustomID()
	}

	data := &domain.ResponseData{
		Embeds: []domain.Embed{{Title: "Settings: " + page, Description: describeSettings(st)}},
	}
	if !editable {
		return data, nil
	}

	pageID, err := idFor("page")
	if err != nil {
		return nil, err
	}
	options := lo.Map(settingsPages, func(p string, _ int) domain.SelectOption {
		return domain.SelectOption{Label: p, Value: p, Default: p == page}
	})
	rows := []domain.Component{domain.ActionRow(domain.StringSelect(pageID, "Page", options...))}

	var buttons []domain.Component
	switch page {
	case "general":
		toggle, err := idFor("toggle")
		if err != nil {
			return nil, err
		}
		enabled, _ := st.Bool("enabled")
		buttons = append(buttons, domain.Button(toggle, lo.Ternary(enabled, "Disable", "Enable"), domain.ButtonSecondary))
	case "notifications":
		snooze, err := idFor("snooze")
		if err != nil {
			return nil, err
		}
		tags, err := idFor("edit_tags")
		if err != nil {
			return nil, err
		}
		digest, err := idFor("digest")
		if err != nil {
			return nil, err
		}
		buttons = append(buttons,
			domain.Button(snooze, "Snooze 1h", domain.ButtonSecondary),
			domain.Button(tags, "Edit tags", domain.ButtonSecondary),
		)
		days := lo.Map(weekdays, func(d string, _ int) domain.SelectOption {
			return domain.SelectOption{Label: d, Value: d}
		})
		rows = append(rows, domain.ActionRow(domain.StringSelect(digest, "Weekly digest day", days...)))
	case "privacy":
		// Nothing to edit yet besides saving.
	}
	save, err := idFor("save")
	if err != nil {
		return nil, err
	}
	buttons = append(buttons, domain.Button(save, "Save", domain.ButtonSuccess))
	return &domain.ResponseData{
		Embeds:     data.Embeds,
		Components: append(rows, domain.ActionRow(buttons...)),
	}, nil
}
