package views

import (
	"context"
	"fmt"
	"interaction-lab/domain"
	"interaction-lab/errors"
	"interaction-lab/runtime"
	"interaction-lab/state"
	"strings"
)

// worstTopic has no repetition deflate could exploit.
const worstTopic = "Qz7!kLmN@#wE5rT%uI8oP&aS2dF*gH3jXc9VbY0^"

const (
	AnnouncementPrefix = "ann"

	// In bytes: the topic travels in every custom id of the message.
	maxTopicLength = 40
)

// Announcement is a template view: the process posts it on its own with Engine.Send,
// and anyone can acknowledge it.
func Announcement() *runtime.View {
	actions := state.NewChoiceSet[runtime.Handler]()
	schema := state.MustSchema(
		state.Field("topic", state.String()),
		state.Field("acks", state.Int()),
		state.Field("last", state.String()),
		state.Field("action", actions),
	)

	actions.Register("ack", func(_ context.Context, c *runtime.Context) (*runtime.Outcome, error) {
		invoker := c.Interaction.Invoker()
		if invoker == nil {
			return nil, errors.User("Only guild members can acknowledge.")
		}
		if last, _ := c.State.String("last"); last == invoker.ID {
			return nil, errors.User("You already acknowledged this.")
		}
		acks, _ := c.State.Int("acks")
		data, err := renderAnnouncement(c.State.SetInt("acks", acks+1).SetString("last", invoker.ID))
		if err != nil {
			return nil, err
		}
		return runtime.Reply(domain.UpdateResponse(data)), nil
	})

	return &runtime.View{
		Prefix: AnnouncementPrefix,
		Schema: schema,
		Command: &runtime.CommandSpec{
			Name:        "announce",
			Type:        domain.CommandChatInput,
			Description: "Post an announcement members can acknowledge",
			Options: []runtime.OptionSpec{
				{Name: "topic", Description: "What it is about", Type: runtime.OptionString, Required: true},
			},
		},
		OnCommand: func(_ context.Context, c *runtime.Context) (*runtime.Outcome, error) {
			opt, _ := c.Interaction.Data.Option("topic")
			st, err := AnnouncementState(c.State, opt.StringValue())
			if err != nil {
				return nil, err
			}
			data, err := renderAnnouncement(st)
			if err != nil {
				return nil, err
			}
			return runtime.Reply(domain.MessageResponse(data)), nil
		},
		OnSend: func(_ context.Context, c *runtime.SendContext) (*domain.ResponseData, error) {
			return renderAnnouncement(c.State)
		},
		WorstCase: func() *state.State {
			return schema.New().
				SetString("topic", worstTopic).
				SetInt("acks", 1<<40).
				SetString("last", maxSnowflake).
				SetChoice("action", "ack")
		},
	}
}

// AnnouncementState fills st with a validated topic.
func AnnouncementState(st *state.State, topic string) (*state.State, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errors.User("The topic cannot be empty.")
	}
	if len(topic) > maxTopicLength {
		return nil, errors.User("The topic is too long, keep it under %d letters.", maxTopicLength)
	}
	st.SetString("topic", topic)
	return st, st.Err()
}

func renderAnnouncement(st *state.State) (*domain.ResponseData, error) {
	topic, _ := st.String("topic")
	acks, _ := st.Int("acks")
	ack, err := st.Clone().SetChoice("action", "ack").CustomID()
	if err != nil {
		return nil, err
	}
	content := fmt.Sprintf("📣 **%s**\nAcknowledged by %d", topic, acks)
	if last, ok := st.String("last"); ok {
		content += fmt.Sprintf(", last by <@%s>", last)
	}
	return &domain.ResponseData{
		Content:    content,
		Components: []domain.Component{domain.ActionRow(domain.Button(ack, "Got it", domain.ButtonPrimary))},
	}, nil
}
