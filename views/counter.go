package views

import (
	"context"
	"fmt"
	"interaction-lab/domain"
	"interaction-lab/errors"
	"interaction-lab/runtime"
	"interaction-lab/state"
	"math"
)

const CounterPrefix = "counter"

// Counter is a per-message counter. The count and the user allowed to click live in
// the buttons' custom ids, nothing is stored server side.
func Counter() *runtime.View {
	actions := state.NewChoiceSet[runtime.Handler]()
	schema := state.MustSchema(
		state.Field("count", state.Int()),
		state.Field("owner", state.String()),
		state.Field("action", actions),
	)

	actions.
		Register("increment", counterStep(1)).
		Register("decrement", counterStep(-1)).
		Register("reset", func(_ context.Context, c *runtime.Context) (*runtime.Outcome, error) {
			if err := checkOwner(c); err != nil {
				return nil, err
			}
			return counterUpdate(c.State.Unset("count"))
		})

	return &runtime.View{
		Prefix: CounterPrefix,
		Schema: schema,
		Command: &runtime.CommandSpec{
			Name:        "counter",
			Type:        domain.CommandChatInput,
			Description: "Start a counter only you can change",
			Options: []runtime.OptionSpec{
				{Name: "start", Description: "Initial value", Type: runtime.OptionInteger},
			},
		},
		OnCommand: func(_ context.Context, c *runtime.Context) (*runtime.Outcome, error) {
			st := c.State
			if opt, ok := c.Interaction.Data.Option("start"); ok {
				// JSON numbers decode as float64.
				if start, ok := opt.Value.(float64); ok {
					if math.Trunc(start) != start || start < math.MinInt64 || start >= 1<<63 {
						return nil, errors.User("Start must be a whole number that fits in 64 bits.")
					}
					st.SetInt("count", int64(start))
				}
			}
			if invoker := c.Interaction.Invoker(); invoker != nil {
				st.SetString("owner", invoker.ID)
			}
			data, err := renderCounter(st)
			if err != nil {
				return nil, err
			}
			return runtime.Reply(domain.MessageResponse(data)), nil
		},
		WorstCase: func() *state.State {
			return schema.New().
				SetInt("count", math.MinInt64).
				SetString("owner", maxSnowflake).
				SetChoice("action", "decrement")
		},
	}
}

func counterStep(delta int64) runtime.Handler {
	return func(_ context.Context, c *runtime.Context) (*runtime.Outcome, error) {
		if err := checkOwner(c); err != nil {
			return nil, err
		}
		n, _ := c.State.Int("count")
		if (delta > 0 && n > math.MaxInt64-delta) || (delta < 0 && n < math.MinInt64-delta) {
			return nil, errors.User("The counter cannot go any further.")
		}
		return counterUpdate(c.State.SetInt("count", n+delta))
	}
}

func counterUpdate(st *state.State) (*runtime.Outcome, error) {
	data, err := renderCounter(st)
	if err != nil {
		return nil, err
	}
	return runtime.Reply(domain.UpdateResponse(data)), nil
}

func checkOwner(c *runtime.Context) error {
	owner, ok := c.State.String("owner")
	if !ok {
		return nil
	}
	if invoker := c.Interaction.Invoker(); invoker == nil || invoker.ID != owner {
		return errors.User("Only <@%s> can use this counter.", owner)
	}
	return nil
}

func renderCounter(st *state.State) (*domain.ResponseData, error) {
	n, _ := st.Int("count")
	ids := make(map[string]string, 3)
	for _, action := range []string{"increment", "decrement", "reset"} {
		id, err := st.Clone().SetChoice("action", action).CustomID()
		if err != nil {
			return nil, err
		}
		ids[action] = id
	}
	return &domain.ResponseData{
		Content: fmt.Sprintf("Count: **%d**", n),
		Components: []domain.Component{domain.ActionRow(
			domain.Button(ids["decrement"], "-1", domain.ButtonSecondary),
			domain.Button(ids["increment"], "+1", domain.ButtonPrimary),
			domain.Button(ids["reset"], "Reset", domain.ButtonDanger),
		)},
	}, nil
}
