package runtime

import (
	"context"
	"fmt"
	"interaction-lab/customid"
	"interaction-lab/domain"
	"interaction-lab/errors"
	"interaction-lab/state"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Handler answers a command, autocomplete, component or modal interaction.
// It returns Reply(...) for a synchronous answer or the result of Context.Defer.
type Handler func(ctx context.Context, c *Context) (*Outcome, error)

// SendHandler renders the message a template view posts on its own.
type SendHandler func(ctx context.Context, c *SendContext) (*domain.ResponseData, error)

// CommandSpec is the command a view answers to. An empty GuildID means a global command.
type CommandSpec struct {
	Name        string             `validate:"required,max=32"`
	Type        domain.CommandType `validate:"required,min=1,max=3"`
	GuildID     string             `validate:"omitempty,numeric"`
	Description string             `validate:"max=100"`
	Options     []OptionSpec       `validate:"max=25,dive"`
}

// OptionSpec describes one option of a chat input command.
type OptionSpec struct {
	Name         string `validate:"required,max=32"`
	Description  string `validate:"required,max=100"`
	Type         int    `validate:"min=3,max=11"`
	Required     bool
	Autocomplete bool
}

// Option types used by views.
const (
	OptionString  = 3
	OptionInteger = 4
	OptionBoolean = 5
	OptionChannel = 7
)

// View binds a prefix, a state schema and callbacks. Views are declared once at
// start-up and never mutated afterwards.
type View struct {
	Prefix  string        `validate:"required,max=16,printascii,excludes=."`
	Schema  *state.Schema `validate:"-"`
	Command *CommandSpec

	OnCommand      Handler     `validate:"-"`
	OnAutocomplete Handler     `validate:"-"`
	OnComponent    Handler     `validate:"-"`
	OnModal        Handler     `validate:"-"`
	OnSend         SendHandler `validate:"-"`

	// WorstCase builds the largest state the view can produce. Registry.VerifyBudgets
	// encodes it to prove every custom id of the view fits the platform limit.
	WorstCase func() *state.State `validate:"-"`
}

func (v *View) schema() *state.Schema {
	if v.Schema == nil {
		return state.Empty()
	}
	return v.Schema
}

// NewState returns an empty state for the view's schema.
func (v *View) NewState() *state.State {
	return v.schema().New()
}

// WorstCaseLength encodes the worst case state and returns its custom id length in UTF-16 units.
func (v *View) WorstCaseLength() (int, error) {
	st := v.NewState()
	if v.WorstCase != nil {
		st = v.WorstCase()
	}
	id, err := customid.Encode(v.Prefix, st)
	if err != nil {
		return 0, fmt.Errorf("view %q: %w", v.Prefix, err)
	}
	return customid.Length(id), nil
}

func (v *View) validate() error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidView, err)
	}
	if v.Command != nil && v.OnCommand == nil {
		return fmt.Errorf("%w: view %q declares command %q without OnCommand", errors.ErrInvalidView, v.Prefix, v.Command.Name)
	}
	if v.Command == nil && v.OnAutocomplete != nil {
		return fmt.Errorf("%w: view %q has autocomplete but no command", errors.ErrInvalidView, v.Prefix)
	}
	return nil
}

// CustomIDFor builds a fully prefixed custom id for view, e.g. to link from one view to another.
func CustomIDFor(view *View, st *state.State) (string, error) {
	if st.Schema() != view.schema() {
		return "", fmt.Errorf("%w: state does not belong to view %q", errors.ErrInvalidFieldValue, view.Prefix)
	}
	return customid.Encode(view.Prefix, st)
}
