// Package runtime routes interactions to views, runs their callbacks and carries
// offloaded work past the synchronous response.
package runtime

import (
	"context"
	"fmt"
	"interaction-lab/cache"
	"interaction-lab/contract"
	"interaction-lab/customid"
	"interaction-lab/domain"
	"interaction-lab/errors"
	"interaction-lab/state"
	"log/slog"
)

type Engine struct {
	log       *slog.Logger
	registry  *Registry
	rest      contract.IRestClient
	offloader *Offloader
	verbose   bool
}

// NewEngine seals the registry: nothing can be registered once traffic may be served.
// rest is only needed by HandleAndSend and Send; a nil offloader disables Context.Defer.
func NewEngine(log *slog.Logger, registry *Registry, rest contract.IRestClient, offloader *Offloader, verbose bool) *Engine {
	registry.Seal()
	return &Engine{
		log:       log,
		registry:  registry,
		rest:      rest,
		offloader: offloader,
		verbose:   verbose,
	}
}

func (e *Engine) Registry() *Registry {
	return e.registry
}

// Handle runs one interaction through classify, route, decode, handle and rewrite.
// It never fails: any error on the way is rendered into the returned response.
func (e *Engine) Handle(ctx context.Context, in *domain.Interaction) *Outcome {
	if in.Type == domain.InteractionPing {
		return Reply(domain.Pong())
	}
	log := e.log.With("interaction_id", in.ID, "type", in.Type.String())

	outcome, err := e.dispatch(ctx, in, log)
	if err != nil {
		report(log, err)
		return Reply(errorResponse(in, RenderError(err, e.verbose)))
	}
	return outcome
}

// HandleAndSend delivers the response out of band through the REST API, then
// launches the continuation if the handler deferred.
func (e *Engine) HandleAndSend(ctx context.Context, in *domain.Interaction) error {
	if e.rest == nil {
		return errors.ErrNoRestClient
	}
	outcome := e.Handle(ctx, in)
	if err := e.rest.CreateResponse(ctx, in.ID, in.Token, outcome.Response); err != nil {
		outcome.Abandon(err)
		return fmt.Errorf("create response: %w", err)
	}
	outcome.Launch()
	return nil
}

// Send renders a template view and posts it to a channel. It returns the new message id.
func (e *Engine) Send(ctx context.Context, view *View, channelID string, st *state.State) (string, error) {
	if e.rest == nil {
		return "", errors.ErrNoRestClient
	}
	if view.OnSend == nil {
		return "", fmt.Errorf("%w: %q", errors.ErrNoSendCallback, view.Prefix)
	}
	if st == nil {
		st = view.NewState()
	}
	data, err := view.OnSend(ctx, &SendContext{
		ChannelID: channelID,
		View:      view,
		State:     st,
		Cache:     cache.New(),
		Log:       e.log.With("prefix", view.Prefix, "channel_id", channelID),
	})
	if err != nil {
		return "", err
	}
	if data, err = rewriteData(view.Prefix, data); err != nil {
		return "", err
	}
	return e.rest.CreateMessage(ctx, channelID, data)
}

func (e *Engine) dispatch(ctx context.Context, in *domain.Interaction, log *slog.Logger) (outcome *Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrHandlerPanic, r)
		}
	}()

	view, payload, err := e.route(in)
	if err != nil {
		return nil, err
	}
	log = log.With("prefix", view.Prefix)

	st, err := view.schema().Decode(payload)
	if err != nil {
		return nil, err
	}

	handler, err := e.handlerFor(view, in.Type, st)
	if err != nil {
		return nil, err
	}

	c := &Context{
		Interaction: in,
		View:        view,
		State:       st,
		Cache:       cache.New(),
		Log:         log,
		offloader:   e.offloader,
	}
	outcome, err = handler(ctx, c)
	if err != nil {
		return nil, err
	}
	if outcome == nil || outcome.Response == nil {
		return nil, fmt.Errorf("view %q returned no response", view.Prefix)
	}

	resp, err := rewriteResponse(view.Prefix, outcome.Response)
	if err != nil {
		// The acknowledgment cannot leave, so neither may its continuation.
		outcome.Abandon(err)
		return nil, err
	}
	outcome.Response = resp
	return outcome, nil
}

// route resolves the view and the serialized state of an interaction.
func (e *Engine) route(in *domain.Interaction) (*View, string, error) {
	if in.Data == nil {
		return nil, "", fmt.Errorf("%w: no data", errors.ErrMalformedInteraction)
	}
	switch in.Type {
	case domain.InteractionCommand, domain.InteractionAutocomplete:
		view, ok := e.registry.FindByCommand(in.Data.Name, in.Data.Type, in.Data.GuildID)
		if !ok {
			return nil, "", fmt.Errorf("%w: command %q (type %d, guild %q)", errors.ErrUnknownView, in.Data.Name, in.Data.Type, in.Data.GuildID)
		}
		return view, "", nil
	case domain.InteractionComponent, domain.InteractionModalSubmit:
		prefix, payload, err := customid.Parse(in.Data.CustomID)
		if err != nil {
			return nil, "", err
		}
		view, ok := e.registry.FindByPrefix(prefix)
		if !ok {
			return nil, "", fmt.Errorf("%w: prefix %q", errors.ErrUnknownView, prefix)
		}
		return view, payload, nil
	default:
		return nil, "", fmt.Errorf("%w: %d", errors.ErrUnknownInteraction, in.Type)
	}
}

func (e *Engine) handlerFor(view *View, kind domain.InteractionType, st *state.State) (Handler, error) {
	switch kind {
	case domain.InteractionCommand:
		return view.OnCommand, nil
	case domain.InteractionAutocomplete:
		if view.OnAutocomplete == nil {
			return nil, fmt.Errorf("%w: %q", errors.ErrAutocompleteNotImplemented, view.Prefix)
		}
		return view.OnAutocomplete, nil
	case domain.InteractionModalSubmit:
		if view.OnModal != nil {
			return view.OnModal, nil
		}
	}
	if view.OnComponent != nil {
		return view.OnComponent, nil
	}
	if h, ok := chosenHandler(view.schema(), st); ok {
		return h, nil
	}
	return nil, fmt.Errorf("%w: %q", errors.ErrNoComponentCallback, view.Prefix)
}

// chosenHandler returns the handler selected by the first set choice field whose
// handlers are runtime Handlers.
func chosenHandler(schema *state.Schema, st *state.State) (Handler, bool) {
	for _, f := range schema.Fields() {
		choice, ok := f.Type.(state.HandlerChoice)
		if !ok {
			continue
		}
		name, ok := st.Choice(f.Name)
		if !ok {
			continue
		}
		h, ok := choice.HandlerFor(name)
		if !ok {
			continue
		}
		if handler, ok := h.(Handler); ok && handler != nil {
			return handler, true
		}
	}
	return nil, false
}
