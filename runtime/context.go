package runtime

import (
	"fmt"
	"interaction-lab/cache"
	"interaction-lab/domain"
	"interaction-lab/errors"
	"interaction-lab/state"
	"log/slog"
	"sync"
)

// Context is what a handler receives: the interaction, its decoded state and a
// way to offload work past the synchronous response.
type Context struct {
	Interaction *domain.Interaction
	View        *View
	State       *state.State
	Cache       *cache.Cache
	Log         *slog.Logger

	offloader *Offloader
}

// Defer acknowledges with ack right away and runs cont once ack has been delivered.
func (c *Context) Defer(ack *domain.Response, cont Continuation, opts ...OffloadOption) (*Outcome, error) {
	if c.offloader == nil {
		return nil, fmt.Errorf("%w: view %q", errors.ErrDeferNotImplemented, c.View.Prefix)
	}
	if ack == nil {
		ack = domain.DeferredMessage(false)
	}
	return &Outcome{Response: ack, job: c.offloader.newJob(c, cont, opts...)}, nil
}

// Values returns the selected values of a select menu interaction.
func (c *Context) Values() []string {
	if c.Interaction.Data == nil {
		return nil
	}
	return c.Interaction.Data.Values
}

// ModalValues returns the submitted text inputs by custom id.
func (c *Context) ModalValues() map[string]string {
	if c.Interaction.Data == nil {
		return map[string]string{}
	}
	return c.Interaction.Data.ModalValues()
}

// SendContext is handed to the OnSend callback of template views.
type SendContext struct {
	ChannelID string
	View      *View
	State     *state.State
	Cache     *cache.Cache
	Log       *slog.Logger
}

// Outcome is either a plain response or an acknowledgment with a pending continuation.
type Outcome struct {
	Response *domain.Response

	job  *offloadJob
	once sync.Once
}

func Reply(resp *domain.Response) *Outcome {
	return &Outcome{Response: resp}
}

func (o *Outcome) Deferred() bool {
	return o.job != nil
}

// Launch starts the pending continuation, if any. Call it only after Response
// has been handed to the platform. Only the first call has an effect.
func (o *Outcome) Launch() {
	if o.job == nil {
		return
	}
	o.once.Do(func() {
		o.job.manager.start(o.job)
	})
}

// Abandon drops the continuation without running it. Call it when Response could not be delivered.
func (o *Outcome) Abandon(reason error) {
	if o.job == nil {
		return
	}
	o.once.Do(func() {
		o.job.manager.abandon(o.job, reason)
	})
}
