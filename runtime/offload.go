package runtime

import (
	"context"
	stderrors "errors"
	"fmt"
	"interaction-lab/cache"
	"interaction-lab/contract"
	"interaction-lab/domain"
	"interaction-lab/errors"
	"interaction-lab/state"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// deliveryTimeout bounds the follow-up carrying a continuation's error.
const deliveryTimeout = 10 * time.Second

// Continuation is the work a handler keeps doing after its acknowledgment left.
type Continuation func(ctx context.Context, f *Followup) error

// TimeoutHook runs once when a continuation outlives its budget.
type TimeoutHook func(ctx context.Context, f *Followup)

type OffloadOption func(*offloadJob)

// WithTimeout overrides the default continuation budget.
func WithTimeout(d time.Duration) OffloadOption {
	return func(j *offloadJob) {
		if d > 0 {
			j.timeout = d
		}
	}
}

func WithTimeoutHook(hook TimeoutHook) OffloadOption {
	return func(j *offloadJob) {
		j.onTimeout = hook
	}
}

// Followup is what a continuation may still do once the synchronous window closed.
// Outgoing components go through the same custom id rewriting as synchronous responses.
type Followup struct {
	Interaction *domain.Interaction
	State       *state.State
	Cache       *cache.Cache
	Log         *slog.Logger

	prefix string
	rest   contract.IRestClient
}

// EditOriginal replaces the message of the original response.
func (f *Followup) EditOriginal(ctx context.Context, data *domain.ResponseData) error {
	rewritten, err := rewriteData(f.prefix, data)
	if err != nil {
		return err
	}
	return f.rest.EditOriginal(ctx, f.Interaction.Token, rewritten)
}

// Send posts a new follow-up message.
func (f *Followup) Send(ctx context.Context, data *domain.ResponseData) error {
	rewritten, err := rewriteData(f.prefix, data)
	if err != nil {
		return err
	}
	return f.rest.CreateFollowup(ctx, f.Interaction.Token, rewritten)
}

type offloadJob struct {
	record    domain.OffloadRecord
	followup  *Followup
	cont      Continuation
	timeout   time.Duration
	onTimeout TimeoutHook
	manager   *Offloader
}

// Offloader runs continuations detached from the request, each with its own timeout.
// Every continuation ends in exactly one of: completed, failed (reported with one
// follow-up) or timed out (timeout hook called once, continuation abandoned).
type Offloader struct {
	log        *slog.Logger
	rest       contract.IRestClient
	background contract.IBackground
	recorder   contract.IOffloadRecorder
	timeout    time.Duration
	verbose    bool
}

// NewOffloader builds the manager. recorder may be nil.
func NewOffloader(log *slog.Logger, rest contract.IRestClient, background contract.IBackground,
	recorder contract.IOffloadRecorder, timeout time.Duration, verbose bool) *Offloader {
	return &Offloader{
		log:        log,
		rest:       rest,
		background: background,
		recorder:   recorder,
		timeout:    timeout,
		verbose:    verbose,
	}
}

func (m *Offloader) newJob(c *Context, cont Continuation, opts ...OffloadOption) *offloadJob {
	id := uuid.NewString()
	j := &offloadJob{
		record: domain.OffloadRecord{
			ID:            id,
			InteractionID: c.Interaction.ID,
			Prefix:        c.View.Prefix,
		},
		followup: &Followup{
			Interaction: c.Interaction,
			State:       c.State,
			Cache:       c.Cache,
			Log:         c.Log.With("offload_id", id),
			prefix:      c.View.Prefix,
			rest:        m.rest,
		},
		cont:    cont,
		timeout: m.timeout,
		manager: m,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (m *Offloader) start(j *offloadJob) {
	j.record.StartedAt = time.Now().UTC()
	j.record.Status = domain.OffloadStarted
	m.save(context.Background(), j)
	m.background.Go("offload:"+j.record.Prefix, func(ctx context.Context) {
		m.run(ctx, j)
	})
}

func (m *Offloader) abandon(j *offloadJob, reason error) {
	now := time.Now().UTC()
	j.record.StartedAt = now
	j.finish(domain.OffloadAbandoned, reason)
	j.followup.Log.Warn("Continuation abandoned", "error", reason)
	m.save(context.Background(), j)
}

func (m *Offloader) run(ctx context.Context, j *offloadJob) {
	log := j.followup.Log
	runCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	// Buffered: a continuation finishing after its timeout must not block forever.
	done := make(chan error, 1)
	go func() {
		done <- j.safeRun(runCtx)
	}()

	timer := time.NewTimer(j.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		switch {
		case stderrors.Is(runCtx.Err(), context.DeadlineExceeded):
			m.timedOut(ctx, j)
		case err != nil:
			m.failed(ctx, j, err)
		default:
			j.finish(domain.OffloadCompleted, nil)
			m.save(ctx, j)
			log.Debug("Continuation completed")
		}
	case <-timer.C:
		// The record stays timed out, the late result is only logged.
		go func() {
			err := <-done
			log.Warn("Continuation returned after its timeout", "error", err)
		}()
		m.timedOut(ctx, j)
	}
}

func (j *offloadJob) safeRun(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrContinuationPanic, r)
		}
	}()
	return j.cont(ctx, j.followup)
}

// failed reports err through a follow-up: the synchronous channel is already closed.
func (m *Offloader) failed(ctx context.Context, j *offloadJob, err error) {
	report(j.followup.Log, err)
	j.finish(domain.OffloadFailed, err)
	m.save(ctx, j)

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
	defer cancel()
	if sendErr := m.rest.CreateFollowup(sendCtx, j.followup.Interaction.Token, RenderError(err, m.verbose)); sendErr != nil {
		j.followup.Log.Error("Could not deliver continuation error", "error", sendErr)
	}
}

func (m *Offloader) timedOut(ctx context.Context, j *offloadJob) {
	err := fmt.Errorf("%w after %s", errors.ErrOffloadTimeout, j.timeout)
	j.followup.Log.Warn("Continuation timed out", "error", err)
	j.finish(domain.OffloadTimedOut, err)
	m.save(ctx, j)

	if j.onTimeout == nil {
		return
	}
	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
	defer cancel()
	func() {
		defer func() {
			if r := recover(); r != nil {
				j.followup.Log.Error("Timeout hook panicked", "panic", r)
			}
		}()
		j.onTimeout(hookCtx, j.followup)
	}()
}

func (j *offloadJob) finish(status domain.OffloadStatus, err error) {
	j.record.Status = status
	j.record.EndedAt = time.Now().UTC()
	if err != nil {
		j.record.Error = err.Error()
	}
}

func (m *Offloader) save(ctx context.Context, j *offloadJob) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Record(context.WithoutCancel(ctx), j.record); err != nil {
		m.log.Error("Could not record continuation", "offload_id", j.record.ID, "error", err)
	}
}
