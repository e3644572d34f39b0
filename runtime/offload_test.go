package runtime

import (
	"bytes"
	"context"
	"fmt"
	"interaction-lab/customid"
	"interaction-lab/domain"
	"interaction-lab/errors"
	"interaction-lab/mocks"
	"interaction-lab/state"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recordingRecorder struct {
	mu      sync.Mutex
	records []domain.OffloadRecord
}

func (r *recordingRecorder) Record(_ context.Context, record domain.OffloadRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *recordingRecorder) statuses() []domain.OffloadStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.OffloadStatus, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Status
	}
	return out
}

func (r *recordingRecorder) last() domain.OffloadRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[len(r.records)-1]
}

// launch defers cont from a handler context the way a view would, then starts it.
// lockedBuffer lets a test read log lines written from continuation goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func launch(t *testing.T, offloader *Offloader, cont Continuation, opts ...OffloadOption) {
	t.Helper()
	launchWithLog(t, offloader, slog.Default(), cont, opts...)
}

func launchWithLog(t *testing.T, offloader *Offloader, log *slog.Logger, cont Continuation, opts ...OffloadOption) {
	t.Helper()
	view := &View{Prefix: "job", Schema: state.MustSchema(state.Field("n", state.Int()))}
	c := &Context{
		Interaction: &domain.Interaction{ID: "i-9", Token: "tok"},
		View:        view,
		State:       view.NewState(),
		Log:         log,
		offloader:   offloader,
	}
	outcome, err := c.Defer(nil, cont, opts...)
	require.NoError(t, err)
	require.True(t, outcome.Deferred())
	require.Equal(t, domain.ResponseDeferredMessage, outcome.Response.Type)
	outcome.Launch()
	outcome.Launch()
}

func TestOffloader(t *testing.T) {
	ctx := context.Background()

	t.Run("should report a failing continuation with exactly one follow-up", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		rest := mocks.NewMockIRestClient(ctrl)
		bg := NewBackground(slog.Default())
		recorder := &recordingRecorder{}
		offloader := NewOffloader(slog.Default(), rest, bg, recorder, time.Second, false)

		rest.EXPECT().
			CreateFollowup(gomock.Any(), "tok", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, data *domain.ResponseData) error {
				req.Equal("Report is empty", data.Content)
				req.Equal(domain.FlagEphemeral, data.Flags)
				return nil
			}).
			Times(1)

		launch(t, offloader, func(context.Context, *Followup) error {
			return errors.User("Report is empty")
		})
		req.NoError(bg.Wait(ctx))

		req.Equal([]domain.OffloadStatus{domain.OffloadStarted, domain.OffloadFailed}, recorder.statuses())
		req.Equal("Report is empty", recorder.last().Error)
	})

	t.Run("should turn a panic into a failure", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		rest := mocks.NewMockIRestClient(ctrl)
		bg := NewBackground(slog.Default())
		recorder := &recordingRecorder{}
		offloader := NewOffloader(slog.Default(), rest, bg, recorder, time.Second, false)

		rest.EXPECT().
			CreateFollowup(gomock.Any(), "tok", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, data *domain.ResponseData) error {
				req.Equal(messageGeneric, data.Content)
				return nil
			})

		launch(t, offloader, func(context.Context, *Followup) error {
			panic("boom")
		})
		req.NoError(bg.Wait(ctx))

		req.Equal(domain.OffloadFailed, recorder.last().Status)
		req.Contains(recorder.last().Error, errors.ErrContinuationPanic.Error())
	})

	t.Run("should call the timeout hook once and send nothing else", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		// No expectation: any REST call from the continuation or the manager fails the test.
		rest := mocks.NewMockIRestClient(ctrl)
		bg := NewBackground(slog.Default())
		recorder := &recordingRecorder{}
		offloader := NewOffloader(slog.Default(), rest, bg, recorder, time.Minute, false)

		var hooks atomic.Int32
		launch(t, offloader,
			func(ctx context.Context, _ *Followup) error {
				<-ctx.Done()
				return fmt.Errorf("gave up: %w", ctx.Err())
			},
			WithTimeout(50*time.Millisecond),
			WithTimeoutHook(func(context.Context, *Followup) {
				hooks.Add(1)
			}),
		)
		req.NoError(bg.Wait(ctx))

		req.Equal(int32(1), hooks.Load())
		req.Equal([]domain.OffloadStatus{domain.OffloadStarted, domain.OffloadTimedOut}, recorder.statuses())
		req.Contains(recorder.last().Error, errors.ErrOffloadTimeout.Error())
	})

	t.Run("should stop waiting on a continuation ignoring its context", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		rest := mocks.NewMockIRestClient(ctrl)
		bg := NewBackground(slog.Default())
		recorder := &recordingRecorder{}
		offloader := NewOffloader(slog.Default(), rest, bg, recorder, 30*time.Millisecond, false)

		release := make(chan struct{})
		defer close(release)
		launch(t, offloader, func(context.Context, *Followup) error {
			<-release
			return nil
		})

		waitCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		req.NoError(bg.Wait(waitCtx))
		req.Equal(domain.OffloadTimedOut, recorder.last().Status)
	})

	t.Run("should log the result of a continuation returning after its timeout", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		rest := mocks.NewMockIRestClient(ctrl)
		bg := NewBackground(slog.Default())
		recorder := &recordingRecorder{}
		offloader := NewOffloader(slog.Default(), rest, bg, recorder, 30*time.Millisecond, false)
		logs := &lockedBuffer{}
		log := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

		// Given a continuation that only returns once released
		release := make(chan struct{})
		launchWithLog(t, offloader, log, func(context.Context, *Followup) error {
			<-release
			return fmt.Errorf("too late")
		})
		req.NoError(bg.Wait(ctx))
		req.Equal(domain.OffloadTimedOut, recorder.last().Status)
		req.NotContains(logs.String(), "returned after its timeout")

		// When it finally returns
		close(release)

		// Then its result is logged and the record is unchanged
		req.Eventually(func() bool {
			return strings.Contains(logs.String(), "Continuation returned after its timeout")
		}, time.Second, 5*time.Millisecond)
		req.Contains(logs.String(), "too late")
		req.Equal([]domain.OffloadStatus{domain.OffloadStarted, domain.OffloadTimedOut}, recorder.statuses())
	})

	t.Run("should record completion", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		rest := mocks.NewMockIRestClient(ctrl)
		bg := NewBackground(slog.Default())
		recorder := &recordingRecorder{}
		offloader := NewOffloader(slog.Default(), rest, bg, recorder, time.Second, false)

		rest.EXPECT().CreateFollowup(gomock.Any(), "tok", gomock.Any()).Return(nil)

		launch(t, offloader, func(ctx context.Context, f *Followup) error {
			return f.Send(ctx, &domain.ResponseData{Content: "ready"})
		})
		req.NoError(bg.Wait(ctx))

		rec := recorder.last()
		req.Equal(domain.OffloadCompleted, rec.Status)
		req.Equal("job", rec.Prefix)
		req.Equal("i-9", rec.InteractionID)
		req.NotEmpty(rec.ID)
		req.False(rec.EndedAt.Before(rec.StartedAt))
	})

	t.Run("should wrap bare ids of follow-up components under the view prefix", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		rest := mocks.NewMockIRestClient(ctrl)
		bg := NewBackground(slog.Default())
		recorder := &recordingRecorder{}
		offloader := NewOffloader(slog.Default(), rest, bg, recorder, time.Second, false)

		assertWrapped := func(data *domain.ResponseData) {
			req.Len(data.Components, 1)
			req.Len(data.Components[0].Components, 2)
			prefix, payload, err := customid.Parse(data.Components[0].Components[0].CustomID)
			req.NoError(err)
			req.Equal("job", prefix)
			req.Equal("7", payload)
			// Ids without the bare marker are left alone.
			req.Equal("static", data.Components[0].Components[1].CustomID)
		}

		// Given a continuation sending then editing with a component built from its state
		gomock.InOrder(
			rest.EXPECT().
				CreateFollowup(gomock.Any(), "tok", gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, data *domain.ResponseData) error {
					assertWrapped(data)
					return nil
				}),
			rest.EXPECT().
				EditOriginal(gomock.Any(), "tok", gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, data *domain.ResponseData) error {
					assertWrapped(data)
					return nil
				}),
		)

		var original *domain.ResponseData
		launch(t, offloader, func(ctx context.Context, f *Followup) error {
			id, err := f.State.Clone().SetInt("n", 7).CustomID()
			if err != nil {
				return err
			}
			original = &domain.ResponseData{Components: []domain.Component{
				domain.ActionRow(
					domain.Button(id, "Go", domain.ButtonPrimary),
					domain.Button("static", "Stay", domain.ButtonSecondary),
				),
			}}
			if err := f.Send(ctx, original); err != nil {
				return err
			}
			return f.EditOriginal(ctx, original)
		})

		// When the continuation has run
		req.NoError(bg.Wait(ctx))

		// Then both calls carried prefixed ids and the caller's data was not mutated
		req.Equal(domain.OffloadCompleted, recorder.last().Status)
		req.Equal(state.BareMarker+"7", original.Components[0].Components[0].CustomID)
	})

	t.Run("should work without recorder", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		rest := mocks.NewMockIRestClient(ctrl)
		bg := NewBackground(slog.Default())
		offloader := NewOffloader(slog.Default(), rest, bg, nil, time.Second, false)

		var ran atomic.Bool
		launch(t, offloader, func(context.Context, *Followup) error {
			ran.Store(true)
			return nil
		})

		req.NoError(bg.Wait(ctx))
		req.True(ran.Load())
	})
}

func TestBackground(t *testing.T) {
	t.Run("should contain a panicking task", func(t *testing.T) {
		req := require.New(t)
		bg := NewBackground(slog.Default())
		var ran atomic.Bool

		bg.Go("boom", func(context.Context) { panic("boom") })
		bg.Go("fine", func(context.Context) { ran.Store(true) })

		req.NoError(bg.Wait(context.Background()))
		req.True(ran.Load())
	})

	t.Run("should cancel remaining tasks when the grace period ends", func(t *testing.T) {
		req := require.New(t)
		bg := NewBackground(slog.Default())
		cancelled := make(chan struct{})

		bg.Go("slow", func(ctx context.Context) {
			<-ctx.Done()
			close(cancelled)
		})

		grace, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		req.ErrorIs(bg.Wait(grace), context.DeadlineExceeded)

		select {
		case <-cancelled:
		case <-time.After(time.Second):
			req.Fail("task should have been cancelled")
		}
	})
}
