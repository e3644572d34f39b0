package runtime

import (
	"context"
	"log/slog"
	"sync"
)

// Background keeps detached work running after the response that started it was sent.
// Its context is not tied to any request. It is only cancelled by Stop, or by Wait
// when the shutdown grace period runs out.
type Background struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *slog.Logger
}

func NewBackground(log *slog.Logger) *Background {
	ctx, cancel := context.WithCancel(context.Background())
	return &Background{ctx: ctx, cancel: cancel, log: log}
}

// Go runs fn in its own goroutine. A panic is logged and contained: one task
// crashing never takes the process down.
func (b *Background) Go(name string, fn func(ctx context.Context)) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				b.log.Error("Background task panicked", "name", name, "panic", r)
			}
		}()
		fn(b.ctx)
	}()
}

// Wait blocks until every task returned or ctx is done. In the latter case the
// remaining tasks are cancelled and ctx.Err() is returned.
func (b *Background) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		b.cancel()
		return ctx.Err()
	}
}

// Stop cancels the context of every running task.
func (b *Background) Stop() {
	b.cancel()
}
