package workers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ValueLogGC reclaims the value log space left by expired offload records.
type ValueLogGC struct {
	db           *badger.DB
	log          *slog.Logger
	interval     time.Duration
	discardRatio float64
}

func NewValueLogGC(db *badger.DB, log *slog.Logger, interval time.Duration, discardRatio float64) *ValueLogGC {
	return &ValueLogGC{db: db, log: log, interval: interval, discardRatio: discardRatio}
}

func (w *ValueLogGC) Name() string {
	return "value_log_gc"
}

func (w *ValueLogGC) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.collect(ctx); err != nil {
				return err
			}
		}
	}
}

// collect rewrites files until badger finds nothing worth rewriting.
func (w *ValueLogGC) collect(ctx context.Context) error {
	rewritten := 0
	for ctx.Err() == nil {
		err := w.db.RunValueLogGC(w.discardRatio)
		if stderrors.Is(err, badger.ErrNoRewrite) || stderrors.Is(err, badger.ErrRejected) {
			break
		}
		if stderrors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return err
		}
		rewritten++
	}
	if rewritten > 0 {
		w.log.Debug("Value log collected", "files", rewritten)
	}
	return nil
}
