package storage

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// badgerLogger redirects badger's printf style logs to the application logger,
// tagged so they can be told apart from request logs.
type badgerLogger struct {
	log *slog.Logger
}

func NewBadgerLogger(log *slog.Logger) badger.Logger {
	return &badgerLogger{log: log.With("component", "badger")}
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.log.Error(clean(format, args))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn(clean(format, args))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.log.Info(clean(format, args))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.log.Debug(clean(format, args))
}

// clean removes the trailing newline badger adds to most messages.
func clean(format string, args []any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
