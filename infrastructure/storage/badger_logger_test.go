package storage

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBadgerLogger(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	logger := NewBadgerLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	logger.Infof("Replaying file id: %d\n", 3)
	logger.Debugf("hidden")
	logger.Errorf("failed: %s", "disk")

	out := buf.String()
	req.Contains(out, `level=INFO msg="Replaying file id: 3" component=badger`)
	req.Contains(out, `level=ERROR msg="failed: disk" component=badger`)
	req.NotContains(out, "hidden")
}
