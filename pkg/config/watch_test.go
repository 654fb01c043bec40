package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeConfig(t, dir, "log_level: info\n")

	w, err := NewWatcher(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	var (
		mu     sync.Mutex
		levels []string
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, func(cfg *IncidentsConfig) {
		mu.Lock()
		defer mu.Unlock()
		levels = append(levels, cfg.LogLevel)
	})

	// Invalid values are skipped rather than delivered
	require.NoError(t, os.WriteFile(path, []byte("log_level: verbose\n"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(levels) > 0 && levels[len(levels)-1] == "debug"
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.NotContains(t, levels, "verbose")
}

func TestNewWatcher_MissingDirectory(t *testing.T) {
	_, err := NewWatcher("/nonexistent/incidents/incidents.yml", slog.Default())
	assert.Error(t, err)
}
