package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calgen/internal/config"
	"calgen/internal/definition"
	"calgen/internal/pipeline"
)

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New("not a spec", func(context.Context) error { return nil })
	assert.Error(t, err)

	s, err := New("0 3 * * *", func(context.Context) error { return nil })
	require.NoError(t, err)
	now := time.Date(2026, time.October, 14, 12, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2026, time.October, 15, 3, 0, 0, 0, time.Local), s.Next(now))
}

func TestRunFiresAndStops(t *testing.T) {
	var runs atomic.Int32
	s, err := New("@every 1s", func(context.Context) error {
		runs.Add(1)
		return errors.New("failures are logged, not fatal")
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestRenderJobWritesCurrentYears(t *testing.T) {
	groups, err := definition.Parse("[Holidays]\n25 December Christmas\n")
	require.NoError(t, err)
	b, err := pipeline.NewBuilder(config.DefaultConfig(), nil)
	require.NoError(t, err)
	dir := t.TempDir()

	calls := 0
	job := RenderJob(b, func() ([]definition.Group, error) {
		calls++
		return groups, nil
	}, 0, 2, []pipeline.Output{{Kind: pipeline.Yearly, Format: pipeline.HTML}}, dir)

	require.NoError(t, job(context.Background()))
	assert.Equal(t, 1, calls)

	year := time.Now().Year()
	for _, y := range []int{year, year + 1} {
		_, err := os.Stat(filepath.Join(dir, pipeline.Output{Kind: pipeline.Yearly, Format: pipeline.HTML}.FileName(y)))
		assert.NoError(t, err, y)
	}

	failing := RenderJob(b, func() ([]definition.Group, error) {
		return nil, errors.New("no definitions")
	}, 0, 1, nil, dir)
	assert.Error(t, failing(context.Background()))
}
