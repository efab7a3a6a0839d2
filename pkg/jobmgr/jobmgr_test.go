package jobmgr

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_StartStop(t *testing.T) {
	m := NewManager(zerolog.Nop())
	started := make(chan struct{})
	require.NoError(t, m.StartAsync(context.Background(), "sweeper", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	<-started

	assert.Equal(t, []string{"sweeper"}, m.List())
	assert.Equal(t, "Running jobs: sweeper", m.Status())

	err := m.StartAsync(context.Background(), "sweeper", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrRunning)

	require.NoError(t, m.Stop("sweeper"))
	assert.Empty(t, m.List())
	assert.Equal(t, "No jobs are running.", m.Status())
	assert.ErrorIs(t, m.Stop("sweeper"), ErrNotRunning)
}

func TestManager_FinishedJobIsForgotten(t *testing.T) {
	m := NewManager(zerolog.Nop())
	require.NoError(t, m.StartAsync(context.Background(), "once", func(context.Context) error { return nil }))
	assert.Eventually(t, func() bool { return len(m.List()) == 0 }, time.Second, 5*time.Millisecond)

	// The name is free again.
	require.NoError(t, m.StartAsync(context.Background(), "once", func(context.Context) error { return nil }))
	m.Shutdown()
}

func TestManager_ShutdownCancelsAll(t *testing.T) {
	m := NewManager(zerolog.Nop())
	for _, name := range []string{"a", "b"} {
		require.NoError(t, m.StartAsync(context.Background(), name, func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}))
	}
	m.Shutdown()
	assert.Empty(t, m.List())
}

func TestManager_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(zerolog.New(&buf))
	err := m.StartSync(context.Background(), "migrate", func(context.Context) error {
		return errors.New("disk full")
	})
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"job":"migrate"`)
	assert.Contains(t, buf.String(), "disk full")
}
