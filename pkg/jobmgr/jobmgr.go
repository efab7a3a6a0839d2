// Package jobmgr runs named background jobs (such as the cooldown sweeper)
// with cancellation and lifecycle logging.
//
//	jm := jobmgr.NewManager(logger)
//	_ = jm.StartAsync(ctx, "cooldown-sweeper", func(ctx context.Context) error {
//	    // work until ctx is cancelled
//	    return nil
//	})
//	defer jm.Shutdown()
//
// There is no retry logic and no persistence. A job is forgotten once its
// runner returns.
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// ErrRunning is returned when a job with the same name is already running.
var ErrRunning = errors.New("job already running")

// ErrNotRunning is returned by Stop for unknown jobs.
var ErrNotRunning = errors.New("job not running")

type job struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager tracks running jobs. Safe for concurrent use.
type Manager struct {
	mu     sync.Mutex
	jobs   map[string]*job
	logger zerolog.Logger
	wg     sync.WaitGroup
}

func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		jobs:   make(map[string]*job),
		logger: logger.With().Str("component", "jobmgr").Logger(),
	}
}

// StartSync runs runner in the current goroutine with a context derived
// from ctx.
func (m *Manager) StartSync(ctx context.Context, name string, runner func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	return m.run(ctx, name, runner)
}

// StartAsync runs runner in its own goroutine until it returns or ctx (or
// Stop) cancels it.
func (m *Manager) StartAsync(ctx context.Context, name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[name]; exists {
		return fmt.Errorf("%q: %w", name, ErrRunning)
	}

	ctx, cancel := context.WithCancel(ctx)
	j := &job{cancel: cancel, done: make(chan struct{})}
	m.jobs[name] = j
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()
		defer close(j.done)
		defer cancel()

		_ = m.run(ctx, name, runner)

		m.mu.Lock()
		if m.jobs[name] == j {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()
	return nil
}

func (m *Manager) run(ctx context.Context, name string, runner func(ctx context.Context) error) error {
	m.logger.Debug().Str("job", name).Msg("job running")
	err := runner(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		m.logger.Debug().Str("job", name).Msg("job done")
	default:
		m.logger.Error().Err(err).Str("job", name).Msg("job failed")
	}
	return err
}

// Stop cancels a running job and waits for it to return.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	j, ok := m.jobs[name]
	if ok {
		delete(m.jobs, name)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrNotRunning)
	}
	j.cancel()
	<-j.done
	return nil
}

// Shutdown cancels every job and waits for all of them.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	for name, j := range m.jobs {
		j.cancel()
		delete(m.jobs, name)
	}
	m.mu.Unlock()
	m.wg.Wait()
}

// List returns the sorted names of running jobs.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Status is a one-line summary, e.g. "Running jobs: cooldown-sweeper".
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return "Running jobs: " + strings.Join(active, ", ")
}
