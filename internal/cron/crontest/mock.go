// Package crontest provides test doubles for the cron package.
package crontest

import (
	"context"
	"sync"
	"time"

	"github.com/flemzord/relaybot/internal/cron"
)

// MockJob is a configurable test double for cron.Job.
type MockJob struct {
	NameVal     string
	ScheduleVal string
	RunFunc     func(ctx context.Context) error

	mu    sync.Mutex
	calls int
}

// Compile-time interface check.
var _ cron.Job = (*MockJob)(nil)

// Name implements cron.Job.
func (m *MockJob) Name() string { return m.NameVal }

// Schedule implements cron.Job.
func (m *MockJob) Schedule() string { return m.ScheduleVal }

// Run implements cron.Job and increments the call counter.
func (m *MockJob) Run(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return nil
}

// CallCount returns the number of times Run was called.
func (m *MockJob) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockPruner is a test double for cron.Pruner.
type MockPruner struct {
	PruneFunc func(ctx context.Context, before time.Time) (int64, error)

	mu      sync.Mutex
	befores []time.Time
}

// Compile-time interface check.
var _ cron.Pruner = (*MockPruner)(nil)

// Prune implements cron.Pruner.
func (m *MockPruner) Prune(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	m.befores = append(m.befores, before)
	m.mu.Unlock()

	if m.PruneFunc != nil {
		return m.PruneFunc(ctx, before)
	}
	return 0, nil
}

// Calls returns the cutoffs Prune was called with.
func (m *MockPruner) Calls() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]time.Time, len(m.befores))
	copy(cp, m.befores)
	return cp
}
