package archive

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process archive. Runs are copied on the way in and out.
type Memory struct {
	mu   sync.RWMutex
	runs map[string]Run
}

var _ Archive = (*Memory)(nil)

// NewMemory returns an empty in-memory archive.
func NewMemory() *Memory {
	return &Memory{runs: make(map[string]Run)}
}

func copyRun(r Run) Run {
	out := r
	out.Report = append([]byte(nil), r.Report...)
	return out
}

func (m *Memory) Save(_ context.Context, run Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = copyRun(run)
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return Run{}, ErrNotFound
	}
	return copyRun(run), nil
}

// List returns the runs newest first.
func (m *Memory) List(_ context.Context) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Run, 0, len(m.runs))
	for _, run := range m.runs {
		out = append(out, copyRun(run))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) Close() error { return nil }
