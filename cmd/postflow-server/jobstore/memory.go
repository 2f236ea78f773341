package jobstore

import (
	"context"
	"sync"
)

// Memory is the zero-config Store: an in-process map, lost on restart. It is
// the default when postflow-server is started without --dsn, matching
// jackkayser2005-pokerBench/server/main.go's duel mode, which runs with db
// left nil when DATABASE_URL is unset.
type Memory struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

func NewMemory() *Memory {
	return &Memory{jobs: make(map[string]Job)}
}

func (m *Memory) Create(ctx context.Context, job Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return j, nil
}

func (m *Memory) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.Status = status
	j.Error = errMsg
	m.jobs[id] = j
	return nil
}

func (m *Memory) SaveResult(ctx context.Context, id string, snapshot []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.Result = snapshot
	j.Status = Done
	m.jobs[id] = j
	return nil
}

func (m *Memory) Close(ctx context.Context) {}
