package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"routesolver/internal/model"
)

// Memory is an in-process Store used when no DATABASE_URL is configured.
type Memory struct {
	mu   sync.Mutex
	runs map[string]model.Run
	ids  []string // insertion order, oldest first
}

func NewMemory() *Memory {
	return &Memory{runs: map[string]model.Run{}}
}

func (m *Memory) CreateRun(_ context.Context, run model.Run) (model.Run, error) {
	run.ID = uuid.NewString()
	run.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	m.mu.Lock()
	m.runs[run.ID] = run
	m.ids = append(m.ids, run.ID)
	m.mu.Unlock()
	return run, nil
}

func (m *Memory) GetRun(_ context.Context, id string) (model.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return model.Run{}, ErrNotFound
	}
	return run, nil
}

func (m *Memory) ListRuns(_ context.Context, cursor string, limit int) ([]model.Run, string, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return nil, "", ErrNotFound
		}
		offset = n
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Run{}
	// newest first
	for i := len(m.ids) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[m.ids[i]])
	}
	next := ""
	if offset+len(out) < len(m.ids) {
		next = strconv.Itoa(offset + len(out))
	}
	return out, next, nil
}

func (m *Memory) Close() {}
