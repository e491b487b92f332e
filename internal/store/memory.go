package store

import (
	"context"
	"sync"

	"github.com/thinkingstill/KegelRoulette/internal/room"
)

// Memory keeps snapshots in a process-local map. It is the default
// driver: the in-memory registry deployment where "persistence" only
// outlives a coordinator being swept, not the process.
type Memory struct {
	mu    sync.RWMutex
	rooms map[string]*room.Room
}

func NewMemory() *Memory {
	return &Memory{rooms: map[string]*room.Room{}}
}

func (m *Memory) SaveRoom(_ context.Context, r *room.Room) error {
	m.mu.Lock()
	m.rooms[r.ID] = r.Clone()
	m.mu.Unlock()
	return nil
}

func (m *Memory) LoadRoom(_ context.Context, id string) (*room.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, nil
	}
	return r.Clone(), nil
}

func (m *Memory) DeleteRoom(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.rooms, id)
	m.mu.Unlock()
	return nil
}
