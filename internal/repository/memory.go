package repository

import (
	"fmt"
	"sync"
)

// Memory is a map-backed Repository safe for concurrent use.
type Memory[K comparable, E Entity[K]] struct {
	mu       sync.RWMutex
	entities map[K]E
}

func NewMemory[K comparable, E Entity[K]]() *Memory[K, E] {
	return &Memory[K, E]{entities: make(map[K]E)}
}

func (m *Memory[K, E]) Save(entity E) error {
	key := entity.ID()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entities[key]; ok {
		return &DuplicatedEntityError{Key: fmt.Sprint(key)}
	}
	m.entities[key] = entity
	return nil
}

func (m *Memory[K, E]) GetByID(key K) (E, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entity, ok := m.entities[key]
	return entity, ok
}

func (m *Memory[K, E]) GetAll() []E {
	return m.Filter(nil)
}

// Filter returns the entities match accepts; a nil match accepts all.
func (m *Memory[K, E]) Filter(match func(E) bool) []E {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]E, 0, len(m.entities))
	for _, entity := range m.entities {
		if match == nil || match(entity) {
			out = append(out, entity)
		}
	}
	return out
}

func (m *Memory[K, E]) Delete(key K) (E, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entity, ok := m.entities[key]
	if ok {
		delete(m.entities, key)
	}
	return entity, ok
}

func (m *Memory[K, E]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entities)
}
