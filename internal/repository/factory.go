package repository

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrRepositoryName   = errors.New("repository: missing repository name")
	ErrRepositoryNil    = errors.New("repository: repository is nil")
	ErrRepositoryExists = errors.New("repository: repository already registered")
	ErrRepositoryType   = errors.New("repository: registered repository has another type")
)

// Factory hands out named repositories. Values are Repository[K, E] for
// whatever K and E the registering code chose; Open recovers the type.
type Factory interface {
	Lookup(name string) (any, bool)
	Register(name string, repo any) error
}

// Registry is the default Factory.
type Registry struct {
	mu    sync.RWMutex
	items map[string]any
}

func NewFactory() *Registry {
	return &Registry{items: make(map[string]any)}
}

func (r *Registry) Lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	repo, ok := r.items[strings.TrimSpace(name)]
	return repo, ok
}

func (r *Registry) Register(name string, repo any) error {
	key := strings.TrimSpace(name)
	if key == "" {
		return ErrRepositoryName
	}
	if repo == nil {
		return ErrRepositoryNil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[key]; ok {
		return fmt.Errorf("%w: %s", ErrRepositoryExists, key)
	}
	r.items[key] = repo
	return nil
}

// Open returns the repository registered under name, registering a new
// Memory repository when there is none.
func Open[K comparable, E Entity[K]](f Factory, name string) (Repository[K, E], error) {
	if f == nil {
		return nil, ErrRepositoryNil
	}
	for attempt := 0; attempt < 2; attempt++ {
		if existing, ok := f.Lookup(name); ok {
			repo, ok := existing.(Repository[K, E])
			if !ok {
				return nil, fmt.Errorf("%w: %s is %T", ErrRepositoryType, strings.TrimSpace(name), existing)
			}
			return repo, nil
		}
		repo := NewMemory[K, E]()
		err := f.Register(name, repo)
		if err == nil {
			return repo, nil
		}
		if !errors.Is(err, ErrRepositoryExists) {
			return nil, err
		}
		// Lost a registration race; the winner is visible on the next lookup.
	}
	return nil, fmt.Errorf("%w: %s", ErrRepositoryExists, strings.TrimSpace(name))
}
