package repository

import (
	"errors"
	"fmt"
)

var ErrDuplicatedEntity = errors.New("repository: entity already exists")

// DuplicatedEntityError carries the rejected key.
type DuplicatedEntityError struct {
	Key string
}

func (e *DuplicatedEntityError) Error() string {
	return fmt.Sprintf("repository: entity with key %s already exists", e.Key)
}

func (e *DuplicatedEntityError) Unwrap() error {
	return ErrDuplicatedEntity
}

// Entity is anything with a stable key.
type Entity[K comparable] interface {
	ID() K
}

type Repository[K comparable, E Entity[K]] interface {
	Save(entity E) error
	GetByID(key K) (E, bool)
	// GetAll returns every entity in no particular order.
	GetAll() []E
	Filter(match func(E) bool) []E
	Delete(key K) (E, bool)
}
