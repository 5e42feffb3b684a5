// Package repository owns keyed entity storage for action handlers.
//
// Ownership boundary:
// - the Repository contract (save, get, list, filter, delete)
// - the in-memory implementation
// - the named repository factory handed to action handlers
//
// Save never overwrites: an existing key is rejected with
// ErrDuplicatedEntity. Callers replace an entity by deleting it first.
package repository
