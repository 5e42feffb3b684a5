// Package control owns the supervision plumbing shared by the acceptor and
// the realm.
//
// Ownership boundary:
// - control messages (stop, reserved other)
// - best-effort control mailboxes
// - join handles for spawned units
//
// Every enqueue in this package is non-blocking. A unit's join resolves
// exactly once, after the unit's goroutine has returned.
package control
