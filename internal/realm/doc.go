// Package realm owns the supervisory loop above the tcp acceptor.
//
// Ownership boundary:
// - one acceptor and the action bus it feeds
// - synchronous dispatch of connection actions to an ActionHandler
// - two-level shutdown: realm stop -> acceptor stop -> await acceptor
//
// A realm never restarts in place. A failed or stopped realm is replaced by
// calling Start again.
package realm
