// Package tcp owns the connection-handling core of the realm front end.
//
// Ownership boundary:
// - the listening socket and its accept loop
// - one task per accepted connection (read and write halves)
// - the action bus carrying connection events to a single consumer
// - capabilities, the only way to address a live connection
//
// Lifecycle order:
// - bind -> accept loop -> stop -> await connection tasks
//
// - a connection emits connected -> data... -> disconnected, or stops
//   emitting when it fails.
//
// Connection failures stay inside their task. The acceptor never signals
// live connections to stop; they end on their own socket EOF or error.
//
// Inbound bytes are delivered in chunks of at most ReadChunkSize with no
// framing. Outbound bytes are written exactly as given.
package tcp
