package control

import "errors"

// BufferSize is the capacity of every control mailbox.
const BufferSize = 8

var ErrMailboxFull = errors.New("control: mailbox full")

// Message is an administrative signal. It never crosses the wire.
type Message int

const (
	Stop Message = iota
	// Other is reserved; receivers ignore it.
	Other
)

func (m Message) String() string {
	switch m {
	case Stop:
		return "Stop"
	case Other:
		return "Other"
	default:
		return "Unknown"
	}
}

// Handle is the send side of a unit's control mailbox.
type Handle struct {
	ch chan<- Message
}

// NewMailbox returns a handle and the receive side the owning loop selects on.
// The channel is never closed, so sending through a handle after the owner
// has exited only ever fills the buffer.
func NewMailbox() (Handle, <-chan Message) {
	ch := make(chan Message, BufferSize)
	return Handle{ch: ch}, ch
}

// Send enqueues msg without blocking.
func (h Handle) Send(msg Message) error {
	select {
	case h.ch <- msg:
		return nil
	default:
		return ErrMailboxFull
	}
}

// Stop enqueues a Stop. Delivery is not guaranteed and the call does not wait
// for the owner to exit.
func (h Handle) Stop() error {
	return h.Send(Stop)
}
