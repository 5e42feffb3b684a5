package tcp

import "sync"

// BusCapacity is the default action bus capacity.
const BusCapacity = 8

// Bus is a bounded many-producer, single-consumer queue of connection
// actions. Emit never blocks: when the consumer falls behind, emissions fail
// and the emitting connection ends.
type Bus struct {
	ch        chan Action
	closed    chan struct{}
	closeOnce sync.Once
}

func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = BusCapacity
	}
	return &Bus{
		ch:     make(chan Action, capacity),
		closed: make(chan struct{}),
	}
}

func (b *Bus) Emit(action Action) error {
	select {
	case <-b.closed:
		return ErrBusClosed
	default:
	}
	select {
	case b.ch <- action:
		return nil
	default:
		return ErrBusFull
	}
}

// Actions is the consumer's view of the bus.
func (b *Bus) Actions() <-chan Action {
	return b.ch
}

// Close rejects all later emissions. Actions already queued stay readable.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.closed)
	})
}

func (b *Bus) Len() int {
	return len(b.ch)
}

func (b *Bus) Cap() int {
	return cap(b.ch)
}
