package tcp

import "fmt"

// ActionKind tags a connection action.
type ActionKind int

const (
	Connected ActionKind = iota + 1
	Disconnected
	DataReceived
)

func (k ActionKind) String() string {
	switch k {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	case DataReceived:
		return "data_received"
	default:
		return "unknown"
	}
}

// Action is one lifecycle or data event of a connection. Text is only set
// for DataReceived.
type Action struct {
	Kind       ActionKind
	Capability Capability
	Text       string
}

func (a Action) String() string {
	if a.Kind == DataReceived {
		return fmt.Sprintf("%s %s %q", a.Kind, a.Capability, a.Text)
	}
	return fmt.Sprintf("%s %s", a.Kind, a.Capability)
}

type commandKind int

const (
	commandSend commandKind = iota
	commandStop
)

type command struct {
	kind commandKind
	data []byte
}

// Capability addresses one connection task. Copies share the same endpoint
// and compare equal, so a capability is its connection's identity. Once the
// task has terminated every call fails silently.
type Capability struct {
	ch   chan<- command
	done <-chan struct{}
}

// Send queues data for the connection's write loop. It never blocks and
// reports false when the command was not queued. data is copied.
func (c Capability) Send(data []byte) bool {
	buf := make([]byte, len(data))
	copy(buf, data)
	return c.offer(command{kind: commandSend, data: buf})
}

func (c Capability) SendString(data string) bool {
	return c.offer(command{kind: commandSend, data: []byte(data)})
}

// Stop asks the write loop to exit, which ends the connection.
func (c Capability) Stop() bool {
	return c.offer(command{kind: commandStop})
}

// Valid reports whether c was issued by a connection task.
func (c Capability) Valid() bool {
	return c.ch != nil
}

func (c Capability) String() string {
	if c.ch == nil {
		return "cap(nil)"
	}
	return fmt.Sprintf("cap(%p)", c.ch)
}

func (c Capability) offer(cmd command) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.ch <- cmd:
		return true
	default:
		return false
	}
}
