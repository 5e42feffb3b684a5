package tcp

import (
	"errors"
	"fmt"
)

var (
	ErrBind           = errors.New("tcp: bind failed")
	ErrAccept         = errors.New("tcp: accept failed")
	ErrConnect        = errors.New("tcp: connected action not delivered")
	ErrRead           = errors.New("tcp: read failed")
	ErrWrite          = errors.New("tcp: write failed")
	ErrData           = errors.New("tcp: client data is not valid utf-8")
	ErrActionDelivery = errors.New("tcp: action not delivered")

	ErrBusFull   = errors.New("tcp: action bus full")
	ErrBusClosed = errors.New("tcp: action bus closed")
)

// BindError reports the address the listener could not bind.
type BindError struct {
	Address string
	Err     error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("tcp: bind %s: %v", e.Address, e.Err)
}

func (e *BindError) Unwrap() []error {
	return []error{ErrBind, e.Err}
}

// outcome maps a connection task result to a metrics label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConnect):
		return "connect"
	case errors.Is(err, ErrData):
		return "data"
	case errors.Is(err, ErrActionDelivery):
		return "delivery"
	case errors.Is(err, ErrRead):
		return "read"
	case errors.Is(err, ErrWrite):
		return "write"
	default:
		return "error"
	}
}
