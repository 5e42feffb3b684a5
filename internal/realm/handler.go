package realm

import (
	"github.com/danmuck/edgerealm/internal/repository"
	"github.com/danmuck/edgerealm/internal/tcp"
)

// ActionHandler consumes connection actions. It runs inside the realm loop,
// so a slow handler throttles the whole bus.
type ActionHandler interface {
	Handle(action tcp.Action, repos repository.Factory) error
}

type HandlerFunc func(action tcp.Action, repos repository.Factory) error

func (f HandlerFunc) Handle(action tcp.Action, repos repository.Factory) error {
	return f(action, repos)
}

// Discard accepts every action and does nothing.
var Discard ActionHandler = HandlerFunc(func(tcp.Action, repository.Factory) error { return nil })
