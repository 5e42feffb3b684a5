package realm

import (
	"errors"
	"fmt"
	"net"

	"github.com/danmuck/edgerealm/internal/control"
	"github.com/danmuck/edgerealm/internal/observability"
	"github.com/danmuck/edgerealm/internal/repository"
	"github.com/danmuck/edgerealm/internal/tcp"
	"github.com/rs/zerolog/log"
)

var (
	ErrClientHandle = errors.New("realm: error while processing client request")
	ErrServer       = errors.New("realm: server failed")
)

// Handle controls one running realm.
type Handle struct {
	control control.Handle
	join    *control.Join
	server  *tcp.Handle
	desc    Descriptor
}

// Stop asks the realm to exit and blocks until it has. Shutdown errors are
// not reported; use Join for those.
func (h *Handle) Stop() {
	_ = h.control.Stop()
	_ = h.join.Wait()
}

func (h *Handle) Send(msg control.Message) error {
	return h.control.Send(msg)
}

func (h *Handle) Join() *control.Join {
	return h.join
}

// Addr is the acceptor's bound address, or nil when binding failed.
func (h *Handle) Addr() net.Addr {
	return h.server.Addr()
}

func (h *Handle) Descriptor() Descriptor {
	return h.desc
}

type loop struct {
	desc       Descriptor
	repos      repository.Factory
	handler    ActionHandler
	bus        *tcp.Bus
	server     *tcp.Handle
	serverJoin *control.Join
	mailbox    <-chan control.Message
}

// Start binds the realm's acceptor and runs the realm loop. A nil repos gets
// a fresh repository.Registry; a nil handler discards actions.
func Start(desc Descriptor, repos repository.Factory, handler ActionHandler) (*Handle, *control.Join) {
	if repos == nil {
		repos = repository.NewFactory()
	}
	if handler == nil {
		handler = Discard
	}

	bus := tcp.NewBus(tcp.BusCapacity)
	server, serverJoin := tcp.Start(bus, desc.Address, desc.Port)
	ctl, mailbox := control.NewMailbox()

	l := &loop{
		desc:       desc,
		repos:      repos,
		handler:    handler,
		bus:        bus,
		server:     server,
		serverJoin: serverJoin,
		mailbox:    mailbox,
	}
	log.Info().Str("realm", desc.Name).Str("addr", desc.BindAddress()).Msg("realm starting")
	join := control.Spawn(l.run)
	return &Handle{control: ctl, join: join, server: server, desc: desc}, join
}

// run dispatches until Stop, a handler error or acceptor exit. Shutdown of
// the acceptor and the bus is deferred so it also runs when the handler
// panics.
func (l *loop) run() (result error) {
	defer func() {
		if err := l.shutdown(); err != nil {
			result = err
		}
		if result != nil {
			log.Warn().Str("realm", l.desc.Name).Err(result).Msg("realm stopped")
			return
		}
		log.Info().Str("realm", l.desc.Name).Msg("realm stopped")
	}()

	for {
		select {
		case action := <-l.bus.Actions():
			err := l.handler.Handle(action, l.repos)
			observability.RecordDispatch(l.desc.Name, err)
			if err != nil {
				log.Error().Str("realm", l.desc.Name).Str("action", action.Kind.String()).Err(err).Msg("realm handler failed")
				return fmt.Errorf("%w: %w", ErrClientHandle, err)
			}
		case msg := <-l.mailbox:
			if msg == control.Stop {
				log.Info().Str("realm", l.desc.Name).Msg("realm stop received")
				return nil
			}
			log.Debug().Str("realm", l.desc.Name).Str("message", msg.String()).Msg("realm ignoring control message")
		case <-l.serverJoin.Done():
			if err := l.serverJoin.Err(); err != nil {
				log.Error().Str("realm", l.desc.Name).Err(err).Msg("realm server exited")
			}
			return nil
		}
	}
}

// shutdown stops the acceptor, awaits it and closes the bus. An acceptor
// failure is reported as ErrServer.
func (l *loop) shutdown() error {
	_ = l.server.Stop()
	err := l.serverJoin.Wait()
	l.bus.Close()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServer, err)
	}
	return nil
}
