package tcp

import (
	"fmt"
	"net"
	"strconv"

	"github.com/danmuck/edgerealm/internal/control"
	"github.com/danmuck/edgerealm/internal/observability"
	"github.com/rs/zerolog/log"
)

// Handle is the acceptor's control surface.
type Handle struct {
	control control.Handle
	addr    net.Addr
}

// Stop enqueues a Stop without blocking. It is safe to call repeatedly and
// after the acceptor has exited; control.ErrMailboxFull is the only failure.
func (h *Handle) Stop() error {
	return h.control.Stop()
}

func (h *Handle) Send(msg control.Message) error {
	return h.control.Send(msg)
}

// Addr is the bound listener address, or nil when binding failed.
func (h *Handle) Addr() net.Addr {
	return h.addr
}

type acceptResult struct {
	conn net.Conn
	err  error
}

type server struct {
	ln      net.Listener
	bus     *Bus
	addr    string
	mailbox <-chan control.Message
	conns   map[*control.Join]struct{}
}

// Start binds address:port and runs the accept loop. When binding fails the
// returned join has already resolved with a *BindError.
func Start(bus *Bus, address string, port uint16) (*Handle, *control.Join) {
	ctl, mailbox := control.NewMailbox()
	h := &Handle{control: ctl}

	bind := net.JoinHostPort(address, strconv.Itoa(int(port)))
	ln, err := net.Listen("tcp", bind)
	if err != nil {
		log.Error().Str("addr", bind).Err(err).Msg("tcp.server bind failed")
		return h, control.Finished(&BindError{Address: bind, Err: err})
	}
	h.addr = ln.Addr()
	log.Info().Str("addr", ln.Addr().String()).Msg("tcp.server listening")

	s := &server{
		ln:      ln,
		bus:     bus,
		addr:    ln.Addr().String(),
		mailbox: mailbox,
		conns:   make(map[*control.Join]struct{}),
	}
	return h, control.Spawn(s.run)
}

func (s *server) run() error {
	accepted := make(chan acceptResult)
	finished := make(chan *control.Join)
	quit := make(chan struct{})
	go s.acceptPump(accepted, quit)

	var result error
loop:
	for {
		select {
		case res := <-accepted:
			if res.err != nil {
				result = fmt.Errorf("%w: %w", ErrAccept, res.err)
				log.Error().Err(res.err).Msg("tcp.server accept failed")
				break loop
			}
			observability.RecordAccepted()
			s.track(spawnConn(res.conn, s.bus), finished, quit)
		case join := <-finished:
			// The connection's outcome stays with the connection.
			delete(s.conns, join)
		case msg := <-s.mailbox:
			if msg == control.Stop {
				log.Info().Str("addr", s.addr).Msg("tcp.server stop received")
				break loop
			}
			log.Debug().Str("message", msg.String()).Msg("tcp.server ignoring control message")
		}
	}

	close(quit)
	_ = s.ln.Close()

	// TODO: decide whether live connections should be told to stop here.
	// Until then shutdown waits for each one to reach EOF or an error.
	if len(s.conns) > 0 {
		log.Info().Int("connections", len(s.conns)).Msg("tcp.server awaiting connection tasks")
	}
	for join := range s.conns {
		_ = join.Wait()
	}
	log.Info().Str("addr", s.addr).Msg("tcp.server stopped")
	return result
}

// acceptPump feeds accepted sockets to the loop until quit is closed. A
// socket accepted after quit is dropped.
func (s *server) acceptPump(out chan<- acceptResult, quit <-chan struct{}) {
	for {
		conn, err := s.ln.Accept()
		select {
		case out <- acceptResult{conn: conn, err: err}:
		case <-quit:
			if conn != nil {
				_ = conn.Close()
			}
			return
		}
		if err != nil {
			return
		}
	}
}

func (s *server) track(join *control.Join, finished chan<- *control.Join, quit <-chan struct{}) {
	s.conns[join] = struct{}{}
	go func() {
		<-join.Done()
		select {
		case finished <- join:
		case <-quit:
		}
	}()
}
