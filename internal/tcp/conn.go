package tcp

import (
	"errors"
	"fmt"
	"io"
	"net"
	"unicode/utf8"

	"github.com/danmuck/edgerealm/internal/control"
	"github.com/danmuck/edgerealm/internal/observability"
	"github.com/rs/zerolog/log"
)

// ReadChunkSize bounds one socket read and therefore one DataReceived.
const ReadChunkSize = 1024

type connTask struct {
	conn     net.Conn
	bus      *Bus
	commands chan command
	done     chan struct{}
	cap      Capability
	remote   string
}

func spawnConn(conn net.Conn, bus *Bus) *control.Join {
	commands := make(chan command, control.BufferSize)
	done := make(chan struct{})
	t := &connTask{
		conn:     conn,
		bus:      bus,
		commands: commands,
		done:     done,
		cap:      Capability{ch: commands, done: done},
		remote:   conn.RemoteAddr().String(),
	}
	return control.Spawn(t.run)
}

// run races the read and write loops. The loser is abandoned by closing the
// socket and the quit channel, then drained so nothing is emitted after run
// returns. done is closed on the way out so the capability goes dead; the
// command channel itself stays open for concurrent senders.
func (t *connTask) run() error {
	defer close(t.done)
	defer t.conn.Close()

	if err := t.emit(Action{Kind: Connected, Capability: t.cap}); err != nil {
		err = fmt.Errorf("%w: %w", ErrConnect, err)
		t.finish(err)
		return err
	}
	log.Debug().Str("remote", t.remote).Str("cap", t.cap.String()).Msg("tcp.conn connected")

	quit := make(chan struct{})
	results := make(chan error, 2)
	go func() { results <- t.readLoop() }()
	go func() { results <- t.writeLoop(quit) }()

	err := <-results
	close(quit)
	_ = t.conn.Close()
	<-results

	t.finish(err)
	return err
}

func (t *connTask) readLoop() error {
	buf := make([]byte, ReadChunkSize)
	for {
		n, err := t.conn.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if !utf8.Valid(chunk) {
				return fmt.Errorf("%w: %d bytes from %s", ErrData, n, t.remote)
			}
			if emitErr := t.emit(Action{Kind: DataReceived, Capability: t.cap, Text: string(chunk)}); emitErr != nil {
				return fmt.Errorf("%w: %w", ErrActionDelivery, emitErr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				t.disconnect()
				return nil
			}
			return fmt.Errorf("%w: %w", ErrRead, err)
		}
		if n == 0 {
			t.disconnect()
			return nil
		}
	}
}

func (t *connTask) writeLoop(quit <-chan struct{}) error {
	for {
		select {
		case <-quit:
			return nil
		case cmd, ok := <-t.commands:
			if !ok {
				return nil
			}
			switch cmd.kind {
			case commandStop:
				return nil
			case commandSend:
				if _, err := t.conn.Write(cmd.data); err != nil {
					return fmt.Errorf("%w: %d bytes to %s: %w", ErrWrite, len(cmd.data), t.remote, err)
				}
			}
		}
	}
}

// disconnect reports the peer close. A failed emission still ends the
// connection cleanly; nothing is left to deliver for it.
func (t *connTask) disconnect() {
	if err := t.emit(Action{Kind: Disconnected, Capability: t.cap}); err != nil {
		log.Debug().Str("remote", t.remote).Err(err).Msg("tcp.conn disconnected action dropped")
	}
}

func (t *connTask) emit(action Action) error {
	err := t.bus.Emit(action)
	observability.RecordAction(action.Kind.String(), err == nil)
	return err
}

func (t *connTask) finish(err error) {
	observability.RecordConnectionExit(outcome(err))
	if err != nil {
		log.Debug().Str("remote", t.remote).Str("cap", t.cap.String()).Err(err).Msg("tcp.conn task failed")
		return
	}
	log.Debug().Str("remote", t.remote).Str("cap", t.cap.String()).Msg("tcp.conn task finished")
}
