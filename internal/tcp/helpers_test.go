package tcp

import (
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/edgerealm/internal/control"
)

const waitTimeout = 2 * time.Second

func startLoopback(t *testing.T, bus *Bus) (*Handle, *control.Join, string) {
	t.Helper()
	h, join := Start(bus, "127.0.0.1", 0)
	select {
	case <-join.Done():
		t.Fatalf("server exited at start: %v", join.Err())
	default:
	}
	t.Cleanup(func() { _ = h.Stop() })
	return h, join, h.Addr().String()
}

func dial(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, waitTimeout)
	if err != nil {
		t.Fatalf("dial %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func nextAction(t *testing.T, bus *Bus) Action {
	t.Helper()
	select {
	case action := <-bus.Actions():
		return action
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for action")
		return Action{}
	}
}

func expectKind(t *testing.T, bus *Bus, kind ActionKind) Action {
	t.Helper()
	action := nextAction(t, bus)
	if action.Kind != kind {
		t.Fatalf("unexpected action kind: got %s want %s (%s)", action.Kind, kind, action)
	}
	return action
}

// collectText reads DataReceived actions for capability until want bytes
// have arrived.
func collectText(t *testing.T, bus *Bus, c Capability, want int) string {
	t.Helper()
	var sb strings.Builder
	for sb.Len() < want {
		action := expectKind(t, bus, DataReceived)
		if action.Capability != c {
			t.Fatalf("data for unexpected capability: %s", action)
		}
		if len(action.Text) > ReadChunkSize {
			t.Fatalf("chunk larger than read size: %d", len(action.Text))
		}
		sb.WriteString(action.Text)
	}
	return sb.String()
}

func expectQuiet(t *testing.T, bus *Bus, d time.Duration) {
	t.Helper()
	select {
	case action := <-bus.Actions():
		t.Fatalf("unexpected action: %s", action)
	case <-time.After(d):
	}
}

func expectJoin(t *testing.T, join *control.Join) error {
	t.Helper()
	select {
	case <-join.Done():
		return join.Err()
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for join")
		return nil
	}
}

// expectClosedByServer waits for the peer side of conn to be closed.
func expectClosedByServer(t *testing.T, conn net.Conn) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(waitTimeout))
	buf := make([]byte, 64)
	for {
		_, err := conn.Read(buf)
		if err == nil {
			continue
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			t.Fatalf("connection was not closed by server")
		}
		if !errors.Is(err, io.EOF) && !isReset(err) {
			t.Fatalf("unexpected read error: %v", err)
		}
		return
	}
}

func isReset(err error) bool {
	return strings.Contains(err.Error(), "connection reset")
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
