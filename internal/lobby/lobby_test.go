package lobby

import (
	"bufio"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/danmuck/edgerealm/internal/realm"
	"github.com/danmuck/edgerealm/internal/repository"
	"github.com/danmuck/edgerealm/internal/tcp"
	"github.com/danmuck/edgerealm/internal/testutil/testlog"
)

func TestHandleTracksPeerLifecycle(t *testing.T) {
	testlog.Start(t)

	repos := repository.NewFactory()
	l := New()
	var peer tcp.Capability

	if err := l.Handle(tcp.Action{Kind: tcp.Connected, Capability: peer}, repos); err != nil {
		t.Fatalf("connected: %v", err)
	}
	for _, text := range []string{"ab", "cde"} {
		if err := l.Handle(tcp.Action{Kind: tcp.DataReceived, Capability: peer, Text: text}, repos); err != nil {
			t.Fatalf("data %q: %v", text, err)
		}
	}

	peers, err := Peers(repos)
	if err != nil {
		t.Fatalf("open peers: %v", err)
	}
	got, ok := peers.GetByID(peer)
	if !ok {
		t.Fatalf("expected peer to be tracked")
	}
	if got.Messages != 2 || got.Bytes != 5 {
		t.Fatalf("unexpected counters: %+v", got)
	}

	if err := l.Handle(tcp.Action{Kind: tcp.Disconnected, Capability: peer}, repos); err != nil {
		t.Fatalf("disconnected: %v", err)
	}
	if all := peers.GetAll(); len(all) != 0 {
		t.Fatalf("expected empty lobby, got %d peers", len(all))
	}
}

func TestHandleRejectsDataFromUnknownPeer(t *testing.T) {
	testlog.Start(t)

	err := New().Handle(tcp.Action{Kind: tcp.DataReceived, Text: "x"}, repository.NewFactory())
	if !errors.Is(err, ErrUnknownPeer) {
		t.Fatalf("expected ErrUnknownPeer, got %v", err)
	}
}

func TestHandleFailsWhenPeersNameIsTaken(t *testing.T) {
	testlog.Start(t)

	repos := repository.NewFactory()
	if err := repos.Register(PeersRepository, "not a repository"); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := New().Handle(tcp.Action{Kind: tcp.Connected}, repos)
	if !errors.Is(err, repository.ErrRepositoryType) {
		t.Fatalf("expected ErrRepositoryType, got %v", err)
	}
}

func TestLobbyEchoesOverRealm(t *testing.T) {
	testlog.Start(t)

	repos := repository.NewFactory()
	h, join := realm.Start(realm.NewDescriptor("lobby", "127.0.0.1", 0), repos, New())
	select {
	case <-join.Done():
		t.Fatalf("realm exited early: %v", join.Err())
	default:
	}
	defer h.Stop()

	conn, err := net.Dial("tcp", h.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("hello\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("read echo: %v", err)
	}
	if line != "hello\n" {
		t.Fatalf("unexpected echo %q", line)
	}

	peers, err := Peers(repos)
	if err != nil {
		t.Fatalf("open peers: %v", err)
	}
	if n := len(peers.GetAll()); n != 1 {
		t.Fatalf("expected one peer, got %d", n)
	}
}
