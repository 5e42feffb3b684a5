// Package lobby is a small realm handler that tracks connected peers and
// echoes whatever they send.
package lobby

import (
	"errors"
	"fmt"
	"time"

	"github.com/danmuck/edgerealm/internal/realm"
	"github.com/danmuck/edgerealm/internal/repository"
	"github.com/danmuck/edgerealm/internal/tcp"
	"github.com/rs/zerolog/log"
)

const PeersRepository = "peers"

var ErrUnknownPeer = errors.New("lobby: action for unknown peer")

// Peer is one live connection as seen by the lobby.
type Peer struct {
	Capability  tcp.Capability
	ConnectedAt time.Time
	Messages    int
	Bytes       int
}

func (p Peer) ID() tcp.Capability {
	return p.Capability
}

// Lobby echoes data back to the peer that sent it.
type Lobby struct {
	now func() time.Time
}

var _ realm.ActionHandler = (*Lobby)(nil)

func New() *Lobby {
	return &Lobby{now: time.Now}
}

func (l *Lobby) Handle(action tcp.Action, repos repository.Factory) error {
	peers, err := Peers(repos)
	if err != nil {
		return err
	}

	switch action.Kind {
	case tcp.Connected:
		peer := Peer{Capability: action.Capability, ConnectedAt: l.now()}
		if err := peers.Save(peer); err != nil {
			return fmt.Errorf("lobby: save peer: %w", err)
		}
		log.Debug().Str("peer", action.Capability.String()).Int("peers", len(peers.GetAll())).Msg("peer joined")
	case tcp.DataReceived:
		peer, ok := peers.Delete(action.Capability)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPeer, action.Capability)
		}
		peer.Messages++
		peer.Bytes += len(action.Text)
		if err := peers.Save(peer); err != nil {
			return fmt.Errorf("lobby: update peer: %w", err)
		}
		if !action.Capability.SendString(action.Text) {
			log.Debug().Str("peer", action.Capability.String()).Msg("echo dropped")
		}
	case tcp.Disconnected:
		if peer, ok := peers.Delete(action.Capability); ok {
			log.Debug().
				Str("peer", action.Capability.String()).
				Int("messages", peer.Messages).
				Dur("session", l.now().Sub(peer.ConnectedAt)).
				Msg("peer left")
		}
	}
	return nil
}

// Peers opens the lobby's peer repository.
func Peers(repos repository.Factory) (repository.Repository[tcp.Capability, Peer], error) {
	return repository.Open[tcp.Capability, Peer](repos, PeersRepository)
}
