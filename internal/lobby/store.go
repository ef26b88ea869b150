package lobby

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/treepeck/lobbyd/pkg/protocol"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

/*
Resolver turns a player id into an outward-facing player record.  The identity
registry implements it; the store never owns player state.
*/
type Resolver interface {
	View(id string) (protocol.Player, bool)
}

/*
Store owns the set of lobbies.  Insertion order is tracked separately so the
public listing stays stable across repeated calls absent mutation; Go map
iteration alone would reshuffle it on every call.
*/
type Store struct {
	resolver     Resolver
	lobbies      map[string]*Lobby
	order        []string
	historyLimit int
}

func NewStore(resolver Resolver, historyLimit int) *Store {
	return &Store{
		resolver:     resolver,
		lobbies:      make(map[string]*Lobby),
		historyLimit: historyLimit,
	}
}

// Count reports the number of lobbies, public and private alike.
func (s *Store) Count() int {
	return len(s.lobbies)
}

/*
Create registers a new lobby with the host as its sole member, a freshly
generated password and a system-authored welcome entry in the chat history.
*/
func (s *Store) Create(title, hostID string, maxPlayers int) *Lobby {
	l := &Lobby{
		ID:         uuid.NewString(),
		Title:      title,
		HostID:     hostID,
		MemberIDs:  []string{hostID},
		MaxPlayers: maxPlayers,
		Password:   generatePassword(),
		CreatedAt:  time.Now(),
	}

	s.lobbies[l.ID] = l
	s.order = append(s.order, l.ID)

	s.appendSystem(l, fmt.Sprintf("Welcome to %s!", l.Title))

	return l
}

/*
Join appends the player to the member list.  Capacity and duplicate checks run
before any mutation, so a failed join leaves the lobby untouched.
*/
func (s *Store) Join(lobbyID, playerID string) (*Lobby, error) {
	l, exists := s.lobbies[lobbyID]
	if !exists {
		return nil, ErrNotFound
	}
	if l.isMember(playerID) {
		return nil, ErrAlreadyMember
	}
	if len(l.MemberIDs) == l.MaxPlayers {
		return nil, ErrFull
	}

	l.MemberIDs = append(l.MemberIDs, playerID)
	s.appendSystem(l, fmt.Sprintf("%s joined the lobby.", s.name(playerID)))

	return l, nil
}

/*
LeaveResult reports what a departure did to the lobby.  Deleted is set when the
last member left and the lobby was removed, so the caller can suppress a
broadcast to an audience that no longer exists.  NewHostID is non-empty when
the departing host's seat was handed to the earliest remaining joiner.
*/
type LeaveResult struct {
	Lobby     *Lobby
	Deleted   bool
	NewHostID string
}

func (s *Store) Leave(lobbyID, playerID string) (LeaveResult, error) {
	l, exists := s.lobbies[lobbyID]
	if !exists {
		return LeaveResult{}, ErrNotFound
	}
	if !l.isMember(playerID) {
		return LeaveResult{}, ErrNotMember
	}

	l.MemberIDs = lo.Without(l.MemberIDs, playerID)

	if len(l.MemberIDs) == 0 {
		s.remove(lobbyID)
		return LeaveResult{Lobby: l, Deleted: true}, nil
	}

	s.appendSystem(l, fmt.Sprintf("%s left the lobby.", s.name(playerID)))

	res := LeaveResult{Lobby: l}
	if l.HostID == playerID {
		l.HostID = l.MemberIDs[0]
		res.NewHostID = l.HostID
		s.appendSystem(l, fmt.Sprintf("%s is now the host.", s.name(l.HostID)))
	}

	return res, nil
}

/*
Delist removes the lobby on behalf of its host and returns the former member
ids so the caller can clear their subscriptions and notify them.
*/
func (s *Store) Delist(lobbyID, requesterID string) ([]string, error) {
	l, exists := s.lobbies[lobbyID]
	if !exists {
		return nil, ErrNotFound
	}
	if l.HostID != requesterID {
		return nil, ErrForbidden
	}

	members := slices.Clone(l.MemberIDs)
	s.remove(lobbyID)

	return members, nil
}

/*
AddChat appends a message attributed to the sender's current display name and
trims the history to the most recent entries.
*/
func (s *Store) AddChat(lobbyID, senderID, text string) (protocol.ChatMessage, error) {
	l, exists := s.lobbies[lobbyID]
	if !exists {
		return protocol.ChatMessage{}, ErrNotFound
	}
	if !l.isMember(senderID) {
		return protocol.ChatMessage{}, ErrNotMember
	}

	msg := protocol.ChatMessage{
		ID:        uuid.NewString(),
		Author:    s.name(senderID),
		Text:      text,
		Timestamp: time.Now(),
	}
	s.append(l, msg)

	return msg, nil
}

// RegeneratePassword replaces the lobby password.  Host only.
func (s *Store) RegeneratePassword(lobbyID, requesterID string) (string, error) {
	l, exists := s.lobbies[lobbyID]
	if !exists {
		return "", ErrNotFound
	}
	if l.HostID != requesterID {
		return "", ErrForbidden
	}

	l.Password = generatePassword()
	return l.Password, nil
}

// TogglePrivacy flips the visibility flag.  Host only, and its own inverse.
func (s *Store) TogglePrivacy(lobbyID, requesterID string) (bool, error) {
	l, exists := s.lobbies[lobbyID]
	if !exists {
		return false, ErrNotFound
	}
	if l.HostID != requesterID {
		return false, ErrForbidden
	}

	l.IsPrivate = !l.IsPrivate
	return l.IsPrivate, nil
}

/*
Public yields a summary for every non-private lobby in creation order.  The
sequence is lazy and restartable; ranging over it twice without an intervening
mutation produces identical results.
*/
func (s *Store) Public() iter.Seq[protocol.LobbySummary] {
	return func(yield func(protocol.LobbySummary) bool) {
		for _, id := range s.order {
			l, exists := s.lobbies[id]
			if !exists || l.IsPrivate {
				continue
			}
			if !yield(s.summary(l)) {
				return
			}
		}
	}
}

// Details returns the members-only view of a lobby.
func (s *Store) Details(lobbyID, requesterID string) (protocol.LobbyDetails, error) {
	l, exists := s.lobbies[lobbyID]
	if !exists {
		return protocol.LobbyDetails{}, ErrNotFound
	}
	if !l.isMember(requesterID) {
		return protocol.LobbyDetails{}, ErrNotMember
	}

	return protocol.LobbyDetails{
		ID:         l.ID,
		Title:      l.Title,
		HostID:     l.HostID,
		Players:    s.players(l),
		MaxPlayers: l.MaxPlayers,
		Password:   l.Password,
		IsPrivate:  l.IsPrivate,
		CreatedAt:  l.CreatedAt,
		Chat:       slices.Clone(l.Chat),
	}, nil
}

func (s *Store) remove(lobbyID string) {
	delete(s.lobbies, lobbyID)
	s.order = lo.Without(s.order, lobbyID)
}

func (s *Store) summary(l *Lobby) protocol.LobbySummary {
	return protocol.LobbySummary{
		ID:         l.ID,
		Title:      l.Title,
		Players:    s.players(l),
		MaxPlayers: l.MaxPlayers,
		CreatedAt:  l.CreatedAt,
	}
}

/*
players resolves member ids to player records.  An id the registry no longer
knows is skipped instead of rendered half-empty; it can only happen in the
narrow window between a forced disconnect and the coordinator's cleanup.
*/
func (s *Store) players(l *Lobby) []protocol.Player {
	return lo.FilterMap(l.MemberIDs, func(id string, _ int) (protocol.Player, bool) {
		return s.resolver.View(id)
	})
}

func (s *Store) name(playerID string) string {
	if p, ok := s.resolver.View(playerID); ok {
		return p.Name
	}
	return playerID
}

func (s *Store) appendSystem(l *Lobby, text string) {
	s.append(l, protocol.ChatMessage{
		ID:        uuid.NewString(),
		Author:    SystemAuthor,
		Text:      text,
		Timestamp: time.Now(),
	})
}

// append adds one entry and evicts the oldest beyond the history limit.
func (s *Store) append(l *Lobby, msg protocol.ChatMessage) {
	l.Chat = append(l.Chat, msg)
	if len(l.Chat) > s.historyLimit {
		l.Chat = l.Chat[len(l.Chat)-s.historyLimit:]
	}
}
