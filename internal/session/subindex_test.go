package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubIndex_SetGetClear(t *testing.T) {
	req := require.New(t)
	s := newSubIndex()

	_, ok := s.get("c1")
	req.False(ok)

	s.set("c1", "l1")
	s.set("c2", "l1")

	lobbyID, ok := s.get("c1")
	req.True(ok)
	req.Equal("l1", lobbyID)
	req.Len(s.members("l1"), 2)

	s.clear("c1")
	_, ok = s.get("c1")
	req.False(ok)
	req.Len(s.members("l1"), 1)

	// Clearing a connection that holds no subscription is a no-op.
	s.clear("c1")
	req.Len(s.members("l1"), 1)
}

func TestSubIndex_SetMovesBetweenLobbies(t *testing.T) {
	req := require.New(t)
	s := newSubIndex()

	s.set("c1", "l1")
	s.set("c1", "l2")

	lobbyID, ok := s.get("c1")
	req.True(ok)
	req.Equal("l2", lobbyID)
	req.Empty(s.members("l1"))
	req.Len(s.members("l2"), 1)
}

func TestSubIndex_DropLobby(t *testing.T) {
	req := require.New(t)
	s := newSubIndex()

	s.set("c1", "l1")
	s.set("c2", "l1")
	s.set("c3", "l2")

	s.dropLobby("l1")

	_, ok := s.get("c1")
	req.False(ok)
	_, ok = s.get("c2")
	req.False(ok)
	req.Empty(s.members("l1"))

	lobbyID, ok := s.get("c3")
	req.True(ok)
	req.Equal("l2", lobbyID)
}
