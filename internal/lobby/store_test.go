package lobby

import (
	"fmt"
	"slices"
	"testing"

	"github.com/treepeck/lobbyd/pkg/protocol"

	"github.com/stretchr/testify/require"
)

type fakeResolver map[string]protocol.Player

func (r fakeResolver) View(id string) (protocol.Player, bool) {
	p, ok := r[id]
	return p, ok
}

func newTestStore() (*Store, fakeResolver) {
	resolver := fakeResolver{
		"h": {ID: "h", Name: "Hank", Level: 3},
		"p": {ID: "p", Name: "Paula", Level: 5},
		"q": {ID: "q", Name: "Quinn", Level: 1},
	}
	return NewStore(resolver, 100), resolver
}

func TestCreate_HostIsSoleMember(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore()

	l := s.Create("A", "h", 2)

	req.Equal("h", l.HostID)
	req.Equal([]string{"h"}, l.MemberIDs)
	req.Equal(2, l.MaxPlayers)
	req.False(l.IsPrivate)

	// A freshly generated 8-character [A-Z0-9] password.
	req.Len(l.Password, 8)
	for _, r := range l.Password {
		req.Contains(passwordAlphabet, string(r))
	}

	// A system-authored welcome entry opens the chat history.
	req.Len(l.Chat, 1)
	req.Equal(SystemAuthor, l.Chat[0].Author)
	req.Contains(l.Chat[0].Text, "A")
}

func TestJoin(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore()
	l := s.Create("A", "h", 2)

	_, err := s.Join("missing", "p")
	req.ErrorIs(err, ErrNotFound)

	joined, err := s.Join(l.ID, "p")
	req.NoError(err)
	req.Equal([]string{"h", "p"}, joined.MemberIDs)

	// A join is announced in the chat by name.
	req.Equal(SystemAuthor, l.Chat[len(l.Chat)-1].Author)
	req.Contains(l.Chat[len(l.Chat)-1].Text, "Paula")

	_, err = s.Join(l.ID, "p")
	req.ErrorIs(err, ErrAlreadyMember)

	// Full lobby: rejected and membership unchanged.
	_, err = s.Join(l.ID, "q")
	req.ErrorIs(err, ErrFull)
	req.Equal([]string{"h", "p"}, l.MemberIDs)
	req.LessOrEqual(len(l.MemberIDs), l.MaxPlayers)
}

func TestLeave_SoleMemberDeletesLobby(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore()
	l := s.Create("A", "h", 2)

	res, err := s.Leave(l.ID, "h")
	req.NoError(err)
	req.True(res.Deleted)
	req.Empty(res.NewHostID)
	req.Zero(s.Count())

	_, err = s.Leave(l.ID, "h")
	req.ErrorIs(err, ErrNotFound)
}

func TestLeave_HostDeparturePromotesEarliestJoiner(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore()
	l := s.Create("A", "h", 3)
	s.Join(l.ID, "p")
	s.Join(l.ID, "q")

	res, err := s.Leave(l.ID, "h")
	req.NoError(err)
	req.False(res.Deleted)
	req.Equal("p", res.NewHostID)
	req.Equal("p", l.HostID)
	req.Equal([]string{"p", "q"}, l.MemberIDs)

	// Succession is announced by a system message naming the new host.
	req.Equal(SystemAuthor, l.Chat[len(l.Chat)-1].Author)
	req.Contains(l.Chat[len(l.Chat)-1].Text, "Paula")
}

func TestLeave_NonHostKeepsHost(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore()
	l := s.Create("A", "h", 3)
	s.Join(l.ID, "p")

	res, err := s.Leave(l.ID, "p")
	req.NoError(err)
	req.Empty(res.NewHostID)
	req.Equal("h", l.HostID)
	req.Equal([]string{"h"}, l.MemberIDs)

	_, err = s.Leave(l.ID, "p")
	req.ErrorIs(err, ErrNotMember)
}

func TestDelist(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore()
	l := s.Create("A", "h", 3)
	s.Join(l.ID, "p")

	_, err := s.Delist(l.ID, "p")
	req.ErrorIs(err, ErrForbidden)
	req.Equal(1, s.Count())

	_, err = s.Delist("missing", "h")
	req.ErrorIs(err, ErrNotFound)

	members, err := s.Delist(l.ID, "h")
	req.NoError(err)
	req.Equal([]string{"h", "p"}, members)
	req.Zero(s.Count())
}

func TestAddChat(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore()
	l := s.Create("A", "h", 3)

	_, err := s.AddChat(l.ID, "p", "hi")
	req.ErrorIs(err, ErrNotMember)

	_, err = s.AddChat("missing", "h", "hi")
	req.ErrorIs(err, ErrNotFound)

	msg, err := s.AddChat(l.ID, "h", "hello")
	req.NoError(err)
	req.Equal("Hank", msg.Author)
	req.Equal("hello", msg.Text)
	req.NotEmpty(msg.ID)
	req.Equal(msg, l.Chat[len(l.Chat)-1])
}

func TestChatHistory_FIFOCap(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore()
	l := s.Create("A", "h", 3)

	for i := 0; i < 150; i++ {
		_, err := s.AddChat(l.ID, "h", fmt.Sprintf("msg %d", i))
		req.NoError(err)
	}

	req.Len(l.Chat, 100)
	// Oldest entries evicted first: the welcome and the first 50 are gone.
	req.Equal("msg 50", l.Chat[0].Text)
	req.Equal("msg 149", l.Chat[99].Text)
}

func TestTogglePrivacy_Involution(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore()
	l := s.Create("A", "h", 3)

	_, err := s.TogglePrivacy(l.ID, "p")
	req.ErrorIs(err, ErrForbidden)
	req.False(l.IsPrivate)

	v, err := s.TogglePrivacy(l.ID, "h")
	req.NoError(err)
	req.True(v)

	v, err = s.TogglePrivacy(l.ID, "h")
	req.NoError(err)
	req.False(v)
}

func TestRegeneratePassword(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore()
	l := s.Create("A", "h", 3)
	old := l.Password

	_, err := s.RegeneratePassword(l.ID, "p")
	req.ErrorIs(err, ErrForbidden)
	req.Equal(old, l.Password)

	fresh, err := s.RegeneratePassword(l.ID, "h")
	req.NoError(err)
	req.Len(fresh, 8)
	req.NotEqual(old, fresh)
	req.Equal(fresh, l.Password)
}

func TestPublic_FiltersPrivateAndStaysStable(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore()
	a := s.Create("A", "h", 2)
	b := s.Create("B", "p", 2)
	s.Create("C", "q", 2)

	s.TogglePrivacy(b.ID, "p")

	collect := func() []string {
		var ids []string
		for summary := range s.Public() {
			ids = append(ids, summary.ID)
		}
		return ids
	}

	first := collect()
	req.Len(first, 2)
	req.NotContains(first, b.ID)

	// Stable across repeated calls absent mutation, in creation order.
	req.Equal(first, collect())
	req.Equal(a.ID, first[0])
}

func TestPublic_ResolvesMembers(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore()
	l := s.Create("A", "h", 3)
	s.Join(l.ID, "p")

	summaries := slices.Collect(s.Public())
	req.Len(summaries, 1)
	req.Equal([]protocol.Player{
		{ID: "h", Name: "Hank", Level: 3},
		{ID: "p", Name: "Paula", Level: 5},
	}, summaries[0].Players)
}

func TestDetails(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore()
	l := s.Create("A", "h", 3)

	_, err := s.Details("missing", "h")
	req.ErrorIs(err, ErrNotFound)

	_, err = s.Details(l.ID, "p")
	req.ErrorIs(err, ErrNotMember)

	d, err := s.Details(l.ID, "h")
	req.NoError(err)
	req.Equal(l.ID, d.ID)
	req.Equal("h", d.HostID)
	req.Equal(l.Password, d.Password)
	req.Len(d.Players, 1)
	req.Len(d.Chat, 1)
}
