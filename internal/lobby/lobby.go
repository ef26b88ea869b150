/*
Package lobby owns the full state of every lobby: membership, host, password,
privacy, capacity and chat history.  The store holds no locks; all mutation
is serialized by the session coordinator's event loop.
*/
package lobby

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/treepeck/lobbyd/pkg/protocol"
)

// SystemAuthor attributes chat entries generated by the coordinator itself
// (welcome, join, leave and host-succession messages).
const SystemAuthor = "system"

const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const passwordLength = 8

/*
Lobby is a small group of players with a single host.  MemberIDs preserves
insertion order; the earliest remaining joiner inherits the host seat when the
host leaves.
*/
type Lobby struct {
	ID         string
	Title      string
	HostID     string
	MemberIDs  []string
	MaxPlayers int
	Password   string
	IsPrivate  bool
	CreatedAt  time.Time
	Chat       []protocol.ChatMessage
}

func (l *Lobby) isMember(playerID string) bool {
	for _, id := range l.MemberIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

/*
generatePassword samples each character uniformly from [A-Z0-9] using
crypto/rand.  rand.Int never fails with the platform entropy source; on the
pathological path the character is simply the first of the alphabet.
*/
func generatePassword() string {
	max := big.NewInt(int64(len(passwordAlphabet)))
	b := make([]byte, passwordLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			b[i] = passwordAlphabet[0]
			continue
		}
		b[i] = passwordAlphabet[n.Int64()]
	}
	return string(b)
}
