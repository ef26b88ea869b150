package lobby

import "errors"

// Every failure a store operation can report.  All of them are non-fatal and
// map one-to-one onto an error envelope for the offending connection.
var (
	ErrNotFound      = errors.New("lobby not found")
	ErrFull          = errors.New("lobby is full")
	ErrAlreadyMember = errors.New("already a member of this lobby")
	ErrNotInLobby    = errors.New("not in a lobby")
	ErrNotMember     = errors.New("not a member of this lobby")
	ErrForbidden     = errors.New("only the host may do that")
)
