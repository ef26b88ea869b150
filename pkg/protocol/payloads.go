package protocol

import "time"

// Inbound payloads.  Validate tags are enforced by the session dispatcher
// before any state is touched.

type RegisterPlayer struct {
	Name  string `json:"name" validate:"required,min=1,max=32"`
	Level int    `json:"level" validate:"gte=0,lte=1000"`
}

type CreateLobby struct {
	Title string `json:"title" validate:"required,min=1,max=64"`
	// Zero means "use the server default".
	MaxPlayers int `json:"maxPlayers" validate:"omitempty,gte=2,lte=16"`
}

type JoinLobby struct {
	LobbyID string `json:"lobbyId" validate:"required"`
}

type SendChat struct {
	Message string `json:"message" validate:"required,max=500"`
}

// Outbound payloads.

type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

/*
LobbySummary is the public-list view of a lobby.  Member ids are resolved to
player records so clients never need a second round trip to render the list.
*/
type LobbySummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Players    []Player  `json:"players"`
	MaxPlayers int       `json:"maxPlayers"`
	CreatedAt  time.Time `json:"createdAt"`
}

/*
LobbyDetails is the members-only view: everything in the summary plus host,
password, privacy flag and chat history.
*/
type LobbyDetails struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	HostID     string        `json:"hostId"`
	Players    []Player      `json:"players"`
	MaxPlayers int           `json:"maxPlayers"`
	Password   string        `json:"password"`
	IsPrivate  bool          `json:"isPrivate"`
	CreatedAt  time.Time     `json:"createdAt"`
	Chat       []ChatMessage `json:"chat"`
}

type LobbiesList struct {
	Lobbies []LobbySummary `json:"lobbies"`
}

type PlayerJoined struct {
	Player Player `json:"player"`
}

/*
PlayerLeft names the departed member and, when the departure promoted a new
host, the successor.
*/
type PlayerLeft struct {
	PlayerID  string `json:"playerId"`
	NewHostID string `json:"newHostId,omitempty"`
}

type PasswordUpdated struct {
	Password string `json:"password"`
}

type PrivacyUpdated struct {
	IsPrivate bool `json:"isPrivate"`
}

type Error struct {
	Message string `json:"message"`
}
