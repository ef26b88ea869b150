/*
Package protocol defines the wire format exchanged between the coordinator and
WebSocket clients.  Every message, in both directions, is an envelope
{type, data} serialized as a single text frame.  The payload stays a
json.RawMessage until the handler for the concrete type decodes it, so the
transport never needs to know the full message catalogue.
*/
package protocol

import "encoding/json"

/*
Envelope is the frame exchanged over the wire.  Data is left raw so that
broadcast payloads are encoded once and written verbatim to every recipient.
*/
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client to server message types.
const (
	TypeRegisterPlayer     = "register_player"
	TypeGetLobbies         = "get_lobbies"
	TypeCreateLobby        = "create_lobby"
	TypeJoinLobby          = "join_lobby"
	TypeLeaveLobby         = "leave_lobby"
	TypeDelistLobby        = "delist_lobby"
	TypeSendChatMessage    = "send_chat_message"
	TypeRegeneratePassword = "regenerate_password"
	TypeTogglePrivacy      = "toggle_privacy"
	TypeGetLobbyDetails    = "get_lobby_details"
)

// Server to client message types.
const (
	TypePlayerRegistered = "player_registered"
	TypeLobbiesList      = "lobbies_list"
	TypeLobbiesUpdated   = "lobbies_updated"
	TypeLobbyCreated     = "lobby_created"
	TypeLobbyJoined      = "lobby_joined"
	TypeLobbyLeft        = "lobby_left"
	TypeLobbyDelisted    = "lobby_delisted"
	TypeLobbyDetails     = "lobby_details"
	TypeChatMessage      = "chat_message"
	TypePasswordUpdated  = "password_updated"
	TypePrivacyUpdated   = "privacy_updated"
	TypePlayerJoined     = "player_joined"
	TypePlayerLeft       = "player_left"
	TypeError            = "error"
)

/*
Encode marshals the payload and wraps it into an envelope.  A failed payload
marshal is reported to the caller instead of panicking; a single bad payload
must never take the coordinator down.
*/
func Encode(typ string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		p, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = p
	}
	return json.Marshal(Envelope{Type: typ, Data: raw})
}

/*
Decode parses a raw text frame into an envelope.  The payload is not touched;
handlers decode it against the concrete type once the envelope type is known.
*/
func Decode(raw []byte) (Envelope, error) {
	var e Envelope
	err := json.Unmarshal(raw, &e)
	return e, err
}
