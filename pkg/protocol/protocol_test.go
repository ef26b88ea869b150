package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	req := require.New(t)

	raw, err := Encode(TypeError, Error{Message: "Lobby is full"})
	req.NoError(err)

	env, err := Decode(raw)
	req.NoError(err)
	req.Equal(TypeError, env.Type)

	var e Error
	req.NoError(json.Unmarshal(env.Data, &e))
	req.Equal("Lobby is full", e.Message)
}

func TestEncode_NilPayloadOmitsData(t *testing.T) {
	req := require.New(t)

	raw, err := Encode(TypeLobbyLeft, nil)
	req.NoError(err)
	req.JSONEq(`{"type":"lobby_left"}`, string(raw))
}

func TestDecode_Malformed(t *testing.T) {
	req := require.New(t)

	_, err := Decode([]byte(`{"type":`))
	req.Error(err)
}
