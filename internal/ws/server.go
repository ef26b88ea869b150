/*
Package ws accepts WebSocket connections and pumps envelopes between the
sockets and the session coordinator.
*/
package ws

import (
	"log/slog"
	"net/http"

	"github.com/treepeck/lobbyd/internal/session"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

/*
upgrader is used to establish a WebSocket connection.  It is safe for
concurrent use.
*/
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server upgrades HTTP requests and hands the resulting connections to the
// coordinator.
type Server struct {
	log   *slog.Logger
	coord *session.Coordinator
}

func NewServer(log *slog.Logger, coord *session.Coordinator) *Server {
	return &Server{log: log, coord: coord}
}

/*
HandleWS upgrades the request and starts the read and write pumps.  The
connection id doubles as the player id for the lifetime of the socket.

Attach blocks until the coordinator has picked the connection up, so the
client's first command can never be handled before its registration.
*/
func (s *Server) HandleWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		s.log.Debug("upgrade failed", "error", err)
		return
	}

	c := newClient(uuid.NewString(), conn, s.coord)
	s.coord.Attach(c)

	go c.read()
	go c.write()
}
