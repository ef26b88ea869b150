package ws

import (
	"sync"
	"time"

	"github.com/treepeck/lobbyd/internal/session"
	"github.com/treepeck/lobbyd/pkg/protocol"

	"github.com/gorilla/websocket"
)

// Connection parameters.
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period.  Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

/*
client manages the connection lifecycle and provides methods for reading and
writing WebSocket messages.

The reason for the send channel is that frames must be written sequentially:
the Gorilla WebSocket library allows only one concurrent writer to a
connection at a time.  The channel receives raw bytes so broadcast payloads
are encoded once, not once per recipient.
*/
type client struct {
	id    string
	coord *session.Coordinator
	conn  *websocket.Conn
	send  chan []byte

	mu     sync.RWMutex
	closed bool

	cleanupOnce sync.Once
}

func newClient(id string, conn *websocket.Conn, coord *session.Coordinator) *client {
	return &client{
		id:    id,
		coord: coord,
		conn:  conn,
		send:  make(chan []byte, 192),
	}
}

func (c *client) ID() string { return c.id }

/*
Send implements session.Conn.  It never blocks: a closed connection or a
saturated queue reports false and the frame is dropped.
*/
func (c *client) Send(raw []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- raw:
		return true
	default:
		return false
	}
}

/*
CloseSend implements session.Conn.  Closing the send channel makes the write
pump flush a close frame and exit.
*/
func (c *client) CloseSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

/*
read reads and handles frames from the connection sequentially (one at a
time).  Well-formed envelopes are forwarded to the coordinator; a malformed
envelope is answered with an error frame and the connection stays up.  If a
frame cannot be read, the connection is torn down.
*/
func (c *client) read() {
	defer c.cleanup()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		env, err := protocol.Decode(raw)
		if err != nil || env.Type == "" {
			if out, encErr := protocol.Encode(protocol.TypeError, protocol.Error{
				Message: "Malformed message envelope",
			}); encErr == nil {
				c.Send(out)
			}
			continue
		}

		c.coord.Dispatch(c, env)
	}
}

/*
write takes the incoming frames from the send channel and writes them to the
connection sequentially (one at a time).

Automatically sends ping frames to maintain a heartbeat.
*/
func (c *client) write() {
	pingTicker := time.NewTicker(pingPeriod)
	defer func() {
		pingTicker.Stop()
		c.cleanup()
	}()

	for {
		select {
		case raw, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}

		case <-pingTicker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

/*
cleanup closes the connection and detaches the client from the coordinator.
Runs once no matter which pump dies first.
*/
func (c *client) cleanup() {
	c.cleanupOnce.Do(func() {
		c.conn.Close()
		c.coord.Detach(c)
	})
}
