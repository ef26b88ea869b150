package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/treepeck/lobbyd/internal/lobby"
	"github.com/treepeck/lobbyd/internal/metrics"
	"github.com/treepeck/lobbyd/pkg/protocol"
)

/*
Relay mirrors global notifications onto an external message bus so services
without a WebSocket (matchmaking, analytics) can observe lobby lifecycle.
A nil relay disables mirroring.
*/
type Relay interface {
	Publish(routingKey string, raw []byte)
}

// Command is one inbound envelope together with the connection it came from.
type Command struct {
	Conn Conn
	Env  protocol.Envelope
}

type attachReq struct {
	conn Conn
	done chan struct{}
}

/*
Coordinator dispatches typed commands from connections, applies them through
the lobby store, identity registry and subscription index, and fans the
resulting notifications back out.

All three state holders are owned by the coordinator and touched only from the
Run loop, so command handling is serialized: the sequence "read state, mutate
state, compute broadcast set, send" for one command never interleaves with
another command's mutation.  No locks needed anywhere downstream.
*/
type Coordinator struct {
	log     *slog.Logger
	relay   Relay
	metrics *metrics.Set

	defaultMaxPlayers int

	players *Registry
	lobbies *lobby.Store
	subs    *subIndex
	clients map[string]Conn

	attach   chan attachReq
	detach   chan Conn
	commands chan Command
	destroy  chan chan struct{}
}

func New(log *slog.Logger, m *metrics.Set, relay Relay, defaultMaxPlayers, chatHistoryLimit int) *Coordinator {
	players := NewRegistry()

	return &Coordinator{
		log:               log,
		relay:             relay,
		metrics:           m,
		defaultMaxPlayers: defaultMaxPlayers,
		players:           players,
		lobbies:           lobby.NewStore(players, chatHistoryLimit),
		subs:              newSubIndex(),
		clients:           make(map[string]Conn),
		attach:            make(chan attachReq),
		detach:            make(chan Conn),
		commands:          make(chan Command, 64),
		destroy:           make(chan chan struct{}),
	}
}

/*
Run receives from the coordinator channels and handles one message at a time.
It returns after Destroy, once every client queue has been released.
*/
func (c *Coordinator) Run() {
	for {
		select {
		case req := <-c.attach:
			c.handleAttach(req)

		case conn := <-c.detach:
			c.handleDetach(conn)

		case cmd := <-c.commands:
			c.dispatch(cmd)

		case done := <-c.destroy:
			for _, conn := range c.clients {
				conn.CloseSend()
			}
			close(done)
			return
		}
	}
}

/*
Attach registers a new connection and blocks until the loop has picked it up,
so a client's first command can never outrun its own registration.
*/
func (c *Coordinator) Attach(conn Conn) {
	req := attachReq{conn: conn, done: make(chan struct{})}
	c.attach <- req
	<-req.done
}

// Detach reports a closed connection.  Safe to call for a connection that
// never registered a player or never joined a lobby.
func (c *Coordinator) Detach(conn Conn) {
	c.detach <- conn
}

// Dispatch queues an inbound envelope for handling.
func (c *Coordinator) Dispatch(conn Conn, env protocol.Envelope) {
	c.commands <- Command{Conn: conn, Env: env}
}

// Destroy stops the Run loop and releases every connected client.  It
// returns once the loop has exited.
func (c *Coordinator) Destroy() {
	done := make(chan struct{})
	c.destroy <- done
	<-done
}

func (c *Coordinator) handleAttach(req attachReq) {
	c.clients[req.conn.ID()] = req.conn
	c.metrics.ConnectedClients.Inc()
	c.log.Info("client connected", "conn", req.conn.ID())
	close(req.done)
}

/*
handleDetach runs the same forced-leave sequence as an explicit leave command,
then tears down the identity.  The departed connection receives nothing; the
rest of the world is told what changed.
*/
func (c *Coordinator) handleDetach(conn Conn) {
	id := conn.ID()
	if _, exists := c.clients[id]; !exists {
		return
	}
	delete(c.clients, id)

	if lobbyID, ok := c.subs.get(id); ok {
		res, err := c.lobbies.Leave(lobbyID, id)
		c.subs.clear(id)
		if err == nil && !res.Deleted {
			c.sendToLobby(lobbyID, protocol.TypePlayerLeft, protocol.PlayerLeft{
				PlayerID:  id,
				NewHostID: res.NewHostID,
			})
		}
	}

	c.players.Remove(id)
	conn.CloseSend()
	c.metrics.ConnectedClients.Dec()
	c.log.Info("client disconnected", "conn", id)

	c.broadcastLobbies()
}

/*
dispatch routes one envelope to its handler.  Unknown types are answered with
an error naming the command; they never affect other connections.
*/
func (c *Coordinator) dispatch(cmd Command) {
	conn, env := cmd.Conn, cmd.Env

	switch env.Type {
	case protocol.TypeRegisterPlayer:
		c.handleRegister(conn, cmd)
	case protocol.TypeGetLobbies:
		c.sendTo(conn, protocol.TypeLobbiesList, c.publicList())
	case protocol.TypeCreateLobby:
		c.handleCreate(conn, cmd)
	case protocol.TypeJoinLobby:
		c.handleJoin(conn, cmd)
	case protocol.TypeLeaveLobby:
		c.handleLeave(conn)
	case protocol.TypeDelistLobby:
		c.handleDelist(conn)
	case protocol.TypeSendChatMessage:
		c.handleChat(conn, cmd)
	case protocol.TypeRegeneratePassword:
		c.handleRegeneratePassword(conn)
	case protocol.TypeTogglePrivacy:
		c.handleTogglePrivacy(conn)
	case protocol.TypeGetLobbyDetails:
		c.handleDetails(conn)
	default:
		c.sendErrorMessage(conn, fmt.Sprintf("Unknown command %q", env.Type))
	}
}

func (c *Coordinator) handleRegister(conn Conn, cmd Command) {
	payload, err := decode[protocol.RegisterPlayer](cmd.Env.Data)
	if err != nil {
		c.sendErrorMessage(conn, "Malformed register_player payload")
		return
	}
	if payload.Level == 0 {
		payload.Level = 1
	}

	p := c.players.Register(conn.ID(), payload.Name, payload.Level)
	c.sendTo(conn, protocol.TypePlayerRegistered, p)
	c.log.Info("player registered", "conn", conn.ID(), "name", p.Name)
}

func (c *Coordinator) handleCreate(conn Conn, cmd Command) {
	if _, ok := c.requirePlayer(conn); !ok {
		return
	}
	payload, err := decode[protocol.CreateLobby](cmd.Env.Data)
	if err != nil {
		c.sendErrorMessage(conn, "Malformed create_lobby payload")
		return
	}
	if _, ok := c.subs.get(conn.ID()); ok {
		c.sendError(conn, lobby.ErrAlreadyMember)
		return
	}

	maxPlayers := payload.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = c.defaultMaxPlayers
	}

	l := c.lobbies.Create(payload.Title, conn.ID(), maxPlayers)
	c.subs.set(conn.ID(), l.ID)

	details, _ := c.lobbies.Details(l.ID, conn.ID())
	c.sendTo(conn, protocol.TypeLobbyCreated, details)
	c.broadcastLobbies()
	c.log.Info("lobby created", "lobby", l.ID, "host", conn.ID())
}

func (c *Coordinator) handleJoin(conn Conn, cmd Command) {
	player, ok := c.requirePlayer(conn)
	if !ok {
		return
	}
	payload, err := decode[protocol.JoinLobby](cmd.Env.Data)
	if err != nil {
		c.sendErrorMessage(conn, "Malformed join_lobby payload")
		return
	}
	if _, ok := c.subs.get(conn.ID()); ok {
		c.sendError(conn, lobby.ErrAlreadyMember)
		return
	}

	l, err := c.lobbies.Join(payload.LobbyID, conn.ID())
	if err != nil {
		c.sendError(conn, err)
		return
	}
	c.subs.set(conn.ID(), l.ID)

	details, _ := c.lobbies.Details(l.ID, conn.ID())
	c.sendTo(conn, protocol.TypeLobbyJoined, details)
	c.sendToLobby(l.ID, protocol.TypePlayerJoined, protocol.PlayerJoined{Player: player}, conn.ID())
	c.broadcastLobbies()
}

func (c *Coordinator) handleLeave(conn Conn) {
	if _, ok := c.requirePlayer(conn); !ok {
		return
	}
	lobbyID, ok := c.subs.get(conn.ID())
	if !ok {
		c.sendError(conn, lobby.ErrNotInLobby)
		return
	}

	res, err := c.lobbies.Leave(lobbyID, conn.ID())
	if err != nil {
		c.sendError(conn, err)
		return
	}
	c.subs.clear(conn.ID())

	c.sendTo(conn, protocol.TypeLobbyLeft, nil)
	if !res.Deleted {
		c.sendToLobby(lobbyID, protocol.TypePlayerLeft, protocol.PlayerLeft{
			PlayerID:  conn.ID(),
			NewHostID: res.NewHostID,
		})
	}
	c.broadcastLobbies()
}

func (c *Coordinator) handleDelist(conn Conn) {
	if _, ok := c.requirePlayer(conn); !ok {
		return
	}
	lobbyID, ok := c.subs.get(conn.ID())
	if !ok {
		c.sendError(conn, lobby.ErrNotInLobby)
		return
	}

	members, err := c.lobbies.Delist(lobbyID, conn.ID())
	if err != nil {
		c.sendError(conn, err)
		return
	}

	// Notify before clearing the index; afterwards nobody is subscribed.
	for _, id := range members {
		c.sendToID(id, protocol.TypeLobbyDelisted, nil)
	}
	c.subs.dropLobby(lobbyID)
	c.broadcastLobbies()
	c.log.Info("lobby delisted", "lobby", lobbyID, "host", conn.ID())
}

func (c *Coordinator) handleChat(conn Conn, cmd Command) {
	if _, ok := c.requirePlayer(conn); !ok {
		return
	}
	payload, err := decode[protocol.SendChat](cmd.Env.Data)
	if err != nil {
		c.sendErrorMessage(conn, "Malformed send_chat_message payload")
		return
	}
	lobbyID, ok := c.subs.get(conn.ID())
	if !ok {
		c.sendError(conn, lobby.ErrNotInLobby)
		return
	}

	msg, err := c.lobbies.AddChat(lobbyID, conn.ID(), payload.Message)
	if err != nil {
		c.sendError(conn, err)
		return
	}

	// Every member, the sender included, receives the authoritative copy.
	c.sendToLobby(lobbyID, protocol.TypeChatMessage, msg)
	c.metrics.ChatMessages.Inc()
}

func (c *Coordinator) handleRegeneratePassword(conn Conn) {
	if _, ok := c.requirePlayer(conn); !ok {
		return
	}
	lobbyID, ok := c.subs.get(conn.ID())
	if !ok {
		c.sendError(conn, lobby.ErrNotInLobby)
		return
	}

	password, err := c.lobbies.RegeneratePassword(lobbyID, conn.ID())
	if err != nil {
		c.sendError(conn, err)
		return
	}
	c.sendToLobby(lobbyID, protocol.TypePasswordUpdated, protocol.PasswordUpdated{Password: password})
}

func (c *Coordinator) handleTogglePrivacy(conn Conn) {
	if _, ok := c.requirePlayer(conn); !ok {
		return
	}
	lobbyID, ok := c.subs.get(conn.ID())
	if !ok {
		c.sendError(conn, lobby.ErrNotInLobby)
		return
	}

	isPrivate, err := c.lobbies.TogglePrivacy(lobbyID, conn.ID())
	if err != nil {
		c.sendError(conn, err)
		return
	}
	c.sendToLobby(lobbyID, protocol.TypePrivacyUpdated, protocol.PrivacyUpdated{IsPrivate: isPrivate})
	c.broadcastLobbies()
}

func (c *Coordinator) handleDetails(conn Conn) {
	if _, ok := c.requirePlayer(conn); !ok {
		return
	}
	lobbyID, ok := c.subs.get(conn.ID())
	if !ok {
		c.sendError(conn, lobby.ErrNotInLobby)
		return
	}

	details, err := c.lobbies.Details(lobbyID, conn.ID())
	if err != nil {
		c.sendError(conn, err)
		return
	}
	c.sendTo(conn, protocol.TypeLobbyDetails, details)
}

/*
requirePlayer resolves the connection's registered identity.  Commands that
act on behalf of a player are rejected until register_player succeeds.
*/
func (c *Coordinator) requirePlayer(conn Conn) (protocol.Player, bool) {
	p, ok := c.players.View(conn.ID())
	if !ok {
		c.sendErrorMessage(conn, "Register a player first")
	}
	return p, ok
}

func (c *Coordinator) publicList() protocol.LobbiesList {
	list := protocol.LobbiesList{Lobbies: []protocol.LobbySummary{}}
	for summary := range c.lobbies.Public() {
		list.Lobbies = append(list.Lobbies, summary)
	}
	return list
}

/*
broadcastLobbies pushes the refreshed public list to every live connection and
mirrors it to the relay.  Called after every mutation that changes what the
list shows.
*/
func (c *Coordinator) broadcastLobbies() {
	raw, err := protocol.Encode(protocol.TypeLobbiesUpdated, c.publicList())
	if err != nil {
		c.log.Error("cannot encode lobbies_updated", "error", err)
		return
	}
	for _, conn := range c.clients {
		c.push(conn, raw)
	}
	if c.relay != nil {
		c.relay.Publish("lobby.list", raw)
	}
	c.metrics.OpenLobbies.Set(float64(c.lobbies.Count()))
}

func (c *Coordinator) sendTo(conn Conn, typ string, payload any) {
	raw, err := protocol.Encode(typ, payload)
	if err != nil {
		c.log.Error("cannot encode payload", "type", typ, "error", err)
		return
	}
	c.push(conn, raw)
}

func (c *Coordinator) sendToID(connID, typ string, payload any) {
	if conn, exists := c.clients[connID]; exists {
		c.sendTo(conn, typ, payload)
	}
}

/*
sendToLobby delivers the payload to every live connection subscribed to the
lobby, minus the excluded ones.  The payload is encoded once and the raw bytes
are fanned out.
*/
func (c *Coordinator) sendToLobby(lobbyID, typ string, payload any, exclude ...string) {
	raw, err := protocol.Encode(typ, payload)
	if err != nil {
		c.log.Error("cannot encode payload", "type", typ, "error", err)
		return
	}
	for connID := range c.subs.members(lobbyID) {
		if len(exclude) > 0 && connID == exclude[0] {
			continue
		}
		if conn, exists := c.clients[connID]; exists {
			c.push(conn, raw)
		}
	}
}

// push hands the frame to the transport.  A closed or saturated connection
// drops it silently; detach cleanup is the authority on teardown.
func (c *Coordinator) push(conn Conn, raw []byte) {
	if !conn.Send(raw) {
		c.log.Debug("frame dropped", "conn", conn.ID())
	}
}

func (c *Coordinator) sendError(conn Conn, err error) {
	c.sendErrorMessage(conn, userMessage(err))
}

func (c *Coordinator) sendErrorMessage(conn Conn, msg string) {
	c.metrics.CommandErrors.Inc()
	c.sendTo(conn, protocol.TypeError, protocol.Error{Message: msg})
}

// userMessage maps a store error onto the human-readable wire message.
func userMessage(err error) string {
	switch {
	case errors.Is(err, lobby.ErrNotFound):
		return "Lobby not found"
	case errors.Is(err, lobby.ErrFull):
		return "Lobby is full"
	case errors.Is(err, lobby.ErrAlreadyMember):
		return "You are already in a lobby"
	case errors.Is(err, lobby.ErrNotInLobby):
		return "You are not in a lobby"
	case errors.Is(err, lobby.ErrNotMember):
		return "You are not a member of this lobby"
	case errors.Is(err, lobby.ErrForbidden):
		return "Only the host can do that"
	default:
		return "Something went wrong"
	}
}
