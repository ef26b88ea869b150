/*
Package session implements the coordinator: a single event loop that owns the
identity registry, the lobby store and the subscription index, dispatches
typed commands from connections and fans notifications back out.
*/
package session

import "github.com/treepeck/lobbyd/pkg/protocol"

/*
Registry maps each connection to its player identity.  One entry per
connection, created by register_player and destroyed on disconnect; identities
do not survive reconnects.
*/
type Registry struct {
	players map[string]protocol.Player
}

func NewRegistry() *Registry {
	return &Registry{players: make(map[string]protocol.Player)}
}

func (r *Registry) Register(id, name string, level int) protocol.Player {
	p := protocol.Player{ID: id, Name: name, Level: level}
	r.players[id] = p
	return p
}

// View implements lobby.Resolver.
func (r *Registry) View(id string) (protocol.Player, bool) {
	p, ok := r.players[id]
	return p, ok
}

func (r *Registry) Remove(id string) {
	delete(r.players, id)
}
