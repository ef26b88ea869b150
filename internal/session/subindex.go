package session

/*
subIndex stores two maps of lobby subscriptions.

By maintaining both mappings, these requirements are satisfied:
 1. Fast addition and removal of a single connection's subscription;
 2. Efficient lookup of all subscribers for a given lobby id;
 3. Efficient lookup of the lobby a connection is subscribed to.

A connection appears in the index iff it is a member of exactly one lobby;
the coordinator updates the index in lockstep with every membership change.
*/
type subIndex struct {
	byLobby map[string]map[string]struct{}
	byConn  map[string]string
}

func newSubIndex() *subIndex {
	return &subIndex{
		byLobby: make(map[string]map[string]struct{}),
		byConn:  make(map[string]string),
	}
}

func (s *subIndex) set(connID, lobbyID string) {
	if prev, ok := s.byConn[connID]; ok {
		delete(s.byLobby[prev], connID)
	}
	subs, ok := s.byLobby[lobbyID]
	if !ok {
		subs = make(map[string]struct{})
		s.byLobby[lobbyID] = subs
	}
	subs[connID] = struct{}{}
	s.byConn[connID] = lobbyID
}

func (s *subIndex) clear(connID string) {
	lobbyID, ok := s.byConn[connID]
	if !ok {
		return
	}
	delete(s.byLobby[lobbyID], connID)
	if len(s.byLobby[lobbyID]) == 0 {
		delete(s.byLobby, lobbyID)
	}
	delete(s.byConn, connID)
}

func (s *subIndex) get(connID string) (string, bool) {
	lobbyID, ok := s.byConn[connID]
	return lobbyID, ok
}

// members returns the connection ids subscribed to the lobby.
func (s *subIndex) members(lobbyID string) map[string]struct{} {
	return s.byLobby[lobbyID]
}

// dropLobby clears every subscription pointing at the lobby.
func (s *subIndex) dropLobby(lobbyID string) {
	for connID := range s.byLobby[lobbyID] {
		delete(s.byConn, connID)
	}
	delete(s.byLobby, lobbyID)
}
