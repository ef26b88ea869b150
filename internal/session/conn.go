package session

/*
Conn is the coordinator's handle on one connected client.  The transport owns
the socket; the coordinator only ever queues pre-encoded frames on it.
*/
type Conn interface {
	ID() string
	// Send queues a frame for delivery.  It must never block: it reports
	// false when the connection is closed or its queue is saturated, and the
	// frame is silently dropped.  Disconnect cleanup is the sole authority on
	// tearing the session down.
	Send(raw []byte) bool
	// CloseSend releases the outbound queue, letting the transport flush and
	// close the socket.  Called exactly once, by the coordinator.
	CloseSend()
}
