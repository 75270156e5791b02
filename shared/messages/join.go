package messages

import "github.com/leap-fish/necs/esync"

// JoinRequest is sent by a client after connecting to request joining the session.
type JoinRequest struct {
	Version    string
	PlayerName string
	// Mods the client has registered, in registration order. The relay
	// rejects clients whose list differs from its own, since delta widths
	// are derived from it.
	Mods []string
}

// JoinAccepted is sent by the relay when a client's join request is accepted.
type JoinAccepted struct {
	NetworkID  esync.NetworkId
	ServerName string
	TickRate   int
}

// JoinRejected is sent by the relay when a client's join request is rejected.
type JoinRejected struct {
	Reason string
}
