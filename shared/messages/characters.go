package messages

import "github.com/leap-fish/necs/esync"

// AbilitySync carries one entity's ability delta, encoded by
// character.Collection.WriteAbilityDelta. Clients send their own entity's
// delta; the relay rebroadcasts what changed to everyone else.
type AbilitySync struct {
	NetworkID esync.NetworkId
	Full      bool
	Payload   []byte
}

// CharacterState is sent by a client when its entity's active character
// or cursor changes. The relay mirrors it into NetCharacter.
type CharacterState struct {
	Mod      string
	Track    string
	Frame    int
	Reversed bool
	Rotation float64
	Facing   int
}

// ResyncRequest asks the relay for a full ability snapshot of every entity.
type ResyncRequest struct{}

// AbilityResend is sent by the relay to a client whose ability delta
// failed to decode. The client answers with a full delta.
type AbilityResend struct{}

// EntityLeft is broadcast when a client's entity is removed.
type EntityLeft struct {
	NetworkID esync.NetworkId
}
