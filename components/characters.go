package components

import (
	"github.com/automoto/animlib/character"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
)

// CharactersData holds an entity's character collection.
type CharactersData struct {
	Collection *character.Collection
	NetworkID  esync.NetworkId

	// Set on the first delta after spawn or a resync request.
	NeedsFull bool
	// Last active character and cursor sent, to skip unchanged states.
	LastState CharacterStateData
}

var Characters = donburi.NewComponentType[CharactersData]()

// CharacterStateData is what a follower needs to draw a mirrored entity.
type CharacterStateData struct {
	Mod      string
	Track    string
	Frame    int
	Reversed bool
	Rotation float64
	Facing   int
}

// RemoteStateData is the last character state received for a mirror.
type RemoteStateData struct {
	State   CharacterStateData
	Applied bool
}

var RemoteState = donburi.NewComponentType[RemoteStateData]()
