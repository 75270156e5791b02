package netcomponents

import "github.com/yohamta/donburi"

// NetCharacterData is the relay's mirror of one entity's active character
// and playback cursor. Track names are looked up in the active mod's main
// source on the follower.
type NetCharacterData struct {
	ModIndex int // registration index, -1 when no character is active
	Track    string
	Frame    int
	Reversed bool
	Rotation float64
	Facing   int // -1 left, 1 right
}

var NetCharacter = donburi.NewComponentType[NetCharacterData]()
