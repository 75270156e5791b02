package tags

import "github.com/yohamta/donburi"

var (
	// LocalCharacter entities are simulated here and own their ability state.
	LocalCharacter = donburi.NewTag().SetName("LocalCharacter")
	// RemoteCharacter entities mirror state received from the network.
	RemoteCharacter = donburi.NewTag().SetName("RemoteCharacter")
)
