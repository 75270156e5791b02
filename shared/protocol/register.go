package protocol

import (
	"github.com/automoto/animlib/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
)

// Sync ID constants - ID 1 is reserved by necs for NetworkId
const (
	SyncIDNetCharacter uint = 10
)

// RegisterComponents registers all network components with necs for serialization.
// This must be called by both relay and client before any network operations.
func RegisterComponents() error {
	// Discrete state, no interpolation
	if err := esync.RegisterComponent(
		SyncIDNetCharacter,
		netcomponents.NetCharacterData{},
		netcomponents.NetCharacter,
	); err != nil {
		return err
	}
	return nil
}
