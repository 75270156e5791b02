package factory

import (
	"fmt"

	"github.com/automoto/animlib/archetypes"
	"github.com/automoto/animlib/character"
	"github.com/automoto/animlib/components"
	"github.com/automoto/animlib/registry"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// CreateLocalCharacter spawns an entity simulated by this process, with a
// character for every registered mod. The highest-priority character that
// has animations starts active.
func CreateLocalCharacter(ecs *ecs.ECS, reg *registry.Registry, body components.BodyData) (*donburi.Entry, error) {
	entry := archetypes.LocalCharacter.Spawn(ecs)
	if err := initCharacters(entry, reg, body); err != nil {
		entry.Remove()
		return nil, err
	}
	components.Characters.Get(entry).NeedsFull = true
	return entry, nil
}

// CreateRemoteCharacter spawns a mirror for an entity owned by another
// participant. Its state only changes through received deltas.
func CreateRemoteCharacter(ecs *ecs.ECS, reg *registry.Registry, id esync.NetworkId) (*donburi.Entry, error) {
	entry := archetypes.RemoteCharacter.Spawn(ecs, esync.NetworkIdComponent)
	esync.NetworkIdComponent.SetValue(entry, id)
	if err := initCharacters(entry, reg, components.BodyData{Facing: 1, Gravity: 1}); err != nil {
		entry.Remove()
		return nil, err
	}
	components.Characters.Get(entry).NetworkID = id
	return entry, nil
}

func initCharacters(entry *donburi.Entry, reg *registry.Registry, body components.BodyData) error {
	components.Body.SetValue(entry, body)

	col, err := reg.NewCollection(components.NewBodyView(entry))
	if err != nil {
		return fmt.Errorf("create characters: %w", err)
	}
	if err := EnableDefault(col, reg); err != nil {
		return err
	}
	components.Characters.SetValue(entry, components.CharactersData{Collection: col})
	return nil
}

// EnableDefault offers activation to every non-manual character with
// animations in registration order. Priority arbitration leaves the
// strongest one active.
func EnableDefault(col *character.Collection, reg *registry.Registry) error {
	for _, ch := range col.Characters() {
		if ch.Controller == nil {
			continue
		}
		if mod, ok := reg.Mod(ch.Mod); ok && mod.Manual {
			continue
		}
		if _, err := col.Enable(ch.Mod); err != nil {
			return err
		}
	}
	return nil
}
