package systems

import (
	"log"

	"github.com/automoto/animlib/components"
	"github.com/automoto/animlib/registry"
	"github.com/automoto/animlib/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi/ecs"
)

func applyNetComponent(e *ecs.ECS, reg *registry.Registry, id esync.NetworkId, instance any) {
	data, ok := instance.(netcomponents.NetCharacterData)
	if !ok {
		return
	}
	entry, err := findOrSpawnRemote(e, reg, id)
	if err != nil {
		log.Printf("[net] snapshot for %d: %v", id, err)
		return
	}

	next := CharacterStateFromNet(reg, data)
	remote := components.RemoteState.Get(entry)
	if remote.Applied && remote.State == next {
		return
	}
	remote.State = next
	remote.Applied = false
}

// CharacterStateFromNet resolves the mod index of a synced NetCharacter.
func CharacterStateFromNet(reg *registry.Registry, data netcomponents.NetCharacterData) components.CharacterStateData {
	mod, _ := reg.ModAt(data.ModIndex)
	return components.CharacterStateData{
		Mod:      mod,
		Track:    data.Track,
		Frame:    data.Frame,
		Reversed: data.Reversed,
		Rotation: data.Rotation,
		Facing:   data.Facing,
	}
}

// NetCharacterFromState is the relay-side inverse of CharacterStateFromNet.
func NetCharacterFromState(reg *registry.Registry, s components.CharacterStateData) netcomponents.NetCharacterData {
	idx := -1
	if s.Mod != "" {
		if i, ok := reg.ModIndex(s.Mod); ok {
			idx = i
		}
	}
	return netcomponents.NetCharacterData{
		ModIndex: idx,
		Track:    s.Track,
		Frame:    s.Frame,
		Reversed: s.Reversed,
		Rotation: s.Rotation,
		Facing:   s.Facing,
	}
}
