package archetypes

import (
	"github.com/automoto/animlib/components"
	cfg "github.com/automoto/animlib/config"
	"github.com/automoto/animlib/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

var (
	LocalCharacter = newArchetype(
		tags.LocalCharacter,
		components.Body,
		components.Characters,
	)
	RemoteCharacter = newArchetype(
		tags.RemoteCharacter,
		components.Body,
		components.Characters,
		components.RemoteState,
	)
	Notice = newArchetype(
		components.NoticeState,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{
		components: cs,
	}
}

func (a *archetype) Spawn(ecs *ecs.ECS, cs ...donburi.IComponentType) *donburi.Entry {
	e := ecs.World.Entry(ecs.Create(
		cfg.Default,
		append(a.components, cs...)...,
	))
	return e
}
