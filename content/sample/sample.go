// Package sample is a small content pack: an animated hero with three
// abilities, and a ghost form that can take over the hero's entity.
package sample

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/automoto/animlib/abilities"
	"github.com/automoto/animlib/abilities/script"
	"github.com/automoto/animlib/animation"
	"github.com/automoto/animlib/assets"
	"github.com/automoto/animlib/character"
	"github.com/automoto/animlib/registry"
)

//go:embed assets
var FS embed.FS

const (
	ModHero  = "hero"
	ModGhost = "ghost"
)

// Ability IDs of the hero mod.
const (
	DashID       = 1
	DoubleJumpID = 2
	GlideID      = 3
)

// Register adds the sample mods, loaded from FS, to reg.
func Register(reg *registry.Registry) error {
	mods, err := ModsFrom(FS)
	if err != nil {
		return err
	}
	for _, m := range mods {
		if err := reg.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// ModsFrom builds the sample mods from a copy of the assets directory in
// fsys, so a host can serve it from disk for hot reload.
func ModsFrom(fsys fs.FS) ([]*registry.Mod, error) {
	hero, err := assets.LoadSourceSpec(fsys, "assets/hero.yaml")
	if err != nil {
		return nil, err
	}
	cape, err := assets.LoadSourceSpec(fsys, "assets/cape.yaml")
	if err != nil {
		return nil, err
	}
	ghost, err := GhostSource()
	if err != nil {
		return nil, err
	}

	glideSrc, err := fs.ReadFile(fsys, "assets/glide.tengo")
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	glide, err := script.Compile(script.Config{
		ID:       GlideID,
		Name:     "glide",
		Cooldown: 30,
		MaxLevel: 1,
		Source:   glideSrc,
	})
	if err != nil {
		return nil, err
	}

	return []*registry.Mod{
		{
			Name:     ModHero,
			Priority: character.PriorityDefault,
			Sources:  []animation.SourceSpec{hero, cape},
			NewLogic: func() animation.Logic { return &HeroLogic{} },
			NewAbilities: func() []abilities.Behavior {
				return []abilities.Behavior{&Dash{}, &DoubleJump{}, glide.NewBehavior()}
			},
		},
		{
			Name:     ModGhost,
			Priority: character.PriorityHigh,
			Manual:   true,
			Sources:  []animation.SourceSpec{ghost},
			NewLogic: func() animation.Logic { return GhostLogic{} },
		},
	}, nil
}

// GhostSource is declared in code rather than YAML.
func GhostSource() (animation.SourceSpec, error) {
	float, err := animation.Range(animation.LoopAlways, animation.PingPong,
		animation.NewFrame(0, 0, 10), animation.NewFrame(0, 3, 10))
	if err != nil {
		return animation.SourceSpec{}, err
	}
	fade, err := animation.Range(animation.LoopNone, animation.Forward,
		animation.NewFrame(1, 0, 6), animation.NewFrame(1, 3, 0))
	if err != nil {
		return animation.SourceSpec{}, err
	}
	return animation.SourceSpec{
		Name:       "ghost",
		SpriteSize: animation.PointByte{X: 16, Y: 16},
		Texture:    "assets/ghost.png",
		Tracks: []animation.NamedTrack{
			{Name: "float", Track: float},
			{Name: "fade", Track: fade},
		},
	}, nil
}
