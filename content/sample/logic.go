package sample

import (
	"github.com/automoto/animlib/abilities"
	"github.com/automoto/animlib/animation"
	cfg "github.com/automoto/animlib/config"
	"github.com/tanema/gween/ease"
)

// Mover is implemented by entities that report horizontal movement.
type Mover interface {
	Moving() bool
}

const glideTilt = 0.2 // radians

// HeroLogic picks the hero's track from its abilities and body.
type HeroLogic struct {
	abilities *abilities.Manager
	gliding   bool
}

func (l *HeroLogic) BindAbilities(m *abilities.Manager) {
	l.abilities = m
}

func (l *HeroLogic) Initialize(c *animation.Controller) error {
	return c.SwitchTrack("idle")
}

func (l *HeroLogic) Update(c *animation.Controller) error {
	if e, ok := c.Entity().(abilities.Entity); ok && !e.Alive() {
		return c.PlayTrack("die")
	}

	gliding := l.inUse(GlideID)
	if gliding != l.gliding {
		l.gliding = gliding
		if gliding {
			c.TweenRotation(glideTilt, cfg.Animation.RotationTweenTicks, ease.OutQuad)
		} else {
			c.TweenRotation(0, cfg.Animation.RotationTweenTicks, ease.InQuad)
		}
	}

	switch {
	case l.inUse(DashID):
		return c.PlayTrack("dash", animation.WithSpeed(1.5))
	case l.inUse(DoubleJumpID):
		return c.PlayTrack("jump")
	case gliding:
		return c.PlayTrack("glide")
	}
	if m, ok := c.Entity().(Mover); ok && m.Moving() {
		return c.PlayTrack("run")
	}
	return c.PlayTrack("idle")
}

func (l *HeroLogic) inUse(id int) bool {
	if l.abilities == nil {
		return false
	}
	a, ok := l.abilities.Get(id)
	return ok && a.InUse()
}

// GhostLogic floats, and fades out when the entity dies.
type GhostLogic struct{}

func (GhostLogic) Update(c *animation.Controller) error {
	if e, ok := c.Entity().(abilities.Entity); ok && !e.Alive() {
		return c.PlayTrack("fade")
	}
	return c.PlayTrack("float")
}
