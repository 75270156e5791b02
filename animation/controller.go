package animation

import (
	"fmt"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Entity is the part of the host entity a controller reads each tick.
type Entity interface {
	// Direction is the facing direction, -1 or 1.
	Direction() int
	// GravityDirection is -1 when gravity is flipped, 1 otherwise.
	GravityDirection() int
}

// Logic is the content pack's per-tick animation code. Update is expected
// to call PlayTrack exactly once.
type Logic interface {
	Update(c *Controller) error
}

// Initializer is optionally implemented by Logic.
type Initializer interface {
	Initialize(c *Controller) error
}

// Controller holds the playback cursor for one mod on one entity.
type Controller struct {
	mod    string
	entity Entity
	logic  Logic

	main       *Animation
	animations []*Animation

	trackName  string
	frameIndex int
	frameTime  float64
	reversed   bool
	rotation   float64
	effects    SpriteEffects

	rotationTween *gween.Tween
}

// NewController creates a controller whose main animation plays from main.
// Extra sources are layered animations driven by the same cursor.
func NewController(mod string, entity Entity, logic Logic, main *Source, extra ...*Source) (*Controller, error) {
	if main == nil {
		return nil, fmt.Errorf("%w: controller for %q needs a main source", ErrInvalidArgument, mod)
	}
	c := &Controller{
		mod:    mod,
		entity: entity,
		logic:  logic,
	}
	c.main = c.AddAnimation(main)
	for _, src := range extra {
		if src != nil {
			c.AddAnimation(src)
		}
	}

	name, t := main.FirstTrack()
	c.setTrack(name, t, t.Direction)

	if init, ok := logic.(Initializer); ok {
		if err := init.Initialize(c); err != nil {
			return nil, fmt.Errorf("initialize controller %q: %w", mod, err)
		}
	}
	return c, nil
}

// AddAnimation binds another source to this controller's cursor.
func (c *Controller) AddAnimation(src *Source) *Animation {
	a := &Animation{controller: c, source: src}
	if c.trackName != "" {
		a.CheckIfValid(c.trackName)
	}
	c.animations = append(c.animations, a)
	return a
}

func (c *Controller) Mod() string {
	return c.mod
}

func (c *Controller) Entity() Entity {
	return c.entity
}

func (c *Controller) MainAnimation() *Animation {
	return c.main
}

func (c *Controller) Animations() []*Animation {
	return c.animations
}

func (c *Controller) TrackName() string {
	return c.trackName
}

func (c *Controller) FrameIndex() int {
	return c.frameIndex
}

func (c *Controller) FrameTime() float64 {
	return c.frameTime
}

func (c *Controller) Reversed() bool {
	return c.reversed
}

// SetReversed sets which way a ping-pong track travels next. Mirrors use
// it to follow the owner's cursor.
func (c *Controller) SetReversed(reversed bool) {
	c.reversed = reversed
}

func (c *Controller) Rotation() float64 {
	return c.rotation
}

func (c *Controller) Effects() SpriteEffects {
	return c.effects
}

func (c *Controller) SetEffects(e SpriteEffects) {
	c.effects = e
}

// Update refreshes flip effects from the entity, steps any rotation tween,
// then runs the content pack's logic.
func (c *Controller) Update() error {
	if c.entity != nil {
		var fx SpriteEffects
		if c.entity.Direction() < 0 {
			fx |= FlipHorizontal
		}
		if c.entity.GravityDirection() < 0 {
			fx |= FlipVertical
		}
		c.effects = fx
	}

	if c.rotationTween != nil {
		v, done := c.rotationTween.Update(1)
		c.rotation = float64(v)
		if done {
			c.rotationTween = nil
		}
	}

	if c.logic == nil {
		return nil
	}
	return c.logic.Update(c)
}

// TweenRotation eases the sprite rotation to target over the given number
// of ticks. A nil fn uses linear easing.
func (c *Controller) TweenRotation(target float64, ticks int, fn ease.TweenFunc) {
	if ticks <= 0 {
		c.rotationTween = nil
		c.rotation = target
		return
	}
	if fn == nil {
		fn = ease.Linear
	}
	c.rotationTween = gween.New(float32(c.rotation), float32(target), float32(ticks), fn)
}

// SwitchTrack moves the cursor to the start of name. It is a no-op when
// name is already playing and leaves the cursor untouched on error.
func (c *Controller) SwitchTrack(name string) error {
	if name == c.trackName {
		return nil
	}
	if name == "" {
		return fmt.Errorf("%w: empty track name", ErrInvalidArgument)
	}
	t, ok := c.main.source.Track(name)
	if !ok {
		return fmt.Errorf("%w: track %q in source %q", ErrKeyNotFound, name, c.main.source.Name())
	}
	c.setTrack(name, t, t.Direction)
	return nil
}

func (c *Controller) setTrack(name string, t *Track, dir Direction) {
	c.trackName = name
	c.frameTime = 0
	c.reversed = dir == Reverse
	if c.reversed {
		c.frameIndex = t.LastIndex()
	} else {
		c.frameIndex = 0
	}
	for _, a := range c.animations {
		a.CheckIfValid(name)
	}
}

// Rebind swaps each animation's source for the one lookup returns under
// the same name. Used after hot reloading sources.
func (c *Controller) Rebind(lookup func(name string) (*Source, bool)) {
	for _, a := range c.animations {
		if src, ok := lookup(a.source.Name()); ok && src != nil {
			a.source = src
		}
	}
	t, ok := c.main.source.Track(c.trackName)
	if !ok {
		name, first := c.main.source.FirstTrack()
		c.setTrack(name, first, first.Direction)
		return
	}
	c.frameIndex = clamp(c.frameIndex, 0, t.LastIndex())
	for _, a := range c.animations {
		a.CheckIfValid(c.trackName)
	}
}
