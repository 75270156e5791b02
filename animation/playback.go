package animation

import (
	"fmt"
	"math"
)

type playOptions struct {
	frame     *int
	speed     *float64
	duration  *float64
	rotation  *float64
	direction *Direction
	loop      *LoopMode
}

// PlayOption overrides one aspect of playback for a single PlayTrack call.
type PlayOption func(*playOptions)

// WithFrame forces the frame index and skips timing for this tick.
func WithFrame(idx int) PlayOption {
	return func(o *playOptions) { o.frame = &idx }
}

// WithSpeed sets how much frame time this tick adds. Defaults to 1.
func WithSpeed(speed float64) PlayOption {
	return func(o *playOptions) { o.speed = &speed }
}

// WithDuration replaces the current frame's stored duration.
func WithDuration(ticks float64) PlayOption {
	return func(o *playOptions) { o.duration = &ticks }
}

// WithRotation sets the sprite rotation in radians and stops any tween.
func WithRotation(radians float64) PlayOption {
	return func(o *playOptions) { o.rotation = &radians }
}

func WithDirection(dir Direction) PlayOption {
	return func(o *playOptions) { o.direction = &dir }
}

func WithLoop(loop LoopMode) PlayOption {
	return func(o *playOptions) { o.loop = &loop }
}

// PlayTrack advances the cursor by one tick on the named track, switching
// to it first if needed. Content logic calls it once per Update.
func (c *Controller) PlayTrack(name string, opts ...PlayOption) error {
	var o playOptions
	for _, opt := range opts {
		opt(&o)
	}

	if name == "" {
		return fmt.Errorf("%w: empty track name", ErrInvalidArgument)
	}
	track, ok := c.main.source.Track(name)
	if !ok {
		return fmt.Errorf("%w: track %q in source %q", ErrKeyNotFound, name, c.main.source.Name())
	}
	if o.frame != nil && (*o.frame < 0 || *o.frame > track.Len()) {
		return fmt.Errorf("%w: frame %d not in [0, %d]", ErrOutOfRange, *o.frame, track.Len())
	}
	if o.speed != nil && *o.speed < 0 {
		return fmt.Errorf("%w: speed %v must not be negative", ErrOutOfRange, *o.speed)
	}
	if o.duration != nil && *o.duration <= 0 {
		return fmt.Errorf("%w: duration %v must be positive", ErrOutOfRange, *o.duration)
	}

	if o.rotation != nil {
		c.rotationTween = nil
		c.rotation = *o.rotation
	}

	speed := 1.0
	if o.speed != nil {
		speed = *o.speed
	}
	c.frameTime += speed

	dir := track.Direction
	if o.direction != nil {
		dir = *o.direction
	}
	if name != c.trackName {
		c.setTrack(name, track, dir)
	}

	last := track.LastIndex()
	if o.frame != nil {
		c.frameIndex = clamp(*o.frame, 0, last)
		c.frameTime = 0
		return nil
	}

	duration := float64(track.ClampedFrame(c.frameIndex).Duration)
	if o.duration != nil {
		duration = *o.duration
	}
	loop := track.Loop
	if o.loop != nil {
		loop = *o.loop
	}

	c.advance(duration, loop, dir, last)
	c.frameIndex = clamp(c.frameIndex, 0, last)
	return nil
}

// advance consumes whole durations of frame time and moves the cursor.
func (c *Controller) advance(duration float64, loop LoopMode, dir Direction, last int) {
	if duration <= 0 || c.frameTime < duration {
		return
	}

	backward := dir == Reverse || (dir == PingPong && c.reversed)
	room := last - c.frameIndex
	if backward {
		room = c.frameIndex
	}

	steps := 0
	for c.frameTime >= duration {
		c.frameTime -= duration
		steps++
		if steps > room {
			// Crossing the end of the track: drop the remaining debt so a
			// long tick cannot carry time across the boundary.
			c.frameTime = math.Mod(c.frameTime, duration)
			break
		}
	}

	switch dir {
	case Forward:
		if c.frameIndex >= last {
			if loop == LoopAlways {
				c.frameIndex = 0
			}
			return
		}
		c.frameIndex += steps

	case Reverse:
		if c.frameIndex <= 0 {
			if loop == LoopAlways {
				c.frameIndex = last
			}
			return
		}
		c.frameIndex -= steps

	case PingPong:
		switch {
		case c.frameIndex <= 0 && c.reversed:
			if loop != LoopAlways {
				return
			}
			c.reversed = false
			c.frameIndex += steps
		case c.frameIndex >= last && !c.reversed:
			if loop != LoopAlways {
				return
			}
			c.reversed = true
			c.frameIndex -= steps
		case c.reversed:
			c.frameIndex -= steps
		default:
			c.frameIndex += steps
		}
	}
}
