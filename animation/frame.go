package animation

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("animation: invalid argument")
	ErrKeyNotFound     = errors.New("animation: key not found")
	ErrOutOfRange      = errors.New("animation: out of range")
	ErrInvalidSource   = errors.New("animation: invalid source")
)

// PointByte is a cell position on a sprite grid.
type PointByte struct {
	X, Y uint8
}

func (p PointByte) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Frame is one sprite-sheet cell and how many ticks it plays for.
// A Duration of 0 holds the frame indefinitely.
type Frame struct {
	Tile     PointByte
	Duration uint16

	// TexturePath is set on texture-switch frames. The texture stays in
	// effect from this frame onward until the next switch frame.
	TexturePath string
}

func NewFrame(x, y uint8, duration uint16) Frame {
	return Frame{Tile: PointByte{X: x, Y: y}, Duration: duration}
}

func NewSwitchTextureFrame(x, y uint8, duration uint16, texturePath string) Frame {
	return Frame{Tile: PointByte{X: x, Y: y}, Duration: duration, TexturePath: texturePath}
}

func (f Frame) SwitchesTexture() bool {
	return f.TexturePath != ""
}
