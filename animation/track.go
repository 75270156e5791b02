package animation

import (
	"fmt"
	"slices"
	"strings"
)

type LoopMode uint8

const (
	LoopNone LoopMode = iota
	LoopAlways
)

func (l LoopMode) String() string {
	switch l {
	case LoopNone:
		return "none"
	case LoopAlways:
		return "always"
	default:
		return fmt.Sprintf("LoopMode(%d)", uint8(l))
	}
}

// ParseLoopMode accepts "none" or "always" (case-insensitive). An empty
// string yields LoopAlways.
func ParseLoopMode(s string) (LoopMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "always":
		return LoopAlways, nil
	case "none", "once":
		return LoopNone, nil
	default:
		return LoopNone, fmt.Errorf("%w: unknown loop mode %q", ErrInvalidArgument, s)
	}
}

type Direction uint8

const (
	Forward Direction = iota
	Reverse
	PingPong
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	case PingPong:
		return "pingpong"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// ParseDirection accepts "forward", "reverse" or "pingpong". An empty
// string yields Forward.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "forward":
		return Forward, nil
	case "reverse", "backward":
		return Reverse, nil
	case "pingpong", "ping_pong", "ping-pong":
		return PingPong, nil
	default:
		return Forward, fmt.Errorf("%w: unknown direction %q", ErrInvalidArgument, s)
	}
}

// Track is an ordered animation clip. Tracks are built at load time and
// are read-only once handed to a Source.
type Track struct {
	Loop      LoopMode
	Direction Direction

	frames []Frame

	// frame index -> texture path, plus the sorted keys for lookups.
	textures   map[int]string
	textureIdx []int
}

func NewTrack(loop LoopMode, dir Direction, frames ...Frame) (*Track, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: track needs at least one frame", ErrInvalidArgument)
	}
	t := &Track{
		Loop:      loop,
		Direction: dir,
		frames:    slices.Clone(frames),
	}
	for i, f := range t.frames {
		if f.SwitchesTexture() {
			t.setTexture(f.TexturePath, i)
		}
	}
	return t, nil
}

// Single returns a one-frame track that never advances past its frame.
func Single(frame Frame) *Track {
	t, _ := NewTrack(LoopNone, Forward, frame)
	return t
}

// Range expands a column of frames from start to end. Every row between
// them shares start's duration; end is appended as given.
func Range(loop LoopMode, dir Direction, start, end Frame) (*Track, error) {
	if start.Tile.X != end.Tile.X {
		return nil, fmt.Errorf("%w: range columns differ (%d != %d)", ErrInvalidArgument, start.Tile.X, end.Tile.X)
	}
	if start.Tile.Y >= end.Tile.Y {
		return nil, fmt.Errorf("%w: range start row %d must be before end row %d", ErrOutOfRange, start.Tile.Y, end.Tile.Y)
	}

	frames := make([]Frame, 0, int(end.Tile.Y-start.Tile.Y)+1)
	for y := start.Tile.Y; y < end.Tile.Y; y++ {
		f := NewFrame(start.Tile.X, y, start.Duration)
		if y == start.Tile.Y {
			f.TexturePath = start.TexturePath
		}
		frames = append(frames, f)
	}
	frames = append(frames, end)
	return NewTrack(loop, dir, frames...)
}

// WithTexture uses path for the whole track unless a later frame switches.
func (t *Track) WithTexture(path string) *Track {
	t.setTexture(path, 0)
	return t
}

func (t *Track) SetTextureAtFrameIndex(path string, idx int) error {
	if idx < 0 || idx >= len(t.frames) {
		return fmt.Errorf("%w: frame index %d not in [0, %d)", ErrOutOfRange, idx, len(t.frames))
	}
	if path == "" {
		return fmt.Errorf("%w: empty texture path", ErrInvalidArgument)
	}
	t.setTexture(path, idx)
	return nil
}

func (t *Track) setTexture(path string, idx int) {
	if t.textures == nil {
		t.textures = make(map[int]string)
	}
	if _, ok := t.textures[idx]; !ok {
		t.textureIdx = append(t.textureIdx, idx)
		slices.Sort(t.textureIdx)
	}
	t.textures[idx] = path
}

func (t *Track) Len() int {
	return len(t.frames)
}

func (t *Track) LastIndex() int {
	return len(t.frames) - 1
}

// Frames returns a copy of the frame list.
func (t *Track) Frames() []Frame {
	return slices.Clone(t.frames)
}

// ClampedFrame never fails: indexes below zero return the first frame and
// indexes past the end return the last one.
func (t *Track) ClampedFrame(idx int) Frame {
	return t.frames[clamp(idx, 0, len(t.frames)-1)]
}

// TexturePathAt returns the texture registered at the greatest index that
// is <= frameIdx, or "" when no override applies.
func (t *Track) TexturePathAt(frameIdx int) string {
	if len(t.textureIdx) == 0 {
		return ""
	}
	pos, found := slices.BinarySearch(t.textureIdx, frameIdx)
	if !found {
		pos--
	}
	if pos < 0 {
		return ""
	}
	return t.textures[t.textureIdx[pos]]
}

// TexturePaths returns every texture path referenced by the track.
func (t *Track) TexturePaths() []string {
	paths := make([]string, 0, len(t.textureIdx))
	for _, idx := range t.textureIdx {
		paths = append(paths, t.textures[idx])
	}
	return paths
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
