package animation

import "image"

// SpriteEffects are flip flags applied when drawing.
type SpriteEffects uint8

const (
	FlipHorizontal SpriteEffects = 1 << iota
	FlipVertical
)

func (e SpriteEffects) Has(flag SpriteEffects) bool {
	return e&flag != 0
}

// DrawData is everything a renderer needs to draw the current frame.
// Tinting and blending are left to the caller.
type DrawData struct {
	Texture Texture
	Rect    image.Rectangle

	X, Y     float64
	Rotation float64

	// Origin is relative to the frame's top-left corner.
	OriginX, OriginY float64

	Effects SpriteEffects
}

// Animation binds one Source to a Controller's cursor.
type Animation struct {
	controller *Controller
	source     *Source
	valid      bool
}

func (a *Animation) Source() *Source {
	return a.source
}

func (a *Animation) Controller() *Controller {
	return a.controller
}

// Valid reports whether the controller's track exists in this source.
func (a *Animation) Valid() bool {
	return a.valid
}

// CheckIfValid recomputes Valid for the given track name.
func (a *Animation) CheckIfValid(name string) bool {
	a.valid = a.source.HasTrack(name)
	return a.valid
}

// CurrentTrack returns the playing track, or the source's first track when
// the controller's track is not part of this source.
func (a *Animation) CurrentTrack() *Track {
	if a.valid {
		if t, ok := a.source.Track(a.controller.trackName); ok {
			return t
		}
	}
	_, t := a.source.FirstTrack()
	return t
}

func (a *Animation) CurrentFrame() Frame {
	return a.CurrentTrack().ClampedFrame(a.controller.frameIndex)
}

func (a *Animation) CurrentTile() PointByte {
	return a.CurrentFrame().Tile
}

func (a *Animation) CurrentTexture() Texture {
	t := a.CurrentTrack()
	return a.source.TextureFor(t, clamp(a.controller.frameIndex, 0, t.LastIndex()))
}

func (a *Animation) CurrentRect() image.Rectangle {
	return a.source.TileRect(a.CurrentTile())
}

// DrawData places the current frame at (x, y), centred on the sprite.
func (a *Animation) DrawData(x, y float64) DrawData {
	size := a.source.SpriteSize()
	return DrawData{
		Texture:  a.CurrentTexture(),
		Rect:     a.CurrentRect(),
		X:        x,
		Y:        y,
		Rotation: a.controller.rotation,
		OriginX:  float64(size.X) / 2,
		OriginY:  float64(size.Y) / 2,
		Effects:  a.controller.effects,
	}
}
