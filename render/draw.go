package render

import (
	"image"

	"github.com/automoto/animlib/animation"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	drawOp = &ebiten.DrawImageOptions{}
)

// Camera offsets world positions onto the screen.
type Camera struct {
	X, Y  float64
	Scale float64
}

// Options fills op from dd: origin, flips, rotation, position, then the
// camera. ColorScale and Blend are left to the caller.
func Options(op *ebiten.DrawImageOptions, dd animation.DrawData, cam Camera) {
	op.GeoM.Reset()
	op.GeoM.Translate(-dd.OriginX, -dd.OriginY)

	sx, sy := 1.0, 1.0
	if dd.Effects.Has(animation.FlipHorizontal) {
		sx = -1
	}
	if dd.Effects.Has(animation.FlipVertical) {
		sy = -1
	}
	op.GeoM.Scale(sx, sy)

	if dd.Rotation != 0 {
		op.GeoM.Rotate(dd.Rotation)
	}
	op.GeoM.Translate(dd.X-cam.X, dd.Y-cam.Y)
	if cam.Scale != 0 && cam.Scale != 1 {
		op.GeoM.Scale(cam.Scale, cam.Scale)
	}
}

// Draw draws one frame. Textures that are not *ebiten.Image are skipped.
func (l *TextureLoader) Draw(screen *ebiten.Image, dd animation.DrawData, cam Camera) {
	sheet, ok := dd.Texture.(*ebiten.Image)
	if !ok || sheet == nil || dd.Rect.Empty() {
		return
	}
	if !dd.Rect.In(sheet.Bounds()) {
		return
	}
	img := l.Frame(sheet, dd.Rect)

	drawOp.ColorScale.Reset()
	Options(drawOp, dd, cam)
	screen.DrawImage(img, drawOp)
}

// DrawController draws the main animation and every layered animation
// whose source has the playing track, in the order they were added.
func (l *TextureLoader) DrawController(screen *ebiten.Image, c *animation.Controller, x, y float64, cam Camera) {
	if c == nil {
		return
	}
	for _, a := range c.Animations() {
		if a != c.MainAnimation() && !a.Valid() {
			continue
		}
		l.Draw(screen, a.DrawData(x, y), cam)
	}
}

// TileBounds is the sheet rectangle of the controller's current main frame.
func TileBounds(c *animation.Controller) image.Rectangle {
	if c == nil {
		return image.Rectangle{}
	}
	return c.MainAnimation().CurrentRect()
}
