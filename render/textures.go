// Package render draws controller output with ebiten.
package render

import (
	"bytes"
	"fmt"
	"image"
	"io/fs"

	"github.com/automoto/animlib/animation"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

type frameKey struct {
	path string
	rect image.Rectangle
}

// TextureLoader resolves texture paths to *ebiten.Image sheets and caches
// the sub-images cut from them.
type TextureLoader struct {
	fsys       fs.FS
	cache      map[string]*ebiten.Image
	paths      map[*ebiten.Image]string
	frameCache map[frameKey]*ebiten.Image
}

func NewTextureLoader(fsys fs.FS) *TextureLoader {
	return &TextureLoader{
		fsys:       fsys,
		cache:      make(map[string]*ebiten.Image),
		paths:      make(map[*ebiten.Image]string),
		frameCache: make(map[frameKey]*ebiten.Image),
	}
}

func (l *TextureLoader) Exists(path string) bool {
	if _, ok := l.cache[path]; ok {
		return true
	}
	_, err := fs.Stat(l.fsys, path)
	return err == nil
}

func (l *TextureLoader) Resolve(path string) (animation.Texture, error) {
	return l.Load(path)
}

// Load reads and caches the sheet at path.
func (l *TextureLoader) Load(path string) (*ebiten.Image, error) {
	if img, ok := l.cache[path]; ok {
		return img, nil
	}

	imgBytes, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read image file %s: %w", path, err)
	}

	img, _, err := ebitenutil.NewImageFromReader(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("create image from bytes for %s: %w", path, err)
	}

	l.cache[path] = img
	l.paths[img] = path
	return img, nil
}

// Forget drops a sheet and its frames so the next Load reads the file again.
func (l *TextureLoader) Forget(path string) {
	img, ok := l.cache[path]
	if !ok {
		return
	}
	delete(l.cache, path)
	delete(l.paths, img)
	for k := range l.frameCache {
		if k.path == path {
			delete(l.frameCache, k)
		}
	}
}

// Frame returns the cached sub-image of sheet at rect. Sheets not loaded
// through l are cut without caching.
func (l *TextureLoader) Frame(sheet *ebiten.Image, rect image.Rectangle) *ebiten.Image {
	path, ok := l.paths[sheet]
	if !ok {
		return sheet.SubImage(rect).(*ebiten.Image)
	}
	key := frameKey{path: path, rect: rect}
	if img, ok := l.frameCache[key]; ok {
		return img
	}
	frame := sheet.SubImage(rect).(*ebiten.Image)
	l.frameCache[key] = frame
	return frame
}
