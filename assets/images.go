package assets

import (
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"sync"

	"github.com/automoto/animlib/animation"
)

// ImageResolver decodes textures from an fs.FS into image.Image values and
// caches them by path. The relay and tests use it; the client renders
// with render.TextureLoader.
type ImageResolver struct {
	fsys fs.FS

	mu    sync.Mutex
	cache map[string]image.Image
}

func NewImageResolver(fsys fs.FS) *ImageResolver {
	return &ImageResolver{
		fsys:  fsys,
		cache: make(map[string]image.Image),
	}
}

func (r *ImageResolver) Exists(p string) bool {
	_, err := fs.Stat(r.fsys, p)
	return err == nil
}

func (r *ImageResolver) Resolve(p string) (animation.Texture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if img, ok := r.cache[p]; ok {
		return img, nil
	}

	f, err := r.fsys.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open texture %s: %w", p, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", p, err)
	}
	r.cache[p] = img
	return img, nil
}

// Forget drops a cached texture so the next Resolve reads it again.
func (r *ImageResolver) Forget(p string) {
	r.mu.Lock()
	delete(r.cache, p)
	r.mu.Unlock()
}
