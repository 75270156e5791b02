package animation

import (
	"fmt"
	"image"
)

// Texture is an opaque sheet handle. *ebiten.Image and image.Image both
// satisfy it.
type Texture interface {
	Bounds() image.Rectangle
}

// TextureResolver turns texture paths into handles. It is implemented by
// the host's asset layer.
type TextureResolver interface {
	Resolve(path string) (Texture, error)
	Exists(path string) bool
}

// NamedTrack pairs a track with the name developers play it by.
type NamedTrack struct {
	Name  string
	Track *Track
}

// SourceSpec is the unvalidated description of a Source. The first track
// is the fallback used when a requested name is not present.
type SourceSpec struct {
	Name       string
	SpriteSize PointByte
	Texture    string
	Tracks     []NamedTrack
}

// Source is a shared, read-only track database for one content pack.
type Source struct {
	name           string
	spriteSize     PointByte
	texturePath    string
	defaultTexture Texture

	tracks   map[string]*Track
	order    []string
	textures map[string]Texture
}

// ValidateSpec checks spec without touching textures: name, sprite size,
// texture path and non-empty, uniquely named tracks. Problems are
// reported as ErrInvalidSource.
func ValidateSpec(spec SourceSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("%w: source has no name", ErrInvalidSource)
	}
	if spec.SpriteSize.X == 0 || spec.SpriteSize.Y == 0 {
		return fmt.Errorf("%w: source %q has zero sprite size %v", ErrInvalidSource, spec.Name, spec.SpriteSize)
	}
	if len(spec.Tracks) == 0 {
		return fmt.Errorf("%w: source %q has no tracks", ErrInvalidSource, spec.Name)
	}
	if spec.Texture == "" {
		return fmt.Errorf("%w: source %q has no texture", ErrInvalidSource, spec.Name)
	}
	seen := make(map[string]struct{}, len(spec.Tracks))
	for _, nt := range spec.Tracks {
		if nt.Name == "" {
			return fmt.Errorf("%w: source %q has an unnamed track", ErrInvalidSource, spec.Name)
		}
		if nt.Track == nil || nt.Track.Len() == 0 {
			return fmt.Errorf("%w: source %q: track %q is empty", ErrInvalidSource, spec.Name, nt.Name)
		}
		if _, dup := seen[nt.Name]; dup {
			return fmt.Errorf("%w: source %q: duplicate track %q", ErrInvalidSource, spec.Name, nt.Name)
		}
		seen[nt.Name] = struct{}{}
	}
	return nil
}

// NewSource validates spec and resolves every texture it references.
// Any integrity problem is reported as ErrInvalidSource.
func NewSource(spec SourceSpec, resolver TextureResolver) (*Source, error) {
	if err := ValidateSpec(spec); err != nil {
		return nil, err
	}
	if resolver == nil {
		return nil, fmt.Errorf("%w: source %q: no texture resolver", ErrInvalidSource, spec.Name)
	}

	s := &Source{
		name:        spec.Name,
		spriteSize:  spec.SpriteSize,
		texturePath: spec.Texture,
		tracks:      make(map[string]*Track, len(spec.Tracks)),
		order:       make([]string, 0, len(spec.Tracks)),
		textures:    make(map[string]Texture),
	}
	for _, nt := range spec.Tracks {
		s.tracks[nt.Name] = nt.Track
		s.order = append(s.order, nt.Name)
	}

	if err := s.resolve(spec.Texture, resolver); err != nil {
		return nil, err
	}
	s.defaultTexture = s.textures[spec.Texture]
	for _, name := range s.order {
		for _, path := range s.tracks[name].TexturePaths() {
			if err := s.resolve(path, resolver); err != nil {
				return nil, fmt.Errorf("track %q: %w", name, err)
			}
		}
	}
	return s, nil
}

func (s *Source) resolve(path string, resolver TextureResolver) error {
	if _, ok := s.textures[path]; ok {
		return nil
	}
	if !resolver.Exists(path) {
		return fmt.Errorf("%w: source %q: missing texture %q", ErrInvalidSource, s.name, path)
	}
	tex, err := resolver.Resolve(path)
	if err != nil {
		return fmt.Errorf("%w: source %q: texture %q: %v", ErrInvalidSource, s.name, path, err)
	}
	s.textures[path] = tex
	return nil
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) SpriteSize() PointByte {
	return s.spriteSize
}

func (s *Source) TexturePath() string {
	return s.texturePath
}

func (s *Source) DefaultTexture() Texture {
	return s.defaultTexture
}

func (s *Source) Track(name string) (*Track, bool) {
	t, ok := s.tracks[name]
	return t, ok
}

func (s *Source) HasTrack(name string) bool {
	_, ok := s.tracks[name]
	return ok
}

// FirstTrack returns the first declared track and its name.
func (s *Source) FirstTrack() (string, *Track) {
	name := s.order[0]
	return name, s.tracks[name]
}

// TrackNames returns track names in declaration order.
func (s *Source) TrackNames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// TextureFor returns the texture in effect at frameIdx of t, falling back
// to the source's default texture.
func (s *Source) TextureFor(t *Track, frameIdx int) Texture {
	if t == nil {
		return s.defaultTexture
	}
	if path := t.TexturePathAt(frameIdx); path != "" {
		if tex, ok := s.textures[path]; ok {
			return tex
		}
	}
	return s.defaultTexture
}

// TileRect returns the pixel rectangle of tile on the sheet.
func (s *Source) TileRect(tile PointByte) image.Rectangle {
	w, h := int(s.spriteSize.X), int(s.spriteSize.Y)
	x, y := int(tile.X)*w, int(tile.Y)*h
	return image.Rect(x, y, x+w, y+h)
}
