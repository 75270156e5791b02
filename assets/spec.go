// Package assets loads animation sources from data files and resolves the
// textures they reference. It has no dependency on ebiten so the headless
// relay can use it.
package assets

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/automoto/animlib/animation"
	"gopkg.in/yaml.v3"
)

// SourceFile is the YAML layout of one animation source.
//
//	name: player
//	sprite_size: {x: 32, y: 32}
//	texture: player.png
//	tracks:
//	  - name: idle
//	    frames:
//	      - {x: 0, y: 0, duration: 10}
//	  - name: run
//	    loop: always
//	    direction: pingpong
//	    range:
//	      start: {x: 1, y: 0, duration: 6}
//	      end: {x: 1, y: 5, duration: 6}
type SourceFile struct {
	Name       string      `yaml:"name"`
	SpriteSize PointSpec   `yaml:"sprite_size"`
	Texture    string      `yaml:"texture"`
	Tracks     []TrackSpec `yaml:"tracks"`
}

type PointSpec struct {
	X uint8 `yaml:"x"`
	Y uint8 `yaml:"y"`
}

type TrackSpec struct {
	Name      string      `yaml:"name"`
	Loop      string      `yaml:"loop"`
	Direction string      `yaml:"direction"`
	Texture   string      `yaml:"texture"`
	Frames    []FrameSpec `yaml:"frames"`
	Range     *RangeSpec  `yaml:"range"`
}

type FrameSpec struct {
	X        uint8  `yaml:"x"`
	Y        uint8  `yaml:"y"`
	Duration uint16 `yaml:"duration"`
	Texture  string `yaml:"texture"`
}

type RangeSpec struct {
	Start FrameSpec `yaml:"start"`
	End   FrameSpec `yaml:"end"`
}

// ParseSourceFile decodes YAML into a SourceFile.
func ParseSourceFile(data []byte) (SourceFile, error) {
	var f SourceFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return SourceFile{}, err
	}
	return f, nil
}

// LoadSourceSpec reads a YAML source file from fsys. Texture paths are
// relative to the file's directory.
func LoadSourceSpec(fsys fs.FS, name string) (animation.SourceSpec, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return animation.SourceSpec{}, fmt.Errorf("assets: load %s: %w", name, err)
	}
	f, err := ParseSourceFile(data)
	if err != nil {
		return animation.SourceSpec{}, fmt.Errorf("assets: unmarshal %s: %w", name, err)
	}
	spec, err := f.SourceSpec(path.Dir(name))
	if err != nil {
		return animation.SourceSpec{}, fmt.Errorf("assets: %s: %w", name, err)
	}
	return spec, nil
}

// LoadSourceDir loads every .yaml and .yml file directly under dir, in
// name order. A file that fails to load is returned in errs and skipped.
func LoadSourceDir(fsys fs.FS, dir string) (specs []animation.SourceSpec, errs []error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, []error{fmt.Errorf("assets: read %s: %w", dir, err)}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, e := range entries {
		if e.IsDir() || !IsSourceFile(e.Name()) {
			continue
		}
		spec, err := LoadSourceSpec(fsys, path.Join(dir, e.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		specs = append(specs, spec)
	}
	return specs, errs
}

// IsSourceFile reports whether name has a YAML extension.
func IsSourceFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// SourceSpec converts the file into tracks. Structural problems in a track
// are reported here; texture checks happen in animation.NewSource.
func (f SourceFile) SourceSpec(dir string) (animation.SourceSpec, error) {
	spec := animation.SourceSpec{
		Name:       f.Name,
		SpriteSize: animation.PointByte{X: f.SpriteSize.X, Y: f.SpriteSize.Y},
		Texture:    joinTexture(dir, f.Texture),
		Tracks:     make([]animation.NamedTrack, 0, len(f.Tracks)),
	}
	for _, ts := range f.Tracks {
		t, err := ts.track(dir)
		if err != nil {
			return animation.SourceSpec{}, fmt.Errorf("track %q: %w", ts.Name, err)
		}
		spec.Tracks = append(spec.Tracks, animation.NamedTrack{Name: ts.Name, Track: t})
	}
	return spec, nil
}

func (ts TrackSpec) track(dir string) (*animation.Track, error) {
	loop, err := animation.ParseLoopMode(ts.Loop)
	if err != nil {
		return nil, err
	}
	direction, err := animation.ParseDirection(ts.Direction)
	if err != nil {
		return nil, err
	}

	var t *animation.Track
	switch {
	case ts.Range != nil && len(ts.Frames) > 0:
		return nil, fmt.Errorf("%w: both frames and range given", animation.ErrInvalidArgument)
	case ts.Range != nil:
		t, err = animation.Range(loop, direction, ts.Range.Start.frame(dir), ts.Range.End.frame(dir))
	default:
		frames := make([]animation.Frame, len(ts.Frames))
		for i, f := range ts.Frames {
			frames[i] = f.frame(dir)
		}
		t, err = animation.NewTrack(loop, direction, frames...)
	}
	if err != nil {
		return nil, err
	}
	if ts.Texture != "" {
		t.WithTexture(joinTexture(dir, ts.Texture))
	}
	return t, nil
}

func (s FrameSpec) frame(dir string) animation.Frame {
	if s.Texture != "" {
		return animation.NewSwitchTextureFrame(s.X, s.Y, s.Duration, joinTexture(dir, s.Texture))
	}
	return animation.NewFrame(s.X, s.Y, s.Duration)
}

func joinTexture(dir, p string) string {
	if p == "" || dir == "" || dir == "." || path.IsAbs(p) {
		return p
	}
	return path.Join(dir, p)
}
