package assets

import (
	"fmt"
	"io/fs"
	"math"
	"path"

	"github.com/automoto/animlib/animation"
	"github.com/automoto/animlib/config"
	"github.com/lafriks/go-tiled"
)

// Tile properties read by LoadTiledSources.
const (
	propTrack     = "track"
	propLoop      = "loop"
	propDirection = "direction"
	propDefault   = "default"
	propSource    = "source"
)

// LoadTiledSources builds one source per tileset of a TMX map. Every tile
// that has a Tiled animation and a "track" property becomes a track; its
// optional "loop" and "direction" properties set the playback policy and a
// "default" tile is moved to the front. Frame durations are converted
// from milliseconds to ticks.
func LoadTiledSources(fsys fs.FS, tmxPath string) ([]animation.SourceSpec, error) {
	m, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	dir := path.Dir(tmxPath)
	var specs []animation.SourceSpec
	for _, ts := range m.Tilesets {
		spec, ok, err := tilesetSource(ts, dir)
		if err != nil {
			return nil, fmt.Errorf("%s: tileset %q: %w", tmxPath, ts.Name, err)
		}
		if ok {
			specs = append(specs, spec)
		}
	}
	return specs, nil
}

func tilesetSource(ts *tiled.Tileset, dir string) (animation.SourceSpec, bool, error) {
	if ts.Image == nil || ts.TileWidth <= 0 || ts.TileHeight <= 0 {
		return animation.SourceSpec{}, false, nil
	}
	if ts.TileWidth > math.MaxUint8 || ts.TileHeight > math.MaxUint8 {
		return animation.SourceSpec{}, false, fmt.Errorf("tile size %dx%d does not fit a sprite size", ts.TileWidth, ts.TileHeight)
	}
	columns := ts.Columns
	if columns <= 0 {
		columns = ts.Image.Width / ts.TileWidth
	}
	if columns <= 0 {
		return animation.SourceSpec{}, false, fmt.Errorf("tileset has no columns")
	}

	name := ts.Name
	if ts.Properties != nil {
		if s := ts.Properties.GetString(propSource); s != "" {
			name = s
		}
	}
	texDir := dir
	if ts.Source != "" {
		texDir = path.Join(dir, path.Dir(ts.Source))
	}

	spec := animation.SourceSpec{
		Name:       name,
		SpriteSize: animation.PointByte{X: uint8(ts.TileWidth), Y: uint8(ts.TileHeight)},
		Texture:    joinTexture(texDir, ts.Image.Source),
	}

	for _, tile := range ts.Tiles {
		if len(tile.Animation) == 0 || tile.Properties == nil {
			continue
		}
		trackName := tile.Properties.GetString(propTrack)
		if trackName == "" {
			continue
		}
		loop, err := animation.ParseLoopMode(tile.Properties.GetString(propLoop))
		if err != nil {
			return animation.SourceSpec{}, false, fmt.Errorf("track %q: %w", trackName, err)
		}
		direction, err := animation.ParseDirection(tile.Properties.GetString(propDirection))
		if err != nil {
			return animation.SourceSpec{}, false, fmt.Errorf("track %q: %w", trackName, err)
		}

		frames := make([]animation.Frame, 0, len(tile.Animation))
		for _, af := range tile.Animation {
			col, row := int(af.TileID)%columns, int(af.TileID)/columns
			if col > math.MaxUint8 || row > math.MaxUint8 {
				return animation.SourceSpec{}, false, fmt.Errorf("track %q: tile %d is outside a 256x256 sheet", trackName, af.TileID)
			}
			frames = append(frames, animation.NewFrame(uint8(col), uint8(row), MillisToTicks(int(af.Duration))))
		}
		t, err := animation.NewTrack(loop, direction, frames...)
		if err != nil {
			return animation.SourceSpec{}, false, fmt.Errorf("track %q: %w", trackName, err)
		}

		nt := animation.NamedTrack{Name: trackName, Track: t}
		if tile.Properties.GetBool(propDefault) {
			spec.Tracks = append([]animation.NamedTrack{nt}, spec.Tracks...)
		} else {
			spec.Tracks = append(spec.Tracks, nt)
		}
	}
	if len(spec.Tracks) == 0 {
		return animation.SourceSpec{}, false, nil
	}
	return spec, true, nil
}

// MillisToTicks converts a Tiled frame duration to update ticks at
// config.Animation.TicksPerSecond, rounding to the nearest tick.
func MillisToTicks(ms int) uint16 {
	if ms <= 0 {
		return 0
	}
	ticks := int(math.Round(float64(ms) * float64(config.Animation.TicksPerSecond) / 1000))
	if ticks < config.Animation.MinFrameTicks {
		ticks = config.Animation.MinFrameTicks
	}
	if ticks > math.MaxUint16 {
		ticks = math.MaxUint16
	}
	return uint16(ticks)
}
