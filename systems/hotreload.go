package systems

import (
	"io/fs"
	"log"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/automoto/animlib/animation"
	"github.com/automoto/animlib/assets"
	"github.com/automoto/animlib/components"
	"github.com/automoto/animlib/registry"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// TextureCache is implemented by resolvers that cache decoded textures.
type TextureCache interface {
	Forget(path string)
}

type sourceRef struct {
	mod  string
	spec animation.SourceSpec
}

type hotReloadState struct {
	root    string
	fsys    fs.FS
	reg     *registry.Registry
	cache   TextureCache
	sources map[string]sourceRef // source name -> latest spec
}

// NewHotReloadSystem returns an ECS system that drains changed file paths
// from events, reloads the sources they affect and rebinds every
// controller. Paths are OS paths under root; fsys must serve root.
// A source that fails to reload keeps its previous version.
func NewHotReloadSystem(events <-chan string, root string, fsys fs.FS, reg *registry.Registry, cache TextureCache) func(*ecs.ECS) {
	state := &hotReloadState{
		root:    root,
		fsys:    fsys,
		reg:     reg,
		cache:   cache,
		sources: make(map[string]sourceRef),
	}
	for _, name := range reg.Mods() {
		mod, _ := reg.Mod(name)
		for _, spec := range mod.Sources {
			if _, ok := state.sources[spec.Name]; !ok {
				state.sources[spec.Name] = sourceRef{mod: name, spec: spec}
			}
		}
	}

	return func(e *ecs.ECS) {
		changed := map[string]bool{}
	drain:
		for {
			select {
			case p, ok := <-events:
				if !ok {
					break drain
				}
				if rel, ok := state.relative(p); ok {
					changed[rel] = true
				}
			default:
				break drain
			}
		}
		if len(changed) == 0 {
			return
		}

		mods := map[string]bool{}
		for p := range changed {
			for _, mod := range state.reload(p) {
				mods[mod] = true
			}
		}
		if len(mods) > 0 {
			rebindAll(e, reg, mods)
		}
	}
}

func (s *hotReloadState) relative(p string) (string, bool) {
	rel, err := filepath.Rel(s.root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// reload handles one changed file and returns the mods it touched.
func (s *hotReloadState) reload(p string) []string {
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		spec, err := assets.LoadSourceSpec(s.fsys, p)
		if err != nil {
			log.Printf("[assets] reload %s: %v", p, err)
			return nil
		}
		return s.apply(spec)
	case ".tmx":
		specs, err := assets.LoadTiledSources(s.fsys, p)
		if err != nil {
			log.Printf("[assets] reload %s: %v", p, err)
			return nil
		}
		var mods []string
		for _, spec := range specs {
			mods = append(mods, s.apply(spec)...)
		}
		return mods
	case ".png":
		if s.cache != nil {
			s.cache.Forget(p)
		}
		var mods []string
		for _, ref := range s.sources {
			if usesTexture(ref.spec, p) {
				mods = append(mods, s.apply(ref.spec)...)
			}
		}
		return mods
	case ".tengo":
		log.Printf("[assets] %s changed; scripts are compiled at registration, restart to apply", p)
	}
	return nil
}

func (s *hotReloadState) apply(spec animation.SourceSpec) []string {
	ref, ok := s.sources[spec.Name]
	if !ok {
		log.Printf("[assets] no mod owns source %q, ignoring", spec.Name)
		return nil
	}
	if _, err := s.reg.ReloadSource(ref.mod, spec); err != nil {
		log.Printf("[assets] mod %q: reload source %q: %v", ref.mod, spec.Name, err)
		return nil
	}
	s.sources[spec.Name] = sourceRef{mod: ref.mod, spec: spec}
	log.Printf("[assets] mod %q: reloaded source %q", ref.mod, spec.Name)
	return []string{ref.mod}
}

func usesTexture(spec animation.SourceSpec, p string) bool {
	if spec.Texture == p {
		return true
	}
	for _, nt := range spec.Tracks {
		if slices.Contains(nt.Track.TexturePaths(), p) {
			return true
		}
	}
	return false
}

func rebindAll(e *ecs.ECS, reg *registry.Registry, mods map[string]bool) {
	components.Characters.Each(e.World, func(entry *donburi.Entry) {
		col := components.Characters.Get(entry).Collection
		if col == nil {
			return
		}
		for _, ch := range col.Characters() {
			if ch.Controller != nil && mods[ch.Mod] {
				ch.Controller.Rebind(reg.SourceLookup(ch.Mod))
			}
		}
	})
}
