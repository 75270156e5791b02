// Package registry is the explicit, host-owned table of content packs.
// A host builds one per session, registers its mods, loads their sources
// and asks it for each entity's character collection.
package registry

import (
	"errors"
	"fmt"
	"log"

	"github.com/automoto/animlib/abilities"
	"github.com/automoto/animlib/animation"
	"github.com/automoto/animlib/character"
)

var (
	ErrDuplicateMod = errors.New("duplicate mod")
	ErrUnknownMod   = errors.New("unknown mod")
	ErrInvalidMod   = errors.New("invalid mod")
	ErrClosed       = errors.New("registry closed")
)

// Mod describes one content pack.
type Mod struct {
	Name     string
	Priority character.Priority
	// Manual mods are left disabled when an entity spawns.
	Manual bool

	// Sources are validated by Load. The first one is the main source
	// that drives the controller's track names.
	Sources []animation.SourceSpec

	NewLogic        func() animation.Logic
	NewAbilities    func() []abilities.Behavior
	NewManagerHooks func() abilities.ManagerHooks
}

// AbilityBinder is optionally implemented by a mod's Logic to read the
// abilities of the same character.
type AbilityBinder interface {
	BindAbilities(m *abilities.Manager)
}

func (m *Mod) hasAnimation() bool {
	return len(m.Sources) > 0
}

type modEntry struct {
	mod     *Mod
	sources map[string]*animation.Source
	order   []string
}

// Registry owns every registered mod and its loaded sources.
type Registry struct {
	resolver animation.TextureResolver

	mods   []*modEntry
	byName map[string]*modEntry
	closed bool
}

// New creates an empty registry. A nil resolver runs headless: sources are
// only checked structurally, never loaded, and collections carry abilities
// only.
func New(resolver animation.TextureResolver) *Registry {
	return &Registry{
		resolver: resolver,
		byName:   make(map[string]*modEntry),
	}
}

func (r *Registry) Headless() bool {
	return r.resolver == nil
}

// Register adds mod. Mods are kept in registration order.
func (r *Registry) Register(mod *Mod) error {
	if r.closed {
		return ErrClosed
	}
	if mod == nil || mod.Name == "" {
		return fmt.Errorf("%w: mod has no name", ErrInvalidMod)
	}
	if _, ok := r.byName[mod.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateMod, mod.Name)
	}
	if !mod.hasAnimation() && mod.NewAbilities == nil {
		return fmt.Errorf("%w: %q has neither sources nor abilities", ErrInvalidMod, mod.Name)
	}
	e := &modEntry{mod: mod, sources: make(map[string]*animation.Source)}
	r.mods = append(r.mods, e)
	r.byName[mod.Name] = e
	return nil
}

// Load validates every mod's sources. A source that fails validation is
// logged and skipped; the rest of the content still loads.
func (r *Registry) Load() error {
	if r.closed {
		return ErrClosed
	}
	if r.Headless() {
		r.validateHeadless()
		return nil
	}
	for _, e := range r.mods {
		for _, spec := range e.mod.Sources {
			if _, ok := e.sources[spec.Name]; ok {
				continue
			}
			src, err := animation.NewSource(spec, r.resolver)
			if err != nil {
				log.Printf("[registry] mod %q: skipping source %q: %v", e.mod.Name, spec.Name, err)
				continue
			}
			e.sources[spec.Name] = src
			e.order = append(e.order, spec.Name)
		}
		if e.mod.hasAnimation() {
			if _, ok := e.sources[e.mod.Sources[0].Name]; !ok {
				log.Printf("[registry] mod %q: main source missing, mod loads without animation", e.mod.Name)
			}
		}
	}
	return nil
}

// validateHeadless records the structurally valid sources of every mod
// in order without creating them.
func (r *Registry) validateHeadless() {
	for _, e := range r.mods {
		e.order = e.order[:0]
		for _, spec := range e.mod.Sources {
			if err := animation.ValidateSpec(spec); err != nil {
				log.Printf("[registry] mod %q: skipping source %q: %v", e.mod.Name, spec.Name, err)
				continue
			}
			e.order = append(e.order, spec.Name)
		}
	}
}

// SourceNames lists the sources of mod that passed Load, in load order.
// A headless registry lists the structurally valid ones.
func (r *Registry) SourceNames(mod string) []string {
	e, ok := r.byName[mod]
	if !ok {
		return nil
	}
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Mods returns mod names in registration order.
func (r *Registry) Mods() []string {
	out := make([]string, len(r.mods))
	for i, e := range r.mods {
		out[i] = e.mod.Name
	}
	return out
}

func (r *Registry) Mod(name string) (*Mod, bool) {
	e, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return e.mod, true
}

// ModIndex is the mod's position in registration order. Peers that
// register the same mods agree on it.
func (r *Registry) ModIndex(name string) (int, bool) {
	for i, e := range r.mods {
		if e.mod.Name == name {
			return i, true
		}
	}
	return -1, false
}

// ModAt is the inverse of ModIndex.
func (r *Registry) ModAt(idx int) (string, bool) {
	if idx < 0 || idx >= len(r.mods) {
		return "", false
	}
	return r.mods[idx].mod.Name, true
}

func (r *Registry) Source(mod, name string) (*animation.Source, bool) {
	e, ok := r.byName[mod]
	if !ok {
		return nil, false
	}
	s, ok := e.sources[name]
	return s, ok
}

// MainSource returns the loaded source that drives mod's controller.
func (r *Registry) MainSource(mod string) (*animation.Source, bool) {
	e, ok := r.byName[mod]
	if !ok || !e.mod.hasAnimation() {
		return nil, false
	}
	return r.Source(mod, e.mod.Sources[0].Name)
}

// SourceLookup returns a lookup for Controller.Rebind scoped to mod.
func (r *Registry) SourceLookup(mod string) func(name string) (*animation.Source, bool) {
	return func(name string) (*animation.Source, bool) {
		return r.Source(mod, name)
	}
}

// ReloadSource validates spec and replaces the loaded source of the same
// name. On error the old source stays in place.
func (r *Registry) ReloadSource(mod string, spec animation.SourceSpec) (*animation.Source, error) {
	if r.closed {
		return nil, ErrClosed
	}
	e, ok := r.byName[mod]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMod, mod)
	}
	if r.Headless() {
		return nil, fmt.Errorf("%w: reload %q in headless registry", ErrInvalidMod, spec.Name)
	}
	src, err := animation.NewSource(spec, r.resolver)
	if err != nil {
		return nil, err
	}
	if _, ok := e.sources[spec.Name]; !ok {
		e.order = append(e.order, spec.Name)
	}
	e.sources[spec.Name] = src
	return src, nil
}

// NewCollection builds a character for every mod on entity. Characters
// start disabled.
func (r *Registry) NewCollection(entity character.Entity) (*character.Collection, error) {
	if r.closed {
		return nil, ErrClosed
	}
	col := character.NewCollection(entity)
	for _, e := range r.mods {
		ch, err := r.newCharacter(e, entity)
		if err != nil {
			return nil, err
		}
		if ch == nil {
			continue
		}
		if err := col.Add(ch); err != nil {
			return nil, err
		}
	}
	return col, nil
}

func (r *Registry) newCharacter(e *modEntry, entity character.Entity) (*character.Character, error) {
	mod := e.mod
	ch := &character.Character{Mod: mod.Name, Priority: mod.Priority}

	var logic animation.Logic
	if main, ok := r.MainSource(mod.Name); ok {
		var extra []*animation.Source
		for _, name := range e.order {
			if src := e.sources[name]; src != main {
				extra = append(extra, src)
			}
		}
		if mod.NewLogic != nil {
			logic = mod.NewLogic()
		}
		ctrl, err := animation.NewController(mod.Name, entity, logic, main, extra...)
		if err != nil {
			return nil, fmt.Errorf("mod %q controller: %w", mod.Name, err)
		}
		ch.Controller = ctrl
	}

	if mod.NewAbilities != nil {
		var hooks abilities.ManagerHooks
		if mod.NewManagerHooks != nil {
			hooks = mod.NewManagerHooks()
		}
		m, err := abilities.NewManager(mod.Name, entity, hooks, mod.NewAbilities()...)
		if err != nil {
			return nil, fmt.Errorf("mod %q abilities: %w", mod.Name, err)
		}
		ch.Abilities = m
	}

	if ch.Controller == nil && ch.Abilities == nil {
		return nil, nil
	}
	if b, ok := logic.(AbilityBinder); ok && ch.Abilities != nil {
		b.BindAbilities(ch.Abilities)
	}
	return ch, nil
}

// Close drops every mod and source. The registry cannot be used after.
func (r *Registry) Close() {
	r.mods = nil
	r.byName = map[string]*modEntry{}
	r.closed = true
}
