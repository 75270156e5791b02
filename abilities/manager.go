package abilities

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kamstrup/intmap"
)

var (
	ErrDuplicateID    = errors.New("duplicate ability id")
	ErrInvalidID      = errors.New("invalid ability id")
	ErrUnknownAbility = errors.New("unknown ability")
)

// Manager owns the abilities one content pack gives one entity.
type Manager struct {
	mod    string
	entity Entity
	hooks  ManagerHooks

	abilities []*Ability
	byID      *intmap.Map[int, *Ability]
	byName    map[string]*Ability
	maxID     int
}

// NewManager builds a manager with abilities sorted by ID. A nil hooks
// value uses NopManagerHooks.
func NewManager(mod string, entity Entity, hooks ManagerHooks, behaviors ...Behavior) (*Manager, error) {
	if hooks == nil {
		hooks = NopManagerHooks{}
	}
	m := &Manager{
		mod:       mod,
		entity:    entity,
		hooks:     hooks,
		abilities: make([]*Ability, 0, len(behaviors)),
		byID:      intmap.New[int, *Ability](len(behaviors)),
		byName:    make(map[string]*Ability, len(behaviors)),
	}
	for _, b := range behaviors {
		if b == nil {
			continue
		}
		id := b.ID()
		if id < 0 {
			return nil, fmt.Errorf("%w: %q has id %d in mod %q", ErrInvalidID, b.Name(), id, mod)
		}
		if prev, ok := m.byID.Get(id); ok {
			return nil, fmt.Errorf("%w: %d used by %q and %q in mod %q", ErrDuplicateID, id, prev.name, b.Name(), mod)
		}
		if _, ok := m.byName[b.Name()]; ok {
			return nil, fmt.Errorf("%w: name %q used twice in mod %q", ErrDuplicateID, b.Name(), mod)
		}
		a := newAbility(m, b)
		m.abilities = append(m.abilities, a)
		m.byID.Put(id, a)
		m.byName[a.name] = a
		if id > m.maxID {
			m.maxID = id
		}
	}
	sort.Slice(m.abilities, func(i, j int) bool {
		return m.abilities[i].id < m.abilities[j].id
	})
	return m, nil
}

func (m *Manager) Mod() string {
	return m.mod
}

func (m *Manager) Entity() Entity {
	return m.entity
}

// Abilities returns every ability in ID order.
func (m *Manager) Abilities() []*Ability {
	return m.abilities
}

func (m *Manager) Get(id int) (*Ability, bool) {
	return m.byID.Get(id)
}

func (m *Manager) ByName(name string) (*Ability, bool) {
	a, ok := m.byName[name]
	return a, ok
}

// Update runs one tick of the ability cascade: timers and PreUpdate for
// every unlocked ability, then the state hooks, then PostUpdateAbilities.
// When CanUseAnyAbilities is false only the manager's PreUpdate runs and
// every ability is forced Inactive; timers and cooldowns hold.
func (m *Manager) Update() error {
	if err := m.hooks.PreUpdate(m); err != nil {
		return fmt.Errorf("mod %q pre-update: %w", m.mod, err)
	}

	if !m.hooks.CanUseAnyAbilities(m) {
		for _, a := range m.abilities {
			a.SetState(Inactive)
		}
		return nil
	}

	for _, a := range m.abilities {
		if !a.Unlocked() {
			continue
		}
		a.tick()
		if err := a.behavior.PreUpdate(a); err != nil {
			return m.abilityErr(a, "pre-update", err)
		}
	}

	for _, a := range m.abilities {
		if !a.Unlocked() {
			continue
		}
		if err := a.updateState(); err != nil {
			return m.abilityErr(a, a.state.String(), err)
		}
	}
	for _, a := range m.abilities {
		if !a.Unlocked() {
			continue
		}
		if err := a.behavior.PostUpdateAbilities(a); err != nil {
			return m.abilityErr(a, "post-update", err)
		}
	}

	if err := m.hooks.PostUpdate(m); err != nil {
		return fmt.Errorf("mod %q post-update: %w", m.mod, err)
	}
	return nil
}

func (m *Manager) abilityErr(a *Ability, phase string, err error) error {
	return fmt.Errorf("mod %q ability %q %s: %w", m.mod, a.name, phase, err)
}

// NetDirty reports whether any ability has changes to send.
func (m *Manager) NetDirty() bool {
	for _, a := range m.abilities {
		if a.netDirty {
			return true
		}
	}
	return false
}

func (m *Manager) ClearNetDirty() {
	for _, a := range m.abilities {
		a.netDirty = false
	}
}

func (m *Manager) MarkAllDirty() {
	for _, a := range m.abilities {
		a.netDirty = true
	}
}
