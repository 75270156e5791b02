package abilities

import "github.com/automoto/animlib/shared/netcodec"

// Behavior is the content-pack side of an ability. Embed NopBehavior to
// pick up no-op defaults for every hook but ID and Name.
type Behavior interface {
	ID() int
	Name() string

	// Cooldown is the tick count StartCooldown loads.
	Cooldown() int

	// PreUpdate runs every tick before any ability's main phase. It is
	// the place to call SetState.
	PreUpdate(a *Ability) error
	UpdateStarting(a *Ability) error
	UpdateActive(a *Ability) error
	UpdateEnding(a *Ability) error
	// UpdateUsing runs after the state hook whenever the ability is in use.
	UpdateUsing(a *Ability) error
	// PostUpdateAbilities runs for every unlocked ability after all main
	// phases of the tick have finished.
	PostUpdateAbilities(a *Ability) error

	// RefreshCondition gates the end of a cooldown that has run out.
	RefreshCondition(a *Ability) bool
	OnRefreshed(a *Ability)
}

// NopBehavior implements every optional hook of Behavior as a no-op.
type NopBehavior struct{}

func (NopBehavior) Cooldown() int                      { return 0 }
func (NopBehavior) PreUpdate(*Ability) error           { return nil }
func (NopBehavior) UpdateStarting(*Ability) error      { return nil }
func (NopBehavior) UpdateActive(*Ability) error        { return nil }
func (NopBehavior) UpdateEnding(*Ability) error        { return nil }
func (NopBehavior) UpdateUsing(*Ability) error         { return nil }
func (NopBehavior) PostUpdateAbilities(*Ability) error { return nil }
func (NopBehavior) RefreshCondition(*Ability) bool     { return true }
func (NopBehavior) OnRefreshed(*Ability)               {}

// Leveled marks a levelable ability. Level 0 means locked.
type Leveled interface {
	MaxLevel() int
}

// Unlocker overrides the default unlock rule (not levelable, or level > 0).
type Unlocker interface {
	Unlocked(a *Ability) bool
}

// NetPayload lets an ability append its own fields to the network delta.
// ReadNet must consume exactly what WriteNet produced. It runs before the
// record's level and state are applied, and may run again with the bytes
// of an earlier WriteNet to undo a delta that failed to parse.
type NetPayload interface {
	WriteNet(a *Ability, w *netcodec.Writer)
	ReadNet(a *Ability, r *netcodec.Reader) error
}

// Persister stores extra per-ability data next to the level.
type Persister interface {
	SaveExtra(a *Ability) Tag
	LoadExtra(a *Ability, tag Tag) error
}

// Entity is the host query surface an ability manager consults.
type Entity interface {
	Alive() bool
	Incapacitated() bool
}

// ManagerHooks are the per-manager hooks around the ability cascade.
type ManagerHooks interface {
	// PreUpdate runs first every tick, even when abilities are gated off.
	PreUpdate(m *Manager) error
	// CanUseAnyAbilities gates the whole cascade for this tick.
	CanUseAnyAbilities(m *Manager) bool
	PostUpdate(m *Manager) error
}

// NopManagerHooks allows abilities whenever the entity is alive and not
// incapacitated.
type NopManagerHooks struct{}

func (NopManagerHooks) PreUpdate(*Manager) error  { return nil }
func (NopManagerHooks) PostUpdate(*Manager) error { return nil }

func (NopManagerHooks) CanUseAnyAbilities(m *Manager) bool {
	e := m.Entity()
	if e == nil {
		return true
	}
	return e.Alive() && !e.Incapacitated()
}
