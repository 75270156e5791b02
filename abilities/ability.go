package abilities

// Ability is the runtime state of one Behavior on one entity.
type Ability struct {
	manager  *Manager
	behavior Behavior

	id   int
	name string

	state     State
	stateTime int

	cooldownLeft int
	onCooldown   bool

	level    int
	netDirty bool
}

func newAbility(m *Manager, b Behavior) *Ability {
	return &Ability{
		manager:  m,
		behavior: b,
		id:       b.ID(),
		name:     b.Name(),
	}
}

func (a *Ability) ID() int {
	return a.id
}

func (a *Ability) Name() string {
	return a.name
}

func (a *Ability) Manager() *Manager {
	return a.manager
}

func (a *Ability) Behavior() Behavior {
	return a.behavior
}

func (a *Ability) State() State {
	return a.state
}

// StateTime is the number of ticks spent in the current state.
func (a *Ability) StateTime() int {
	return a.stateTime
}

func (a *Ability) InUse() bool {
	return a.state.InUse()
}

// SetState moves the ability to s and resets StateTime. It does nothing
// when the ability is already in s. Call it from PreUpdate so the state
// has settled before the main phase reads it.
func (a *Ability) SetState(s State) {
	a.setState(s, false)
}

// SetStatePreserveTime is SetState without resetting StateTime.
func (a *Ability) SetStatePreserveTime(s State) {
	a.setState(s, true)
}

func (a *Ability) setState(s State, preserveTime bool) {
	if a.state == s {
		return
	}
	a.state = s
	if !preserveTime {
		a.stateTime = 0
	}
	a.netDirty = true
}

func (a *Ability) CooldownLeft() int {
	return a.cooldownLeft
}

func (a *Ability) OnCooldown() bool {
	return a.onCooldown
}

// StartCooldown loads the behavior's cooldown. A zero cooldown still has
// to pass RefreshCondition before it clears.
func (a *Ability) StartCooldown() {
	a.cooldownLeft = a.behavior.Cooldown()
	a.onCooldown = true
}

// CanUse reports whether the ability is unlocked, idle and off cooldown.
func (a *Ability) CanUse() bool {
	return a.Unlocked() && a.state == Inactive && !a.onCooldown
}

func (a *Ability) Levelable() bool {
	_, ok := a.behavior.(Leveled)
	return ok
}

// MaxLevel is 0 for abilities that are not levelable.
func (a *Ability) MaxLevel() int {
	if l, ok := a.behavior.(Leveled); ok {
		return l.MaxLevel()
	}
	return 0
}

func (a *Ability) Level() int {
	return a.level
}

// SetLevel clamps level to [0, MaxLevel] and marks the ability dirty when
// it changes. It is ignored for abilities that are not levelable.
func (a *Ability) SetLevel(level int) {
	if !a.Levelable() {
		return
	}
	if level < 0 {
		level = 0
	}
	if maxLevel := a.MaxLevel(); level > maxLevel {
		level = maxLevel
	}
	if level == a.level {
		return
	}
	a.level = level
	a.netDirty = true
}

// Unlocked reports whether the ability takes part in the update cascade.
func (a *Ability) Unlocked() bool {
	if u, ok := a.behavior.(Unlocker); ok {
		return u.Unlocked(a)
	}
	return !a.Levelable() || a.level > 0
}

func (a *Ability) NetDirty() bool {
	return a.netDirty
}

// MarkDirty queues the ability for the next network delta.
func (a *Ability) MarkDirty() {
	a.netDirty = true
}

func (a *Ability) tick() {
	if a.state != Inactive {
		a.stateTime++
		return
	}
	if !a.onCooldown {
		return
	}
	if a.cooldownLeft > 0 {
		a.cooldownLeft--
	}
	if a.cooldownLeft <= 0 {
		a.cooldownLeft = 0
		if a.behavior.RefreshCondition(a) {
			a.onCooldown = false
			a.behavior.OnRefreshed(a)
		}
	}
}

func (a *Ability) updateState() error {
	var err error
	switch a.state {
	case Starting:
		err = a.behavior.UpdateStarting(a)
	case Active:
		err = a.behavior.UpdateActive(a)
	case Ending:
		err = a.behavior.UpdateEnding(a)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	return a.behavior.UpdateUsing(a)
}
