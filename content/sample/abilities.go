package sample

import (
	"fmt"

	"github.com/automoto/animlib/abilities"
	"github.com/automoto/animlib/shared/netcodec"
)

// Triggerable abilities start on the next tick after Trigger.
type Triggerable interface {
	Trigger()
}

const (
	dashWindup   = 2
	dashBaseTime = 4
	dashRecovery = 3
)

// Dash is a short burst. Each level adds a charge and two active ticks;
// charges come back together once the cooldown after the last dash ends
// while the hero is alive.
type Dash struct {
	abilities.NopBehavior
	requested bool
	used      int
}

func (d *Dash) ID() int       { return DashID }
func (d *Dash) Name() string  { return "dash" }
func (d *Dash) Cooldown() int { return 45 }
func (d *Dash) MaxLevel() int { return 3 }

func (d *Dash) Trigger() { d.requested = true }

// Charges is how many dashes are left before the cooldown.
func (d *Dash) Charges(a *abilities.Ability) int {
	return max(a.Level()-d.used, 0)
}

func (d *Dash) PreUpdate(a *abilities.Ability) error {
	requested := d.requested
	d.requested = false

	switch a.State() {
	case abilities.Inactive:
		if requested && d.Charges(a) > 0 {
			a.SetState(abilities.Starting)
		}
	case abilities.Starting:
		if a.StateTime() >= dashWindup {
			a.SetState(abilities.Active)
		}
	case abilities.Active:
		if a.StateTime() >= dashBaseTime+2*a.Level() {
			a.SetState(abilities.Ending)
		}
	case abilities.Ending:
		if a.StateTime() >= dashRecovery {
			a.SetState(abilities.Inactive)
			d.used++
			a.StartCooldown()
		}
	}
	return nil
}

func (d *Dash) RefreshCondition(a *abilities.Ability) bool {
	e := a.Manager().Entity()
	return e == nil || e.Alive()
}

func (d *Dash) OnRefreshed(a *abilities.Ability) {
	if d.used != 0 {
		d.used = 0
		a.MarkDirty()
	}
}

func (d *Dash) WriteNet(a *abilities.Ability, w *netcodec.Writer) {
	w.WriteInt32(int32(d.used))
}

func (d *Dash) ReadNet(a *abilities.Ability, r *netcodec.Reader) error {
	v, err := r.ReadInt32()
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("%w: dash used %d", netcodec.ErrOutOfBounds, v)
	}
	d.used = int(v)
	return nil
}

const doubleJumpTime = 12

// DoubleJump is always unlocked and counts how often it was used.
type DoubleJump struct {
	abilities.NopBehavior
	requested bool
	total     int
}

func (j *DoubleJump) ID() int       { return DoubleJumpID }
func (j *DoubleJump) Name() string  { return "double_jump" }
func (j *DoubleJump) Cooldown() int { return 20 }

func (j *DoubleJump) Trigger() { j.requested = true }

// Total is the lifetime use count, kept in save data.
func (j *DoubleJump) Total() int { return j.total }

func (j *DoubleJump) PreUpdate(a *abilities.Ability) error {
	requested := j.requested
	j.requested = false

	switch a.State() {
	case abilities.Inactive:
		if requested && a.CanUse() {
			a.SetState(abilities.Active)
			j.total++
		}
	case abilities.Active:
		if a.StateTime() >= doubleJumpTime {
			a.SetState(abilities.Inactive)
			a.StartCooldown()
		}
	}
	return nil
}

func (j *DoubleJump) SaveExtra(a *abilities.Ability) abilities.Tag {
	return abilities.Tag{"total": j.total}
}

func (j *DoubleJump) LoadExtra(a *abilities.Ability, tag abilities.Tag) error {
	switch v := tag["total"].(type) {
	case nil:
	case int:
		j.total = v
	case float64:
		j.total = int(v)
	default:
		return fmt.Errorf("double_jump total: unexpected %T", v)
	}
	return nil
}
