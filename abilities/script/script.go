// Package script runs ability hooks written in tengo.
//
// A script declares a hooks map whose entries are optional:
//
//	hooks := {
//		pre_update: func(engine, ability, data) {
//			if ability.state == "inactive" && !ability.on_cooldown {
//				engine.set_state("starting")
//			}
//		},
//		update_active: func(engine, ability, data) { ... },
//		refresh_condition: func(engine, ability, data) { return true }
//	}
//
// The engine map exposes set_state, set_state_keep_time, start_cooldown
// and mark_dirty. data is a map that persists between ticks.
package script

import (
	"fmt"
	"log"

	"github.com/automoto/animlib/abilities"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

const (
	PhasePreUpdate        = "pre_update"
	PhaseUpdateStarting   = "update_starting"
	PhaseUpdateActive     = "update_active"
	PhaseUpdateEnding     = "update_ending"
	PhaseUpdateUsing      = "update_using"
	PhasePostUpdate       = "post_update"
	PhaseRefreshCondition = "refresh_condition"
	PhaseOnRefreshed      = "on_refreshed"
)

const dispatchScript = `
__fn := hooks[__phase]
if is_callable(__fn) {
	__result = __fn(__engine, __ability, __data)
}
`

// Config describes one scripted ability.
type Config struct {
	ID       int
	Name     string
	Cooldown int
	// MaxLevel above zero makes the ability levelable.
	MaxLevel int
	Source   []byte
}

// Program is a compiled script shared by every entity using the ability.
type Program struct {
	cfg      Config
	compiled *tengo.Compiled
}

// Compile compiles cfg.Source once. Use NewBehavior per entity.
func Compile(cfg Config) (*Program, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("script ability %d has no name", cfg.ID)
	}
	src := string(cfg.Source) + "\n" + dispatchScript
	s := tengo.NewScript([]byte(src))
	globals := []struct {
		name  string
		value any
	}{
		{"__phase", ""},
		{"__engine", map[string]any{}},
		{"__ability", map[string]any{}},
		{"__data", map[string]any{}},
		{"__result", nil},
	}
	for _, g := range globals {
		if err := s.Add(g.name, g.value); err != nil {
			return nil, fmt.Errorf("script ability %q global %s: %w", cfg.Name, g.name, err)
		}
	}
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile script ability %q: %w", cfg.Name, err)
	}
	return &Program{cfg: cfg, compiled: compiled}, nil
}

func (p *Program) Config() Config {
	return p.cfg
}

// NewBehavior returns a Behavior with its own script globals.
func (p *Program) NewBehavior() abilities.Behavior {
	b := &Behavior{
		cfg:      p.cfg,
		compiled: p.compiled.Clone(),
		data:     &tengo.Map{Value: map[string]tengo.Object{}},
	}
	if p.cfg.MaxLevel > 0 {
		return &leveledBehavior{Behavior: b}
	}
	return b
}

// Behavior dispatches every ability hook to the script.
type Behavior struct {
	cfg      Config
	compiled *tengo.Compiled
	data     *tengo.Map
}

type leveledBehavior struct {
	*Behavior
}

func (b *leveledBehavior) MaxLevel() int {
	return b.cfg.MaxLevel
}

// AsScript returns the script behind b, if b came from Program.NewBehavior.
func AsScript(b abilities.Behavior) (*Behavior, bool) {
	switch v := b.(type) {
	case *Behavior:
		return v, true
	case *leveledBehavior:
		return v.Behavior, true
	}
	return nil, false
}

// SetData stores value under key in the script's data map. Hosts use it
// to feed input into scripts.
func (b *Behavior) SetData(key string, value any) error {
	obj, err := tengo.FromInterface(value)
	if err != nil {
		return fmt.Errorf("script %q data %q: %w", b.cfg.Name, key, err)
	}
	b.data.Value[key] = obj
	return nil
}

// Data returns the Go value stored under key, or nil.
func (b *Behavior) Data(key string) any {
	obj, ok := b.data.Value[key]
	if !ok {
		return nil
	}
	return tengo.ToInterface(obj)
}

func (b *Behavior) ID() int {
	return b.cfg.ID
}

func (b *Behavior) Name() string {
	return b.cfg.Name
}

func (b *Behavior) Cooldown() int {
	return b.cfg.Cooldown
}

func (b *Behavior) PreUpdate(a *abilities.Ability) error {
	_, err := b.run(PhasePreUpdate, a)
	return err
}

func (b *Behavior) UpdateStarting(a *abilities.Ability) error {
	_, err := b.run(PhaseUpdateStarting, a)
	return err
}

func (b *Behavior) UpdateActive(a *abilities.Ability) error {
	_, err := b.run(PhaseUpdateActive, a)
	return err
}

func (b *Behavior) UpdateEnding(a *abilities.Ability) error {
	_, err := b.run(PhaseUpdateEnding, a)
	return err
}

func (b *Behavior) UpdateUsing(a *abilities.Ability) error {
	_, err := b.run(PhaseUpdateUsing, a)
	return err
}

func (b *Behavior) PostUpdateAbilities(a *abilities.Ability) error {
	_, err := b.run(PhasePostUpdate, a)
	return err
}

// RefreshCondition passes when the script has no refresh_condition hook.
// A script error is logged and keeps the cooldown pinned.
func (b *Behavior) RefreshCondition(a *abilities.Ability) bool {
	res, err := b.run(PhaseRefreshCondition, a)
	if err != nil {
		log.Printf("[script] %s %s: %v", b.cfg.Name, PhaseRefreshCondition, err)
		return false
	}
	if res == tengo.UndefinedValue {
		return true
	}
	return !res.IsFalsy()
}

func (b *Behavior) OnRefreshed(a *abilities.Ability) {
	if _, err := b.run(PhaseOnRefreshed, a); err != nil {
		log.Printf("[script] %s %s: %v", b.cfg.Name, PhaseOnRefreshed, err)
	}
}

func (b *Behavior) run(phase string, a *abilities.Ability) (tengo.Object, error) {
	c := b.compiled
	if err := c.Set("__phase", phase); err != nil {
		return nil, err
	}
	if err := c.Set("__engine", buildEngine(a)); err != nil {
		return nil, err
	}
	if err := c.Set("__ability", abilityView(a)); err != nil {
		return nil, err
	}
	if err := c.Set("__data", b.data); err != nil {
		return nil, err
	}
	if err := c.Set("__result", nil); err != nil {
		return nil, err
	}
	if err := c.Run(); err != nil {
		return nil, fmt.Errorf("script %q %s: %w", b.cfg.Name, phase, err)
	}
	return c.Get("__result").Object(), nil
}

func abilityView(a *abilities.Ability) *tengo.ImmutableMap {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"id":            &tengo.Int{Value: int64(a.ID())},
		"name":          &tengo.String{Value: a.Name()},
		"state":         &tengo.String{Value: a.State().String()},
		"state_time":    &tengo.Int{Value: int64(a.StateTime())},
		"cooldown_left": &tengo.Int{Value: int64(a.CooldownLeft())},
		"on_cooldown":   boolObject(a.OnCooldown()),
		"level":         &tengo.Int{Value: int64(a.Level())},
	}}
}

func buildEngine(a *abilities.Ability) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	setState := func(preserve bool) tengo.CallableFunc {
		return func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			name, ok := tengo.ToString(args[0])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "state", Expected: "string", Found: args[0].TypeName()}
			}
			s, err := abilities.ParseState(name)
			if err != nil {
				return nil, err
			}
			if preserve {
				a.SetStatePreserveTime(s)
			} else {
				a.SetState(s)
			}
			return tengo.TrueValue, nil
		}
	}
	values["set_state"] = &tengo.UserFunction{Name: "set_state", Value: setState(false)}
	values["set_state_keep_time"] = &tengo.UserFunction{Name: "set_state_keep_time", Value: setState(true)}

	values["start_cooldown"] = &tengo.UserFunction{Name: "start_cooldown", Value: func(args ...tengo.Object) (tengo.Object, error) {
		a.StartCooldown()
		return tengo.TrueValue, nil
	}}

	values["mark_dirty"] = &tengo.UserFunction{Name: "mark_dirty", Value: func(args ...tengo.Object) (tengo.Object, error) {
		a.MarkDirty()
		return tengo.TrueValue, nil
	}}

	values["can_use"] = &tengo.UserFunction{Name: "can_use", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(a.CanUse()), nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}
