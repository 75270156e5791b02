package script_test

import (
	"testing"

	"github.com/automoto/animlib/abilities"
	"github.com/automoto/animlib/abilities/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const glide = `
hooks := {
	pre_update: func(engine, ability, data) {
		if ability.state == "inactive" && engine.can_use() {
			engine.set_state("active")
		} else if ability.state == "active" && ability.state_time >= 2 {
			engine.set_state("inactive")
			engine.start_cooldown()
		}
	},
	update_active: func(engine, ability, data) {
		if is_undefined(data.ticks) {
			data.ticks = 0
		}
		data.ticks += 1
	},
	refresh_condition: func(engine, ability, data) {
		return data.ticks >= 2
	}
}
`

func newManager(t *testing.T, cfg script.Config) (*abilities.Manager, *abilities.Ability) {
	t.Helper()
	prog, err := script.Compile(cfg)
	require.NoError(t, err)
	m, err := abilities.NewManager("scripted", nil, nil, prog.NewBehavior())
	require.NoError(t, err)
	a, ok := m.Get(cfg.ID)
	require.True(t, ok)
	return m, a
}

func TestScriptDrivesStateAndCooldown(t *testing.T) {
	m, a := newManager(t, script.Config{ID: 4, Name: "glide", Cooldown: 1, Source: []byte(glide)})

	require.NoError(t, m.Update())
	assert.Equal(t, abilities.Active, a.State())

	require.NoError(t, m.Update())
	assert.Equal(t, 1, a.StateTime())
	require.NoError(t, m.Update())
	assert.Equal(t, abilities.Inactive, a.State())
	assert.True(t, a.OnCooldown())
	assert.Equal(t, 1, a.CooldownLeft())

	require.NoError(t, m.Update())
	assert.False(t, a.OnCooldown(), "refresh_condition reads data written by update_active")
}

func TestMissingHooksUseDefaults(t *testing.T) {
	m, a := newManager(t, script.Config{ID: 1, Name: "idle", Source: []byte(`hooks := {}`)})
	a.StartCooldown()
	require.NoError(t, m.Update())
	assert.False(t, a.OnCooldown())
	assert.False(t, a.Levelable())
}

func TestLeveledScript(t *testing.T) {
	_, a := newManager(t, script.Config{ID: 2, Name: "wall_jump", MaxLevel: 2, Source: []byte(`hooks := {}`)})
	assert.True(t, a.Levelable())
	assert.False(t, a.Unlocked())
	a.SetLevel(5)
	assert.Equal(t, 2, a.Level())
}

func TestScriptErrors(t *testing.T) {
	_, err := script.Compile(script.Config{ID: 1, Name: "broken", Source: []byte(`hooks := {`)})
	assert.Error(t, err)

	_, err = script.Compile(script.Config{ID: 1, Source: []byte(`hooks := {}`)})
	assert.Error(t, err)

	m, _ := newManager(t, script.Config{ID: 1, Name: "bad_state", Source: []byte(`
hooks := {
	pre_update: func(engine, ability, data) { engine.set_state("flying") }
}
`)})
	err = m.Update()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad_state")
}

func TestRefreshHookErrorsDoNotStopUpdate(t *testing.T) {
	m, a := newManager(t, script.Config{ID: 1, Name: "stuck", Source: []byte(`
hooks := {
	refresh_condition: func(engine, ability, data) { engine.set_state("flying") }
}
`)})
	a.StartCooldown()
	for i := 0; i < 3; i++ {
		require.NoError(t, m.Update())
	}
	assert.True(t, a.OnCooldown(), "a failing refresh_condition keeps the cooldown")

	m, a = newManager(t, script.Config{ID: 1, Name: "noisy", Source: []byte(`
hooks := {
	on_refreshed: func(engine, ability, data) { engine.set_state("flying") }
}
`)})
	a.StartCooldown()
	require.NoError(t, m.Update())
	assert.False(t, a.OnCooldown(), "a failing on_refreshed still refreshes")
	assert.Equal(t, abilities.Inactive, a.State())
}

func TestBehaviorsDoNotShareData(t *testing.T) {
	prog, err := script.Compile(script.Config{ID: 4, Name: "glide", Cooldown: 1, Source: []byte(glide)})
	require.NoError(t, err)

	m1, err := abilities.NewManager("a", nil, nil, prog.NewBehavior())
	require.NoError(t, err)
	m2, err := abilities.NewManager("b", nil, nil, prog.NewBehavior())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, m1.Update())
	}
	a1, _ := m1.Get(4)
	a2, _ := m2.Get(4)
	assert.True(t, a1.OnCooldown())
	assert.Equal(t, abilities.Inactive, a2.State())
	assert.False(t, a2.OnCooldown())
}

const held = `
hooks := {
	pre_update: func(engine, ability, data) {
		if !is_undefined(data.held) && data.held && ability.state == "inactive" {
			engine.set_state("active")
		}
		data.seen = ability.state_time
	}
}
`

func TestHostFeedsScriptData(t *testing.T) {
	m, a := newManager(t, script.Config{ID: 2, Name: "held", MaxLevel: 1, Source: []byte(held)})
	a.SetLevel(1)

	s, ok := script.AsScript(a.Behavior())
	require.True(t, ok)

	require.NoError(t, m.Update())
	assert.Equal(t, abilities.Inactive, a.State())

	require.NoError(t, s.SetData("held", true))
	require.NoError(t, m.Update())
	assert.Equal(t, abilities.Active, a.State())
	assert.Equal(t, int64(0), s.Data("seen"))
	assert.Nil(t, s.Data("missing"))
}
