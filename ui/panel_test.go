package ui

import (
	"testing"

	"github.com/automoto/animlib/abilities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leveled struct {
	abilities.NopBehavior
}

func (leveled) ID() int       { return 1 }
func (leveled) Name() string  { return "dash" }
func (leveled) MaxLevel() int { return 3 }
func (leveled) Cooldown() int { return 12 }

type plain struct {
	abilities.NopBehavior
}

func (plain) ID() int      { return 2 }
func (plain) Name() string { return "glide" }

func TestAbilityLine(t *testing.T) {
	m, err := abilities.NewManager("hero", nil, nil, leveled{}, plain{})
	require.NoError(t, err)

	dash, _ := m.Get(1)
	dash.SetLevel(2)
	assert.Equal(t, "dash         inactive lv2/3", AbilityLine(dash))

	dash.SetState(abilities.Active)
	dash.StartCooldown()
	assert.Equal(t, "dash         active   lv2/3 cd 12", AbilityLine(dash))

	glide, _ := m.Get(2)
	assert.Equal(t, "glide        inactive", AbilityLine(glide))
}
