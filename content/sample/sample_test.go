package sample_test

import (
	"encoding/json"
	"testing"

	"github.com/automoto/animlib/abilities"
	"github.com/automoto/animlib/abilities/script"
	"github.com/automoto/animlib/assets"
	"github.com/automoto/animlib/character"
	"github.com/automoto/animlib/content/sample"
	"github.com/automoto/animlib/registry"
	"github.com/automoto/animlib/shared/netcodec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type body struct {
	dead   bool
	moving bool
}

func (b *body) Direction() int        { return 1 }
func (b *body) GravityDirection() int { return 1 }
func (b *body) Alive() bool           { return !b.dead }
func (b *body) Incapacitated() bool   { return false }
func (b *body) Moving() bool          { return b.moving }

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New(assets.NewImageResolver(sample.FS))
	require.NoError(t, sample.Register(reg))
	require.NoError(t, reg.Load())
	t.Cleanup(reg.Close)
	return reg
}

func newHero(t *testing.T, reg *registry.Registry) (*character.Collection, *body) {
	t.Helper()
	b := &body{}
	col, err := reg.NewCollection(b)
	require.NoError(t, err)
	ok, err := col.Enable(sample.ModHero)
	require.NoError(t, err)
	require.True(t, ok)
	return col, b
}

func run(t *testing.T, col *character.Collection, ticks int) {
	t.Helper()
	for i := 0; i < ticks; i++ {
		require.NoError(t, col.Update())
	}
}

func ability(t *testing.T, col *character.Collection, id int) *abilities.Ability {
	t.Helper()
	hero, ok := col.Get(sample.ModHero)
	require.True(t, ok)
	a, ok := hero.Abilities.Get(id)
	require.True(t, ok)
	return a
}

func heroTrack(col *character.Collection) string {
	hero, _ := col.Get(sample.ModHero)
	return hero.Controller.TrackName()
}

func TestSampleLoads(t *testing.T) {
	reg := newRegistry(t)
	assert.Equal(t, []string{sample.ModHero, sample.ModGhost}, reg.Mods())

	main, ok := reg.MainSource(sample.ModHero)
	require.True(t, ok)
	assert.Equal(t, []string{"idle", "run", "dash", "jump", "glide", "die"}, main.TrackNames())

	die, _ := main.Track("die")
	assert.Equal(t, "assets/hero_hurt.png", die.TexturePathAt(2), "switch frame sticks to the end of the track")

	col, _ := newHero(t, reg)
	hero, _ := col.Get(sample.ModHero)
	assert.Len(t, hero.Controller.Animations(), 2, "cape is layered on the hero")
	assert.Len(t, hero.Abilities.Abilities(), 3)

	ghost, ok := col.Get(sample.ModGhost)
	require.True(t, ok)
	assert.Nil(t, ghost.Abilities)
	mod, _ := reg.Mod(sample.ModGhost)
	assert.True(t, mod.Manual)
}

func TestDashChargesAndCooldown(t *testing.T) {
	col, b := newHero(t, newRegistry(t))
	dash := ability(t, col, sample.DashID)
	d := dash.Behavior().(*sample.Dash)

	d.Trigger()
	run(t, col, 1)
	assert.Equal(t, abilities.Inactive, dash.State(), "locked at level 0")

	dash.SetLevel(2)
	assert.Equal(t, 2, d.Charges(dash))

	d.Trigger()
	run(t, col, 1)
	assert.Equal(t, abilities.Starting, dash.State())
	assert.Equal(t, "dash", heroTrack(col))

	run(t, col, 13)
	assert.Equal(t, abilities.Inactive, dash.State())
	assert.Equal(t, 1, d.Charges(dash))
	assert.True(t, dash.OnCooldown())

	d.Trigger()
	run(t, col, 14)
	assert.Equal(t, 0, d.Charges(dash))
	assert.Equal(t, 45, dash.CooldownLeft())

	b.dead = true
	run(t, col, 45)
	assert.True(t, dash.OnCooldown(), "charges do not refresh while dead")
	assert.Equal(t, 45, dash.CooldownLeft(), "cooldown holds while dead")
	assert.Equal(t, "die", heroTrack(col))

	b.dead = false
	run(t, col, 44)
	assert.True(t, dash.OnCooldown())
	run(t, col, 1)
	assert.False(t, dash.OnCooldown())
	assert.Equal(t, 2, d.Charges(dash))
}

func TestDoubleJumpSaveLoad(t *testing.T) {
	reg := newRegistry(t)
	col, _ := newHero(t, reg)
	jump := ability(t, col, sample.DoubleJumpID)
	j := jump.Behavior().(*sample.DoubleJump)

	j.Trigger()
	run(t, col, 1)
	assert.Equal(t, abilities.Active, jump.State())
	assert.Equal(t, "jump", heroTrack(col))
	assert.Equal(t, 1, j.Total())

	run(t, col, 12)
	assert.Equal(t, abilities.Inactive, jump.State())
	assert.True(t, jump.OnCooldown())

	ability(t, col, sample.DashID).SetLevel(3)
	data, err := json.Marshal(col.Save())
	require.NoError(t, err)

	var tag abilities.Tag
	require.NoError(t, json.Unmarshal(data, &tag))
	restored, _ := newHero(t, reg)
	require.NoError(t, restored.Load(tag))

	assert.Equal(t, 3, ability(t, restored, sample.DashID).Level())
	assert.Equal(t, 1, ability(t, restored, sample.DoubleJumpID).Behavior().(*sample.DoubleJump).Total())
}

func TestGlideScript(t *testing.T) {
	col, _ := newHero(t, newRegistry(t))
	glide := ability(t, col, sample.GlideID)
	s, ok := script.AsScript(glide.Behavior())
	require.True(t, ok)

	require.NoError(t, s.SetData("held", true))
	run(t, col, 1)
	assert.Equal(t, abilities.Inactive, glide.State(), "locked at level 0")

	glide.SetLevel(1)
	run(t, col, 1)
	assert.Equal(t, abilities.Starting, glide.State())
	assert.Equal(t, "glide", heroTrack(col))

	run(t, col, 9)
	assert.Equal(t, abilities.Active, glide.State())
	hero, _ := col.Get(sample.ModHero)
	assert.InDelta(t, 0.2, hero.Controller.Rotation(), 1e-6)

	require.NoError(t, s.SetData("held", false))
	run(t, col, 5)
	assert.Equal(t, abilities.Inactive, glide.State())
	assert.True(t, glide.OnCooldown())

	run(t, col, 5)
	assert.True(t, glide.OnCooldown())
	run(t, col, 30)
	assert.False(t, glide.OnCooldown())
	assert.Equal(t, "idle", heroTrack(col))
}

func TestGlideWaitsForGround(t *testing.T) {
	col, _ := newHero(t, newRegistry(t))
	glide := ability(t, col, sample.GlideID)
	s, ok := script.AsScript(glide.Behavior())
	require.True(t, ok)

	glide.SetLevel(1)
	require.NoError(t, s.SetData("held", true))
	run(t, col, 10)
	require.NoError(t, s.SetData("held", false))
	require.NoError(t, s.SetData("on_ground", false))
	run(t, col, 5)
	require.Equal(t, abilities.Inactive, glide.State())

	run(t, col, 40)
	assert.True(t, glide.OnCooldown(), "airborne")

	require.NoError(t, s.SetData("on_ground", true))
	run(t, col, 5)
	assert.True(t, glide.OnCooldown())
	run(t, col, 10)
	assert.False(t, glide.OnCooldown())
}

func TestHeroRunsWhenMoving(t *testing.T) {
	col, b := newHero(t, newRegistry(t))
	run(t, col, 1)
	assert.Equal(t, "idle", heroTrack(col))
	b.moving = true
	run(t, col, 1)
	assert.Equal(t, "run", heroTrack(col))
}

func TestGhostPreemptsHero(t *testing.T) {
	col, _ := newHero(t, newRegistry(t))
	ok, err := col.Enable(sample.ModGhost)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, sample.ModGhost, col.Active().Mod)

	run(t, col, 1)
	ghost, _ := col.Get(sample.ModGhost)
	assert.Equal(t, "float", ghost.Controller.TrackName())

	require.NoError(t, col.Disable(sample.ModGhost))
	assert.Equal(t, sample.ModHero, col.Active().Mod)
}

func TestDashDeltaCarriesCharges(t *testing.T) {
	reg := newRegistry(t)
	src, _ := newHero(t, reg)
	dash := ability(t, src, sample.DashID)
	dash.SetLevel(2)
	dash.Behavior().(*sample.Dash).Trigger()
	run(t, src, 14)

	w := netcodec.NewWriter()
	require.NoError(t, src.WriteAbilityDelta(w, true))

	dst, _ := newHero(t, reg)
	require.NoError(t, dst.ReadAbilityDelta(netcodec.NewReader(w.Bytes()), false))
	mirror := ability(t, dst, sample.DashID)
	assert.Equal(t, 2, mirror.Level())
	assert.Equal(t, 1, mirror.Behavior().(*sample.Dash).Charges(mirror))
}
