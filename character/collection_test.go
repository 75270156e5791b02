package character_test

import (
	"errors"
	"image"
	"testing"

	"github.com/automoto/animlib/abilities"
	"github.com/automoto/animlib/animation"
	"github.com/automoto/animlib/character"
	"github.com/automoto/animlib/shared/netcodec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entity struct{}

func (entity) Direction() int        { return 1 }
func (entity) GravityDirection() int { return 1 }
func (entity) Alive() bool           { return true }
func (entity) Incapacitated() bool   { return false }

type resolver struct{}

func (resolver) Exists(string) bool { return true }
func (resolver) Resolve(string) (animation.Texture, error) {
	return image.NewRGBA(image.Rect(0, 0, 32, 32)), nil
}

type countingLogic struct{ calls int }

func (l *countingLogic) Update(c *animation.Controller) error {
	l.calls++
	return c.PlayTrack("idle")
}

func newController(t *testing.T, mod string, logic animation.Logic) *animation.Controller {
	t.Helper()
	src, err := animation.NewSource(animation.SourceSpec{
		Name:       mod,
		SpriteSize: animation.PointByte{X: 16, Y: 16},
		Texture:    mod + ".png",
		Tracks:     []animation.NamedTrack{{Name: "idle", Track: animation.Single(animation.NewFrame(0, 0, 0))}},
	}, resolver{})
	require.NoError(t, err)
	c, err := animation.NewController(mod, entity{}, logic, src)
	require.NoError(t, err)
	return c
}

type skill struct {
	abilities.NopBehavior
	id    int
	name  string
	panic bool
	ticks int
}

func (s *skill) ID() int       { return s.id }
func (s *skill) Name() string  { return s.name }
func (s *skill) MaxLevel() int { return 5 }

func (s *skill) PreUpdate(*abilities.Ability) error {
	if s.panic {
		panic("boom")
	}
	s.ticks++
	return nil
}

func newManager(t *testing.T, mod string, bs ...abilities.Behavior) *abilities.Manager {
	t.Helper()
	m, err := abilities.NewManager(mod, entity{}, nil, bs...)
	require.NoError(t, err)
	return m
}

func newCollection(t *testing.T, chars ...*character.Character) *character.Collection {
	t.Helper()
	c := character.NewCollection(entity{})
	for _, ch := range chars {
		require.NoError(t, c.Add(ch))
	}
	return c
}

func TestPriorityArbitration(t *testing.T) {
	tests := []struct {
		name      string
		active    character.Priority
		requester character.Priority
		want      bool
	}{
		{"default cannot preempt high", character.PriorityHigh, character.PriorityDefault, false},
		{"equal priority is rejected", character.PriorityDefault, character.PriorityDefault, false},
		{"highest preempts high", character.PriorityHigh, character.PriorityHighest, true},
		{"highest cannot preempt highest", character.PriorityHighest, character.PriorityHighest, false},
		{"lowest is always preemptable", character.PriorityLowest, character.PriorityLowest, true},
		{"higher preempts default", character.PriorityDefault, character.PriorityHigh, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCollection(t,
				&character.Character{Mod: "holder", Priority: tt.active},
				&character.Character{Mod: "requester", Priority: tt.requester},
			)
			ok, err := c.Enable("holder")
			require.NoError(t, err)
			require.True(t, ok)

			ok, err = c.Enable("requester")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, "requester", c.Active().Mod)
			} else {
				assert.Equal(t, "holder", c.Active().Mod)
			}
		})
	}
}

func TestEnableFromEmpty(t *testing.T) {
	c := newCollection(t, &character.Character{Mod: "a", Priority: character.PriorityLowest})
	assert.Nil(t, c.Active())
	assert.True(t, c.CanEnable(character.PriorityLowest))

	ok, err := c.Enable("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, c.Active().Enabled())

	_, err = c.Enable("missing")
	assert.ErrorIs(t, err, character.ErrUnknownCharacter)
}

func TestDisableRestoresMostRecent(t *testing.T) {
	c := newCollection(t,
		&character.Character{Mod: "a", Priority: character.PriorityLowest},
		&character.Character{Mod: "b", Priority: character.PriorityDefault},
		&character.Character{Mod: "c", Priority: character.PriorityHigh},
	)
	for _, mod := range []string{"a", "b", "c"} {
		ok, err := c.Enable(mod)
		require.NoError(t, err)
		require.True(t, ok)
	}
	a, _ := c.Get("a")
	assert.False(t, a.Enabled())

	require.NoError(t, c.Disable("c"))
	assert.Equal(t, "b", c.Active().Mod)
	require.NoError(t, c.Disable("b"))
	assert.Equal(t, "a", c.Active().Mod)
	assert.True(t, a.Enabled())
	require.NoError(t, c.Disable("a"))
	assert.Nil(t, c.Active())
}

func TestStackHasNoDuplicates(t *testing.T) {
	c := newCollection(t,
		&character.Character{Mod: "a", Priority: character.PriorityLowest},
		&character.Character{Mod: "b", Priority: character.PriorityLowest},
	)
	for _, mod := range []string{"a", "b", "a", "b", "a"} {
		ok, err := c.Enable(mod)
		require.NoError(t, err)
		require.True(t, ok)
	}
	stack := c.Stack()
	require.Len(t, stack, 1)
	assert.Equal(t, "b", stack[0].Mod)
}

func TestDisableInactiveDropsFromStack(t *testing.T) {
	c := newCollection(t,
		&character.Character{Mod: "a", Priority: character.PriorityLowest},
		&character.Character{Mod: "b", Priority: character.PriorityDefault},
	)
	_, _ = c.Enable("a")
	_, _ = c.Enable("b")
	require.NoError(t, c.Disable("a"))
	assert.Empty(t, c.Stack())

	require.NoError(t, c.Disable("b"))
	assert.Nil(t, c.Active())
}

func TestAddRejectsDuplicates(t *testing.T) {
	c := newCollection(t, &character.Character{Mod: "a"})
	assert.ErrorIs(t, c.Add(&character.Character{Mod: "a"}), character.ErrDuplicateMod)
	assert.Error(t, c.Add(&character.Character{}))
}

func TestUpdateAnimatesOnlyActive(t *testing.T) {
	la, lb := &countingLogic{}, &countingLogic{}
	sa, sb := &skill{id: 1, name: "a1"}, &skill{id: 1, name: "b1"}
	c := newCollection(t,
		&character.Character{Mod: "a", Controller: newController(t, "a", la), Abilities: newManager(t, "a", sa)},
		&character.Character{Mod: "b", Controller: newController(t, "b", lb), Abilities: newManager(t, "b", sb)},
	)
	for _, ch := range c.Characters() {
		a, _ := ch.Abilities.Get(1)
		a.SetLevel(1)
	}
	_, _ = c.Enable("b")

	require.NoError(t, c.Update())
	assert.Equal(t, 0, la.calls)
	assert.Equal(t, 1, lb.calls)
	assert.Equal(t, 1, sa.ticks)
	assert.Equal(t, 1, sb.ticks)
}

func TestUpdateIsolatesFaults(t *testing.T) {
	bad, good := &skill{id: 1, name: "bad", panic: true}, &skill{id: 1, name: "good"}
	c := newCollection(t,
		&character.Character{Mod: "broken", Abilities: newManager(t, "broken", bad)},
		&character.Character{Mod: "fine", Abilities: newManager(t, "fine", good)},
	)
	for _, ch := range c.Characters() {
		a, _ := ch.Abilities.Get(1)
		a.SetLevel(1)
	}

	err := c.Update()
	require.Error(t, err)
	var hookErr *character.HookError
	require.True(t, errors.As(err, &hookErr))
	assert.Equal(t, "broken", hookErr.Mod)
	assert.Equal(t, 1, good.ticks)
}

func TestAbilityDeltaRoundTrip(t *testing.T) {
	mk := func() (*character.Collection, *skill) {
		s := &skill{id: 2, name: "dash"}
		return newCollection(t,
			&character.Character{Mod: "anim_only", Controller: newController(t, "anim_only", nil)},
			&character.Character{Mod: "moves", Abilities: newManager(t, "moves", s)},
		), s
	}
	src, _ := mk()
	dst, _ := mk()

	moves, _ := src.Get("moves")
	a, _ := moves.Abilities.Get(2)
	a.SetLevel(3)
	a.SetState(abilities.Starting)
	require.True(t, src.AbilitiesDirty())

	w := netcodec.NewWriter()
	require.NoError(t, src.WriteAbilityDelta(w, false))
	require.NoError(t, dst.ReadAbilityDelta(netcodec.NewReader(w.Bytes()), true))

	got, _ := dst.Get("moves")
	b, _ := got.Abilities.Get(2)
	assert.Equal(t, 3, b.Level())
	assert.Equal(t, abilities.Starting, b.State())
	assert.True(t, dst.AbilitiesDirty())

	src.ClearAbilitiesDirty()
	assert.False(t, src.AbilitiesDirty())
	w.Reset()
	require.NoError(t, src.WriteAbilityDelta(w, false))
	assert.Equal(t, []byte{0}, w.Bytes())
}

func TestTruncatedAbilityDeltaAppliesNothing(t *testing.T) {
	mk := func() *character.Collection {
		return newCollection(t,
			&character.Character{Mod: "moves", Abilities: newManager(t, "moves", &skill{id: 1, name: "dash"})},
			&character.Character{Mod: "more", Abilities: newManager(t, "more", &skill{id: 1, name: "roll"})},
		)
	}
	src, dst := mk(), mk()
	for _, mod := range []string{"moves", "more"} {
		ch, _ := src.Get(mod)
		a, _ := ch.Abilities.Get(1)
		a.SetLevel(2)
	}
	dst.ClearAbilitiesDirty()

	w := netcodec.NewWriter()
	require.NoError(t, src.WriteAbilityDelta(w, true))
	full := w.Bytes()

	err := dst.ReadAbilityDelta(netcodec.NewReader(full[:len(full)-1]), true)
	require.ErrorIs(t, err, netcodec.ErrShortBuffer)
	for _, mod := range []string{"moves", "more"} {
		ch, _ := dst.Get(mod)
		a, _ := ch.Abilities.Get(1)
		assert.Equal(t, 0, a.Level(), mod)
	}
	assert.False(t, dst.AbilitiesDirty())

	require.NoError(t, dst.ReadAbilityDelta(netcodec.NewReader(full), true))
	ch, _ := dst.Get("moves")
	a, _ := ch.Abilities.Get(1)
	assert.Equal(t, 2, a.Level())
}

func TestReadAbilityDeltaUnknownMod(t *testing.T) {
	c := newCollection(t, &character.Character{Mod: "moves", Abilities: newManager(t, "moves")})
	w := netcodec.NewWriter()
	require.NoError(t, w.WriteBounded(1, 1))
	w.WriteString("ghost")
	err := c.ReadAbilityDelta(netcodec.NewReader(w.Bytes()), false)
	assert.ErrorIs(t, err, character.ErrUnknownCharacter)
}

func TestSaveLoad(t *testing.T) {
	src := newCollection(t, &character.Character{Mod: "moves", Abilities: newManager(t, "moves", &skill{id: 1, name: "dash"})})
	ch, _ := src.Get("moves")
	a, _ := ch.Abilities.Get(1)
	a.SetLevel(4)

	saved := src.Save()
	dst := newCollection(t, &character.Character{Mod: "moves", Abilities: newManager(t, "moves", &skill{id: 1, name: "dash"})})
	require.NoError(t, dst.Load(saved))
	ch, _ = dst.Get("moves")
	b, _ := ch.Abilities.Get(1)
	assert.Equal(t, 4, b.Level())

	assert.NoError(t, dst.Load(abilities.Tag{"removed_mod": abilities.Tag{}}))
}

func TestAbilityDeltaIgnoresAnimationOnlyCharacters(t *testing.T) {
	client := newCollection(t,
		&character.Character{Mod: "a1", Controller: newController(t, "a1", nil)},
		&character.Character{Mod: "a2", Controller: newController(t, "a2", nil)},
		&character.Character{Mod: "moves", Abilities: newManager(t, "moves", &skill{id: 1, name: "dash"})},
	)
	headless := newCollection(t, &character.Character{Mod: "moves", Abilities: newManager(t, "moves", &skill{id: 1, name: "dash"})})

	w := netcodec.NewWriter()
	require.NoError(t, client.WriteAbilityDelta(w, true))
	require.NoError(t, headless.ReadAbilityDelta(netcodec.NewReader(w.Bytes()), false))
}
