package systems_test

import (
	"testing"

	"github.com/automoto/animlib/animation"
	"github.com/automoto/animlib/components"
	cfg "github.com/automoto/animlib/config"
	"github.com/automoto/animlib/content/sample"
	"github.com/automoto/animlib/shared/messages"
	"github.com/automoto/animlib/shared/netcodec"
	"github.com/automoto/animlib/shared/netcomponents"
	"github.com/automoto/animlib/systems"
	"github.com/automoto/animlib/tags"
	"github.com/leap-fish/necs/esync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

type fakeLink struct {
	joined bool
	id     esync.NetworkId
	sent   []any
	syncs  []messages.AbilitySync
	left   []messages.EntityLeft
	resync bool
	resend bool
}

func (l *fakeLink) Joined() bool               { return l.joined }
func (l *fakeLink) NetworkID() esync.NetworkId { return l.id }

func (l *fakeLink) SendMessage(msg any) error {
	l.sent = append(l.sent, msg)
	return nil
}

func (l *fakeLink) DrainAbilitySyncs() []messages.AbilitySync {
	out := l.syncs
	l.syncs = nil
	return out
}

func (l *fakeLink) DrainLeft() []messages.EntityLeft {
	out := l.left
	l.left = nil
	return out
}

func (l *fakeLink) TakeResyncNeeded() bool {
	r := l.resync
	l.resync = false
	return r
}

func (l *fakeLink) TakeResendNeeded() bool {
	r := l.resend
	l.resend = false
	return r
}

func (l *fakeLink) take() []any {
	out := l.sent
	l.sent = nil
	return out
}

func findEntry(e *ecs.ECS, id esync.NetworkId) (*donburi.Entry, bool) {
	entity := esync.FindByNetworkId(e.World, id)
	if !e.World.Valid(entity) {
		return nil, false
	}
	return e.World.Entry(entity), true
}

func TestNetSyncSendsLocalState(t *testing.T) {
	e := newECS()
	reg := newRegistry(t)
	entry := spawnLocal(t, e, reg)
	link := &fakeLink{id: 5}
	sync := systems.NewNetSyncSystem(link, reg)

	sync(e)
	assert.Empty(t, link.take(), "nothing is sent before joining")

	link.joined = true
	sync(e)
	sent := link.take()
	require.Len(t, sent, 2)
	full, ok := sent[0].(messages.AbilitySync)
	require.True(t, ok)
	assert.True(t, full.Full)
	assert.Equal(t, esync.NetworkId(5), full.NetworkID)
	assert.Equal(t, messages.CharacterState{Mod: sample.ModHero, Track: "idle", Facing: 1}, sent[1])

	sync(e)
	assert.Empty(t, link.take(), "unchanged state is not resent")

	heroAbility(t, entry, sample.DashID).SetLevel(1)
	sync(e)
	sent = link.take()
	require.Len(t, sent, 1)
	delta := sent[0].(messages.AbilitySync)
	assert.False(t, delta.Full)

	// The delta decodes on a collection with the same mods.
	mirror, err := reg.NewCollection(nil)
	require.NoError(t, err)
	require.NoError(t, mirror.ReadAbilityDelta(netcodec.NewReader(delta.Payload), false))
	hero, _ := mirror.Get(sample.ModHero)
	dash, _ := hero.Abilities.Get(sample.DashID)
	assert.Equal(t, 1, dash.Level())

	link.joined = false
	sync(e)
	link.joined = true
	sync(e)
	sent = link.take()
	require.Len(t, sent, 2, "a rejoin resends everything")
	assert.True(t, sent[0].(messages.AbilitySync).Full)
}

func TestNetSyncResendsFullWhenRelayAsks(t *testing.T) {
	e := newECS()
	reg := newRegistry(t)
	spawnLocal(t, e, reg)
	link := &fakeLink{joined: true, id: 5}
	sync := systems.NewNetSyncSystem(link, reg)

	sync(e)
	require.Len(t, link.take(), 2)
	sync(e)
	require.Empty(t, link.take())

	link.resend = true
	sync(e)
	sent := link.take()
	require.Len(t, sent, 2)
	assert.True(t, sent[0].(messages.AbilitySync).Full)
	assert.IsType(t, messages.CharacterState{}, sent[1])
}

func TestNetSyncDropsOversizedDelta(t *testing.T) {
	prev := cfg.Net
	cfg.Net.MaxPayload = 1
	t.Cleanup(func() { cfg.Net = prev })

	e := newECS()
	reg := newRegistry(t)
	entry := spawnLocal(t, e, reg)
	link := &fakeLink{joined: true, id: 5}
	sync := systems.NewNetSyncSystem(link, reg)

	sync(e)
	sent := link.take()
	require.Len(t, sent, 1, "character state still goes out")
	assert.IsType(t, messages.CharacterState{}, sent[0])
	assert.False(t, collection(entry).AbilitiesDirty())
	assert.False(t, components.Characters.Get(entry).NeedsFull)

	sync(e)
	assert.Empty(t, link.take(), "the dropped delta is not rebuilt every tick")
}

func TestNetSyncMirrorsRemoteEntities(t *testing.T) {
	e := newECS()
	reg := newRegistry(t)
	link := &fakeLink{joined: true, id: 5}
	sync := systems.NewNetSyncSystem(link, reg)

	remote, err := reg.NewCollection(nil)
	require.NoError(t, err)
	hero, _ := remote.Get(sample.ModHero)
	dash, _ := hero.Abilities.Get(sample.DashID)
	dash.SetLevel(2)
	w := netcodec.NewWriter()
	require.NoError(t, remote.WriteAbilityDelta(w, true))

	link.syncs = []messages.AbilitySync{
		{NetworkID: 9, Full: true, Payload: w.Bytes()},
		{NetworkID: 5, Full: true, Payload: []byte{0xff}},
	}
	sync(e)

	entry, ok := findEntry(e, 9)
	require.True(t, ok)
	assert.True(t, entry.HasComponent(tags.RemoteCharacter))
	mirrored, _ := collection(entry).Get(sample.ModHero)
	level, _ := mirrored.Abilities.Get(sample.DashID)
	assert.Equal(t, 2, level.Level())
	_, ok = findEntry(e, 5)
	assert.False(t, ok, "echoes of our own entity are ignored")
	assert.NotContains(t, link.take(), messages.ResyncRequest{})

	link.syncs = []messages.AbilitySync{{NetworkID: 9, Payload: []byte{0xff}}}
	sync(e)
	assert.Contains(t, link.take(), messages.ResyncRequest{}, "a bad delta asks for a resync")

	link.resync = true
	sync(e)
	assert.Contains(t, link.take(), messages.ResyncRequest{})

	link.left = []messages.EntityLeft{{NetworkID: 9}}
	sync(e)
	_, ok = findEntry(e, 9)
	assert.False(t, ok)
}

func TestUpdateRemoteCharactersPosesMirrors(t *testing.T) {
	e := newECS()
	reg := newRegistry(t)
	link := &fakeLink{joined: true, id: 5}
	sync := systems.NewNetSyncSystem(link, reg)

	remote, err := reg.NewCollection(nil)
	require.NoError(t, err)
	w := netcodec.NewWriter()
	require.NoError(t, remote.WriteAbilityDelta(w, true))
	link.syncs = []messages.AbilitySync{{NetworkID: 9, Full: true, Payload: w.Bytes()}}
	sync(e)
	entry, ok := findEntry(e, 9)
	require.True(t, ok)

	remoteState := components.RemoteState.Get(entry)
	remoteState.State = components.CharacterStateData{Mod: sample.ModHero, Track: "dash", Frame: 2, Reversed: true, Facing: -1}
	systems.UpdateRemoteCharacters(e)

	ctrl := collection(entry).Active().Controller
	assert.Equal(t, "dash", ctrl.TrackName())
	assert.Equal(t, 2, ctrl.FrameIndex())
	assert.True(t, ctrl.Reversed())
	assert.True(t, ctrl.Effects().Has(animation.FlipHorizontal))
	assert.True(t, remoteState.Applied)

	remoteState.State.Reversed = false
	remoteState.Applied = false
	systems.UpdateRemoteCharacters(e)
	assert.False(t, ctrl.Reversed())

	// Mirrors follow the owner even into a manual mod.
	remoteState.State = components.CharacterStateData{Mod: sample.ModGhost, Track: "float", Facing: 1}
	remoteState.Applied = false
	systems.UpdateRemoteCharacters(e)
	assert.Equal(t, sample.ModGhost, collection(entry).Active().Mod)

	remoteState.State = components.CharacterStateData{}
	remoteState.Applied = false
	systems.UpdateRemoteCharacters(e)
	assert.Nil(t, collection(entry).Active())

	// Content logic never runs on mirrors.
	systems.UpdateCharacters(e)
	assert.Nil(t, collection(entry).Active())
}

func TestNetCharacterConversion(t *testing.T) {
	reg := newRegistry(t)

	state := components.CharacterStateData{Mod: sample.ModGhost, Track: "fade", Frame: 1, Reversed: true, Rotation: 0.5, Facing: -1}
	net := systems.NetCharacterFromState(reg, state)
	assert.Equal(t, 1, net.ModIndex)
	assert.Equal(t, state, systems.CharacterStateFromNet(reg, net))

	assert.Equal(t, -1, systems.NetCharacterFromState(reg, components.CharacterStateData{}).ModIndex)
	assert.Equal(t, -1, systems.NetCharacterFromState(reg, components.CharacterStateData{Mod: "nope"}).ModIndex)
	assert.Empty(t, systems.CharacterStateFromNet(reg, netcomponents.NetCharacterData{ModIndex: 7}).Mod)
}
