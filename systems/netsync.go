package systems

import (
	"log"

	"github.com/automoto/animlib/animation"
	"github.com/automoto/animlib/components"
	cfg "github.com/automoto/animlib/config"
	"github.com/automoto/animlib/registry"
	"github.com/automoto/animlib/shared/messages"
	"github.com/automoto/animlib/shared/netcodec"
	"github.com/automoto/animlib/systems/factory"
	"github.com/automoto/animlib/tags"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// NetLink is the client side of the ability sync channel. *network.Client
// implements it.
type NetLink interface {
	Joined() bool
	NetworkID() esync.NetworkId
	SendMessage(msg any) error
	DrainAbilitySyncs() []messages.AbilitySync
	DrainLeft() []messages.EntityLeft
	TakeResyncNeeded() bool
	TakeResendNeeded() bool
}

type netSyncState struct {
	tick   int
	joined bool
}

// NewNetSyncSystem returns an ECS system that applies received ability
// deltas to mirrored entities and, every cfg.Net.SyncInterval ticks, sends
// the dirty delta and character state of each local entity.
func NewNetSyncSystem(link NetLink, reg *registry.Registry) func(*ecs.ECS) {
	state := &netSyncState{}

	return func(e *ecs.ECS) {
		if !link.Joined() {
			state.joined = false
			return
		}
		localID := link.NetworkID()
		if !state.joined {
			// Everything we own is new to the relay after a (re)join.
			state.joined = true
			markLocalFull(e)
		}
		if link.TakeResendNeeded() {
			markLocalFull(e)
		}

		resync := link.TakeResyncNeeded()
		for _, msg := range link.DrainAbilitySyncs() {
			if msg.NetworkID == localID {
				continue
			}
			if err := applyAbilitySync(e, reg, msg); err != nil {
				log.Printf("[net] ability sync for %d: %v", msg.NetworkID, err)
				resync = true
			}
		}
		for _, msg := range link.DrainLeft() {
			removeRemote(e, msg.NetworkID)
		}
		if resync {
			if err := link.SendMessage(messages.ResyncRequest{}); err != nil {
				log.Printf("[net] resync request: %v", err)
			}
		}

		state.tick++
		if interval := cfg.Net.SyncInterval; interval > 1 && state.tick%interval != 0 {
			return
		}
		tags.LocalCharacter.Each(e.World, func(entry *donburi.Entry) {
			chars := components.Characters.Get(entry)
			chars.NetworkID = localID
			sendLocal(link, entry, chars)
		})
	}
}

func markLocalFull(e *ecs.ECS) {
	tags.LocalCharacter.Each(e.World, func(entry *donburi.Entry) {
		chars := components.Characters.Get(entry)
		chars.NeedsFull = true
		chars.LastState = components.CharacterStateData{}
	})
}

func sendLocal(link NetLink, entry *donburi.Entry, chars *components.CharactersData) {
	col := chars.Collection
	if col == nil {
		return
	}

	if chars.NeedsFull || col.AbilitiesDirty() {
		w := netcodec.NewWriter()
		if err := col.WriteAbilityDelta(w, chars.NeedsFull); err != nil {
			log.Printf("[net] encode abilities for %d: %v", chars.NetworkID, err)
			return
		}
		if w.Len() > cfg.Net.MaxPayload {
			// The relay would drop it. Clearing keeps the same oversized
			// delta from being rebuilt every tick; the next change sends again.
			log.Printf("[net] ability delta for %d is %d bytes, over the %d limit, dropping", chars.NetworkID, w.Len(), cfg.Net.MaxPayload)
			col.ClearAbilitiesDirty()
			chars.NeedsFull = false
		} else {
			msg := messages.AbilitySync{
				NetworkID: chars.NetworkID,
				Full:      chars.NeedsFull,
				Payload:   w.Bytes(),
			}
			if err := link.SendMessage(msg); err != nil {
				log.Printf("[net] send abilities for %d: %v", chars.NetworkID, err)
				return
			}
			col.ClearAbilitiesDirty()
			chars.NeedsFull = false
		}
	}

	cur := CurrentCharacterState(entry)
	if cur == chars.LastState {
		return
	}
	msg := messages.CharacterState{
		Mod:      cur.Mod,
		Track:    cur.Track,
		Frame:    cur.Frame,
		Reversed: cur.Reversed,
		Rotation: cur.Rotation,
		Facing:   cur.Facing,
	}
	if err := link.SendMessage(msg); err != nil {
		log.Printf("[net] send character state for %d: %v", chars.NetworkID, err)
		return
	}
	chars.LastState = cur
}

// CurrentCharacterState reads the active character and cursor of entry.
func CurrentCharacterState(entry *donburi.Entry) components.CharacterStateData {
	var s components.CharacterStateData
	body := components.Body.Get(entry)
	s.Facing = body.Facing

	col := components.Characters.Get(entry).Collection
	if col == nil {
		return s
	}
	active := col.Active()
	if active == nil || active.Controller == nil {
		return s
	}
	c := active.Controller
	s.Mod = active.Mod
	s.Track = c.TrackName()
	s.Frame = c.FrameIndex()
	s.Reversed = c.Reversed()
	s.Rotation = c.Rotation()
	return s
}

func applyAbilitySync(e *ecs.ECS, reg *registry.Registry, msg messages.AbilitySync) error {
	entry, err := findOrSpawnRemote(e, reg, msg.NetworkID)
	if err != nil {
		return err
	}
	col := components.Characters.Get(entry).Collection
	return col.ReadAbilityDelta(netcodec.NewReader(msg.Payload), false)
}

func findOrSpawnRemote(e *ecs.ECS, reg *registry.Registry, id esync.NetworkId) (*donburi.Entry, error) {
	entity := esync.FindByNetworkId(e.World, id)
	if e.World.Valid(entity) {
		return e.World.Entry(entity), nil
	}
	entry, err := factory.CreateRemoteCharacter(e, reg, id)
	if err != nil {
		return nil, err
	}
	log.Printf("[net] mirroring entity %d", id)
	return entry, nil
}

func removeRemote(e *ecs.ECS, id esync.NetworkId) {
	entity := esync.FindByNetworkId(e.World, id)
	if !e.World.Valid(entity) {
		return
	}
	entry := e.World.Entry(entity)
	if !entry.HasComponent(tags.RemoteCharacter) {
		return
	}
	entry.Remove()
	log.Printf("[net] entity %d left", id)
}

// ApplySnapshot copies NetCharacter state from a relay snapshot onto
// mirrored entities, spawning mirrors it has not seen yet. The local
// entity is skipped.
func ApplySnapshot(e *ecs.ECS, reg *registry.Registry, snapshot esync.WorldSnapshot, localID esync.NetworkId) {
	for _, ent := range snapshot {
		if ent.Id == localID {
			continue
		}
		for _, componentBytes := range ent.State {
			instance, err := esync.Mapper.Deserialize(componentBytes)
			if err != nil {
				continue
			}
			applyNetComponent(e, reg, ent.Id, instance)
		}
	}
}

// UpdateRemoteCharacters poses every mirrored entity from its last
// received character state. Content logic never runs on mirrors.
func UpdateRemoteCharacters(ecs *ecs.ECS) {
	tags.RemoteCharacter.Each(ecs.World, func(entry *donburi.Entry) {
		remote := components.RemoteState.Get(entry)
		if remote.Applied {
			return
		}
		if err := poseRemote(entry, remote.State); err != nil {
			log.Printf("[net] pose entity %d: %v", components.Characters.Get(entry).NetworkID, err)
		}
		remote.Applied = true
	})
}

func poseRemote(entry *donburi.Entry, s components.CharacterStateData) error {
	components.Body.Get(entry).Facing = s.Facing
	col := components.Characters.Get(entry).Collection
	if col == nil {
		return nil
	}

	if cur := col.Active(); cur == nil || cur.Mod != s.Mod {
		// Mirrors follow the owner's choice, not local priority rules.
		for i := 0; col.Active() != nil && i <= len(col.Characters()); i++ {
			if err := col.Disable(col.Active().Mod); err != nil {
				return err
			}
		}
		if s.Mod == "" {
			return nil
		}
		if _, err := col.Enable(s.Mod); err != nil {
			return err
		}
	}

	active := col.Active()
	if active == nil || active.Controller == nil || s.Track == "" {
		return nil
	}
	c := active.Controller
	if err := c.PlayTrack(s.Track, animation.WithFrame(s.Frame), animation.WithRotation(s.Rotation)); err != nil {
		return err
	}
	c.SetReversed(s.Reversed)
	var fx animation.SpriteEffects
	if s.Facing < 0 {
		fx |= animation.FlipHorizontal
	}
	c.SetEffects(fx)
	return nil
}
