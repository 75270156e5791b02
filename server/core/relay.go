// Package core is the authoritative relay. Clients own their entities'
// ability state; the relay decodes every delta into a mirror, marks what
// changed dirty and rebroadcasts it to everyone else.
package core

import (
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/automoto/animlib/character"
	"github.com/automoto/animlib/components"
	cfg "github.com/automoto/animlib/config"
	"github.com/automoto/animlib/registry"
	"github.com/automoto/animlib/shared/messages"
	"github.com/automoto/animlib/shared/netcodec"
	"github.com/automoto/animlib/shared/netcomponents"
	"github.com/automoto/animlib/systems"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/yohamta/donburi"
)

// Sender is a connected client. *router.NetworkClient implements it.
type Sender interface {
	SendMessage(msg any) error
}

type peer struct {
	name   string
	joined bool
	entity donburi.Entity
	id     esync.NetworkId
	chars  *character.Collection
}

// Relay manages the mirror world and client connections.
type Relay struct {
	world     donburi.World
	reg       *registry.Registry
	loop      *GameLoop
	transport *transports.WsServerTransport

	name    string
	version string

	// Written by router goroutines, drained on the loop goroutine.
	cmdMu    sync.Mutex
	commands []func()

	mu    sync.RWMutex
	peers map[Sender]*peer
	order []Sender // join order, for deterministic broadcasts
}

// NewRelay creates a relay for the mods registered in reg. reg should be
// headless: the relay never animates.
func NewRelay(reg *registry.Registry, tickRate int, name, version string) *Relay {
	world := donburi.NewWorld()

	r := &Relay{
		world:   world,
		reg:     reg,
		name:    name,
		version: version,
		peers:   make(map[Sender]*peer),
	}
	r.loop = NewGameLoop(r, tickRate)

	srvsync.UseEsync(world)
	return r
}

// Start begins the relay on the given port
func (r *Relay) Start(port uint) error {
	r.setupRouterCallbacks()
	go r.loop.Run()

	r.transport = transports.NewWsServerTransport(port, "", nil)
	return r.transport.Start()
}

// Stop gracefully shuts down the relay
func (r *Relay) Stop() {
	r.loop.Stop()
}

func (r *Relay) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		log.Printf("[relay] client connected: %s", client.Id())
		r.Connect(client)
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		if err != nil {
			log.Printf("[relay] client %s disconnected with error: %v", client.Id(), err)
		} else {
			log.Printf("[relay] client %s disconnected", client.Id())
		}
		r.Disconnect(client)
	})

	router.On(func(client *router.NetworkClient, msg messages.JoinRequest) {
		r.Join(client, msg)
	})

	router.On(func(client *router.NetworkClient, msg messages.AbilitySync) {
		r.AbilitySync(client, msg)
	})

	router.On(func(client *router.NetworkClient, msg messages.CharacterState) {
		r.CharacterState(client, msg)
	})

	router.On(func(client *router.NetworkClient, _ messages.ResyncRequest) {
		r.Resync(client)
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		log.Printf("[relay] client error: %v", err)
	})
}

func (r *Relay) enqueue(fn func()) {
	r.cmdMu.Lock()
	r.commands = append(r.commands, fn)
	r.cmdMu.Unlock()
}

// ProcessCommands runs every queued client message on the caller's
// goroutine, in arrival order.
func (r *Relay) ProcessCommands() {
	r.cmdMu.Lock()
	cmds := r.commands
	r.commands = nil
	r.cmdMu.Unlock()

	for _, fn := range cmds {
		fn()
	}
}

func (r *Relay) Connect(s Sender) {
	r.enqueue(func() {
		r.mu.Lock()
		r.peers[s] = &peer{}
		r.mu.Unlock()
	})
}

func (r *Relay) Join(s Sender, msg messages.JoinRequest) {
	r.enqueue(func() { r.join(s, msg) })
}

func (r *Relay) AbilitySync(s Sender, msg messages.AbilitySync) {
	r.enqueue(func() { r.abilitySync(s, msg) })
}

func (r *Relay) CharacterState(s Sender, msg messages.CharacterState) {
	r.enqueue(func() { r.characterState(s, msg) })
}

func (r *Relay) Resync(s Sender) {
	r.enqueue(func() { r.sendFullState(s) })
}

func (r *Relay) Disconnect(s Sender) {
	r.enqueue(func() { r.disconnect(s) })
}

func (r *Relay) peer(s Sender) (*peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.peers[s]
	return p, ok
}

func (r *Relay) join(s Sender, msg messages.JoinRequest) {
	p, ok := r.peer(s)
	if !ok || p.joined {
		return
	}
	if reason := r.checkJoin(msg); reason != "" {
		log.Printf("[relay] rejecting %q: %s", msg.PlayerName, reason)
		r.send(s, messages.JoinRejected{Reason: reason})
		return
	}

	chars, err := r.reg.NewCollection(mirrorBody{})
	if err != nil {
		log.Printf("[relay] characters for %q: %v", msg.PlayerName, err)
		r.send(s, messages.JoinRejected{Reason: "relay could not build characters"})
		return
	}

	entity := r.world.Create(netcomponents.NetCharacter)
	entry := r.world.Entry(entity)
	netcomponents.NetCharacter.SetValue(entry, netcomponents.NetCharacterData{ModIndex: -1, Facing: 1})
	if err := srvsync.NetworkSync(r.world, &entity, netcomponents.NetCharacter); err != nil {
		log.Printf("[relay] failed to set up network sync for %q: %v", msg.PlayerName, err)
		r.world.Remove(entity)
		r.send(s, messages.JoinRejected{Reason: "relay sync failed"})
		return
	}
	id := esync.GetNetworkId(r.world.Entry(entity))
	if id == nil {
		r.world.Remove(entity)
		r.send(s, messages.JoinRejected{Reason: "relay sync failed"})
		return
	}

	r.mu.Lock()
	p.name = msg.PlayerName
	p.joined = true
	p.entity = entity
	p.id = *id
	p.chars = chars
	r.order = append(r.order, s)
	r.mu.Unlock()

	log.Printf("[relay] %q joined as %d", msg.PlayerName, p.id)
	r.send(s, messages.JoinAccepted{
		NetworkID:  p.id,
		ServerName: r.name,
		TickRate:   r.loop.tickRate,
	})
	if cfg.Net.FullResyncOnJoin {
		r.sendFullState(s)
	}
}

func (r *Relay) checkJoin(msg messages.JoinRequest) string {
	if r.version != "" && msg.Version != r.version {
		return fmt.Sprintf("version mismatch: relay %s, client %s", r.version, msg.Version)
	}
	if !slices.Equal(msg.Mods, r.reg.Mods()) {
		return fmt.Sprintf("mod list mismatch: relay %v, client %v", r.reg.Mods(), msg.Mods)
	}
	return ""
}

func (r *Relay) abilitySync(s Sender, msg messages.AbilitySync) {
	p, ok := r.peer(s)
	if !ok || !p.joined {
		return
	}
	if msg.NetworkID != p.id {
		log.Printf("[relay] %q sent abilities for %d, owns %d", p.name, msg.NetworkID, p.id)
		return
	}
	if len(msg.Payload) > cfg.Net.MaxPayload {
		log.Printf("[relay] %q sent a %d byte delta, dropping", p.name, len(msg.Payload))
		return
	}

	// Received abilities are dirty again so the next broadcast carries them.
	if err := p.chars.ReadAbilityDelta(netcodec.NewReader(msg.Payload), true); err != nil {
		log.Printf("[relay] bad ability delta from %q: %v", p.name, err)
		r.send(s, messages.AbilityResend{})
	}
}

func (r *Relay) characterState(s Sender, msg messages.CharacterState) {
	p, ok := r.peer(s)
	if !ok || !p.joined || !r.world.Valid(p.entity) {
		return
	}
	state := components.CharacterStateData{
		Mod:      msg.Mod,
		Track:    msg.Track,
		Frame:    msg.Frame,
		Reversed: msg.Reversed,
		Rotation: msg.Rotation,
		Facing:   msg.Facing,
	}
	netcomponents.NetCharacter.SetValue(r.world.Entry(p.entity), systems.NetCharacterFromState(r.reg, state))
}

// sendFullState sends s a full ability snapshot of every other joined peer.
func (r *Relay) sendFullState(s Sender) {
	for _, other := range r.joinedPeers() {
		if other == s {
			continue
		}
		p, _ := r.peer(other)
		if msg, ok := r.encode(p, true); ok {
			r.send(s, msg)
		}
	}
}

// BroadcastDirty sends each peer's dirty abilities to every other peer and
// clears the dirty flags.
func (r *Relay) BroadcastDirty() {
	senders := r.joinedPeers()
	for _, from := range senders {
		p, _ := r.peer(from)
		if !p.chars.AbilitiesDirty() {
			continue
		}
		msg, ok := r.encode(p, false)
		p.chars.ClearAbilitiesDirty()
		if !ok {
			continue
		}
		for _, to := range senders {
			if to != from {
				r.send(to, msg)
			}
		}
	}
}

func (r *Relay) encode(p *peer, full bool) (messages.AbilitySync, bool) {
	w := netcodec.NewWriter()
	if err := p.chars.WriteAbilityDelta(w, full); err != nil {
		log.Printf("[relay] encode abilities of %q: %v", p.name, err)
		return messages.AbilitySync{}, false
	}
	return messages.AbilitySync{NetworkID: p.id, Full: full, Payload: w.Bytes()}, true
}

func (r *Relay) disconnect(s Sender) {
	r.mu.Lock()
	p, exists := r.peers[s]
	delete(r.peers, s)
	r.order = slices.DeleteFunc(r.order, func(o Sender) bool { return o == s })
	r.mu.Unlock()

	if !exists || !p.joined {
		return
	}
	if r.world.Valid(p.entity) {
		r.world.Remove(p.entity)
	}
	for _, to := range r.joinedPeers() {
		r.send(to, messages.EntityLeft{NetworkID: p.id})
	}
	log.Printf("[relay] %q left", p.name)
}

func (r *Relay) joinedPeers() []Sender {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

func (r *Relay) send(s Sender, msg any) {
	if err := s.SendMessage(msg); err != nil {
		log.Printf("[relay] send %T: %v", msg, err)
	}
}

// World returns the mirror world
func (r *Relay) World() donburi.World {
	return r.world
}

// PlayerCount returns the number of joined clients
func (r *Relay) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Characters returns the mirror collection of the client with id.
func (r *Relay) Characters(id esync.NetworkId) (*character.Collection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.order {
		if p := r.peers[s]; p.id == id {
			return p.chars, true
		}
	}
	return nil, false
}

// mirrorBody stands in for a client's entity. Mirrors never tick, so only
// the ability gate reads it.
type mirrorBody struct{}

func (mirrorBody) Direction() int        { return 1 }
func (mirrorBody) GravityDirection() int { return 1 }
func (mirrorBody) Alive() bool           { return true }
func (mirrorBody) Incapacitated() bool   { return false }
