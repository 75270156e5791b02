package core

import (
	"log"
	"time"

	"github.com/leap-fish/necs/esync/srvsync"
)

type GameLoop struct {
	relay    *Relay
	tickRate int
	running  bool
	stopChan chan struct{}
}

func NewGameLoop(relay *Relay, tickRate int) *GameLoop {
	return &GameLoop{
		relay:    relay,
		tickRate: tickRate,
		stopChan: make(chan struct{}),
	}
}

func (g *GameLoop) Run() {
	g.running = true
	ticker := time.NewTicker(time.Second / time.Duration(g.tickRate))
	defer ticker.Stop()

	log.Printf("[relay] loop started at %d ticks/second", g.tickRate)

	for {
		select {
		case <-g.stopChan:
			g.running = false
			log.Println("[relay] loop stopped")
			return
		case <-ticker.C:
			g.tick()
		}
	}
}

func (g *GameLoop) Stop() {
	close(g.stopChan)
}

func (g *GameLoop) tick() {
	g.relay.ProcessCommands()
	g.relay.BroadcastDirty()

	if err := srvsync.DoSync(); err != nil {
		log.Printf("[relay] sync error: %v", err)
	}
}
