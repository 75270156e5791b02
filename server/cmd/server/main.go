package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	cfg "github.com/automoto/animlib/config"
	"github.com/automoto/animlib/content/sample"
	"github.com/automoto/animlib/registry"
	"github.com/automoto/animlib/server/core"
	"github.com/automoto/animlib/shared/protocol"
)

func main() {
	port := flag.Uint("port", uint(cfg.Net.Port), "Relay port")
	tickRate := flag.Int("tickrate", cfg.Net.TickRate, "Relay tick rate (updates per second)")
	name := flag.String("name", "animlib relay", "Relay display name")
	version := flag.String("version", "", "Required client version (empty = accept any)")
	maxPayload := flag.Int("maxpayload", cfg.Net.MaxPayload, "Largest ability delta accepted from a client (bytes)")
	flag.Parse()

	cfg.Net.Port = int(*port)
	cfg.Net.TickRate = *tickRate
	cfg.Net.MaxPayload = *maxPayload

	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("Failed to register components: %v", err)
	}

	// The relay never animates, so it loads content headless.
	reg := registry.New(nil)
	if err := sample.Register(reg); err != nil {
		log.Fatalf("Failed to register content: %v", err)
	}
	if err := reg.Load(); err != nil {
		log.Fatalf("Failed to load content: %v", err)
	}
	for _, mod := range reg.Mods() {
		log.Printf("[relay] mod %q: sources %v", mod, reg.SourceNames(mod))
	}

	relay := core.NewRelay(reg, *tickRate, *name, *version)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down relay...")
		relay.Stop()
		reg.Close()
		os.Exit(0)
	}()

	log.Printf("Starting relay %q on port %d (tick rate: %d/s, version: %s, mods: %v)",
		*name, *port, *tickRate, *version, reg.Mods())
	if err := relay.Start(*port); err != nil {
		log.Fatalf("Relay error: %v", err)
	}
}
