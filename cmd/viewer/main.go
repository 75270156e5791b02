// Command viewer previews the sample content pack: the hero's tracks and
// abilities, the ghost takeover, and other viewers joined to a relay.
package main

import (
	"flag"
	"log"

	cfg "github.com/automoto/animlib/config"
	"github.com/automoto/animlib/shared/protocol"
	"github.com/hajimehoshi/ebiten/v2"
)

// Options are the viewer's command-line settings.
type Options struct {
	Dir        string
	Connect    string
	Name       string
	Version    string
	Slot       string
	Persist    bool
	ScaleIndex int
}

type Game struct {
	scene *ViewerScene
}

func (g *Game) Update() error {
	return g.scene.Update()
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *Game) Layout(width, height int) (int, int) {
	return cfg.Viewer.Width, cfg.Viewer.Height
}

func applyWindowSize(scaleIndex int) {
	scale := cfg.Viewer.Scales[scaleIndex]
	ebiten.SetWindowSize(int(float64(cfg.Viewer.Width)*scale), int(float64(cfg.Viewer.Height)*scale))
}

func main() {
	var opts Options
	flag.StringVar(&opts.Dir, "dir", "", "Content directory to load and watch (empty = embedded sample)")
	flag.StringVar(&opts.Connect, "connect", "", "Relay address host:port (empty = offline)")
	flag.StringVar(&opts.Name, "name", "viewer", "Player name sent to the relay")
	flag.StringVar(&opts.Version, "version", "", "Client version sent to the relay")
	flag.StringVar(&opts.Slot, "slot", "default", "Save slot for ability levels")
	flag.BoolVar(&opts.Persist, "persist", false, "Load and save ability levels")
	hotReload := flag.Bool("hotreload", true, "Reload changed files under -dir")
	flag.Parse()

	cfg.Assets.HotReload = *hotReload
	opts.ScaleIndex = cfg.Viewer.DefaultScaleIndex

	if opts.Connect != "" {
		// Register network components for client-side deserialization
		if err := protocol.RegisterComponents(); err != nil {
			log.Fatalf("Failed to register network components: %v", err)
		}
	}

	applyWindowSize(opts.ScaleIndex)
	ebiten.SetWindowTitle("animlib viewer")

	scene := NewViewerScene(opts)
	defer scene.Close()
	if err := ebiten.RunGame(&Game{scene: scene}); err != nil {
		log.Fatal(err)
	}
}
