package main

import (
	"fmt"
	"image/color"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/automoto/animlib/abilities"
	"github.com/automoto/animlib/abilities/script"
	"github.com/automoto/animlib/assets"
	"github.com/automoto/animlib/components"
	cfg "github.com/automoto/animlib/config"
	"github.com/automoto/animlib/content/sample"
	"github.com/automoto/animlib/fonts"
	"github.com/automoto/animlib/network"
	"github.com/automoto/animlib/registry"
	"github.com/automoto/animlib/render"
	"github.com/automoto/animlib/systems"
	"github.com/automoto/animlib/systems/factory"
	"github.com/automoto/animlib/tags"
	"github.com/automoto/animlib/ui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

const remoteSpacing = 40

// ViewerScene plays the sample content on one local entity, and on the
// mirrors of other viewers when connected to a relay.
type ViewerScene struct {
	opts Options
	once sync.Once

	ecsWorld *ecs.ECS
	reg      *registry.Registry
	loader   *render.TextureLoader
	watcher  *assets.Watcher
	client   *network.Client

	local *donburi.Entry
	input InputState
	panel *ui.AbilityPanel
	stage *Stage

	wasJumping bool
}

func NewViewerScene(opts Options) *ViewerScene {
	return &ViewerScene{opts: opts}
}

func (vs *ViewerScene) Update() error {
	var err error
	vs.once.Do(func() { err = vs.configure() })
	if err != nil {
		return err
	}

	if vs.client != nil {
		if snap := vs.client.LatestSnapshot(); snap != nil {
			systems.ApplySnapshot(vs.ecsWorld, vs.reg, *snap, vs.client.NetworkID())
		}
	}
	vs.ecsWorld.Update()
	vs.updatePanel()
	return nil
}

func (vs *ViewerScene) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0x20, G: 0x20, B: 0x28, A: 0xff})
	if vs.ecsWorld == nil {
		return
	}
	vs.ecsWorld.Draw(screen)
	vs.panel.Draw(screen)
}

func (vs *ViewerScene) configure() error {
	fsys, root := fs.FS(sample.FS), ""
	if vs.opts.Dir != "" {
		fsys, root = os.DirFS(vs.opts.Dir), vs.opts.Dir
	}
	vs.loader = render.NewTextureLoader(fsys)
	if err := fonts.LoadDefaults(); err != nil {
		return err
	}
	vs.panel = ui.NewAbilityPanel()

	mods, err := sample.ModsFrom(fsys)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	vs.reg = registry.New(vs.loader)
	for _, m := range mods {
		if err := vs.reg.Register(m); err != nil {
			return err
		}
	}
	if err := vs.reg.Load(); err != nil {
		return err
	}

	vs.ecsWorld = ecs.NewECS(donburi.NewWorld())
	vs.local, err = factory.CreateLocalCharacter(vs.ecsWorld, vs.reg, components.BodyData{
		Facing:  cfg.DirectionRight,
		Gravity: 1,
	})
	if err != nil {
		return err
	}

	if vs.opts.Persist {
		if err := systems.InitPersistence(); err == nil {
			if ok, _ := systems.LoadCharacters(vs.local, vs.opts.Slot); ok {
				log.Printf("[viewer] loaded abilities from slot %q", vs.opts.Slot)
			}
		}
	}

	vs.ecsWorld.AddSystem(vs.updateControls)
	vs.ecsWorld.AddSystem(systems.UpdateCharacters)
	vs.stage = NewStage(cfg.Viewer.Width, cfg.Viewer.Height, cfg.Viewer.FloorY)
	vs.ecsWorld.AddSystem(vs.updateStage)

	if root != "" && cfg.Assets.HotReload {
		w, err := assets.NewWatcher(filepath.Join(root, "assets"))
		if err != nil {
			log.Printf("[viewer] hot reload disabled: %v", err)
		} else {
			vs.watcher = w
			go func() {
				for err := range w.Errors {
					log.Printf("[assets] watch error: %v", err)
				}
			}()
			vs.ecsWorld.AddSystem(systems.NewHotReloadSystem(w.Events, root, fsys, vs.reg, vs.loader))
		}
	}

	if vs.opts.Connect != "" {
		vs.client = network.NewClient()
		vs.client.Connect(vs.opts.Connect, vs.opts.Version, vs.opts.Name, vs.reg.Mods())
		vs.ecsWorld.AddSystem(systems.NewNetSyncSystem(vs.client, vs.reg))
		vs.ecsWorld.AddSystem(systems.UpdateRemoteCharacters)
	}

	vs.ecsWorld.AddSystem(systems.UpdateNotices)
	vs.ecsWorld.AddRenderer(cfg.Default, vs.drawCharacters)
	vs.ecsWorld.AddRenderer(cfg.Default, vs.drawHUD)
	return nil
}

// Close releases the watcher, the relay connection and the registry.
func (vs *ViewerScene) Close() {
	if vs.watcher != nil {
		_ = vs.watcher.Close()
	}
	if vs.client != nil {
		vs.client.Disconnect()
	}
	if vs.reg != nil {
		vs.reg.Close()
	}
}

func (vs *ViewerScene) updateControls(e *ecs.ECS) {
	vs.input.Poll()
	if !vs.local.Valid() {
		return
	}

	body := components.Body.Get(vs.local)
	left, right := vs.input.Action(ActionMoveLeft).Pressed, vs.input.Action(ActionMoveRight).Pressed
	body.Moving = left != right
	if left && !right {
		body.Facing = cfg.DirectionLeft
	} else if right && !left {
		body.Facing = cfg.DirectionRight
	}
	if vs.input.Action(ActionDie).JustPressed {
		body.Dead = !body.Dead
	}

	col := components.Characters.Get(vs.local).Collection
	if vs.input.Action(ActionGhost).JustPressed {
		if active := col.Active(); active != nil && active.Mod == sample.ModGhost {
			_ = col.Disable(sample.ModGhost)
		} else if _, err := col.Enable(sample.ModGhost); err != nil {
			systems.PostNotice(e, err.Error())
		}
	}

	if hero, ok := col.Get(sample.ModHero); ok && hero.Abilities != nil {
		trigger := func(id int, action ActionID) {
			a, ok := hero.Abilities.Get(id)
			if !ok || !vs.input.Action(action).JustPressed {
				return
			}
			if t, ok := a.Behavior().(sample.Triggerable); ok {
				t.Trigger()
			}
		}
		trigger(sample.DashID, ActionDash)
		trigger(sample.DoubleJumpID, ActionJump)

		if a, ok := hero.Abilities.Get(sample.GlideID); ok {
			if s, ok := script.AsScript(a.Behavior()); ok {
				_ = s.SetData("held", vs.input.Action(ActionGlide).Pressed)
			}
		}

		if vs.input.Action(ActionLevelUp).JustPressed {
			for _, a := range hero.Abilities.Abilities() {
				if a.Levelable() {
					a.SetLevel((a.Level() + 1) % (a.MaxLevel() + 1))
				}
			}
		}
	}

	if vs.input.Action(ActionSave).JustPressed {
		if err := systems.SaveCharacters(vs.local, vs.opts.Slot); err == nil && systems.PersistenceReady() {
			systems.PostNotice(e, "saved abilities")
		}
	}
	if vs.input.Action(ActionLoad).JustPressed {
		if ok, _ := systems.LoadCharacters(vs.local, vs.opts.Slot); ok {
			systems.PostNotice(e, "loaded abilities")
		}
	}
	if vs.input.Action(ActionZoom).JustPressed {
		vs.opts.ScaleIndex = (vs.opts.ScaleIndex + 1) % len(cfg.Viewer.Scales)
		applyWindowSize(vs.opts.ScaleIndex)
	}
}

// updateStage moves the local character on the stage from its hero
// abilities and tells the glide script whether it is standing.
func (vs *ViewerScene) updateStage(e *ecs.ECS) {
	if !vs.local.Valid() {
		return
	}
	jumping, gliding := false, false
	col := components.Characters.Get(vs.local).Collection
	if hero, ok := col.Get(sample.ModHero); ok && hero.Abilities != nil {
		if a, ok := hero.Abilities.Get(sample.DoubleJumpID); ok {
			jumping = a.State() == abilities.Active
		}
		if a, ok := hero.Abilities.Get(sample.GlideID); ok {
			gliding = a.InUse()
			if s, ok := script.AsScript(a.Behavior()); ok {
				_ = s.SetData("on_ground", vs.stage.OnGround())
			}
		}
	}
	vs.stage.Step(jumping && !vs.wasJumping, gliding)
	vs.wasJumping = jumping
}

func (vs *ViewerScene) drawCharacters(e *ecs.ECS, screen *ebiten.Image) {
	cam := render.Camera{Scale: 1}
	cx, cy := float64(cfg.Viewer.Width)/2, float64(cfg.Viewer.Height)/2

	if vs.local.Valid() {
		if active := components.Characters.Get(vs.local).Collection.Active(); active != nil {
			y := cfg.Viewer.FloorY - bodyHeight/2 - vs.stage.Lift()
			vs.loader.DrawController(screen, active.Controller, cx, y, cam)
		}
	}

	i := 0
	tags.RemoteCharacter.Each(e.World, func(entry *donburi.Entry) {
		i++
		active := components.Characters.Get(entry).Collection.Active()
		if active == nil {
			return
		}
		x := cx + float64(i)*remoteSpacing*float64(1-2*(i%2))
		vs.loader.DrawController(screen, active.Controller, x, cy+remoteSpacing, cam)
	})
}

func (vs *ViewerScene) updatePanel() {
	if !vs.local.Valid() {
		vs.panel.SetCharacter("", nil)
	} else {
		col := components.Characters.Get(vs.local).Collection
		if hero, ok := col.Get(sample.ModHero); ok && hero.Abilities != nil {
			vs.panel.SetCharacter(sample.ModHero, hero.Abilities.Abilities())
		} else {
			vs.panel.SetCharacter(sample.ModHero, nil)
		}
	}

	status := ""
	if vs.client != nil {
		status = fmt.Sprintf("net: state=%d id=%d", vs.client.State(), vs.client.NetworkID())
		if err := vs.client.LastError(); err != nil {
			status = fmt.Sprintf("net: %v", err)
		}
	}
	vs.panel.SetStatus(status)
	vs.panel.Update()
}

func (vs *ViewerScene) drawHUD(e *ecs.ECS, screen *ebiten.Image) {
	if vs.local.Valid() {
		state := systems.CurrentCharacterState(vs.local)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s  track=%s frame=%d rot=%.2f", state.Mod, state.Track, state.Frame, state.Rotation), 4, 4)
	}
	if msg := systems.ActiveNotice(e); msg != "" {
		ebitenutil.DebugPrintAt(screen, msg, 4, cfg.Viewer.Height-20)
	}
}
