// Package config holds the process-wide defaults. Commands override them
// from flags before building anything.
package config

import (
	"time"

	"github.com/yohamta/donburi/ecs"
)

// AnimationConfig contains playback and loader settings
type AnimationConfig struct {
	// Ticks per second of the host update loop. Frame durations are in ticks.
	TicksPerSecond int

	// Frames whose Tiled duration is shorter than one tick still last one.
	MinFrameTicks int

	// Default easing length for rotation tweens (ticks)
	RotationTweenTicks int
}

// NetConfig contains ability sync settings shared by client and relay
type NetConfig struct {
	Port     int
	TickRate int

	// Ticks between ability deltas. 1 sends every tick something changed.
	SyncInterval int

	// Send a full ability snapshot to clients that join mid-session.
	FullResyncOnJoin bool

	// Upper bound on a single AbilitySync payload (bytes)
	MaxPayload int
}

// PersistenceConfig contains save-data settings
type PersistenceConfig struct {
	AppName    string
	ItemPrefix string
}

// AssetsConfig contains source file and texture settings
type AssetsConfig struct {
	SourcesDir string
	HotReload  bool

	// Events for the same file closer together than this are dropped.
	ReloadDebounce time.Duration
}

// ViewerConfig contains the track previewer's window settings
type ViewerConfig struct {
	Width  int
	Height int
	Scales []float64
	FloorY float64

	DefaultScaleIndex int
}

// NoticeConfig contains on-screen fault notice settings
type NoticeConfig struct {
	DisplayTicks int
	MaxQueued    int
}

// Global configuration instances
var Animation AnimationConfig
var Net NetConfig
var Persistence PersistenceConfig
var Assets AssetsConfig
var Viewer ViewerConfig
var Notice NoticeConfig

// Default is the only render layer.
const Default ecs.LayerID = 0

// Direction constants for entity facing
const (
	DirectionLeft  = -1
	DirectionRight = 1
)

func init() {
	Animation = AnimationConfig{
		TicksPerSecond:     60,
		MinFrameTicks:      1,
		RotationTweenTicks: 8,
	}

	Net = NetConfig{
		Port:             7474,
		TickRate:         20,
		SyncInterval:     1,
		FullResyncOnJoin: true,
		MaxPayload:       16 * 1024,
	}

	Persistence = PersistenceConfig{
		AppName:    "animlib",
		ItemPrefix: "abilities_",
	}

	Assets = AssetsConfig{
		SourcesDir:     "content",
		HotReload:      false,
		ReloadDebounce: 100 * time.Millisecond,
	}

	Viewer = ViewerConfig{
		Width:             640,
		Height:            360,
		Scales:            []float64{1, 2, 3, 4},
		FloorY:            192,
		DefaultScaleIndex: 1,
	}

	Notice = NoticeConfig{
		DisplayTicks: 180,
		MaxQueued:    8,
	}
}
