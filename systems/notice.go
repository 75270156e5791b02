package systems

import (
	"github.com/automoto/animlib/archetypes"
	"github.com/automoto/animlib/components"
	cfg "github.com/automoto/animlib/config"
	"github.com/yohamta/donburi/ecs"
)

// PostNotice queues a message for the player. Messages beyond
// cfg.Notice.MaxQueued are dropped.
func PostNotice(ecs *ecs.ECS, msg string) {
	state := getOrCreateNoticeState(ecs)
	if len(state.Queue) >= cfg.Notice.MaxQueued {
		return
	}
	if len(state.Queue) == 0 {
		state.DisplayTimer = cfg.Notice.DisplayTicks
	}
	state.Queue = append(state.Queue, msg)
}

// UpdateNotices counts down the displayed notice and moves to the next one.
func UpdateNotices(ecs *ecs.ECS) {
	state := getOrCreateNoticeState(ecs)
	if len(state.Queue) == 0 {
		return
	}

	state.DisplayTimer--
	if state.DisplayTimer > 0 {
		return
	}
	state.Queue = state.Queue[1:]
	if len(state.Queue) > 0 {
		state.DisplayTimer = cfg.Notice.DisplayTicks
	}
}

// ActiveNotice returns the notice currently on screen, or "".
func ActiveNotice(ecs *ecs.ECS) string {
	entry, ok := components.NoticeState.First(ecs.World)
	if !ok {
		return ""
	}
	return components.NoticeState.Get(entry).Active()
}

func getOrCreateNoticeState(ecs *ecs.ECS) *components.NoticeStateData {
	entry, ok := components.NoticeState.First(ecs.World)
	if !ok {
		entry = archetypes.Notice.Spawn(ecs)
	}
	return components.NoticeState.Get(entry)
}
