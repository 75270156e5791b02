package components

import (
	"github.com/automoto/animlib/config"
	"github.com/yohamta/donburi"
)

// BodyData is the part of an entity that characters read each tick.
type BodyData struct {
	Facing  int // -1 left, 1 right
	Gravity int // -1 flipped, 1 normal
	Dead    bool
	Stunned bool
	Moving  bool
}

var Body = donburi.NewComponentType[BodyData]()

// BodyView reads BodyData through its entry on every call, so it stays
// valid when donburi moves the component between archetypes.
type BodyView struct {
	entry *donburi.Entry
}

func NewBodyView(entry *donburi.Entry) BodyView {
	return BodyView{entry: entry}
}

func (v BodyView) body() *BodyData {
	if !v.entry.Valid() || !v.entry.HasComponent(Body) {
		return nil
	}
	return Body.Get(v.entry)
}

func (v BodyView) Direction() int {
	if b := v.body(); b != nil && b.Facing == config.DirectionLeft {
		return config.DirectionLeft
	}
	return config.DirectionRight
}

func (v BodyView) GravityDirection() int {
	if b := v.body(); b != nil && b.Gravity < 0 {
		return -1
	}
	return 1
}

func (v BodyView) Alive() bool {
	b := v.body()
	return b != nil && !b.Dead
}

func (v BodyView) Incapacitated() bool {
	b := v.body()
	return b != nil && b.Stunned
}

func (v BodyView) Moving() bool {
	b := v.body()
	return b != nil && b.Moving
}
