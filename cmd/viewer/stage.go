package main

import (
	"github.com/solarlune/resolv"
)

const (
	stageGravity      = 0.5
	stageJumpSpeed    = 7.0
	stageMaxFallSpeed = 8.0
	stageGlideFall    = 1.0

	stageCell  = 16
	bodyWidth  = 16
	bodyHeight = 24

	tagSolid = "solid"
	tagBody  = "body"
)

// Stage gives the local character a floor to jump from and land on. Only
// vertical motion is simulated; the viewer keeps the character centered.
type Stage struct {
	space  *resolv.Space
	body   *resolv.Object
	floorY float64

	speedY   float64
	onGround bool
}

func NewStage(width, height int, floorY float64) *Stage {
	space := resolv.NewSpace(width, height, stageCell, stageCell)

	floor := resolv.NewObject(0, floorY, float64(width), float64(height)-floorY, tagSolid)
	floor.SetShape(resolv.NewRectangle(0, 0, float64(width), float64(height)-floorY))
	space.Add(floor)

	body := resolv.NewObject(float64(width)/2-bodyWidth/2, floorY-bodyHeight, bodyWidth, bodyHeight, tagBody)
	body.SetShape(resolv.NewRectangle(0, 0, bodyWidth, bodyHeight))
	space.Add(body)

	return &Stage{
		space:    space,
		body:     body,
		floorY:   floorY,
		onGround: true,
	}
}

// Step advances one tick. jump replaces the vertical speed with an upward
// impulse; glide caps the fall speed.
func (s *Stage) Step(jump, glide bool) {
	if jump {
		s.speedY = -stageJumpSpeed
	}
	s.speedY += stageGravity
	maxFall := stageMaxFallSpeed
	if glide {
		maxFall = stageGlideFall
	}
	if s.speedY > maxFall {
		s.speedY = maxFall
	}

	dy := s.speedY
	checkDist := dy
	if dy >= 0 {
		checkDist++
	}
	if check := s.body.Check(0, checkDist, tagSolid); check != nil {
		if solids := check.ObjectsByTags(tagSolid); len(solids) > 0 {
			contact := check.ContactWithObject(solids[0])
			s.body.Y += contact.Y()
			s.body.Update()
			s.speedY = 0
			s.onGround = dy >= 0
			return
		}
	}

	s.onGround = false
	s.body.Y += dy
	s.body.Update()
}

func (s *Stage) OnGround() bool {
	return s.onGround
}

// Lift is the distance between the character's feet and the floor.
func (s *Stage) Lift() float64 {
	return s.floorY - (s.body.Y + s.body.H)
}
