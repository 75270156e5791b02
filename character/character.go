// Package character bundles one content pack's animation controller and
// ability manager per entity, and arbitrates which pack is in control.
package character

import (
	"errors"
	"fmt"

	"github.com/automoto/animlib/abilities"
	"github.com/automoto/animlib/animation"
)

var (
	ErrUnknownCharacter = errors.New("unknown character")
	ErrDuplicateMod     = errors.New("character already added")
)

// Priority decides whether one character may take control from another.
type Priority uint8

const (
	// PriorityLowest is always preemptable.
	PriorityLowest Priority = iota
	PriorityDefault
	PriorityHigh
	PriorityHighest
)

func (p Priority) String() string {
	switch p {
	case PriorityLowest:
		return "lowest"
	case PriorityDefault:
		return "default"
	case PriorityHigh:
		return "high"
	case PriorityHighest:
		return "highest"
	default:
		return fmt.Sprintf("Priority(%d)", uint8(p))
	}
}

// Entity is everything the core reads from a host entity.
type Entity interface {
	animation.Entity
	abilities.Entity
}

// Character is one mod's presence on one entity. Either Controller or
// Abilities may be nil.
type Character struct {
	Mod        string
	Priority   Priority
	Controller *animation.Controller
	Abilities  *abilities.Manager

	enabled bool
}

func (c *Character) Enabled() bool {
	return c.enabled
}

// HookError is a fault raised by content code during a character update.
type HookError struct {
	Mod   string
	Phase string
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("character %q %s: %v", e.Mod, e.Phase, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// guard runs fn and turns a panic into a HookError.
func guard(mod, phase string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HookError{Mod: mod, Phase: phase, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err := fn(); err != nil {
		return &HookError{Mod: mod, Phase: phase, Err: err}
	}
	return nil
}
