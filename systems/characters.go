package systems

import (
	"errors"
	"fmt"
	"log"

	"github.com/automoto/animlib/character"
	"github.com/automoto/animlib/components"
	"github.com/automoto/animlib/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// UpdateCharacters ticks every local entity's characters. A fault is
// logged and shown as a notice; other entities still update this tick.
func UpdateCharacters(ecs *ecs.ECS) {
	updateCharacters(ecs, func(entry *donburi.Entry, err error) {
		for _, msg := range faultNotices(err) {
			PostNotice(ecs, msg)
		}
	})
}

// NewCharacterSystem is UpdateCharacters with a caller-supplied fault
// handler in place of notices.
func NewCharacterSystem(onFault func(entry *donburi.Entry, err error)) func(*ecs.ECS) {
	return func(ecs *ecs.ECS) {
		updateCharacters(ecs, onFault)
	}
}

func updateCharacters(ecs *ecs.ECS, onFault func(*donburi.Entry, error)) {
	tags.LocalCharacter.Each(ecs.World, func(entry *donburi.Entry) {
		if err := updateEntity(entry); err != nil {
			log.Printf("[character] entity %v: %v", entry.Entity(), err)
			if onFault != nil {
				onFault(entry, err)
			}
		}
	})
}

func updateEntity(entry *donburi.Entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	chars := components.Characters.Get(entry)
	if chars.Collection == nil {
		return nil
	}
	return chars.Collection.Update()
}

// faultNotices turns a joined update error into one line per failing mod.
func faultNotices(err error) []string {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	out := make([]string, 0, len(errs))
	for _, e := range errs {
		var hookErr *character.HookError
		if errors.As(e, &hookErr) {
			out = append(out, fmt.Sprintf("%s stopped working (%s)", hookErr.Mod, hookErr.Phase))
			continue
		}
		out = append(out, fmt.Sprintf("character update failed: %v", e))
	}
	return out
}
