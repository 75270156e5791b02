package character

import (
	"errors"
	"fmt"
	"slices"
)

// Collection holds every character attached to one entity. At most one is
// active; the ones it displaced are kept on a recency stack.
type Collection struct {
	entity Entity

	characters []*Character
	byMod      map[string]*Character

	active *Character
	stack  []*Character
}

func NewCollection(entity Entity) *Collection {
	return &Collection{
		entity: entity,
		byMod:  make(map[string]*Character),
	}
}

func (c *Collection) Entity() Entity {
	return c.entity
}

// Add attaches ch. Characters keep the order they were added in.
func (c *Collection) Add(ch *Character) error {
	if ch == nil || ch.Mod == "" {
		return fmt.Errorf("%w: character without a mod name", ErrUnknownCharacter)
	}
	if _, ok := c.byMod[ch.Mod]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateMod, ch.Mod)
	}
	ch.enabled = false
	c.characters = append(c.characters, ch)
	c.byMod[ch.Mod] = ch
	return nil
}

func (c *Collection) Get(mod string) (*Character, bool) {
	ch, ok := c.byMod[mod]
	return ch, ok
}

func (c *Collection) Characters() []*Character {
	return c.characters
}

// Active returns the character in control, or nil.
func (c *Collection) Active() *Character {
	return c.active
}

// CanEnable reports whether a character of priority p may take control.
func (c *Collection) CanEnable(p Priority) bool {
	if c.active == nil {
		return true
	}
	if c.active.Priority == PriorityLowest {
		return true
	}
	return p > c.active.Priority
}

// Enable gives control to mod if its priority allows it. The previously
// active character moves to the top of the recency stack.
func (c *Collection) Enable(mod string) (bool, error) {
	ch, ok := c.byMod[mod]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownCharacter, mod)
	}
	if ch == c.active {
		return true, nil
	}
	if !c.CanEnable(ch.Priority) {
		return false, nil
	}

	c.removeFromStack(ch)
	if prev := c.active; prev != nil {
		prev.enabled = false
		c.removeFromStack(prev)
		c.stack = append(c.stack, prev)
	}
	ch.enabled = true
	c.active = ch
	return true, nil
}

// Disable takes mod out of control. When it was active, the most recently
// displaced character takes over.
func (c *Collection) Disable(mod string) error {
	ch, ok := c.byMod[mod]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCharacter, mod)
	}
	if ch != c.active {
		c.removeFromStack(ch)
		return nil
	}

	ch.enabled = false
	c.active = nil
	if n := len(c.stack); n > 0 {
		next := c.stack[n-1]
		c.stack = c.stack[:n-1]
		next.enabled = true
		c.active = next
	}
	return nil
}

// Stack returns the recency stack, most recent last.
func (c *Collection) Stack() []*Character {
	return slices.Clone(c.stack)
}

func (c *Collection) removeFromStack(ch *Character) {
	c.stack = slices.DeleteFunc(c.stack, func(s *Character) bool { return s == ch })
}

// Update ticks every character's abilities, then the active character's
// controller. A fault in one character does not stop the others; all
// faults are joined into the returned error.
func (c *Collection) Update() error {
	var errs []error
	for _, ch := range c.characters {
		if ch.Abilities == nil {
			continue
		}
		if err := guard(ch.Mod, "abilities", ch.Abilities.Update); err != nil {
			errs = append(errs, err)
		}
	}
	if ch := c.active; ch != nil && ch.Controller != nil {
		if err := guard(ch.Mod, "animation", ch.Controller.Update); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
