package character

import (
	"fmt"

	"github.com/automoto/animlib/abilities"
	"github.com/automoto/animlib/shared/netcodec"
)

// WriteAbilityDelta appends the ability delta of every character with
// dirty abilities, or of all characters when full is set:
//
//	mod_count  bounded by the number of characters with abilities
//	mod        length-prefixed string, then the manager's delta
//
// Characters without abilities do not count toward the bound, so a
// headless peer that skips animation-only mods agrees on the width.
func (c *Collection) WriteAbilityDelta(w *netcodec.Writer, full bool) error {
	var mods []*Character
	for _, ch := range c.characters {
		if ch.Abilities == nil {
			continue
		}
		if full || ch.Abilities.NetDirty() {
			mods = append(mods, ch)
		}
	}
	if err := w.WriteBounded(len(mods), c.abilityCount()); err != nil {
		return fmt.Errorf("mod count: %w", err)
	}
	for _, ch := range mods {
		w.WriteString(ch.Mod)
		if err := ch.Abilities.WriteDelta(w, full); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collection) abilityCount() int {
	n := 0
	for _, ch := range c.characters {
		if ch.Abilities != nil {
			n++
		}
	}
	return n
}

// ReadAbilityDelta applies a delta from WriteAbilityDelta. An authority
// relaying to other peers passes markDirty so the received abilities go
// out again with its next delta. Nothing is applied unless the whole
// delta parses.
func (c *Collection) ReadAbilityDelta(r *netcodec.Reader, markDirty bool) error {
	var pending []*abilities.PendingDelta
	discard := func() {
		for i := len(pending) - 1; i >= 0; i-- {
			pending[i].Discard()
		}
	}

	count, err := r.ReadBounded(c.abilityCount())
	if err != nil {
		return fmt.Errorf("mod count: %w", err)
	}
	for i := 0; i < count; i++ {
		mod, err := r.ReadString()
		if err != nil {
			discard()
			return fmt.Errorf("mod name: %w", err)
		}
		ch, ok := c.byMod[mod]
		if !ok || ch.Abilities == nil {
			discard()
			return fmt.Errorf("%w: %q has no abilities here", ErrUnknownCharacter, mod)
		}
		d, err := ch.Abilities.DecodeDelta(r)
		if err != nil {
			discard()
			return err
		}
		pending = append(pending, d)
	}
	for _, d := range pending {
		d.Commit(markDirty)
	}
	return nil
}

func (c *Collection) AbilitiesDirty() bool {
	for _, ch := range c.characters {
		if ch.Abilities != nil && ch.Abilities.NetDirty() {
			return true
		}
	}
	return false
}

// ClearAbilitiesDirty is called once a delta has reached every peer.
func (c *Collection) ClearAbilitiesDirty() {
	for _, ch := range c.characters {
		if ch.Abilities != nil {
			ch.Abilities.ClearNetDirty()
		}
	}
}

// Save returns each character's ability save tree keyed by mod name.
func (c *Collection) Save() abilities.Tag {
	tag := abilities.Tag{}
	for _, ch := range c.characters {
		if ch.Abilities == nil {
			continue
		}
		if t := ch.Abilities.Save(); len(t) > 0 {
			tag[ch.Mod] = t
		}
	}
	return tag
}

// Load restores a tree produced by Save. Mods not attached here are
// skipped so saves survive a content pack being removed.
func (c *Collection) Load(tag abilities.Tag) error {
	for mod, raw := range tag {
		ch, ok := c.byMod[mod]
		if !ok || ch.Abilities == nil {
			continue
		}
		t, ok := raw.(abilities.Tag)
		if !ok {
			return fmt.Errorf("mod %q: save entry is %T, not a tag", mod, raw)
		}
		if err := ch.Abilities.Load(t); err != nil {
			return err
		}
	}
	return nil
}
