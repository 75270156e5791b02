package abilities

import (
	"fmt"
	"math"
)

const (
	tagLevel = "level"
	tagExtra = "extra"
)

// Save returns the manager's save tree, keyed by ability name. Only
// levelable abilities and Persisters are written.
func (m *Manager) Save() Tag {
	tag := Tag{}
	for _, a := range m.abilities {
		p, persists := a.behavior.(Persister)
		if !a.Levelable() && !persists {
			continue
		}
		entry := Tag{}
		if a.Levelable() {
			entry[tagLevel] = a.level
		}
		if persists {
			if extra := p.SaveExtra(a); len(extra) > 0 {
				entry[tagExtra] = extra
			}
		}
		tag[a.name] = entry
	}
	return tag
}

// Load restores levels and Persister data from a tree produced by Save.
// Names that match no ability are ignored.
func (m *Manager) Load(tag Tag) error {
	for name, raw := range tag {
		a, ok := m.byName[name]
		if !ok {
			continue
		}
		entry, ok := raw.(Tag)
		if !ok {
			return fmt.Errorf("mod %q ability %q: save entry is %T, not a tag", m.mod, name, raw)
		}
		if lv, ok := entry[tagLevel]; ok && a.Levelable() {
			level, err := toInt(lv)
			if err != nil {
				return fmt.Errorf("mod %q ability %q level: %w", m.mod, name, err)
			}
			a.SetLevel(level)
		}
		if p, ok := a.behavior.(Persister); ok {
			extra, _ := entry[tagExtra].(Tag)
			if err := p.LoadExtra(a, extra); err != nil {
				return fmt.Errorf("mod %q ability %q extra: %w", m.mod, name, err)
			}
		}
	}
	return nil
}

// toInt accepts the numeric types a tree may hold after a JSON round trip.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("unexpected %T", v)
	}
}
