package systems

import (
	"encoding/json"
	"log"

	"github.com/automoto/animlib/abilities"
	"github.com/automoto/animlib/components"
	cfg "github.com/automoto/animlib/config"
	"github.com/quasilyte/gdata"
	"github.com/yohamta/donburi"
)

// SaveStore is the part of *gdata.Manager used for ability saves.
type SaveStore interface {
	LoadItem(itemKey string) ([]byte, error)
	SaveItem(itemKey string, data []byte) error
}

var saveStore SaveStore

// InitPersistence opens the gdata store for ability saves.
func InitPersistence() error {
	m, err := gdata.Open(gdata.Config{
		AppName: cfg.Persistence.AppName,
	})
	if err != nil {
		log.Printf("Warning: Could not initialize persistence: %v", err)
		return err
	}
	saveStore = m
	return nil
}

// UsePersistence replaces the store. A nil store disables saving.
func UsePersistence(s SaveStore) {
	saveStore = s
}

func saveKey(slot string) string {
	return cfg.Persistence.ItemPrefix + slot
}

// SaveCharacters writes the ability tree of every character on entry
// under slot.
func SaveCharacters(entry *donburi.Entry, slot string) error {
	if saveStore == nil {
		return nil
	}
	col := components.Characters.Get(entry).Collection
	if col == nil {
		return nil
	}

	data, err := json.Marshal(col.Save())
	if err != nil {
		log.Printf("Warning: Could not serialize abilities for %s: %v", slot, err)
		return err
	}
	if err := saveStore.SaveItem(saveKey(slot), data); err != nil {
		log.Printf("Warning: Could not save abilities for %s: %v", slot, err)
		return err
	}
	return nil
}

// LoadCharacters restores the ability tree saved under slot. It reports
// false when nothing was saved yet.
func LoadCharacters(entry *donburi.Entry, slot string) (bool, error) {
	if saveStore == nil {
		return false, nil
	}
	col := components.Characters.Get(entry).Collection
	if col == nil {
		return false, nil
	}

	data, err := saveStore.LoadItem(saveKey(slot))
	if err != nil {
		log.Printf("Warning: Could not load abilities for %s: %v", slot, err)
		return false, nil
	}
	if len(data) == 0 {
		return false, nil
	}

	var tag abilities.Tag
	if err := json.Unmarshal(data, &tag); err != nil {
		log.Printf("Warning: Could not parse saved abilities for %s: %v", slot, err)
		return false, err
	}
	if err := col.Load(tag); err != nil {
		log.Printf("Warning: Could not apply saved abilities for %s: %v", slot, err)
		return false, err
	}
	// Loaded levels are new to every peer.
	components.Characters.Get(entry).NeedsFull = true
	return true, nil
}

// ClearCharacters removes the save under slot.
func ClearCharacters(slot string) error {
	if saveStore == nil {
		return nil
	}
	if err := saveStore.SaveItem(saveKey(slot), nil); err != nil {
		log.Printf("Warning: Could not clear abilities for %s: %v", slot, err)
		return err
	}
	return nil
}

// HasSavedCharacters reports whether slot holds a save.
func HasSavedCharacters(slot string) bool {
	if saveStore == nil {
		return false
	}
	data, err := saveStore.LoadItem(saveKey(slot))
	return err == nil && len(data) > 0
}

// PersistenceReady reports whether a store is in use.
func PersistenceReady() bool {
	return saveStore != nil
}
