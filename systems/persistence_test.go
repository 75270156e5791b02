package systems_test

import (
	"testing"

	"github.com/automoto/animlib/components"
	cfg "github.com/automoto/animlib/config"
	"github.com/automoto/animlib/content/sample"
	"github.com/automoto/animlib/systems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore map[string][]byte

func (s memStore) LoadItem(key string) ([]byte, error) {
	return s[key], nil
}

func (s memStore) SaveItem(key string, data []byte) error {
	s[key] = data
	return nil
}

func usePersistence(t *testing.T) memStore {
	t.Helper()
	store := memStore{}
	systems.UsePersistence(store)
	t.Cleanup(func() { systems.UsePersistence(nil) })
	return store
}

func TestPersistenceDisabled(t *testing.T) {
	e := newECS()
	entry := spawnLocal(t, e, newRegistry(t))

	assert.False(t, systems.PersistenceReady())
	assert.NoError(t, systems.SaveCharacters(entry, "slot"))
	ok, err := systems.LoadCharacters(entry, "slot")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, systems.HasSavedCharacters("slot"))
}

func TestSaveAndLoadCharacters(t *testing.T) {
	store := usePersistence(t)
	reg := newRegistry(t)
	e := newECS()

	saved := spawnLocal(t, e, reg)
	heroAbility(t, saved, sample.DashID).SetLevel(3)
	require.NoError(t, systems.SaveCharacters(saved, "one"))
	assert.Contains(t, store, cfg.Persistence.ItemPrefix+"one")
	assert.True(t, systems.HasSavedCharacters("one"))
	assert.False(t, systems.HasSavedCharacters("two"))

	loaded := spawnLocal(t, e, reg)
	components.Characters.Get(loaded).NeedsFull = false
	ok, err := systems.LoadCharacters(loaded, "one")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, heroAbility(t, loaded, sample.DashID).Level())
	assert.True(t, components.Characters.Get(loaded).NeedsFull, "loaded levels go out in full")

	ok, err = systems.LoadCharacters(loaded, "two")
	assert.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, systems.ClearCharacters("one"))
	assert.False(t, systems.HasSavedCharacters("one"))
}

func TestLoadCharactersRejectsCorruptSaves(t *testing.T) {
	store := usePersistence(t)
	entry := spawnLocal(t, newECS(), newRegistry(t))

	store[cfg.Persistence.ItemPrefix+"bad"] = []byte("{not json")
	ok, err := systems.LoadCharacters(entry, "bad")
	assert.Error(t, err)
	assert.False(t, ok)

	store[cfg.Persistence.ItemPrefix+"wrong"] = []byte(`{"hero": 3}`)
	ok, err = systems.LoadCharacters(entry, "wrong")
	assert.Error(t, err)
	assert.False(t, ok)
}
