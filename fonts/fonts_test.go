package fonts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	require.NoError(t, LoadDefaults())
	for _, name := range []FontName{Regular, Title, Small, Mono} {
		assert.True(t, Loaded(name), name)
		assert.NotNil(t, name.Get())
	}
	assert.Greater(t, Title.Get().Metrics().Height, Small.Get().Metrics().Height)
}

func TestMissingFont(t *testing.T) {
	assert.False(t, Loaded("nope"))
	assert.Panics(t, func() { FontName("nope").Get() })
	assert.Error(t, LoadFont("broken", []byte("not a font")))
	assert.False(t, Loaded("broken"))
}
