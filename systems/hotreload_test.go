package systems_test

import (
	"bytes"
	"image"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/automoto/animlib/animation"
	"github.com/automoto/animlib/assets"
	"github.com/automoto/animlib/character"
	"github.com/automoto/animlib/components"
	"github.com/automoto/animlib/registry"
	"github.com/automoto/animlib/systems"
	"github.com/automoto/animlib/systems/factory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blobYAML = `
name: blob
sprite_size: {x: 16, y: 16}
texture: blob.png
tracks:
  - name: idle
    frames: [{x: 0, y: 0, duration: 5}]
`

const blobWaveYAML = blobYAML + `  - name: wave
    frames: [{x: 1, y: 0, duration: 5}, {x: 1, y: 1, duration: 5}]
`

func blobPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 32, 32))))
	return buf.Bytes()
}

func TestHotReloadRebindsControllers(t *testing.T) {
	fsys := fstest.MapFS{
		"chars/blob.yaml": {Data: []byte(blobYAML)},
		"chars/blob.png":  {Data: blobPNG(t)},
	}
	spec, err := assets.LoadSourceSpec(fsys, "chars/blob.yaml")
	require.NoError(t, err)

	resolver := assets.NewImageResolver(fsys)
	reg := registry.New(resolver)
	require.NoError(t, reg.Register(&registry.Mod{
		Name:     "blob",
		Priority: character.PriorityDefault,
		Sources:  []animation.SourceSpec{spec},
	}))
	require.NoError(t, reg.Load())
	t.Cleanup(reg.Close)

	e := newECS()
	entry, err := factory.CreateLocalCharacter(e, reg, components.BodyData{Facing: 1, Gravity: 1})
	require.NoError(t, err)
	ctrl := collection(entry).Active().Controller

	events := make(chan string, 4)
	reload := systems.NewHotReloadSystem(events, "/content", fsys, reg, resolver)

	reload(e)
	before, _ := reg.MainSource("blob")
	assert.Same(t, before, ctrl.MainAnimation().Source(), "no events, no reload")

	fsys["chars/blob.yaml"] = &fstest.MapFile{Data: []byte(blobWaveYAML)}
	events <- "/content/chars/blob.yaml"
	events <- "/elsewhere/blob.yaml"
	reload(e)
	after, _ := reg.MainSource("blob")
	assert.NotSame(t, before, after)
	assert.Same(t, after, ctrl.MainAnimation().Source())
	require.NoError(t, ctrl.PlayTrack("wave"))

	fsys["chars/blob.yaml"] = &fstest.MapFile{Data: []byte("name: [")}
	events <- "/content/chars/blob.yaml"
	reload(e)
	kept, _ := reg.MainSource("blob")
	assert.Same(t, after, kept, "a broken file keeps the last good source")

	events <- "/content/chars/blob.png"
	reload(e)
	retextured, _ := reg.MainSource("blob")
	assert.NotSame(t, after, retextured)
	assert.True(t, retextured.HasTrack("wave"), "texture reloads reuse the latest spec")
	assert.Same(t, retextured, ctrl.MainAnimation().Source())
}
