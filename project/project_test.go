package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/addonsmith/storage"
)

func TestCreate(t *testing.T) {
	root := t.TempDir()

	p, err := Create(root, "Frog Park", Options{})
	require.NoError(t, err)
	assert.Equal(t, "frog_park_RP", p.ResourcePack)
	assert.Equal(t, "frog_park_BP", p.BehaviorPack)

	for _, f := range BehaviorFolders {
		assert.DirExists(t, filepath.Join(p.Dir, p.BehaviorPack, f))
	}
	assert.DirExists(t, filepath.Join(p.Dir, p.ResourcePack, "textures", "entity"))
	assert.FileExists(t, filepath.Join(p.Dir, p.ResourcePack, "sounds", "sound_definitions.json"))
	assert.FileExists(t, filepath.Join(p.Dir, p.ResourcePack, "textures", "flipbook_textures.json"))

	store := storage.NewStore(p.Dir, 4)
	rp, err := store.Load(filepath.Join(p.ResourcePack, "manifest.json"))
	require.NoError(t, err)
	bp, err := store.Load(filepath.Join(p.BehaviorPack, "manifest.json"))
	require.NoError(t, err)

	rpHeader := rp["header"].(map[string]any)
	assert.Equal(t, "Frog Park RP", rpHeader["name"])
	assert.Equal(t, p.ResourceUUID, rpHeader["uuid"])
	_, err = uuid.Parse(rpHeader["uuid"].(string))
	assert.NoError(t, err)

	bpHeader := bp["header"].(map[string]any)
	assert.Equal(t, p.BehaviorUUID, bpHeader["uuid"])
	assert.NotEqual(t, rpHeader["uuid"], bpHeader["uuid"])

	deps := bp["dependencies"].([]any)
	require.Len(t, deps, 1)
	assert.Equal(t, p.ResourceUUID, deps[0].(map[string]any)["uuid"])
	assert.NotContains(t, rp, "dependencies")

	bpModule := bp["modules"].([]any)[0].(map[string]any)
	assert.Equal(t, "data", bpModule["type"])
	assert.NotEqual(t, bpHeader["uuid"], bpModule["uuid"])

	terrain, err := store.Load(filepath.Join(p.ResourcePack, "textures", "terrain_texture.json"))
	require.NoError(t, err)
	assert.Equal(t, "Frog Park", terrain["resource_pack_name"])
}

func TestCreate_Errors(t *testing.T) {
	root := t.TempDir()

	_, err := Create(root, "  ", Options{})
	assert.Error(t, err)

	require.NoError(t, os.Mkdir(filepath.Join(root, "taken"), 0o755))
	_, err = Create(root, "taken", Options{})
	assert.ErrorIs(t, err, ErrExists)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "my_cool_pack", Slug(" My Cool Pack "))
}
