// Package project scaffolds new add-on projects: a resource pack and a
// behavior pack with linked manifests.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/c360studio/addonsmith/storage"
)

// ErrExists is returned when the project directory is already present.
var ErrExists = errors.New("project already exists")

// BehaviorFolders are created inside every behavior pack.
var BehaviorFolders = []string{
	"animation_controllers", "animations", "biomes", "blocks", "entities", "features",
	"functions", "items", "loot_tables", "scripts", "structures", "trades",
}

// ResourceFolders are created inside every resource pack.
var ResourceFolders = []string{
	"animation_controllers", "animations", "entity", "items", "models/blocks", "models/entity",
	"particles", "render_controllers", "sounds/block", "sounds/entity", "sounds/misc", "sounds/player",
	"textures/blocks", "textures/entity", "textures/items",
}

// Options tune project creation.
type Options struct {
	// MinEngineVersion is written to both manifest headers. Defaults to 1.19.0.
	MinEngineVersion []int
	// Indent is the JSON indent width.
	Indent int
}

// Project describes a created project.
type Project struct {
	Name         string
	Dir          string
	ResourcePack string
	BehaviorPack string
	ResourceUUID string
	BehaviorUUID string
}

// Slug turns a display name into the pack directory prefix.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// Create scaffolds project name under root.
func Create(root, name string, opts Options) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("project name is required")
	}
	if len(opts.MinEngineVersion) == 0 {
		opts.MinEngineVersion = []int{1, 19, 0}
	}

	dir := filepath.Join(root, name)
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("%s: %w", dir, ErrExists)
	}

	p := &Project{
		Name:         name,
		Dir:          dir,
		ResourcePack: Slug(name) + "_RP",
		BehaviorPack: Slug(name) + "_BP",
		ResourceUUID: uuid.New().String(),
		BehaviorUUID: uuid.New().String(),
	}

	for _, f := range ResourceFolders {
		if err := os.MkdirAll(filepath.Join(dir, p.ResourcePack, filepath.FromSlash(f)), 0o755); err != nil {
			return nil, fmt.Errorf("create resource pack: %w", err)
		}
	}
	for _, f := range BehaviorFolders {
		if err := os.MkdirAll(filepath.Join(dir, p.BehaviorPack, f), 0o755); err != nil {
			return nil, fmt.Errorf("create behavior pack: %w", err)
		}
	}

	store := storage.NewStore(dir, opts.Indent)
	rp := func(parts ...string) string { return filepath.Join(append([]string{p.ResourcePack}, parts...)...) }
	files := []struct {
		path string
		v    any
	}{
		{rp("manifest.json"), p.resourceManifest(opts.MinEngineVersion)},
		{filepath.Join(p.BehaviorPack, "manifest.json"), p.behaviorManifest(opts.MinEngineVersion)},
		{rp("blocks.json"), map[string]any{"format_version": []int{1, 1, 0}}},
		{rp("sounds.json"), map[string]any{}},
		{rp("sounds", "sound_definitions.json"), map[string]any{"format_version": "1.14.0", "sound_definitions": map[string]any{}}},
		{rp("textures", "item_texture.json"), textureAtlas(name, "atlas.items")},
		{rp("textures", "terrain_texture.json"), textureAtlas(name, "atlas.terrain")},
		{rp("textures", "flipbook_textures.json"), []any{}},
	}
	for _, f := range files {
		if _, err := store.Save(f.path, f.v); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.path, err)
		}
	}
	return p, nil
}

func (p *Project) resourceManifest(minEngine []int) map[string]any {
	desc := "Resource pack for " + p.Name
	return manifest(p.Name+" RP", desc, p.ResourceUUID, "resources", minEngine, nil)
}

func (p *Project) behaviorManifest(minEngine []int) map[string]any {
	desc := "Behavior pack for " + p.Name
	deps := []any{map[string]any{"uuid": p.ResourceUUID, "version": []int{1, 0, 0}}}
	return manifest(p.Name+" BP", desc, p.BehaviorUUID, "data", minEngine, deps)
}

func manifest(name, desc, header, moduleType string, minEngine []int, deps []any) map[string]any {
	m := map[string]any{
		"format_version": 2,
		"header": map[string]any{
			"name":               name,
			"description":        desc,
			"uuid":               header,
			"version":            []int{1, 0, 0},
			"min_engine_version": minEngine,
		},
		"modules": []any{map[string]any{
			"type":        moduleType,
			"description": desc,
			"uuid":        uuid.New().String(),
			"version":     []int{1, 0, 0},
		}},
	}
	if deps != nil {
		m["dependencies"] = deps
	}
	return m
}

func textureAtlas(name, atlas string) map[string]any {
	return map[string]any{
		"resource_pack_name": name,
		"texture_name":       atlas,
		"texture_data":       map[string]any{},
	}
}
