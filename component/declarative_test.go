package component

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/addonsmith/schema"
)

const glowPlugin = `
name: glow
description: Emits light
properties:
  - name: level
    type: int
    range: [0, 15]
    default: 7
  - name: tint
    type: list<float>
    arity: 3
output:
  minecraft:light_emission: "${level}"
  minecraft:color:
    rgb: "${tint}"
    label: "level ${level}"
`

func TestParsePlugin(t *testing.T) {
	def, err := ParsePlugin([]byte(glowPlugin))
	require.NoError(t, err)
	assert.Equal(t, "glow", def.Name())
	assert.Equal(t, 2, def.Schema().Len())

	props, err := schema.Validate("glow", def.Schema(), map[string]any{"tint": []any{1, 0.5, 0}})
	require.NoError(t, err)

	frag, err := def.Expand(props)
	require.NoError(t, err)

	assert.Equal(t, 7, frag["minecraft:light_emission"])
	color := frag["minecraft:color"].(map[string]any)
	assert.Equal(t, []any{1.0, 0.5, 0.0}, color["rgb"])
	assert.Equal(t, "level 7", color["label"])
}

func TestParsePlugin_ExpandDoesNotAliasProperties(t *testing.T) {
	def, err := ParsePlugin([]byte(glowPlugin))
	require.NoError(t, err)

	props, err := schema.Validate("glow", def.Schema(), map[string]any{"tint": []any{1.0, 1.0, 1.0}})
	require.NoError(t, err)

	frag, err := def.Expand(props)
	require.NoError(t, err)
	frag["minecraft:color"].(map[string]any)["rgb"].([]any)[0] = 0.0

	assert.Equal(t, 1.0, props["tint"].([]any)[0])

	again, err := def.Expand(props)
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 1.0, 1.0}, again["minecraft:color"].(map[string]any)["rgb"])
}

func TestParsePlugin_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "name: [unterminated"},
		{"no name", "output: {a: 1}"},
		{"no output", "name: x\nproperties: []"},
		{"bad type", "name: x\nproperties: [{name: p, type: dict}]\noutput: {a: 1}"},
		{"bad range", "name: x\nproperties: [{name: p, type: int, range: [1]}]\noutput: {a: 1}"},
		{"range on string", "name: x\nproperties: [{name: p, type: string, range: [0, 1]}]\noutput: {a: 1}"},
		{"undeclared placeholder", "name: x\noutput: {a: \"${ghost}\"}"},
		{"non-string output key", "name: x\noutput:\n  minecraft:a:\n    1: one\n"},
		{"non-string key in list", "name: x\noutput:\n  minecraft:a:\n    - {true: on}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlugin([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestFSProvider_NonStringOutputKeyIsMalformed(t *testing.T) {
	fsys := fstest.MapFS{
		"levels.yaml": {Data: []byte("name: levels\noutput:\n  minecraft:levels:\n    1: low\n    2: high\n")},
	}

	err := NewRegistry("custom").Discover(NewFSProvider(fsys, "plugins"))
	require.Error(t, err)
	assert.True(t, schema.IsKind(err, schema.MalformedComponentPlugin))
	assert.ErrorContains(t, err, "non-string key")

	var se *schema.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "plugins/levels.yaml", se.Source)
}

func TestFSProvider_DiscoversInLexicalOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"b/glow.yaml":   {Data: []byte(glowPlugin)},
		"a/wings.yml":   {Data: []byte("name: wings\noutput:\n  minecraft:can_fly: {}\n")},
		"a/readme.md":   {Data: []byte("ignored")},
		"c/nested/x.md": {Data: []byte("ignored")},
	}

	r := NewRegistry("custom")
	err := r.Discover(NewFSProvider(fsys, "plugins"))
	require.NoError(t, err)
	assert.Equal(t, []string{"glow", "wings"}, r.Names())
}

func TestFSProvider_MalformedFileAbortsWithSource(t *testing.T) {
	fsys := fstest.MapFS{
		"1-ok.yaml":     {Data: []byte("name: ok\noutput:\n  minecraft:ok: {}\n")},
		"2-broken.yaml": {Data: []byte("name: broken\n")},
		"3-late.yaml":   {Data: []byte("name: late\noutput:\n  minecraft:late: {}\n")},
	}

	r := NewRegistry("custom")
	err := r.Discover(NewFSProvider(fsys, "plugins"))
	require.Error(t, err)

	var se *schema.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, schema.MalformedComponentPlugin, se.Kind)
	assert.Equal(t, "plugins/2-broken.yaml", se.Source)
	assert.Equal(t, []string{"ok"}, r.Names())
}
