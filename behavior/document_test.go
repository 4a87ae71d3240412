package behavior

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const carFile = `{
  "format_version": "1.19.0",
  "minecraft:entity": {
    "description": {"identifier": "test:car", "is_spawnable": true},
    "components": {"minecraft:health": {"value": 20}},
    "component_groups": {
      "driven": {"minecraft:rideable": {"seat_count": 1}}
    }
  }
}`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(carFile))
	require.NoError(t, err)

	assert.Equal(t, KindEntity, doc.Kind())
	assert.Equal(t, "entity", doc.Kind().Short())

	id, err := doc.Identifier()
	require.NoError(t, err)
	assert.Equal(t, "test:car", id)

	name, err := doc.Name()
	require.NoError(t, err)
	assert.Equal(t, "car", name)

	health := doc.Root()["components"].(map[string]any)["minecraft:health"].(map[string]any)
	assert.Equal(t, json.Number("20"), health["value"])
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`{"format_version": "1.19.0"}`))
	assert.ErrorIs(t, err, ErrNoAsset)

	_, err = Parse([]byte(`{not json`))
	assert.Error(t, err)

	doc, err := Parse([]byte(`{"minecraft:item": {"components": {}}}`))
	require.NoError(t, err)
	assert.Equal(t, KindItem, doc.Kind())
	_, err = doc.Identifier()
	assert.ErrorIs(t, err, ErrNoIdentifier)
}

func TestDocument_BytesRoundTrip(t *testing.T) {
	doc, err := Parse([]byte(`{"minecraft:block":{"description":{"identifier":"a:b"},"components":{"x":1.50,"y":"<&>"}}}`))
	require.NoError(t, err)

	out, err := doc.Bytes(2)
	require.NoError(t, err)
	assert.Equal(t, `{
  "minecraft:block": {
    "components": {
      "x": 1.50,
      "y": "<&>"
    },
    "description": {
      "identifier": "a:b"
    }
  }
}
`, string(out))
}

func TestDocument_LangEntries(t *testing.T) {
	doc, err := Parse([]byte(carFile))
	require.NoError(t, err)
	assert.True(t, doc.HasComponent("minecraft:rideable"))
	assert.Equal(t, []string{"action.hint.exit.test:car=Tap Sneak To Exit car"}, doc.LangEntries())

	plain, err := Parse([]byte(`{"minecraft:entity":{"description":{"identifier":"a:b"},"components":{}}}`))
	require.NoError(t, err)
	assert.Empty(t, plain.LangEntries())
}

func TestDocument_AddProperty(t *testing.T) {
	doc, err := Parse([]byte(carFile))
	require.NoError(t, err)

	require.NoError(t, doc.AddProperty(NewRangedProperty("custom", "color", []string{"red", "blue", "green"})))
	require.NoError(t, doc.AddProperty(NewEnumProperty("custom", "mode", []string{"idle", "drive"})))

	props := doc.Description()["properties"].(map[string]any)
	assert.Equal(t, map[string]any{
		"client_sync": true,
		"type":        "int",
		"range":       []any{0, 2},
		"default":     0,
	}, props["custom:color"])
	assert.Equal(t, map[string]any{
		"client_sync": true,
		"type":        "enum",
		"values":      []any{"idle", "drive"},
		"default":     "idle",
	}, props["custom:mode"])
}

func TestDocument_AddPropertyRejectsItems(t *testing.T) {
	doc, err := Parse([]byte(`{"minecraft:item": {"description": {"identifier": "a:b"}}}`))
	require.NoError(t, err)
	assert.Error(t, doc.AddProperty(NewEnumProperty("custom", "x", []string{"a"})))
}

func TestNewEntityProperty(t *testing.T) {
	tests := []struct {
		kind    string
		items   []string
		want    string
		wantErr bool
	}{
		{"int", []string{"a", "b"}, "custom:p", false},
		{"enum", []string{"a"}, "custom:p", false},
		{"float", []string{"a"}, "", true},
		{"int", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			p, err := NewEntityProperty(tt.kind, "custom", "p", tt.items)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name())
		})
	}

	assert.Equal(t, []string{"enum", "int"}, PropertyTypes())
}
