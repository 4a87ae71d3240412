package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/addonsmith/component"
	"github.com/c360studio/addonsmith/schema"
)

func expand(t *testing.T, def component.Definition, raw map[string]any) component.Fragment {
	t.Helper()
	props, err := schema.Validate(def.Name(), def.Schema(), raw)
	require.NoError(t, err)
	frag, err := def.Expand(props)
	require.NoError(t, err)
	return frag
}

func TestBuiltinsRegistered(t *testing.T) {
	r := component.NewRegistry("custom")
	require.NoError(t, r.Discover(component.Builtins()))

	for _, name := range []string{"amphibian", "basics", "despawn", "rideable"} {
		_, err := r.Get(name)
		assert.NoError(t, err, name)
	}
}

func TestAmphibian(t *testing.T) {
	frag := expand(t, Amphibian{}, map[string]any{
		"bubbles":             false,
		"can_breach":          true,
		"can_pass_doors":      true,
		"can_jump":            true,
		"can_sink":            false,
		"underwater_movement": 0.2,
	})

	assert.Len(t, frag, 7)
	assert.Equal(t, map[string]any{"value": 0.2}, frag["minecraft:underwater_movement"])

	nav := frag["minecraft:navigation.generic"].(map[string]any)
	assert.Equal(t, true, nav["can_breach"])
	assert.Equal(t, false, nav["can_sink"])
	assert.Equal(t, true, nav["is_amphibious"])

	stroll := frag["minecraft:behavior.random_stroll"].(map[string]any)
	assert.Equal(t, 8, stroll["priority"])
	assert.Equal(t, 25, stroll["interval"])

	swim := frag["minecraft:behavior.random_swim"].(map[string]any)
	assert.Equal(t, 7, swim["priority"])

	breath := frag["minecraft:breathable"].(map[string]any)
	assert.Equal(t, false, breath["generates_bubbles"])
}

func TestAmphibian_OutOfRange(t *testing.T) {
	_, err := schema.Validate("amphibian", Amphibian{}.Schema(), map[string]any{
		"bubbles": true, "can_breach": true, "can_pass_doors": true,
		"can_jump": true, "can_sink": true, "underwater_movement": 1.5,
	})
	assert.True(t, schema.IsKind(err, schema.PropertyOutOfRange))
}

func TestBasics(t *testing.T) {
	frag := expand(t, Basics{}, map[string]any{
		"families": []any{"mob", "frog"},
		"health":   10,
		"height":   0.55,
		"width":    0.6,
		"speed":    0.25,
	})

	assert.Equal(t, map[string]any{"family": []any{"mob", "frog"}}, frag["minecraft:type_family"])
	assert.Equal(t, map[string]any{"value": 10}, frag["minecraft:health"])
	assert.Equal(t, map[string]any{"height": 0.55, "width": 0.6}, frag["minecraft:collision_box"])
	assert.Equal(t, map[string]any{"value": 0.25}, frag["minecraft:movement"])
	assert.Contains(t, frag, "minecraft:physics")
}

func TestRideable(t *testing.T) {
	frag := expand(t, Rideable{}, map[string]any{
		"seat_count":    2,
		"seat_position": []any{0, 0.5, -0.2},
	})

	ride := frag["minecraft:rideable"].(map[string]any)
	assert.Equal(t, 2, ride["seat_count"])
	assert.Equal(t, []any{"player"}, ride["family_types"])
	assert.Equal(t, "text.interact.ride", ride["interact_text"])

	seats := ride["seats"].([]any)
	require.Len(t, seats, 2)
	assert.Equal(t, []any{0.0, 0.5, -0.2}, seats[0].(map[string]any)["position"])
	assert.Contains(t, frag, "minecraft:input_ground_controlled")
}

func TestRideable_NotControllable(t *testing.T) {
	frag := expand(t, Rideable{}, map[string]any{
		"seat_position": []any{0, 1, 0},
		"controllable":  false,
	})
	assert.NotContains(t, frag, "minecraft:input_ground_controlled")
}

func TestDespawn(t *testing.T) {
	frag := expand(t, Despawn{}, nil)
	assert.Equal(t, map[string]any{"never_despawn": true, "radius": 2}, frag["minecraft:tick_world"])

	_, err := schema.Validate("despawn", Despawn{}.Schema(), map[string]any{"radius": 7})
	assert.True(t, schema.IsKind(err, schema.PropertyOutOfRange))
}
