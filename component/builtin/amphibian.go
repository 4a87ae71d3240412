package builtin

import (
	"github.com/c360studio/addonsmith/component"
	"github.com/c360studio/addonsmith/schema"
)

// Amphibian makes an entity walk on land and swim, breathing both air and water.
type Amphibian struct{}

var amphibianSchema = schema.Must(
	schema.Bool("bubbles").Describe("Generate bubbles while underwater"),
	schema.Bool("can_breach").Describe("Can jump out of water"),
	schema.Bool("can_pass_doors"),
	schema.Bool("can_jump"),
	schema.Bool("can_sink"),
	schema.Float("underwater_movement").Between(0, 1).Describe("Movement speed while in water"),
	schema.Int("stroll_interval").AtLeast(1).Default(25).Describe("Ticks between random stroll/swim attempts"),
)

// Name implements component.Definition.
func (Amphibian) Name() string { return "amphibian" }

// Schema implements component.Definition.
func (Amphibian) Schema() schema.Schema { return amphibianSchema }

// Expand implements component.Definition.
func (Amphibian) Expand(p schema.Properties) (component.Fragment, error) {
	interval := p.Int("stroll_interval")

	return component.Fragment{
		"minecraft:movement.amphibious": map[string]any{},
		"minecraft:underwater_movement": map[string]any{
			"value": p.Float("underwater_movement"),
		},
		"minecraft:navigation.generic": map[string]any{
			"avoid_damage_blocks": true,
			"avoid_portals":       true,
			"can_breach":          p.Bool("can_breach"),
			"can_jump":            p.Bool("can_jump"),
			"can_pass_doors":      p.Bool("can_pass_doors"),
			"can_sink":            p.Bool("can_sink"),
			"can_swim":            true,
			"can_walk":            true,
			"is_amphibious":       true,
		},
		"minecraft:jump.static": map[string]any{},
		"minecraft:behavior.random_stroll": map[string]any{
			"priority": 8,
			"interval": interval,
		},
		"minecraft:behavior.random_swim": map[string]any{
			"priority": 7,
			"interval": interval,
		},
		"minecraft:breathable": map[string]any{
			"breathes_air":      true,
			"breathes_water":    true,
			"generates_bubbles": p.Bool("bubbles"),
			"suffocate_time":    1,
			"inhale_time":       3.0,
		},
	}, nil
}
