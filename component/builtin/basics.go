package builtin

import (
	"github.com/c360studio/addonsmith/component"
	"github.com/c360studio/addonsmith/schema"
)

// Basics bundles the components nearly every mob needs.
type Basics struct{}

var basicsSchema = schema.Must(
	schema.ListOf("families", schema.TypeString).Describe("Type families the entity belongs to"),
	schema.Int("health").AtLeast(1),
	schema.Float("height").AtLeast(0),
	schema.Float("width").AtLeast(0),
	schema.Float("speed").AtLeast(0),
)

// Name implements component.Definition.
func (Basics) Name() string { return "basics" }

// Schema implements component.Definition.
func (Basics) Schema() schema.Schema { return basicsSchema }

// Expand implements component.Definition.
func (Basics) Expand(p schema.Properties) (component.Fragment, error) {
	return component.Fragment{
		"minecraft:physics": map[string]any{},
		"minecraft:type_family": map[string]any{
			"family": p.List("families"),
		},
		"minecraft:health": map[string]any{
			"value": p.Int("health"),
		},
		"minecraft:collision_box": map[string]any{
			"height": p.Float("height"),
			"width":  p.Float("width"),
		},
		"minecraft:movement": map[string]any{
			"value": p.Float("speed"),
		},
	}, nil
}
