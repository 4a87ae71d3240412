package builtin

import (
	"github.com/c360studio/addonsmith/component"
	"github.com/c360studio/addonsmith/schema"
)

// Despawn keeps the chunks around an entity ticking and stops it despawning.
type Despawn struct{}

var despawnSchema = schema.Must(
	schema.Int("radius").Between(2, 6).Default(2),
)

// Name implements component.Definition.
func (Despawn) Name() string { return "despawn" }

// Schema implements component.Definition.
func (Despawn) Schema() schema.Schema { return despawnSchema }

// Expand implements component.Definition.
func (Despawn) Expand(p schema.Properties) (component.Fragment, error) {
	return component.Fragment{
		"minecraft:tick_world": map[string]any{
			"never_despawn": true,
			"radius":        p.Int("radius"),
		},
	}, nil
}
