package builtin

import (
	"github.com/c360studio/addonsmith/component"
	"github.com/c360studio/addonsmith/schema"
)

// Rideable adds seats and ground steering, the core of a vehicle.
type Rideable struct{}

var rideableSchema = schema.Must(
	schema.Int("seat_count").Between(1, 8).Default(1),
	schema.Vec3("seat_position").Describe("Seat offset from the entity origin"),
	schema.ListOf("family_types", schema.TypeString).Default([]any{"player"}),
	schema.String("interact_text").Default("text.interact.ride"),
	schema.Bool("controllable").Default(true).Describe("Add minecraft:input_ground_controlled"),
)

// Name implements component.Definition.
func (Rideable) Name() string { return "rideable" }

// Schema implements component.Definition.
func (Rideable) Schema() schema.Schema { return rideableSchema }

// Expand implements component.Definition.
func (Rideable) Expand(p schema.Properties) (component.Fragment, error) {
	seat := p.List("seat_position")

	count := p.Int("seat_count")
	seats := make([]any, 0, count)
	for i := 0; i < count; i++ {
		seats = append(seats, map[string]any{
			"position":        schema.CloneValue(seat),
			"min_rider_count": 0,
		})
	}

	frag := component.Fragment{
		"minecraft:rideable": map[string]any{
			"seat_count":              count,
			"family_types":            p.List("family_types"),
			"interact_text":           p.String("interact_text"),
			"pull_in_entities":        false,
			"crouching_skip_interact": false,
			"seats":                   seats,
		},
	}
	if p.Bool("controllable") {
		frag["minecraft:input_ground_controlled"] = map[string]any{}
	}
	return frag, nil
}
