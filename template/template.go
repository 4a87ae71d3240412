// Package template generates starter behavior files for new entities,
// items and blocks.
package template

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/addonsmith/behavior"
	"github.com/c360studio/addonsmith/schema"
)

// DefaultFormatVersion is written when a template does not set one.
const DefaultFormatVersion = "1.19.0"

// Template builds a behavior document for an identifier.
type Template interface {
	Name() string
	Description() string
	Kind() behavior.Kind
	Build(identifier string) map[string]any
}

// File is the YAML form of a template.
type File struct {
	Kind            string         `yaml:"kind"`
	Name            string         `yaml:"name"`
	Description     string         `yaml:"description"`
	FormatVersion   string         `yaml:"format_version"`
	Experimental    bool           `yaml:"experimental"`
	Components      map[string]any `yaml:"components"`
	ComponentGroups map[string]any `yaml:"component_groups"`
	Events          map[string]any `yaml:"events"`
	Aliases         map[string]any `yaml:"aliases"`
	Properties      map[string]any `yaml:"properties"`
	Permutations    []any          `yaml:"permutations"`
}

// Parse decodes a YAML template.
func Parse(data []byte) (Template, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return FromFile(f)
}

// FromFile validates f and returns the template it describes.
func FromFile(f File) (Template, error) {
	if f.Name == "" {
		return nil, errors.New("template has no name")
	}
	if f.FormatVersion == "" {
		f.FormatVersion = DefaultFormatVersion
	}
	if f.Components == nil {
		f.Components = map[string]any{}
	}

	switch f.Kind {
	case "", "entity":
		t := &EntityTemplate{
			name:            f.Name,
			description:     f.Description,
			formatVersion:   f.FormatVersion,
			experimental:    f.Experimental || len(f.Permutations) > 0,
			components:      f.Components,
			componentGroups: f.ComponentGroups,
			events:          f.Events,
			aliases:         f.Aliases,
			properties:      f.Properties,
			permutations:    f.Permutations,
		}
		if err := t.validate(); err != nil {
			return nil, err
		}
		return t, nil
	case "item":
		return &ItemTemplate{
			name:          f.Name,
			description:   f.Description,
			formatVersion: f.FormatVersion,
			components:    f.Components,
			events:        f.Events,
		}, nil
	case "block":
		return &BlockTemplate{
			name:          f.Name,
			description:   f.Description,
			formatVersion: f.FormatVersion,
			components:    f.Components,
			events:        f.Events,
			properties:    f.Properties,
			permutations:  f.Permutations,
		}, nil
	default:
		return nil, fmt.Errorf("template %q: unknown kind %q", f.Name, f.Kind)
	}
}

// EntityTemplate builds minecraft:entity documents.
type EntityTemplate struct {
	name            string
	description     string
	formatVersion   string
	experimental    bool
	components      map[string]any
	componentGroups map[string]any
	events          map[string]any
	aliases         map[string]any
	properties      map[string]any
	permutations    []any
}

func (t *EntityTemplate) validate() error {
	if len(t.componentGroups) > 0 && len(t.events) == 0 {
		return fmt.Errorf("template %q: component groups require events", t.name)
	}
	if len(t.properties) > 0 && len(t.events) == 0 {
		return fmt.Errorf("template %q: properties require events", t.name)
	}
	return nil
}

func (t *EntityTemplate) Name() string        { return t.name }
func (t *EntityTemplate) Kind() behavior.Kind { return behavior.KindEntity }

// Description returns the template's help text.
func (t *EntityTemplate) Description() string { return t.description }

// Experimental reports whether generated entities are marked experimental.
func (t *EntityTemplate) Experimental() bool { return t.experimental }

func (t *EntityTemplate) Build(identifier string) map[string]any {
	desc := map[string]any{
		"identifier":      identifier,
		"is_spawnable":    true,
		"is_summonable":   true,
		"is_experimental": t.experimental,
	}
	entity := map[string]any{
		"description": desc,
		"components":  clone(t.components),
	}
	if len(t.componentGroups) > 0 {
		entity["component_groups"] = clone(t.componentGroups)
		entity["events"] = clone(t.events)
	}
	if len(t.properties) > 0 {
		desc["properties"] = clone(t.properties)
		if t.aliases != nil {
			desc["aliases"] = clone(t.aliases)
		}
		if t.permutations != nil {
			entity["permutations"] = schema.CloneValue(t.permutations)
		}
		entity["events"] = clone(t.events)
	}
	return map[string]any{
		"format_version":   t.formatVersion,
		"minecraft:entity": entity,
	}
}

// ItemTemplate builds minecraft:item documents.
type ItemTemplate struct {
	name          string
	description   string
	formatVersion string
	components    map[string]any
	events        map[string]any
}

func (t *ItemTemplate) Name() string        { return t.name }
func (t *ItemTemplate) Kind() behavior.Kind { return behavior.KindItem }

// Description returns the template's help text.
func (t *ItemTemplate) Description() string { return t.description }

func (t *ItemTemplate) Build(identifier string) map[string]any {
	item := map[string]any{
		"description": map[string]any{"identifier": identifier},
		"components":  clone(t.components),
	}
	if len(t.events) > 0 {
		item["events"] = clone(t.events)
	}
	return map[string]any{
		"format_version": t.formatVersion,
		"minecraft:item": item,
	}
}

// BlockTemplate builds minecraft:block documents.
type BlockTemplate struct {
	name          string
	description   string
	formatVersion string
	components    map[string]any
	events        map[string]any
	properties    map[string]any
	permutations  []any
}

func (t *BlockTemplate) Name() string        { return t.name }
func (t *BlockTemplate) Kind() behavior.Kind { return behavior.KindBlock }

// Description returns the template's help text.
func (t *BlockTemplate) Description() string { return t.description }

func (t *BlockTemplate) Build(identifier string) map[string]any {
	desc := map[string]any{"identifier": identifier}
	block := map[string]any{
		"description": desc,
		"components":  clone(t.components),
	}
	if len(t.events) > 0 {
		block["events"] = clone(t.events)
	}
	if len(t.properties) > 0 {
		desc["properties"] = clone(t.properties)
		if t.permutations != nil {
			block["permutations"] = schema.CloneValue(t.permutations)
		}
	}
	return map[string]any{
		"format_version":  t.formatVersion,
		"minecraft:block": block,
	}
}

func clone(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return schema.CloneValue(m).(map[string]any)
}
