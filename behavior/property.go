package behavior

import (
	"fmt"
	"sort"
	"sync"
)

// EntityProperty is a value stored in an entity's description.properties.
type EntityProperty interface {
	// Name is the namespaced property name.
	Name() string
	// Definition is the JSON written under the name.
	Definition() map[string]any
}

// RangedProperty is an int property indexing into a list of states.
type RangedProperty struct {
	name  string
	items []string
}

// NewRangedProperty creates "<namespace>:<name>" ranging over items.
func NewRangedProperty(namespace, name string, items []string) *RangedProperty {
	return &RangedProperty{name: namespace + ":" + name, items: items}
}

func (p *RangedProperty) Name() string { return p.name }

func (p *RangedProperty) Definition() map[string]any {
	return map[string]any{
		"client_sync": true,
		"type":        "int",
		"range":       []any{0, len(p.items) - 1},
		"default":     0,
	}
}

// EnumProperty is a string property restricted to values.
type EnumProperty struct {
	name   string
	values []string
}

// NewEnumProperty creates "<namespace>:<name>" over values.
func NewEnumProperty(namespace, name string, values []string) *EnumProperty {
	return &EnumProperty{name: namespace + ":" + name, values: values}
}

func (p *EnumProperty) Name() string { return p.name }

func (p *EnumProperty) Definition() map[string]any {
	values := make([]any, len(p.values))
	for i, v := range p.values {
		values[i] = v
	}
	return map[string]any{
		"client_sync": true,
		"type":        "enum",
		"values":      values,
		"default":     p.values[0],
	}
}

// PropertyFactory builds an entity property of one type.
type PropertyFactory func(namespace, name string, items []string) EntityProperty

var (
	propertyMu        sync.RWMutex
	propertyFactories = map[string]PropertyFactory{
		"int": func(ns, name string, items []string) EntityProperty {
			return NewRangedProperty(ns, name, items)
		},
		"enum": func(ns, name string, items []string) EntityProperty {
			return NewEnumProperty(ns, name, items)
		},
	}
)

// RegisterPropertyType adds or replaces an entity property type.
func RegisterPropertyType(kind string, f PropertyFactory) {
	propertyMu.Lock()
	defer propertyMu.Unlock()
	propertyFactories[kind] = f
}

// PropertyTypes returns the registered property type names, sorted.
func PropertyTypes() []string {
	propertyMu.RLock()
	defer propertyMu.RUnlock()
	out := make([]string, 0, len(propertyFactories))
	for k := range propertyFactories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NewEntityProperty builds a property of the given type ("int" or "enum").
func NewEntityProperty(kind, namespace, name string, items []string) (EntityProperty, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("entity property %q needs at least one value", name)
	}
	propertyMu.RLock()
	f, ok := propertyFactories[kind]
	propertyMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%q is not a valid entity property type", kind)
	}
	return f(namespace, name, items), nil
}

// AddProperty writes p into description.properties, replacing any property
// of the same name. Only entities carry properties.
func (d *Document) AddProperty(p EntityProperty) error {
	if d.kind != KindEntity {
		return fmt.Errorf("%s documents cannot hold entity properties", d.kind.Short())
	}
	desc := d.Description()
	props, ok := desc["properties"].(map[string]any)
	if !ok {
		props = make(map[string]any)
		desc["properties"] = props
	}
	props[p.Name()] = p.Definition()
	return nil
}
