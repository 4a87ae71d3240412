// Package component defines virtual components, the registry that indexes
// them by name, and the providers that discover them.
//
// A virtual component is referenced from an asset document by a namespaced
// key such as "custom:amphibian". At build time the key is replaced by the
// fragment the component expands to.
package component

import (
	"errors"

	"github.com/c360studio/addonsmith/schema"
)

// Fragment is the set of key/value pairs a component contributes to the
// object that referenced it.
type Fragment map[string]any

// Definition is a named, stateless expansion unit.
type Definition interface {
	// Name is the registry key and the suffix of the document key.
	Name() string

	// Schema declares the properties the component accepts.
	Schema() schema.Schema

	// Expand turns validated properties into a fragment. It must not
	// modify props and must not depend on anything but props.
	Expand(props schema.Properties) (Fragment, error)
}

// ExpandFunc is the expansion entry point of a function-backed definition.
type ExpandFunc func(props schema.Properties) (Fragment, error)

type funcDefinition struct {
	name   string
	schema schema.Schema
	expand ExpandFunc
}

// New adapts a name, schema and function into a Definition.
func New(name string, s schema.Schema, fn ExpandFunc) Definition {
	return &funcDefinition{name: name, schema: s, expand: fn}
}

func (d *funcDefinition) Name() string          { return d.name }
func (d *funcDefinition) Schema() schema.Schema { return d.schema }

func (d *funcDefinition) Expand(props schema.Properties) (Fragment, error) {
	if d.expand == nil {
		return nil, errNoExpand
	}
	return d.expand(props)
}

var errNoExpand = errors.New("definition has no expansion function")

// conforms checks that def exposes everything the registry relies on.
func conforms(def Definition) error {
	if def == nil {
		return errors.New("nil definition")
	}
	if fd, ok := def.(*funcDefinition); ok && fd.expand == nil {
		return errNoExpand
	}
	if def.Name() == "" {
		return errors.New("definition has an empty name")
	}
	return nil
}
