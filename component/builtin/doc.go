// Package builtin holds the compiled-in virtual components. Importing it
// for side effects registers every component with component.Builtins.
package builtin

import "github.com/c360studio/addonsmith/component"

func init() {
	component.RegisterBuiltin("builtin/amphibian", func() component.Definition { return Amphibian{} })
	component.RegisterBuiltin("builtin/basics", func() component.Definition { return Basics{} })
	component.RegisterBuiltin("builtin/rideable", func() component.Definition { return Rideable{} })
	component.RegisterBuiltin("builtin/despawn", func() component.Definition { return Despawn{} })
}
