package component

import (
	"sync"
)

// builtinPlugin is a compiled-in plugin registered from an init function.
type builtinPlugin struct {
	source  string
	factory func() Definition
}

func (p builtinPlugin) Source() string { return p.source }

func (p builtinPlugin) Load() (Definition, error) {
	if p.factory == nil {
		return nil, errNoExpand
	}
	return p.factory(), nil
}

var (
	builtinMu      sync.Mutex
	builtinPlugins []Plugin
)

// RegisterBuiltin makes a compiled-in component available to Builtins.
// It is meant to be called from init.
func RegisterBuiltin(source string, factory func() Definition) {
	builtinMu.Lock()
	defer builtinMu.Unlock()
	builtinPlugins = append(builtinPlugins, builtinPlugin{source: source, factory: factory})
}

// Builtins returns a provider over every compiled-in component, in
// registration order.
func Builtins() Provider {
	return builtinProvider{}
}

type builtinProvider struct{}

func (builtinProvider) Plugins() ([]Plugin, error) {
	builtinMu.Lock()
	defer builtinMu.Unlock()

	out := make([]Plugin, len(builtinPlugins))
	copy(out, builtinPlugins)
	return out, nil
}

// Static is a provider over a fixed list of plugins.
type Static []Plugin

// Plugins implements Provider.
func (s Static) Plugins() ([]Plugin, error) {
	return s, nil
}

// PluginOf wraps a definition as a plugin with the given source.
func PluginOf(source string, def Definition) Plugin {
	return builtinPlugin{source: source, factory: func() Definition { return def }}
}
