package component

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/c360studio/addonsmith/schema"
)

// DefaultNamespace marks a document key as a virtual-component reference.
const DefaultNamespace = "custom"

// Plugin is one discoverable component implementation.
type Plugin interface {
	// Source identifies where the plugin came from (package, file path).
	Source() string

	// Load returns the plugin's definition.
	Load() (Definition, error)
}

// Provider enumerates the plugins available to a registry.
type Provider interface {
	Plugins() ([]Plugin, error)
}

// Registry indexes component definitions by name.
// It is populated once at startup and read-only afterwards.
type Registry struct {
	mu        sync.RWMutex
	entries   map[string]Definition
	namespace string
	logger    *slog.Logger
	onAdd     func(name string)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used during discovery.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRegisterHook is called with the name of every registered component.
func WithRegisterHook(fn func(name string)) RegistryOption {
	return func(r *Registry) {
		r.onAdd = fn
	}
}

// NewRegistry creates an empty registry for the given namespace.
// An empty namespace selects DefaultNamespace.
func NewRegistry(namespace string, opts ...RegistryOption) *Registry {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	r := &Registry{
		entries:   make(map[string]Definition),
		namespace: namespace,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Namespace returns the key prefix (without the colon).
func (r *Registry) Namespace() string {
	return r.namespace
}

// Register adds a definition. Registering a name twice replaces the
// earlier definition.
func (r *Registry) Register(def Definition) error {
	if err := conforms(def); err != nil {
		return fmt.Errorf("register component: %w", err)
	}

	name := def.Name()
	r.mu.Lock()
	r.entries[name] = def
	r.mu.Unlock()

	if r.onAdd != nil {
		r.onAdd(name)
	}
	return nil
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.entries[name]
	if !ok {
		return nil, schema.NewUnknownComponent(name)
	}
	return def, nil
}

// IsReference reports whether a document key names a virtual component.
func (r *Registry) IsReference(key string) bool {
	return strings.HasPrefix(key, r.namespace+":")
}

// ComponentName strips the namespace prefix from a reference key.
func (r *Registry) ComponentName(key string) string {
	return strings.TrimPrefix(key, r.namespace+":")
}

// Lookup resolves a reference key such as "custom:amphibian".
func (r *Registry) Lookup(key string) (Definition, error) {
	if !r.IsReference(key) {
		return nil, schema.NewUnknownComponent(key)
	}
	return r.Get(r.ComponentName(key))
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Discover loads and registers every plugin of every provider, in order.
// The first plugin that fails to load stops discovery with a
// MalformedComponentPlugin error; plugins registered before it stay
// registered.
func (r *Registry) Discover(providers ...Provider) error {
	for _, p := range providers {
		plugins, err := p.Plugins()
		if err != nil {
			return fmt.Errorf("enumerate component plugins: %w", err)
		}

		for _, plugin := range plugins {
			if err := r.discoverOne(plugin); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) discoverOne(plugin Plugin) error {
	source := plugin.Source()

	def, err := plugin.Load()
	if err != nil {
		if schema.IsKind(err, schema.MalformedComponentPlugin) {
			return err
		}
		return schema.NewMalformedPlugin(source, "load failed", err)
	}
	if err := conforms(def); err != nil {
		return schema.NewMalformedPlugin(source, err.Error(), nil)
	}
	if err := r.Register(def); err != nil {
		return schema.NewMalformedPlugin(source, "register failed", err)
	}

	r.logger.Debug("Registered component",
		"name", def.Name(),
		"source", source,
		"properties", def.Schema().Len())
	return nil
}
