package component

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/addonsmith/schema"
)

func echoDefinition(name string) Definition {
	return New(name, schema.Must(schema.Int("value").Default(1)), func(p schema.Properties) (Fragment, error) {
		return Fragment{"minecraft:" + name: map[string]any{"value": p.Int("value")}}, nil
	})
}

type failingPlugin struct{ source string }

func (p failingPlugin) Source() string { return p.source }

func (p failingPlugin) Load() (Definition, error) {
	return nil, errors.New("no Component symbol")
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry("")
	assert.Equal(t, DefaultNamespace, r.Namespace())

	require.NoError(t, r.Register(echoDefinition("scale")))

	def, err := r.Get("scale")
	require.NoError(t, err)
	assert.Equal(t, "scale", def.Name())

	_, err = r.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrUnknownComponent))

	var se *schema.Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "missing", se.Component)
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	r := NewRegistry("custom")
	first := echoDefinition("scale")
	second := echoDefinition("scale")

	require.NoError(t, r.Register(first))
	require.NoError(t, r.Register(second))

	def, err := r.Get("scale")
	require.NoError(t, err)
	assert.Same(t, second, def)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RejectsNonConformingDefinitions(t *testing.T) {
	r := NewRegistry("custom")

	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(New("", schema.Schema{}, func(schema.Properties) (Fragment, error) { return nil, nil })))
	assert.Error(t, r.Register(New("noexpand", schema.Schema{}, nil)))
	assert.Zero(t, r.Len())
}

func TestRegistry_AcceptsEmptySchema(t *testing.T) {
	r := NewRegistry("custom")
	marker := New("marker", schema.Schema{}, func(schema.Properties) (Fragment, error) {
		return Fragment{"minecraft:marker": map[string]any{}}, nil
	})

	require.NoError(t, r.Register(marker))
	def, err := r.Get("marker")
	require.NoError(t, err)

	props, err := schema.Validate("marker", def.Schema(), nil)
	require.NoError(t, err)
	assert.Empty(t, props)
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry("acme")
	require.NoError(t, r.Register(echoDefinition("glow")))

	assert.True(t, r.IsReference("acme:glow"))
	assert.False(t, r.IsReference("minecraft:glow"))
	assert.False(t, r.IsReference("acmeglow"))
	assert.Equal(t, "glow", r.ComponentName("acme:glow"))

	def, err := r.Lookup("acme:glow")
	require.NoError(t, err)
	assert.Equal(t, "glow", def.Name())

	_, err = r.Lookup("acme:nope")
	assert.True(t, schema.IsKind(err, schema.UnknownComponent))
	_, err = r.Lookup("minecraft:glow")
	assert.True(t, schema.IsKind(err, schema.UnknownComponent))
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewRegistry("custom")
	for _, n := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, r.Register(echoDefinition(n)))
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Names())
}

func TestRegistry_DiscoverStopsAtMalformedPlugin(t *testing.T) {
	var hooked []string
	r := NewRegistry("custom", WithRegisterHook(func(name string) { hooked = append(hooked, name) }))

	provider := Static{
		PluginOf("plugins/a", echoDefinition("a")),
		failingPlugin{source: "plugins/broken"},
		PluginOf("plugins/c", echoDefinition("c")),
	}

	err := r.Discover(provider)
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrMalformedComponentPlugin))

	var se *schema.Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "plugins/broken", se.Source)

	// Registrations made before the failure are kept; later ones never happen.
	assert.Equal(t, []string{"a"}, r.Names())
	assert.Equal(t, []string{"a"}, hooked)
}

func TestRegistry_DiscoverRejectsNilDefinition(t *testing.T) {
	r := NewRegistry("custom")
	err := r.Discover(Static{PluginOf("plugins/nil", nil)})
	assert.True(t, schema.IsKind(err, schema.MalformedComponentPlugin))
}

func TestRegistry_DiscoverMultipleProviders(t *testing.T) {
	r := NewRegistry("custom")
	err := r.Discover(
		Static{PluginOf("one", echoDefinition("one"))},
		Static{PluginOf("two", echoDefinition("two"))},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, r.Names())
}

func TestBuiltins_ReturnsRegisteredPlugins(t *testing.T) {
	RegisterBuiltin("component_test/probe", func() Definition { return echoDefinition("probe") })

	plugins, err := Builtins().Plugins()
	require.NoError(t, err)

	var found bool
	for _, p := range plugins {
		if p.Source() == "component_test/probe" {
			found = true
			def, err := p.Load()
			require.NoError(t, err)
			assert.Equal(t, "probe", def.Name())
		}
	}
	assert.True(t, found)
}
