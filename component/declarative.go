package component

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/addonsmith/schema"
)

// DefaultPluginPatterns select declarative plugin files inside a plugin directory.
var DefaultPluginPatterns = []string{"**/*.yaml", "**/*.yml"}

// PluginFile is the on-disk shape of a declarative component.
//
//	name: glowing
//	properties:
//	  - name: level
//	    type: int
//	    range: [0, 15]
//	    default: 7
//	output:
//	  minecraft:light_emission: "${level}"
type PluginFile struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Properties  []PluginProperty `yaml:"properties"`
	Output      map[string]any   `yaml:"output"`
}

// PluginProperty declares one property of a declarative component.
type PluginProperty struct {
	Name        string    `yaml:"name"`
	Type        string    `yaml:"type"`
	Range       []float64 `yaml:"range"`
	Arity       int       `yaml:"arity"`
	Default     any       `yaml:"default"`
	Description string    `yaml:"description"`
}

// FSProvider discovers declarative components in a file system.
type FSProvider struct {
	fsys     fs.FS
	root     string
	patterns []string
}

// NewDirProvider discovers declarative components under dir.
func NewDirProvider(dir string, patterns ...string) *FSProvider {
	return NewFSProvider(os.DirFS(dir), dir, patterns...)
}

// NewFSProvider discovers declarative components in fsys. root is only
// used to build plugin source identifiers.
func NewFSProvider(fsys fs.FS, root string, patterns ...string) *FSProvider {
	if len(patterns) == 0 {
		patterns = DefaultPluginPatterns
	}
	return &FSProvider{fsys: fsys, root: root, patterns: patterns}
}

// Plugins implements Provider. Files are returned in lexical order.
func (p *FSProvider) Plugins() ([]Plugin, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range p.patterns {
		matches, err := doublestar.Glob(p.fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q in %s: %w", pattern, p.root, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)

	plugins := make([]Plugin, 0, len(files))
	for _, f := range files {
		plugins = append(plugins, &filePlugin{fsys: p.fsys, name: f, source: path.Join(p.root, f)})
	}
	return plugins, nil
}

type filePlugin struct {
	fsys   fs.FS
	name   string
	source string
}

func (p *filePlugin) Source() string { return p.source }

func (p *filePlugin) Load() (Definition, error) {
	data, err := fs.ReadFile(p.fsys, p.name)
	if err != nil {
		return nil, schema.NewMalformedPlugin(p.source, "read failed", err)
	}
	def, err := ParsePlugin(data)
	if err != nil {
		return nil, schema.NewMalformedPlugin(p.source, "", err)
	}
	return def, nil
}

// ParsePlugin builds a definition from a declarative plugin document.
func ParsePlugin(data []byte) (Definition, error) {
	var pf PluginFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse plugin: %w", err)
	}
	if pf.Name == "" {
		return nil, fmt.Errorf("plugin has no name")
	}
	if pf.Output == nil {
		return nil, fmt.Errorf("plugin %q has no output", pf.Name)
	}
	if err := stringKeyed(pf.Output, "output"); err != nil {
		return nil, fmt.Errorf("plugin %q: %w", pf.Name, err)
	}

	descriptors := make([]schema.Descriptor, 0, len(pf.Properties))
	for _, pp := range pf.Properties {
		d, err := pp.descriptor()
		if err != nil {
			return nil, fmt.Errorf("plugin %q: %w", pf.Name, err)
		}
		descriptors = append(descriptors, d)
	}

	s, err := schema.New(descriptors...)
	if err != nil {
		if se, ok := err.(*schema.Error); ok {
			se.Component = pf.Name
		}
		return nil, err
	}

	for _, ref := range placeholders(pf.Output) {
		if _, ok := s.Lookup(ref); !ok {
			return nil, fmt.Errorf("plugin %q: output references undeclared property %q", pf.Name, ref)
		}
	}

	return &declarative{name: pf.Name, description: pf.Description, schema: s, output: pf.Output}, nil
}

func (pp PluginProperty) descriptor() (schema.Descriptor, error) {
	t, err := schema.ParseType(pp.Type)
	if err != nil {
		return schema.Descriptor{}, fmt.Errorf("property %q: %w", pp.Name, err)
	}
	d := schema.Descriptor{Name: pp.Name, Type: t, Arity: pp.Arity, Description: pp.Description}
	switch len(pp.Range) {
	case 0:
	case 2:
		d = d.Between(pp.Range[0], pp.Range[1])
	default:
		return schema.Descriptor{}, fmt.Errorf("property %q: range needs exactly two bounds", pp.Name)
	}
	if pp.Default != nil {
		d = d.Default(pp.Default)
	}
	return d, nil
}

// declarative expands by substituting properties into an output template.
type declarative struct {
	name        string
	description string
	schema      schema.Schema
	output      map[string]any
}

func (d *declarative) Name() string          { return d.name }
func (d *declarative) Schema() schema.Schema { return d.schema }

// Description returns the plugin's help text.
func (d *declarative) Description() string { return d.description }

func (d *declarative) Expand(props schema.Properties) (Fragment, error) {
	out := substitute(d.output, props).(map[string]any)
	return Fragment(out), nil
}

var placeholderRE = regexp.MustCompile(`\$\{([A-Za-z0-9_.\-]+)\}`)

// substitute returns a copy of v with "${prop}" placeholders replaced. A
// string consisting of a single placeholder takes the typed property value;
// embedded placeholders are formatted into the string.
func substitute(v any, props schema.Properties) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = substitute(e, props)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = substitute(e, props)
		}
		return out
	case string:
		if m := placeholderRE.FindStringSubmatch(t); m != nil && m[0] == t {
			return schema.CloneValue(props[m[1]])
		}
		return placeholderRE.ReplaceAllStringFunc(t, func(s string) string {
			name := placeholderRE.FindStringSubmatch(s)[1]
			return fmt.Sprint(props[name])
		})
	default:
		return v
	}
}

// stringKeyed rejects nested maps yaml could not decode with string keys;
// they have no JSON encoding.
func stringKeyed(v any, at string) error {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			if err := stringKeyed(e, at+"/"+k); err != nil {
				return err
			}
		}
	case []any:
		for i, e := range t {
			if err := stringKeyed(e, fmt.Sprintf("%s/%d", at, i)); err != nil {
				return err
			}
		}
	case map[any]any:
		for k := range t {
			if _, ok := k.(string); !ok {
				return fmt.Errorf("%s has non-string key %v", at, k)
			}
		}
		return fmt.Errorf("%s is not a string-keyed map", at)
	}
	return nil
}

func placeholders(v any) []string {
	var refs []string
	var walk func(any)
	walk = func(v any) {
		switch t := v.(type) {
		case map[string]any:
			for _, e := range t {
				walk(e)
			}
		case []any:
			for _, e := range t {
				walk(e)
			}
		case string:
			for _, m := range placeholderRE.FindAllStringSubmatch(t, -1) {
				refs = append(refs, m[1])
			}
		}
	}
	walk(v)
	return refs
}
