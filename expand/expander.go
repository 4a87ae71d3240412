// Package expand splices virtual-component expansions into asset documents.
//
// A document's component-bearing locations are its "components" object and
// every member of its "component_groups" object. Each location is expanded
// independently to a fixed point: keys carrying the registry namespace are
// removed, resolved, validated and replaced by their fragment until a pass
// finds none left.
package expand

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/c360studio/addonsmith/component"
	"github.com/c360studio/addonsmith/schema"
)

// DefaultMaxPasses bounds fixed-point iteration per location.
const DefaultMaxPasses = 16

// ConflictPolicy decides what happens when a fragment writes a key that is
// already present at its location.
type ConflictPolicy string

const (
	// ConflictError fails the expansion with FragmentKeyConflict.
	ConflictError ConflictPolicy = "error"
	// ConflictOverwrite lets the later write win.
	ConflictOverwrite ConflictPolicy = "overwrite"
)

// ParseConflictPolicy maps a configuration value to a policy.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(s) {
	case "", ConflictError:
		return ConflictError, nil
	case ConflictOverwrite:
		return ConflictOverwrite, nil
	default:
		return "", errors.New("conflict policy must be \"error\" or \"overwrite\"")
	}
}

// Resolver resolves namespace-prefixed document keys to definitions.
// *component.Registry satisfies it.
type Resolver interface {
	IsReference(key string) bool
	Lookup(key string) (component.Definition, error)
}

// Observer is told about every component expanded.
type Observer func(location, name string)

// Stats summarises one Expand call.
type Stats struct {
	// Locations is the number of component-bearing locations visited.
	Locations int
	// Passes counts the passes, over all locations, that expanded at
	// least one reference.
	Passes int
	// Expanded counts expansions per component name.
	Expanded map[string]int
}

// Total returns the number of components expanded.
func (s Stats) Total() int {
	n := 0
	for _, c := range s.Expanded {
		n += c
	}
	return n
}

// Expander expands documents against a resolver.
type Expander struct {
	resolver  Resolver
	maxPasses int
	policy    ConflictPolicy
	observer  Observer
	logger    *slog.Logger
}

// Option configures an Expander.
type Option func(*Expander)

// WithMaxPasses caps fixed-point passes per location. Values below one are
// ignored.
func WithMaxPasses(n int) Option {
	return func(e *Expander) {
		if n > 0 {
			e.maxPasses = n
		}
	}
}

// WithConflictPolicy sets the key-collision policy.
func WithConflictPolicy(p ConflictPolicy) Option {
	return func(e *Expander) {
		if p != "" {
			e.policy = p
		}
	}
}

// WithObserver registers a callback run after each component expansion.
func WithObserver(fn Observer) Option {
	return func(e *Expander) {
		e.observer = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Expander) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Expander.
func New(resolver Resolver, opts ...Option) *Expander {
	e := &Expander{
		resolver:  resolver,
		maxPasses: DefaultMaxPasses,
		policy:    ConflictError,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand returns a fully expanded copy of doc. doc itself is never
// modified, so on error the caller still holds the original document.
func (e *Expander) Expand(doc map[string]any) (map[string]any, Stats, error) {
	stats := Stats{Expanded: make(map[string]int)}
	if doc == nil {
		return map[string]any{}, stats, nil
	}

	out := schema.CloneValue(doc).(map[string]any)
	for _, loc := range Locations(out) {
		stats.Locations++
		if err := e.expandLocation(loc, &stats); err != nil {
			return nil, stats, err
		}
	}
	return out, stats, nil
}

// HasReferences reports whether any bearing location of doc still holds a
// namespace-prefixed key.
func (e *Expander) HasReferences(doc map[string]any) bool {
	for _, loc := range Locations(doc) {
		if len(e.references(loc.Node)) > 0 {
			return true
		}
	}
	return false
}

func (e *Expander) expandLocation(loc Location, stats *Stats) error {
	for pass := 1; ; pass++ {
		refs := e.references(loc.Node)
		if len(refs) == 0 {
			return nil
		}
		if pass > e.maxPasses {
			return &schema.Error{
				Kind:     schema.ExpansionLimitExceeded,
				Location: loc.Path,
				Length:   e.maxPasses,
				Key:      refs[0],
			}
		}

		for _, key := range refs {
			if err := e.expandKey(loc, key, stats); err != nil {
				return withLocation(err, loc.Path)
			}
		}
		stats.Passes++
	}
}

func (e *Expander) expandKey(loc Location, key string, stats *Stats) error {
	raw := loc.Node[key]
	delete(loc.Node, key)

	def, err := e.resolver.Lookup(key)
	if err != nil {
		return err
	}
	name := def.Name()

	var props map[string]any
	switch v := raw.(type) {
	case nil:
	case map[string]any:
		props = v
	default:
		return &schema.Error{
			Kind:      schema.PropertyTypeMismatch,
			Component: name,
			Property:  key,
			Expected:  "object",
			Actual:    schema.TypeName(raw),
		}
	}

	validated, err := schema.Validate(name, def.Schema(), props)
	if err != nil {
		return err
	}

	frag, err := def.Expand(validated)
	if err != nil {
		return fmt.Errorf("expand component %q: %w", name, err)
	}

	if err := e.merge(loc, name, frag); err != nil {
		return err
	}

	stats.Expanded[name]++
	if e.observer != nil {
		e.observer(loc.Path, name)
	}
	e.logger.Debug("Expanded component",
		"location", loc.Path,
		"component", name,
		"keys", len(frag))
	return nil
}

func (e *Expander) merge(loc Location, name string, frag component.Fragment) error {
	keys := make([]string, 0, len(frag))
	for k := range frag {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if e.policy == ConflictError {
		for _, k := range keys {
			if _, exists := loc.Node[k]; exists {
				return &schema.Error{Kind: schema.FragmentKeyConflict, Component: name, Key: k}
			}
		}
	}
	for _, k := range keys {
		loc.Node[k] = schema.CloneValue(frag[k])
	}
	return nil
}

// references returns the namespace-prefixed keys of node in sorted order.
func (e *Expander) references(node map[string]any) []string {
	var refs []string
	for k := range node {
		if e.resolver.IsReference(k) {
			refs = append(refs, k)
		}
	}
	sort.Strings(refs)
	return refs
}

// withLocation returns a copy of a lookup, validation or merge error with
// its location set. Errors wrapped by a component's expand function are
// returned as they are; they may be shared values.
func withLocation(err error, path string) error {
	se, ok := err.(*schema.Error)
	if !ok || se.Location != "" {
		return err
	}
	located := *se
	located.Location = path
	return &located
}
