package template

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

//go:embed builtins/*.yaml
var builtinFS embed.FS

// Registry holds templates by name.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]Template
}

// NewRegistry creates a registry holding the built-in templates.
func NewRegistry() (*Registry, error) {
	r := &Registry{templates: make(map[string]Template)}
	if err := r.LoadFS(builtinFS, "builtins"); err != nil {
		return nil, fmt.Errorf("load built-in templates: %w", err)
	}
	return r, nil
}

// Register adds a template, replacing any template of the same name.
func (r *Registry) Register(t Template) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.Name()] = t
}

// Get returns the named template.
func (r *Registry) Get(name string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[name]
	return t, ok
}

// Names returns the template names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for n := range r.templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadDir registers every *.yaml / *.yml template under dir.
func (r *Registry) LoadDir(dir string) error {
	return r.LoadFS(os.DirFS(dir), ".")
}

// LoadFS registers every YAML template under root in fsys, in lexical order.
func (r *Registry) LoadFS(fsys fs.FS, root string) error {
	var files []string
	for _, pattern := range []string{"**/*.yaml", "**/*.yml"} {
		matches, err := doublestar.Glob(fsys, path.Join(root, pattern))
		if err != nil {
			return err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	for _, f := range files {
		data, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("read template %s: %w", f, err)
		}
		t, err := Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
		r.Register(t)
	}
	return nil
}
