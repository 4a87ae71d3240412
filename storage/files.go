// Package storage reads and writes behavior documents on disk and keeps
// build records in NATS KV.
package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIndent is the JSON indent width used when none is configured.
const DefaultIndent = 4

// Store reads and writes JSON documents below a root directory. Relative
// paths are resolved against the root; absolute paths are used as is.
type Store struct {
	root   string
	indent int
}

// NewStore creates a store rooted at root. An indent below one selects
// DefaultIndent.
func NewStore(root string, indent int) *Store {
	if indent < 1 {
		indent = DefaultIndent
	}
	return &Store{root: root, indent: indent}
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// Path resolves p against the root.
func (s *Store) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.root, p)
}

// Load reads a JSON object. Numbers are decoded as json.Number.
func (s *Store) Load(p string) (map[string]any, error) {
	data, err := s.ReadRaw(p)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	return doc, nil
}

// ReadRaw returns the file's bytes.
func (s *Store) ReadRaw(p string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}

// Encode renders v the way Save writes it: indented, keys sorted, HTML
// left unescaped, with a trailing newline.
func (s *Store) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", strings.Repeat(" ", s.indent))
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes v as JSON and returns the SHA-256 of the written bytes.
// Parent directories are created as needed.
func (s *Store) Save(p string, v any) (string, error) {
	data, err := s.Encode(v)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", p, err)
	}
	if err := s.WriteRaw(p, data); err != nil {
		return "", err
	}
	return Hash(data), nil
}

// WriteRaw writes data atomically: a temp file in the target directory is
// renamed over the destination.
func (s *Store) WriteRaw(p string, data []byte) error {
	dst := s.Path(p)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", p, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", p, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", p, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("rename into %s: %w", p, err)
	}
	return nil
}

// Exists reports whether p exists.
func (s *Store) Exists(p string) bool {
	_, err := os.Stat(s.Path(p))
	return err == nil
}

// Glob returns the files under the root matching any of the doublestar
// patterns, relative to the root, sorted and de-duplicated.
func (s *Store) Glob(patterns ...string) ([]string, error) {
	fsys := os.DirFS(s.root)
	seen := make(map[string]bool)
	var out []string

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, filepath.FromSlash(m))
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
