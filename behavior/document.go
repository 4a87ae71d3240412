// Package behavior models behavior-pack asset documents: entities, items
// and blocks as decoded JSON.
package behavior

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind is the top-level key that holds an asset definition.
type Kind string

const (
	KindEntity Kind = "minecraft:entity"
	KindItem   Kind = "minecraft:item"
	KindBlock  Kind = "minecraft:block"
)

// Kinds lists every asset kind in lookup order.
var Kinds = []Kind{KindEntity, KindItem, KindBlock}

// Short returns the kind without its namespace, e.g. "entity".
func (k Kind) Short() string {
	return strings.TrimPrefix(string(k), "minecraft:")
}

// ErrNoAsset is returned when a document holds no entity, item or block.
var ErrNoAsset = errors.New("document has no minecraft:entity, minecraft:item or minecraft:block")

// ErrNoIdentifier is returned when an asset has no description.identifier.
var ErrNoIdentifier = errors.New("asset is missing description.identifier")

// Document is a decoded behavior file.
type Document struct {
	data map[string]any
	kind Kind
}

// Parse decodes a behavior file. Numbers are kept as json.Number so that
// values outside expanded components round-trip unchanged.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode behavior file: %w", err)
	}
	return New(m)
}

// New wraps already-decoded data.
func New(data map[string]any) (*Document, error) {
	for _, k := range Kinds {
		if _, ok := data[string(k)].(map[string]any); ok {
			return &Document{data: data, kind: k}, nil
		}
	}
	return nil, ErrNoAsset
}

// Data returns the underlying map. Changes to it are visible to the document.
func (d *Document) Data() map[string]any { return d.data }

// Kind returns the asset kind.
func (d *Document) Kind() Kind { return d.kind }

// Root returns the asset object, e.g. the value of "minecraft:entity".
func (d *Document) Root() map[string]any {
	return d.data[string(d.kind)].(map[string]any)
}

// Description returns the asset description, creating it if absent.
func (d *Document) Description() map[string]any {
	root := d.Root()
	desc, ok := root["description"].(map[string]any)
	if !ok {
		desc = make(map[string]any)
		root["description"] = desc
	}
	return desc
}

// Identifier returns description.identifier.
func (d *Document) Identifier() (string, error) {
	id, _ := d.Description()["identifier"].(string)
	if id == "" {
		return "", ErrNoIdentifier
	}
	return id, nil
}

// Name returns the identifier without its namespace.
func (d *Document) Name() (string, error) {
	id, err := d.Identifier()
	if err != nil {
		return "", err
	}
	return id[strings.LastIndex(id, ":")+1:], nil
}

// HasComponent reports whether components or any component group holds key.
func (d *Document) HasComponent(key string) bool {
	root := d.Root()
	if c, ok := root["components"].(map[string]any); ok {
		if _, ok := c[key]; ok {
			return true
		}
	}
	groups, _ := root["component_groups"].(map[string]any)
	for _, g := range groups {
		if gm, ok := g.(map[string]any); ok {
			if _, ok := gm[key]; ok {
				return true
			}
		}
	}
	return false
}

// LangEntries returns the translation lines the asset needs, in
// "key=Text" form.
func (d *Document) LangEntries() []string {
	id, err := d.Identifier()
	if err != nil || d.kind != KindEntity {
		return nil
	}
	var out []string
	if d.HasComponent("minecraft:rideable") {
		name, _ := d.Name()
		out = append(out, fmt.Sprintf("action.hint.exit.%s=Tap Sneak To Exit %s", id, name))
	}
	return out
}

// Bytes encodes the document with the given indent width, keys sorted and
// a trailing newline.
func (d *Document) Bytes(indent int) ([]byte, error) {
	return Encode(d.data, indent)
}

// Encode renders v as indented JSON without HTML escaping.
func Encode(v any, indent int) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", strings.Repeat(" ", indent))
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}
