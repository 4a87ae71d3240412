package expand

import "sort"

// AssetRoots are the top-level keys that hold an asset's definition, in
// lookup order.
var AssetRoots = []string{"minecraft:entity", "minecraft:item", "minecraft:block"}

// Location is one component-bearing object of a document.
type Location struct {
	// Path names the location, e.g. "minecraft:entity/component_groups/baby".
	Path string
	// Node is the live object; expansion edits it in place.
	Node map[string]any
}

// AssetRoot returns the object holding components and the key it lives
// under. A document with a top-level "components" object is its own root
// and the key is empty.
func AssetRoot(doc map[string]any) (map[string]any, string) {
	for _, key := range AssetRoots {
		if root, ok := doc[key].(map[string]any); ok {
			return root, key
		}
	}
	if _, ok := doc["components"].(map[string]any); ok {
		return doc, ""
	}
	return nil, ""
}

// Locations returns the component-bearing locations of doc: "components"
// first, then each component group in name order.
func Locations(doc map[string]any) []Location {
	root, prefix := AssetRoot(doc)
	if root == nil {
		return nil
	}

	var locs []Location
	if c, ok := root["components"].(map[string]any); ok {
		locs = append(locs, Location{Path: join(prefix, "components"), Node: c})
	}

	groups, ok := root["component_groups"].(map[string]any)
	if !ok {
		return locs
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if g, ok := groups[name].(map[string]any); ok {
			locs = append(locs, Location{Path: join(prefix, "component_groups/"+name), Node: g})
		}
	}
	return locs
}

func join(prefix, p string) string {
	if prefix == "" {
		return p
	}
	return prefix + "/" + p
}
