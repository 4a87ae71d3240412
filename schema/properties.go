package schema

// Properties is a validated property map. Declared properties hold
// normalised values (int, float64, bool, string, []any).
type Properties map[string]any

// Get returns the raw value for name.
func (p Properties) Get(name string) (any, bool) {
	v, ok := p[name]
	return v, ok
}

// Int returns an integer property, or 0.
func (p Properties) Int(name string) int {
	v, _ := toInt(p[name])
	i, _ := v.(int)
	return i
}

// Float returns a numeric property as float64, or 0.
func (p Properties) Float(name string) float64 {
	f, _ := toFloat(p[name])
	return f
}

// Bool returns a boolean property, or false.
func (p Properties) Bool(name string) bool {
	b, _ := p[name].(bool)
	return b
}

// String returns a string property, or "".
func (p Properties) String(name string) string {
	s, _ := p[name].(string)
	return s
}

// List returns a copy of a list property.
func (p Properties) List(name string) []any {
	items, ok := toSlice(p[name])
	if !ok {
		return nil
	}
	return CloneValue(items).([]any)
}

// Floats returns a list property as []float64; non-numbers become 0.
func (p Properties) Floats(name string) []float64 {
	items, _ := toSlice(p[name])
	out := make([]float64, len(items))
	for i, item := range items {
		out[i], _ = toFloat(item)
	}
	return out
}

// Strings returns a list property as []string; non-strings become "".
func (p Properties) Strings(name string) []string {
	items, _ := toSlice(p[name])
	out := make([]string, len(items))
	for i, item := range items {
		out[i], _ = item.(string)
	}
	return out
}

// CloneValue deep-copies decoded JSON values (maps and slices). Scalars
// are returned as is.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = CloneValue(e)
		}
		return out
	case Properties:
		out := make(Properties, len(t))
		for k, e := range t {
			out[k] = CloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []float64:
		out := make([]float64, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}
