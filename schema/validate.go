package schema

import (
	"encoding/json"
	"math"
	"reflect"
)

// Validate checks raw against the schema of component and returns a new,
// fully populated property map. raw is never modified.
//
// Declared properties are visited in schema order. A missing (or null)
// property takes its default or fails with RequiredPropertyMissing. Present
// values are type checked, then range checked, then arity checked.
// Undeclared keys are copied through unchanged.
func Validate(component string, s Schema, raw map[string]any) (Properties, error) {
	out := make(Properties, len(raw)+len(s.descriptors))
	for k, v := range raw {
		if _, declared := s.index[k]; !declared {
			out[k] = v
		}
	}

	for _, d := range s.descriptors {
		v, ok := raw[d.Name]
		if !ok || v == nil {
			if !d.HasDefault {
				return nil, &Error{Kind: RequiredPropertyMissing, Component: component, Property: d.Name}
			}
			out[d.Name] = CloneValue(d.DefaultVal)
			continue
		}

		nv, err := checkValue(component, d, v)
		if err != nil {
			return nil, err
		}
		out[d.Name] = nv
	}

	return out, nil
}

func checkValue(component string, d Descriptor, v any) (any, error) {
	nv, ok := coerce(d.Type, v)
	if !ok {
		return nil, &Error{
			Kind:      PropertyTypeMismatch,
			Component: component,
			Property:  d.Name,
			Expected:  d.Type.String(),
			Actual:    TypeName(v),
		}
	}

	if d.Range != nil {
		f, _ := toFloat(nv)
		if !d.Range.Contains(f) {
			return nil, &Error{
				Kind:      PropertyOutOfRange,
				Component: component,
				Property:  d.Name,
				Value:     nv,
				Min:       d.Range.Min,
				Max:       d.Range.Max,
			}
		}
	}

	if d.Arity > 0 {
		list := nv.([]any)
		if len(list) != d.Arity {
			return nil, &Error{
				Kind:      PropertyArityMismatch,
				Component: component,
				Property:  d.Name,
				Length:    len(list),
				Arity:     d.Arity,
			}
		}
	}

	return nv, nil
}

// coerce returns v normalised to the Go representation of t: int, float64,
// bool, string or []any. The second result is false on a type mismatch.
func coerce(t Type, v any) (any, bool) {
	switch t.Kind {
	case KindInt:
		return toInt(v)
	case KindFloat:
		return toFloat(v)
	case KindBool:
		b, ok := v.(bool)
		return b, ok
	case KindString:
		s, ok := v.(string)
		return s, ok
	case KindList:
		items, ok := toSlice(v)
		if !ok {
			return nil, false
		}
		out := make([]any, len(items))
		for i, item := range items {
			ev, ok := coerce(*t.Elem, item)
			if !ok {
				return nil, false
			}
			out[i] = ev
		}
		return out, true
	}
	return nil, false
}

// toInt accepts Go integer kinds and json.Number literals that parse as
// integers. Floats never satisfy int, even integral ones.
func toInt(v any) (any, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt64 {
			return nil, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return nil, false
		}
		return int(i), true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func toSlice(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		// raw bytes are not a list value
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// TypeName names the dynamic type of a decoded JSON value for diagnostics.
func TypeName(v any) string {
	switch n := v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "string"
	case map[string]any:
		return "object"
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return "int"
		}
		return "float"
	}
	if _, ok := toInt(v); ok {
		return "int"
	}
	if _, ok := toFloat(v); ok {
		return "float"
	}
	if items, ok := toSlice(v); ok {
		if len(items) == 0 {
			return "list"
		}
		return "list<" + TypeName(items[0]) + ">"
	}
	return reflect.TypeOf(v).String()
}
