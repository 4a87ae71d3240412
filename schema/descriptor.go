package schema

import (
	"fmt"
	"math"
)

// Range is an inclusive numeric bound. Use math.Inf for an open side.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies in [Min, Max]. NaN is never contained.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Descriptor describes one named property of a component.
type Descriptor struct {
	Name        string
	Type        Type
	Range       *Range
	Arity       int // 0 means no fixed length
	DefaultVal  any
	HasDefault  bool
	Description string
}

// Int declares an integer property.
func Int(name string) Descriptor { return Descriptor{Name: name, Type: TypeInt} }

// Float declares a floating point property.
func Float(name string) Descriptor { return Descriptor{Name: name, Type: TypeFloat} }

// Bool declares a boolean property.
func Bool(name string) Descriptor { return Descriptor{Name: name, Type: TypeBool} }

// String declares a string property.
func String(name string) Descriptor { return Descriptor{Name: name, Type: TypeString} }

// ListOf declares a list property whose elements have type elem.
func ListOf(name string, elem Type) Descriptor { return Descriptor{Name: name, Type: List(elem)} }

// Vec3 declares a list<float> of exactly three elements.
func Vec3(name string) Descriptor { return ListOf(name, TypeFloat).Len(3) }

// Between constrains a numeric property to [lo, hi].
func (d Descriptor) Between(lo, hi float64) Descriptor {
	d.Range = &Range{Min: lo, Max: hi}
	return d
}

// AtLeast constrains a numeric property to [lo, +Inf].
func (d Descriptor) AtLeast(lo float64) Descriptor {
	return d.Between(lo, math.Inf(1))
}

// Len fixes the length of a list property.
func (d Descriptor) Len(n int) Descriptor {
	d.Arity = n
	return d
}

// Default makes the property optional with the given value.
func (d Descriptor) Default(v any) Descriptor {
	d.DefaultVal = v
	d.HasDefault = true
	return d
}

// Describe attaches help text shown by the CLI.
func (d Descriptor) Describe(text string) Descriptor {
	d.Description = text
	return d
}

// Required reports whether the property has no default.
func (d Descriptor) Required() bool {
	return !d.HasDefault
}

// check verifies the descriptor is well formed. It does not look at other
// descriptors of the schema.
func (d Descriptor) check() error {
	if d.Name == "" {
		return fmt.Errorf("property name is empty")
	}
	if d.Type.Kind < KindInt || d.Type.Kind > KindList {
		return fmt.Errorf("unknown type %s", d.Type)
	}
	if d.Type.Kind == KindList && d.Type.Elem == nil {
		return fmt.Errorf("list type without element type")
	}
	if d.Range != nil {
		if !d.Type.IsNumeric() {
			return fmt.Errorf("range constraint on non-numeric type %s", d.Type)
		}
		if math.IsNaN(d.Range.Min) || math.IsNaN(d.Range.Max) {
			return fmt.Errorf("range bound is NaN")
		}
		if d.Range.Min > d.Range.Max {
			return fmt.Errorf("range min %v greater than max %v", d.Range.Min, d.Range.Max)
		}
	}
	if d.Arity != 0 {
		if !d.Type.IsList() {
			return fmt.Errorf("arity constraint on non-list type %s", d.Type)
		}
		if d.Arity < 0 {
			return fmt.Errorf("negative arity %d", d.Arity)
		}
	}
	return nil
}
