package schema

import (
	"fmt"
)

// Schema is the ordered set of property descriptors of one component.
type Schema struct {
	descriptors []Descriptor
	index       map[string]int
}

// New builds a schema from descriptors. It rejects duplicate names,
// constraints that do not fit the property type and defaults that would not
// pass validation themselves.
func New(descriptors ...Descriptor) (Schema, error) {
	s := Schema{
		descriptors: make([]Descriptor, 0, len(descriptors)),
		index:       make(map[string]int, len(descriptors)),
	}

	for _, d := range descriptors {
		if err := d.check(); err != nil {
			return Schema{}, &Error{Kind: InvalidSchema, Property: d.Name, Detail: err.Error()}
		}
		if _, dup := s.index[d.Name]; dup {
			return Schema{}, &Error{Kind: InvalidSchema, Property: d.Name, Detail: "duplicate property name"}
		}

		if d.HasDefault {
			nv, err := checkValue("", d, d.DefaultVal)
			if err != nil {
				return Schema{}, &Error{Kind: InvalidSchema, Property: d.Name, Detail: "default value rejected", Err: err}
			}
			d.DefaultVal = nv
		}

		s.index[d.Name] = len(s.descriptors)
		s.descriptors = append(s.descriptors, d)
	}

	return s, nil
}

// Must is like New but panics on error. Intended for compiled-in components
// whose schemas are fixed at build time.
func Must(descriptors ...Descriptor) Schema {
	s, err := New(descriptors...)
	if err != nil {
		panic(fmt.Sprintf("schema: %v", err))
	}
	return s
}

// Descriptors returns the descriptors in declaration order.
func (s Schema) Descriptors() []Descriptor {
	out := make([]Descriptor, len(s.descriptors))
	copy(out, s.descriptors)
	return out
}

// Lookup returns the descriptor for name.
func (s Schema) Lookup(name string) (Descriptor, bool) {
	i, ok := s.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return s.descriptors[i], true
}

// Len returns the number of declared properties.
func (s Schema) Len() int {
	return len(s.descriptors)
}
