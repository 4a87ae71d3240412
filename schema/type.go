// Package schema describes the property schemas that virtual components
// declare and validates raw, user-authored property maps against them.
package schema

import (
	"fmt"
	"strings"
)

// Kind is the primitive kind of a property type.
type Kind int

// Primitive kinds supported by property descriptors.
const (
	KindInt Kind = iota + 1
	KindFloat
	KindBool
	KindString
	KindList
)

// String returns the type name used in diagnostics and plugin files.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Type is a property type: a scalar kind or a list of an element type.
type Type struct {
	Kind Kind
	Elem *Type // set only for KindList
}

// Scalar types.
var (
	TypeInt    = Type{Kind: KindInt}
	TypeFloat  = Type{Kind: KindFloat}
	TypeBool   = Type{Kind: KindBool}
	TypeString = Type{Kind: KindString}
)

// List returns the list-of-elem type.
func List(elem Type) Type {
	e := elem
	return Type{Kind: KindList, Elem: &e}
}

// IsNumeric reports whether range constraints apply to the type.
func (t Type) IsNumeric() bool {
	return t.Kind == KindInt || t.Kind == KindFloat
}

// IsList reports whether arity constraints apply to the type.
func (t Type) IsList() bool {
	return t.Kind == KindList
}

// String renders the type as "int", "list<float>", "list<list<int>>".
func (t Type) String() string {
	if t.Kind == KindList {
		if t.Elem == nil {
			return "list<?>"
		}
		return "list<" + t.Elem.String() + ">"
	}
	return t.Kind.String()
}

// Equal reports whether two types are structurally identical.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	if t.Kind != KindList {
		return true
	}
	if t.Elem == nil || other.Elem == nil {
		return t.Elem == other.Elem
	}
	return t.Elem.Equal(*other.Elem)
}

// ParseType parses the textual form produced by Type.String.
// "integer", "number" and "boolean" are accepted as aliases.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "int", "integer":
		return TypeInt, nil
	case "float", "number":
		return TypeFloat, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "string", "str":
		return TypeString, nil
	}
	if strings.HasPrefix(s, "list<") && strings.HasSuffix(s, ">") {
		elem, err := ParseType(s[len("list<") : len(s)-1])
		if err != nil {
			return Type{}, err
		}
		return List(elem), nil
	}
	return Type{}, fmt.Errorf("unknown property type %q", s)
}
