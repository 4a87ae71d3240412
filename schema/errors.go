package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrorKind discriminates the failures reported by the compilation engine.
type ErrorKind string

// Error kinds.
const (
	UnknownComponent         ErrorKind = "unknown_component"
	RequiredPropertyMissing  ErrorKind = "required_property_missing"
	PropertyTypeMismatch     ErrorKind = "property_type_mismatch"
	PropertyOutOfRange       ErrorKind = "property_out_of_range"
	PropertyArityMismatch    ErrorKind = "property_arity_mismatch"
	MalformedComponentPlugin ErrorKind = "malformed_component_plugin"

	// InvalidSchema is a definition-authoring error: a descriptor whose
	// constraint does not fit its type, a duplicate name, a bad default.
	InvalidSchema ErrorKind = "invalid_schema"
	// FragmentKeyConflict is raised when an expansion writes a key that
	// already exists at the target location.
	FragmentKeyConflict ErrorKind = "fragment_key_conflict"
	// ExpansionLimitExceeded is raised when a location does not reach a
	// fixed point within the configured number of passes.
	ExpansionLimitExceeded ErrorKind = "expansion_limit_exceeded"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrUnknownComponent         = &Error{Kind: UnknownComponent}
	ErrRequiredPropertyMissing  = &Error{Kind: RequiredPropertyMissing}
	ErrPropertyTypeMismatch     = &Error{Kind: PropertyTypeMismatch}
	ErrPropertyOutOfRange       = &Error{Kind: PropertyOutOfRange}
	ErrPropertyArityMismatch    = &Error{Kind: PropertyArityMismatch}
	ErrMalformedComponentPlugin = &Error{Kind: MalformedComponentPlugin}
	ErrInvalidSchema            = &Error{Kind: InvalidSchema}
	ErrFragmentKeyConflict      = &Error{Kind: FragmentKeyConflict}
	ErrExpansionLimitExceeded   = &Error{Kind: ExpansionLimitExceeded}
)

// Error is the single structured error type of the engine. Only the fields
// relevant to Kind are populated.
type Error struct {
	Kind      ErrorKind
	Component string
	Property  string
	Expected  string
	Actual    string
	Value     any
	Min       float64
	Max       float64
	Arity     int
	Length    int
	Source    string
	Location  string
	Key       string
	Detail    string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Location != "" {
		b.WriteString(e.Location)
		b.WriteString(": ")
	}

	switch e.Kind {
	case UnknownComponent:
		fmt.Fprintf(&b, "component %q does not exist or has not been registered", e.Component)
	case RequiredPropertyMissing:
		fmt.Fprintf(&b, "component %q: property %q is required and no value was provided", e.Component, e.Property)
	case PropertyTypeMismatch:
		fmt.Fprintf(&b, "component %q: property %q was passed as %s, expected %s", e.Component, e.Property, e.Actual, e.Expected)
	case PropertyOutOfRange:
		fmt.Fprintf(&b, "component %q: property %q value %v is outside [%s, %s]",
			e.Component, e.Property, e.Value, formatBound(e.Min), formatBound(e.Max))
	case PropertyArityMismatch:
		fmt.Fprintf(&b, "component %q: property %q has %d elements, expected %d", e.Component, e.Property, e.Length, e.Arity)
	case MalformedComponentPlugin:
		fmt.Fprintf(&b, "malformed component plugin %q", e.Source)
	case InvalidSchema:
		fmt.Fprintf(&b, "component %q: invalid schema", e.Component)
		if e.Property != "" {
			fmt.Fprintf(&b, " for property %q", e.Property)
		}
	case FragmentKeyConflict:
		fmt.Fprintf(&b, "component %q writes key %q which is already present", e.Component, e.Key)
	case ExpansionLimitExceeded:
		fmt.Fprintf(&b, "expansion did not reach a fixed point after %d passes", e.Length)
	default:
		fmt.Fprintf(&b, "schema error (%s)", e.Kind)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Kind == kind
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// NewUnknownComponent reports a virtual-component key naming no registered component.
func NewUnknownComponent(name string) *Error {
	return &Error{Kind: UnknownComponent, Component: name}
}

// NewMalformedPlugin reports a plugin that does not expose a usable definition.
func NewMalformedPlugin(source, detail string, cause error) *Error {
	return &Error{Kind: MalformedComponentPlugin, Source: source, Detail: detail, Err: cause}
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
