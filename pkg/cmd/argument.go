package cmd

import "fmt"

// ArgType is a primitive type name or the identifier of a registered custom
// type resolver.
type ArgType string

const (
	TypeString          ArgType = "string"
	TypeInteger         ArgType = "integer"
	TypeUnsignedInteger ArgType = "unsigned-integer"
	TypeNonZeroInteger  ArgType = "non-zero-integer"
	TypeBoolean         ArgType = "boolean"
)

// Primitive reports whether t is one of the built-in types.
func (t ArgType) Primitive() bool {
	switch t {
	case TypeString, TypeInteger, TypeUnsignedInteger, TypeNonZeroInteger, TypeBoolean:
		return true
	}
	return false
}

// Argument is one slot of a command's schema.
type Argument struct {
	Name        string
	Type        ArgType
	Required    bool
	Description string

	// Default is assigned as-is when no token is available. DefaultFunc
	// takes precedence over Default.
	Default     any
	DefaultFunc DefaultFunc

	// Short is a single-character flag name ("-v"). Every argument can also
	// be supplied as a long flag ("--name").
	Short string
}

func (a Argument) hasDefault() bool {
	return a.DefaultFunc != nil || a.Default != nil
}

type absent struct{}

func (absent) String() string { return "<absent>" }

// Absent marks an optional argument that received no value and has no
// default. It is always present in Args so every schema slot has an entry.
var Absent any = absent{}

// Args maps argument names to resolved values. Integers are int64, booleans
// bool, strings string; custom types hold whatever their resolver returned.
type Args map[string]any

// Has reports whether name received a value (parsed or defaulted).
func (a Args) Has(name string) bool {
	v, ok := a[name]
	return ok && v != Absent
}

// Get returns the value for name, or nil when absent.
func (a Args) Get(name string) any {
	v, ok := a[name]
	if !ok || v == Absent {
		return nil
	}
	return v
}

// String returns name as a string; non-string values are formatted.
func (a Args) String(name string) string {
	switch v := a.Get(name).(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int returns name as int64, zero when absent or not an integer.
func (a Args) Int(name string) int64 {
	switch v := a.Get(name).(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// Bool returns name as bool, false when absent or not a boolean.
func (a Args) Bool(name string) bool {
	v, _ := a.Get(name).(bool)
	return v
}
