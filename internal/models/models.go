package models

import "github.com/tidwall/gjson"

// Default separators used when neither a flag nor a config file sets them.
const (
	DefaultKeySeparator   = "__"
	DefaultArraySeparator = ","
)

// JSONValue is any parsed JSON value: null, boolean, number, string, array or object.
// Object members keep their document order and numbers keep their source text (Raw).
type JSONValue = gjson.Result

// IntermediateRepresentation holds the parsed JSON document handed to the flattener.
type IntermediateRepresentation struct {
	Root        JSONValue
	RootIsArray bool // True if the root of the JSON is an array vs an object
}

// Options controls how keys are built and how arrays are treated.
type Options struct {
	KeySeparator   string
	ArraySeparator string
	EnumerateArray bool
}

// DefaultOptions returns Options with the default separators and collapsed arrays.
func DefaultOptions() Options {
	return Options{
		KeySeparator:   DefaultKeySeparator,
		ArraySeparator: DefaultArraySeparator,
		EnumerateArray: false,
	}
}

// Entry is one flattened variable: a key and the scalar value assigned to it.
type Entry struct {
	Key   string
	Value JSONValue
}

// StringValue wraps s as a JSON string value.
func StringValue(s string) JSONValue {
	return gjson.Result{Type: gjson.String, Str: s}
}

// IsScalar reports whether v is null, a boolean, a number or a string.
func IsScalar(v JSONValue) bool {
	return v.Type != gjson.JSON
}
