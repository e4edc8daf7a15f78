// Package flattener turns a nested JSON document into an ordered list of
// (key, scalar) entries.
//
// Objects contribute one key segment per member. Arrays are either collapsed
// into a single separator-joined string or enumerated with their indices as
// key segments; an array holding objects or arrays is always enumerated.
package flattener

import (
	"strconv"
	"strings"

	"github.com/mcncl/json2env/internal/models"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Flattener walks JSON values. It holds no per-run state and can be reused.
type Flattener struct {
	options models.Options
	logger  *zap.Logger
}

// NewFlattener creates a Flattener with the given options. A nil logger disables logging.
func NewFlattener(options models.Options, logger *zap.Logger) *Flattener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flattener{
		options: options,
		logger:  logger,
	}
}

// Flatten returns the entries of root in depth-first document order.
func (f *Flattener) Flatten(root models.JSONValue) []models.Entry {
	entries := []models.Entry{}
	f.walk(&entries, "", root)
	return entries
}

func (f *Flattener) walk(entries *[]models.Entry, key string, value models.JSONValue) {
	switch {
	case value.IsObject():
		value.ForEach(func(name, child gjson.Result) bool {
			f.walk(entries, BuildKey(key, name.String(), f.options.KeySeparator), child)
			return true
		})

	case value.IsArray():
		items := value.Array()
		if len(items) == 0 {
			return
		}
		if f.options.EnumerateArray || hasComplexElement(items) {
			if !f.options.EnumerateArray {
				f.logger.Debug("enumerating array with nested elements", zap.String("key", key))
			}
			for i, item := range items {
				f.walk(entries, BuildKey(key, strconv.Itoa(i), f.options.KeySeparator), item)
			}
			return
		}
		f.walk(entries, key, models.StringValue(f.collapse(items)))

	default:
		if key == "" {
			f.logger.Debug("scalar document root produces an empty key")
		}
		*entries = append(*entries, models.Entry{Key: strings.TrimSpace(key), Value: value})
	}
}

// collapse joins scalar array items into one string, dropping backslashes and quotes.
func (f *Flattener) collapse(items []gjson.Result) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, stripQuoting(Text(item)))
	}
	return strings.Join(parts, f.options.ArraySeparator)
}

// BuildKey appends segment to prefix using separator. An empty prefix yields segment unchanged.
func BuildKey(prefix, segment, separator string) string {
	if prefix == "" {
		return segment
	}
	return prefix + separator + segment
}

// Text returns the default textual form of a value: numbers as written in the
// source, true/false, the characters of a string, and null.
func Text(value models.JSONValue) string {
	switch value.Type {
	case gjson.Null:
		return "null"
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	case gjson.Number:
		if value.Raw != "" {
			return value.Raw
		}
		return strconv.FormatFloat(value.Num, 'f', -1, 64)
	case gjson.String:
		return value.Str
	default:
		return value.Raw
	}
}

func hasComplexElement(items []gjson.Result) bool {
	for _, item := range items {
		if item.IsObject() || item.IsArray() {
			return true
		}
	}
	return false
}

var quoteStripper = strings.NewReplacer(`\`, "", `"`, "")

func stripQuoting(s string) string {
	return quoteStripper.Replace(s)
}
