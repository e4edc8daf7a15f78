package formatter

import (
	"strings"

	"github.com/mcncl/json2env/internal/models"
	"github.com/tidwall/gjson"
)

// Formatter renders flattened entries as shell-style KEY=VALUE lines
type Formatter struct{}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format renders a single entry. Strings are double-quoted with embedded quotes
// escaped; null, booleans and numbers are written bare, numbers in their source
// text. A value that is not a scalar renders as an empty string.
func (f *Formatter) Format(entry models.Entry) string {
	if !models.IsScalar(entry.Value) {
		return ""
	}
	switch entry.Value.Type {
	case gjson.Null:
		return entry.Key + "=null"
	case gjson.True:
		return entry.Key + "=true"
	case gjson.False:
		return entry.Key + "=false"
	case gjson.Number:
		return entry.Key + "=" + numberText(entry.Value)
	case gjson.String:
		return entry.Key + `="` + strings.ReplaceAll(entry.Value.Str, `"`, `\"`) + `"`
	}
	return ""
}

// Render formats every entry and joins the lines with "\n", without a trailing newline.
func (f *Formatter) Render(entries []models.Entry) string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, f.Format(entry))
	}
	return strings.Join(lines, "\n")
}

func numberText(v gjson.Result) string {
	if v.Raw != "" {
		return v.Raw
	}
	return v.String()
}
