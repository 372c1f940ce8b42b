// File: internal/render/format.go
// Brief: Pure line-level output policy: substring filtering and JSON pretty-printing.

// Package render owns wtail's console output: the pure line formatter and
// the single writer that drains the merged event stream with stable per-pod
// colors.
package render

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Formatter applies the line-level output policy. Filtering is a pure
// predicate on the raw line; the JSON transform changes only formatting,
// never inclusion.
type Formatter struct {
	Grep       string
	PrettyJSON bool
}

// Format returns the text to emit for a raw log line, or false when the
// line is filtered out.
func (f Formatter) Format(line string) (string, bool) {
	if f.Grep != "" && !strings.Contains(line, f.Grep) {
		return "", false
	}
	if f.PrettyJSON {
		if pretty, ok := prettyJSONLine(line); ok {
			return pretty, true
		}
	}
	return line, true
}

var (
	tsKeys    = []string{"ts", "timestamp", "time"}
	msgKeys   = []string{"msg", "message", "log"}
	levelKeys = []string{"level", "lvl", "severity"}
)

// prettyJSONLine condenses a structured log line to "[level] ts: msg" with
// the usual key fallbacks. Only JSON objects are rewritten; scalars, arrays,
// and anything that fails to parse pass through verbatim.
func prettyJSONLine(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return "", false
	}
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &data); err != nil {
		return "", false
	}
	level := firstString(data, levelKeys, "INFO")
	ts := firstString(data, tsKeys, "no-ts")
	msg := firstString(data, msgKeys, "no-msg")
	return fmt.Sprintf("[%s] %s: %s", level, ts, msg), true
}

func firstString(data map[string]interface{}, keys []string, fallback string) string {
	for _, key := range keys {
		if val, ok := data[key]; ok {
			if str, ok := val.(string); ok {
				return str
			}
		}
	}
	return fallback
}
