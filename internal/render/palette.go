// File: internal/render/palette.go
// Brief: Color palettes and hashing helpers for pod name rendering.

package render

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// DefaultPalette returns the vibrant color rotation used when rendering pod
// prefixes.
func DefaultPalette() []*color.Color {
	return []*color.Color{
		color.New(color.Bold, color.FgHiCyan),
		color.New(color.Bold, color.FgHiMagenta),
		color.New(color.Bold, color.FgHiGreen),
		color.New(color.Bold, color.FgHiYellow),
		color.New(color.Bold, color.FgHiBlue),
		color.New(color.Bold, color.FgHiRed),
		color.New(color.FgHiMagenta, color.BgBlack),
		color.New(color.FgHiBlue, color.BgBlack),
		color.New(color.FgHiGreen, color.BgBlack),
		color.New(color.FgHiCyan, color.BgBlack),
		color.New(color.FgHiYellow, color.BgBlack),
	}
}

// CustomPalette parses comma-separated SGR sequences (";"-joined attributes)
// into a palette, e.g. "91,92" or "38;2;255;97;136".
func CustomPalette(values []string, origin string) ([]*color.Color, error) {
	var palette []*color.Color
	for _, entry := range values {
		for _, seq := range strings.Split(entry, ",") {
			seq = strings.TrimSpace(seq)
			if seq == "" {
				continue
			}
			var attrs []color.Attribute
			for _, part := range strings.Split(seq, ";") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				attrVal, err := strconv.Atoi(part)
				if err != nil {
					return nil, fmt.Errorf("invalid SGR value %q in %s: %w", part, origin, err)
				}
				attrs = append(attrs, color.Attribute(attrVal))
			}
			if len(attrs) == 0 {
				continue
			}
			palette = append(palette, color.New(attrs...))
		}
	}
	if len(palette) == 0 {
		return nil, fmt.Errorf("no valid SGR values provided for %s", origin)
	}
	return palette, nil
}

func paletteIndex(seed string, length int) int {
	if length == 0 {
		return 0
	}
	hasher := fnv.New32a()
	_, _ = hasher.Write([]byte(seed))
	return int(hasher.Sum32()) % length
}
