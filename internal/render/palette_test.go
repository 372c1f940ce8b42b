// palette_test.go covers SGR palette parsing.
package render

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestCustomPaletteSupportsMultiAttribute(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() {
		color.NoColor = prev
	})
	palette, err := CustomPalette([]string{"38;2;255;97;136"}, "--pod-colors")
	if err != nil {
		t.Fatalf("CustomPalette returned error: %v", err)
	}
	if len(palette) != 1 {
		t.Fatalf("expected single palette entry, got %d", len(palette))
	}
	got := palette[0].Sprint("demo")
	if !strings.Contains(got, "\x1b[38;2;255;97;136m") {
		t.Fatalf("missing expected SGR prefix in %q", got)
	}
}

func TestCustomPaletteSplitsCommaLists(t *testing.T) {
	palette, err := CustomPalette([]string{"91,92", "93"}, "--pod-colors")
	if err != nil {
		t.Fatalf("CustomPalette returned error: %v", err)
	}
	if len(palette) != 3 {
		t.Fatalf("expected 3 palette entries, got %d", len(palette))
	}
}

func TestCustomPaletteRejectsGarbage(t *testing.T) {
	if _, err := CustomPalette([]string{"red"}, "--pod-colors"); err == nil {
		t.Fatalf("expected error for non-numeric SGR value")
	}
	if _, err := CustomPalette([]string{" , "}, "--pod-colors"); err == nil {
		t.Fatalf("expected error when no values survive parsing")
	}
}

func TestPaletteIndexIsDeterministic(t *testing.T) {
	if paletteIndex("ns1/p1", 11) != paletteIndex("ns1/p1", 11) {
		t.Fatalf("palette index must be stable for a seed")
	}
}
