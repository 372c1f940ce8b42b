// File: internal/render/writer.go
// Brief: Single consumer draining the merged event stream to the terminal.

package render

import (
	"context"
	"fmt"
	"io"

	"github.com/example/wtail/internal/tail"
	"github.com/fatih/color"
	"github.com/go-logr/logr"
)

// Writer is the single consumer of the merged event stream. It applies the
// formatter, assigns each pod a stable color, and writes one line per event
// in arrival order. A write failure is fatal; there is no degraded mode for
// an unwritable console.
type Writer struct {
	out       io.Writer
	formatter Formatter
	palette   []*color.Color
	log       logr.Logger
	// colors is touched only by the Run goroutine. Assignments are never
	// removed, so a pod that disappears and reappears keeps its color.
	colors map[tail.PodIdentity]*color.Color
}

// NewWriter creates a Writer emitting to out with the given palette.
func NewWriter(out io.Writer, formatter Formatter, palette []*color.Color, logger logr.Logger) *Writer {
	return &Writer{
		out:       out,
		formatter: formatter,
		palette:   palette,
		log:       logger.WithName("writer"),
		colors:    make(map[tail.PodIdentity]*color.Color),
	}
}

// Run drains events until the channel is closed. It keeps draining through
// context cancellation so accepted lines are never silently lost; the
// supervisor closes the channel once every streamer has exited.
func (w *Writer) Run(ctx context.Context, events <-chan tail.Event) error {
	for ev := range events {
		text, ok := w.formatter.Format(ev.Line)
		if !ok {
			continue
		}
		prefix := w.colorFor(ev.Pod).Sprint(ev.Pod.String())
		if _, err := fmt.Fprintf(w.out, "%s %s\n", prefix, text); err != nil {
			return fmt.Errorf("write log line: %w", err)
		}
	}
	return nil
}

// colorFor returns the pod's color, assigning one on first sight. The first
// assignment hashes the identity into the palette and probes forward past
// colors already held by other pods; once assigned, a color is stable for
// the process lifetime.
func (w *Writer) colorFor(id tail.PodIdentity) *color.Color {
	if c, ok := w.colors[id]; ok {
		return c
	}
	c := w.pickColor(id.String())
	w.colors[id] = c
	return c
}

func (w *Writer) pickColor(seed string) *color.Color {
	if len(w.palette) == 0 {
		return color.New()
	}
	inUse := make(map[*color.Color]struct{}, len(w.colors))
	for _, c := range w.colors {
		inUse[c] = struct{}{}
	}
	start := paletteIndex(seed, len(w.palette))
	for offset := 0; offset < len(w.palette); offset++ {
		candidate := w.palette[(start+offset)%len(w.palette)]
		if _, taken := inUse[candidate]; !taken {
			return candidate
		}
	}
	return w.palette[start]
}
