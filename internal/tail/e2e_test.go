package tail_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/wtail/internal/config"
	"github.com/example/wtail/internal/render"
	"github.com/example/wtail/internal/selector"
	"github.com/example/wtail/internal/tail"
	"github.com/fatih/color"
	"github.com/go-logr/logr"
)

type scriptedResolver struct {
	ids []tail.PodIdentity
}

func (r *scriptedResolver) Resolve(ctx context.Context, sel selector.Selector) ([]tail.PodIdentity, error) {
	return r.ids, nil
}

type scriptedStreamer struct {
	lines map[tail.PodIdentity][]string
}

func (s *scriptedStreamer) Stream(ctx context.Context, id tail.PodIdentity, events chan<- tail.Event) error {
	for _, line := range s.lines[id] {
		select {
		case events <- tail.Event{Pod: id, Line: line, Time: time.Now()}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// lockedBuffer makes bytes.Buffer safe for the writer goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Two pods stream interleaved lines; only the line matching the filter must
// reach the output, prefixed with its pod identity.
func TestPipelineFiltersAndTagsMergedStreams(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	p1 := tail.PodIdentity{Namespace: "ns1", Name: "p1"}
	p2 := tail.PodIdentity{Namespace: "ns1", Name: "p2"}
	resolver := &scriptedResolver{ids: []tail.PodIdentity{p1, p2}}
	streamer := &scriptedStreamer{lines: map[tail.PodIdentity][]string{
		p1: {"INFO start", "ERROR boom"},
		p2: {"INFO ok"},
	}}

	out := &lockedBuffer{}
	formatter := render.Formatter{Grep: "ERROR"}
	writer := render.NewWriter(out, formatter, render.DefaultPalette(), logr.Discard())

	opts := &config.Options{Follow: false, RefreshInterval: 0}
	sels := []selector.Selector{{Kind: selector.KindDeployment, Name: "web", Namespace: "ns1"}}
	s := tail.NewSupervisor(resolver, streamer, writer, sels, opts, logr.Discard())

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	got := strings.TrimRight(out.String(), "\n")
	if got == "" {
		t.Fatalf("no output produced")
	}
	lines := strings.Split(got, "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line past the filter, got %q", lines)
	}
	if !strings.Contains(lines[0], "ns1/p1") || !strings.Contains(lines[0], "ERROR boom") {
		t.Fatalf("unexpected output line %q", lines[0])
	}
}
