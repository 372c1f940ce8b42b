// File: internal/tail/event.go
// Brief: Pod identity and log event types shared across the streaming pipeline.

// Package tail implements wtail's stream reconciliation engine: a discovery
// loop that converges per-pod log streamers onto the desired pod set, the
// streamers themselves, and the bounded channel that merges their output.
package tail

import "time"

// PodIdentity is the namespace+name key identifying one streamed pod. Name
// equality is the sole identity check; a pod deleted and recreated under the
// same name within one refresh interval is treated as the same stream.
type PodIdentity struct {
	Namespace string
	Name      string
}

func (p PodIdentity) String() string {
	return p.Namespace + "/" + p.Name
}

// Event is one raw log line tagged with its source pod, flowing through the
// shared output channel. Events are consumed exactly once and never persisted.
type Event struct {
	Pod  PodIdentity
	Line string
	Time time.Time
}
