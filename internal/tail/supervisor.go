// File: internal/tail/supervisor.go
// Brief: Reconciliation engine converging per-pod streamers onto the desired pod set.

package tail

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/example/wtail/internal/config"
	"github.com/example/wtail/internal/selector"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// eventBuffer bounds the shared output channel. A slow consumer backpressures
// every streamer equally instead of dropping lines.
const eventBuffer = 1024

// Resolver yields the pods currently matched by one selector.
type Resolver interface {
	Resolve(ctx context.Context, sel selector.Selector) ([]PodIdentity, error)
}

// Consumer drains the merged event stream. Run must keep draining until the
// channel is closed and return any write failure, which is fatal.
type Consumer interface {
	Run(ctx context.Context, events <-chan Event) error
}

type streamState struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Supervisor periodically resolves the configured selectors, diffs the
// desired pod set against the running streamers, and starts or cancels
// streamers to converge. The active map is the only mutable shared state;
// discovery and streamer self-completion both touch it under mu.
type Supervisor struct {
	resolver  Resolver
	streamer  Streamer
	consumer  Consumer
	selectors []selector.Selector
	opts      *config.Options
	log       logr.Logger

	mu sync.Mutex
	// active holds at most one streamState per identity. draining holds
	// identities whose cancellation was requested but whose goroutine has
	// not confirmed exit yet; those are not restarted until confirmed, so
	// two streamers never run for one identity.
	active   map[PodIdentity]*streamState
	draining map[PodIdentity]*streamState

	events chan Event
	wg     sync.WaitGroup
}

// NewSupervisor wires the reconciliation engine. Selectors and opts are
// immutable for the supervisor's lifetime.
func NewSupervisor(resolver Resolver, streamer Streamer, consumer Consumer, selectors []selector.Selector, opts *config.Options, logger logr.Logger) *Supervisor {
	return &Supervisor{
		resolver:  resolver,
		streamer:  streamer,
		consumer:  consumer,
		selectors: selectors,
		opts:      opts,
		log:       logger.WithName("supervisor"),
		active:    make(map[PodIdentity]*streamState),
		draining:  make(map[PodIdentity]*streamState),
		events:    make(chan Event, eventBuffer),
	}
}

// Run drives discovery, streaming, and output until ctx is cancelled or,
// when not following, until all initial streams complete naturally. A clean
// interrupt returns nil; a consumer write failure propagates.
func (s *Supervisor) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return s.consumer.Run(ctx, s.events)
	})
	eg.Go(func() error {
		defer close(s.events)
		watchDone := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				s.stopAll()
			case <-watchDone:
			}
		}()
		err := s.discoverLoop(ctx)
		if s.opts.Follow {
			s.stopAll()
		}
		s.wg.Wait()
		close(watchDone)
		return err
	})
	err := eg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// discoverLoop runs one reconciliation immediately, then ticks every refresh
// interval while following. A refresh interval of zero resolves once and
// never re-discovers; without follow a single pass is always enough because
// the initial streams drain to end-of-log and complete.
func (s *Supervisor) discoverLoop(ctx context.Context) error {
	s.reconcile(ctx)
	if !s.opts.Follow {
		return nil
	}
	if s.opts.RefreshInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(s.opts.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.reconcile(ctx)
		}
	}
}

// reconcile performs one discovery cycle: resolve every selector, union the
// results, and converge the active set. A failing selector is logged and
// skipped so the rest of the cycle proceeds.
func (s *Supervisor) reconcile(ctx context.Context) {
	desired := make(map[PodIdentity]struct{})
	for _, sel := range s.selectors {
		ids, err := s.resolver.Resolve(ctx, sel)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Error(err, "resolve selector", "selector", sel.String())
			continue
		}
		for _, id := range ids {
			desired[id] = struct{}{}
		}
	}

	var toStart []PodIdentity
	var toStop []PodIdentity
	var stopStates []*streamState
	s.mu.Lock()
	for id := range desired {
		if _, ok := s.active[id]; ok {
			continue
		}
		if _, ok := s.draining[id]; ok {
			// Previous cancellation not confirmed stopped yet; retry next cycle.
			continue
		}
		toStart = append(toStart, id)
	}
	for id, state := range s.active {
		if _, ok := desired[id]; ok {
			continue
		}
		delete(s.active, id)
		s.draining[id] = state
		toStop = append(toStop, id)
		stopStates = append(stopStates, state)
	}
	s.mu.Unlock()

	for i, state := range stopStates {
		s.log.Info("stopping stream", "pod", toStop[i].String())
		state.cancel()
	}
	sort.Slice(toStart, func(i, j int) bool { return toStart[i].String() < toStart[j].String() })
	for _, id := range toStart {
		if ctx.Err() != nil {
			return
		}
		s.startStream(ctx, id)
	}
}

func (s *Supervisor) startStream(ctx context.Context, id PodIdentity) {
	streamCtx, cancel := context.WithCancel(ctx)
	state := &streamState{cancel: cancel, done: make(chan struct{})}
	s.mu.Lock()
	if _, ok := s.active[id]; ok {
		s.mu.Unlock()
		cancel()
		return
	}
	s.active[id] = state
	s.mu.Unlock()
	s.log.Info("starting stream", "pod", id.String())
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.streamer.Stream(streamCtx, id, s.events)
		cancel()
		close(state.done)
		s.finish(id, state, err)
	}()
}

// finish records a streamer's exit. It races safely with the discovery
// loop's cancellation of the same identity; the state-pointer compare keeps
// removal idempotent whichever side runs last.
func (s *Supervisor) finish(id PodIdentity, state *streamState, err error) {
	s.mu.Lock()
	if cur, ok := s.active[id]; ok && cur == state {
		delete(s.active, id)
	}
	if cur, ok := s.draining[id]; ok && cur == state {
		delete(s.draining, id)
	}
	s.mu.Unlock()
	switch {
	case err == nil || isContextErr(err):
		s.log.V(1).Info("stream finished", "pod", id.String())
	default:
		// Stream failure: the pod is re-resolved and restarted on the next
		// cycle if still desired, bounding retries by the refresh interval.
		s.log.Error(err, "stream ended", "pod", id.String())
	}
}

// stopAll requests cancellation of every active streamer without waiting for
// the underlying streams to close.
func (s *Supervisor) stopAll() {
	s.mu.Lock()
	states := make([]*streamState, 0, len(s.active))
	for id, state := range s.active {
		delete(s.active, id)
		s.draining[id] = state
		states = append(states, state)
	}
	s.mu.Unlock()
	for _, state := range states {
		state.cancel()
	}
}

// ActivePods returns the identities currently being streamed, sorted for
// deterministic inspection.
func (s *Supervisor) ActivePods() []PodIdentity {
	s.mu.Lock()
	ids := make([]PodIdentity, 0, len(s.active))
	for id := range s.active {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
