// File: internal/tail/streamer.go
// Brief: Per-pod log streaming over the Kubernetes API.

package tail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/example/wtail/internal/config"
	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/client-go/kubernetes"
)

const (
	logScannerInitial = 64 * 1024
	logScannerMax     = 1024 * 1024

	attachBackoffMin = 250 * time.Millisecond
	attachBackoffMax = 2 * time.Second
)

// Streamer attaches to one pod's log endpoint and emits raw lines to the
// shared event channel until the stream ends or ctx is cancelled.
type Streamer interface {
	Stream(ctx context.Context, id PodIdentity, events chan<- Event) error
}

// LogStreamer streams container logs through the Kubernetes API. One call to
// Stream owns exactly one long-lived log connection; it never restarts a
// stream that ended mid-flight, that is the supervisor's job on the next
// discovery cycle.
type LogStreamer struct {
	client         kubernetes.Interface
	opts           *config.Options
	log            logr.Logger
	scannerBuffers sync.Pool
}

// NewLogStreamer creates a LogStreamer bound to the given clientset.
func NewLogStreamer(client kubernetes.Interface, opts *config.Options, logger logr.Logger) *LogStreamer {
	return &LogStreamer{
		client: client,
		opts:   opts,
		log:    logger.WithName("streamer"),
		scannerBuffers: sync.Pool{
			New: func() interface{} {
				buf := make([]byte, logScannerInitial)
				return &buf
			},
		},
	}
}

// Stream opens the pod's log endpoint and pushes every line to events. A
// full channel blocks the send (backpressure); lines are never dropped.
// Attach attempts against a container that is still starting are retried
// with a capped backoff; any other failure ends the stream.
func (s *LogStreamer) Stream(ctx context.Context, id PodIdentity, events chan<- Event) error {
	logOpts := &corev1.PodLogOptions{Follow: s.opts.Follow}
	if s.opts.TailLines >= 0 {
		tail := s.opts.TailLines
		logOpts.TailLines = &tail
	}
	if s.opts.Since > 0 {
		seconds := int64(s.opts.Since.Seconds())
		logOpts.SinceSeconds = &seconds
	}

	backoff := attachBackoffMin
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		stream, err := s.client.CoreV1().Pods(id.Namespace).GetLogs(id.Name, logOpts).Stream(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if isWaitingToStart(err) {
				s.log.V(1).Info("log stream unavailable yet; retrying", "pod", id.String(), "error", err.Error(), "backoff", backoff.String())
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(backoff):
				}
				if backoff < attachBackoffMax {
					backoff *= 2
					if backoff > attachBackoffMax {
						backoff = attachBackoffMax
					}
				}
				continue
			}
			return fmt.Errorf("open log stream for %s: %w", id, err)
		}
		err = s.scan(ctx, id, stream, events)
		_ = stream.Close()
		return err
	}
}

func (s *LogStreamer) scan(ctx context.Context, id PodIdentity, stream io.ReadCloser, events chan<- Event) error {
	scanner := bufio.NewScanner(stream)
	buf := s.getScannerBuffer()
	defer s.putScannerBuffer(buf)
	scanner.Buffer(buf, logScannerMax)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ev := Event{Pod: id, Line: scanner.Text(), Time: time.Now()}
		select {
		case events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF && !isContextErr(err) {
		return fmt.Errorf("read log stream for %s: %w", id, err)
	}
	return nil
}

// isWaitingToStart reports whether a log attach failed only because the
// container has not produced logs yet. The apiserver returns BadRequest with
// messages like "container \"X\" in pod \"Y\" is waiting to start: ContainerCreating".
func isWaitingToStart(err error) bool {
	if err == nil {
		return false
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		apiStatus, ok := e.(apierrors.APIStatus)
		if !ok {
			continue
		}
		msg := strings.ToLower(apiStatus.Status().Message)
		if strings.Contains(msg, "is waiting to start") {
			return true
		}
		if strings.Contains(msg, "containercreating") || strings.Contains(msg, "podinitializing") {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "is waiting to start") {
		return true
	}
	return strings.Contains(msg, "containercreating") || strings.Contains(msg, "podinitializing")
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (s *LogStreamer) getScannerBuffer() []byte {
	if buf, ok := s.scannerBuffers.Get().(*[]byte); ok && buf != nil {
		return (*buf)[:logScannerInitial]
	}
	return make([]byte, logScannerInitial)
}

func (s *LogStreamer) putScannerBuffer(buf []byte) {
	if buf == nil || cap(buf) < logScannerInitial {
		return
	}
	buf = buf[:logScannerInitial]
	s.scannerBuffers.Put(&buf)
}
