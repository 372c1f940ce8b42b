// File: internal/resolve/resolve.go
// Brief: Selector-to-pod resolution against the Kubernetes read API.

// Package resolve turns selectors into the set of pods they currently match.
// Workload selectors take two dependent reads per cycle: get the workload
// for its pod-label selector, then list pods matching those labels.
// Resolution is a pure read; it never mutates supervisor state.
package resolve

import (
	"context"
	"fmt"

	"github.com/example/wtail/internal/selector"
	"github.com/example/wtail/internal/tail"
	"github.com/go-logr/logr"
	batchv1 "k8s.io/api/batch/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Reason classifies a resolution failure coarsely enough for the supervisor
// to log, skip the selector for the cycle, and retry next cycle.
type Reason string

const (
	ReasonNotFound  Reason = "not-found"
	ReasonForbidden Reason = "forbidden"
	ReasonTransient Reason = "transient"
)

// ResolutionError wraps a failed selector resolution with its classification.
type ResolutionError struct {
	Selector selector.Selector
	Reason   Reason
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %s: %v", e.Selector, e.Reason, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Resolver resolves selectors using the typed Kubernetes read API.
type Resolver struct {
	client kubernetes.Interface
	log    logr.Logger
}

// New creates a Resolver bound to the given clientset.
func New(client kubernetes.Interface, logger logr.Logger) *Resolver {
	return &Resolver{client: client, log: logger.WithName("resolver")}
}

// Resolve returns the pods currently matched by sel.
func (r *Resolver) Resolve(ctx context.Context, sel selector.Selector) ([]tail.PodIdentity, error) {
	switch sel.Kind {
	case selector.KindPod:
		return r.resolvePod(ctx, sel)
	case selector.KindDeployment, selector.KindStatefulSet, selector.KindDaemonSet, selector.KindJob:
		labelSel, err := r.workloadSelector(ctx, sel)
		if err != nil {
			return nil, err
		}
		return r.podsForSelector(ctx, sel, labelSel)
	case selector.KindCronJob:
		return r.resolveCronJob(ctx, sel)
	default:
		return nil, &ResolutionError{Selector: sel, Reason: ReasonTransient, Err: fmt.Errorf("unknown selector kind %q", sel.Kind)}
	}
}

func (r *Resolver) resolvePod(ctx context.Context, sel selector.Selector) ([]tail.PodIdentity, error) {
	pod, err := r.client.CoreV1().Pods(sel.Namespace).Get(ctx, sel.Name, metav1.GetOptions{})
	if err != nil {
		return nil, wrap(sel, err)
	}
	return []tail.PodIdentity{{Namespace: pod.Namespace, Name: pod.Name}}, nil
}

// workloadSelector reads the named workload and extracts its pod-label selector.
func (r *Resolver) workloadSelector(ctx context.Context, sel selector.Selector) (*metav1.LabelSelector, error) {
	switch sel.Kind {
	case selector.KindDeployment:
		d, err := r.client.AppsV1().Deployments(sel.Namespace).Get(ctx, sel.Name, metav1.GetOptions{})
		if err != nil {
			return nil, wrap(sel, err)
		}
		return d.Spec.Selector, nil
	case selector.KindStatefulSet:
		ss, err := r.client.AppsV1().StatefulSets(sel.Namespace).Get(ctx, sel.Name, metav1.GetOptions{})
		if err != nil {
			return nil, wrap(sel, err)
		}
		return ss.Spec.Selector, nil
	case selector.KindDaemonSet:
		ds, err := r.client.AppsV1().DaemonSets(sel.Namespace).Get(ctx, sel.Name, metav1.GetOptions{})
		if err != nil {
			return nil, wrap(sel, err)
		}
		return ds.Spec.Selector, nil
	case selector.KindJob:
		j, err := r.client.BatchV1().Jobs(sel.Namespace).Get(ctx, sel.Name, metav1.GetOptions{})
		if err != nil {
			return nil, wrap(sel, err)
		}
		return j.Spec.Selector, nil
	default:
		return nil, &ResolutionError{Selector: sel, Reason: ReasonTransient, Err: fmt.Errorf("kind %q has no pod selector", sel.Kind)}
	}
}

// resolveCronJob resolves through the cronjob's owned Jobs: job templates do
// not normally carry a pod selector, so the pods of each Job controlled by
// the cronjob are unioned instead.
func (r *Resolver) resolveCronJob(ctx context.Context, sel selector.Selector) ([]tail.PodIdentity, error) {
	cj, err := r.client.BatchV1().CronJobs(sel.Namespace).Get(ctx, sel.Name, metav1.GetOptions{})
	if err != nil {
		return nil, wrap(sel, err)
	}
	jobs, err := r.client.BatchV1().Jobs(sel.Namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrap(sel, err)
	}
	seen := make(map[tail.PodIdentity]struct{})
	var out []tail.PodIdentity
	for i := range jobs.Items {
		job := &jobs.Items[i]
		if !ownedBy(job, cj) {
			continue
		}
		ids, err := r.podsForSelector(ctx, sel, job.Spec.Selector)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, nil
}

// podsForSelector lists pods in the selector's namespace matching the
// workload's pod-label selector.
func (r *Resolver) podsForSelector(ctx context.Context, sel selector.Selector, labelSel *metav1.LabelSelector) ([]tail.PodIdentity, error) {
	if labelSel == nil {
		return nil, &ResolutionError{Selector: sel, Reason: ReasonNotFound, Err: fmt.Errorf("workload does not declare a pod selector")}
	}
	set, err := metav1.LabelSelectorAsSelector(labelSel)
	if err != nil {
		return nil, &ResolutionError{Selector: sel, Reason: ReasonTransient, Err: fmt.Errorf("convert label selector: %w", err)}
	}
	pods, err := r.client.CoreV1().Pods(sel.Namespace).List(ctx, metav1.ListOptions{LabelSelector: set.String()})
	if err != nil {
		return nil, wrap(sel, err)
	}
	ids := make([]tail.PodIdentity, 0, len(pods.Items))
	for i := range pods.Items {
		pod := &pods.Items[i]
		ids = append(ids, tail.PodIdentity{Namespace: pod.Namespace, Name: pod.Name})
	}
	return ids, nil
}

func ownedBy(job *batchv1.Job, cj *batchv1.CronJob) bool {
	for _, ref := range job.OwnerReferences {
		if ref.UID == cj.UID && ref.Kind == "CronJob" {
			return true
		}
	}
	return false
}

func wrap(sel selector.Selector, err error) error {
	return &ResolutionError{Selector: sel, Reason: classify(err), Err: err}
}

func classify(err error) Reason {
	switch {
	case apierrors.IsNotFound(err):
		return ReasonNotFound
	case apierrors.IsForbidden(err) || apierrors.IsUnauthorized(err):
		return ReasonForbidden
	default:
		return ReasonTransient
	}
}
