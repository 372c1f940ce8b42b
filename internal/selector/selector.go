// File: internal/selector/selector.go
// Brief: Internal selector package implementation for 'selector'.

// Package selector models the user-facing pod selection criteria: explicit
// pod names or owning workload resources, always scoped to one namespace.
package selector

import (
	"fmt"

	"github.com/example/wtail/internal/config"
)

// Kind enumerates the resource kinds a selector can target.
type Kind string

const (
	KindPod         Kind = "pod"
	KindDeployment  Kind = "deployment"
	KindStatefulSet Kind = "statefulset"
	KindDaemonSet   Kind = "daemonset"
	KindJob         Kind = "job"
	KindCronJob     Kind = "cronjob"
)

// Selector identifies pods to stream, either directly by pod name or through
// an owning workload resource. Immutable after construction.
type Selector struct {
	Kind      Kind
	Name      string
	Namespace string
}

func (s Selector) String() string {
	return fmt.Sprintf("%s/%s", s.Kind, s.Name)
}

// FromOptions expands the configured name lists into a deduplicated selector
// list. Order follows the option fields so discovery logs stay predictable.
func FromOptions(opts *config.Options) []Selector {
	var out []Selector
	seen := make(map[Selector]struct{})
	add := func(kind Kind, names []string) {
		for _, name := range names {
			sel := Selector{Kind: kind, Name: name, Namespace: opts.Namespace}
			if _, ok := seen[sel]; ok {
				continue
			}
			seen[sel] = struct{}{}
			out = append(out, sel)
		}
	}
	add(KindPod, opts.Pods)
	add(KindDeployment, opts.Deployments)
	add(KindStatefulSet, opts.StatefulSets)
	add(KindDaemonSet, opts.DaemonSets)
	add(KindJob, opts.Jobs)
	add(KindCronJob, opts.CronJobs)
	return out
}
