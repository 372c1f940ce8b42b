// File: internal/config/config.go
// Brief: Internal config package implementation for 'config'.

// Package config defines the flag plumbing and runtime options for wtail,
// translating Cobra/Viper flag values into a strongly typed struct consumed
// by the resolver, supervisor, and output writer.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Options holds all CLI configuration used by the streamer.
type Options struct {
	Namespace       string
	Pods            []string
	Deployments     []string
	StatefulSets    []string
	DaemonSets      []string
	Jobs            []string
	CronJobs        []string
	Follow          bool
	NoFollow        bool
	Grep            string
	PrettyJSON      bool
	RefreshSeconds  int
	RefreshInterval time.Duration
	TailLines       int64
	SinceRaw        string
	Since           time.Duration
	ColorMode       string
	PodColorStrings []string
	KubeConfigPath  string
	Context         string
}

// NewOptions returns Options with defaults applied.
func NewOptions() *Options {
	return &Options{
		Follow:         true,
		RefreshSeconds: 30,
		TailLines:      -1,
		ColorMode:      "auto",
	}
}

// AddFlags binds configuration flags to the provided Cobra command.
func (o *Options) AddFlags(cmd *cobra.Command) {
	o.BindFlags(cmd.Flags())
}

// BindFlags attaches streamer flags to an arbitrary FlagSet and returns the
// flag names for further customization.
func (o *Options) BindFlags(fs *pflag.FlagSet) []string {
	var names []string
	fs.StringVarP(&o.Namespace, "namespace", "n", "", "Kubernetes namespace to stream from (required)")
	names = append(names, "namespace")
	fs.StringSliceVarP(&o.Pods, "pod", "p", nil, "Pod name to stream; repeat or use comma-separated values for multiple")
	names = append(names, "pod")
	fs.StringSliceVarP(&o.Deployments, "deployment", "d", nil, "Deployment whose pods should be streamed; repeat for multiple")
	names = append(names, "deployment")
	fs.StringSliceVar(&o.StatefulSets, "statefulset", nil, "StatefulSet whose pods should be streamed; repeat for multiple")
	names = append(names, "statefulset")
	fs.StringSliceVar(&o.DaemonSets, "daemonset", nil, "DaemonSet whose pods should be streamed; repeat for multiple")
	names = append(names, "daemonset")
	fs.StringSliceVar(&o.Jobs, "job", nil, "Job whose pods should be streamed; repeat for multiple")
	names = append(names, "job")
	fs.StringSliceVar(&o.CronJobs, "cronjob", nil, "CronJob whose pods should be streamed; repeat for multiple")
	names = append(names, "cronjob")
	fs.BoolVarP(&o.Follow, "follow", "f", true, "Follow log output")
	names = append(names, "follow")
	fs.BoolVar(&o.NoFollow, "no-follow", false, "Alias for --follow=false")
	names = append(names, "no-follow")
	fs.StringVarP(&o.Grep, "grep", "g", "", "Only emit log lines containing this substring")
	names = append(names, "grep")
	fs.BoolVarP(&o.PrettyJSON, "pretty-json", "j", false, "Pretty-print log lines that parse as JSON objects")
	names = append(names, "pretty-json")
	fs.IntVarP(&o.RefreshSeconds, "refresh", "r", 30, "Pod re-discovery interval in seconds; 0 resolves once and never re-discovers")
	names = append(names, "refresh")
	fs.Int64VarP(&o.TailLines, "tail", "t", -1, "Number of historic log lines to show per pod, -1 for all available")
	names = append(names, "tail")
	fs.StringVarP(&o.SinceRaw, "since", "s", "", "Return logs newer than a relative duration like 5s, 2m, or 3h")
	names = append(names, "since")
	fs.StringVarP(&o.ColorMode, "color", "m", "auto", "Force set color output. 'auto': colorize if tty attached, 'always': always colorize, 'never': never colorize")
	names = append(names, "color")
	fs.StringSliceVar(&o.PodColorStrings, "pod-colors", nil, "Comma-separated SGR color codes used to color pod names (e.g. \"91,92,93\")")
	names = append(names, "pod-colors")
	return names
}

// Validate ensures provided options are coherent and derives computed fields.
func (o *Options) Validate() error {
	o.Namespace = strings.TrimSpace(o.Namespace)
	if o.Namespace == "" {
		return fmt.Errorf("--namespace is required")
	}
	o.Pods = trimList(o.Pods)
	o.Deployments = trimList(o.Deployments)
	o.StatefulSets = trimList(o.StatefulSets)
	o.DaemonSets = trimList(o.DaemonSets)
	o.Jobs = trimList(o.Jobs)
	o.CronJobs = trimList(o.CronJobs)
	total := len(o.Pods) + len(o.Deployments) + len(o.StatefulSets) + len(o.DaemonSets) + len(o.Jobs) + len(o.CronJobs)
	if total == 0 {
		return fmt.Errorf("at least one --pod, --deployment, --statefulset, --daemonset, --job, or --cronjob is required")
	}
	if o.RefreshSeconds < 0 {
		return fmt.Errorf("--refresh cannot be negative")
	}
	o.RefreshInterval = time.Duration(o.RefreshSeconds) * time.Second
	if o.TailLines < -1 {
		return fmt.Errorf("--tail cannot be less than -1")
	}
	if o.SinceRaw != "" {
		dur, err := time.ParseDuration(o.SinceRaw)
		if err != nil {
			return fmt.Errorf("invalid since duration %q: %w", o.SinceRaw, err)
		}
		if dur < 0 {
			return fmt.Errorf("--since cannot be negative")
		}
		o.Since = dur
	}
	if o.NoFollow {
		o.Follow = false
	}
	switch strings.ToLower(o.ColorMode) {
	case "", "auto":
		o.ColorMode = "auto"
	case "always":
		o.ColorMode = "always"
	case "never":
		o.ColorMode = "never"
	default:
		return fmt.Errorf("invalid --color value %q (allowed: auto, always, never)", o.ColorMode)
	}
	return nil
}

func trimList(values []string) []string {
	var out []string
	for _, val := range values {
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
