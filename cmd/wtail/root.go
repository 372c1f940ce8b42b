// File: cmd/wtail/root.go
// Brief: CLI command wiring and implementation for the root streaming command.

package main

import (
	"context"
	"errors"
	"os"

	"github.com/example/wtail/internal/config"
	"github.com/example/wtail/internal/kube"
	"github.com/example/wtail/internal/logging"
	"github.com/example/wtail/internal/render"
	"github.com/example/wtail/internal/resolve"
	"github.com/example/wtail/internal/selector"
	"github.com/example/wtail/internal/tail"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime/pkg/log"
)

func newRootCommand() *cobra.Command {
	opts := config.NewOptions()
	var kubeconfigPath string
	var kubeContext string
	logLevel := "info"
	cmd := &cobra.Command{
		Use:           "wtail",
		Short:         "Stream logs from pods and their owning workloads",
		Long:          "wtail merges the logs of many Kubernetes pods into one colorized stream, re-discovering matching pods as workloads scale up and down.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTail(cmd, opts, &kubeconfigPath, &kubeContext, &logLevel)
		},
	}
	cmd.PersistentFlags().StringVarP(&kubeconfigPath, "kubeconfig", "k", "", "Path to the kubeconfig file to use for CLI requests")
	cmd.PersistentFlags().StringVarP(&kubeContext, "context", "K", "", "Name of the kubeconfig context to use")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "Log level for wtail output (debug, info, warn, error)")
	opts.AddFlags(cmd)
	cmd.AddCommand(newVersionCommand())
	cmd.Example = `  # Follow a deployment's pods in prod-payments, only error lines
  wtail -n prod-payments -d checkout -g ERROR

  # One-shot dump of two pods without following
  wtail -n staging -p api-0 -p api-1 --no-follow

  # Pretty-print structured logs from a cronjob's pods, re-discovering every 10s
  wtail -n batch --cronjob nightly-backup -j -r 10`
	bindViper(cmd)
	return cmd
}

func runTail(cmd *cobra.Command, opts *config.Options, kubeconfigPath, kubeContext, logLevel *string) error {
	opts.KubeConfigPath = *kubeconfigPath
	opts.Context = *kubeContext
	if err := opts.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(*logLevel)
	if err != nil {
		return err
	}
	// Route client-go's klog output through the same structured logger.
	klog.SetLogger(logger)
	ctrl.SetLogger(logger)

	switch opts.ColorMode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	}
	palette := render.DefaultPalette()
	if len(opts.PodColorStrings) > 0 {
		palette, err = render.CustomPalette(opts.PodColorStrings, "--pod-colors")
		if err != nil {
			return err
		}
	}

	kubeClient, err := kube.New(opts.KubeConfigPath, opts.Context)
	if err != nil {
		return err
	}

	selectors := selector.FromOptions(opts)
	resolver := resolve.New(kubeClient.Clientset, logger)
	streamer := tail.NewLogStreamer(kubeClient.Clientset, opts, logger)
	formatter := render.Formatter{Grep: opts.Grep, PrettyJSON: opts.PrettyJSON}
	writer := render.NewWriter(os.Stdout, formatter, palette, logger)
	supervisor := tail.NewSupervisor(resolver, streamer, writer, selectors, opts, logger)

	if err := supervisor.Run(cmd.Context()); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return nil
}
