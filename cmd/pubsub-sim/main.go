// Package main is a demonstration driver for the publishsubscribe bus.
// It runs a simulated frame loop: every frame publishes a burst of events
// and drains them through a budgeted dispatch call, the way a game loop
// would.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var opts simOptions

	root := &cobra.Command{
		Use:           "pubsub-sim",
		Short:         "Simulated game loop exercising the publishsubscribe bus",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSim(opts)
		},
	}

	defaults := defaultSimOptions()
	root.Flags().IntVar(&opts.Frames, "frames", defaults.Frames, "Number of frames to simulate")
	root.Flags().IntVar(&opts.EventsPerFrame, "events-per-frame", defaults.EventsPerFrame, "Events published per frame")
	root.Flags().IntVar(&opts.BudgetMS, "budget-ms", defaults.BudgetMS, "Dispatch budget per frame in milliseconds (0 = one event per frame)")
	root.Flags().BoolVar(&opts.Exhaustive, "exhaustive", defaults.Exhaustive, "Dispatch without a budget")
	root.Flags().StringVar(&opts.ConfigPath, "config", defaults.ConfigPath, "Path to a TOML bus configuration file")
	root.Flags().StringVar(&opts.LogLevel, "log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
	root.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", defaults.MetricsAddr, "Address to serve Prometheus metrics on (empty = disabled)")
	root.Flags().Int64Var(&opts.Seed, "seed", defaults.Seed, "Random seed for the event mix")

	return root
}
