package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gridsentry/upswatch/simulator"
)

var simCfg simulator.Config

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Publish synthetic UPS fleet telemetry",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simCfg.Broker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	simulateCmd.Flags().IntVar(&simCfg.Count, "count", 10, "number of simulated units")
	simulateCmd.Flags().IntVar(&simCfg.IntervalSeconds, "interval", 10, "publish interval in seconds")
	simulateCmd.Flags().StringVar(&simCfg.StatePrefix, "state-prefix", "ups/state", "state topic prefix")
	simulateCmd.Flags().Float64Var(&simCfg.DegradedPct, "degraded", 0.2, "fraction of degraded units")
	simulateCmd.Flags().Int64Var(&simCfg.Seed, "seed", 0, "rng seed, 0 seeds from the clock")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim, err := simulator.New(simCfg)
	if err != nil {
		return err
	}
	return sim.Run(ctx)
}
