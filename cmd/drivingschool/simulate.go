package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/soz/drivingschool/internal/sim"
	"github.com/soz/drivingschool/pkg/core"
	"github.com/spf13/cobra"
)

var (
	simLicense    string
	simFault      string
	simFaultAfter int
	simLocation   string
	simTimeScale  float64
	simTick       time.Duration
	simTimeout    time.Duration
	simStatusDir  string
)

func init() {
	simulateCmd.Flags().StringVar(&simLicense, "license", string(core.LicenseCar), "license category (car, truck, moto, heli, boat)")
	simulateCmd.Flags().StringVar(&simFault, "fault", "none", "fault to commit: none, seatbelt, phone, damage, leave, speeding, undrivable, incapacitated")
	simulateCmd.Flags().IntVar(&simFaultAfter, "fault-after", 1, "checkpoints reached before the fault is committed")
	simulateCmd.Flags().StringVar(&simLocation, "location", "", "spawn location (defaults to the catalog default)")
	simulateCmd.Flags().Float64Var(&simTimeScale, "time-scale", 10, "fast-forward factor for the simulated drive")
	simulateCmd.Flags().DurationVar(&simTick, "tick", 50*time.Millisecond, "simulation step")
	simulateCmd.Flags().DurationVar(&simTimeout, "timeout", 10*time.Minute, "abort the trial after this long")
	simulateCmd.Flags().StringVar(&simStatusDir, "status-dir", "", "write a status file to this directory while running")

	rootCmd.AddCommand(simulateCmd)
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one trial against the simulated world",
	Long: `Run one exam trial against the simulated world. The simulated participant
drives to every checkpoint of the route and commits the requested fault once
monitoring is armed.

Examples:
  # Pass a car license
  drivingschool simulate

  # Fail a truck trial on the phone rule after two checkpoints
  drivingschool simulate --license truck --fault phone --fault-after 2

  # Heli trial from the heliport, with a status file
  drivingschool simulate --license heli --location heliport --status-dir ./status`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	license, err := core.ParseLicenseType(simLicense)
	if err != nil {
		return err
	}
	fault, err := sim.ParseFault(simFault)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), simTimeout)
	defer cancel()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.startExam(ctx, examOptions{TimeScale: simTimeScale, StatusDir: simStatusDir}); err != nil {
		return err
	}

	location := simLocation
	if location == "" {
		location = a.catalog.DefaultLocation
	}
	spawn, ok := a.world.Location(location)
	if !ok {
		return fmt.Errorf("unknown location %q", location)
	}

	a.logger.Info("Starting simulated trial", "license", license, "fault", string(fault), "location", location)
	record, err := sim.Run(ctx, a.sup, a.world, sim.Scenario{
		License:    license,
		SpawnPoint: spawn,
		Location:   location,
		Fault:      fault,
		FaultAfter: simFaultAfter,
		Tick:       simTick,
	}, a.records)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	printRecord(cmd.OutOrStdout(), record)
	return nil
}

func printRecord(out io.Writer, r core.TrialRecord) {
	fmt.Fprintf(out, "trial %s\n", r.ID)
	fmt.Fprintf(out, "  license:     %s (%s)\n", r.License, r.Label)
	fmt.Fprintf(out, "  outcome:     %s\n", r.Outcome)
	if r.Reason != "" {
		fmt.Fprintf(out, "  reason:      %s\n", r.Reason)
	}
	fmt.Fprintf(out, "  checkpoints: %d/%d\n", r.CheckpointsReached, r.CheckpointsTotal)
	fmt.Fprintf(out, "  duration:    %s\n", r.Duration().Round(time.Millisecond))
	if r.Incapacitated {
		fmt.Fprintln(out, "  participant incapacitated")
	}
}
