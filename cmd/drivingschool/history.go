package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/soz/drivingschool/internal/api"
	"github.com/soz/drivingschool/internal/config"
	"github.com/soz/drivingschool/internal/database"
	"github.com/soz/drivingschool/pkg/core"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyGrants bool
	historyDump   bool
	historyUpload bool
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of trials to list, 0 for all")
	historyCmd.Flags().BoolVar(&historyGrants, "grants", false, "list license grants instead of trials")
	historyCmd.Flags().BoolVar(&historyDump, "dump", false, "dump the in-memory sqlite database to storage.sqlite.dumpPath")
	historyCmd.Flags().BoolVar(&historyUpload, "upload", false, "upload every .db file next to storage.sqlite.dumpPath to the license service")

	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show finished trials and license grants",
	Long: `Show the trial history kept by the configured storage backend.

Examples:
  # Last 20 trials
  drivingschool history

  # Every license granted so far
  drivingschool history --grants

  # Upload sqlite dumps to the license service
  drivingschool history --upload`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

// errNoDump is returned by --dump on backends that cannot dump.
var errNoDump = errors.New("storage backend does not support dumps")

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if historyGrants {
		grants, err := a.backend.ListLicenseGrants(ctx)
		if err != nil {
			return fmt.Errorf("failed to list license grants: %w", err)
		}
		printGrants(out, grants)
	} else {
		trials, err := a.backend.ListTrials(ctx, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list trials: %w", err)
		}
		printTrials(out, trials)
	}

	if historyDump {
		d, ok := a.backend.(interface{ Dump() error })
		if !ok {
			return errNoDump
		}
		if err := d.Dump(); err != nil {
			return err
		}
		fmt.Fprintln(out, "dumped to", config.GetStorageConfig().SQLite.DumpPath)
	}

	if historyUpload {
		cfg := config.GetAPIConfig()
		client := api.New(cfg.ServerURL, cfg.APIKey)
		dir := filepath.Dir(config.GetStorageConfig().SQLite.DumpPath)
		paths, err := database.GetBackupDBPaths(dir)
		if err != nil {
			return fmt.Errorf("failed to find backups in %s: %w", dir, err)
		}
		for _, p := range paths {
			if err := client.UploadHistory(ctx, p); err != nil {
				a.logger.Error("Failed to upload history", "path", p, "error", err)
				continue
			}
			fmt.Fprintln(out, "uploaded", p)
		}
	}
	return nil
}

func printTrials(out io.Writer, trials []core.TrialRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tLICENSE\tOUTCOME\tREASON\tCHECKPOINTS\tDURATION\tID")
	for _, t := range trials {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			t.StartedAt.Format(time.DateTime),
			t.License,
			t.Outcome,
			t.Reason,
			t.CheckpointsReached, t.CheckpointsTotal,
			t.Duration().Round(time.Second),
			t.ID)
	}
	_ = w.Flush()
}

func printGrants(out io.Writer, grants []core.LicenseGrant) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GRANTED\tLICENSE\tLABEL\tTRIAL")
	for _, g := range grants {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.GrantedAt.Format(time.DateTime), g.License, g.Label, g.TrialID)
	}
	_ = w.Flush()
}
