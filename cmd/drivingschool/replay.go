package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/soz/drivingschool/internal/dispatcher"
	"github.com/soz/drivingschool/internal/exam"
	"github.com/spf13/cobra"
)

var (
	replayTimeScale float64
	replayTick      time.Duration
	replayStatusDir string
)

func init() {
	replayCmd.Flags().Float64Var(&replayTimeScale, "time-scale", 10, "fast-forward factor for the simulated drive")
	replayCmd.Flags().DurationVar(&replayTick, "tick", 50*time.Millisecond, "simulation step")
	replayCmd.Flags().StringVar(&replayStatusDir, "status-dir", "", "write a status file to this directory while running")

	rootCmd.AddCommand(replayCmd)
}

var replayCmd = &cobra.Command{
	Use:   "replay [script]",
	Short: "Feed host commands to the exam from a script",
	Long: `Replay a script of host commands against the simulated world, the way the
game host would send them. Each line holds a command and its packed arguments.
Two extra directives control timing: "wait <duration>" pauses the script and
"wait-end [timeout]" blocks until the running trial has finished.
Blank lines and lines starting with # are skipped. Reads stdin when the script
is "-" or missing.

Examples:
  # script.txt
  :EXAM:SETUP: car|[230.17,372.40,106.01,159.0]|driving_school
  wait 1s
  :EXAM:STATUS:
  wait-end 5m

  drivingschool replay script.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		in = f
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.startExam(ctx, examOptions{TimeScale: replayTimeScale, StatusDir: replayStatusDir}); err != nil {
		return err
	}

	runner := exam.NewRunner(a.sup)
	runner.Start(ctx)
	defer runner.Stop()
	go a.world.Drive(ctx, replayTick)

	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(in)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := a.replayLine(ctx, out, line); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

// parseScriptLine splits a script line into its command and packed arguments.
func parseScriptLine(line string) (string, []string) {
	command, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return command, nil
	}
	return command, []string{rest}
}

func (a *app) replayLine(ctx context.Context, out io.Writer, line string) error {
	command, args := parseScriptLine(line)

	switch command {
	case "wait":
		if len(args) == 0 {
			return fmt.Errorf("wait: missing duration")
		}
		d, err := time.ParseDuration(args[0])
		if err != nil {
			return fmt.Errorf("wait: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
		return nil

	case "wait-end":
		timeout := 10 * time.Minute
		if len(args) > 0 {
			d, err := time.ParseDuration(args[0])
			if err != nil {
				return fmt.Errorf("wait-end: %w", err)
			}
			timeout = d
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(timeout):
			return fmt.Errorf("wait-end: no trial finished within %s", timeout)
		case record := <-a.records:
			printRecord(out, record)
		}
		return nil
	}

	result, err := a.dispatcher.Dispatch(dispatcher.Event{
		Command:   command,
		Args:      args,
		Timestamp: time.Now(),
	})
	if err != nil {
		fmt.Fprintf(out, "%s -> error: %v\n", command, err)
		return nil
	}
	if result != nil {
		fmt.Fprintf(out, "%s -> %v\n", command, result)
	}
	return nil
}
