package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeblue-sim/internal/config"
	"codeblue-sim/internal/logging"
	"codeblue-sim/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a complication event log",
	Long:  "replay feeds event rows from a JSONL log back into GreptimeDB or STDOUT, keeping their original spacing.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		if replaySpeed <= 0 {
			return fmt.Errorf("speed must be positive")
		}
		ctx, stop := signal.NotifyContext(logging.NewContext(cmd.Context(), logging.New()), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		writer, err := replayWriter(replayPrintOnly)
		if err != nil {
			return err
		}
		defer closeAll([]sim.Writer{writer})
		return sim.ReplayLogFile(ctx, replayInput, writer, replaySpeed)
	},
}

// replayWriter sends rows to GreptimeDB when GREPTIMEDB_ENDPOINT is set and
// printOnly is false, and to STDOUT otherwise.
func replayWriter(printOnly bool) (sim.Writer, error) {
	if !printOnly {
		if gc := greptimeConfig(config.Default()); gc != nil {
			return sim.NewGreptimeDBWriter(gc.Host, gc.Database)
		}
	}
	return stdoutWriter(nil, printOnly), nil
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to event log file (JSONL)")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print events to STDOUT instead of writing to DB")
	replayCmd.MarkFlagRequired("input")
}
