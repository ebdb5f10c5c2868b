package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"codeblue-sim/internal/config"
	"codeblue-sim/internal/logging"
	"codeblue-sim/internal/streak"
)

var (
	streakDB     string
	streakConfig string
	streakWon    bool
	streakJSON   bool
)

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Inspect or update the persisted win streak",
}

var streakShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current streak and tier",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *streak.Tracker) error {
			rec := t.Load(cmd.Context())
			return printStreak(cmd.OutOrStdout(), t.Tiers(), rec)
		})
	},
}

var streakRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Apply a scenario outcome to the streak",
	Long:  "record applies a win (--won) or a loss to the persisted streak and prints the result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *streak.Tracker) error {
			rec, err := t.Record(cmd.Context(), streakWon)
			if err != nil {
				return err
			}
			return printStreak(cmd.OutOrStdout(), t.Tiers(), rec)
		})
	},
}

// withTracker opens the streak store named by --db or the config file.
func withTracker(cmd *cobra.Command, fn func(*streak.Tracker) error) error {
	cfg := config.Default()
	if streakConfig != "" {
		var err error
		if cfg, err = config.Load(streakConfig, ""); err != nil {
			return err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if cmd.Flags().Changed("db") {
		cfg.Streak.DB = streakDB
	}

	cmd.SetContext(logging.NewContext(cmd.Context(), logging.NewWithLevel(cmd.ErrOrStderr(), cfg.LogLevel)))
	store, err := streak.OpenSQLite(cfg.Streak.DB)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(streak.NewTracker(store, cfg.TierTable()))
}

func printStreak(w io.Writer, tiers streak.Table, rec streak.Record) error {
	tier, ok := tiers.Lookup(rec.CurrentStreak)
	if streakJSON {
		out := struct {
			streak.Record
			Tier *streak.Tier `json:"tier,omitempty"`
		}{Record: rec}
		if ok {
			out.Tier = &tier
		}
		return json.NewEncoder(w).Encode(out)
	}
	label := "none"
	if ok {
		label = fmt.Sprintf("%s (x%.2f XP, +%d funds)", tier.Label, tier.XPMultiplier, tier.FundsBonus)
	}
	_, err := fmt.Fprintf(w, "current streak: %d\nbest streak:    %d\ntier:           %s\n", rec.CurrentStreak, rec.BestStreak, label)
	return err
}

func init() {
	streakCmd.PersistentFlags().StringVar(&streakDB, "db", config.DefaultStreakDB, "Path to the streak database")
	streakCmd.PersistentFlags().StringVar(&streakConfig, "config", "", "Path to simulation configuration YAML")
	streakCmd.PersistentFlags().BoolVar(&streakJSON, "json", false, "Print the record as JSON")
	streakRecordCmd.Flags().BoolVar(&streakWon, "won", false, "Record a win (default records a loss)")
	streakCmd.AddCommand(streakShowCmd, streakRecordCmd)
}
