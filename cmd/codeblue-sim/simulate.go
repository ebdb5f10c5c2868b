package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"codeblue-sim/internal/admin"
	"codeblue-sim/internal/catalog"
	"codeblue-sim/internal/complication"
	"codeblue-sim/internal/config"
	"codeblue-sim/internal/logging"
	"codeblue-sim/internal/scenario"
	"codeblue-sim/internal/sim"
	"codeblue-sim/internal/streak"
)

var (
	simConfigPath string
	simSchemaPath string
	simScenario   string
	simDifficulty int
	simSeed       uint64
	simPrintOnly  bool
	simLogFile    string
	simTUI        bool
	simAdminAddr  string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a patient scenario",
	Long:  "simulate runs one scenario in real time, raising complications that must be acknowledged before their deadline.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var logOut io.Writer = os.Stderr
		if cfg.Output.TUI {
			// The TUI owns the terminal.
			logOut = io.Discard
		}
		log := logging.NewWithLevel(logOut, cfg.LogLevel)
		ctx, stop := signal.NotifyContext(logging.NewContext(cmd.Context(), log), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sc, key, err := resolveScenario(cfg)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cfg.CatalogFile)
		if err != nil {
			return err
		}
		tick, err := cfg.Tick()
		if err != nil {
			return err
		}

		store, err := streak.OpenSQLite(cfg.Streak.DB)
		if err != nil {
			return err
		}
		defer store.Close()
		tracker := streak.NewTracker(store, cfg.TierTable())

		var hub *admin.Hub
		if cfg.Admin.Addr != "" {
			hub = admin.NewHub(log)
		}
		writers, err := newWriters(cfg, &sc, hub, simPrintOnly)
		if err != nil {
			return err
		}
		writer := sim.NewMultiWriter(writers...)
		defer writer.Close()

		var rng complication.RandomSource
		if cfg.Seed != 0 {
			rng = complication.NewSeededSource(cfg.Seed)
		}
		session, err := sim.NewSession(sim.Options{
			SessionID:    cfg.SessionID,
			ScenarioKey:  key,
			Scenario:     sc,
			Catalog:      cat,
			Difficulty:   cfg.Difficulty,
			TickInterval: tick,
			RNG:          rng,
			Writer:       writer,
			Tracker:      tracker,
			Reward:       sim.RewardConfig{BaseXP: cfg.Reward.BaseXP, BaseFunds: cfg.Reward.BaseFunds},
		})
		if err != nil {
			return err
		}

		if hub != nil {
			go hub.Run(ctx)
			srv := admin.NewServer(session, tracker, hub)
			go func() {
				log.Info("admin UI listening", "addr", cfg.Admin.Addr)
				if err := srv.Start(ctx, cfg.Admin.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("admin server failed", "error", err)
					writer.SetAdminStatus(false)
				}
			}()
			writer.SetAdminStatus(true)
		}

		res := session.Run(ctx)
		if res == nil {
			log.Info("session abandoned", "session", session.ID())
			return nil
		}
		logResult(log, res)
		return nil
	},
}

func loadConfig(cmd *cobra.Command) (*config.SimulationConfig, error) {
	cfg := config.Default()
	if simConfigPath != "" {
		var err error
		if cfg, err = config.Load(simConfigPath, simSchemaPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("scenario") {
		cfg.Scenario, cfg.ScenarioFile = simScenario, ""
	}
	if flags.Changed("difficulty") {
		if simDifficulty < 1 || simDifficulty > complication.MaxDifficulty {
			return nil, fmt.Errorf("difficulty must be between 1 and %d", complication.MaxDifficulty)
		}
		cfg.Difficulty = simDifficulty
	}
	if flags.Changed("seed") {
		cfg.Seed = simSeed
	}
	if flags.Changed("log-file") {
		cfg.Output.File = simLogFile
	}
	if flags.Changed("tui") {
		cfg.Output.TUI = simTUI
	}
	if flags.Changed("admin") {
		cfg.Admin.Addr = simAdminAddr
	}
	return cfg, nil
}

// resolveScenario returns the scenario to run and the key it is logged under.
func resolveScenario(cfg *config.SimulationConfig) (scenario.Scenario, string, error) {
	if cfg.ScenarioFile != "" {
		sc, err := scenario.Load(cfg.ScenarioFile)
		if err != nil {
			return scenario.Scenario{}, "", err
		}
		key := strings.TrimSuffix(filepath.Base(cfg.ScenarioFile), filepath.Ext(cfg.ScenarioFile))
		return *sc, key, nil
	}
	sc, ok := scenario.Lookup(cfg.Scenario)
	if !ok {
		return scenario.Scenario{}, "", fmt.Errorf("unknown scenario %q (available: %s)", cfg.Scenario, strings.Join(scenarioNames(), ", "))
	}
	return sc, cfg.Scenario, nil
}

func scenarioNames() []string {
	var names []string
	for name := range scenario.BuiltIn() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// loadCatalog extends the built-in catalog with entries from path.
func loadCatalog(path string) (*catalog.Catalog, error) {
	cat := catalog.BuiltIn()
	if path == "" {
		return cat, nil
	}
	extra, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}
	return cat.Merge(extra), nil
}

func logResult(log *slog.Logger, res *sim.Result) {
	attrs := []any{
		"session", res.SessionID,
		"scenario", res.Scenario,
		"outcome", res.Outcome,
		"reason", res.Reason,
		"elapsed_s", res.ElapsedSeconds,
		"score", res.PerformanceScore,
		"acknowledged", res.Acknowledged,
		"expired", res.Expired,
		"streak", res.Streak.CurrentStreak,
		"best_streak", res.Streak.BestStreak,
	}
	if res.Tier != nil {
		attrs = append(attrs, "tier", res.Tier.Label)
	}
	if res.Outcome == scenario.Won {
		attrs = append(attrs, "xp", res.XP, "funds", res.Funds)
	}
	log.Info("session result", attrs...)
}

func init() {
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "", "Path to simulation configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "", "Path to CUE schema file (defaults to the embedded schema)")
	simulateCmd.Flags().StringVar(&simScenario, "scenario", config.DefaultScenario, "Built-in scenario to run")
	simulateCmd.Flags().IntVar(&simDifficulty, "difficulty", 0, "Override the scenario difficulty (1-6)")
	simulateCmd.Flags().Uint64Var(&simSeed, "seed", 0, "Seed for reproducible runs (0 uses crypto randomness)")
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print JSON lines to STDOUT even on a terminal")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export complication events (JSONL); vitals and outcomes go to .vitals and .outcomes")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Show the interactive bedside monitor")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin", "", "Admin UI listen address (e.g. :8080)")
}
