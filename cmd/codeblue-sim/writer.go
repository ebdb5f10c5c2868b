package main

import (
	"os"

	"golang.org/x/term"

	"codeblue-sim/internal/admin"
	"codeblue-sim/internal/config"
	"codeblue-sim/internal/scenario"
	"codeblue-sim/internal/sim"
)

// isTerminal reports whether fd is a terminal.
var isTerminal = func(fd int) bool { return term.IsTerminal(fd) }

// newWriters builds the session writers from config, flags and env vars.
func newWriters(cfg *config.SimulationConfig, sc *scenario.Scenario, hub *admin.Hub, printOnly bool) ([]sim.Writer, error) {
	var writers []sim.Writer
	if cfg.Output.TUI {
		writers = append(writers, sim.NewTUIWriter(sc))
	} else {
		writers = append(writers, stdoutWriter(sc, printOnly))
	}

	if path := cfg.Output.File; path != "" {
		fw, err := sim.NewFileWriter(path, path+".vitals", path+".outcomes")
		if err != nil {
			closeAll(writers)
			return nil, err
		}
		writers = append(writers, fw)
	}

	if gc := greptimeConfig(cfg); gc != nil {
		gw, err := sim.NewGreptimeDBWriter(gc.Host, gc.Database)
		if err != nil {
			closeAll(writers)
			return nil, err
		}
		writers = append(writers, gw)
	}

	if hub != nil {
		writers = append(writers, hub)
	}
	return writers, nil
}

// stdoutWriter picks colored output on a terminal and JSON lines otherwise.
func stdoutWriter(sc *scenario.Scenario, printOnly bool) sim.Writer {
	colorize := !printOnly && isTerminal(int(os.Stdout.Fd()))
	return sim.NewStdoutWriter(sc, colorize)
}

// greptimeConfig returns the GreptimeDB target from config, falling back to
// GREPTIMEDB_ENDPOINT and GREPTIMEDB_DATABASE.
func greptimeConfig(cfg *config.SimulationConfig) *config.GreptimeConfig {
	gc := config.GreptimeConfig{}
	if cfg.Output.Greptime != nil {
		gc = *cfg.Output.Greptime
	}
	if gc.Host == "" {
		gc.Host = os.Getenv("GREPTIMEDB_ENDPOINT")
	}
	if gc.Host == "" {
		return nil
	}
	if gc.Database == "" {
		gc.Database = os.Getenv("GREPTIMEDB_DATABASE")
	}
	if gc.Database == "" {
		gc.Database = "public"
	}
	return &gc
}

func closeAll(writers []sim.Writer) {
	for _, w := range writers {
		if c, ok := w.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	}
}
