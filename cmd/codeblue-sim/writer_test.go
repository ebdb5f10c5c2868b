package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"codeblue-sim/internal/config"
	"codeblue-sim/internal/scenario"
	"codeblue-sim/internal/sim"
	"codeblue-sim/internal/streak"
)

func TestNewWritersPrintOnly(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	writers, err := newWriters(config.Default(), nil, nil, true)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer closeAll(writers)
	if len(writers) != 1 {
		t.Fatalf("expected 1 writer, got %d", len(writers))
	}
	if _, ok := writers[0].(*sim.JSONStdoutWriter); !ok {
		t.Fatalf("expected *sim.JSONStdoutWriter, got %T", writers[0])
	}
}

func TestNewWritersColorOnTerminal(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	orig := isTerminal
	isTerminal = func(int) bool { return true }
	defer func() { isTerminal = orig }()

	sc, _ := scenario.Lookup(config.DefaultScenario)
	writers, err := newWriters(config.Default(), &sc, nil, false)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer closeAll(writers)
	if _, ok := writers[0].(*sim.ColorStdoutWriter); !ok {
		t.Fatalf("expected *sim.ColorStdoutWriter, got %T", writers[0])
	}

	writers, err = newWriters(config.Default(), &sc, nil, true)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer closeAll(writers)
	if _, ok := writers[0].(*sim.JSONStdoutWriter); !ok {
		t.Fatalf("print-only should force JSON, got %T", writers[0])
	}
}

func TestNewWritersLogFile(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	cfg := config.Default()
	cfg.Output.File = filepath.Join(t.TempDir(), "events.log")
	writers, err := newWriters(cfg, nil, nil, true)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer closeAll(writers)
	if len(writers) != 2 {
		t.Fatalf("expected 2 writers, got %d", len(writers))
	}
	if _, ok := writers[1].(*sim.FileWriter); !ok {
		t.Fatalf("expected *sim.FileWriter, got %T", writers[1])
	}
}

func TestGreptimeConfigFallback(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	t.Setenv("GREPTIMEDB_DATABASE", "")
	if gc := greptimeConfig(config.Default()); gc != nil {
		t.Fatalf("expected no greptime target, got %+v", gc)
	}

	t.Setenv("GREPTIMEDB_ENDPOINT", "greptime:4001")
	gc := greptimeConfig(config.Default())
	if gc == nil || gc.Host != "greptime:4001" || gc.Database != "public" {
		t.Fatalf("unexpected env fallback: %+v", gc)
	}

	cfg := config.Default()
	cfg.Output.Greptime = &config.GreptimeConfig{Host: "db:4001", Database: "training"}
	gc = greptimeConfig(cfg)
	if gc.Host != "db:4001" || gc.Database != "training" {
		t.Fatalf("config should win over env: %+v", gc)
	}
}

func TestResolveScenario(t *testing.T) {
	cfg := config.Default()
	sc, key, err := resolveScenario(cfg)
	if err != nil {
		t.Fatalf("resolveScenario: %v", err)
	}
	if key != config.DefaultScenario || sc.Name == "" {
		t.Fatalf("unexpected scenario %q %+v", key, sc)
	}

	cfg.Scenario = "broken-leg"
	_, _, err = resolveScenario(cfg)
	if err == nil || !strings.Contains(err.Error(), "cardiac-arrest") {
		t.Fatalf("expected error listing built-ins, got %v", err)
	}
}

func TestStreakCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "streak.db")
	defer func() { streakWon, streakJSON = false, false }()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)
	for i := 0; i < 3; i++ {
		rootCmd.SetArgs([]string{"streak", "record", "--won", "--db", db})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("streak record: %v", err)
		}
	}

	out.Reset()
	rootCmd.SetArgs([]string{"streak", "show", "--json", "--db", db})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("streak show: %v", err)
	}
	var got struct {
		streak.Record
		Tier *streak.Tier `json:"tier"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if got.CurrentStreak != 3 || got.BestStreak != 3 {
		t.Fatalf("unexpected record %+v", got.Record)
	}
	if got.Tier == nil || got.Tier.Label != "Warmed Up" {
		t.Fatalf("expected Warmed Up tier, got %+v", got.Tier)
	}
}
