// Command parksim runs the mini-park simulation with its HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"reflect"
	"strconv"
	"syscall"

	"github.com/talgya/mini-park/internal/api"
	"github.com/talgya/mini-park/internal/config"
	"github.com/talgya/mini-park/internal/engine"
	"github.com/talgya/mini-park/internal/entropy"
	"github.com/talgya/mini-park/internal/park"
	"github.com/talgya/mini-park/internal/persistence"
	"github.com/talgya/mini-park/internal/world"
)

// keepSnapshots is how many automatic snapshots survive pruning.
const keepSnapshots = 30

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	slog.Info("mini-park simulation starting", "config", *configPath, "debug", cfg.Debug)

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.Database.Path); dir != "" {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Database.Path)

	// ── Seed ──────────────────────────────────────────────────────────
	seed := cfg.Seed
	if seed == 0 {
		if saved, err := db.GetMeta("seed"); err == nil {
			if v, err := strconv.ParseInt(saved, 10, 64); err == nil {
				seed = v
			}
		}
	}
	if seed == 0 {
		seed = entropy.NewSeed()
	}
	if err := db.SaveMeta("seed", strconv.FormatInt(seed, 10)); err != nil {
		slog.Warn("failed to record seed", "error", err)
	}

	// ── Load or Create Park ───────────────────────────────────────────
	var state *park.State
	if db.HasSnapshot() {
		slog.Info("found saved park, loading...")
		state, err = db.LoadLatest()
		if err != nil {
			slog.Error("failed to load park", "error", err)
			os.Exit(1)
		}
		slog.Info("park restored",
			"tick", state.Tick,
			"sim_time", engine.SimTime(state),
			"money", state.Money,
			"facilities", len(state.Facilities),
			"visitors", len(state.Visitors),
		)
		if rules := cfg.ParkRules(); !reflect.DeepEqual(state.Rules, rules) {
			slog.Info("config rules differ from saved park, applying config",
				"rating", rules.Rating.Mode,
				"breakdown", rules.Breakdown,
				"entry_fee_max", rules.MaxEntryFee,
				"population_cap", rules.PopulationCap,
				"missions", len(rules.Missions),
			)
			state.ApplyRules(rules)
		}
	} else {
		slog.Info("no saved park found, opening a new one...")
		state = park.NewState(cfg.ParkRules())
		if cfg.Layout.Generate {
			carved := world.GenerateLayout(&state.Grid, cfg.WorldLayout(seed))
			slog.Info("starter paths generated", "tiles", carved)
		}
		if _, err := db.SaveParkState(state); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.New(state, entropy.NewSeeded(seed))
	eng.Interval = cfg.TickInterval
	eng.Debug = cfg.Debug
	eng.SetSpeed(cfg.Speed)

	hub := api.NewHub()
	apiServer := &api.Server{
		Eng:         eng,
		DB:          db,
		Hub:         hub,
		Port:        cfg.Server.Port,
		AdminKey:    cfg.Server.AdminKey,
		CORSOrigins: cfg.Server.CORSOrigins,
		BuildRate:   cfg.Server.BuildRate,
	}
	if cfg.Server.AdminKey == "" {
		slog.Warn(config.EnvAdminKey + " not set; admin POST endpoints will be disabled")
	}

	// Wire tick callbacks: stream every tick, archive news every hour, save
	// every day. The in-memory news log is bounded, so an hour's worth always
	// fits in it.
	eng.OnTick = func(s *park.State) {
		hub.Publish(apiServer.Status(s))
	}
	eng.OnHour = func(s *park.State) {
		slog.Debug("hour", "sim_time", engine.SimTime(s), "visitors", len(s.Visitors), "money", s.Money)
		if err := db.SaveNews(s.News); err != nil {
			slog.Error("news save failed", "error", err)
		}
	}
	eng.OnDay = func(s *park.State, day engine.DayStats) {
		engine.LogDailyReport(s, day)
		if err := db.RecordDay(day); err != nil {
			slog.Error("daily history save failed", "error", err)
		}
		if cfg.Database.SnapshotEvery <= 0 || day.Day%cfg.Database.SnapshotEvery != 0 {
			return
		}
		if _, err := db.SaveParkState(s); err != nil {
			slog.Error("daily save failed", "error", err)
		}
		if n, err := db.PruneSnapshots(keepSnapshots); err != nil {
			slog.Error("snapshot prune failed", "error", err)
		} else if n > 0 {
			slog.Info("old snapshots pruned", "removed", n)
		}
	}

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)
	apiServer.Start(ctx)

	fmt.Printf("\nmini-park is open: %d facilities, %d visitors, $%d in the bank.\n",
		len(state.Facilities), len(state.Visitors), state.Money)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Server.Port)
	if state.Tick > 0 {
		fmt.Printf("Resuming from tick %d (%s)\n", state.Tick, engine.SimTime(state))
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)
	slog.Info("received signal, shutting down")

	// Final save on shutdown.
	slog.Info("final save...")
	if _, err := db.SaveParkState(eng.Snapshot()); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Simulation stopped. Park state saved.")
}
