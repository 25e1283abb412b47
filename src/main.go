package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"liftsync/src/config"
	"liftsync/src/sim"
	"liftsync/src/utils"
)

func main() {
	configPath := flag.String("config", "", "YAML file with run settings")
	envPath := flag.String("env", ".env", "Env file with LIFTSYNC_* overrides")
	passengers := flag.Int("passengers", config.NumPassengers, "Number of passengers")
	elevators := flag.Int("elevators", config.NumElevators, "Number of elevators")
	trips := flag.Int("trips", config.TripsPerPassenger, "Trips per passenger")
	floors := flag.Int("floors", config.NumFloors, "Number of floors")
	seed := flag.Uint64("seed", 1, "Seed for the trip plan")
	logPath := flag.String("log", "", "Also write the log to this file")
	debug := flag.Bool("debug", false, "Log every state transition")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	closeLog, err := utils.InitLogger(level, *logPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	cfg, err := config.Load(*configPath)
	if err == nil {
		cfg, err = config.ApplyEnv(cfg, *envPath)
	}
	if err != nil {
		slog.Error("Loading config failed", "err", err)
		os.Exit(1)
	}

	// Flags given on the command line win over file and env.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "passengers":
			cfg.Passengers = *passengers
		case "elevators":
			cfg.Elevators = *elevators
		case "trips":
			cfg.TripsPerPassenger = *trips
		case "floors":
			cfg.Floors = *floors
		case "seed":
			cfg.Seed = *seed
		}
	})
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := sim.Run(ctx, cfg, sim.NewPlan(cfg))
	slog.Info("Run finished",
		"pickups", report.Pickups,
		"arrivals", report.Arrivals,
		"trips_remaining", report.TripsRemaining,
		"claims", report.Claims,
		"moves", report.Moves,
		"elapsed", report.Elapsed)
	if err != nil {
		slog.Error("Run failed", "err", err)
		closeLog()
		os.Exit(1)
	}
}
