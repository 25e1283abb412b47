package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"liftsync/src/config"
	"liftsync/src/elev"
	"liftsync/src/passenger"
	"liftsync/src/registry"
	"liftsync/src/trace"

	"golang.org/x/sync/errgroup"
)

var ErrWatchdog = errors.New("watchdog expired")

type Report struct {
	Pickups        int
	Arrivals       int
	TripsRemaining int
	Claims         []int
	Moves          []int
	Transitions    int
	Elapsed        time.Duration
}

// Run plays the plan with one goroutine per passenger and per elevator and returns
// once all of them have returned. If cfg.WatchdogTimeout passes first, or ctx is
// cancelled, the registry is shut down and the run fails with ErrWatchdog.
func Run(ctx context.Context, cfg config.Config, plan Plan) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	if err := plan.Validate(cfg); err != nil {
		return Report{}, err
	}

	rec := trace.NewRecorder()
	reg := registry.New(cfg.Passengers, cfg.TripsPerPassenger, registry.WithObserver(trace.Multi{rec, trace.LogObserver{}}))
	building := NewBuilding(cfg, plan.ElevatorStarts, plan.PassengerStarts())

	if cfg.WatchdogTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.WatchdogTimeout)
		defer cancel()
	}
	stop := context.AfterFunc(ctx, func() {
		slog.Error("Watchdog shutting down registry", "trips_remaining", reg.TripsRemaining())
		reg.Shutdown()
	})
	defer stop()

	slog.Info("Starting run",
		"passengers", cfg.Passengers,
		"elevators", cfg.Elevators,
		"trips_per_passenger", cfg.TripsPerPassenger,
		"floors", cfg.Floors)
	start := time.Now()

	var g errgroup.Group
	for e := range cfg.Elevators {
		g.Go(func() error {
			return elev.Run(reg, e, plan.ElevatorStarts[e], building)
		})
	}
	for p := range cfg.Passengers {
		g.Go(func() error {
			return passenger.RunTrips(reg, p, plan.Trips[p], building)
		})
	}
	runErr := g.Wait()

	report := Report{
		Pickups:        building.Pickups(),
		Arrivals:       building.Arrivals(),
		TripsRemaining: reg.TripsRemaining(),
		Claims:         make([]int, cfg.Elevators),
		Moves:          make([]int, cfg.Elevators),
		Transitions:    len(rec.Events()),
		Elapsed:        time.Since(start),
	}
	for e := range cfg.Elevators {
		report.Claims[e] = reg.Claims(e)
		report.Moves[e] = building.Moves(e)
	}

	if runErr != nil {
		return report, fmt.Errorf("%w: %w", ErrWatchdog, runErr)
	}
	return report, errors.Join(
		building.Err(),
		rec.VerifyComplete(cfg.Passengers, cfg.TripsPerPassenger),
		checkFinalFloors(building.State(), plan),
		checkCounter(report, cfg),
	)
}

func checkFinalFloors(state BuildingState, plan Plan) error {
	var errs []error
	for p, trips := range plan.Trips {
		want := trips[len(trips)-1].To
		if got := state.PassengerFloors[p]; got != want {
			errs = append(errs, fmt.Errorf("%w: passenger %d ended at floor %d, expected %d", ErrPhysics, p, got, want))
		}
	}
	return errors.Join(errs...)
}

func checkCounter(report Report, cfg config.Config) error {
	claims := 0
	for _, n := range report.Claims {
		claims += n
	}
	if report.TripsRemaining != 0 || claims != cfg.TotalTrips() {
		return fmt.Errorf("trip counter at %d after %d claims, expected 0 after %d",
			report.TripsRemaining, claims, cfg.TotalTrips())
	}
	return nil
}
