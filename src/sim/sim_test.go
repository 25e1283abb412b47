package sim

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"liftsync/src/config"
	"liftsync/src/registry"
	"liftsync/src/types"
)

func fastConfig() config.Config {
	cfg := config.Default()
	cfg.Floors = 8
	cfg.Passengers = 6
	cfg.Elevators = 3
	cfg.TripsPerPassenger = 2
	cfg.TravelDuration = 0
	cfg.DoorOpenDuration = 0
	cfg.EnterDuration = 0
	cfg.WatchdogTimeout = 10 * time.Second
	return cfg
}

func TestNewPlanIsDeterministicAndValid(t *testing.T) {
	cfg := fastConfig()
	plan := NewPlan(cfg)
	if !reflect.DeepEqual(plan, NewPlan(cfg)) {
		t.Error("Same seed gave different plans")
	}
	if err := plan.Validate(cfg); err != nil {
		t.Fatal(err)
	}
	for p, trips := range plan.Trips {
		for i, trip := range trips {
			if trip.From == trip.To {
				t.Errorf("passenger %d trip %d goes nowhere: %+v", p, i, trip)
			}
		}
	}

	cfg.Seed = 99
	if reflect.DeepEqual(plan, NewPlan(cfg)) {
		t.Error("Different seeds gave the same plan")
	}
}

func TestPlanValidateRejectsBrokenChain(t *testing.T) {
	cfg := fastConfig()
	cfg.Passengers, cfg.Elevators, cfg.TripsPerPassenger = 1, 1, 2
	plan := Plan{
		Trips:          [][]types.Trip{{{From: 0, To: 3}, {From: 4, To: 1}}},
		ElevatorStarts: []int{0},
	}
	if err := plan.Validate(cfg); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	plan.Trips[0][1].From = 3
	plan.ElevatorStarts[0] = cfg.Floors
	if err := plan.Validate(cfg); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for start floor, got %v", err)
	}
}

func TestBuildingHandOff(t *testing.T) {
	b := NewBuilding(fastConfig(), []int{1}, []int{2})
	b.Move(0, types.MD_Up)
	b.OpenDoor(0)
	b.Enter(0, 0)
	b.CloseDoor(0)
	b.Move(0, types.MD_Up)
	b.Move(0, types.MD_Up)
	b.OpenDoor(0)

	state := b.State()
	if state.Occupants[0] != 0 || state.Riding[0] != 0 || state.PassengerFloors[0] != -1 {
		t.Errorf("Unexpected riding state %+v", state)
	}
	b.Exit(0, 0)
	b.CloseDoor(0)

	state = b.State()
	if state.PassengerFloors[0] != 4 || state.Occupants[0] != -1 || state.Behaviours[0] != types.Idle {
		t.Errorf("Unexpected final state %+v", state)
	}
	if b.Pickups() != 1 || b.Arrivals() != 1 || b.Moves(0) != 3 {
		t.Errorf("Expected 1 pickup, 1 arrival, 3 moves; got %d, %d, %d", b.Pickups(), b.Arrivals(), b.Moves(0))
	}
	if err := b.Err(); err != nil {
		t.Error(err)
	}
}

func TestBuildingRecordsFaults(t *testing.T) {
	b := NewBuilding(fastConfig(), []int{0}, []int{3})
	b.Enter(0, 0)
	b.OpenDoor(0)
	b.Move(0, types.MD_Up)
	b.Move(0, types.MD_Down)
	b.Move(0, types.MD_Down)

	if err := b.Err(); !errors.Is(err, ErrPhysics) {
		t.Errorf("Expected ErrPhysics, got %v", err)
	}
	if b.Pickups() != 0 {
		t.Errorf("Expected no pickups, got %d", b.Pickups())
	}
}

func TestRunRandomPlan(t *testing.T) {
	cfg := fastConfig()
	report, err := Run(context.Background(), cfg, NewPlan(cfg))
	if err != nil {
		t.Fatal(err)
	}
	if report.Pickups != cfg.TotalTrips() || report.Arrivals != cfg.TotalTrips() {
		t.Errorf("Expected %d pickups and arrivals, got %d and %d", cfg.TotalTrips(), report.Pickups, report.Arrivals)
	}
	if report.TripsRemaining != 0 {
		t.Errorf("Expected counter 0, got %d", report.TripsRemaining)
	}
	if report.Transitions != 6*cfg.TotalTrips() {
		t.Errorf("Expected %d transitions, got %d", 6*cfg.TotalTrips(), report.Transitions)
	}
}

func TestRunOnePassengerTwoTrips(t *testing.T) {
	cfg := fastConfig()
	cfg.Passengers, cfg.Elevators = 1, 1
	plan := Plan{
		Trips:          [][]types.Trip{{{From: 0, To: 5}, {From: 5, To: 2}}},
		ElevatorStarts: []int{0},
	}
	report, err := Run(context.Background(), cfg, plan)
	if err != nil {
		t.Fatal(err)
	}
	if report.Pickups != 2 || report.Arrivals != 2 {
		t.Errorf("Expected 2 pickups and 2 arrivals, got %d and %d", report.Pickups, report.Arrivals)
	}
	if report.Claims[0] != 2 || report.Moves[0] != 8 {
		t.Errorf("Expected 2 claims and 8 moves, got %d and %d", report.Claims[0], report.Moves[0])
	}
}

func TestRunStopsWhenContextEnds(t *testing.T) {
	cfg := fastConfig()
	cfg.Passengers, cfg.Elevators, cfg.TripsPerPassenger = 1, 1, 1
	cfg.DoorOpenDuration = 200 * time.Millisecond
	plan := Plan{
		Trips:          [][]types.Trip{{{From: 0, To: 5}}},
		ElevatorStarts: []int{0},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg, plan)
	if !errors.Is(err, ErrWatchdog) || !errors.Is(err, registry.ErrClosed) {
		t.Errorf("Expected ErrWatchdog wrapping ErrClosed, got %v", err)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := fastConfig()
	cfg.Elevators = 0
	if _, err := Run(context.Background(), cfg, Plan{}); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}
