package sim

import (
	"fmt"
	"math/rand/v2"

	"liftsync/src/config"
	"liftsync/src/types"
)

// Plan lists every passenger's trips and every elevator's start floor.
// Each trip of a passenger starts where the previous one ended.
type Plan struct {
	Trips          [][]types.Trip
	ElevatorStarts []int
}

// NewPlan draws a plan from cfg.Seed. The same config always gives the same plan.
func NewPlan(cfg config.Config) Plan {
	r := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	plan := Plan{
		Trips:          make([][]types.Trip, cfg.Passengers),
		ElevatorStarts: make([]int, cfg.Elevators),
	}
	for e := range plan.ElevatorStarts {
		plan.ElevatorStarts[e] = r.IntN(cfg.Floors)
	}
	for p := range plan.Trips {
		from := r.IntN(cfg.Floors)
		for range cfg.TripsPerPassenger {
			to := r.IntN(cfg.Floors - 1)
			if to >= from {
				to++
			}
			plan.Trips[p] = append(plan.Trips[p], types.Trip{From: from, To: to})
			from = to
		}
	}
	return plan
}

func (plan Plan) PassengerStarts() []int {
	starts := make([]int, len(plan.Trips))
	for p, trips := range plan.Trips {
		if len(trips) > 0 {
			starts[p] = trips[0].From
		}
	}
	return starts
}

// Validate checks the plan against the config.
func (plan Plan) Validate(cfg config.Config) error {
	if len(plan.Trips) != cfg.Passengers {
		return fmt.Errorf("%w: plan has %d passengers, config %d", config.ErrInvalidConfig, len(plan.Trips), cfg.Passengers)
	}
	if len(plan.ElevatorStarts) != cfg.Elevators {
		return fmt.Errorf("%w: plan has %d elevators, config %d", config.ErrInvalidConfig, len(plan.ElevatorStarts), cfg.Elevators)
	}
	inRange := func(floor int) bool { return floor >= 0 && floor < cfg.Floors }
	for e, floor := range plan.ElevatorStarts {
		if !inRange(floor) {
			return fmt.Errorf("%w: elevator %d starts at floor %d", config.ErrInvalidConfig, e, floor)
		}
	}
	for p, trips := range plan.Trips {
		if len(trips) != cfg.TripsPerPassenger {
			return fmt.Errorf("%w: passenger %d has %d trips, config %d", config.ErrInvalidConfig, p, len(trips), cfg.TripsPerPassenger)
		}
		for i, trip := range trips {
			if !inRange(trip.From) || !inRange(trip.To) {
				return fmt.Errorf("%w: passenger %d trip %d %d->%d out of range", config.ErrInvalidConfig, p, i+1, trip.From, trip.To)
			}
			if i > 0 && trip.From != trips[i-1].To {
				return fmt.Errorf("%w: passenger %d trip %d starts at %d, previous ended at %d",
					config.ErrInvalidConfig, p, i+1, trip.From, trips[i-1].To)
			}
		}
	}
	return nil
}
