// Package elev runs the elevator side of the trip protocol.
package elev

import (
	"fmt"
	"log/slog"

	"liftsync/src/registry"
	"liftsync/src/types"
	"liftsync/src/utils"
)

// Traversal moves an elevator from one floor to another using the car's Move primitive.
type Traversal func(car types.Car, elevator, from, to int)

type Option func(e *elevator)

// WithTraversal replaces the default one-move-per-floor policy.
func WithTraversal(travel Traversal) Option {
	return func(e *elevator) {
		e.travel = travel
	}
}

// Travel calls Move once per floor in the direction of the destination.
func Travel(car types.Car, id, from, to int) {
	dir := utils.Direction(from, to)
	for range utils.Abs(to - from) {
		car.Move(id, dir)
	}
}

type elevator struct {
	id     int
	floor  int
	reg    *registry.Registry
	car    types.Car
	travel Traversal
}

// Run serves trips until the trip counter is exhausted and nothing is pending.
// Car actions are performed without holding the registry lock.
func Run(reg *registry.Registry, id, startFloor int, car types.Car, opts ...Option) error {
	e := &elevator{
		id:     id,
		floor:  startFloor,
		reg:    reg,
		car:    car,
		travel: Travel,
	}
	for _, opt := range opts {
		opt(e)
	}

	for {
		served, err := e.serveNext()
		if err != nil {
			return err
		}
		if !served {
			slog.Debug("Elevator terminated", "elevator", id, "floor", e.floor, "state", types.ES_Terminated)
			return nil
		}
	}
}

// serveNext claims one trip and carries it out. It returns false when there is no work left.
func (e *elevator) serveNext() (bool, error) {
	claimed, ok, err := e.reg.Claim(e.id)
	if err != nil {
		return false, fmt.Errorf("elevator %d scanning for requests: %w", e.id, err)
	}
	if !ok {
		return false, nil
	}
	slog.Debug("Elevator claimed trip",
		"elevator", e.id,
		"passenger", claimed.Passenger,
		"trip", claimed.TripNumber,
		"state", types.ES_Claimed)

	e.moveTo(claimed.Trip.From, types.ES_TravelingToPickup)
	e.car.OpenDoor(e.id)
	e.reg.MarkAtPickup(e.id, claimed)

	slog.Debug("Elevator waiting for boarding", "elevator", e.id, "passenger", claimed.Passenger, "state", types.ES_WaitingBoard)
	if err := e.reg.AwaitBoarded(e.id, claimed); err != nil {
		return false, fmt.Errorf("elevator %d waiting for passenger %d to board: %w", e.id, claimed.Passenger, err)
	}
	e.car.CloseDoor(e.id)

	e.moveTo(claimed.Trip.To, types.ES_TravelingToDestination)
	e.car.OpenDoor(e.id)
	e.reg.MarkAtDestination(e.id, claimed)

	slog.Debug("Elevator waiting for exit", "elevator", e.id, "passenger", claimed.Passenger, "state", types.ES_WaitingExit)
	if err := e.reg.AwaitExited(e.id, claimed); err != nil {
		return false, fmt.Errorf("elevator %d waiting for passenger %d to exit: %w", e.id, claimed.Passenger, err)
	}
	e.car.CloseDoor(e.id)
	return true, nil
}

func (e *elevator) moveTo(floor int, state types.ElevatorState) {
	slog.Debug("Elevator moving", "elevator", e.id, "from", e.floor, "to", floor, "state", state)
	e.travel(e.car, e.id, e.floor, floor)
	e.floor = floor
}
