// Package passenger runs the passenger side of the trip protocol.
package passenger

import (
	"fmt"
	"log/slog"

	"liftsync/src/registry"
	"liftsync/src/types"
)

// Run performs one trip and returns once the passenger has left the elevator.
// Enter and Exit are called without holding the registry lock.
func Run(reg *registry.Registry, id, from, to int, rider types.Rider) error {
	reg.Publish(id, types.Trip{From: from, To: to})
	slog.Debug("Passenger waiting for pickup",
		"passenger", id,
		"state", types.PS_AwaitingPickup,
		"from", from,
		"to", to)

	elevator, err := reg.AwaitPickup(id)
	if err != nil {
		return fmt.Errorf("passenger %d waiting for pickup at floor %d: %w", id, from, err)
	}

	rider.Enter(id, elevator)
	reg.MarkBoarded(id)
	slog.Debug("Passenger boarded", "passenger", id, "elevator", elevator, "state", types.PS_Boarded)

	if err := reg.AwaitArrival(id); err != nil {
		return fmt.Errorf("passenger %d riding elevator %d to floor %d: %w", id, elevator, to, err)
	}

	rider.Exit(id, elevator)
	reg.MarkExited(id)
	slog.Debug("Passenger exited", "passenger", id, "elevator", elevator, "floor", to, "state", types.PS_Exited)
	return nil
}

// RunTrips performs the trips in order, stopping at the first error.
func RunTrips(reg *registry.Registry, id int, trips []types.Trip, rider types.Rider) error {
	for _, trip := range trips {
		if err := Run(reg, id, trip.From, trip.To, rider); err != nil {
			return err
		}
	}
	return nil
}
