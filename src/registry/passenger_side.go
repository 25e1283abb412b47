package registry

import "liftsync/src/types"

// Publish reinitializes the passenger's record for a new trip and marks it ready for pickup.
// The reset and the publish happen in the same critical section, so no elevator sees a half-reset record.
func (reg *Registry) Publish(passenger int, trip types.Trip) {
	reg.lock()
	defer reg.unlock()
	st := reg.record(passenger)
	if st.TripNumber > 0 && !st.Exited {
		violation("passenger %d published trip %d before finishing trip %d", passenger, st.TripNumber+1, st.TripNumber)
	}
	if st.TripNumber >= reg.tripsPerPassenger {
		violation("passenger %d published more than %d trips", passenger, reg.tripsPerPassenger)
	}
	*st = types.PassengerStatus{
		Trip:           trip,
		TripNumber:     st.TripNumber + 1,
		ReadyForPickup: true,
		ClaimedBy:      types.NoElevator,
	}
	reg.emit(types.StagePublished, passenger)
	reg.broadcast()
}

// AwaitPickup blocks until the serving elevator has opened its door at the pickup floor
// and returns that elevator. ClaimedBy is stable from here until the next publish.
func (reg *Registry) AwaitPickup(passenger int) (int, error) {
	reg.lock()
	defer reg.unlock()
	st := reg.record(passenger)
	if st.TripNumber == 0 {
		violation("passenger %d awaits pickup without a published trip", passenger)
	}
	if err := reg.waitUntil(func() bool { return st.AtPickup }); err != nil {
		return types.NoElevator, err
	}
	return st.ClaimedBy, nil
}

func (reg *Registry) MarkBoarded(passenger int) {
	reg.lock()
	defer reg.unlock()
	st := reg.record(passenger)
	if !st.AtPickup || st.Boarded {
		violation("passenger %d boarded out of order (at_pickup=%t boarded=%t)", passenger, st.AtPickup, st.Boarded)
	}
	st.Boarded = true
	reg.emit(types.StageBoarded, passenger)
	reg.broadcast()
}

func (reg *Registry) AwaitArrival(passenger int) error {
	reg.lock()
	defer reg.unlock()
	st := reg.record(passenger)
	if !st.Boarded {
		violation("passenger %d awaits arrival before boarding", passenger)
	}
	return reg.waitUntil(func() bool { return st.AtDestination })
}

func (reg *Registry) MarkExited(passenger int) {
	reg.lock()
	defer reg.unlock()
	st := reg.record(passenger)
	if !st.AtDestination || st.Exited {
		violation("passenger %d exited out of order (at_destination=%t exited=%t)", passenger, st.AtDestination, st.Exited)
	}
	st.Exited = true
	reg.emit(types.StageExited, passenger)
	reg.broadcast()
}
