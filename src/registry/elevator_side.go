package registry

import "liftsync/src/types"

// Claim scans for the lowest-indexed passenger that is ready for pickup and claims it for the elevator.
// Clearing ReadyForPickup, recording the elevator and decrementing the trip counter is one critical section.
// If nothing is ready it waits, unless the trip counter is exhausted, in which case ok is false.
func (reg *Registry) Claim(elevator int) (claimed Assignment, ok bool, err error) {
	if elevator < 0 {
		violation("elevator id %d is negative", elevator)
	}
	reg.lock()
	defer reg.unlock()

	next := -1
	err = reg.waitUntil(func() bool {
		next = reg.firstReady()
		return next >= 0 || reg.tripsRemaining <= 0
	})
	if err != nil {
		return Assignment{}, false, err
	}
	if next < 0 {
		return Assignment{}, false, nil
	}

	st := &reg.status[next]
	if st.ClaimedBy != types.NoElevator {
		violation("passenger %d ready for pickup but already claimed by elevator %d", next, st.ClaimedBy)
	}
	if reg.tripsRemaining <= 0 {
		violation("trip counter exhausted while passenger %d is ready", next)
	}
	st.ReadyForPickup = false
	st.ClaimedBy = elevator
	reg.tripsRemaining--
	reg.claims[elevator]++
	reg.emit(types.StageClaimed, next)
	reg.broadcast()
	return Assignment{Passenger: next, TripNumber: st.TripNumber, Trip: st.Trip}, true, nil
}

func (reg *Registry) firstReady() int {
	for i := range reg.status {
		if reg.status[i].ReadyForPickup {
			return i
		}
	}
	return -1
}

// owned returns the record of the claimed trip. Must be called with the lock held.
func (reg *Registry) owned(elevator int, claimed Assignment) *types.PassengerStatus {
	st := reg.record(claimed.Passenger)
	if st.TripNumber != claimed.TripNumber || st.ClaimedBy != elevator {
		violation("elevator %d acts on trip %d of passenger %d, record holds trip %d claimed by %d",
			elevator, claimed.TripNumber, claimed.Passenger, st.TripNumber, st.ClaimedBy)
	}
	return st
}

func (reg *Registry) MarkAtPickup(elevator int, claimed Assignment) {
	reg.lock()
	defer reg.unlock()
	st := reg.owned(elevator, claimed)
	if st.AtPickup {
		violation("elevator %d arrived twice at pickup of passenger %d", elevator, claimed.Passenger)
	}
	st.AtPickup = true
	reg.emit(types.StageAtPickup, claimed.Passenger)
	reg.broadcast()
}

func (reg *Registry) AwaitBoarded(elevator int, claimed Assignment) error {
	reg.lock()
	defer reg.unlock()
	st := reg.owned(elevator, claimed)
	if !st.AtPickup {
		violation("elevator %d awaits boarding of passenger %d before arriving", elevator, claimed.Passenger)
	}
	return reg.waitUntil(func() bool { return st.Boarded })
}

func (reg *Registry) MarkAtDestination(elevator int, claimed Assignment) {
	reg.lock()
	defer reg.unlock()
	st := reg.owned(elevator, claimed)
	if !st.Boarded || st.AtDestination {
		violation("elevator %d at destination of passenger %d out of order (boarded=%t at_destination=%t)",
			elevator, claimed.Passenger, st.Boarded, st.AtDestination)
	}
	st.AtDestination = true
	reg.emit(types.StageAtDestination, claimed.Passenger)
	reg.broadcast()
}

// AwaitExited blocks until the passenger has left the elevator. A passenger only publishes
// its next trip after exiting, so a record that has moved on to a later trip also counts as exited.
func (reg *Registry) AwaitExited(elevator int, claimed Assignment) error {
	reg.lock()
	defer reg.unlock()
	st := reg.record(claimed.Passenger)
	if st.TripNumber > claimed.TripNumber {
		return nil
	}
	st = reg.owned(elevator, claimed)
	if !st.AtDestination {
		violation("elevator %d awaits exit of passenger %d before arriving", elevator, claimed.Passenger)
	}
	return reg.waitUntil(func() bool {
		return st.Exited || st.TripNumber != claimed.TripNumber
	})
}
