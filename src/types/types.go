package types

import (
	"fmt"
	"time"
)

type MotorDirection int

const (
	MD_Up   MotorDirection = 1
	MD_Down MotorDirection = -1
	MD_Stop MotorDirection = 0
)

func (dir MotorDirection) String() string {
	switch dir {
	case MD_Up:
		return "up"
	case MD_Down:
		return "down"
	case MD_Stop:
		return "stop"
	}
	return fmt.Sprintf("MotorDirection(%d)", int(dir))
}

type ElevBehaviour int

const (
	Idle ElevBehaviour = iota
	Moving
	DoorOpen
)

// NoElevator marks a trip that no elevator has claimed yet.
const NoElevator = -1

// Trip is one journey from a pickup floor to a destination floor.
type Trip struct {
	From int
	To   int
}

// PassengerStatus is the per-passenger record shared between the passenger and its serving elevator.
// It is reused across trips and reinitialized by the passenger right before each publish.
type PassengerStatus struct {
	Trip           Trip
	TripNumber     int // number of trips published so far, 1 for the first
	ReadyForPickup bool
	ClaimedBy      int
	AtPickup       bool
	Boarded        bool
	AtDestination  bool
	Exited         bool
}

// Stage names a single flag transition of a trip, in the order they must happen.
type Stage int

const (
	StagePublished Stage = iota
	StageClaimed
	StageAtPickup
	StageBoarded
	StageAtDestination
	StageExited
)

var stageNames = [...]string{"published", "claimed", "at_pickup", "boarded", "at_destination", "exited"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// Event is emitted for every flag transition, while the registry lock is held.
type Event struct {
	Seq        uint64
	Time       time.Time
	Stage      Stage
	Passenger  int
	Elevator   int
	TripNumber int
	Trip       Trip
}
