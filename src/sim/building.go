// Package sim provides a simulated building that performs the physical actions
// for passengers and elevators, and a runner that plays a whole plan through it.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"liftsync/src/config"
	"liftsync/src/types"

	"github.com/tiendc/go-deepcopy"
)

var ErrPhysics = errors.New("impossible physical state")

// BuildingState is a copy of the physical state at one instant.
type BuildingState struct {
	ElevatorFloors  []int
	Behaviours      []types.ElevBehaviour
	Occupants       []int // passenger inside each elevator, -1 if empty
	PassengerFloors []int // -1 while riding
	Riding          []int // elevator carrying each passenger, -1 if none
}

// Building implements types.Car and types.Rider. Faults are recorded rather than
// panicking so a run can report all of them; see Err.
type Building struct {
	mu       sync.Mutex
	cfg      config.Config
	state    BuildingState
	moves    []int
	pickups  int
	arrivals int
	faults   []error
}

func NewBuilding(cfg config.Config, elevatorStarts, passengerStarts []int) *Building {
	b := &Building{
		cfg: cfg,
		state: BuildingState{
			ElevatorFloors:  append([]int(nil), elevatorStarts...),
			Behaviours:      make([]types.ElevBehaviour, len(elevatorStarts)),
			Occupants:       make([]int, len(elevatorStarts)),
			PassengerFloors: append([]int(nil), passengerStarts...),
			Riding:          make([]int, len(passengerStarts)),
		},
		moves: make([]int, len(elevatorStarts)),
	}
	for e := range b.state.Occupants {
		b.state.Occupants[e] = -1
	}
	for p := range b.state.Riding {
		b.state.Riding[p] = -1
	}
	return b
}

func (b *Building) fault(format string, args ...any) {
	err := fmt.Errorf("%w: %s", ErrPhysics, fmt.Sprintf(format, args...))
	slog.Error("Physics fault", "err", err)
	b.faults = append(b.faults, err)
}

func (b *Building) validElevator(e int) bool {
	if e < 0 || e >= len(b.state.ElevatorFloors) {
		b.fault("unknown elevator %d", e)
		return false
	}
	return true
}

func (b *Building) validPassenger(p int) bool {
	if p < 0 || p >= len(b.state.PassengerFloors) {
		b.fault("unknown passenger %d", p)
		return false
	}
	return true
}

func (b *Building) Move(e int, dir types.MotorDirection) {
	b.mu.Lock()
	if !b.validElevator(e) {
		b.mu.Unlock()
		return
	}
	if b.state.Behaviours[e] == types.DoorOpen {
		b.fault("elevator %d moved with door open", e)
	}
	b.state.Behaviours[e] = types.Moving
	b.mu.Unlock()

	time.Sleep(b.cfg.TravelDuration)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Behaviours[e] = types.Idle
	if dir != types.MD_Up && dir != types.MD_Down {
		b.fault("elevator %d moved in direction %v", e, dir)
		return
	}
	next := b.state.ElevatorFloors[e] + int(dir)
	if next < 0 || next >= b.cfg.Floors {
		b.fault("elevator %d moved %v past floor %d", e, dir, b.state.ElevatorFloors[e])
		return
	}
	b.state.ElevatorFloors[e] = next
	b.moves[e]++
}

func (b *Building) OpenDoor(e int) {
	b.mu.Lock()
	if !b.validElevator(e) {
		b.mu.Unlock()
		return
	}
	if b.state.Behaviours[e] == types.DoorOpen {
		b.fault("elevator %d opened an open door", e)
	}
	b.state.Behaviours[e] = types.DoorOpen
	floor := b.state.ElevatorFloors[e]
	b.mu.Unlock()

	slog.Debug("Door open", "elevator", e, "floor", floor)
	time.Sleep(b.cfg.DoorOpenDuration)
}

func (b *Building) CloseDoor(e int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.validElevator(e) {
		return
	}
	if b.state.Behaviours[e] != types.DoorOpen {
		b.fault("elevator %d closed a closed door", e)
	}
	b.state.Behaviours[e] = types.Idle
}

func (b *Building) Enter(p, e int) {
	time.Sleep(b.cfg.EnterDuration)

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.validPassenger(p) || !b.validElevator(e) {
		return
	}
	switch {
	case b.state.Riding[p] != -1:
		b.fault("passenger %d entered elevator %d while riding elevator %d", p, e, b.state.Riding[p])
	case b.state.Behaviours[e] != types.DoorOpen:
		b.fault("passenger %d entered elevator %d with closed door", p, e)
	case b.state.ElevatorFloors[e] != b.state.PassengerFloors[p]:
		b.fault("passenger %d at floor %d entered elevator %d at floor %d", p, b.state.PassengerFloors[p], e, b.state.ElevatorFloors[e])
	case b.state.Occupants[e] != -1:
		b.fault("passenger %d entered elevator %d occupied by passenger %d", p, e, b.state.Occupants[e])
	default:
		b.state.Occupants[e] = p
		b.state.Riding[p] = e
		b.state.PassengerFloors[p] = -1
		b.pickups++
	}
}

func (b *Building) Exit(p, e int) {
	time.Sleep(b.cfg.EnterDuration)

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.validPassenger(p) || !b.validElevator(e) {
		return
	}
	switch {
	case b.state.Riding[p] != e:
		b.fault("passenger %d left elevator %d but was riding %d", p, e, b.state.Riding[p])
	case b.state.Behaviours[e] != types.DoorOpen:
		b.fault("passenger %d left elevator %d with closed door", p, e)
	default:
		b.state.Occupants[e] = -1
		b.state.Riding[p] = -1
		b.state.PassengerFloors[p] = b.state.ElevatorFloors[e]
		b.arrivals++
	}
}

// State returns a deep copy of the current physical state.
func (b *Building) State() BuildingState {
	b.mu.Lock()
	defer b.mu.Unlock()
	var state BuildingState
	if err := deepcopy.Copy(&state, b.state); err != nil {
		panic(err)
	}
	return state
}

func (b *Building) Pickups() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pickups
}

func (b *Building) Arrivals() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.arrivals
}

func (b *Building) Moves(e int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.moves[e]
}

// Err joins every recorded fault, or returns nil.
func (b *Building) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return errors.Join(b.faults...)
}
