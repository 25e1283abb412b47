// Package registry holds the state shared by passengers and elevators and the
// monitor that guards it. All reads and writes go through Registry methods,
// each of which is one critical section.
package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"liftsync/src/types"

	"github.com/tiendc/go-deepcopy"
)

var (
	ErrClosed            = errors.New("registry closed")
	ErrProtocolViolation = errors.New("protocol violation")
)

// Observer receives every flag transition. It is called with the registry lock
// held and must not call back into the registry.
type Observer interface {
	Observe(event types.Event)
}

type Option func(reg *Registry)

func WithObserver(obs Observer) Option {
	return func(reg *Registry) {
		reg.observer = obs
	}
}

// Assignment is a trip claimed by an elevator. TripNumber identifies the trip
// so the elevator can tell its trip apart from the passenger's next one.
type Assignment struct {
	Passenger  int
	TripNumber int
	Trip       types.Trip
}

type Registry struct {
	mu     sync.Mutex
	cond   *sync.Cond
	closed bool

	status            []types.PassengerStatus
	tripsPerPassenger int
	tripsRemaining    int
	claims            map[int]int
	seq               uint64
	observer          Observer
}

// New creates a registry in its initial state: every flag false, no claims and
// the trip counter at passengers*tripsPerPassenger.
func New(passengers, tripsPerPassenger int, opts ...Option) *Registry {
	if passengers < 0 || tripsPerPassenger < 0 {
		panic(fmt.Sprintf("registry: negative size passengers=%d trips=%d", passengers, tripsPerPassenger))
	}
	reg := &Registry{
		status:            make([]types.PassengerStatus, passengers),
		tripsPerPassenger: tripsPerPassenger,
	}
	reg.cond = sync.NewCond(&reg.mu)
	for _, opt := range opts {
		opt(reg)
	}
	reg.Reset()
	return reg
}

// Reset restores the initial state. Only call it while no passenger or elevator is running.
func (reg *Registry) Reset() {
	reg.lock()
	defer reg.unlock()
	for i := range reg.status {
		reg.status[i] = types.PassengerStatus{ClaimedBy: types.NoElevator}
	}
	reg.tripsRemaining = len(reg.status) * reg.tripsPerPassenger
	reg.claims = make(map[int]int)
	reg.seq = 0
	reg.closed = false
}

func (reg *Registry) Passengers() int {
	return len(reg.status)
}

func (reg *Registry) TripsPerPassenger() int {
	return reg.tripsPerPassenger
}

func (reg *Registry) TripsRemaining() int {
	reg.lock()
	defer reg.unlock()
	return reg.tripsRemaining
}

// Claims returns how many trips the elevator has claimed since the last reset.
func (reg *Registry) Claims(elevator int) int {
	reg.lock()
	defer reg.unlock()
	return reg.claims[elevator]
}

func (reg *Registry) Status(passenger int) types.PassengerStatus {
	reg.lock()
	defer reg.unlock()
	return *reg.record(passenger)
}

// Snapshot returns a deep copy of every passenger record.
func (reg *Registry) Snapshot() []types.PassengerStatus {
	reg.lock()
	defer reg.unlock()
	var snapshot []types.PassengerStatus
	if err := deepcopy.Copy(&snapshot, reg.status); err != nil {
		panic(err)
	}
	return snapshot
}

func (reg *Registry) record(passenger int) *types.PassengerStatus {
	if passenger < 0 || passenger >= len(reg.status) {
		violation("passenger %d out of range [0,%d)", passenger, len(reg.status))
	}
	return &reg.status[passenger]
}

// emit must be called with the lock held.
func (reg *Registry) emit(stage types.Stage, passenger int) {
	reg.seq++
	if reg.observer == nil {
		return
	}
	st := &reg.status[passenger]
	reg.observer.Observe(types.Event{
		Seq:        reg.seq,
		Time:       time.Now(),
		Stage:      stage,
		Passenger:  passenger,
		Elevator:   st.ClaimedBy,
		TripNumber: st.TripNumber,
		Trip:       st.Trip,
	})
}

func violation(format string, args ...any) {
	panic(fmt.Errorf("%w: %s", ErrProtocolViolation, fmt.Sprintf(format, args...)))
}
