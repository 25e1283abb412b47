// Package trace records flag transitions emitted by the registry and checks
// them for exclusive claims and stage ordering.
package trace

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"liftsync/src/types"
)

var ErrBadTrace = errors.New("bad trace")

type TripKey struct {
	Passenger  int
	TripNumber int
}

type Recorder struct {
	mu     sync.Mutex
	events []types.Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (rec *Recorder) Observe(event types.Event) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.events = append(rec.events, event)
}

func (rec *Recorder) Events() []types.Event {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]types.Event(nil), rec.events...)
}

// Count returns the number of recorded events of the given stage.
func (rec *Recorder) Count(stage types.Stage) int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	n := 0
	for _, ev := range rec.events {
		if ev.Stage == stage {
			n++
		}
	}
	return n
}

// Trips groups the events per trip, each group ordered by sequence number.
func (rec *Recorder) Trips() map[TripKey][]types.Event {
	trips := make(map[TripKey][]types.Event)
	for _, ev := range rec.Events() {
		key := TripKey{Passenger: ev.Passenger, TripNumber: ev.TripNumber}
		trips[key] = append(trips[key], ev)
	}
	for _, evs := range trips {
		sort.Slice(evs, func(i, j int) bool { return evs[i].Seq < evs[j].Seq })
	}
	return trips
}

// Verify checks every recorded trip: stages appear in order without gaps or repeats,
// sequence numbers strictly increase, and every stage after the claim names the same elevator.
// Trips still in progress are accepted as long as their prefix is valid.
func (rec *Recorder) Verify() error {
	var errs []error
	for key, evs := range rec.Trips() {
		if err := verifyTrip(evs); err != nil {
			errs = append(errs, fmt.Errorf("passenger %d trip %d: %w", key.Passenger, key.TripNumber, err))
		}
	}
	return errors.Join(errs...)
}

// VerifyComplete runs Verify and also requires exactly tripsPerPassenger finished trips per passenger.
func (rec *Recorder) VerifyComplete(passengers, tripsPerPassenger int) error {
	if err := rec.Verify(); err != nil {
		return err
	}
	trips := rec.Trips()
	var errs []error
	for p := range passengers {
		for n := 1; n <= tripsPerPassenger; n++ {
			evs := trips[TripKey{Passenger: p, TripNumber: n}]
			if len(evs) != int(types.StageExited)+1 {
				errs = append(errs, fmt.Errorf("%w: passenger %d trip %d has %d of %d stages",
					ErrBadTrace, p, n, len(evs), int(types.StageExited)+1))
			}
		}
	}
	if len(trips) != passengers*tripsPerPassenger {
		errs = append(errs, fmt.Errorf("%w: recorded %d trips, expected %d", ErrBadTrace, len(trips), passengers*tripsPerPassenger))
	}
	return errors.Join(errs...)
}

func verifyTrip(evs []types.Event) error {
	elevator := types.NoElevator
	for i, ev := range evs {
		if ev.Stage != types.Stage(i) {
			return fmt.Errorf("%w: event %d is %s, expected %s", ErrBadTrace, i, ev.Stage, types.Stage(i))
		}
		if i > 0 && ev.Seq <= evs[i-1].Seq {
			return fmt.Errorf("%w: %s has seq %d after seq %d", ErrBadTrace, ev.Stage, ev.Seq, evs[i-1].Seq)
		}
		if i > 0 && ev.Time.Before(evs[i-1].Time) {
			return fmt.Errorf("%w: %s happened before %s", ErrBadTrace, ev.Stage, evs[i-1].Stage)
		}
		switch {
		case ev.Stage == types.StagePublished:
			if ev.Elevator != types.NoElevator {
				return fmt.Errorf("%w: published trip already claimed by %d", ErrBadTrace, ev.Elevator)
			}
		case ev.Stage == types.StageClaimed:
			elevator = ev.Elevator
		case ev.Elevator != elevator:
			return fmt.Errorf("%w: %s by elevator %d, claimed by %d", ErrBadTrace, ev.Stage, ev.Elevator, elevator)
		}
	}
	return nil
}

// LogObserver writes every transition to the default slog logger at debug level.
type LogObserver struct{}

func (LogObserver) Observe(event types.Event) {
	slog.Debug("Trip transition",
		"seq", event.Seq,
		"stage", event.Stage,
		"passenger", event.Passenger,
		"trip", event.TripNumber,
		"elevator", event.Elevator,
		"from", event.Trip.From,
		"to", event.Trip.To)
}

// Multi fans out every event to each observer in order.
type Multi []interface{ Observe(types.Event) }

func (m Multi) Observe(event types.Event) {
	for _, obs := range m {
		obs.Observe(event)
	}
}
