package elev_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"liftsync/src/elev"
	"liftsync/src/passenger"
	"liftsync/src/registry"
	"liftsync/src/trace"
	"liftsync/src/types"
)

const testTimeout = 5 * time.Second

// world is a minimal building that checks the physical side of every hand-off.
type world struct {
	mu       sync.Mutex
	floor    map[int]int
	open     map[int]bool
	moves    map[int]int
	at       map[int]int
	pickups  int
	arrivals []string
	faults   []string
}

func newWorld(elevatorStarts []int, passengerStarts []int) *world {
	w := &world{floor: map[int]int{}, open: map[int]bool{}, moves: map[int]int{}, at: map[int]int{}}
	for e, f := range elevatorStarts {
		w.floor[e] = f
	}
	for p, f := range passengerStarts {
		w.at[p] = f
	}
	return w
}

func (w *world) fault(format string, args ...any) {
	w.faults = append(w.faults, fmt.Sprintf(format, args...))
}

func (w *world) Move(e int, dir types.MotorDirection) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.open[e] {
		w.fault("elevator %d moved with door open", e)
	}
	w.floor[e] += int(dir)
	w.moves[e]++
}

func (w *world) OpenDoor(e int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open[e] = true
}

func (w *world) CloseDoor(e int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open[e] = false
}

func (w *world) Enter(p, e int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.open[e] || w.floor[e] != w.at[p] {
		w.fault("passenger %d at floor %d entered elevator %d at floor %d (open=%t)", p, w.at[p], e, w.floor[e], w.open[e])
	}
	w.pickups++
}

func (w *world) Exit(p, e int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.open[e] {
		w.fault("passenger %d left elevator %d with door closed", p, e)
	}
	w.at[p] = w.floor[e]
	w.arrivals = append(w.arrivals, fmt.Sprintf("%d@%d", p, w.floor[e]))
}

// runAll starts every elevator and passenger and fails the test if they do not all return.
func runAll(t *testing.T, reg *registry.Registry, w *world, elevatorStarts []int, trips [][]types.Trip, opts ...elev.Option) {
	t.Helper()
	var wg sync.WaitGroup
	errs := make(chan error, len(elevatorStarts)+len(trips))
	for e, start := range elevatorStarts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- elev.Run(reg, e, start, w, opts...)
		}()
	}
	for p, plan := range trips {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- passenger.RunTrips(reg, p, plan, w)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(testTimeout):
		reg.Shutdown()
		t.Fatal("Run did not terminate")
	}
	close(errs)
	for err := range errs {
		if err != nil {
			t.Error(err)
		}
	}
	for _, f := range w.faults {
		t.Error(f)
	}
}

func TestTravel(t *testing.T) {
	cases := []struct {
		from, to int
		want     []types.MotorDirection
	}{
		{3, 7, []types.MotorDirection{types.MD_Up, types.MD_Up, types.MD_Up, types.MD_Up}},
		{2, 0, []types.MotorDirection{types.MD_Down, types.MD_Down}},
		{5, 5, nil},
	}
	for _, c := range cases {
		var got []types.MotorDirection
		car := types.CarFuncs{MoveFn: func(elevator int, dir types.MotorDirection) {
			got = append(got, dir)
		}}
		elev.Travel(car, 0, c.from, c.to)
		if fmt.Sprint(got) != fmt.Sprint(c.want) {
			t.Errorf("Travel(%d, %d): expected %v, got %v", c.from, c.to, c.want, got)
		}
	}
}

func TestSinglePassengerServedInSequence(t *testing.T) {
	trips := []types.Trip{{From: 3, To: 7}, {From: 7, To: 1}, {From: 1, To: 5}}
	reg := registry.New(1, len(trips))
	w := newWorld([]int{0}, []int{3})

	runAll(t, reg, w, []int{0}, [][]types.Trip{trips})

	want := "[0@7 0@1 0@5]"
	if fmt.Sprint(w.arrivals) != want {
		t.Errorf("Expected arrivals %s, got %v", want, w.arrivals)
	}
	// 0->3, 3->7, 7->1, 1->5
	if w.moves[0] != 3+4+6+4 {
		t.Errorf("Expected 17 moves, got %d", w.moves[0])
	}
	if reg.TripsRemaining() != 0 || reg.Claims(0) != 3 {
		t.Errorf("Expected counter 0 and 3 claims, got %d and %d", reg.TripsRemaining(), reg.Claims(0))
	}
}

func TestOneElevatorTwoTrips(t *testing.T) {
	rec := trace.NewRecorder()
	reg := registry.New(1, 2, registry.WithObserver(rec))
	w := newWorld([]int{0}, []int{0})

	runAll(t, reg, w, []int{0}, [][]types.Trip{{{From: 0, To: 5}, {From: 5, To: 2}}})

	if w.pickups != 2 || len(w.arrivals) != 2 {
		t.Errorf("Expected 2 pickups and 2 arrivals, got %d and %d", w.pickups, len(w.arrivals))
	}
	if reg.TripsRemaining() != 0 {
		t.Errorf("Expected counter 0, got %d", reg.TripsRemaining())
	}
	if err := rec.VerifyComplete(1, 2); err != nil {
		t.Error(err)
	}
}

func TestThreePassengersTwoElevators(t *testing.T) {
	rec := trace.NewRecorder()
	reg := registry.New(3, 1, registry.WithObserver(rec))
	trips := [][]types.Trip{{{From: 0, To: 4}}, {{From: 2, To: 0}}, {{From: 4, To: 1}}}
	w := newWorld([]int{0, 4}, []int{0, 2, 4})

	runAll(t, reg, w, []int{0, 4}, trips)

	if err := rec.VerifyComplete(3, 1); err != nil {
		t.Error(err)
	}
	if reg.Claims(0)+reg.Claims(1) != 3 {
		t.Errorf("Expected 3 claims in total, got %d", reg.Claims(0)+reg.Claims(1))
	}
	if reg.TripsRemaining() != 0 {
		t.Errorf("Expected counter 0, got %d", reg.TripsRemaining())
	}
}

func TestManyElevatorsTerminate(t *testing.T) {
	const passengers, tripsEach, elevators = 8, 3, 5
	rec := trace.NewRecorder()
	reg := registry.New(passengers, tripsEach, registry.WithObserver(rec))

	trips := make([][]types.Trip, passengers)
	starts := make([]int, passengers)
	for p := range passengers {
		floor := p % 6
		starts[p] = floor
		for range tripsEach {
			next := (floor + 1 + p) % 6
			if next == floor {
				next = (floor + 1) % 6
			}
			trips[p] = append(trips[p], types.Trip{From: floor, To: next})
			floor = next
		}
	}
	w := newWorld(make([]int, elevators), starts)

	runAll(t, reg, w, make([]int, elevators), trips)

	if err := rec.VerifyComplete(passengers, tripsEach); err != nil {
		t.Error(err)
	}
	total := 0
	for e := range elevators {
		total += reg.Claims(e)
	}
	if total != passengers*tripsEach {
		t.Errorf("Expected %d claims, got %d", passengers*tripsEach, total)
	}
}

func TestWithTraversal(t *testing.T) {
	var segments int
	express := func(car types.Car, id, from, to int) {
		segments++
		if from != to {
			car.Move(id, types.MotorDirection(to-from))
		}
	}
	reg := registry.New(1, 1)
	w := newWorld([]int{2}, []int{2})

	runAll(t, reg, w, []int{2}, [][]types.Trip{{{From: 2, To: 6}}}, elev.WithTraversal(express))

	if segments != 2 {
		t.Errorf("Expected 2 traversals, got %d", segments)
	}
	if w.moves[0] != 1 || w.floor[0] != 6 {
		t.Errorf("Expected one move to floor 6, got %d moves ending at %d", w.moves[0], w.floor[0])
	}
}

func TestShutdownStopsWaitingElevator(t *testing.T) {
	reg := registry.New(1, 1)
	done := make(chan error, 1)
	go func() { done <- elev.Run(reg, 0, 0, types.CarFuncs{}) }()

	time.Sleep(10 * time.Millisecond)
	reg.Shutdown()
	select {
	case err := <-done:
		if !errors.Is(err, registry.ErrClosed) {
			t.Errorf("Expected ErrClosed, got %v", err)
		}
	case <-time.After(testTimeout):
		t.Fatal("Elevator was not released by Shutdown")
	}
}
