package types

// Rider performs the physical actions of a passenger. Calls happen outside the registry lock.
type Rider interface {
	Enter(passenger, elevator int)
	Exit(passenger, elevator int)
}

// Car performs the physical actions of an elevator. Calls happen outside the registry lock.
type Car interface {
	Move(elevator int, dir MotorDirection)
	OpenDoor(elevator int)
	CloseDoor(elevator int)
}

// RiderFuncs adapts plain functions to Rider. Nil fields are no-ops.
type RiderFuncs struct {
	EnterFn func(passenger, elevator int)
	ExitFn  func(passenger, elevator int)
}

func (r RiderFuncs) Enter(passenger, elevator int) {
	if r.EnterFn != nil {
		r.EnterFn(passenger, elevator)
	}
}

func (r RiderFuncs) Exit(passenger, elevator int) {
	if r.ExitFn != nil {
		r.ExitFn(passenger, elevator)
	}
}

// CarFuncs adapts plain functions to Car. Nil fields are no-ops.
type CarFuncs struct {
	MoveFn  func(elevator int, dir MotorDirection)
	OpenFn  func(elevator int)
	CloseFn func(elevator int)
}

func (c CarFuncs) Move(elevator int, dir MotorDirection) {
	if c.MoveFn != nil {
		c.MoveFn(elevator, dir)
	}
}

func (c CarFuncs) OpenDoor(elevator int) {
	if c.OpenFn != nil {
		c.OpenFn(elevator)
	}
}

func (c CarFuncs) CloseDoor(elevator int) {
	if c.CloseFn != nil {
		c.CloseFn(elevator)
	}
}
