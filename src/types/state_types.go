package types

// PassengerState is the position of a passenger in its trip cycle. Used for logging.
type PassengerState int

const (
	PS_Idle PassengerState = iota
	PS_Requested
	PS_AwaitingPickup
	PS_Boarded
	PS_AwaitingArrival
	PS_Exited
)

func (s PassengerState) String() string {
	switch s {
	case PS_Idle:
		return "Idle"
	case PS_Requested:
		return "Requested"
	case PS_AwaitingPickup:
		return "AwaitingPickup"
	case PS_Boarded:
		return "Boarded"
	case PS_AwaitingArrival:
		return "AwaitingArrival"
	case PS_Exited:
		return "Exited"
	}
	return "Unknown"
}

// ElevatorState is the position of an elevator in its serve loop. Used for logging.
type ElevatorState int

const (
	ES_Scanning ElevatorState = iota
	ES_Claimed
	ES_TravelingToPickup
	ES_WaitingBoard
	ES_TravelingToDestination
	ES_WaitingExit
	ES_Terminated
)

func (s ElevatorState) String() string {
	switch s {
	case ES_Scanning:
		return "Scanning"
	case ES_Claimed:
		return "Claimed"
	case ES_TravelingToPickup:
		return "TravelingToPickup"
	case ES_WaitingBoard:
		return "WaitingBoard"
	case ES_TravelingToDestination:
		return "TravelingToDestination"
	case ES_WaitingExit:
		return "WaitingExit"
	case ES_Terminated:
		return "Terminated"
	}
	return "Unknown"
}
