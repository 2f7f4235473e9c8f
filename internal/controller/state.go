package controller

type State int

const (
	StateInitializing State = iota
	StateEnterManual
	StatePolling
	StateDegradedWait
	StateActuating
	StateDisplaying
	StateAwaitingNextCycle
	StateTerminating
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateEnterManual:
		return "enter manual"
	case StatePolling:
		return "polling"
	case StateDegradedWait:
		return "degraded wait"
	case StateActuating:
		return "actuating"
	case StateDisplaying:
		return "displaying"
	case StateAwaitingNextCycle:
		return "awaiting next cycle"
	case StateTerminating:
		return "terminating"
	default:
		return "unknown"
	}
}
