package marquee

// Phase is the coarse lifecycle phase of an engine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseSuspended
)

// SuspendReason explains why a mounted engine is not animating.
type SuspendReason int

const (
	ReasonNone SuspendReason = iota
	ReasonOffscreen
	ReasonReducedMotion
)

// RunState is the engine run state. Reason is set only while suspended.
type RunState struct {
	Phase  Phase
	Reason SuspendReason
}

var (
	stateIdle    = RunState{Phase: PhaseIdle}
	stateRunning = RunState{Phase: PhaseRunning}
)

// Running reports whether the engine is animating.
func (s RunState) Running() bool {
	return s.Phase == PhaseRunning
}

// Suspended reports whether the engine is mounted but frozen.
func (s RunState) Suspended() bool {
	return s.Phase == PhaseSuspended
}

func (s RunState) String() string {
	switch s.Phase {
	case PhaseRunning:
		return "running"
	case PhaseSuspended:
		switch s.Reason {
		case ReasonOffscreen:
			return "suspended(offscreen)"
		case ReasonReducedMotion:
			return "suspended(reduced-motion)"
		}
		return "suspended"
	default:
		return "idle"
	}
}

// nextState computes the run state from the current signals. An idle engine
// leaves Idle only once the copy has a width; reduced motion outranks
// visibility as the suspend reason.
func nextState(cur RunState, mounted bool, width float64, visible, reduced bool) RunState {
	if !mounted {
		return stateIdle
	}
	if cur.Phase == PhaseIdle && width <= 0 {
		return stateIdle
	}
	switch {
	case reduced:
		return RunState{Phase: PhaseSuspended, Reason: ReasonReducedMotion}
	case !visible:
		return RunState{Phase: PhaseSuspended, Reason: ReasonOffscreen}
	default:
		return stateRunning
	}
}
