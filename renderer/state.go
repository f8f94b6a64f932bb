package renderer

// State is the raw player state reported by a Handle.
type State int

const (
	StateIdle State = iota
	StateBuffering
	StateReady
	StatePlaying
	StatePaused
	StateEnded
	StateError
)

var stateNames = [...]string{
	StateIdle:      "idle",
	StateBuffering: "buffering",
	StateReady:     "ready",
	StatePlaying:   "playing",
	StatePaused:    "paused",
	StateEnded:     "ended",
	StateError:     "error",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
