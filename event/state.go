package event

// State is the engine-level playback state derived from the active renderer.
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
