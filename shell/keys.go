package shell

// action is what a key press asks for.
type action int

const (
	actionNone action = iota
	actionToggle
	actionNext
	actionPrevious
	actionForward
	actionBackward
	actionVolumeUp
	actionVolumeDown
	actionRepeat
	actionShuffle
	actionStop
	actionFadeNext
	actionQuit
)

var keymap = map[string]action{
	" ":      actionToggle,
	"n":      actionNext,
	"p":      actionPrevious,
	"l":      actionForward,
	"h":      actionBackward,
	"\x1b[C": actionForward,
	"\x1b[D": actionBackward,
	"+":      actionVolumeUp,
	"=":      actionVolumeUp,
	"-":      actionVolumeDown,
	"r":      actionRepeat,
	"z":      actionShuffle,
	"s":      actionStop,
	"f":      actionFadeNext,
	"q":      actionQuit,
	"\x03":   actionQuit, // ctrl+c in raw mode
}

func parseKey(b []byte) action {
	return keymap[string(b)]
}

// Keys documents the bindings for help output.
const Keys = "space play/pause  n/p next/previous  ←/→ jump  +/- volume  r repeat  z shuffle  s stop  f fade to next  q quit"
