package renderer

import (
	"time"

	"github.com/anisan-cli/trackplayer/metadata"
)

// Event is a low-level signal emitted by a Handle.
type Event interface {
	rendererEvent()
}

// StateChanged reports a new raw state. Err is set for StateError.
type StateChanged struct {
	State State
	Err   *Error
}

// TransitionReason explains why the handle moved to another item.
type TransitionReason int

const (
	// TransitionAuto is a natural advance at the end of an item.
	TransitionAuto TransitionReason = iota
	// TransitionSeek follows an explicit jump to another item.
	TransitionSeek
	// TransitionPlaylistChanged follows SetItems.
	TransitionPlaylistChanged
	// TransitionRepeat is the same item starting over.
	TransitionRepeat
)

// ItemTransition reports that the handle now renders a different item, or the same one again.
type ItemTransition struct {
	Reason      TransitionReason
	OldPosition time.Duration
}

// MetadataArrived carries raw metadata entries. Timed entries arrive during
// playback (stream titles), the others describe the loaded media.
type MetadataArrived struct {
	Timed   bool
	Entries []metadata.Entry
}

// FocusChanged reports audio focus loss or regain.
type FocusChanged struct {
	Lost      bool
	Permanent bool
}

// Button identifies a transport control.
type Button int

const (
	ButtonPlay Button = iota
	ButtonPause
	ButtonStop
	ButtonNext
	ButtonPrevious
	ButtonSeek
	ButtonSetRate
	ButtonSetRating
	ButtonJumpForward
	ButtonJumpBackward
	ButtonCustomAction
)

var buttonNames = map[Button]string{
	ButtonPlay:         "play",
	ButtonPause:        "pause",
	ButtonStop:         "stop",
	ButtonNext:         "next",
	ButtonPrevious:     "previous",
	ButtonSeek:         "seek",
	ButtonSetRate:      "rate",
	ButtonSetRating:    "rating",
	ButtonJumpForward:  "jump_forward",
	ButtonJumpBackward: "jump_backward",
	ButtonCustomAction: "custom_action",
}

func (b Button) String() string {
	return buttonNames[b]
}

// ParseButton resolves a name produced by Button.String.
func ParseButton(name string) (Button, bool) {
	for b, n := range buttonNames {
		if n == name {
			return b, true
		}
	}
	return 0, false
}

// Buttons lists every known control in declaration order.
func Buttons() []Button {
	return []Button{
		ButtonPlay, ButtonPause, ButtonStop, ButtonNext, ButtonPrevious, ButtonSeek,
		ButtonSetRate, ButtonSetRating, ButtonJumpForward, ButtonJumpBackward, ButtonCustomAction,
	}
}

// ControlButton is a user-originated control press relayed by the host shell.
// Only the field relevant to Button is meaningful.
type ControlButton struct {
	Button   Button
	Position time.Duration
	Rate     float64
	Rating   float64
	Interval time.Duration
	Action   string
}

// Failure reports a playback error. It precedes the StateChanged into StateError.
type Failure struct {
	Err *Error
}

func (StateChanged) rendererEvent()    {}
func (ItemTransition) rendererEvent()  {}
func (MetadataArrived) rendererEvent() {}
func (FocusChanged) rendererEvent()    {}
func (ControlButton) rendererEvent()   {}
func (Failure) rendererEvent()         {}
