package speaker

import (
	"errors"

	"github.com/gopxl/beep/v2"
)

// ErrUnavailable is returned when the build has no audio output.
var ErrUnavailable = errors.New("audio output unavailable in this build")

// SampleRate is what every stream is resampled to before mixing.
const SampleRate = beep.SampleRate(44100)

// output is the device streams are mixed into. Lock guards every streamer
// that was handed to Play.
type output interface {
	SampleRate() beep.SampleRate
	Play(s beep.Streamer)
	Lock()
	Unlock()
}
