//go:build (linux && cgo) || windows || darwin

package speaker

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

var (
	device     *speakerOutput
	deviceErr  error
	deviceOnce sync.Once
)

// speakerOutput is the process-wide sound card. Handles share it through
// the speaker's own mixer, so a crossfade plays two streams at once.
type speakerOutput struct{}

func defaultOutput() (output, error) {
	deviceOnce.Do(func() {
		if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
			deviceErr = err
			return
		}
		device = &speakerOutput{}
	})
	if deviceErr != nil {
		return nil, deviceErr
	}
	return device, nil
}

func (*speakerOutput) SampleRate() beep.SampleRate { return SampleRate }
func (*speakerOutput) Play(s beep.Streamer)        { speaker.Play(s) }
func (*speakerOutput) Lock()                       { speaker.Lock() }
func (*speakerOutput) Unlock()                     { speaker.Unlock() }
