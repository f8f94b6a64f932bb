package playback

import (
	"fmt"
	"time"

	"github.com/anisan-cli/trackplayer/queue"
	"github.com/anisan-cli/trackplayer/renderer"
	"github.com/samber/lo"
)

// Options configures a Controller.
type Options struct {
	// Renderer is handed to the factory for every handle the controller allocates.
	Renderer renderer.Config `json:"renderer"`

	// AutoHandleInterruptions pauses (or ducks) on audio focus loss and resumes on regain.
	AutoHandleInterruptions bool `json:"auto_handle_interruptions"`
	// AlwaysPauseOnInterruption pauses instead of ducking on transient focus loss.
	AlwaysPauseOnInterruption bool `json:"always_pause_on_interruption"`

	// ProgressInterval is the period of Progress events while playing. Zero disables them.
	ProgressInterval time.Duration `json:"progress_interval"`

	// Capabilities lists the control buttons relayed as Remote events.
	Capabilities []renderer.Button `json:"capabilities"`

	ForwardJumpInterval  time.Duration `json:"forward_jump_interval"`
	BackwardJumpInterval time.Duration `json:"backward_jump_interval"`

	// Volume and RepeatMode are applied once at setup.
	Volume     float64          `json:"volume"`
	RepeatMode queue.RepeatMode `json:"repeat_mode"`
}

const (
	DefaultJumpInterval     = 15 * time.Second
	DefaultProgressInterval = time.Second
	duckVolumeFactor        = 0.2
)

// DefaultOptions mirrors the defaults of the configuration registry.
func DefaultOptions() Options {
	return Options{
		Renderer: renderer.Config{
			ContentType: renderer.ContentMusic,
			Buffer: renderer.Buffer{
				Min:  50 * time.Second,
				Max:  50 * time.Second,
				Play: 2500 * time.Millisecond,
			},
		},
		AutoHandleInterruptions: true,
		ProgressInterval:        DefaultProgressInterval,
		Capabilities: []renderer.Button{
			renderer.ButtonPlay,
			renderer.ButtonPause,
			renderer.ButtonStop,
			renderer.ButtonNext,
			renderer.ButtonPrevious,
			renderer.ButtonSeek,
			renderer.ButtonJumpForward,
			renderer.ButtonJumpBackward,
		},
		ForwardJumpInterval:  DefaultJumpInterval,
		BackwardJumpInterval: DefaultJumpInterval,
		Volume:               1,
	}
}

// Validate reports the first out-of-range value.
func (o Options) Validate() error {
	b := o.Renderer.Buffer

	switch {
	case o.Renderer.CacheSize < 0:
		return invalid("cache size %d is negative", o.Renderer.CacheSize)
	case !lo.Contains(renderer.ContentTypes(), o.Renderer.ContentType):
		return invalid("unknown content type %q", o.Renderer.ContentType)
	case b.Min < 0 || b.Max < 0 || b.Play < 0 || b.Back < 0:
		return invalid("buffer durations must not be negative")
	case b.Min > b.Max:
		return invalid("min buffer %s exceeds max buffer %s", b.Min, b.Max)
	case o.ProgressInterval < 0:
		return invalid("progress interval %s is negative", o.ProgressInterval)
	case o.ForwardJumpInterval < 0 || o.BackwardJumpInterval < 0:
		return invalid("jump intervals must not be negative")
	case o.Volume < 0 || o.Volume > 1:
		return invalid("volume %v not in [0, 1]", o.Volume)
	}

	for _, c := range o.Capabilities {
		if _, ok := renderer.ParseButton(c.String()); !ok {
			return invalid("unknown capability %d", c)
		}
	}

	return nil
}

// ParseCapabilities resolves button names, failing on the first unknown one.
func ParseCapabilities(names []string) ([]renderer.Button, error) {
	buttons := make([]renderer.Button, 0, len(names))
	for _, name := range names {
		b, ok := renderer.ParseButton(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown capability %q", ErrInvalidArgument, name)
		}
		buttons = append(buttons, b)
	}
	return lo.Uniq(buttons), nil
}

func (o Options) capable(b renderer.Button) bool {
	return lo.Contains(o.Capabilities, b)
}
