// Package speaker implements renderer.Handle in process: media is decoded
// with beep and mixed into the system sound card.
//
// Remote items are downloaded completely before they become ready, so
// BufferedPosition is always the full duration of a loaded item.
package speaker

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/anisan-cli/trackplayer/log"
	"github.com/anisan-cli/trackplayer/media"
	"github.com/anisan-cli/trackplayer/renderer"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/samber/mo"
	"github.com/sourcegraph/conc"
	"go.uber.org/atomic"
)

// resampleQuality trades CPU for fidelity, 4 is what beep suggests for music.
const resampleQuality = 4

// Handle plays one stream at a time through an output.
type Handle struct {
	*renderer.Emitter

	out    output
	ctx    context.Context
	cancel context.CancelFunc
	loads  conc.WaitGroup

	mu      sync.Mutex
	items   []media.Item
	index   int
	intent  bool
	started bool
	loading bool
	seekTo  mo.Option[time.Duration]
	volume  float64
	rate    float64
	// generation invalidates loader results and end callbacks of replaced streams
	generation int

	stream    beep.StreamSeekCloser
	format    beep.Format
	resampler *beep.Resampler
	gain      *effects.Volume
	ctrl      *beep.Ctrl

	released *atomic.Bool
}

// Factory returns a renderer.Factory writing to the system sound card.
func Factory() renderer.Factory {
	return func(renderer.Config) (renderer.Handle, error) {
		out, err := defaultOutput()
		if err != nil {
			return nil, renderer.NewError("speaker", "unavailable", err.Error())
		}
		return newHandle(out), nil
	}
}

func newHandle(out output) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handle{
		Emitter:  renderer.NewEmitter(),
		out:      out,
		ctx:      ctx,
		cancel:   cancel,
		volume:   1,
		rate:     1,
		released: atomic.NewBool(false),
	}
}

func (h *Handle) SetItems(items []media.Item) error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	old := h.positionLocked()
	h.items = append([]media.Item(nil), items...)
	h.index = 0

	if len(h.items) == 0 {
		h.unloadLocked()
		h.SetState(renderer.StateIdle)
		return nil
	}

	h.Emit(renderer.ItemTransition{Reason: renderer.TransitionPlaylistChanged, OldPosition: old})
	if h.State() != renderer.StateIdle {
		h.loadLocked()
	}
	return nil
}

// unloadLocked detaches the current stream from the output and closes it.
func (h *Handle) unloadLocked() {
	h.generation++
	h.loading = false

	if h.stream == nil {
		return
	}

	h.out.Lock()
	h.ctrl.Streamer = nil
	h.out.Unlock()

	if err := h.stream.Close(); err != nil {
		log.Warnf("speaker: close stream: %v", err)
	}
	h.stream = nil
	h.ctrl = nil
	h.gain = nil
	h.resampler = nil
}

// loadLocked opens and decodes items[index] in the background. The result is
// dropped when another load or an unload happened in the meantime.
func (h *Handle) loadLocked() {
	h.unloadLocked()
	h.loading = true
	h.started = false
	h.SetState(renderer.StateBuffering)

	generation := h.generation
	item := h.items[h.index]

	h.loads.Go(func() {
		f, ext, err := open(h.ctx, item)
		var (
			stream beep.StreamSeekCloser
			format beep.Format
		)
		if err == nil {
			stream, format, err = decode(f, ext)
			if err != nil {
				f.Close()
			}
		}

		h.mu.Lock()
		defer h.mu.Unlock()

		if generation != h.generation || h.released.Load() {
			if stream != nil {
				_ = stream.Close()
			}
			return
		}
		h.loading = false

		if err != nil {
			log.Warnf("speaker: load %s: %v", item.URL(), err)
			h.Emitter.Fail(renderer.NewError("speaker", "load", err.Error()))
			return
		}
		h.installLocked(stream, format)
	})
}

// installLocked wires stream into the output, paused unless playback is wanted.
func (h *Handle) installLocked(stream beep.StreamSeekCloser, format beep.Format) {
	h.stream = stream
	h.format = format

	if pos, ok := h.seekTo.Get(); ok {
		h.seekTo = mo.None[time.Duration]()
		h.seekStreamLocked(pos)
	}

	h.resampler = beep.Resample(resampleQuality, format.SampleRate, h.out.SampleRate(), stream)
	h.resampler.SetRatio(h.ratioLocked())
	h.gain = &effects.Volume{Streamer: h.resampler, Base: 2}
	applyGain(h.gain, h.volume)
	h.ctrl = &beep.Ctrl{Streamer: h.gain, Paused: !h.intent}

	generation := h.generation
	h.out.Play(beep.Seq(h.ctrl, beep.Callback(func() {
		// runs on the output goroutine with its lock held
		go h.onEnd(generation)
	})))

	h.settleLocked()
}

func (h *Handle) settleLocked() {
	switch {
	case h.intent:
		h.started = true
		h.SetState(renderer.StatePlaying)
	case h.started:
		h.SetState(renderer.StatePaused)
	default:
		h.SetState(renderer.StateReady)
	}
}

func (h *Handle) ratioLocked() float64 {
	return float64(h.format.SampleRate) / float64(h.out.SampleRate()) * h.rate
}

// applyGain maps a linear gain onto beep's exponential volume.
func applyGain(v *effects.Volume, gain float64) {
	v.Silent = gain <= 0
	if !v.Silent {
		v.Volume = math.Log2(gain)
	}
}

func (h *Handle) onEnd(generation int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if generation != h.generation || h.released.Load() {
		return
	}

	old := h.durationLocked()
	if h.index+1 < len(h.items) {
		h.index++
		h.Emit(renderer.ItemTransition{Reason: renderer.TransitionAuto, OldPosition: old})
		h.loadLocked()
		return
	}

	h.unloadLocked()
	h.SetState(renderer.StateEnded)
}

func (h *Handle) Prepare() error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stream != nil || h.loading || len(h.items) == 0 {
		return nil
	}
	h.loadLocked()
	return nil
}

func (h *Handle) Play() error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.intent = true
	switch {
	case h.stream != nil:
		h.setPausedLocked(false)
		h.settleLocked()
	case !h.loading && len(h.items) > 0:
		h.loadLocked()
	}
	return nil
}

func (h *Handle) Pause() error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.intent = false
	if h.stream != nil {
		h.setPausedLocked(true)
		h.settleLocked()
	}
	return nil
}

func (h *Handle) setPausedLocked(paused bool) {
	h.out.Lock()
	h.ctrl.Paused = paused
	h.out.Unlock()
}

func (h *Handle) Stop() error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.intent = false
	h.unloadLocked()
	h.SetState(renderer.StateIdle)
	return nil
}

func (h *Handle) Seek(position time.Duration) error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	position = max(position, 0)
	switch {
	case h.stream != nil:
		h.out.Lock()
		h.seekStreamLocked(position)
		h.out.Unlock()
	case h.loading:
		h.seekTo = mo.Some(position)
	case h.State() == renderer.StateEnded && len(h.items) > 0:
		h.seekTo = mo.Some(position)
		h.loadLocked()
	}
	return nil
}

// seekStreamLocked clamps position into the stream. The output lock must be
// held once the stream was handed to the output.
func (h *Handle) seekStreamLocked(position time.Duration) {
	n := h.format.SampleRate.N(position)
	n = min(n, max(h.stream.Len()-1, 0))
	if err := h.stream.Seek(n); err != nil {
		log.Warnf("speaker: seek: %v", err)
	}
}

func (h *Handle) SetVolume(v float64) error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.volume = v
	if h.gain != nil {
		h.out.Lock()
		applyGain(h.gain, v)
		h.out.Unlock()
	}
	return nil
}

func (h *Handle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

func (h *Handle) SetRate(r float64) error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.rate = r
	if h.resampler != nil {
		h.out.Lock()
		h.resampler.SetRatio(h.ratioLocked())
		h.out.Unlock()
	}
	return nil
}

func (h *Handle) Rate() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rate
}

func (h *Handle) positionLocked() time.Duration {
	if h.stream == nil {
		return 0
	}

	h.out.Lock()
	pos := h.stream.Position()
	h.out.Unlock()
	return h.format.SampleRate.D(pos)
}

func (h *Handle) Position() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.positionLocked()
}

func (h *Handle) durationLocked() time.Duration {
	if h.stream == nil {
		if len(h.items) == 0 {
			return 0
		}
		return h.items[h.index].DurationHint().OrEmpty()
	}
	return h.format.SampleRate.D(h.stream.Len())
}

func (h *Handle) Duration() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.durationLocked()
}

func (h *Handle) BufferedPosition() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stream == nil {
		return 0
	}
	return h.durationLocked()
}

func (h *Handle) IsPlaying() bool {
	return h.State() == renderer.StatePlaying
}

// Release cancels downloads in flight, detaches the stream and closes the
// event stream. Only the first call has an effect.
func (h *Handle) Release() error {
	if !h.released.CompareAndSwap(false, true) {
		return nil
	}

	h.cancel()

	h.mu.Lock()
	h.unloadLocked()
	h.mu.Unlock()

	h.loads.Wait()
	h.Emitter.Close()
	return nil
}

var _ renderer.Handle = (*Handle)(nil)
