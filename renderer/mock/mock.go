// Package mock provides an in-memory renderer.Handle.
//
// It behaves like a well-mannered player without producing sound: SetItems
// reports a transition, Prepare buffers instantly, Play/Pause flip state, and
// test code scripts the rest (Finish, Fail, metadata, focus, buttons).
// With Realtime set the position advances with the wall clock and items end
// on their own, which makes it usable as a silent backend.
package mock

import (
	"sync"
	"time"

	"github.com/anisan-cli/trackplayer/media"
	"github.com/anisan-cli/trackplayer/metadata"
	"github.com/anisan-cli/trackplayer/renderer"
	"go.uber.org/atomic"
)

// DefaultDuration is used for items without a duration hint.
const DefaultDuration = 3 * time.Minute

// Options tunes a Handle.
type Options struct {
	Realtime bool
}

// Handle is the in-memory renderer.
type Handle struct {
	*renderer.Emitter

	opts Options

	mu       sync.Mutex
	items    []media.Item
	index    int
	position time.Duration
	since    time.Time
	duration time.Duration
	buffered time.Duration
	volume   float64
	rate     float64
	intent   bool
	calls    []string

	released *atomic.Bool
	releases *atomic.Int32
	stop     chan struct{}
}

func New(opts Options) *Handle {
	h := &Handle{
		Emitter:  renderer.NewEmitter(),
		opts:     opts,
		volume:   1,
		rate:     1,
		released: atomic.NewBool(false),
		releases: atomic.NewInt32(0),
		stop:     make(chan struct{}),
	}

	if opts.Realtime {
		go h.clock()
	}
	return h
}

func (h *Handle) record(call string) {
	h.calls = append(h.calls, call)
}

// Calls lists the transport methods invoked so far, in order.
func (h *Handle) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func (h *Handle) SetItems(items []media.Item) error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("set_items")

	old := h.positionLocked()
	h.items = append([]media.Item(nil), items...)
	h.index = 0
	h.load()

	if len(h.items) == 0 {
		h.SetState(renderer.StateIdle)
		return nil
	}

	h.Emit(renderer.ItemTransition{Reason: renderer.TransitionPlaylistChanged, OldPosition: old})
	if h.State() != renderer.StateIdle {
		h.prepareLocked()
	}
	return nil
}

// load resets per-item progress for items[index].
func (h *Handle) load() {
	h.position = 0
	h.since = time.Now()
	h.buffered = 0
	h.duration = 0
	if h.index < len(h.items) {
		h.duration = h.items[h.index].DurationHint().OrElse(DefaultDuration)
	}
}

func (h *Handle) Prepare() error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("prepare")
	h.prepareLocked()
	return nil
}

func (h *Handle) prepareLocked() {
	if len(h.items) == 0 {
		return
	}

	h.SetState(renderer.StateBuffering)
	h.buffered = h.duration
	h.settleLocked()
}

// settleLocked moves a buffered handle to Playing or Ready depending on the play intent.
func (h *Handle) settleLocked() {
	h.since = time.Now()
	if h.intent {
		h.SetState(renderer.StatePlaying)
	} else {
		h.SetState(renderer.StateReady)
	}
}

func (h *Handle) Play() error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("play")

	h.intent = true
	switch h.State() {
	case renderer.StateReady, renderer.StatePaused:
		h.since = time.Now()
		h.SetState(renderer.StatePlaying)
	case renderer.StateIdle:
		h.prepareLocked()
	}
	return nil
}

func (h *Handle) Pause() error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("pause")

	h.position = h.positionLocked()
	h.intent = false
	if h.State() == renderer.StatePlaying {
		h.SetState(renderer.StatePaused)
	}
	return nil
}

func (h *Handle) Stop() error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("stop")

	h.intent = false
	h.position = 0
	h.buffered = 0
	h.SetState(renderer.StateIdle)
	return nil
}

func (h *Handle) Seek(position time.Duration) error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("seek")

	switch {
	case position < 0:
		position = 0
	case position > h.duration:
		position = h.duration
	}
	h.position = position
	h.since = time.Now()

	if h.State() == renderer.StateEnded {
		h.prepareLocked()
	}
	return nil
}

func (h *Handle) SetVolume(v float64) error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = v
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
	h.position = h.positionLocked()
	h.since = time.Now()
	h.rate = r
	return nil
}

func (h *Handle) Rate() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rate
}

func (h *Handle) positionLocked() time.Duration {
	pos := h.position
	if h.opts.Realtime && h.State() == renderer.StatePlaying {
		pos += time.Duration(float64(time.Since(h.since)) * h.rate)
	}
	if pos > h.duration {
		pos = h.duration
	}
	return pos
}

func (h *Handle) Position() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.positionLocked()
}

func (h *Handle) Duration() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.duration
}

func (h *Handle) BufferedPosition() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buffered
}

func (h *Handle) IsPlaying() bool {
	return h.State() == renderer.StatePlaying
}

// Release closes the event stream. Only the first call has an effect.
func (h *Handle) Release() error {
	h.releases.Inc()
	if !h.released.CompareAndSwap(false, true) {
		return nil
	}

	h.mu.Lock()
	h.record("release")
	h.mu.Unlock()

	close(h.stop)
	h.Emitter.Close()
	return nil
}

func (h *Handle) Released() bool {
	return h.released.Load()
}

// ReleaseCalls counts every Release invocation, including redundant ones.
func (h *Handle) ReleaseCalls() int32 {
	return h.releases.Load()
}

func (h *Handle) Items() []media.Item {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]media.Item(nil), h.items...)
}

// SetPosition moves the playhead without recording a seek.
func (h *Handle) SetPosition(position time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.position = position
	h.since = time.Now()
}

// SetDuration overrides the loaded item's duration.
func (h *Handle) SetDuration(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.duration = d
}

// Finish ends the current item: the handle advances to the next loaded item
// or, at the end of its list, enters StateEnded.
func (h *Handle) Finish() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.items) == 0 || h.released.Load() {
		return
	}

	h.position = h.duration
	if h.index+1 < len(h.items) {
		old := h.position
		h.index++
		h.load()
		h.Emit(renderer.ItemTransition{Reason: renderer.TransitionAuto, OldPosition: old})
		return
	}

	h.SetState(renderer.StateEnded)
}

// Fail reports a renderer failure.
func (h *Handle) Fail(code, message string) {
	h.Emitter.Fail(renderer.NewError("mock", code, message))
}

func (h *Handle) EmitMetadata(timed bool, entries ...metadata.Entry) {
	h.Emit(renderer.MetadataArrived{Timed: timed, Entries: entries})
}

func (h *Handle) EmitFocus(lost, permanent bool) {
	h.Emit(renderer.FocusChanged{Lost: lost, Permanent: permanent})
}

func (h *Handle) Press(button renderer.ControlButton) {
	h.Emit(button)
}

func (h *Handle) clock() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}

		if h.IsPlaying() && h.Position() >= h.Duration() {
			h.Finish()
		}
	}
}

var _ renderer.Handle = (*Handle)(nil)
