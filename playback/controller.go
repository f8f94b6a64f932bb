// Package playback implements the queued playback controller.
//
// The Controller owns the queue and the active renderer handle, runs volume
// ramps and crossfades, and republishes renderer signals as domain events on
// its bus. Public operations may be called from any goroutine but are meant
// to be serialized by the caller; renderer events are processed on a single
// internal goroutine, in arrival order.
package playback

import (
	"sync"

	"github.com/anisan-cli/trackplayer/event"
	"github.com/anisan-cli/trackplayer/fade"
	"github.com/anisan-cli/trackplayer/internal/mailbox"
	"github.com/anisan-cli/trackplayer/log"
	"github.com/anisan-cli/trackplayer/media"
	"github.com/anisan-cli/trackplayer/queue"
	"github.com/anisan-cli/trackplayer/renderer"
	"github.com/samber/mo"
	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"
)

// sourced tags a renderer event with the handle that emitted it.
type sourced struct {
	handle renderer.Handle
	event  renderer.Event
}

// transition is a track change requested from the active handle and not yet confirmed by it.
type transition struct {
	from     mo.Option[int]
	fromItem mo.Option[media.Item]
	to       int
	toItem   media.Item
}

// Controller is the queued playback engine.
type Controller struct {
	mu sync.Mutex

	factory renderer.Factory
	opts    Options
	bus     *event.Bus
	fader   *fade.Fader

	queue   *queue.Queue
	repeat  queue.RepeatMode
	current renderer.Handle
	state   event.State

	volume        float64
	rate          float64
	playWhenReady bool
	pending       []transition
	session       *session
	progress      *task

	pausedByFocus bool
	ducked        bool

	inbox    *mailbox.Mailbox[sourced]
	watchers conc.WaitGroup
	workers  conc.WaitGroup
	closed   bool
}

// New allocates the first handle through factory and starts the controller.
func New(factory renderer.Factory, opts Options) (*Controller, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	h, err := factory(opts.Renderer)
	if err != nil {
		return nil, rendererErr("allocate renderer", err)
	}

	c := &Controller{
		factory: factory,
		opts:    opts,
		bus:     event.NewBus(),
		fader:   fade.New(),
		queue:   queue.New(nil),
		repeat:  opts.RepeatMode,
		current: h,
		volume:  opts.Volume,
		rate:    1,
		inbox:   mailbox.New[sourced](),
	}

	if err := h.SetVolume(c.volume); err != nil {
		log.Warnf("playback: initial volume: %v", err)
	}

	c.watch(h)
	c.workers.Go(c.observe)

	c.mu.Lock()
	c.restartProgressLocked()
	c.mu.Unlock()

	log.Infof("playback: controller ready (repeat %s, volume %.2f)", c.repeat, c.volume)
	return c, nil
}

// Subscribe attaches a consumer to the domain event stream.
func (c *Controller) Subscribe(kinds ...event.Kind) *event.Subscription {
	return c.bus.Subscribe(kinds...)
}

// watch forwards every event of h into the inbox until h is released.
func (c *Controller) watch(h renderer.Handle) {
	c.watchers.Go(func() {
		for ev := range h.Events() {
			c.inbox.Put(sourced{handle: h, event: ev})
		}
	})
}

func (c *Controller) observe() {
	for s := range c.inbox.Out() {
		c.dispatch(s)
	}
}

// Close cancels every running task, releases every handle exactly once and
// closes the event stream. Events published before Close still reach every
// subscriber; renderer events not yet dispatched at that point are dropped.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true

	var err error
	if s := c.session; s != nil {
		err = multierr.Append(err, c.abortSessionLocked("teardown"))
	}
	if c.progress != nil {
		c.progress.cancel()
		c.progress = nil
	}
	h := c.current
	c.mu.Unlock()

	c.fader.Close()
	err = multierr.Append(err, h.Release())

	c.watchers.Wait()
	c.inbox.Close()
	c.workers.Wait()
	c.bus.Close()

	log.Info("playback: controller closed")
	return err
}

func (c *Controller) publish(ev event.Event) {
	c.bus.Publish(ev)
}

// State returns the last published playback state.
func (c *Controller) State() event.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setStateLocked(s event.State, err *renderer.Error) {
	if s == c.state && s != event.StateError {
		return
	}
	c.state = s

	ev := event.PlaybackState{State: s}
	if err != nil {
		ev.Err = &event.PlaybackError{Code: err.Code, Message: err.Message}
	}
	c.publish(ev)
}

// Options returns the options in effect.
func (c *Controller) Options() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// UpdateOptions applies options at runtime. Renderer settings affect handles
// allocated afterwards; a changed progress interval restarts the progress task at once.
func (c *Controller) UpdateOptions(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	restart := opts.ProgressInterval != c.opts.ProgressInterval
	c.opts = opts
	if restart {
		c.restartProgressLocked()
	}

	log.Debugf("playback: options updated (progress every %s)", opts.ProgressInterval)
	return nil
}
