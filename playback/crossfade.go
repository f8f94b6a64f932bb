package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/anisan-cli/trackplayer/event"
	"github.com/anisan-cli/trackplayer/log"
	"github.com/anisan-cli/trackplayer/media"
	"github.com/anisan-cli/trackplayer/queue"
	"github.com/anisan-cli/trackplayer/renderer"
	"github.com/samber/mo"
)

// SessionState is the lifecycle stage of a crossfade session.
type SessionState int

const (
	SessionPrepared SessionState = iota
	SessionFading
	SessionCompleted
	SessionAborted
)

func (s SessionState) String() string {
	switch s {
	case SessionPrepared:
		return "prepared"
	case SessionFading:
		return "fading"
	case SessionCompleted:
		return "completed"
	default:
		return "aborted"
	}
}

// session pairs the active handle with a second one seeded at the neighbouring item.
type session struct {
	primary   renderer.Handle
	secondary renderer.Handle
	previous  bool
	target    int
	item      media.Item
	state     SessionState

	primaryVolume float64
	targetVolume  float64
	release       sync.Once
}

// releaseSecondary frees the secondary handle. Only the first call does anything.
func (s *session) releaseSecondary() (err error) {
	s.release.Do(func() {
		err = s.secondary.Release()
	})
	return err
}

// CrossfadeState reports the live session's stage, if there is one.
func (c *Controller) CrossfadeState() mo.Option[SessionState] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return mo.None[SessionState]()
	}
	return mo.Some(c.session.state)
}

// CrossFadePrepare allocates a second handle, loads the item after (or
// before, with previous) the active one into it and buffers it silently.
//
// A live session for the same direction makes this a no-op; one for the
// other direction is replaced. Allocation happens without holding the
// controller, so transport calls on the active handle are not delayed.
func (c *Controller) CrossFadePrepare(previous bool) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	if s := c.session; s != nil {
		if s.previous == previous {
			c.mu.Unlock()
			return nil
		}
		c.abortSessionLocked("direction changed")
	}

	cur, ok := c.queue.Current().Get()
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: queue is empty", ErrIndexOutOfRange)
	}

	target, ok := c.queue.Neighbour(previous, c.repeat != queue.RepeatOff).Get()
	if !ok || target == cur {
		c.mu.Unlock()
		return fmt.Errorf("%w: no item %s index %d", ErrIndexOutOfRange, direction(previous), cur)
	}

	item, err := c.queue.Get(target)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	primary, rate, cfg := c.current, c.rate, c.opts.Renderer
	c.mu.Unlock()

	secondary, err := c.factory(cfg)
	if err != nil {
		return rendererErr("allocate secondary renderer", err)
	}
	if err := seed(secondary, item, rate); err != nil {
		_ = secondary.Release()
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now, _ := c.queue.Current().Get()
	if c.closed || c.current != primary || c.session != nil || now != cur {
		_ = secondary.Release()
		return fmt.Errorf("%w: playback moved while preparing the crossfade", ErrNotReady)
	}

	c.watch(secondary)
	c.session = &session{
		primary:   primary,
		secondary: secondary,
		previous:  previous,
		target:    target,
		item:      item,
		state:     SessionPrepared,
	}

	log.Debugf("playback: crossfade prepared %d -> %d", cur, target)
	return nil
}

func seed(h renderer.Handle, item media.Item, rate float64) error {
	if err := h.SetVolume(0); err != nil {
		return rendererErr("mute secondary", err)
	}
	if err := h.SetRate(rate); err != nil {
		return rendererErr("secondary rate", err)
	}
	if err := h.SetItems([]media.Item{item}); err != nil {
		return rendererErr("load secondary", err)
	}
	return rendererErr("prepare secondary", h.Prepare())
}

// CrossFade starts the prepared secondary at silence and ramps it to
// targetVolume while the active handle ramps to silence. When both ramps end
// the secondary becomes the active handle and the old one is released.
func (c *Controller) CrossFade(duration, interval time.Duration, targetVolume float64) error {
	duration, interval, err := fadeParams(targetVolume, duration, interval)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	s := c.session
	if s == nil || s.state != SessionPrepared {
		return ErrNoSessionPrepared
	}

	s.state = SessionFading
	s.primaryVolume = s.primary.Volume()
	s.targetVolume = targetVolume

	if err := s.secondary.SetVolume(0); err != nil {
		c.abortSessionLocked("secondary failed")
		return rendererErr("mute secondary", err)
	}
	if err := s.secondary.Play(); err != nil {
		c.abortSessionLocked("secondary failed")
		return rendererErr("start secondary", err)
	}

	c.fader.Fade(s.secondary, targetVolume, duration, interval, nil)
	c.fader.Fade(s.primary, 0, duration, interval, func() { c.completeCrossfade(s) })

	log.Debugf("playback: crossfading to %d over %s", s.target, duration)
	return nil
}

// completeCrossfade promotes the secondary handle once the primary is silent.
func (c *Controller) completeCrossfade(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.session != s || s.state != SessionFading {
		return
	}
	c.completeCrossfadeLocked(s)
}

// completeCrossfadeLocked hands playback to the secondary. It also runs
// early when the primary reaches its end before the ramp does.
func (c *Controller) completeCrossfadeLocked(s *session) {

	from, fromItem := c.queue.Current(), c.queue.CurrentItem()
	lastPosition := s.primary.Position()

	if err := c.queue.SetCurrent(s.target); err != nil {
		log.Errorf("playback: crossfade target vanished: %v", err)
		_ = c.abortSessionLocked("target vanished")
		return
	}

	_ = s.primary.Pause()
	c.fader.Cancel(s.primary)

	c.current = s.secondary
	c.volume = s.targetVolume
	c.pending = nil
	c.session = nil
	s.state = SessionCompleted

	if err := s.primary.Release(); err != nil {
		log.Warnf("playback: release faded out renderer: %v", err)
	}

	c.publishTransitionLocked(transition{
		from:     from,
		fromItem: fromItem,
		to:       s.target,
		toItem:   s.item,
	}, lastPosition)
	c.setStateLocked(mapState(c.current.State()), nil)

	log.Infof("playback: crossfade completed, now at %d", s.target)
}

// abortSessionLocked discards the live session, if any: ramps stop, the
// primary gets its volume back and the secondary is released.
func (c *Controller) abortSessionLocked(reason string) error {
	s := c.session
	if s == nil {
		return nil
	}

	c.session = nil
	wasFading := s.state == SessionFading
	s.state = SessionAborted

	c.fader.Cancel(s.secondary)
	if wasFading {
		c.fader.Cancel(s.primary)
		if err := s.primary.SetVolume(s.primaryVolume); err != nil {
			log.Warnf("playback: restore volume after aborted crossfade: %v", err)
		}
	}

	log.Debugf("playback: crossfade aborted: %s", reason)
	return s.releaseSecondary()
}

// abortFadingLocked drops a session whose ramps are running, since the
// caller is about to take over the active handle's volume.
func (c *Controller) abortFadingLocked(reason string) {
	if s := c.session; s != nil && s.state == SessionFading {
		if err := c.abortSessionLocked(reason); err != nil {
			log.Warnf("playback: release secondary: %v", err)
		}
	}
}

func (c *Controller) publishTransitionLocked(t transition, lastPosition time.Duration) {
	c.publish(event.TrackChanged{
		PreviousIndex: t.from,
		Index:         mo.Some(t.to),
		LastPosition:  lastPosition,
	})
	c.publish(event.ActiveTrackChanged{
		Index:        mo.Some(t.to),
		Track:        mo.Some(t.toItem),
		LastIndex:    t.from,
		LastTrack:    t.fromItem,
		LastPosition: lastPosition,
	})
}
