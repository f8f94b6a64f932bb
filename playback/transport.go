package playback

import (
	"fmt"
	"time"

	"github.com/anisan-cli/trackplayer/event"
	"github.com/anisan-cli/trackplayer/util"
)

// Play starts or resumes the active item. After the queue ended it restarts the last item.
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	return c.playLocked()
}

func (c *Controller) playLocked() error {
	c.setPlayWhenReadyLocked(true)
	c.pausedByFocus = false

	if c.state == event.StateEnded {
		if err := c.current.Seek(0); err != nil {
			return rendererErr("seek", err)
		}
	}

	if s := c.session; s != nil && s.state == SessionFading {
		if err := s.secondary.Play(); err != nil {
			return rendererErr("play", err)
		}
	}
	return rendererErr("play", c.current.Play())
}

// Pause suspends playback. During a crossfade both handles pause; the ramps keep their schedule.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	return c.pauseLocked()
}

func (c *Controller) pauseLocked() error {
	c.setPlayWhenReadyLocked(false)

	if s := c.session; s != nil && s.state == SessionFading {
		if err := s.secondary.Pause(); err != nil {
			return rendererErr("pause", err)
		}
	}
	return rendererErr("pause", c.current.Pause())
}

// Stop halts the renderer and drops any crossfade. The queue is kept.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.abortSessionLocked("stop")
	c.fader.Cancel(c.current)
	c.setPlayWhenReadyLocked(false)
	return rendererErr("stop", c.current.Stop())
}

// SetPlayWhenReady records the play intent and applies it to the active handle.
func (c *Controller) SetPlayWhenReady(play bool) error {
	if play {
		return c.Play()
	}
	return c.Pause()
}

func (c *Controller) PlayWhenReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playWhenReady
}

func (c *Controller) setPlayWhenReadyLocked(play bool) {
	if c.playWhenReady == play {
		return
	}
	c.playWhenReady = play
	c.publish(event.PlayWhenReadyChanged{PlayWhenReady: play})
}

// SeekTo moves the playhead of the active item.
func (c *Controller) SeekTo(position time.Duration) error {
	if position < 0 {
		return invalid("seek position %s is negative", position)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireItemLocked(); err != nil {
		return err
	}
	return rendererErr("seek", c.current.Seek(position))
}

// SeekBy moves the playhead relative to its position, clamped to the item.
func (c *Controller) SeekBy(delta time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireItemLocked(); err != nil {
		return err
	}

	target := c.current.Position() + delta
	if d := c.current.Duration(); d > 0 {
		target = util.Clamp(target, 0, d)
	} else {
		target = util.Max(target, 0)
	}
	return rendererErr("seek", c.current.Seek(target))
}

// JumpForward seeks ahead by interval, or by the configured forward interval when zero.
func (c *Controller) JumpForward(interval time.Duration) error {
	if interval == 0 {
		interval = c.Options().ForwardJumpInterval
	}
	return c.SeekBy(interval)
}

// JumpBackward seeks back by interval, or by the configured backward interval when zero.
func (c *Controller) JumpBackward(interval time.Duration) error {
	if interval == 0 {
		interval = c.Options().BackwardJumpInterval
	}
	return c.SeekBy(-interval)
}

func (c *Controller) requireItemLocked() error {
	switch {
	case c.closed:
		return ErrClosed
	case c.queue.Current().IsAbsent():
		return fmt.Errorf("%w: no active item", ErrNotReady)
	}
	return nil
}

// SetRate changes the playback speed. Rate must be positive.
func (c *Controller) SetRate(rate float64) error {
	if rate <= 0 {
		return invalid("rate %v must be positive", rate)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.rate = rate
	if s := c.session; s != nil {
		if err := s.secondary.SetRate(rate); err != nil {
			return rendererErr("set rate", err)
		}
	}
	return rendererErr("set rate", c.current.SetRate(rate))
}

func (c *Controller) Rate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

// SetVolume applies a linear volume in [0, 1], cancelling any ramp on the active handle.
func (c *Controller) SetVolume(v float64) error {
	if v < 0 || v > 1 {
		return invalid("volume %v not in [0, 1]", v)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.abortFadingLocked("volume changed")
	c.fader.Cancel(c.current)
	c.volume = v
	c.ducked = false
	return rendererErr("set volume", c.current.SetVolume(v))
}

// Volume returns the active handle's current volume, which moves during ramps.
func (c *Controller) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Volume()
}

// Progress is a snapshot of the active item's timeline.
type Progress struct {
	Position time.Duration
	Duration time.Duration
	Buffered time.Duration
}

func (c *Controller) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Progress{
		Position: c.current.Position(),
		Duration: c.current.Duration(),
		Buffered: c.current.BufferedPosition(),
	}
}

// Retry re-prepares the active item after a renderer failure. Outside the
// error state it changes nothing and reports ErrNotReady.
func (c *Controller) Retry() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.state != event.StateError {
		return fmt.Errorf("%w: retry needs the error state, have %s", ErrNotReady, c.state)
	}

	if err := c.current.Prepare(); err != nil {
		return rendererErr("prepare", err)
	}
	if c.playWhenReady {
		return rendererErr("play", c.current.Play())
	}
	return nil
}
