package playback

import (
	"time"

	"github.com/anisan-cli/trackplayer/event"
	"github.com/anisan-cli/trackplayer/fade"
	"github.com/anisan-cli/trackplayer/log"
	"github.com/anisan-cli/trackplayer/renderer"
)

func fadeParams(target float64, duration, interval time.Duration) (time.Duration, time.Duration, error) {
	if target < 0 || target > 1 {
		return 0, 0, invalid("fade target %v not in [0, 1]", target)
	}
	if duration < 0 || interval < 0 {
		return 0, 0, invalid("fade duration and interval must not be negative")
	}
	if duration == 0 {
		duration = fade.DefaultDuration
	}
	if interval == 0 {
		interval = fade.DefaultInterval
	}
	return duration, interval, nil
}

// FadeCompleted is the AnimatedVolumeChanged message when the caller gives none.
const FadeCompleted = "fade completed"

// FadeVolume ramps the active handle to target. Zero duration and interval
// fall back to 500ms and 20ms. onComplete runs once when the ramp ends and is
// skipped when another ramp or volume change supersedes it.
func (c *Controller) FadeVolume(target float64, duration, interval time.Duration, onComplete func()) error {
	return c.AnimateVolume(target, duration, interval, "", onComplete)
}

// AnimateVolume is FadeVolume with the message carried by the
// AnimatedVolumeChanged event. An empty message means FadeCompleted.
func (c *Controller) AnimateVolume(target float64, duration, interval time.Duration, message string, onComplete func()) error {
	duration, interval, err := fadeParams(target, duration, interval)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.abortFadingLocked("volume ramp")
	c.fadeLocked(c.current, target, duration, interval, message, onComplete)
	return nil
}

// fadeLocked starts a ramp on h that records the new volume and announces it when done.
func (c *Controller) fadeLocked(h renderer.Handle, target float64, duration, interval time.Duration, message string, then func()) {
	if message == "" {
		message = FadeCompleted
	}

	c.fader.Fade(h, target, duration, interval, func() {
		c.mu.Lock()
		if c.current == h {
			c.volume = target
		}
		c.publish(event.AnimatedVolumeChanged{Volume: target, Message: message})
		c.mu.Unlock()

		if then != nil {
			then()
		}
	})
}

// FadeOutPause fades to silence and pauses. The handle gets its volume back
// once paused so the next Play is audible.
func (c *Controller) FadeOutPause(duration, interval time.Duration) error {
	duration, interval, err := fadeParams(0, duration, interval)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.abortFadingLocked("fade out")
	h, restore := c.current, c.volume
	c.fader.Fade(h, 0, duration, interval, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.closed || c.current != h {
			return
		}
		if err := c.pauseLocked(); err != nil {
			log.Warnf("playback: fade out pause: %v", err)
		}
		if err := h.SetVolume(restore); err != nil {
			log.Warnf("playback: restore volume: %v", err)
		}
	})
	return nil
}

// FadeOutNext fades out, moves to the next item and fades back in to toVolume.
func (c *Controller) FadeOutNext(duration, interval time.Duration, toVolume float64) error {
	return c.fadeOutThen(duration, interval, toVolume, func() error { return c.stepLocked(false) })
}

// FadeOutPrevious fades out, moves to the previous item and fades back in to toVolume.
func (c *Controller) FadeOutPrevious(duration, interval time.Duration, toVolume float64) error {
	return c.fadeOutThen(duration, interval, toVolume, func() error { return c.stepLocked(true) })
}

// FadeOutJump fades out, skips to index and fades back in to toVolume.
func (c *Controller) FadeOutJump(index int, duration, interval time.Duration, toVolume float64) error {
	c.mu.Lock()
	_, err := c.queue.Get(index)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	return c.fadeOutThen(duration, interval, toVolume, func() error {
		if cur, ok := c.queue.Current().Get(); ok && cur == index {
			return rendererErr("seek", c.current.Seek(0))
		}
		return c.moveToLocked(index)
	})
}

func (c *Controller) fadeOutThen(duration, interval time.Duration, toVolume float64, change func() error) error {
	duration, interval, err := fadeParams(toVolume, duration, interval)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.abortFadingLocked("fade out")
	h := c.current
	c.fader.Fade(h, 0, duration, interval, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.closed || c.current != h {
			return
		}
		if err := change(); err != nil {
			log.Warnf("playback: track change after fade out: %v", err)
		}
		c.fadeLocked(c.current, toVolume, duration, interval, "", nil)
	})
	return nil
}
