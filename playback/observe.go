package playback

import (
	"github.com/anisan-cli/trackplayer/event"
	"github.com/anisan-cli/trackplayer/log"
	"github.com/anisan-cli/trackplayer/metadata"
	"github.com/anisan-cli/trackplayer/renderer"
)

// Press relays a control button from the host shell. It travels the same
// path as renderer events, so it is ordered with them.
func (c *Controller) Press(button renderer.ControlButton) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	h := c.current
	c.mu.Unlock()

	if !c.inbox.Put(sourced{handle: h, event: button}) {
		return ErrClosed
	}
	return nil
}

func (c *Controller) dispatch(s sourced) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	if s.handle != c.current {
		c.dispatchSecondaryLocked(s)
		return
	}

	switch ev := s.event.(type) {
	case renderer.StateChanged:
		c.onStateLocked(ev)
	case renderer.ItemTransition:
		c.onTransitionLocked(ev)
	case renderer.MetadataArrived:
		c.onMetadataLocked(ev)
	case renderer.FocusChanged:
		c.onFocusLocked(ev)
	case renderer.ControlButton:
		c.onButtonLocked(ev)
	case renderer.Failure:
		log.Errorf("playback: renderer failure: %v", ev.Err)
		c.publish(event.PlaybackError{Code: ev.Err.Code, Message: ev.Err.Message})
	default:
		log.Tracef("playback: unhandled renderer event %T", ev)
	}
}

// dispatchSecondaryLocked handles events of the crossfade secondary. Its
// failures end the session; everything else stays internal until it is promoted.
func (c *Controller) dispatchSecondaryLocked(s sourced) {
	sess := c.session
	if sess == nil || s.handle != sess.secondary {
		return
	}

	if f, ok := s.event.(renderer.Failure); ok {
		log.Warnf("playback: crossfade secondary failed: %v", f.Err)
		if err := c.abortSessionLocked("secondary failed"); err != nil {
			log.Warnf("playback: release secondary: %v", err)
		}
	}
}

func mapState(s renderer.State) event.State {
	switch s {
	case renderer.StateBuffering:
		return event.StateBuffering
	case renderer.StateReady:
		return event.StateReady
	case renderer.StatePlaying:
		return event.StatePlaying
	case renderer.StatePaused:
		return event.StatePaused
	case renderer.StateEnded:
		return event.StateEnded
	case renderer.StateError:
		return event.StateError
	default:
		return event.StateIdle
	}
}

func (c *Controller) onStateLocked(ev renderer.StateChanged) {
	state := mapState(ev.State)

	switch state {
	case event.StateError:
		c.setStateLocked(state, ev.Err)
	case event.StateEnded:
		c.onEndedLocked()
	default:
		c.setStateLocked(state, nil)
	}
}

// onEndedLocked applies the repeat policy when the active item finished.
func (c *Controller) onEndedLocked() {
	cur, ok := c.queue.Current().Get()
	if !ok {
		c.setStateLocked(event.StateEnded, nil)
		return
	}

	if s := c.session; s != nil && s.state == SessionFading {
		c.completeCrossfadeLocked(s)
		return
	}

	target, ok := c.queue.Next(c.repeat).Get()
	switch {
	case !ok:
		c.setStateLocked(event.StateEnded, nil)
		c.publish(event.QueueEnded{Track: cur, Position: c.current.Position()})
		log.Infof("playback: queue ended at %d", cur)
	case target == cur:
		if err := c.current.Seek(0); err != nil {
			log.Warnf("playback: repeat track: %v", err)
			return
		}
		if c.playWhenReady {
			if err := c.current.Play(); err != nil {
				log.Warnf("playback: repeat track: %v", err)
			}
		}
	default:
		if err := c.moveToLocked(target); err != nil {
			log.Warnf("playback: advance to %d: %v", target, err)
			c.setStateLocked(event.StateEnded, nil)
		}
	}
}

// onTransitionLocked confirms the oldest requested track change. A natural
// advance that nobody requested means the handle moved on by itself, so
// the queue follows it.
func (c *Controller) onTransitionLocked(ev renderer.ItemTransition) {
	if ev.Reason == renderer.TransitionRepeat {
		return
	}

	if len(c.pending) > 0 {
		t := c.pending[0]
		c.pending = c.pending[1:]
		c.publishTransitionLocked(t, ev.OldPosition)
		return
	}

	if ev.Reason != renderer.TransitionAuto {
		return
	}

	from, fromItem := c.queue.Current(), c.queue.CurrentItem()
	target, ok := c.queue.Next(c.repeat).Get()
	if !ok {
		return
	}
	if err := c.queue.SetCurrent(target); err != nil {
		return
	}

	c.abortSessionLocked("renderer advanced")
	c.publishTransitionLocked(transition{
		from:     from,
		fromItem: fromItem,
		to:       target,
		toItem:   c.queue.CurrentItem().MustGet(),
	}, ev.OldPosition)
}

func (c *Controller) onMetadataLocked(ev renderer.MetadataArrived) {
	if ev.Timed {
		c.publish(event.MetadataTimed{Entries: ev.Entries})
	} else {
		c.publish(event.MetadataCommon{Entries: ev.Entries})
	}

	if p, ok := metadata.Normalize(ev.Entries).Get(); ok {
		c.publish(event.Metadata{Playback: p})
	}
}

// onFocusLocked pauses or ducks on focus loss and undoes it on regain when
// interruptions are handled automatically. Otherwise it only reports the loss.
func (c *Controller) onFocusLocked(ev renderer.FocusChanged) {
	if !c.opts.AutoHandleInterruptions {
		if ev.Lost {
			c.publish(event.FocusChanged{Permanent: ev.Permanent})
		}
		return
	}

	if !ev.Lost {
		if c.pausedByFocus {
			if err := c.playLocked(); err != nil {
				log.Warnf("playback: resume after interruption: %v", err)
			}
		}
		if c.ducked {
			c.ducked = false
			if err := c.current.SetVolume(c.volume); err != nil {
				log.Warnf("playback: unduck: %v", err)
			}
		}
		c.publish(event.FocusChanged{})
		return
	}

	if ev.Permanent || c.opts.AlwaysPauseOnInterruption {
		wasPlaying := c.playWhenReady
		if err := c.pauseLocked(); err != nil {
			log.Warnf("playback: pause on interruption: %v", err)
		}
		c.pausedByFocus = wasPlaying && !ev.Permanent
		c.publish(event.FocusChanged{Permanent: ev.Permanent, Paused: true})
		return
	}

	c.ducked = true
	c.abortFadingLocked("interruption")
	c.fader.Cancel(c.current)
	if err := c.current.SetVolume(c.volume * duckVolumeFactor); err != nil {
		log.Warnf("playback: duck: %v", err)
	}
	c.publish(event.FocusChanged{})
}

func (c *Controller) onButtonLocked(ev renderer.ControlButton) {
	if !c.opts.capable(ev.Button) {
		log.Tracef("playback: dropping %s press, not in capabilities", ev.Button)
		return
	}

	remote := event.Remote{
		Button:   ev.Button,
		Position: ev.Position,
		Rate:     ev.Rate,
		Rating:   ev.Rating,
		Interval: ev.Interval,
		Action:   ev.Action,
	}

	switch {
	case ev.Button == renderer.ButtonJumpForward && ev.Interval == 0:
		remote.Interval = c.opts.ForwardJumpInterval
	case ev.Button == renderer.ButtonJumpBackward && ev.Interval == 0:
		remote.Interval = c.opts.BackwardJumpInterval
	}

	c.publish(remote)
}
