package playback

import (
	"fmt"

	"github.com/anisan-cli/trackplayer/event"
	"github.com/anisan-cli/trackplayer/log"
	"github.com/anisan-cli/trackplayer/media"
	"github.com/anisan-cli/trackplayer/queue"
	"github.com/anisan-cli/trackplayer/renderer"
	"github.com/samber/mo"
)

// Skip activates the item at index. Skipping to the active item restarts it.
func (c *Controller) Skip(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if _, err := c.queue.Get(index); err != nil {
		return err
	}

	if cur, ok := c.queue.Current().Get(); ok && cur == index {
		return rendererErr("seek", c.current.Seek(0))
	}

	return c.moveToLocked(index)
}

// Next follows the repeat policy forwards. Past the last item with repeat
// off it publishes QueueEnded instead of failing.
func (c *Controller) Next() error {
	return c.step(false)
}

// Previous follows the repeat policy backwards.
func (c *Controller) Previous() error {
	return c.step(true)
}

func (c *Controller) step(previous bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	return c.stepLocked(previous)
}

func (c *Controller) stepLocked(previous bool) error {
	cur, ok := c.queue.Current().Get()
	if !ok {
		return fmt.Errorf("%w: queue is empty", ErrIndexOutOfRange)
	}

	target, ok := c.traverse(previous).Get()
	switch {
	case !ok:
		log.Debugf("playback: no item %s index %d", direction(previous), cur)
		c.publish(event.QueueEnded{Track: cur, Position: c.current.Position()})
		return nil
	case target == cur:
		return rendererErr("seek", c.current.Seek(0))
	}

	return c.moveToLocked(target)
}

func (c *Controller) traverse(previous bool) mo.Option[int] {
	if previous {
		return c.queue.Previous(c.repeat)
	}
	return c.queue.Next(c.repeat)
}

func direction(previous bool) string {
	if previous {
		return "before"
	}
	return "after"
}

// moveToLocked makes index active and loads it into the active handle. When
// the handle refuses the item the queue stays on the previous index.
func (c *Controller) moveToLocked(index int) error {
	c.abortSessionLocked("track change")

	from, fromItem := c.queue.Current(), c.queue.CurrentItem()
	if err := c.queue.SetCurrent(index); err != nil {
		return err
	}

	if err := c.loadLocked(from, fromItem); err != nil {
		if prev, ok := from.Get(); ok {
			_ = c.queue.SetCurrent(prev)
		}
		return err
	}
	return c.startLocked()
}

// activateLocked loads the queue's current item into the active handle and
// starts it according to playWhenReady.
func (c *Controller) activateLocked(from mo.Option[int], fromItem mo.Option[media.Item]) error {
	if c.queue.Current().IsAbsent() {
		return c.emptyLocked()
	}
	if err := c.loadLocked(from, fromItem); err != nil {
		return err
	}
	return c.startLocked()
}

// loadLocked hands the queue's current item to the active handle and records
// the pending transition the handle is expected to confirm.
func (c *Controller) loadLocked(from mo.Option[int], fromItem mo.Option[media.Item]) error {
	to := c.queue.Current().MustGet()
	item := c.queue.CurrentItem().MustGet()

	c.pending = append(c.pending, transition{
		from:     from,
		fromItem: fromItem,
		to:       to,
		toItem:   item,
	})

	if err := c.current.SetItems([]media.Item{item}); err != nil {
		c.pending = c.pending[:len(c.pending)-1]
		return rendererErr("load", err)
	}
	return nil
}

func (c *Controller) startLocked() error {
	h := c.current
	if h.State() == renderer.StateIdle {
		if err := h.Prepare(); err != nil {
			return rendererErr("prepare", err)
		}
	}
	if c.playWhenReady {
		return rendererErr("play", h.Play())
	}
	return nil
}

// SetRepeatMode changes the traversal policy.
func (c *Controller) SetRepeatMode(mode queue.RepeatMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.repeat = mode
	return nil
}

func (c *Controller) RepeatMode() queue.RepeatMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.repeat
}

// SetShuffle toggles shuffled traversal without reordering the queue.
func (c *Controller) SetShuffle(on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.abortSessionLocked("traversal changed")
	c.queue.SetShuffle(on)
	return nil
}

func (c *Controller) Shuffled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Shuffled()
}
