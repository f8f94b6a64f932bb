package playback

import (
	"fmt"

	"github.com/anisan-cli/trackplayer/event"
	"github.com/anisan-cli/trackplayer/log"
	"github.com/anisan-cli/trackplayer/media"
	"github.com/anisan-cli/trackplayer/metadata"
	"github.com/samber/mo"
)

// Add appends items. When the queue was empty the first of them becomes
// active and is prepared, but playback does not start.
func (c *Controller) Add(items ...media.Item) error {
	return c.insert(mo.None[int](), items)
}

// Insert places items before position at.
func (c *Controller) Insert(at int, items ...media.Item) error {
	return c.insert(mo.Some(at), items)
}

func (c *Controller) insert(at mo.Option[int], items []media.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	wasEmpty := c.queue.IsEmpty()
	if err := c.queue.Add(items, at); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	c.abortSessionLocked("queue changed")
	log.Debugf("playback: added %d items, queue has %d", len(items), c.queue.Len())

	if wasEmpty {
		return c.activateLocked(mo.None[int](), mo.None[media.Item]())
	}
	return nil
}

// Load replaces the whole queue with item and activates it.
func (c *Controller) Load(item media.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.abortSessionLocked("queue replaced")
	from, fromItem := c.queue.Current(), c.queue.CurrentItem()
	c.queue.Load(item)
	return c.activateLocked(from, fromItem)
}

// Move relocates one item; the active item stays active wherever it goes.
func (c *Controller) Move(from, to int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if err := c.queue.Move(from, to); err != nil {
		return err
	}
	c.abortSessionLocked("queue changed")
	return nil
}

// Remove deletes every listed index in one transaction. Removing the active
// item activates the one that followed it, or the first item if none did.
// Removing everything stops the renderer.
func (c *Controller) Remove(indices ...int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	from, fromItem := c.queue.Current(), c.queue.CurrentItem()
	removedActive, err := c.queue.Remove(indices)
	if err != nil {
		return err
	}
	if len(indices) == 0 {
		return nil
	}

	c.abortSessionLocked("queue changed")

	switch {
	case c.queue.IsEmpty():
		return c.emptyLocked()
	case removedActive:
		return c.activateLocked(from, fromItem)
	}
	return nil
}

// RemoveUpcoming drops every item after the active one.
func (c *Controller) RemoveUpcoming() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.abortSessionLocked("queue changed")
	c.queue.RemoveUpcoming()
	return nil
}

// RemovePrevious drops every item before the active one.
func (c *Controller) RemovePrevious() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.abortSessionLocked("queue changed")
	c.queue.RemovePrevious()
	return nil
}

// Clear empties the queue and stops the renderer.
func (c *Controller) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.abortSessionLocked("queue cleared")
	c.queue.Clear()
	return c.emptyLocked()
}

// Reset stops playback, clears the queue and forgets play intent.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.abortSessionLocked("reset")
	c.fader.Cancel(c.current)
	c.queue.Clear()
	c.setPlayWhenReadyLocked(false)
	return c.emptyLocked()
}

func (c *Controller) emptyLocked() error {
	c.pending = nil

	if err := c.current.Stop(); err != nil {
		return rendererErr("stop", err)
	}
	return rendererErr("unload", c.current.SetItems(nil))
}

// Replace swaps the item at index in place. Replacing the active item also
// republishes the now playing description.
func (c *Controller) Replace(index int, item media.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if err := c.queue.Replace(index, item); err != nil {
		return err
	}

	if s := c.session; s != nil && s.target == index {
		c.abortSessionLocked("crossfade target replaced")
	}

	c.publish(event.TrackUpdated{Index: index, Track: item})
	if cur, ok := c.queue.Current().Get(); ok && cur == index {
		c.publish(event.Metadata{Playback: nowPlaying(item)})
	}
	return nil
}

// UpdateNowPlaying replaces the active item's description.
func (c *Controller) UpdateNowPlaying(item media.Item) error {
	cur, ok := c.CurrentIndex().Get()
	if !ok {
		return fmt.Errorf("%w: nothing is playing", ErrNotReady)
	}
	return c.Replace(cur, item)
}

func nowPlaying(item media.Item) metadata.Playback {
	return metadata.Playback{
		Source: "item",
		Title:  item.Title(),
		URL:    item.URL(),
		Artist: item.Artist(),
		Album:  item.AlbumTitle(),
	}
}

// Queue returns the queued items in playback order.
func (c *Controller) Queue() []media.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Items()
}

// Track returns the item at index.
func (c *Controller) Track(index int) (media.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Get(index)
}

func (c *Controller) CurrentIndex() mo.Option[int] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Current()
}

func (c *Controller) CurrentTrack() mo.Option[media.Item] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.CurrentItem()
}

// NextTrack returns the item Next would activate.
func (c *Controller) NextTrack() mo.Option[media.Item] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemAt(c.queue.Next(c.repeat))
}

// PreviousTrack returns the item Previous would activate.
func (c *Controller) PreviousTrack() mo.Option[media.Item] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemAt(c.queue.Previous(c.repeat))
}

func (c *Controller) itemAt(index mo.Option[int]) mo.Option[media.Item] {
	i, ok := index.Get()
	if !ok {
		return mo.None[media.Item]()
	}
	item, err := c.queue.Get(i)
	if err != nil {
		return mo.None[media.Item]()
	}
	return mo.Some(item)
}
