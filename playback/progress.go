package playback

import (
	"sync"
	"time"

	"github.com/anisan-cli/trackplayer/event"
)

// task is a cancellation token for a periodic job.
type task struct {
	stop chan struct{}
	once sync.Once
}

func newTask() *task {
	return &task{stop: make(chan struct{})}
}

func (t *task) cancel() {
	t.once.Do(func() { close(t.stop) })
}

func (t *task) cancelled() bool {
	select {
	case <-t.stop:
		return true
	default:
		return false
	}
}

// restartProgressLocked replaces the progress task with one running at the
// configured interval. A zero interval leaves it stopped.
func (c *Controller) restartProgressLocked() {
	if c.progress != nil {
		c.progress.cancel()
		c.progress = nil
	}

	interval := c.opts.ProgressInterval
	if interval <= 0 {
		return
	}

	t := newTask()
	c.progress = t
	c.workers.Go(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
			}
			c.reportProgress(t)
		}
	})
}

func (c *Controller) reportProgress(t *task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.cancelled() || c.closed || c.state != event.StatePlaying {
		return
	}

	track, ok := c.queue.Current().Get()
	if !ok {
		return
	}

	c.publish(event.Progress{
		Position: c.current.Position(),
		Duration: c.current.Duration(),
		Buffered: c.current.BufferedPosition(),
		Track:    track,
	})
}
