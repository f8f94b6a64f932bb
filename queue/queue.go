// Package queue implements the ordered playlist and its traversal policy.
//
// A Queue is not safe for concurrent use; the playback controller serializes access.
package queue

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/anisan-cli/trackplayer/media"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// ErrIndexOutOfRange is returned for operations addressing a position outside the queue.
var ErrIndexOutOfRange = errors.New("index out of range")

// Queue is an index-addressable list of items with an optional current index.
type Queue struct {
	items   []media.Item
	current mo.Option[int]

	shuffled bool
	order    []int
	rng      *rand.Rand
}

// New returns an empty queue. A nil rng uses a randomly seeded source.
func New(rng *rand.Rand) *Queue {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Queue{rng: rng}
}

func outOfRange(index, n int) error {
	return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, n)
}

func (q *Queue) Len() int      { return len(q.items) }
func (q *Queue) IsEmpty() bool { return len(q.items) == 0 }

// Items returns a copy of the queue contents in playback order.
func (q *Queue) Items() []media.Item {
	return append([]media.Item(nil), q.items...)
}

// Get returns the item at index.
func (q *Queue) Get(index int) (media.Item, error) {
	if index < 0 || index >= len(q.items) {
		return media.Item{}, outOfRange(index, len(q.items))
	}
	return q.items[index], nil
}

// Current returns the active index, absent for an empty queue.
func (q *Queue) Current() mo.Option[int] {
	return q.current
}

// CurrentItem returns the active item, if any.
func (q *Queue) CurrentItem() mo.Option[media.Item] {
	index, ok := q.current.Get()
	if !ok {
		return mo.None[media.Item]()
	}
	return mo.Some(q.items[index])
}

// SetCurrent activates index.
func (q *Queue) SetCurrent(index int) error {
	if index < 0 || index >= len(q.items) {
		return outOfRange(index, len(q.items))
	}
	q.current = mo.Some(index)
	return nil
}

// Add inserts items before position at, or appends when at is absent.
// When the queue was empty the first inserted item becomes current.
func (q *Queue) Add(items []media.Item, at mo.Option[int]) error {
	if len(items) == 0 {
		return nil
	}

	pos := at.OrElse(len(q.items))
	if pos < 0 || pos > len(q.items) {
		return fmt.Errorf("%w: insert position %d not in [0, %d]", ErrIndexOutOfRange, pos, len(q.items))
	}

	wasEmpty := q.IsEmpty()

	q.items = append(q.items[:pos], append(append([]media.Item(nil), items...), q.items[pos:]...)...)

	switch cur, ok := q.current.Get(); {
	case wasEmpty:
		q.current = mo.Some(pos)
	case ok && pos <= cur:
		q.current = mo.Some(cur + len(items))
	}

	q.reshuffle()
	return nil
}

// Load replaces the whole queue with a single active item.
func (q *Queue) Load(item media.Item) {
	q.items = []media.Item{item}
	q.current = mo.Some(0)
	q.reshuffle()
}

// Move relocates the item at from to position to. The active item keeps being active.
func (q *Queue) Move(from, to int) error {
	n := len(q.items)
	if from < 0 || from >= n {
		return outOfRange(from, n)
	}
	if to < 0 || to >= n {
		return outOfRange(to, n)
	}
	if from == to {
		return nil
	}

	item := q.items[from]
	q.items = append(q.items[:from], q.items[from+1:]...)
	q.items = append(q.items[:to], append([]media.Item{item}, q.items[to:]...)...)

	if cur, ok := q.current.Get(); ok {
		switch {
		case cur == from:
			cur = to
		case from < cur && to >= cur:
			cur--
		case from > cur && to <= cur:
			cur++
		}
		q.current = mo.Some(cur)
	}

	q.reshuffle()
	return nil
}

// Remove deletes every listed index in one step. Either all indices are valid
// and removed, or nothing changes. It reports whether the active item was removed.
//
// When the active item goes, the item that followed it becomes active, or the
// first item when nothing followed.
func (q *Queue) Remove(indices []int) (bool, error) {
	n := len(q.items)
	for _, index := range indices {
		if index < 0 || index >= n {
			return false, outOfRange(index, n)
		}
	}

	indices = lo.Uniq(indices)
	sort.Sort(sort.Reverse(sort.IntSlice(indices)))

	cur, hasCurrent := q.current.Get()
	removedActive := false

	for _, index := range indices {
		q.items = append(q.items[:index], q.items[index+1:]...)

		if !hasCurrent {
			continue
		}

		switch {
		case index < cur:
			cur--
		case index == cur:
			removedActive = true
		}
	}

	switch {
	case len(q.items) == 0:
		q.current = mo.None[int]()
	case hasCurrent && cur >= len(q.items):
		q.current = mo.Some(0)
	case hasCurrent:
		q.current = mo.Some(cur)
	}

	q.reshuffle()
	return removedActive, nil
}

// RemoveUpcoming drops every item after the active one.
func (q *Queue) RemoveUpcoming() {
	cur, ok := q.current.Get()
	if !ok {
		return
	}
	q.items = q.items[:cur+1]
	q.reshuffle()
}

// RemovePrevious drops every item before the active one.
func (q *Queue) RemovePrevious() {
	cur, ok := q.current.Get()
	if !ok {
		return
	}
	q.items = append([]media.Item(nil), q.items[cur:]...)
	q.current = mo.Some(0)
	q.reshuffle()
}

// Replace swaps the item at index without touching the active index.
func (q *Queue) Replace(index int, item media.Item) error {
	if index < 0 || index >= len(q.items) {
		return outOfRange(index, len(q.items))
	}
	q.items[index] = item
	return nil
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.items = nil
	q.current = mo.None[int]()
	q.order = nil
}
