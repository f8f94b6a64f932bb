package queue

import "github.com/samber/mo"

// Shuffled reports whether traversal follows a random permutation.
func (q *Queue) Shuffled() bool {
	return q.shuffled
}

// SetShuffle toggles shuffled traversal. Indices stay untouched; only the
// order in which Next and Previous visit them changes.
func (q *Queue) SetShuffle(on bool) {
	q.shuffled = on
	q.reshuffle()
}

// reshuffle rebuilds the traversal permutation with the active index first.
func (q *Queue) reshuffle() {
	if !q.shuffled || len(q.items) == 0 {
		q.order = nil
		return
	}

	cur := q.current.OrElse(0)
	rest := make([]int, 0, len(q.items)-1)
	for i := range q.items {
		if i != cur {
			rest = append(rest, i)
		}
	}
	q.rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})

	q.order = append([]int{cur}, rest...)
}

// position returns where the active index sits in traversal order.
func (q *Queue) position() int {
	cur := q.current.OrElse(0)
	if !q.shuffled {
		return cur
	}
	for p, index := range q.order {
		if index == cur {
			return p
		}
	}
	return 0
}

func (q *Queue) at(position int) int {
	if !q.shuffled {
		return position
	}
	return q.order[position]
}

// Neighbour returns the index after (or before) the active one in traversal
// order, wrapping around at the ends when wrap is set.
func (q *Queue) Neighbour(previous, wrap bool) mo.Option[int] {
	n := len(q.items)
	if _, ok := q.current.Get(); !ok || n == 0 {
		return mo.None[int]()
	}

	step := 1
	if previous {
		step = -1
	}

	p := q.position() + step
	if p < 0 || p >= n {
		if !wrap {
			return mo.None[int]()
		}
		p = (p + n) % n
	}

	return mo.Some(q.at(p))
}

// Next returns the index traversal moves to from the active one under mode.
// An absent result means the end of the queue was reached.
func (q *Queue) Next(mode RepeatMode) mo.Option[int] {
	return q.step(false, mode)
}

// Previous is the backwards counterpart of Next.
func (q *Queue) Previous(mode RepeatMode) mo.Option[int] {
	return q.step(true, mode)
}

func (q *Queue) step(previous bool, mode RepeatMode) mo.Option[int] {
	switch mode {
	case RepeatTrack:
		return q.current
	case RepeatQueue:
		return q.Neighbour(previous, true)
	default:
		return q.Neighbour(previous, false)
	}
}
