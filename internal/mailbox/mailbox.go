// Package mailbox provides an unbounded FIFO whose consumer side is a channel.
//
// Producers never block: Put appends to an internal slice and a single pump
// goroutine feeds the values, in order, into the channel returned by Out.
package mailbox

import "sync"

// Mailbox is an unbounded, ordered, single-consumer queue.
type Mailbox[T any] struct {
	mu      sync.Mutex
	items   []T
	closed  bool
	signal  chan struct{}
	out     chan T
	done    chan struct{}
	discard sync.Once
}

// New creates a Mailbox and starts its pump.
func New[T any]() *Mailbox[T] {
	m := &Mailbox[T]{
		signal: make(chan struct{}, 1),
		out:    make(chan T),
		done:   make(chan struct{}),
	}

	go m.pump()
	return m
}

// Put enqueues v. It reports false when the mailbox no longer accepts values.
func (m *Mailbox[T]) Put(v T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, v)
	m.mu.Unlock()

	m.wake()
	return true
}

// Out is closed once the mailbox is closed and every queued value was delivered,
// or immediately after Discard.
func (m *Mailbox[T]) Out() <-chan T {
	return m.out
}

// Len returns the number of values waiting for delivery.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops accepting values. Already queued values are still delivered.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.wake()
}

// Discard closes the mailbox and drops everything still queued.
// Use it when the consumer went away and nobody will drain Out.
func (m *Mailbox[T]) Discard() {
	m.discard.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.items = nil
		m.mu.Unlock()

		close(m.done)
	})
}

func (m *Mailbox[T]) wake() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *Mailbox[T]) pump() {
	defer close(m.out)

	for {
		m.mu.Lock()
		if len(m.items) == 0 {
			closed := m.closed
			m.mu.Unlock()

			if closed {
				return
			}

			select {
			case <-m.signal:
			case <-m.done:
				return
			}
			continue
		}

		v := m.items[0]
		var zero T
		m.items[0] = zero
		m.items = m.items[1:]
		m.mu.Unlock()

		select {
		case m.out <- v:
		case <-m.done:
			return
		}
	}
}
