package renderer

import (
	"sync"

	"github.com/anisan-cli/trackplayer/internal/mailbox"
)

// Emitter is the event plumbing shared by Handle implementations.
// Emission never blocks the caller, so backends may emit while holding locks.
type Emitter struct {
	mu    sync.Mutex
	state State
	box   *mailbox.Mailbox[Event]
}

func NewEmitter() *Emitter {
	return &Emitter{box: mailbox.New[Event]()}
}

// Emit queues ev for the subscriber.
func (e *Emitter) Emit(ev Event) {
	e.box.Put(ev)
}

// SetState records s and emits StateChanged when it differs from the last state.
func (e *Emitter) SetState(s State) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == s {
		return false
	}
	e.state = s
	e.box.Put(StateChanged{State: s})
	return true
}

// Fail emits a Failure followed by the move into StateError.
func (e *Emitter) Fail(err *Error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = StateError
	e.box.Put(Failure{Err: err})
	e.box.Put(StateChanged{State: StateError, Err: err})
}

func (e *Emitter) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Emitter) Events() <-chan Event {
	return e.box.Out()
}

// Close delivers what is queued, then closes the stream.
func (e *Emitter) Close() {
	e.box.Close()
}
