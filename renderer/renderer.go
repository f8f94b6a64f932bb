// Package renderer defines the capability interface the playback engine drives.
//
// A Handle wraps exactly one underlying player instance. Transport calls are
// fire-and-forget: their effect is observed through the Events stream, never
// through a blocking return value.
package renderer

import (
	"errors"
	"fmt"
	"time"

	"github.com/anisan-cli/trackplayer/media"
)

// Handle is one renderer instance.
type Handle interface {
	// SetItems replaces the loaded media. The handle plays the list in order
	// and reports every move to another item as an ItemTransition.
	SetItems(items []media.Item) error

	// Prepare starts buffering the first item without audible output.
	Prepare() error

	Play() error
	Pause() error
	Stop() error
	Seek(position time.Duration) error

	// SetVolume applies a linear gain in [0, 1].
	SetVolume(v float64) error
	Volume() float64

	SetRate(r float64) error
	Rate() float64

	Position() time.Duration
	Duration() time.Duration
	BufferedPosition() time.Duration
	IsPlaying() bool
	State() State

	// Events is closed after Release.
	Events() <-chan Event

	// Release frees the underlying player. Calls after the first are no-ops.
	Release() error
}

// Factory allocates a fresh Handle configured by cfg.
type Factory func(cfg Config) (Handle, error)

// ErrRenderer is the kind shared by every failure that originates in a renderer.
var ErrRenderer = errors.New("renderer error")

// ErrReleased is returned by handles used after Release.
var ErrReleased = fmt.Errorf("%w: handle released", ErrRenderer)

// Error is an opaque failure reported by the underlying player.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return ErrRenderer
}

// NewError builds an Error whose code is namespaced by the backend name.
func NewError(backend, code, message string) *Error {
	return &Error{Code: backend + "-" + code, Message: message}
}

// Position is a small helper for backends reporting seconds as floats.
func Position(seconds float64) time.Duration {
	if seconds < 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
