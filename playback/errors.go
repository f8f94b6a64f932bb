package playback

import (
	"errors"
	"fmt"

	"github.com/anisan-cli/trackplayer/queue"
	"github.com/anisan-cli/trackplayer/renderer"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrInvalidArgument marks out-of-range volumes, rates, durations and option values.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIndexOutOfRange marks queue operations on positions outside the queue.
	ErrIndexOutOfRange = queue.ErrIndexOutOfRange
	// ErrNoSessionPrepared marks a crossfade without a prepared session.
	ErrNoSessionPrepared = errors.New("no crossfade session prepared")
	// ErrRenderer marks failures bubbled up from a renderer.
	ErrRenderer = renderer.ErrRenderer
	// ErrNotReady marks operations that need a state the controller is not in.
	ErrNotReady = errors.New("not ready")
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = fmt.Errorf("%w: controller closed", ErrNotReady)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// rendererErr normalizes an error returned synchronously by a handle.
func rendererErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrRenderer) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrRenderer, err)
}
