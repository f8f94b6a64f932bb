package playback

import (
	"errors"
	"testing"
	"time"

	"github.com/anisan-cli/trackplayer/event"
	"github.com/anisan-cli/trackplayer/metadata"
	"github.com/anisan-cli/trackplayer/renderer"
	"github.com/anisan-cli/trackplayer/renderer/mock"
	. "github.com/smartystreets/goconvey/convey"
)

func TestErrors(t *testing.T) {
	Convey("Given a playing item", t, func() {
		c, pool := setup(DefaultOptions())
		Reset(func() { _ = c.Close() })

		sub := c.Subscribe(event.KindPlaybackError, event.KindPlaybackState)
		So(c.Add(tracks("a")...), ShouldBeNil)
		So(c.Play(), ShouldBeNil)
		So(eventually(func() bool { return c.State() == event.StatePlaying }), ShouldBeTrue)

		Convey("Argument validation fails synchronously", func() {
			So(errors.Is(c.SetVolume(1.5), ErrInvalidArgument), ShouldBeTrue)
			So(errors.Is(c.SetVolume(-1), ErrInvalidArgument), ShouldBeTrue)
			So(errors.Is(c.SetRate(0), ErrInvalidArgument), ShouldBeTrue)
			So(errors.Is(c.SeekTo(-time.Second), ErrInvalidArgument), ShouldBeTrue)
			So(c.Volume(), ShouldEqual, 1)
			So(c.Rate(), ShouldEqual, 1)
		})

		Convey("Rate and seek reach the handle", func() {
			So(c.SetRate(1.5), ShouldBeNil)
			So(pool.Get(0).Rate(), ShouldEqual, 1.5)

			So(c.SeekTo(30*time.Second), ShouldBeNil)
			So(c.Progress().Position, ShouldEqual, 30*time.Second)

			So(c.SeekBy(-time.Minute), ShouldBeNil)
			So(c.Progress().Position, ShouldEqual, 0)

			So(c.JumpForward(0), ShouldBeNil)
			So(c.Progress().Position, ShouldEqual, DefaultJumpInterval)
			So(c.JumpBackward(5*time.Second), ShouldBeNil)
			So(c.Progress().Position, ShouldEqual, 10*time.Second)
		})

		Convey("Retry outside the error state does nothing", func() {
			calls := len(pool.Get(0).Calls())
			So(errors.Is(c.Retry(), ErrNotReady), ShouldBeTrue)
			So(pool.Get(0).Calls(), ShouldHaveLength, calls)
		})

		Convey("A renderer failure surfaces as an error then a state", func() {
			pool.Get(0).Fail("network", "connection reset")

			So(await(sub, event.KindPlaybackError), ShouldResemble, event.PlaybackError{
				Code:    "mock-network",
				Message: "connection reset",
			})
			So(next(sub), ShouldResemble, event.PlaybackState{
				State: event.StateError,
				Err:   &event.PlaybackError{Code: "mock-network", Message: "connection reset"},
			})
			So(c.State(), ShouldEqual, event.StateError)

			Convey("and Retry prepares the item again", func() {
				So(c.Retry(), ShouldBeNil)
				So(eventually(func() bool { return c.State() == event.StatePlaying }), ShouldBeTrue)
			})
		})
	})

	Convey("Given an empty controller", t, func() {
		c, _ := setup(DefaultOptions())
		Reset(func() { _ = c.Close() })

		Convey("Seeking has nothing to act on", func() {
			So(errors.Is(c.SeekTo(time.Second), ErrNotReady), ShouldBeTrue)
		})

		Convey("Invalid options are rejected", func() {
			opts := DefaultOptions()
			opts.ProgressInterval = -time.Second
			So(errors.Is(c.UpdateOptions(opts), ErrInvalidArgument), ShouldBeTrue)

			_, err := New(mock.NewPool(mock.Options{}, 0).Factory(), opts)
			So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
		})

		Convey("A failing factory is a renderer error", func() {
			pool := mock.NewPool(mock.Options{}, 1)
			_, _ = pool.Factory()(renderer.Config{})
			_, err := New(pool.Factory(), DefaultOptions())
			So(errors.Is(err, ErrRenderer), ShouldBeTrue)
			So(errors.Is(err, mock.ErrExhausted), ShouldBeTrue)
		})
	})
}

func TestSignals(t *testing.T) {
	Convey("Given an active item", t, func() {
		opts := DefaultOptions()
		opts.ProgressInterval = 0
		c, pool := setup(opts)
		Reset(func() { _ = c.Close() })

		ready := c.Subscribe(event.KindActiveTrackChanged)
		So(c.Add(tracks("a", "b")...), ShouldBeNil)
		So(await(ready, event.KindActiveTrackChanged), ShouldNotBeNil)
		ready.Close()
		h := pool.Get(0)

		Convey("Metadata is republished raw then normalized", func() {
			sub := c.Subscribe(event.KindMetadataTimed, event.KindMetadataCommon, event.KindMetadata)
			entries := []metadata.Entry{
				{Format: metadata.FormatICY, Key: "StreamTitle", Value: "Night Drive"},
				{Format: metadata.FormatICY, Key: "icy-genre", Value: "synthwave"},
			}
			h.EmitMetadata(true, entries...)

			So(next(sub), ShouldResemble, event.MetadataTimed{Entries: entries})
			So(next(sub), ShouldResemble, event.Metadata{Playback: metadata.Playback{
				Source: "icy",
				Title:  "Night Drive",
				Genre:  "synthwave",
			}})

			h.EmitMetadata(false, metadata.Entry{Format: metadata.FormatUnknown, Key: "foo", Value: "bar"})
			So(next(sub), ShouldHaveSameTypeAs, event.MetadataCommon{})
			So(quiet(sub, 50*time.Millisecond), ShouldBeEmpty)
		})

		Convey("Buttons within the capabilities become remote events", func() {
			sub := c.Subscribe()
			So(c.Press(renderer.ControlButton{Button: renderer.ButtonNext}), ShouldBeNil)

			ev := await(sub, event.RemoteKind(renderer.ButtonNext))
			So(ev, ShouldResemble, event.Remote{Button: renderer.ButtonNext})
			So(ev.Kind(), ShouldEqual, event.Kind("remote-next"))

			Convey("others are dropped", func() {
				h.Press(renderer.ControlButton{Button: renderer.ButtonSetRating, Rating: 1})
				h.Press(renderer.ControlButton{Button: renderer.ButtonJumpForward})

				remote := await(sub, event.RemoteKind(renderer.ButtonJumpForward)).(event.Remote)
				So(remote.Interval, ShouldEqual, DefaultJumpInterval)
			})
		})

		Convey("Buttons are not acted upon by the controller", func() {
			sub := c.Subscribe(event.KindTrackChanged)
			So(c.Press(renderer.ControlButton{Button: renderer.ButtonNext}), ShouldBeNil)
			So(quiet(sub, 50*time.Millisecond), ShouldBeEmpty)
			So(c.CurrentIndex().MustGet(), ShouldEqual, 0)
		})

		Convey("Transient focus loss ducks and regain restores", func() {
			sub := c.Subscribe(event.KindFocusChanged)
			So(c.Play(), ShouldBeNil)

			h.EmitFocus(true, false)
			So(next(sub), ShouldResemble, event.FocusChanged{})
			So(h.Volume(), ShouldAlmostEqual, duckVolumeFactor)
			So(c.PlayWhenReady(), ShouldBeTrue)

			h.EmitFocus(false, false)
			So(next(sub), ShouldResemble, event.FocusChanged{})
			So(h.Volume(), ShouldEqual, 1)
		})

		Convey("Permanent focus loss pauses for good", func() {
			sub := c.Subscribe(event.KindFocusChanged)
			So(c.Play(), ShouldBeNil)

			h.EmitFocus(true, true)
			So(next(sub), ShouldResemble, event.FocusChanged{Permanent: true, Paused: true})
			So(c.PlayWhenReady(), ShouldBeFalse)

			h.EmitFocus(false, false)
			So(next(sub), ShouldResemble, event.FocusChanged{})
			So(c.PlayWhenReady(), ShouldBeFalse)
		})

		Convey("Focus is only reported without automatic handling", func() {
			opts := c.Options()
			opts.AutoHandleInterruptions = false
			So(c.UpdateOptions(opts), ShouldBeNil)

			sub := c.Subscribe(event.KindFocusChanged)
			So(c.Play(), ShouldBeNil)
			h.EmitFocus(true, false)

			So(next(sub), ShouldResemble, event.FocusChanged{})
			So(c.PlayWhenReady(), ShouldBeTrue)
			So(h.Volume(), ShouldEqual, 1)
		})

		Convey("Play intent changes are published", func() {
			sub := c.Subscribe(event.KindPlayWhenReadyChanged)
			So(c.SetPlayWhenReady(true), ShouldBeNil)
			So(c.SetPlayWhenReady(true), ShouldBeNil)
			So(c.SetPlayWhenReady(false), ShouldBeNil)

			So(next(sub), ShouldResemble, event.PlayWhenReadyChanged{PlayWhenReady: true})
			So(next(sub), ShouldResemble, event.PlayWhenReadyChanged{PlayWhenReady: false})
			So(quiet(sub, 50*time.Millisecond), ShouldBeEmpty)
		})

		Convey("Progress is reported while playing once enabled", func() {
			sub := c.Subscribe(event.KindProgress)
			So(c.Play(), ShouldBeNil)
			So(quiet(sub, 50*time.Millisecond), ShouldBeEmpty)

			opts := c.Options()
			opts.ProgressInterval = 10 * time.Millisecond
			So(c.UpdateOptions(opts), ShouldBeNil)

			progress := next(sub).(event.Progress)
			So(progress.Track, ShouldEqual, 0)
			So(progress.Duration, ShouldEqual, mock.DefaultDuration)

			Convey("and stops when paused", func() {
				So(c.Pause(), ShouldBeNil)
				So(eventually(func() bool { return c.State() == event.StatePaused }), ShouldBeTrue)
				quiet(sub, 30*time.Millisecond)
				So(quiet(sub, 50*time.Millisecond), ShouldBeEmpty)
			})
		})

		Convey("Close", func() {
			sub := c.Subscribe()
			So(c.Close(), ShouldBeNil)

			Convey("releases the handle once", func() {
				So(h.ReleaseCalls(), ShouldEqual, 1)
				So(c.Close(), ShouldBeNil)
				So(h.ReleaseCalls(), ShouldEqual, 1)
			})

			Convey("ends the event stream", func() {
				So(eventually(func() bool {
					for {
						select {
						case _, ok := <-sub.Events():
							if !ok {
								return true
							}
						default:
							return false
						}
					}
				}), ShouldBeTrue)
			})

			Convey("rejects further operations", func() {
				So(errors.Is(c.Play(), ErrClosed), ShouldBeTrue)
				So(errors.Is(c.Add(tracks("x")...), ErrNotReady), ShouldBeTrue)
				So(errors.Is(c.Press(renderer.ControlButton{}), ErrClosed), ShouldBeTrue)
			})
		})
	})
}
