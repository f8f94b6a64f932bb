package shell

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anisan-cli/trackplayer/event"
	"github.com/anisan-cli/trackplayer/filesystem"
	"github.com/anisan-cli/trackplayer/history"
	"github.com/anisan-cli/trackplayer/key"
	"github.com/anisan-cli/trackplayer/media"
	"github.com/anisan-cli/trackplayer/metadata"
	"github.com/anisan-cli/trackplayer/playback"
	"github.com/anisan-cli/trackplayer/renderer/mock"
	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.IconsVariant, "plain")
}

// output is a bytes.Buffer safe for the shell goroutine and the test.
type output struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (o *output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.Write(p)
}

func (o *output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.String()
}

func tracks(urls ...string) []media.Item {
	return lo.Map(urls, func(u string, _ int) media.Item {
		return media.New(media.Fields{URL: u, Title: "track " + u})
	})
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestLine(t *testing.T) {
	Convey("Domain events render as status lines", t, func() {
		item := media.New(media.Fields{URL: "a.mp3", Title: "Roygbiv", Artist: "Boards of Canada"})

		line, ok := Line(event.ActiveTrackChanged{Index: mo.Some(1), Track: mo.Some(item)}).Get()
		So(ok, ShouldBeTrue)
		So(line, ShouldContainSubstring, "[2]")
		So(line, ShouldContainSubstring, "Roygbiv")

		line, _ = Line(event.PlaybackState{State: event.StateError, Err: &event.PlaybackError{Code: "mpv-loading-failed", Message: "loading failed"}}).Get()
		So(line, ShouldContainSubstring, "mpv-loading-failed: loading failed")

		line, _ = Line(event.Metadata{Playback: metadata.Playback{Title: "Song", Artist: "Artist"}}).Get()
		So(line, ShouldContainSubstring, "Song - Artist")

		line, _ = Line(event.FocusChanged{Paused: true}).Get()
		So(line, ShouldContainSubstring, "paused")

		line, _ = Line(event.AnimatedVolumeChanged{Volume: 0.7}).Get()
		So(line, ShouldEqual, "vol 70%")

		So(Line(event.PlaybackState{State: event.StateReady}).IsAbsent(), ShouldBeTrue)
		So(Line(event.Metadata{}).IsAbsent(), ShouldBeTrue)
		So(Line(event.Progress{}).IsAbsent(), ShouldBeTrue)
	})

	Convey("Clock", t, func() {
		So(clock(0), ShouldEqual, "0:00")
		So(clock(83*time.Second), ShouldEqual, "1:23")
		So(clock(time.Hour+2*time.Minute+3*time.Second), ShouldEqual, "1:02:03")
		So(progressLine(event.Progress{Position: 10 * time.Second, Duration: time.Minute}), ShouldEqual, "> 0:10 / 1:00")
	})

	Convey("Keys", t, func() {
		So(parseKey([]byte(" ")), ShouldEqual, actionToggle)
		So(parseKey([]byte("\x1b[C")), ShouldEqual, actionForward)
		So(parseKey([]byte("\x1b[D")), ShouldEqual, actionBackward)
		So(parseKey([]byte("q")), ShouldEqual, actionQuit)
		So(parseKey([]byte("x")), ShouldEqual, actionNone)
	})
}

func TestShell(t *testing.T) {
	Convey("Given a playing controller and a shell", t, func() {
		pool := mock.NewPool(mock.Options{}, 0)
		c, err := playback.New(pool.Factory(), playback.DefaultOptions())
		So(err, ShouldBeNil)
		Reset(func() { _ = c.Close() })

		So(c.Add(tracks("a", "b", "c")...), ShouldBeNil)
		So(c.Play(), ShouldBeNil)

		in, keys := io.Pipe()
		out := &output{}
		s := New(c, Options{In: in, Out: out, Crossfade: 5 * time.Second, CrossfadeInterval: 20 * time.Millisecond})

		done := make(chan error, 1)
		run := func() {
			go func() { done <- s.Run(context.Background()) }()
		}
		Reset(func() { _ = keys.Close() })

		Convey("Keys travel through the controller and back", func() {
			run()
			_, _ = keys.Write([]byte("n"))
			So(eventually(func() bool { return c.CurrentIndex() == mo.Some(1) }), ShouldBeTrue)

			_, _ = keys.Write([]byte("-"))
			So(eventually(func() bool { return c.Volume() < 1 }), ShouldBeTrue)

			_, _ = keys.Write([]byte("r"))
			_, _ = keys.Write([]byte("q"))

			select {
			case err := <-done:
				So(err, ShouldBeNil)
			case <-time.After(2 * time.Second):
				So("shell still running", ShouldBeEmpty)
			}

			So(c.Volume(), ShouldAlmostEqual, 0.9)
			So(out.String(), ShouldContainSubstring, "repeat queue")
			So(out.String(), ShouldContainSubstring, "track b")
		})

		Convey("The end of the queue ends the shell", func() {
			So(c.Skip(2), ShouldBeNil)
			run()
			// returns once the shell reads it, so the shell is subscribed
			_, _ = keys.Write([]byte("x"))

			pool.Get(0).Finish()

			select {
			case err := <-done:
				So(err, ShouldBeNil)
			case <-time.After(2 * time.Second):
				So("shell still running", ShouldBeEmpty)
			}
			So(out.String(), ShouldContainSubstring, "queue ended")
		})

		Convey("Nearing the end of an item starts a crossfade", func() {
			s.handle(event.Progress{Position: 178 * time.Second, Duration: 180 * time.Second, Track: 0})
			So(c.CrossfadeState(), ShouldResemble, mo.Some(playback.SessionFading))

			Convey("Only once per item", func() {
				So(s.faded, ShouldEqual, 0)
			})
		})

		Convey("Far from the end nothing happens", func() {
			s.handle(event.Progress{Position: time.Minute, Duration: 180 * time.Second, Track: 0})
			So(c.CrossfadeState().IsAbsent(), ShouldBeTrue)
		})

		Convey("Save snapshots the queue", func() {
			So(c.Skip(1), ShouldBeNil)
			So(s.Save(), ShouldBeNil)

			session, err := history.Get()
			So(err, ShouldBeNil)
			So(session.IsPresent(), ShouldBeTrue)
			So(session.MustGet().Index, ShouldEqual, 1)
			So(session.MustGet().Tracks, ShouldHaveLength, 3)
			So(strings.Contains(session.MustGet().Tracks[0].URL, "a"), ShouldBeTrue)
		})
	})
}
