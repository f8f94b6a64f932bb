package playback

import (
	"errors"
	"testing"
	"time"

	"github.com/anisan-cli/trackplayer/event"
	"github.com/anisan-cli/trackplayer/media"
	"github.com/anisan-cli/trackplayer/queue"
	"github.com/anisan-cli/trackplayer/renderer/mock"
	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

const wait = 2 * time.Second

func tracks(urls ...string) []media.Item {
	return lo.Map(urls, func(u string, _ int) media.Item {
		return media.New(media.Fields{URL: u, Title: "track " + u})
	})
}

func urls(items []media.Item) []string {
	return lo.Map(items, func(i media.Item, _ int) string { return i.URL() })
}

func setup(opts Options) (*Controller, *mock.Pool) {
	pool := mock.NewPool(mock.Options{}, 0)
	c, err := New(pool.Factory(), opts)
	So(err, ShouldBeNil)
	return c, pool
}

// next returns the next event of sub, or nil after a timeout.
func next(sub *event.Subscription) event.Event {
	select {
	case ev := <-sub.Events():
		return ev
	case <-time.After(wait):
		return nil
	}
}

// await skips events until one of kind arrives.
func await(sub *event.Subscription, kind event.Kind) event.Event {
	deadline := time.After(wait)
	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if ev.Kind() == kind {
				return ev
			}
		case <-deadline:
			return nil
		}
	}
}

// quiet collects whatever sub receives during d.
func quiet(sub *event.Subscription, d time.Duration) []event.Event {
	var got []event.Event
	deadline := time.After(d)
	for {
		select {
		case ev := <-sub.Events():
			got = append(got, ev)
		case <-deadline:
			return got
		}
	}
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestQueueOperations(t *testing.T) {
	Convey("Given a controller", t, func() {
		c, pool := setup(DefaultOptions())
		Reset(func() { _ = c.Close() })

		sub := c.Subscribe(event.KindTrackChanged, event.KindActiveTrackChanged)

		Convey("Adding to an empty queue activates the first item", func() {
			So(c.Add(tracks("a", "b", "c")...), ShouldBeNil)

			So(next(sub), ShouldResemble, event.TrackChanged{
				PreviousIndex: mo.None[int](),
				Index:         mo.Some(0),
			})
			active := next(sub).(event.ActiveTrackChanged)
			So(active.Index, ShouldResemble, mo.Some(0))
			So(active.Track.MustGet().URL(), ShouldEqual, "a")
			So(active.LastTrack.IsAbsent(), ShouldBeTrue)

			So(urls(pool.Get(0).Items()), ShouldResemble, []string{"a"})
			So(eventually(func() bool { return c.State() == event.StateReady }), ShouldBeTrue)
			So(c.PlayWhenReady(), ShouldBeFalse)
		})

		Convey("With three items queued", func() {
			So(c.Add(tracks("a", "b", "c")...), ShouldBeNil)
			So(await(sub, event.KindActiveTrackChanged), ShouldNotBeNil)

			Convey("Queue returns them in order", func() {
				So(urls(c.Queue()), ShouldResemble, []string{"a", "b", "c"})
				So(c.CurrentIndex(), ShouldResemble, mo.Some(0))
				So(c.NextTrack().MustGet().URL(), ShouldEqual, "b")
				So(c.PreviousTrack().IsAbsent(), ShouldBeTrue)
			})

			Convey("Move keeps the active item active", func() {
				So(c.Move(0, 2), ShouldBeNil)
				So(urls(c.Queue()), ShouldResemble, []string{"b", "c", "a"})
				So(c.CurrentIndex(), ShouldResemble, mo.Some(2))
				So(quiet(sub, 50*time.Millisecond), ShouldBeEmpty)
			})

			Convey("Insert places items before the position", func() {
				So(c.Insert(1, tracks("x")...), ShouldBeNil)
				So(urls(c.Queue()), ShouldResemble, []string{"a", "x", "b", "c"})
				So(c.CurrentIndex(), ShouldResemble, mo.Some(0))
			})

			Convey("Skip activates the index and reports the change", func() {
				So(c.Skip(1), ShouldBeNil)

				So(next(sub), ShouldResemble, event.TrackChanged{
					PreviousIndex: mo.Some(0),
					Index:         mo.Some(1),
				})
				active := next(sub).(event.ActiveTrackChanged)
				So(active.Track.MustGet().URL(), ShouldEqual, "b")
				So(active.LastTrack.MustGet().URL(), ShouldEqual, "a")
				So(active.LastIndex, ShouldResemble, mo.Some(0))

				So(urls(pool.Get(0).Items()), ShouldResemble, []string{"b"})
			})

			Convey("Skip to the active index restarts it without a track change", func() {
				pool.Get(0).SetPosition(time.Minute)
				So(c.Skip(0), ShouldBeNil)
				So(pool.Get(0).Position(), ShouldEqual, 0)
				So(quiet(sub, 50*time.Millisecond), ShouldBeEmpty)
			})

			Convey("Skip outside the queue fails", func() {
				So(errors.Is(c.Skip(3), ErrIndexOutOfRange), ShouldBeTrue)
				So(errors.Is(c.Skip(-1), ErrIndexOutOfRange), ShouldBeTrue)
				So(c.CurrentIndex(), ShouldResemble, mo.Some(0))
			})

			Convey("Removing the active index activates its successor", func() {
				So(c.Remove(0), ShouldBeNil)
				So(urls(c.Queue()), ShouldResemble, []string{"b", "c"})
				So(c.CurrentTrack().MustGet().URL(), ShouldEqual, "b")

				changed := next(sub).(event.TrackChanged)
				So(changed.Index, ShouldResemble, mo.Some(0))
				So(urls(pool.Get(0).Items()), ShouldResemble, []string{"b"})
			})

			Convey("Removing a bad index changes nothing", func() {
				So(errors.Is(c.Remove(1, 7), ErrIndexOutOfRange), ShouldBeTrue)
				So(urls(c.Queue()), ShouldResemble, []string{"a", "b", "c"})
			})

			Convey("Removing everything stops without a track change", func() {
				So(c.Remove(0, 1, 2), ShouldBeNil)
				So(c.Queue(), ShouldBeEmpty)
				So(c.CurrentIndex().IsAbsent(), ShouldBeTrue)
				So(quiet(sub, 50*time.Millisecond), ShouldBeEmpty)
				So(pool.Get(0).Items(), ShouldBeEmpty)
			})

			Convey("RemoveUpcoming and RemovePrevious trim around the active item", func() {
				So(c.Skip(1), ShouldBeNil)
				So(c.RemoveUpcoming(), ShouldBeNil)
				So(urls(c.Queue()), ShouldResemble, []string{"a", "b"})
				So(c.RemovePrevious(), ShouldBeNil)
				So(urls(c.Queue()), ShouldResemble, []string{"b"})
				So(c.CurrentIndex(), ShouldResemble, mo.Some(0))
			})

			Convey("Replace updates the item in place", func() {
				updates := c.Subscribe(event.KindTrackUpdated, event.KindMetadata)
				replacement := media.New(media.Fields{URL: "a2", Title: "new", Artist: "someone"})

				So(c.Replace(0, replacement), ShouldBeNil)
				So(next(updates), ShouldResemble, event.TrackUpdated{Index: 0, Track: replacement})

				meta := next(updates).(event.Metadata)
				So(meta.Title, ShouldEqual, "new")
				So(meta.Artist, ShouldEqual, "someone")
				So(c.CurrentIndex(), ShouldResemble, mo.Some(0))
			})

			Convey("Load replaces the queue", func() {
				So(c.Load(tracks("z")[0]), ShouldBeNil)
				So(urls(c.Queue()), ShouldResemble, []string{"z"})
				So(next(sub).(event.TrackChanged).Index, ShouldResemble, mo.Some(0))
			})

			Convey("Reset forgets everything", func() {
				So(c.Play(), ShouldBeNil)
				So(c.Reset(), ShouldBeNil)
				So(c.Queue(), ShouldBeEmpty)
				So(c.PlayWhenReady(), ShouldBeFalse)
				So(eventually(func() bool { return c.State() == event.StateIdle }), ShouldBeTrue)
			})
		})
	})
}

func TestNavigation(t *testing.T) {
	Convey("Given three queued items", t, func() {
		c, pool := setup(DefaultOptions())
		Reset(func() { _ = c.Close() })

		sub := c.Subscribe(event.KindTrackChanged, event.KindActiveTrackChanged, event.KindQueueEnded)
		So(c.Add(tracks("a", "b", "c")...), ShouldBeNil)
		So(await(sub, event.KindActiveTrackChanged), ShouldNotBeNil)

		Convey("Next and Previous walk the queue", func() {
			So(c.Next(), ShouldBeNil)
			So(c.CurrentIndex(), ShouldResemble, mo.Some(1))
			So(c.Previous(), ShouldBeNil)
			So(c.CurrentIndex(), ShouldResemble, mo.Some(0))
		})

		Convey("Next at the end with repeat off ends the queue once", func() {
			So(c.Skip(2), ShouldBeNil)
			So(await(sub, event.KindActiveTrackChanged), ShouldNotBeNil)

			So(c.Next(), ShouldBeNil)
			So(next(sub), ShouldResemble, event.QueueEnded{Track: 2})
			So(quiet(sub, 100*time.Millisecond), ShouldBeEmpty)
			So(c.CurrentIndex(), ShouldResemble, mo.Some(2))
		})

		Convey("Previous at the start with repeat off ends the queue", func() {
			So(c.Previous(), ShouldBeNil)
			So(next(sub), ShouldResemble, event.QueueEnded{Track: 0})
		})

		Convey("Repeat queue wraps around", func() {
			So(c.SetRepeatMode(queue.RepeatQueue), ShouldBeNil)
			So(c.Previous(), ShouldBeNil)
			So(c.CurrentIndex(), ShouldResemble, mo.Some(2))
			So(c.Next(), ShouldBeNil)
			So(c.CurrentIndex(), ShouldResemble, mo.Some(0))
		})

		Convey("Repeat track restarts the active item", func() {
			So(c.SetRepeatMode(queue.RepeatTrack), ShouldBeNil)
			So(c.RepeatMode(), ShouldEqual, queue.RepeatTrack)

			So(c.Next(), ShouldBeNil)
			So(c.CurrentIndex(), ShouldResemble, mo.Some(0))
			So(lo.Contains(pool.Get(0).Calls(), "seek"), ShouldBeTrue)
			So(quiet(sub, 50*time.Millisecond), ShouldBeEmpty)
		})

		Convey("Shuffle visits every item once per lap", func() {
			So(c.SetShuffle(true), ShouldBeNil)
			So(c.Shuffled(), ShouldBeTrue)

			seen := map[int]bool{0: true}
			for i := 0; i < 2; i++ {
				So(c.Next(), ShouldBeNil)
				seen[c.CurrentIndex().MustGet()] = true
			}
			So(seen, ShouldHaveLength, 3)
			So(urls(c.Queue()), ShouldResemble, []string{"a", "b", "c"})
		})

		Convey("A finished item advances to the next one", func() {
			So(c.Play(), ShouldBeNil)
			So(eventually(func() bool { return c.State() == event.StatePlaying }), ShouldBeTrue)

			pool.Get(0).Finish()
			So(next(sub).(event.TrackChanged).Index, ShouldResemble, mo.Some(1))
			So(urls(pool.Get(0).Items()), ShouldResemble, []string{"b"})
			So(eventually(func() bool { return c.State() == event.StatePlaying }), ShouldBeTrue)
		})

		Convey("The last item finishing ends the queue", func() {
			So(c.Skip(2), ShouldBeNil)
			So(await(sub, event.KindActiveTrackChanged), ShouldNotBeNil)
			So(c.Play(), ShouldBeNil)
			So(eventually(func() bool { return c.State() == event.StatePlaying }), ShouldBeTrue)

			pool.Get(0).Finish()
			So(next(sub), ShouldResemble, event.QueueEnded{Track: 2, Position: mock.DefaultDuration})
			So(eventually(func() bool { return c.State() == event.StateEnded }), ShouldBeTrue)

			Convey("Play starts it over", func() {
				So(c.Play(), ShouldBeNil)
				So(eventually(func() bool { return c.State() == event.StatePlaying }), ShouldBeTrue)
				So(pool.Get(0).Position(), ShouldEqual, 0)
			})
		})

		Convey("A finished item repeats under repeat track", func() {
			So(c.SetRepeatMode(queue.RepeatTrack), ShouldBeNil)
			So(c.Play(), ShouldBeNil)
			So(eventually(func() bool { return c.State() == event.StatePlaying }), ShouldBeTrue)

			pool.Get(0).Finish()
			So(eventually(func() bool {
				calls := pool.Get(0).Calls()
				return calls[len(calls)-1] == "play" && lo.Contains(calls, "seek")
			}), ShouldBeTrue)
			So(quiet(sub, 50*time.Millisecond), ShouldBeEmpty)
			So(c.CurrentIndex(), ShouldResemble, mo.Some(0))
		})
	})
}
