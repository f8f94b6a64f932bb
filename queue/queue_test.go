package queue

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/anisan-cli/trackplayer/media"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

func items(names ...string) []media.Item {
	return lo.Map(names, func(name string, _ int) media.Item {
		return media.New(media.Fields{URL: name + ".mp3", Title: name})
	})
}

func titles(q *Queue) []string {
	return lo.Map(q.Items(), func(item media.Item, _ int) string {
		return item.Title()
	})
}

func newQueue(names ...string) *Queue {
	q := New(rand.New(rand.NewPCG(1, 2)))
	lo.Must0(q.Add(items(names...), mo.None[int]()))
	return q
}

func TestAdd(t *testing.T) {
	Convey("Given an empty queue", t, func() {
		q := New(nil)

		Convey("Adding makes the first inserted item current", func() {
			So(q.Current().IsPresent(), ShouldBeFalse)
			So(q.Add(items("A", "B", "C"), mo.None[int]()), ShouldBeNil)
			So(q.Current(), ShouldResemble, mo.Some(0))
		})

		Convey("Items come back in insertion order with the same ids", func() {
			in := items("A", "B", "C")
			So(q.Add(in, mo.None[int]()), ShouldBeNil)
			out := q.Items()
			So(out, ShouldHaveLength, 3)
			for i := range in {
				So(out[i].MediaID(), ShouldEqual, in[i].MediaID())
			}
		})

		Convey("Inserting beyond the end fails", func() {
			err := q.Add(items("A"), mo.Some(1))
			So(errors.Is(err, ErrIndexOutOfRange), ShouldBeTrue)
		})
	})

	Convey("Given a queue with an active item", t, func() {
		q := newQueue("A", "B", "C")
		So(q.SetCurrent(1), ShouldBeNil)

		Convey("Inserting before it shifts the current index", func() {
			So(q.Add(items("X", "Y"), mo.Some(0)), ShouldBeNil)
			So(titles(q), ShouldResemble, []string{"X", "Y", "A", "B", "C"})
			So(q.Current(), ShouldResemble, mo.Some(3))
		})

		Convey("Inserting after it leaves the current index", func() {
			So(q.Add(items("X"), mo.Some(2)), ShouldBeNil)
			So(q.Current(), ShouldResemble, mo.Some(1))
		})
	})
}

func TestMove(t *testing.T) {
	Convey("Given A B C", t, func() {
		q := newQueue("A", "B", "C")

		Convey("move(0,2) yields B C A", func() {
			So(q.Move(0, 2), ShouldBeNil)
			So(titles(q), ShouldResemble, []string{"B", "C", "A"})
		})

		Convey("The active item is followed", func() {
			So(q.Move(0, 2), ShouldBeNil)
			So(q.Current(), ShouldResemble, mo.Some(2))
		})

		Convey("Moving another item across the active one keeps it active", func() {
			So(q.SetCurrent(1), ShouldBeNil)
			So(q.Move(2, 0), ShouldBeNil)
			So(titles(q), ShouldResemble, []string{"C", "A", "B"})
			So(q.CurrentItem().MustGet().Title(), ShouldEqual, "B")

			So(q.Move(0, 2), ShouldBeNil)
			So(q.CurrentItem().MustGet().Title(), ShouldEqual, "B")
		})

		Convey("Bad indices fail", func() {
			So(errors.Is(q.Move(0, 3), ErrIndexOutOfRange), ShouldBeTrue)
			So(errors.Is(q.Move(-1, 0), ErrIndexOutOfRange), ShouldBeTrue)
		})
	})
}

func TestRemove(t *testing.T) {
	Convey("Removing the active item", t, func() {
		for n := 1; n <= 5; n++ {
			for active := 0; active < n; active++ {
				q := newQueue(lo.Map(lo.Range(n), func(i, _ int) string { return string(rune('A' + i)) })...)
				So(q.SetCurrent(active), ShouldBeNil)

				removed, err := q.Remove([]int{active})
				So(err, ShouldBeNil)
				So(removed, ShouldBeTrue)

				switch {
				case n == 1:
					So(q.Current().IsPresent(), ShouldBeFalse)
				case active < n-1:
					So(q.Current(), ShouldResemble, mo.Some(active))
				default:
					So(q.Current(), ShouldResemble, mo.Some(0))
				}
			}
		}
	})

	Convey("Given A B C D E with C active", t, func() {
		q := newQueue("A", "B", "C", "D", "E")
		So(q.SetCurrent(2), ShouldBeNil)

		Convey("Removing several indices keeps the right item active", func() {
			removed, err := q.Remove([]int{0, 3, 0})
			So(err, ShouldBeNil)
			So(removed, ShouldBeFalse)
			So(titles(q), ShouldResemble, []string{"B", "C", "E"})
			So(q.CurrentItem().MustGet().Title(), ShouldEqual, "C")
		})

		Convey("Removing the active item and its follower activates the next survivor", func() {
			_, err := q.Remove([]int{2, 3})
			So(err, ShouldBeNil)
			So(q.CurrentItem().MustGet().Title(), ShouldEqual, "E")
		})

		Convey("An invalid index rejects the whole batch", func() {
			_, err := q.Remove([]int{1, 9})
			So(errors.Is(err, ErrIndexOutOfRange), ShouldBeTrue)
			So(q.Len(), ShouldEqual, 5)
		})

		Convey("Removing everything empties the queue", func() {
			_, err := q.Remove([]int{0, 1, 2, 3, 4})
			So(err, ShouldBeNil)
			So(q.IsEmpty(), ShouldBeTrue)
			So(q.Current().IsPresent(), ShouldBeFalse)
		})

		Convey("RemoveUpcoming keeps the active item", func() {
			q.RemoveUpcoming()
			So(titles(q), ShouldResemble, []string{"A", "B", "C"})
			So(q.Current(), ShouldResemble, mo.Some(2))
		})

		Convey("RemovePrevious keeps the active item", func() {
			q.RemovePrevious()
			So(titles(q), ShouldResemble, []string{"C", "D", "E"})
			So(q.CurrentItem().MustGet().Title(), ShouldEqual, "C")
		})
	})
}

func TestLoadReplaceClear(t *testing.T) {
	Convey("Given A B", t, func() {
		q := newQueue("A", "B")

		Convey("Load discards everything else", func() {
			q.Load(items("Z")[0])
			So(titles(q), ShouldResemble, []string{"Z"})
			So(q.Current(), ShouldResemble, mo.Some(0))
		})

		Convey("Replace swaps in place", func() {
			So(q.Replace(1, items("Z")[0]), ShouldBeNil)
			So(titles(q), ShouldResemble, []string{"A", "Z"})
			So(errors.Is(q.Replace(2, items("Z")[0]), ErrIndexOutOfRange), ShouldBeTrue)
		})

		Convey("Clear leaves no current index", func() {
			q.Clear()
			So(q.IsEmpty(), ShouldBeTrue)
			So(q.Current().IsPresent(), ShouldBeFalse)
		})
	})
}
