package library

import (
	"testing"

	"github.com/anisan-cli/trackplayer/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func touch(paths ...string) {
	for _, p := range paths {
		So(filesystem.API().WriteFile(p, []byte{0}, 0o644), ShouldBeNil)
	}
}

func TestScan(t *testing.T) {
	Convey("Given a music directory", t, func() {
		touch(
			"/music/Boards of Canada/Roygbiv.mp3",
			"/music/Boards of Canada/cover.jpg",
			"/music/Aphex Twin/Xtal.FLAC",
			"/music/Aphex Twin/notes.txt",
			"/music/.trash/old.mp3",
			"/music/loose.ogg",
		)

		Convey("Scan keeps audio files sorted and skips hidden directories", func() {
			found, err := Scan("/music", []string{"mp3", ".flac", "ogg"})
			So(err, ShouldBeNil)
			So(found, ShouldResemble, []string{
				"/music/Aphex Twin/Xtal.FLAC",
				"/music/Boards of Canada/Roygbiv.mp3",
				"/music/loose.ogg",
			})
		})

		Convey("A missing root is an error", func() {
			_, err := Scan("/nowhere", []string{"mp3"})
			So(err, ShouldNotBeNil)
		})

		Convey("Filter ranks fuzzy matches on the relative path", func() {
			found, _ := Scan("/music", []string{"mp3", "flac", "ogg"})

			So(Filter("/music", found, "boc"), ShouldResemble, []string{"/music/Boards of Canada/Roygbiv.mp3"})
			So(Filter("/music", found, "aphex"), ShouldResemble, []string{"/music/Aphex Twin/Xtal.FLAC"})
			So(Filter("/music", found, "zzz"), ShouldBeEmpty)
			So(Filter("/music", found, " "), ShouldResemble, found)
		})

		Convey("Items derive title and album from the path", func() {
			items := Items([]string{"/music/Aphex Twin/Xtal.FLAC"})
			So(items, ShouldHaveLength, 1)
			So(items[0].URL(), ShouldEqual, "/music/Aphex Twin/Xtal.FLAC")
			So(items[0].Title(), ShouldEqual, "Xtal")
			So(items[0].AlbumTitle(), ShouldEqual, "Aphex Twin")
			So(items[0].MediaID(), ShouldNotBeEmpty)
		})
	})
}

func TestRecent(t *testing.T) {
	Convey("Given remembered patterns", t, func() {
		So(Remember("Aphex"), ShouldBeNil)
		So(Remember("aphex "), ShouldBeNil)
		So(Remember("autechre"), ShouldBeNil)
		So(Remember("  "), ShouldBeNil)

		Convey("Suggestions are ranked by use", func() {
			s := Suggest("a")
			So(s, ShouldHaveLength, 2)
			So(s[0], ShouldEqual, "aphex")
		})

		Convey("Suggestions match fuzzily", func() {
			So(Suggest("atch"), ShouldResemble, []string{"autechre"})
		})
	})
}
