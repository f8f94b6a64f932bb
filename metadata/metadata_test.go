package metadata

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given entries from several formats", t, func() {
		entries := []Entry{
			{FormatQuickTime, "com.apple.quicktime.title", "qt title"},
			{FormatVorbis, "TITLE", "vorbis title"},
			{FormatICY, "StreamTitle", "Band - Live"},
			{FormatICY, "StreamUrl", "https://radio.example"},
		}

		Convey("The highest priority format present wins", func() {
			p, ok := Normalize(entries).Get()
			So(ok, ShouldBeTrue)
			So(p.Source, ShouldEqual, "icy")
			So(p.Title, ShouldEqual, "Band - Live")
			So(p.URL, ShouldEqual, "https://radio.example")
		})

		Convey("ID3 beats everything", func() {
			entries = append(entries,
				Entry{FormatID3, "TIT2", "id3 title"},
				Entry{FormatID3, "TPE1", "id3 artist"},
				Entry{FormatID3, "TCON", "Rock"},
			)
			p := Normalize(entries).MustGet()
			So(p, ShouldResemble, Playback{Source: "id3", Title: "id3 title", Artist: "id3 artist", Genre: "Rock"})
		})

		Convey("A format with only unknown keys is skipped", func() {
			p := Normalize([]Entry{
				{FormatID3, "PRIV", "blob"},
				{FormatVorbis, "album", "Record"},
			}).MustGet()
			So(p.Source, ShouldEqual, "vorbis-comment")
			So(p.Album, ShouldEqual, "Record")
		})

		Convey("The first value for a field sticks", func() {
			p := Normalize([]Entry{
				{FormatVorbis, "ARTIST", "first"},
				{FormatVorbis, "ALBUMARTIST", "second"},
			}).MustGet()
			So(p.Artist, ShouldEqual, "first")
		})

		Convey("Nothing recognizable yields none", func() {
			So(Normalize(nil).IsPresent(), ShouldBeFalse)
			So(Normalize([]Entry{{FormatUnknown, "title", "x"}}).IsPresent(), ShouldBeFalse)
		})
	})
}

func TestGuess(t *testing.T) {
	Convey("Guess labels flat tag keys", t, func() {
		So(Guess("icy-title"), ShouldEqual, FormatICY)
		So(Guess("StreamTitle"), ShouldEqual, FormatICY)
		So(Guess("TIT2"), ShouldEqual, FormatID3)
		So(Guess("com.apple.quicktime.album"), ShouldEqual, FormatQuickTime)
		So(Guess("Artist"), ShouldEqual, FormatVorbis)
		So(Guess(""), ShouldEqual, FormatUnknown)
	})

	Convey("FromMap is ordered by key", t, func() {
		entries := FromMap(map[string]string{"title": "t", "artist": "a"})
		So(entries, ShouldResemble, []Entry{
			{FormatVorbis, "artist", "a"},
			{FormatVorbis, "title", "t"},
		})
	})
}
