package util

import (
	"testing"

	"github.com/anisan-cli/trackplayer/filesystem"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "track", "tracks"), ShouldEqual, "1 track")
		So(Quantify(2, "track", "tracks"), ShouldEqual, "2 tracks")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("hello"), ShouldEqual, "Hello")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestFileStem(t *testing.T) {
	Convey("FileStem", t, func() {
		So(FileStem("music/album/01 intro.flac"), ShouldEqual, "01 intro")
		So(FileStem("file"), ShouldEqual, "file")
	})
}

func TestMaxMin(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
		So(Max[int](), ShouldEqual, 0)
	})

	Convey("Clamp", t, func() {
		So(Clamp(1.3, 0, 1), ShouldEqual, 1)
		So(Clamp(-0.2, 0, 1), ShouldEqual, 0)
		So(Clamp(0.5, 0, 1), ShouldEqual, 0.5)
	})
}

func TestDelete(t *testing.T) {
	Convey("Delete", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()
		So(afero.WriteFile(fs, "/tmp/dir/a", []byte("a"), 0o644), ShouldBeNil)
		So(afero.WriteFile(fs, "/tmp/b", []byte("b"), 0o644), ShouldBeNil)

		So(Delete("/tmp/dir"), ShouldBeNil)
		So(Delete("/tmp/b"), ShouldBeNil)
		So(Delete("/tmp/missing"), ShouldNotBeNil)

		exists, _ := afero.Exists(fs, "/tmp/dir/a")
		So(exists, ShouldBeFalse)
	})
}
