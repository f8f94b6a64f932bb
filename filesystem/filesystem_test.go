package filesystem

import (
	"errors"
	"io"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})
	})
}

func TestWriteAtomic(t *testing.T) {
	Convey("Given an in-memory filesystem", t, func() {
		SetMemMapFs()
		So(API().MkdirAll("/spool", 0o755), ShouldBeNil)

		Convey("A complete copy lands under the final name", func() {
			So(WriteAtomic("/spool/a.mp3", strings.NewReader("audio")), ShouldBeNil)

			data, err := API().ReadFile("/spool/a.mp3")
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "audio")

			partial, _ := API().Exists("/spool/a.mp3" + PartialSuffix)
			So(partial, ShouldBeFalse)
		})

		Convey("A failed copy leaves nothing behind", func() {
			err := WriteAtomic("/spool/b.mp3", io.MultiReader(strings.NewReader("au"), failingReader{}))
			So(err, ShouldNotBeNil)

			for _, p := range []string{"/spool/b.mp3", "/spool/b.mp3" + PartialSuffix} {
				exists, _ := API().Exists(p)
				So(exists, ShouldBeFalse)
			}
		})
	})
}
