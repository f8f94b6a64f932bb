package version

import (
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {
	Convey("Compare", t, func() {
		for _, c := range []struct {
			a, b string
			want int
		}{
			{"0.1.0", "0.1.0", 0},
			{"v0.2.0", "0.1.9", 1},
			{"1.0.0", "1.0.1", -1},
			{"0.10.0", "0.9.0", 1},
			{"0.2.0-rc1", "0.2.0", -1},
			{"0.2.0", "0.2.0-rc1", 1},
			{"0.2.0-rc2", "0.2.0-rc1", 1},
		} {
			got, err := Compare(c.a, c.b)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, c.want)
		}

		for _, bad := range []string{"latest", "1.2", "1.2.x"} {
			_, err := Compare(bad, "0.1.0")
			So(err, ShouldNotBeNil)
		}
	})
}

func TestNewer(t *testing.T) {
	Convey("Only later releases are offered", t, func() {
		So(newer("0.2.0", "0.1.0"), ShouldResemble, mo.Some("0.2.0"))
		So(newer("0.1.0", "0.1.0").IsAbsent(), ShouldBeTrue)
		So(newer("0.0.9", "0.1.0").IsAbsent(), ShouldBeTrue)
		So(newer("garbage", "0.1.0").IsAbsent(), ShouldBeTrue)
	})
}
