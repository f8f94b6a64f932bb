package network

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anisan-cli/trackplayer/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGet(t *testing.T) {
	Convey("Given a server echoing request headers", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/missing" {
				http.NotFound(w, r)
				return
			}
			_, _ = io.WriteString(w, r.Header.Get("User-Agent")+"|"+r.Header.Get("Authorization"))
		}))
		Reset(srv.Close)

		read := func(resp *http.Response) string {
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			So(err, ShouldBeNil)
			return string(body)
		}

		Convey("Headers and the default user agent are sent", func() {
			resp, err := Get(context.Background(), srv.URL, map[string]string{"Authorization": "Bearer x"}, "")
			So(err, ShouldBeNil)
			So(read(resp), ShouldEqual, constant.UserAgent+"|Bearer x")
		})

		Convey("An item user agent wins", func() {
			resp, err := Get(context.Background(), srv.URL, nil, "radio/1.0")
			So(err, ShouldBeNil)
			So(read(resp), ShouldEqual, "radio/1.0|")
		})

		Convey("Other statuses are errors", func() {
			_, err := Get(context.Background(), srv.URL+"/missing", nil, "")
			So(errors.Is(err, ErrStatus), ShouldBeTrue)
		})

		Convey("A cancelled context aborts the request", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := Get(ctx, srv.URL, nil, "")
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
