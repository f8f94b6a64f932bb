package renderer

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func drain(e *Emitter) []Event {
	e.Close()
	var out []Event
	for ev := range e.Events() {
		out = append(out, ev)
	}
	return out
}

func TestEmitter(t *testing.T) {
	Convey("Given an emitter", t, func() {
		e := NewEmitter()

		Convey("SetState only emits on change", func() {
			So(e.SetState(StateBuffering), ShouldBeTrue)
			So(e.SetState(StateBuffering), ShouldBeFalse)
			So(e.SetState(StatePlaying), ShouldBeTrue)

			So(drain(e), ShouldResemble, []Event{
				StateChanged{State: StateBuffering},
				StateChanged{State: StatePlaying},
			})
		})

		Convey("Fail emits the failure before the state", func() {
			err := NewError("mpv", "load", "no such file")
			e.Fail(err)

			So(e.State(), ShouldEqual, StateError)
			So(drain(e), ShouldResemble, []Event{
				Failure{Err: err},
				StateChanged{State: StateError, Err: err},
			})
		})
	})
}

func TestError(t *testing.T) {
	Convey("Renderer errors are namespaced and match ErrRenderer", t, func() {
		err := NewError("speaker", "decode", "bad frame")
		So(err.Code, ShouldEqual, "speaker-decode")
		So(errors.Is(err, ErrRenderer), ShouldBeTrue)
		So(errors.Is(ErrReleased, ErrRenderer), ShouldBeTrue)
	})

	Convey("State and button names", t, func() {
		So(StatePaused.String(), ShouldEqual, "paused")
		So(State(42).String(), ShouldEqual, "unknown")

		for _, b := range Buttons() {
			parsed, ok := ParseButton(b.String())
			So(ok, ShouldBeTrue)
			So(parsed, ShouldEqual, b)
		}
	})
}
