package shell

import (
	"fmt"
	"strings"
	"time"

	"github.com/anisan-cli/trackplayer/color"
	"github.com/anisan-cli/trackplayer/event"
	"github.com/anisan-cli/trackplayer/icon"
	"github.com/anisan-cli/trackplayer/style"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Line renders ev as one status line. Events not worth a line render to None.
func Line(ev event.Event) mo.Option[string] {
	switch ev := ev.(type) {
	case event.PlaybackState:
		return stateLine(ev)
	case event.ActiveTrackChanged:
		track, ok := ev.Track.Get()
		if !ok {
			return mo.None[string]()
		}
		return mo.Some(fmt.Sprintf(
			"%s %s %s",
			style.Fg(color.Purple)(icon.Get(icon.Track)),
			style.Faint(fmt.Sprintf("[%d]", ev.Index.OrEmpty()+1)),
			style.Bold(track.Display()),
		))
	case event.QueueEnded:
		return mo.Some(fmt.Sprintf("%s queue ended", icon.Get(icon.Ended)))
	case event.Metadata:
		text := strings.Join(lo.Compact([]string{ev.Title, ev.Artist, ev.Album}), " - ")
		if text == "" {
			return mo.None[string]()
		}
		return mo.Some(fmt.Sprintf("%s %s", icon.Get(icon.Info), style.Italic(text)))
	case event.FocusChanged:
		switch {
		case ev == event.FocusChanged{}:
			return mo.Some(fmt.Sprintf("%s audio focus regained", icon.Get(icon.Info)))
		case ev.Paused:
			return mo.Some(fmt.Sprintf("%s audio focus lost, paused", icon.Get(icon.Warn)))
		default:
			return mo.Some(fmt.Sprintf("%s audio focus lost", icon.Get(icon.Warn)))
		}
	case event.AnimatedVolumeChanged:
		return mo.Some(volumeLine(ev.Volume))
	}

	return mo.None[string]()
}

func stateLine(ev event.PlaybackState) mo.Option[string] {
	switch ev.State {
	case event.StatePlaying:
		return mo.Some(style.Fg(color.Green)(icon.Get(icon.Play) + " playing"))
	case event.StatePaused:
		return mo.Some(style.Fg(color.Yellow)(icon.Get(icon.Pause) + " paused"))
	case event.StateIdle:
		return mo.Some(icon.Get(icon.Stop) + " stopped")
	case event.StateBuffering:
		return mo.Some(style.Faint(icon.Get(icon.Progress) + " buffering"))
	case event.StateError:
		msg := "playback failed"
		if ev.Err != nil {
			msg = fmt.Sprintf("%s: %s", ev.Err.Code, ev.Err.Message)
		}
		return mo.Some(style.Fg(color.Red)(icon.Get(icon.Fail) + " " + msg))
	}
	return mo.None[string]()
}

func volumeLine(v float64) string {
	return fmt.Sprintf("%s %d%%", icon.Get(icon.Volume), int(v*100+0.5))
}

// clock formats d as m:ss, or h:mm:ss from an hour on.
func clock(d time.Duration) string {
	d = d.Round(time.Second)
	h, m, s := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// progressLine is the erasable status shown while playing.
func progressLine(p event.Progress) string {
	if p.Duration <= 0 {
		return fmt.Sprintf("%s %s", icon.Get(icon.Play), clock(p.Position))
	}
	return fmt.Sprintf("%s %s / %s", icon.Get(icon.Play), clock(p.Position), clock(p.Duration))
}
