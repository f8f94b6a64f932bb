// Package shell is the terminal host around a playback controller.
//
// It renders domain events as status lines and turns key presses into
// control buttons. Buttons travel through the controller and come back as
// Remote events, which the shell then acts upon, the same path a media
// session would take.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/anisan-cli/trackplayer/event"
	"github.com/anisan-cli/trackplayer/history"
	"github.com/anisan-cli/trackplayer/icon"
	"github.com/anisan-cli/trackplayer/log"
	"github.com/anisan-cli/trackplayer/playback"
	"github.com/anisan-cli/trackplayer/queue"
	"github.com/anisan-cli/trackplayer/renderer"
	"github.com/anisan-cli/trackplayer/util"
	"golang.org/x/term"
)

const volumeStep = 0.1

// Options tunes a Shell.
type Options struct {
	// Crossfade starts a crossfade this long before the end of each item. Zero disables it.
	Crossfade         time.Duration
	CrossfadeInterval time.Duration

	In  io.Reader
	Out io.Writer
}

// Shell drives one controller from a terminal.
type Shell struct {
	c    *playback.Controller
	opts Options

	status string
	faded  int
}

func New(c *playback.Controller, opts Options) *Shell {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Shell{c: c, opts: opts, faded: -1}
}

// Run renders events and reads keys until the queue ends, q is pressed or
// ctx is done. The terminal is switched to raw mode while it runs.
func (s *Shell) Run(ctx context.Context) error {
	if f, ok := s.opts.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		old, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return fmt.Errorf("raw terminal: %w", err)
		}
		defer func() { _ = term.Restore(int(f.Fd()), old) }()
	}

	sub := s.c.Subscribe()
	defer sub.Close()

	// the reader is never joined, a blocked terminal read cannot be interrupted
	keys := make(chan action)
	go s.readKeys(ctx, keys)

	s.println(helpLine())

	for {
		select {
		case <-ctx.Done():
			s.clearStatus()
			return nil
		case a := <-keys:
			if a == actionQuit {
				s.clearStatus()
				return nil
			}
			if err := s.act(a); err != nil {
				s.warn(err)
			}
		case ev, ok := <-sub.Events():
			if !ok {
				s.clearStatus()
				return nil
			}
			if done := s.handle(ev); done {
				return nil
			}
		}
	}
}

func helpLine() string {
	return fmt.Sprintf("%s %s", icon.Get(icon.Info), Keys)
}

func (s *Shell) readKeys(ctx context.Context, keys chan<- action) {
	buf := make([]byte, 8)
	for {
		n, err := s.opts.In.Read(buf)
		if err != nil {
			return
		}

		a := parseKey(buf[:n])
		if a == actionNone {
			continue
		}

		select {
		case keys <- a:
		case <-ctx.Done():
			return
		}
	}
}

// handle renders ev and reacts to it. It reports true when the shell is done.
func (s *Shell) handle(ev event.Event) bool {
	if line, ok := Line(ev).Get(); ok {
		s.println(line)
	}

	switch ev := ev.(type) {
	case event.Progress:
		s.setStatus(progressLine(ev))
		s.maybeCrossfade(ev)
	case event.PlaybackState:
		if ev.State != event.StatePlaying {
			s.clearStatus()
		}
	case event.ActiveTrackChanged:
		s.faded = -1
	case event.QueueEnded:
		return true
	case event.Remote:
		if err := s.remote(ev); err != nil {
			s.warn(err)
		}
	}
	return false
}

// act handles one key. Transport keys go out as control buttons.
func (s *Shell) act(a action) error {
	press := func(b renderer.Button) error {
		return s.c.Press(renderer.ControlButton{Button: b})
	}

	switch a {
	case actionToggle:
		if s.c.State() == event.StatePlaying {
			return press(renderer.ButtonPause)
		}
		return press(renderer.ButtonPlay)
	case actionNext:
		return press(renderer.ButtonNext)
	case actionPrevious:
		return press(renderer.ButtonPrevious)
	case actionForward:
		return press(renderer.ButtonJumpForward)
	case actionBackward:
		return press(renderer.ButtonJumpBackward)
	case actionStop:
		return press(renderer.ButtonStop)
	case actionVolumeUp, actionVolumeDown:
		step := volumeStep
		if a == actionVolumeDown {
			step = -step
		}
		v := util.Clamp(s.c.Volume()+step, 0, 1)
		if err := s.c.SetVolume(v); err != nil {
			return err
		}
		s.println(volumeLine(v))
	case actionRepeat:
		mode := s.c.RepeatMode().Cycle()
		if err := s.c.SetRepeatMode(mode); err != nil {
			return err
		}
		s.println(fmt.Sprintf("%s repeat %s", icon.Get(icon.Repeat), mode))
	case actionShuffle:
		on := !s.c.Shuffled()
		if err := s.c.SetShuffle(on); err != nil {
			return err
		}
		s.println(fmt.Sprintf("%s shuffle %t", icon.Get(icon.Shuffle), on))
	case actionFadeNext:
		return s.c.FadeOutNext(0, 0, s.c.Volume())
	}
	return nil
}

// remote carries out a control intent that came back from the controller.
func (s *Shell) remote(r event.Remote) error {
	switch r.Button {
	case renderer.ButtonPlay:
		return s.c.Play()
	case renderer.ButtonPause:
		return s.c.Pause()
	case renderer.ButtonStop:
		return s.c.Stop()
	case renderer.ButtonNext:
		return s.c.Next()
	case renderer.ButtonPrevious:
		return s.c.Previous()
	case renderer.ButtonSeek:
		return s.c.SeekTo(r.Position)
	case renderer.ButtonSetRate:
		return s.c.SetRate(r.Rate)
	case renderer.ButtonJumpForward:
		return s.c.JumpForward(r.Interval)
	case renderer.ButtonJumpBackward:
		return s.c.JumpBackward(r.Interval)
	}
	log.Debugf("shell: ignoring remote %s", r.Kind())
	return nil
}

// maybeCrossfade starts the crossfade into the next item once the active one
// is within the crossfade duration of its end. Each item fades out once.
func (s *Shell) maybeCrossfade(p event.Progress) {
	if s.opts.Crossfade <= 0 || p.Duration <= 0 || s.faded == p.Track {
		return
	}

	remaining := p.Duration - p.Position
	if remaining > s.opts.Crossfade || remaining <= 0 {
		return
	}
	if s.c.RepeatMode() == queue.RepeatTrack || s.c.CrossfadeState().IsPresent() || s.c.NextTrack().IsAbsent() {
		return
	}

	s.faded = p.Track
	if err := s.c.CrossFadePrepare(false); err != nil {
		log.Warnf("shell: crossfade prepare: %v", err)
		return
	}
	if err := s.c.CrossFade(remaining, s.opts.CrossfadeInterval, s.c.Volume()); err != nil {
		log.Warnf("shell: crossfade: %v", err)
		return
	}
	s.println(fmt.Sprintf("%s crossfading", icon.Get(icon.Crossfade)))
}

// Save snapshots the queue for --continue.
func (s *Shell) Save() error {
	items := s.c.Queue()
	if len(items) == 0 {
		return history.Forget()
	}

	session := history.NewSession(
		items,
		s.c.CurrentIndex().OrEmpty(),
		s.c.Progress().Position,
		s.c.RepeatMode(),
		s.c.Shuffled(),
		s.c.Volume(),
	)
	return history.Save(session)
}

func (s *Shell) warn(err error) {
	log.Warn(err)
	s.println(fmt.Sprintf("%s %s", icon.Get(icon.Warn), err))
}

// println writes a line above the status. Raw mode needs the carriage return.
func (s *Shell) println(line string) {
	s.clearStatus()
	fmt.Fprint(s.opts.Out, line+"\r\n")
}

func (s *Shell) setStatus(line string) {
	s.clearStatus()
	s.status = line
	fmt.Fprint(s.opts.Out, "\r"+line)
}

func (s *Shell) clearStatus() {
	if s.status == "" {
		return
	}
	fmt.Fprintf(s.opts.Out, "\r%*s\r", len(s.status), "")
	s.status = ""
}
