// Package mpv implements renderer.Handle on top of an mpv child process
// driven through its JSON-IPC protocol.
package mpv

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/anisan-cli/trackplayer/constant"
	"github.com/anisan-cli/trackplayer/log"
	"github.com/anisan-cli/trackplayer/media"
	"github.com/anisan-cli/trackplayer/metadata"
	"github.com/anisan-cli/trackplayer/renderer"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"go.uber.org/atomic"
	"golang.org/x/exp/slices"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

// Handle is one mpv process.
type Handle struct {
	*renderer.Emitter

	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	ipc        commander
	events     *listener

	mu        sync.Mutex
	items     []media.Item
	index     int
	loaded    bool
	started   bool
	paused    bool
	buffering bool
	intent    bool
	seekTo    mo.Option[time.Duration]
	position  time.Duration
	duration  time.Duration
	cached    time.Duration
	volume    float64
	rate      float64

	released *atomic.Bool
}

// Factory returns a renderer.Factory spawning the mpv binary found at path.
func Factory(path string) renderer.Factory {
	return func(cfg renderer.Config) (renderer.Handle, error) {
		return New(path, cfg)
	}
}

// New starts mpv idle and paused, and waits for its IPC socket.
func New(path string, cfg renderer.Config) (*Handle, error) {
	if path == "" {
		path = "mpv"
	}

	h := newHandle()
	// macOS $TMPDIR is not /tmp
	h.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("%s-%s.sock", constant.App, uuid.NewString()[:8]))

	h.cmd = exec.Command(path, arguments(h.socketPath, cfg)...)
	h.cmd.SysProcAttr = sysProcAttr()
	h.cmd.Stdout = nil
	h.cmd.Stderr = nil
	h.cmd.Stdin = nil

	if err := h.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mpv: %w", err)
	}

	// reap the process to prevent zombies
	go func() {
		_ = h.cmd.Wait()
		close(h.exited)
		h.onExit()
	}()

	if err := h.waitForSocket(); err != nil {
		select {
		case <-h.exited:
		default:
			log.Warnf("mpv: killing process, socket never became ready")
			_ = killProcess(h.cmd)
		}
		h.released.Store(true)
		h.Emitter.Close()
		return nil, fmt.Errorf("mpv socket not ready: %w", err)
	}

	h.ipc = newClient(h.socketPath)
	h.events = newListener(h.socketPath, h.handle)
	if err := h.events.Start(); err != nil {
		_ = h.Release()
		return nil, err
	}

	log.Debugf("mpv: handle ready on %s", h.socketPath)
	return h, nil
}

func newHandle() *Handle {
	return &Handle{
		Emitter:  renderer.NewEmitter(),
		exited:   make(chan struct{}),
		paused:   true,
		volume:   1,
		rate:     1,
		released: atomic.NewBool(false),
	}
}

// arguments builds the command line. Video output, profiles and decoding stay
// whatever the user's mpv.conf says, except for the audio-only switch.
func arguments(socketPath string, cfg renderer.Config) []string {
	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--idle=yes",
		"--pause=yes",
		"--keep-open=no",
		"--volume=100",
		"--cache=yes",
		fmt.Sprintf("--input-ipc-server=%s", socketPath),
	}

	if cfg.ContentType == renderer.ContentMovie {
		args = append(args, "--force-window=yes")
	} else {
		args = append(args, "--no-video")
	}

	if cfg.CacheSize > 0 {
		args = append(args, fmt.Sprintf("--demuxer-max-bytes=%dKiB", cfg.CacheSize))
	}

	b := cfg.Buffer
	if b.Max > 0 {
		args = append(args,
			"--demuxer-readahead-secs="+seconds(b.Max),
			"--cache-secs="+seconds(b.Max),
		)
	}
	if b.Min > 0 {
		args = append(args, "--cache-pause-wait="+seconds(b.Min))
	}
	if b.Play > 0 {
		args = append(args, "--cache-pause-initial=yes")
	}
	if b.Back > 0 {
		args = append(args, "--demuxer-seekable-cache=yes")
	}

	return args
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (h *Handle) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-h.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", h.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", h.socketPath, socketWaitRetries)
}

func (h *Handle) onExit() {
	if h.released.Load() {
		return
	}
	log.Errorf("mpv: process exited unexpectedly")
	h.Emitter.Fail(renderer.NewError("mpv", "exited", "mpv process exited"))
}

func (h *Handle) command(args ...any) error {
	if _, err := h.ipc.send(args...); err != nil {
		return renderer.NewError("mpv", "ipc", err.Error())
	}
	return nil
}

func (h *Handle) SetItems(items []media.Item) error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	old := h.position
	prevItems, prevIndex := h.items, h.index
	h.items = append([]media.Item(nil), items...)
	h.index = 0

	if len(h.items) == 0 {
		h.loaded = false
		h.SetState(renderer.StateIdle)
		return h.command("stop")
	}

	if h.State() != renderer.StateIdle {
		if err := h.loadLocked(); err != nil {
			h.items, h.index = prevItems, prevIndex
			return err
		}
	}
	h.Emit(renderer.ItemTransition{Reason: renderer.TransitionPlaylistChanged, OldPosition: old})
	return nil
}

// loadLocked replaces whatever mpv plays with items[index]. The pause
// property is set first so a prepared item stays silent.
func (h *Handle) loadLocked() error {
	item := h.items[h.index]

	target, err := sanitizeMediaTarget(item.URL())
	if err != nil {
		return renderer.NewError("mpv", "invalid-target", err.Error())
	}

	opts := item.Options()
	userAgent := lo.Ternary(opts.UserAgent != "", opts.UserAgent, constant.UserAgent)

	steps := [][]any{
		{"set_property", "http-header-fields", headerFields(opts.Headers)},
		{"set_property", "user-agent", userAgent},
		{"set_property", "force-media-title", sanitizeTitle(item.Display())},
		{"set_property", "pause", !h.intent},
		{"loadfile", target, "replace"},
	}
	for _, step := range steps {
		if err := h.command(step...); err != nil {
			return err
		}
	}

	h.loaded = true
	h.started = false
	h.buffering = true
	h.position = 0
	h.cached = 0
	h.duration = item.DurationHint().OrEmpty()
	h.SetState(renderer.StateBuffering)
	return nil
}

func (h *Handle) Prepare() error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.loaded || len(h.items) == 0 {
		return nil
	}
	return h.loadLocked()
}

func (h *Handle) Play() error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.intent = true
	if !h.loaded {
		if len(h.items) == 0 {
			return nil
		}
		return h.loadLocked()
	}
	return h.command("set_property", "pause", false)
}

func (h *Handle) Pause() error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.intent = false
	if !h.loaded {
		return nil
	}
	return h.command("set_property", "pause", true)
}

func (h *Handle) Stop() error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.intent = false
	h.loaded = false
	h.position = 0
	h.cached = 0
	h.SetState(renderer.StateIdle)
	return h.command("stop")
}

func (h *Handle) Seek(position time.Duration) error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	position = max(position, 0)
	if !h.loaded {
		if h.State() != renderer.StateEnded || len(h.items) == 0 {
			return nil
		}
		// mpv dropped the file at its end, reload and seek once loaded
		h.seekTo = mo.Some(position)
		return h.loadLocked()
	}

	h.position = position
	return h.command("seek", position.Seconds(), "absolute")
}

func (h *Handle) SetVolume(v float64) error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.command("set_property", "volume", v*100); err != nil {
		return err
	}
	h.volume = v
	return nil
}

func (h *Handle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

func (h *Handle) SetRate(r float64) error {
	if h.released.Load() {
		return renderer.ErrReleased
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.command("set_property", "speed", r); err != nil {
		return err
	}
	h.rate = r
	return nil
}

func (h *Handle) Rate() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rate
}

func (h *Handle) Position() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position
}

func (h *Handle) Duration() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.duration
}

func (h *Handle) BufferedPosition() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return max(h.cached, h.position)
}

func (h *Handle) IsPlaying() bool {
	return h.State() == renderer.StatePlaying
}

// Release quits mpv, killing it when it does not leave in time.
func (h *Handle) Release() error {
	if !h.released.CompareAndSwap(false, true) {
		return nil
	}

	if h.events != nil {
		h.events.Stop()
	}
	if h.ipc != nil {
		_, _ = h.ipc.send("quit")
	}

	if h.cmd != nil {
		select {
		case <-h.exited:
		case <-time.After(quitTimeout):
			log.Warnf("mpv: quit timed out, killing process")
			_ = killProcess(h.cmd)
		}
	}

	if h.socketPath != "" {
		_ = os.Remove(h.socketPath)
	}

	h.Emitter.Close()
	return nil
}

// handle translates one mpv notification into renderer events.
func (h *Handle) handle(name string, data any) {
	if h.released.Load() {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	switch name {
	case "pause":
		h.paused, _ = data.(bool)
		h.settleLocked()
	case "paused-for-cache":
		h.buffering, _ = data.(bool)
		h.settleLocked()
	case "time-pos":
		if f, ok := data.(float64); ok {
			h.position = renderer.Position(f)
		}
	case "duration":
		if f, ok := data.(float64); ok {
			h.duration = renderer.Position(f)
		}
	case "demuxer-cache-time":
		if f, ok := data.(float64); ok {
			h.cached = renderer.Position(f)
		}
	case "metadata":
		h.onMetadataLocked(data)
	case "file-loaded":
		h.buffering = false
		if pos, ok := h.seekTo.Get(); ok {
			h.seekTo = mo.None[time.Duration]()
			h.position = pos
			if err := h.command("seek", pos.Seconds(), "absolute"); err != nil {
				log.Warnf("mpv: deferred seek: %v", err)
			}
		}
		h.settleLocked()
	case "playback-restart":
		h.buffering = false
		h.settleLocked()
	case "end-file":
		ev, _ := data.(map[string]any)
		h.onEndLocked(ev)
	}
}

// settleLocked derives the raw state from the mirrored properties.
func (h *Handle) settleLocked() {
	if !h.loaded {
		return
	}

	switch {
	case h.buffering:
		h.SetState(renderer.StateBuffering)
	case h.paused && h.started:
		h.SetState(renderer.StatePaused)
	case h.paused:
		h.SetState(renderer.StateReady)
	default:
		h.started = true
		h.SetState(renderer.StatePlaying)
	}
}

func (h *Handle) onMetadataLocked(data any) {
	raw, ok := data.(map[string]any)
	if !ok || len(raw) == 0 {
		return
	}

	tags := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			tags[k] = s
		}
	}

	entries := metadata.FromMap(tags)
	timed := lo.SomeBy(entries, func(e metadata.Entry) bool {
		return e.Format == metadata.FormatICY
	})
	h.Emit(renderer.MetadataArrived{Timed: timed, Entries: entries})
}

// onEndLocked handles end-file. A "stop" reason follows our own loadfile
// replace or stop and is ignored.
func (h *Handle) onEndLocked(ev map[string]any) {
	reason, _ := ev["reason"].(string)

	switch reason {
	case "eof":
		old := h.position
		if h.index+1 < len(h.items) {
			h.index++
			h.Emit(renderer.ItemTransition{Reason: renderer.TransitionAuto, OldPosition: old})
			if err := h.loadLocked(); err != nil {
				h.failLocked(err)
			}
			return
		}

		h.loaded = false
		h.position = h.duration
		h.SetState(renderer.StateEnded)
	case "error":
		msg, _ := ev["file_error"].(string)
		h.loaded = false
		h.Emitter.Fail(renderer.NewError("mpv", errorCode(msg), msg))
	}
}

func (h *Handle) failLocked(err error) {
	h.loaded = false
	if rerr, ok := err.(*renderer.Error); ok {
		h.Emitter.Fail(rerr)
		return
	}
	h.Emitter.Fail(renderer.NewError("mpv", "playback", err.Error()))
}

// errorCode turns mpv's file_error text ("loading failed") into a code.
func errorCode(message string) string {
	code := strings.Join(strings.Fields(strings.ToLower(message)), "-")
	if code == "" {
		return "playback"
	}
	return code
}

// headerFields renders headers for --http-header-fields. Keys are sorted so
// the value is stable.
func headerFields(headers map[string]string) string {
	keys := lo.Keys(headers)
	slices.Sort(keys)

	fields := lo.Map(keys, func(k string, _ int) string {
		// mpv splits the list on commas
		return fmt.Sprintf("%s: %s", k, strings.ReplaceAll(headers[k], ",", "%2C"))
	})
	return strings.Join(fields, ",")
}

// sanitizeMediaTarget validates that a locator is safe to hand to loadfile.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// would be taken for a flag
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "file":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

// sanitizeTitle flattens a title for the force-media-title property.
func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}

var _ renderer.Handle = (*Handle)(nil)
