package mpv

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/anisan-cli/trackplayer/log"
	"github.com/sourcegraph/conc"
)

// eventCallback receives property changes by property name and other
// events by event name with the whole event object as data.
type eventCallback func(name string, data any)

// observed lists the properties the handle mirrors.
var observed = []string{
	"pause",
	"paused-for-cache",
	"time-pos",
	"duration",
	"demuxer-cache-time",
	"metadata",
}

// listener keeps one persistent connection to mpv and relays what it sends.
// Observers are bound to the connection that registered them, so they are
// registered on this one.
type listener struct {
	socketPath string
	callback   eventCallback

	mu        sync.Mutex
	conn      net.Conn
	listening bool
	loop      conc.WaitGroup
}

func newListener(socketPath string, callback eventCallback) *listener {
	return &listener{
		socketPath: socketPath,
		callback:   callback,
	}
}

// Start registers the observers and starts the read loop.
func (l *listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.listening {
		return nil
	}

	conn, err := net.Dial("unix", l.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range observed {
		payload, err := json.Marshal(ipcCommand{Command: []any{"observe_property", i + 1, name}})
		if err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	l.conn = conn
	l.listening = true
	l.loop.Go(l.readLoop)

	log.Debugf("mpv: event listener started on %s", l.socketPath)
	return nil
}

// Stop closes the connection and waits for the read loop to return.
func (l *listener) Stop() {
	l.mu.Lock()
	if !l.listening {
		l.mu.Unlock()
		return
	}
	l.listening = false
	l.conn.Close()
	l.mu.Unlock()

	l.loop.Wait()
}

func (l *listener) readLoop() {
	scanner := bufio.NewScanner(l.conn)
	scanner.Buffer(make([]byte, 4096), maxLineSize)

	for scanner.Scan() {
		l.processEvent(scanner.Bytes())
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Warnf("mpv: event listener read error: %v", err)
	}
}

// processEvent parses and dispatches a single mpv event line.
// Replies to the observe commands carry no event name and are dropped.
func (l *listener) processEvent(line []byte) {
	var ev map[string]any
	if err := json.Unmarshal(line, &ev); err != nil {
		return
	}

	kind, ok := ev["event"].(string)
	if !ok || l.callback == nil {
		return
	}

	if kind == "property-change" {
		if name, _ := ev["name"].(string); name != "" {
			l.callback(name, ev["data"])
		}
		return
	}
	l.callback(kind, ev)
}
