package mpv

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// ipcResponse is a reply or, when Event is set, an unsolicited event line.
type ipcResponse struct {
	Data      any    `json:"data"`
	Error     string `json:"error"`
	RequestID int64  `json:"request_id"`
	Event     string `json:"event"`
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = 1 * time.Second
	maxLineSize  = 1 << 20
)

// errCommand marks a reply mpv produced itself. Those are not retried.
var errCommand = errors.New("mpv error")

// commander sends one command and returns its data.
type commander interface {
	send(command ...any) (any, error)
}

// client talks to mpv over short-lived connections to its IPC socket.
type client struct {
	socketPath string

	mu  sync.Mutex
	seq int64
}

func newClient(socketPath string) *client {
	return &client{socketPath: socketPath}
}

// send retries transient connection errors and serializes writers.
func (c *client) send(command ...any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		c.seq++
		result, err := doSendCommand(c.socketPath, c.seq, command)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, errCommand) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command failed after %d attempts: %w", maxRetries, lastErr)
}

// doSendCommand performs a single IPC command attempt.
func doSendCommand(socketPath string, id int64, command []any) (any, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	payload, err := json.Marshal(ipcCommand{Command: command, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	// mpv requires newline-delimited JSON
	if _, err = conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), maxLineSize)

	// every client receives broadcast events, skip until our reply shows up
	for scanner.Scan() {
		resp, ok := parseResponse(scanner.Bytes(), id)
		if !ok {
			continue
		}
		if resp.Error != "" && resp.Error != "success" {
			return nil, fmt.Errorf("%w: %s", errCommand, resp.Error)
		}
		return resp.Data, nil
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, errors.New("read: connection closed before reply")
}

// parseResponse decodes line and reports whether it is the reply to id.
func parseResponse(line []byte, id int64) (ipcResponse, bool) {
	var resp ipcResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return resp, false
	}
	return resp, resp.Event == "" && resp.RequestID == id
}
