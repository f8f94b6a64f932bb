package queue

import (
	"fmt"
	"strings"
)

// RepeatMode decides what traversal does at the ends of the queue.
type RepeatMode int

const (
	// RepeatOff stops at either end.
	RepeatOff RepeatMode = iota
	// RepeatTrack keeps replaying the active item.
	RepeatTrack
	// RepeatQueue wraps around at either end.
	RepeatQueue
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatTrack:
		return "track"
	case RepeatQueue:
		return "queue"
	default:
		return "off"
	}
}

// ParseRepeatMode accepts the names produced by String.
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "":
		return RepeatOff, nil
	case "track", "one":
		return RepeatTrack, nil
	case "queue", "all":
		return RepeatQueue, nil
	default:
		return RepeatOff, fmt.Errorf("unknown repeat mode %q", s)
	}
}

// Cycle returns the mode after m in off -> queue -> track -> off order.
func (m RepeatMode) Cycle() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatQueue
	case RepeatQueue:
		return RepeatTrack
	default:
		return RepeatOff
	}
}
