package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/anisan-cli/trackplayer/media"
	"github.com/anisan-cli/trackplayer/queue"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"go.uber.org/multierr"
)

// Track is the persisted form of a queued item.
type Track struct {
	URL       string            `json:"url"`
	Type      string            `json:"type"`
	Title     string            `json:"title,omitempty"`
	Artist    string            `json:"artist,omitempty"`
	Album     string            `json:"album,omitempty"`
	Artwork   string            `json:"artwork,omitempty"`
	MediaID   string            `json:"media_id"`
	Duration  time.Duration     `json:"duration,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`
}

func newTrack(item media.Item) Track {
	opts := item.Options()
	return Track{
		URL:       item.URL(),
		Type:      item.Type().String(),
		Title:     item.Title(),
		Artist:    item.Artist(),
		Album:     item.AlbumTitle(),
		Artwork:   item.Artwork(),
		MediaID:   item.MediaID(),
		Duration:  item.DurationHint().OrEmpty(),
		Headers:   opts.Headers,
		UserAgent: opts.UserAgent,
	}
}

func (t Track) item() (media.Item, error) {
	if t.URL == "" {
		return media.Item{}, fmt.Errorf("track %q has no url", t.MediaID)
	}

	duration := mo.None[time.Duration]()
	if t.Duration > 0 {
		duration = mo.Some(t.Duration)
	}

	return media.New(media.Fields{
		URL:          t.URL,
		Type:         media.ParseType(t.Type),
		Title:        t.Title,
		Artist:       t.Artist,
		AlbumTitle:   t.Album,
		Artwork:      t.Artwork,
		DurationHint: duration,
		MediaID:      t.MediaID,
		Options: media.Options{
			Headers:   t.Headers,
			UserAgent: t.UserAgent,
		},
	}), nil
}

// Session is a snapshot of the queue and playhead.
type Session struct {
	Tracks   []Track       `json:"tracks"`
	Index    int           `json:"index"`
	Position time.Duration `json:"position"`
	Repeat   string        `json:"repeat"`
	Shuffle  bool          `json:"shuffle"`
	Volume   float64       `json:"volume"`
	SavedAt  time.Time     `json:"saved_at"`
}

// NewSession captures items with the playhead at index and position.
func NewSession(items []media.Item, index int, position time.Duration, repeat queue.RepeatMode, shuffle bool, volume float64) Session {
	return Session{
		Tracks:   lo.Map(items, func(item media.Item, _ int) Track { return newTrack(item) }),
		Index:    index,
		Position: position,
		Repeat:   repeat.String(),
		Shuffle:  shuffle,
		Volume:   volume,
		SavedAt:  time.Now(),
	}
}

// Items rebuilds the queued items. Broken tracks are skipped and reported
// together; the returned index is adjusted to the surviving items.
func (s Session) Items() ([]media.Item, int, error) {
	var (
		items []media.Item
		errs  error
		index = 0
	)

	for i, t := range s.Tracks {
		item, err := t.item()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if i <= s.Index {
			index = len(items)
		}
		items = append(items, item)
	}

	if len(items) == 0 && errs == nil {
		errs = errors.New("session is empty")
	}
	return items, index, errs
}

// RepeatMode parses the saved repeat mode, falling back to off.
func (s Session) RepeatMode() queue.RepeatMode {
	mode, err := queue.ParseRepeatMode(s.Repeat)
	if err != nil {
		return queue.RepeatOff
	}
	return mode
}
