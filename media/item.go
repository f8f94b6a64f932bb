// Package media describes playable audio units.
package media

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
)

// Type classifies how a renderer should open an item's URL.
type Type int

const (
	TypeDefault Type = iota
	TypeDASH
	TypeHLS
	TypeSmoothStreaming
)

var typeNames = map[Type]string{
	TypeDefault:         "default",
	TypeDASH:            "dash",
	TypeHLS:             "hls",
	TypeSmoothStreaming: "smoothstreaming",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return typeNames[TypeDefault]
}

// ParseType maps a type name to a Type. Unknown names fall back to TypeDefault.
func ParseType(name string) Type {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range typeNames {
		if n == name {
			return t
		}
	}
	return TypeDefault
}

// Options carries per-item transport hints for the renderer.
type Options struct {
	Headers    map[string]string `json:"headers,omitempty"`
	UserAgent  string            `json:"user_agent,omitempty"`
	ResourceID mo.Option[int]    `json:"resource_id"`
}

// Item is an immutable description of one playable unit.
// Construct it with New; the zero value has no identity.
type Item struct {
	url          string
	kind         Type
	title        string
	artist       string
	albumTitle   string
	artwork      string
	durationHint mo.Option[time.Duration]
	options      Options
	mediaID      string
}

// Fields is the mutable input New builds an Item from.
type Fields struct {
	URL          string
	Type         Type
	Title        string
	Artist       string
	AlbumTitle   string
	Artwork      string
	DurationHint mo.Option[time.Duration]
	Options      Options
	MediaID      string
}

// New freezes f into an Item, generating a media id when f has none.
func New(f Fields) Item {
	id := f.MediaID
	if id == "" {
		id = uuid.NewString()
	}

	headers := make(map[string]string, len(f.Options.Headers))
	for k, v := range f.Options.Headers {
		headers[k] = v
	}

	return Item{
		url:          f.URL,
		kind:         f.Type,
		title:        f.Title,
		artist:       f.Artist,
		albumTitle:   f.AlbumTitle,
		artwork:      f.Artwork,
		durationHint: f.DurationHint,
		options: Options{
			Headers:    headers,
			UserAgent:  f.Options.UserAgent,
			ResourceID: f.Options.ResourceID,
		},
		mediaID: id,
	}
}

func (i Item) URL() string                            { return i.url }
func (i Item) Type() Type                             { return i.kind }
func (i Item) Title() string                          { return i.title }
func (i Item) Artist() string                         { return i.artist }
func (i Item) AlbumTitle() string                     { return i.albumTitle }
func (i Item) Artwork() string                        { return i.artwork }
func (i Item) DurationHint() mo.Option[time.Duration] { return i.durationHint }
func (i Item) MediaID() string                        { return i.mediaID }

// Options returns a copy of the item's transport hints.
func (i Item) Options() Options {
	headers := make(map[string]string, len(i.options.Headers))
	for k, v := range i.options.Headers {
		headers[k] = v
	}
	return Options{
		Headers:    headers,
		UserAgent:  i.options.UserAgent,
		ResourceID: i.options.ResourceID,
	}
}

// Fields returns the item's contents as an editable value, mediaId included.
func (i Item) Fields() Fields {
	return Fields{
		URL:          i.url,
		Type:         i.kind,
		Title:        i.title,
		Artist:       i.artist,
		AlbumTitle:   i.albumTitle,
		Artwork:      i.artwork,
		DurationHint: i.durationHint,
		Options:      i.Options(),
		MediaID:      i.mediaID,
	}
}

// Display returns "Artist - Title", degrading to whichever part is known, then to the URL.
func (i Item) Display() string {
	switch {
	case i.artist != "" && i.title != "":
		return i.artist + " - " + i.title
	case i.title != "":
		return i.title
	case i.artist != "":
		return i.artist
	default:
		return i.url
	}
}

// IsZero reports whether i was never constructed.
func (i Item) IsZero() bool {
	return i.mediaID == ""
}
