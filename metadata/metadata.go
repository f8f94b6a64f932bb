// Package metadata normalizes stream and container tags into one playback description.
package metadata

import (
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"golang.org/x/exp/slices"
)

// Format names the tagging scheme an entry came from.
type Format int

const (
	FormatUnknown Format = iota
	FormatID3
	FormatICY
	FormatVorbis
	FormatQuickTime
)

var formatNames = map[Format]string{
	FormatUnknown:   "unknown",
	FormatID3:       "id3",
	FormatICY:       "icy",
	FormatVorbis:    "vorbis-comment",
	FormatQuickTime: "quicktime",
}

func (f Format) String() string {
	return formatNames[f]
}

// Entry is one raw key/value tag.
type Entry struct {
	Format Format `json:"format"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// Playback is the normalized description published to listeners.
type Playback struct {
	Source string `json:"source"`
	Title  string `json:"title,omitempty"`
	URL    string `json:"url,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Date   string `json:"date,omitempty"`
	Genre  string `json:"genre,omitempty"`
}

func (p Playback) empty() bool {
	return p.Title == "" && p.URL == "" && p.Artist == "" && p.Album == "" && p.Date == "" && p.Genre == ""
}

// field points at the Playback member a tag key fills.
type field func(*Playback) *string

var (
	title  field = func(p *Playback) *string { return &p.Title }
	url    field = func(p *Playback) *string { return &p.URL }
	artist field = func(p *Playback) *string { return &p.Artist }
	album  field = func(p *Playback) *string { return &p.Album }
	date   field = func(p *Playback) *string { return &p.Date }
	genre  field = func(p *Playback) *string { return &p.Genre }
)

// extractor maps upper-cased tag keys of one format to fields.
type extractor struct {
	format Format
	keys   map[string]field
}

// Tried in order; the first format yielding any field wins.
var extractors = []extractor{
	{FormatID3, map[string]field{
		"TIT2": title,
		"TALB": album,
		"TPE1": artist,
		"TOPE": artist,
		"TDRC": date,
		"TYER": date,
		"TCON": genre,
		"WXXX": url,
		"WOAS": url,
	}},
	{FormatICY, map[string]field{
		"STREAMTITLE":  title,
		"ICY-TITLE":    title,
		"ICY-NAME":     title,
		"STREAMURL":    url,
		"ICY-URL":      url,
		"ICY-GENRE":    genre,
		"ICY-ARTIST":   artist,
		"ICY-ALBUM":    album,
		"ICY-PUB-DATE": date,
	}},
	{FormatVorbis, map[string]field{
		"TITLE":       title,
		"ARTIST":      artist,
		"ALBUMARTIST": artist,
		"ALBUM":       album,
		"DATE":        date,
		"GENRE":       genre,
		"CONTACT":     url,
	}},
	{FormatQuickTime, map[string]field{
		"COM.APPLE.QUICKTIME.TITLE":        title,
		"COM.APPLE.QUICKTIME.ARTIST":       artist,
		"COM.APPLE.QUICKTIME.ALBUM":        album,
		"COM.APPLE.QUICKTIME.CREATIONDATE": date,
		"COM.APPLE.QUICKTIME.GENRE":        genre,
	}},
}

func (x extractor) extract(entries []Entry) mo.Option[Playback] {
	p := Playback{Source: x.format.String()}

	for _, e := range entries {
		if e.Format != x.format {
			continue
		}

		f, ok := x.keys[strings.ToUpper(strings.TrimSpace(e.Key))]
		if !ok {
			continue
		}

		value := strings.TrimSpace(e.Value)
		if dst := f(&p); *dst == "" && value != "" {
			*dst = value
		}
	}

	if p.empty() {
		return mo.None[Playback]()
	}
	return mo.Some(p)
}

// Normalize returns the description built from the highest-priority format
// present in entries: ID3, then ICY, then Vorbis comments, then QuickTime.
func Normalize(entries []Entry) mo.Option[Playback] {
	for _, x := range extractors {
		if p := x.extract(entries); p.IsPresent() {
			return p
		}
	}
	return mo.None[Playback]()
}

// Guess classifies an untagged key by its conventional spelling.
// Backends that expose flat tag maps use it to label entries.
func Guess(key string) Format {
	k := strings.ToUpper(strings.TrimSpace(key))

	switch {
	case strings.HasPrefix(k, "ICY-") || k == "STREAMTITLE" || k == "STREAMURL":
		return FormatICY
	case strings.HasPrefix(k, "COM.APPLE.QUICKTIME."):
		return FormatQuickTime
	case len(k) == 4 && lo.EveryBy([]rune(k), isID3Rune) && (k[0] == 'T' || k[0] == 'W'):
		return FormatID3
	case k != "":
		return FormatVorbis
	default:
		return FormatUnknown
	}
}

func isID3Rune(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// FromMap labels every key of a flat tag map with Guess. Keys are visited in sorted order.
func FromMap(tags map[string]string) []Entry {
	keys := lo.Keys(tags)
	slices.Sort(keys)

	return lo.Map(keys, func(k string, _ int) Entry {
		return Entry{Format: Guess(k), Key: k, Value: tags[k]}
	})
}
