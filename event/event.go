// Package event defines the domain events the engine publishes and the bus that carries them.
package event

import (
	"time"

	"github.com/anisan-cli/trackplayer/media"
	"github.com/anisan-cli/trackplayer/metadata"
	"github.com/anisan-cli/trackplayer/renderer"
	"github.com/samber/mo"
)

// Kind is the wire name of an event.
type Kind string

const (
	KindPlaybackState         Kind = "playback-state"
	KindPlaybackError         Kind = "playback-error"
	KindQueueEnded            Kind = "playback-queue-ended"
	KindTrackChanged          Kind = "playback-track-changed"
	KindActiveTrackChanged    Kind = "playback-active-track-changed"
	KindProgress              Kind = "playback-progress-updated"
	KindPlayWhenReadyChanged  Kind = "playback-play-when-ready-changed"
	KindAnimatedVolumeChanged Kind = "playback-animated-volume-changed"
	KindMetadata              Kind = "playback-metadata-received"
	KindMetadataTimed         Kind = "metadata-timed-received"
	KindMetadataCommon        Kind = "metadata-common-received"
	KindTrackUpdated          Kind = "playback-track-updated"
	KindFocusChanged          Kind = "remote-duck"
)

// Remote kinds are derived from the button name.
const remotePrefix = "remote-"

// Event is a domain event.
type Event interface {
	Kind() Kind
}

// PlaybackError is the structured payload of a renderer failure.
type PlaybackError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e PlaybackError) Kind() Kind { return KindPlaybackError }

// PlaybackState reports a state transition. Err is set for StateError.
type PlaybackState struct {
	State State
	Err   *PlaybackError
}

func (PlaybackState) Kind() Kind { return KindPlaybackState }

// QueueEnded is published when the last item ends with nothing after it.
type QueueEnded struct {
	Track    int
	Position time.Duration
}

func (QueueEnded) Kind() Kind { return KindQueueEnded }

// TrackChanged reports a move of the active index. It is always followed by ActiveTrackChanged.
type TrackChanged struct {
	PreviousIndex mo.Option[int]
	Index         mo.Option[int]
	LastPosition  time.Duration
}

func (TrackChanged) Kind() Kind { return KindTrackChanged }

// ActiveTrackChanged carries the items on both sides of a TrackChanged.
type ActiveTrackChanged struct {
	Index        mo.Option[int]
	Track        mo.Option[media.Item]
	LastIndex    mo.Option[int]
	LastTrack    mo.Option[media.Item]
	LastPosition time.Duration
}

func (ActiveTrackChanged) Kind() Kind { return KindActiveTrackChanged }

// Progress is published periodically while playing.
type Progress struct {
	Position time.Duration
	Duration time.Duration
	Buffered time.Duration
	Track    int
}

func (Progress) Kind() Kind { return KindProgress }

type PlayWhenReadyChanged struct {
	PlayWhenReady bool
}

func (PlayWhenReadyChanged) Kind() Kind { return KindPlayWhenReadyChanged }

// AnimatedVolumeChanged is published when a volume ramp completes.
type AnimatedVolumeChanged struct {
	Volume  float64
	Message string
}

func (AnimatedVolumeChanged) Kind() Kind { return KindAnimatedVolumeChanged }

// Metadata is the normalized description of what is playing.
type Metadata struct {
	metadata.Playback
}

func (Metadata) Kind() Kind { return KindMetadata }

// MetadataTimed republishes raw timed entries unfiltered.
type MetadataTimed struct {
	Entries []metadata.Entry
}

func (MetadataTimed) Kind() Kind { return KindMetadataTimed }

// MetadataCommon republishes raw container entries unfiltered.
type MetadataCommon struct {
	Entries []metadata.Entry
}

func (MetadataCommon) Kind() Kind { return KindMetadataCommon }

// TrackUpdated reports an in-place replacement of a queued item.
type TrackUpdated struct {
	Index int
	Track media.Item
}

func (TrackUpdated) Kind() Kind { return KindTrackUpdated }

// FocusChanged reports audio focus loss. Paused tells whether playback was paused because of it.
type FocusChanged struct {
	Permanent bool
	Paused    bool
}

func (FocusChanged) Kind() Kind { return KindFocusChanged }

// Remote is a user-originated control intent relayed from the host shell.
// Only the field matching Button is meaningful.
type Remote struct {
	Button   renderer.Button
	Position time.Duration
	Rate     float64
	Rating   float64
	Interval time.Duration
	Action   string
}

func (r Remote) Kind() Kind {
	return RemoteKind(r.Button)
}

// RemoteKind returns the kind a Remote event for b carries.
func RemoteKind(b renderer.Button) Kind {
	return Kind(remotePrefix + b.String())
}
