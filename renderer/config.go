package renderer

import "time"

// ContentType classifies the audio for the platform mixer.
type ContentType string

const (
	ContentMusic        ContentType = "music"
	ContentSpeech       ContentType = "speech"
	ContentSonification ContentType = "sonification"
	ContentMovie        ContentType = "movie"
	ContentUnknown      ContentType = "unknown"
)

// ContentTypes lists the accepted content types.
func ContentTypes() []ContentType {
	return []ContentType{ContentMusic, ContentSpeech, ContentSonification, ContentMovie, ContentUnknown}
}

// Buffer bounds how much media a handle keeps decoded ahead of (and behind) the playhead.
type Buffer struct {
	// Min is the amount buffered before playback may start after a stall.
	Min time.Duration `json:"min"`
	// Max caps read-ahead.
	Max time.Duration `json:"max"`
	// Play is the amount buffered before the first start.
	Play time.Duration `json:"play"`
	// Back is kept behind the playhead for quick backwards seeks.
	Back time.Duration `json:"back"`
}

// Config is what a Factory needs to build a handle.
type Config struct {
	// CacheSize limits the network cache in bytes. Zero means the backend default.
	CacheSize   int64       `json:"cache_size"`
	ContentType ContentType `json:"content_type"`
	Buffer      Buffer      `json:"buffer"`
}
