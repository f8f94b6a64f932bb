// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// App is the canonical application identifier used for filesystem paths and CLI branding.
	App = "trackplayer"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is sent with HTTP requests made by in-process renderers when an item sets none.
	UserAgent = App + "/" + Version
)

// Build metadata, stamped through -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
