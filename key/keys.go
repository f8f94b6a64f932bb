// Package key defines the configuration identifiers used across the application.
package key

// DefinedFieldsCount is the number of registered configuration fields.
const DefinedFieldsCount = 29

// Renderer - these keys are handed to every renderer handle the controller allocates.
const (
	PlayerRenderer    = "player.renderer"
	PlayerMpvPath     = "player.mpv_path"
	PlayerContentType = "player.content_type"
	PlayerCacheSize   = "player.max_cache_size"
	PlayerBufferMin   = "player.buffer.min"
	PlayerBufferMax   = "player.buffer.max"
	PlayerBufferPlay  = "player.buffer.play"
	PlayerBufferBack  = "player.buffer.back"
)

// Playback - these keys configure the controller itself.
const (
	PlayerAutoHandleInterruptions   = "player.auto_handle_interruptions"
	PlayerAlwaysPauseOnInterruption = "player.always_pause_on_interruption"
	PlayerProgressInterval          = "player.progress_interval"
	PlayerCapabilities              = "player.capabilities"
	PlayerJumpForward               = "player.jump.forward"
	PlayerJumpBackward              = "player.jump.backward"
	PlayerVolume                    = "player.volume"
	PlayerRepeat                    = "player.repeat"
	PlayerShuffle                   = "player.shuffle"
)

// Crossfade - these keys drive automatic crossfades between consecutive items.
const (
	CrossfadeDuration = "crossfade.duration"
	CrossfadeInterval = "crossfade.interval"
)

// Library - these keys govern local file discovery.
const (
	LibraryPath       = "library.path"
	LibraryExtensions = "library.extensions"
)

// History - these keys configure the persistence of the last session.
const (
	HistorySaveOnExit = "history.save_on_exit"
)

// Iconography - these keys manage the visual rendering of symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging - these keys manage the diagnostics written to disk.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI - these keys govern the command line behaviour.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
	CliWatchConfig  = "cli.watch_config"
)
