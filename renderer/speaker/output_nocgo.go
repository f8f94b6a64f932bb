//go:build !((linux && cgo) || windows || darwin)

package speaker

// AudioAvailable indicates whether audio playback is supported in this build.
// Audio requires cgo for the native sound libraries.
const AudioAvailable = false

func defaultOutput() (output, error) {
	return nil, ErrUnavailable
}
