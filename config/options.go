package config

import (
	"time"

	"github.com/anisan-cli/trackplayer/key"
	"github.com/anisan-cli/trackplayer/playback"
	"github.com/anisan-cli/trackplayer/queue"
	"github.com/anisan-cli/trackplayer/renderer"
	"github.com/spf13/viper"
)

func millis(k string) time.Duration {
	return time.Duration(viper.GetInt(k)) * time.Millisecond
}

func seconds(k string) time.Duration {
	return time.Duration(viper.GetInt(k)) * time.Second
}

// RendererConfig reads the settings handed to every renderer handle.
func RendererConfig() renderer.Config {
	return renderer.Config{
		CacheSize:   viper.GetInt64(key.PlayerCacheSize),
		ContentType: renderer.ContentType(viper.GetString(key.PlayerContentType)),
		Buffer: renderer.Buffer{
			Min:  millis(key.PlayerBufferMin),
			Max:  millis(key.PlayerBufferMax),
			Play: millis(key.PlayerBufferPlay),
			Back: millis(key.PlayerBufferBack),
		},
	}
}

// PlaybackOptions builds controller options from the current configuration.
func PlaybackOptions() (playback.Options, error) {
	capabilities, err := playback.ParseCapabilities(viper.GetStringSlice(key.PlayerCapabilities))
	if err != nil {
		return playback.Options{}, err
	}

	repeat, err := queue.ParseRepeatMode(viper.GetString(key.PlayerRepeat))
	if err != nil {
		return playback.Options{}, err
	}

	opts := playback.Options{
		Renderer:                  RendererConfig(),
		AutoHandleInterruptions:   viper.GetBool(key.PlayerAutoHandleInterruptions),
		AlwaysPauseOnInterruption: viper.GetBool(key.PlayerAlwaysPauseOnInterruption),
		ProgressInterval:          millis(key.PlayerProgressInterval),
		Capabilities:              capabilities,
		ForwardJumpInterval:       seconds(key.PlayerJumpForward),
		BackwardJumpInterval:      seconds(key.PlayerJumpBackward),
		Volume:                    viper.GetFloat64(key.PlayerVolume),
		RepeatMode:                repeat,
	}

	return opts, opts.Validate()
}

// Crossfade returns the automatic crossfade duration and step. A zero duration disables it.
func Crossfade() (duration, interval time.Duration) {
	return millis(key.CrossfadeDuration), millis(key.CrossfadeInterval)
}
