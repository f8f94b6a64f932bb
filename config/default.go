package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/anisan-cli/trackplayer/color"
	"github.com/anisan-cli/trackplayer/constant"
	"github.com/anisan-cli/trackplayer/key"
	"github.com/anisan-cli/trackplayer/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.PlayerRenderer, "mpv", "Renderer backend.\nAvailable options are: mpv, speaker, null")
	register(key.PlayerMpvPath, "mpv", "Path to the mpv executable used by the mpv renderer")
	register(key.PlayerContentType, "music", "Audio content type.\nAvailable options are: music, speech, sonification, movie, unknown")
	register(key.PlayerCacheSize, 0, "Cache size limit in KiB. 0 leaves the renderer default")
	register(key.PlayerBufferMin, 50000, "Minimum buffer duration in milliseconds")
	register(key.PlayerBufferMax, 50000, "Maximum buffer duration in milliseconds")
	register(key.PlayerBufferPlay, 2500, "Buffer duration required to start playback, in milliseconds")
	register(key.PlayerBufferBack, 0, "Back buffer duration kept behind the playhead, in milliseconds")
	register(key.PlayerAutoHandleInterruptions, true, "Pause or duck automatically when audio focus is lost")
	register(key.PlayerAlwaysPauseOnInterruption, false, "Pause instead of ducking on transient focus loss")
	register(key.PlayerProgressInterval, 1000, "Interval of progress events in milliseconds. 0 disables them")
	register(key.PlayerCapabilities, []string{"play", "pause", "stop", "next", "previous", "seek", "jump_forward", "jump_backward"}, "Control buttons relayed as remote events.\nAvailable options are: play, pause, stop, next, previous, seek, rate, rating, jump_forward, jump_backward, custom_action")
	register(key.PlayerJumpForward, 15, "Forward jump interval in seconds")
	register(key.PlayerJumpBackward, 15, "Backward jump interval in seconds")
	register(key.PlayerVolume, 1.0, "Initial volume, from 0 to 1")
	register(key.PlayerRepeat, "off", "Repeat mode.\nAvailable options are: off, track, queue")
	register(key.PlayerShuffle, false, "Start with shuffled traversal")
	register(key.CrossfadeDuration, 0, "Crossfade duration in milliseconds. 0 disables automatic crossfades")
	register(key.CrossfadeInterval, 20, "Crossfade volume step interval in milliseconds")
	register(key.LibraryPath, "", "Directory scanned for audio files when no arguments are given")
	register(key.LibraryExtensions, []string{"mp3", "flac", "wav", "ogg", "m4a", "opus"}, "File extensions recognized as audio")
	register(key.HistorySaveOnExit, true, "Save the queue and position on exit so --continue can resume it")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, plain, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, false, "Enable automatic version check")
	register(key.CliWatchConfig, true, "Apply config file changes to a running player")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
