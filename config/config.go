// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"strings"

	"github.com/anisan-cli/trackplayer/constant"
	"github.com/anisan-cli/trackplayer/filesystem"
	"github.com/anisan-cli/trackplayer/log"
	"github.com/anisan-cli/trackplayer/playback"
	"github.com/anisan-cli/trackplayer/where"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvKeyReplacer is a strings.Replacer used to normalize configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup initializes the global configuration state, including defaults, environment bindings, and localized file resolution.
func Setup() error {
	viper.SetConfigName(constant.App)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	// Synchronize environment variable bindings.
	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	// Initialize factory default values.
	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return nil
}

// Watch calls fn with freshly parsed playback options whenever the config file changes.
// Invalid edits are logged and skipped.
func Watch(fn func(playback.Options)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		opts, err := PlaybackOptions()
		if err != nil {
			log.Warnf("config: ignoring %s: %v", e.Name, err)
			return
		}

		log.Infof("config: reloaded %s", e.Name)
		fn(opts)
	})
	viper.WatchConfig()
}
