package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anisan-cli/trackplayer/config"
	"github.com/anisan-cli/trackplayer/filesystem"
	"github.com/anisan-cli/trackplayer/history"
	"github.com/anisan-cli/trackplayer/icon"
	"github.com/anisan-cli/trackplayer/key"
	"github.com/anisan-cli/trackplayer/library"
	"github.com/anisan-cli/trackplayer/log"
	"github.com/anisan-cli/trackplayer/media"
	"github.com/anisan-cli/trackplayer/playback"
	"github.com/anisan-cli/trackplayer/renderer"
	"github.com/anisan-cli/trackplayer/renderer/mock"
	"github.com/anisan-cli/trackplayer/renderer/mpv"
	"github.com/anisan-cli/trackplayer/renderer/speaker"
	"github.com/anisan-cli/trackplayer/shell"
	"github.com/anisan-cli/trackplayer/style"
	"github.com/anisan-cli/trackplayer/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var renderers = []string{"mpv", "speaker", "null"}

var errNothingToPlay = errors.New("nothing to play, pass files or urls, set --dir or use --continue")

var playCmd = &cobra.Command{
	Use:   "play [paths|urls...]",
	Short: "Queue the given files, urls or directories and play them",
	Example: "  trackplayer play ~/Music/album\n" +
		"  trackplayer play --dir ~/Music --match boards --shuffle\n" +
		"  trackplayer play --continue",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(play(cmd, args))
	},
}

// selection is what a play invocation resolved to.
type selection struct {
	items    []media.Item
	index    int
	position time.Duration
	session  *history.Session
}

func play(cmd *cobra.Command, args []string) error {
	name := viper.GetString(key.PlayerRenderer)
	if name == "mpv" {
		CheckDependencies()
	}

	factory, err := rendererFactory(name)
	if err != nil {
		return err
	}

	opts, err := config.PlaybackOptions()
	if err != nil {
		return err
	}

	sel, err := selectItems(
		args,
		lo.Must(cmd.Flags().GetBool("continue")),
		viper.GetString(key.LibraryPath),
		lo.Must(cmd.Flags().GetString("match")),
	)
	if err != nil {
		return err
	}

	shuffle := viper.GetBool(key.PlayerShuffle)
	if s := sel.session; s != nil {
		opts.RepeatMode = s.RepeatMode()
		if s.Volume > 0 {
			opts.Volume = s.Volume
		}
		shuffle = s.Shuffle
	}

	c, err := playback.New(factory, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Warnf("play: close: %v", err)
		}
	}()

	if err := start(c, sel, shuffle); err != nil {
		return err
	}

	fmt.Printf("%s queued %s\n", icon.Get(icon.Success), style.Bold(util.Quantify(len(sel.items), "track", "tracks")))

	if viper.GetBool(key.CliWatchConfig) {
		config.Watch(func(opts playback.Options) {
			if err := c.UpdateOptions(opts); err != nil {
				log.Warnf("play: apply reloaded options: %v", err)
			}
		})
	}

	crossfade, interval := config.Crossfade()
	s := shell.New(c, shell.Options{Crossfade: crossfade, CrossfadeInterval: interval})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := s.Run(ctx)

	if viper.GetBool(key.HistorySaveOnExit) {
		if err := s.Save(); err != nil {
			log.Warnf("play: save session: %v", err)
		}
	}
	return runErr
}

// start queues the selection and begins playback at its index and position.
func start(c *playback.Controller, sel selection, shuffle bool) error {
	if err := c.Add(sel.items...); err != nil {
		return err
	}
	if err := c.SetShuffle(shuffle); err != nil {
		return err
	}

	if sel.index > 0 {
		if err := c.Skip(sel.index); err != nil {
			return err
		}
	}
	if err := c.Play(); err != nil {
		return err
	}
	if sel.position > 0 {
		return c.SeekTo(sel.position)
	}
	return nil
}

func rendererFactory(name string) (renderer.Factory, error) {
	switch name {
	case "mpv":
		return mpv.Factory(viper.GetString(key.PlayerMpvPath)), nil
	case "speaker":
		if !speaker.AudioAvailable {
			return nil, errors.New("the speaker renderer is not available in this build")
		}
		return speaker.Factory(), nil
	case "null":
		return mock.NewPool(mock.Options{Realtime: true}, 0).Factory(), nil
	}

	return nil, fmt.Errorf("%w: unknown renderer %q, expected one of %v", playback.ErrInvalidArgument, name, renderers)
}

// selectItems resolves what to play. The saved session wins when resuming,
// then the arguments, then the library directory.
func selectItems(args []string, resume bool, dir, match string) (selection, error) {
	if resume {
		return resumeSession()
	}

	var items []media.Item
	if len(args) > 0 {
		for _, arg := range args {
			resolved, err := resolve(arg, match)
			if err != nil {
				return selection{}, err
			}
			items = append(items, resolved...)
		}
	} else if dir != "" {
		resolved, err := scan(dir, match)
		if err != nil {
			return selection{}, err
		}
		items = resolved
	}

	if match != "" {
		if err := library.Remember(match); err != nil {
			log.Warnf("play: remember %q: %v", match, err)
		}
	}

	if len(items) == 0 {
		return selection{}, errNothingToPlay
	}
	return selection{items: items}, nil
}

func resumeSession() (selection, error) {
	found, err := history.Get()
	if err != nil {
		return selection{}, err
	}

	session, ok := found.Get()
	if !ok {
		return selection{}, errors.New("no saved session to continue")
	}

	items, index, err := session.Items()
	if len(items) == 0 {
		return selection{}, err
	}
	if err != nil {
		log.Warnf("play: skipped broken tracks: %v", err)
	}

	sel := selection{items: items, index: index, session: &session}
	if index == session.Index {
		sel.position = session.Position
	}
	return sel, nil
}

// resolve turns one argument into items. Urls are queued as is, directories
// are scanned and files are queued directly.
func resolve(arg, match string) ([]media.Item, error) {
	if u, err := url.Parse(arg); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return []media.Item{media.New(media.Fields{URL: arg, Title: arg})}, nil
	}

	info, err := filesystem.API().Stat(arg)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return scan(arg, match)
	}
	return library.Items([]string{arg}), nil
}

func scan(dir, match string) ([]media.Item, error) {
	paths, err := library.Scan(dir, viper.GetStringSlice(key.LibraryExtensions))
	if err != nil {
		return nil, err
	}
	return library.Items(library.Filter(dir, paths, match)), nil
}
