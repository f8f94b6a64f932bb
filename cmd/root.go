// Package cmd implements the command-line interface for trackplayer.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/anisan-cli/trackplayer/color"
	"github.com/anisan-cli/trackplayer/constant"
	"github.com/anisan-cli/trackplayer/icon"
	"github.com/anisan-cli/trackplayer/key"
	"github.com/anisan-cli/trackplayer/library"
	"github.com/anisan-cli/trackplayer/log"
	"github.com/anisan-cli/trackplayer/style"
	"github.com/anisan-cli/trackplayer/util"
	"github.com/anisan-cli/trackplayer/version"
	"github.com/anisan-cli/trackplayer/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, plain)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.Flags().StringP("renderer", "r", "", "Renderer backend (mpv, speaker, null)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("renderer", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return renderers, cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.PlayerRenderer, rootCmd.Flags().Lookup("renderer")))

	rootCmd.Flags().String("repeat", "", "Repeat mode (off, track, queue)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("repeat", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"off", "track", "queue"}, cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.PlayerRepeat, rootCmd.Flags().Lookup("repeat")))

	rootCmd.Flags().BoolP("shuffle", "z", false, "Shuffle the traversal order")
	lo.Must0(viper.BindPFlag(key.PlayerShuffle, rootCmd.Flags().Lookup("shuffle")))

	rootCmd.Flags().IntP("crossfade", "x", 0, "Crossfade into the next item this many milliseconds before the end")
	lo.Must0(viper.BindPFlag(key.CrossfadeDuration, rootCmd.Flags().Lookup("crossfade")))

	rootCmd.Flags().Float64("volume", 1, "Initial volume, from 0 to 1")
	lo.Must0(viper.BindPFlag(key.PlayerVolume, rootCmd.Flags().Lookup("volume")))

	rootCmd.Flags().StringP("dir", "d", "", "Scan this directory when no arguments are given")
	lo.Must0(viper.BindPFlag(key.LibraryPath, rootCmd.Flags().Lookup("dir")))

	rootCmd.Flags().StringP("match", "m", "", "Only queue scanned files fuzzy matching this pattern")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("match", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return library.Suggest(toComplete), cobra.ShellCompDirectiveNoFileComp
	}))

	rootCmd.Flags().BoolP("continue", "c", false, "Resume the queue saved on the last exit")

	// play shares the flags above, version stays on the root only
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().AddFlagSet(rootCmd.Flags())

	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd plays its arguments, the same as the play command.
var rootCmd = &cobra.Command{
	Use:   constant.App + " [paths|urls...]",
	Short: "A queued audio player for the terminal",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A queued audio player for the terminal"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		handleErr(play(cmd, args))
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
