package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/anisan-cli/trackplayer/constant"
	"github.com/anisan-cli/trackplayer/icon"
	"github.com/anisan-cli/trackplayer/key"
	"github.com/anisan-cli/trackplayer/renderer/speaker"
	"github.com/anisan-cli/trackplayer/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report which renderer backends are usable on this system",
	Run: func(cmd *cobra.Command, args []string) {
		report := func(name string, ok bool, detail string) {
			mark := style.Fg(style.SuccessColor)(icon.Get(icon.Success))
			if !ok {
				mark = style.Fg(style.ErrorColor)(icon.Get(icon.Fail))
			}
			fmt.Printf("%s %s %s\n", mark, style.Bold(name), style.Faint(detail))
		}

		path, err := exec.LookPath(viper.GetString(key.PlayerMpvPath))
		if err != nil {
			report("mpv", false, "not found in PATH")
		} else {
			report("mpv", true, path)
		}

		if speaker.AudioAvailable {
			report("speaker", true, "built in")
		} else {
			report("speaker", false, "this build has no audio output")
		}
		report("null", true, "silent, for dry runs")
	},
}

// CheckDependencies exits when the configured mpv executable cannot be found.
func CheckDependencies() {
	dep := viper.GetString(key.PlayerMpvPath)
	if _, err := exec.LookPath(dep); err != nil {
		printMissingDependencyError(dep)
		os.Exit(1)
	}
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install mpv"
	case constant.Linux:
		installCmd = "sudo apt install mpv"
	case constant.Windows:
		installCmd = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The mpv renderer needs '%s', which was not found in your PATH.", dep))

	suggestion := "\n\nOr play through another renderer with --renderer speaker."
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s%s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd), suggestion)
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
