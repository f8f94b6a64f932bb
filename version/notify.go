package version

import (
	"fmt"
	"os"

	"github.com/anisan-cli/trackplayer/color"
	"github.com/anisan-cli/trackplayer/constant"
	"github.com/anisan-cli/trackplayer/icon"
	"github.com/anisan-cli/trackplayer/key"
	"github.com/anisan-cli/trackplayer/log"
	"github.com/anisan-cli/trackplayer/style"
	"github.com/anisan-cli/trackplayer/util"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// newer returns latest when it is a later release than current.
func newer(latest, current string) mo.Option[string] {
	cmp, err := Compare(latest, current)
	if err != nil || cmp <= 0 {
		return mo.None[string]()
	}
	return mo.Some(latest)
}

// Notify prints a hint to stderr when cli.version_check is on and a newer release exists.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Checking for a new version...", icon.Get(icon.Progress)))
	latest, err := Latest()
	erase()
	if err != nil {
		log.Debugf("version: check failed: %v", err)
		return
	}

	v, ok := newer(latest, constant.Version).Get()
	if !ok {
		return
	}

	fmt.Fprintf(os.Stderr, "\n%s %s is available %s\n%s\n\n",
		style.Fg(color.Green)(icon.Get(icon.Info)),
		style.Bold(constant.App+" "+v),
		style.Faint(fmt.Sprintf("(you have %s)", constant.Version)),
		style.Faint("https://github.com/"+repository+"/releases/tag/v"+v),
	)
}
