// Package main is the entry point for trackplayer.
package main

import (
	"github.com/anisan-cli/trackplayer/cmd"
	"github.com/anisan-cli/trackplayer/config"
	"github.com/anisan-cli/trackplayer/internal/cache"
	"github.com/anisan-cli/trackplayer/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go cache.CollectGarbage()

	cmd.Execute()
}
