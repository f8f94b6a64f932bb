// Package cache prunes the spool of downloaded media.
package cache

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anisan-cli/trackplayer/filesystem"
	"github.com/anisan-cli/trackplayer/log"
	"github.com/anisan-cli/trackplayer/where"
	"github.com/spf13/afero"
)

// TTL is how long a spooled download is kept after it was last written.
const TTL = 7 * 24 * time.Hour

// partialTTL applies to interrupted downloads, which are never reused.
const partialTTL = time.Hour

// Prune removes expired files under dir and reports how many were removed.
func Prune(dir string, now time.Time) (int, error) {
	var removed int
	err := afero.Walk(filesystem.API(), dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}

		ttl := TTL
		if strings.HasSuffix(path, filesystem.PartialSuffix) {
			ttl = partialTTL
		}
		if now.Sub(info.ModTime()) <= ttl {
			return nil
		}

		if err := filesystem.API().Remove(path); err != nil {
			log.Warnf("cache: remove %s: %v", filepath.Base(path), err)
			return nil
		}
		removed++
		return nil
	})
	return removed, err
}

// CollectGarbage prunes the download spool.
func CollectGarbage() {
	n, err := Prune(where.Downloads(), time.Now())
	if err != nil {
		log.Warnf("cache: prune downloads: %v", err)
		return
	}
	if n > 0 {
		log.Debugf("cache: pruned %d downloads", n)
	}
}
