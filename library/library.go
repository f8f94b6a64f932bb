// Package library discovers local audio files and picks among them.
package library

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/anisan-cli/trackplayer/filesystem"
	"github.com/anisan-cli/trackplayer/media"
	"github.com/anisan-cli/trackplayer/util"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/exp/slices"
)

// Scan walks root and returns every file whose extension is listed, sorted
// by path. Extensions may be given with or without the leading dot.
func Scan(root string, extensions []string) ([]string, error) {
	allowed := lo.SliceToMap(extensions, func(ext string) (string, struct{}) {
		return "." + strings.TrimPrefix(strings.ToLower(ext), "."), struct{}{}
	})

	var found []string
	err := afero.Walk(filesystem.API(), root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			// skip hidden directories, but never the root itself
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; ok {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(found)
	return found, nil
}

// Filter keeps the paths whose part below root fuzzily matches pattern,
// best matches first. An empty pattern keeps everything in order.
func Filter(root string, paths []string, pattern string) []string {
	if strings.TrimSpace(pattern) == "" {
		return paths
	}

	targets := lo.Map(paths, func(p string, _ int) string {
		if rel, err := filepath.Rel(root, p); err == nil {
			return filepath.ToSlash(rel)
		}
		return p
	})

	ranks := fuzzy.RankFindNormalizedFold(pattern, targets)
	slices.SortStableFunc(ranks, func(a, b fuzzy.Rank) int {
		if a.Distance != b.Distance {
			return a.Distance - b.Distance
		}
		return a.OriginalIndex - b.OriginalIndex
	})

	return lo.Map(ranks, func(r fuzzy.Rank, _ int) string {
		return paths[r.OriginalIndex]
	})
}

// Items describes paths as playable items. The title is the file name and
// the album its directory.
func Items(paths []string) []media.Item {
	return lo.Map(paths, func(p string, _ int) media.Item {
		return media.New(media.Fields{
			URL:        p,
			Title:      util.FileStem(p),
			AlbumTitle: filepath.Base(filepath.Dir(p)),
		})
	})
}
