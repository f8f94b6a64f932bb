package library

import (
	"strings"

	"github.com/anisan-cli/trackplayer/filesystem"
	"github.com/anisan-cli/trackplayer/where"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

type patternRecord struct {
	Rank    int    `json:"rank"`
	Pattern string `json:"pattern"`
}

var cacher = gache.New[map[string]*patternRecord](
	&gache.Options{
		Path:       where.Queries(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Remember records a match pattern or bumps its rank.
func Remember(pattern string) error {
	pattern = sanitize(pattern)
	if pattern == "" {
		return nil
	}

	cached, expired, err := cacher.Get()
	if expired || err != nil || cached == nil {
		cached = make(map[string]*patternRecord)
	}

	if record, ok := cached[pattern]; ok {
		record.Rank++
	} else {
		cached[pattern] = &patternRecord{Rank: 1, Pattern: pattern}
	}

	return cacher.Set(cached)
}

// Suggest returns remembered patterns matching the partial input, most used first.
func Suggest(partial string) []string {
	cached, expired, err := cacher.Get()
	if err != nil || expired || cached == nil {
		return nil
	}

	partial = sanitize(partial)
	records := lo.Filter(lo.Values(cached), func(r *patternRecord, _ int) bool {
		return fuzzy.Match(partial, r.Pattern)
	})

	slices.SortFunc(records, func(a, b *patternRecord) int {
		if a.Rank != b.Rank {
			return b.Rank - a.Rank
		}
		return strings.Compare(a.Pattern, b.Pattern)
	})

	return lo.Map(records, func(r *patternRecord, _ int) string {
		return r.Pattern
	})
}

func sanitize(pattern string) string {
	return strings.TrimSpace(strings.ToLower(pattern))
}
