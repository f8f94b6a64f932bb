// Package version checks for newer releases of the application.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/anisan-cli/trackplayer/filesystem"
	"github.com/anisan-cli/trackplayer/network"
	"github.com/anisan-cli/trackplayer/util"
	"github.com/anisan-cli/trackplayer/where"
	"github.com/metafates/gache"
)

// repository is the GitHub owner/name pair releases are published under.
const repository = "anisan-cli/trackplayer"

const checkTimeout = 5 * time.Second

var versionCacher = gache.New[string](&gache.Options{
	Path:       filepath.Join(where.Cache(), "version.json"),
	Lifetime:   time.Hour * 24 * 2,
	FileSystem: &filesystem.GacheFs{},
})

// Latest returns the newest released version. Answers are cached for two days.
func Latest() (string, error) {
	cached, expired, err := versionCacher.Get()
	if err != nil {
		return "", err
	}
	if !expired && cached != "" {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	resp, err := network.Get(ctx, "https://api.github.com/repos/"+repository+"/releases/latest", map[string]string{
		"Accept": "application/vnd.github+json",
	}, "")
	if err != nil {
		return "", err
	}
	defer util.Ignore(resp.Body.Close)

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}
	if release.TagName == "" {
		return "", errors.New("empty tag name")
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	_ = versionCacher.Set(latest)
	return latest, nil
}
