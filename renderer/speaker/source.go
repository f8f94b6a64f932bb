package speaker

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/anisan-cli/trackplayer/filesystem"
	"github.com/anisan-cli/trackplayer/log"
	"github.com/anisan-cli/trackplayer/media"
	"github.com/anisan-cli/trackplayer/network"
	"github.com/anisan-cli/trackplayer/where"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/spf13/afero"
)

// ErrUnsupportedFormat is returned for files no decoder understands.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Extensions lists the file extensions the backend decodes.
func Extensions() []string {
	return []string{".mp3", ".wav", ".flac", ".ogg", ".oga"}
}

// locate splits a media locator into a remote URL or a local path and
// reports the extension the decoder is picked by.
func locate(locator string) (remote *url.URL, local string, ext string) {
	if u, err := url.Parse(locator); err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return u, "", strings.ToLower(path.Ext(u.Path))
		case "file":
			return nil, u.Path, strings.ToLower(filepath.Ext(u.Path))
		}
	}
	return nil, locator, strings.ToLower(filepath.Ext(locator))
}

// open returns a seekable reader for item. Remote media is spooled into
// where.Downloads first, decoders need to seek.
func open(ctx context.Context, item media.Item) (afero.File, string, error) {
	remote, local, ext := locate(item.URL())
	if remote == nil {
		f, err := filesystem.API().Open(local)
		return f, ext, err
	}

	spooled := filepath.Join(where.Downloads(), item.MediaID()+ext)
	if ok, _ := filesystem.API().Exists(spooled); !ok {
		if err := download(ctx, remote, item.Options(), spooled); err != nil {
			return nil, ext, err
		}
	}

	f, err := filesystem.API().Open(spooled)
	return f, ext, err
}

func download(ctx context.Context, remote *url.URL, opts media.Options, dst string) error {
	log.Debugf("speaker: downloading %s", remote.Redacted())
	resp, err := network.Get(ctx, remote.String(), opts.Headers, opts.UserAgent)
	if err != nil {
		return fmt.Errorf("download %s: %w", remote.Redacted(), err)
	}
	defer resp.Body.Close()

	// a cancelled download never reaches dst, so it is never reused
	return filesystem.WriteAtomic(dst, resp.Body)
}

// decode picks a decoder by extension. The returned streamer owns f.
func decode(f afero.File, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case ".mp3":
		return mp3.Decode(f)
	case ".wav":
		return wav.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".ogg", ".oga":
		return vorbis.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
