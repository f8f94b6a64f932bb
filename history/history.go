// Package history persists the last playback session so it can be resumed.
package history

import (
	"github.com/anisan-cli/trackplayer/filesystem"
	"github.com/anisan-cli/trackplayer/where"
	"github.com/metafates/gache"
	"github.com/samber/mo"
)

// cacher provides a disk-backed store for the session snapshot.
var cacher = gache.New[*Session](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the last saved session, if any.
func Get() (mo.Option[Session], error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return mo.None[Session](), err
	}
	if expired || cached == nil || len(cached.Tracks) == 0 {
		return mo.None[Session](), nil
	}
	return mo.Some(*cached), nil
}

// Save replaces the stored session.
func Save(session Session) error {
	return cacher.Set(&session)
}

// Forget drops the stored session.
func Forget() error {
	return cacher.Set(nil)
}
