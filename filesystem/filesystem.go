// Package filesystem is the swappable afero backend every persistent component goes through.
package filesystem

import (
	"io"

	"github.com/spf13/afero"
)

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active backend.
func API() afero.Afero {
	return backend
}

// SetOsFs switches to the native filesystem.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs switches to a volatile in-memory filesystem, for tests.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// PartialSuffix marks files WriteAtomic has not finished yet.
const PartialSuffix = ".part"

// WriteAtomic copies r into path. Data goes to path+PartialSuffix first and is
// renamed on success, so path never holds a truncated copy.
func WriteAtomic(path string, r io.Reader) error {
	fs := API()
	partial := path + PartialSuffix

	f, err := fs.Create(partial)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = fs.Remove(partial)
		return err
	}
	if err := f.Close(); err != nil {
		_ = fs.Remove(partial)
		return err
	}
	return fs.Rename(partial, path)
}
