package filesystem

import (
	"io"
	"os"
)

// GacheFs lets gache caches (history, match patterns, version check) persist
// through the active backend, so tests can keep them in memory.
type GacheFs struct{}

func (GacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return API().OpenFile(name, flag, perm)
}

func (GacheFs) MkdirAll(path string, perm os.FileMode) error {
	return API().MkdirAll(path, perm)
}
