package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrInjected is the error returned by FaultyFS when a fault fires.
var ErrInjected = errors.New("injected fault")

// FaultyFS wraps a FileSystem and fails writes to files whose path contains
// one of the configured substrings. Used to test that a failed element
// write never corrupts sibling groups.
type FaultyFS struct {
	FS FileSystem

	mu       sync.Mutex
	failSubs []string
}

// NewFaultyFS creates a FaultyFS wrapping fsys (or Default if nil).
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	return &FaultyFS{FS: fsys}
}

// FailWritesContaining makes subsequent writes fail for any path containing sub.
func (f *FaultyFS) FailWritesContaining(sub string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSubs = append(f.failSubs, sub)
}

func (f *FaultyFS) shouldFail(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.failSubs {
		if strings.Contains(name, sub) {
			return true
		}
	}
	return false
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE) != 0 && f.shouldFail(name) {
		return nil, ErrInjected
	}
	return f.FS.OpenFile(name, flag, perm)
}

func (f *FaultyFS) Remove(name string) error             { return f.FS.Remove(name) }
func (f *FaultyFS) RemoveAll(path string) error          { return f.FS.RemoveAll(path) }
func (f *FaultyFS) Stat(name string) (os.FileInfo, error) { return f.FS.Stat(name) }
func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error {
	return f.FS.MkdirAll(path, perm)
}
func (f *FaultyFS) ReadDir(name string) ([]os.DirEntry, error) { return f.FS.ReadDir(name) }

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	if f.shouldFail(newpath) {
		return ErrInjected
	}
	return f.FS.Rename(oldpath, newpath)
}
