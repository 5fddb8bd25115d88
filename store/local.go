package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hupe1980/spatialgo/internal/fs"
)

// Local implements Backend on a directory of the local file system.
type Local struct {
	root string
	fs   fs.FileSystem
}

// NewLocal creates a local backend rooted at dir.
func NewLocal(dir string) *Local {
	return NewLocalFS(dir, fs.Default)
}

// NewLocalFS creates a local backend with an injected file system.
func NewLocalFS(dir string, fsys fs.FileSystem) *Local {
	return &Local{root: dir, fs: fsys}
}

// Root returns the backing directory.
func (l *Local) Root() string { return l.root }

// LocalPath resolves a key to its on-disk path.
func (l *Local) LocalPath(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

func (l *Local) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(l.fs, l.LocalPath(key))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return data, err
}

func (l *Local) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fs.WriteFile(l.fs, l.LocalPath(key), data, 0o644)
}

func (l *Local) Delete(ctx context.Context, prefix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.fs.RemoveAll(l.LocalPath(prefix))
}

func (l *Local) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := l.fs.ReadDir(l.LocalPath(prefix))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		// skip staging leftovers
		if strings.Contains(e.Name(), stagingInfix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (l *Local) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := l.fs.Stat(l.LocalPath(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Rename atomically moves a subtree into place.
func (l *Local) Rename(ctx context.Context, oldPrefix, newPrefix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := l.LocalPath(newPrefix)
	if err := l.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return l.fs.Rename(l.LocalPath(oldPrefix), dst)
}
