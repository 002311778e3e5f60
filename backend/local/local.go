// Package local provides a backend.Backend for information packages stored
// as directory trees.
package local

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/karrick/godirwalk"
	"github.com/srerickson/eark"
	"github.com/srerickson/eark/backend"
)

// Backend reads a package laid out as a folder. References are resolved by
// joining the manifest's directory with the href.
type Backend struct {
	backend.Base
	// path is os-specific path to the package directory, if the package is
	// on the local filesystem.
	path string
}

var _ backend.Backend = (*Backend)(nil)

// Open returns a Backend for the package directory at dir on the local
// filesystem.
func Open(dir string) (*Backend, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("new backend: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("new backend: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("new backend: %s is not a directory: %w", dir, eark.ErrUnsupported)
	}
	return &Backend{
		Base: backend.Base{
			FS:       eark.DirFS(abs),
			Root:     ".",
			RootName: filepath.Base(abs),
		},
		path: abs,
	}, nil
}

// New returns a Backend for the package in the directory dir of fsys. It is
// used for packages in storage other than the local filesystem (e.g.,
// cloud buckets).
func New(fsys eark.FS, dir string) *Backend {
	if dir == "" {
		dir = "."
	}
	return &Backend{
		Base: backend.Base{
			FS:   fsys,
			Root: path.Clean(dir),
		},
	}
}

func (b *Backend) Name() string { return "folder" }

func (b *Backend) CountFiles(ctx context.Context, dir string) (int, error) {
	if b.path == "" {
		return b.Base.CountFiles(ctx, dir)
	}
	count := 0
	err := walk(ctx, b.osPath(dir), func(string) { count++ })
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (b *Backend) MetadataFiles(ctx context.Context, dir string) (map[string]bool, error) {
	if b.path == "" {
		return b.Base.MetadataFiles(ctx, dir)
	}
	files := map[string]bool{}
	err := walk(ctx, b.osPath(dir), func(ospath string) {
		rel, err := filepath.Rel(b.path, ospath)
		if err != nil {
			return
		}
		files[filepath.ToSlash(rel)] = false
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (b *Backend) osPath(name string) string {
	return filepath.Join(b.path, filepath.FromSlash(name))
}

// walk calls fn with the path of every regular file under dir.
func walk(ctx context.Context, dir string, fn func(ospath string)) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("walking directory %s: %w", dir, err)
	}
	return godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(ospath string, dirent *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if dirent.IsRegular() {
				fn(ospath)
			}
			return nil
		},
		ErrorCallback: func(ospath string, err error) godirwalk.ErrorAction {
			return godirwalk.Halt
		},
		Unsorted:            true,
		FollowSymbolicLinks: true,
	})
}
