package eark

import (
	"context"
	"io/fs"
	"os"
	"path"
)

// FS is the read-only storage a package is read from. Its methods take a
// context and OpenFile is only used for regular files.
type FS interface {
	OpenFile(ctx context.Context, name string) (fs.File, error)
	ReadDir(ctx context.Context, name string) ([]fs.DirEntry, error)
}

// StatFS is an FS that can describe a file without opening it.
type StatFS interface {
	FS
	Stat(ctx context.Context, name string) (fs.FileInfo, error)
}

// NewFS returns an FS for the io/fs.FS. It checks the context before each
// operation.
func NewFS(fsys fs.FS) StatFS { return ioFS{fsys: fsys} }

// DirFS returns an FS for the directory dir on the local filesystem.
func DirFS(dir string) StatFS { return NewFS(os.DirFS(dir)) }

type ioFS struct {
	fsys fs.FS
}

func ctxErr(ctx context.Context, op, name string) error {
	if err := ctx.Err(); err != nil {
		return &fs.PathError{Op: op, Path: name, Err: err}
	}
	return nil
}

func (f ioFS) OpenFile(ctx context.Context, name string) (fs.File, error) {
	if err := ctxErr(ctx, "open", name); err != nil {
		return nil, err
	}
	return f.fsys.Open(name)
}

func (f ioFS) ReadDir(ctx context.Context, name string) ([]fs.DirEntry, error) {
	if err := ctxErr(ctx, "readdir", name); err != nil {
		return nil, err
	}
	return fs.ReadDir(f.fsys, name)
}

func (f ioFS) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	if err := ctxErr(ctx, "stat", name); err != nil {
		return nil, err
	}
	return fs.Stat(f.fsys, name)
}

// Stat returns the fs.FileInfo for the file name. If fsys is not a StatFS,
// the file is opened to stat it.
func Stat(ctx context.Context, fsys FS, name string) (fs.FileInfo, error) {
	if sfs, ok := fsys.(StatFS); ok {
		return sfs.Stat(ctx, name)
	}
	f, err := fsys.OpenFile(ctx, name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Stat()
}

// EachFile calls walkFn for every regular file under root, descending into
// sub-directories. If a directory can't be read, walkFn is called with its
// name, a nil fs.DirEntry and the error.
func EachFile(ctx context.Context, fsys FS, root string, walkFn fs.WalkDirFunc) error {
	entries, err := fsys.ReadDir(ctx, root)
	if err != nil {
		return walkFn(root, nil, err)
	}
	for _, e := range entries {
		name := path.Join(root, e.Name())
		switch {
		case e.IsDir():
			err = EachFile(ctx, fsys, name, walkFn)
		case e.Type().IsRegular():
			err = walkFn(name, e, nil)
		default:
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
