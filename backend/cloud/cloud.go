// Package cloud exposes a gocloud.dev/blob bucket as a read-only eark.FS so
// that packages stored in S3, Azure or other buckets can be validated.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/go-logr/logr"
	"github.com/srerickson/eark"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// listPageSize is the number of keys requested per bucket listing.
const listPageSize = 1000

// FS reads packages from a blob.Bucket. Keys are treated as slash-separated
// paths; a "directory" exists if some key has it as a prefix.
type FS struct {
	*blob.Bucket
	log        logr.Logger
	readerOpts *blob.ReaderOptions
}

var _ eark.StatFS = (*FS)(nil)

type fsOption func(*FS)

func NewFS(b *blob.Bucket, opts ...fsOption) *FS {
	fsys := &FS{
		Bucket: b,
		log:    logr.Discard(),
	}
	for _, opt := range opts {
		opt(fsys)
	}
	return fsys
}

func WithLogger(l logr.Logger) fsOption {
	return func(fsys *FS) {
		fsys.log = l
	}
}

func WithReaderOptions(opts *blob.ReaderOptions) fsOption {
	return func(fsys *FS) {
		fsys.readerOpts = opts
	}
}

func pathErr(op, name string, err error) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		err = fmt.Errorf("%w: %s", fs.ErrNotExist, err.Error())
	}
	return &fs.PathError{Op: op, Path: name, Err: err}
}

// validKey returns an error if name can't be a bucket key.
func validKey(op, name string) error {
	if !fs.ValidPath(name) || name == "." {
		return &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	return nil
}

func (fsys *FS) OpenFile(ctx context.Context, name string) (fs.File, error) {
	fsys.log.V(eark.LevelDebug).Info("open file", "name", name)
	if err := validKey("open", name); err != nil {
		return nil, err
	}
	reader, err := fsys.Bucket.NewReader(ctx, name, fsys.readerOpts)
	if err != nil {
		return nil, pathErr("open", name, err)
	}
	info := &entry{name: path.Base(name), size: reader.Size(), modTime: reader.ModTime()}
	return &file{ReadCloser: reader, info: info}, nil
}

// Stat returns the key's attributes without reading it. Prefixes with
// keys under them are reported as directories.
func (fsys *FS) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	if err := validKey("stat", name); err != nil {
		return nil, err
	}
	attrs, err := fsys.Bucket.Attributes(ctx, name)
	if err == nil {
		return &entry{name: path.Base(name), size: attrs.Size, modTime: attrs.ModTime}, nil
	}
	if gcerrors.Code(err) != gcerrors.NotFound {
		return nil, pathErr("stat", name, err)
	}
	if entries, _ := fsys.list(ctx, name+"/", 1); len(entries) > 0 {
		return &entry{name: path.Base(name), mode: fs.ModeDir}, nil
	}
	return nil, pathErr("stat", name, err)
}

func (fsys *FS) ReadDir(ctx context.Context, name string) ([]fs.DirEntry, error) {
	fsys.log.V(eark.LevelDebug).Info("read dir", "name", name)
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	prefix := ""
	if name != "." {
		prefix = name + "/"
	}
	entries, err := fsys.list(ctx, prefix, 0)
	if err != nil {
		return nil, pathErr("readdir", name, err)
	}
	// an empty listing means the directory doesn't exist, except at the top
	// level.
	if len(entries) == 0 && name != "." {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	return entries, nil
}

// list returns the entries directly under prefix. If max > 0, listing
// stops once max entries are found.
func (fsys *FS) list(ctx context.Context, prefix string, max int) ([]fs.DirEntry, error) {
	opts := &blob.ListOptions{Prefix: prefix, Delimiter: "/"}
	token := blob.FirstPageToken
	var entries []fs.DirEntry
	for len(token) > 0 {
		page, next, err := fsys.Bucket.ListPage(ctx, token, listPageSize, opts)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		for _, item := range page {
			e := &entry{name: path.Base(item.Key), size: item.Size, modTime: item.ModTime}
			if item.IsDir {
				e.mode = fs.ModeDir
			}
			entries = append(entries, e)
		}
		if err != nil || (max > 0 && len(entries) >= max) {
			break
		}
		token = next
	}
	return entries, nil
}

type file struct {
	io.ReadCloser
	info *entry
}

func (f file) Stat() (fs.FileInfo, error) { return f.info, nil }

// entry is both an fs.FileInfo and an fs.DirEntry
type entry struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (e *entry) Name() string               { return e.name }
func (e *entry) Size() int64                { return e.size }
func (e *entry) Mode() fs.FileMode          { return e.mode }
func (e *entry) ModTime() time.Time         { return e.modTime }
func (e *entry) IsDir() bool                { return e.mode.IsDir() }
func (e *entry) Sys() any                   { return nil }
func (e *entry) Type() fs.FileMode          { return e.mode.Type() }
func (e *entry) Info() (fs.FileInfo, error) { return e, nil }
