// Package testpkg builds information package fixtures for tests: folder
// trees, ZIP archives and in-memory buckets.
package testpkg

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/srerickson/eark/backend/cloud"
	"github.com/srerickson/eark/logging"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Files maps slash-separated names to file contents.
type Files map[string][]byte

// Prefix returns a copy of files with all names under dir.
func (files Files) Prefix(dir string) Files {
	out := make(Files, len(files))
	for name, data := range files {
		out[path.Join(dir, name)] = data
	}
	return out
}

// Names returns the sorted file names.
func (files Files) Names() []string {
	names := maps.Keys(files)
	slices.Sort(names)
	return names
}

// WriteDir writes files to the local directory dir.
func WriteDir(dir string, files Files) error {
	for _, name := range files.Names() {
		full := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(full, files[name], 0644); err != nil {
			return err
		}
	}
	return nil
}

// Zip returns a ZIP archive of files.
func Zip(files Files) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, name := range files.Names() {
		w, err := zw.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteZip writes a ZIP archive of files to name.
func WriteZip(name string, files Files) error {
	data, err := Zip(files)
	if err != nil {
		return err
	}
	return os.WriteFile(name, data, 0644)
}

// MemBucket returns an in-memory bucket holding files.
func MemBucket(ctx context.Context, files Files) (*blob.Bucket, error) {
	bucket := memblob.OpenBucket(nil)
	for name, data := range files {
		if err := bucket.WriteAll(ctx, name, data, nil); err != nil {
			bucket.Close()
			return nil, err
		}
	}
	return bucket, nil
}

// MemFS returns an in-memory bucket holding files as a cloud.FS
func MemFS(ctx context.Context, files Files) (*cloud.FS, error) {
	bucket, err := MemBucket(ctx, files)
	if err != nil {
		return nil, err
	}
	return cloud.NewFS(bucket, cloud.WithLogger(logging.DefaultLogger())), nil
}
