// Package zipfs provides a backend.Backend for information packages stored
// as ZIP archives.
package zipfs

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/srerickson/eark"
	"github.com/srerickson/eark/backend"
)

// Backend reads a package from a ZIP archive. The archive should unpack to a
// single top-level folder; references in the root manifest are resolved
// against the package identifier (mets/@OBJID).
type Backend struct {
	backend.Base
	closer io.Closer
	// top-level entries in the archive
	tops []string
}

var _ backend.Backend = (*Backend)(nil)

// Open opens the ZIP archive at name.
func Open(name string) (*Backend, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("opening zip archive: %w", err)
	}
	b := New(&zr.Reader)
	b.closer = zr
	return b, nil
}

// NewReader returns a Backend for the archive in r.
func NewReader(r io.ReaderAt, size int64) (*Backend, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("reading zip archive: %w", err)
	}
	return New(zr), nil
}

// New returns a Backend for zr.
func New(zr *zip.Reader) *Backend {
	tops, dirs := topLevel(zr)
	root := ""
	if len(tops) == 1 && dirs[tops[0]] {
		root = tops[0]
	}
	return &Backend{
		Base: backend.Base{
			FS:   eark.NewFS(zr),
			Root: root,
		},
		tops: tops,
	}
}

// IsZip reports whether the file at name starts with a ZIP local file
// header signature.
func IsZip(name string) bool {
	f, err := os.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	sig := make([]byte, 4)
	if _, err := io.ReadFull(f, sig); err != nil {
		return false
	}
	return string(sig) == "PK\x03\x04"
}

func (b *Backend) Name() string { return "zip" }

func (b *Backend) Close() error {
	if b.closer != nil {
		return b.closer.Close()
	}
	return nil
}

func (b *Backend) RootManifest(ctx context.Context) (backend.Manifest, error) {
	if b.Root == "" {
		return backend.Manifest{}, fmt.Errorf("archive has %d top-level entries (%s): %w",
			len(b.tops), strings.Join(b.tops, ", "), eark.ErrUnsupported)
	}
	return b.Base.RootManifest(ctx)
}

func (b *Backend) RepresentationManifests(ctx context.Context) ([]backend.Manifest, error) {
	if b.Root == "" {
		return nil, nil
	}
	return b.Base.RepresentationManifests(ctx)
}

// Resolve resolves href from the root manifest against the package
// identifier, and from a representation manifest against the
// representation folder.
func (b *Backend) Resolve(m backend.Manifest, packageID string, href string) (string, error) {
	if m.Root {
		if packageID == "" {
			return "", eark.ErrNoPackageID
		}
		return backend.JoinHref(packageID, href)
	}
	return backend.JoinHref(m.Prefix, href)
}

// topLevel returns the archive's top-level names and which of them are
// folders.
func topLevel(zr *zip.Reader) ([]string, map[string]bool) {
	dirs := map[string]bool{}
	seen := map[string]bool{}
	var tops []string
	for _, f := range zr.File {
		name := strings.TrimPrefix(f.Name, "./")
		first, _, isDir := strings.Cut(name, "/")
		if first == "" {
			continue
		}
		if isDir {
			dirs[first] = true
		}
		if seen[first] {
			continue
		}
		seen[first] = true
		tops = append(tops, first)
	}
	return tops, dirs
}
