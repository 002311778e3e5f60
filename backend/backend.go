// Package backend defines the storage abstraction used by validation rules.
// Rules see a package only through the Backend interface, so they never
// branch on whether the package is an archive, a local directory or a
// bucket prefix.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strings"

	"github.com/srerickson/eark"
	"github.com/srerickson/eark/digest"
)

// Backend provides read access to the bytes of one information package.
// Names are backend paths: slash separated and relative to the backend's
// FS, as produced by Resolve.
type Backend interface {
	// Name is a short label for the backend type ("zip", "folder").
	Name() string
	Exists(ctx context.Context, name string) bool
	IsDir(ctx context.Context, name string) bool
	// Open returns a reader for the named file. The error wraps
	// fs.ErrNotExist if the file doesn't exist.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Size(ctx context.Context, name string) (int64, error)
	VerifySize(ctx context.Context, name string, declared int64) (bool, error)
	// VerifyChecksum streams name through the algorithm and compares the
	// result with expected. Unsupported algorithms return an error wrapping
	// digest.ErrUnknownAlg.
	VerifyChecksum(ctx context.Context, name string, alg string, expected string) (bool, error)
	// CountFiles returns the number of regular files under dir.
	CountFiles(ctx context.Context, dir string) (int, error)
	// MetadataFiles returns all regular files under dir, each mapped to
	// false ("not yet referenced").
	MetadataFiles(ctx context.Context, dir string) (map[string]bool, error)
	RootManifest(ctx context.Context) (Manifest, error)
	RepresentationManifests(ctx context.Context) ([]Manifest, error)
	// Resolve returns the backend path for href, which must already be
	// percent-decoded, as referenced from the manifest m.
	Resolve(m Manifest, packageID string, href string) (string, error)
	// PackageRoot is the backend path of the package root folder.
	PackageRoot() string
	ReadDir(ctx context.Context, name string) ([]fs.DirEntry, error)
	Close() error
}

// Manifest locates one METS document in a package.
type Manifest struct {
	// Path is the backend path of the METS file.
	Path string
	// Prefix is the directory hrefs in the manifest are resolved against.
	Prefix string
	// Root is true for the package's root manifest.
	Root bool
	// Name is used in messages: the package root folder name for the root
	// manifest or the representation folder name.
	Name string
}

// Open opens the manifest file from b.
func (m Manifest) Open(ctx context.Context, b Backend) (io.ReadCloser, error) {
	return b.Open(ctx, m.Path)
}

var ErrOutsideRoot = errors.New("reference resolves outside the package")

// DecodeHref percent-decodes an href value. Values that are not valid
// percent-encodings are returned unchanged.
func DecodeHref(href string) string {
	decoded, err := url.PathUnescape(href)
	if err != nil {
		return href
	}
	return decoded
}

// JoinHref joins a manifest prefix and a decoded href, returning an error if
// the result is not a valid path within the backend.
func JoinHref(prefix, href string) (string, error) {
	if href == "" {
		return "", fmt.Errorf("empty reference: %w", fs.ErrInvalid)
	}
	href = strings.TrimPrefix(href, "file://")
	if strings.HasPrefix(href, "/") {
		return "", fmt.Errorf("%q: %w", href, ErrOutsideRoot)
	}
	name := path.Join(prefix, href)
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("%q: %w", href, ErrOutsideRoot)
	}
	return name, nil
}

// Base implements Backend over an eark.FS for packages whose root folder is
// Root. Resolve joins hrefs with the manifest's prefix.
type Base struct {
	FS   eark.FS
	Root string
	// RootName is the display name of the package root; defaults to the
	// base name of Root.
	RootName string
}

var _ Backend = (*Base)(nil)

func (b *Base) Name() string { return "fs" }

func (b *Base) PackageRoot() string { return b.Root }

func (b *Base) rootName() string {
	if b.RootName != "" {
		return b.RootName
	}
	return path.Base(b.Root)
}

func (b *Base) Close() error {
	if closer, ok := b.FS.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (b *Base) Exists(ctx context.Context, name string) bool {
	if !fs.ValidPath(name) {
		return false
	}
	if _, err := eark.Stat(ctx, b.FS, name); err == nil {
		return true
	}
	return b.IsDir(ctx, name)
}

func (b *Base) IsDir(ctx context.Context, name string) bool {
	if !fs.ValidPath(name) {
		return false
	}
	entries, err := b.FS.ReadDir(ctx, name)
	if err != nil {
		return false
	}
	// some FS implementations (buckets) can't tell an empty directory from
	// a missing one.
	return len(entries) > 0 || name == "." || b.isEmptyDir(ctx, name)
}

func (b *Base) isEmptyDir(ctx context.Context, name string) bool {
	info, err := eark.Stat(ctx, b.FS, name)
	return err == nil && info.IsDir()
}

func (b *Base) ReadDir(ctx context.Context, name string) ([]fs.DirEntry, error) {
	return b.FS.ReadDir(ctx, name)
}

func (b *Base) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := b.FS.OpenFile(ctx, name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, &fs.PathError{Op: "open", Path: name, Err: fmt.Errorf("is a directory: %w", fs.ErrInvalid)}
	}
	return f, nil
}

func (b *Base) Size(ctx context.Context, name string) (int64, error) {
	info, err := eark.Stat(ctx, b.FS, name)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (b *Base) VerifySize(ctx context.Context, name string, declared int64) (bool, error) {
	size, err := b.Size(ctx, name)
	if err != nil {
		return false, err
	}
	return size == declared, nil
}

func (b *Base) VerifyChecksum(ctx context.Context, name string, alg string, expected string) (bool, error) {
	return VerifyChecksum(ctx, b, name, alg, expected)
}

func (b *Base) CountFiles(ctx context.Context, dir string) (int, error) {
	count := 0
	err := eark.EachFile(ctx, b.FS, dir, func(name string, _ fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (b *Base) MetadataFiles(ctx context.Context, dir string) (map[string]bool, error) {
	files := map[string]bool{}
	err := eark.EachFile(ctx, b.FS, dir, func(name string, _ fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		files[name] = false
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (b *Base) RootManifest(ctx context.Context) (Manifest, error) {
	name := path.Join(b.Root, eark.METSFile)
	if !b.Exists(ctx, name) {
		return Manifest{}, fmt.Errorf("root manifest %q: %w", name, eark.ErrNotFound)
	}
	return Manifest{
		Path:   name,
		Prefix: b.Root,
		Root:   true,
		Name:   b.rootName(),
	}, nil
}

func (b *Base) RepresentationManifests(ctx context.Context) ([]Manifest, error) {
	repsDir := path.Join(b.Root, eark.RepresentationsDir)
	entries, err := b.FS.ReadDir(ctx, repsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var manifests []Manifest
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := path.Join(repsDir, e.Name())
		name := path.Join(dir, eark.METSFile)
		if !b.Exists(ctx, name) {
			continue
		}
		manifests = append(manifests, Manifest{
			Path:   name,
			Prefix: dir,
			Name:   e.Name(),
		})
	}
	return manifests, nil
}

func (b *Base) Resolve(m Manifest, _ string, href string) (string, error) {
	return JoinHref(m.Prefix, href)
}

// VerifyChecksum is a helper for Backend implementations: it opens name
// from b and validates its digest. A mismatch is reported as false with a
// nil error.
func VerifyChecksum(ctx context.Context, b Backend, name string, alg string, expected string) (bool, error) {
	digestAlg, err := digest.NewAlg(alg)
	if err != nil {
		return false, err
	}
	f, err := b.Open(ctx, name)
	if err != nil {
		return false, err
	}
	defer f.Close()
	err = digest.Validate(f, digestAlg, expected)
	if err != nil {
		var digestErr *digest.DigestError
		if errors.As(err, &digestErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
