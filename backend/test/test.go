// Package test is a test suite for backend.Backend implementations.
package test

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path"
	"testing"

	"github.com/matryer/is"
	"github.com/srerickson/eark/backend"
	"github.com/srerickson/eark/digest"
	"github.com/srerickson/eark/internal/testpkg"
)

// PackageID is the package identifier (and root folder name) expected by
// TestBackend.
const PackageID = "pkg"

// Files is the package content backends under test must hold, relative to
// the package root.
var Files = testpkg.Files{
	"METS.xml":                              []byte("<mets/>"),
	"metadata/descriptive/dc.xml":           []byte("<dc/>"),
	"metadata/preservation/premis.xml":      []byte("<premis/>"),
	"metadata/other/rights file.txt":        []byte("hello world"),
	"representations/rep1/METS.xml":         []byte("<mets/>"),
	"representations/rep1/data/a.txt":       []byte("a"),
	"representations/rep1/metadata/md.xml":  []byte("md"),
	"representations/rep2/data/no-mets.txt": []byte("b"),
}

const helloSHA256 = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

// TestBackend is complete test suite for backend.Backend. bak must hold
// Files in a package root folder named PackageID (archives) or as the
// package directory itself (folders).
func TestBackend(t *testing.T, bak backend.Backend) {
	ctx := context.Background()
	t.Run("manifests", func(t *testing.T) { testManifests(ctx, t, bak) })
	t.Run("files", func(t *testing.T) { testFiles(ctx, t, bak) })
	t.Run("checksum", func(t *testing.T) { testChecksum(ctx, t, bak) })
	t.Run("metadata files", func(t *testing.T) { testMetadataFiles(ctx, t, bak) })
}

func testManifests(ctx context.Context, t *testing.T, bak backend.Backend) {
	is := is.New(t)
	root, err := bak.RootManifest(ctx)
	is.NoErr(err)
	is.True(root.Root)
	is.Equal(root.Path, path.Join(bak.PackageRoot(), "METS.xml"))
	f, err := root.Open(ctx, bak)
	is.NoErr(err)
	data, err := io.ReadAll(f)
	is.NoErr(err)
	is.NoErr(f.Close())
	is.Equal(string(data), "<mets/>")

	reps, err := bak.RepresentationManifests(ctx)
	is.NoErr(err)
	is.Equal(len(reps), 1) // rep2 has no METS.xml
	is.Equal(reps[0].Name, "rep1")
	is.True(!reps[0].Root)
	is.Equal(reps[0].Path, path.Join(bak.PackageRoot(), "representations/rep1/METS.xml"))

	// root references resolve to the same file in all backends
	name, err := bak.Resolve(root, PackageID, "metadata/descriptive/dc.xml")
	is.NoErr(err)
	is.Equal(name, path.Join(bak.PackageRoot(), "metadata/descriptive/dc.xml"))
	is.True(bak.Exists(ctx, name))
	name, err = bak.Resolve(reps[0], PackageID, "data/a.txt")
	is.NoErr(err)
	is.Equal(name, path.Join(bak.PackageRoot(), "representations/rep1/data/a.txt"))
	is.True(bak.Exists(ctx, name))
	_, err = bak.Resolve(reps[0], PackageID, "../../../../outside.txt")
	is.True(errors.Is(err, backend.ErrOutsideRoot))
}

func testFiles(ctx context.Context, t *testing.T, bak backend.Backend) {
	is := is.New(t)
	root := bak.PackageRoot()
	is.True(bak.Exists(ctx, path.Join(root, "metadata")))
	is.True(bak.IsDir(ctx, path.Join(root, "metadata")))
	is.True(!bak.IsDir(ctx, path.Join(root, "METS.xml")))
	is.True(!bak.Exists(ctx, path.Join(root, "missing.txt")))
	_, err := bak.Open(ctx, path.Join(root, "missing.txt"))
	is.True(errors.Is(err, fs.ErrNotExist))

	name := path.Join(root, "metadata/other/rights file.txt")
	size, err := bak.Size(ctx, name)
	is.NoErr(err)
	is.Equal(size, int64(11))
	ok, err := bak.VerifySize(ctx, name, 11)
	is.NoErr(err)
	is.True(ok)
	ok, err = bak.VerifySize(ctx, name, 12)
	is.NoErr(err)
	is.True(!ok)
	_, err = bak.Size(ctx, path.Join(root, "missing.txt"))
	is.True(errors.Is(err, fs.ErrNotExist))

	count, err := bak.CountFiles(ctx, path.Join(root, "representations"))
	is.NoErr(err)
	is.Equal(count, 4)
}

func testChecksum(ctx context.Context, t *testing.T, bak backend.Backend) {
	is := is.New(t)
	name := path.Join(bak.PackageRoot(), "metadata/other/rights file.txt")
	ok, err := bak.VerifyChecksum(ctx, name, "SHA-256", helloSHA256)
	is.NoErr(err)
	is.True(ok)
	ok, err = bak.VerifyChecksum(ctx, name, "sha-256", "B94D27B9934D3E08A52E52D7DA7DABFAC484EFE37A5380EE9088F7ACE2EFCDE9")
	is.NoErr(err)
	is.True(ok)
	ok, err = bak.VerifyChecksum(ctx, name, "SHA-256", "c"+helloSHA256[1:])
	is.NoErr(err)
	is.True(!ok)
	_, err = bak.VerifyChecksum(ctx, name, "CRC32", "abc")
	is.True(errors.Is(err, digest.ErrUnknownAlg))
	_, err = bak.VerifyChecksum(ctx, path.Join(bak.PackageRoot(), "missing"), "MD5", "abc")
	is.True(errors.Is(err, fs.ErrNotExist))
}

func testMetadataFiles(ctx context.Context, t *testing.T, bak backend.Backend) {
	is := is.New(t)
	root := bak.PackageRoot()
	files, err := bak.MetadataFiles(ctx, path.Join(root, "metadata"))
	is.NoErr(err)
	is.Equal(files, map[string]bool{
		path.Join(root, "metadata/descriptive/dc.xml"):      false,
		path.Join(root, "metadata/preservation/premis.xml"): false,
		path.Join(root, "metadata/other/rights file.txt"):   false,
	})
}
