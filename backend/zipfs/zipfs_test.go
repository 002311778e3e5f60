package zipfs_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/srerickson/eark"
	"github.com/srerickson/eark/backend/test"
	"github.com/srerickson/eark/backend/zipfs"
	"github.com/srerickson/eark/internal/testpkg"
)

func TestZipBackend(t *testing.T) {
	is := is.New(t)
	name := filepath.Join(t.TempDir(), "pkg.zip")
	is.NoErr(testpkg.WriteZip(name, test.Files.Prefix(test.PackageID)))
	is.True(zipfs.IsZip(name))
	bak, err := zipfs.Open(name)
	is.NoErr(err)
	defer bak.Close()
	is.Equal(bak.Name(), "zip")
	is.Equal(bak.PackageRoot(), test.PackageID)
	test.TestBackend(t, bak)
}

func TestRootResolveNeedsPackageID(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	data, err := testpkg.Zip(test.Files.Prefix(test.PackageID))
	is.NoErr(err)
	bak, err := zipfs.NewReader(bytes.NewReader(data), int64(len(data)))
	is.NoErr(err)
	root, err := bak.RootManifest(ctx)
	is.NoErr(err)
	_, err = bak.Resolve(root, "", "metadata/descriptive/dc.xml")
	is.True(errors.Is(err, eark.ErrNoPackageID))
	// the package id, not the archive's root folder, is used for root
	// references
	name, err := bak.Resolve(root, "other-id", "metadata/descriptive/dc.xml")
	is.NoErr(err)
	is.Equal(name, "other-id/metadata/descriptive/dc.xml")
	is.True(!bak.Exists(ctx, name))
}

func TestMultipleTopLevel(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	data, err := testpkg.Zip(testpkg.Files{
		"a/METS.xml": []byte("<mets/>"),
		"b/METS.xml": []byte("<mets/>"),
	})
	is.NoErr(err)
	bak, err := zipfs.NewReader(bytes.NewReader(data), int64(len(data)))
	is.NoErr(err)
	is.Equal(bak.PackageRoot(), "")
	_, err = bak.RootManifest(ctx)
	is.True(errors.Is(err, eark.ErrUnsupported))
	is.True(strings.Contains(err.Error(), "2 top-level entries (a, b)"))
	reps, err := bak.RepresentationManifests(ctx)
	is.NoErr(err)
	is.Equal(len(reps), 0)
}

func TestIsZip(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	name := filepath.Join(dir, "not.zip")
	is.NoErr(testpkg.WriteDir(dir, testpkg.Files{"not.zip": []byte("plain text")}))
	is.True(!zipfs.IsZip(name))
	is.True(!zipfs.IsZip(filepath.Join(dir, "missing.zip")))
}
