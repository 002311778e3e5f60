package local_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/srerickson/eark/backend/local"
	"github.com/srerickson/eark/backend/test"
	"github.com/srerickson/eark/internal/testpkg"
)

func TestLocalBackend(t *testing.T) {
	is := is.New(t)
	dir := filepath.Join(t.TempDir(), test.PackageID)
	is.NoErr(testpkg.WriteDir(dir, test.Files))
	bak, err := local.Open(dir)
	is.NoErr(err)
	defer bak.Close()
	is.Equal(bak.Name(), "folder")
	is.Equal(bak.PackageRoot(), ".")
	test.TestBackend(t, bak)
}

func TestBucketBackend(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	fsys, err := testpkg.MemFS(ctx, test.Files.Prefix("prefix/"+test.PackageID))
	is.NoErr(err)
	defer fsys.Close()
	bak := local.New(fsys, "prefix/"+test.PackageID)
	is.Equal(bak.PackageRoot(), "prefix/"+test.PackageID)
	test.TestBackend(t, bak)
}

func TestOpenNotDir(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	is.NoErr(testpkg.WriteDir(dir, testpkg.Files{"file.zip": []byte("x")}))
	_, err := local.Open(filepath.Join(dir, "file.zip"))
	is.True(err != nil)
}
