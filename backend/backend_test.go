package backend_test

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/srerickson/eark/backend"
)

func TestDecodeHref(t *testing.T) {
	is := is.New(t)
	is.Equal(backend.DecodeHref("metadata/rights%20file.txt"), "metadata/rights file.txt")
	is.Equal(backend.DecodeHref("data/caf%C3%A9.txt"), "data/café.txt")
	is.Equal(backend.DecodeHref("a+b.txt"), "a+b.txt")
	// invalid escapes are kept as is
	is.Equal(backend.DecodeHref("100%.txt"), "100%.txt")
}

func TestJoinHref(t *testing.T) {
	is := is.New(t)
	name, err := backend.JoinHref(".", "metadata/dc.xml")
	is.NoErr(err)
	is.Equal(name, "metadata/dc.xml")
	name, err = backend.JoinHref("pkg/representations/r1", "./data/a.txt")
	is.NoErr(err)
	is.Equal(name, "pkg/representations/r1/data/a.txt")
	name, err = backend.JoinHref("pkg", "file://metadata/dc.xml")
	is.NoErr(err)
	is.Equal(name, "pkg/metadata/dc.xml")
	_, err = backend.JoinHref("pkg", "../../etc/passwd")
	is.True(errors.Is(err, backend.ErrOutsideRoot))
	_, err = backend.JoinHref("pkg", "/etc/passwd")
	is.True(errors.Is(err, backend.ErrOutsideRoot))
	_, err = backend.JoinHref("pkg", "")
	is.True(err != nil)
}
