package digest_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/srerickson/eark/digest"
)

// digests of "hello world"
var helloDigests = map[digest.Alg]string{
	digest.MD5:    "5eb63bbbe01eeed093cb22bb8f5acdc3",
	digest.SHA1:   "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed",
	digest.SHA256: "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
	digest.SHA384: "fdbd8e75a67f29f701a4e040385e2e23986303ea10239211af907fcbb83578b3e417cb71ce646efd0819dd8c088de1bd",
	digest.SHA512: "309ecc489c12d6eb4cc40f50c902f2b4d0ed77ee511a7c7a9bcd3ca86d4cd86f989dd35bc5ff499670da34255b45b0cfd830e81f605dcf7dc5542e93ae9cd76f",
}

func TestNewAlg(t *testing.T) {
	is := is.New(t)
	for _, name := range []string{"md5", "MD5", "sha-1", "SHA-256", "Sha-384", "sha-512"} {
		alg, err := digest.NewAlg(name)
		is.NoErr(err)
		is.Equal(alg.ID(), strings.ToUpper(name))
	}
	for _, name := range []string{"", "sha256", "CRC32", "Adler-32", "blake2b-512"} {
		_, err := digest.NewAlg(name)
		is.True(errors.Is(err, digest.ErrUnknownAlg))
	}
}

func TestValidate(t *testing.T) {
	for alg, sum := range helloDigests {
		t.Run(alg.ID(), func(t *testing.T) {
			is := is.New(t)
			is.NoErr(digest.Validate(strings.NewReader("hello world"), alg, sum))
			// case-insensitive comparison
			is.NoErr(digest.Validate(strings.NewReader("hello world"), alg, strings.ToUpper(sum)))
			// one flipped byte
			err := digest.Validate(strings.NewReader("hello worle"), alg, sum)
			var digestErr *digest.DigestError
			is.True(errors.As(err, &digestErr))
			is.Equal(digestErr.Expected, sum)
		})
	}
}

func TestAlgText(t *testing.T) {
	is := is.New(t)
	var alg digest.Alg
	is.NoErr(alg.UnmarshalText([]byte("sha-256")))
	is.Equal(alg, digest.SHA256)
	b, err := alg.MarshalText()
	is.NoErr(err)
	is.Equal(string(b), "SHA-256")
	is.True(alg.UnmarshalText([]byte("whirlpool")) != nil)
	is.Equal(digest.Alg{}.String(), "")
}
