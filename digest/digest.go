// Package digest provides the checksum algorithms allowed in METS
// CHECKSUMTYPE attributes and streaming validation of content against a
// declared digest.
package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"strings"
)

var (
	MD5    = Alg{id: `MD5`}
	SHA1   = Alg{id: `SHA-1`}
	SHA256 = Alg{id: `SHA-256`}
	SHA384 = Alg{id: `SHA-384`}
	SHA512 = Alg{id: `SHA-512`}

	// algs are keyed by upper-case id
	algs = map[string]Alg{
		`MD5`:     MD5,
		`SHA-1`:   SHA1,
		`SHA-256`: SHA256,
		`SHA-384`: SHA384,
		`SHA-512`: SHA512,
	}

	ErrUnknownAlg = errors.New("unsupported digest algorithm")
)

// Alg represents a supported digest algorithm (e.g., "SHA-256")
type Alg struct {
	id string
}

// NewAlg returns the Alg for name. Names are matched case-insensitively
// against the allow-list; anything else is an error wrapping ErrUnknownAlg.
func NewAlg(name string) (Alg, error) {
	alg, ok := algs[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Alg{}, fmt.Errorf(`%w: %q`, ErrUnknownAlg, name)
	}
	return alg, nil
}

// Algs returns all supported algorithms.
func Algs() []Alg {
	return []Alg{MD5, SHA1, SHA256, SHA384, SHA512}
}

// New returns a new hash.Hash for the algorithm. It panics for the zero
// value.
func (a Alg) New() hash.Hash {
	switch a.id {
	case `MD5`:
		return md5.New()
	case `SHA-1`:
		return sha1.New()
	case `SHA-256`:
		return sha256.New()
	case `SHA-384`:
		return sha512.New384()
	case `SHA-512`:
		return sha512.New()
	}
	panic(fmt.Errorf("%w: '%s'", ErrUnknownAlg, a.id))
}

func (a Alg) ID() string {
	return a.String()
}

func (a Alg) String() string {
	if _, exists := algs[a.id]; !exists {
		return ""
	}
	return a.id
}

func (a *Alg) UnmarshalText(t []byte) error {
	alg, err := NewAlg(string(t))
	if err != nil {
		return err
	}
	a.id = alg.id
	return nil
}

func (a Alg) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Sum reads r to the end and returns its hex-encoded digest.
func (a Alg) Sum(r io.Reader) (string, error) {
	h := a.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Validate reads r to the end and returns a *DigestError if its digest
// doesn't match expected. Digests are compared case-insensitively.
func Validate(r io.Reader, alg Alg, expected string) error {
	got, err := alg.Sum(r)
	if err != nil {
		return err
	}
	if !strings.EqualFold(got, strings.TrimSpace(expected)) {
		return &DigestError{Alg: alg.ID(), Got: got, Expected: expected}
	}
	return nil
}

// DigestError is returned when content's digest conflicts with an expected
// value
type DigestError struct {
	Path     string // Content path
	Alg      string // Digest algorithm
	Got      string // Calculated digest
	Expected string // Expected digest
}

func (e DigestError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unexpected %s value: %q, expected=%q", e.Alg, e.Got, e.Expected)
	}
	return fmt.Sprintf("unexpected %s for %q: %q, expected=%q", e.Alg, e.Path, e.Got, e.Expected)
}
