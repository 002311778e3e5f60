package csip

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/srerickson/eark"
	"github.com/srerickson/eark/backend"
	"github.com/srerickson/eark/digest"
	"github.com/srerickson/eark/validation"
)

// xs:dateTime layouts, with and without timezone
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z0700",
}

// IsDateTime returns true if val is a valid xs:dateTime.
func IsDateTime(val string) bool {
	val = strings.TrimSpace(val)
	for _, layout := range dateTimeLayouts {
		if _, err := time.Parse(layout, val); err == nil {
			return true
		}
	}
	return false
}

// Failures collects failure messages for a rule that inspects many
// elements. The first message becomes the outcome's message and the rest
// its issues.
type Failures []string

func (f *Failures) Add(format string, args ...any) {
	*f = append(*f, fmt.Sprintf(format, args...))
}

func (f *Failures) AddMsg(msg string) {
	*f = append(*f, msg)
}

func (f Failures) Outcome() validation.Outcome {
	if len(f) == 0 {
		return validation.Pass()
	}
	return validation.Outcome{Message: f[0], Issues: append([]string(nil), f[1:]...)}
}

// checkID registers each id in the package registry and fails on the first
// missing or duplicate id.
func checkID(s *State, elem string, ids []string) validation.Outcome {
	for _, id := range ids {
		if id == "" {
			return validation.Fail("%s/@ID is missing in %s", elem, Here)
		}
		if s.IDs.Register(id) {
			return validation.Fail("%s/@ID %q in %s is not unique in the package", elem, id, Here)
		}
	}
	return validation.Pass()
}

// checkStatus checks optional STATUS values.
func checkStatus(s *State, elem string, statuses []string) validation.Outcome {
	var fails Failures
	for _, st := range statuses {
		if st == "" {
			fails.Add("%s/@STATUS is missing in %s", elem, Here)
			continue
		}
		if !s.Vocab.Statuses.Contains(st) {
			fails.Add("%s/@STATUS value %q in %s is not CURRENT or SUPERSEDED", elem, st, Here)
		}
	}
	return fails.Outcome()
}

// resolveFailure describes an error returned by State.Resolve.
func resolveFailure(elem, href string, err error) string {
	switch {
	case errors.Is(err, eark.ErrNoPackageID):
		return fmt.Sprintf("%s %q in %s can't be resolved because mets/@OBJID is missing", elem, href, Here)
	case errors.Is(err, backend.ErrOutsideRoot):
		return fmt.Sprintf("%s %q in %s points outside the package", elem, href, Here)
	default:
		return fmt.Sprintf("%s %q in %s is not a valid reference: %v", elem, href, Here, err)
	}
}

// checkHref checks that href resolves to an existing file.
func checkHref(ctx context.Context, s *State, elem, href string, fails *Failures) {
	if href == "" {
		fails.Add("%s/@xlink:href is missing in %s", elem, Here)
		return
	}
	name, err := s.Resolve(href)
	if err != nil {
		fails.AddMsg(resolveFailure(elem+"/@xlink:href", href, err))
		return
	}
	if !s.Backend.Exists(ctx, name) {
		fails.Add("file %q referenced by %s/@xlink:href in %s doesn't exist", href, elem, Here)
	}
}

// checkSize checks a declared SIZE against the referenced file.
func checkSize(ctx context.Context, s *State, elem, href, size string, fails *Failures) {
	if size == "" {
		fails.Add("%s/@SIZE is missing in %s", elem, Here)
		return
	}
	declared, err := strconv.ParseInt(strings.TrimSpace(size), 10, 64)
	if err != nil || declared < 0 {
		fails.Add("%s/@SIZE value %q in %s is not a valid size", elem, size, Here)
		return
	}
	name, err := s.Resolve(href)
	if err != nil {
		fails.Add("can't verify the size of file %q in %s: %s", href, Here, resolveFailure(elem+"/@xlink:href", href, err))
		return
	}
	ok, err := s.Backend.VerifySize(ctx, name, declared)
	if err != nil {
		fails.Add("can't verify the size of file %q in %s: %v", href, Here, err)
		return
	}
	if !ok {
		actual, _ := s.Backend.Size(ctx, name)
		fails.Add("%s/@SIZE of file %q in %s is %d but the file has %d bytes", elem, href, Here, declared, actual)
	}
}

// checkChecksum verifies the declared checksum of the referenced file.
func checkChecksum(ctx context.Context, s *State, elem, href, checksum, checksumType string, fails *Failures) {
	checksum = strings.TrimSpace(checksum)
	if checksum == "" {
		fails.Add("%s/@CHECKSUM is missing in %s", elem, Here)
		return
	}
	if _, err := hex.DecodeString(checksum); err != nil {
		fails.Add("%s/@CHECKSUM value %q in %s is not a hexadecimal value", elem, checksum, Here)
		return
	}
	if checksumType == "" {
		fails.Add("can't verify checksum of file %q in %s: %s/@CHECKSUMTYPE is missing", href, Here, elem)
		return
	}
	name, err := s.Resolve(href)
	if err != nil {
		fails.Add("Can't calculate checksum of file %q: %s", href, resolveFailure(elem+"/@xlink:href", href, err))
		return
	}
	ok, err := s.Backend.VerifyChecksum(ctx, name, checksumType, checksum)
	switch {
	case errors.Is(err, digest.ErrUnknownAlg):
		fails.Add("Can't calculate checksum of file %q in %s: unsupported checksum type %q", href, Here, checksumType)
	case errors.Is(err, fs.ErrNotExist):
		fails.Add("Can't calculate checksum of file %q in %s: the file doesn't exist", href, Here)
	case err != nil:
		fails.Add("Can't calculate checksum of file %q in %s: %v", href, Here, err)
	case !ok:
		fails.Add("%s/@CHECKSUM of file %q in %s doesn't match the %s of the file", elem, href, Here, checksumType)
	}
}

// checkChecksumType checks CHECKSUMTYPE against the METS enumeration.
func checkChecksumType(s *State, elem, checksumType string, fails *Failures) {
	if checksumType == "" {
		fails.Add("%s/@CHECKSUMTYPE is missing in %s", elem, Here)
		return
	}
	if !s.Vocab.ChecksumTypes.Contains(checksumType) {
		fails.Add("%s/@CHECKSUMTYPE value %q in %s is not in the METS enumeration", elem, checksumType, Here)
	}
}

// checkMIMEType checks MIMETYPE against the IANA registry.
func checkMIMEType(s *State, elem, mimeType string, fails *Failures) {
	if mimeType == "" {
		fails.Add("%s/@MIMETYPE is missing in %s", elem, Here)
		return
	}
	if !s.Vocab.IsMediaType(mimeType) {
		fails.Add("%s/@MIMETYPE value %q in %s is not a registered IANA media type", elem, mimeType, Here)
	}
}

// checkCreated checks a mandatory xs:dateTime attribute.
func checkCreated(elem, attr, val string, fails *Failures) {
	if val == "" {
		fails.Add("%s/@%s is missing in %s", elem, attr, Here)
		return
	}
	if !IsDateTime(val) {
		fails.Add("%s/@%s value %q in %s is not a valid date and time", elem, attr, val, Here)
	}
}

// checkLocType checks that LOCTYPE is a METS location type and is URL.
func checkLocType(s *State, elem, locType string, fails *Failures) {
	switch {
	case locType == "":
		fails.Add("%s/@LOCTYPE is missing in %s", elem, Here)
	case !s.Vocab.LocTypes.Contains(locType):
		fails.Add("%s/@LOCTYPE value %q in %s is not in the vocabulary", elem, locType, Here)
	case locType != "URL":
		fails.Add("%s/@LOCTYPE value %q in %s must be URL", elem, locType, Here)
	}
}

// checkXLinkType checks mined xlink:type values for the keys.
func checkXLinkType(elem string, mined map[string]string, keys []string, fails *Failures) {
	for _, key := range keys {
		val, ok := mined[key]
		switch {
		case !ok:
			fails.Add("%s/@xlink:type is missing in %s (%s)", elem, Here, key)
		case val != "simple":
			fails.Add("%s/@xlink:type value %q in %s must be simple (%s)", elem, val, Here, key)
		}
	}
}

// idSet returns the set of ids.
func idSet(ids ...string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
