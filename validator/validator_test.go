package validator_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/matryer/is"
	"github.com/srerickson/eark/aip"
	"github.com/srerickson/eark/backend/zipfs"
	"github.com/srerickson/eark/csip"
	"github.com/srerickson/eark/internal/testpkg"
	"github.com/srerickson/eark/sip"
	"github.com/srerickson/eark/validation"
	"github.com/srerickson/eark/validator"
	"golang.org/x/exp/slices"
)

func zipPackage(t *testing.T, pkg testpkg.Package) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), pkg.ID+".zip")
	if err := testpkg.WriteZip(name, pkg.Files()); err != nil {
		t.Fatal(err)
	}
	return name
}

func validate(t *testing.T, name string, opts ...validator.Option) *validation.Report {
	t.Helper()
	report, err := validator.New(name, opts...).Validate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return report
}

func ids(from, to int, prefix string) []string {
	var out []string
	for i := from; i <= to; i++ {
		out = append(out, prefix+strconv.Itoa(i))
	}
	return out
}

func errorMessages(r *validation.Report) []string {
	var msgs []string
	for _, e := range r.Failures() {
		if e.Level == validation.Must {
			msgs = append(msgs, e.ID+": "+e.Message)
		}
	}
	return msgs
}

// a complete package with correct rights metadata has no errors
func TestValidPackage(t *testing.T) {
	is := is.New(t)
	pkg := testpkg.Package{ID: "pkg-a", Type: "SIP", Representations: []string{"rep1"}}
	report := validate(t, zipPackage(t, pkg))
	is.Equal(errorMessages(report), nil)
	is.True(report.Valid())
	is.Equal(report.PackageType(), "SIP")
	rightsChecksum, ok := report.Get(csip.CSIP56.ID)
	is.True(ok)
	is.True(rightsChecksum.Valid)
	is.True(!rightsChecksum.Skipped)
	csip0, ok := report.Get(csip.CSIP0.ID)
	is.True(ok)
	is.True(csip0.Valid)
}

func TestValidFolderPackage(t *testing.T) {
	is := is.New(t)
	pkg := testpkg.Package{ID: "pkg-folder", Type: "SIP", Representations: []string{"rep1", "rep2"}}
	dir := t.TempDir()
	is.NoErr(testpkg.WriteDir(dir, pkg.Files()))
	report := validate(t, filepath.Join(dir, pkg.ID))
	is.Equal(errorMessages(report), nil)
	// folder packages aren't compressed
	str3, _ := report.Get(csip.CSIPSTR3.ID)
	is.True(!str3.Valid)
	is.Equal(str3.Level, validation.May)
}

// an incorrect rights checksum is one error
func TestRightsChecksumMismatch(t *testing.T) {
	is := is.New(t)
	pkg := testpkg.Package{
		ID:              "pkg-b",
		Type:            "SIP",
		Representations: []string{"rep1"},
		RightsChecksum:  strings.Repeat("0", 64),
	}
	report := validate(t, zipPackage(t, pkg))
	e, ok := report.Get(csip.CSIP56.ID)
	is.True(ok)
	is.True(!e.Valid)
	is.Equal(len(e.Issues), 0)
	is.True(strings.Contains(e.Message, "root METS.xml"))
	is.True(report.Counts().Errors >= 1)
	is.Equal(errorMessages(report), []string{csip.CSIP56.ID + ": " + e.Message})
	is.True(!report.Valid())
}

// changing one byte of referenced content fails only the checksum rules
// for that content
func TestContentChanged(t *testing.T) {
	is := is.New(t)
	pkg := testpkg.Package{ID: "pkg-f", Type: "SIP", Representations: []string{"rep1"}}
	files := pkg.Files()
	for _, name := range []string{
		testpkg.DocumentationPath,
		testpkg.DescriptivePath,
		"representations/rep1/" + testpkg.PreservationPath,
	} {
		data := bytes.Clone(files["pkg-f/"+name])
		data[0] ^= 0x01
		files["pkg-f/"+name] = data
	}
	name := filepath.Join(t.TempDir(), "pkg-f.zip")
	is.NoErr(testpkg.WriteZip(name, files))
	report := validate(t, name)
	var failed []string
	for _, e := range report.Failures() {
		if e.Level == validation.Must {
			failed = append(failed, e.ID)
		}
	}
	slices.Sort(failed)
	is.Equal(failed, []string{csip.CSIP29.ID, csip.CSIP43.ID, csip.CSIP71.ID})
	e, _ := report.Get(csip.CSIP71.ID)
	is.True(strings.Contains(e.Message, `"documentation/readme.txt" in root METS.xml doesn't match`))
	e, _ = report.Get(csip.CSIP43.ID)
	is.True(strings.Contains(e.Message, "representation rep1 METS.xml"))
	e, _ = report.Get(csip.CSIP69.ID)
	is.True(e.Passed()) // sizes are unchanged
}

// without amdSec, all rules depending on it are skipped
func TestMissingAmdSec(t *testing.T) {
	is := is.New(t)
	pkg := testpkg.Package{ID: "pkg-c", Type: "SIP", Representations: []string{"rep1"}, NoAmdSec: true}
	report := validate(t, zipPackage(t, pkg))
	is.Equal(errorMessages(report), nil)
	for _, gate := range []validation.Code{csip.CSIP32, csip.CSIP45} {
		e, ok := report.Get(gate.ID)
		is.True(ok)
		is.True(e.Valid)
		is.True(!e.Skipped)
	}
	var dependent []string
	dependent = append(dependent, ids(33, 44, "CSIP")...)
	dependent = append(dependent, ids(46, 57, "CSIP")...)
	for _, id := range dependent {
		e, ok := report.Get(id)
		is.True(ok)      // rule is reported
		is.True(e.Valid) // skipped rules are valid
		is.True(e.Skipped)
	}
	e, _ := report.Get(csip.CSIP46.ID)
	is.True(strings.Contains(e.Message, "mets/amdSec/rightsMD doesn't exist"))
}

// a corrupt representation manifest doesn't prevent validation of the
// others
func TestCorruptRepresentation(t *testing.T) {
	is := is.New(t)
	pkg := testpkg.Package{
		ID:                     "pkg-d",
		Type:                   "SIP",
		Representations:        []string{"rep1", "rep2"},
		CorruptRepresentations: []string{"rep2"},
	}
	report := validate(t, zipPackage(t, pkg))
	csip0, ok := report.Get(csip.CSIP0.ID)
	is.True(ok)
	is.True(!csip0.Valid)
	is.True(strings.Contains(csip0.Message, "representation rep2 METS.xml is not well-formed"))
	is.True(strings.Contains(csip0.Message, "line "))
	is.Equal(len(csip0.Issues), 0)
	// rep1 has no descriptive metadata, which is reported as a warning
	dmdID, ok := report.Get(csip.CSIP75.ID)
	is.True(ok)
	is.True(!dmdID.Valid)
	is.True(strings.Contains(dmdID.Message, "representation rep1 METS.xml"))
	// root manifest rules ran
	is.True(report.Has(csip.CSIP112.ID))
	is.Equal(report.PackageType(), "SIP")
}

func TestCorruptRoot(t *testing.T) {
	is := is.New(t)
	pkg := testpkg.Package{ID: "pkg-e", Type: "SIP"}
	files := pkg.Files()
	files["pkg-e/METS.xml"] = testpkg.Corrupt(files["pkg-e/METS.xml"])
	name := filepath.Join(t.TempDir(), "pkg.zip")
	is.NoErr(testpkg.WriteZip(name, files))
	report := validate(t, name)
	csip0, _ := report.Get(csip.CSIP0.ID)
	is.True(!csip0.Valid)
	is.True(strings.HasPrefix(csip0.Message, "root METS.xml is not well-formed"))
	is.True(!report.Has(csip.CSIP1.ID))
	is.True(!report.Has(sip.SIP1.ID))
}

func TestExtensionDispatch(t *testing.T) {
	table := map[string]struct {
		sip bool
		aip bool
	}{
		"SIP": {sip: true},
		"AIP": {aip: true},
		"DIP": {},
	}
	for pkgType, expect := range table {
		t.Run(pkgType, func(t *testing.T) {
			is := is.New(t)
			pkg := testpkg.Package{ID: "pkg-" + strings.ToLower(pkgType), Type: pkgType, Representations: []string{"rep1"}}
			report := validate(t, zipPackage(t, pkg))
			is.Equal(report.PackageType(), pkgType)
			is.Equal(report.Has(sip.SIP1.ID), expect.sip)
			is.Equal(report.Has(sip.SIP31.ID), expect.sip)
			is.Equal(report.Has(aip.AIP1.ID), expect.aip)
			if expect.aip {
				e, _ := report.Get(aip.AIP1.ID)
				is.True(e.Valid && !e.Skipped)
			}
		})
	}
}

func TestStructureTerminal(t *testing.T) {
	is := is.New(t)
	// two top-level folders: no single root folder
	files := testpkg.Files{
		"one/METS.xml": []byte("<mets/>"),
		"two/METS.xml": []byte("<mets/>"),
	}
	name := filepath.Join(t.TempDir(), "pkg.zip")
	is.NoErr(testpkg.WriteZip(name, files))
	report := validate(t, name)
	str1, _ := report.Get(csip.CSIPSTR1.ID)
	is.True(!str1.Valid)
	csip0, _ := report.Get(csip.CSIP0.ID)
	is.True(!csip0.Valid)
	is.True(strings.Contains(csip0.Message, csip.CSIPSTR1.ID))
	is.True(!report.Has(csip.CSIP1.ID))
	str4, _ := report.Get(csip.CSIPSTR4.ID)
	is.True(str4.Skipped)
}

func TestUnsupportedFile(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	is.NoErr(testpkg.WriteDir(dir, testpkg.Files{"pkg.txt": []byte("not a package")}))
	report := validate(t, filepath.Join(dir, "pkg.txt"))
	csip0, ok := report.Get(csip.CSIP0.ID)
	is.True(ok)
	is.True(!csip0.Valid)
	is.Equal(report.Len(), 1)
}

func TestConcurrency(t *testing.T) {
	is := is.New(t)
	pkg := testpkg.Package{ID: "pkg-f", Type: "AIP", Representations: []string{"rep1", "rep2", "rep3", "rep4"}}
	name := zipPackage(t, pkg)
	serial := validate(t, name)
	concurrent := validate(t, name, validator.WithConcurrency(4))
	if diff := deep.Equal(serial.Counts(), concurrent.Counts()); diff != nil {
		t.Error(diff)
	}
	is.Equal(errorMessages(concurrent), nil)
}

func TestWithBackend(t *testing.T) {
	is := is.New(t)
	pkg := testpkg.Package{ID: "pkg-g", Type: "SIP", Representations: []string{"rep1"}}
	data, err := testpkg.Zip(pkg.Files())
	is.NoErr(err)
	bak, err := zipfs.NewReader(bytes.NewReader(data), int64(len(data)))
	is.NoErr(err)
	report := validate(t, "pkg-g.zip", validator.WithBackend(bak))
	is.Equal(errorMessages(report), nil)
}

func TestCanceled(t *testing.T) {
	is := is.New(t)
	pkg := testpkg.Package{ID: "pkg-h", Type: "SIP", Representations: []string{"rep1"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := validator.New(zipPackage(t, pkg)).Validate(ctx)
	is.True(errors.Is(err, context.Canceled))
	is.True(report != nil)
}

type recorder struct {
	started, finished int
	modules           map[string]bool
	counts            validation.Counts
}

func (r *recorder) ValidationStarted(string)  { r.started++ }
func (r *recorder) ValidationFinished(string) { r.finished++ }
func (r *recorder) ModuleStarted(m, _ string) { r.modules[m] = true }
func (r *recorder) ModuleFinished(string)     {}

func (r *recorder) Indicators(e, s, w, n, k int) {
	r.counts = validation.Counts{Errors: e, Successes: s, Warnings: w, Notes: n, Skipped: k}
}

func TestListeners(t *testing.T) {
	is := is.New(t)
	pkg := testpkg.Package{ID: "pkg-i", Type: "AIP", Representations: []string{"rep1"}}
	rec := &recorder{modules: map[string]bool{}}
	report := validate(t, zipPackage(t, pkg), validator.WithListeners(rec))
	is.Equal(rec.started, 1)
	is.Equal(rec.finished, 1)
	is.Equal(rec.counts, report.Counts())
	is.True(rec.modules["CSIP structure"])
	is.True(rec.modules["CSIP fileSec"])
	is.True(rec.modules["AIP fileSec"])
	is.True(!rec.modules["SIP metsHdr"])
}
