package csip_test

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/srerickson/eark/backend"
	"github.com/srerickson/eark/backend/zipfs"
	"github.com/srerickson/eark/csip"
	"github.com/srerickson/eark/internal/testpkg"
	"github.com/srerickson/eark/validation"
	"github.com/srerickson/eark/vocabulary"
)

func openZip(t *testing.T, files testpkg.Files) *zipfs.Backend {
	t.Helper()
	data, err := testpkg.Zip(files)
	if err != nil {
		t.Fatal(err)
	}
	b, err := zipfs.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// runRoot evaluates the METS modules against the package's root manifest.
func runRoot(t *testing.T, pkg testpkg.Package, ids *csip.IDRegistry) *validation.Report {
	t.Helper()
	ctx := context.Background()
	s, err := testpkg.RootState(ctx, pkg.Files(), ids)
	if err != nil {
		t.Fatal(err)
	}
	return testpkg.Run(ctx, s)
}

func mustFailures(r *validation.Report) []string {
	var fails []string
	for _, e := range r.Failures() {
		if e.Level == validation.Must {
			fails = append(fails, e.ID+": "+e.Message)
		}
	}
	return fails
}

func TestMetsModules(t *testing.T) {
	is := is.New(t)
	pkg := testpkg.Package{ID: "pkg-1", Type: "SIP", Representations: []string{"rep1"}}
	report := runRoot(t, pkg, nil)
	is.Equal(mustFailures(report), nil)
	for _, mod := range csip.MetsModules() {
		for _, id := range mod.IDs() {
			is.True(report.Has(id)) // every rule is reported
		}
	}
	e, _ := report.Get(csip.CSIP56.ID)
	is.True(e.Passed())
	e, _ = report.Get(csip.CSIP112.ID)
	is.True(e.Passed())
}

func TestDuplicateID(t *testing.T) {
	is := is.New(t)
	ids := csip.NewIDRegistry()
	ids.Register("root-dmd")
	pkg := testpkg.Package{ID: "pkg-1", Type: "SIP", Representations: []string{"rep1"}}
	report := runRoot(t, pkg, ids)
	e, _ := report.Get(csip.CSIP18.ID)
	is.True(e.Failed())
	is.Equal(e.Message, `mets/dmdSec/@ID "root-dmd" in root METS.xml is not unique in the package`)
}

func TestChecksumMismatch(t *testing.T) {
	is := is.New(t)
	pkg := testpkg.Package{
		ID:              "pkg-1",
		Type:            "SIP",
		Representations: []string{"rep1"},
		RightsChecksum:  testpkg.Sum([]byte("something else")),
	}
	report := runRoot(t, pkg, nil)
	fails := mustFailures(report)
	is.Equal(len(fails), 1)
	e, _ := report.Get(csip.CSIP56.ID)
	is.True(e.Failed())
}

func TestChecksumWhitespace(t *testing.T) {
	is := is.New(t)
	rights := []byte("<rights>pkg-1 may be used for tests</rights>\n")
	pkg := testpkg.Package{
		ID:             "pkg-1",
		Type:           "SIP",
		RightsChecksum: "  " + testpkg.Sum(rights) + " ",
	}
	report := runRoot(t, pkg, nil)
	is.Equal(mustFailures(report), nil)
	e, _ := report.Get(csip.CSIP56.ID)
	is.True(e.Passed())
}

func TestVocabularies(t *testing.T) {
	ctx := context.Background()
	s, err := testpkg.RootState(ctx, testpkg.Package{ID: "pkg-1", Type: "SIP"}.Files(), nil)
	if err != nil {
		t.Fatal(err)
	}
	vocab := *vocabulary.Default()
	vocab.AgentRoles = vocabulary.NewSet("CREATOR")
	vocab.AgentTypes = vocabulary.NewSet("OTHER")
	vocab.NoteTypes = vocabulary.NewSet("VERSION")
	vocab.LocTypes = vocabulary.NewSet("URN")
	s.Vocab = &vocab
	report := testpkg.Run(ctx, s)
	table := map[string]string{
		csip.CSIP11.ID: `mets/metsHdr/agent/@ROLE value "ARCHIVIST" in root METS.xml is not in the vocabulary`,
		csip.CSIP12.ID: `mets/metsHdr/agent/@TYPE value "ORGANIZATION" in root METS.xml is not in the vocabulary`,
		csip.CSIP16.ID: `mets/metsHdr/agent/note/@csip:NOTETYPE value "SOFTWARE VERSION" of software agent "eark" in root METS.xml is not in the vocabulary`,
		csip.CSIP22.ID: `@LOCTYPE value "URL" in root METS.xml is not in the vocabulary`,
		csip.CSIP77.ID: `@LOCTYPE value "URL" in root METS.xml is not in the vocabulary`,
	}
	for id, msg := range table {
		t.Run(id, func(t *testing.T) {
			is := is.New(t)
			e, _ := report.Get(id)
			is.True(e.Failed())
			is.True(strings.HasSuffix(e.Message, msg)) // checked against the loaded vocabulary
		})
	}
	e, _ := report.Get(csip.CSIP13.ID)
	is.New(t).True(e.Passed())
}

func TestMissingSection(t *testing.T) {
	is := is.New(t)
	pkg := testpkg.Package{ID: "pkg-1", Type: "SIP", Representations: []string{"rep1"}, NoAmdSec: true}
	report := runRoot(t, pkg, nil)
	is.Equal(mustFailures(report), nil)
	for _, code := range []validation.Code{csip.CSIP32, csip.CSIP45} {
		e, _ := report.Get(code.ID)
		is.True(e.Passed()) // the section gate is valid
	}
	amd := csip.AmdSecModule()
	for _, gate := range []string{csip.CSIP32.ID, csip.CSIP45.ID} {
		for _, id := range amd.Dependents(gate) {
			e, _ := report.Get(id)
			is.True(e.Skipped)
		}
	}
	e, _ := report.Get(csip.CSIP36.ID)
	is.Equal(e.Message, "SKIPPED in root METS.xml because mets/amdSec/digiprovMD doesn't exist "+
		"(CSIP32 gates CSIP33, CSIP34, CSIP35, CSIP36, CSIP37, CSIP38, CSIP39, CSIP40, CSIP41, CSIP42, CSIP43, CSIP44)")
}

var dmdSecElem = regexp.MustCompile(`(?s)  <dmdSec .*?</dmdSec>\n`)

func TestMetadataFolder(t *testing.T) {
	ctx := context.Background()
	withoutMetadata := func(files testpkg.Files) testpkg.Files {
		for name := range files {
			if strings.HasPrefix(name, "pkg-1/metadata/") {
				delete(files, name)
			}
		}
		return files
	}
	noSections := testpkg.Package{ID: "pkg-1", Type: "SIP", NoAmdSec: true}.Files()
	noSections["pkg-1/METS.xml"] = dmdSecElem.ReplaceAll(noSections["pkg-1/METS.xml"], nil)
	extra := testpkg.Package{ID: "pkg-1", Type: "SIP"}.Files()
	extra["pkg-1/metadata/other/extra.xml"] = []byte("<extra/>\n")
	table := map[string]struct {
		files testpkg.Files
		msg   string
	}{
		"referenced": {
			files: testpkg.Package{ID: "pkg-1", Type: "SIP"}.Files(),
		},
		"no sections": {
			files: noSections,
			msg:   "root METS.xml has 1 file(s) in the metadata folder but no mets/dmdSec or mets/amdSec",
		},
		"empty folder": {
			files: withoutMetadata(testpkg.Package{ID: "pkg-1", Type: "SIP"}.Files()),
			msg:   "root METS.xml references metadata from mets/dmdSec or mets/amdSec/digiprovMD but the metadata folder is empty",
		},
		"unreferenced": {
			files: extra,
			msg:   "root METS.xml has 1 unreferenced file(s) in the metadata folder: metadata/other/extra.xml",
		},
	}
	for name, tcase := range table {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			s, err := testpkg.RootState(ctx, tcase.files, nil)
			is.NoErr(err)
			e, ok := testpkg.Run(ctx, s).Get(csip.CSIP31.ID)
			is.True(ok)
			if tcase.msg == "" {
				is.True(e.Passed())
				return
			}
			is.True(e.Failed())
			is.Equal(e.Message, tcase.msg)
		})
	}
}

func TestStructureTerminal(t *testing.T) {
	ctx := context.Background()
	table := map[string]struct {
		files testpkg.Files
		rule  string
	}{
		"no root folder": {
			files: testpkg.Files{"a/METS.xml": []byte("<mets/>"), "b/METS.xml": []byte("<mets/>")},
			rule:  csip.CSIPSTR1.ID,
		},
		"no root METS.xml": {
			files: testpkg.Files{"pkg/readme.txt": []byte("hello")},
			rule:  csip.CSIPSTR4.ID,
		},
		"valid": {
			files: testpkg.Package{ID: "pkg", Type: "SIP", Representations: []string{"rep1"}}.Files(),
		},
	}
	for name, tcase := range table {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			b := openZip(t, tcase.files)
			m := backend.Manifest{Root: true, Name: "pkg", Prefix: b.PackageRoot()}
			s := csip.NewState(b, m, nil, nil, nil, nil)
			report := csip.StructureModule().Run(ctx, s, nil)
			e, terminal := csip.Terminal(report)
			is.Equal(terminal, tcase.rule != "")
			if terminal {
				is.Equal(e.ID, tcase.rule)
				return
			}
			is.Equal(mustFailures(report), nil)
		})
	}
}
