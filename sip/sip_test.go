package sip_test

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/srerickson/eark/csip"
	"github.com/srerickson/eark/internal/testpkg"
	"github.com/srerickson/eark/sip"
	"github.com/srerickson/eark/validation"
)

var pkg = testpkg.Package{ID: "sip-1", Type: "SIP", Representations: []string{"rep1"}}

// run evaluates the CSIP and SIP modules against the root manifest, after
// applying edit to it.
func run(t *testing.T, edit func(string) string) *validation.Report {
	t.Helper()
	ctx := context.Background()
	files := pkg.Files()
	name := pkg.ID + "/METS.xml"
	if edit != nil {
		files[name] = []byte(edit(string(files[name])))
	}
	s, err := testpkg.RootState(ctx, files, nil)
	if err != nil {
		t.Fatal(err)
	}
	return testpkg.Run(ctx, s, sip.Modules()...)
}

func sipIDs() []string {
	var ids []string
	for _, mod := range sip.Modules() {
		ids = append(ids, mod.IDs()...)
	}
	return ids
}

func TestValidSIP(t *testing.T) {
	is := is.New(t)
	report := run(t, nil)
	for _, id := range sipIDs() {
		e, ok := report.Get(id)
		is.True(ok)
		is.True(e.Passed()) // rule passes
	}
}

func TestSIPFailures(t *testing.T) {
	table := map[string]struct {
		edit    func(string) string
		rule    string
		message string
		issues  int
	}{
		"profile": {
			edit:    func(s string) string { return strings.Replace(s, testpkg.SIPProfile, testpkg.CSIPProfile, 1) },
			rule:    sip.SIP2.ID,
			message: `mets/@PROFILE "` + testpkg.CSIPProfile + `" in root METS.xml is not ` + sip.Profile,
		},
		"record status": {
			edit:    func(s string) string { return strings.Replace(s, ` RECORDSTATUS="NEW"`, "", 1) },
			rule:    sip.SIP3.ID,
			message: "mets/metsHdr/@RECORDSTATUS is missing in root METS.xml",
		},
		"submission agreement twice": {
			edit: func(s string) string {
				alt := `<altRecordID TYPE="SUBMISSIONAGREEMENT">SA-1</altRecordID>`
				return strings.Replace(s, alt, alt+alt, 1)
			},
			rule:    sip.SIP4.ID,
			message: "mets/metsHdr/altRecordID with @TYPE SUBMISSIONAGREEMENT appears 2 times in root METS.xml",
		},
		"alt record id type": {
			edit: func(s string) string {
				return strings.Replace(s, "</metsHdr>", `<altRecordID TYPE="LOCALCODE">L-1</altRecordID></metsHdr>`, 1)
			},
			rule:    sip.SIP4.ID,
			message: `mets/metsHdr/altRecordID/@TYPE value "LOCALCODE" in root METS.xml is not in the vocabulary`,
		},
		"archivist type": {
			edit:    func(s string) string { return strings.Replace(s, `ROLE="ARCHIVIST" TYPE="ORGANIZATION"`, `ROLE="ARCHIVIST" TYPE="INDIVIDUAL"`, 1) },
			rule:    sip.SIP9.ID,
			message: `archivist agent "Test Archive" in root METS.xml is not an ORGANIZATION`,
		},
		"dmdid": {
			edit:    func(s string) string { return strings.ReplaceAll(s, ` DMDID="root-dmd">`, ` DMDID="root-missing">`) },
			rule:    sip.SIP32.ID,
			message: `mets/fileSec/fileGrp/file/@DMDID in root METS.xml references "root-missing", which doesn't exist`,
			issues:  2,
		},
		"ownerid": {
			edit: func(s string) string {
				return strings.Replace(s, `OWNERID="`+testpkg.SchemaPath+`"`, `OWNERID="`+testpkg.DocumentationPath+`"`, 1)
			},
			rule:    sip.SIP33.ID,
			message: `mets/fileSec/fileGrp/file/@OWNERID "` + testpkg.DocumentationPath + `" in root METS.xml is not unique`,
		},
		"group admid": {
			edit:    func(s string) string { return strings.Replace(s, `USE="Schemas" ADMID="root-digiprov"`, `USE="Schemas" ADMID="root-gone"`, 1) },
			rule:    sip.SIP34.ID,
			message: `mets/fileSec/fileGrp/@ADMID in root METS.xml references "root-gone", which doesn't exist`,
		},
	}
	for name, tcase := range table {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			report := run(t, tcase.edit)
			e, ok := report.Get(tcase.rule)
			is.True(ok)
			is.True(e.Failed())
			is.Equal(e.Message, tcase.message)
			is.Equal(len(e.Issues), tcase.issues)
		})
	}
}

func TestNoArchivist(t *testing.T) {
	is := is.New(t)
	archivist := regexp.MustCompile(`(?s)<agent ROLE="ARCHIVIST".*?</agent>`)
	report := run(t, func(s string) string { return archivist.ReplaceAllString(s, "") })
	e, _ := report.Get(sip.SIP8.ID)
	is.True(e.Failed())
	is.Equal(e.Level, validation.Should)
	for _, code := range []validation.Code{sip.SIP9, sip.SIP10, sip.SIP11} {
		e, _ := report.Get(code.ID)
		is.True(e.Skipped)
		is.Equal(e.Message, "SKIPPED in root METS.xml because an archivist agent doesn't exist (SIP8 gates SIP9, SIP10, SIP11)")
	}
}

// the SIP file section rules are gated by the CSIP file section rule
func TestNoFileSec(t *testing.T) {
	is := is.New(t)
	fileSec := regexp.MustCompile(`(?s)<fileSec.*?</fileSec>`)
	report := run(t, func(s string) string { return fileSec.ReplaceAllString(s, "") })
	e, _ := report.Get(csip.CSIP58.ID)
	is.True(e.Valid)
	is.True(strings.Contains(e.Message, "doesn't exist"))
	for _, code := range []validation.Code{sip.SIP31, sip.SIP32, sip.SIP33, sip.SIP34} {
		e, _ := report.Get(code.ID)
		is.True(e.Skipped)
	}
}
