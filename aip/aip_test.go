package aip_test

import (
	"context"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/srerickson/eark/aip"
	"github.com/srerickson/eark/csip"
	"github.com/srerickson/eark/internal/testpkg"
	"github.com/srerickson/eark/validation"
)

var pkg = testpkg.Package{ID: "aip-1", Type: "AIP", Representations: []string{"rep1"}}

func run(t *testing.T, files testpkg.Files) *validation.Report {
	t.Helper()
	ctx := context.Background()
	s, err := testpkg.RootState(ctx, files, nil)
	if err != nil {
		t.Fatal(err)
	}
	return testpkg.Run(ctx, s, aip.Modules()...)
}

func TestValidAIP(t *testing.T) {
	is := is.New(t)
	report := run(t, pkg.Files())
	for _, code := range []validation.Code{aip.AIP1, aip.AIP2, aip.AIP3} {
		e, ok := report.Get(code.ID)
		is.True(ok)
		is.True(e.Passed())
	}
}

func TestAIPFailures(t *testing.T) {
	table := map[string]struct {
		edit    func(testpkg.Files)
		rule    string
		message string
	}{
		"representation without group": {
			edit: func(files testpkg.Files) {
				files["aip-1/representations/rep2/data/file.txt"] = []byte("content of rep2\n")
			},
			rule:    aip.AIP1.ID,
			message: "mets/fileSec in root METS.xml has no fileGrp for representation rep2",
		},
		"missing checksum": {
			edit: func(files testpkg.Files) {
				name := "aip-1/METS.xml"
				files[name] = []byte(strings.Replace(string(files[name]),
					`CHECKSUMTYPE="SHA-256" OWNERID=`, `OWNERID=`, 1))
			},
			rule:    aip.AIP2.ID,
			message: `file "root-file-docs" in root METS.xml has no @CHECKSUM or @CHECKSUMTYPE`,
		},
		"submission without group": {
			edit: func(files testpkg.Files) {
				files["aip-1/submission/sip-1.zip"] = []byte("PK")
			},
			rule:    aip.AIP3.ID,
			message: "root METS.xml has a submission folder but no fileGrp with @USE " + csip.UseSubmission,
		},
	}
	for name, tcase := range table {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			files := pkg.Files()
			tcase.edit(files)
			report := run(t, files)
			e, ok := report.Get(tcase.rule)
			is.True(ok)
			is.True(e.Failed())
			is.Equal(e.Message, tcase.message)
		})
	}
}
