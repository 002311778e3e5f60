// Package aip implements the rules of the E-ARK AIP specification that
// apply to Archival Information Packages in addition to the CSIP rules.
package aip

import (
	"context"
	"fmt"
	"path"

	"github.com/srerickson/eark"
	"github.com/srerickson/eark/csip"
	"github.com/srerickson/eark/validation"
	"github.com/srerickson/eark/vocabulary"
)

const (
	// Specification is the label of the rules in this package.
	Specification = "AIPv2.0.4"

	// SubmissionDir is the folder holding the original submission.
	SubmissionDir = "submission"

	specURL = "https://earkaip.dilcis.eu/"
)

func newCode(id string, level validation.Level, desc string) validation.Code {
	c := validation.NewCode(id, Specification, level, desc)
	c.URL = specURL + "#" + id
	return c
}

var (
	AIP1 = newCode("AIP1", validation.Must, "mets/fileSec/fileGrp with @USE Representations/<name> is present for each representation folder")
	AIP2 = newCode("AIP2", validation.Must, "mets/fileSec/fileGrp/file/@CHECKSUM and @CHECKSUMTYPE are present for every file")
	AIP3 = newCode("AIP3", validation.May, "mets/fileSec/fileGrp with @USE Submission MAY reference the original submission")
)

// Modules returns the AIP modules, in order. They are evaluated against
// the root manifest after the CSIP modules.
func Modules() []*csip.Module {
	return []*csip.Module{FileSecModule()}
}

// FileSecModule returns the AIP rules for the file section. They depend
// on the CSIP file section gate.
func FileSecModule() *csip.Module {
	fileSec := csip.Dependency{On: csip.CSIP58.ID, Reason: "mets/fileSec doesn't exist"}
	return &csip.Module{
		Name: "AIP fileSec",
		Rules: []csip.Rule{
			{Code: AIP1, Check: func(ctx context.Context, s *csip.State) validation.Outcome {
				dir := path.Join(s.Backend.PackageRoot(), eark.RepresentationsDir)
				entries, err := s.Backend.ReadDir(ctx, dir)
				if err != nil {
					return validation.Pass()
				}
				var missing []string
				for _, e := range entries {
					if !e.IsDir() {
						continue
					}
					if !csip.HasFileGrp(s.Mets, vocabulary.RepresentationsUsePrefix+e.Name()) {
						missing = append(missing, e.Name())
					}
				}
				if len(missing) > 0 {
					o := validation.Fail("mets/fileSec in %s has no fileGrp for representation %s", csip.Here, missing[0])
					for _, name := range missing[1:] {
						o.Issues = append(o.Issues, fmt.Sprintf("mets/fileSec in %s has no fileGrp for representation %s", csip.Here, name))
					}
					return o
				}
				return validation.Pass()
			}},
			{Code: AIP2, Check: func(_ context.Context, s *csip.State) validation.Outcome {
				for _, g := range s.Mets.FileGrps() {
					for _, f := range g.Files {
						if f.Checksum == "" || f.ChecksumType == "" {
							return validation.Fail("file %q in %s has no @CHECKSUM or @CHECKSUMTYPE", f.ID, csip.Here)
						}
					}
				}
				return validation.Pass()
			}},
			{Code: AIP3, Check: func(ctx context.Context, s *csip.State) validation.Outcome {
				dir := path.Join(s.Backend.PackageRoot(), SubmissionDir)
				if !s.Backend.IsDir(ctx, dir) {
					return validation.Pass()
				}
				if !csip.HasFileGrp(s.Mets, csip.UseSubmission) {
					return validation.Fail("%s has a %s folder but no fileGrp with @USE %s", csip.Here, SubmissionDir, csip.UseSubmission)
				}
				return validation.Pass()
			}},
		},
		Deps: map[string]csip.Dependency{
			AIP1.ID: fileSec,
			AIP2.ID: fileSec,
			AIP3.ID: fileSec,
		},
	}
}
