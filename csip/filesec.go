package csip

import (
	"context"
	"encoding/xml"
	"path"

	"github.com/srerickson/eark"
	"github.com/srerickson/eark/mets"
	"github.com/srerickson/eark/validation"
	"github.com/srerickson/eark/vocabulary"
)

const (
	UseDocumentation = "Documentation"
	UseSchemas       = "Schemas"
	UseSubmission    = "Submission"
)

// groupFile is a file with the group that lists it.
type groupFile struct {
	group mets.FileGrp
	file  mets.File
}

func groupFiles(m *mets.Mets) []groupFile {
	var out []groupFile
	for _, g := range m.FileGrps() {
		for _, f := range g.Files {
			out = append(out, groupFile{group: g, file: f})
		}
	}
	return out
}

// href returns the file's location, if it has exactly one.
func (gf groupFile) href() (string, bool) {
	if len(gf.file.FLocats) != 1 {
		return "", false
	}
	return gf.file.FLocats[0].Href, true
}

// AmdIDs returns the IDs of the amdSec elements and their sections.
func AmdIDs(m *mets.Mets) map[string]bool {
	ids := map[string]bool{}
	for _, amd := range m.AmdSecs {
		if amd.ID != "" {
			ids[amd.ID] = true
		}
		for _, secs := range [][]mets.MdSec{amd.TechMDs, amd.RightsMDs, amd.SourceMDs, amd.DigiprovMDs} {
			for _, sec := range secs {
				if sec.ID != "" {
					ids[sec.ID] = true
				}
			}
		}
	}
	return ids
}

// DmdIDs returns the IDs of the dmdSec elements.
func DmdIDs(m *mets.Mets) map[string]bool {
	return idSet(mdSecIDs(m.DmdSecs)...)
}

// HasFileGrp returns true if the manifest has a file group with USE use.
func HasFileGrp(m *mets.Mets, use string) bool {
	for _, g := range m.FileGrps() {
		if g.Use == use {
			return true
		}
	}
	return false
}

// checkRefs checks that the ids in the space-separated attribute value all
// reference elements in known.
func checkRefs(elem, attr, val string, known map[string]bool, fails *Failures) {
	if val == "" {
		fails.Add("%s/@%s is missing in %s", elem, attr, Here)
		return
	}
	MissingRefs(elem, attr, val, known, fails)
}

// MissingRefs adds a failure for each id in the space-separated attribute
// value that is not in known. An empty value references nothing.
func MissingRefs(elem, attr, val string, known map[string]bool, fails *Failures) {
	for _, id := range mets.IDs(val) {
		if !known[id] {
			fails.Add("%s/@%s in %s references %q, which doesn't exist", elem, attr, Here, id)
		}
	}
}

// FileSecModule returns the rules for the file section.
func FileSecModule() *Module {
	eachGroup := func(code validation.Code, fn func(s *State, g mets.FileGrp, fails *Failures)) Rule {
		return Rule{Code: code, Check: func(_ context.Context, s *State) validation.Outcome {
			var fails Failures
			for _, g := range s.Mets.FileGrps() {
				fn(s, g, &fails)
			}
			return fails.Outcome()
		}}
	}
	eachFile := func(code validation.Code, fn func(ctx context.Context, s *State, gf groupFile, fails *Failures)) Rule {
		return Rule{Code: code, Check: func(ctx context.Context, s *State) validation.Outcome {
			var fails Failures
			for _, gf := range groupFiles(s.Mets) {
				fn(ctx, s, gf, &fails)
			}
			return fails.Outcome()
		}}
	}
	// folderGroup checks that a group with USE use exists when the
	// manifest's folder dir has content.
	folderGroup := func(code validation.Code, dir, use string) Rule {
		return Rule{Code: code, Check: func(ctx context.Context, s *State) validation.Outcome {
			if !s.Backend.IsDir(ctx, path.Join(s.Manifest.Prefix, dir)) {
				return validation.Pass()
			}
			if !HasFileGrp(s.Mets, use) {
				return validation.Fail("mets/fileSec in %s has no fileGrp with @USE %s for the %s folder", Here, use, dir)
			}
			return validation.Pass()
		}}
	}
	const (
		grpElem    = "mets/fileSec/fileGrp"
		fileElem   = "mets/fileSec/fileGrp/file"
		flocatElem = "mets/fileSec/fileGrp/file/FLocat"
	)
	rules := []Rule{
		sectionGate(CSIP58, "mets/fileSec", func(s *State) bool { return s.Mets.FileSec != nil }),
		{Code: CSIP59, Check: func(_ context.Context, s *State) validation.Outcome {
			return checkID(s, "mets/fileSec", []string{s.Mets.FileSec.ID})
		}},
		folderGroup(CSIP60, eark.DocumentationDir, UseDocumentation),
		folderGroup(CSIP113, eark.SchemasDir, UseSchemas),
		{Code: CSIP114, Check: func(ctx context.Context, s *State) validation.Outcome {
			if !s.Root() {
				return validation.Pass()
			}
			reps, err := representationDirs(ctx, s)
			if err != nil {
				// no representations folder
				return validation.Pass()
			}
			var fails Failures
			for _, rep := range reps {
				if !HasFileGrp(s.Mets, vocabulary.RepresentationsUsePrefix+rep) {
					fails.Add("mets/fileSec in %s has no fileGrp with @USE %s%s", Here, vocabulary.RepresentationsUsePrefix, rep)
				}
			}
			return fails.Outcome()
		}},
		eachGroup(CSIP61, func(s *State, g mets.FileGrp, fails *Failures) {
			checkRefs(grpElem, "ADMID", g.AdmID, AmdIDs(s.Mets), fails)
		}),
		eachGroup(CSIP62, func(s *State, g mets.FileGrp, fails *Failures) {
			switch {
			case g.Use == "":
				fails.Add("%s/@USE is missing in %s", grpElem, Here)
			case !s.Vocab.IsFileGrpUse(g.Use):
				fails.Add("%s/@USE value %q in %s is not in the vocabulary", grpElem, g.Use, Here)
			}
		}),
		eachGroup(CSIP63, func(s *State, g mets.FileGrp, fails *Failures) {
			if cit := g.ContentInformationType; cit != "" && !s.Vocab.ContentInformationTypes.Contains(cit) {
				fails.Add("%s/@csip:CONTENTINFORMATIONTYPE value %q in %s is not in the vocabulary", grpElem, cit, Here)
			}
		}),
		eachGroup(CSIP64, func(_ *State, g mets.FileGrp, fails *Failures) {
			if g.ContentInformationType == "OTHER" && g.OtherContentInformationType == "" {
				fails.Add("%s/@csip:OTHERCONTENTINFORMATIONTYPE of fileGrp %q is missing in %s", grpElem, g.ID, Here)
			}
		}),
		{Code: CSIP65, Check: func(_ context.Context, s *State) validation.Outcome {
			var ids []string
			for _, g := range s.Mets.FileGrps() {
				ids = append(ids, g.ID)
			}
			return checkID(s, grpElem, ids)
		}},
		eachGroup(CSIP66, func(_ *State, g mets.FileGrp, fails *Failures) {
			if len(g.Files) == 0 && len(g.FileGrps) == 0 {
				fails.Add("fileGrp %q in %s has no files", g.ID, Here)
			}
		}),
		{Code: CSIP67, Check: func(_ context.Context, s *State) validation.Outcome {
			var ids []string
			for _, gf := range groupFiles(s.Mets) {
				ids = append(ids, gf.file.ID)
			}
			return checkID(s, fileElem, ids)
		}},
		eachFile(CSIP68, func(_ context.Context, s *State, gf groupFile, fails *Failures) {
			checkMIMEType(s, fileElem, gf.file.MIMEType, fails)
		}),
		eachFile(CSIP69, func(ctx context.Context, s *State, gf groupFile, fails *Failures) {
			if href, ok := gf.href(); ok {
				checkSize(ctx, s, fileElem, href, gf.file.Size, fails)
			}
		}),
		eachFile(CSIP70, func(_ context.Context, _ *State, gf groupFile, fails *Failures) {
			checkCreated(fileElem, "CREATED", gf.file.Created, fails)
		}),
		eachFile(CSIP71, func(ctx context.Context, s *State, gf groupFile, fails *Failures) {
			if href, ok := gf.href(); ok {
				checkChecksum(ctx, s, fileElem, href, gf.file.Checksum, gf.file.ChecksumType, fails)
			}
		}),
		eachFile(CSIP72, func(_ context.Context, s *State, gf groupFile, fails *Failures) {
			checkChecksumType(s, fileElem, gf.file.ChecksumType, fails)
		}),
		eachFile(CSIP73, func(_ context.Context, _ *State, gf groupFile, fails *Failures) {
			if gf.file.OwnerID == "" {
				fails.Add("%s/@OWNERID of file %q is missing in %s", fileElem, gf.file.ID, Here)
			}
		}),
		eachFile(CSIP74, func(_ context.Context, s *State, gf groupFile, fails *Failures) {
			checkRefs(fileElem, "ADMID", gf.file.AdmID, AmdIDs(s.Mets), fails)
		}),
		eachFile(CSIP75, func(_ context.Context, s *State, gf groupFile, fails *Failures) {
			checkRefs(fileElem, "DMDID", gf.file.DmdID, DmdIDs(s.Mets), fails)
		}),
		eachFile(CSIP76, func(_ context.Context, _ *State, gf groupFile, fails *Failures) {
			if n := len(gf.file.FLocats); n != 1 {
				fails.Add("file %q in %s has %d FLocat elements", gf.file.ID, Here, n)
			}
		}),
		eachFile(CSIP77, func(_ context.Context, s *State, gf groupFile, fails *Failures) {
			for _, loc := range gf.file.FLocats {
				checkLocType(s, flocatElem, loc.LocType, fails)
			}
		}),
		{Code: CSIP78, Check: func(ctx context.Context, s *State) validation.Outcome {
			mined, err := s.Mined(ctx, xml.Name{Local: "file"}, xml.Name{Local: "FLocat"}, mets.XLinkType)
			if err != nil {
				return validation.Fail("can't read %s/@xlink:type in %s: %v", flocatElem, Here, err)
			}
			var keys []string
			for _, gf := range groupFiles(s.Mets) {
				for _, loc := range gf.file.FLocats {
					key := loc.ID
					if key == "" {
						key = gf.file.ID
					}
					keys = append(keys, key)
				}
			}
			var fails Failures
			checkXLinkType(flocatElem, mined, keys, &fails)
			return fails.Outcome()
		}},
		eachFile(CSIP79, func(ctx context.Context, s *State, gf groupFile, fails *Failures) {
			for _, loc := range gf.file.FLocats {
				checkHref(ctx, s, flocatElem, loc.Href, fails)
			}
		}),
	}
	deps := map[string]Dependency{}
	for _, r := range rules[1:] {
		deps[r.Code.ID] = Dependency{On: CSIP58.ID, Reason: "mets/fileSec doesn't exist"}
	}
	return &Module{
		Name:  "CSIP fileSec",
		Rules: rules,
		Deps:  deps,
	}
}
