// Package sip implements the rules of the E-ARK SIP specification, which
// extend the CSIP rules for Submission Information Packages.
package sip

import (
	"context"
	"strings"

	"github.com/srerickson/eark/csip"
	"github.com/srerickson/eark/mets"
	"github.com/srerickson/eark/validation"
)

const (
	// Specification is the label of the rules in this package.
	Specification = "SIPv2.0.4"

	// Profile is the required mets/@PROFILE of a SIP root manifest.
	Profile = "https://earksip.dilcis.eu/profile/E-ARK-SIP.xml"

	// IdentificationCodeNote is the note type of the archivist agent's
	// identification code.
	IdentificationCodeNote = "IDENTIFICATIONCODE"

	specURL = "https://earksip.dilcis.eu/"
)

func newCode(id string, level validation.Level, desc string) validation.Code {
	c := validation.NewCode(id, Specification, level, desc)
	c.URL = specURL + "#" + id
	return c
}

var (
	SIP1  = newCode("SIP1", validation.Should, "mets/@LABEL SHOULD give a short text title of the package")
	SIP2  = newCode("SIP2", validation.Must, "mets/@PROFILE is the E-ARK SIP profile")
	SIP3  = newCode("SIP3", validation.Should, "mets/metsHdr/@RECORDSTATUS SHOULD be from the vocabulary")
	SIP4  = newCode("SIP4", validation.May, "mets/metsHdr/altRecordID with @TYPE SUBMISSIONAGREEMENT MAY be present, at most once; altRecordID/@TYPE values are from the vocabulary")
	SIP5  = newCode("SIP5", validation.May, "mets/metsHdr/altRecordID with @TYPE PREVIOUSSUBMISSIONAGREEMENT MAY be present")
	SIP6  = newCode("SIP6", validation.May, "mets/metsHdr/altRecordID with @TYPE REFERENCECODE MAY be present, at most once")
	SIP7  = newCode("SIP7", validation.May, "mets/metsHdr/altRecordID with @TYPE PREVIOUSREFERENCECODE MAY be present")
	SIP8  = newCode("SIP8", validation.Should, "mets/metsHdr/agent with @ROLE ARCHIVIST SHOULD describe the archival creator")
	SIP9  = newCode("SIP9", validation.Must, "mets/metsHdr/agent[@ROLE='ARCHIVIST']/@TYPE is ORGANIZATION")
	SIP10 = newCode("SIP10", validation.Must, "mets/metsHdr/agent[@ROLE='ARCHIVIST']/name is mandatory")
	SIP11 = newCode("SIP11", validation.Should, "mets/metsHdr/agent[@ROLE='ARCHIVIST']/note SHOULD have @csip:NOTETYPE IDENTIFICATIONCODE")
	SIP31 = newCode("SIP31", validation.Must, "mets/fileSec/fileGrp/file/@ADMID references existing administrative metadata sections")
	SIP32 = newCode("SIP32", validation.Must, "mets/fileSec/fileGrp/file/@DMDID references existing descriptive metadata sections")
	SIP33 = newCode("SIP33", validation.Should, "mets/fileSec/fileGrp/file/@OWNERID SHOULD be unique in the file section")
	SIP34 = newCode("SIP34", validation.Must, "mets/fileSec/fileGrp/@ADMID references existing administrative metadata sections")
)

// Modules returns the SIP modules, in order. They are evaluated against the
// root manifest after the CSIP modules.
func Modules() []*csip.Module {
	return []*csip.Module{RootModule(), HdrModule(), FileSecModule()}
}

// RootModule returns the rules for attributes of the mets root element.
func RootModule() *csip.Module {
	return &csip.Module{
		Name: "SIP METS root",
		Rules: []csip.Rule{
			{Code: SIP1, Check: func(_ context.Context, s *csip.State) validation.Outcome {
				if strings.TrimSpace(s.Mets.Label) == "" {
					return validation.Fail("mets/@LABEL is missing in %s", csip.Here)
				}
				return validation.Pass()
			}},
			{Code: SIP2, Check: func(_ context.Context, s *csip.State) validation.Outcome {
				if s.Mets.Profile != Profile {
					return validation.Fail("mets/@PROFILE %q in %s is not %s", s.Mets.Profile, csip.Here, Profile)
				}
				return validation.Pass()
			}},
		},
	}
}

func altRecordIDs(s *csip.State, typ string) []mets.AltRecordID {
	var ids []mets.AltRecordID
	for _, alt := range s.Mets.Hdr.AltRecordIDs {
		if alt.Type == typ {
			ids = append(ids, alt)
		}
	}
	return ids
}

// checkAltRecordIDs checks the number of altRecordIDs with @TYPE typ.
func checkAltRecordIDs(s *csip.State, typ string, once bool, fails *csip.Failures) {
	switch n := len(altRecordIDs(s, typ)); {
	case n == 0:
		fails.Add("mets/metsHdr/altRecordID with @TYPE %s is missing in %s", typ, csip.Here)
	case once && n > 1:
		fails.Add("mets/metsHdr/altRecordID with @TYPE %s appears %d times in %s", typ, n, csip.Here)
	}
}

func archivists(s *csip.State) []mets.Agent {
	var agents []mets.Agent
	for _, a := range s.Mets.Hdr.Agents {
		if a.Role == "ARCHIVIST" {
			agents = append(agents, a)
		}
	}
	return agents
}

// HdrModule returns the rules for the METS header. They depend on the CSIP
// header rules.
func HdrModule() *csip.Module {
	altRule := func(code validation.Code, typ string, once bool) csip.Rule {
		return csip.Rule{Code: code, Check: func(_ context.Context, s *csip.State) validation.Outcome {
			var fails csip.Failures
			checkAltRecordIDs(s, typ, once, &fails)
			return fails.Outcome()
		}}
	}
	eachArchivist := func(code validation.Code, fn func(a mets.Agent) bool, format string) csip.Rule {
		return csip.Rule{Code: code, Check: func(_ context.Context, s *csip.State) validation.Outcome {
			for _, a := range archivists(s) {
				if !fn(a) {
					return validation.Fail(format, a.Name, csip.Here)
				}
			}
			return validation.Pass()
		}}
	}
	hdr := csip.Dependency{On: csip.CSIP117.ID, Reason: "mets/metsHdr doesn't exist"}
	agent := csip.Dependency{On: csip.CSIP10.ID, Reason: "mets/metsHdr/agent doesn't exist"}
	archivist := csip.Dependency{On: SIP8.ID, Reason: "an archivist agent doesn't exist"}
	return &csip.Module{
		Name: "SIP metsHdr",
		Rules: []csip.Rule{
			{Code: SIP3, Check: func(_ context.Context, s *csip.State) validation.Outcome {
				switch st := s.Mets.Hdr.RecordStatus; {
				case st == "":
					return validation.Fail("mets/metsHdr/@RECORDSTATUS is missing in %s", csip.Here)
				case !s.Vocab.RecordStatuses.Contains(st):
					return validation.Fail("mets/metsHdr/@RECORDSTATUS value %q in %s is not in the vocabulary", st, csip.Here)
				}
				return validation.Pass()
			}},
			{Code: SIP4, Check: func(_ context.Context, s *csip.State) validation.Outcome {
				var fails csip.Failures
				checkAltRecordIDs(s, "SUBMISSIONAGREEMENT", true, &fails)
				for _, alt := range s.Mets.Hdr.AltRecordIDs {
					if !s.Vocab.AltRecordIDTypes.Contains(alt.Type) {
						fails.Add("mets/metsHdr/altRecordID/@TYPE value %q in %s is not in the vocabulary", alt.Type, csip.Here)
					}
				}
				return fails.Outcome()
			}},
			altRule(SIP5, "PREVIOUSSUBMISSIONAGREEMENT", false),
			altRule(SIP6, "REFERENCECODE", true),
			altRule(SIP7, "PREVIOUSREFERENCECODE", false),
			{Code: SIP8, Check: func(_ context.Context, s *csip.State) validation.Outcome {
				if len(archivists(s)) == 0 {
					return validation.Fail("mets/metsHdr in %s has no agent with @ROLE ARCHIVIST", csip.Here)
				}
				return validation.Pass()
			}},
			eachArchivist(SIP9, func(a mets.Agent) bool { return a.Type == "ORGANIZATION" },
				"archivist agent %q in %s is not an ORGANIZATION"),
			eachArchivist(SIP10, func(a mets.Agent) bool { return strings.TrimSpace(a.Name) != "" },
				"archivist agent %q in %s has no name"),
			eachArchivist(SIP11, func(a mets.Agent) bool {
				for _, n := range a.Notes {
					if n.Type == IdentificationCodeNote && strings.TrimSpace(n.Value) != "" {
						return true
					}
				}
				return false
			}, "archivist agent %q in %s has no note with @csip:NOTETYPE IDENTIFICATIONCODE"),
		},
		Deps: map[string]csip.Dependency{
			SIP3.ID:  hdr,
			SIP4.ID:  hdr,
			SIP5.ID:  hdr,
			SIP6.ID:  hdr,
			SIP7.ID:  hdr,
			SIP8.ID:  agent,
			SIP9.ID:  archivist,
			SIP10.ID: archivist,
			SIP11.ID: archivist,
		},
	}
}

// FileSecModule returns the rules for the file section. They depend on
// the CSIP file section gate.
func FileSecModule() *csip.Module {
	fileSec := csip.Dependency{On: csip.CSIP58.ID, Reason: "mets/fileSec doesn't exist"}
	return &csip.Module{
		Name: "SIP fileSec",
		Rules: []csip.Rule{
			{Code: SIP31, Check: func(_ context.Context, s *csip.State) validation.Outcome {
				known := csip.AmdIDs(s.Mets)
				var fails csip.Failures
				for _, g := range s.Mets.FileGrps() {
					for _, f := range g.Files {
						csip.MissingRefs("mets/fileSec/fileGrp/file", "ADMID", f.AdmID, known, &fails)
					}
				}
				return fails.Outcome()
			}},
			{Code: SIP32, Check: func(_ context.Context, s *csip.State) validation.Outcome {
				known := csip.DmdIDs(s.Mets)
				var fails csip.Failures
				for _, g := range s.Mets.FileGrps() {
					for _, f := range g.Files {
						csip.MissingRefs("mets/fileSec/fileGrp/file", "DMDID", f.DmdID, known, &fails)
					}
				}
				return fails.Outcome()
			}},
			{Code: SIP33, Check: func(_ context.Context, s *csip.State) validation.Outcome {
				seen := map[string]bool{}
				for _, g := range s.Mets.FileGrps() {
					for _, f := range g.Files {
						if f.OwnerID == "" {
							continue
						}
						if seen[f.OwnerID] {
							return validation.Fail("mets/fileSec/fileGrp/file/@OWNERID %q in %s is not unique", f.OwnerID, csip.Here)
						}
						seen[f.OwnerID] = true
					}
				}
				return validation.Pass()
			}},
			{Code: SIP34, Check: func(_ context.Context, s *csip.State) validation.Outcome {
				known := csip.AmdIDs(s.Mets)
				var fails csip.Failures
				for _, g := range s.Mets.FileGrps() {
					csip.MissingRefs("mets/fileSec/fileGrp", "ADMID", g.AdmID, known, &fails)
				}
				return fails.Outcome()
			}},
		},
		Deps: map[string]csip.Dependency{
			SIP31.ID: fileSec,
			SIP32.ID: fileSec,
			SIP33.ID: fileSec,
			SIP34.ID: fileSec,
		},
	}
}
