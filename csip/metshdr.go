package csip

import (
	"context"

	"github.com/srerickson/eark/mets"
	"github.com/srerickson/eark/validation"
	"github.com/srerickson/eark/vocabulary"
)

// SoftwareVersionNote is the note type of the software agent's version
// note.
const SoftwareVersionNote = "SOFTWARE VERSION"

// IsSoftwareAgent returns true if the agent describes the software that
// created the package.
func IsSoftwareAgent(a mets.Agent) bool {
	return a.Role == "CREATOR" && a.Type == "OTHER" && a.OtherType == "SOFTWARE"
}

func softwareAgents(s *State) []mets.Agent {
	var agents []mets.Agent
	for _, a := range s.Mets.Hdr.Agents {
		if IsSoftwareAgent(a) {
			agents = append(agents, a)
		}
	}
	return agents
}

// MetsHdrModule returns the rules for the METS header.
func MetsHdrModule() *Module {
	// anyAgent requires an agent with the wanted value. With vocab, every
	// agent's value must also be in the vocabulary.
	anyAgent := func(code validation.Code, attr, want string, get func(mets.Agent) string, vocab func(*vocabulary.Vocabularies) vocabulary.Set) Rule {
		return Rule{Code: code, Check: func(_ context.Context, s *State) validation.Outcome {
			var fails Failures
			found := false
			for _, a := range s.Mets.Hdr.Agents {
				found = found || get(a) == want
			}
			if !found {
				fails.Add("no mets/metsHdr/agent in %s has @%s %s", Here, attr, want)
			}
			if vocab != nil {
				for _, a := range s.Mets.Hdr.Agents {
					if val := get(a); val != "" && !vocab(s.Vocab).Contains(val) {
						fails.Add("mets/metsHdr/agent/@%s value %q in %s is not in the vocabulary", attr, val, Here)
					}
				}
			}
			return fails.Outcome()
		}}
	}
	// eachSoftware applies fn to each software agent; it fails if there
	// is none.
	eachSoftware := func(code validation.Code, fn func(s *State, a mets.Agent, fails *Failures)) Rule {
		return Rule{Code: code, Check: func(_ context.Context, s *State) validation.Outcome {
			agents := softwareAgents(s)
			if len(agents) == 0 {
				return validation.Fail("mets/metsHdr in %s has no agent for the software that created the package", Here)
			}
			var fails Failures
			for _, a := range agents {
				fn(s, a, &fails)
			}
			return fails.Outcome()
		}}
	}
	rules := []Rule{
		{Code: CSIP117, Check: func(_ context.Context, s *State) validation.Outcome {
			if s.Mets.Hdr == nil {
				return validation.Fail("mets/metsHdr is missing in %s", Here)
			}
			return validation.Pass()
		}},
		{Code: CSIP7, Check: func(_ context.Context, s *State) validation.Outcome {
			var fails Failures
			checkCreated("mets/metsHdr", "CREATEDATE", s.Mets.Hdr.CreateDate, &fails)
			return fails.Outcome()
		}},
		{Code: CSIP8, Check: func(_ context.Context, s *State) validation.Outcome {
			var fails Failures
			checkCreated("mets/metsHdr", "LASTMODDATE", s.Mets.Hdr.LastModDate, &fails)
			return fails.Outcome()
		}},
		{Code: CSIP9, Check: func(_ context.Context, s *State) validation.Outcome {
			switch typ := s.Mets.Hdr.OAISPackageType; {
			case typ == "":
				return validation.Fail("mets/metsHdr/@csip:OAISPACKAGETYPE is missing in %s", Here)
			case !s.Vocab.OAISPackageTypes.Contains(typ):
				return validation.Fail("mets/metsHdr/@csip:OAISPACKAGETYPE value %q in %s is not in the vocabulary", typ, Here)
			}
			return validation.Pass()
		}},
		{Code: CSIP10, Check: func(_ context.Context, s *State) validation.Outcome {
			if len(s.Mets.Hdr.Agents) == 0 {
				return validation.Fail("mets/metsHdr/agent is missing in %s", Here)
			}
			return validation.Pass()
		}},
		anyAgent(CSIP11, "ROLE", "CREATOR", func(a mets.Agent) string { return a.Role },
			func(v *vocabulary.Vocabularies) vocabulary.Set { return v.AgentRoles }),
		anyAgent(CSIP12, "TYPE", "OTHER", func(a mets.Agent) string { return a.Type },
			func(v *vocabulary.Vocabularies) vocabulary.Set { return v.AgentTypes }),
		anyAgent(CSIP13, "OTHERTYPE", "SOFTWARE", func(a mets.Agent) string { return a.OtherType }, nil),
		eachSoftware(CSIP14, func(_ *State, a mets.Agent, fails *Failures) {
			if a.Name == "" {
				fails.Add("mets/metsHdr/agent/name of the software agent is missing in %s", Here)
			}
		}),
		eachSoftware(CSIP15, func(_ *State, a mets.Agent, fails *Failures) {
			if len(a.Notes) == 0 {
				fails.Add("mets/metsHdr/agent/note with the version of software agent %q is missing in %s", a.Name, Here)
			}
		}),
		eachSoftware(CSIP16, func(s *State, a mets.Agent, fails *Failures) {
			version := false
			for _, n := range a.Notes {
				switch {
				case n.Type == "":
				case !s.Vocab.NoteTypes.Contains(n.Type):
					fails.Add("mets/metsHdr/agent/note/@csip:NOTETYPE value %q of software agent %q in %s is not in the vocabulary",
						n.Type, a.Name, Here)
				case n.Type == SoftwareVersionNote:
					version = true
				}
			}
			if !version {
				fails.Add("mets/metsHdr/agent/note/@csip:NOTETYPE of software agent %q in %s is not %s", a.Name, Here, SoftwareVersionNote)
			}
		}),
	}
	hdr := Dependency{On: CSIP117.ID, Reason: "mets/metsHdr doesn't exist"}
	agent := Dependency{On: CSIP10.ID, Reason: "mets/metsHdr/agent doesn't exist"}
	return &Module{
		Name:  "CSIP metsHdr",
		Rules: rules,
		Deps: map[string]Dependency{
			CSIP7.ID:  hdr,
			CSIP8.ID:  hdr,
			CSIP9.ID:  hdr,
			CSIP10.ID: hdr,
			CSIP11.ID: agent,
			CSIP12.ID: agent,
			CSIP13.ID: agent,
			CSIP14.ID: agent,
			CSIP15.ID: agent,
			CSIP16.ID: agent,
		},
	}
}
