package csip

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/srerickson/eark"
	"github.com/srerickson/eark/mets"
	"github.com/srerickson/eark/validation"
	"golang.org/x/exp/slices"
)

// sectionGate returns a rule for an optional section. The rule is valid
// whether or not the section exists; rules depending on it only run if it
// does.
func sectionGate(code validation.Code, what string, present func(*State) bool) Rule {
	return Rule{
		Code: code,
		Check: func(_ context.Context, s *State) validation.Outcome {
			if !present(s) {
				return validation.Outcome{
					Valid:   true,
					Message: fmt.Sprintf("%s doesn't exist in %s", what, Here),
				}
			}
			return validation.Pass()
		},
		Opens: func(s *State, _ validation.Outcome) bool {
			return present(s)
		},
	}
}

func mdSecIDs(secs []mets.MdSec) []string {
	ids := make([]string, len(secs))
	for i, sec := range secs {
		ids[i] = sec.ID
	}
	return ids
}

func mdSecStatuses(secs []mets.MdSec) []string {
	st := make([]string, len(secs))
	for i, sec := range secs {
		st[i] = sec.Status
	}
	return st
}

var (
	dmdFamily = mdRefFamily{
		path:     "mets/dmdSec",
		element:  "dmdSec",
		sections: func(m *mets.Mets) []mets.MdSec { return m.DmdSecs },
	}
	digiprovFamily = mdRefFamily{
		path:     "mets/amdSec/digiprovMD",
		element:  "digiprovMD",
		sections: (*mets.Mets).DigiprovMDs,
	}
	rightsFamily = mdRefFamily{
		path:     "mets/amdSec/rightsMD",
		element:  "rightsMD",
		sections: (*mets.Mets).RightsMDs,
	}
)

// DmdSecModule returns the rules for descriptive metadata sections.
func DmdSecModule() *Module {
	refCodes := mdRefCodes{CSIP22, CSIP23, CSIP24, CSIP25, CSIP26, CSIP27, CSIP28, CSIP29, CSIP30}
	rules := []Rule{
		sectionGate(CSIP17, "mets/dmdSec", func(s *State) bool { return len(s.Mets.DmdSecs) > 0 }),
		{Code: CSIP18, Check: func(_ context.Context, s *State) validation.Outcome {
			return checkID(s, "mets/dmdSec", mdSecIDs(s.Mets.DmdSecs))
		}},
		{Code: CSIP19, Check: func(_ context.Context, s *State) validation.Outcome {
			var fails Failures
			for _, sec := range s.Mets.DmdSecs {
				checkCreated("mets/dmdSec", "CREATED", sec.Created, &fails)
			}
			return fails.Outcome()
		}},
		{Code: CSIP20, Check: func(_ context.Context, s *State) validation.Outcome {
			return checkStatus(s, "mets/dmdSec", mdSecStatuses(s.Mets.DmdSecs))
		}},
		dmdFamily.presentRule(CSIP21),
	}
	rules = append(rules, dmdFamily.rules(refCodes)...)
	gate := Dependency{On: CSIP17.ID, Reason: "mets/dmdSec doesn't exist"}
	return &Module{
		Name:  "CSIP dmdSec",
		Rules: rules,
		Deps: mergeDeps(
			map[string]Dependency{CSIP18.ID: gate, CSIP19.ID: gate, CSIP20.ID: gate, CSIP21.ID: gate},
			refCodes.deps(CSIP21.ID, "mets/dmdSec/mdRef doesn't exist"),
		),
	}
}

// AmdSecModule returns the rules for administrative metadata sections
// (digiprovMD and rightsMD) and for references to files in the metadata
// folder.
func AmdSecModule() *Module {
	digiprovCodes := mdRefCodes{CSIP36, CSIP37, CSIP38, CSIP39, CSIP40, CSIP41, CSIP42, CSIP43, CSIP44}
	rightsCodes := mdRefCodes{CSIP49, CSIP50, CSIP51, CSIP52, CSIP53, CSIP54, CSIP55, CSIP56, CSIP57}
	rules := []Rule{
		{Code: CSIP31, Check: checkMetadataFiles},
		sectionGate(CSIP32, "mets/amdSec/digiprovMD", func(s *State) bool { return len(s.Mets.DigiprovMDs()) > 0 }),
		{Code: CSIP33, Check: func(_ context.Context, s *State) validation.Outcome {
			return checkID(s, "mets/amdSec/digiprovMD", mdSecIDs(s.Mets.DigiprovMDs()))
		}},
		{Code: CSIP34, Check: func(_ context.Context, s *State) validation.Outcome {
			return checkStatus(s, "mets/amdSec/digiprovMD", mdSecStatuses(s.Mets.DigiprovMDs()))
		}},
		digiprovFamily.presentRule(CSIP35),
	}
	rules = append(rules, digiprovFamily.rules(digiprovCodes)...)
	rules = append(rules,
		sectionGate(CSIP45, "mets/amdSec/rightsMD", func(s *State) bool { return len(s.Mets.RightsMDs()) > 0 }),
		Rule{Code: CSIP46, Check: func(_ context.Context, s *State) validation.Outcome {
			return checkID(s, "mets/amdSec/rightsMD", mdSecIDs(s.Mets.RightsMDs()))
		}},
		Rule{Code: CSIP47, Check: func(_ context.Context, s *State) validation.Outcome {
			return checkStatus(s, "mets/amdSec/rightsMD", mdSecStatuses(s.Mets.RightsMDs()))
		}},
		rightsFamily.presentRule(CSIP48),
	)
	rules = append(rules, rightsFamily.rules(rightsCodes)...)
	digiprov := Dependency{On: CSIP32.ID, Reason: "mets/amdSec/digiprovMD doesn't exist"}
	rights := Dependency{On: CSIP45.ID, Reason: "mets/amdSec/rightsMD doesn't exist"}
	return &Module{
		Name:  "CSIP amdSec",
		Rules: rules,
		Deps: mergeDeps(
			map[string]Dependency{CSIP33.ID: digiprov, CSIP34.ID: digiprov, CSIP35.ID: digiprov},
			digiprovCodes.deps(CSIP35.ID, "mets/amdSec/digiprovMD/mdRef doesn't exist"),
			map[string]Dependency{CSIP46.ID: rights, CSIP47.ID: rights, CSIP48.ID: rights},
			rightsCodes.deps(CSIP48.ID, "mets/amdSec/rightsMD/mdRef doesn't exist"),
		),
	}
}

// checkMetadataFiles compares the manifest's metadata folder with its
// metadata sections: files need a section referencing them and sections
// with references need files.
func checkMetadataFiles(ctx context.Context, s *State) validation.Outcome {
	dir := path.Join(s.Manifest.Prefix, eark.MetadataDir)
	files := map[string]bool{}
	if s.Backend.IsDir(ctx, dir) {
		var err error
		files, err = s.Backend.MetadataFiles(ctx, dir)
		if err != nil {
			return validation.Fail("can't list the metadata folder of %s: %v", Here, err)
		}
	}
	switch {
	case len(s.Mets.DmdSecs) == 0 && len(s.Mets.AmdSecs) == 0:
		if len(files) > 0 {
			return validation.Fail("%s has %d file(s) in the metadata folder but no mets/dmdSec or mets/amdSec",
				Here, len(files))
		}
		return validation.Pass()
	case len(files) == 0:
		if len(s.Mets.DigiprovMDs()) > 0 || hasMdRef(s.Mets.DmdSecs) {
			return validation.Fail("%s references metadata from mets/dmdSec or mets/amdSec/digiprovMD but the metadata folder is empty", Here)
		}
		return validation.Pass()
	}
	var secs []mets.MdSec
	secs = append(secs, s.Mets.DmdSecs...)
	for _, amd := range s.Mets.AmdSecs {
		secs = append(secs, amd.DigiprovMDs...)
		secs = append(secs, amd.RightsMDs...)
		secs = append(secs, amd.TechMDs...)
		secs = append(secs, amd.SourceMDs...)
	}
	for _, sec := range secs {
		for _, ref := range sec.MdRefs {
			name, err := s.Resolve(ref.Href)
			if err != nil {
				continue
			}
			if _, ok := files[name]; ok {
				files[name] = true
			}
		}
	}
	var unreferenced []string
	for name, referenced := range files {
		if !referenced {
			unreferenced = append(unreferenced, strings.TrimPrefix(name, s.Manifest.Prefix+"/"))
		}
	}
	if len(unreferenced) == 0 {
		return validation.Pass()
	}
	slices.Sort(unreferenced)
	return validation.Fail("%s has %d unreferenced file(s) in the metadata folder: %s",
		Here, len(unreferenced), strings.Join(unreferenced, ", "))
}

func hasMdRef(secs []mets.MdSec) bool {
	for _, sec := range secs {
		if len(sec.MdRefs) > 0 {
			return true
		}
	}
	return false
}
