package csip

import (
	"context"
	"encoding/xml"
	"path"
	"strings"

	"github.com/srerickson/eark"
	"github.com/srerickson/eark/backend"
	"github.com/srerickson/eark/mets"
	"github.com/srerickson/eark/validation"
	"github.com/srerickson/eark/vocabulary"
)

// structMap div labels
const (
	LabelMetadata      = "Metadata"
	LabelDocumentation = "Documentation"
	LabelSchemas       = "Schemas"
)

// CSIPStructMap returns the manifest's CSIP structural map: the first
// structMap with TYPE PHYSICAL and LABEL CSIP.
func CSIPStructMap(m *mets.Mets) *mets.StructMap {
	for i := range m.StructMaps {
		if m.StructMaps[i].Type == "PHYSICAL" && m.StructMaps[i].Label == "CSIP" {
			return &m.StructMaps[i]
		}
	}
	return nil
}

func topDiv(m *mets.Mets) *mets.Div {
	sm := CSIPStructMap(m)
	if sm == nil || len(sm.Divs) == 0 {
		return nil
	}
	return &sm.Divs[0]
}

// childDivs returns the divisions of the top div that match.
func childDivs(m *mets.Mets, match func(label string) bool) []mets.Div {
	top := topDiv(m)
	if top == nil {
		return nil
	}
	var divs []mets.Div
	for _, d := range top.Divs {
		if match(d.Label) {
			divs = append(divs, d)
		}
	}
	return divs
}

func labeled(label string) func(string) bool {
	return func(l string) bool { return l == label }
}

func isRepresentationLabel(label string) bool {
	return strings.HasPrefix(label, vocabulary.RepresentationsUsePrefix) &&
		len(label) > len(vocabulary.RepresentationsUsePrefix)
}

// amdSectionIDs returns the IDs of the manifest's amdSec sections.
func amdSectionIDs(m *mets.Mets) []string {
	var ids []string
	for _, amd := range m.AmdSecs {
		for _, secs := range [][]mets.MdSec{amd.TechMDs, amd.RightsMDs, amd.SourceMDs, amd.DigiprovMDs} {
			ids = append(ids, mdSecIDs(secs)...)
		}
	}
	return ids
}

// StructMapModule returns the rules for the CSIP structural map.
func StructMapModule() *Module {
	divElem := func(label string) string {
		return "mets/structMap/div/div[@LABEL='" + label + "']"
	}
	// divRules returns the rules shared by the divisions that point to a
	// file group: a gate (div present if the file group is), ID, appears
	// once, fptr present, and fptr references the group.
	divRules := func(gate, id, once, fptr, fileID validation.Code, label, use string) []Rule {
		elem := divElem(label)
		divs := func(s *State) []mets.Div { return childDivs(s.Mets, labeled(label)) }
		return []Rule{
			{
				Code: gate,
				Check: func(_ context.Context, s *State) validation.Outcome {
					if HasFileGrp(s.Mets, use) && len(divs(s)) == 0 {
						return validation.Fail("%s has a %s fileGrp but no structMap division with @LABEL %s", Here, use, label)
					}
					return validation.Pass()
				},
				Opens: func(s *State, _ validation.Outcome) bool { return len(divs(s)) > 0 },
			},
			{Code: id, Check: func(_ context.Context, s *State) validation.Outcome {
				var ids []string
				for _, d := range divs(s) {
					ids = append(ids, d.ID)
				}
				return checkID(s, elem, ids)
			}},
			{Code: once, Check: func(_ context.Context, s *State) validation.Outcome {
				if n := len(divs(s)); n > 1 {
					return validation.Fail("%s appears %d times in %s", elem, n, Here)
				}
				return validation.Pass()
			}},
			{Code: fptr, Check: func(_ context.Context, s *State) validation.Outcome {
				for _, d := range divs(s) {
					if len(d.Fptrs) == 0 {
						return validation.Fail("%s/fptr is missing in %s", elem, Here)
					}
				}
				return validation.Pass()
			}},
			{Code: fileID, Check: func(_ context.Context, s *State) validation.Outcome {
				groups := map[string]bool{}
				for _, g := range s.Mets.FileGrps() {
					if g.Use == use && g.ID != "" {
						groups[g.ID] = true
					}
				}
				var fails Failures
				for _, d := range divs(s) {
					for _, p := range d.Fptrs {
						if !groups[p.FileID] {
							fails.Add("%s/fptr/@FILEID %q in %s doesn't reference the %s fileGrp", elem, p.FileID, Here, use)
						}
					}
				}
				return fails.Outcome()
			}},
		}
	}
	repElem := divElem("Representations/*")
	repDivs := func(s *State) []mets.Div { return childDivs(s.Mets, isRepresentationLabel) }
	eachMptr := func(code validation.Code, fn func(ctx context.Context, s *State, d mets.Div, p mets.Mptr, fails *Failures)) Rule {
		return Rule{Code: code, Check: func(ctx context.Context, s *State) validation.Outcome {
			var fails Failures
			for _, d := range repDivs(s) {
				for _, p := range d.Mptrs {
					fn(ctx, s, d, p, &fails)
				}
			}
			return fails.Outcome()
		}}
	}
	metadataDivs := func(s *State) []mets.Div { return childDivs(s.Mets, labeled(LabelMetadata)) }
	metadataElem := divElem(LabelMetadata)

	rules := []Rule{
		{Code: CSIP80, Check: func(_ context.Context, s *State) validation.Outcome {
			if len(s.Mets.StructMaps) == 0 {
				return validation.Fail("mets/structMap is missing in %s", Here)
			}
			return validation.Pass()
		}},
		{Code: CSIP81, Check: func(_ context.Context, s *State) validation.Outcome {
			for _, sm := range s.Mets.StructMaps {
				if sm.Type == "PHYSICAL" {
					return validation.Pass()
				}
			}
			return validation.Fail("%s has no mets/structMap with @TYPE PHYSICAL", Here)
		}},
		{Code: CSIP82, Check: func(_ context.Context, s *State) validation.Outcome {
			if CSIPStructMap(s.Mets) == nil {
				return validation.Fail("%s has no mets/structMap with @TYPE PHYSICAL and @LABEL CSIP", Here)
			}
			return validation.Pass()
		}},
		{Code: CSIP83, Check: func(_ context.Context, s *State) validation.Outcome {
			return checkID(s, "mets/structMap", []string{CSIPStructMap(s.Mets).ID})
		}},
		{Code: CSIP84, Check: func(_ context.Context, s *State) validation.Outcome {
			if n := len(CSIPStructMap(s.Mets).Divs); n != 1 {
				return validation.Fail("the CSIP structMap in %s has %d top level divisions", Here, n)
			}
			return validation.Pass()
		}},
		{Code: CSIP85, Check: func(_ context.Context, s *State) validation.Outcome {
			return checkID(s, "mets/structMap/div", []string{topDiv(s.Mets).ID})
		}},
		{Code: CSIP86, Check: func(_ context.Context, s *State) validation.Outcome {
			label := topDiv(s.Mets).Label
			if label != s.Mets.OBJID {
				return validation.Fail("mets/structMap/div/@LABEL %q in %s is not the package identifier %q", label, Here, s.Mets.OBJID)
			}
			return validation.Pass()
		}},
		{
			Code: CSIP88,
			Check: func(_ context.Context, s *State) validation.Outcome {
				if len(metadataDivs(s)) > 0 {
					return validation.Pass()
				}
				if len(s.Mets.DmdSecs) > 0 || len(s.Mets.AmdSecs) > 0 {
					return validation.Fail("%s has metadata sections but no structMap division with @LABEL %s", Here, LabelMetadata)
				}
				return validation.Pass()
			},
			Opens: func(s *State, _ validation.Outcome) bool { return len(metadataDivs(s)) > 0 },
		},
		{Code: CSIP89, Check: func(_ context.Context, s *State) validation.Outcome {
			var ids []string
			for _, d := range metadataDivs(s) {
				ids = append(ids, d.ID)
			}
			return checkID(s, metadataElem, ids)
		}},
		{Code: CSIP90, Check: func(_ context.Context, s *State) validation.Outcome {
			if n := len(metadataDivs(s)); n > 1 {
				return validation.Fail("%s appears %d times in %s", metadataElem, n, Here)
			}
			return validation.Pass()
		}},
		{Code: CSIP91, Check: func(_ context.Context, s *State) validation.Outcome {
			return checkDivRefs(metadataElem, "ADMID", metadataDivs(s), func(d mets.Div) string { return d.AdmID }, amdSectionIDs(s.Mets))
		}},
		{Code: CSIP92, Check: func(_ context.Context, s *State) validation.Outcome {
			return checkDivRefs(metadataElem, "DMDID", metadataDivs(s), func(d mets.Div) string { return d.DmdID }, mdSecIDs(s.Mets.DmdSecs))
		}},
	}
	rules = append(rules, divRules(CSIP93, CSIP94, CSIP95, CSIP96, CSIP97, LabelDocumentation, UseDocumentation)...)
	rules = append(rules, divRules(CSIP98, CSIP99, CSIP100, CSIP101, CSIP102, LabelSchemas, UseSchemas)...)
	rules = append(rules,
		Rule{
			Code: CSIP103,
			Check: func(_ context.Context, s *State) validation.Outcome {
				if !s.Root() {
					return validation.Pass()
				}
				have := map[string]bool{}
				for _, d := range repDivs(s) {
					have[d.Label] = true
				}
				var fails Failures
				for _, g := range s.Mets.FileGrps() {
					if isRepresentationLabel(g.Use) && !have[g.Use] {
						fails.Add("%s has a fileGrp with @USE %s but no structMap division for it", Here, g.Use)
					}
				}
				return fails.Outcome()
			},
			Opens: func(s *State, _ validation.Outcome) bool { return s.Root() && len(repDivs(s)) > 0 },
		},
		Rule{Code: CSIP104, Check: func(_ context.Context, s *State) validation.Outcome {
			var ids []string
			for _, d := range repDivs(s) {
				ids = append(ids, d.ID)
			}
			return checkID(s, repElem, ids)
		}},
		Rule{Code: CSIP105, Check: func(ctx context.Context, s *State) validation.Outcome {
			var fails Failures
			for _, d := range repDivs(s) {
				name := strings.TrimPrefix(d.Label, vocabulary.RepresentationsUsePrefix)
				dir := path.Join(s.Backend.PackageRoot(), eark.RepresentationsDir, name)
				if !s.Backend.IsDir(ctx, dir) {
					fails.Add("structMap division %q in %s doesn't name a representation folder", d.Label, Here)
				}
			}
			return fails.Outcome()
		}},
		Rule{Code: CSIP106, Check: func(_ context.Context, s *State) validation.Outcome {
			groups := map[string]bool{}
			for _, g := range s.Mets.FileGrps() {
				if g.ID != "" {
					groups[g.ID] = true
				}
			}
			var fails Failures
			for _, d := range repDivs(s) {
				for _, p := range d.Fptrs {
					if !groups[p.FileID] {
						fails.Add("%s/fptr/@FILEID %q in %s doesn't reference a fileGrp", repElem, p.FileID, Here)
					}
				}
			}
			return fails.Outcome()
		}},
		Rule{Code: CSIP108, Check: func(_ context.Context, s *State) validation.Outcome {
			var fails Failures
			for _, d := range repDivs(s) {
				if len(d.Mptrs) == 0 {
					fails.Add("structMap division %q in %s has no mptr", d.Label, Here)
				}
			}
			return fails.Outcome()
		}},
		eachMptr(CSIP109, func(_ context.Context, _ *State, d mets.Div, p mets.Mptr, fails *Failures) {
			if p.Title == "" {
				fails.Add("%s/mptr/@xlink:title of division %q is missing in %s", repElem, d.Label, Here)
			}
		}),
		eachMptr(CSIP110, func(_ context.Context, s *State, _ mets.Div, p mets.Mptr, fails *Failures) {
			checkLocType(s, repElem+"/mptr", p.LocType, fails)
		}),
		Rule{Code: CSIP111, Check: func(ctx context.Context, s *State) validation.Outcome {
			mined, err := s.Mined(ctx, xml.Name{Local: "div"}, xml.Name{Local: "mptr"}, mets.XLinkType)
			if err != nil {
				return validation.Fail("can't read %s/mptr/@xlink:type in %s: %v", repElem, Here, err)
			}
			var keys []string
			for _, d := range repDivs(s) {
				for _, p := range d.Mptrs {
					key := p.ID
					if key == "" {
						key = d.ID
					}
					keys = append(keys, key)
				}
			}
			var fails Failures
			checkXLinkType(repElem+"/mptr", mined, keys, &fails)
			return fails.Outcome()
		}},
		eachMptr(CSIP112, func(ctx context.Context, s *State, _ mets.Div, p mets.Mptr, fails *Failures) {
			checkHref(ctx, s, repElem+"/mptr", p.Href, fails)
			if p.Href != "" && path.Base(backend.DecodeHref(p.Href)) != eark.METSFile {
				fails.Add("%s/mptr/@xlink:href %q in %s doesn't reference a %s file", repElem, p.Href, Here, eark.METSFile)
			}
		}),
	)
	sm := Dependency{On: CSIP82.ID, Reason: "the CSIP structMap doesn't exist"}
	top := Dependency{On: CSIP84.ID, Reason: "the CSIP structMap has no single top level division"}
	metadata := Dependency{On: CSIP88.ID, Reason: metadataElem + " doesn't exist"}
	docs := Dependency{On: CSIP93.ID, Reason: divElem(LabelDocumentation) + " doesn't exist"}
	schemas := Dependency{On: CSIP98.ID, Reason: divElem(LabelSchemas) + " doesn't exist"}
	reps := Dependency{On: CSIP103.ID, Reason: repElem + " doesn't exist"}
	mptr := Dependency{On: CSIP108.ID, Reason: repElem + "/mptr doesn't exist"}
	return &Module{
		Name:  "CSIP structMap",
		Rules: rules,
		Deps: map[string]Dependency{
			CSIP81.ID:  {On: CSIP80.ID, Reason: "mets/structMap doesn't exist"},
			CSIP82.ID:  {On: CSIP81.ID, Reason: "a PHYSICAL mets/structMap doesn't exist"},
			CSIP83.ID:  sm,
			CSIP84.ID:  sm,
			CSIP85.ID:  top,
			CSIP86.ID:  top,
			CSIP88.ID:  top,
			CSIP89.ID:  metadata,
			CSIP90.ID:  metadata,
			CSIP91.ID:  metadata,
			CSIP92.ID:  metadata,
			CSIP93.ID:  top,
			CSIP94.ID:  docs,
			CSIP95.ID:  docs,
			CSIP96.ID:  docs,
			CSIP97.ID:  docs,
			CSIP98.ID:  top,
			CSIP99.ID:  schemas,
			CSIP100.ID: schemas,
			CSIP101.ID: schemas,
			CSIP102.ID: schemas,
			CSIP103.ID: top,
			CSIP104.ID: reps,
			CSIP105.ID: reps,
			CSIP106.ID: reps,
			CSIP108.ID: reps,
			CSIP109.ID: mptr,
			CSIP110.ID: mptr,
			CSIP111.ID: mptr,
			CSIP112.ID: mptr,
		},
	}
}

// checkDivRefs checks that the divisions reference every id in want with
// the attribute.
func checkDivRefs(elem, attr string, divs []mets.Div, get func(mets.Div) string, want []string) validation.Outcome {
	refs := map[string]bool{}
	for _, d := range divs {
		for _, id := range mets.IDs(get(d)) {
			refs[id] = true
		}
	}
	var fails Failures
	for _, id := range want {
		if id != "" && !refs[id] {
			fails.Add("%s/@%s in %s doesn't reference %q", elem, attr, Here, id)
		}
	}
	return fails.Outcome()
}
