package csip

import (
	"context"
	"net/url"

	"github.com/srerickson/eark/validation"
)

// MetsRootModule returns the rules for attributes of the mets root element.
func MetsRootModule() *Module {
	rules := []Rule{
		{Code: CSIP1, Check: func(_ context.Context, s *State) validation.Outcome {
			if s.Mets.OBJID == "" {
				return validation.Fail("mets/@OBJID is missing in %s", Here)
			}
			return validation.Pass()
		}},
		{Code: CSIP2, Check: func(_ context.Context, s *State) validation.Outcome {
			switch typ := s.Mets.Type; {
			case typ == "":
				return validation.Fail("mets/@TYPE is missing in %s", Here)
			case !s.Vocab.ContentCategories.Contains(typ):
				return validation.Fail("mets/@TYPE value %q in %s is not a content category from the vocabulary", typ, Here)
			}
			return validation.Pass()
		}},
		{Code: CSIP3, Check: func(_ context.Context, s *State) validation.Outcome {
			if s.Mets.Type == "OTHER" && s.Mets.OtherType == "" {
				return validation.Fail("mets/@csip:OTHERTYPE is missing in %s but mets/@TYPE is OTHER", Here)
			}
			return validation.Pass()
		}},
		{Code: CSIP4, Check: func(_ context.Context, s *State) validation.Outcome {
			switch cit := s.Mets.ContentInformationType; {
			case cit == "":
				return validation.Fail("mets/@csip:CONTENTINFORMATIONTYPE is missing in %s", Here)
			case !s.Vocab.ContentInformationTypes.Contains(cit):
				return validation.Fail("mets/@csip:CONTENTINFORMATIONTYPE value %q in %s is not in the vocabulary", cit, Here)
			}
			return validation.Pass()
		}},
		{Code: CSIP5, Check: func(_ context.Context, s *State) validation.Outcome {
			if s.Mets.ContentInformationType == "OTHER" && s.Mets.OtherContentInformationType == "" {
				return validation.Fail("mets/@csip:OTHERCONTENTINFORMATIONTYPE is missing in %s but the content information type is OTHER", Here)
			}
			return validation.Pass()
		}},
		{Code: CSIP6, Check: func(_ context.Context, s *State) validation.Outcome {
			profile := s.Mets.Profile
			if profile == "" {
				return validation.Fail("mets/@PROFILE is missing in %s", Here)
			}
			if u, err := url.Parse(profile); err != nil || !u.IsAbs() {
				return validation.Fail("mets/@PROFILE value %q in %s is not a URL", profile, Here)
			}
			return validation.Pass()
		}},
	}
	return &Module{
		Name:  "CSIP METS root",
		Rules: rules,
		Deps: map[string]Dependency{
			CSIP3.ID: {On: CSIP2.ID, Reason: "mets/@TYPE is not valid"},
			CSIP5.ID: {On: CSIP4.ID, Reason: "mets/@csip:CONTENTINFORMATIONTYPE is not valid"},
		},
	}
}
