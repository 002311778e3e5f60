package csip

import (
	"context"
	"encoding/xml"

	"github.com/srerickson/eark/mets"
	"github.com/srerickson/eark/validation"
)

// mdRefCodes are the codes of the rules shared by the mdRef elements of
// dmdSec, digiprovMD and rightsMD, in evaluation order.
type mdRefCodes struct {
	LocType, XLinkType, Href, MDType, MIMEType, Size, Created, Checksum, ChecksumType validation.Code
}

// mdRefFamily describes one kind of metadata section.
type mdRefFamily struct {
	path     string // e.g., mets/amdSec/digiprovMD
	element  string // section element name, e.g. digiprovMD
	sections func(*mets.Mets) []mets.MdSec
}

type sectionRef struct {
	section mets.MdSec
	ref     mets.MdRef
}

func (f mdRefFamily) refs(s *State) []sectionRef {
	var refs []sectionRef
	for _, sec := range f.sections(s.Mets) {
		for _, ref := range sec.MdRefs {
			refs = append(refs, sectionRef{section: sec, ref: ref})
		}
	}
	return refs
}

func (f mdRefFamily) elem() string { return f.path + "/mdRef" }

// presentRule is the gate: each section references its metadata with an
// mdRef.
func (f mdRefFamily) presentRule(code validation.Code) Rule {
	return Rule{
		Code: code,
		Check: func(_ context.Context, s *State) validation.Outcome {
			var fails Failures
			for _, sec := range f.sections(s.Mets) {
				if len(sec.MdRefs) == 0 {
					fails.Add("%s %q in %s has no mdRef", f.path, sec.ID, Here)
				}
			}
			return fails.Outcome()
		},
	}
}

// rules returns the mdRef attribute rules, in the order of mdRefCodes.
func (f mdRefFamily) rules(codes mdRefCodes) []Rule {
	each := func(code validation.Code, fn func(context.Context, *State, sectionRef, *Failures)) Rule {
		return Rule{
			Code: code,
			Check: func(ctx context.Context, s *State) validation.Outcome {
				var fails Failures
				for _, r := range f.refs(s) {
					fn(ctx, s, r, &fails)
				}
				return fails.Outcome()
			},
		}
	}
	elem := f.elem()
	return []Rule{
		each(codes.LocType, func(_ context.Context, s *State, r sectionRef, fails *Failures) {
			checkLocType(s, elem, r.ref.LocType, fails)
		}),
		{
			Code: codes.XLinkType,
			Check: func(ctx context.Context, s *State) validation.Outcome {
				mined, err := s.Mined(ctx, xml.Name{Local: f.element}, xml.Name{Local: "mdRef"}, mets.XLinkType)
				if err != nil {
					return validation.Fail("can't read %s/@xlink:type in %s: %v", elem, Here, err)
				}
				var keys []string
				for _, r := range f.refs(s) {
					key := r.ref.ID
					if key == "" {
						key = r.section.ID
					}
					keys = append(keys, key)
				}
				var fails Failures
				checkXLinkType(elem, mined, keys, &fails)
				return fails.Outcome()
			},
		},
		each(codes.Href, func(ctx context.Context, s *State, r sectionRef, fails *Failures) {
			checkHref(ctx, s, elem, r.ref.Href, fails)
		}),
		each(codes.MDType, func(_ context.Context, s *State, r sectionRef, fails *Failures) {
			switch {
			case r.ref.MDType == "":
				fails.Add("%s/@MDTYPE is missing in %s", elem, Here)
			case !s.Vocab.MDTypes.Contains(r.ref.MDType):
				fails.Add("%s/@MDTYPE value %q in %s is not in the vocabulary", elem, r.ref.MDType, Here)
			case r.ref.MDType == "OTHER" && r.ref.OtherMDType == "":
				fails.Add("%s/@OTHERMDTYPE is missing in %s but @MDTYPE is OTHER", elem, Here)
			}
		}),
		each(codes.MIMEType, func(_ context.Context, s *State, r sectionRef, fails *Failures) {
			checkMIMEType(s, elem, r.ref.MIMEType, fails)
		}),
		each(codes.Size, func(ctx context.Context, s *State, r sectionRef, fails *Failures) {
			checkSize(ctx, s, elem, r.ref.Href, r.ref.Size, fails)
		}),
		each(codes.Created, func(_ context.Context, _ *State, r sectionRef, fails *Failures) {
			checkCreated(elem, "CREATED", r.ref.Created, fails)
		}),
		each(codes.Checksum, func(ctx context.Context, s *State, r sectionRef, fails *Failures) {
			checkChecksum(ctx, s, elem, r.ref.Href, r.ref.Checksum, r.ref.ChecksumType, fails)
		}),
		each(codes.ChecksumType, func(_ context.Context, s *State, r sectionRef, fails *Failures) {
			checkChecksumType(s, elem, r.ref.ChecksumType, fails)
		}),
	}
}

// deps returns the dependency table for the mdRef rules: all depend on the
// gate.
func (codes mdRefCodes) deps(gate string, reason string) map[string]Dependency {
	deps := map[string]Dependency{}
	for _, c := range []validation.Code{codes.LocType, codes.XLinkType, codes.Href, codes.MDType,
		codes.MIMEType, codes.Size, codes.Created, codes.Checksum, codes.ChecksumType} {
		deps[c.ID] = Dependency{On: gate, Reason: reason}
	}
	return deps
}

func mergeDeps(tables ...map[string]Dependency) map[string]Dependency {
	out := map[string]Dependency{}
	for _, t := range tables {
		for k, v := range t {
			out[k] = v
		}
	}
	return out
}
