package csip

import (
	"context"
	"path"
	"strings"

	"github.com/srerickson/eark"
	"github.com/srerickson/eark/mets"
	"github.com/srerickson/eark/validation"
)

// StructureModule returns the rules for the package's folder layout. The
// rules only use the state's Backend and Manifest; Mets may be nil.
func StructureModule() *Module {
	inRoot := func(s *State, names ...string) string {
		return path.Join(append([]string{s.Backend.PackageRoot()}, names...)...)
	}
	dirRule := func(code validation.Code, names ...string) Rule {
		return Rule{Code: code, Check: func(ctx context.Context, s *State) validation.Outcome {
			dir := inRoot(s, names...)
			if !s.Backend.IsDir(ctx, dir) {
				return validation.Fail("the package has no %s folder", path.Join(names...))
			}
			return validation.Pass()
		}}
	}
	// repRule checks each representation folder with fn.
	repRule := func(code validation.Code, fn func(ctx context.Context, s *State, rep string, fails *Failures)) Rule {
		return Rule{Code: code, Check: func(ctx context.Context, s *State) validation.Outcome {
			reps, err := representationDirs(ctx, s)
			if err != nil {
				return validation.Fail("can't read the representations folder: %v", err)
			}
			var fails Failures
			for _, rep := range reps {
				fn(ctx, s, rep, &fails)
			}
			return fails.Outcome()
		}}
	}
	rules := []Rule{
		{Code: CSIPSTR1, Check: func(ctx context.Context, s *State) validation.Outcome {
			root := s.Backend.PackageRoot()
			if root == "" {
				return validation.Fail("the package is not included in a single root folder")
			}
			if !s.Backend.IsDir(ctx, root) {
				return validation.Fail("the package root %q is not a folder", root)
			}
			return validation.Pass()
		}},
		{Code: CSIPSTR4, Check: func(ctx context.Context, s *State) validation.Outcome {
			if _, err := s.Backend.RootManifest(ctx); err != nil {
				return validation.Fail("the package root folder has no %s: %v", eark.METSFile, err)
			}
			return validation.Pass()
		}},
		{Code: CSIPSTR2, Check: func(ctx context.Context, s *State) validation.Outcome {
			id, err := rootPackageID(ctx, s)
			if err != nil {
				return validation.Fail("can't read mets/@OBJID from the root METS.xml: %v", err)
			}
			if id == "" {
				return validation.Fail("the root METS.xml has no mets/@OBJID to compare the root folder name with")
			}
			if name := s.Manifest.Name; name != id {
				return validation.Fail("the root folder %q is not named with the package identifier %q", name, id)
			}
			return validation.Pass()
		}},
		{Code: CSIPSTR3, Check: func(_ context.Context, s *State) validation.Outcome {
			if s.Backend.Name() != "zip" {
				return validation.Fail("the package is not compressed")
			}
			return validation.Pass()
		}},
		dirRule(CSIPSTR5, eark.MetadataDir),
		dirRule(CSIPSTR6, eark.MetadataDir, eark.DescriptiveDir),
		dirRule(CSIPSTR7, eark.MetadataDir, eark.PreservationDir),
		dirRule(CSIPSTR8, eark.MetadataDir, eark.OtherDir),
		dirRule(CSIPSTR9, eark.RepresentationsDir),
		{Code: CSIPSTR10, Check: func(ctx context.Context, s *State) validation.Outcome {
			entries, err := s.Backend.ReadDir(ctx, inRoot(s, eark.RepresentationsDir))
			if err != nil {
				return validation.Fail("can't read the representations folder: %v", err)
			}
			var fails Failures
			var dirs int
			for _, e := range entries {
				if !e.IsDir() {
					fails.Add("the representations folder includes %q, which is not a folder", e.Name())
					continue
				}
				dirs++
			}
			if dirs == 0 {
				fails.Add("the representations folder has no representation sub-folders")
			}
			return fails.Outcome()
		}},
		repRule(CSIPSTR11, func(ctx context.Context, s *State, rep string, fails *Failures) {
			if !s.Backend.IsDir(ctx, inRoot(s, eark.RepresentationsDir, rep, eark.DataDir)) {
				fails.Add("representation %s has no %s folder", rep, eark.DataDir)
			}
		}),
		repRule(CSIPSTR12, func(ctx context.Context, s *State, rep string, fails *Failures) {
			if !s.Backend.Exists(ctx, inRoot(s, eark.RepresentationsDir, rep, eark.METSFile)) {
				fails.Add("representation %s has no %s", rep, eark.METSFile)
			}
		}),
		repRule(CSIPSTR13, func(ctx context.Context, s *State, rep string, fails *Failures) {
			if !s.Backend.IsDir(ctx, inRoot(s, eark.RepresentationsDir, rep, eark.MetadataDir)) {
				fails.Add("representation %s has no %s folder", rep, eark.MetadataDir)
			}
		}),
		dirRule(CSIPSTR14, eark.SchemasDir),
		dirRule(CSIPSTR15, eark.DocumentationDir),
		repRule(CSIPSTR16, func(ctx context.Context, s *State, rep string, fails *Failures) {
			for _, dir := range []string{eark.SchemasDir, eark.DocumentationDir} {
				if !s.Backend.IsDir(ctx, inRoot(s, eark.RepresentationsDir, rep, dir)) {
					fails.Add("representation %s has no %s folder", rep, dir)
				}
			}
		}),
	}
	root := Dependency{On: CSIPSTR1.ID, Reason: "the package has no single root folder"}
	metsFile := Dependency{On: CSIPSTR4.ID, Reason: "the root METS.xml doesn't exist"}
	metadata := Dependency{On: CSIPSTR5.ID, Reason: "the metadata folder doesn't exist"}
	reps := Dependency{On: CSIPSTR9.ID, Reason: "the representations folder doesn't exist"}
	repDirs := Dependency{On: CSIPSTR10.ID, Reason: "the representations folder is not valid"}
	return &Module{
		Name:  "CSIP structure",
		Rules: rules,
		Deps: map[string]Dependency{
			CSIPSTR2.ID:  metsFile,
			CSIPSTR4.ID:  root,
			CSIPSTR5.ID:  root,
			CSIPSTR6.ID:  metadata,
			CSIPSTR7.ID:  metadata,
			CSIPSTR8.ID:  metadata,
			CSIPSTR9.ID:  root,
			CSIPSTR10.ID: reps,
			CSIPSTR11.ID: repDirs,
			CSIPSTR12.ID: repDirs,
			CSIPSTR13.ID: repDirs,
			CSIPSTR14.ID: root,
			CSIPSTR15.ID: root,
			CSIPSTR16.ID: repDirs,
		},
	}
}

// Terminal returns the first structure rule in r whose failure prevents
// any further validation of the package: a package without a root folder
// or without a root METS.xml.
func Terminal(r *validation.Report) (validation.Entry, bool) {
	for _, code := range []validation.Code{CSIPSTR1, CSIPSTR4} {
		e, ok := r.Get(code.ID)
		if ok && !e.Valid {
			return e, true
		}
	}
	return validation.Entry{}, false
}

// representationDirs returns the names of the folders in the package's
// representations folder.
func representationDirs(ctx context.Context, s *State) ([]string, error) {
	entries, err := s.Backend.ReadDir(ctx, path.Join(s.Backend.PackageRoot(), eark.RepresentationsDir))
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs, nil
}

// rootPackageID returns mets/@OBJID from the root manifest, using the
// parsed document if the state has one.
func rootPackageID(ctx context.Context, s *State) (string, error) {
	if s.Mets != nil && s.Root() {
		return s.Mets.OBJID, nil
	}
	m, err := s.Backend.RootManifest(ctx)
	if err != nil {
		return "", err
	}
	f, err := m.Open(ctx, s.Backend)
	if err != nil {
		return "", err
	}
	defer f.Close()
	doc, err := mets.Decode(f)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.OBJID), nil
}
