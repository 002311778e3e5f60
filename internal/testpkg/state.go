package testpkg

import (
	"bytes"
	"context"

	"github.com/srerickson/eark/backend/zipfs"
	"github.com/srerickson/eark/csip"
	"github.com/srerickson/eark/mets"
	"github.com/srerickson/eark/validation"
)

// RootState zips files and returns a State for the package's root
// manifest. ids may be nil.
func RootState(ctx context.Context, files Files, ids *csip.IDRegistry) (*csip.State, error) {
	data, err := Zip(files)
	if err != nil {
		return nil, err
	}
	b, err := zipfs.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	m, err := b.RootManifest(ctx)
	if err != nil {
		return nil, err
	}
	f, err := m.Open(ctx, b)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := mets.Decode(f)
	if err != nil {
		return nil, err
	}
	return csip.NewState(b, m, doc, ids, nil, nil), nil
}

// Run evaluates the CSIP METS modules followed by the extension modules
// with s.
func Run(ctx context.Context, s *csip.State, extensions ...*csip.Module) *validation.Report {
	report := validation.NewReport()
	for _, mod := range append(csip.MetsModules(), extensions...) {
		report.Merge(mod.Run(ctx, s, nil))
	}
	return report
}
