// Package validator validates E-ARK information packages. It runs the
// structure rules, the CSIP rules against every representation manifest and
// the root manifest, and the SIP or AIP rules for the package type declared
// in the root manifest.
package validator

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/carlmjohnson/workgroup"
	"github.com/go-logr/logr"
	"github.com/srerickson/eark"
	"github.com/srerickson/eark/aip"
	"github.com/srerickson/eark/backend"
	"github.com/srerickson/eark/csip"
	"github.com/srerickson/eark/mets"
	"github.com/srerickson/eark/sip"
	"github.com/srerickson/eark/validation"
	"github.com/srerickson/eark/vocabulary"
)

// Validator validates one package.
type Validator struct {
	path string
	opts *options
	lis  *listeners
}

// New returns a Validator for the package at path, which may be a folder or
// a ZIP archive.
func New(path string, opts ...Option) *Validator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.vocab == nil {
		o.vocab = vocabulary.Default()
	}
	return &Validator{
		path: path,
		opts: o,
		lis:  &listeners{list: o.listeners},
	}
}

// run is the state of one call to Validate
type run struct {
	*Validator
	backend backend.Backend
	ids     *csip.IDRegistry
	report  *validation.Report
	logger  logr.Logger
}

// Validate validates the package and returns the report. Validation
// problems, including a package that can't be opened, are reported in the
// report. The error is non-nil only if ctx is canceled; the partial report
// is returned with it.
func (v *Validator) Validate(ctx context.Context) (*validation.Report, error) {
	r := &run{
		Validator: v,
		backend:   v.opts.backend,
		ids:       csip.NewIDRegistry(),
		report:    validation.NewReport(),
		logger:    v.opts.logger.WithValues("package", v.path),
	}
	v.lis.ValidationStarted(v.path)
	if r.backend == nil {
		b, err := OpenBackend(v.path)
		if err != nil {
			r.report.Add(csip.CSIP0, validation.Outcome{Message: err.Error()})
			return r.finalize(), nil
		}
		defer b.Close()
		r.backend = b
	}
	r.logger.V(eark.LevelDebug).Info("validating package", "backend", r.backend.Name())
	if err := r.validate(ctx); err != nil {
		return r.finalize(), err
	}
	return r.finalize(), nil
}

func (r *run) validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// structure
	if r.structure(ctx) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// representations
	manifests, err := r.backend.RepresentationManifests(ctx)
	if err != nil {
		r.report.Add(csip.CSIP0, validation.Fail("can't read the representations of the package: %v", err))
	}
	if err := r.representations(ctx, manifests); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// root
	root, err := r.backend.RootManifest(ctx)
	if err != nil {
		r.report.Add(csip.CSIP0, validation.Fail("can't read the root manifest: %v", err))
		return nil
	}
	rootReport, state := r.manifest(ctx, root)
	r.report.Merge(rootReport)
	if state == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// extensions
	pkgType := state.Mets.PackageType()
	r.report.SetPackageType(pkgType)
	var modules []*csip.Module
	switch eark.PackageType(pkgType) {
	case eark.SIP:
		modules = sip.Modules()
	case eark.AIP:
		modules = aip.Modules()
	}
	state.Prior = rootReport
	for _, mod := range modules {
		r.report.Merge(mod.Run(ctx, state, r.lis))
	}
	return nil
}

// structure runs the structure rules. It returns true if the package
// structure prevents further validation.
func (r *run) structure(ctx context.Context) bool {
	m, err := r.backend.RootManifest(ctx)
	if err != nil {
		name := path.Base(r.backend.PackageRoot())
		if name == "." || name == "" {
			name = strings.TrimSuffix(path.Base(r.path), path.Ext(r.path))
		}
		m = backend.Manifest{
			Path:   path.Join(r.backend.PackageRoot(), eark.METSFile),
			Prefix: r.backend.PackageRoot(),
			Root:   true,
			Name:   name,
		}
	}
	state := r.newState(m)
	result := csip.StructureModule().Run(ctx, state, r.lis)
	r.report.Merge(result)
	if e, terminal := csip.Terminal(result); terminal {
		r.logger.V(eark.LevelDebug).Info("package structure is not valid", "rule", e.ID)
		r.report.Add(csip.CSIP0, validation.Outcome{
			Message: fmt.Sprintf("validation stopped: %s (%s)", e.Message, e.ID),
		})
		return true
	}
	return false
}

// representations validates the representation manifests, concurrently if
// configured.
func (r *run) representations(ctx context.Context, manifests []backend.Manifest) error {
	if len(manifests) == 0 {
		return nil
	}
	if r.opts.concurrency < 2 {
		for _, m := range manifests {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, _ := r.manifest(ctx, m)
			r.report.Merge(result)
		}
		return nil
	}
	task := func(m backend.Manifest) (*validation.Report, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, _ := r.manifest(ctx, m)
		return result, nil
	}
	manager := func(_ backend.Manifest, result *validation.Report, err error) ([]backend.Manifest, error) {
		if err != nil {
			return nil, err
		}
		r.report.Merge(result)
		return nil, nil
	}
	return workgroup.Do(r.opts.concurrency, task, manager, manifests...)
}

// manifest parses and validates one manifest. If the manifest can't be
// parsed the report includes an invalid CSIP0 entry and the returned state
// is nil.
func (r *run) manifest(ctx context.Context, m backend.Manifest) (*validation.Report, *csip.State) {
	logger := r.logger.WithValues("manifest", m.Path)
	result := validation.NewReport()
	state := r.newState(m)
	f, err := m.Open(ctx, r.backend)
	if err != nil {
		result.Add(csip.CSIP0, state.Emit(validation.Fail("can't open %s: %v", csip.Here, err)))
		return result, nil
	}
	defer f.Close()
	doc, err := mets.Decode(f)
	if err != nil {
		logger.V(eark.LevelDebug).Info("manifest is not well-formed", "err", err)
		result.Add(csip.CSIP0, state.Emit(parseFailure(err)))
		return result, nil
	}
	state.Mets = doc
	for _, mod := range csip.MetsModules() {
		result.Merge(mod.Run(ctx, state, r.lis))
	}
	return result, state
}

func (r *run) newState(m backend.Manifest) *csip.State {
	state := csip.NewState(r.backend, m, nil, r.ids, r.opts.vocab, nil)
	state.Logger = r.logger
	return state
}

// finalize adds a passing CSIP0 entry if there is none and notifies
// listeners.
func (r *run) finalize() *validation.Report {
	if !r.report.Has(csip.CSIP0.ID) {
		r.report.Add(csip.CSIP0, validation.Pass())
	}
	r.lis.indicators(r.report.Counts())
	r.lis.ValidationFinished(r.path)
	return r.report
}

// parseFailure describes a manifest that isn't well-formed, including the
// chain of causes and the position of the error.
func parseFailure(err error) validation.Outcome {
	var causes []string
	prev := ""
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		if _, ok := cur.(*mets.ParseError); ok {
			continue
		}
		msg := cur.Error()
		if prev != "" && strings.Contains(prev, msg) {
			continue
		}
		causes = append(causes, msg)
		prev = msg
	}
	o := validation.Fail("%s is not well-formed: %s", csip.Here, strings.Join(causes, ": caused by: "))
	var perr *mets.ParseError
	if errors.As(err, &perr) && perr.Line > 0 {
		o.Message += fmt.Sprintf(" (line %d, column %d)", perr.Line, perr.Column)
	}
	return o
}
