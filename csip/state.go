// Package csip implements the rules of the E-ARK Common Specification for
// Information Packages. Rules are grouped in modules; each module declares
// the dependencies among its rules and is evaluated by a generic cascade
// runner (Module.Run).
package csip

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/srerickson/eark/backend"
	"github.com/srerickson/eark/mets"
	"github.com/srerickson/eark/validation"
	"github.com/srerickson/eark/vocabulary"
)

// Here is the location placeholder used in outcome messages. It is replaced
// with the manifest's location (see State.Location) when the outcome is
// added to a report.
const Here = "%1$s"

// State is the context rules are evaluated in: one manifest of one package.
type State struct {
	Backend  backend.Backend
	Manifest backend.Manifest
	// Mets is the parsed manifest. It is nil for the structure module.
	Mets  *mets.Mets
	IDs   *IDRegistry
	Vocab *vocabulary.Vocabularies
	// Prior holds outcomes from earlier modules, consulted for dependencies
	// on rules outside the running module. It is not modified by rules.
	Prior  *validation.Report
	Logger logr.Logger

	minedMx sync.Mutex
	mined   map[string]map[string]string
	// whether each rule run with the state opens its dependents
	open map[string]bool
}

// NewState returns a State for the manifest m. ids, vocab and prior may be
// nil.
func NewState(b backend.Backend, m backend.Manifest, doc *mets.Mets, ids *IDRegistry, vocab *vocabulary.Vocabularies, prior *validation.Report) *State {
	if ids == nil {
		ids = NewIDRegistry()
	}
	if vocab == nil {
		vocab = vocabulary.Default()
	}
	if prior == nil {
		prior = validation.NewReport()
	}
	return &State{
		Backend:  b,
		Manifest: m,
		Mets:     doc,
		IDs:      ids,
		Vocab:    vocab,
		Prior:    prior,
		Logger:   logr.Discard(),
	}
}

// Root is true if the state's manifest is the package root manifest.
func (s *State) Root() bool { return s.Manifest.Root }

// Name is the manifest's display name.
func (s *State) Name() string { return s.Manifest.Name }

// Location describes the manifest in messages.
func (s *State) Location() string {
	if s.Manifest.Root {
		return "root METS.xml"
	}
	return fmt.Sprintf("representation %s METS.xml", s.Manifest.Name)
}

// PackageID returns the manifest's mets/@OBJID.
func (s *State) PackageID() string {
	if s.Mets == nil {
		return ""
	}
	return s.Mets.OBJID
}

// Resolve returns the backend path for an href in the manifest. The href is
// percent-decoded first.
func (s *State) Resolve(href string) (string, error) {
	return s.Backend.Resolve(s.Manifest, s.PackageID(), backend.DecodeHref(href))
}

// Mined returns the values of attr on child elements nested in parent
// elements of the manifest, keyed by element ID (see mets.MineAttribute).
// Results are cached per manifest.
func (s *State) Mined(ctx context.Context, parent, child, attr xml.Name) (map[string]string, error) {
	key := strings.Join([]string{s.Manifest.Path, parent.Local, child.Local, attr.Space, attr.Local}, "\x00")
	s.minedMx.Lock()
	defer s.minedMx.Unlock()
	if vals, ok := s.mined[key]; ok {
		return vals, nil
	}
	f, err := s.Manifest.Open(ctx, s.Backend)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vals, err := mets.MineAttribute(f, parent, child, attr)
	if err != nil {
		return nil, err
	}
	if s.mined == nil {
		s.mined = map[string]map[string]string{}
	}
	s.mined[key] = vals
	return vals, nil
}

func (s *State) gates() map[string]bool {
	if s.open == nil {
		s.open = map[string]bool{}
	}
	return s.open
}

// Emit resolves the location placeholder in the outcome's messages.
func (s *State) Emit(o validation.Outcome) validation.Outcome {
	loc := s.Location()
	o.Message = strings.ReplaceAll(o.Message, Here, loc)
	if len(o.Issues) > 0 {
		issues := make([]string, len(o.Issues))
		for i, issue := range o.Issues {
			issues[i] = strings.ReplaceAll(issue, Here, loc)
		}
		o.Issues = issues
	}
	return o
}

// IDRegistry records xml IDs seen anywhere in a package. It is safe for
// concurrent use.
type IDRegistry struct {
	mx  sync.Mutex
	ids map[string]int
}

func NewIDRegistry() *IDRegistry {
	return &IDRegistry{ids: map[string]int{}}
}

// Register records id and returns true if it was already registered.
func (r *IDRegistry) Register(id string) (duplicate bool) {
	r.mx.Lock()
	defer r.mx.Unlock()
	if r.ids == nil {
		r.ids = map[string]int{}
	}
	r.ids[id]++
	return r.ids[id] > 1
}

// Contains returns true if id has been registered.
func (r *IDRegistry) Contains(id string) bool {
	r.mx.Lock()
	defer r.mx.Unlock()
	return r.ids[id] > 0
}

// Len returns the number of distinct registered ids.
func (r *IDRegistry) Len() int {
	r.mx.Lock()
	defer r.mx.Unlock()
	return len(r.ids)
}
