package validator

import (
	"sync"

	"github.com/go-logr/logr"
	"github.com/srerickson/eark"
	"github.com/srerickson/eark/validation"
)

// Listener is notified of validation progress.
type Listener interface {
	ValidationStarted(path string)
	ModuleStarted(module string, ruleID string)
	ModuleFinished(module string)
	ValidationFinished(path string)
	// Indicators is called with the report's counts after the report is
	// finalized.
	Indicators(errors, successes, warnings, notes, skipped int)
}

// listeners notifies each listener in order. Calls are serialized so
// listeners don't need to be safe for concurrent use.
type listeners struct {
	mx   sync.Mutex
	list []Listener
}

func (l *listeners) ValidationStarted(path string) {
	l.each(func(lis Listener) { lis.ValidationStarted(path) })
}

func (l *listeners) ModuleStarted(module, ruleID string) {
	l.each(func(lis Listener) { lis.ModuleStarted(module, ruleID) })
}

func (l *listeners) ModuleFinished(module string) {
	l.each(func(lis Listener) { lis.ModuleFinished(module) })
}

func (l *listeners) ValidationFinished(path string) {
	l.each(func(lis Listener) { lis.ValidationFinished(path) })
}

func (l *listeners) indicators(c validation.Counts) {
	l.each(func(lis Listener) { lis.Indicators(c.Errors, c.Successes, c.Warnings, c.Notes, c.Skipped) })
}

func (l *listeners) each(fn func(Listener)) {
	l.mx.Lock()
	defer l.mx.Unlock()
	for _, lis := range l.list {
		fn(lis)
	}
}

// LogListener logs validation progress.
type LogListener struct {
	Logger logr.Logger
}

var _ Listener = (*LogListener)(nil)

func (l *LogListener) ValidationStarted(path string) {
	l.Logger.Info("validation started", "path", path)
}

func (l *LogListener) ModuleStarted(module, ruleID string) {
	l.Logger.V(eark.LevelDebug).Info("checking rule", "module", module, "rule", ruleID)
}

func (l *LogListener) ModuleFinished(module string) {
	l.Logger.V(eark.LevelDebug).Info("module finished", "module", module)
}

func (l *LogListener) ValidationFinished(path string) {
	l.Logger.Info("validation finished", "path", path)
}

func (l *LogListener) Indicators(errors, successes, warnings, notes, skipped int) {
	l.Logger.Info("results", "errors", errors, "successes", successes,
		"warnings", warnings, "notes", notes, "skipped", skipped)
}
