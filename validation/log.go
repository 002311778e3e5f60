package validation

import (
	"github.com/go-logr/logr"
)

const (
	typeError   = "error"
	typeWarning = "warning"
	typeNote    = "note"
)

// Log writes every failed entry in the report to the logger.
func (r *Report) Log(logger logr.Logger) {
	for _, e := range r.Entries() {
		LogEntry(logger, e)
	}
}

// LogEntry writes the entry to the logger if it failed.
func LogEntry(logger logr.Logger, e Entry) {
	if e.Valid {
		return
	}
	vals := []interface{}{"type", entryType(e), "rule", e.ID}
	if len(e.Issues) > 0 {
		vals = append(vals, "issues", len(e.Issues))
	}
	logger.Info(e.Message, vals...)
}

func entryType(e Entry) string {
	switch e.Level {
	case Should:
		return typeWarning
	case May:
		return typeNote
	default:
		return typeError
	}
}
