package validation

import "fmt"

// Level is a requirement level from the specification: MUST, SHOULD or
// MAY. It decides how a failed rule is counted.
type Level string

const (
	Must   Level = "MUST"
	Should Level = "SHOULD"
	May    Level = "MAY"
)

// Code identifies a validation rule and references the specification it
// implements.
type Code struct {
	// ID is the rule identifier (e.g., "CSIP24").
	ID string
	// Specification is the label of the specification the rule belongs to
	// (e.g., "CSIPv2.0.4").
	Specification string
	Level         Level
	Description   string
	URL           string
}

// NewCode returns a Code for the rule id in spec.
func NewCode(id string, spec string, level Level, desc string) Code {
	return Code{
		ID:            id,
		Specification: spec,
		Level:         level,
		Description:   desc,
	}
}

func (c Code) String() string {
	return fmt.Sprintf("[%s %s] %s", c.ID, c.Level, c.Description)
}

// Outcome is the result of evaluating one rule.
type Outcome struct {
	Valid   bool
	Skipped bool
	Message string
	// Issues holds further failure messages merged into the outcome.
	Issues []string
}

// Pass returns a valid Outcome.
func Pass() Outcome {
	return Outcome{Valid: true}
}

// Fail returns an invalid Outcome with a formatted message.
func Fail(format string, args ...any) Outcome {
	return Outcome{Message: fmt.Sprintf(format, args...)}
}

// Skip returns a skipped Outcome. Skipped outcomes are valid.
func Skip(msg string) Outcome {
	return Outcome{Valid: true, Skipped: true, Message: msg}
}

// Failed is true for invalid outcomes.
func (o Outcome) Failed() bool { return !o.Valid }

// Passed is true for valid outcomes that were not skipped.
func (o Outcome) Passed() bool { return o.Valid && !o.Skipped }
