package validation

import (
	"sync"
)

// Entry is one rule's row in a Report.
type Entry struct {
	ID            string   `json:"id" yaml:"id"`
	Specification string   `json:"specification" yaml:"specification"`
	Level         Level    `json:"level" yaml:"level"`
	Description   string   `json:"description" yaml:"description"`
	Message       string   `json:"message,omitempty" yaml:"message,omitempty"`
	Issues        []string `json:"issues,omitempty" yaml:"issues,omitempty"`
	Valid         bool     `json:"valid" yaml:"valid"`
	Skipped       bool     `json:"skipped" yaml:"skipped"`
}

// NewEntry returns the Entry for code with outcome o.
func NewEntry(code Code, o Outcome) Entry {
	return Entry{
		ID:            code.ID,
		Specification: code.Specification,
		Level:         code.Level,
		Description:   code.Description,
		Message:       o.Message,
		Issues:        append([]string(nil), o.Issues...),
		Valid:         o.Valid,
		Skipped:       o.Skipped,
	}
}

// Failed is true for invalid entries.
func (e Entry) Failed() bool { return !e.Valid }

// Passed is true for valid entries that were not skipped.
func (e Entry) Passed() bool { return e.Valid && !e.Skipped }

// Outcome returns the entry's outcome.
func (e Entry) Outcome() Outcome {
	return Outcome{
		Valid:   e.Valid,
		Skipped: e.Skipped,
		Message: e.Message,
		Issues:  append([]string(nil), e.Issues...),
	}
}

// Counts summarizes a report.
type Counts struct {
	Errors    int `json:"errors" yaml:"errors"`
	Warnings  int `json:"warnings" yaml:"warnings"`
	Successes int `json:"successes" yaml:"successes"`
	Notes     int `json:"notes" yaml:"notes"`
	Skipped   int `json:"skipped" yaml:"skipped"`
}

// Report maps rule ids to outcomes. Outcomes for the same rule are merged
// so that the first failure wins: once a rule is invalid, later outcomes for
// it only add to the entry's Issues. Report is safe for concurrent use.
type Report struct {
	lock        sync.RWMutex
	entries     map[string]*Entry
	order       []string
	packageType string
}

// NewReport returns an empty Report
func NewReport() *Report {
	return &Report{entries: map[string]*Entry{}}
}

// Add merges the outcome o for code into the report.
func (r *Report) Add(code Code, o Outcome) {
	r.add(NewEntry(code, o))
}

func (r *Report) add(e Entry) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.entries == nil {
		r.entries = map[string]*Entry{}
	}
	prev, exists := r.entries[e.ID]
	if !exists {
		r.entries[e.ID] = &e
		r.order = append(r.order, e.ID)
		return
	}
	switch {
	case !prev.Valid:
		if !e.Valid {
			if e.Message != "" {
				prev.Issues = append(prev.Issues, e.Message)
			}
			prev.Issues = append(prev.Issues, e.Issues...)
		}
	case !e.Valid:
		*prev = e
	case prev.Skipped && !e.Skipped:
		*prev = e
	}
}

// Merge adds all entries from src to r, in src's order.
func (r *Report) Merge(src *Report) {
	if src == nil || src == r {
		return
	}
	for _, e := range src.Entries() {
		r.add(e)
	}
	if pt := src.PackageType(); pt != "" && r.PackageType() == "" {
		r.SetPackageType(pt)
	}
}

// Get returns the entry for rule id.
func (r *Report) Get(id string) (Entry, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, false
	}
	cp := *e
	cp.Issues = append([]string(nil), e.Issues...)
	return cp, true
}

// Has returns true if the report includes an entry for id.
func (r *Report) Has(id string) bool {
	r.lock.RLock()
	defer r.lock.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// Entries returns a copy of all entries in the order they were first
// added.
func (r *Report) Entries() []Entry {
	r.lock.RLock()
	defer r.lock.RUnlock()
	entries := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		e := *r.entries[id]
		e.Issues = append([]string(nil), e.Issues...)
		entries = append(entries, e)
	}
	return entries
}

// Len returns the number of entries.
func (r *Report) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.order)
}

// PackageType returns the detected package type.
func (r *Report) PackageType() string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.packageType
}

func (r *Report) SetPackageType(t string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.packageType = t
}

// Counts returns the report's summary counts. Failed rules are counted as
// errors, warnings or notes by requirement level.
func (r *Report) Counts() Counts {
	var c Counts
	for _, e := range r.Entries() {
		switch {
		case e.Skipped:
			c.Skipped++
		case e.Valid:
			c.Successes++
		case e.Level == Should:
			c.Warnings++
		case e.Level == May:
			c.Notes++
		default:
			c.Errors++
		}
	}
	return c
}

// Valid is true if the report has no errors.
func (r *Report) Valid() bool {
	return r.Counts().Errors == 0
}

// Failures returns entries for failed rules, in order.
func (r *Report) Failures() []Entry {
	var failed []Entry
	for _, e := range r.Entries() {
		if !e.Valid {
			failed = append(failed, e)
		}
	}
	return failed
}
