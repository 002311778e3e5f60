package csip

import (
	"context"
	"fmt"
	"strings"

	"github.com/srerickson/eark"
	"github.com/srerickson/eark/validation"
)

// Check evaluates a rule against the state.
type Check func(ctx context.Context, s *State) validation.Outcome

// Rule is a validation Code and the Check that implements it.
type Rule struct {
	Code  validation.Code
	Check Check
	// Opens reports whether rules depending on this one should run. If nil,
	// dependents run when the outcome is valid and not skipped.
	Opens func(s *State, o validation.Outcome) bool
}

func (r Rule) opens(s *State, o validation.Outcome) bool {
	if r.Opens != nil {
		return o.Valid && !o.Skipped && r.Opens(s, o)
	}
	return o.Valid && !o.Skipped
}

// Dependency names the rule that gates another rule and the reason given
// when the gate is closed.
type Dependency struct {
	On     string
	Reason string
}

// Listener is notified as a module evaluates rules.
type Listener interface {
	ModuleStarted(module string, ruleID string)
	ModuleFinished(module string)
}

// Module is an ordered list of rules with their dependencies.
type Module struct {
	Name  string
	Rules []Rule
	// Deps maps a rule id to the rule it depends on. The dependency may be
	// an earlier rule in the module or a rule evaluated by a prior module.
	Deps map[string]Dependency
}

type closedGate struct {
	gate   string
	reason string
}

// Run evaluates the module's rules in order and returns their outcomes.
// A rule whose dependency is closed (failed, skipped, gated off, or missing)
// is not evaluated: it is reported as skipped and closes its own
// dependents. Dependencies are looked up among the rules already run with
// s, then in s.Prior. Message placeholders are resolved with s.Location().
// lis may be nil.
func (m *Module) Run(ctx context.Context, s *State, lis Listener) *validation.Report {
	results := validation.NewReport()
	open := s.gates()
	skipped := map[string]closedGate{}
	isOpen := func(id string) bool {
		if v, ok := open[id]; ok {
			return v
		}
		if s.Prior == nil {
			return false
		}
		e, ok := s.Prior.Get(id)
		return ok && e.Valid && !e.Skipped
	}
	for _, rule := range m.Rules {
		id := rule.Code.ID
		if dep, ok := m.Deps[id]; ok && !isOpen(dep.On) {
			gate := closedGate{gate: dep.On, reason: dep.Reason}
			if prev, ok := skipped[dep.On]; ok {
				gate = prev
			}
			if gate.reason == "" {
				gate.reason = fmt.Sprintf("%s is not satisfied", gate.gate)
			}
			skipped[id] = gate
			open[id] = false
			msg := fmt.Sprintf("SKIPPED in %s because %s (%s gates %s)",
				Here, gate.reason, gate.gate, strings.Join(m.Dependents(gate.gate), ", "))
			results.Add(rule.Code, s.Emit(validation.Skip(msg)))
			continue
		}
		if lis != nil {
			lis.ModuleStarted(m.Name, id)
		}
		o := m.eval(ctx, s, rule)
		results.Add(rule.Code, s.Emit(o))
		open[id] = rule.opens(s, o)
		s.Logger.V(eark.LevelDebug).Info("rule evaluated", "module", m.Name, "rule", id, "valid", o.Valid, "skipped", o.Skipped)
	}
	if lis != nil {
		lis.ModuleFinished(m.Name)
	}
	return results
}

// eval runs the rule's check. A panic in the check is reported as an invalid
// outcome.
func (m *Module) eval(ctx context.Context, s *State, rule Rule) (o validation.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			o = validation.Fail("%s could not be evaluated in %s: %v", rule.Code.ID, Here, r)
		}
	}()
	return rule.Check(ctx, s)
}

// Dependents returns the ids of rules in the module that depend, directly or
// transitively, on the rule id, in module order.
func (m *Module) Dependents(id string) []string {
	var deps []string
	for _, rule := range m.Rules {
		cur := rule.Code.ID
		for i := 0; i <= len(m.Deps); i++ {
			dep, ok := m.Deps[cur]
			if !ok {
				break
			}
			if dep.On == id {
				deps = append(deps, rule.Code.ID)
				break
			}
			cur = dep.On
		}
	}
	return deps
}

// IDs returns the ids of the module's rules, in order.
func (m *Module) IDs() []string {
	ids := make([]string, len(m.Rules))
	for i, r := range m.Rules {
		ids[i] = r.Code.ID
	}
	return ids
}
