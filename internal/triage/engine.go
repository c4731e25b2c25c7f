// Package triage is the offline diagnostic core: vital-sign evaluation,
// multilingual symptom classification, the ordered rule table and the
// patient-facing localizer. Everything here is pure and safe for concurrent use.
package triage

import "github.com/medassist/offline-triage/internal/domain/entities"

// Engine evaluates an ordered rule table.
type Engine struct {
	rules []Rule
}

// Result is a determination plus the trace of how it was reached.
type Result struct {
	Record   entities.DiagnosisRecord
	Fired    []string
	Symptoms SymptomSet
	Vitals   VitalFlags
}

// NewEngine returns an engine over DefaultRules.
func NewEngine() *Engine {
	return NewEngineWithRules(DefaultRules())
}

// NewEngineWithRules returns an engine over a custom table.
func NewEngineWithRules(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the rule names in evaluation order.
func (e *Engine) Rules() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// Triage produces a determination for input. The patient explanation is left
// empty; see Localize.
func (e *Engine) Triage(input entities.DiagnosisInput) entities.DiagnosisRecord {
	return e.Evaluate(input).Record
}

// Evaluate runs the pipeline and reports which rules fired.
func (e *Engine) Evaluate(input entities.DiagnosisInput) Result {
	a := newAssessment(Facts{
		Input:    input,
		Symptoms: ClassifySymptoms(input.SymptomsText, input.Language),
		Vitals:   EvaluateVitals(input.Vitals),
	})

	stopped := false
	for _, rule := range e.rules {
		if !rule.When(a) {
			continue
		}
		rule.Then(a)
		a.fired = append(a.fired, rule.Name)
		if rule.Final {
			stopped = true
			break
		}
	}

	if !stopped && len(a.Symptoms) == 0 {
		a.Record.InsufficientInformation = true
		a.Act("Provide a detailed description of symptoms")
	}
	if len(a.Record.RedFlags) > 0 {
		a.Record.ReferralNeeded = true
	}

	return Result{
		Record:   a.Record,
		Fired:    a.fired,
		Symptoms: a.Symptoms,
		Vitals:   a.Vitals,
	}
}

var defaultEngine = NewEngine()

// Triage runs the default rule table.
func Triage(input entities.DiagnosisInput) entities.DiagnosisRecord {
	return defaultEngine.Triage(input)
}
