package triage

import (
	"slices"

	"github.com/medassist/offline-triage/internal/domain/entities"
)

// DefaultDiagnosis is the primary diagnosis when no rule sets one.
const (
	DefaultDiagnosis  = "General Malaise - Requires Examination"
	DefaultConfidence = 0.3
)

// Facts are the classified inputs every rule reads.
type Facts struct {
	Input    entities.DiagnosisInput
	Symptoms SymptomSet
	Vitals   VitalFlags
}

// Assessment is the record under construction plus the bookkeeping the
// pipeline needs. Rules mutate it only through its methods.
type Assessment struct {
	Facts
	Record entities.DiagnosisRecord

	diagnosed bool
	fired     []string
}

func newAssessment(f Facts) *Assessment {
	return &Assessment{
		Facts: f,
		Record: entities.DiagnosisRecord{
			PrimaryDiagnosis:      DefaultDiagnosis,
			ConfidenceScore:       DefaultConfidence,
			DifferentialDiagnoses: []entities.DifferentialDiagnosis{},
			ImmediateActions: []string{
				"Monitor symptoms",
				"Seek medical attention if symptoms worsen",
			},
			TreatmentProtocol: entities.TreatmentProtocol{
				Medications: []entities.Medication{},
				LifestyleAdvice: []string{
					"Rest adequately",
					"Stay hydrated",
					"Eat nutritious food",
					"Monitor symptoms",
				},
			},
			RedFlags: []string{},
			Source:   entities.SourceRuleEngine,
		},
	}
}

// Diagnosed reports whether any rule has replaced the default diagnosis.
func (a *Assessment) Diagnosed() bool {
	return a.diagnosed
}

// Diagnose overwrites the primary diagnosis together with its confidence.
func (a *Assessment) Diagnose(condition string, confidence float64) {
	a.Record.PrimaryDiagnosis = condition
	a.Record.ConfidenceScore = confidence
	a.diagnosed = true
}

// Refer marks the record for referral. A referral always names a specialty.
func (a *Assessment) Refer(specialty string, redFlags ...string) {
	a.Record.ReferralNeeded = true
	if specialty != "" {
		a.Record.ReferralSpecialty = specialty
	}
	a.Flag(redFlags...)
}

// Flag appends warning signs; a red flag always implies referral.
func (a *Assessment) Flag(redFlags ...string) {
	for _, f := range redFlags {
		if !slices.Contains(a.Record.RedFlags, f) {
			a.Record.RedFlags = append(a.Record.RedFlags, f)
		}
	}
	if len(a.Record.RedFlags) > 0 {
		a.Record.ReferralNeeded = true
	}
}

// Differential adds an alternative condition.
func (a *Assessment) Differential(condition string, probability float64, reasoning string) {
	for _, d := range a.Record.DifferentialDiagnoses {
		if d.Condition == condition {
			return
		}
	}
	a.Record.DifferentialDiagnoses = append(a.Record.DifferentialDiagnoses, entities.DifferentialDiagnosis{
		Condition:   condition,
		Probability: probability,
		Reasoning:   reasoning,
	})
}

// Act appends immediate actions, skipping ones already present.
func (a *Assessment) Act(actions ...string) {
	for _, act := range actions {
		if !slices.Contains(a.Record.ImmediateActions, act) {
			a.Record.ImmediateActions = append(a.Record.ImmediateActions, act)
		}
	}
}

// Prescribe appends medication lines; a drug already listed keeps its first line.
func (a *Assessment) Prescribe(meds ...entities.Medication) {
	for _, m := range meds {
		if !slices.ContainsFunc(a.Record.TreatmentProtocol.Medications, func(existing entities.Medication) bool {
			return existing.Name == m.Name
		}) {
			a.Record.TreatmentProtocol.Medications = append(a.Record.TreatmentProtocol.Medications, m)
		}
	}
}

// Advise appends lifestyle advice.
func (a *Assessment) Advise(advice ...string) {
	for _, adv := range advice {
		if !slices.Contains(a.Record.TreatmentProtocol.LifestyleAdvice, adv) {
			a.Record.TreatmentProtocol.LifestyleAdvice = append(a.Record.TreatmentProtocol.LifestyleAdvice, adv)
		}
	}
}

// FollowUp sets the follow-up instruction.
func (a *Assessment) FollowUp(text string) {
	a.Record.TreatmentProtocol.FollowUp = text
}
