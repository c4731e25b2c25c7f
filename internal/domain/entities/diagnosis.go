package entities

import "slices"

// LanguageCode identifies a supported patient-facing language ("en", "hi", ...).
type LanguageCode string

// DiagnosisSource records which engine produced a determination.
type DiagnosisSource string

const (
	// SourceRemoteModel marks a determination returned by the remote AI backend.
	SourceRemoteModel DiagnosisSource = "remote_model"
	// SourceRuleEngine marks a determination computed locally by the rule engine.
	SourceRuleEngine DiagnosisSource = "rule_engine"
)

// DiagnosisInput is one triage request as collected by the UI.
type DiagnosisInput struct {
	PatientID      string       `json:"patient_id,omitempty"`
	SymptomsText   string       `json:"symptoms"`
	Vitals         VitalSigns   `json:"vital_signs"`
	MedicalHistory string       `json:"medical_history,omitempty"`
	Language       LanguageCode `json:"language,omitempty"`
	Age            float64      `json:"age,omitempty"`
	Weight         float64      `json:"weight,omitempty"`
	Gender         string       `json:"gender,omitempty"`
}

// DifferentialDiagnosis is an alternative condition worth ruling out.
type DifferentialDiagnosis struct {
	Condition   string  `json:"condition"`
	Probability float64 `json:"probability"`
	Reasoning   string  `json:"reasoning,omitempty"`
}

// Medication is one line of a treatment protocol.
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

// TreatmentProtocol groups medications and supportive advice.
type TreatmentProtocol struct {
	Medications     []Medication `json:"medications"`
	LifestyleAdvice []string     `json:"lifestyle_advice"`
	FollowUp        string       `json:"follow_up,omitempty"`
}

// DiagnosisRecord is the structured result of a triage.
type DiagnosisRecord struct {
	PrimaryDiagnosis        string                  `json:"primary_diagnosis"`
	ConfidenceScore         float64                 `json:"confidence_score"`
	DifferentialDiagnoses   []DifferentialDiagnosis `json:"differential_diagnoses"`
	ImmediateActions        []string                `json:"immediate_actions"`
	TreatmentProtocol       TreatmentProtocol       `json:"treatment_protocol"`
	ReferralNeeded          bool                    `json:"referral_needed"`
	ReferralSpecialty       string                  `json:"referral_specialty,omitempty"`
	RedFlags                []string                `json:"red_flags"`
	PatientExplanation      string                  `json:"patient_explanation"`
	Source                  DiagnosisSource         `json:"source,omitempty"`
	Offline                 bool                    `json:"offline,omitempty"`
	InsufficientInformation bool                    `json:"insufficient_information,omitempty"`
}

// Clone returns a deep copy of the record.
func (r DiagnosisRecord) Clone() DiagnosisRecord {
	out := r
	out.DifferentialDiagnoses = slices.Clone(r.DifferentialDiagnoses)
	out.ImmediateActions = slices.Clone(r.ImmediateActions)
	out.RedFlags = slices.Clone(r.RedFlags)
	out.TreatmentProtocol.Medications = slices.Clone(r.TreatmentProtocol.Medications)
	out.TreatmentProtocol.LifestyleAdvice = slices.Clone(r.TreatmentProtocol.LifestyleAdvice)
	return out
}

// DiagnosisResponse is the envelope exchanged on POST /diagnose.
type DiagnosisResponse struct {
	Status                string           `json:"status"`
	Message               string           `json:"message,omitempty"`
	Diagnosis             *DiagnosisRecord `json:"diagnosis,omitempty"`
	DrugInteractions      []any            `json:"drug_interactions"`
	DosageRecommendations []any            `json:"dosage_recommendations"`
	Offline               bool             `json:"offline,omitempty"`
	CachedDetermination   *DiagnosisRecord `json:"cached_determination,omitempty"`
}
