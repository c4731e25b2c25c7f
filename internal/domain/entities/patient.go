package entities

import "time"

// Patient carries the demographic fields sent on registration.
type Patient struct {
	ID      string  `json:"patient_id"`
	Name    string  `json:"name"`
	Age     float64 `json:"age,omitempty"`
	Gender  string  `json:"gender,omitempty"`
	Contact string  `json:"contact,omitempty"`
}

// HistoryEntry is one past determination for a patient.
type HistoryEntry struct {
	Date            time.Time       `json:"date"`
	Symptoms        string          `json:"symptoms"`
	Diagnosis       string          `json:"diagnosis"`
	ConfidenceScore float64         `json:"confidence_score"`
	ReferralNeeded  bool            `json:"referral_needed"`
	Source          DiagnosisSource `json:"source,omitempty"`
}

// StatusResponse is the generic {status, message} envelope of the remote API.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HistoryResponse is the envelope of GET /patient/history/{id}.
type HistoryResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	History []HistoryEntry `json:"history"`
	Offline bool           `json:"offline,omitempty"`
}

// HealthResponse is the envelope of GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	ModelAvailable bool   `json:"model_available"`
}

// TriageAudit is a locally recorded offline determination, kept so it can be
// disclosed in history and reconciled once the backend is reachable again.
type TriageAudit struct {
	ID               string          `json:"id" db:"id"`
	PatientID        string          `json:"patient_id" db:"patient_id"`
	Symptoms         string          `json:"symptoms" db:"symptoms"`
	Language         LanguageCode    `json:"language" db:"language"`
	PrimaryDiagnosis string          `json:"primary_diagnosis" db:"primary_diagnosis"`
	ConfidenceScore  float64         `json:"confidence_score" db:"confidence_score"`
	ReferralNeeded   bool            `json:"referral_needed" db:"referral_needed"`
	Source           DiagnosisSource `json:"source" db:"source"`
	Record           DiagnosisRecord `json:"record" db:"record"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// HistoryEntry projects the audit row onto the history wire shape.
func (a TriageAudit) HistoryEntry() HistoryEntry {
	return HistoryEntry{
		Date:            a.CreatedAt,
		Symptoms:        a.Symptoms,
		Diagnosis:       a.PrimaryDiagnosis,
		ConfidenceScore: a.ConfidenceScore,
		ReferralNeeded:  a.ReferralNeeded,
		Source:          a.Source,
	}
}
