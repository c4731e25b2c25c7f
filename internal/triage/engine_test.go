package triage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medassist/offline-triage/internal/domain/entities"
)

func input(symptoms string, vitals entities.VitalSigns) entities.DiagnosisInput {
	return entities.DiagnosisInput{SymptomsText: symptoms, Vitals: vitals, Language: "en"}
}

func differential(record entities.DiagnosisRecord, condition string) (entities.DifferentialDiagnosis, bool) {
	for _, d := range record.DifferentialDiagnoses {
		if d.Condition == condition {
			return d, true
		}
	}
	return entities.DifferentialDiagnosis{}, false
}

func TestEngine_EmergencyShortCircuits(t *testing.T) {
	emergencies := []entities.VitalSigns{
		{OxygenSaturation: entities.Reading(85)},
		{TemperatureF: entities.Reading(105)},
		{HeartRate: entities.Reading(130), BloodPressure: "180/110"},
	}

	for _, vitals := range emergencies {
		result := NewEngine().Evaluate(input("severe headache, diarrhea with blood, cough", vitals))

		assert.Equal(t, "Medical Emergency", result.Record.PrimaryDiagnosis)
		assert.Equal(t, 0.9, result.Record.ConfidenceScore)
		assert.True(t, result.Record.ReferralNeeded)
		assert.Equal(t, "Emergency Medicine", result.Record.ReferralSpecialty)
		assert.Equal(t, []string{RuleEmergency}, result.Fired)
		assert.Equal(t, []string{"URGENT: Seek immediate medical attention"}, result.Record.ImmediateActions)
		assert.Contains(t, result.Record.RedFlags, "Critical vital signs")
		assert.Empty(t, result.Record.DifferentialDiagnoses)
		assert.False(t, result.Record.InsufficientInformation)
	}
}

func TestEngine_EmptyInputReturnsDefault(t *testing.T) {
	for _, text := range []string{"", "   "} {
		record := Triage(input(text, entities.VitalSigns{BloodPressure: "120/80"}))

		assert.Equal(t, DefaultDiagnosis, record.PrimaryDiagnosis)
		assert.Equal(t, DefaultConfidence, record.ConfidenceScore)
		assert.False(t, record.ReferralNeeded)
		assert.Empty(t, record.RedFlags)
		assert.True(t, record.InsufficientInformation)
		assert.Contains(t, record.ImmediateActions, "Provide a detailed description of symptoms")
		assert.Equal(t, entities.SourceRuleEngine, record.Source)
	}
}

func TestEngine_UnrecognizedSymptomsReturnDefault(t *testing.T) {
	record := Triage(input("feeling a bit off today", entities.VitalSigns{}))

	assert.Equal(t, DefaultDiagnosis, record.PrimaryDiagnosis)
	assert.Equal(t, DefaultConfidence, record.ConfidenceScore)
	assert.True(t, record.InsufficientInformation)
}

func TestEngine_LaterRuleConfidenceWins(t *testing.T) {
	tests := []struct {
		name       string
		bp         string
		confidence float64
		redFlag    bool
	}{
		{"stage 1", "150/95", 0.75, false},
		{"stage 2", "170/100", 0.8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewEngine().Evaluate(input("fever", entities.VitalSigns{
				TemperatureF:  entities.Reading(101),
				BloodPressure: tt.bp,
			}))

			assert.Equal(t, []string{RuleFever, RuleHypertension}, result.Fired)
			assert.Equal(t, "Hypertension", result.Record.PrimaryDiagnosis)
			assert.Equal(t, tt.confidence, result.Record.ConfidenceScore)
			assert.True(t, result.Record.ReferralNeeded)
			assert.Equal(t, "Internal Medicine", result.Record.ReferralSpecialty)
			if tt.redFlag {
				assert.Contains(t, result.Record.RedFlags, "Systolic blood pressure above 160 mmHg")
			}
		})
	}
}

func TestEngine_DengueScenario(t *testing.T) {
	record := Triage(input("high fever joint pain rash", entities.VitalSigns{TemperatureF: entities.Reading(103.5)}))

	assert.Equal(t, "High Fever - Possible Severe Infection", record.PrimaryDiagnosis)
	assert.Equal(t, 0.7, record.ConfidenceScore)
	assert.True(t, record.ReferralNeeded)

	dengue, ok := differential(record, "Dengue Fever")
	require.True(t, ok)
	assert.Equal(t, 0.6, dengue.Probability)
}

func TestEngine_MalariaDifferential(t *testing.T) {
	record := Triage(input("fever with chills and sweating", entities.VitalSigns{}))

	assert.Equal(t, "Viral Fever", record.PrimaryDiagnosis)
	malaria, ok := differential(record, "Malaria")
	require.True(t, ok)
	assert.Equal(t, 0.5, malaria.Probability)
	assert.True(t, record.ReferralNeeded)
	assert.NotEmpty(t, record.ReferralSpecialty)
}

func TestEngine_MeasuredFeverWithoutKeywords(t *testing.T) {
	record := Triage(input("body ache", entities.VitalSigns{TemperatureF: entities.Reading(100.8)}))

	assert.Equal(t, "Viral Fever", record.PrimaryDiagnosis)
}

func TestEngine_BloodyDiarrheaScenario(t *testing.T) {
	record := Triage(input("diarrhea blood", entities.VitalSigns{}))

	assert.Equal(t, "Acute Gastroenteritis", record.PrimaryDiagnosis)
	assert.True(t, record.ReferralNeeded)
	assert.Contains(t, record.RedFlags, "Blood in stool")
	assert.Contains(t, record.TreatmentProtocol.Medications, entities.Medication{
		Name: "Ciprofloxacin", Dosage: "500mg", Frequency: "Twice daily", Duration: "3 days (after stool examination)",
	})
}

func TestEngine_PlainGastroenteritisHasNoReferral(t *testing.T) {
	record := Triage(input("vomiting and loose stool", entities.VitalSigns{}))

	assert.Equal(t, "Acute Gastroenteritis", record.PrimaryDiagnosis)
	assert.Equal(t, 0.75, record.ConfidenceScore)
	assert.False(t, record.ReferralNeeded)
}

func TestEngine_Respiratory(t *testing.T) {
	cold := Triage(input("cough and runny nose", entities.VitalSigns{}))
	assert.Equal(t, "Common Cold (Upper Respiratory Tract Infection)", cold.PrimaryDiagnosis)
	assert.False(t, cold.ReferralNeeded)

	pneumonia := Triage(input("cough with difficulty breathing", entities.VitalSigns{}))
	assert.Equal(t, "Pneumonia (Suspected)", pneumonia.PrimaryDiagnosis)
	assert.Equal(t, 0.65, pneumonia.ConfidenceScore)
	assert.Equal(t, "Pulmonology", pneumonia.ReferralSpecialty)
	assert.Contains(t, pneumonia.RedFlags, "Difficulty breathing")
}

func TestEngine_SuspectedTuberculosis(t *testing.T) {
	tests := []struct {
		symptoms string
		redFlag  string
	}{
		{"persistent cough with blood", "Coughing up blood"},
		{"cough and weight loss", "Cough with unexplained weight loss"},
		{"chronic cough for a month", "Persistent cough"},
		{"खांसी में खून", "Coughing up blood"},
	}

	for _, tt := range tests {
		t.Run(tt.symptoms, func(t *testing.T) {
			record := Triage(input(tt.symptoms, entities.VitalSigns{}))

			assert.Equal(t, "Tuberculosis (Suspected)", record.PrimaryDiagnosis)
			assert.Equal(t, 0.6, record.ConfidenceScore)
			assert.True(t, record.ReferralNeeded)
			assert.Equal(t, "Pulmonology", record.ReferralSpecialty)
			assert.Contains(t, record.RedFlags, tt.redFlag)
			assert.Contains(t, record.ImmediateActions, "Sputum test for TB")
		})
	}

	// Breathing difficulty still takes the pneumonia branch.
	pneumonia := Triage(input("persistent cough and shortness of breath", entities.VitalSigns{}))
	assert.Equal(t, "Pneumonia (Suspected)", pneumonia.PrimaryDiagnosis)
}

func TestEngine_JaundicePhrasings(t *testing.T) {
	for _, symptoms := range []string{"my eyes are yellow", "skin turned yellow"} {
		record := Triage(input(symptoms, entities.VitalSigns{}))
		assert.Equal(t, "Jaundice - Liver Function Issue", record.PrimaryDiagnosis, symptoms)
		assert.True(t, record.ReferralNeeded, symptoms)
	}
}

func TestEngine_HindiHighFeverIsNotSevere(t *testing.T) {
	headache := Triage(entities.DiagnosisInput{SymptomsText: "तेज बुखार और सिरदर्द", Language: "hi"})
	assert.Equal(t, "Tension Headache", headache.PrimaryDiagnosis)
	assert.NotEqual(t, "Neurology", headache.ReferralSpecialty)

	gastro := Triage(entities.DiagnosisInput{SymptomsText: "तेज बुखार और दस्त", Language: "hi"})
	assert.Equal(t, "Acute Gastroenteritis", gastro.PrimaryDiagnosis)
	assert.NotContains(t, gastro.RedFlags, "Severe dehydration risk")
	assert.NotEqual(t, "Gastroenterology", gastro.ReferralSpecialty)
}

func TestEngine_NonFiniteVitalsAreUnknown(t *testing.T) {
	record := Triage(input("headache", entities.VitalSigns{
		HeartRate:        entities.ParseMeasurement("inf"),
		TemperatureF:     entities.ParseMeasurement("NaN"),
		OxygenSaturation: entities.ParseMeasurement("-Inf"),
	}))

	assert.Equal(t, "Tension Headache", record.PrimaryDiagnosis)
	assert.False(t, record.ReferralNeeded)
}

func TestEngine_Headache(t *testing.T) {
	tension := Triage(input("headache", entities.VitalSigns{}))
	assert.Equal(t, "Tension Headache", tension.PrimaryDiagnosis)
	assert.False(t, tension.ReferralNeeded)

	severe := Triage(input("sudden severe headache with blurred vision", entities.VitalSigns{}))
	assert.Equal(t, "Severe Headache - Requires Evaluation", severe.PrimaryDiagnosis)
	assert.Equal(t, "Neurology", severe.ReferralSpecialty)
	assert.Contains(t, severe.RedFlags, "Headache with visual disturbance")
}

func TestEngine_Metabolic(t *testing.T) {
	record := Triage(input("excessive thirst", entities.VitalSigns{}))
	assert.Equal(t, "Diabetes (Suspected)", record.PrimaryDiagnosis)
	assert.Equal(t, "Endocrinology", record.ReferralSpecialty)

	record = Triage(input("weight loss and fatigue", entities.VitalSigns{}))
	assert.Equal(t, "Diabetes (Suspected)", record.PrimaryDiagnosis)
	_, ok := differential(record, "Diabetes Mellitus")
	assert.True(t, ok)
	_, ok = differential(record, "Anemia")
	assert.True(t, ok)

	// A prior diagnosis is kept; the screening is added as a differential.
	record = Triage(input("headache and frequent urination", entities.VitalSigns{}))
	assert.Equal(t, "Tension Headache", record.PrimaryDiagnosis)
	_, ok = differential(record, "Diabetes Mellitus")
	assert.True(t, ok)
	assert.True(t, record.ReferralNeeded)
}

func TestEngine_SupplementaryRules(t *testing.T) {
	typhoid := Triage(input("fever with abdominal pain", entities.VitalSigns{}))
	assert.Equal(t, "Typhoid Fever (Suspected)", typhoid.PrimaryDiagnosis)
	assert.Equal(t, 0.6, typhoid.ConfidenceScore)

	jaundice := Triage(input("yellow eyes and dark urine", entities.VitalSigns{}))
	assert.Equal(t, "Jaundice - Liver Function Issue", jaundice.PrimaryDiagnosis)
	assert.True(t, jaundice.ReferralNeeded)

	anemia := Triage(input("weakness and pale skin", entities.VitalSigns{}))
	assert.Equal(t, "Anemia (Suspected)", anemia.PrimaryDiagnosis)
	assert.Equal(t, 0.55, anemia.ConfidenceScore)
}

func TestEngine_MyalgiaOnlyWhenUndiagnosed(t *testing.T) {
	record := Triage(input("body ache", entities.VitalSigns{}))
	assert.Equal(t, "Myalgia - Generalized Body Ache", record.PrimaryDiagnosis)
	assert.Equal(t, 0.5, record.ConfidenceScore)

	record = Triage(input("cough and body ache", entities.VitalSigns{}))
	assert.Equal(t, "Common Cold (Upper Respiratory Tract Infection)", record.PrimaryDiagnosis)
}

func TestEngine_LiteralRuleOrder(t *testing.T) {
	// A later, milder rule overwrites an earlier diagnosis; the earlier
	// referral and red flags survive.
	result := NewEngine().Evaluate(input("difficulty breathing and diarrhea", entities.VitalSigns{}))

	assert.Equal(t, []string{RuleRespiratory, RuleGastro}, result.Fired)
	assert.Equal(t, "Acute Gastroenteritis", result.Record.PrimaryDiagnosis)
	assert.Equal(t, 0.75, result.Record.ConfidenceScore)
	assert.True(t, result.Record.ReferralNeeded)
	assert.Contains(t, result.Record.RedFlags, "Difficulty breathing")
}

func TestEngine_RulesOrder(t *testing.T) {
	assert.Equal(t, []string{
		RuleEmergency, RuleFever, RuleRespiratory, RuleGastro, RuleHeadache, RuleMetabolic,
		RuleEntericFever, RuleHepatic, RuleHematologic, RuleHypertension, RuleMyalgia,
	}, NewEngine().Rules())
}

func TestEngine_ReferralInvariants(t *testing.T) {
	inputs := []entities.DiagnosisInput{
		input("", entities.VitalSigns{}),
		input("fever", entities.VitalSigns{TemperatureF: entities.Reading(103.6)}),
		input("fever with joint pain and bleeding gums", entities.VitalSigns{}),
		input("fever chills", entities.VitalSigns{}),
		input("cough, shortness of breath, chest pain", entities.VitalSigns{BloodPressure: "165/100"}),
		input("severe diarrhea", entities.VitalSigns{}),
		input("confused, headache", entities.VitalSigns{}),
		input("thirst, tired, weight loss", entities.VitalSigns{}),
		input("typhoid", entities.VitalSigns{}),
		input("jaundice", entities.VitalSigns{}),
		input("palpitations", entities.VitalSigns{BloodPressure: "145/90"}),
		input("muscle pain", entities.VitalSigns{}),
		input("persistent cough with blood", entities.VitalSigns{}),
		input("fever", entities.VitalSigns{HeartRate: entities.ParseMeasurement("150 bpm")}),
	}

	for _, in := range inputs {
		record := Triage(in)
		if record.ReferralNeeded {
			assert.True(t, len(record.RedFlags) > 0 || record.ReferralSpecialty != "",
				"%q: referral without a reason", in.SymptomsText)
		}
		if len(record.RedFlags) > 0 {
			assert.True(t, record.ReferralNeeded, "%q: red flag without referral", in.SymptomsText)
		}
		assert.GreaterOrEqual(t, record.ConfidenceScore, 0.0)
		assert.LessOrEqual(t, record.ConfidenceScore, 1.0)
		assert.NotNil(t, record.DifferentialDiagnoses)
		assert.NotNil(t, record.RedFlags)
		assert.NotNil(t, record.TreatmentProtocol.Medications)
		assert.Empty(t, record.PatientExplanation)
	}
}

func TestEngine_CustomTable(t *testing.T) {
	engine := NewEngineWithRules([]Rule{{
		Name: "always",
		When: func(*Assessment) bool { return true },
		Then: func(a *Assessment) {
			a.Diagnose("Custom", 0.42)
			a.FollowUp("Review in 3 days")
		},
	}})

	record := engine.Triage(input("anything", entities.VitalSigns{}))
	assert.Equal(t, "Custom", record.PrimaryDiagnosis)
	assert.Equal(t, 0.42, record.ConfidenceScore)
	assert.Equal(t, "Review in 3 days", record.TreatmentProtocol.FollowUp)
}

func TestEngine_ConcurrentUse(t *testing.T) {
	engine := NewEngine()
	want := engine.Triage(input("fever joint pain", entities.VitalSigns{TemperatureF: entities.Reading(102)}))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := engine.Triage(input("fever joint pain", entities.VitalSigns{TemperatureF: entities.Reading(102)}))
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}
