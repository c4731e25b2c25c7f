package triage

import "github.com/medassist/offline-triage/internal/domain/entities"

// Rule is one entry of the triage table. Rules run in table order; each
// matching rule may overwrite the primary diagnosis set by an earlier one.
type Rule struct {
	Name string
	When func(a *Assessment) bool
	Then func(a *Assessment)

	// Final stops the pipeline once the rule has applied.
	Final bool
}

// Rule names, in evaluation order.
const (
	RuleEmergency    = "emergency"
	RuleFever        = "fever"
	RuleRespiratory  = "respiratory"
	RuleGastro       = "gastrointestinal"
	RuleHeadache     = "headache"
	RuleMetabolic    = "metabolic"
	RuleEntericFever = "enteric_fever"
	RuleHepatic      = "hepatic"
	RuleHematologic  = "hematologic"
	RuleHypertension = "hypertension"
	RuleMyalgia      = "myalgia"
)

var paracetamol = entities.Medication{Name: "Paracetamol", Dosage: "500mg", Frequency: "Every 6-8 hours", Duration: "3-5 days"}

// DefaultRules returns the triage table in its mandatory order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:  RuleEmergency,
			When:  func(a *Assessment) bool { return a.Vitals.Emergency },
			Then:  emergency,
			Final: true,
		},
		{
			Name: RuleFever,
			When: func(a *Assessment) bool {
				return a.Symptoms.Has(CategoryFever) || a.Vitals.HighFever || a.Vitals.ModerateFever
			},
			Then: fever,
		},
		{
			Name: RuleRespiratory,
			When: func(a *Assessment) bool {
				return a.Symptoms.Any(CategoryRespiratory, CategoryBreathingDifficulty)
			},
			Then: respiratory,
		},
		{
			Name: RuleGastro,
			When: func(a *Assessment) bool { return a.Symptoms.Has(CategoryGastrointestinal) },
			Then: gastrointestinal,
		},
		{
			Name: RuleHeadache,
			When: func(a *Assessment) bool { return a.Symptoms.Has(CategoryHeadache) },
			Then: headache,
		},
		{
			Name: RuleMetabolic,
			When: func(a *Assessment) bool {
				return a.Symptoms.Has(CategoryMetabolic) ||
					(a.Symptoms.Has(CategoryWeightLoss) && a.Symptoms.Has(CategoryFatigue))
			},
			Then: metabolic,
		},
		{
			Name: RuleEntericFever,
			When: func(a *Assessment) bool {
				return a.Symptoms.Has(CategoryTyphoid) ||
					(a.Symptoms.Has(CategoryFever) && a.Symptoms.Has(CategoryAbdominalPain))
			},
			Then: entericFever,
		},
		{
			Name: RuleHepatic,
			When: func(a *Assessment) bool { return a.Symptoms.Has(CategoryHepatic) },
			Then: hepatic,
		},
		{
			Name: RuleHematologic,
			When: func(a *Assessment) bool { return a.Symptoms.Has(CategoryHematologic) },
			Then: hematologic,
		},
		{
			Name: RuleHypertension,
			When: func(a *Assessment) bool { return a.Vitals.Hypertensive },
			Then: hypertension,
		},
		{
			Name: RuleMyalgia,
			When: func(a *Assessment) bool {
				return !a.Diagnosed() && a.Symptoms.Has(CategoryMyalgia)
			},
			Then: myalgia,
		},
	}
}

func emergency(a *Assessment) {
	a.Diagnose("Medical Emergency", 0.9)
	a.Record.ImmediateActions = []string{"URGENT: Seek immediate medical attention"}
	a.Record.TreatmentProtocol.LifestyleAdvice = []string{}
	a.Refer("Emergency Medicine", "Critical vital signs")
	a.Flag(a.Vitals.Reasons...)
}

func fever(a *Assessment) {
	if a.Vitals.HighFever {
		a.Diagnose("High Fever - Possible Severe Infection", 0.7)
		a.Prescribe(entities.Medication{Name: "Paracetamol", Dosage: "500-1000mg", Frequency: "Every 6 hours", Duration: "3-5 days"})
		a.Act("Tepid sponging to bring the temperature down", "Recheck temperature every 4 hours")
		a.Refer("Internal Medicine", "Temperature above 103°F")
	} else {
		a.Diagnose("Viral Fever", 0.7)
		a.Prescribe(paracetamol)
		a.Act("Monitor temperature twice daily")
	}
	a.Advise("Drink plenty of fluids")

	if a.Symptoms.Any(CategoryJointPain, CategoryRash, CategoryBleeding) {
		a.Differential("Dengue Fever", 0.6, "Fever with joint pain, rash or bleeding")
		a.Prescribe(entities.Medication{Name: "ORS", Dosage: "200ml", Frequency: "Every 2 hours", Duration: "Until fever subsides"})
		a.Act("Blood test for dengue (NS1 antigen / IgM)", "Monitor platelet count", "Avoid aspirin and ibuprofen until dengue is ruled out")
		a.Refer("Internal Medicine", "Possible dengue: watch for bleeding gums, black stools or severe abdominal pain")
	}

	if a.Symptoms.Any(CategoryChills, CategorySweating) {
		a.Differential("Malaria", 0.5, "Fever with chills or sweating")
		a.Act("Blood smear or rapid diagnostic test for malaria")
		a.Refer("Internal Medicine")
	}
}

func respiratory(a *Assessment) {
	if a.Symptoms.Has(CategoryBreathingDifficulty) {
		a.Diagnose("Pneumonia (Suspected)", 0.65)
		a.Prescribe(entities.Medication{Name: "Amoxicillin", Dosage: "500mg", Frequency: "3 times daily", Duration: "5-7 days"})
		a.Act("Chest X-ray", "Monitor oxygen saturation")
		a.Refer("Pulmonology", "Difficulty breathing")
		return
	}

	if a.Symptoms.Any(CategoryPersistentCough, CategoryBleeding, CategoryWeightLoss) {
		a.Diagnose("Tuberculosis (Suspected)", 0.6)
		a.Act("Sputum test for TB", "Chest X-ray", "Start DOTS therapy if confirmed")
		switch {
		case a.Symptoms.Has(CategoryBleeding):
			a.Refer("Pulmonology", "Coughing up blood")
		case a.Symptoms.Has(CategoryWeightLoss):
			a.Refer("Pulmonology", "Cough with unexplained weight loss")
		default:
			a.Refer("Pulmonology", "Persistent cough")
		}
		return
	}

	a.Diagnose("Common Cold (Upper Respiratory Tract Infection)", 0.75)
	a.Prescribe(
		entities.Medication{Name: "Cetirizine", Dosage: "10mg", Frequency: "Once daily", Duration: "3-5 days"},
		entities.Medication{Name: "Steam inhalation", Dosage: "5-10 minutes", Frequency: "2-3 times daily", Duration: "5 days"},
	)
	a.Advise("Warm fluids and salt-water gargles")
}

func gastrointestinal(a *Assessment) {
	a.Diagnose("Acute Gastroenteritis", 0.75)
	a.Prescribe(
		entities.Medication{Name: "ORS", Dosage: "200-400ml", Frequency: "After each loose stool", Duration: "Until diarrhea stops"},
		entities.Medication{Name: "Zinc supplements", Dosage: "20mg", Frequency: "Once daily", Duration: "10-14 days"},
	)
	a.Act("Start ORS immediately", "Monitor for dehydration")

	if a.Symptoms.Any(CategoryBleeding, CategorySevere) {
		if a.Symptoms.Has(CategoryBleeding) {
			a.Flag("Blood in stool")
		}
		a.Refer("Gastroenterology", "Severe dehydration risk")
		a.Prescribe(entities.Medication{Name: "Ciprofloxacin", Dosage: "500mg", Frequency: "Twice daily", Duration: "3 days (after stool examination)"})
		a.Act("Stool examination")
	}
}

func headache(a *Assessment) {
	if a.Symptoms.Any(CategorySevere, CategorySudden, CategoryVision, CategoryConfusion) {
		a.Diagnose("Severe Headache - Requires Evaluation", 0.6)
		a.Refer("Neurology", "Sudden or severe headache")
		if a.Symptoms.Has(CategoryVision) {
			a.Flag("Headache with visual disturbance")
		}
		if a.Symptoms.Has(CategoryConfusion) {
			a.Flag("Headache with confusion")
		}
		a.Act("Urgent neurological assessment")
		return
	}

	a.Diagnose("Tension Headache", 0.65)
	a.Prescribe(entities.Medication{Name: "Paracetamol", Dosage: "500mg", Frequency: "Every 6 hours as needed", Duration: "2-3 days"})
	a.Advise("Regular sleep and breaks from screens")
}

func metabolic(a *Assessment) {
	a.Differential("Diabetes Mellitus", 0.6, "Thirst or frequent urination, or weight loss with fatigue")
	if !a.Diagnosed() {
		a.Diagnose("Diabetes (Suspected)", 0.6)
	}
	a.Act("Fasting blood sugar test", "HbA1c test")
	a.Refer("Endocrinology")
}

func entericFever(a *Assessment) {
	a.Diagnose("Typhoid Fever (Suspected)", 0.6)
	a.Act("Widal test", "Blood culture")
	a.Advise("Drink only boiled or treated water")
	a.Refer("Internal Medicine")
}

func hepatic(a *Assessment) {
	a.Diagnose("Jaundice - Liver Function Issue", 0.65)
	a.Act("Liver function test", "Bilirubin test", "Avoid fatty foods and alcohol")
	a.Refer("Gastroenterology", "Yellowing of skin or eyes")
}

func hematologic(a *Assessment) {
	a.Differential("Anemia", 0.4, "Weakness, pallor or fatigue")
	a.Act("Complete blood count test")
	if a.Diagnosed() {
		return
	}
	a.Diagnose("Anemia (Suspected)", 0.55)
	a.Prescribe(entities.Medication{Name: "Iron supplements", Dosage: "100mg", Frequency: "Once daily", Duration: "3 months"})
	a.Advise("Increase iron-rich foods")
}

func hypertension(a *Assessment) {
	confidence := 0.75
	if a.Vitals.Systolic > Stage2Systolic {
		confidence = 0.8
		a.Flag("Systolic blood pressure above 160 mmHg")
	}
	a.Diagnose("Hypertension", confidence)
	a.Act("Regular BP monitoring", "Reduce salt intake")
	a.Refer("Internal Medicine")

	if a.Symptoms.Has(CategoryCardiovascular) {
		a.Flag("Chest pain or palpitations with raised blood pressure")
	}
}

func myalgia(a *Assessment) {
	a.Diagnose("Myalgia - Generalized Body Ache", 0.5)
	a.Prescribe(paracetamol)
	a.Advise("Gentle stretching and warm compresses")
}
