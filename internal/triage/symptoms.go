package triage

import (
	"sort"
	"strings"

	"github.com/medassist/offline-triage/internal/domain/entities"
)

// SymptomCategory is a recognized clinical term group.
type SymptomCategory string

const (
	CategoryFever               SymptomCategory = "fever"
	CategoryRespiratory         SymptomCategory = "respiratory"
	CategoryBreathingDifficulty SymptomCategory = "breathing_difficulty"
	CategoryPersistentCough     SymptomCategory = "persistent_cough"
	CategoryGastrointestinal    SymptomCategory = "gastrointestinal"
	CategoryAbdominalPain       SymptomCategory = "abdominal_pain"
	CategoryHeadache            SymptomCategory = "headache"
	CategoryMetabolic           SymptomCategory = "metabolic"
	CategoryWeightLoss          SymptomCategory = "weight_loss"
	CategoryFatigue             SymptomCategory = "fatigue"
	CategoryCardiovascular      SymptomCategory = "cardiovascular"
	CategoryHepatic             SymptomCategory = "hepatic"
	CategoryHematologic         SymptomCategory = "hematologic"
	CategoryJointPain           SymptomCategory = "joint_pain"
	CategoryRash                SymptomCategory = "rash"
	CategoryBleeding            SymptomCategory = "bleeding"
	CategoryChills              SymptomCategory = "chills"
	CategorySweating            SymptomCategory = "sweating"
	CategoryMyalgia             SymptomCategory = "myalgia"
	CategoryTyphoid             SymptomCategory = "typhoid"

	// Severity modifiers.
	CategorySevere    SymptomCategory = "severe"
	CategorySudden    SymptomCategory = "sudden"
	CategoryVision    SymptomCategory = "vision"
	CategoryConfusion SymptomCategory = "confusion"
)

// keywords maps each category to its terms in every supported language, so a
// single input matches regardless of the language tag it was sent with.
var keywords = map[SymptomCategory][]string{
	CategoryFever: {
		"fever", "febrile", "pyrexia",
		"बुखार", "ज्वर", "காய்ச்சல்", "జ్వరం", "জ্বর",
	},
	CategoryRespiratory: {
		"cough", "breathing", "breath", "chest pain", "sore throat", "runny nose", "common cold", "sneez", "phlegm",
		"खांसी", "सांस", "இருமல்", "மூச்சு", "దగ్గు", "శ్వాస", "কাশি", "শ্বাস",
	},
	CategoryBreathingDifficulty: {
		"difficulty breathing", "shortness of breath", "breathless", "can't breathe", "cannot breathe",
		"सांस लेने में तकलीफ", "सांस फूलना", "மூச்சுத் திணறல்", "శ్వాస ఆడకపోవడం", "শ্বাসকষ্ট",
	},
	CategoryPersistentCough: {
		"persistent cough", "chronic cough", "cough for weeks", "coughing for weeks",
		"लगातार खांसी", "पुरानी खांसी", "தொடர் இருமல்", "నిరంతర దగ్గు", "একটানা কাশি",
	},
	CategoryGastrointestinal: {
		"diarrhea", "diarrhoea", "loose stool", "vomiting", "stomach", "nausea",
		"दस्त", "उल्टी", "पेट", "வயிற்றுப்போக்கு", "வாந்தி", "విరేచనాలు", "వాంతులు", "ডায়রিয়া", "বমি",
	},
	CategoryAbdominalPain: {
		"abdominal pain", "abdominal", "belly pain", "पेट दर्द", "வயிற்று வலி", "కడుపు నొప్పి", "পেট ব্যথা",
	},
	CategoryHeadache: {
		"headache", "head pain", "migraine",
		"सिरदर्द", "सिर दर्द", "தலைவலி", "తలనొప్పి", "মাথাব্যথা", "মাথা ব্যথা",
	},
	CategoryMetabolic: {
		"excessive thirst", "thirst", "frequent urination", "urinating often",
		"अधिक प्यास", "बार-बार पेशाब", "அதிக தாகம்", "அடிக்கடி சிறுநீர்", "అధిక దాహం", "తరచుగా మూత్రవిసర్జన", "অতিরিক্ত তৃষ্ণা", "ঘন ঘন প্রস্রাব",
	},
	CategoryWeightLoss: {
		"weight loss", "losing weight", "वजन कम", "எடை இழப்பு", "బరువు తగ్గడం", "ওজন কমে",
	},
	CategoryFatigue: {
		"fatigue", "tired", "exhaust", "थकान", "சோர்வு", "అలసట", "ক্লান্তি",
	},
	CategoryCardiovascular: {
		"chest pain", "palpitation", "chest tightness", "सीने में दर्द", "நெஞ்சு வலி", "ఛాతీ నొప్పి", "বুকে ব্যথা",
	},
	CategoryHepatic: {
		"jaundice", "yellow", "dark urine", "पीलिया", "மஞ்சள் காமாலை", "కామెర్లు", "জন্ডিস",
	},
	CategoryHematologic: {
		"weakness", "pale", "pallor", "fatigue", "कमजोरी", "பலவீனம்", "బలహీనత", "দুর্বলতা",
	},
	CategoryJointPain: {
		"joint pain", "joint ache", "जोड़ों में दर्द", "மூட்டு வலி", "కీళ్ల నొప్పి", "গাঁটে ব্যথা",
	},
	CategoryRash: {
		"rash", "चकत्ते", "दाने", "தடிப்பு", "దద్దుర్లు", "ফুসকুড়ি",
	},
	CategoryBleeding: {
		"bleeding", "blood", "खून", "रक्त", "இரத்தம்", "రక్తం", "রক্ত",
	},
	CategoryChills: {
		"chills", "shivering", "कंपकंपी", "ठंड लगना", "குளிர் நடுக்கம்", "చలి", "কাঁপুনি",
	},
	CategorySweating: {
		"sweating", "sweats", "पसीना", "வியர்வை", "చెమట", "ঘাম",
	},
	CategoryMyalgia: {
		"body ache", "body pain", "muscle pain", "myalgia", "bodyache",
		"बदन दर्द", "शरीर में दर्द", "உடல் வலி", "ఒళ్ళు నొప్పులు", "শরীর ব্যথা",
	},
	CategoryTyphoid: {
		"typhoid", "टाइफाइड", "டைபாய்டு", "టైఫాయిడ్", "টাইফয়েড",
	},
	CategorySevere: {
		"severe", "intense", "worst", "गंभीर", "तेज दर्द", "கடுமையான", "తీవ్రమైన", "তীব্র",
	},
	CategorySudden: {
		"sudden", "abrupt", "अचानक", "திடீர்", "అకస్మాత్తుగా", "হঠাৎ",
	},
	CategoryVision: {
		"vision", "blurred", "blurry", "धुंधला", "दृष्टि", "பார்வை", "చూపు", "দৃষ্টি",
	},
	CategoryConfusion: {
		"confusion", "confused", "disoriented", "भ्रम", "குழப்பம்", "గందరగోళం", "বিভ্রান্তি",
	},
}

// measurementPhrases hides readings whose names contain a symptom term, so
// "blood pressure" does not read as bleeding.
var measurementPhrases = strings.NewReplacer(
	"blood pressure", "bp",
	"blood sugar", "glucose",
	"blood test", "lab test",
)

// SymptomSet is an unordered set of categories.
type SymptomSet map[SymptomCategory]struct{}

// Has reports whether c is in the set.
func (s SymptomSet) Has(c SymptomCategory) bool {
	_, ok := s[c]
	return ok
}

// Any reports whether at least one of cs is in the set.
func (s SymptomSet) Any(cs ...SymptomCategory) bool {
	for _, c := range cs {
		if s.Has(c) {
			return true
		}
	}
	return false
}

// Sorted returns the categories in lexical order.
func (s SymptomSet) Sorted() []SymptomCategory {
	out := make([]SymptomCategory, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ClassifySymptoms maps free text to the categories it mentions. Matching is
// case-insensitive substring search across all languages; the language tag
// does not narrow the search. Blank text yields an empty set.
func ClassifySymptoms(text string, _ entities.LanguageCode) SymptomSet {
	set := SymptomSet{}
	normalized := measurementPhrases.Replace(strings.ToLower(strings.TrimSpace(text)))
	if normalized == "" {
		return set
	}

	for category, terms := range keywords {
		for _, term := range terms {
			if strings.Contains(normalized, term) {
				set[category] = struct{}{}
				break
			}
		}
	}
	return set
}
