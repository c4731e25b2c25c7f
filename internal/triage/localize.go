package triage

import (
	"fmt"
	"strings"

	"github.com/medassist/offline-triage/internal/domain/entities"
)

// DefaultLanguage is used when a request names an unsupported language.
const DefaultLanguage entities.LanguageCode = "en"

var explanations = map[entities.LanguageCode]string{
	"en": "Based on your symptoms, you have been diagnosed with %s. Please rest and monitor your symptoms.",
	"hi": "%s का निदान किया गया है। कृपया आराम करें और दवाएं समय पर लें।",
	"ta": "%s கண்டறியப்பட்டுள்ளது. தயவுசெய்து ஓய்வெடுத்து மருந்துகளை சரியாக எடுத்துக்கொள்ளுங்கள்.",
	"te": "%s నిర్ధారించబడింది. దయచేసి విశ్రాంతి తీసుకోండి మరియు మందులను సమయానికి తీసుకోండి.",
	"bn": "%s নির্ণয় করা হয়েছে। অনুগ্রহ করে বিশ্রাম নিন এবং সময়মতো ওষুধ খান।",
}

// Labels is the UI translation table for one language.
type Labels struct {
	Diagnosis             string `json:"diagnosis"`
	Treatment             string `json:"treatment"`
	Referral              string `json:"referral"`
	Confidence            string `json:"confidence"`
	Medications           string `json:"medications"`
	Lifestyle             string `json:"lifestyle"`
	FollowUp              string `json:"followUp"`
	PatientExplanation    string `json:"patientExplanation"`
	DifferentialDiagnoses string `json:"differentialDiagnoses"`
	ImmediateActions      string `json:"immediateActions"`
	RedFlags              string `json:"redFlags"`
	DrugInteractions      string `json:"drugInteractions"`
	NoDrugInteractions    string `json:"noDrugInteractions"`
	OfflineNotice         string `json:"offlineNotice"`
}

var labels = map[entities.LanguageCode]Labels{
	"en": {
		Diagnosis: "Diagnosis", Treatment: "Treatment Plan", Referral: "Specialist Referral Needed",
		Confidence: "Confidence Score", Medications: "Medications", Lifestyle: "Lifestyle Advice",
		FollowUp: "Follow-up", PatientExplanation: "Patient Explanation",
		DifferentialDiagnoses: "Differential Diagnoses", ImmediateActions: "Immediate Actions",
		RedFlags: "Warning Signs", DrugInteractions: "Drug Interactions",
		NoDrugInteractions: "No drug interactions detected",
		OfflineNotice:      "Offline mode: this result comes from rule-based triage, not the AI model.",
	},
	"hi": {
		Diagnosis: "निदान", Treatment: "उपचार योजना", Referral: "विशेषज्ञ रेफरल आवश्यक",
		Confidence: "विश्वास स्कोर", Medications: "दवाएं", Lifestyle: "जीवनशैली सलाह",
		FollowUp: "फॉलो-अप", PatientExplanation: "रोगी स्पष्टीकरण",
		DifferentialDiagnoses: "विभेदक निदान", ImmediateActions: "तत्काल कार्रवाई",
		RedFlags: "चेतावनी संकेत", DrugInteractions: "दवा परस्पर क्रिया",
		NoDrugInteractions: "कोई दवा परस्पर क्रिया नहीं मिली",
		OfflineNotice:      "ऑफ़लाइन मोड: यह परिणाम नियम-आधारित जांच से है, एआई मॉडल से नहीं।",
	},
	"ta": {
		Diagnosis: "நோய் கண்டறிதல்", Treatment: "சிகிச்சை திட்டம்", Referral: "நிபுணர் பரிந்துரை தேவை",
		Confidence: "நம்பிக்கை மதிப்பெண்", Medications: "மருந்துகள்", Lifestyle: "வாழ்க்கை முறை ஆலோசனை",
		FollowUp: "பின்தொடர்தல்", PatientExplanation: "நோயாளி விளக்கம்",
		DifferentialDiagnoses: "வேறுபாடு நோய் கண்டறிதல்", ImmediateActions: "உடனடி நடவடிக்கைகள்",
		RedFlags: "எச்சரிக்கை அறிகுறிகள்", DrugInteractions: "மருந்து தொடர்புகள்",
		NoDrugInteractions: "மருந்து தொடர்புகள் இல்லை",
		OfflineNotice:      "ஆஃப்லைன் பயன்முறை: இந்த முடிவு விதி அடிப்படையிலான மதிப்பீட்டிலிருந்து வந்தது.",
	},
	"te": {
		Diagnosis: "రోగ నిర్ధారణ", Treatment: "చికిత్స ప్రణాళిక", Referral: "నిపుణుల సిఫార్సు అవసరం",
		Confidence: "విశ్వాస స్కోరు", Medications: "మందులు", Lifestyle: "జీవనశైలి సలహా",
		FollowUp: "ఫాలో-అప్", PatientExplanation: "రోగి వివరణ",
		DifferentialDiagnoses: "భేద నిర్ధారణలు", ImmediateActions: "తక్షణ చర్యలు",
		RedFlags: "హెచ్చరిక సంకేతాలు", DrugInteractions: "ఔషధ పరస్పర చర్యలు",
		NoDrugInteractions: "ఔషధ పరస్పర చర్యలు లేవు",
		OfflineNotice:      "ఆఫ్‌లైన్ మోడ్: ఈ ఫలితం నియమ ఆధారిత అంచనా నుండి వచ్చింది.",
	},
	"bn": {
		Diagnosis: "রোগ নির্ণয়", Treatment: "চিকিৎসা পরিকল্পনা", Referral: "বিশেষজ্ঞ রেফারেল প্রয়োজন",
		Confidence: "আত্মবিশ্বাস স্কোর", Medications: "ওষুধ", Lifestyle: "জীবনযাত্রার পরামর্শ",
		FollowUp: "ফলো-আপ", PatientExplanation: "রোগীর ব্যাখ্যা",
		DifferentialDiagnoses: "ডিফারেনশিয়াল ডায়াগনোসিস", ImmediateActions: "তাৎক্ষণিক পদক্ষেপ",
		RedFlags: "সতর্কতা চিহ্ন", DrugInteractions: "ড্রাগ ইন্টারঅ্যাকশন",
		NoDrugInteractions: "কোনো ড্রাগ ইন্টারঅ্যাকশন পাওয়া যায়নি",
		OfflineNotice:      "অফলাইন মোড: এই ফলাফল নিয়ম-ভিত্তিক মূল্যায়ন থেকে এসেছে।",
	},
}

// SupportedLanguages lists the languages with explanation templates and labels.
func SupportedLanguages() []entities.LanguageCode {
	return []entities.LanguageCode{"en", "hi", "ta", "te", "bn"}
}

// Localizer attaches patient-facing text. Explanations and UI labels resolve
// languages through the same Resolve, so they always agree.
type Localizer struct {
	fallback entities.LanguageCode
}

// NewLocalizer returns a localizer falling back to fallback, or to
// DefaultLanguage when fallback itself is unsupported.
func NewLocalizer(fallback entities.LanguageCode) *Localizer {
	l := &Localizer{fallback: DefaultLanguage}
	if code, ok := normalize(fallback); ok {
		l.fallback = code
	}
	return l
}

// Resolve maps a requested language to a supported one. Region suffixes are
// ignored ("hi-IN" resolves to "hi").
func (l *Localizer) Resolve(lang entities.LanguageCode) entities.LanguageCode {
	if code, ok := normalize(lang); ok {
		return code
	}
	return l.fallback
}

// Localize returns a copy of record with the explanation for lang filled in.
// It depends only on the primary diagnosis and the language.
func (l *Localizer) Localize(record entities.DiagnosisRecord, lang entities.LanguageCode) entities.DiagnosisRecord {
	out := record.Clone()
	out.PatientExplanation = fmt.Sprintf(explanations[l.Resolve(lang)], record.PrimaryDiagnosis)
	return out
}

// Labels returns the UI translation table for lang.
func (l *Localizer) Labels(lang entities.LanguageCode) Labels {
	return labels[l.Resolve(lang)]
}

func normalize(lang entities.LanguageCode) (entities.LanguageCode, bool) {
	code := strings.ToLower(strings.TrimSpace(string(lang)))
	if base, _, found := strings.Cut(code, "-"); found {
		code = base
	}
	if base, _, found := strings.Cut(code, "_"); found {
		code = base
	}
	c := entities.LanguageCode(code)
	if _, ok := explanations[c]; !ok {
		return "", false
	}
	return c, true
}

var defaultLocalizer = NewLocalizer(DefaultLanguage)

// Localize fills the explanation using the default fallback language.
func Localize(record entities.DiagnosisRecord, lang entities.LanguageCode) entities.DiagnosisRecord {
	return defaultLocalizer.Localize(record, lang)
}
