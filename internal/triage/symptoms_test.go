package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medassist/offline-triage/internal/domain/entities"
)

func TestClassifySymptoms_BlankInput(t *testing.T) {
	for _, lang := range SupportedLanguages() {
		assert.Empty(t, ClassifySymptoms("", lang), "language %s", lang)
		assert.Empty(t, ClassifySymptoms("   \t\n", lang), "language %s", lang)
	}
}

func TestClassifySymptoms_CaseInsensitive(t *testing.T) {
	set := ClassifySymptoms("High FEVER and Cough", "en")

	assert.True(t, set.Has(CategoryFever))
	assert.True(t, set.Has(CategoryRespiratory))
	assert.False(t, set.Has(CategoryGastrointestinal))
}

func TestClassifySymptoms_MatchesAcrossLanguages(t *testing.T) {
	tests := []struct {
		text string
		want SymptomCategory
	}{
		{"मुझे बुखार है", CategoryFever},
		{"தலைவலி", CategoryHeadache},
		{"దగ్గు", CategoryRespiratory},
		{"ডায়রিয়া", CategoryGastrointestinal},
		{"पीलिया", CategoryHepatic},
	}

	for _, tt := range tests {
		// The language tag does not narrow the search.
		set := ClassifySymptoms(tt.text, "en")
		assert.True(t, set.Has(tt.want), "%q should classify as %s", tt.text, tt.want)
	}
}

func TestClassifySymptoms_SeverityModifiers(t *testing.T) {
	// "तेज बुखार" is the everyday phrase for high fever, not a severity marker.
	assert.False(t, ClassifySymptoms("तेज बुखार", "hi").Has(CategorySevere))
	assert.True(t, ClassifySymptoms("सिर में तेज दर्द", "hi").Has(CategorySevere))
	assert.True(t, ClassifySymptoms("गंभीर दस्त", "hi").Has(CategorySevere))
}

func TestClassifySymptoms_Jaundice(t *testing.T) {
	assert.True(t, ClassifySymptoms("my eyes are yellow", "en").Has(CategoryHepatic))
	assert.True(t, ClassifySymptoms("Yellowing of the skin", "en").Has(CategoryHepatic))
}

func TestClassifySymptoms_MeasurementNamesAreNotSymptoms(t *testing.T) {
	set := ClassifySymptoms("blood pressure was high, blood sugar normal", "en")

	assert.False(t, set.Has(CategoryBleeding))
}

func TestClassifySymptoms_DengueSigns(t *testing.T) {
	set := ClassifySymptoms("high fever joint pain rash", "en")

	assert.Equal(t, []SymptomCategory{CategoryFever, CategoryJointPain, CategoryRash}, set.Sorted())
}

func TestSymptomSet_Any(t *testing.T) {
	set := SymptomSet{CategoryChills: {}}

	assert.True(t, set.Any(CategoryChills, CategorySweating))
	assert.False(t, set.Any(CategoryRash, CategoryBleeding))
	assert.False(t, set.Any())
}

func TestClassifySymptoms_IgnoresLanguageTag(t *testing.T) {
	var langs []entities.LanguageCode
	langs = append(langs, SupportedLanguages()...)
	langs = append(langs, "xx", "")

	want := ClassifySymptoms("fever with chills", "en")
	for _, lang := range langs {
		assert.Equal(t, want, ClassifySymptoms("fever with chills", lang))
	}
}
