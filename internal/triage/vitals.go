package triage

import (
	"strings"

	"github.com/medassist/offline-triage/internal/domain/entities"
)

// Vital-sign thresholds.
const (
	EmergencyTemperatureF = 104.0
	HighFeverTemperatureF = 103.0
	FeverTemperatureF     = 100.0
	EmergencyOxygenSat    = 90.0
	EmergencyHeartRate    = 120.0
	HypertensiveSystolic  = 140.0
	Stage2Systolic        = 160.0
)

// VitalFlags is the severity classification of a set of vital signs.
type VitalFlags struct {
	Emergency     bool
	HighFever     bool
	ModerateFever bool
	Hypertensive  bool

	// Reasons lists the readings that made Emergency true.
	Reasons []string

	// Systolic is the parsed systolic pressure, zero when unknown.
	Systolic float64
}

// EvaluateVitals classifies raw readings. Unknown readings never raise a flag.
func EvaluateVitals(v entities.VitalSigns) VitalFlags {
	var flags VitalFlags

	if v.TemperatureF.Known {
		t := v.TemperatureF.Value
		if t > EmergencyTemperatureF {
			flags.Emergency = true
			flags.Reasons = append(flags.Reasons, "Temperature above 104°F")
		}
		flags.HighFever = t > HighFeverTemperatureF
		flags.ModerateFever = t >= FeverTemperatureF && t <= HighFeverTemperatureF
	}

	if v.OxygenSaturation.Known && v.OxygenSaturation.Value < EmergencyOxygenSat {
		flags.Emergency = true
		flags.Reasons = append(flags.Reasons, "Oxygen saturation below 90%")
	}

	if v.HeartRate.Known && v.HeartRate.Value > EmergencyHeartRate {
		flags.Emergency = true
		flags.Reasons = append(flags.Reasons, "Heart rate above 120 bpm")
	}

	if systolic, ok := ParseSystolic(v.BloodPressure); ok {
		flags.Systolic = systolic
		flags.Hypertensive = systolic > HypertensiveSystolic
	}

	return flags
}

// ParseSystolic reads the systolic value of an "N/M" blood pressure string.
// Anything not of that shape reports false.
func ParseSystolic(bp string) (float64, bool) {
	systolic, diastolic, found := strings.Cut(strings.TrimSpace(bp), "/")
	if !found {
		return 0, false
	}
	s := entities.ParseMeasurement(systolic)
	d := entities.ParseMeasurement(diastolic)
	if !s.Known || !d.Known || s.Value <= 0 {
		return 0, false
	}
	return s.Value, true
}
