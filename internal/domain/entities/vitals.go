package entities

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Measurement is a single numeric vital-sign reading. Readings arrive as JSON
// numbers, numeric strings, null or free text; anything that does not parse is
// kept as unknown rather than rejected.
type Measurement struct {
	Value float64
	Known bool
}

// Reading returns a known measurement. NaN and infinities are not readings
// and stay unknown.
func Reading(v float64) Measurement {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Measurement{}
	}
	return Measurement{Value: v, Known: true}
}

// ParseMeasurement parses a raw reading, leading numeric prefix included
// ("101.2F" reads as 101.2). Unparseable input yields an unknown measurement.
func ParseMeasurement(raw string) Measurement {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Measurement{}
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return Reading(v)
	}

	end := 0
	for end < len(raw) {
		c := raw[end]
		if (c >= '0' && c <= '9') || c == '.' || (end == 0 && (c == '-' || c == '+')) {
			end++
			continue
		}
		break
	}
	if v, err := strconv.ParseFloat(raw[:end], 64); err == nil {
		return Reading(v)
	}
	return Measurement{}
}

// UnmarshalJSON implements json.Unmarshaler. It never fails.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	*m = Measurement{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var number float64
	if err := json.Unmarshal(data, &number); err == nil {
		*m = Reading(number)
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*m = ParseMeasurement(text)
	}
	return nil
}

// MarshalJSON implements json.Marshaler; unknown readings encode as null.
func (m Measurement) MarshalJSON() ([]byte, error) {
	if !m.Known {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// VitalSigns holds the optional readings collected with a triage request.
// BloodPressure is "systolic/diastolic" free text.
type VitalSigns struct {
	TemperatureF     Measurement `json:"temperature"`
	BloodPressure    string      `json:"blood_pressure,omitempty"`
	HeartRate        Measurement `json:"heart_rate"`
	OxygenSaturation Measurement `json:"oxygen_level"`
}
