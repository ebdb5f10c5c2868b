// Vital sign snapshots for the simulated patient
package patient

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Name identifies one vital sign reading.
type Name string

// Vital names used by the built-in catalog and scenarios.
const (
	HeartRate              Name = "heart_rate"
	BloodPressureSystolic  Name = "blood_pressure_systolic"
	BloodPressureDiastolic Name = "blood_pressure_diastolic"
	RespiratoryRate        Name = "respiratory_rate"
	SpO2                   Name = "spo2"
	Temperature            Name = "temperature"
	Consciousness          Name = "consciousness"
)

// Level is a categorical consciousness reading (AVPU scale).
type Level string

const (
	LevelAlert        Level = "alert"
	LevelVerbal       Level = "verbal"
	LevelPain         Level = "pain"
	LevelUnresponsive Level = "unresponsive"
)

// Value holds either a numeric reading or a categorical level.
// A non-empty Level marks the value as categorical.
type Value struct {
	Num   float64
	Level Level
}

// Number returns a numeric value.
func Number(v float64) Value { return Value{Num: v} }

// Categorical returns a level value.
func Categorical(l Level) Value { return Value{Level: l} }

// IsLevel reports whether the value is categorical.
func (v Value) IsLevel() bool { return v.Level != "" }

func (v Value) String() string {
	if v.IsLevel() {
		return string(v.Level)
	}
	return strconv.FormatFloat(v.Num, 'f', -1, 64)
}

// MarshalJSON encodes numbers as JSON numbers and levels as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsLevel() {
		return json.Marshal(string(v.Level))
	}
	return json.Marshal(v.Num)
}

// UnmarshalJSON accepts a number or a string level.
func (v *Value) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*v = Number(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("vital value must be a number or a level: %w", err)
	}
	*v = Categorical(Level(s))
	return nil
}

// UnmarshalYAML accepts a scalar number or a level name.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: vital value must be a scalar", node.Line)
	}
	if n, err := strconv.ParseFloat(node.Value, 64); err == nil {
		*v = Number(n)
		return nil
	}
	*v = Categorical(Level(node.Value))
	return nil
}

// MarshalYAML mirrors UnmarshalYAML.
func (v Value) MarshalYAML() (interface{}, error) {
	if v.IsLevel() {
		return string(v.Level), nil
	}
	return v.Num, nil
}

// Vitals maps vital names to their current readings.
type Vitals map[Name]Value

// Clone returns an independent copy.
func (v Vitals) Clone() Vitals {
	out := make(Vitals, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Numeric returns the numeric reading for name, if present and numeric.
func (v Vitals) Numeric(name Name) (float64, bool) {
	val, ok := v[name]
	if !ok || val.IsLevel() {
		return 0, false
	}
	return val.Num, true
}

// Names returns the vital names in sorted order.
func (v Vitals) Names() []Name {
	names := make([]Name, 0, len(v))
	for k := range v {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
