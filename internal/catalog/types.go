// Package catalog holds the static tables of candidate complications.
// The tables are plain data; selection logic lives in package complication.
package catalog

import (
	"fmt"

	"codeblue-sim/internal/patient"
)

// Severity ranks how urgent an event is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// AnyCondition matches every patient condition tag.
const AnyCondition = "any"

// Range is an inclusive interval a vital delta is sampled from.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// VitalChange is either a delta range or an absolute override.
type VitalChange struct {
	Range *Range         `yaml:"range,omitempty" json:"range,omitempty"`
	Set   *patient.Value `yaml:"set,omitempty" json:"set,omitempty"`
}

// Delta builds a range change.
func Delta(min, max float64) VitalChange { return VitalChange{Range: &Range{Min: min, Max: max}} }

// Override builds an absolute change.
func Override(v patient.Value) VitalChange { return VitalChange{Set: &v} }

// IsRange reports whether the change samples a delta.
func (c VitalChange) IsRange() bool { return c.Set == nil && c.Range != nil }

// Changes maps vitals to the change applied to them.
type Changes map[patient.Name]VitalChange

// Clone copies the map; ranges and overrides are copied by value.
func (c Changes) Clone() Changes {
	if c == nil {
		return nil
	}
	out := make(Changes, len(c))
	for k, v := range c {
		cp := VitalChange{}
		if v.Range != nil {
			r := *v.Range
			cp.Range = &r
		}
		if v.Set != nil {
			s := *v.Set
			cp.Set = &s
		}
		out[k] = cp
	}
	return out
}

func (c Changes) validate() error {
	for name, ch := range c {
		switch {
		case ch.Range == nil && ch.Set == nil:
			return fmt.Errorf("vital %s: change needs a range or a set value", name)
		case ch.Range != nil && ch.Set != nil:
			return fmt.Errorf("vital %s: change has both range and set", name)
		case ch.Range != nil && ch.Range.Min > ch.Range.Max:
			return fmt.Errorf("vital %s: range min %.2f exceeds max %.2f", name, ch.Range.Min, ch.Range.Max)
		}
	}
	return nil
}

// EquipmentFailure is a device fault that may hit any attached device of a listed type.
type EquipmentFailure struct {
	Key              string                  `yaml:"key"`
	Title            string                  `yaml:"title"`
	Descriptions     []string                `yaml:"descriptions"`
	EquipmentTypes   []patient.EquipmentType `yaml:"equipment_types"`
	Severity         Severity                `yaml:"severity"`
	Effects          []string                `yaml:"effects,omitempty"`
	TimeLimitSeconds int                     `yaml:"time_limit_seconds,omitempty"`
	TimeoutChanges   Changes                 `yaml:"timeout_changes,omitempty"`
}

// AppliesTo reports whether the failure can hit a device of type t.
func (f EquipmentFailure) AppliesTo(t patient.EquipmentType) bool {
	for _, et := range f.EquipmentTypes {
		if et == t {
			return true
		}
	}
	return false
}

// PatientComplication is a physiological deterioration tied to condition tags.
type PatientComplication struct {
	Key              string   `yaml:"key"`
	Title            string   `yaml:"title"`
	Descriptions     []string `yaml:"descriptions"`
	Conditions       []string `yaml:"conditions"`
	Severity         Severity `yaml:"severity"`
	Effects          []string `yaml:"effects,omitempty"`
	VitalChanges     Changes  `yaml:"vital_changes,omitempty"`
	RequiresAction   bool     `yaml:"requires_action"`
	TimeLimitSeconds int      `yaml:"time_limit_seconds,omitempty"`
	TimeoutChanges   Changes  `yaml:"timeout_changes,omitempty"`
}

// AppliesTo reports whether the complication fits the condition tag.
func (p PatientComplication) AppliesTo(tag string) bool {
	for _, c := range p.Conditions {
		if c == tag || c == AnyCondition {
			return true
		}
	}
	return false
}

// TimeBased is a narrative beat unlocked after a minimum elapsed time.
type TimeBased struct {
	Key            string   `yaml:"key"`
	Title          string   `yaml:"title"`
	Descriptions   []string `yaml:"descriptions"`
	MinTimeSeconds float64  `yaml:"min_time_seconds"`
	Severity       Severity `yaml:"severity"`
	Effects        []string `yaml:"effects,omitempty"`
}

// Catalog bundles the three event tables.
type Catalog struct {
	EquipmentFailures    []EquipmentFailure    `yaml:"equipment_failures"`
	PatientComplications []PatientComplication `yaml:"patient_complications"`
	TimeBased            []TimeBased           `yaml:"time_based"`
}

// Validate checks every entry for the fields selection relies on.
func (c *Catalog) Validate() error {
	for i, f := range c.EquipmentFailures {
		if err := checkEntry(f.Key, f.Descriptions, f.Severity); err != nil {
			return fmt.Errorf("equipment_failures[%d]: %w", i, err)
		}
		if len(f.EquipmentTypes) == 0 {
			return fmt.Errorf("equipment_failures[%d] %s: no equipment types", i, f.Key)
		}
		if f.TimeLimitSeconds < 0 {
			return fmt.Errorf("equipment_failures[%d] %s: negative time limit", i, f.Key)
		}
		if err := f.TimeoutChanges.validate(); err != nil {
			return fmt.Errorf("equipment_failures[%d] %s: %w", i, f.Key, err)
		}
	}
	for i, p := range c.PatientComplications {
		if err := checkEntry(p.Key, p.Descriptions, p.Severity); err != nil {
			return fmt.Errorf("patient_complications[%d]: %w", i, err)
		}
		if len(p.Conditions) == 0 {
			return fmt.Errorf("patient_complications[%d] %s: no condition tags", i, p.Key)
		}
		if p.TimeLimitSeconds < 0 {
			return fmt.Errorf("patient_complications[%d] %s: negative time limit", i, p.Key)
		}
		if err := p.VitalChanges.validate(); err != nil {
			return fmt.Errorf("patient_complications[%d] %s: %w", i, p.Key, err)
		}
		if err := p.TimeoutChanges.validate(); err != nil {
			return fmt.Errorf("patient_complications[%d] %s: %w", i, p.Key, err)
		}
	}
	for i, tb := range c.TimeBased {
		if err := checkEntry(tb.Key, tb.Descriptions, tb.Severity); err != nil {
			return fmt.Errorf("time_based[%d]: %w", i, err)
		}
		if tb.MinTimeSeconds < 0 {
			return fmt.Errorf("time_based[%d] %s: negative min time", i, tb.Key)
		}
	}
	return nil
}

func checkEntry(key string, descriptions []string, sev Severity) error {
	if key == "" {
		return fmt.Errorf("missing key")
	}
	if len(descriptions) == 0 {
		return fmt.Errorf("%s: no description variants", key)
	}
	if !sev.Valid() {
		return fmt.Errorf("%s: unknown severity %q", key, sev)
	}
	return nil
}
