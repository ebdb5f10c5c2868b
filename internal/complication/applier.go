package complication

import (
	"math"
	"sort"

	"codeblue-sim/internal/catalog"
	"codeblue-sim/internal/patient"
)

// Applier turns an event into new vitals and equipment snapshots.
type Applier struct {
	rng RandomSource
}

// NewApplier creates an applier. A nil rng uses DefaultSource.
func NewApplier(rng RandomSource) *Applier {
	if rng == nil {
		rng = DefaultSource()
	}
	return &Applier{rng: rng}
}

// Apply returns the snapshots that follow ev. The inputs are left untouched.
func (a *Applier) Apply(ev Event, vitals patient.Vitals, equipment []patient.Equipment) (patient.Vitals, []patient.Equipment) {
	next := a.applyChanges(ev.VitalChanges, vitals)
	nextEq := patient.CloneEquipment(equipment)
	if ev.EquipmentID != "" {
		for i := range nextEq {
			if nextEq[i].ID != ev.EquipmentID {
				continue
			}
			nextEq[i].Malfunctioning = true
			if nextEq[i].Settings == nil {
				nextEq[i].Settings = make(map[string]any, 1)
			}
			nextEq[i].Settings[patient.SettingEnabled] = false
		}
	}
	return next, nextEq
}

// Escalate applies the event's timeout consequence to vitals.
func (a *Applier) Escalate(ev Event, vitals patient.Vitals) patient.Vitals {
	return a.applyChanges(ev.TimeoutChanges, vitals)
}

func (a *Applier) applyChanges(changes catalog.Changes, vitals patient.Vitals) patient.Vitals {
	next := vitals.Clone()
	// Sorted order keeps seeded runs reproducible.
	for _, name := range sortedNames(changes) {
		ch := changes[name]
		if ch.Set != nil {
			next[name] = *ch.Set
			continue
		}
		if ch.Range == nil {
			continue
		}
		cur, ok := next.Numeric(name)
		if !ok {
			continue
		}
		lo, hi := ch.Range.Min, ch.Range.Max
		if lo > hi {
			lo, hi = hi, lo
		}
		delta := lo + a.rng.Float64()*(hi-lo)
		next[name] = patient.Number(math.Max(0, cur+delta))
	}
	return next
}

func sortedNames(c catalog.Changes) []patient.Name {
	names := make([]patient.Name, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
