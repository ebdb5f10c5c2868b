package complication

import (
	"math"

	"github.com/google/uuid"

	"codeblue-sim/internal/catalog"
	"codeblue-sim/internal/patient"
)

// Probability model constants.
const (
	BaseProbability         = 0.15
	MaxDifficulty           = 6
	TimeSaturationSeconds   = 600.0
	LowPerformanceThreshold = 60.0
	LowPerformanceBoost     = 1.3

	equipmentBranch = 0.3
	patientBranch   = 0.8
)

// Probability returns the chance that an event fires on this tick.
func Probability(ctx Context) float64 {
	elapsed := math.Max(ctx.ElapsedSeconds, 0)
	timeFactor := math.Min(elapsed/TimeSaturationSeconds, 1)
	perf := 1.0
	if ctx.PerformanceScore < LowPerformanceThreshold {
		perf = LowPerformanceBoost
	}
	return BaseProbability * (float64(ctx.Difficulty) / MaxDifficulty) * timeFactor * perf
}

// Selector decides whether an event fires and which one.
type Selector struct {
	catalog *catalog.Catalog
	rng     RandomSource
	newID   func() string
}

// NewSelector creates a selector over cat. A nil rng uses DefaultSource.
func NewSelector(cat *catalog.Catalog, rng RandomSource) *Selector {
	if cat == nil {
		cat = &catalog.Catalog{}
	}
	if rng == nil {
		rng = DefaultSource()
	}
	return &Selector{catalog: cat, rng: rng, newID: uuid.NewString}
}

// WithIDGenerator replaces the event ID generator.
func (s *Selector) WithIDGenerator(fn func() string) *Selector {
	s.newID = fn
	return s
}

// Select draws at most one event for ctx.
func (s *Selector) Select(ctx Context) (Event, bool) {
	if s.rng.Float64() >= Probability(ctx) {
		return Event{}, false
	}
	category := s.rng.Float64()
	switch {
	case category < equipmentBranch && len(ctx.ActiveEquipment) > 0:
		return s.equipmentFailure(ctx)
	case category < patientBranch:
		return s.patientComplication(ctx)
	default:
		return s.timeBased(ctx)
	}
}

func (s *Selector) equipmentFailure(ctx Context) (Event, bool) {
	present := patient.Types(ctx.ActiveEquipment)
	var candidates []catalog.EquipmentFailure
	for _, f := range s.catalog.EquipmentFailures {
		for _, t := range f.EquipmentTypes {
			if present[t] {
				candidates = append(candidates, f)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return Event{}, false
	}
	entry := candidates[pick(s.rng, len(candidates))]
	desc := s.describe(entry.Descriptions, entry.Title)

	var target string
	for _, eq := range ctx.ActiveEquipment {
		if entry.AppliesTo(eq.Type) {
			target = eq.ID
			break
		}
	}
	limit := entry.TimeLimitSeconds
	if limit <= 0 {
		limit = DefaultEquipmentTimeLimit
	}
	return Event{
		ID:               s.newID(),
		Type:             EquipmentFailure,
		Key:              entry.Key,
		Title:            entry.Title,
		Description:      desc,
		Severity:         entry.Severity,
		Effects:          copyStrings(entry.Effects),
		EquipmentID:      target,
		RequiresAction:   true,
		TimeLimitSeconds: limit,
		TimeoutChanges:   entry.TimeoutChanges.Clone(),
	}, true
}

func (s *Selector) patientComplication(ctx Context) (Event, bool) {
	var candidates []catalog.PatientComplication
	for _, pc := range s.catalog.PatientComplications {
		if pc.AppliesTo(ctx.PatientCondition) {
			candidates = append(candidates, pc)
		}
	}
	if len(candidates) == 0 {
		return Event{}, false
	}
	entry := candidates[pick(s.rng, len(candidates))]
	desc := s.describe(entry.Descriptions, entry.Title)
	return Event{
		ID:               s.newID(),
		Type:             PatientDeterioration,
		Key:              entry.Key,
		Title:            entry.Title,
		Description:      desc,
		Severity:         entry.Severity,
		Effects:          copyStrings(entry.Effects),
		VitalChanges:     entry.VitalChanges.Clone(),
		RequiresAction:   entry.RequiresAction,
		TimeLimitSeconds: entry.TimeLimitSeconds,
		TimeoutChanges:   entry.TimeoutChanges.Clone(),
	}, true
}

func (s *Selector) timeBased(ctx Context) (Event, bool) {
	elapsed := math.Max(ctx.ElapsedSeconds, 0)
	var candidates []catalog.TimeBased
	for _, tb := range s.catalog.TimeBased {
		if tb.MinTimeSeconds <= elapsed {
			candidates = append(candidates, tb)
		}
	}
	if len(candidates) == 0 {
		return Event{}, false
	}
	entry := candidates[pick(s.rng, len(candidates))]
	desc := s.describe(entry.Descriptions, entry.Title)
	return Event{
		ID:          s.newID(),
		Type:        TimeCritical,
		Key:         entry.Key,
		Title:       entry.Title,
		Description: desc,
		Severity:    entry.Severity,
		Effects:     copyStrings(entry.Effects),
	}, true
}

// describe picks a description variant, falling back to the title for entries without any.
func (s *Selector) describe(variants []string, title string) string {
	if len(variants) == 0 {
		return title
	}
	return variants[pick(s.rng, len(variants))]
}
