package scenario

import (
	"testing"

	"codeblue-sim/internal/catalog"
	"codeblue-sim/internal/patient"
)

func TestScenarioTransition(t *testing.T) {
	s := Scenario{
		Phases: []Phase{{
			Name:     "assessment",
			Triggers: []Trigger{{Event: EventTimeElapsed, Value: 10, Next: "crisis"}},
		}, {
			Name: "crisis",
		}},
	}

	if _, ok := s.NextPhase("assessment", Event{Type: EventTimeElapsed, Value: 9}); ok {
		t.Fatalf("transitioned before threshold")
	}
	next, ok := s.NextPhase("assessment", Event{Type: EventTimeElapsed, Value: 10})
	if !ok || next != "crisis" {
		t.Fatalf("expected transition to crisis, got %s", next)
	}
	if _, ok := s.NextPhase("crisis", Event{Type: EventTimeElapsed, Value: 100}); ok {
		t.Fatalf("final phase has no triggers")
	}
}

func TestLoadScenario(t *testing.T) {
	sc, err := Load("testdata/simple.yaml")
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if sc.Name != "example" || sc.Condition != "trauma" {
		t.Fatalf("unexpected scenario %s/%s", sc.Name, sc.Condition)
	}
	if v := sc.InitialVitals[patient.Consciousness]; v.Level != patient.LevelVerbal {
		t.Fatalf("consciousness = %+v", v)
	}
	if v, _ := sc.InitialVitals.Numeric(patient.HeartRate); v != 120 {
		t.Fatalf("heart_rate = %v", v)
	}
	if len(sc.Equipment) != 1 || sc.Equipment[0].Type != patient.CardiacMonitor || !sc.Equipment[0].Enabled() {
		t.Fatalf("equipment = %+v", sc.Equipment)
	}
	if sc.DifficultyIn("primary-survey") != 4 {
		t.Fatalf("difficulty in primary-survey = %d", sc.DifficultyIn("primary-survey"))
	}
}

func TestLoadRejectsInvalidScenario(t *testing.T) {
	if _, err := Load("testdata/broken.yaml"); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := Load("testdata/missing.yaml"); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestEvaluate(t *testing.T) {
	s := Scenario{
		DurationSeconds: 300,
		Limits: []Limit{
			{Vital: patient.SpO2, Min: bound(60)},
			{Vital: patient.HeartRate, Max: bound(180)},
		},
	}
	vitals := patient.Vitals{patient.SpO2: patient.Number(90), patient.HeartRate: patient.Number(100)}

	if out, _ := s.Evaluate(vitals, 120); out != Ongoing {
		t.Fatalf("outcome = %s, want ongoing", out)
	}
	if out, _ := s.Evaluate(vitals, 300); out != Won {
		t.Fatalf("outcome = %s, want won", out)
	}
	vitals[patient.SpO2] = patient.Number(55)
	out, reason := s.Evaluate(vitals, 300)
	if out != Lost || reason == "" {
		t.Fatalf("outcome = %s (%q), want lost", out, reason)
	}
	vitals[patient.SpO2] = patient.Number(90)
	vitals[patient.HeartRate] = patient.Number(200)
	if out, _ := s.Evaluate(vitals, 10); out != Lost {
		t.Fatalf("outcome = %s, want lost on max", out)
	}
	delete(vitals, patient.HeartRate)
	if out, _ := s.Evaluate(vitals, 10); out != Ongoing {
		t.Fatalf("missing vital should not breach a limit")
	}
}

func TestDifficultyClamped(t *testing.T) {
	s := Scenario{Difficulty: 6, Phases: []Phase{{Name: "crisis", DifficultyBonus: 3}, {Name: "calm", DifficultyBonus: -9}}}
	if d := s.DifficultyIn("crisis"); d != 6 {
		t.Fatalf("crisis difficulty = %d", d)
	}
	if d := s.DifficultyIn("calm"); d != 1 {
		t.Fatalf("calm difficulty = %d", d)
	}
	if d := s.DifficultyIn("unknown"); d != 6 {
		t.Fatalf("unknown phase difficulty = %d", d)
	}
}

func TestBuiltInScenarios(t *testing.T) {
	cat := catalog.BuiltIn()
	phases := []string{"assessment", "deterioration", "crisis", "recovery"}
	for _, n := range []string{"cardiac-arrest", "septic-shock", "respiratory-failure", "post-op"} {
		sc, ok := Lookup(n)
		if !ok {
			t.Fatalf("scenario %s not found", n)
		}
		if err := sc.Validate(); err != nil {
			t.Fatalf("scenario %s invalid: %v", n, err)
		}
		if out, _ := sc.Evaluate(sc.InitialVitals, 0); out != Ongoing {
			t.Fatalf("scenario %s starts %s", n, out)
		}
		if len(sc.Phases) != len(phases) {
			t.Fatalf("scenario %s expected %d phases, got %d", n, len(phases), len(sc.Phases))
		}
		for i, ph := range phases {
			if sc.Phases[i].Name != ph {
				t.Fatalf("scenario %s phase %d expected %s got %s", n, i, ph, sc.Phases[i].Name)
			}
		}
		matched := false
		for _, pc := range cat.PatientComplications {
			if pc.AppliesTo(sc.Condition) && pc.Conditions[0] != catalog.AnyCondition {
				matched = true
			}
		}
		if !matched {
			t.Fatalf("scenario %s condition %s has no specific complications", n, sc.Condition)
		}
	}
}

func TestBuiltInReturnsFreshCopies(t *testing.T) {
	a, _ := Lookup("post-op")
	a.InitialVitals[patient.HeartRate] = patient.Number(1)
	b, _ := Lookup("post-op")
	if v, _ := b.InitialVitals.Numeric(patient.HeartRate); v == 1 {
		t.Fatalf("built-in scenarios share vitals")
	}
}
