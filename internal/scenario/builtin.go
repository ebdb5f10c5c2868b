package scenario

import p "codeblue-sim/internal/patient"

func bound(v float64) *float64 { return &v }

// standardPhases is the arc shared by the built-in cases.
func standardPhases(crisisAt int) []Phase {
	return []Phase{
		{
			Name:        "assessment",
			Description: "Handover is complete and the team assesses the patient.",
			Triggers:    []Trigger{{Event: EventTimeElapsed, Value: 120, Next: "deterioration"}},
		},
		{
			Name:            "deterioration",
			Description:     "The patient starts to slip.",
			DifficultyBonus: 1,
			Triggers: []Trigger{
				{Event: EventExpired, Value: 2, Next: "crisis"},
				{Event: EventTimeElapsed, Value: crisisAt, Next: "crisis"},
			},
		},
		{
			Name:            "crisis",
			Description:     "Everything goes wrong at once.",
			DifficultyBonus: 2,
			Triggers:        []Trigger{{Event: EventAcknowledged, Value: 4, Next: "recovery"}},
		},
		{
			Name:            "recovery",
			Description:     "The interventions take hold.",
			DifficultyBonus: -2,
		},
	}
}

// BuiltIn returns the predefined patient cases.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"cardiac-arrest": {
			Name:            "Cardiac Arrest",
			Description:     "A ward patient with a recent in-hospital arrest. Rhythm is unstable.",
			Condition:       "cardiac_arrest",
			Difficulty:      5,
			DurationSeconds: 600,
			InitialVitals: p.Vitals{
				p.HeartRate:              p.Number(112),
				p.BloodPressureSystolic:  p.Number(86),
				p.BloodPressureDiastolic: p.Number(50),
				p.RespiratoryRate:        p.Number(24),
				p.SpO2:                   p.Number(91),
				p.Temperature:            p.Number(36.2),
				p.Consciousness:          p.Categorical(p.LevelPain),
			},
			Equipment: []p.Equipment{
				{ID: "defib-1", Type: p.Defibrillator, Settings: map[string]any{p.SettingEnabled: true, "energy_j": 200}},
				{ID: "monitor-1", Type: p.CardiacMonitor, Settings: map[string]any{p.SettingEnabled: true}},
				{ID: "o2-1", Type: p.OxygenSupply, Settings: map[string]any{p.SettingEnabled: true, "flow_l_min": 15}},
				{ID: "pump-1", Type: p.InfusionPump, Settings: map[string]any{p.SettingEnabled: true, "drug": "amiodarone"}},
			},
			Limits: []Limit{{Vital: p.SpO2, Min: bound(60)}},
			Phases: standardPhases(300),
		},
		"septic-shock": {
			Name:            "Septic Shock",
			Description:     "Urosepsis with hypotension after two litres of crystalloid.",
			Condition:       "septic_shock",
			Difficulty:      4,
			DurationSeconds: 900,
			InitialVitals: p.Vitals{
				p.HeartRate:              p.Number(118),
				p.BloodPressureSystolic:  p.Number(88),
				p.BloodPressureDiastolic: p.Number(48),
				p.RespiratoryRate:        p.Number(26),
				p.SpO2:                   p.Number(93),
				p.Temperature:            p.Number(39.1),
				p.Consciousness:          p.Categorical(p.LevelVerbal),
			},
			Equipment: []p.Equipment{
				{ID: "pump-1", Type: p.InfusionPump, Settings: map[string]any{p.SettingEnabled: true, "drug": "norepinephrine", "rate_ml_h": 8}},
				{ID: "pump-2", Type: p.InfusionPump, Settings: map[string]any{p.SettingEnabled: true, "drug": "piperacillin-tazobactam"}},
				{ID: "monitor-1", Type: p.CardiacMonitor, Settings: map[string]any{p.SettingEnabled: true}},
				{ID: "spo2-1", Type: p.PulseOximeter, Settings: map[string]any{p.SettingEnabled: true}},
			},
			Limits: []Limit{
				{Vital: p.BloodPressureSystolic, Min: bound(50)},
				{Vital: p.Temperature, Max: bound(42)},
			},
			Phases: standardPhases(480),
		},
		"respiratory-failure": {
			Name:            "Respiratory Failure",
			Description:     "Acute severe asthma, intubated and ventilated in the emergency department.",
			Condition:       "respiratory_failure",
			Difficulty:      4,
			DurationSeconds: 720,
			InitialVitals: p.Vitals{
				p.HeartRate:              p.Number(105),
				p.BloodPressureSystolic:  p.Number(132),
				p.BloodPressureDiastolic: p.Number(80),
				p.RespiratoryRate:        p.Number(30),
				p.SpO2:                   p.Number(88),
				p.Temperature:            p.Number(37.4),
				p.Consciousness:          p.Categorical(p.LevelVerbal),
			},
			Equipment: []p.Equipment{
				{ID: "vent-1", Type: p.Ventilator, Settings: map[string]any{p.SettingEnabled: true, "fio2": 0.6, "peep": 8}},
				{ID: "spo2-1", Type: p.PulseOximeter, Settings: map[string]any{p.SettingEnabled: true}},
				{ID: "o2-1", Type: p.OxygenSupply, Settings: map[string]any{p.SettingEnabled: true}},
				{ID: "suction-1", Type: p.SuctionUnit, Settings: map[string]any{p.SettingEnabled: true}},
				{ID: "monitor-1", Type: p.CardiacMonitor, Settings: map[string]any{p.SettingEnabled: true}},
			},
			Limits: []Limit{
				{Vital: p.SpO2, Min: bound(65)},
				{Vital: p.RespiratoryRate, Max: bound(60)},
			},
			Phases: standardPhases(360),
		},
		"post-op": {
			Name:            "Post-operative Care",
			Description:     "Day one after a laparotomy. Observations are drifting.",
			Condition:       "post_op",
			Difficulty:      2,
			DurationSeconds: 600,
			InitialVitals: p.Vitals{
				p.HeartRate:              p.Number(92),
				p.BloodPressureSystolic:  p.Number(118),
				p.BloodPressureDiastolic: p.Number(72),
				p.RespiratoryRate:        p.Number(18),
				p.SpO2:                   p.Number(97),
				p.Temperature:            p.Number(37.8),
				p.Consciousness:          p.Categorical(p.LevelAlert),
			},
			Equipment: []p.Equipment{
				{ID: "pump-1", Type: p.InfusionPump, Settings: map[string]any{p.SettingEnabled: true, "drug": "morphine PCA"}},
				{ID: "monitor-1", Type: p.CardiacMonitor, Settings: map[string]any{p.SettingEnabled: true}},
				{ID: "spo2-1", Type: p.PulseOximeter, Settings: map[string]any{p.SettingEnabled: true}},
			},
			Limits: []Limit{
				{Vital: p.BloodPressureSystolic, Min: bound(60)},
				{Vital: p.HeartRate, Max: bound(180)},
			},
			Phases: standardPhases(360),
		},
	}
}

// Lookup returns a built-in scenario by key.
func Lookup(name string) (Scenario, bool) {
	s, ok := BuiltIn()[name]
	return s, ok
}
