package catalog

import p "codeblue-sim/internal/patient"

// BuiltIn returns the reference complication tables.
func BuiltIn() *Catalog {
	return &Catalog{
		EquipmentFailures:    builtInEquipmentFailures(),
		PatientComplications: builtInPatientComplications(),
		TimeBased:            builtInTimeBased(),
	}
}

func builtInEquipmentFailures() []EquipmentFailure {
	return []EquipmentFailure{
		{
			Key:   "ventilator-disconnect",
			Title: "Ventilator Disconnect",
			Descriptions: []string{
				"The ventilator circuit has disconnected at the endotracheal tube.",
				"Low pressure alarm: the breathing circuit is open.",
			},
			EquipmentTypes:   []p.EquipmentType{p.Ventilator},
			Severity:         SeverityCritical,
			Effects:          []string{"no tidal volume delivered", "desaturation imminent"},
			TimeLimitSeconds: 45,
			TimeoutChanges: Changes{
				p.SpO2:            Delta(-15, -8),
				p.HeartRate:       Delta(10, 25),
				p.RespiratoryRate: Override(p.Number(0)),
			},
		},
		{
			Key:   "pump-occlusion",
			Title: "Infusion Pump Occlusion",
			Descriptions: []string{
				"Downstream occlusion detected on the infusion line.",
				"The pump has stopped delivering medication: line occluded.",
			},
			EquipmentTypes: []p.EquipmentType{p.InfusionPump},
			Severity:       SeverityWarning,
			Effects:        []string{"medication delivery interrupted"},
			TimeoutChanges: Changes{
				p.BloodPressureSystolic: Delta(-20, -10),
			},
		},
		{
			Key:   "monitor-lead-off",
			Title: "Monitor Lead Off",
			Descriptions: []string{
				"ECG lead II has detached; the rhythm trace is lost.",
				"The cardiac monitor reports a lead-off condition.",
			},
			EquipmentTypes:   []p.EquipmentType{p.CardiacMonitor},
			Severity:         SeverityWarning,
			Effects:          []string{"rhythm not monitored"},
			TimeLimitSeconds: 90,
		},
		{
			Key:   "defib-battery",
			Title: "Defibrillator Battery Low",
			Descriptions: []string{
				"The defibrillator reports a critically low battery.",
				"Charge failure: the defibrillator cannot reach the selected energy.",
			},
			EquipmentTypes:   []p.EquipmentType{p.Defibrillator},
			Severity:         SeverityCritical,
			Effects:          []string{"shock delivery unavailable"},
			TimeLimitSeconds: 30,
			TimeoutChanges: Changes{
				p.HeartRate: Delta(-30, -10),
			},
		},
		{
			Key:   "probe-displaced",
			Title: "Oximeter Probe Displaced",
			Descriptions: []string{
				"The SpO2 probe has slipped off the finger.",
				"Poor perfusion signal from the pulse oximeter.",
			},
			EquipmentTypes: []p.EquipmentType{p.PulseOximeter, p.CardiacMonitor},
			Severity:       SeverityInfo,
			Effects:        []string{"saturation reading unreliable"},
		},
		{
			Key:   "oxygen-supply-drop",
			Title: "Oxygen Supply Pressure Drop",
			Descriptions: []string{
				"Wall oxygen pressure is falling.",
				"The oxygen cylinder is nearly empty.",
			},
			EquipmentTypes:   []p.EquipmentType{p.OxygenSupply, p.Ventilator},
			Severity:         SeverityCritical,
			Effects:          []string{"FiO2 falling"},
			TimeLimitSeconds: 60,
			TimeoutChanges: Changes{
				p.SpO2: Delta(-12, -6),
			},
		},
		{
			Key:   "suction-failure",
			Title: "Suction Failure",
			Descriptions: []string{
				"The suction unit has lost vacuum.",
			},
			EquipmentTypes: []p.EquipmentType{p.SuctionUnit},
			Severity:       SeverityWarning,
			Effects:        []string{"airway clearance unavailable"},
		},
	}
}

func builtInPatientComplications() []PatientComplication {
	return []PatientComplication{
		{
			Key:   "vfib",
			Title: "Ventricular Fibrillation",
			Descriptions: []string{
				"The monitor shows a chaotic, disorganised rhythm. No pulse is palpable.",
				"Sudden VF on the monitor; the patient is pulseless.",
			},
			Conditions: []string{"cardiac_arrest"},
			Severity:   SeverityCritical,
			Effects:    []string{"no cardiac output"},
			VitalChanges: Changes{
				p.HeartRate:             Override(p.Number(0)),
				p.BloodPressureSystolic: Override(p.Number(0)),
				p.Consciousness:         Override(p.Categorical(p.LevelUnresponsive)),
			},
			RequiresAction:   true,
			TimeLimitSeconds: 30,
			TimeoutChanges: Changes{
				p.SpO2: Delta(-20, -10),
			},
		},
		{
			Key:   "rosc-hypotension",
			Title: "Post-ROSC Hypotension",
			Descriptions: []string{
				"Pulse returned but the blood pressure is falling.",
			},
			Conditions: []string{"cardiac_arrest"},
			Severity:   SeverityWarning,
			Effects:    []string{"poor perfusion"},
			VitalChanges: Changes{
				p.BloodPressureSystolic: Delta(-25, -10),
				p.HeartRate:             Delta(5, 20),
			},
			RequiresAction:   true,
			TimeLimitSeconds: 60,
		},
		{
			Key:   "septic-hypotension",
			Title: "Refractory Hypotension",
			Descriptions: []string{
				"MAP has dropped below 65 despite fluids.",
				"The patient is mottled and the pressure keeps falling.",
			},
			Conditions: []string{"septic_shock"},
			Severity:   SeverityCritical,
			Effects:    []string{"vasopressor requirement"},
			VitalChanges: Changes{
				p.BloodPressureSystolic:  Delta(-30, -15),
				p.BloodPressureDiastolic: Delta(-15, -5),
				p.HeartRate:              Delta(10, 30),
			},
			RequiresAction:   true,
			TimeLimitSeconds: 60,
			TimeoutChanges: Changes{
				p.BloodPressureSystolic: Delta(-15, -5),
				p.Consciousness:         Override(p.Categorical(p.LevelPain)),
			},
		},
		{
			Key:   "fever-spike",
			Title: "Fever Spike",
			Descriptions: []string{
				"Temperature climbs sharply with rigors.",
			},
			Conditions: []string{"septic_shock", "post_op"},
			Severity:   SeverityWarning,
			Effects:    []string{"increased metabolic demand"},
			VitalChanges: Changes{
				p.Temperature: Delta(1, 2.5),
				p.HeartRate:   Delta(5, 15),
			},
		},
		{
			Key:   "bronchospasm",
			Title: "Bronchospasm",
			Descriptions: []string{
				"Wheeze on auscultation and rising airway pressures.",
				"Expiratory phase is prolonged; the capnograph shows a shark fin.",
			},
			Conditions: []string{"respiratory_failure"},
			Severity:   SeverityCritical,
			Effects:    []string{"air trapping"},
			VitalChanges: Changes{
				p.SpO2:            Delta(-12, -5),
				p.RespiratoryRate: Delta(4, 10),
			},
			RequiresAction:   true,
			TimeLimitSeconds: 45,
			TimeoutChanges: Changes{
				p.SpO2: Delta(-10, -5),
			},
		},
		{
			Key:   "tension-pneumothorax",
			Title: "Tension Pneumothorax",
			Descriptions: []string{
				"Absent breath sounds on the right and the trachea is deviated.",
			},
			Conditions: []string{"respiratory_failure", "trauma"},
			Severity:   SeverityCritical,
			Effects:    []string{"obstructive shock"},
			VitalChanges: Changes{
				p.SpO2:                  Delta(-18, -8),
				p.BloodPressureSystolic: Delta(-30, -15),
				p.HeartRate:             Delta(15, 35),
			},
			RequiresAction:   true,
			TimeLimitSeconds: 40,
			TimeoutChanges: Changes{
				p.HeartRate:     Override(p.Number(0)),
				p.Consciousness: Override(p.Categorical(p.LevelUnresponsive)),
			},
		},
		{
			Key:   "post-op-bleed",
			Title: "Surgical Site Bleeding",
			Descriptions: []string{
				"The drain output has turned frankly bloody.",
				"Dressing is saturated and the abdomen is distending.",
			},
			Conditions: []string{"post_op", "trauma"},
			Severity:   SeverityWarning,
			Effects:    []string{"hypovolaemia developing"},
			VitalChanges: Changes{
				p.BloodPressureSystolic: Delta(-20, -8),
				p.HeartRate:             Delta(10, 20),
			},
			RequiresAction:   true,
			TimeLimitSeconds: 90,
		},
		{
			Key:   "anxiety",
			Title: "Agitation",
			Descriptions: []string{
				"The patient is anxious and pulling at lines.",
				"The patient becomes restless and confused.",
			},
			Conditions: []string{AnyCondition},
			Severity:   SeverityInfo,
			Effects:    []string{"risk of line dislodgement"},
			VitalChanges: Changes{
				p.HeartRate:       Delta(5, 15),
				p.RespiratoryRate: Delta(2, 6),
			},
		},
		{
			Key:   "vasovagal",
			Title: "Vasovagal Episode",
			Descriptions: []string{
				"Heart rate drops abruptly and the patient turns pale.",
			},
			Conditions: []string{AnyCondition},
			Severity:   SeverityWarning,
			Effects:    []string{"transient bradycardia"},
			VitalChanges: Changes{
				p.HeartRate:             Delta(-25, -10),
				p.BloodPressureSystolic: Delta(-15, -5),
			},
			RequiresAction:   true,
			TimeLimitSeconds: 60,
		},
	}
}

func builtInTimeBased() []TimeBased {
	return []TimeBased{
		{
			Key:            "family-arrives",
			Title:          "Family Arrives",
			Descriptions:   []string{"The patient's family has arrived and is asking for an update."},
			MinTimeSeconds: 60,
			Severity:       SeverityInfo,
		},
		{
			Key:            "labs-back",
			Title:          "Lab Results Available",
			Descriptions:   []string{"Arterial blood gas results are back.", "The first set of bloods has been reported."},
			MinTimeSeconds: 120,
			Severity:       SeverityInfo,
			Effects:        []string{"new data to review"},
		},
		{
			Key:            "consultant-call",
			Title:          "Consultant On The Phone",
			Descriptions:   []string{"The on-call consultant wants a structured handover now."},
			MinTimeSeconds: 240,
			Severity:       SeverityWarning,
		},
		{
			Key:            "bed-request",
			Title:          "ICU Bed Request",
			Descriptions:   []string{"Bed management asks whether the patient needs an ICU bed."},
			MinTimeSeconds: 300,
			Severity:       SeverityInfo,
		},
		{
			Key:            "shift-change",
			Title:          "Shift Change",
			Descriptions:   []string{"The nursing shift is changing; a handover is due."},
			MinTimeSeconds: 600,
			Severity:       SeverityWarning,
			Effects:        []string{"staff temporarily reduced"},
		},
	}
}
