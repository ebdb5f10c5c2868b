package patient

// EquipmentType names a kind of attached device.
type EquipmentType string

const (
	Ventilator     EquipmentType = "ventilator"
	InfusionPump   EquipmentType = "infusion_pump"
	CardiacMonitor EquipmentType = "cardiac_monitor"
	Defibrillator  EquipmentType = "defibrillator"
	PulseOximeter  EquipmentType = "pulse_oximeter"
	OxygenSupply   EquipmentType = "oxygen_supply"
	SuctionUnit    EquipmentType = "suction"
)

// SettingEnabled is the settings key that switches a device on or off.
const SettingEnabled = "enabled"

// Equipment is one device attached to the patient.
type Equipment struct {
	ID             string         `json:"id" yaml:"id"`
	Type           EquipmentType  `json:"type" yaml:"type"`
	Malfunctioning bool           `json:"malfunctioning" yaml:"malfunctioning"`
	Settings       map[string]any `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// Enabled reports the device's enabled setting. Devices without the key count as enabled.
func (e Equipment) Enabled() bool {
	v, ok := e.Settings[SettingEnabled]
	if !ok {
		return true
	}
	b, ok := v.(bool)
	return !ok || b
}

// Clone returns a copy with its own settings map.
func (e Equipment) Clone() Equipment {
	cp := e
	if e.Settings != nil {
		cp.Settings = make(map[string]any, len(e.Settings))
		for k, v := range e.Settings {
			cp.Settings[k] = v
		}
	}
	return cp
}

// CloneEquipment copies a device list element by element.
func CloneEquipment(list []Equipment) []Equipment {
	if list == nil {
		return nil
	}
	out := make([]Equipment, len(list))
	for i, e := range list {
		out[i] = e.Clone()
	}
	return out
}

// Types returns the set of device types present in list.
func Types(list []Equipment) map[EquipmentType]bool {
	set := make(map[EquipmentType]bool, len(list))
	for _, e := range list {
		set[e.Type] = true
	}
	return set
}
