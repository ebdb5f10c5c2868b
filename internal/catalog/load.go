package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML catalog from disk and validates it.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return &c, nil
}

// Merge returns a catalog holding the entries of c followed by those of other.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	out := &Catalog{}
	for _, src := range []*Catalog{c, other} {
		if src == nil {
			continue
		}
		out.EquipmentFailures = append(out.EquipmentFailures, src.EquipmentFailures...)
		out.PatientComplications = append(out.PatientComplications, src.PatientComplications...)
		out.TimeBased = append(out.TimeBased, src.TimeBased...)
	}
	return out
}
