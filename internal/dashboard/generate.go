package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"codeblue-sim/internal/telemetry"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Render writes a Grafana dashboard for the GreptimeDB session tables to outDir.
// The datasource UID is read from GREPTIMEDB_DATASOURCE_UID.
func Render(outDir string) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
	}
	tables := map[string]string{
		"Vitals":  telemetry.VitalsTableName,
		"Events":  telemetry.EventTableName,
		"Outcome": telemetry.OutcomeTableName,
	}

	tpl, err := template.New("dashboards").Funcs(funcMap).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, t := range tpl.Templates() {
		if !strings.HasSuffix(t.Name(), ".tmpl") {
			continue
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(t.Name(), ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := t.Execute(f, tables); err != nil {
			f.Close()
			return fmt.Errorf("render %s: %w", t.Name(), err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
