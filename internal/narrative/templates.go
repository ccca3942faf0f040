package narrative

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/abelbrown/trendlens/internal/model"
)

// LoadTemplates reads a YAML file mapping insight type names to template
// strings and merges it over the defaults. A key outside the closed
// insight-type enumeration is rejected so a typo cannot silently leave a
// type on its default.
//
// File format:
//
//	delta: "{theme} shifted by {delta} this week."
//	concentration: "{theme} dominates with {share:%.2f} of total score."
func LoadTemplates(path string) (Templates, error) {
	templates := Defaults()
	if path == "" {
		return templates, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse templates %s: %w", path, err)
	}

	for name, tmpl := range raw {
		t := model.InsightType(name)
		if !t.Valid() {
			return nil, fmt.Errorf("templates %s: unknown insight type %q", path, name)
		}
		templates[t] = tmpl
	}
	return templates, nil
}
