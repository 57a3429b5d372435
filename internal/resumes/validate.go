package resumes

import (
	"strings"

	"resume-builder/internal/templates"
)

// Validate walks the schema in order and reports the first required field
// whose trimmed value is empty.
func Validate(tpl templates.Template, d Draft) error {
	for _, f := range tpl.Fields {
		if !f.Required {
			continue
		}
		if strings.TrimSpace(d.Values[f.Key]) == "" {
			return &MissingFieldError{Key: f.Key, Label: f.Label}
		}
	}
	return nil
}

// MissingFields lists every required key left empty, in schema order.
func MissingFields(tpl templates.Template, d Draft) []string {
	var missing []string
	for _, f := range tpl.Fields {
		if f.Required && strings.TrimSpace(d.Values[f.Key]) == "" {
			missing = append(missing, f.Key)
		}
	}
	return missing
}
