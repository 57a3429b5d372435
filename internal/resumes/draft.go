package resumes

import (
	"strings"

	"resume-builder/internal/templates"
)

// Draft holds the in-progress form values for one template.
type Draft struct {
	TemplateID string
	Values     map[string]string
}

// NewDraft returns a draft with every schema key present and empty.
func NewDraft(tpl templates.Template) Draft {
	values := make(map[string]string, len(tpl.Fields))
	for _, f := range tpl.Fields {
		values[f.Key] = ""
	}
	return Draft{TemplateID: tpl.ID, Values: values}
}

// Apply copies the entries of values whose keys belong to the draft's schema.
func (d Draft) Apply(values map[string]string) Draft {
	for k, v := range values {
		if _, ok := d.Values[k]; ok {
			d.Values[k] = v
		}
	}
	return d
}

// Value returns the value stored for key.
func (d Draft) Value(key string) string {
	return d.Values[key]
}

func lowerLabel(label string) string {
	return strings.ToLower(label)
}
