package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by lookups for unknown template ids.
var ErrNotFound = errors.New("template not found")

// Registry holds the loaded templates.
type Registry struct {
	byID      map[string]Template
	ordered   []Template
	defaultID string
}

// Load parses every *.yaml / *.yml file under fsys into a Registry.
func Load(fsys fs.FS) (*Registry, error) {
	if fsys == nil {
		return nil, errors.New("templates: nil filesystem")
	}
	reg := &Registry{byID: make(map[string]Template)}

	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(p) {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("templates: read %s: %w", p, err)
		}
		var tpl Template
		if err := yaml.Unmarshal(data, &tpl); err != nil {
			return fmt.Errorf("templates: parse %s: %w", p, err)
		}
		tpl, err = normalise(tpl, p)
		if err != nil {
			return err
		}
		if _, exists := reg.byID[tpl.ID]; exists {
			return fmt.Errorf("templates: duplicate template %q (file %s)", tpl.ID, p)
		}
		if tpl.Default {
			if reg.defaultID != "" {
				return fmt.Errorf("templates: %q and %q are both marked default", reg.defaultID, tpl.ID)
			}
			reg.defaultID = tpl.ID
		}
		reg.byID[tpl.ID] = tpl
		reg.ordered = append(reg.ordered, tpl)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(reg.ordered) == 0 {
		return nil, errors.New("templates: no definitions found")
	}
	if reg.defaultID == "" {
		return nil, errors.New("templates: no default template defined")
	}

	sort.SliceStable(reg.ordered, func(i, j int) bool {
		if reg.ordered[i].Order != reg.ordered[j].Order {
			return reg.ordered[i].Order < reg.ordered[j].Order
		}
		return reg.ordered[i].ID < reg.ordered[j].ID
	})
	return reg, nil
}

func isDefinitionFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func normalise(tpl Template, source string) (Template, error) {
	tpl.ID = strings.TrimSpace(tpl.ID)
	tpl.Name = strings.TrimSpace(tpl.Name)
	if tpl.ID == "" {
		return Template{}, fmt.Errorf("templates: file %s defines an empty id", source)
	}
	if tpl.Name == "" {
		return Template{}, fmt.Errorf("templates: %q (file %s) has no name", tpl.ID, source)
	}
	if len(tpl.Fields) == 0 {
		return Template{}, fmt.Errorf("templates: %q (file %s) has no fields", tpl.ID, source)
	}

	seen := make(map[string]struct{}, len(tpl.Fields))
	for i, f := range tpl.Fields {
		f.Key = strings.TrimSpace(f.Key)
		if f.Key == "" {
			return Template{}, fmt.Errorf("templates: %q field %d has an empty key", tpl.ID, i)
		}
		if _, dup := seen[f.Key]; dup {
			return Template{}, fmt.Errorf("templates: %q defines field %q twice", tpl.ID, f.Key)
		}
		seen[f.Key] = struct{}{}
		if f.Type == "" {
			f.Type = FieldText
		}
		if f.Type != FieldText && f.Type != FieldTextarea {
			return Template{}, fmt.Errorf("templates: %q field %q has unsupported type %q", tpl.ID, f.Key, f.Type)
		}
		if strings.TrimSpace(f.Label) == "" {
			f.Label = f.Key
		}
		tpl.Fields[i] = f
	}

	layout := tpl.Layout
	if len(layout.Contacts) == 0 {
		layout.Contacts = defaultContacts()
	}
	for _, ref := range []string{layout.NameField, layout.TitleField} {
		if _, ok := seen[ref]; !ok {
			return Template{}, fmt.Errorf("templates: %q layout references unknown field %q", tpl.ID, ref)
		}
	}
	for _, c := range layout.Contacts {
		if _, ok := seen[c.Field]; !ok {
			return Template{}, fmt.Errorf("templates: %q contact references unknown field %q", tpl.ID, c.Field)
		}
	}
	for i, s := range layout.Sections {
		if _, ok := seen[s.Field]; !ok {
			return Template{}, fmt.Errorf("templates: %q section references unknown field %q", tpl.ID, s.Field)
		}
		switch s.Kind {
		case "":
			s.Kind = SectionLines
		case SectionParagraph, SectionLines, SectionTags:
		default:
			return Template{}, fmt.Errorf("templates: %q section %q has unsupported kind %q", tpl.ID, s.Field, s.Kind)
		}
		layout.Sections[i] = s
	}
	tpl.Layout = layout
	return tpl, nil
}
