package templates

// FieldType controls which form control renders a field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
)

// SectionKind controls how a section value is laid out in the resume card.
type SectionKind string

const (
	SectionParagraph SectionKind = "paragraph"
	SectionLines     SectionKind = "lines"
	SectionTags      SectionKind = "tags"
)

// Field is one entry of a template's form schema.
type Field struct {
	Key      string    `json:"key" yaml:"key"`
	Label    string    `json:"label" yaml:"label"`
	Type     FieldType `json:"type" yaml:"type"`
	Required bool      `json:"required" yaml:"required"`
}

// Section describes one titled block of the rendered resume.
type Section struct {
	Field     string      `json:"field" yaml:"field"`
	Heading   string      `json:"heading" yaml:"heading"`
	Icon      string      `json:"icon,omitempty" yaml:"icon"`
	Kind      SectionKind `json:"kind" yaml:"kind"`
	ItemClass string      `json:"itemClass,omitempty" yaml:"itemClass"`
}

// Contact is one row of the personal information grid.
type Contact struct {
	Field string `json:"field" yaml:"field"`
	Label string `json:"label" yaml:"label"`
	Icon  string `json:"icon,omitempty" yaml:"icon"`
	Link  bool   `json:"link,omitempty" yaml:"link"`
}

// Layout is the render metadata attached to a template.
type Layout struct {
	CSSClass        string    `json:"cssClass" yaml:"cssClass"`
	HeaderClass     string    `json:"headerClass,omitempty" yaml:"headerClass"`
	NameField       string    `json:"nameField" yaml:"nameField"`
	TitleField      string    `json:"titleField" yaml:"titleField"`
	PlaceholderIcon string    `json:"placeholderIcon,omitempty" yaml:"placeholderIcon"`
	ContactIcons    bool      `json:"contactIcons" yaml:"contactIcons"`
	Contacts        []Contact `json:"contacts" yaml:"contacts"`
	Sections        []Section `json:"sections" yaml:"sections"`
}

// Template is a named field schema that drives the form, validation,
// payload mapping, preview and export.
type Template struct {
	ID            string   `json:"id" yaml:"id"`
	Order         int      `json:"order" yaml:"order"`
	Default       bool     `json:"default,omitempty" yaml:"default"`
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description" yaml:"description"`
	Focus         string   `json:"focus" yaml:"focus"`
	Category      string   `json:"category" yaml:"category"`
	Preview       string   `json:"preview" yaml:"preview"`
	Color         string   `json:"color" yaml:"color"`
	Features      []string `json:"features" yaml:"features"`
	SupportsPhoto bool     `json:"supportsPhoto" yaml:"supportsPhoto"`
	Fields        []Field  `json:"fields" yaml:"fields"`
	Layout        Layout   `json:"layout" yaml:"layout"`
}

// Field returns the schema entry for key.
func (t Template) Field(key string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Keys returns field keys in schema order.
func (t Template) Keys() []string {
	keys := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// RequiredFields returns the required fields in schema order.
func (t Template) RequiredFields() []Field {
	var out []Field
	for _, f := range t.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

// HasField reports whether key belongs to the schema.
func (t Template) HasField(key string) bool {
	_, ok := t.Field(key)
	return ok
}

func defaultContacts() []Contact {
	return []Contact{
		{Field: "phoneNumber", Label: "Phone", Icon: "📞"},
		{Field: "address", Label: "Address", Icon: "📍"},
		{Field: "dateOfBirth", Label: "Date of Birth", Icon: "🎂"},
		{Field: "linkedinUrl", Label: "LinkedIn", Icon: "💼", Link: true},
		{Field: "githubUrl", Label: "GitHub", Icon: "🐙", Link: true},
	}
}
