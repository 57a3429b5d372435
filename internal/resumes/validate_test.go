package resumes

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"resume-builder/internal/resumeapi"
	"resume-builder/internal/templates"
)

func TestNewDraftHasEverySchemaKey(t *testing.T) {
	tpl := templates.Default().Get("minimalist")
	d := NewDraft(tpl)
	if len(d.Values) != len(tpl.Fields) {
		t.Fatalf("expected %d keys, got %d", len(tpl.Fields), len(d.Values))
	}
	for _, f := range tpl.Fields {
		if v, ok := d.Values[f.Key]; !ok || v != "" {
			t.Fatalf("expected empty value for %s", f.Key)
		}
	}
}

func TestApplyIgnoresForeignKeys(t *testing.T) {
	tpl := templates.Default().Get("minimalist")
	d := NewDraft(tpl).Apply(map[string]string{"name": "Sam", "fullName": "Other"})
	if d.Value("name") != "Sam" {
		t.Fatalf("expected name to be set")
	}
	if _, ok := d.Values["fullName"]; ok {
		t.Fatalf("fullName is not part of the minimalist schema")
	}
}

func TestValidateReportsFirstMissingInSchemaOrder(t *testing.T) {
	tpl := templates.Default().Get("modernProfessional")

	err := Validate(tpl, NewDraft(tpl))
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if missing.Key != "fullName" || err.Error() != "Please enter your full name" {
		t.Fatalf("unexpected error %q (%s)", err.Error(), missing.Key)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput")
	}

	values := modernValues()
	values["profileSummary"] = "   "
	values["education"] = ""
	err = Validate(tpl, NewDraft(tpl).Apply(values))
	if err == nil || err.Error() != "Please enter your profile summary" {
		t.Fatalf("expected whitespace summary to be missing, got %v", err)
	}
	if diff := cmp.Diff([]string{"profileSummary", "education"}, MissingFields(tpl, NewDraft(tpl).Apply(values))); diff != "" {
		t.Fatalf("unexpected missing fields (-want +got):\n%s", diff)
	}
}

func TestValidateIgnoresOptionalFields(t *testing.T) {
	tpl := templates.Default().Get("modernProfessional")
	if err := Validate(tpl, NewDraft(tpl).Apply(modernValues())); err != nil {
		t.Fatalf("expected complete draft to validate, got %v", err)
	}
}

func TestMapPayloadFallbackChains(t *testing.T) {
	cases := []struct {
		name   string
		values map[string]string
		want   resumeapi.Payload
	}{
		{
			name:   "modern professional",
			values: modernValues(),
			want: resumeapi.Payload{
				Name:       "Jane Doe",
				Skills:     "Go, SQL",
				Experience: "Acme, 2020-2024",
				Bio:        "Builds things.",
			},
		},
		{
			name:   "minimalist",
			values: minimalistValues(),
			want: resumeapi.Payload{
				Name:       "Sam Roe",
				Skills:     "Figma",
				Experience: "Studio, 2019-2024",
				Bio:        "Clean work.",
			},
		},
		{
			name:   "empty values use defaults",
			values: map[string]string{"fullName": "", "skills": "x", "topProjects": "p", "executiveSummary": "exec"},
			want: resumeapi.Payload{
				Name:     "Untitled Resume",
				Skills:   "x",
				Projects: "p",
				Bio:      "exec",
			},
		},
		{
			name:   "nothing set",
			values: map[string]string{},
			want:   resumeapi.Payload{Name: "Untitled Resume", Bio: "Professional summary"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, MapPayload(tc.values, nil)); diff != "" {
				t.Fatalf("unexpected payload (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMapPayloadPrefersProfileSummaryOverBio(t *testing.T) {
	got := MapPayload(map[string]string{"bio": "b", "personalBio": "pb", "profileSummary": "ps"}, nil)
	if got.Bio != "ps" {
		t.Fatalf("expected profileSummary to win, got %q", got.Bio)
	}
	got = MapPayload(map[string]string{"bio": "b", "personalBio": "pb"}, nil)
	if got.Bio != "pb" {
		t.Fatalf("expected personalBio to win, got %q", got.Bio)
	}
}
