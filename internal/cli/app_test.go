package cli

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-builder/internal/export"
	"resume-builder/internal/resumeapi"
	"resume-builder/internal/resumes"
	"resume-builder/internal/templates"
)

type scriptedPrompter struct {
	answers  map[string]string
	selected int
	confirm  bool
	asked    []string
}

func (p *scriptedPrompter) Select(message string, options []string, defaultIndex int) (int, error) {
	if p.selected < 0 {
		return defaultIndex, nil
	}
	return p.selected, nil
}

func (p *scriptedPrompter) Input(message, requiredMsg string) (string, error) {
	return p.answer(message)
}

func (p *scriptedPrompter) Multiline(message, requiredMsg string) (string, error) {
	return p.answer(message)
}

func (p *scriptedPrompter) Confirm(message string, def bool) (bool, error) {
	return p.confirm, nil
}

func (p *scriptedPrompter) answer(message string) (string, error) {
	label := strings.TrimSuffix(message, " *")
	p.asked = append(p.asked, label)
	if label == "abort" {
		return "", ErrAborted
	}
	return p.answers[label], nil
}

type stubAPI struct {
	created []resumeapi.Payload
	deleted []resumeapi.ID
	rated   map[resumeapi.ID]int
	list    []resumeapi.Resume
	err     error
}

func (s *stubAPI) CreateResume(ctx context.Context, payload resumeapi.Payload) (resumeapi.Resume, error) {
	if s.err != nil {
		return resumeapi.Resume{}, s.err
	}
	s.created = append(s.created, payload)
	return resumeapi.Resume{ID: "12", Name: payload.Name}, nil
}

func (s *stubAPI) ListResumes(ctx context.Context) ([]resumeapi.Resume, error) {
	return s.list, s.err
}

func (s *stubAPI) DeleteResume(ctx context.Context, id resumeapi.ID) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

func (s *stubAPI) RateResume(ctx context.Context, id resumeapi.ID, rating int) (map[string]any, error) {
	if s.rated == nil {
		s.rated = map[resumeapi.ID]int{}
	}
	s.rated[id] = rating
	return map[string]any{"rating": rating}, s.err
}

func minimalistAnswers() map[string]string {
	return map[string]string{
		"Name":                           "Sam Lee",
		"Title":                          "Engineer",
		"Phone Number":                   "555-0100",
		"Address":                        "1 Main St",
		"Date of Birth":                  "1990-01-01",
		"One-line Summary":               "Builds things",
		"Skills List":                    "Go, SQL",
		"Work Experience (basic, short)": "Acme 2020-2024",
		"Education":                      "BSc CS, State U, 2012",
	}
}

func newApp(t *testing.T, p Prompter, api API) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &App{
		Registry: templates.Default(),
		API:      api,
		Prompt:   p,
		Out:      &out,
		OutDir:   t.TempDir(),
	}, &out
}

func TestBuildCreatesResumeAndWritesPDF(t *testing.T) {
	api := &stubAPI{}
	app, _ := newApp(t, &scriptedPrompter{answers: minimalistAnswers()}, api)

	res, err := app.Build(context.Background(), "minimalist")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if res.RemoteID != "12" {
		t.Fatalf("unexpected remote id %q", res.RemoteID)
	}
	if len(api.created) != 1 || api.created[0].Name != "Sam Lee" || api.created[0].Skills != "Go, SQL" {
		t.Fatalf("unexpected payloads %+v", api.created)
	}
	if api.created[0].Photo != nil {
		t.Fatalf("minimalist template must not send a photo")
	}
	if filepath.Base(res.PDFPath) != "Sam_Lee_Minimalist_Resume.pdf" {
		t.Fatalf("unexpected pdf path %s", res.PDFPath)
	}
	data, err := os.ReadFile(res.PDFPath)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	report, err := export.Inspect(data)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(report.Text, "Sam Lee") {
		t.Fatalf("pdf text missing name: %q", report.Text)
	}
}

func TestBuildStopsOnMissingRequiredField(t *testing.T) {
	answers := minimalistAnswers()
	delete(answers, "Education")
	api := &stubAPI{}
	app, _ := newApp(t, &scriptedPrompter{answers: answers}, api)

	_, err := app.Build(context.Background(), "minimalist")
	var missing *resumes.MissingFieldError
	if !errors.As(err, &missing) || missing.Key != "education" {
		t.Fatalf("expected missing education, got %v", err)
	}
	if len(api.created) != 0 {
		t.Fatalf("nothing should be created")
	}
}

func TestBuildSelectsDefaultTemplateAndAttachesPhoto(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 600, 600))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	tpl := templates.Default().Get("")
	answers := map[string]string{"Photo path (optional, JPG/PNG, max 5MB)": "/tmp/me.png"}
	for _, f := range tpl.Fields {
		answers[f.Label] = "value for " + f.Key
	}
	answers["Full Name"] = "Jane Doe"

	api := &stubAPI{}
	prompter := &scriptedPrompter{answers: answers, selected: -1}
	app, _ := newApp(t, prompter, api)
	app.ReadFile = func(path string) ([]byte, error) {
		if path != "/tmp/me.png" {
			t.Fatalf("unexpected photo path %s", path)
		}
		return buf.Bytes(), nil
	}

	res, err := app.Build(context.Background(), "")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(api.created) != 1 || api.created[0].Photo == nil {
		t.Fatalf("expected photo to be sent")
	}
	if api.created[0].Photo.ContentType != "image/png" || api.created[0].Photo.FileName != "me.png" {
		t.Fatalf("unexpected photo %+v", api.created[0].Photo)
	}
	if filepath.Base(res.PDFPath) != "Jane_Doe_Modern_Professional_Resume.pdf" {
		t.Fatalf("unexpected pdf path %s", res.PDFPath)
	}
}

func TestBuildPropagatesAbort(t *testing.T) {
	app, _ := newApp(t, &scriptedPrompter{answers: map[string]string{}}, &stubAPI{})
	app.Prompt = abortingPrompter{&scriptedPrompter{}}

	if _, err := app.Build(context.Background(), "minimalist"); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

type abortingPrompter struct{ *scriptedPrompter }

func (abortingPrompter) Input(string, string) (string, error) { return "", ErrAborted }

func TestBuildRejectsUnknownTemplate(t *testing.T) {
	app, _ := newApp(t, &scriptedPrompter{}, &stubAPI{})
	if _, err := app.Build(context.Background(), "nope"); err == nil {
		t.Fatalf("expected error for unknown template")
	}
}

func TestRunListDeleteRate(t *testing.T) {
	api := &stubAPI{list: []resumeapi.Resume{{ID: "3", Name: "Jane Doe", Rating: 4.5}}}
	app, out := newApp(t, &scriptedPrompter{confirm: true}, api)
	ctx := context.Background()

	if err := app.Run(ctx, []string{"list"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "Jane Doe") || !strings.Contains(out.String(), "rating 4.5") {
		t.Fatalf("unexpected list output %q", out.String())
	}
	if err := app.Run(ctx, []string{"delete", "3"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "3" {
		t.Fatalf("unexpected deletes %v", api.deleted)
	}
	if err := app.Run(ctx, []string{"rate", "3", "5"}); err != nil {
		t.Fatalf("rate: %v", err)
	}
	if api.rated["3"] != 5 {
		t.Fatalf("unexpected ratings %v", api.rated)
	}
	if err := app.Run(ctx, []string{"rate", "3", "9"}); err == nil {
		t.Fatalf("expected out-of-range rating to fail")
	}
	if err := app.Run(ctx, []string{"bogus"}); err == nil {
		t.Fatalf("expected unknown command error")
	}
}

func TestDeleteCancelled(t *testing.T) {
	api := &stubAPI{}
	app, out := newApp(t, &scriptedPrompter{confirm: false}, api)
	if err := app.Delete(context.Background(), "3"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(api.deleted) != 0 || !strings.Contains(out.String(), "cancelled") {
		t.Fatalf("expected cancellation, got %v %q", api.deleted, out.String())
	}
}

func TestTemplatesMarksDefault(t *testing.T) {
	app, out := newApp(t, &scriptedPrompter{}, &stubAPI{})
	if err := app.Templates(); err != nil {
		t.Fatalf("templates: %v", err)
	}
	if !strings.Contains(out.String(), "* modernProfessional") {
		t.Fatalf("default template not marked: %q", out.String())
	}
}
