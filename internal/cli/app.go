// Package cli implements resumectl, a terminal front end for the resume API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"resume-builder/internal/export"
	"resume-builder/internal/resumeapi"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/templates"
)

// API is the part of the resume API client the CLI drives.
type API interface {
	CreateResume(ctx context.Context, payload resumeapi.Payload) (resumeapi.Resume, error)
	ListResumes(ctx context.Context) ([]resumeapi.Resume, error)
	DeleteResume(ctx context.Context, id resumeapi.ID) error
	RateResume(ctx context.Context, id resumeapi.ID, rating int) (map[string]any, error)
}

// App holds the CLI's dependencies.
type App struct {
	Registry *templates.Registry
	API      API
	Prompt   Prompter
	Out      io.Writer
	OutDir   string
	ReadFile func(string) ([]byte, error)
}

// BuildResult describes a resume created by Build.
type BuildResult struct {
	RemoteID string
	PDFPath  string
	Warning  string
}

const usage = `usage: resumectl <command>

commands:
  templates            list available templates
  build [templateId]   fill in a template, create the resume and export a PDF
  list                 list resumes held by the API
  delete <id>          delete a resume
  rate <id> <1-5>      rate a resume`

// Run dispatches a command line.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.Out, usage)
		return nil
	}
	switch args[0] {
	case "templates":
		return a.Templates()
	case "build":
		templateID := ""
		if len(args) > 1 {
			templateID = args[1]
		}
		res, err := a.Build(ctx, templateID)
		if err != nil {
			return err
		}
		if res.Warning != "" {
			fmt.Fprintln(a.Out, "warning:", res.Warning)
		}
		fmt.Fprintf(a.Out, "created resume %s\nwrote %s\n", res.RemoteID, res.PDFPath)
		return nil
	case "list":
		return a.List(ctx)
	case "delete":
		if len(args) != 2 {
			return errors.New("usage: resumectl delete <id>")
		}
		return a.Delete(ctx, args[1])
	case "rate":
		if len(args) != 3 {
			return errors.New("usage: resumectl rate <id> <1-5>")
		}
		rating, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("rating must be a number: %w", err)
		}
		return a.Rate(ctx, args[1], rating)
	case "help", "-h", "--help":
		fmt.Fprintln(a.Out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

// Templates prints the template catalogue.
func (a *App) Templates() error {
	for _, tpl := range a.Registry.All() {
		marker := " "
		if tpl.ID == a.Registry.DefaultID() {
			marker = "*"
		}
		fmt.Fprintf(a.Out, "%s %-20s %s %s (%s)\n", marker, tpl.ID, tpl.Preview, tpl.Name, tpl.Category)
		fmt.Fprintf(a.Out, "  %s\n  Focus: %s\n", tpl.Description, tpl.Focus)
	}
	return nil
}

// Build prompts for every field of a template, creates the resume through the
// API and writes the PDF export to OutDir.
func (a *App) Build(ctx context.Context, templateID string) (BuildResult, error) {
	tpl, err := a.chooseTemplate(templateID)
	if err != nil {
		return BuildResult{}, err
	}
	fmt.Fprintf(a.Out, "Create Your %s Resume\n%s\nFocus: %s\n\n", tpl.Name, tpl.Description, tpl.Focus)

	draft := resumes.NewDraft(tpl)
	for _, f := range tpl.Fields {
		requiredMsg := ""
		message := f.Label
		if f.Required {
			requiredMsg = (&resumes.MissingFieldError{Key: f.Key, Label: f.Label}).Error()
			message += " *"
		}
		var answer string
		if f.Type == templates.FieldTextarea {
			answer, err = a.Prompt.Multiline(message, requiredMsg)
		} else {
			answer, err = a.Prompt.Input(message, requiredMsg)
		}
		if err != nil {
			return BuildResult{}, err
		}
		draft.Values[f.Key] = answer
	}
	if err := resumes.Validate(tpl, draft); err != nil {
		return BuildResult{}, err
	}

	var photo *resumeapi.Photo
	var warning string
	if tpl.SupportsPhoto {
		photo, warning, err = a.askPhoto()
		if err != nil {
			return BuildResult{}, err
		}
	}

	remote, err := a.API.CreateResume(ctx, resumes.MapPayload(draft.Values, photo))
	if err != nil {
		return BuildResult{}, fmt.Errorf("create resume: %w", err)
	}

	in := export.Input{Template: tpl, Values: draft.Values}
	if photo != nil {
		in.Photo = photo.Data
	}
	data, err := export.PDF(in)
	if err != nil {
		return BuildResult{}, fmt.Errorf("export pdf: %w", err)
	}
	dir := a.OutDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return BuildResult{}, err
	}
	path := filepath.Join(dir, export.FileNameFor(tpl, draft.Values))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return BuildResult{}, err
	}

	telemetry.Info("cli.resume_built", map[string]any{
		"remote_id":   remote.ID.String(),
		"template_id": tpl.ID,
		"pdf":         path,
	})
	return BuildResult{RemoteID: remote.ID.String(), PDFPath: path, Warning: warning}, nil
}

func (a *App) chooseTemplate(templateID string) (templates.Template, error) {
	if templateID != "" {
		tpl, ok := a.Registry.Lookup(templateID)
		if !ok {
			return templates.Template{}, fmt.Errorf("unknown template %q", templateID)
		}
		return tpl, nil
	}
	all := a.Registry.All()
	options := make([]string, len(all))
	def := 0
	for i, tpl := range all {
		options[i] = fmt.Sprintf("%s %s (%s)", tpl.Preview, tpl.Name, tpl.Category)
		if tpl.ID == a.Registry.DefaultID() {
			def = i
		}
	}
	idx, err := a.Prompt.Select("Choose a template", options, def)
	if err != nil {
		return templates.Template{}, err
	}
	if idx < 0 || idx >= len(all) {
		return a.Registry.Get(""), nil
	}
	return all[idx], nil
}

func (a *App) askPhoto() (*resumeapi.Photo, string, error) {
	path, err := a.Prompt.Input("Photo path (optional, JPG/PNG, max 5MB)", "")
	if err != nil {
		return nil, "", err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, "", nil
	}
	read := a.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	data, err := read(path)
	if err != nil {
		return nil, "", fmt.Errorf("read photo: %w", err)
	}
	contentType := http.DetectContentType(data)
	warning, err := resumes.CheckPhoto(contentType, data, resumes.MaxPhotoBytes)
	if err != nil {
		return nil, "", err
	}
	return &resumeapi.Photo{FileName: filepath.Base(path), ContentType: contentType, Data: data}, warning, nil
}

// List prints every resume held by the API.
func (a *App) List(ctx context.Context) error {
	items, err := a.API.ListResumes(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.Out, "no resumes")
		return nil
	}
	for _, r := range items {
		line := fmt.Sprintf("%-6s %s", r.ID, r.Name)
		if r.Rating > 0 {
			line += fmt.Sprintf("  rating %.1f", r.Rating)
		}
		if r.CreatedAt != "" {
			line += "  " + r.CreatedAt
		}
		fmt.Fprintln(a.Out, line)
	}
	return nil
}

// Delete removes a resume after confirmation.
func (a *App) Delete(ctx context.Context, id string) error {
	ok, err := a.Prompt.Confirm(fmt.Sprintf("Delete resume %s?", id), false)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.Out, "cancelled")
		return nil
	}
	if err := a.API.DeleteResume(ctx, resumeapi.ID(id)); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "deleted resume %s\n", id)
	return nil
}

// Rate records a 1 to 5 rating.
func (a *App) Rate(ctx context.Context, id string, rating int) error {
	if rating < 1 || rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	if _, err := a.API.RateResume(ctx, resumeapi.ID(id), rating); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "rated resume %s: %d\n", id, rating)
	return nil
}
