package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/resumeapi"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/templates"
)

// RemoteAPI is the subset of the resume API client the service relies on.
type RemoteAPI interface {
	CreateResume(ctx context.Context, payload resumeapi.Payload) (resumeapi.Resume, error)
	UpdateResume(ctx context.Context, id resumeapi.ID, payload resumeapi.Payload) (resumeapi.Resume, error)
	DeleteResume(ctx context.Context, id resumeapi.ID) error
	RateResume(ctx context.Context, id resumeapi.ID, rating int) (map[string]any, error)
	ListResumes(ctx context.Context) ([]resumeapi.Resume, error)
	ListTemplates(ctx context.Context) ([]resumeapi.Template, error)
	FetchPhoto(ctx context.Context, photoURL string) ([]byte, string, error)
}

// Service contains business logic for generated resumes.
type Service struct {
	Registry      *templates.Registry
	Repo          Repo
	Store         object.ObjectStore
	API           RemoteAPI
	PhotoBaseURL  string
	MaxPhotoBytes int64
	Now           func() time.Time
}

// Result is a generated or updated document plus any non-blocking photo warning.
type Result struct {
	Document Document
	Warning  string
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Template returns the template a document was generated from.
func (s *Service) Template(doc Document) templates.Template {
	return s.Registry.Get(doc.TemplateID)
}

// Check validates values against a template without submitting them.
func (s *Service) Check(templateID string, values map[string]string) ValidationReport {
	tpl := s.Registry.Get(templateID)
	draft := NewDraft(tpl).Apply(values)
	report := ValidationReport{
		Valid:   true,
		Missing: MissingFields(tpl, draft),
		Payload: MapPayload(draft.Values, nil),
	}
	if report.Missing == nil {
		report.Missing = []string{}
	}
	if err := Validate(tpl, draft); err != nil {
		report.Valid = false
		report.Message = err.Error()
	}
	return report
}

// Generate validates the draft, creates the resume through the API and keeps
// a local document for preview and export.
func (s *Service) Generate(ctx context.Context, userID, templateID string, values map[string]string, photo *resumeapi.Photo) (Result, error) {
	if userID == "" {
		return Result{}, ErrInvalidInput
	}
	if s.Registry == nil || s.Repo == nil || s.API == nil {
		return Result{}, errors.New("missing dependencies")
	}

	tpl := s.Registry.Get(templateID)
	draft := NewDraft(tpl).Apply(values)
	if err := Validate(tpl, draft); err != nil {
		metrics.IncResumeGenerationFailed()
		return Result{}, err
	}

	photo, warning, err := s.acceptPhoto(tpl, photo)
	if err != nil {
		metrics.IncResumeGenerationFailed()
		return Result{}, err
	}

	var photoKey, photoMime string
	if photo != nil {
		photoKey, photoMime, err = s.stagePhoto(ctx, userID, photo)
		if err != nil {
			metrics.IncResumeGenerationFailed()
			return Result{}, err
		}
	}

	remote, err := s.API.CreateResume(ctx, MapPayload(draft.Values, photo))
	if err != nil {
		s.discardPhoto(ctx, photoKey)
		metrics.IncResumeGenerationFailed()
		return Result{}, fmt.Errorf("create remote resume: %w", err)
	}

	now := s.now()
	doc := Document{
		ID:          uuid.NewString(),
		UserID:      userID,
		TemplateID:  tpl.ID,
		RemoteID:    remote.ID.String(),
		Values:      draft.Values,
		PhotoURL:    remote.PhotoURL,
		PhotoKey:    photoKey,
		PhotoMime:   photoMime,
		CreatedAt:   parseRemoteTime(remote.CreatedAt, now),
		UpdatedAt:   parseRemoteTime(remote.UpdatedAt, now),
		GeneratedAt: now,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		s.discardPhoto(ctx, photoKey)
		metrics.IncResumeGenerationFailed()
		return Result{}, fmt.Errorf("save document: %w", err)
	}

	metrics.IncResumeGenerated()
	telemetry.Info("resume.generated", map[string]any{
		"user_id":     userID,
		"resume_id":   doc.ID,
		"remote_id":   doc.RemoteID,
		"template_id": doc.TemplateID,
		"has_photo":   photo != nil,
	})
	return Result{Document: doc, Warning: warning}, nil
}

// Update replaces the values of a document and pushes them to the API.
// A nil photo keeps the current one.
func (s *Service) Update(ctx context.Context, userID, id string, values map[string]string, photo *resumeapi.Photo) (Result, error) {
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return Result{}, err
	}
	tpl := s.Registry.Get(doc.TemplateID)
	draft := NewDraft(tpl).Apply(values)
	if err := Validate(tpl, draft); err != nil {
		return Result{}, err
	}

	photo, warning, err := s.acceptPhoto(tpl, photo)
	if err != nil {
		return Result{}, err
	}
	oldKey := doc.PhotoKey
	if photo != nil {
		key, mime, err := s.stagePhoto(ctx, userID, photo)
		if err != nil {
			return Result{}, err
		}
		doc.PhotoKey, doc.PhotoMime = key, mime
	}

	if doc.RemoteID != "" {
		remote, err := s.API.UpdateResume(ctx, resumeapi.ID(doc.RemoteID), MapPayload(draft.Values, photo))
		if err != nil {
			if photo != nil {
				s.discardPhoto(ctx, doc.PhotoKey)
			}
			return Result{}, fmt.Errorf("update remote resume: %w", err)
		}
		if remote.PhotoURL != "" {
			doc.PhotoURL = remote.PhotoURL
		}
		doc.UpdatedAt = parseRemoteTime(remote.UpdatedAt, s.now())
	} else {
		doc.UpdatedAt = s.now()
	}

	doc.Values = draft.Values
	doc.GeneratedAt = s.now()
	if err := s.Repo.Update(ctx, doc); err != nil {
		return Result{}, fmt.Errorf("save document: %w", err)
	}
	if photo != nil && oldKey != "" && oldKey != doc.PhotoKey {
		s.discardPhoto(ctx, oldKey)
	}
	return Result{Document: doc, Warning: warning}, nil
}

// Delete removes the remote resume, the local document and its staged photo.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if doc.RemoteID != "" {
		if err := s.API.DeleteResume(ctx, resumeapi.ID(doc.RemoteID)); err != nil && !resumeapi.IsNotFound(err) {
			return fmt.Errorf("delete remote resume: %w", err)
		}
	}
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.discardPhoto(ctx, doc.PhotoKey)
	return nil
}

// Rate records a 1 to 5 rating for a document.
func (s *Service) Rate(ctx context.Context, userID, id string, rating int) (Document, error) {
	if rating < 1 || rating > 5 {
		return Document{}, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return Document{}, err
	}
	if doc.RemoteID != "" {
		if _, err := s.API.RateResume(ctx, resumeapi.ID(doc.RemoteID), rating); err != nil {
			return Document{}, fmt.Errorf("rate remote resume: %w", err)
		}
	}
	doc.Rating = rating
	doc.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Get returns a document owned by userID. Documents of other users read as not found.
func (s *Service) Get(ctx context.Context, userID, id string) (Document, error) {
	if userID == "" || id == "" {
		return Document{}, ErrInvalidInput
	}
	doc, err := s.Repo.GetByID(ctx, userID, id)
	if errors.Is(err, ErrForbidden) {
		return Document{}, ErrNotFound
	}
	return doc, err
}

// List returns a user's documents, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Photo opens the staged photo of a document.
func (s *Service) Photo(ctx context.Context, userID, id string) (io.ReadCloser, string, error) {
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	if doc.PhotoKey == "" || s.Store == nil {
		return nil, "", ErrNotFound
	}
	rc, err := s.Store.Open(ctx, doc.PhotoKey)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	return rc, doc.PhotoMime, nil
}

// PhotoData returns the photo bytes for export: the staged copy first, then
// the API's photo_url. A missing photo returns nil data and no error.
func (s *Service) PhotoData(ctx context.Context, doc Document) ([]byte, error) {
	if doc.PhotoKey != "" && s.Store != nil {
		rc, err := s.Store.Open(ctx, doc.PhotoKey)
		if err == nil {
			defer rc.Close()
			return io.ReadAll(rc)
		}
		if !errors.Is(err, object.ErrNotFound) {
			return nil, err
		}
	}
	if doc.PhotoURL != "" && s.API != nil {
		data, _, err := s.API.FetchPhoto(ctx, ResolvePhotoURL(s.PhotoBaseURL, doc.PhotoURL))
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	return nil, nil
}

// RemoteList lists every resume held by the API.
func (s *Service) RemoteList(ctx context.Context) ([]resumeapi.Resume, error) {
	return s.API.ListResumes(ctx)
}

// RemoteTemplates lists the API's template catalogue.
func (s *Service) RemoteTemplates(ctx context.Context) ([]resumeapi.Template, error) {
	return s.API.ListTemplates(ctx)
}

func (s *Service) acceptPhoto(tpl templates.Template, photo *resumeapi.Photo) (*resumeapi.Photo, string, error) {
	if photo == nil || len(photo.Data) == 0 {
		return nil, "", nil
	}
	if !tpl.SupportsPhoto {
		return nil, "", nil
	}
	warning, err := CheckPhoto(photo.ContentType, photo.Data, s.MaxPhotoBytes)
	if err != nil {
		return nil, "", err
	}
	return photo, warning, nil
}

func (s *Service) stagePhoto(ctx context.Context, userID string, photo *resumeapi.Photo) (string, string, error) {
	if s.Store == nil {
		return "", photo.ContentType, nil
	}
	name := photo.FileName
	if name == "" {
		name = "photo"
	}
	key, _, mime, err := s.Store.Save(ctx, userID, name, bytes.NewReader(photo.Data))
	if err != nil {
		return "", "", fmt.Errorf("stage photo: %w", err)
	}
	if photo.ContentType != "" {
		mime = photo.ContentType
	}
	return key, mime, nil
}

func (s *Service) discardPhoto(ctx context.Context, key string) {
	if key == "" || s.Store == nil {
		return
	}
	if err := s.Store.Delete(ctx, key); err != nil {
		telemetry.Warn("resume.photo_cleanup_failed", map[string]any{"key": key, "error": err})
	}
}

// PhotoLimit returns the upload ceiling for photos.
func (s *Service) PhotoLimit() int64 {
	if s.MaxPhotoBytes > 0 {
		return s.MaxPhotoBytes
	}
	return MaxPhotoBytes
}
