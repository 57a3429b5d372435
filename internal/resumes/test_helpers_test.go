package resumes

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"sync"
	"testing"
	"time"

	"resume-builder/internal/resumeapi"
	"resume-builder/internal/shared/storage/object/local"
	"resume-builder/internal/templates"
)

type fakeAPI struct {
	mu       sync.Mutex
	created  []resumeapi.Payload
	updated  map[resumeapi.ID]resumeapi.Payload
	deleted  []resumeapi.ID
	ratings  map[resumeapi.ID]int
	nextID   int
	photoURL string
	err      error
	photo    []byte
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		updated: map[resumeapi.ID]resumeapi.Payload{},
		ratings: map[resumeapi.ID]int{},
		nextID:  40,
	}
}

func (f *fakeAPI) CreateResume(ctx context.Context, payload resumeapi.Payload) (resumeapi.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return resumeapi.Resume{}, f.err
	}
	f.created = append(f.created, payload)
	f.nextID++
	res := resumeapi.Resume{
		ID:        resumeapi.ID(strconv.Itoa(f.nextID)),
		Name:      payload.Name,
		CreatedAt: "2026-02-01T10:00:00Z",
		UpdatedAt: "2026-02-01T10:00:00Z",
	}
	if payload.Photo != nil {
		res.PhotoURL = f.photoURL
	}
	return res, nil
}

func (f *fakeAPI) UpdateResume(ctx context.Context, id resumeapi.ID, payload resumeapi.Payload) (resumeapi.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return resumeapi.Resume{}, f.err
	}
	f.updated[id] = payload
	return resumeapi.Resume{ID: id, Name: payload.Name, UpdatedAt: "2026-02-02T10:00:00Z"}, nil
}

func (f *fakeAPI) DeleteResume(ctx context.Context, id resumeapi.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) RateResume(ctx context.Context, id resumeapi.ID, rating int) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.ratings[id] = rating
	return map[string]any{"rating": rating}, nil
}

func (f *fakeAPI) ListResumes(ctx context.Context) ([]resumeapi.Resume, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []resumeapi.Resume{{ID: "1", Name: "Remote"}}, nil
}

func (f *fakeAPI) ListTemplates(ctx context.Context) ([]resumeapi.Template, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []resumeapi.Template{{"id": float64(1), "name": "Classic"}}, nil
}

func (f *fakeAPI) FetchPhoto(ctx context.Context, photoURL string) ([]byte, string, error) {
	if f.photo == nil {
		return nil, "", &resumeapi.StatusError{Status: 404, Method: "GET", Path: photoURL}
	}
	return f.photo, "image/png", nil
}

func newTestService(t *testing.T) (*Service, *fakeAPI) {
	t.Helper()
	api := newFakeAPI()
	svc := &Service{
		Registry:      templates.Default(),
		Repo:          NewMemoryRepo(),
		Store:         local.New(t.TempDir()),
		API:           api,
		PhotoBaseURL:  "http://localhost:8000",
		MaxPhotoBytes: MaxPhotoBytes,
		Now:           func() time.Time { return time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC) },
	}
	return svc, api
}

func modernValues() map[string]string {
	return map[string]string{
		"fullName":          "Jane Doe",
		"professionalTitle": "Engineer",
		"phoneNumber":       "555-0100",
		"address":           "1 Main St",
		"dateOfBirth":       "1990-01-01",
		"profileSummary":    "Builds things.",
		"keySkills":         "Go, SQL",
		"workExperience":    "Acme, 2020-2024",
		"education":         "BSc, State U, 2012",
	}
}

func minimalistValues() map[string]string {
	return map[string]string{
		"name":           "Sam Roe",
		"title":          "Designer",
		"phoneNumber":    "555-0101",
		"address":        "2 Side St",
		"dateOfBirth":    "1991-02-02",
		"summary":        "Clean work.",
		"skillsList":     "Figma",
		"workExperience": "Studio, 2019-2024",
		"education":      "BA, Art School",
	}
}

func samplePNG(t *testing.T, side int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	for x := 0; x < side; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
