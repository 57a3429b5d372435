package resumes

import (
	"time"

	"resume-builder/internal/resumeapi"
)

// Document is a generated resume kept for preview and export.
type Document struct {
	ID          string
	UserID      string
	TemplateID  string
	RemoteID    string
	Values      map[string]string
	PhotoURL    string
	PhotoKey    string
	PhotoMime   string
	Rating      int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	GeneratedAt time.Time
}

// HasPhoto reports whether a staged or remote photo is attached.
func (d Document) HasPhoto() bool {
	return d.PhotoKey != "" || d.PhotoURL != ""
}

// Name returns the resume owner's display name.
func (d Document) Name() string {
	return DisplayName(d.Values)
}

// ValidationReport is the outcome of checking a draft without submitting it.
type ValidationReport struct {
	Valid   bool              `json:"valid"`
	Message string            `json:"message,omitempty"`
	Missing []string          `json:"missing"`
	Payload resumeapi.Payload `json:"payload"`
}

func parseRemoteTime(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return fallback
}
