package resumes

import (
	"context"

	"resume-builder/internal/export"
	"resume-builder/internal/preview"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

// PhotoRoute is the page route that serves a staged photo.
func PhotoRoute(id string) string {
	return "/resumes/" + id + "/photo"
}

// PhotoSrc returns the image URL a preview should use for doc.
func (s *Service) PhotoSrc(doc Document) string {
	if doc.PhotoKey != "" {
		return PhotoRoute(doc.ID)
	}
	return ResolvePhotoURL(s.PhotoBaseURL, doc.PhotoURL)
}

// PreviewInput builds the renderer input for a document.
func (s *Service) PreviewInput(doc Document) preview.Input {
	return preview.Input{
		Template: s.Template(doc),
		Values:   doc.Values,
		PhotoSrc: s.PhotoSrc(doc),
	}
}

// PDF renders the document as a PDF and returns it with its download name.
// A photo that cannot be loaded is left out of the export.
func (s *Service) PDF(ctx context.Context, doc Document) ([]byte, string, error) {
	tpl := s.Template(doc)
	var photo []byte
	if tpl.SupportsPhoto && doc.HasPhoto() {
		data, err := s.PhotoData(ctx, doc)
		if err != nil {
			telemetry.Warn("export.photo_unavailable", map[string]any{
				"resume_id": doc.ID,
				"error":     err,
			})
		} else {
			photo = data
		}
	}
	data, err := export.PDF(export.Input{Template: tpl, Values: doc.Values, Photo: photo})
	if err != nil {
		return nil, "", err
	}
	metrics.IncExport("pdf")
	return data, export.FileNameFor(tpl, doc.Values), nil
}
