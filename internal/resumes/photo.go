package resumes

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
)

const (
	// MaxPhotoBytes is the default upload ceiling.
	MaxPhotoBytes = 5 << 20

	minPhotoSide = 100

	msgNotImage   = "Please select an image file (JPG, PNG, GIF, etc.)"
	msgTooLarge   = "Image size should be less than 5MB. Please choose a smaller image."
	msgLowQuality = "Image should be at least 100x100 pixels for better quality."
)

// CheckPhoto rejects non-image or oversized uploads. Small but valid images
// pass with a warning.
func CheckPhoto(contentType string, data []byte, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = MaxPhotoBytes
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", &PhotoError{Message: msgNotImage}
	}
	if int64(len(data)) > maxBytes {
		return "", &PhotoError{Message: msgTooLarge}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		// Formats without a registered decoder are accepted without a size check.
		return "", nil
	}
	if cfg.Width < minPhotoSide || cfg.Height < minPhotoSide {
		return msgLowQuality, nil
	}
	return "", nil
}

// ResolvePhotoURL joins an API photo path onto base. Absolute URLs are kept.
func ResolvePhotoURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "data:") {
		return ref
	}
	base = strings.TrimRight(base, "/")
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return base + ref
}
