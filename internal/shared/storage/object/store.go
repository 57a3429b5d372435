package object

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"resume-builder/internal/shared/util"
)

// ErrNotFound is returned by Open when the storage key does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStore saves and retrieves staged resume photos.
type ObjectStore interface {
	Save(ctx context.Context, userID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}

// NewKey builds "<hashed user id>/<random>_<file name>". Keys never contain
// the raw user id or a traversal segment.
func NewKey(userID, fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return path.Join(util.HashUserKey(userID), random+"_"+name), nil
}

// Sniff detects the content type from the first 512 bytes of r and returns a
// reader that still yields the whole stream.
func Sniff(r io.Reader) (string, io.Reader, error) {
	var head [512]byte
	n, err := io.ReadFull(r, head[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("read sniff: %w", err)
	}
	return http.DetectContentType(head[:n]), io.MultiReader(bytes.NewReader(head[:n]), r), nil
}
