package resumeapi

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError reports a non-2xx response from the resume API.
type StatusError struct {
	Status int
	Method string
	Path   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// IsNotFound reports whether err is a 404 from the resume API.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}
