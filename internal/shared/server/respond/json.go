package respond

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const htmlContentType = "text/html; charset=utf-8"

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// HTML writes a rendered page or fragment.
func HTML(c *gin.Context, status int, body string) {
	c.Data(status, htmlContentType, []byte(body))
}

// Attachment sends data as a download with the given file name. Quotes and
// line breaks are stripped from the name so it cannot break the header.
func Attachment(c *gin.Context, fileName, contentType string, data []byte) {
	fileName = strings.Map(func(r rune) rune {
		if r == '"' || r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, fileName)
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, contentType, data)
}

// Stream copies an image or other blob of unknown length to the client.
// An empty content type falls back to application/octet-stream.
func Stream(c *gin.Context, contentType string, r io.Reader) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, r, nil)
}
