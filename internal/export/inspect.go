package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// Report is what a PDF reads back as.
type Report struct {
	Pages int
	Text  string
}

// Inspect parses an exported PDF and returns its page count and plain text.
func Inspect(data []byte) (Report, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Report{}, fmt.Errorf("inspect pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return Report{}, fmt.Errorf("inspect pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return Report{}, fmt.Errorf("inspect pdf text: %w", err)
	}
	return Report{Pages: reader.NumPage(), Text: buf.String()}, nil
}
