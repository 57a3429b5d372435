package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"resume-builder/internal/templates"
)

func samplePNG(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			img.Set(x, y, color.RGBA{R: 102, G: 126, B: 234, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name, template, want string
	}{
		{name: "Jane  Doe", template: "Modern Professional", want: "Jane_Doe_Modern_Professional_Resume.pdf"},
		{name: "Grace", template: "Minimalist", want: "Grace_Minimalist_Resume.pdf"},
		{name: "", template: "Tech Savvy", want: "Resume_Tech_Savvy_Resume.pdf"},
		{name: "a/b", template: "Academic", want: "a_b_Academic_Resume.pdf"},
	}
	for _, tt := range tests {
		if got := FileName(tt.name, tt.template); got != tt.want {
			t.Fatalf("FileName(%q, %q) = %q, want %q", tt.name, tt.template, got, tt.want)
		}
	}
}

func TestPDFContainsLabelsInSchemaOrder(t *testing.T) {
	tpl := templates.Default().Get("modernProfessional")
	data, err := PDF(Input{
		Template: tpl,
		Values: map[string]string{
			"fullName":          "Jane Doe",
			"professionalTitle": "Platform Engineer",
			"profileSummary":    "Builds reliable systems.",
			"keySkills":         "Go, Postgres",
		},
	})
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("expected pdf header")
	}

	report, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if report.Pages != 1 {
		t.Fatalf("expected 1 page, got %d", report.Pages)
	}
	text := report.Text
	order := []string{"RESUME", "Jane Doe", "Professional Title", "Profile Summary", "Key Skills"}
	last := -1
	for _, want := range order {
		idx := strings.Index(text, want)
		if idx < 0 {
			t.Fatalf("expected %q in pdf text %q", want, text)
		}
		if idx < last {
			t.Fatalf("expected %q after previous entries in %q", want, text)
		}
		last = idx
	}
	if strings.Count(text, "Jane Doe") != 1 {
		t.Fatalf("expected the name field to be printed once, got %q", text)
	}
}

func TestPDFAddsPagesForLongContent(t *testing.T) {
	tpl := templates.Default().Get("techSavvy")
	values := map[string]string{"fullName": "Ada Lovelace"}
	long := strings.Repeat("Shipped a distributed system in Go.\n", 30)
	for _, f := range tpl.Fields {
		if f.Key != "fullName" {
			values[f.Key] = long
		}
	}

	data, err := PDF(Input{Template: tpl, Values: values})
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	report, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if report.Pages < 2 {
		t.Fatalf("expected content to flow onto more pages, got %d", report.Pages)
	}
}

func TestPDFWithPhotoAndBrokenPhoto(t *testing.T) {
	tpl := templates.Default().Get("executive")
	values := map[string]string{"fullName": "Sam Exec", "designation": "COO"}

	withPhoto, err := PDF(Input{Template: tpl, Values: values, Photo: samplePNG(t, 120)})
	if err != nil {
		t.Fatalf("PDF with photo: %v", err)
	}
	if !bytes.Contains(withPhoto, []byte("/Subtype /Image")) {
		t.Fatalf("expected embedded image object")
	}

	broken, err := PDF(Input{Template: tpl, Values: values, Photo: []byte("not an image")})
	if err != nil {
		t.Fatalf("PDF with broken photo: %v", err)
	}
	if bytes.Contains(broken, []byte("/Subtype /Image")) {
		t.Fatalf("expected broken photo to be skipped")
	}
}
