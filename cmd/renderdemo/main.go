package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resume-builder/internal/export"
	"resume-builder/internal/preview"
	"resume-builder/internal/templates"
)

func main() {
	outDir := flag.String("out", "./out", "directory for the generated PDF and HTML files")
	templateID := flag.String("template", "", "template id (default template when empty)")
	flag.Parse()

	tpl := templates.Default().Get(*templateID)
	values := sampleValues(tpl)

	pdfBytes, err := export.PDF(export.Input{Template: tpl, Values: values})
	if err != nil {
		fmt.Fprintf(os.Stderr, "render pdf failed: %v\n", err)
		os.Exit(1)
	}

	renderer, err := preview.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load views failed: %v\n", err)
		os.Exit(1)
	}
	page, err := renderer.RenderPrint(preview.Input{Template: tpl, Values: values})
	if err != nil {
		fmt.Fprintf(os.Stderr, "render html failed: %v\n", err)
		os.Exit(1)
	}

	pdfPath := filepath.Join(*outDir, export.FileNameFor(tpl, values))
	htmlPath := strings.TrimSuffix(pdfPath, ".pdf") + ".html"
	if err := writeOutputs(*outDir, map[string][]byte{pdfPath: pdfBytes, htmlPath: []byte(page)}); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}

	if err := validateRenderedPDF(pdfPath, values[tpl.Layout.NameField]); err != nil {
		fmt.Fprintf(os.Stderr, "render validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK: wrote %s and %s\n", pdfPath, htmlPath)
}

func writeOutputs(dir string, files map[string][]byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for path, data := range files {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// sampleValues fills every field of tpl with demo content.
func sampleValues(tpl templates.Template) map[string]string {
	samples := map[string]string{
		"fullName":    "Jordan Lee",
		"name":        "Jordan Lee",
		"phoneNumber": "+1-555-0102",
		"address":     "Austin, TX",
		"dateOfBirth": "1990-04-12",
		"linkedinUrl": "https://www.linkedin.com/in/jordanlee",
		"githubUrl":   "https://github.com/jordanlee",
		"education":   "B.S. Computer Science, University of Texas, 2012",
	}
	values := make(map[string]string, len(tpl.Fields))
	for _, f := range tpl.Fields {
		if v, ok := samples[f.Key]; ok {
			values[f.Key] = v
			continue
		}
		if f.Type == templates.FieldTextarea {
			values[f.Key] = f.Label + " line one\n" + f.Label + " line two"
		} else {
			values[f.Key] = "Sample " + f.Label
		}
	}
	return values
}

func validateRenderedPDF(path, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	report, err := export.Inspect(data)
	if err != nil {
		return err
	}
	if report.Pages < 1 {
		return fmt.Errorf("expected at least one page")
	}
	if name != "" && !strings.Contains(report.Text, name) {
		return fmt.Errorf("pdf text missing %q", name)
	}
	return nil
}
