// Package export writes generated resumes as PDF documents.
package export

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"

	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/util"
	"resume-builder/internal/templates"
)

const (
	pageWidth     = 210.0
	pageHeight    = 297.0
	bottomMargin  = 15.0
	leftX         = 20.0
	topAfterBreak = 20.0

	titleSize   = 24.0
	nameSize    = 18.0
	labelSize   = 14.0
	contentSize = 11.0

	widthWithPhoto    = 120.0
	widthWithoutPhoto = 170.0
	lineStep          = 5.0
)

// Input is a resume ready for export.
type Input struct {
	Template templates.Template
	Values   map[string]string
	// Photo holds raw PNG, JPEG or GIF bytes; nil means no photo.
	Photo []byte
}

// PDF renders in as an A4 document: a centred title and name, the photo in
// the top-right corner, then one labelled block per non-empty field.
func PDF(in Input) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Resume", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "", titleSize)
	centred(pdf, "RESUME", 20)

	hasPhoto := len(in.Photo) > 0 && placePhoto(pdf, in.Photo)

	pdf.SetFontSize(nameSize)
	name := displayName(in.Values)
	centred(pdf, tr(name), 35)

	y := 65.0
	width := widthWithoutPhoto
	if hasPhoto {
		y = 75.0
		width = widthWithPhoto
	}

	for _, field := range in.Template.Fields {
		value := in.Values[field.Key]
		if value == "" || field.Key == "fullName" || field.Key == "name" {
			continue
		}
		pdf.SetFontSize(contentSize)
		lines := splitLines(pdf, tr(value), width)
		block := 10 + float64(len(lines))*lineStep + 15
		if y+block > pageHeight-bottomMargin && y > topAfterBreak {
			pdf.AddPage()
			y = topAfterBreak
		}

		pdf.SetFontSize(labelSize)
		pdf.Text(leftX, y, tr(field.Label))
		pdf.SetFontSize(contentSize)
		for i, line := range lines {
			pdf.Text(leftX, y+10+float64(i)*lineStep, line)
		}
		y += block
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func centred(pdf *fpdf.Fpdf, text string, y float64) {
	x := (pageWidth - pdf.GetStringWidth(text)) / 2
	pdf.Text(x, y, text)
}

// splitLines wraps text to width, honouring explicit newlines.
func splitLines(pdf *fpdf.Fpdf, text string, width float64) []string {
	var out []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(para) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, pdf.SplitText(para, width)...)
	}
	return out
}

// placePhoto draws the photo at (150,25), 35mm square. An unreadable image is
// logged and skipped.
func placePhoto(pdf *fpdf.Fpdf, data []byte) bool {
	imageType := imageTypeFor(data)
	if imageType == "" {
		telemetry.Warn("export.photo_skipped", map[string]any{"reason": "unsupported image type"})
		return false
	}
	opts := fpdf.ImageOptions{ImageType: imageType, ReadDpi: false}
	info := pdf.RegisterImageOptionsReader("photo", opts, bytes.NewReader(data))
	if pdf.Err() || info == nil {
		telemetry.Warn("export.photo_skipped", map[string]any{"error": pdf.Error()})
		pdf.ClearError()
		return false
	}
	pdf.ImageOptions("photo", 150, 25, 35, 35, false, opts, 0, "")
	return true
}

func imageTypeFor(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG"
	case "image/jpeg":
		return "JPG"
	case "image/gif":
		return "GIF"
	}
	return ""
}

func displayName(values map[string]string) string {
	if v := values["fullName"]; v != "" {
		return v
	}
	return values["name"]
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// FileName builds "<name>_<template name>_Resume.pdf" with whitespace runs
// replaced by underscores.
func FileName(name, templateName string) string {
	if strings.TrimSpace(name) == "" {
		name = "Resume"
	}
	raw := whitespaceRun.ReplaceAllString(name, "_") + "_" + whitespaceRun.ReplaceAllString(templateName, "_") + "_Resume.pdf"
	clean, err := util.SanitizeFileName(strings.ReplaceAll(raw, "..", "_"))
	if err != nil {
		return "Resume.pdf"
	}
	return clean
}

// FileNameFor builds the export file name for a template and its values.
func FileNameFor(tpl templates.Template, values map[string]string) string {
	return FileName(displayName(values), tpl.Name)
}
