// Package preview renders generated resumes as template-specific HTML.
package preview

import (
	"embed"
	"fmt"
	"html"
	"io/fs"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"resume-builder/internal/templates"
)

//go:embed views/*.html
var viewFiles embed.FS

// Input is everything needed to render one resume.
type Input struct {
	Template templates.Template
	Values   map[string]string
	// PhotoSrc is the resolved image URL; empty renders the placeholder.
	PhotoSrc string
}

// Card is the view model handed to the card template.
type Card struct {
	CSSClass         string
	HeaderClass      string
	ShowPhotoSection bool
	PhotoSrc         string
	PlaceholderIcon  string
	Name             string
	Title            string
	ContactIcons     bool
	Contacts         []ContactView
	Sections         []SectionView
}

// ContactView is one populated row of the personal information grid.
type ContactView struct {
	Label    string
	Icon     string
	Value    string
	LinkHTML string
}

// SectionView is one populated resume section.
type SectionView struct {
	Heading     string
	Icon        string
	ItemClass   string
	Text        string
	Items       []string
	IsParagraph bool
	IsTags      bool
}

// Renderer executes the embedded pongo2 views.
type Renderer struct {
	card  *pongo2.Template
	print *pongo2.Template
}

// New parses the embedded views.
func New() (*Renderer, error) {
	sub, err := fs.Sub(viewFiles, "views")
	if err != nil {
		return nil, err
	}
	set := pongo2.NewSet("preview", pongo2.NewFSLoader(sub))
	card, err := set.FromFile("card.html")
	if err != nil {
		return nil, fmt.Errorf("preview: parse card: %w", err)
	}
	printTpl, err := set.FromFile("print.html")
	if err != nil {
		return nil, fmt.Errorf("preview: parse print: %w", err)
	}
	return &Renderer{card: card, print: printTpl}, nil
}

// RenderCard renders the resume card fragment.
func (r *Renderer) RenderCard(in Input) (string, error) {
	out, err := r.card.Execute(pongo2.Context{"card": BuildCard(in)})
	if err != nil {
		return "", fmt.Errorf("preview: render card: %w", err)
	}
	return out, nil
}

// RenderPrint renders a standalone page that opens the print dialog on load.
func (r *Renderer) RenderPrint(in Input) (string, error) {
	card := BuildCard(in)
	title := card.Name
	if title == "" {
		title = "Resume"
	}
	out, err := r.print.Execute(pongo2.Context{
		"card":  card,
		"title": title + " - " + in.Template.Name + " Resume",
	})
	if err != nil {
		return "", fmt.Errorf("preview: render print: %w", err)
	}
	return out, nil
}

// BuildCard maps a template layout and values onto the card view model.
// Contacts and sections with empty values are left out.
func BuildCard(in Input) Card {
	tpl := in.Template
	layout := tpl.Layout
	card := Card{
		CSSClass:         layout.CSSClass,
		HeaderClass:      layout.HeaderClass,
		ShowPhotoSection: tpl.SupportsPhoto,
		PlaceholderIcon:  layout.PlaceholderIcon,
		Name:             in.Values[layout.NameField],
		Title:            in.Values[layout.TitleField],
		ContactIcons:     layout.ContactIcons,
	}
	if tpl.SupportsPhoto {
		card.PhotoSrc = in.PhotoSrc
	}

	for _, c := range layout.Contacts {
		value := in.Values[c.Field]
		if value == "" {
			continue
		}
		view := ContactView{Label: c.Label, Value: value}
		if layout.ContactIcons {
			view.Icon = c.Icon
		}
		if c.Link {
			view.LinkHTML = SanitizeLink(value)
		}
		card.Contacts = append(card.Contacts, view)
	}

	for _, s := range layout.Sections {
		value := in.Values[s.Field]
		if value == "" {
			continue
		}
		view := SectionView{Heading: s.Heading, Icon: s.Icon, ItemClass: s.ItemClass}
		switch s.Kind {
		case templates.SectionParagraph:
			view.IsParagraph = true
			view.Text = value
		case templates.SectionTags:
			view.IsTags = true
			view.Items = FormatSkills(value)
		default:
			view.Items = SplitLines(value)
		}
		card.Sections = append(card.Sections, view)
	}
	return card
}

// FormatSkills splits a comma separated list, trims each entry and drops empties.
func FormatSkills(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// SplitLines splits on newlines, keeping blank lines as empty entries.
func SplitLines(raw string) []string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

var (
	linkPolicyOnce sync.Once
	linkPolicy     *bluemonday.Policy
	schemePattern  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)
)

func linkSanitizer() *bluemonday.Policy {
	linkPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowAttrs("class").Matching(regexp.MustCompile(`^social-link$`)).OnElements("a")
		policy.AllowURLSchemes("http", "https")
		policy.RequireParseableURLs(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		policy.RequireNoReferrerOnFullyQualifiedLinks(true)
		linkPolicy = policy
	})
	return linkPolicy
}

// SanitizeLink renders raw as an external anchor. Values that are not
// http(s) URLs come back as escaped text.
func SanitizeLink(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	href := raw
	if !schemePattern.MatchString(href) {
		href = "https://" + strings.TrimLeft(href, "/")
	}
	if u, err := url.Parse(href); err != nil || u.Host == "" {
		return html.EscapeString(raw)
	}
	anchor := fmt.Sprintf(`<a href="%s" class="social-link">%s</a>`, html.EscapeString(href), html.EscapeString(raw))
	return linkSanitizer().Sanitize(anchor)
}
