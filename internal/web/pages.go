// Package web serves the server-rendered resume builder pages.
package web

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/gin-gonic/gin"

	"resume-builder/internal/preview"
	"resume-builder/internal/resumeapi"
	"resume-builder/internal/resumes"
	"resume-builder/internal/sessions"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/templates"
)

//go:embed views/*.html
var viewFiles embed.FS

//go:embed static
var staticFiles embed.FS

const (
	msgCreateFailed = "Failed to create resume. Please try again."
	msgExportFailed = "Error generating PDF. Please try again."
	msgNotFound     = "Resume not found."
	dateLayout      = "January 2, 2006"
)

var pageNames = []string{"home", "templates", "builder", "resume", "resumes", "login", "signup"}

// Pages renders the HTML front end.
type Pages struct {
	Templates    *templates.Registry
	Resumes      *resumes.Service
	Sessions     *sessions.Service
	Preview      *preview.Renderer
	SecureCookie bool

	views map[string]*pongo2.Template
}

// New parses the embedded page views.
func New(reg *templates.Registry, resumeSvc *resumes.Service, sessionSvc *sessions.Service, renderer *preview.Renderer, secureCookie bool) (*Pages, error) {
	sub, err := fs.Sub(viewFiles, "views")
	if err != nil {
		return nil, err
	}
	set := pongo2.NewSet("web", pongo2.NewFSLoader(sub))
	views := make(map[string]*pongo2.Template, len(pageNames))
	for _, name := range pageNames {
		tpl, err := set.FromFile(name + ".html")
		if err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", name, err)
		}
		views[name] = tpl
	}
	return &Pages{
		Templates:    reg,
		Resumes:      resumeSvc,
		Sessions:     sessionSvc,
		Preview:      renderer,
		SecureCookie: secureCookie,
		views:        views,
	}, nil
}

// Static returns the embedded stylesheet directory.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// RegisterRoutes attaches the page routes. Builder and resume routes require
// a session and redirect anonymous visitors to the login page.
func (p *Pages) RegisterRoutes(r gin.IRouter) {
	r.GET("/", p.home)
	r.GET("/templates", p.templateCatalogue)
	r.GET("/login", p.loginForm)
	r.POST("/login", p.login)
	r.GET("/signup", p.signupForm)
	r.POST("/signup", p.signup)
	r.POST("/logout", p.logout)
	r.POST("/theme", p.theme)

	auth := r.Group("/", middleware.RequireSession(true))
	auth.GET("/builder", p.builderForm)
	auth.POST("/builder", p.build)
	auth.GET("/resumes", p.resumeList)
	auth.GET("/resumes/:id", p.resumeDetail)
	auth.GET("/resumes/:id/edit", p.editForm)
	auth.POST("/resumes/:id/edit", p.edit)
	auth.GET("/resumes/:id/pdf", p.pdf)
	auth.GET("/resumes/:id/print", p.print)
	auth.GET("/resumes/:id/photo", p.photo)
	auth.POST("/resumes/:id/rate", p.rate)
	auth.POST("/resumes/:id/delete", p.delete)
}

func (p *Pages) render(c *gin.Context, status int, name, active string, data pongo2.Context) {
	ctx := pongo2.Context{
		"theme":  middleware.ThemeFromContext(c),
		"user":   middleware.UserNameFromContext(c),
		"active": active,
		"notice": c.Query("notice"),
	}
	if middleware.UserIDFromContext(c) != "" && ctx["user"] == "" {
		ctx["user"] = middleware.UserEmailFromContext(c)
	}
	ctx.Update(data)
	out, err := p.views[name].Execute(ctx)
	if err != nil {
		telemetry.Error("web.render_failed", map[string]any{"view": name, "error": err})
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	respond.HTML(c, status, out)
}

func (p *Pages) home(c *gin.Context) {
	p.render(c, http.StatusOK, "home", "home", pongo2.Context{"templates": p.Templates.All()})
}

func (p *Pages) templateCatalogue(c *gin.Context) {
	p.render(c, http.StatusOK, "templates", "templates", pongo2.Context{"templates": p.Templates.All()})
}

// fieldView is one form control.
type fieldView struct {
	Key         string
	Label       string
	Placeholder string
	Value       string
	Required    bool
	IsTextarea  bool
}

func fieldViews(tpl templates.Template, values map[string]string) []fieldView {
	out := make([]fieldView, 0, len(tpl.Fields))
	for _, f := range tpl.Fields {
		placeholder := f.Label
		if f.Required {
			placeholder += " *"
		}
		out = append(out, fieldView{
			Key:         f.Key,
			Label:       f.Label,
			Placeholder: placeholder,
			Value:       values[f.Key],
			Required:    f.Required,
			IsTextarea:  f.Type == templates.FieldTextarea,
		})
	}
	return out
}

type builderView struct {
	template    templates.Template
	values      map[string]string
	action      string
	heading     string
	submitLabel string
	hasPhoto    bool
	err         string
}

func (p *Pages) renderBuilder(c *gin.Context, status int, v builderView) {
	p.render(c, status, "builder", "builder", pongo2.Context{
		"template":    v.template,
		"fields":      fieldViews(v.template, v.values),
		"action":      v.action,
		"heading":     v.heading,
		"submitLabel": v.submitLabel,
		"hasPhoto":    v.hasPhoto,
		"error":       v.err,
	})
}

func (p *Pages) builderForm(c *gin.Context) {
	tpl := p.Templates.Get(c.Query("template"))
	p.renderBuilder(c, http.StatusOK, newBuilderView(tpl, resumes.NewDraft(tpl).Values))
}

func newBuilderView(tpl templates.Template, values map[string]string) builderView {
	return builderView{
		template:    tpl,
		values:      values,
		action:      "/builder?template=" + url.QueryEscape(tpl.ID),
		heading:     "Create Your " + tpl.Name + " Resume",
		submitLabel: "Generate " + tpl.Name + " Resume",
	}
}

func (p *Pages) build(c *gin.Context) {
	sub, err := resumes.ReadSubmission(c, p.Resumes.PhotoLimit())
	id := sub.TemplateID
	if id == "" {
		id = c.Query("template")
	}
	tpl := p.Templates.Get(id)
	values := sub.Values
	if values == nil {
		values = resumes.NewDraft(tpl).Values
	}
	view := newBuilderView(tpl, values)
	if err != nil {
		view.err = submissionError(err)
		p.renderBuilder(c, http.StatusBadRequest, view)
		return
	}
	res, err := p.Resumes.Generate(c.Request.Context(), middleware.UserIDFromContext(c), tpl.ID, sub.Values, sub.Photo)
	if err != nil {
		status, msg := pageError(err, msgCreateFailed)
		view.err = msg
		p.renderBuilder(c, status, view)
		return
	}
	c.Redirect(http.StatusSeeOther, resumeURL(res.Document.ID, "notice", res.Warning))
}

func (p *Pages) editForm(c *gin.Context) {
	doc, ok := p.load(c)
	if !ok {
		return
	}
	tpl := p.Resumes.Template(doc)
	p.renderBuilder(c, http.StatusOK, builderView{
		template:    tpl,
		values:      doc.Values,
		action:      "/resumes/" + doc.ID + "/edit",
		heading:     "Edit Your " + tpl.Name + " Resume",
		submitLabel: "Update " + tpl.Name + " Resume",
		hasPhoto:    doc.HasPhoto(),
	})
}

func (p *Pages) edit(c *gin.Context) {
	doc, ok := p.load(c)
	if !ok {
		return
	}
	tpl := p.Resumes.Template(doc)
	sub, err := resumes.ReadSubmission(c, p.Resumes.PhotoLimit())
	view := builderView{
		template:    tpl,
		values:      sub.Values,
		action:      "/resumes/" + doc.ID + "/edit",
		heading:     "Edit Your " + tpl.Name + " Resume",
		submitLabel: "Update " + tpl.Name + " Resume",
		hasPhoto:    doc.HasPhoto(),
	}
	if err != nil {
		view.err = submissionError(err)
		p.renderBuilder(c, http.StatusBadRequest, view)
		return
	}
	res, err := p.Resumes.Update(c.Request.Context(), middleware.UserIDFromContext(c), doc.ID, sub.Values, sub.Photo)
	if err != nil {
		status, msg := pageError(err, "Failed to update resume. Please try again.")
		view.err = msg
		p.renderBuilder(c, status, view)
		return
	}
	c.Redirect(http.StatusSeeOther, resumeURL(doc.ID, "notice", res.Warning))
}

type listItem struct {
	ID           string
	Name         string
	TemplateName string
	GeneratedAt  string
	Rating       int
}

func (p *Pages) resumeList(c *gin.Context) {
	p.renderList(c, http.StatusOK, c.Query("error"))
}

func (p *Pages) renderList(c *gin.Context, status int, errMsg string) {
	docs, err := p.Resumes.List(c.Request.Context(), middleware.UserIDFromContext(c), 50, 0)
	if err != nil {
		_, errMsg = pageError(err, "Failed to load resumes.")
	}
	items := make([]listItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, listItem{
			ID:           doc.ID,
			Name:         doc.Name(),
			TemplateName: p.Resumes.Template(doc).Name,
			GeneratedAt:  doc.GeneratedAt.Format(dateLayout),
			Rating:       doc.Rating,
		})
	}
	p.render(c, status, "resumes", "resumes", pongo2.Context{"items": items, "error": errMsg})
}

func (p *Pages) resumeDetail(c *gin.Context) {
	doc, ok := p.load(c)
	if !ok {
		return
	}
	tpl := p.Resumes.Template(doc)
	card, err := p.Preview.RenderCard(p.Resumes.PreviewInput(doc))
	if err != nil {
		telemetry.Error("web.preview_failed", map[string]any{"resume_id": doc.ID, "error": err})
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	p.render(c, http.StatusOK, "resume", "builder", pongo2.Context{
		"doc":         doc,
		"name":        doc.Name(),
		"template":    tpl,
		"cardHTML":    card,
		"fields":      fieldViews(tpl, doc.Values),
		"ratings":     []int{1, 2, 3, 4, 5},
		"generatedAt": doc.GeneratedAt.Format(dateLayout),
		"error":       c.Query("error"),
	})
}

func (p *Pages) pdf(c *gin.Context) {
	doc, ok := p.load(c)
	if !ok {
		return
	}
	data, name, err := p.Resumes.PDF(c.Request.Context(), doc)
	if err != nil {
		telemetry.Error("web.export_failed", map[string]any{"resume_id": doc.ID, "error": err})
		c.Redirect(http.StatusSeeOther, resumeURL(doc.ID, "error", msgExportFailed))
		return
	}
	respond.Attachment(c, name, "application/pdf", data)
}

func (p *Pages) print(c *gin.Context) {
	doc, ok := p.load(c)
	if !ok {
		return
	}
	out, err := p.Preview.RenderPrint(p.Resumes.PreviewInput(doc))
	if err != nil {
		telemetry.Error("web.print_failed", map[string]any{"resume_id": doc.ID, "error": err})
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	respond.HTML(c, http.StatusOK, out)
}

func (p *Pages) photo(c *gin.Context) {
	rc, mime, err := p.Resumes.Photo(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	defer rc.Close()
	c.Header("Cache-Control", "private, max-age=3600")
	respond.Stream(c, mime, rc)
}

func (p *Pages) rate(c *gin.Context) {
	id := c.Param("id")
	rating, err := strconv.Atoi(c.PostForm("rating"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, resumeURL(id, "error", "Please choose a rating between 1 and 5."))
		return
	}
	if _, err := p.Resumes.Rate(c.Request.Context(), middleware.UserIDFromContext(c), id, rating); err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			p.renderList(c, http.StatusNotFound, msgNotFound)
			return
		}
		_, msg := pageError(err, "Failed to save rating. Please try again.")
		c.Redirect(http.StatusSeeOther, resumeURL(id, "error", msg))
		return
	}
	c.Redirect(http.StatusSeeOther, resumeURL(id, "notice", "Thanks for rating your resume!"))
}

func (p *Pages) delete(c *gin.Context) {
	id := c.Param("id")
	if err := p.Resumes.Delete(c.Request.Context(), middleware.UserIDFromContext(c), id); err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			p.renderList(c, http.StatusNotFound, msgNotFound)
			return
		}
		_, msg := pageError(err, "Failed to delete resume. Please try again.")
		c.Redirect(http.StatusSeeOther, resumeURL(id, "error", msg))
		return
	}
	c.Redirect(http.StatusSeeOther, "/resumes?notice="+url.QueryEscape("Resume deleted."))
}

func (p *Pages) load(c *gin.Context) (resumes.Document, bool) {
	c.Set("resumeId", c.Param("id"))
	doc, err := p.Resumes.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) || errors.Is(err, resumes.ErrInvalidInput) {
			p.renderList(c, http.StatusNotFound, msgNotFound)
			return resumes.Document{}, false
		}
		telemetry.Error("web.load_failed", map[string]any{"resume_id": c.Param("id"), "error": err})
		c.String(http.StatusInternalServerError, "internal error")
		return resumes.Document{}, false
	}
	return doc, true
}

func (p *Pages) loginForm(c *gin.Context) {
	if middleware.UserIDFromContext(c) != "" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	p.render(c, http.StatusOK, "login", "login", pongo2.Context{"next": safeNext(c.Query("next"))})
}

func (p *Pages) login(c *gin.Context) {
	in := sessions.LoginInput{
		Email:      c.PostForm("email"),
		Password:   c.PostForm("password"),
		RememberMe: isChecked(c.PostForm("rememberMe")),
	}
	sess, err := p.Sessions.Login(c.Request.Context(), in)
	if err != nil {
		status, msg := pageError(err, "Login failed. Please try again.")
		p.render(c, status, "login", "login", pongo2.Context{
			"error":      msg,
			"email":      in.Email,
			"rememberMe": in.RememberMe,
			"next":       safeNext(c.PostForm("next")),
		})
		return
	}
	sessions.SetCookie(c, sess, p.SecureCookie)
	c.Redirect(http.StatusSeeOther, safeNext(c.PostForm("next")))
}

func (p *Pages) signupForm(c *gin.Context) {
	if middleware.UserIDFromContext(c) != "" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	p.render(c, http.StatusOK, "signup", "signup", nil)
}

func (p *Pages) signup(c *gin.Context) {
	in := sessions.SignupInput{
		FullName:        c.PostForm("fullName"),
		Email:           c.PostForm("email"),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirmPassword"),
	}
	sess, err := p.Sessions.Signup(c.Request.Context(), in)
	if err != nil {
		status, msg := pageError(err, "Signup failed. Please try again.")
		p.render(c, status, "signup", "signup", pongo2.Context{
			"error":    msg,
			"fullName": in.FullName,
			"email":    in.Email,
		})
		return
	}
	sessions.SetCookie(c, sess, p.SecureCookie)
	c.Redirect(http.StatusSeeOther, "/")
}

func (p *Pages) logout(c *gin.Context) {
	if err := p.Sessions.Logout(c.Request.Context(), middleware.SessionTokenFromContext(c)); err != nil {
		telemetry.Warn("web.logout_failed", map[string]any{"error": err})
	}
	sessions.ClearCookie(c, p.SecureCookie)
	c.Redirect(http.StatusSeeOther, "/")
}

func (p *Pages) theme(c *gin.Context) {
	sessions.ToggleTheme(c, p.SecureCookie)
	next := c.PostForm("next")
	if next == "" {
		if ref, err := url.Parse(c.GetHeader("Referer")); err == nil {
			next = ref.RequestURI()
		}
	}
	c.Redirect(http.StatusSeeOther, safeNext(next))
}

// pageError maps a service error to a status and the message shown inline.
func pageError(err error, fallback string) (int, string) {
	var missing *resumes.MissingFieldError
	var photoErr *resumes.PhotoError
	var sessionErr *sessions.ValidationError
	var statusErr *resumeapi.StatusError
	switch {
	case errors.As(err, &missing):
		return http.StatusBadRequest, missing.Error()
	case errors.As(err, &photoErr):
		return http.StatusBadRequest, photoErr.Message
	case errors.As(err, &sessionErr):
		return http.StatusBadRequest, sessionErr.Message
	case errors.Is(err, resumes.ErrInvalidInput):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), resumes.ErrInvalidInput.Error()+": ")
	case errors.As(err, &statusErr):
		return http.StatusBadGateway, statusErr.Error()
	default:
		telemetry.Error("web.request_failed", map[string]any{"error": err})
		return http.StatusInternalServerError, fallback
	}
}

func submissionError(err error) string {
	var photoErr *resumes.PhotoError
	if errors.As(err, &photoErr) {
		return photoErr.Message
	}
	return err.Error()
}

func resumeURL(id, key, msg string) string {
	target := "/resumes/" + id
	if msg != "" {
		target += "?" + key + "=" + url.QueryEscape(msg)
	}
	return target
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func isChecked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}
