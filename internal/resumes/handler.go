package resumes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/preview"
	"resume-builder/internal/resumeapi"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

const (
	templateIDField = "templateId"
	photoField      = "photo"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc     *Service
	Preview *preview.Renderer
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, renderer *preview.Renderer) *Handler {
	return &Handler{Svc: svc, Preview: renderer}
}

// RegisterRoutes attaches resume routes to a session-protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/validate", h.validate)
	rg.POST("/resumes", h.create)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
	rg.PUT("/resumes/:id", h.update)
	rg.DELETE("/resumes/:id", h.delete)
	rg.POST("/resumes/:id/rate", h.rate)
	rg.GET("/resumes/:id/pdf", h.pdf)
	rg.GET("/resumes/:id/preview", h.preview)
	rg.GET("/resumes/:id/photo", h.photo)
	rg.GET("/remote/resumes", h.remoteResumes)
	rg.GET("/remote/templates", h.remoteTemplates)
}

type validateRequest struct {
	TemplateID string            `json:"templateId"`
	Fields     map[string]string `json:"fields"`
}

func (h *Handler) validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}
	respond.OK(c, h.Svc.Check(req.TemplateID, req.Fields))
}

func (h *Handler) create(c *gin.Context) {
	sub, err := ReadSubmission(c, h.Svc.PhotoLimit())
	if err != nil {
		writeSubmissionError(c, err)
		return
	}
	res, err := h.Svc.Generate(c.Request.Context(), middleware.UserIDFromContext(c), sub.TemplateID, sub.Values, sub.Photo)
	if err != nil {
		writeError(c, err, "failed to create resume")
		return
	}
	c.Set("resumeId", res.Document.ID)
	respond.JSON(c, http.StatusCreated, toResponse(res.Document, h.Svc, res.Warning))
}

func (h *Handler) list(c *gin.Context) {
	limit := parseIntDefault(c.Query("limit"), 20)
	offset := parseIntDefault(c.Query("offset"), 0)
	docs, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		writeError(c, err, "failed to list resumes")
		return
	}
	items := make([]resumeResponse, 0, len(docs))
	for _, doc := range docs {
		items = append(items, toResponse(doc, h.Svc, ""))
	}
	respond.OK(c, gin.H{"items": items, "limit": limit, "offset": offset})
}

func (h *Handler) get(c *gin.Context) {
	doc, ok := h.load(c)
	if !ok {
		return
	}
	respond.OK(c, toResponse(doc, h.Svc, ""))
}

func (h *Handler) update(c *gin.Context) {
	sub, err := ReadSubmission(c, h.Svc.PhotoLimit())
	if err != nil {
		writeSubmissionError(c, err)
		return
	}
	c.Set("resumeId", c.Param("id"))
	res, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), sub.Values, sub.Photo)
	if err != nil {
		writeError(c, err, "failed to update resume")
		return
	}
	respond.OK(c, toResponse(res.Document, h.Svc, res.Warning))
}

func (h *Handler) delete(c *gin.Context) {
	c.Set("resumeId", c.Param("id"))
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete resume")
		return
	}
	c.Status(http.StatusNoContent)
}

type rateRequest struct {
	Rating int `json:"rating"`
}

func (h *Handler) rate(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}
	c.Set("resumeId", c.Param("id"))
	doc, err := h.Svc.Rate(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), req.Rating)
	if err != nil {
		writeError(c, err, "failed to rate resume")
		return
	}
	respond.OK(c, toResponse(doc, h.Svc, ""))
}

func (h *Handler) pdf(c *gin.Context) {
	doc, ok := h.load(c)
	if !ok {
		return
	}
	data, name, err := h.Svc.PDF(c.Request.Context(), doc)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "export_failed", "Error exporting PDF. Please try again.", nil)
		return
	}
	respond.Attachment(c, name, "application/pdf", data)
}

func (h *Handler) preview(c *gin.Context) {
	doc, ok := h.load(c)
	if !ok {
		return
	}
	if h.Preview == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "preview unavailable", nil)
		return
	}
	out, err := h.Preview.RenderCard(h.Svc.PreviewInput(doc))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render preview", nil)
		return
	}
	metrics.IncExport("html")
	respond.HTML(c, http.StatusOK, out)
}

func (h *Handler) photo(c *gin.Context) {
	c.Set("resumeId", c.Param("id"))
	rc, mime, err := h.Svc.Photo(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to load photo")
		return
	}
	defer rc.Close()
	respond.Stream(c, mime, rc)
}

func (h *Handler) remoteResumes(c *gin.Context) {
	items, err := h.Svc.RemoteList(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list remote resumes")
		return
	}
	if items == nil {
		items = []resumeapi.Resume{}
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) remoteTemplates(c *gin.Context) {
	items, err := h.Svc.RemoteTemplates(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list remote templates")
		return
	}
	if items == nil {
		items = []resumeapi.Template{}
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) load(c *gin.Context) (Document, bool) {
	c.Set("resumeId", c.Param("id"))
	doc, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to load resume")
		return Document{}, false
	}
	return doc, true
}

// Submission is a decoded create or update request.
type Submission struct {
	TemplateID string
	Values     map[string]string
	Photo      *resumeapi.Photo
}

// ReadSubmission decodes a multipart form (template fields plus an optional
// photo file) or a JSON body of the form {templateId, fields}.
func ReadSubmission(c *gin.Context, maxPhotoBytes int64) (Submission, error) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req validateRequest
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			return Submission{}, errors.New("invalid JSON body")
		}
		return Submission{TemplateID: req.TemplateID, Values: req.Fields}, nil
	}

	// Leave headroom so oversized photos reach CheckPhoto and get its message.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*maxPhotoBytes+(1<<20))
	if err := c.Request.ParseMultipartForm(maxPhotoBytes + (1 << 20)); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return Submission{}, formError(err)
	}
	if c.Request.PostForm == nil {
		if err := c.Request.ParseForm(); err != nil {
			return Submission{}, formError(err)
		}
	}

	sub := Submission{
		TemplateID: c.Request.PostForm.Get(templateIDField),
		Values:     map[string]string{},
	}
	for key, vals := range c.Request.PostForm {
		if key == templateIDField || len(vals) == 0 {
			continue
		}
		sub.Values[key] = vals[0]
	}

	fileHeader, err := c.FormFile(photoField)
	if err != nil {
		return sub, nil
	}
	file, err := fileHeader.Open()
	if err != nil {
		return Submission{}, errors.New("unable to read photo")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return Submission{}, errors.New("unable to read photo")
	}
	if len(data) > 0 {
		contentType := fileHeader.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}
		sub.Photo = &resumeapi.Photo{
			FileName:    fileHeader.Filename,
			ContentType: contentType,
			Data:        data,
		}
	}
	return sub, nil
}

// formError reports a body cut off by the size limit as an oversized photo.
func formError(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return &PhotoError{Message: msgTooLarge}
	}
	return errors.New("invalid form body")
}

// writeSubmissionError answers a ReadSubmission failure.
func writeSubmissionError(c *gin.Context, err error) {
	var photoErr *PhotoError
	if errors.As(err, &photoErr) {
		writeError(c, err, "")
		return
	}
	respond.Error(c, http.StatusBadRequest, "bad_request", err.Error(), nil)
}

func writeError(c *gin.Context, err error, fallback string) {
	var missing *MissingFieldError
	var photoErr *PhotoError
	var statusErr *resumeapi.StatusError
	switch {
	case errors.As(err, &missing):
		respond.Error(c, http.StatusBadRequest, "validation_error", missing.Error(), gin.H{"field": missing.Key})
	case errors.As(err, &photoErr):
		respond.Error(c, http.StatusBadRequest, "validation_error", photoErr.Message, gin.H{"field": photoField})
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.As(err, &statusErr):
		respond.Error(c, http.StatusBadGateway, "upstream_error", statusErr.Error(), gin.H{"status": statusErr.Status})
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

type resumeResponse struct {
	ID          string            `json:"id"`
	RemoteID    string            `json:"remoteId,omitempty"`
	TemplateID  string            `json:"templateId"`
	Name        string            `json:"name"`
	Fields      map[string]string `json:"fields"`
	PhotoURL    string            `json:"photoUrl,omitempty"`
	Rating      int               `json:"rating,omitempty"`
	CreatedAt   string            `json:"createdAt"`
	UpdatedAt   string            `json:"updatedAt"`
	GeneratedAt string            `json:"generatedAt"`
	Warning     string            `json:"warning,omitempty"`
}

func toResponse(doc Document, svc *Service, warning string) resumeResponse {
	photo := ""
	if doc.HasPhoto() {
		photo = svc.PhotoSrc(doc)
	}
	return resumeResponse{
		ID:          doc.ID,
		RemoteID:    doc.RemoteID,
		TemplateID:  doc.TemplateID,
		Name:        doc.Name(),
		Fields:      doc.Values,
		PhotoURL:    photo,
		Rating:      doc.Rating,
		CreatedAt:   doc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   doc.UpdatedAt.Format(time.RFC3339),
		GeneratedAt: doc.GeneratedAt.Format(time.RFC3339),
		Warning:     warning,
	}
}

func parseIntDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
