package templates

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/respond"
)

// Handler serves the template catalogue as JSON.
type Handler struct {
	Registry *Registry
}

// NewHandler constructs a Handler.
func NewHandler(reg *Registry) *Handler {
	return &Handler{Registry: reg}
}

// RegisterRoutes attaches template routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/templates", h.list)
	rg.GET("/templates/:id", h.get)
}

func (h *Handler) list(c *gin.Context) {
	respond.OK(c, gin.H{
		"defaultId": h.Registry.DefaultID(),
		"templates": h.Registry.All(),
	})
}

func (h *Handler) get(c *gin.Context) {
	c.Set("templateId", c.Param("id"))
	tpl, ok := h.Registry.Lookup(c.Param("id"))
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "template not found", nil)
		return
	}
	respond.OK(c, tpl)
}
