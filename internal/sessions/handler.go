package sessions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

type Handler struct {
	Svc          *Service
	SecureCookie bool
}

func NewHandler(svc *Service, secureCookie bool) *Handler {
	return &Handler{Svc: svc, SecureCookie: secureCookie}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.login)
	rg.POST("/auth/signup", h.signup)
	rg.POST("/auth/logout", h.logout)
	rg.GET("/me", h.me)
	rg.POST("/theme", h.theme)
}

func (h *Handler) login(c *gin.Context) {
	var req LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}
	sess, err := h.Svc.Login(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	SetCookie(c, sess, h.SecureCookie)
	respond.OK(c, sessionResponse(sess))
}

func (h *Handler) signup(c *gin.Context) {
	var req SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}
	sess, err := h.Svc.Signup(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	SetCookie(c, sess, h.SecureCookie)
	respond.JSON(c, http.StatusCreated, sessionResponse(sess))
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), middleware.SessionTokenFromContext(c)); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to end session", nil)
		return
	}
	ClearCookie(c, h.SecureCookie)
	c.Status(http.StatusNoContent)
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	respond.OK(c, gin.H{
		"id":    userID,
		"email": middleware.UserEmailFromContext(c),
		"name":  middleware.UserNameFromContext(c),
		"theme": middleware.ThemeFromContext(c),
	})
}

func (h *Handler) theme(c *gin.Context) {
	respond.OK(c, gin.H{"theme": ToggleTheme(c, h.SecureCookie)})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		respond.Error(c, http.StatusBadRequest, "validation_error", verr.Message, gin.H{"field": verr.Field})
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create session", nil)
}

func sessionResponse(sess Session) gin.H {
	return gin.H{
		"token":      sess.Token,
		"userId":     sess.UserID,
		"email":      sess.Email,
		"name":       sess.DisplayName(),
		"rememberMe": sess.RememberMe,
		"expiresAt":  sess.ExpiresAt,
	}
}
