package sessions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/util"
)

const (
	// RememberTTL is the lifetime of a remember-me session.
	RememberTTL = 30 * 24 * time.Hour
	// DefaultTTL is the lifetime of a browser session.
	DefaultTTL = 24 * time.Hour
)

// LoginInput is the login form.
type LoginInput struct {
	Email      string `json:"email" form:"email" validate:"required"`
	Password   string `json:"password" form:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe" form:"rememberMe"`
}

// SignupInput is the signup form.
type SignupInput struct {
	FullName        string `json:"fullName" form:"fullName" validate:"required"`
	Email           string `json:"email" form:"email" validate:"required"`
	Password        string `json:"password" form:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" validate:"required,eqfield=Password"`
}

var fieldMessages = map[string]string{
	"FullName.required":        "Full name is required",
	"Email.required":           "Email is required",
	"Password.required":        "Password is required",
	"ConfirmPassword.required": "Please confirm your password",
	"ConfirmPassword.eqfield":  "Passwords do not match",
}

// Service issues and resolves stub login sessions.
type Service struct {
	Repo     Repo
	Now      func() time.Time
	validate *validator.Validate
}

// NewService builds a Service backed by repo with the wall clock.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now, validate: validator.New()}
}

// Login accepts any non-empty credentials and issues a session.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Password = strings.TrimSpace(in.Password)
	if err := s.check(in); err != nil {
		return Session{}, err
	}
	return s.issue(ctx, in.Email, "", in.RememberMe)
}

// Signup validates the form and signs the user in. Signups are remembered.
func (s *Service) Signup(ctx context.Context, in SignupInput) (Session, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	if strings.TrimSpace(in.Password) == "" {
		in.Password = ""
	}
	if strings.TrimSpace(in.ConfirmPassword) == "" {
		in.ConfirmPassword = ""
	}
	if err := s.check(in); err != nil {
		return Session{}, err
	}
	return s.issue(ctx, in.Email, in.FullName, true)
}

// Resolve implements middleware.SessionResolver.
func (s *Service) Resolve(ctx context.Context, token string) (middleware.Identity, bool) {
	sess, err := s.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			telemetry.Warn("session.resolve_failed", map[string]any{"error": err})
		}
		return middleware.Identity{}, false
	}
	return sess.Identity(), true
}

// Get returns a live session by token.
func (s *Service) Get(ctx context.Context, token string) (Session, error) {
	if s == nil || s.Repo == nil {
		return Session{}, errors.New("sessions service not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrNotFound
	}
	return s.Repo.Get(ctx, token, s.now())
}

// Logout deletes the session. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if s == nil || s.Repo == nil {
		return errors.New("sessions service not configured")
	}
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.Repo.Delete(ctx, token)
}

// Sweep removes expired sessions.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	if s == nil || s.Repo == nil {
		return 0, errors.New("sessions service not configured")
	}
	return s.Repo.DeleteExpired(ctx, s.now())
}

func (s *Service) issue(ctx context.Context, email, name string, remember bool) (Session, error) {
	if s == nil || s.Repo == nil {
		return Session{}, errors.New("sessions service not configured")
	}
	now := s.now()
	ttl := DefaultTTL
	if remember {
		ttl = RememberTTL
	}
	sess := Session{
		Token:      uuid.NewString(),
		UserID:     UserIDFor(email),
		Email:      email,
		Name:       name,
		RememberMe: remember,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := s.Repo.Create(ctx, sess); err != nil {
		return Session{}, err
	}
	telemetry.Info("session.created", map[string]any{
		"userId":     sess.UserID,
		"rememberMe": remember,
	})
	return sess, nil
}

func (s *Service) check(v any) error {
	validate := s.validate
	if validate == nil {
		validate = validator.New()
	}
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}
	first := errs[0]
	msg, ok := fieldMessages[first.Field()+"."+first.ActualTag()]
	if !ok {
		msg = first.Field() + " is invalid"
	}
	return &ValidationError{Field: first.Field(), Message: msg}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// UserIDFor derives a stable user id from an email address.
func UserIDFor(email string) string {
	return util.EmailKey(email)
}
