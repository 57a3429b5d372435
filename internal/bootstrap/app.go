package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/preview"
	"resume-builder/internal/resumeapi"
	"resume-builder/internal/resumes"
	"resume-builder/internal/services/health"
	"resume-builder/internal/sessions"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/object"
	localstore "resume-builder/internal/shared/storage/object/local"
	s3store "resume-builder/internal/shared/storage/object/s3"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/templates"
	"resume-builder/internal/web"
)

// App holds shared dependencies and the assembled router.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ObjectStore
	API             *resumeapi.Client
	Registry        *templates.Registry
	Preview         *preview.Renderer
	ResumeRepo      resumes.Repo
	SessionRepo     sessions.Repo
	ResumeService   *resumes.Service
	SessionService  *sessions.Service
	ResumeHandler   *resumes.Handler
	SessionHandler  *sessions.Handler
	TemplateHandler *templates.Handler
	Pages           *web.Pages
	Health          *health.Service
}

// Build prepares dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	cfg = config.Normalize(cfg)
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	renderer, err := preview.New()
	if err != nil {
		return nil, fmt.Errorf("load preview views: %w", err)
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Store:    store,
		API:      resumeapi.NewClient(cfg.ResumeAPIURL, cfg.ResumeAPITimeout),
		Registry: templates.Default(),
		Preview:  renderer,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Sessions:        app.SessionService,
		SessionHandler:  app.SessionHandler,
		TemplateHandler: app.TemplateHandler,
		ResumeHandler:   app.ResumeHandler,
		Pages:           app.Pages,
		Health:          app.Health,
	})

	return app, nil
}

// Close releases the database pool, if any.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Info("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) error {
	if app.DB != nil {
		app.ResumeRepo = &resumes.PGRepo{DB: app.DB}
		app.SessionRepo = &sessions.PGRepo{DB: app.DB}
	} else {
		app.ResumeRepo = resumes.NewMemoryRepo()
		app.SessionRepo = sessions.NewMemoryRepo()
	}

	app.ResumeService = &resumes.Service{
		Registry:      app.Registry,
		Repo:          app.ResumeRepo,
		Store:         app.Store,
		API:           app.API,
		PhotoBaseURL:  app.Config.PhotoBaseURL,
		MaxPhotoBytes: app.Config.MaxPhotoBytes,
	}
	app.SessionService = sessions.NewService(app.SessionRepo)

	pages, err := web.New(app.Registry, app.ResumeService, app.SessionService, app.Preview, app.Config.SessionCookieSecure)
	if err != nil {
		return fmt.Errorf("load page views: %w", err)
	}

	app.Pages = pages
	app.ResumeHandler = resumes.NewHandler(app.ResumeService, app.Preview)
	app.SessionHandler = sessions.NewHandler(app.SessionService, app.Config.SessionCookieSecure)
	app.TemplateHandler = templates.NewHandler(app.Registry)
	if app.DB != nil {
		app.Health = health.NewService(app.DB)
	} else {
		app.Health = health.NewService(nil)
	}
	return nil
}
