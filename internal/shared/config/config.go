package config

import (
	"log"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port                string        `env:"PORT" env-default:"8080"`
	Env                 string        `env:"ENV" env-default:"dev"`
	CORSAllowOrigin     []string      `env:"CORS_ALLOW_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
	ResumeAPIURL        string        `env:"RESUME_API_URL" env-default:"http://localhost:8000/api"`
	PhotoBaseURL        string        `env:"RESUME_PHOTO_BASE_URL" env-default:"http://localhost:8000"`
	ResumeAPITimeout    time.Duration `env:"RESUME_API_TIMEOUT" env-default:"15s"`
	DatabaseURL         string        `env:"DATABASE_URL"`
	ObjectStoreType     string        `env:"OBJECT_STORE" env-default:"local"`
	LocalStoreDir       string        `env:"LOCAL_STORE_DIR" env-default:"./data"`
	AWSRegion           string        `env:"AWS_REGION"`
	S3Bucket            string        `env:"S3_BUCKET"`
	S3Prefix            string        `env:"S3_PREFIX" env-default:"photos"`
	SSEKMSKeyID         string        `env:"SSE_KMS_KEY_ID"`
	SessionCookieSecure bool          `env:"SESSION_COOKIE_SECURE" env-default:"false"`
	MaxPhotoBytes       int64         `env:"MAX_PHOTO_BYTES" env-default:"5242880"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	for _, path := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(path)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Printf("config: read env: %v", err)
	}
	return Normalize(cfg)
}

// Normalize fills blanks and canonicalises enum-like values. It is applied by
// Load and is safe to call on hand-built configs in tests.
func Normalize(cfg Config) Config {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.ObjectStoreType = normalizeStoreType(cfg.ObjectStoreType)
	cfg.CORSAllowOrigin = splitAndTrim(strings.Join(cfg.CORSAllowOrigin, ","))
	cfg.ResumeAPIURL = strings.TrimRight(strings.TrimSpace(cfg.ResumeAPIURL), "/")
	cfg.PhotoBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PhotoBaseURL), "/")
	if cfg.ResumeAPIURL == "" {
		cfg.ResumeAPIURL = "http://localhost:8000/api"
	}
	if cfg.ResumeAPITimeout <= 0 {
		cfg.ResumeAPITimeout = 15 * time.Second
	}
	if strings.TrimSpace(cfg.LocalStoreDir) == "" {
		cfg.LocalStoreDir = "./data"
	}
	if cfg.MaxPhotoBytes <= 0 {
		cfg.MaxPhotoBytes = 5 << 20
	}
	if cfg.Env == "production" && strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Printf("DATABASE_URL is required in production")
	}
	return cfg
}

// IsDevLike reports whether in-memory fallbacks are acceptable.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
