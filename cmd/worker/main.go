package main

// Periodically removes expired sessions from Postgres:
//   go run ./cmd/worker

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"resume-builder/internal/sessions"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/telemetry"
)

const (
	defaultSweepIntervalSec = 300
	defaultSweepTimeoutSec  = 30
)

type sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

func main() {
	cfg := config.Load()
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := time.Duration(envInt("SESSION_SWEEP_INTERVAL_SECONDS", defaultSweepIntervalSec)) * time.Second
	timeout := time.Duration(envInt("SESSION_SWEEP_TIMEOUT_SECONDS", defaultSweepTimeoutSec)) * time.Second

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer sqlDB.Close()

	svc := sessions.NewService(&sessions.PGRepo{DB: sqlDB})
	log.Printf("worker started interval=%s", interval)
	run(ctx, svc, interval, timeout)
	log.Printf("worker stopped")
}

// run sweeps once immediately and then on every tick until ctx is done.
func run(ctx context.Context, svc sweeper, interval, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		sweepOnce(ctx, svc, timeout)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func sweepOnce(ctx context.Context, svc sweeper, timeout time.Duration) (int64, bool) {
	sweepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	removed, err := svc.Sweep(sweepCtx)
	if err != nil {
		if ctx.Err() != nil {
			return 0, false
		}
		telemetry.Error("worker.sessions.sweep_failed", map[string]any{"error": err})
		return 0, false
	}
	telemetry.Info("worker.sessions.swept", map[string]any{
		"removed":     removed,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return removed, true
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return def
	}
	return val
}
