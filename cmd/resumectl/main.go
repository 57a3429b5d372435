package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"resume-builder/internal/cli"
	"resume-builder/internal/resumeapi"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/templates"
)

func main() {
	cfg := config.Load()
	telemetry.SetOutput(os.Stderr)

	outDir := os.Getenv("RESUME_OUT_DIR")
	if outDir == "" {
		outDir = "."
	}

	app := &cli.App{
		Registry: templates.Default(),
		API:      resumeapi.NewClient(cfg.ResumeAPIURL, cfg.ResumeAPITimeout),
		Prompt:   cli.SurveyPrompter{},
		Out:      os.Stdout,
		OutDir:   outDir,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, cli.ErrAborted) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
