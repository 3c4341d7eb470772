package main

import (
	"log/slog"
	"os"

	"github.com/terra-clan/roadmap-engine/internal/aggregate"
	"github.com/terra-clan/roadmap-engine/internal/config"
	"github.com/terra-clan/roadmap-engine/internal/progress"
	"github.com/terra-clan/roadmap-engine/internal/templates"
	"github.com/terra-clan/roadmap-engine/internal/tracker"
)

func main() {
	// Load configuration
	cfg, err := config.Load(".")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging; stdout is reserved for command output
	level, _ := cfg.Log.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewJSONHandler(os.Stderr, opts)
	if cfg.Log.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	// Load templates
	templateLoader := templates.NewLoader()
	if err := templateLoader.LoadFromDir(cfg.Templates.Dir); err != nil {
		slog.Warn("failed to load templates from dir", "dir", cfg.Templates.Dir, "error", err)
	}

	var cache *aggregate.Cache
	if cfg.Report.Cache {
		cache = aggregate.NewCache()
	}

	repo := progress.NewMemoryRepository()
	overlay := progress.NewOverlay(templateLoader)

	cli := commandLine{
		loader:  templateLoader,
		tracker: tracker.New(templateLoader, repo, overlay, cache),
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
	if err := cli.run(os.Args); err != nil {
		if !isHelp(err) {
			slog.Error("command failed", "command", os.Args[1], "error", err)
		}
		os.Exit(1)
	}
}
