// Package pipeline runs the build-and-export flow: read manifests, filter
// rules, decide on a backend, export the static subset, emit the hosting
// routing config, and bundle the server remainder when one is needed. The
// phases are strictly ordered; nothing acts before the read phase is done.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/planv/firebase-tools/internal/analyzer"
	"github.com/planv/firebase-tools/internal/bundler"
	"github.com/planv/firebase-tools/internal/exporter"
	"github.com/planv/firebase-tools/internal/manifest"
	"github.com/planv/firebase-tools/internal/routing"
)

// RoutesConfigName is the emitted hosting routing config, written into the
// static output directory's parent.
const RoutesConfigName = "hosting.routes.json"

// Config drives one Run.
type Config struct {
	ProjectDir   string
	OutDir       string // static output
	FunctionsDir string // backend bundle, created only when needed
	Workers      int
	ReasonLimit  int

	// Bundler overrides the default esbuild-backed bundler; tests use it.
	Bundler *bundler.Bundler
}

// Result reports what one Run produced.
type Result struct {
	Decision analyzer.Decision
	Hosting  routing.HostingConfig
	Bundled  bool
}

// Run executes the whole flow against cfg.ProjectDir/.next.
func Run(ctx context.Context, cfg Config, logger *zap.Logger) (*Result, error) {
	distDir := filepath.Join(cfg.ProjectDir, ".next")

	bundle, err := manifest.Load(distDir, logger)
	if err != nil {
		return nil, fmt.Errorf("manifest load failed: %w", err)
	}

	caps := routing.FirebaseHosting()
	rules := routing.Filter(bundle.Routes, caps)
	logger.Info("routing rules filtered",
		zap.String("target", caps.Target),
		zap.Int("headers", len(rules.Headers)),
		zap.Int("redirects", len(rules.Redirects)),
		zap.Int("rewrites", len(rules.Rewrites)),
		zap.Int("dropped", len(rules.DroppedHeaders)+len(rules.DroppedRedirects)+len(rules.DroppedRewrites)))

	decision := analyzer.Analyze(bundle, rules, logger)

	exp := &exporter.Exporter{
		Bundle:  bundle,
		Rules:   rules,
		Logger:  logger,
		Workers: cfg.Workers,
	}
	if err := exp.Export(ctx, cfg.ProjectDir, distDir, cfg.OutDir); err != nil {
		return nil, fmt.Errorf("static export failed: %w", err)
	}

	hosting := rules.HostingConfig()
	if err := writeRoutesConfig(cfg.OutDir, hosting); err != nil {
		return nil, err
	}

	res := &Result{Decision: decision, Hosting: hosting}

	if decision.WantsBackend {
		for _, reason := range decision.Summary(cfg.ReasonLimit) {
			logger.Info("backend required", zap.String("reason", reason))
		}
		b := cfg.Bundler
		if b == nil {
			b = bundler.New(logger)
		}
		if err := b.Bundle(cfg.ProjectDir, distDir, cfg.FunctionsDir); err != nil {
			return nil, err
		}
		res.Bundled = true
	}

	return res, nil
}

func writeRoutesConfig(outDir string, hosting routing.HostingConfig) error {
	data, err := json.MarshalIndent(hosting, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal hosting config: %w", err)
	}
	dir := filepath.Dir(outDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(dir, RoutesConfigName)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
