package exporter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/planv/firebase-tools/internal/fsutil"
	"github.com/planv/firebase-tools/internal/manifest"
	"github.com/planv/firebase-tools/internal/routing"
)

// ErrExportFileMissing marks a route the prerender manifest claims exists
// but whose build output file is absent. Fatal: the build output is
// inconsistent with its own manifest, and partial output must not be
// reused.
var ErrExportFileMissing = errors.New("export file missing")

// DefaultWorkers bounds the parallel route copies.
const DefaultWorkers = 8

// Exporter copies the statically servable subset of a build into an output
// directory. One-shot per build; nothing is resumable.
type Exporter struct {
	Bundle  *manifest.Bundle
	Rules   routing.FilterResult
	Logger  *zap.Logger
	Workers int
}

// Export walks the prerendered routes, copies the eligible ones plus the
// static asset trees into outDir. projectDir is the application root (for
// public/), distDir its .next build output.
func (e *Exporter) Export(ctx context.Context, projectDir, distDir, outDir string) error {
	skips := e.buildSkipMatchers()

	workers := e.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	// Independent route copies parallelize; any failure aborts the export.
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, route := range e.Bundle.Prerender.SortedRoutes() {
		info := e.Bundle.Prerender.Routes[route]
		if skip, why := e.shouldSkip(route, info, skips); skip {
			e.Logger.Debug("skipping route", zap.String("route", route), zap.String("reason", why))
			continue
		}

		route := route
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return e.exportRoute(route, info, distDir, outDir)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return e.copyStaticTrees(projectDir, distDir, outDir)
}

func (e *Exporter) exportRoute(route string, info manifest.PrerenderRoute, distDir, outDir string) error {
	kind := KindForDataRoute(info.DataRoute)
	paths := ResolveRoutePaths(route, kind)

	srcDir := filepath.Join(distDir, "server", "pages")
	if kind == KindComponent {
		srcDir = filepath.Join(distDir, "server", "app")
	}

	htmlSrc := filepath.Join(srcDir, filepath.FromSlash(paths.HTML))
	htmlDst := filepath.Join(outDir, filepath.FromSlash(paths.HTML))
	if err := copyExportFile(htmlSrc, htmlDst, route); err != nil {
		return err
	}

	if kind == KindPages && info.DataRoute != "" {
		dataSrc := filepath.Join(srcDir, filepath.FromSlash(paths.Data))
		dataDst := filepath.Join(outDir, filepath.FromSlash(strings.TrimPrefix(info.DataRoute, "/")))
		if err := copyExportFile(dataSrc, dataDst, route); err != nil {
			return err
		}
	}

	e.Logger.Debug("exported route", zap.String("route", route), zap.String("html", paths.HTML))
	return nil
}

func copyExportFile(src, dst, route string) error {
	if !fsutil.Exists(src) {
		return fmt.Errorf("%w: route %s: %s", ErrExportFileMissing, route, src)
	}
	if err := fsutil.CopyFile(src, dst); err != nil {
		return fmt.Errorf("route %s: %w", route, err)
	}
	return nil
}

type skipMatchers struct {
	middleware  []*regexp.Regexp
	unsupported []*regexp.Regexp
}

// buildSkipMatchers compiles the middleware and dropped-rule regexes once;
// the per-route loop only matches.
func (e *Exporter) buildSkipMatchers() skipMatchers {
	var s skipMatchers
	for _, m := range e.Bundle.Middleware.AllMatchers() {
		re, err := routing.CompileRouteRegex(m.Regexp)
		if err != nil {
			e.Logger.Warn("middleware matcher regex did not compile",
				zap.String("regexp", m.Regexp), zap.Error(err))
			continue
		}
		s.middleware = append(s.middleware, re)
	}
	s.unsupported = e.Rules.DroppedRegexes()
	return s
}

func (e *Exporter) shouldSkip(route string, info manifest.PrerenderRoute, skips skipMatchers) (bool, string) {
	if info.InitialRevalidateSeconds.Set {
		return true, "revalidated"
	}
	for _, re := range skips.middleware {
		if re.MatchString(route) {
			return true, "middleware"
		}
	}
	for _, re := range skips.unsupported {
		if re.MatchString(route) {
			return true, "unsupported rule"
		}
	}
	return false, ""
}

// Root-level pages copied verbatim when present, app-router build location
// preferred over the legacy one.
var rootPages = []string{"index.html", "404.html", "500.html"}

func (e *Exporter) copyStaticTrees(projectDir, distDir, outDir string) error {
	publicDir := filepath.Join(projectDir, "public")
	if fsutil.Exists(publicDir) {
		if err := fsutil.CopyDir(publicDir, outDir); err != nil {
			return fmt.Errorf("failed to copy public dir: %w", err)
		}
	}

	staticDir := filepath.Join(distDir, "static")
	if fsutil.Exists(staticDir) {
		if err := fsutil.CopyDir(staticDir, filepath.Join(outDir, "_next", "static")); err != nil {
			return fmt.Errorf("failed to copy generated static assets: %w", err)
		}
	}

	for _, name := range rootPages {
		appSrc := filepath.Join(distDir, "server", "app", name)
		pagesSrc := filepath.Join(distDir, "server", "pages", name)
		src := ""
		switch {
		case fsutil.Exists(appSrc):
			src = appSrc
		case fsutil.Exists(pagesSrc):
			src = pagesSrc
		default:
			continue
		}
		if err := fsutil.CopyFile(src, filepath.Join(outDir, name)); err != nil {
			return fmt.Errorf("failed to copy %s: %w", name, err)
		}
	}
	return nil
}
