package exporter

import (
	"context"
	"crypto/sha256"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planv/firebase-tools/internal/manifest"
	"github.com/planv/firebase-tools/internal/routing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newExporter(b *manifest.Bundle, rules routing.FilterResult) *Exporter {
	return &Exporter{Bundle: b, Rules: rules, Logger: zap.NewNop()}
}

func testBundle(routes map[string]manifest.PrerenderRoute) *manifest.Bundle {
	return &manifest.Bundle{
		Prerender: manifest.PrerenderManifest{Routes: routes},
	}
}

func TestExportCopiesEligibleRoutes(t *testing.T) {
	tmp := t.TempDir()
	projectDir := filepath.Join(tmp, "project")
	distDir := filepath.Join(projectDir, ".next")
	outDir := filepath.Join(tmp, "out")

	pages := filepath.Join(distDir, "server", "pages")
	writeFile(t, filepath.Join(pages, "index.html"), "<html>home</html>")
	writeFile(t, filepath.Join(pages, "index.json"), `{"page":"home"}`)
	writeFile(t, filepath.Join(pages, "blog", "post-1.html"), "<html>post</html>")
	writeFile(t, filepath.Join(pages, "blog", "post-1.json"), `{"page":"post"}`)

	b := testBundle(map[string]manifest.PrerenderRoute{
		"/":            {DataRoute: "/_next/data/build1/index.json"},
		"/blog/post-1": {DataRoute: "/_next/data/build1/blog/post-1.json"},
	})

	err := newExporter(b, routing.FilterResult{}).Export(context.Background(), projectDir, distDir, outDir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(outDir, "index.html"))
	assert.FileExists(t, filepath.Join(outDir, "_next", "data", "build1", "index.json"))
	assert.FileExists(t, filepath.Join(outDir, "blog", "post-1.html"))
	assert.FileExists(t, filepath.Join(outDir, "_next", "data", "build1", "blog", "post-1.json"))
}

func TestExportSkipsRevalidatedRoute(t *testing.T) {
	tmp := t.TempDir()
	projectDir := filepath.Join(tmp, "project")
	distDir := filepath.Join(projectDir, ".next")
	outDir := filepath.Join(tmp, "out")

	b := testBundle(map[string]manifest.PrerenderRoute{
		"/pricing": {
			InitialRevalidateSeconds: manifest.Revalidate{Seconds: 10, Set: true},
			DataRoute:                "/_next/data/build1/pricing.json",
		},
	})

	// No build output exists for the route; skipping means that is fine.
	err := newExporter(b, routing.FilterResult{}).Export(context.Background(), projectDir, distDir, outDir)
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(outDir, "pricing.html"))
}

func TestExportSkipsMiddlewareShadowedRoute(t *testing.T) {
	tmp := t.TempDir()
	projectDir := filepath.Join(tmp, "project")
	distDir := filepath.Join(projectDir, ".next")
	outDir := filepath.Join(tmp, "out")

	pages := filepath.Join(distDir, "server", "pages")
	writeFile(t, filepath.Join(pages, "open.html"), "<html>open</html>")
	writeFile(t, filepath.Join(pages, "open.json"), `{}`)

	b := testBundle(map[string]manifest.PrerenderRoute{
		"/admin/panel": {DataRoute: "/_next/data/build1/admin/panel.json"},
		"/open":        {DataRoute: "/_next/data/build1/open.json"},
	})
	b.Middleware = manifest.MiddlewareManifest{
		Middleware: map[string]manifest.MiddlewareInfo{
			"/": {Name: "middleware", Matchers: []manifest.MiddlewareMatcher{{Regexp: "^/admin/.*$"}}},
		},
	}

	err := newExporter(b, routing.FilterResult{}).Export(context.Background(), projectDir, distDir, outDir)
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(outDir, "admin", "panel.html"))
	assert.FileExists(t, filepath.Join(outDir, "open.html"))
}

func TestExportSkipsUnsupportedRuleRoute(t *testing.T) {
	tmp := t.TempDir()
	projectDir := filepath.Join(tmp, "project")
	distDir := filepath.Join(projectDir, ".next")
	outDir := filepath.Join(tmp, "out")

	rules := routing.Filter(manifest.RoutesManifest{
		Redirects: []manifest.RedirectRule{
			{Source: "/legacy", Destination: "/new", StatusCode: 418, Regex: "^/legacy$"},
		},
	}, routing.FirebaseHosting())
	require.False(t, rules.AllSupported())

	b := testBundle(map[string]manifest.PrerenderRoute{
		"/legacy": {DataRoute: "/_next/data/build1/legacy.json"},
	})

	err := newExporter(b, rules).Export(context.Background(), projectDir, distDir, outDir)
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(outDir, "legacy.html"))
}

func TestExportComponentRoute(t *testing.T) {
	tmp := t.TempDir()
	projectDir := filepath.Join(tmp, "project")
	distDir := filepath.Join(projectDir, ".next")
	outDir := filepath.Join(tmp, "out")

	writeFile(t, filepath.Join(distDir, "server", "app", "dashboard.html"), "<html>dash</html>")

	b := testBundle(map[string]manifest.PrerenderRoute{
		"/dashboard": {DataRoute: "/dashboard.rsc"},
	})

	err := newExporter(b, routing.FilterResult{}).Export(context.Background(), projectDir, distDir, outDir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(outDir, "dashboard.html"))
	assert.NoFileExists(t, filepath.Join(outDir, "dashboard.json"))
	assert.NoFileExists(t, filepath.Join(outDir, "dashboard.rsc"))
}

func TestExportMissingFileFatal(t *testing.T) {
	tmp := t.TempDir()
	projectDir := filepath.Join(tmp, "project")
	distDir := filepath.Join(projectDir, ".next")
	outDir := filepath.Join(tmp, "out")
	require.NoError(t, os.MkdirAll(distDir, 0755))

	b := testBundle(map[string]manifest.PrerenderRoute{
		"/ghost": {DataRoute: "/_next/data/build1/ghost.json"},
	})

	err := newExporter(b, routing.FilterResult{}).Export(context.Background(), projectDir, distDir, outDir)
	require.ErrorIs(t, err, ErrExportFileMissing)
	assert.ErrorContains(t, err, "/ghost")
}

func TestExportStaticTrees(t *testing.T) {
	tmp := t.TempDir()
	projectDir := filepath.Join(tmp, "project")
	distDir := filepath.Join(projectDir, ".next")
	outDir := filepath.Join(tmp, "out")

	writeFile(t, filepath.Join(projectDir, "public", "robots.txt"), "User-agent: *")
	writeFile(t, filepath.Join(distDir, "static", "chunks", "app.js"), "chunk")
	writeFile(t, filepath.Join(distDir, "server", "pages", "404.html"), "<html>pages 404</html>")
	writeFile(t, filepath.Join(distDir, "server", "app", "404.html"), "<html>app 404</html>")
	writeFile(t, filepath.Join(distDir, "server", "pages", "500.html"), "<html>500</html>")

	b := testBundle(nil)

	err := newExporter(b, routing.FilterResult{}).Export(context.Background(), projectDir, distDir, outDir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(outDir, "robots.txt"))
	assert.FileExists(t, filepath.Join(outDir, "_next", "static", "chunks", "app.js"))
	assert.FileExists(t, filepath.Join(outDir, "500.html"))

	// App-router build location wins when both exist.
	data, err := os.ReadFile(filepath.Join(outDir, "404.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>app 404</html>", string(data))
}

func TestExportIdempotent(t *testing.T) {
	tmp := t.TempDir()
	projectDir := filepath.Join(tmp, "project")
	distDir := filepath.Join(projectDir, ".next")
	outDir := filepath.Join(tmp, "out")

	pages := filepath.Join(distDir, "server", "pages")
	writeFile(t, filepath.Join(pages, "index.html"), "<html>home</html>")
	writeFile(t, filepath.Join(pages, "index.json"), `{"page":"home"}`)
	writeFile(t, filepath.Join(projectDir, "public", "robots.txt"), "User-agent: *")

	b := testBundle(map[string]manifest.PrerenderRoute{
		"/": {DataRoute: "/_next/data/build1/index.json"},
	})
	exp := newExporter(b, routing.FilterResult{})

	require.NoError(t, exp.Export(context.Background(), projectDir, distDir, outDir))
	first := snapshotDir(t, outDir)

	require.NoError(t, exp.Export(context.Background(), projectDir, distDir, outDir))
	second := snapshotDir(t, outDir)

	assert.Equal(t, first, second)
}

// snapshotDir maps relative path -> content hash for the whole tree.
func snapshotDir(t *testing.T, root string) map[string][32]byte {
	t.Helper()
	snap := make(map[string][32]byte)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		snap[rel] = sha256.Sum256(data)
		return nil
	})
	require.NoError(t, err)
	// Guard against an empty walk silently passing.
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	require.NotEmpty(t, keys)
	return snap
}
