package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Manifest file names relative to the .next build output directory.
const (
	RoutesManifestName        = "routes-manifest.json"
	PrerenderManifestName     = "prerender-manifest.json"
	PagesManifestName         = "server/pages-manifest.json"
	MiddlewareManifestName    = "server/middleware-manifest.json"
	AppPathRoutesManifestName = "app-path-routes-manifest.json"
	ExportMarkerName          = "export-marker.json"
	ImagesManifestName        = "images-manifest.json"
)

var (
	// ErrManifestMissing marks a build artifact that was not produced.
	// Fatal for the mandatory routes/prerender/pages manifests, treated as
	// "feature absent" for the rest.
	ErrManifestMissing = errors.New("manifest missing")

	// ErrManifestParse marks a build artifact that exists but is not valid
	// JSON. Always fatal: the build output is inconsistent.
	ErrManifestParse = errors.New("manifest parse error")
)

// Bundle holds every manifest read from a single build output directory.
// It is read-only after Load; nothing mutates it across the analyze and
// export phases.
type Bundle struct {
	Routes     RoutesManifest
	Prerender  PrerenderManifest
	Pages      PagesManifest
	Middleware MiddlewareManifest
	AppRoutes  AppPathRoutesManifest

	// ExportMarker and Images are nil when the build produced none.
	ExportMarker *ExportMarker
	Images       *ImagesManifest
}

// Read decodes one manifest file into v.
func Read(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrManifestMissing, path)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrManifestParse, path, err)
	}
	return nil
}

// readOptional decodes one manifest, treating absence as an empty value.
// Parse errors stay fatal.
func readOptional(path string, v any) (bool, error) {
	err := Read(path, v)
	if errors.Is(err, ErrManifestMissing) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Load reads all manifests from distDir (the .next directory). The routes,
// prerender and pages manifests are mandatory; the optional ones default to
// empty structures when the build did not produce them. The images manifest
// is read only when the export marker reports image usage.
func Load(distDir string, logger *zap.Logger) (*Bundle, error) {
	b := &Bundle{}

	if err := Read(filepath.Join(distDir, RoutesManifestName), &b.Routes); err != nil {
		return nil, err
	}
	if err := Read(filepath.Join(distDir, PrerenderManifestName), &b.Prerender); err != nil {
		return nil, err
	}
	if err := Read(filepath.Join(distDir, PagesManifestName), &b.Pages); err != nil {
		return nil, err
	}

	if _, err := readOptional(filepath.Join(distDir, MiddlewareManifestName), &b.Middleware); err != nil {
		return nil, err
	}
	if _, err := readOptional(filepath.Join(distDir, AppPathRoutesManifestName), &b.AppRoutes); err != nil {
		return nil, err
	}

	var marker ExportMarker
	found, err := readOptional(filepath.Join(distDir, ExportMarkerName), &marker)
	if err != nil {
		return nil, err
	}
	if found {
		b.ExportMarker = &marker
	}

	if b.ExportMarker != nil && b.ExportMarker.IsNextImageImported {
		var images ImagesManifest
		found, err := readOptional(filepath.Join(distDir, ImagesManifestName), &images)
		if err != nil {
			return nil, err
		}
		if found {
			b.Images = &images
		}
	}

	logger.Debug("manifests loaded",
		zap.String("dir", distDir),
		zap.Int("prerenderedRoutes", len(b.Prerender.Routes)),
		zap.Int("dynamicRoutes", len(b.Prerender.DynamicRoutes)),
		zap.Int("pages", len(b.Pages)),
		zap.Int("appRoutes", len(b.AppRoutes)),
		zap.Bool("middleware", b.Middleware.HasMiddleware()))

	return b, nil
}
