// Package offload pushes an exported static output tree to an object store
// fronting a CDN, so the hosting origin only has to serve what the store
// does not.
package offload

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"
)

// Uploader puts one local file under a remote key and returns its public
// URL.
type Uploader interface {
	Upload(ctx context.Context, localPath, remoteKey string) (string, error)
}

// Offload uploads every file under root, keyed by its slash-separated path
// relative to root. Returns localPath -> publicURL.
func Offload(ctx context.Context, upl Uploader, root string, logger *zap.Logger) (map[string]string, error) {
	result := make(map[string]string)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)

		url, err := upl.Upload(ctx, path, key)
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", key, err)
		}
		result[path] = url
		logger.Debug("uploaded asset", zap.String("key", key), zap.String("url", url))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MockUploader records uploads without performing them, for tests and dry
// runs.
type MockUploader struct {
	BaseURL  string
	Uploaded map[string]string // localPath -> URL
}

func (m *MockUploader) Upload(_ context.Context, localPath, remoteKey string) (string, error) {
	if m.Uploaded == nil {
		m.Uploaded = make(map[string]string)
	}
	base := m.BaseURL
	if base == "" {
		base = "https://cdn.example.com"
	}
	url := base + "/" + remoteKey
	m.Uploaded[localPath] = url
	return url, nil
}
