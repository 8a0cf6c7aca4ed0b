package offload

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOffloadUploadsTree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "_next", "static", "css"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<html></html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "_next", "static", "css", "main.css"), []byte("body{}"), 0644))

	mock := &MockUploader{BaseURL: "https://assets.example.dev"}
	result, err := Offload(context.Background(), mock, root, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, result, 2)
	assert.Equal(t,
		"https://assets.example.dev/_next/static/css/main.css",
		result[filepath.Join(root, "_next", "static", "css", "main.css")])
	assert.Equal(t,
		"https://assets.example.dev/index.html",
		result[filepath.Join(root, "index.html")])
}

func TestOffloadEmptyTree(t *testing.T) {
	root := t.TempDir()

	mock := &MockUploader{}
	result, err := Offload(context.Background(), mock, root, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("OFFLOAD_ENDPOINT", "https://store.example.dev")
	t.Setenv("OFFLOAD_BUCKET", "assets")
	t.Setenv("OFFLOAD_REGION", "us-east-1")
	t.Setenv("OFFLOAD_ACCESS_KEY", "key")
	t.Setenv("OFFLOAD_SECRET_KEY", "secret")
	t.Setenv("OFFLOAD_PUBLIC_URL", "https://cdn.example.dev")
	t.Setenv("OFFLOAD_USE_SSL", "true")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "assets", cfg.Bucket)
	assert.True(t, cfg.UseSSL)
}

func TestConfigFromEnvIncomplete(t *testing.T) {
	t.Setenv("OFFLOAD_ENDPOINT", "")
	t.Setenv("OFFLOAD_BUCKET", "")

	_, err := ConfigFromEnv()
	require.Error(t, err)
}

func TestConfigFromEnvBadSSL(t *testing.T) {
	t.Setenv("OFFLOAD_ENDPOINT", "https://store.example.dev")
	t.Setenv("OFFLOAD_BUCKET", "assets")
	t.Setenv("OFFLOAD_USE_SSL", "sometimes")

	_, err := ConfigFromEnv()
	require.Error(t, err)
}
