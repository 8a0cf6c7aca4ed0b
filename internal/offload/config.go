package offload

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the object-store target for offloaded static assets.
type Config struct {
	Endpoint  string `json:"endpoint"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	PublicURL string `json:"public_url"`
	UseSSL    bool   `json:"use_ssl"`
}

// ConfigFromEnv builds a Config from OFFLOAD_* environment variables,
// loading a .env file first when one exists.
func ConfigFromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Endpoint:  os.Getenv("OFFLOAD_ENDPOINT"),
		Bucket:    os.Getenv("OFFLOAD_BUCKET"),
		Region:    os.Getenv("OFFLOAD_REGION"),
		AccessKey: os.Getenv("OFFLOAD_ACCESS_KEY"),
		SecretKey: os.Getenv("OFFLOAD_SECRET_KEY"),
		PublicURL: os.Getenv("OFFLOAD_PUBLIC_URL"),
	}
	if v := os.Getenv("OFFLOAD_USE_SSL"); v != "" {
		ssl, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OFFLOAD_USE_SSL value %q: %w", v, err)
		}
		cfg.UseSSL = ssl
	}
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return Config{}, fmt.Errorf("offload config incomplete: OFFLOAD_ENDPOINT and OFFLOAD_BUCKET are required")
	}
	return cfg, nil
}
