package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// MinioConfig configures the optional sink that keeps a copy of every
// exported file. The sink is disabled when no endpoint is set.
type MinioConfig struct {
	Endpoint string `env:"MINIO_ENDPOINT"`
	Username string `env:"MINIO_USERNAME"`
	Password string `env:"MINIO_PASSWORD"`
	Bucket   string `env:"MINIO_BUCKET, default=pkinput"`
	Secure   bool   `env:"MINIO_SECURE, default=false"`
}

func NewMinioConfigFromEnv() (*MinioConfig, error) {
	var cfg MinioConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *MinioConfig) Enabled() bool {
	return c.Endpoint != ""
}
