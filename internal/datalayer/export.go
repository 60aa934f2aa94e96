package datalayer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/glizzus/pkinput/internal/generator"
)

// Exporter uploads exported files under generated keys.
type Exporter struct {
	storage BlobStorage
	keys    generator.Generator[string]
}

func NewExporter(storage BlobStorage, keys generator.Generator[string]) *Exporter {
	return &Exporter{storage: storage, keys: keys}
}

// Upload stores data as <key prefix>/<filename> and returns the full key.
func (e *Exporter) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	prefix, err := e.keys.Next()
	if err != nil {
		return "", fmt.Errorf("failed to generate export key: %w", err)
	}
	key := path.Join(prefix, filename)

	err = e.storage.Put(ctx, key, bytes.NewReader(data), PutOptions{
		Size:        int64(len(data)),
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	slog.InfoContext(ctx, "Uploaded export", "key", key, "bytes", len(data))
	return key, nil
}
