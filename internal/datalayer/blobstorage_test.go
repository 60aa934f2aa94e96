package datalayer_test

import (
	"io"
	"strings"
	"testing"

	"github.com/glizzus/pkinput/internal/config"
	"github.com/glizzus/pkinput/internal/datalayer"
	"github.com/glizzus/pkinput/internal/generator"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"
)

func TestMinioStorageRequiresEndpoint(t *testing.T) {
	if _, err := datalayer.NewMinioStorage(&config.MinioConfig{Bucket: "pkinput"}); err == nil {
		t.Error("expected error without an endpoint")
	}
}

func TestMinioStorageRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping minio container test in short mode")
	}

	ctx := t.Context()
	minioContainer, err := tcminio.Run(
		ctx,
		"minio/minio:RELEASE.2024-01-16T16-07-38Z",
		tcminio.WithUsername("pkinput"),
		tcminio.WithPassword("pkinput-secret"),
	)
	if err != nil {
		t.Fatalf("failed to start minio container: %v", err)
	}
	defer func() {
		if err := minioContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate minio container: %v", err)
		}
	}()

	endpoint, err := minioContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	storage, err := datalayer.NewMinioStorage(&config.MinioConfig{
		Endpoint: endpoint,
		Username: minioContainer.Username,
		Password: minioContainer.Password,
		Bucket:   "pkinput",
	})
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	if err := storage.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to ensure bucket: %v", err)
	}
	t.Run("EnsureBucket is idempotent", func(t *testing.T) {
		if err := storage.EnsureBucket(ctx); err != nil {
			t.Errorf("expected second EnsureBucket to succeed, got %v", err)
		}
	})

	exporter := datalayer.NewExporter(storage, generator.NewExportKeyGenerator())
	key, err := exporter.Upload(ctx, "actual_time_input.csv", "text/csv", []byte("Subject,Time\n1,1.5\n"))
	if err != nil {
		t.Fatalf("failed to upload: %v", err)
	}
	if !strings.HasPrefix(key, "exports/") || !strings.HasSuffix(key, "/actual_time_input.csv") {
		t.Errorf("unexpected key layout: %s", key)
	}

	t.Run("The uploaded file can be read back", func(t *testing.T) {
		obj, err := storage.Get(ctx, key)
		if err != nil {
			t.Fatalf("failed to get object: %v", err)
		}
		defer obj.Close()

		got, err := io.ReadAll(obj)
		if err != nil {
			t.Fatalf("failed to read object: %v", err)
		}
		if string(got) != "Subject,Time\n1,1.5\n" {
			t.Errorf("unexpected contents %q", got)
		}
	})

	t.Run("A missing key is an error", func(t *testing.T) {
		if _, err := storage.Get(ctx, "exports/missing"); err == nil {
			t.Error("expected error for missing key")
		}
	})
}
