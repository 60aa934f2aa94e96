package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glizzus/pkinput/internal/config"
	"github.com/glizzus/pkinput/internal/datalayer"
	"github.com/glizzus/pkinput/internal/generator"
	"github.com/glizzus/pkinput/internal/handler"
)

func newUploader(ctx context.Context) (handler.Uploader, error) {
	cfg, err := config.NewMinioConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load minio config: %w", err)
	}
	if !cfg.Enabled() {
		slog.Info("MINIO_ENDPOINT not set, exports will not be uploaded")
		return nil, nil
	}

	storage, err := datalayer.NewMinioStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create minio storage: %w", err)
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure minio bucket: %w", err)
	}
	slog.Info("Uploading exports", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return datalayer.NewExporter(storage, generator.NewExportKeyGenerator()), nil
}

func runServer() error {
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	serverConfig, err := config.NewServerConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}
	level, _ := config.ParseLogLevel(serverConfig.LogLevel)
	slog.SetLogLoggerLevel(level)

	defaults, err := config.NewDefaultsConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	uploader, err := newUploader(ctx)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: serverConfig.Addr,
		Handler: handler.NewRouter(handler.Options{
			Defaults:       *defaults,
			MaxUploadBytes: serverConfig.MaxUploadBytes,
			Uploader:       uploader,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Listening", "addr", serverConfig.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func main() {
	if err := runServer(); err != nil {
		log.Fatalf("Error running server: %v", err)
	}
}
