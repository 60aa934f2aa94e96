package e2e

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/glizzus/pkinput/internal/config"
	"github.com/glizzus/pkinput/internal/datalayer"
	"github.com/glizzus/pkinput/internal/generator"
	"github.com/glizzus/pkinput/internal/handler"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"
	"github.com/xuri/excelize/v2"
)

// Workbook builds an xlsx file the way a study coordinator would: one sheet
// with a header row. Cells keep their Go types, so float64 clock values are
// stored as Excel time serials.
func Workbook(t *testing.T, sheet string, header []string, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatalf("failed to name sheet: %v", err)
	}

	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("failed to resolve cell: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("failed to write row %d: %v", i+2, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("failed to write workbook: %v", err)
	}
	return buf.Bytes()
}

// Upload is one file in a multipart request.
type Upload struct {
	Field    string
	Filename string
	Data     []byte
}

// Post sends a multipart form to the server and returns the response.
func Post(t *testing.T, srv *httptest.Server, path string, uploads []Upload, fields map[string]string) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, u := range uploads {
		part, err := mw.CreateFormFile(u.Field, u.Filename)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(u.Data); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close form: %v", err)
	}

	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, srv.URL+path, &body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request to %s failed: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// ReadBody reads the whole response body, failing the test on error.
func ReadBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	return b
}

// StartServer runs the HTTP surface with the given sink (nil disables uploads).
func StartServer(t *testing.T, uploader handler.Uploader) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler.NewRouter(handler.Options{
		Defaults:       config.DefaultsConfig{Periods: 2, Times: "0.5,1.0,2.0"},
		MaxUploadBytes: 8 << 20,
		Uploader:       uploader,
	}))
	t.Cleanup(srv.Close)
	return srv
}

var (
	once           sync.Once
	minioContainer *tcminio.MinioContainer
	storage        *datalayer.MinioStorage
	startErr       error
	wg             sync.WaitGroup
)

// UseMinio signals that the test is using minio as its export sink.
// This will either provision or reuse a minio container for the test.
// The bucket is shared across tests, so do not expect it to be empty.
func UseMinio(t *testing.T) *datalayer.MinioStorage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping minio container test in short mode")
	}

	once.Do(func() {
		ctx := context.Background()
		minioContainer, startErr = tcminio.Run(
			ctx,
			"minio/minio:RELEASE.2024-01-16T16-07-38Z",
			tcminio.WithUsername("pkinput"),
			tcminio.WithPassword("pkinput-secret"),
		)
		if startErr != nil {
			return
		}
		var endpoint string
		endpoint, startErr = minioContainer.ConnectionString(ctx)
		if startErr != nil {
			return
		}
		storage, startErr = datalayer.NewMinioStorage(&config.MinioConfig{
			Endpoint: endpoint,
			Username: minioContainer.Username,
			Password: minioContainer.Password,
			Bucket:   "pkinput-e2e",
		})
		if startErr != nil {
			return
		}
		startErr = storage.EnsureBucket(ctx)
	})

	if startErr != nil {
		t.Fatalf("failed to start minio container: %v", startErr)
	}
	wg.Add(1)
	t.Cleanup(wg.Done)

	return storage
}

// NewExporter wraps storage with the production key layout.
func NewExporter(storage *datalayer.MinioStorage) *datalayer.Exporter {
	return datalayer.NewExporter(storage, generator.NewExportKeyGenerator())
}

func TerminateMinioForE2E() {
	wg.Wait()
	if minioContainer != nil {
		err := minioContainer.Terminate(context.Background())
		if err != nil {
			fmt.Printf("failed to terminate minio container: %v", err)
		}
	}
}
