package handler_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glizzus/pkinput/internal/config"
	"github.com/glizzus/pkinput/internal/handler"
	"github.com/glizzus/pkinput/internal/table"
	"github.com/google/go-cmp/cmp"
)

var defaults = config.DefaultsConfig{Periods: 2, Times: "0.5,1.0"}

type form struct {
	files  map[string]string // field -> "name.csv\ncontents"
	fields map[string]string
}

func newRequest(t *testing.T, path string, f form) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, file := range f.files {
		name, contents, _ := strings.Cut(file, "\n")
		part, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write([]byte(contents)); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	for k, v := range f.fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

const subjectsCSV = "subjects.csv\nSubject,Sequence\n1,TR\n2,RT\n"

func TestHealthz(t *testing.T) {
	router := handler.NewRouter(handler.Options{Defaults: defaults})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("expected 200 ok, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestScheduleEndpoint(t *testing.T) {
	router := handler.NewRouter(handler.Options{Defaults: defaults})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newRequest(t, "/schedule", form{
		files:  map[string]string{"subjects": subjectsCSV},
		fields: map[string]string{"format": "csv"},
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="schedule_time_input.csv"` {
		t.Errorf("unexpected Content-Disposition %s", got)
	}
	if got := rec.Header().Get(handler.HeaderTimeNumberMap); got != `{"0.5":1,"1.0":2}` {
		t.Errorf("unexpected time map header %s", got)
	}
	if rec.Header().Get(handler.HeaderExportKey) != "" {
		t.Error("expected no export key without an uploader")
	}

	out, err := table.ReadCSV(rec.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if out.Len() != 8 {
		t.Errorf("expected 8 rows, got %d", out.Len())
	}
	want := []string{"Subject", "Sequence", "Formulation", "Time", "Period", "Time Number"}
	if diff := cmp.Diff(want, out.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestScheduleEndpointRejectsBadInput(t *testing.T) {
	tc := []struct {
		name string
		form form
	}{
		{
			name: "missing subjects file",
			form: form{fields: map[string]string{"periods": "2"}},
		},
		{
			name: "period count below one",
			form: form{files: map[string]string{"subjects": subjectsCSV}, fields: map[string]string{"periods": "0"}},
		},
		{
			name: "non numeric time",
			form: form{files: map[string]string{"subjects": subjectsCSV}, fields: map[string]string{"times": "0.5,later"}},
		},
		{
			name: "blank time entry",
			form: form{files: map[string]string{"subjects": subjectsCSV}, fields: map[string]string{"times": "0.5,,1.0"}},
		},
		{
			name: "non integer withdrawn subject",
			form: form{files: map[string]string{"subjects": subjectsCSV}, fields: map[string]string{"withdrawn": "S1"}},
		},
		{
			name: "sequence shorter than period count",
			form: form{files: map[string]string{"subjects": subjectsCSV}, fields: map[string]string{"periods": "3"}},
		},
		{
			name: "missing Sequence column",
			form: form{files: map[string]string{"subjects": "subjects.csv\nSubject\n1\n"}},
		},
		{
			name: "unsupported upload type",
			form: form{files: map[string]string{"subjects": "subjects.txt\nSubject,Sequence\n1,TR\n"}},
		},
		{
			name: "unknown format",
			form: form{files: map[string]string{"subjects": subjectsCSV}, fields: map[string]string{"format": "pdf"}},
		},
	}

	router := handler.NewRouter(handler.Options{Defaults: defaults})
	for _, test := range tc {
		t.Run(test.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, newRequest(t, "/schedule", test.form))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if rec.Header().Get("Content-Disposition") != "" {
				t.Error("expected no attachment on failure")
			}
		})
	}
}

const scheduleCSV = "schedule.csv\nSubject,Sequence,Formulation,Time,Period,Time Number\n" +
	"1,T-R,T,0.5,1,1\n" +
	"1,T-R,T,1.0,1,2\n" +
	"1,T-R,R,0.5,2,1\n" +
	"1,T-R,R,1.0,2,2\n"

const variationsCSV = "variations.csv\nStudy Stage (Period),Subject Randomization No.,Sample No.,Schedule Time,Actual Time\n" +
	"I,1,2,08:00:00,08:30:00\n" +
	"II,1,1,09:00,not a time\n"

func TestActualEndpoint(t *testing.T) {
	router := handler.NewRouter(handler.Options{Defaults: defaults})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newRequest(t, "/actual", form{
		files:  map[string]string{"schedule": scheduleCSV, "variations": variationsCSV},
		fields: map[string]string{"format": "csv", "times": "0.5,1.0"},
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(handler.HeaderAdjustedRows); got != "1" {
		t.Errorf("expected 1 adjusted row, got %s", got)
	}
	if got := rec.Header().Get(handler.HeaderSkipped); got != "1" {
		t.Errorf("expected 1 skipped record, got %s", got)
	}

	out, err := table.ReadCSV(rec.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	want := [][]string{
		{"1", "TR", "T", "0.5", "", "1"},
		{"1", "TR", "T", "1.5", "", "1"},
		{"1", "TR", "R", "0.5", "", "2"},
		{"1", "TR", "R", "1", "", "2"},
	}
	if diff := cmp.Diff(want, out.Strings()); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestActualEndpointInvalidStudyStage(t *testing.T) {
	router := handler.NewRouter(handler.Options{Defaults: defaults})
	rec := httptest.NewRecorder()
	bad := "variations.csv\nStudy Stage (Period),Subject Randomization No.,Sample No.,Schedule Time,Actual Time\n" +
		"Two,1,2,08:00,08:30\n"
	router.ServeHTTP(rec, newRequest(t, "/actual", form{
		files: map[string]string{"schedule": scheduleCSV, "variations": bad},
	}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Two") {
		t.Errorf("expected the offending value in the message, got %s", rec.Body.String())
	}
}

type fakeUploader struct {
	filename    string
	contentType string
	size        int
	err         error
}

func (f *fakeUploader) Upload(_ context.Context, filename, contentType string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.filename, f.contentType, f.size = filename, contentType, len(data)
	return "exports/2026/10/16/abc/" + filename, nil
}

func TestScheduleEndpointUploads(t *testing.T) {
	uploader := &fakeUploader{}
	router := handler.NewRouter(handler.Options{Defaults: defaults, Uploader: uploader})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newRequest(t, "/schedule", form{
		files: map[string]string{"subjects": subjectsCSV},
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(handler.HeaderExportKey); got != "exports/2026/10/16/abc/schedule_time_input.xlsx" {
		t.Errorf("unexpected export key %s", got)
	}
	if uploader.filename != "schedule_time_input.xlsx" || uploader.size != rec.Body.Len() {
		t.Errorf("unexpected upload %+v (body %d bytes)", uploader, rec.Body.Len())
	}
	if !strings.HasPrefix(uploader.contentType, "application/vnd.openxmlformats") {
		t.Errorf("unexpected content type %s", uploader.contentType)
	}
}

func TestScheduleEndpointUploadFailure(t *testing.T) {
	router := handler.NewRouter(handler.Options{Defaults: defaults, Uploader: &fakeUploader{err: errors.New("bucket gone")}})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newRequest(t, "/schedule", form{
		files: map[string]string{"subjects": subjectsCSV},
	}))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "bucket gone") {
		t.Error("expected internal error details to stay out of the response")
	}
}

func TestUploadTooLarge(t *testing.T) {
	router := handler.NewRouter(handler.Options{Defaults: defaults, MaxUploadBytes: 64})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newRequest(t, "/schedule", form{
		files: map[string]string{"subjects": subjectsCSV + strings.Repeat("3,TR\n", 100)},
	}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
