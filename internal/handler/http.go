package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/glizzus/pkinput/internal/config"
	"github.com/glizzus/pkinput/internal/deviation"
	"github.com/glizzus/pkinput/internal/pipeline"
	"github.com/glizzus/pkinput/internal/table"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Response headers set alongside the exported file.
const (
	HeaderTimeNumberMap = "X-Time-Number-Map"
	HeaderExportKey     = "X-Export-Key"
	HeaderAdjustedRows  = "X-Adjusted-Rows"
	HeaderSkipped       = "X-Skipped-Records"
)

// Uploader keeps a copy of an exported file and returns where it was put.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

type Options struct {
	Defaults       config.DefaultsConfig
	MaxUploadBytes int64
	// Uploader is optional. When nil, exports are only returned to the caller.
	Uploader Uploader
}

type server struct {
	opts Options
}

// NewRouter wires the HTTP surface: POST /schedule, POST /actual and GET /healthz.
func NewRouter(opts Options) http.Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	s := &server{opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/schedule", s.handleSchedule)
	r.Post("/actual", s.handleActual)
	return r
}

func (s *server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		writeError(w, r, err)
		return
	}

	subjects, err := formTable(r, "subjects")
	if err != nil {
		writeError(w, r, err)
		return
	}
	periods := s.opts.Defaults.Periods
	if raw := r.FormValue("periods"); strings.TrimSpace(raw) != "" {
		periods, err = config.ParsePeriods(raw)
		if err != nil {
			writeError(w, r, userError("invalid periods", err))
			return
		}
	}
	times, err := s.formTimes(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	withdrawn, err := config.ParseWithdrawn(r.FormValue("withdrawn"))
	if err != nil {
		writeError(w, r, userError("invalid withdrawn subjects", err))
		return
	}
	format, err := pipeline.ParseFormat(r.FormValue("format"))
	if err != nil {
		writeError(w, r, userError("invalid format", err))
		return
	}

	res, err := pipeline.Schedule(r.Context(), pipeline.ScheduleInput{
		Subjects:  subjects,
		Periods:   periods,
		Times:     times,
		Withdrawn: withdrawn,
	})
	if err != nil {
		writeError(w, r, userError("could not prepare schedule", err))
		return
	}

	data, err := res.Encode(format)
	if err != nil {
		writeError(w, r, err)
		return
	}
	mapping, err := json.Marshal(res.TimeMap)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set(HeaderTimeNumberMap, string(mapping))
	s.sendExport(w, r, format.FileName(pipeline.ScheduleFileBase), format.ContentType(), data)
}

func (s *server) handleActual(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		writeError(w, r, err)
		return
	}

	scheduleTable, err := formTable(r, "schedule")
	if err != nil {
		writeError(w, r, err)
		return
	}
	variations, err := formTable(r, "variations")
	if err != nil {
		writeError(w, r, err)
		return
	}
	times, err := s.formTimes(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	format, err := pipeline.ParseFormat(r.FormValue("format"))
	if err != nil {
		writeError(w, r, userError("invalid format", err))
		return
	}

	res, err := pipeline.Actual(r.Context(), pipeline.ActualInput{
		Schedule:   scheduleTable,
		Variations: variations,
		Times:      times,
	})
	if err != nil {
		writeError(w, r, userError("could not adjust times", err))
		return
	}

	data, err := res.Encode(format)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set(HeaderAdjustedRows, strconv.Itoa(res.Adjusted()))
	w.Header().Set(HeaderSkipped, strconv.Itoa(len(deviation.Skipped(res.Outcomes))))
	s.sendExport(w, r, format.FileName(pipeline.ActualFileBase), format.ContentType(), data)
}

func (s *server) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return userError(fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit), nil)
		}
		return userError("expected a multipart form", err)
	}
	return nil
}

func (s *server) formTimes(r *http.Request) ([]float64, error) {
	raw := r.FormValue("times")
	if strings.TrimSpace(raw) == "" {
		raw = s.opts.Defaults.Times
	}
	times, err := config.ParseNominalTimes(raw)
	if err != nil {
		return nil, userError("invalid times", err)
	}
	return times, nil
}

// sendExport uploads the file when a sink is configured, then writes it as
// an attachment. Nothing is written to w before the upload succeeds.
func (s *server) sendExport(w http.ResponseWriter, r *http.Request, filename, contentType string, data []byte) {
	if s.opts.Uploader != nil {
		key, err := s.opts.Uploader.Upload(r.Context(), filename, contentType, data)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set(HeaderExportKey, key)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.WarnContext(r.Context(), "Failed to write export", "file", filename, "error", err)
	}
}

func formTable(r *http.Request, field string) (*table.Table, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, userError(fmt.Sprintf("missing file field %q", field), err)
	}
	defer file.Close()

	t, err := table.Read(header.Filename, file)
	if err != nil {
		return nil, userError(fmt.Sprintf("could not read %s", field), err)
	}
	return t, nil
}
