package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	errors "github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/permit"
)

// Source is the read side the exporter pulls rows from.
type Source interface {
	ListByDateRange(ctx context.Context, start, end permit.Date) ([]*permit.PermitRequest, error)
}

type Result struct {
	FileURL      string `json:"file_url"`
	FileName     string `json:"file_name"`
	TotalRecords int    `json:"total_records"`
}

type Service struct {
	source        Source
	fs            afero.Fs
	dir           string
	urlPrefix     string
	defaultFormat Format
	logger        *slog.Logger
	now           func() time.Time
}

func NewService(source Source, fs afero.Fs, cfg errors.ExportConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	format, ok := ParseFormat(cfg.DefaultFormat)
	if !ok {
		format = FormatXLSX
	}
	prefix := strings.TrimRight(cfg.URLPrefix, "/")
	if prefix == "" {
		prefix = "/exports"
	}
	return &Service{
		source:        source,
		fs:            fs,
		dir:           cfg.Dir,
		urlPrefix:     prefix,
		defaultFormat: format,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Now is the clock range presets are resolved against.
func (s *Service) Now() time.Time {
	return s.now()
}

// ExportRange writes every request departing within [start, end] to a new
// file and returns where it can be downloaded. An empty format selects the
// configured default.
func (s *Service) ExportRange(ctx context.Context, start, end permit.Date, format string) (*Result, error) {
	f := s.defaultFormat
	if format != "" {
		parsed, ok := ParseFormat(format)
		if !ok {
			return nil, errors.NewValidationFieldError("format", "format must be csv or xlsx", errors.ErrCodeValidationFailed)
		}
		f = parsed
	}

	permits, err := s.source.ListByDateRange(ctx, start, end)
	if err != nil {
		if appErr, ok := errors.IsAppError(err); ok && appErr.StatusCode < http.StatusInternalServerError {
			return nil, err
		}
		return nil, errors.ErrExportFailed.WithCause(err)
	}
	SortByDeparture(permits)

	enc := encoderFor(f)
	name := s.fileName(start, end, enc.Extension())
	if err := s.write(name, enc, Rows(permits)); err != nil {
		s.logger.Error("export write failed", "file", name, "error", err)
		return nil, errors.ErrExportFailed.WithCause(err)
	}

	s.logger.Info("export written", "file", name, "records", len(permits), "format", f)
	return &Result{
		FileURL:      path.Join(s.urlPrefix, name),
		FileName:     name,
		TotalRecords: len(permits),
	}, nil
}

func (s *Service) fileName(start, end permit.Date, ext string) string {
	return fmt.Sprintf("vehicle_permits_%s_to_%s_%s.%s",
		start.String(), end.String(), s.now().Format("2006-01-02"), ext)
}

// write encodes into a temp file next to the target and renames it into
// place, so a failed export never leaves a partial file behind.
func (s *Service) write(name string, enc Encoder, rows [][]string) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, s.dir, ".export-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := enc.Encode(tmp, rows); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := s.fs.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// FileServer serves previously written exports by exact name. Directories are
// answered with 404 so the export directory cannot be listed.
func (s *Service) FileServer() http.Handler {
	return http.FileServer(filesOnly{afero.NewHttpFs(s.fs).Dir(s.dir)})
}

type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
