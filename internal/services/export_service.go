package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/form-service/internal/repositories"
)

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportService renders a form's responses as a downloadable file
type ExportService interface {
	Export(ctx context.Context, formID uint, format ExportFormat) (*ExportFile, error)
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// ParseExportFormat accepts csv (the default) and xlsx, case-insensitively.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportCSV:
		return ExportCSV, nil
	case ExportXLSX:
		return ExportXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedExportFormat, raw)
	}
}

func (s *exportService) Export(ctx context.Context, formID uint, format ExportFormat) (*ExportFile, error) {
	format, err := ParseExportFormat(string(format))
	if err != nil {
		return nil, err
	}

	form, responses, err := loadSnapshot(ctx, s.repo, formID)
	if err != nil {
		return nil, err
	}

	table := BuildExportTable(form, responses)
	file := &ExportFile{
		FileName:    ExportFileName(form.Title, string(format)),
		GeneratedAt: s.now().UTC(),
	}

	switch format {
	case ExportXLSX:
		file.ContentType = ContentTypeXLSX
		file.Data, err = WriteExcel(table)
	default:
		file.ContentType = ContentTypeCSV
		file.Data, err = CSVBytes(table)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s export: %w", format, err)
	}

	s.logger.Info("Exported form responses",
		"form_id", formID,
		"format", format,
		"responses", len(responses),
		"bytes", len(file.Data))
	return file, nil
}
