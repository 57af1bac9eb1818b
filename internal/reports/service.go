package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
	"rwa-directory/project-portal/project-portal-backend/internal/projects"
	"rwa-directory/project-portal/project-portal-backend/internal/reports/export"
)

// Format of a queue export.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
)

func ParseFormat(s string) (Format, bool) {
	switch f := Format(s); f {
	case FormatCSV, FormatExcel:
		return f, true
	case "":
		return FormatCSV, true
	}
	return "", false
}

func (f Format) ContentType() string {
	if f == FormatExcel {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Columns of the moderation queue export, in order.
var Columns = []string{
	"id", "name", "type", "blockchain", "roi", "tvl", "status", "approved",
	"owner_id", "review_notes", "reviewer_id", "reviewed_at", "created_at",
}

const (
	pageSize = 100
	// MaxRows caps a single export.
	MaxRows = 10000
)

// Service streams the moderation queue to spreadsheet formats.
type Service struct {
	queue  projects.QueueReader
	logger *zap.Logger
}

func NewService(queue projects.QueueReader, logger *zap.Logger) *Service {
	return &Service{queue: queue, logger: logger}
}

type rowWriter interface {
	WriteHeader() error
	WriteRows(rows []map[string]interface{}) error
}

// ExportQueue writes every queued project matching status (nil for all) to w
// and returns the number of rows written.
func (s *Service) ExportQueue(ctx context.Context, w io.Writer, format Format, status *projects.Status) (int, error) {
	opts := export.DefaultOptions()

	switch format {
	case FormatCSV:
		exporter := export.NewCSVExporter(w, Columns, opts)
		if err := s.fill(ctx, exporter, status); err != nil {
			return 0, err
		}
		n, err := exporter.Finish()
		if err != nil {
			return n, fmt.Errorf("failed to flush csv export: %w", err)
		}
		s.logExport(format, n)
		return n, nil

	case FormatExcel:
		exporter, err := export.NewExcelExporter("Moderation Queue", Columns, opts)
		if err != nil {
			return 0, err
		}
		defer exporter.Close()
		if err := s.fill(ctx, exporter, status); err != nil {
			return 0, err
		}
		if err := exporter.WriteTo(w); err != nil {
			return 0, err
		}
		s.logExport(format, exporter.Rows())
		return exporter.Rows(), nil
	}

	return 0, apperror.InvalidInput("invalid_format", fmt.Sprintf("unsupported export format %q", format))
}

func (s *Service) fill(ctx context.Context, w rowWriter, status *projects.Status) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	for offset := 0; offset < MaxRows; offset += pageSize {
		items, total, err := s.queue.ListForReview(ctx, status, offset, pageSize)
		if err != nil {
			return err
		}
		rows := make([]map[string]interface{}, 0, len(items))
		for i := range items {
			rows = append(rows, Row(&items[i]))
		}
		if err := w.WriteRows(rows); err != nil {
			return err
		}
		if len(items) < pageSize || int64(offset+len(items)) >= total {
			return nil
		}
	}
	return nil
}

func (s *Service) logExport(format Format, rows int) {
	s.logger.Info("Moderation queue exported",
		zap.String("format", string(format)),
		zap.Int("rows", rows))
}

// Row flattens a project into export columns.
func Row(p *projects.Project) map[string]interface{} {
	row := map[string]interface{}{
		"id":           p.ID.String(),
		"name":         p.Name,
		"type":         p.Type,
		"blockchain":   p.Blockchain,
		"roi":          p.ROI,
		"tvl":          p.TVL,
		"status":       string(p.Status),
		"approved":     p.IsApproved(),
		"owner_id":     p.OwnerID.String(),
		"review_notes": p.ReviewNotes,
		"reviewed_at":  p.ReviewedAt,
		"created_at":   p.CreatedAt,
	}
	if p.ReviewerID != nil {
		row["reviewer_id"] = p.ReviewerID.String()
	}
	return row
}

// Filename builds the attachment name for an export taken at now.
func Filename(format Format, now time.Time) string {
	return fmt.Sprintf("moderation-queue-%s.%s", now.UTC().Format("20060102-150405"), format)
}
