package directory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
	"rwa-directory/project-portal/project-portal-backend/internal/projects"
)

// Page is one page of the public directory.
type Page struct {
	Items      []projects.Project `json:"items"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"totalPages"`
}

// Service serves the public directory. It only holds a PublicReader, so it
// cannot see or change anything that is not approved.
type Service struct {
	reader projects.PublicReader
	logger *zap.Logger
}

func NewService(reader projects.PublicReader, logger *zap.Logger) *Service {
	return &Service{reader: reader, logger: logger}
}

// ListPublishable returns the requested page of approved projects, newest
// first. A page past the end is empty but carries the correct totals.
func (s *Service) ListPublishable(ctx context.Context, q Query) (*Page, error) {
	offset, ok := q.Offset()
	limit := q.Limit
	if !ok {
		// far past the end; the read only supplies the count
		offset, limit = 0, 1
	}
	items, total, err := s.reader.ListPublishable(ctx, q.Filter, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}
	if !ok || items == nil {
		items = []projects.Project{}
	}
	queries.Inc()

	return &Page{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: TotalPages(total, q.Limit),
	}, nil
}

// GetPublished returns one approved project.
func (s *Service) GetPublished(ctx context.Context, id uuid.UUID) (*projects.Project, error) {
	project, err := s.reader.GetPublished(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperror.ErrProjectNotFound
	}
	return project, nil
}

// TotalPages is ceil(total/limit), and 0 when there is nothing to show.
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
