package validation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rwa-directory/project-portal/project-portal-backend/internal/projects"
	"rwa-directory/project-portal/project-portal-backend/pkg/database"
)

// Repository persists validation results.
type Repository interface {
	Get(ctx context.Context, projectID uuid.UUID) (*Result, error)
	Save(ctx context.Context, result *Result) error
	ListStale(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Get returns nil, nil when the project has never been checked.
func (r *GormRepository) Get(ctx context.Context, projectID uuid.UUID) (*Result, error) {
	var result Result
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.ClassifyError("get validation result", err)
	}
	return &result, nil
}

// Save inserts the result or replaces the stored row for the same project.
func (r *GormRepository) Save(ctx context.Context, result *Result) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}},
		UpdateAll: true,
	}).Create(result).Error
	return database.ClassifyError("save validation result", err)
}

// ListStale returns pending projects that were never checked or were last
// checked before the given time, oldest submissions first.
func (r *GormRepository) ListStale(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Table("projects").
		Joins("LEFT JOIN validation_results vr ON vr.project_id = projects.id").
		Where("projects.status = ?", projects.StatusPending).
		Where("vr.project_id IS NULL OR vr.checked_at IS NULL OR vr.checked_at < ?", before).
		Order("projects.created_at ASC").
		Limit(limit).
		Pluck("projects.id", &ids).Error
	if err != nil {
		return nil, database.ClassifyError("list stale validations", err)
	}
	return ids, nil
}
