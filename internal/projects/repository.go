package projects

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rwa-directory/project-portal/project-portal-backend/pkg/database"
)

// ReviewStore is the privileged capability used by moderation. It is only
// handed to the moderation service.
type ReviewStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	ApplyReview(ctx context.Context, id uuid.UUID, update ReviewUpdate) (*Project, error)
	Resubmit(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
}

// PublicReader is the read path for the public directory. It can only ever
// see approved projects.
type PublicReader interface {
	ListPublishable(ctx context.Context, filter Filter, offset, limit int) ([]Project, int64, error)
	GetPublished(ctx context.Context, id uuid.UUID) (*Project, error)
}

// OwnerStore backs the submitter-facing operations.
type OwnerStore interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	UpdateAttributes(ctx context.Context, project *Project) (bool, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Project, error)
}

// QueueReader lists projects of any status for administrators.
type QueueReader interface {
	ListForReview(ctx context.Context, status *Status, offset, limit int) ([]Project, int64, error)
}

// GormRepository implements every project store on top of gorm.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, project *Project) error {
	return database.ClassifyError("create project", r.db.WithContext(ctx).Create(project).Error)
}

// GetByID returns nil, nil when the project does not exist.
func (r *GormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	var project Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.ClassifyError("get project", err)
	}
	return &project, nil
}

// ApplyReview writes every review column in one UPDATE statement and returns
// the stored row. It returns nil, nil when no project has the id.
func (r *GormRepository) ApplyReview(ctx context.Context, id uuid.UUID, update ReviewUpdate) (*Project, error) {
	result := r.db.WithContext(ctx).Model(&Project{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       update.Status,
		"review_notes": update.Notes,
		"reviewer_id":  update.ReviewerID,
		"reviewed_at":  update.ReviewedAt,
		"updated_at":   update.ReviewedAt,
	})
	if result.Error != nil {
		return nil, database.ClassifyError("apply review", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// Resubmit moves a project the owner was asked to change back to pending.
// It reports false when the row was not in changes_requested for this owner.
func (r *GormRepository) Resubmit(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Project{}).
		Where("id = ? AND owner_id = ? AND status = ?", id, ownerID, StatusChangesRequested).
		Update("status", StatusPending)
	if result.Error != nil {
		return false, database.ClassifyError("resubmit project", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// UpdateAttributes saves the submitter-owned columns, refusing rows that were
// approved in the meantime. It reports false when nothing was written.
func (r *GormRepository) UpdateAttributes(ctx context.Context, project *Project) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Project{}).
		Where("id = ? AND status <> ?", project.ID, StatusApproved).
		Updates(map[string]interface{}{
			"name":        project.Name,
			"type":        project.Type,
			"blockchain":  project.Blockchain,
			"roi":         project.ROI,
			"tvl":         project.TVL,
			"description": project.Description,
			"website":     project.Website,
			"documents":   project.Documents,
			"updated_at":  project.UpdatedAt,
		})
	if result.Error != nil {
		return false, database.ClassifyError("update project", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *GormRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Project, error) {
	var items []Project
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").Order("id ASC").
		Find(&items).Error
	return items, database.ClassifyError("list owner projects", err)
}

// ListPublishable returns one page of approved projects matching filter and
// the count of all matching approved projects.
func (r *GormRepository) ListPublishable(ctx context.Context, filter Filter, offset, limit int) ([]Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&Project{}).Where("status = ?", StatusApproved)

	if filter.AssetType != "" {
		query = query.Where("type = ?", filter.AssetType)
	}
	if filter.Blockchain != "" {
		query = query.Where("blockchain = ?", filter.Blockchain)
	}
	if filter.MinROI != nil {
		query = query.Where("roi >= ?", *filter.MinROI)
	}
	if filter.MaxROI != nil {
		query = query.Where("roi <= ?", *filter.MaxROI)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, database.ClassifyError("count projects", err)
	}

	items := []Project{}
	err := query.Order("created_at DESC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, database.ClassifyError("list projects", err)
	}
	return items, total, nil
}

// GetPublished returns nil, nil unless the project exists and is approved.
func (r *GormRepository) GetPublished(ctx context.Context, id uuid.UUID) (*Project, error) {
	var project Project
	err := r.db.WithContext(ctx).Where("id = ? AND status = ?", id, StatusApproved).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.ClassifyError("get published project", err)
	}
	return &project, nil
}

// ListForReview returns projects oldest first, optionally of one status.
func (r *GormRepository) ListForReview(ctx context.Context, status *Status, offset, limit int) ([]Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&Project{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, database.ClassifyError("count review queue", err)
	}

	items := []Project{}
	err := query.Order("created_at ASC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, database.ClassifyError("list review queue", err)
	}
	return items, total, nil
}
