package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"rwa-directory/project-portal/project-portal-backend/pkg/database"
)

type Repository interface {
	List(ctx context.Context, kind Kind) ([]Entry, error)
	ExistsByName(ctx context.Context, kind Kind, name string) (bool, error)
	Create(ctx context.Context, kind Kind, entry *Entry) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate creates both catalog tables with their case-insensitive name index.
func Migrate(db *gorm.DB) error {
	for _, kind := range Kinds {
		if err := db.Table(string(kind)).AutoMigrate(&Entry{}); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", kind, err)
		}
		if err := database.EnsureCaseInsensitiveUnique(db, string(kind), "name"); err != nil {
			return err
		}
	}
	return nil
}

func (r *GormRepository) List(ctx context.Context, kind Kind) ([]Entry, error) {
	entries := []Entry{}
	err := r.db.WithContext(ctx).Table(string(kind)).Order("name ASC").Find(&entries).Error
	if err != nil {
		return nil, database.ClassifyError("list "+string(kind), err)
	}
	return entries, nil
}

// ExistsByName is the case-insensitive existence probe run before inserts.
func (r *GormRepository) ExistsByName(ctx context.Context, kind Kind, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table(string(kind)).
		Where("LOWER(name) = LOWER(?)", name).
		Count(&count).Error
	if err != nil {
		return false, database.ClassifyError("probe "+string(kind), err)
	}
	return count > 0, nil
}

func (r *GormRepository) Create(ctx context.Context, kind Kind, entry *Entry) error {
	return database.ClassifyError("create "+string(kind), r.db.WithContext(ctx).Table(string(kind)).Create(entry).Error)
}
