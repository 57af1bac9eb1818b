package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rwa-directory/project-portal/project-portal-backend/pkg/database"
)

// UserRole grants a role to a user of the identity provider.
type UserRole struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Role      string    `gorm:"type:varchar(32);not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserRole) TableName() string { return "user_roles" }

type GormRoleStore struct {
	db *gorm.DB
}

func NewGormRoleStore(db *gorm.DB) *GormRoleStore {
	return &GormRoleStore{db: db}
}

func (s *GormRoleStore) GetRole(ctx context.Context, userID uuid.UUID) (string, error) {
	var role UserRole
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", database.ClassifyError("get role", err)
	}
	return role.Role, nil
}

// SetRole grants role to userID, replacing any previous grant.
func (s *GormRoleStore) SetRole(ctx context.Context, userID uuid.UUID, role string) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"role": role, "updated_at": now}),
	}).Create(&UserRole{UserID: userID, Role: role, CreatedAt: now, UpdatedAt: now}).Error
	return database.ClassifyError("set role", err)
}
