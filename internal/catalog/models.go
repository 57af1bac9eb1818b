package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Kind selects one of the catalogs. Its value is the table name.
type Kind string

const (
	KindAssetTypes Kind = "asset_types"
	KindNetworks   Kind = "networks"
)

// Kinds lists every catalog, for migrations.
var Kinds = []Kind{KindAssetTypes, KindNetworks}

// Entry is an asset type or a network. Names are unique ignoring case.
type Entry struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Description string    `json:"description"`
	Icon        *string   `json:"icon,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type CreateEntryRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description string  `json:"description" binding:"max=2000"`
	Icon        *string `json:"icon" binding:"omitempty,url"`
}
