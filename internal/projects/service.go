package projects

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
)

// CatalogChecker confirms that a submitted asset type or network exists.
type CatalogChecker interface {
	AssetTypeExists(ctx context.Context, name string) (bool, error)
	NetworkExists(ctx context.Context, name string) (bool, error)
}

// Requests

type CreateProjectRequest struct {
	Name        string          `json:"name" binding:"required"`
	Type        string          `json:"type" binding:"required"`
	Blockchain  string          `json:"blockchain" binding:"required"`
	ROI         float64         `json:"roi"`
	TVL         decimal.Decimal `json:"tvl"`
	Description string          `json:"description"`
	Website     string          `json:"website" binding:"omitempty,url"`
	Documents   []string        `json:"documents"`
}

type UpdateProjectRequest struct {
	Name        *string          `json:"name"`
	Type        *string          `json:"type"`
	Blockchain  *string          `json:"blockchain"`
	ROI         *float64         `json:"roi"`
	TVL         *decimal.Decimal `json:"tvl"`
	Description *string          `json:"description"`
	Website     *string          `json:"website" binding:"omitempty,url"`
	Documents   []string         `json:"documents"`
}

// Service implements the submitter side of the project lifecycle.
type Service struct {
	store   OwnerStore
	catalog CatalogChecker
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(store OwnerStore, catalog CatalogChecker, logger *zap.Logger) *Service {
	return &Service{
		store:   store,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

// Submit creates a new project in the pending state.
func (s *Service) Submit(ctx context.Context, ownerID uuid.UUID, contactEmail string, req CreateProjectRequest) (*Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.InvalidInput(apperror.CodeMissingRequiredField, "name is required")
	}
	if ownerID == uuid.Nil {
		return nil, apperror.Unauthorized("owner is required")
	}
	if err := validateROI(req.ROI); err != nil {
		return nil, err
	}
	if err := s.checkCatalog(ctx, req.Type, req.Blockchain); err != nil {
		return nil, err
	}
	docs, err := encodeDocuments(req.Documents)
	if err != nil {
		return nil, err
	}

	now := s.now()
	project := &Project{
		Name:         name,
		Type:         req.Type,
		Blockchain:   req.Blockchain,
		ROI:          req.ROI,
		TVL:          req.TVL,
		Description:  req.Description,
		Website:      strings.TrimSpace(req.Website),
		Documents:    docs,
		OwnerID:      ownerID,
		ContactEmail: contactEmail,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to submit project: %w", err)
	}

	s.logger.Info("Project submitted",
		zap.String("project_id", project.ID.String()),
		zap.String("owner_id", ownerID.String()))

	return project, nil
}

// Update edits the submitter-owned attributes. Approved projects are frozen.
func (s *Service) Update(ctx context.Context, id, ownerID uuid.UUID, req UpdateProjectRequest) (*Project, error) {
	project, err := s.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if project.IsApproved() {
		return nil, apperror.Conflict("project_frozen", "approved projects cannot be edited")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.InvalidInput(apperror.CodeMissingRequiredField, "name cannot be empty")
		}
		project.Name = name
	}
	if req.Type != nil || req.Blockchain != nil {
		assetType, network := project.Type, project.Blockchain
		if req.Type != nil {
			assetType = *req.Type
		}
		if req.Blockchain != nil {
			network = *req.Blockchain
		}
		if err := s.checkCatalog(ctx, assetType, network); err != nil {
			return nil, err
		}
		project.Type, project.Blockchain = assetType, network
	}
	if req.ROI != nil {
		if err := validateROI(*req.ROI); err != nil {
			return nil, err
		}
		project.ROI = *req.ROI
	}
	if req.TVL != nil {
		project.TVL = *req.TVL
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Website != nil {
		project.Website = strings.TrimSpace(*req.Website)
	}
	if req.Documents != nil {
		docs, err := encodeDocuments(req.Documents)
		if err != nil {
			return nil, err
		}
		project.Documents = docs
	}
	project.UpdatedAt = s.now()

	written, err := s.store.UpdateAttributes(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	if !written {
		// approved between the read and the write
		return nil, apperror.Conflict("project_frozen", "approved projects cannot be edited")
	}

	return project, nil
}

// GetOwned returns a project if ownerID submitted it.
func (s *Service) GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*Project, error) {
	project, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperror.ErrProjectNotFound
	}
	if project.OwnerID != ownerID {
		return nil, apperror.Forbidden("project belongs to another user")
	}
	return project, nil
}

func (s *Service) ListMine(ctx context.Context, ownerID uuid.UUID) ([]Project, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

func (s *Service) checkCatalog(ctx context.Context, assetType, network string) error {
	if strings.TrimSpace(assetType) == "" || strings.TrimSpace(network) == "" {
		return apperror.InvalidInput(apperror.CodeMissingRequiredField, "type and blockchain are required")
	}
	if s.catalog == nil {
		return nil
	}
	ok, err := s.catalog.AssetTypeExists(ctx, assetType)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.InvalidInput("unknown_asset_type", fmt.Sprintf("unknown asset type %q", assetType))
	}
	ok, err = s.catalog.NetworkExists(ctx, network)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.InvalidInput("unknown_network", fmt.Sprintf("unknown network %q", network))
	}
	return nil
}

func validateROI(roi float64) error {
	if math.IsNaN(roi) || math.IsInf(roi, 0) {
		return apperror.InvalidInput("", "roi must be a finite number")
	}
	return nil
}

func encodeDocuments(keys []string) (datatypes.JSON, error) {
	cleaned := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	raw, err := json.Marshal(cleaned)
	if err != nil {
		return nil, apperror.InvalidInput("", "invalid documents")
	}
	return datatypes.JSON(raw), nil
}
