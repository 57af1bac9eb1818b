package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
)

type Service struct {
	repo   Repository
	cache  Cache
	logger *zap.Logger
}

// NewService builds the catalog service. cache may be nil.
func NewService(repo Repository, cache Cache, logger *zap.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// List returns every entry of a catalog, from cache when possible. Cache
// failures fall through to the store.
func (s *Service) List(ctx context.Context, kind Kind) ([]Entry, error) {
	if s.cache != nil {
		entries, err := s.cache.Get(ctx, kind)
		if err != nil {
			s.logger.Warn("Catalog cache read failed", zap.String("catalog", string(kind)), zap.Error(err))
		} else if entries != nil {
			return entries, nil
		}
	}

	entries, err := s.repo.List(ctx, kind)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, kind, entries); err != nil {
			s.logger.Warn("Catalog cache write failed", zap.String("catalog", string(kind)), zap.Error(err))
		}
	}
	return entries, nil
}

// Create adds an entry. A name already present in any casing is a conflict,
// whether caught by the probe or by the unique index.
func (s *Service) Create(ctx context.Context, kind Kind, req CreateEntryRequest) (*Entry, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.InvalidInput(apperror.CodeMissingRequiredField, "name is required")
	}

	exists, err := s.repo.ExistsByName(ctx, kind, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicate(kind, name)
	}

	entry := &Entry{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Icon:        req.Icon,
	}
	if err := s.repo.Create(ctx, kind, entry); err != nil {
		if errors.Is(err, apperror.ErrStorageConflict) {
			return nil, duplicate(kind, name)
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, kind); err != nil {
			s.logger.Warn("Catalog cache invalidation failed", zap.String("catalog", string(kind)), zap.Error(err))
		}
	}

	s.logger.Info("Catalog entry created",
		zap.String("catalog", string(kind)),
		zap.String("name", entry.Name),
		zap.String("id", entry.ID.String()))

	return entry, nil
}

func (s *Service) AssetTypeExists(ctx context.Context, name string) (bool, error) {
	return s.repo.ExistsByName(ctx, KindAssetTypes, strings.TrimSpace(name))
}

func (s *Service) NetworkExists(ctx context.Context, name string) (bool, error) {
	return s.repo.ExistsByName(ctx, KindNetworks, strings.TrimSpace(name))
}

func duplicate(kind Kind, name string) error {
	return apperror.Conflict(apperror.CodeDuplicateName, fmt.Sprintf("%s entry %q already exists", kind, name))
}
