package documents

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
	"rwa-directory/project-portal/project-portal-backend/internal/projects"
	"rwa-directory/project-portal/project-portal-backend/pkg/storage"
)

const DefaultLinkTTL = 15 * time.Minute

// ProjectFinder loads a project regardless of status.
type ProjectFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*projects.Project, error)
}

// Link is a time-limited download URL for one supporting document.
type Link struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service hands reviewers download links for the documents a submitter attached.
type Service struct {
	projects  ProjectFinder
	presigner storage.Presigner
	ttl       time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(projects ProjectFinder, presigner storage.Presigner, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}
	return &Service{
		projects:  projects,
		presigner: presigner,
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
	}
}

// Links presigns every stored document key of a project. Keys that try to
// climb out of the bucket prefix are skipped.
func (s *Service) Links(ctx context.Context, projectID uuid.UUID) ([]Link, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperror.ErrProjectNotFound
	}

	links := []Link{}
	expires := s.now().Add(s.ttl)
	for _, key := range project.DocumentKeys() {
		if !validKey(key) {
			s.logger.Warn("Skipping document key", zap.String("project_id", projectID.String()), zap.String("key", key))
			continue
		}
		url, err := s.presigner.GetPresignedURL(ctx, key, s.ttl)
		if err != nil {
			return nil, apperror.Storage("presign document", err)
		}
		links = append(links, Link{Key: key, URL: url, ExpiresAt: expires})
	}
	return links, nil
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
