package validation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
	"rwa-directory/project-portal/project-portal-backend/internal/projects"
)

// ProjectFinder looks up a project of any status.
type ProjectFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*projects.Project, error)
}

type Service struct {
	repo     Repository
	projects ProjectFinder
	runner   *Runner
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, finder ProjectFinder, runner *Runner, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		projects: finder,
		runner:   runner,
		logger:   logger,
		now:      time.Now,
	}
}

// GetVerdict returns the stored result, or nil when the project was never checked.
func (s *Service) GetVerdict(ctx context.Context, projectID uuid.UUID) (*Result, error) {
	return s.repo.Get(ctx, projectID)
}

// RecordAutomated stores automated outcomes. Manual overrides are left alone.
// With no outcomes nothing is written and the stored result, possibly nil, is
// returned as is.
func (s *Service) RecordAutomated(ctx context.Context, projectID uuid.UUID, outcomes map[CheckName]Outcome) (*Result, error) {
	if len(outcomes) == 0 {
		return s.repo.Get(ctx, projectID)
	}

	result, err := s.loadOrNew(ctx, projectID)
	if err != nil {
		return nil, err
	}

	for name, outcome := range outcomes {
		check := result.Check(name)
		if check == nil {
			continue
		}
		check.Checked = true
		check.Passed = outcome.Passed
		check.Details = outcome.Details
	}

	now := s.now()
	result.CheckedAt = &now
	result.Recompute()

	if err := s.repo.Save(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to record validation: %w", err)
	}
	return result, nil
}

// ApplyOverride replaces the effective value of one check with a human decision.
func (s *Service) ApplyOverride(ctx context.Context, reviewerID, projectID uuid.UUID, checkName string, passed bool, notes string) (*Result, error) {
	name, ok := ParseCheckName(checkName)
	if !ok {
		return nil, apperror.InvalidInput("unknown_check", fmt.Sprintf("unknown check %q", checkName))
	}
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}

	result, err := s.loadOrNew(ctx, projectID)
	if err != nil {
		return nil, err
	}

	check := result.Check(name)
	check.ManualOverride = true
	check.ManualPassed = passed
	check.ManualNotes = strings.TrimSpace(notes)
	s.stampReview(result, reviewerID)
	result.Recompute()

	if err := s.repo.Save(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save override: %w", err)
	}
	overridesApplied.WithLabelValues(string(name), "set").Inc()

	s.logger.Info("Validation override applied",
		zap.String("project_id", projectID.String()),
		zap.String("check", string(name)),
		zap.Bool("passed", passed),
		zap.String("reviewer_id", reviewerID.String()))

	return result, nil
}

// ClearOverride hands a check back to its automated value.
func (s *Service) ClearOverride(ctx context.Context, reviewerID, projectID uuid.UUID, checkName string) (*Result, error) {
	name, ok := ParseCheckName(checkName)
	if !ok {
		return nil, apperror.InvalidInput("unknown_check", fmt.Sprintf("unknown check %q", checkName))
	}

	result, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, apperror.NotFound("validation_not_found", "no validation result for project")
	}

	check := result.Check(name)
	check.ManualOverride = false
	check.ManualPassed = false
	check.ManualNotes = ""
	s.stampReview(result, reviewerID)
	result.Recompute()

	if err := s.repo.Save(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to clear override: %w", err)
	}
	overridesApplied.WithLabelValues(string(name), "clear").Inc()

	return result, nil
}

// Run executes the automated checks for one project and records them.
func (s *Service) Run(ctx context.Context, projectID uuid.UUID) (*Result, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperror.ErrProjectNotFound
	}

	outcomes := s.runner.Run(ctx, project)
	return s.RecordAutomated(ctx, projectID, outcomes)
}

// SweepStale runs checks for pending projects whose results are missing or
// older than maxAge. It returns how many projects were checked.
func (s *Service) SweepStale(ctx context.Context, maxAge time.Duration, batch int) (int, error) {
	if s.runner.Len() == 0 {
		s.logger.Warn("No validation providers configured, sweep skipped")
		return 0, nil
	}

	ids, err := s.repo.ListStale(ctx, s.now().Add(-maxAge), batch)
	if err != nil {
		return 0, err
	}

	checked := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return checked, ctx.Err()
		}
		if _, err := s.Run(ctx, id); err != nil {
			s.logger.Error("Failed to validate project", zap.String("project_id", id.String()), zap.Error(err))
			continue
		}
		checked++
	}
	return checked, nil
}

func (s *Service) requireProject(ctx context.Context, projectID uuid.UUID) error {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return apperror.ErrProjectNotFound
	}
	return nil
}

func (s *Service) loadOrNew(ctx context.Context, projectID uuid.UUID) (*Result, error) {
	result, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &Result{ProjectID: projectID}
	}
	return result, nil
}

func (s *Service) stampReview(result *Result, reviewerID uuid.UUID) {
	now := s.now()
	reviewer := reviewerID
	result.ManuallyReviewed = true
	result.ReviewerID = &reviewer
	result.ReviewedAt = &now
}
