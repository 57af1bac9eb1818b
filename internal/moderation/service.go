package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
	"rwa-directory/project-portal/project-portal-backend/internal/auth"
	"rwa-directory/project-portal/project-portal-backend/internal/notifications"
	"rwa-directory/project-portal/project-portal-backend/internal/projects"
	"rwa-directory/project-portal/project-portal-backend/pkg/workflows"
)

// Publisher receives moderation events after a transition commits.
type Publisher interface {
	Publish(ctx context.Context, event notifications.ModerationEvent) error
}

// Service is the only writer of project review state. It holds the privileged
// review store; callers must have passed the admin gateway.
type Service struct {
	store    projects.ReviewStore
	workflow *workflows.StateMachine
	events   Publisher
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(store projects.ReviewStore, events Publisher, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		workflow: workflows.NewStateMachine(),
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// Transition moves a project to target on behalf of an administrator.
// Applying the status a project already has re-stamps the reviewer and time.
func (s *Service) Transition(ctx context.Context, projectID uuid.UUID, target string, actor *auth.Identity, notes string) (*projects.Project, error) {
	status, ok := projects.ParseStatus(target)
	if !ok || !s.workflow.IsState(string(status)) {
		return nil, apperror.ErrInvalidStatus
	}
	notes = strings.TrimSpace(notes)
	if status == projects.StatusChangesRequested && notes == "" {
		return nil, apperror.InvalidInput(apperror.CodeMissingRequiredField, "notes are required when requesting changes")
	}
	if actor == nil || actor.UserID == uuid.Nil {
		return nil, apperror.Unauthorized("missing reviewer")
	}

	project, err := s.store.ApplyReview(ctx, projectID, projects.ReviewUpdate{
		Status:     status,
		Notes:      notes,
		ReviewerID: actor.UserID,
		ReviewedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to transition project: %w", err)
	}
	if project == nil {
		return nil, apperror.ErrProjectNotFound
	}

	transitions.WithLabelValues(string(status)).Inc()
	s.logger.Info("Project status changed",
		zap.String("project_id", project.ID.String()),
		zap.String("status", string(project.Status)),
		zap.String("reviewer_id", actor.UserID.String()))

	s.publish(ctx, notifications.EventStatusChanged, project, actor.UserID)
	return project, nil
}

func (s *Service) Approve(ctx context.Context, projectID uuid.UUID, actor *auth.Identity, notes string) (*projects.Project, error) {
	return s.Transition(ctx, projectID, string(projects.StatusApproved), actor, notes)
}

func (s *Service) Reject(ctx context.Context, projectID uuid.UUID, actor *auth.Identity, notes string) (*projects.Project, error) {
	return s.Transition(ctx, projectID, string(projects.StatusRejected), actor, notes)
}

func (s *Service) RequestChanges(ctx context.Context, projectID uuid.UUID, actor *auth.Identity, notes string) (*projects.Project, error) {
	return s.Transition(ctx, projectID, string(projects.StatusChangesRequested), actor, notes)
}

// Resubmit sends a project that was returned for changes back to review. Only
// the submitting owner may do this.
func (s *Service) Resubmit(ctx context.Context, projectID uuid.UUID, owner *auth.Identity) (*projects.Project, error) {
	if owner == nil || owner.UserID == uuid.Nil {
		return nil, apperror.Unauthorized("missing session")
	}

	project, err := s.store.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperror.ErrProjectNotFound
	}
	if project.OwnerID != owner.UserID {
		return nil, apperror.Forbidden("project belongs to another user")
	}
	if !s.workflow.CanTransition(workflows.ActorOwner, string(project.Status), string(projects.StatusPending)) {
		return nil, apperror.Conflict(apperror.CodeInvalidStatus,
			fmt.Sprintf("cannot resubmit a project in status %s", project.Status))
	}

	ok, err := s.store.Resubmit(ctx, projectID, owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resubmit project: %w", err)
	}
	if !ok {
		// status changed between the read and the write
		return nil, apperror.ErrStorageConflict
	}
	project.Status = projects.StatusPending

	transitions.WithLabelValues("resubmitted").Inc()
	s.logger.Info("Project resubmitted", zap.String("project_id", project.ID.String()))

	s.publish(ctx, notifications.EventResubmitted, project, owner.UserID)
	return project, nil
}

// publish never fails the transition; the state change is already committed.
func (s *Service) publish(ctx context.Context, eventType string, project *projects.Project, actorID uuid.UUID) {
	if s.events == nil {
		return
	}
	event := notifications.ModerationEvent{
		ID:           uuid.New(),
		Type:         eventType,
		ProjectID:    project.ID,
		ProjectName:  project.Name,
		OwnerID:      project.OwnerID,
		ContactEmail: project.ContactEmail,
		Status:       string(project.Status),
		Notes:        project.ReviewNotes,
		ActorID:      actorID,
		OccurredAt:   s.now(),
		ReviewedAt:   project.ReviewedAt,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish moderation event",
			zap.String("project_id", project.ID.String()),
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}
