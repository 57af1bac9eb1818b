package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
	"rwa-directory/project-portal/project-portal-backend/internal/auth"
	"rwa-directory/project-portal/project-portal-backend/internal/notifications"
	"rwa-directory/project-portal/project-portal-backend/internal/projects"
	"rwa-directory/project-portal/project-portal-backend/pkg/database"
)

// MockReviewStore is a mock implementation of projects.ReviewStore
type MockReviewStore struct {
	mock.Mock
}

func (m *MockReviewStore) GetByID(ctx context.Context, id uuid.UUID) (*projects.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*projects.Project), args.Error(1)
}

func (m *MockReviewStore) ApplyReview(ctx context.Context, id uuid.UUID, update projects.ReviewUpdate) (*projects.Project, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*projects.Project), args.Error(1)
}

func (m *MockReviewStore) Resubmit(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Bool(0), args.Error(1)
}

type recordingPublisher struct {
	events []notifications.ModerationEvent
	err    error
}

func (r *recordingPublisher) Publish(ctx context.Context, event notifications.ModerationEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func admin() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Email: "admin@example.com", Role: auth.RoleAdmin}
}

func TestTransitionValidatesBeforeStorage(t *testing.T) {
	store := new(MockReviewStore)
	svc := NewService(store, nil, zap.NewNop())
	ctx := context.Background()
	id := uuid.New()

	_, err := svc.Transition(ctx, id, "archived", admin(), "")
	assert.ErrorIs(t, err, apperror.ErrInvalidStatus)
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))

	for _, notes := range []string{"", "   ", "\t\n"} {
		_, err = svc.RequestChanges(ctx, id, admin(), notes)
		assert.ErrorIs(t, err, apperror.ErrMissingRequiredField)
	}

	store.AssertNotCalled(t, "ApplyReview", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionWithoutNotesSucceedsForOtherTargets(t *testing.T) {
	for _, target := range []projects.Status{projects.StatusPending, projects.StatusApproved, projects.StatusRejected} {
		t.Run(string(target), func(t *testing.T) {
			store := new(MockReviewStore)
			svc := NewService(store, nil, zap.NewNop())
			id := uuid.New()
			actor := admin()

			store.On("ApplyReview", mock.Anything, id, mock.MatchedBy(func(u projects.ReviewUpdate) bool {
				return u.Status == target && u.Notes == "" && u.ReviewerID == actor.UserID && !u.ReviewedAt.IsZero()
			})).Return(&projects.Project{ID: id, Status: target}, nil)

			project, err := svc.Transition(context.Background(), id, string(target), actor, "")
			require.NoError(t, err)
			assert.Equal(t, target == projects.StatusApproved, project.IsApproved())
			store.AssertExpectations(t)
		})
	}
}

func TestTransitionMissingProject(t *testing.T) {
	store := new(MockReviewStore)
	svc := NewService(store, nil, zap.NewNop())
	id := uuid.New()
	store.On("ApplyReview", mock.Anything, id, mock.Anything).Return(nil, nil)

	_, err := svc.Approve(context.Background(), id, admin(), "")
	assert.ErrorIs(t, err, apperror.ErrProjectNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestTransitionPropagatesStorageConflict(t *testing.T) {
	store := new(MockReviewStore)
	svc := NewService(store, nil, zap.NewNop())
	id := uuid.New()
	store.On("ApplyReview", mock.Anything, id, mock.Anything).Return(nil, apperror.ErrStorageConflict).Once()

	_, err := svc.Reject(context.Background(), id, admin(), "")
	assert.ErrorIs(t, err, apperror.ErrStorageConflict)
	// not retried
	store.AssertNumberOfCalls(t, "ApplyReview", 1)
}

func TestPublishFailureDoesNotFailTransition(t *testing.T) {
	store := new(MockReviewStore)
	events := &recordingPublisher{err: errors.New("kafka down")}
	svc := NewService(store, events, zap.NewNop())
	id := uuid.New()
	store.On("ApplyReview", mock.Anything, id, mock.Anything).
		Return(&projects.Project{ID: id, Name: "Harbor Bonds", Status: projects.StatusApproved}, nil)

	project, err := svc.Approve(context.Background(), id, admin(), "")
	require.NoError(t, err)
	assert.Equal(t, projects.StatusApproved, project.Status)
	require.Len(t, events.events, 1)
	assert.Equal(t, notifications.EventStatusChanged, events.events[0].Type)
	assert.Equal(t, "approved", events.events[0].Status)
}

func newSQLiteService(t *testing.T) (*Service, *projects.GormRepository, *recordingPublisher) {
	t.Helper()
	db, err := database.Open("sqlite://:memory:", database.Options{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &projects.Project{}))

	repo := projects.NewGormRepository(db)
	events := &recordingPublisher{}
	return NewService(repo, events, zap.NewNop()), repo, events
}

func TestRequestChangesThenApprove(t *testing.T) {
	svc, repo, events := newSQLiteService(t)
	ctx := context.Background()

	p1 := &projects.Project{Name: "P1", Type: "real-estate", Blockchain: "ethereum", OwnerID: uuid.New()}
	require.NoError(t, repo.Create(ctx, p1))
	assert.Equal(t, projects.StatusPending, p1.Status)

	reviewer := admin()
	updated, err := svc.RequestChanges(ctx, p1.ID, reviewer, "fix whitepaper link")
	require.NoError(t, err)
	assert.Equal(t, projects.StatusChangesRequested, updated.Status)
	assert.Equal(t, "fix whitepaper link", updated.ReviewNotes)
	assert.False(t, updated.IsApproved())

	updated, err = svc.Approve(ctx, p1.ID, reviewer, "")
	require.NoError(t, err)
	assert.Equal(t, projects.StatusApproved, updated.Status)
	assert.Equal(t, "", updated.ReviewNotes)

	raw, err := json.Marshal(updated)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, true, body["approved"])
	assert.Equal(t, "approved", body["status"])

	assert.Len(t, events.events, 2)
}

func TestReapplyingSameStatusRestamps(t *testing.T) {
	svc, repo, _ := newSQLiteService(t)
	ctx := context.Background()

	p := &projects.Project{Name: "Touch", Type: "bonds", Blockchain: "polygon", OwnerID: uuid.New()}
	require.NoError(t, repo.Create(ctx, p))

	first, second := admin(), admin()
	svc.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	_, err := svc.Approve(ctx, p.ID, first, "")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }
	updated, err := svc.Approve(ctx, p.ID, second, "")
	require.NoError(t, err)

	require.NotNil(t, updated.ReviewerID)
	assert.Equal(t, second.UserID, *updated.ReviewerID)
	require.NotNil(t, updated.ReviewedAt)
	assert.Equal(t, time.February, updated.ReviewedAt.UTC().Month())
}

func TestApprovedFlagAlwaysMatchesStatus(t *testing.T) {
	svc, repo, _ := newSQLiteService(t)
	ctx := context.Background()

	p := &projects.Project{Name: "Cycle", Type: "bonds", Blockchain: "polygon", OwnerID: uuid.New()}
	require.NoError(t, repo.Create(ctx, p))

	sequence := []string{"approved", "rejected", "changes_requested", "pending", "approved", "approved", "rejected"}
	for _, target := range sequence {
		updated, err := svc.Transition(ctx, p.ID, target, admin(), "needs work")
		require.NoError(t, err)
		assert.Equal(t, updated.Status == projects.StatusApproved, updated.IsApproved())

		stored, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, projects.Status(target), stored.Status)
	}
}

func TestResubmit(t *testing.T) {
	svc, repo, events := newSQLiteService(t)
	ctx := context.Background()
	owner := &auth.Identity{UserID: uuid.New()}

	p := &projects.Project{Name: "Resubmit", Type: "bonds", Blockchain: "polygon", OwnerID: owner.UserID}
	require.NoError(t, repo.Create(ctx, p))

	_, err := svc.Resubmit(ctx, p.ID, owner)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err), "pending projects cannot be resubmitted")

	_, err = svc.RequestChanges(ctx, p.ID, admin(), "add audit report")
	require.NoError(t, err)

	_, err = svc.Resubmit(ctx, p.ID, &auth.Identity{UserID: uuid.New()})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	updated, err := svc.Resubmit(ctx, p.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, projects.StatusPending, updated.Status)
	assert.Equal(t, notifications.EventResubmitted, events.events[len(events.events)-1].Type)

	_, err = svc.Resubmit(ctx, uuid.New(), owner)
	assert.ErrorIs(t, err, apperror.ErrProjectNotFound)
}
