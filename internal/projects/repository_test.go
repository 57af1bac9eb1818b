package projects

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rwa-directory/project-portal/project-portal-backend/pkg/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite://:memory:", database.Options{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &Project{}))
	return db
}

func seed(t *testing.T, repo *GormRepository, name string, status Status, created time.Time) *Project {
	t.Helper()
	p := &Project{
		Name:       name,
		Type:       "real-estate",
		Blockchain: "ethereum",
		ROI:        8.5,
		OwnerID:    uuid.New(),
		Status:     status,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestApplyReviewWritesAllColumns(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))
	ctx := context.Background()
	p := seed(t, repo, "Harbor Bonds", StatusPending, time.Now())

	reviewer := uuid.New()
	at := time.Now().UTC().Truncate(time.Second)
	updated, err := repo.ApplyReview(ctx, p.ID, ReviewUpdate{
		Status:     StatusChangesRequested,
		Notes:      "fix whitepaper link",
		ReviewerID: reviewer,
		ReviewedAt: at,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, StatusChangesRequested, updated.Status)
	assert.Equal(t, "fix whitepaper link", updated.ReviewNotes)
	require.NotNil(t, updated.ReviewerID)
	assert.Equal(t, reviewer, *updated.ReviewerID)
	require.NotNil(t, updated.ReviewedAt)
	assert.True(t, at.Equal(*updated.ReviewedAt))
}

func TestApplyReviewMissingProject(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))

	updated, err := repo.ApplyReview(context.Background(), uuid.New(), ReviewUpdate{
		Status:     StatusApproved,
		ReviewerID: uuid.New(),
		ReviewedAt: time.Now(),
	})
	assert.NoError(t, err)
	assert.Nil(t, updated)
}

func TestListPublishableOnlyApproved(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 4; i++ {
		seed(t, repo, fmt.Sprintf("approved-%d", i), StatusApproved, base.Add(time.Duration(i)*time.Minute))
	}
	seed(t, repo, "pending", StatusPending, base)
	seed(t, repo, "rejected", StatusRejected, base)
	seed(t, repo, "changes", StatusChangesRequested, base)

	items, total, err := repo.ListPublishable(context.Background(), Filter{}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, items, 4)
	for _, p := range items {
		assert.Equal(t, StatusApproved, p.Status)
	}
	// newest first
	assert.Equal(t, "approved-3", items[0].Name)
	assert.Equal(t, "approved-0", items[3].Name)
}

func TestListPublishableFilters(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now()

	seed(t, repo, "low", StatusApproved, now)
	b := seed(t, repo, "high", StatusApproved, now.Add(time.Second))
	b.ROI = 22
	b.Blockchain = "polygon"
	_, err := repo.UpdateAttributes(ctx, b)
	require.NoError(t, err)

	lo, hi := 10.0, 30.0
	items, total, err := repo.ListPublishable(ctx, Filter{MinROI: &lo, MaxROI: &hi}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "high", items[0].Name)

	items, total, err = repo.ListPublishable(ctx, Filter{Blockchain: "ethereum"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "low", items[0].Name)

	exact := 8.5
	_, total, err = repo.ListPublishable(ctx, Filter{MinROI: &exact, MaxROI: &exact}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestResubmitRequiresChangesRequested(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))
	ctx := context.Background()
	p := seed(t, repo, "Orchard Notes", StatusPending, time.Now())

	ok, err := repo.Resubmit(ctx, p.ID, p.OwnerID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.ApplyReview(ctx, p.ID, ReviewUpdate{
		Status: StatusChangesRequested, Notes: "add audit", ReviewerID: uuid.New(), ReviewedAt: time.Now(),
	})
	require.NoError(t, err)

	ok, err = repo.Resubmit(ctx, p.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok, "another owner cannot resubmit")

	ok, err = repo.Resubmit(ctx, p.ID, p.OwnerID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}

func TestUpdateAttributesRefusesApproved(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))
	ctx := context.Background()
	p := seed(t, repo, "Solar Yield", StatusApproved, time.Now())

	p.Name = "Renamed"
	written, err := repo.UpdateAttributes(ctx, p)
	require.NoError(t, err)
	assert.False(t, written)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Solar Yield", got.Name)
}

func TestGetPublishedHidesUnapproved(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))
	ctx := context.Background()
	p := seed(t, repo, "Hidden", StatusPending, time.Now())

	got, err := repo.GetPublished(ctx, p.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestListForReviewByStatus(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))
	base := time.Now()
	seed(t, repo, "first", StatusPending, base)
	seed(t, repo, "second", StatusPending, base.Add(time.Minute))
	seed(t, repo, "done", StatusApproved, base)

	pending := StatusPending
	items, total, err := repo.ListForReview(context.Background(), &pending, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].Name)

	_, total, err = repo.ListForReview(context.Background(), nil, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}
