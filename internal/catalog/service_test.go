package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
	"rwa-directory/project-portal/project-portal-backend/pkg/database"
)

type memoryCache struct {
	data        map[Kind][]Entry
	invalidated int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[Kind][]Entry{}}
}

func (m *memoryCache) Get(ctx context.Context, kind Kind) ([]Entry, error) {
	return m.data[kind], nil
}

func (m *memoryCache) Set(ctx context.Context, kind Kind, entries []Entry) error {
	m.data[kind] = entries
	return nil
}

func (m *memoryCache) Invalidate(ctx context.Context, kind Kind) error {
	delete(m.data, kind)
	m.invalidated++
	return nil
}

func newTestService(t *testing.T, cache Cache) (*Service, *GormRepository) {
	t.Helper()
	db, err := database.Open("sqlite://:memory:", database.Options{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	repo := NewGormRepository(db)
	return NewService(repo, cache, zap.NewNop()), repo
}

func TestCreateRejectsDuplicateNames(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, KindNetworks, CreateEntryRequest{Name: "Polygon"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, KindNetworks, CreateEntryRequest{Name: "Polygon"})
	assert.ErrorIs(t, err, apperror.ErrDuplicateName)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	_, err = svc.Create(ctx, KindNetworks, CreateEntryRequest{Name: " polygon "})
	assert.ErrorIs(t, err, apperror.ErrDuplicateName)

	// catalogs are independent
	_, err = svc.Create(ctx, KindAssetTypes, CreateEntryRequest{Name: "Polygon"})
	assert.NoError(t, err)
}

func TestUniqueIndexBackstopsProbe(t *testing.T) {
	_, repo := newTestService(t, nil)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, KindAssetTypes, &Entry{Name: "Real Estate"}))
	err := repo.Create(ctx, KindAssetTypes, &Entry{Name: "REAL ESTATE"})
	assert.ErrorIs(t, err, apperror.ErrStorageConflict)
}

func TestCreateRequiresName(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.Create(context.Background(), KindAssetTypes, CreateEntryRequest{Name: "   "})
	assert.ErrorIs(t, err, apperror.ErrMissingRequiredField)
}

func TestListUsesCacheAndCreateInvalidates(t *testing.T) {
	cache := newMemoryCache()
	svc, repo := newTestService(t, cache)
	ctx := context.Background()

	_, err := svc.Create(ctx, KindAssetTypes, CreateEntryRequest{Name: "Bonds"})
	require.NoError(t, err)

	entries, err := svc.List(ctx, KindAssetTypes)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, cache.data[KindAssetTypes], 1)

	// written behind the service's back, so only visible after invalidation
	require.NoError(t, repo.Create(ctx, KindAssetTypes, &Entry{Name: "Commodities"}))
	entries, err = svc.List(ctx, KindAssetTypes)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = svc.Create(ctx, KindAssetTypes, CreateEntryRequest{Name: "Art"})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.invalidated)

	entries, err = svc.List(ctx, KindAssetTypes)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, "Art", entries[0].Name)
}

func TestExistenceChecks(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	_, err := svc.Create(ctx, KindNetworks, CreateEntryRequest{Name: "Ethereum"})
	require.NoError(t, err)

	ok, err := svc.NetworkExists(ctx, "ethereum")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.AssetTypeExists(ctx, "ethereum")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNetworkEndpointConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(t, nil)
	router := gin.New()
	allow := func(c *gin.Context) { c.Next() }
	NewHandler(svc, zap.NewNop()).RegisterRoutes(router.Group("/api/v1"), allow)

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/networks", strings.NewReader(`{"name":"Polygon"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, post())
	assert.Equal(t, http.StatusConflict, post())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/networks", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
