package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/projects"
	"rwa-directory/project-portal/project-portal-backend/pkg/database"
)

func newQueue(t *testing.T, pending, approved int) *projects.GormRepository {
	t.Helper()
	db, err := database.Open("sqlite://:memory:", database.Options{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &projects.Project{}))
	repo := projects.NewGormRepository(db)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	add := func(i int, status projects.Status) {
		p := &projects.Project{
			Name:       fmt.Sprintf("Project %03d", i),
			Type:       "bonds",
			Blockchain: "polygon",
			ROI:        5,
			OwnerID:    uuid.New(),
			Status:     status,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(context.Background(), p))
	}
	for i := 0; i < pending; i++ {
		add(i, projects.StatusPending)
	}
	for i := 0; i < approved; i++ {
		add(pending+i, projects.StatusApproved)
	}
	return repo
}

func TestExportQueueCSVPagesThroughEverything(t *testing.T) {
	svc := NewService(newQueue(t, 130, 5), zap.NewNop())

	var buf bytes.Buffer
	pending := projects.StatusPending
	n, err := svc.ExportQueue(context.Background(), &buf, FormatCSV, &pending)
	require.NoError(t, err)
	assert.Equal(t, 130, n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 131)
	assert.Equal(t, Columns, records[0])
	assert.Equal(t, "Project 000", records[1][1])
	assert.Equal(t, "pending", records[1][6])
	assert.Equal(t, "false", records[1][7])
	assert.Equal(t, "", records[1][10])

	buf.Reset()
	n, err = svc.ExportQueue(context.Background(), &buf, FormatCSV, nil)
	require.NoError(t, err)
	assert.Equal(t, 135, n)
}

func TestExportQueueExcel(t *testing.T) {
	svc := NewService(newQueue(t, 2, 1), zap.NewNop())

	var buf bytes.Buffer
	n, err := svc.ExportQueue(context.Background(), &buf, FormatExcel, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Moderation Queue")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "approved", rows[3][6])
}

func TestExportEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	allow := func(c *gin.Context) { c.Next() }
	NewHandler(NewService(newQueue(t, 1, 0), zap.NewNop()), zap.NewNop()).RegisterRoutes(router.Group("/api/v1"), allow)

	get := func(query string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/projects/export"+query, nil))
		return w
	}

	w := get("")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "moderation-queue-")
	assert.Equal(t, "1", w.Header().Get("X-Row-Count"))

	assert.Equal(t, http.StatusBadRequest, get("?format=pdf").Code)
	assert.Equal(t, http.StatusBadRequest, get("?status=archived").Code)
	assert.Equal(t, http.StatusOK, get("?format=xlsx&status=approved").Code)
}
