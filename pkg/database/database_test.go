package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
)

func TestClassifyError(t *testing.T) {
	assert.NoError(t, ClassifyError("noop", nil))

	err := ClassifyError("insert", fmt.Errorf("wrapped: %w", gorm.ErrDuplicatedKey))
	assert.ErrorIs(t, err, apperror.ErrStorageConflict)

	err = ClassifyError("update", &pq.Error{Code: "40001"})
	assert.ErrorIs(t, err, apperror.ErrStorageConflict)

	err = ClassifyError("select", errors.New("connection refused"))
	assert.Equal(t, apperror.KindStorage, apperror.KindOf(err))
}

func TestClassifyConflictKeepsOperationOutOfMessage(t *testing.T) {
	err := ClassifyError("apply review", &pq.Error{Code: "23505"})

	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "apply review", appErr.Op)
	assert.NotContains(t, appErr.Message, "apply review")
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	db, err := Open("sqlite://:memory:", Options{Logger: zap.New(core)})
	require.NoError(t, err)
	require.NoError(t, Migrate(db, &widget{}))
	logs.TakeAll()

	var w widget
	err = db.Where("name = ?", "missing").First(&w).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len())

	assert.Error(t, db.Exec("SELECT * FROM no_such_table").Error)
	entries := logs.FilterMessage("SQL execution failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "gorm", entries[0].LoggerName)
}

type widget struct {
	ID   uint
	Name string
}

func TestOpenSQLiteAndIndex(t *testing.T) {
	db, err := Open("sqlite://:memory:", Options{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db, &widget{}))
	require.NoError(t, EnsureCaseInsensitiveUnique(db, "widgets", "name"))

	require.NoError(t, db.Create(&widget{Name: "Polygon"}).Error)
	err = db.Create(&widget{Name: "polygon"}).Error
	require.Error(t, err)
	assert.ErrorIs(t, ClassifyError("insert widget", err), apperror.ErrStorageConflict)
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, err := Open("mysql://localhost/db", Options{})
	assert.Error(t, err)
}
