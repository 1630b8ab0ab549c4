package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"gamestracker/backend/internal/config"
	"gamestracker/backend/internal/database"
	"gamestracker/backend/internal/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupHandlerTest points the package-level database handle at a fresh
// in-memory database and returns it.
func setupHandlerTest(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	previous := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = previous })

	previousConfig := config.AppConfig
	config.AppConfig = &config.Config{JWTSecret: "test-secret"}
	t.Cleanup(func() { config.AppConfig = previousConfig })

	return db
}

func performRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func uploadTestRecords(t *testing.T, db *gorm.DB, records ...pipeline.Record) {
	t.Helper()
	summary, err := pipeline.NewUploader(db).Upload(context.Background(), records)
	require.NoError(t, err)
	require.Equal(t, len(records), summary.Uploaded)
}

func jsonBody(t *testing.T, w *httptest.ResponseRecorder, expectStatus int) string {
	t.Helper()
	require.Equal(t, expectStatus, w.Code, "body: %s", w.Body.String())
	require.Contains(t, w.Header().Get("Content-Type"), "application/json")
	return w.Body.String()
}
