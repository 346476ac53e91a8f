package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/inkwell/internal/database"
	"github.com/mrlokans/inkwell/internal/importer"
	"github.com/mrlokans/inkwell/internal/services"
	"github.com/mrlokans/inkwell/internal/settingsstore"
)

func setupImportTest(t *testing.T, discoverable bool) (*gin.Engine, *settingsstore.SettingsStore, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_import_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	store := settingsstore.New(db)
	env := services.NewImportEnvironment(db, "/nonexistent/quill.sqlite", 5)
	env.Discover = func() bool { return discoverable }
	service := services.NewImportService(store, env)

	controller := NewLegacyImportController(service, store, nil)
	router := gin.New()
	router.GET("/api/import/legacy/status", controller.Status)
	router.POST("/api/import/legacy", controller.Trigger)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return router, store, cleanup
}

func TestLegacyImportStatus(t *testing.T) {
	t.Run("reports pending import when store discoverable", func(t *testing.T) {
		router, _, cleanup := setupImportTest(t, true)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/import/legacy/status", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response LegacyImportStatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.ShouldImport)
		assert.False(t, response.Running)
		assert.Equal(t, importer.PhaseNotStarted, response.Progress.Phase)
		assert.False(t, response.LastRun.Completed)
		assert.NotNil(t, response.NextCheckAt)
	})

	t.Run("no pending import without a discoverable store", func(t *testing.T) {
		router, _, cleanup := setupImportTest(t, false)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/import/legacy/status", nil)
		router.ServeHTTP(w, req)

		var response LegacyImportStatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.False(t, response.ShouldImport)
	})

	t.Run("completed flag suppresses pending import", func(t *testing.T) {
		router, store, cleanup := setupImportTest(t, true)
		defer cleanup()

		require.NoError(t, store.SetLegacyImportCompleted(true))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/import/legacy/status", nil)
		router.ServeHTTP(w, req)

		var response LegacyImportStatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.False(t, response.ShouldImport)
		assert.True(t, response.LastRun.Completed)
	})
}

func TestLegacyImportTrigger(t *testing.T) {
	t.Run("rejected when no store discoverable", func(t *testing.T) {
		router, _, cleanup := setupImportTest(t, false)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/import/legacy", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejected when import already completed", func(t *testing.T) {
		router, store, cleanup := setupImportTest(t, true)
		defer cleanup()

		require.NoError(t, store.SetLegacyImportCompleted(true))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/import/legacy", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("accepted when import pending", func(t *testing.T) {
		router, _, cleanup := setupImportTest(t, true)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/import/legacy", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Contains(t, w.Body.String(), "started")

		// Let the background run (which fails fast on the bogus path)
		// finish before the database is torn down.
		time.Sleep(100 * time.Millisecond)
	})
}

func TestLegacySettings(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dbPath := "./test_legacy_settings.db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	defer func() {
		db.Close()
		os.Remove(dbPath)
	}()

	store := settingsstore.New(db)
	controller := NewLegacySettingsController(store, nil)
	router := gin.New()
	router.GET("/api/settings/legacy", controller.GetSettings)
	router.POST("/api/settings/legacy", controller.UpdateSettings)
	router.POST("/api/settings/legacy/reset", controller.ResetSettings)

	t.Run("update and read back", func(t *testing.T) {
		body := strings.NewReader(`{"auto_import": true, "schedule": "*/30 * * * *"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/settings/legacy", body)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, store.GetLegacyAutoImport())
		assert.Equal(t, "*/30 * * * *", store.GetLegacyCheckSchedule())
	})

	t.Run("invalid schedule rejected", func(t *testing.T) {
		body := strings.NewReader(`{"schedule": "often"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/settings/legacy", body)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("reset reverts overrides", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/settings/legacy/reset", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "default", store.GetLegacyAutoImportSource())
	})
}
