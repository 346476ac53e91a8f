package database

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/inkwell/internal/entities"
)

func setupTestDatabase(t *testing.T) (*Database, func()) {
	dbPath := "./test_database_" + t.Name() + ".db"

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func TestTransactionContext_InsertVisibleAfterSave(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx, err := NewTransactionContext(db.DB)
	require.NoError(t, err)

	require.NoError(t, ctx.Insert(&entities.Project{Name: "Typee", UUID: "u-1"}))

	exists, err := ctx.ProjectExists("Typee")
	require.NoError(t, err)
	assert.True(t, exists, "insert must be visible inside the open transaction")

	require.NoError(t, ctx.Save())

	var count int64
	require.NoError(t, db.DB.Model(&entities.Project{}).Where("name = ?", "Typee").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, ctx.Rollback())
}

func TestTransactionContext_RollbackDiscardsUncommitted(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx, err := NewTransactionContext(db.DB)
	require.NoError(t, err)

	require.NoError(t, ctx.Insert(&entities.Project{Name: "Committed", UUID: "u-1"}))
	require.NoError(t, ctx.Save())

	require.NoError(t, ctx.Insert(&entities.Project{Name: "Discarded", UUID: "u-2"}))
	require.NoError(t, ctx.Rollback())

	var count int64
	require.NoError(t, db.DB.Model(&entities.Project{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "earlier batch commits stay committed after rollback")

	var project entities.Project
	require.NoError(t, db.DB.First(&project).Error)
	assert.Equal(t, "Committed", project.Name)
}

func TestSettingsOnDatabase(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	require.NoError(t, db.SetSetting("k", "v1"))
	require.NoError(t, db.SetSetting("k", "v2"))

	setting, err := db.GetSetting("k")
	require.NoError(t, err)
	assert.Equal(t, "v2", setting.Value)

	require.NoError(t, db.DeleteSetting("k"))
	_, err = db.GetSetting("k")
	assert.Error(t, err)
}
