package projects

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/inkwell/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	dbPath := "./test_projects_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Project{},
		&entities.Folder{},
		&entities.TextFile{},
		&entities.Version{},
		&entities.Submission{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, db, cleanup
}

func createProject(t *testing.T, db *gorm.DB, name string, status entities.ProjectStatus) *entities.Project {
	t.Helper()

	project := &entities.Project{Name: name, Type: entities.ProjectTypeBlank, Status: status, UUID: "uuid-" + name}
	require.NoError(t, db.Create(project).Error)
	return project
}

func TestRepository_ProjectExistsByName(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	createProject(t, db, "Moby-Dick", entities.ProjectStatusActive)

	exists, err := repo.ProjectExistsByName("Moby-Dick")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ProjectExistsByName("Pierre")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_GetProjectsByStatus(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	createProject(t, db, "Old", entities.ProjectStatusPendingReview)
	createProject(t, db, "New", entities.ProjectStatusActive)

	pending, err := repo.GetProjectsByStatus(entities.ProjectStatusPendingReview)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Old", pending[0].Name)
}

func TestRepository_GetFolderByName(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	project := createProject(t, db, "P", entities.ProjectStatusActive)
	require.NoError(t, db.Create(&entities.Folder{Name: entities.FolderDraft, ProjectID: project.ID, UUID: "f-1"}).Error)

	folder, err := repo.GetFolderByName(project.ID, entities.FolderDraft)
	require.NoError(t, err)
	assert.Equal(t, entities.FolderDraft, folder.Name)

	_, err = repo.GetFolderByName(project.ID, entities.FolderTrash)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_GetVersionsOrdered(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	project := createProject(t, db, "P", entities.ProjectStatusActive)
	folder := &entities.Folder{Name: entities.FolderDraft, ProjectID: project.ID, UUID: "f-1"}
	require.NoError(t, db.Create(folder).Error)
	file := &entities.TextFile{Name: "Chapter 1", FolderID: folder.ID, UUID: "t-1"}
	require.NoError(t, db.Create(file).Error)

	for _, n := range []int{3, 1, 2} {
		require.NoError(t, db.Create(&entities.Version{
			TextFileID:    file.ID,
			VersionNumber: n,
			Content:       "v",
			UUID:          "v-" + string(rune('0'+n)),
		}).Error)
	}

	versions, err := repo.GetVersions(file.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, 1, versions[0].VersionNumber)
	assert.Equal(t, 2, versions[1].VersionNumber)
	assert.Equal(t, 3, versions[2].VersionNumber)
}

func TestRepository_CountTextFiles(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	project := createProject(t, db, "P", entities.ProjectStatusActive)
	other := createProject(t, db, "Q", entities.ProjectStatusActive)

	folder := &entities.Folder{Name: entities.FolderDraft, ProjectID: project.ID, UUID: "f-1"}
	require.NoError(t, db.Create(folder).Error)
	otherFolder := &entities.Folder{Name: entities.FolderDraft, ProjectID: other.ID, UUID: "f-2"}
	require.NoError(t, db.Create(otherFolder).Error)

	require.NoError(t, db.Create(&entities.TextFile{Name: "a", FolderID: folder.ID, UUID: "t-a"}).Error)
	require.NoError(t, db.Create(&entities.TextFile{Name: "b", FolderID: folder.ID, UUID: "t-b"}).Error)
	require.NoError(t, db.Create(&entities.TextFile{Name: "c", FolderID: otherFolder.ID, UUID: "t-c"}).Error)

	count, err := repo.CountTextFiles(project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
