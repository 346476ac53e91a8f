// Package projects provides database operations for projects and their
// folder trees.
package projects

import (
	"gorm.io/gorm"

	"github.com/mrlokans/inkwell/internal/entities"
)

// Repository handles all project database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new projects repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetAllProjects returns all projects ordered by name.
func (r *Repository) GetAllProjects() ([]entities.Project, error) {
	var projects []entities.Project
	err := r.db.Order("name ASC").Find(&projects).Error
	return projects, err
}

// GetProjectByName returns a project by its exact name.
func (r *Repository) GetProjectByName(name string) (*entities.Project, error) {
	var project entities.Project
	err := r.db.Where("name = ?", name).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProjectByUUID returns a project by its stable identifier.
func (r *Repository) GetProjectByUUID(uuid string) (*entities.Project, error) {
	var project entities.Project
	err := r.db.Where("uuid = ?", uuid).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ProjectExistsByName reports whether a project with the name exists.
func (r *Repository) ProjectExistsByName(name string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Project{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

// GetProjectsByStatus returns projects in the given status, e.g. the
// imported-pending-review ones.
func (r *Repository) GetProjectsByStatus(status entities.ProjectStatus) ([]entities.Project, error) {
	var projects []entities.Project
	err := r.db.Where("status = ?", status).Order("name ASC").Find(&projects).Error
	return projects, err
}

// GetFolderByName returns the named folder directly under a project.
func (r *Repository) GetFolderByName(projectID uint, name string) (*entities.Folder, error) {
	var folder entities.Folder
	err := r.db.Where("project_id = ? AND name = ? AND parent_folder_id IS NULL", projectID, name).
		First(&folder).Error
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// GetFolderTree returns a project's top-level folders with text files and
// subfolders preloaded.
func (r *Repository) GetFolderTree(projectID uint) ([]entities.Folder, error) {
	var folders []entities.Folder
	err := r.db.Where("project_id = ? AND parent_folder_id IS NULL", projectID).
		Preload("TextFiles").
		Preload("Folders").
		Order("id ASC").
		Find(&folders).Error
	return folders, err
}

// GetVersions returns a text file's versions ordered by version number.
func (r *Repository) GetVersions(textFileID uint) ([]entities.Version, error) {
	var versions []entities.Version
	err := r.db.Where("text_file_id = ?", textFileID).
		Order("version_number ASC").
		Find(&versions).Error
	return versions, err
}

// CountProjects returns the total number of projects.
func (r *Repository) CountProjects() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Project{}).Count(&count).Error
	return count, err
}

// CountTextFiles returns the number of text files under a project.
func (r *Repository) CountTextFiles(projectID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.TextFile{}).
		Joins("JOIN folders ON folders.id = text_files.folder_id").
		Where("folders.project_id = ?", projectID).
		Count(&count).Error
	return count, err
}
