package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/inkwell/internal/database/projects"
	"github.com/mrlokans/inkwell/internal/entities"
)

// ProjectsController serves the project tree: projects, their folder
// taxonomy, and text file version history.
type ProjectsController struct {
	repo *projects.Repository
}

func NewProjectsController(repo *projects.Repository) *ProjectsController {
	return &ProjectsController{repo: repo}
}

// GetAllProjects returns all projects, optionally filtered by status
// (?status=pending_review lists the imported-but-unverified ones).
func (ctrl *ProjectsController) GetAllProjects(c *gin.Context) {
	var (
		list []entities.Project
		err  error
	)
	if status := c.Query("status"); status != "" {
		list, err = ctrl.repo.GetProjectsByStatus(entities.ProjectStatus(status))
	} else {
		list, err = ctrl.repo.GetAllProjects()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"projects": list, "count": len(list)})
}

// GetProject returns one project by numeric ID.
func (ctrl *ProjectsController) GetProject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	folders, err := ctrl.repo.GetFolderTree(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	count, err := ctrl.repo.CountTextFiles(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"folders": folders, "text_file_count": count})
}

// GetVersions returns a text file's version history, oldest first.
func (ctrl *ProjectsController) GetVersions(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid text file id"})
		return
	}

	versions, err := ctrl.repo.GetVersions(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "text file not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"versions": versions, "count": len(versions)})
}

// GetStats returns project counts for the dashboard.
func (ctrl *ProjectsController) GetStats(c *gin.Context) {
	total, err := ctrl.repo.CountProjects()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	pending, err := ctrl.repo.GetProjectsByStatus(entities.ProjectStatusPendingReview)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{
		"total_projects": total,
		"pending_review": len(pending),
	})
}
