package entities

import (
	"time"

	"gorm.io/gorm"
)

type ProjectType string

const (
	ProjectTypeNovel      ProjectType = "novel"
	ProjectTypePoetry     ProjectType = "poetry"
	ProjectTypeScript     ProjectType = "script"
	ProjectTypeShortStory ProjectType = "short_story"
	ProjectTypeBlank      ProjectType = "blank"
)

type ProjectStatus string

const (
	ProjectStatusActive ProjectStatus = "active"
	// ProjectStatusPendingReview marks projects created by the legacy import.
	// The UI flags them as imported-but-unverified until the user reviews them.
	ProjectStatusPendingReview ProjectStatus = "pending_review"
	ProjectStatusArchived      ProjectStatus = "archived"
)

// Standard folder taxonomy created under every project.
const (
	FolderDraft       = "Draft"
	FolderReady       = "Ready"
	FolderSetAside    = "Set Aside"
	FolderPublished   = "Published"
	FolderResearch    = "Research"
	FolderCollections = "Collections"
	FolderSubmissions = "Submissions"
	FolderTrash       = "Trash"
)

// StandardFolderNames lists the taxonomy in display order.
var StandardFolderNames = []string{
	FolderDraft,
	FolderReady,
	FolderSetAside,
	FolderPublished,
	FolderResearch,
	FolderCollections,
	FolderSubmissions,
	FolderTrash,
}

type Project struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UUID         string         `gorm:"uniqueIndex;size:36" json:"uuid"`
	Name         string         `gorm:"index;size:512" json:"name"`
	Type         ProjectType    `gorm:"size:20;default:'blank'" json:"type"`
	Status       ProjectStatus  `gorm:"size:20;default:'active'" json:"status"`
	CreationDate time.Time      `json:"creation_date"`
	ModifiedDate time.Time      `json:"modified_date"`
	Folders      []Folder       `gorm:"foreignKey:ProjectID" json:"folders,omitempty"`
	Submissions  []Submission   `gorm:"foreignKey:ProjectID" json:"submissions,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type Folder struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UUID           string     `gorm:"uniqueIndex;size:36" json:"uuid"`
	Name           string     `gorm:"index;size:256" json:"name"`
	ProjectID      uint       `gorm:"index" json:"project_id"`
	ParentFolderID *uint      `gorm:"index" json:"parent_folder_id,omitempty"`
	Project        Project    `gorm:"foreignKey:ProjectID" json:"-"`
	TextFiles      []TextFile `gorm:"foreignKey:FolderID" json:"text_files,omitempty"`
	Folders        []Folder   `gorm:"foreignKey:ParentFolderID" json:"folders,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type TextFile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         string    `gorm:"uniqueIndex;size:36" json:"uuid"`
	Name         string    `gorm:"index;size:512" json:"name"`
	CreatedDate  time.Time `json:"created_date"`
	ModifiedDate time.Time `json:"modified_date"`
	FolderID     uint      `gorm:"index" json:"folder_id"`
	Folder       Folder    `gorm:"foreignKey:FolderID" json:"-"`
	Versions     []Version `gorm:"foreignKey:TextFileID" json:"versions,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Version is an append-only history entry for a text file. VersionNumber is a
// 1-based sequence assigned by ascending creation date at import time.
type Version struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UUID             string    `gorm:"uniqueIndex;size:36" json:"uuid"`
	CreatedDate      time.Time `json:"created_date"`
	VersionNumber    int       `json:"version_number"`
	Comment          string    `gorm:"type:text" json:"comment,omitempty"`
	Content          string    `gorm:"type:text" json:"content"`
	FormattedContent []byte    `gorm:"type:blob" json:"-"`
	TextFileID       uint      `gorm:"index" json:"text_file_id"`
	TextFile         TextFile  `gorm:"foreignKey:TextFileID" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Submission records either a publication submission or, when Publication is
// nil, a personal collection. IsCollection must always equal (Publication == nil).
type Submission struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UUID          string    `gorm:"uniqueIndex;size:36" json:"uuid"`
	Name          string    `gorm:"index;size:512" json:"name"`
	SubmittedDate time.Time `json:"submitted_date"`
	Notes         string    `gorm:"type:text" json:"notes,omitempty"`
	ProjectID     uint      `gorm:"index" json:"project_id"`
	Project       Project   `gorm:"foreignKey:ProjectID" json:"-"`
	Publication   *string   `gorm:"size:512" json:"publication,omitempty"`
	IsCollection  bool      `gorm:"default:false" json:"is_collection"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
