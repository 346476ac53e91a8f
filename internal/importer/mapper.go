package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/inkwell/internal/entities"
	"github.com/mrlokans/inkwell/internal/legacystore"
	"github.com/mrlokans/inkwell/internal/richtext"
)

// ContentPlaceholder is stored as a version's content when the legacy body
// exists but cannot be read, so the version row stays structurally valid.
const ContentPlaceholder = "[imported content unavailable]"

// nameSuffixDelimiter separates a legacy project name from the creation
// timestamp string the old app appended to it.
const nameSuffixDelimiter = "<>"

// ErrMissingFolder is returned when a text artifact cannot be mapped because
// its destination folder was not resolved.
var ErrMissingFolder = errors.New("destination folder missing")

var projectTypeTable = map[string]entities.ProjectType{
	"novel":      entities.ProjectTypeNovel,
	"poetry":     entities.ProjectTypePoetry,
	"script":     entities.ProjectTypeScript,
	"shortstory": entities.ProjectTypeShortStory,
	"blank":      entities.ProjectTypeBlank,
}

var folderNameTable = map[string]string{
	"draft":       entities.FolderDraft,
	"ready":       entities.FolderReady,
	"set aside":   entities.FolderSetAside,
	"accepted":    entities.FolderPublished,
	"published":   entities.FolderPublished,
	"collection":  entities.FolderCollections,
	"collections": entities.FolderCollections,
	"submissions": entities.FolderSubmissions,
	"submitted":   entities.FolderSubmissions,
	"research":    entities.FolderResearch,
	"trash":       entities.FolderTrash,
}

// MapLegacyFolderName maps a legacy free-text group label to the standard
// folder taxonomy. Unrecognized or empty input defaults to Draft: mis-filing
// an item into Draft is safer than dropping it.
func MapLegacyFolderName(raw string) string {
	name, _ := folderNameFor(raw)
	return name
}

func folderNameFor(raw string) (string, bool) {
	name, ok := folderNameTable[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return entities.FolderDraft, false
	}
	return name, true
}

// Mapper builds new-model entities from legacy snapshots. Content-level
// anomalies (unparseable identifier, unknown type token, unreadable body)
// are absorbed into warnings and safe defaults; only a missing required
// relationship yields an error.
type Mapper struct {
	diagnostics *Diagnostics
}

func NewMapper(diagnostics *Diagnostics) *Mapper {
	return &Mapper{diagnostics: diagnostics}
}

// identifier carries over a legacy stable identifier when it parses, and
// mints a fresh one otherwise. Minting is warned about: the entity survives,
// but loses its cross-store identity.
func (m *Mapper) identifier(raw, context string) string {
	if parsed, err := uuid.Parse(raw); err == nil {
		return parsed.String()
	}
	minted := uuid.NewString()
	if raw != "" {
		m.diagnostics.Warnf("%s: unparseable identifier %q, minted %s", context, raw, minted)
	} else {
		m.diagnostics.Warnf("%s: no identifier in legacy record, minted %s", context, minted)
	}
	return minted
}

// MapProject maps a legacy project, stripping the timestamp suffix the old
// app appended to names. Never fails: unknown type tokens default to blank.
func (m *Mapper) MapProject(legacy legacystore.LegacyProject) *entities.Project {
	name := ProjectName(legacy.Name)

	projectType, ok := projectTypeTable[strings.ToLower(strings.TrimSpace(legacy.ProjectType))]
	if !ok {
		projectType = entities.ProjectTypeBlank
		if strings.TrimSpace(legacy.ProjectType) != "" {
			m.diagnostics.Warnf("project %q: unknown type token %q, defaulting to blank", name, legacy.ProjectType)
		}
	}

	return &entities.Project{
		UUID:         m.identifier(legacy.ID, fmt.Sprintf("project %q", name)),
		Name:         name,
		Type:         projectType,
		Status:       entities.ProjectStatusPendingReview,
		CreationDate: legacy.CreatedOn,
		ModifiedDate: legacy.CreatedOn,
	}
}

// ProjectName strips the "<name><>timestamp" suffix from a legacy project
// name, splitting on the first occurrence of the delimiter.
func ProjectName(raw string) string {
	name, _, _ := strings.Cut(raw, nameSuffixDelimiter)
	return strings.TrimSpace(name)
}

// MapTextFile maps a legacy text into the given destination folder.
func (m *Mapper) MapTextFile(legacy legacystore.LegacyText, folder *entities.Folder) (*entities.TextFile, error) {
	if folder == nil {
		return nil, fmt.Errorf("text %q: %w", legacy.Name, ErrMissingFolder)
	}
	return &entities.TextFile{
		UUID:         m.identifier(legacy.ID, fmt.Sprintf("text %q", legacy.Name)),
		Name:         legacy.Name,
		CreatedDate:  legacy.CreatedOn,
		ModifiedDate: legacy.CreatedOn,
		FolderID:     folder.ID,
	}, nil
}

// MapVersion maps one history entry of a text file. The body is the already
// fetched rich document, or nil when the fetch failed or the legacy record
// carries none. A referenced-but-unreadable body degrades to the sentinel
// placeholder with a warning; this never fails.
func (m *Mapper) MapVersion(legacy legacystore.LegacyVersion, file *entities.TextFile, versionNumber int, body *richtext.Document) *entities.Version {
	version := &entities.Version{
		UUID:          m.identifier(legacy.ID, fmt.Sprintf("version %d of %q", versionNumber, file.Name)),
		CreatedDate:   legacy.Date,
		VersionNumber: versionNumber,
		Comment:       legacy.Comment,
		TextFileID:    file.ID,
	}

	switch {
	case body != nil:
		plain, formatted := richtext.Convert(*body, true)
		if formatted == nil && body.HasFormatting() {
			m.diagnostics.Warnf("version %d of %q: formatting could not be preserved, stored plain text only", versionNumber, file.Name)
		}
		version.Content = plain
		version.FormattedContent = formatted
	case legacy.HasBody:
		version.Content = ContentPlaceholder
		m.diagnostics.Warnf("version %d of %q: body missing or unreadable, substituted placeholder", versionNumber, file.Name)
	}
	return version
}

// MapCollection maps a legacy collection onto a Submission with a nil
// publication, the new model's representation of a personal collection.
func (m *Mapper) MapCollection(legacy legacystore.LegacyCollection, project *entities.Project) *entities.Submission {
	return &entities.Submission{
		UUID:          m.identifier(legacy.ID, fmt.Sprintf("collection %q", legacy.Name)),
		Name:          legacy.Name,
		SubmittedDate: legacy.CreatedOn,
		ProjectID:     project.ID,
		Publication:   nil,
		IsCollection:  true,
	}
}

// MapScene maps a legacy scene into a text file under the given folder,
// synthesizing an initial version from the scene description.
func (m *Mapper) MapScene(legacy legacystore.LegacyScene, folder *entities.Folder) (*entities.TextFile, error) {
	return m.mapDescribed("scene", legacy.ID, legacy.Name, legacy.Description, legacy.CreatedOn, folder)
}

// MapCharacter maps a legacy character sheet into a text file under the
// given folder.
func (m *Mapper) MapCharacter(legacy legacystore.LegacyCharacter, folder *entities.Folder) (*entities.TextFile, error) {
	return m.mapDescribed("character", legacy.ID, legacy.Name, legacy.Description, legacy.CreatedOn, folder)
}

// MapLocation maps a legacy location sheet into a text file under the given
// folder.
func (m *Mapper) MapLocation(legacy legacystore.LegacyLocation, folder *entities.Folder) (*entities.TextFile, error) {
	return m.mapDescribed("location", legacy.ID, legacy.Name, legacy.Description, legacy.CreatedOn, folder)
}

// mapDescribed builds a text file with a single synthesized version holding
// the legacy description, or an empty version when the description is blank,
// so every mapped text artifact has a current version.
func (m *Mapper) mapDescribed(kind, id, name, description string, createdOn time.Time, folder *entities.Folder) (*entities.TextFile, error) {
	if folder == nil {
		return nil, fmt.Errorf("%s %q: %w", kind, name, ErrMissingFolder)
	}
	file := &entities.TextFile{
		UUID:         m.identifier(id, fmt.Sprintf("%s %q", kind, name)),
		Name:         name,
		CreatedDate:  createdOn,
		ModifiedDate: createdOn,
		FolderID:     folder.ID,
	}
	file.Versions = []entities.Version{{
		UUID:          uuid.NewString(),
		CreatedDate:   createdOn,
		VersionNumber: 1,
		Content:       description,
	}}
	return file, nil
}
