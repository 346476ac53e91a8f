// Package legacystore reads the predecessor application's (Quill) persisted
// store: a Core Data sqlite database. It is read-only from Inkwell's
// perspective and exposes a connect/fetch surface returning flattened
// snapshots.
package legacystore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mrlokans/inkwell/internal/richtext"
)

// Core Data timestamps are seconds since 2001-01-01 00:00:00 UTC.
var coreDataEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// Connection-class errors are always fatal to an import run.
var (
	ErrStoreNotFound    = errors.New("legacy store not found")
	ErrModelMissing     = errors.New("legacy store schema missing expected tables")
	ErrConnectionFailed = errors.New("legacy store connection failed")
	ErrFetchFailed      = errors.New("legacy store fetch failed")
)

// Tables the Quill schema must contain for the import to proceed.
var requiredTables = []string{
	"ZPROJECT",
	"ZTEXT",
	"ZVERSION",
	"ZCOLLECTION",
	"ZSCENE",
	"ZCHARACTER",
	"ZLOCATION",
}

// DefaultStorePath returns the platform-specific location Quill persisted
// its store to.
func DefaultStorePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(homeDir, "Library", "Application Support", "Quill", "Quill.sqlite"), nil
	}
	return filepath.Join(homeDir, ".local", "share", "quill", "quill.sqlite"), nil
}

// Discoverable reports whether a Quill store exists at path (or at the
// default location when path is empty).
func Discoverable(path string) bool {
	if path == "" {
		var err error
		path, err = DefaultStorePath()
		if err != nil {
			return false
		}
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Reader provides read access to a Quill store.
type Reader struct {
	path string
	db   *sql.DB
}

// NewReader creates a reader for the store at path. An empty path selects
// the platform default location.
func NewReader(path string) (*Reader, error) {
	if path == "" {
		var err error
		path, err = DefaultStorePath()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreNotFound, err)
		}
	}
	return &Reader{path: path}, nil
}

// Connect opens the store read-only and validates that the expected schema
// is present.
func (r *Reader) Connect(ctx context.Context) error {
	info, err := os.Stat(r.path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrStoreNotFound, r.path)
	}

	db, err := sql.Open("sqlite3", r.path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	for _, table := range requiredTables {
		var name string
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err == sql.ErrNoRows {
			db.Close()
			return fmt.Errorf("%w: %s", ErrModelMissing, table)
		}
		if err != nil {
			db.Close()
			return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
		}
	}

	r.db = db
	return nil
}

func (r *Reader) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// FetchProjects returns all top-level projects in store order.
func (r *Reader) FetchProjects(ctx context.Context) ([]LegacyProject, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT Z_PK, ZIDENTIFIER, ZNAME, ZTYPE, ZCREATED FROM ZPROJECT ORDER BY Z_PK")
	if err != nil {
		return nil, fmt.Errorf("%w: projects: %v", ErrFetchFailed, err)
	}
	defer rows.Close()

	var projects []LegacyProject
	for rows.Next() {
		var p LegacyProject
		var identifier, name, projectType sql.NullString
		var created sql.NullFloat64
		if err := rows.Scan(&p.PK, &identifier, &name, &projectType, &created); err != nil {
			return nil, fmt.Errorf("%w: projects: %v", ErrFetchFailed, err)
		}
		p.ID = identifier.String
		p.Name = name.String
		p.ProjectType = projectType.String
		p.CreatedOn = coreDataTime(created)
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: projects: %v", ErrFetchFailed, err)
	}
	return projects, nil
}

// FetchTexts returns the text files belonging to a project.
func (r *Reader) FetchTexts(ctx context.Context, project LegacyProject) ([]LegacyText, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT Z_PK, ZIDENTIFIER, ZNAME, ZGROUPNAME, ZCREATED FROM ZTEXT WHERE ZPROJECT = ? ORDER BY Z_PK",
		project.PK)
	if err != nil {
		return nil, fmt.Errorf("%w: texts for project %d: %v", ErrFetchFailed, project.PK, err)
	}
	defer rows.Close()

	var texts []LegacyText
	for rows.Next() {
		var t LegacyText
		var identifier, name, groupName sql.NullString
		var created sql.NullFloat64
		if err := rows.Scan(&t.PK, &identifier, &name, &groupName, &created); err != nil {
			return nil, fmt.Errorf("%w: texts for project %d: %v", ErrFetchFailed, project.PK, err)
		}
		t.ID = identifier.String
		t.Name = name.String
		t.GroupName = groupName.String
		t.CreatedOn = coreDataTime(created)
		texts = append(texts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: texts for project %d: %v", ErrFetchFailed, project.PK, err)
	}
	return texts, nil
}

// FetchVersions returns a text file's versions sorted ascending by date.
func (r *Reader) FetchVersions(ctx context.Context, text LegacyText) ([]LegacyVersion, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT Z_PK, ZIDENTIFIER, ZDATE, ZNUMBER, ZCOMMENT, ZBODY IS NOT NULL FROM ZVERSION WHERE ZTEXT = ? ORDER BY ZDATE ASC",
		text.PK)
	if err != nil {
		return nil, fmt.Errorf("%w: versions for text %d: %v", ErrFetchFailed, text.PK, err)
	}
	defer rows.Close()

	var versions []LegacyVersion
	for rows.Next() {
		var v LegacyVersion
		var identifier, comment sql.NullString
		var date sql.NullFloat64
		var number sql.NullInt64
		if err := rows.Scan(&v.PK, &identifier, &date, &number, &comment, &v.HasBody); err != nil {
			return nil, fmt.Errorf("%w: versions for text %d: %v", ErrFetchFailed, text.PK, err)
		}
		v.ID = identifier.String
		v.Date = coreDataTime(date)
		v.VersionNumber = int(number.Int64)
		v.Comment = comment.String
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: versions for text %d: %v", ErrFetchFailed, text.PK, err)
	}
	return versions, nil
}

// FetchBody loads and decodes a version's rich-text body. Returns (nil, nil)
// when the version has no body.
func (r *Reader) FetchBody(ctx context.Context, version LegacyVersion) (*richtext.Document, error) {
	var body []byte
	err := r.db.QueryRowContext(ctx,
		"SELECT ZBODY FROM ZVERSION WHERE Z_PK = ?", version.PK).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: body for version %d: %v", ErrFetchFailed, version.PK, err)
	}
	if body == nil {
		return nil, nil
	}

	var doc richtext.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: body for version %d: %v", ErrFetchFailed, version.PK, err)
	}
	return &doc, nil
}

// FetchCollections returns a project's collections.
func (r *Reader) FetchCollections(ctx context.Context, project LegacyProject) ([]LegacyCollection, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT Z_PK, ZIDENTIFIER, ZNAME, ZTYPE, ZCREATED FROM ZCOLLECTION WHERE ZPROJECT = ? ORDER BY Z_PK",
		project.PK)
	if err != nil {
		return nil, fmt.Errorf("%w: collections for project %d: %v", ErrFetchFailed, project.PK, err)
	}
	defer rows.Close()

	var collections []LegacyCollection
	for rows.Next() {
		var c LegacyCollection
		var identifier, name, collectionType sql.NullString
		var created sql.NullFloat64
		if err := rows.Scan(&c.PK, &identifier, &name, &collectionType, &created); err != nil {
			return nil, fmt.Errorf("%w: collections for project %d: %v", ErrFetchFailed, project.PK, err)
		}
		c.ID = identifier.String
		c.Name = name.String
		c.CollectionType = collectionType.String
		c.CreatedOn = coreDataTime(created)
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: collections for project %d: %v", ErrFetchFailed, project.PK, err)
	}
	return collections, nil
}

// FetchScenes returns a project's scenes.
func (r *Reader) FetchScenes(ctx context.Context, project LegacyProject) ([]LegacyScene, error) {
	records, err := r.fetchDescribed(ctx, "ZSCENE", project.PK)
	if err != nil {
		return nil, err
	}
	scenes := make([]LegacyScene, len(records))
	for i, rec := range records {
		scenes[i] = LegacyScene(rec)
	}
	return scenes, nil
}

// FetchCharacters returns a project's character sheets.
func (r *Reader) FetchCharacters(ctx context.Context, project LegacyProject) ([]LegacyCharacter, error) {
	records, err := r.fetchDescribed(ctx, "ZCHARACTER", project.PK)
	if err != nil {
		return nil, err
	}
	characters := make([]LegacyCharacter, len(records))
	for i, rec := range records {
		characters[i] = LegacyCharacter(rec)
	}
	return characters, nil
}

// FetchLocations returns a project's location sheets.
func (r *Reader) FetchLocations(ctx context.Context, project LegacyProject) ([]LegacyLocation, error) {
	records, err := r.fetchDescribed(ctx, "ZLOCATION", project.PK)
	if err != nil {
		return nil, err
	}
	locations := make([]LegacyLocation, len(records))
	for i, rec := range records {
		locations[i] = LegacyLocation(rec)
	}
	return locations, nil
}

// describedRecord is the shared row shape of scenes, characters and locations.
type describedRecord struct {
	PK          int64
	ID          string
	Name        string
	Description string
	CreatedOn   time.Time
}

func (r *Reader) fetchDescribed(ctx context.Context, table string, projectPK int64) ([]describedRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT Z_PK, ZIDENTIFIER, ZNAME, ZDESC, ZCREATED FROM %s WHERE ZPROJECT = ? ORDER BY Z_PK", table),
		projectPK)
	if err != nil {
		return nil, fmt.Errorf("%w: %s for project %d: %v", ErrFetchFailed, table, projectPK, err)
	}
	defer rows.Close()

	var records []describedRecord
	for rows.Next() {
		var rec describedRecord
		var identifier, name, description sql.NullString
		var created sql.NullFloat64
		if err := rows.Scan(&rec.PK, &identifier, &name, &description, &created); err != nil {
			return nil, fmt.Errorf("%w: %s for project %d: %v", ErrFetchFailed, table, projectPK, err)
		}
		rec.ID = identifier.String
		rec.Name = name.String
		rec.Description = description.String
		rec.CreatedOn = coreDataTime(created)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s for project %d: %v", ErrFetchFailed, table, projectPK, err)
	}
	return records, nil
}

func coreDataTime(seconds sql.NullFloat64) time.Time {
	if !seconds.Valid {
		return time.Time{}
	}
	return coreDataEpoch.Add(time.Duration(seconds.Float64 * float64(time.Second))).UTC()
}
