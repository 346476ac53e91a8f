package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/inkwell/internal/entities"
	"github.com/mrlokans/inkwell/internal/legacystore"
	"github.com/mrlokans/inkwell/internal/richtext"
)

type fakeStore struct {
	projects    []legacystore.LegacyProject
	texts       map[int64][]legacystore.LegacyText
	versions    map[int64][]legacystore.LegacyVersion
	bodies      map[int64]*richtext.Document
	bodyErrs    map[int64]error
	collections map[int64][]legacystore.LegacyCollection
	scenes      map[int64][]legacystore.LegacyScene
	characters  map[int64][]legacystore.LegacyCharacter
	locations   map[int64][]legacystore.LegacyLocation

	connectErr       error
	fetchProjectsErr error
	fetchTextsErr    map[int64]error
	closed           bool
}

func (s *fakeStore) Connect(ctx context.Context) error { return s.connectErr }

func (s *fakeStore) Close() error { s.closed = true; return nil }

func (s *fakeStore) FetchProjects(ctx context.Context) ([]legacystore.LegacyProject, error) {
	if s.fetchProjectsErr != nil {
		return nil, s.fetchProjectsErr
	}
	return s.projects, nil
}

func (s *fakeStore) FetchTexts(ctx context.Context, project legacystore.LegacyProject) ([]legacystore.LegacyText, error) {
	if err := s.fetchTextsErr[project.PK]; err != nil {
		return nil, err
	}
	return s.texts[project.PK], nil
}

func (s *fakeStore) FetchVersions(ctx context.Context, text legacystore.LegacyText) ([]legacystore.LegacyVersion, error) {
	return s.versions[text.PK], nil
}

func (s *fakeStore) FetchBody(ctx context.Context, version legacystore.LegacyVersion) (*richtext.Document, error) {
	if err := s.bodyErrs[version.PK]; err != nil {
		return nil, err
	}
	return s.bodies[version.PK], nil
}

func (s *fakeStore) FetchCollections(ctx context.Context, project legacystore.LegacyProject) ([]legacystore.LegacyCollection, error) {
	return s.collections[project.PK], nil
}

func (s *fakeStore) FetchScenes(ctx context.Context, project legacystore.LegacyProject) ([]legacystore.LegacyScene, error) {
	return s.scenes[project.PK], nil
}

func (s *fakeStore) FetchCharacters(ctx context.Context, project legacystore.LegacyProject) ([]legacystore.LegacyCharacter, error) {
	return s.characters[project.PK], nil
}

func (s *fakeStore) FetchLocations(ctx context.Context, project legacystore.LegacyProject) ([]legacystore.LegacyLocation, error) {
	return s.locations[project.PK], nil
}

type fakeTarget struct {
	inserted  []any
	existing  map[string]bool
	saves     int
	rollbacks int
	saveErr   error
}

func (t *fakeTarget) Insert(entity any) error {
	t.inserted = append(t.inserted, entity)
	return nil
}

func (t *fakeTarget) ProjectExists(name string) (bool, error) {
	if t.existing[name] {
		return true, nil
	}
	for _, e := range t.inserted {
		if p, ok := e.(*entities.Project); ok && p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeTarget) Save() error {
	if t.saveErr != nil {
		return t.saveErr
	}
	t.saves++
	return nil
}

func (t *fakeTarget) Rollback() error {
	t.rollbacks++
	return nil
}

func (t *fakeTarget) projectsInserted() []*entities.Project {
	var projects []*entities.Project
	for _, e := range t.inserted {
		if p, ok := e.(*entities.Project); ok {
			projects = append(projects, p)
		}
	}
	return projects
}

func (t *fakeTarget) textFilesInserted() []*entities.TextFile {
	var files []*entities.TextFile
	for _, e := range t.inserted {
		if f, ok := e.(*entities.TextFile); ok {
			files = append(files, f)
		}
	}
	return files
}

func (t *fakeTarget) versionsInserted() []*entities.Version {
	var versions []*entities.Version
	for _, e := range t.inserted {
		if v, ok := e.(*entities.Version); ok {
			versions = append(versions, v)
		}
	}
	return versions
}

const (
	projectUUID = "6e08ec70-6b5a-4d8c-b7de-5b865ba3c7c1"
	textUUID    = "8f0a3f44-0c2e-4a7b-9c52-0dd6f77016b2"
	versionUUID = "a0e9c1de-33f5-4d42-a6be-61a64dd9c001"
)

func newEmptyStore() *fakeStore {
	return &fakeStore{
		texts:       map[int64][]legacystore.LegacyText{},
		versions:    map[int64][]legacystore.LegacyVersion{},
		bodies:      map[int64]*richtext.Document{},
		bodyErrs:    map[int64]error{},
		collections: map[int64][]legacystore.LegacyCollection{},
		scenes:      map[int64][]legacystore.LegacyScene{},
		characters:  map[int64][]legacystore.LegacyCharacter{},
		locations:   map[int64][]legacystore.LegacyLocation{},
	}
}

func TestRun_ZeroProjectsIsSuccess(t *testing.T) {
	store := newEmptyStore()
	target := &fakeTarget{}
	orchestrator := NewOrchestrator(store, target, 5)

	require.NoError(t, orchestrator.Run(context.Background()))

	snapshot := orchestrator.Progress().Snapshot()
	assert.Equal(t, PhaseCompleted, snapshot.Phase)
	assert.True(t, snapshot.Completed)
	assert.Empty(t, orchestrator.Diagnostics().Errors())
	assert.Equal(t, 1, target.saves, "final commit still runs on an empty store")
	assert.True(t, store.closed)
}

func TestRun_ConnectFailureIsFatal(t *testing.T) {
	store := newEmptyStore()
	store.connectErr = legacystore.ErrStoreNotFound
	target := &fakeTarget{}
	orchestrator := NewOrchestrator(store, target, 5)

	err := orchestrator.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, legacystore.ErrStoreNotFound)
	assert.True(t, orchestrator.Progress().Snapshot().Failed)
	assert.Empty(t, target.inserted, "no partial progress before connect succeeds")
	assert.Zero(t, target.saves)
}

func TestRun_SingleProjectFullImport(t *testing.T) {
	store := newEmptyStore()
	store.projects = []legacystore.LegacyProject{
		{PK: 1, ID: projectUUID, Name: "Omoo<>2021-03-01T10:00:00", ProjectType: "novel", CreatedOn: time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)},
	}
	store.texts[1] = []legacystore.LegacyText{
		{PK: 10, ID: textUUID, Name: "Chapter 1", GroupName: "Draft"},
	}
	store.versions[10] = []legacystore.LegacyVersion{
		{PK: 100, ID: versionUUID, Date: time.Date(2021, 3, 2, 0, 0, 0, 0, time.UTC), HasBody: true},
	}
	store.bodies[100] = &richtext.Document{Text: "It was the middle of a bright tropical afternoon."}
	target := &fakeTarget{}
	orchestrator := NewOrchestrator(store, target, 5)

	require.NoError(t, orchestrator.Run(context.Background()))

	projects := target.projectsInserted()
	require.Len(t, projects, 1)
	assert.Equal(t, "Omoo", projects[0].Name, "timestamp suffix stripped from name")
	assert.Equal(t, entities.ProjectTypeNovel, projects[0].Type)
	assert.Equal(t, entities.ProjectStatusPendingReview, projects[0].Status)
	assert.Equal(t, projectUUID, projects[0].UUID)

	var folders []string
	for _, e := range target.inserted {
		if f, ok := e.(*entities.Folder); ok {
			folders = append(folders, f.Name)
		}
	}
	assert.ElementsMatch(t, entities.StandardFolderNames, folders)

	files := target.textFilesInserted()
	require.Len(t, files, 1)
	assert.Equal(t, "Chapter 1", files[0].Name)

	versions := target.versionsInserted()
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].VersionNumber)
	assert.Equal(t, "It was the middle of a bright tropical afternoon.", versions[0].Content)

	assert.Empty(t, orchestrator.Diagnostics().Errors())
	assert.Empty(t, orchestrator.Diagnostics().Warnings())
}

func TestRun_IdempotencySkipsExistingProjects(t *testing.T) {
	store := newEmptyStore()
	store.projects = []legacystore.LegacyProject{
		{PK: 1, ID: projectUUID, Name: "Typee", ProjectType: "novel"},
	}
	target := &fakeTarget{existing: map[string]bool{"Typee": true}}
	orchestrator := NewOrchestrator(store, target, 5)

	require.NoError(t, orchestrator.Run(context.Background()))

	assert.Empty(t, target.projectsInserted(), "existing project skipped")
	assert.Empty(t, orchestrator.Diagnostics().Errors())
	assert.Empty(t, orchestrator.Diagnostics().Warnings(), "skip is silent")
	assert.True(t, orchestrator.Progress().Snapshot().Completed)
}

func TestRun_BatchCommitsEveryFiveProjects(t *testing.T) {
	store := newEmptyStore()
	for i := 1; i <= 12; i++ {
		store.projects = append(store.projects, legacystore.LegacyProject{
			PK:          int64(i),
			ID:          fmt.Sprintf("b28d1c52-9f37-4cb3-8f4a-%012d", i),
			Name:        fmt.Sprintf("Project %02d", i),
			ProjectType: "blank",
		})
	}
	target := &fakeTarget{}
	orchestrator := NewOrchestrator(store, target, 5)

	require.NoError(t, orchestrator.Run(context.Background()))

	assert.Equal(t, 3, target.saves, "two full batches plus the final commit")
	assert.Len(t, target.projectsInserted(), 12)
	assert.Empty(t, orchestrator.projectsByLegacyPK, "identity caches cleared at commit boundaries")
	assert.Empty(t, orchestrator.textFilesByLegacyPK)

	snapshot := orchestrator.Progress().Snapshot()
	assert.Equal(t, 12, snapshot.ProcessedItems)
	assert.Equal(t, 12, snapshot.TotalItems)
}

// A project with three texts where the middle text's body is unreadable
// still imports fully: the bad version degrades to the placeholder with a
// single warning and the run stays successful.
func TestRun_CorruptBodyDegradesToPlaceholder(t *testing.T) {
	store := newEmptyStore()
	store.projects = []legacystore.LegacyProject{
		{PK: 1, ID: projectUUID, Name: "Mardi", ProjectType: "novel"},
	}
	for i := int64(1); i <= 3; i++ {
		store.texts[1] = append(store.texts[1], legacystore.LegacyText{
			PK:        10 + i,
			ID:        fmt.Sprintf("c4fe9a1e-22f3-47f9-9a10-%012d", i),
			Name:      fmt.Sprintf("Text %d", i),
			GroupName: "draft",
		})
		store.versions[10+i] = []legacystore.LegacyVersion{
			{PK: 100 + i, ID: fmt.Sprintf("d91be7fa-7f61-4f59-8c4e-%012d", i), HasBody: true},
		}
		store.bodies[100+i] = &richtext.Document{Text: fmt.Sprintf("body %d", i)}
	}
	store.bodyErrs[102] = legacystore.ErrFetchFailed

	target := &fakeTarget{}
	orchestrator := NewOrchestrator(store, target, 5)

	require.NoError(t, orchestrator.Run(context.Background()))

	require.Len(t, target.projectsInserted(), 1)
	require.Len(t, target.textFilesInserted(), 3)

	versions := target.versionsInserted()
	require.Len(t, versions, 3)
	assert.Equal(t, "body 1", versions[0].Content)
	assert.Equal(t, ContentPlaceholder, versions[1].Content)
	assert.Equal(t, "body 3", versions[2].Content)

	assert.Len(t, orchestrator.Diagnostics().Warnings(), 1)
	assert.Empty(t, orchestrator.Diagnostics().Errors())
	assert.False(t, orchestrator.Diagnostics().Fatal())
	assert.True(t, orchestrator.Progress().Snapshot().Completed)
}

func TestRun_VersionNumbersFollowDateOrder(t *testing.T) {
	store := newEmptyStore()
	store.projects = []legacystore.LegacyProject{
		{PK: 1, ID: projectUUID, Name: "Redburn", ProjectType: "novel"},
	}
	store.texts[1] = []legacystore.LegacyText{
		{PK: 10, ID: textUUID, Name: "Draft", GroupName: "draft"},
	}
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	// The store returns versions ascending by date; numbering follows
	// that order regardless of any legacy version counter.
	store.versions[10] = []legacystore.LegacyVersion{
		{PK: 101, ID: "e7c1a4b2-0001-4f59-8c4e-000000000001", Date: base, VersionNumber: 7},
		{PK: 102, ID: "e7c1a4b2-0002-4f59-8c4e-000000000002", Date: base.Add(time.Hour), VersionNumber: 2},
		{PK: 103, ID: "e7c1a4b2-0003-4f59-8c4e-000000000003", Date: base.Add(2 * time.Hour), VersionNumber: 11},
	}
	target := &fakeTarget{}
	orchestrator := NewOrchestrator(store, target, 5)

	require.NoError(t, orchestrator.Run(context.Background()))

	versions := target.versionsInserted()
	require.Len(t, versions, 3)
	for i, v := range versions {
		assert.Equal(t, i+1, v.VersionNumber)
	}
}

func TestRun_FetchTextsFailureSkipsProjectAndContinues(t *testing.T) {
	store := newEmptyStore()
	store.projects = []legacystore.LegacyProject{
		{PK: 1, ID: projectUUID, Name: "Broken", ProjectType: "novel"},
		{PK: 2, ID: "f2a7c9d1-58e3-4b02-97d4-2f1c3e5a7b90", Name: "Fine", ProjectType: "novel"},
	}
	store.fetchTextsErr = map[int64]error{1: legacystore.ErrFetchFailed}
	target := &fakeTarget{}
	orchestrator := NewOrchestrator(store, target, 5)

	require.NoError(t, orchestrator.Run(context.Background()), "per-project failures do not fail the run")

	require.Len(t, orchestrator.Diagnostics().Errors(), 1)
	assert.Contains(t, orchestrator.Diagnostics().Errors()[0], "Broken")
	assert.True(t, orchestrator.Diagnostics().Fatal())
	assert.Len(t, target.projectsInserted(), 2, "the failing project row itself was created before the fetch")
	assert.True(t, orchestrator.Progress().Snapshot().Completed)
}

func TestRun_FinalCommitFailureRollsBack(t *testing.T) {
	store := newEmptyStore()
	store.projects = []legacystore.LegacyProject{
		{PK: 1, ID: projectUUID, Name: "Pierre", ProjectType: "novel"},
	}
	target := &fakeTarget{saveErr: errors.New("disk full")}
	orchestrator := NewOrchestrator(store, target, 5)

	err := orchestrator.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "final commit")

	assert.Equal(t, 1, target.rollbacks, "rollback invoked exactly once")
	assert.True(t, orchestrator.Progress().Snapshot().Failed)
	require.NotEmpty(t, orchestrator.Diagnostics().Errors())
}

func TestRun_CollectionsBecomeSubmissions(t *testing.T) {
	store := newEmptyStore()
	store.projects = []legacystore.LegacyProject{
		{PK: 1, ID: projectUUID, Name: "White-Jacket", ProjectType: "novel"},
	}
	store.collections[1] = []legacystore.LegacyCollection{
		{PK: 50, ID: "b1ffdc99-4ab3-47b1-a2a4-93b0a94c1d11", Name: "Early poems", CollectionType: "personal"},
	}
	target := &fakeTarget{}
	orchestrator := NewOrchestrator(store, target, 5)

	require.NoError(t, orchestrator.Run(context.Background()))

	var submissions []*entities.Submission
	for _, e := range target.inserted {
		if s, ok := e.(*entities.Submission); ok {
			submissions = append(submissions, s)
		}
	}
	require.Len(t, submissions, 1)
	assert.True(t, submissions[0].IsCollection)
	assert.Nil(t, submissions[0].Publication)

	warnings := orchestrator.Diagnostics().Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "membership links")
}

func TestRun_StoryRecordsLandInTaxonomyFolders(t *testing.T) {
	store := newEmptyStore()
	store.projects = []legacystore.LegacyProject{
		{PK: 1, ID: projectUUID, Name: "Clarel", ProjectType: "poetry"},
	}
	store.scenes[1] = []legacystore.LegacyScene{
		{PK: 60, ID: "aa1bdc99-4ab3-47b1-a2a4-93b0a94c1d22", Name: "Opening", Description: "In the dim cell."},
	}
	store.characters[1] = []legacystore.LegacyCharacter{
		{PK: 61, ID: "aa2bdc99-4ab3-47b1-a2a4-93b0a94c1d33", Name: "Rolfe", Description: "A wanderer."},
	}
	store.locations[1] = []legacystore.LegacyLocation{
		{PK: 62, ID: "aa3bdc99-4ab3-47b1-a2a4-93b0a94c1d44", Name: "Jerusalem"},
	}
	target := &fakeTarget{}
	orchestrator := NewOrchestrator(store, target, 5)

	require.NoError(t, orchestrator.Run(context.Background()))

	files := target.textFilesInserted()
	require.Len(t, files, 3)
	for _, f := range files {
		require.Len(t, f.Versions, 1, "story records carry a synthesized initial version")
		assert.Equal(t, 1, f.Versions[0].VersionNumber)
	}
	assert.Equal(t, "In the dim cell.", files[0].Versions[0].Content)
	assert.Equal(t, "A wanderer.", files[1].Versions[0].Content)
	assert.Equal(t, "", files[2].Versions[0].Content, "missing description synthesizes an empty version")
}
