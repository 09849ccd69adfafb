package session

import (
	"context"
	"testing"

	"github.com/lychee-technology/notionmap"
	"github.com/lychee-technology/notionmap/model"
	"github.com/lychee-technology/notionmap/objapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectsSchema() *model.PageSchema {
	return model.MustPageSchema("Projects",
		model.Column{Name: "Name", Type: model.Title{}},
	)
}

func tasksSchema(projects *model.PageSchema) *model.PageSchema {
	return model.MustPageSchema("Tasks",
		model.Column{Name: "Name", Type: model.Title{}},
		model.Column{Name: "Done", Type: model.Checkbox{}},
		model.Column{Name: "Project", Type: model.Relation{Target: projects, BackName: "Tasks"}},
	)
}

func relationTo(t *testing.T, db *model.Database, column string) *objapi.RelationType {
	t.Helper()
	desc, ok := db.Obj().Properties[column].(*objapi.RelationType)
	require.True(t, ok, "column %q of %s is not a relation", column, db)
	return desc
}

func TestCreateDB_DefaultSchema(t *testing.T) {
	ctx := context.Background()
	s, remote := openSession(t)
	parent := rootPage(t, s, remote)

	db, err := s.CreateDB(ctx, parent, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name"}, db.Schema().ToDict().Names())
	assert.True(t, db.HasDeclaredSchema())

	id, bound := db.Schema().DatabaseID()
	assert.True(t, bound)
	assert.Equal(t, db.ID(), id)

	_, err = s.CreateDB(ctx, parent, db.Schema())
	assert.True(t, notionmap.IsSchemaError(err), "a bound schema cannot create a second database")

	_, err = s.CreateDB(ctx, nil, projectsSchema())
	assert.True(t, notionmap.IsValidationError(err))
}

func TestCreateDB_RelationToExistingDatabase(t *testing.T) {
	ctx := context.Background()
	s, remote := openSession(t)
	parent := rootPage(t, s, remote)

	projectsDecl := projectsSchema()
	projects, err := s.CreateDB(ctx, parent, projectsDecl)
	require.NoError(t, err)
	tasks, err := s.CreateDB(ctx, parent, tasksSchema(projectsDecl))
	require.NoError(t, err)

	rel := relationTo(t, tasks, "Project")
	assert.Equal(t, projects.ID(), rel.Relation.DatabaseID)
	require.NotNil(t, rel.Relation.DualProperty)
	assert.Equal(t, "Tasks", rel.Relation.DualProperty.SyncedPropertyName)

	// the synced column was renamed to the back name and declared on the target
	back := relationTo(t, projects, "Tasks")
	assert.Equal(t, tasks.ID(), back.Relation.DatabaseID)
	col, ok := projects.Schema().Column("Tasks")
	require.True(t, ok)
	backRel, ok := col.Type.(model.Relation)
	require.True(t, ok)
	assert.Equal(t, "Project", backRel.BackName)
	assert.Same(t, tasks.Schema(), backRel.Target)
	_, stale := projects.Obj().Properties["Related to Tasks (Project)"]
	assert.False(t, stale)
}

func TestCreateDB_RelationToLaterDatabase(t *testing.T) {
	ctx := context.Background()
	s, remote := openSession(t)
	parent := rootPage(t, s, remote)

	projectsDecl := projectsSchema()
	tasks, err := s.CreateDB(ctx, parent, tasksSchema(projectsDecl))
	require.NoError(t, err)
	_, pending := tasks.Obj().Properties["Project"]
	assert.False(t, pending, "relation waits until its target exists")

	projects, err := s.CreateDB(ctx, parent, projectsDecl)
	require.NoError(t, err)

	rel := relationTo(t, tasks, "Project")
	assert.Equal(t, projects.ID(), rel.Relation.DatabaseID)
	back := relationTo(t, projects, "Tasks")
	assert.Equal(t, tasks.ID(), back.Relation.DatabaseID)
	_, ok := projects.Schema().Column("Tasks")
	assert.True(t, ok)

	s.mu.Lock()
	assert.Empty(t, s.pending)
	s.mu.Unlock()
}

func assertMatchesRemote(t *testing.T, db *model.Database) {
	t.Helper()
	reflected, err := model.SchemaFromDatabase(db.Obj())
	require.NoError(t, err)
	assert.NoError(t, db.Schema().Compare(reflected), "declared schema of %s", db)
}

func TestCreateDB_MutualOneWayRelations(t *testing.T) {
	ctx := context.Background()
	s, remote := openSession(t)
	parent := rootPage(t, s, remote)

	authorsDecl := model.MustPageSchema("Authors", model.Column{Name: "Name", Type: model.Title{}})
	booksDecl := model.MustPageSchema("Books",
		model.Column{Name: "Name", Type: model.Title{}},
		model.Column{Name: "Written by", Type: model.Relation{Target: authorsDecl}},
	)
	require.NoError(t, authorsDecl.AddColumn(model.Column{Name: "Favourite", Type: model.Relation{Target: booksDecl}}))

	authors, err := s.CreateDB(ctx, parent, authorsDecl)
	require.NoError(t, err)
	books, err := s.CreateDB(ctx, parent, booksDecl)
	require.NoError(t, err)

	favourite := relationTo(t, authors, "Favourite")
	assert.Equal(t, books.ID(), favourite.Relation.DatabaseID)
	assert.Nil(t, favourite.Relation.DualProperty)
	writtenBy := relationTo(t, books, "Written by")
	assert.Equal(t, authors.ID(), writtenBy.Relation.DatabaseID)
	assert.Nil(t, writtenBy.Relation.DualProperty)

	assertMatchesRemote(t, authors)
	assertMatchesRemote(t, books)
}

func TestCreateDB_MutualTwoWayRelation(t *testing.T) {
	ctx := context.Background()
	s, remote := openSession(t)
	parent := rootPage(t, s, remote)

	projectsDecl := projectsSchema()
	tasksDecl := tasksSchema(projectsDecl)
	require.NoError(t, projectsDecl.AddColumn(model.Column{Name: "Tasks", Type: model.Relation{Target: tasksDecl, BackName: "Project"}}))

	projects, err := s.CreateDB(ctx, parent, projectsDecl)
	require.NoError(t, err)
	tasks, err := s.CreateDB(ctx, parent, tasksDecl)
	require.NoError(t, err)

	rel := relationTo(t, tasks, "Project")
	assert.Equal(t, projects.ID(), rel.Relation.DatabaseID)
	require.NotNil(t, rel.Relation.DualProperty)
	assert.Equal(t, "Tasks", rel.Relation.DualProperty.SyncedPropertyName)

	back := relationTo(t, projects, "Tasks")
	assert.Equal(t, tasks.ID(), back.Relation.DatabaseID)
	require.NotNil(t, back.Relation.DualProperty)
	assert.Equal(t, "Project", back.Relation.DualProperty.SyncedPropertyName)

	assert.Len(t, projects.Obj().Properties, 2, "one relation pair, no duplicate synced column")
	assert.Len(t, tasks.Obj().Properties, 3)

	assertMatchesRemote(t, projects)
	assertMatchesRemote(t, tasks)

	s.mu.Lock()
	assert.Empty(t, s.pending)
	s.mu.Unlock()
}

func TestCreateDB_SelfRelation(t *testing.T) {
	ctx := context.Background()
	s, remote := openSession(t)
	parent := rootPage(t, s, remote)

	people := model.MustPageSchema("People",
		model.Column{Name: "Name", Type: model.Title{}},
		model.Column{Name: "Manager", Type: model.Relation{Self: true}},
	)
	db, err := s.CreateDB(ctx, parent, people)
	require.NoError(t, err)

	rel := relationTo(t, db, "Manager")
	assert.Equal(t, db.ID(), rel.Relation.DatabaseID)
	assert.Equal(t, 1, remote.callCount("update database"))
}

func TestCreateDB_UnboundTargetWithoutSchema(t *testing.T) {
	ctx := context.Background()
	s, remote := openSession(t)
	parent := rootPage(t, s, remote)

	orphan := model.MustPageSchema("Orphan",
		model.Column{Name: "Name", Type: model.Title{}},
		model.Column{Name: "Link", Type: model.Relation{}},
	)
	_, err := s.CreateDB(ctx, parent, orphan)
	require.Error(t, err)
	assert.True(t, notionmap.IsSchemaError(err))
	assert.Equal(t, 0, remote.callCount("create database"))
}

func TestCreateDBsAndGetOrCreateAreNotImplemented(t *testing.T) {
	ctx := context.Background()
	s, _ := openSession(t)

	_, err := s.CreateDBs(ctx, nil, nil)
	assert.True(t, notionmap.IsNotImplementedError(err))
	_, err = s.GetOrCreateDB(ctx, nil, nil)
	assert.True(t, notionmap.IsNotImplementedError(err))
}

func TestGetDB_CacheIdentity(t *testing.T) {
	ctx := context.Background()
	s, remote := openSession(t)
	parent := rootPage(t, s, remote)

	created, err := s.CreateDB(ctx, parent, projectsSchema())
	require.NoError(t, err)

	cachedDB, err := s.GetDB(ctx, created.ID(), true)
	require.NoError(t, err)
	assert.Same(t, created, cachedDB)

	before := remote.callCount("retrieve database")
	refreshed, err := s.GetDB(ctx, created.URL(), false)
	require.NoError(t, err)
	assert.Same(t, created, refreshed, "a refresh reloads the cached wrapper")
	assert.Equal(t, before+1, remote.callCount("retrieve database"))
	assert.True(t, refreshed.HasDeclaredSchema())

	_, err = s.GetDB(ctx, "0b0a0c6e-5d2a-4f1e-8d9c-1a2b3c4d5e6f", true)
	assert.True(t, notionmap.IsRemoteError(err))
}

func TestSearchDB(t *testing.T) {
	ctx := context.Background()
	s, remote := openSession(t)
	parent := rootPage(t, s, remote)

	_, err := s.CreateDB(ctx, parent, model.DefaultSchema("Tasks"))
	require.NoError(t, err)
	_, err = s.CreateDB(ctx, parent, model.DefaultSchema("Tasks archive"))
	require.NoError(t, err)

	all, err := s.SearchDB(ctx, "tasks", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	exact, err := s.SearchDB(ctx, "Tasks", true)
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, "Tasks", exact[0].Title().String())

	everything, err := s.SearchDB(ctx, "", true)
	require.NoError(t, err)
	assert.Len(t, everything, 2)
}

func TestSetSchemaOnFetchedDatabase(t *testing.T) {
	ctx := context.Background()
	s, remote := openSession(t)
	parent := rootPage(t, s, remote)

	created, err := s.CreateDB(ctx, parent, model.MustPageSchema("Reading",
		model.Column{Name: "Title", Type: model.Title{}},
		model.Column{Name: "Read", Type: model.Checkbox{}},
	))
	require.NoError(t, err)
	s.cache.Clear()

	db, err := s.GetDB(ctx, created.ID(), true)
	require.NoError(t, err)
	assert.NotSame(t, created, db)
	assert.False(t, db.HasDeclaredSchema())

	err = db.SetSchema(model.MustPageSchema("Reading",
		model.Column{Name: "Title", Type: model.Title{}},
		model.Column{Name: "Read", Type: model.Checkbox{}},
		model.Column{Name: "Rating", Type: model.Number{}},
	))
	require.Error(t, err)
	assert.True(t, notionmap.IsSchemaMismatchError(err))
	assert.Contains(t, notionmap.MismatchedColumns(err), "Rating")
	assert.False(t, db.HasDeclaredSchema())

	require.NoError(t, db.SetSchema(model.MustPageSchema("Reading",
		model.Column{Name: "Read", Type: model.Checkbox{}},
		model.Column{Name: "Title", Type: model.Title{}},
	)))
	assert.True(t, db.HasDeclaredSchema())
}

func TestCreatePageInDBAndQuery(t *testing.T) {
	ctx := context.Background()
	s, remote := openSession(t)
	parent := rootPage(t, s, remote)

	db, err := s.CreateDB(ctx, parent, model.MustPageSchema("Chores",
		model.Column{Name: "Name", Type: model.Title{}},
		model.Column{Name: "Done", Type: model.Checkbox{}},
		model.Column{Name: "Created", Type: model.CreatedTime{}},
	))
	require.NoError(t, err)

	page, err := s.CreatePageInDB(ctx, db, map[string]any{"title": "Water plants", "Done": true})
	require.NoError(t, err)
	assert.Equal(t, "Water plants", page.Title().String())
	done, err := page.Get("Done")
	require.NoError(t, err)
	assert.Equal(t, true, done)
	dbID, ok := page.DatabaseID()
	require.True(t, ok)
	assert.Equal(t, db.ID(), dbID)

	_, err = s.CreatePageInDB(ctx, db, map[string]any{"Name": "Take out trash", "Done": false})
	require.NoError(t, err)

	created := remote.callCount("create page")
	rejected := []map[string]any{
		{"Name": "Bad", "Done": "yes"},
		{"Name": "Late", "Created": "2024-01-01T00:00:00Z"},
		{"Name": "Ghost", "Nope": 1},
	}
	for _, values := range rejected {
		_, err := s.CreatePageInDB(ctx, db, values)
		assert.Error(t, err, "%v", values)
	}
	assert.Equal(t, created, remote.callCount("create page"), "rejected rows never reach the remote")

	view, err := s.QueryDB(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Len())
	assert.Equal(t, []string{"Name", "Done", "Created"}, view.Columns())
	assert.Same(t, page, view.Pages()[0], "query results share cached wrappers")
}
