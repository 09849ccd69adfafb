package model

import (
	"fmt"
	"testing"

	"github.com/lychee-technology/notionmap/objapi"
	"github.com/stretchr/testify/require"
)

const tasksDatabase = `{
	"object": "database",
	"id": "db-tasks",
	"title": [{"type": "text", "text": {"content": "Tasks"}}],
	"properties": {
		"Task": {"id": "title", "name": "Task", "type": "title", "title": {}},
		"Estimate": {"id": "e", "name": "Estimate", "type": "number", "number": {"format": "number"}},
		"Done": {"id": "d", "name": "Done", "type": "checkbox", "checkbox": {}},
		"Tags": {"id": "t", "name": "Tags", "type": "multi_select", "multi_select": {"options": []}}
	}
}`

func tasksDB(t *testing.T) *Database {
	t.Helper()
	obj, err := objapi.DecodeDatabase([]byte(tasksDatabase))
	require.NoError(t, err)
	db, err := NewDatabase(obj)
	require.NoError(t, err)
	return db
}

func taskPage(t *testing.T, id, title string, estimate string, done bool) *Page {
	t.Helper()
	payload := fmt.Sprintf(`{
		"object": "page",
		"id": %q,
		"parent": {"type": "database_id", "database_id": "db-tasks"},
		"properties": {
			"Task": {"id": "title", "type": "title", "title": [{"type": "text", "text": {"content": %q}, "plain_text": %q}]},
			"Estimate": {"id": "e", "type": "number", "number": %s},
			"Done": {"id": "d", "type": "checkbox", "checkbox": %t},
			"Tags": {"id": "t", "type": "multi_select", "multi_select": [{"name": "home"}, {"name": "urgent"}]}
		}
	}`, id, title, title, estimate, done)
	obj, err := objapi.DecodePage([]byte(payload))
	require.NoError(t, err)
	return NewPage(obj)
}
