package objapi

import (
	"encoding/json"
	"testing"

	"github.com/lychee-technology/notionmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pagePayload = `{
	"object": "page",
	"id": "59833787-2cf9-4fdf-8782-e53db20768a5",
	"created_time": "2023-01-01T10:00:00.000Z",
	"last_edited_time": "2023-01-02T10:00:00.000Z",
	"created_by": {"object": "user", "id": "u1"},
	"last_edited_by": {"object": "user", "id": "u1"},
	"archived": false,
	"url": "https://www.notion.so/Task-598337872cf94fdf8782e53db20768a5",
	"parent": {"type": "database_id", "database_id": "d9824bdc-8445-4327-be8b-5b47500af6ce"},
	"properties": {
		"Name": {"id": "title", "type": "title", "title": [{"type": "text", "text": {"content": "Task"}, "plain_text": "Task"}]},
		"Done": {"id": "a1", "type": "checkbox", "checkbox": true}
	}
}`

func TestDecodePage(t *testing.T) {
	page, err := DecodePage([]byte(pagePayload))
	require.NoError(t, err)
	assert.Equal(t, "59833787-2cf9-4fdf-8782-e53db20768a5", page.ID)
	assert.IsType(t, &PartialUser{}, page.CreatedBy)
	assert.Equal(t, "d9824bdc-8445-4327-be8b-5b47500af6ce", page.Parent.ParentID())
	assert.Equal(t, "database_id", page.Parent.Type())

	name, title, ok := page.TitleProperty()
	require.True(t, ok)
	assert.Equal(t, "Name", name)
	assert.Equal(t, "Task", title.Title.PlainText())
	assert.True(t, *page.Properties["Done"].(*Checkbox).Checkbox)

	encoded, err := json.Marshal(page)
	require.NoError(t, err)
	again, err := DecodePage(encoded)
	require.NoError(t, err)
	assert.Equal(t, page.ID, again.ID)
	assert.Len(t, again.Properties, 2)
}

func TestDecodeDatabase(t *testing.T) {
	payload := `{
		"object": "database",
		"id": "db1",
		"title": [{"type": "text", "text": {"content": "Tasks"}}],
		"parent": {"type": "page_id", "page_id": "p0"},
		"is_inline": false,
		"properties": {
			"Name": {"id": "title", "name": "Name", "type": "title", "title": {}},
			"Price": {"id": "x", "name": "Price", "type": "number", "number": {"format": "euro"}}
		}
	}`
	db, err := DecodeDatabase([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "Tasks", db.Title.PlainText())
	assert.Equal(t, NumberFormatEuro, db.Properties["Price"].(*NumberType).Number.Format)
	assert.Nil(t, db.CreatedBy)
}

func TestDecodeObject(t *testing.T) {
	tests := []struct {
		payload string
		want    any
	}{
		{pagePayload, &Page{}},
		{`{"object":"database","id":"d","title":[],"properties":{}}`, &Database{}},
		{`{"object":"user","id":"u","type":"person","person":{}}`, &Person{}},
		{`{"object":"block","id":"b","type":"paragraph","paragraph":{"rich_text":[]}}`, &Block{}},
		{`{"object":"list","results":[],"next_cursor":null,"has_more":false}`, &List{}},
	}
	for _, tt := range tests {
		obj, err := DecodeObject([]byte(tt.payload))
		require.NoError(t, err)
		assert.IsType(t, tt.want, obj)
	}

	_, err := DecodeObject([]byte(`{"object":"comment","id":"c"}`))
	assert.True(t, notionmap.IsUnknownVariantError(err))

	_, err = DecodeObject([]byte(`{"id":"c"}`))
	assert.True(t, notionmap.IsDecodeError(err))
}

func TestBlockKeepsContent(t *testing.T) {
	payload := `{"object":"block","id":"b","type":"to_do","created_time":"2023-01-01T10:00:00.000Z","last_edited_time":"2023-01-01T10:00:00.000Z","has_children":false,"archived":false,"to_do":{"checked":true}}`
	block, err := DecodeBlock([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "to_do", block.Type)
	assert.JSONEq(t, `{"checked":true}`, string(block.Content))

	encoded, err := json.Marshal(block)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(encoded))
}

func TestDatabaseCreatePayload(t *testing.T) {
	create := DatabaseCreate{
		Parent: &PageParent{PageID: "p0"},
		Title:  RichTextList{NewText("Tasks")},
		Properties: PropertyTypeMap{
			"Name": &TitleType{},
		},
	}
	encoded, err := json.Marshal(create)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"parent": {"type": "page_id", "page_id": "p0"},
		"title": [{"type": "text", "plain_text": "Tasks", "text": {"content": "Tasks"}}],
		"properties": {"Name": {"type": "title", "title": {}}}
	}`, string(encoded))

	update := DatabaseUpdate{Properties: map[string]any{"Old": ColumnRename("New"), "Gone": nil}}
	encoded, err = json.Marshal(update)
	require.NoError(t, err)
	assert.JSONEq(t, `{"properties": {"Old": {"name": "New"}, "Gone": null}}`, string(encoded))
}
