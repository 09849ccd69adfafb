package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lychee-technology/notionmap"
)

// fakeRemote is an in-memory stand-in for the remote API. It keeps objects as
// generic JSON documents and emulates the parts of the API the session relies
// on: two-way relation columns, column renames and deletes, search and queries.
type fakeRemote struct {
	mu      sync.Mutex
	objects map[string]map[string]any
	order   []string
	users   []map[string]any
	me      map[string]any
	fail    error
	calls   []string
	closed  bool
}

var _ notionmap.Transport = (*fakeRemote)(nil)

func newFakeRemote() *fakeRemote {
	me := map[string]any{
		"object": "user", "id": uuid.NewString(), "type": "bot", "name": "Integration",
		"bot": map[string]any{"owner": map[string]any{"type": "workspace", "workspace": true}, "workspace_name": "Acme"},
	}
	person := map[string]any{
		"object": "user", "id": uuid.NewString(), "type": "person", "name": "Ada",
		"person": map[string]any{"email": "ada@example.com"},
	}
	return &fakeRemote{
		objects: make(map[string]map[string]any),
		users:   []map[string]any{person, me},
		me:      me,
	}
}

func (f *fakeRemote) record(call string) error {
	f.calls = append(f.calls, call)
	return f.fail
}

func (f *fakeRemote) store(doc map[string]any) {
	id := doc["id"].(string)
	if _, exists := f.objects[id]; !exists {
		f.order = append(f.order, id)
	}
	f.objects[id] = doc
}

func notFound(id string) error {
	return notionmap.NewRemoteError(404, "object_not_found", fmt.Sprintf("Could not find object with ID: %s.", id))
}

func badRequest(msg string) error {
	return notionmap.NewRemoteError(400, "validation_error", msg)
}

func encode(doc map[string]any) (json.RawMessage, error) {
	raw, err := json.Marshal(doc)
	return json.RawMessage(raw), err
}

func timestamps(doc map[string]any) {
	now := time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
	if _, ok := doc["created_time"]; !ok {
		doc["created_time"] = now
	}
	doc["last_edited_time"] = now
}

func (f *fakeRemote) Retrieve(ctx context.Context, kind notionmap.ObjectKind, id string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("retrieve " + string(kind)); err != nil {
		return nil, err
	}
	if kind == notionmap.ObjectKindUser {
		for _, u := range f.users {
			if u["id"] == id {
				return encode(u)
			}
		}
		return nil, notFound(id)
	}
	doc, ok := f.objects[id]
	if !ok || doc["object"] != string(kind) {
		return nil, notFound(id)
	}
	return encode(doc)
}

func (f *fakeRemote) Create(ctx context.Context, kind notionmap.ObjectKind, payload json.RawMessage) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create " + string(kind)); err != nil {
		return nil, err
	}
	switch kind {
	case notionmap.ObjectKindDatabase:
		return f.createDatabase(payload)
	case notionmap.ObjectKindPage:
		return f.createPage(payload)
	default:
		return nil, badRequest("unsupported kind " + string(kind))
	}
}

func (f *fakeRemote) createDatabase(payload json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Parent     map[string]any            `json:"parent"`
		Title      []any                     `json:"title"`
		Properties map[string]map[string]any `json:"properties"`
	}
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, badRequest(err.Error())
	}
	if parentID, _ := in.Parent["page_id"].(string); f.objects[parentID] == nil {
		return nil, notFound(parentID)
	}
	if in.Title == nil {
		in.Title = []any{}
	}
	id := uuid.NewString()
	doc := map[string]any{
		"object":     "database",
		"id":         id,
		"title":      in.Title,
		"parent":     in.Parent,
		"properties": map[string]any{},
		"archived":   false,
		"is_inline":  false,
		"url":        "https://www.notion.so/" + strings.ReplaceAll(id, "-", ""),
	}
	timestamps(doc)
	f.store(doc)
	for name, desc := range in.Properties {
		if err := f.addColumn(id, name, desc); err != nil {
			delete(f.objects, id)
			return nil, err
		}
	}
	return encode(doc)
}

func columns(doc map[string]any) map[string]any {
	return doc["properties"].(map[string]any)
}

func plainText(spans []any) string {
	var sb strings.Builder
	for _, span := range spans {
		m, _ := span.(map[string]any)
		if pt, ok := m["plain_text"].(string); ok {
			sb.WriteString(pt)
			continue
		}
		if text, ok := m["text"].(map[string]any); ok {
			content, _ := text["content"].(string)
			sb.WriteString(content)
		}
	}
	return sb.String()
}

func titleOf(doc map[string]any) string {
	if spans, ok := doc["title"].([]any); ok {
		return plainText(spans)
	}
	for _, value := range columns(doc) {
		v, _ := value.(map[string]any)
		if v["type"] == "title" {
			spans, _ := v["title"].([]any)
			return plainText(spans)
		}
	}
	return ""
}

// addColumn stores a descriptor; a dual relation also creates the synced column on its target.
func (f *fakeRemote) addColumn(dbID, name string, desc map[string]any) error {
	doc := f.objects[dbID]
	desc["id"] = uuid.NewString()[:4]
	desc["name"] = name
	if desc["type"] == "relation" {
		rel, _ := desc["relation"].(map[string]any)
		targetID, _ := rel["database_id"].(string)
		target, ok := f.objects[targetID]
		if !ok || target["object"] != "database" {
			return badRequest("relation target does not exist: " + targetID)
		}
		if rel["type"] == "dual_property" {
			syncedName := fmt.Sprintf("Related to %s (%s)", titleOf(doc), name)
			syncedID := uuid.NewString()[:4]
			rel["dual_property"] = map[string]any{"synced_property_name": syncedName, "synced_property_id": syncedID}
			columns(target)[syncedName] = map[string]any{
				"id":   syncedID,
				"name": syncedName,
				"type": "relation",
				"relation": map[string]any{
					"database_id":   dbID,
					"type":          "dual_property",
					"dual_property": map[string]any{"synced_property_name": name, "synced_property_id": desc["id"]},
				},
			}
		}
	}
	columns(doc)[name] = desc
	return nil
}

func (f *fakeRemote) createPage(payload json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Parent     map[string]any `json:"parent"`
		Properties map[string]any `json:"properties"`
	}
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, badRequest(err.Error())
	}
	parentID, _ := in.Parent["page_id"].(string)
	if dbID, ok := in.Parent["database_id"].(string); ok {
		parentID = dbID
		db := f.objects[dbID]
		if db == nil {
			return nil, notFound(dbID)
		}
		for name := range in.Properties {
			if _, ok := columns(db)[name]; !ok {
				return nil, badRequest(name + " is not a property that exists.")
			}
		}
	} else if f.objects[parentID] == nil && parentID != "" {
		return nil, notFound(parentID)
	}
	if in.Properties == nil {
		in.Properties = map[string]any{}
	}
	id := uuid.NewString()
	doc := map[string]any{
		"object":     "page",
		"id":         id,
		"parent":     in.Parent,
		"properties": in.Properties,
		"archived":   false,
		"url":        "https://www.notion.so/" + strings.ReplaceAll(id, "-", ""),
	}
	timestamps(doc)
	f.store(doc)
	return encode(doc)
}

func (f *fakeRemote) Update(ctx context.Context, kind notionmap.ObjectKind, id string, payload json.RawMessage) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("update " + string(kind)); err != nil {
		return nil, err
	}
	doc, ok := f.objects[id]
	if !ok || doc["object"] != string(kind) {
		return nil, notFound(id)
	}
	if kind != notionmap.ObjectKindDatabase {
		return nil, badRequest("only database updates are emulated")
	}

	var in struct {
		Title      []any                      `json:"title"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, badRequest(err.Error())
	}
	if in.Title != nil {
		doc["title"] = in.Title
	}
	for name, raw := range in.Properties {
		if string(raw) == "null" {
			delete(columns(doc), name)
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, badRequest(err.Error())
		}
		if _, isDescriptor := entry["type"]; isDescriptor {
			if err := f.addColumn(id, name, entry); err != nil {
				return nil, err
			}
			continue
		}
		newName, _ := entry["name"].(string)
		if err := f.renameColumn(id, name, newName); err != nil {
			return nil, err
		}
	}
	timestamps(doc)
	return encode(doc)
}

func (f *fakeRemote) renameColumn(dbID, from, to string) error {
	cols := columns(f.objects[dbID])
	col, ok := cols[from].(map[string]any)
	if !ok {
		return badRequest(from + " is not a property that exists.")
	}
	if _, taken := cols[to]; taken || to == "" {
		return badRequest("cannot rename " + from + " to " + to)
	}
	delete(cols, from)
	col["name"] = to
	cols[to] = col

	// the other side of a two-way relation follows the rename
	for _, other := range f.objects {
		if other["object"] != "database" {
			continue
		}
		for _, value := range columns(other) {
			desc, _ := value.(map[string]any)
			rel, _ := desc["relation"].(map[string]any)
			if rel == nil || rel["database_id"] != dbID {
				continue
			}
			if dual, ok := rel["dual_property"].(map[string]any); ok && dual["synced_property_name"] == from {
				dual["synced_property_name"] = to
			}
		}
	}
	return nil
}

func (f *fakeRemote) Search(ctx context.Context, query notionmap.SearchQuery) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("search"); err != nil {
		return nil, err
	}
	results := make([]json.RawMessage, 0)
	for _, id := range f.order {
		doc := f.objects[id]
		if query.Object != "" && doc["object"] != string(query.Object) {
			continue
		}
		if !strings.Contains(strings.ToLower(titleOf(doc)), strings.ToLower(query.Query)) {
			continue
		}
		raw, err := encode(doc)
		if err != nil {
			return nil, err
		}
		results = append(results, raw)
	}
	return results, nil
}

func (f *fakeRemote) QueryDatabase(ctx context.Context, id string) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("query"); err != nil {
		return nil, err
	}
	if doc, ok := f.objects[id]; !ok || doc["object"] != "database" {
		return nil, notFound(id)
	}
	results := make([]json.RawMessage, 0)
	for _, pid := range f.order {
		doc := f.objects[pid]
		parent, _ := doc["parent"].(map[string]any)
		if doc["object"] != "page" || parent["database_id"] != id {
			continue
		}
		raw, err := encode(doc)
		if err != nil {
			return nil, err
		}
		results = append(results, raw)
	}
	return results, nil
}

func (f *fakeRemote) Me(ctx context.Context) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("me"); err != nil {
		return nil, err
	}
	return encode(f.me)
}

func (f *fakeRemote) ListUsers(ctx context.Context) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("users"); err != nil {
		return nil, err
	}
	results := make([]json.RawMessage, 0, len(f.users))
	for _, u := range f.users {
		raw, err := encode(u)
		if err != nil {
			return nil, err
		}
		results = append(results, raw)
	}
	return results, nil
}

func (f *fakeRemote) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// seedPage stores a workspace-level page to act as a parent.
func (f *fakeRemote) seedPage(title string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.NewString()
	doc := map[string]any{
		"object": "page",
		"id":     id,
		"parent": map[string]any{"type": "workspace", "workspace": true},
		"properties": map[string]any{
			"title": map[string]any{"id": "title", "type": "title", "title": []any{
				map[string]any{"type": "text", "text": map[string]any{"content": title}, "plain_text": title},
			}},
		},
		"archived": false,
	}
	timestamps(doc)
	f.store(doc)
	return id
}

func (f *fakeRemote) callCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// memorySnapshots is an in-memory notionmap.SnapshotStore.
type memorySnapshots struct {
	mu     sync.Mutex
	saved  map[string]notionmap.Snapshot
	closed bool
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{saved: make(map[string]notionmap.Snapshot)}
}

func (m *memorySnapshots) Save(ctx context.Context, snapshot notionmap.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[snapshot.ID] = snapshot
	return nil
}

func (m *memorySnapshots) Load(ctx context.Context, id string) (*notionmap.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.saved[id]
	if !ok {
		return nil, notionmap.NewObjectNotFoundError(id)
	}
	return &snap, nil
}

func (m *memorySnapshots) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}
