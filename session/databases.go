package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lychee-technology/notionmap"
	"github.com/lychee-technology/notionmap/internal"
	"github.com/lychee-technology/notionmap/model"
	"github.com/lychee-technology/notionmap/objapi"
	"go.uber.org/zap"
)

// pendingRelation is a relation column of db waiting for its target schema to be created.
type pendingRelation struct {
	db  *model.Database
	col model.Column
}

// CreateDB creates a database below parent following schema; a nil schema
// creates a database with a single "Name" title column.
//
// Relations are wired in phases:
//  1. relations to databases that already exist go into the creation payload
//  2. the database is created and the schema is bound to it
//  3. self relations are added with an update
//  4. relations to schemas not created yet are recorded and added once the peer
//     is created through this session; relations waiting for this schema are added now
//     unless this schema declares their other side
//  5. the synced column of every two-way relation is renamed to its back name
//
// If the database was created but wiring failed, the database is returned with the error.
func (s *Session) CreateDB(ctx context.Context, parent *model.Page, schema *model.PageSchema) (*model.Database, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, notionmap.NewValidationError("parent", "a parent page is required")
	}
	if schema == nil {
		schema = model.DefaultSchema("")
	}
	if id, bound := schema.DatabaseID(); bound {
		return nil, notionmap.NewSchemaInvalidError(fmt.Sprintf("schema '%s' is already bound to database %s", schema.Title(), id))
	}

	props, deferred, err := schema.CreationColumns()
	if err != nil {
		return nil, err
	}
	var selfRefs, waiting []model.Column
	for _, col := range deferred {
		rel := col.Type.(model.Relation)
		switch {
		case rel.IsSelfRef(schema):
			selfRefs = append(selfRefs, col)
		case rel.Target == nil:
			return nil, notionmap.NewSchemaUnboundError("").WithField(col.Name)
		default:
			waiting = append(waiting, col)
		}
	}

	payload, err := json.Marshal(objapi.DatabaseCreate{
		Parent:     &objapi.PageParent{PageID: parent.ID()},
		Title:      model.FromPlainText(schema.Title()).Obj(),
		Properties: props,
	})
	if err != nil {
		return nil, notionmap.NewInternalError("failed to encode database", err)
	}
	raw, err := s.transport.Create(ctx, notionmap.ObjectKindDatabase, payload)
	if err != nil {
		return nil, err
	}
	obj, err := objapi.DecodeDatabase(raw)
	if err != nil {
		return nil, err
	}
	db, err := model.NewDatabase(obj)
	if err != nil {
		return nil, err
	}
	db.Adopt(schema)
	s.cache.Set(db.ID(), db)
	s.remember(ctx, notionmap.ObjectKindDatabase, db.ID(), raw)
	s.logger.Debug("database created",
		zap.String("id", db.ID()),
		zap.String("title", schema.Title()),
		zap.Int("self_relations", len(selfRefs)),
		zap.Int("waiting_relations", len(waiting)),
	)

	if err := s.wireRelations(ctx, db, props, selfRefs, waiting); err != nil {
		return db, fmt.Errorf("wire relations of database %s: %w", db.ID(), err)
	}
	return db, nil
}

func (s *Session) wireRelations(ctx context.Context, db *model.Database, initial objapi.PropertyTypeMap, selfRefs, waiting []model.Column) error {
	schema := db.Schema()

	var created []model.Column
	for _, col := range schema.ToDict() {
		if _, ok := initial[col.Name]; ok {
			created = append(created, col)
		}
	}

	if len(selfRefs) > 0 {
		if err := s.addColumns(ctx, db, selfRefs); err != nil {
			return err
		}
		created = append(created, selfRefs...)
	}

	s.mu.Lock()
	for _, col := range waiting {
		target := col.Type.(model.Relation).Target
		s.pending[target] = append(s.pending[target], pendingRelation{db: db, col: col})
	}
	resolved := s.pending[schema]
	delete(s.pending, schema)
	s.mu.Unlock()

	for _, p := range resolved {
		if declaresPeer(schema, p) {
			s.logger.Debug("deferred relation created from its peer", zap.String("database", p.db.ID()), zap.String("column", p.col.Name))
			continue
		}
		s.logger.Debug("adding deferred relation", zap.String("database", p.db.ID()), zap.String("column", p.col.Name))
		if err := s.addColumns(ctx, p.db, []model.Column{p.col}); err != nil {
			return err
		}
		if err := s.syncBackRelations(ctx, p.db, []model.Column{p.col}); err != nil {
			return err
		}
	}

	return s.syncBackRelations(ctx, db, created)
}

// declaresPeer reports whether schema declares the other side of the two-way
// relation p; the remote creates p's column when that side is synced.
func declaresPeer(schema *model.PageSchema, p pendingRelation) bool {
	rel := p.col.Type.(model.Relation)
	if !rel.IsTwoWay() {
		return false
	}
	peer, ok := schema.Column(rel.BackName)
	if !ok {
		return false
	}
	back, ok := peer.Type.(model.Relation)
	return ok && back.Target == p.db.Schema() && back.BackName == p.col.Name
}

// addColumns adds columns of the declared schema of db to the remote database.
func (s *Session) addColumns(ctx context.Context, db *model.Database, cols []model.Column) error {
	props := make(map[string]any, len(cols))
	for _, col := range cols {
		obj, err := db.Schema().ObjRef(col)
		if err != nil {
			return err
		}
		props[col.Name] = obj
	}
	return s.updateDB(ctx, db, objapi.DatabaseUpdate{Properties: props})
}

// syncBackRelations renames the synced column the remote created on the target
// of every two-way relation in cols, and declares it on the target's schema.
func (s *Session) syncBackRelations(ctx context.Context, source *model.Database, cols []model.Column) error {
	for _, col := range cols {
		rel, ok := col.Type.(model.Relation)
		if !ok || !rel.IsTwoWay() {
			continue
		}
		desc, ok := source.Obj().Properties[col.Name].(*objapi.RelationType)
		if !ok || desc.Relation.DualProperty == nil {
			return notionmap.NewSchemaMismatchError("remote did not create a two-way relation", col.Name)
		}

		target, err := s.GetDB(ctx, desc.Relation.DatabaseID, true)
		if err != nil {
			return err
		}
		synced := desc.Relation.DualProperty.SyncedPropertyName
		if synced != rel.BackName {
			s.logger.Debug("renaming back relation",
				zap.String("database", target.ID()),
				zap.String("from", synced),
				zap.String("to", rel.BackName),
			)
			update := objapi.DatabaseUpdate{Properties: map[string]any{synced: objapi.ColumnRename(rel.BackName)}}
			if err := s.updateDB(ctx, target, update); err != nil {
				return err
			}
		}

		if target.HasDeclaredSchema() {
			if _, exists := target.Schema().Column(rel.BackName); !exists {
				back := model.Column{Name: rel.BackName, Type: model.Relation{Target: source.Schema(), BackName: col.Name}}
				if err := target.Schema().AddColumn(back); err != nil {
					return err
				}
			}
		}
		if target != source {
			if err := s.refreshDB(ctx, source); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Session) updateDB(ctx context.Context, db *model.Database, update objapi.DatabaseUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return notionmap.NewInternalError("failed to encode database update", err)
	}
	raw, err := s.transport.Update(ctx, notionmap.ObjectKindDatabase, db.ID(), payload)
	if err != nil {
		return err
	}
	obj, err := objapi.DecodeDatabase(raw)
	if err != nil {
		return err
	}
	s.remember(ctx, notionmap.ObjectKindDatabase, obj.ID, raw)
	return db.Reload(obj)
}

func (s *Session) refreshDB(ctx context.Context, db *model.Database) error {
	raw, err := s.transport.Retrieve(ctx, notionmap.ObjectKindDatabase, db.ID())
	if err != nil {
		return err
	}
	obj, err := objapi.DecodeDatabase(raw)
	if err != nil {
		return err
	}
	s.remember(ctx, notionmap.ObjectKindDatabase, obj.ID, raw)
	return db.Reload(obj)
}

// CreateDBs would create several databases ordered by their relations.
func (s *Session) CreateDBs(ctx context.Context, parents []*model.Page, schemas []*model.PageSchema) ([]*model.Database, error) {
	return nil, notionmap.NewNotImplementedError("creating several databases at once")
}

// GetOrCreateDB would look a database up by schema and create it when missing.
func (s *Session) GetOrCreateDB(ctx context.Context, parent *model.Page, schema *model.PageSchema) (*model.Database, error) {
	return nil, notionmap.NewNotImplementedError("get or create database")
}

// SearchDB searches databases by title; an empty name returns all of them.
// With exact set only databases whose title equals name are kept.
func (s *Session) SearchDB(ctx context.Context, name string, exact bool) ([]*model.Database, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	raws, err := s.transport.Search(ctx, notionmap.SearchQuery{Query: name, Object: notionmap.ObjectKindDatabase})
	if err != nil {
		return nil, err
	}
	dbs := make([]*model.Database, 0, len(raws))
	for _, raw := range raws {
		db, err := s.materializeDB(ctx, raw, false)
		if err != nil {
			return nil, err
		}
		if exact && name != "" && db.Title().String() != name {
			continue
		}
		dbs = append(dbs, db)
	}
	return dbs, nil
}

// GetDB retrieves a database by id or URL.
func (s *Session) GetDB(ctx context.Context, ref string, useCache bool) (*model.Database, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	id, err := notionmap.NormalizeID(ref)
	if err != nil {
		return nil, err
	}
	if useCache {
		if db, ok := cached[*model.Database](ctx, s, id); ok {
			return db, nil
		}
	}
	raw, err := s.transport.Retrieve(ctx, notionmap.ObjectKindDatabase, id)
	if err != nil {
		return nil, err
	}
	return s.materializeDB(ctx, raw, true)
}

// materializeDB wraps a database payload. A cached wrapper is returned as is,
// or reloaded with the payload when refresh is set.
func (s *Session) materializeDB(ctx context.Context, raw json.RawMessage, refresh bool) (*model.Database, error) {
	obj, err := objapi.DecodeDatabase(raw)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, notionmap.ObjectKindDatabase, obj.ID, raw)
	if existing, ok := cached[*model.Database](ctx, s, obj.ID); ok {
		if refresh {
			if err := existing.Reload(obj); err != nil {
				return nil, err
			}
		}
		return existing, nil
	}
	db, err := model.NewDatabase(obj)
	if err != nil {
		return nil, err
	}
	return adopt(s, obj.ID, db), nil
}

// QueryDB fetches every row of db into a view.
func (s *Session) QueryDB(ctx context.Context, db *model.Database) (*model.View, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	raws, err := s.transport.QueryDatabase(ctx, db.ID())
	if err != nil {
		return nil, err
	}
	pages := make([]*model.Page, 0, len(raws))
	for _, raw := range raws {
		page, err := s.materializePage(ctx, raw, true)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return model.NewView(db, pages), nil
}

// CreatePageInDB adds a row to db. values maps column names (or "title" for the
// title column) to native values; they are validated against the schema of db
// before anything is sent. Computed columns cannot be set.
func (s *Session) CreatePageInDB(ctx context.Context, db *model.Database, values map[string]any) (*model.Page, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	schema := db.Schema()

	row := make(map[string]any, len(values))
	for name, value := range values {
		if name == model.TitleKey {
			if _, isColumn := schema.Column(name); !isColumn {
				name = schema.TitleColumn()
			}
		}
		row[name] = value
	}

	rowSchema, err := schema.JSONSchema()
	if err != nil {
		return nil, err
	}
	validator, err := internal.NewRowValidator(rowSchema)
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(row); err != nil {
		return nil, err
	}

	props := make(objapi.PropertyMap, len(row))
	for name, value := range row {
		col, ok := schema.Column(name)
		if !ok {
			return nil, notionmap.NewMissingKeyError(name)
		}
		pv, err := col.Build(value)
		if err != nil {
			return nil, err
		}
		props[name] = pv
	}

	payload, err := json.Marshal(objapi.PageCreate{
		Parent:     &objapi.DatabaseParent{DatabaseID: db.ID()},
		Properties: props,
	})
	if err != nil {
		return nil, notionmap.NewInternalError("failed to encode page", err)
	}
	raw, err := s.transport.Create(ctx, notionmap.ObjectKindPage, payload)
	if err != nil {
		return nil, err
	}
	return s.materializePage(ctx, raw, true)
}
