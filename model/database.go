package model

import (
	"github.com/lychee-technology/notionmap/objapi"
)

// Database wraps a database and the schema its rows follow.
type Database struct {
	obj      *objapi.Database
	schema   *PageSchema
	declared bool
}

// NewDatabase wraps a wire database and reflects its schema.
func NewDatabase(obj *objapi.Database) (*Database, error) {
	schema, err := SchemaFromDatabase(obj)
	if err != nil {
		return nil, err
	}
	return &Database{obj: obj, schema: schema}, nil
}

func (d *Database) ID() string            { return d.obj.ID }
func (d *Database) URL() string           { return d.obj.URL }
func (d *Database) Archived() bool        { return d.obj.Archived }
func (d *Database) IsInline() bool        { return d.obj.IsInline }
func (d *Database) Parent() objapi.Parent { return d.obj.Parent }
func (d *Database) Title() RichText       { return NewRichText(d.obj.Title) }
func (d *Database) Description() RichText { return NewRichText(d.obj.Description) }
func (d *Database) Obj() *objapi.Database { return d.obj }
func (d *Database) Schema() *PageSchema   { return d.schema }
func (d *Database) String() string        { return d.Title().String() }

// Reload replaces the wire object after an update. A declared schema is kept;
// a reflected one is reflected again.
func (d *Database) Reload(obj *objapi.Database) error {
	if d.declared {
		d.obj = obj
		return nil
	}
	reflected, err := SchemaFromDatabase(obj)
	if err != nil {
		return err
	}
	d.obj = obj
	d.schema = reflected
	return nil
}

// Adopt binds a declared schema without comparing it, for databases created
// from that schema whose deferred relation columns are still being wired.
func (d *Database) Adopt(schema *PageSchema) {
	schema.Bind(d.obj.ID)
	d.schema = schema
	d.declared = true
}

// HasDeclaredSchema reports whether the schema was declared rather than reflected.
func (d *Database) HasDeclaredSchema() bool { return d.declared }

// SetSchema replaces the reflected schema by a declared one. The declared
// schema must match the remote schema column by column; a mismatch is a
// schema mismatch error naming the columns and leaves the database untouched.
func (d *Database) SetSchema(schema *PageSchema) error {
	reflected, err := SchemaFromDatabase(d.obj)
	if err != nil {
		return err
	}
	if err := schema.Compare(reflected); err != nil {
		return err
	}
	schema.Bind(d.obj.ID)
	d.schema = schema
	d.declared = true
	return nil
}
