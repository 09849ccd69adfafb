package model

import (
	"fmt"
	"slices"
	"sort"

	"github.com/lychee-technology/notionmap"
	"github.com/lychee-technology/notionmap/objapi"
)

// Column is a named column descriptor.
type Column struct {
	Name string
	Type PropertyType
}

// ColumnDict is the ordered mapping of column name to descriptor.
type ColumnDict []Column

// Get returns the descriptor of the named column.
func (d ColumnDict) Get(name string) (PropertyType, bool) {
	for _, col := range d {
		if col.Name == name {
			return col.Type, true
		}
	}
	return nil, false
}

// Names returns the column names in declaration order.
func (d ColumnDict) Names() []string {
	names := make([]string, 0, len(d))
	for _, col := range d {
		names = append(names, col.Name)
	}
	return names
}

// PageSchema is the declared schema of a database: a title and an ordered set
// of columns of which exactly one is a Title column. Once the database exists
// the schema is bound to its id.
type PageSchema struct {
	title   string
	columns ColumnDict
	dbID    string
}

// NewPageSchema validates and creates a schema.
func NewPageSchema(title string, columns ...Column) (*PageSchema, error) {
	seen := make(map[string]struct{}, len(columns))
	titles := 0
	for _, col := range columns {
		if col.Name == "" {
			return nil, notionmap.NewSchemaInvalidError("column names must not be empty")
		}
		if col.Type == nil {
			return nil, notionmap.NewSchemaInvalidError(fmt.Sprintf("column '%s' has no type", col.Name))
		}
		if _, dup := seen[col.Name]; dup {
			return nil, notionmap.NewSchemaInvalidError(fmt.Sprintf("column '%s' is declared twice", col.Name))
		}
		seen[col.Name] = struct{}{}
		if _, ok := col.Type.(Title); ok {
			titles++
		}
	}
	if titles != 1 {
		return nil, notionmap.NewSchemaInvalidError(fmt.Sprintf("a schema needs exactly one title column, got %d", titles))
	}
	return &PageSchema{title: title, columns: slices.Clone(columns)}, nil
}

// MustPageSchema is NewPageSchema for declarations known to be valid.
func MustPageSchema(title string, columns ...Column) *PageSchema {
	schema, err := NewPageSchema(title, columns...)
	if err != nil {
		panic(err)
	}
	return schema
}

// DefaultSchema has a single title column called Name.
func DefaultSchema(title string) *PageSchema {
	return MustPageSchema(title, Column{Name: "Name", Type: Title{}})
}

// SchemaFromDatabase reflects the schema of a remote database. The title column
// comes first, the rest follow in name order. The result is bound to the database.
func SchemaFromDatabase(db *objapi.Database) (*PageSchema, error) {
	names := make([]string, 0, len(db.Properties))
	for name := range db.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	columns := make(ColumnDict, 0, len(names))
	for _, name := range names {
		pt, err := PropertyTypeFromObj(db.Properties[name])
		if err != nil {
			return nil, fmt.Errorf("column '%s': %w", name, err)
		}
		col := Column{Name: name, Type: pt}
		if _, ok := pt.(Title); ok {
			columns = append(ColumnDict{col}, columns...)
			continue
		}
		columns = append(columns, col)
	}

	schema, err := NewPageSchema(db.Title.PlainText(), columns...)
	if err != nil {
		return nil, err
	}
	schema.dbID = db.ID
	return schema, nil
}

func (s *PageSchema) Title() string { return s.title }

// AddColumn appends a column to the schema, e.g. the synced side of a two-way
// relation created on this schema's database by the remote.
func (s *PageSchema) AddColumn(col Column) error {
	if col.Name == "" || col.Type == nil {
		return notionmap.NewSchemaInvalidError("column needs a name and a type")
	}
	if _, ok := col.Type.(Title); ok {
		return notionmap.NewSchemaInvalidError("a schema needs exactly one title column, got 2")
	}
	if _, ok := s.columns.Get(col.Name); ok {
		return notionmap.NewSchemaInvalidError(fmt.Sprintf("column '%s' is declared twice", col.Name))
	}
	s.columns = append(s.columns, col)
	return nil
}

// ToDict returns the columns in declaration order.
func (s *PageSchema) ToDict() ColumnDict { return slices.Clone(s.columns) }

// Column returns the named column.
func (s *PageSchema) Column(name string) (Column, bool) {
	for _, col := range s.columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// TitleColumn returns the name of the title column.
func (s *PageSchema) TitleColumn() string {
	for _, col := range s.columns {
		if _, ok := col.Type.(Title); ok {
			return col.Name
		}
	}
	return ""
}

// Relations returns the relation columns in declaration order.
func (s *PageSchema) Relations() []Column {
	var out []Column
	for _, col := range s.columns {
		if _, ok := col.Type.(Relation); ok {
			out = append(out, col)
		}
	}
	return out
}

// Bind attaches the schema to the database with id dbID.
func (s *PageSchema) Bind(dbID string) { s.dbID = dbID }

// DatabaseID returns the id of the bound database.
func (s *PageSchema) DatabaseID() (string, bool) { return s.dbID, s.dbID != "" }

func (s *PageSchema) IsBound() bool { return s.dbID != "" }

// Equal reports structural equality; see Compare.
func (s *PageSchema) Equal(other *PageSchema) bool {
	return s.Compare(other) == nil
}

// Compare checks that two schemas declare the same column names with the same
// types and type configuration. Column order and schema titles are not
// compared. The returned schema mismatch error names every differing column.
func (s *PageSchema) Compare(other *PageSchema) error {
	var mismatched []string
	for _, col := range s.columns {
		theirs, ok := other.columns.Get(col.Name)
		if !ok || !sameType(s.resolve(col.Type), other.resolve(theirs)) {
			mismatched = append(mismatched, col.Name)
		}
	}
	for _, col := range other.columns {
		if _, ok := s.columns.Get(col.Name); !ok {
			mismatched = append(mismatched, col.Name)
		}
	}
	if len(mismatched) == 0 {
		return nil
	}
	sort.Strings(mismatched)
	return notionmap.NewSchemaMismatchError("schemas differ", mismatched...)
}

// resolve pins self relations to the bound database id.
func (s *PageSchema) resolve(pt PropertyType) PropertyType {
	rel, ok := pt.(Relation)
	if !ok || !rel.IsSelfRef(s) {
		return pt
	}
	rel.Self = false
	rel.Target = nil
	rel.TargetID = s.dbID
	return rel
}

// ObjRef returns the wire descriptor of col, resolving self relations.
func (s *PageSchema) ObjRef(col Column) (objapi.PropertyType, error) {
	obj, err := s.resolve(col.Type).ObjRef()
	if err != nil {
		return nil, fmt.Errorf("column '%s': %w", col.Name, err)
	}
	return obj, nil
}

func sameType(a, b PropertyType) bool {
	return a.Tag() == b.Tag() && a.sameConfig(b)
}

// CreationColumns splits the columns for creating the database of s. Columns
// that can be sent right away are returned as wire descriptors; relations to
// s itself and to schemas that are not bound yet are returned as deferred.
func (s *PageSchema) CreationColumns() (objapi.PropertyTypeMap, []Column, error) {
	props := make(objapi.PropertyTypeMap, len(s.columns))
	var deferred []Column
	for _, col := range s.columns {
		if rel, ok := col.Type.(Relation); ok {
			if _, bound := rel.TargetDatabaseID(); rel.IsSelfRef(s) || !bound {
				deferred = append(deferred, col)
				continue
			}
		}
		obj, err := s.ObjRef(col)
		if err != nil {
			return nil, nil, err
		}
		props[col.Name] = obj
	}
	return props, deferred, nil
}
