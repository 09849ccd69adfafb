package model

import (
	"fmt"
	"slices"

	"github.com/lychee-technology/notionmap"
	"github.com/lychee-technology/notionmap/objapi"
)

// PropertyType declares the type of a column and its type specific configuration.
// The set of descriptors is closed.
type PropertyType interface {
	// Tag is the wire type of the column.
	Tag() string
	// ReadOnly reports whether values are computed by the remote.
	ReadOnly() bool
	// ObjRef returns the wire descriptor used when creating or updating a database.
	ObjRef() (objapi.PropertyType, error)

	sameConfig(other PropertyType) bool
}

type simpleType struct{}

func (simpleType) ReadOnly() bool { return false }

type computedType struct{}

func (computedType) ReadOnly() bool { return true }

// Title is the column holding the human readable key of a row.
type Title struct{ simpleType }

func (Title) Tag() string                          { return "title" }
func (Title) ObjRef() (objapi.PropertyType, error) { return &objapi.TitleType{}, nil }
func (Title) sameConfig(PropertyType) bool         { return true }

// Text is a rich text column.
type Text struct{ simpleType }

func (Text) Tag() string                          { return "rich_text" }
func (Text) ObjRef() (objapi.PropertyType, error) { return &objapi.RichTextType{}, nil }
func (Text) sameConfig(PropertyType) bool         { return true }

// Number is a number column with a display format.
type Number struct {
	simpleType
	Format objapi.NumberFormat
}

func (Number) Tag() string { return "number" }

func (n Number) format() objapi.NumberFormat {
	if n.Format == "" {
		return objapi.NumberFormatNumber
	}
	return n.Format
}

func (n Number) ObjRef() (objapi.PropertyType, error) {
	return &objapi.NumberType{Number: objapi.NumberConfig{Format: n.format()}}, nil
}

func (n Number) sameConfig(other PropertyType) bool {
	o, ok := other.(Number)
	return ok && n.format() == o.format()
}

// Select is a single choice column.
type Select struct {
	simpleType
	Options []*Option
}

func (Select) Tag() string { return "select" }

func (s Select) ObjRef() (objapi.PropertyType, error) {
	return &objapi.SelectType{Select: objapi.SelectConfig{Options: optionObjs(s.Options)}}, nil
}

func (s Select) sameConfig(other PropertyType) bool {
	o, ok := other.(Select)
	return ok && sameOptionNames(s.Options, o.Options)
}

// MultiSelect is a multiple choice column.
type MultiSelect struct {
	simpleType
	Options []*Option
}

func (MultiSelect) Tag() string { return "multi_select" }

func (s MultiSelect) ObjRef() (objapi.PropertyType, error) {
	return &objapi.MultiSelectType{MultiSelect: objapi.SelectConfig{Options: optionObjs(s.Options)}}, nil
}

func (s MultiSelect) sameConfig(other PropertyType) bool {
	o, ok := other.(MultiSelect)
	return ok && sameOptionNames(s.Options, o.Options)
}

// Status is a workflow state column. The remote creates its default options
// and groups; Options only takes part in comparisons when declared.
type Status struct {
	simpleType
	Options []*Option
}

func (Status) Tag() string { return "status" }

func (s Status) ObjRef() (objapi.PropertyType, error) {
	return &objapi.StatusType{}, nil
}

func (s Status) sameConfig(other PropertyType) bool {
	o, ok := other.(Status)
	if !ok {
		return false
	}
	return len(s.Options) == 0 || sameOptionNames(s.Options, o.Options)
}

type Date struct{ simpleType }

func (Date) Tag() string                          { return "date" }
func (Date) ObjRef() (objapi.PropertyType, error) { return &objapi.DateType{}, nil }
func (Date) sameConfig(PropertyType) bool         { return true }

type People struct{ simpleType }

func (People) Tag() string                          { return "people" }
func (People) ObjRef() (objapi.PropertyType, error) { return &objapi.PeopleType{}, nil }
func (People) sameConfig(PropertyType) bool         { return true }

type Files struct{ simpleType }

func (Files) Tag() string                          { return "files" }
func (Files) ObjRef() (objapi.PropertyType, error) { return &objapi.FilesType{}, nil }
func (Files) sameConfig(PropertyType) bool         { return true }

type Checkbox struct{ simpleType }

func (Checkbox) Tag() string                          { return "checkbox" }
func (Checkbox) ObjRef() (objapi.PropertyType, error) { return &objapi.CheckboxType{}, nil }
func (Checkbox) sameConfig(PropertyType) bool         { return true }

type URL struct{ simpleType }

func (URL) Tag() string                          { return "url" }
func (URL) ObjRef() (objapi.PropertyType, error) { return &objapi.URLType{}, nil }
func (URL) sameConfig(PropertyType) bool         { return true }

type Email struct{ simpleType }

func (Email) Tag() string                          { return "email" }
func (Email) ObjRef() (objapi.PropertyType, error) { return &objapi.EmailType{}, nil }
func (Email) sameConfig(PropertyType) bool         { return true }

type PhoneNumber struct{ simpleType }

func (PhoneNumber) Tag() string                          { return "phone_number" }
func (PhoneNumber) ObjRef() (objapi.PropertyType, error) { return &objapi.PhoneNumberType{}, nil }
func (PhoneNumber) sameConfig(PropertyType) bool         { return true }

// Formula is a column computed from an expression over the row.
type Formula struct {
	computedType
	Expression string
}

func (Formula) Tag() string { return "formula" }

func (f Formula) ObjRef() (objapi.PropertyType, error) {
	return &objapi.FormulaType{Formula: objapi.FormulaConfig{Expression: f.Expression}}, nil
}

func (f Formula) sameConfig(other PropertyType) bool {
	o, ok := other.(Formula)
	return ok && f.Expression == o.Expression
}

// Relation links rows to pages of another database. Target is the schema of
// that database, or nil with TargetID set for databases without a local schema.
// Self relations point at the database declaring them.
// A relation is two-way when BackName names the synced column on the target.
type Relation struct {
	simpleType
	Target   *PageSchema
	TargetID string
	Self     bool
	BackName string
}

func (Relation) Tag() string { return "relation" }

// IsTwoWay reports whether the target keeps a synced back-relation column.
func (r Relation) IsTwoWay() bool { return r.BackName != "" }

// IsSelfRef reports whether the relation points back at schema.
func (r Relation) IsSelfRef(schema *PageSchema) bool {
	return r.Self || (r.Target != nil && r.Target == schema)
}

// TargetDatabaseID resolves the id of the target database.
func (r Relation) TargetDatabaseID() (string, bool) {
	if r.Target != nil {
		return r.Target.DatabaseID()
	}
	return r.TargetID, r.TargetID != ""
}

func (r Relation) ObjRef() (objapi.PropertyType, error) {
	id, ok := r.TargetDatabaseID()
	if !ok {
		title := ""
		if r.Target != nil {
			title = r.Target.Title()
		}
		return nil, notionmap.NewSchemaUnboundError(title)
	}
	if r.IsTwoWay() {
		return objapi.NewDualRelation(id), nil
	}
	return objapi.NewSingleRelation(id), nil
}

// sameConfig compares target ids only when both sides know theirs.
func (r Relation) sameConfig(other PropertyType) bool {
	o, ok := other.(Relation)
	if !ok || r.BackName != o.BackName {
		return false
	}
	mine, okMine := r.TargetDatabaseID()
	theirs, okTheirs := o.TargetDatabaseID()
	if !okMine || !okTheirs {
		return true
	}
	return mine == theirs
}

// Rollup aggregates a column of the pages linked by a relation column.
type Rollup struct {
	computedType
	Relation string
	Property string
	Function objapi.Function
}

func (Rollup) Tag() string { return "rollup" }

func (r Rollup) ObjRef() (objapi.PropertyType, error) {
	return &objapi.RollupType{Rollup: objapi.RollupConfig{
		RelationPropertyName: r.Relation,
		RollupPropertyName:   r.Property,
		Function:             r.Function,
	}}, nil
}

func (r Rollup) sameConfig(other PropertyType) bool {
	o, ok := other.(Rollup)
	return ok && r == o
}

type CreatedTime struct{ computedType }

func (CreatedTime) Tag() string                          { return "created_time" }
func (CreatedTime) ObjRef() (objapi.PropertyType, error) { return &objapi.CreatedTimeType{}, nil }
func (CreatedTime) sameConfig(PropertyType) bool         { return true }

type CreatedBy struct{ computedType }

func (CreatedBy) Tag() string                          { return "created_by" }
func (CreatedBy) ObjRef() (objapi.PropertyType, error) { return &objapi.CreatedByType{}, nil }
func (CreatedBy) sameConfig(PropertyType) bool         { return true }

type LastEditedTime struct{ computedType }

func (LastEditedTime) Tag() string                          { return "last_edited_time" }
func (LastEditedTime) ObjRef() (objapi.PropertyType, error) { return &objapi.LastEditedTimeType{}, nil }
func (LastEditedTime) sameConfig(PropertyType) bool         { return true }

type LastEditedBy struct{ computedType }

func (LastEditedBy) Tag() string                          { return "last_edited_by" }
func (LastEditedBy) ObjRef() (objapi.PropertyType, error) { return &objapi.LastEditedByType{}, nil }
func (LastEditedBy) sameConfig(PropertyType) bool         { return true }

// ID is an auto-incrementing unique id with an optional prefix.
type ID struct {
	computedType
	Prefix string
}

func (ID) Tag() string { return "unique_id" }

func (i ID) ObjRef() (objapi.PropertyType, error) {
	cfg := objapi.UniqueIDConfig{}
	if i.Prefix != "" {
		prefix := i.Prefix
		cfg.Prefix = &prefix
	}
	return &objapi.UniqueIDType{UniqueID: cfg}, nil
}

func (i ID) sameConfig(other PropertyType) bool {
	o, ok := other.(ID)
	return ok && i.Prefix == o.Prefix
}

type Verification struct{ computedType }

func (Verification) Tag() string                          { return "verification" }
func (Verification) ObjRef() (objapi.PropertyType, error) { return &objapi.VerificationType{}, nil }
func (Verification) sameConfig(PropertyType) bool         { return true }

// PropertyTypeFromObj converts a wire descriptor into its model descriptor.
func PropertyTypeFromObj(obj objapi.PropertyType) (PropertyType, error) {
	switch v := obj.(type) {
	case *objapi.TitleType:
		return Title{}, nil
	case *objapi.RichTextType:
		return Text{}, nil
	case *objapi.NumberType:
		return Number{Format: v.Number.Format}, nil
	case *objapi.SelectType:
		return Select{Options: wrapOptions(v.Select.Options)}, nil
	case *objapi.MultiSelectType:
		return MultiSelect{Options: wrapOptions(v.MultiSelect.Options)}, nil
	case *objapi.StatusType:
		return Status{Options: wrapOptions(v.Status.Options)}, nil
	case *objapi.DateType:
		return Date{}, nil
	case *objapi.PeopleType:
		return People{}, nil
	case *objapi.FilesType:
		return Files{}, nil
	case *objapi.CheckboxType:
		return Checkbox{}, nil
	case *objapi.URLType:
		return URL{}, nil
	case *objapi.EmailType:
		return Email{}, nil
	case *objapi.PhoneNumberType:
		return PhoneNumber{}, nil
	case *objapi.FormulaType:
		return Formula{Expression: v.Formula.Expression}, nil
	case *objapi.RelationType:
		rel := Relation{TargetID: v.Relation.DatabaseID}
		if v.Relation.DualProperty != nil {
			rel.BackName = v.Relation.DualProperty.SyncedPropertyName
		}
		return rel, nil
	case *objapi.RollupType:
		return Rollup{
			Relation: v.Rollup.RelationPropertyName,
			Property: v.Rollup.RollupPropertyName,
			Function: v.Rollup.Function,
		}, nil
	case *objapi.CreatedTimeType:
		return CreatedTime{}, nil
	case *objapi.CreatedByType:
		return CreatedBy{}, nil
	case *objapi.LastEditedTimeType:
		return LastEditedTime{}, nil
	case *objapi.LastEditedByType:
		return LastEditedBy{}, nil
	case *objapi.UniqueIDType:
		id := ID{}
		if v.UniqueID.Prefix != nil {
			id.Prefix = *v.UniqueID.Prefix
		}
		return id, nil
	case *objapi.VerificationType:
		return Verification{}, nil
	default:
		return nil, notionmap.NewUnknownVariantError("property type", fmt.Sprintf("%T", obj))
	}
}

func optionObjs(options []*Option) []objapi.SelectOption {
	out := make([]objapi.SelectOption, 0, len(options))
	for _, opt := range options {
		out = append(out, opt.Obj())
	}
	return out
}

func wrapOptions(objs []objapi.SelectOption) []*Option {
	out := make([]*Option, 0, len(objs))
	for _, obj := range objs {
		out = append(out, WrapOption(obj))
	}
	return out
}

func sameOptionNames(a, b []*Option) bool {
	names := func(opts []*Option) []string {
		out := make([]string, 0, len(opts))
		for _, opt := range opts {
			out = append(out, opt.Name())
		}
		slices.Sort(out)
		return out
	}
	return slices.Equal(names(a), names(b))
}
