package objapi

import (
	"encoding/json"
	"fmt"

	"github.com/lychee-technology/notionmap"
)

// PropertyType describes a database column: its type tag and type specific configuration.
type PropertyType interface {
	Tagged
	PropertyID() string
	PropertyName() string
}

// PropertyTypeBase carries the id and name the remote assigns to a column.
type PropertyTypeBase struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

func (p PropertyTypeBase) PropertyID() string   { return p.ID }
func (p PropertyTypeBase) PropertyName() string { return p.Name }

var propertyTypeRegistry = func() *Registry[PropertyType] {
	r := NewRegistry[PropertyType]("property type", "type")
	r.Register(
		func() PropertyType { return &TitleType{} },
		func() PropertyType { return &RichTextType{} },
		func() PropertyType { return &NumberType{} },
		func() PropertyType { return &SelectType{} },
		func() PropertyType { return &MultiSelectType{} },
		func() PropertyType { return &StatusType{} },
		func() PropertyType { return &DateType{} },
		func() PropertyType { return &PeopleType{} },
		func() PropertyType { return &FilesType{} },
		func() PropertyType { return &CheckboxType{} },
		func() PropertyType { return &URLType{} },
		func() PropertyType { return &EmailType{} },
		func() PropertyType { return &PhoneNumberType{} },
		func() PropertyType { return &FormulaType{} },
		func() PropertyType { return &RelationType{} },
		func() PropertyType { return &RollupType{} },
		func() PropertyType { return &CreatedTimeType{} },
		func() PropertyType { return &CreatedByType{} },
		func() PropertyType { return &LastEditedTimeType{} },
		func() PropertyType { return &LastEditedByType{} },
		func() PropertyType { return &UniqueIDType{} },
		func() PropertyType { return &VerificationType{} },
	)
	return r
}()

// PropertyTypeTags lists every supported column type.
func PropertyTypeTags() []string { return propertyTypeRegistry.Tags() }

// DecodePropertyType dispatches a column descriptor on its "type" field.
func DecodePropertyType(data []byte) (PropertyType, error) {
	return propertyTypeRegistry.Decode(data)
}

// NewPropertyType returns an unconfigured descriptor for tag.
func NewPropertyType(tag string) (PropertyType, error) {
	return propertyTypeRegistry.New(tag)
}

// PropertyTypeMap is the "properties" object of a database keyed by column name.
type PropertyTypeMap map[string]PropertyType

func (m *PropertyTypeMap) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*m = PropertyTypeMap{}
		return nil
	}
	var raws map[string]json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return notionmap.NewDecodeError("properties is not an object", err)
	}
	out := make(PropertyTypeMap, len(raws))
	for name, raw := range raws {
		pt, err := propertyTypeRegistry.Decode(raw)
		if err != nil {
			return fmt.Errorf("column '%s': %w", name, err)
		}
		out[name] = pt
	}
	*m = out
	return nil
}

type NumberConfig struct {
	Format NumberFormat `json:"format"`
}

type NumberType struct {
	PropertyTypeBase
	Number NumberConfig `json:"number"`
}

func (NumberType) Type() string { return "number" }

func (p *NumberType) applyDefaults() {
	if p.Number.Format == "" {
		p.Number.Format = NumberFormatNumber
	}
}

func (p NumberType) MarshalJSON() ([]byte, error) {
	p.applyDefaults()
	type wire NumberType
	return marshalTagged("type", p.Type(), wire(p))
}

type SelectConfig struct {
	Options []SelectOption `json:"options"`
}

type SelectType struct {
	PropertyTypeBase
	Select SelectConfig `json:"select"`
}

func (SelectType) Type() string { return "select" }

func (p *SelectType) applyDefaults() {
	if p.Select.Options == nil {
		p.Select.Options = []SelectOption{}
	}
}

func (p SelectType) MarshalJSON() ([]byte, error) {
	p.applyDefaults()
	type wire SelectType
	return marshalTagged("type", p.Type(), wire(p))
}

type MultiSelectType struct {
	PropertyTypeBase
	MultiSelect SelectConfig `json:"multi_select"`
}

func (MultiSelectType) Type() string { return "multi_select" }

func (p *MultiSelectType) applyDefaults() {
	if p.MultiSelect.Options == nil {
		p.MultiSelect.Options = []SelectOption{}
	}
}

func (p MultiSelectType) MarshalJSON() ([]byte, error) {
	p.applyDefaults()
	type wire MultiSelectType
	return marshalTagged("type", p.Type(), wire(p))
}

type StatusConfig struct {
	Options []SelectOption `json:"options"`
	Groups  []StatusGroup  `json:"groups"`
}

type StatusType struct {
	PropertyTypeBase
	Status StatusConfig `json:"status"`
}

func (StatusType) Type() string { return "status" }

func (p *StatusType) applyDefaults() {
	if p.Status.Options == nil {
		p.Status.Options = []SelectOption{}
	}
	if p.Status.Groups == nil {
		p.Status.Groups = []StatusGroup{}
	}
}

func (p StatusType) MarshalJSON() ([]byte, error) {
	p.applyDefaults()
	type wire StatusType
	return marshalTagged("type", p.Type(), wire(p))
}

type FormulaConfig struct {
	Expression string `json:"expression"`
}

type FormulaType struct {
	PropertyTypeBase
	Formula FormulaConfig `json:"formula"`
}

func (FormulaType) Type() string { return "formula" }

func (p FormulaType) MarshalJSON() ([]byte, error) {
	type wire FormulaType
	return marshalTagged("type", p.Type(), wire(p))
}

const (
	RelationSingleProperty = "single_property"
	RelationDualProperty   = "dual_property"
)

type DualPropertyConfig struct {
	SyncedPropertyName string `json:"synced_property_name,omitempty"`
	SyncedPropertyID   string `json:"synced_property_id,omitempty"`
}

// RelationConfig points a relation column at its target database. A dual
// property relation also owns a synced column on the target.
type RelationConfig struct {
	DatabaseID     string              `json:"database_id"`
	Type           string              `json:"type,omitempty"`
	SingleProperty *EmptyConfig        `json:"single_property,omitempty"`
	DualProperty   *DualPropertyConfig `json:"dual_property,omitempty"`
}

// IsTwoWay reports whether the relation keeps a synced column on the target.
func (c RelationConfig) IsTwoWay() bool {
	return c.Type == RelationDualProperty || c.DualProperty != nil
}

type RelationType struct {
	PropertyTypeBase
	Relation RelationConfig `json:"relation"`
}

// NewSingleRelation returns a one-way relation to databaseID.
func NewSingleRelation(databaseID string) *RelationType {
	return &RelationType{Relation: RelationConfig{
		DatabaseID:     databaseID,
		Type:           RelationSingleProperty,
		SingleProperty: &EmptyConfig{},
	}}
}

// NewDualRelation returns a two-way relation to databaseID.
func NewDualRelation(databaseID string) *RelationType {
	return &RelationType{Relation: RelationConfig{
		DatabaseID:   databaseID,
		Type:         RelationDualProperty,
		DualProperty: &DualPropertyConfig{},
	}}
}

func (RelationType) Type() string { return "relation" }

func (p RelationType) MarshalJSON() ([]byte, error) {
	type wire RelationType
	return marshalTagged("type", p.Type(), wire(p))
}

type RollupConfig struct {
	RelationPropertyName string   `json:"relation_property_name,omitempty"`
	RelationPropertyID   string   `json:"relation_property_id,omitempty"`
	RollupPropertyName   string   `json:"rollup_property_name,omitempty"`
	RollupPropertyID     string   `json:"rollup_property_id,omitempty"`
	Function             Function `json:"function"`
}

type RollupType struct {
	PropertyTypeBase
	Rollup RollupConfig `json:"rollup"`
}

func (RollupType) Type() string { return "rollup" }

func (p RollupType) MarshalJSON() ([]byte, error) {
	type wire RollupType
	return marshalTagged("type", p.Type(), wire(p))
}

type UniqueIDConfig struct {
	Prefix *string `json:"prefix"`
}

type UniqueIDType struct {
	PropertyTypeBase
	UniqueID UniqueIDConfig `json:"unique_id"`
}

func (UniqueIDType) Type() string { return "unique_id" }

func (p UniqueIDType) MarshalJSON() ([]byte, error) {
	type wire UniqueIDType
	return marshalTagged("type", p.Type(), wire(p))
}

type TitleType struct {
	PropertyTypeBase
	Title EmptyConfig `json:"title"`
}

func (TitleType) Type() string { return "title" }

func (p TitleType) MarshalJSON() ([]byte, error) {
	type wire TitleType
	return marshalTagged("type", p.Type(), wire(p))
}

type RichTextType struct {
	PropertyTypeBase
	RichText EmptyConfig `json:"rich_text"`
}

func (RichTextType) Type() string { return "rich_text" }

func (p RichTextType) MarshalJSON() ([]byte, error) {
	type wire RichTextType
	return marshalTagged("type", p.Type(), wire(p))
}

type DateType struct {
	PropertyTypeBase
	Date EmptyConfig `json:"date"`
}

func (DateType) Type() string { return "date" }

func (p DateType) MarshalJSON() ([]byte, error) {
	type wire DateType
	return marshalTagged("type", p.Type(), wire(p))
}

type PeopleType struct {
	PropertyTypeBase
	People EmptyConfig `json:"people"`
}

func (PeopleType) Type() string { return "people" }

func (p PeopleType) MarshalJSON() ([]byte, error) {
	type wire PeopleType
	return marshalTagged("type", p.Type(), wire(p))
}

type FilesType struct {
	PropertyTypeBase
	Files EmptyConfig `json:"files"`
}

func (FilesType) Type() string { return "files" }

func (p FilesType) MarshalJSON() ([]byte, error) {
	type wire FilesType
	return marshalTagged("type", p.Type(), wire(p))
}

type CheckboxType struct {
	PropertyTypeBase
	Checkbox EmptyConfig `json:"checkbox"`
}

func (CheckboxType) Type() string { return "checkbox" }

func (p CheckboxType) MarshalJSON() ([]byte, error) {
	type wire CheckboxType
	return marshalTagged("type", p.Type(), wire(p))
}

type URLType struct {
	PropertyTypeBase
	URL EmptyConfig `json:"url"`
}

func (URLType) Type() string { return "url" }

func (p URLType) MarshalJSON() ([]byte, error) {
	type wire URLType
	return marshalTagged("type", p.Type(), wire(p))
}

type EmailType struct {
	PropertyTypeBase
	Email EmptyConfig `json:"email"`
}

func (EmailType) Type() string { return "email" }

func (p EmailType) MarshalJSON() ([]byte, error) {
	type wire EmailType
	return marshalTagged("type", p.Type(), wire(p))
}

type PhoneNumberType struct {
	PropertyTypeBase
	PhoneNumber EmptyConfig `json:"phone_number"`
}

func (PhoneNumberType) Type() string { return "phone_number" }

func (p PhoneNumberType) MarshalJSON() ([]byte, error) {
	type wire PhoneNumberType
	return marshalTagged("type", p.Type(), wire(p))
}

type CreatedTimeType struct {
	PropertyTypeBase
	CreatedTime EmptyConfig `json:"created_time"`
}

func (CreatedTimeType) Type() string { return "created_time" }

func (p CreatedTimeType) MarshalJSON() ([]byte, error) {
	type wire CreatedTimeType
	return marshalTagged("type", p.Type(), wire(p))
}

type CreatedByType struct {
	PropertyTypeBase
	CreatedBy EmptyConfig `json:"created_by"`
}

func (CreatedByType) Type() string { return "created_by" }

func (p CreatedByType) MarshalJSON() ([]byte, error) {
	type wire CreatedByType
	return marshalTagged("type", p.Type(), wire(p))
}

type LastEditedTimeType struct {
	PropertyTypeBase
	LastEditedTime EmptyConfig `json:"last_edited_time"`
}

func (LastEditedTimeType) Type() string { return "last_edited_time" }

func (p LastEditedTimeType) MarshalJSON() ([]byte, error) {
	type wire LastEditedTimeType
	return marshalTagged("type", p.Type(), wire(p))
}

type LastEditedByType struct {
	PropertyTypeBase
	LastEditedBy EmptyConfig `json:"last_edited_by"`
}

func (LastEditedByType) Type() string { return "last_edited_by" }

func (p LastEditedByType) MarshalJSON() ([]byte, error) {
	type wire LastEditedByType
	return marshalTagged("type", p.Type(), wire(p))
}

type VerificationType struct {
	PropertyTypeBase
	Verification EmptyConfig `json:"verification"`
}

func (VerificationType) Type() string { return "verification" }

func (p VerificationType) MarshalJSON() ([]byte, error) {
	type wire VerificationType
	return marshalTagged("type", p.Type(), wire(p))
}
