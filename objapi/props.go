package objapi

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/lychee-technology/notionmap"
)

// PropertyValue is the value of one column of a page. Each variant stores its
// data under a field named after its type tag.
type PropertyValue interface {
	Tagged
	PropertyID() string
}

// PropertyBase carries the opaque property id assigned by the remote.
type PropertyBase struct {
	ID string `json:"id,omitempty"`
}

func (p PropertyBase) PropertyID() string { return p.ID }

var propertyValueRegistry = NewRegistry[PropertyValue]("property value type", "type")

func init() {
	propertyValueRegistry.Register(
		func() PropertyValue { return &Title{} },
		func() PropertyValue { return &RichText{} },
		func() PropertyValue { return &Number{} },
		func() PropertyValue { return &Checkbox{} },
		func() PropertyValue { return &Date{} },
		func() PropertyValue { return &Status{} },
		func() PropertyValue { return &Select{} },
		func() PropertyValue { return &MultiSelect{} },
		func() PropertyValue { return &People{} },
		func() PropertyValue { return &URL{} },
		func() PropertyValue { return &Email{} },
		func() PropertyValue { return &PhoneNumber{} },
		func() PropertyValue { return &Files{} },
		func() PropertyValue { return &Formula{} },
		func() PropertyValue { return &Relation{} },
		func() PropertyValue { return &Rollup{} },
		func() PropertyValue { return &CreatedTime{} },
		func() PropertyValue { return &CreatedBy{} },
		func() PropertyValue { return &LastEditedTime{} },
		func() PropertyValue { return &LastEditedBy{} },
		func() PropertyValue { return &UniqueID{} },
		func() PropertyValue { return &Verification{} },
	)
}

// PropertyValueTags lists every supported property value type.
func PropertyValueTags() []string { return propertyValueRegistry.Tags() }

// DecodePropertyValue dispatches on the "type" field of data.
func DecodePropertyValue(data []byte) (PropertyValue, error) {
	return propertyValueRegistry.Decode(data)
}

// DecodePropertyItem decodes a value returned by the property item endpoint.
// Property items share the shape of property values; the "object" field is ignored.
func DecodePropertyItem(data []byte) (PropertyValue, error) {
	return propertyValueRegistry.Decode(data)
}

// NewPropertyValue returns an empty variant for tag with list fields defaulted.
func NewPropertyValue(tag string) (PropertyValue, error) {
	return propertyValueRegistry.New(tag)
}

// BuildPropertyValue builds the variant for tag with its tag-named field set to
// payload. Native numbers, values for pointer fields and slices of the element
// type are converted.
func BuildPropertyValue(tag string, payload any) (PropertyValue, error) {
	pv, err := propertyValueRegistry.New(tag)
	if err != nil {
		return nil, err
	}
	if err := setTagField(pv, tag, payload); err != nil {
		return nil, err
	}
	return pv, nil
}

var numericPtrType = reflect.TypeOf((*Numeric)(nil))

func setTagField(target any, tag string, payload any) error {
	rv := reflect.ValueOf(target).Elem()
	field, ok := fieldByJSONName(rv, tag)
	if !ok {
		return notionmap.NewInternalError(fmt.Sprintf("variant '%s' has no field '%s'", tag, tag), nil)
	}
	ft := field.Type()
	if payload == nil {
		field.Set(reflect.Zero(ft))
		if d, ok := target.(defaulter); ok {
			d.applyDefaults()
		}
		return nil
	}

	if ft == numericPtrType {
		n, err := NumericOf(payload)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(&n))
		return nil
	}

	pv := reflect.ValueOf(payload)
	switch {
	case pv.Type().AssignableTo(ft):
		field.Set(pv)
	case ft.Kind() == reflect.Pointer && pv.Type().AssignableTo(ft.Elem()):
		ptr := reflect.New(ft.Elem())
		ptr.Elem().Set(pv)
		field.Set(ptr)
	case pv.Kind() == ft.Kind() && pv.Type().ConvertibleTo(ft):
		field.Set(pv.Convert(ft))
	default:
		return notionmap.NewValidationError(tag, fmt.Sprintf("cannot build from %T", payload))
	}
	return nil
}

func fieldByJSONName(rv reflect.Value, name string) (reflect.Value, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.Anonymous {
			continue
		}
		jsonName, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if jsonName == name {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// PropertyMap is the "properties" object of a page keyed by column name.
type PropertyMap map[string]PropertyValue

func (m *PropertyMap) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*m = PropertyMap{}
		return nil
	}
	var raws map[string]json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return notionmap.NewDecodeError("properties is not an object", err)
	}
	out := make(PropertyMap, len(raws))
	for name, raw := range raws {
		pv, err := propertyValueRegistry.Decode(raw)
		if err != nil {
			return fmt.Errorf("property '%s': %w", name, err)
		}
		out[name] = pv
	}
	*m = out
	return nil
}

// PropertyValueList is a JSON array of property values, as found in array rollups.
type PropertyValueList []PropertyValue

func (l *PropertyValueList) UnmarshalJSON(data []byte) error {
	values, err := propertyValueRegistry.DecodeList(data)
	if err != nil {
		return err
	}
	*l = values
	return nil
}

type Title struct {
	PropertyBase
	Title RichTextList `json:"title"`
}

func (Title) Type() string { return "title" }

func (p *Title) applyDefaults() {
	if p.Title == nil {
		p.Title = RichTextList{}
	}
}

func (p Title) MarshalJSON() ([]byte, error) {
	p.applyDefaults()
	type wire Title
	return marshalTagged("type", p.Type(), wire(p))
}

type RichText struct {
	PropertyBase
	RichText RichTextList `json:"rich_text"`
}

func (RichText) Type() string { return "rich_text" }

func (p *RichText) applyDefaults() {
	if p.RichText == nil {
		p.RichText = RichTextList{}
	}
}

func (p RichText) MarshalJSON() ([]byte, error) {
	p.applyDefaults()
	type wire RichText
	return marshalTagged("type", p.Type(), wire(p))
}

// Number holds an integer or a float exactly as the remote sent it.
type Number struct {
	PropertyBase
	Number *Numeric `json:"number"`
}

func (Number) Type() string { return "number" }

func (p Number) MarshalJSON() ([]byte, error) {
	type wire Number
	return marshalTagged("type", p.Type(), wire(p))
}

type Checkbox struct {
	PropertyBase
	Checkbox *bool `json:"checkbox"`
}

func (Checkbox) Type() string { return "checkbox" }

func (p Checkbox) MarshalJSON() ([]byte, error) {
	type wire Checkbox
	return marshalTagged("type", p.Type(), wire(p))
}

type Date struct {
	PropertyBase
	Date *DateRange `json:"date"`
}

// NewDate builds a date value from a start and an optional end.
func NewDate(start Instant, end *Instant) *Date {
	return &Date{Date: &DateRange{Start: start, End: end}}
}

func (Date) Type() string { return "date" }

func (p Date) MarshalJSON() ([]byte, error) {
	type wire Date
	return marshalTagged("type", p.Type(), wire(p))
}

type Status struct {
	PropertyBase
	Status *SelectOption `json:"status"`
}

func (Status) Type() string { return "status" }

func (p Status) MarshalJSON() ([]byte, error) {
	type wire Status
	return marshalTagged("type", p.Type(), wire(p))
}

type Select struct {
	PropertyBase
	Select *SelectOption `json:"select"`
}

func (Select) Type() string { return "select" }

func (p Select) MarshalJSON() ([]byte, error) {
	type wire Select
	return marshalTagged("type", p.Type(), wire(p))
}

type MultiSelect struct {
	PropertyBase
	MultiSelect []SelectOption `json:"multi_select"`
}

func (MultiSelect) Type() string { return "multi_select" }

func (p *MultiSelect) applyDefaults() {
	if p.MultiSelect == nil {
		p.MultiSelect = []SelectOption{}
	}
}

func (p MultiSelect) MarshalJSON() ([]byte, error) {
	p.applyDefaults()
	type wire MultiSelect
	return marshalTagged("type", p.Type(), wire(p))
}

type People struct {
	PropertyBase
	People UserList `json:"people"`
}

func (People) Type() string { return "people" }

func (p *People) applyDefaults() {
	if p.People == nil {
		p.People = UserList{}
	}
}

func (p People) MarshalJSON() ([]byte, error) {
	p.applyDefaults()
	type wire People
	return marshalTagged("type", p.Type(), wire(p))
}

type URL struct {
	PropertyBase
	URL *string `json:"url"`
}

func (URL) Type() string { return "url" }

func (p URL) MarshalJSON() ([]byte, error) {
	type wire URL
	return marshalTagged("type", p.Type(), wire(p))
}

type Email struct {
	PropertyBase
	Email *string `json:"email"`
}

func (Email) Type() string { return "email" }

func (p Email) MarshalJSON() ([]byte, error) {
	type wire Email
	return marshalTagged("type", p.Type(), wire(p))
}

type PhoneNumber struct {
	PropertyBase
	PhoneNumber *string `json:"phone_number"`
}

func (PhoneNumber) Type() string { return "phone_number" }

func (p PhoneNumber) MarshalJSON() ([]byte, error) {
	type wire PhoneNumber
	return marshalTagged("type", p.Type(), wire(p))
}

type Files struct {
	PropertyBase
	Files FileList `json:"files"`
}

func (Files) Type() string { return "files" }

func (p *Files) applyDefaults() {
	if p.Files == nil {
		p.Files = FileList{}
	}
}

func (p Files) MarshalJSON() ([]byte, error) {
	p.applyDefaults()
	type wire Files
	return marshalTagged("type", p.Type(), wire(p))
}

// Formula is a computed value; its result is itself a tagged union.
type Formula struct {
	PropertyBase
	Formula FormulaResult `json:"formula"`
}

func (Formula) Type() string { return "formula" }

func (p Formula) MarshalJSON() ([]byte, error) {
	type wire Formula
	return marshalTagged("type", p.Type(), wire(p))
}

func (p *Formula) UnmarshalJSON(data []byte) error {
	var raw struct {
		PropertyBase
		Formula json.RawMessage `json:"formula"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result, err := formulaRegistry.DecodeOptional(raw.Formula)
	if err != nil {
		return err
	}
	p.PropertyBase = raw.PropertyBase
	p.Formula = result
	return nil
}

// Relation lists the related pages. HasMore is set when the remote truncated the list.
type Relation struct {
	PropertyBase
	Relation []ObjectReference `json:"relation"`
	HasMore  bool              `json:"has_more,omitempty"`
}

// NewRelation builds a relation value pointing at the given page ids.
func NewRelation(pageIDs ...string) *Relation {
	refs := make([]ObjectReference, 0, len(pageIDs))
	for _, id := range pageIDs {
		refs = append(refs, ObjectReference{ID: id})
	}
	return &Relation{Relation: refs}
}

func (Relation) Type() string { return "relation" }

func (p *Relation) applyDefaults() {
	if p.Relation == nil {
		p.Relation = []ObjectReference{}
	}
}

func (p Relation) MarshalJSON() ([]byte, error) {
	p.applyDefaults()
	type wire Relation
	return marshalTagged("type", p.Type(), wire(p))
}

// Rollup is an aggregation over related pages.
type Rollup struct {
	PropertyBase
	Rollup RollupObject `json:"rollup"`
}

func (Rollup) Type() string { return "rollup" }

func (p Rollup) MarshalJSON() ([]byte, error) {
	type wire Rollup
	return marshalTagged("type", p.Type(), wire(p))
}

func (p *Rollup) UnmarshalJSON(data []byte) error {
	var raw struct {
		PropertyBase
		Rollup json.RawMessage `json:"rollup"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result, err := rollupRegistry.DecodeOptional(raw.Rollup)
	if err != nil {
		return err
	}
	p.PropertyBase = raw.PropertyBase
	p.Rollup = result
	return nil
}

type CreatedTime struct {
	PropertyBase
	CreatedTime Instant `json:"created_time"`
}

func (CreatedTime) Type() string { return "created_time" }

func (p CreatedTime) MarshalJSON() ([]byte, error) {
	type wire CreatedTime
	return marshalTagged("type", p.Type(), wire(p))
}

type CreatedBy struct {
	PropertyBase
	CreatedBy User `json:"created_by"`
}

func (CreatedBy) Type() string { return "created_by" }

func (p CreatedBy) MarshalJSON() ([]byte, error) {
	type wire CreatedBy
	return marshalTagged("type", p.Type(), wire(p))
}

func (p *CreatedBy) UnmarshalJSON(data []byte) error {
	var raw struct {
		PropertyBase
		CreatedBy json.RawMessage `json:"created_by"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	user, err := DecodeUser(raw.CreatedBy)
	if err != nil {
		return err
	}
	p.PropertyBase = raw.PropertyBase
	p.CreatedBy = user
	return nil
}

type LastEditedTime struct {
	PropertyBase
	LastEditedTime Instant `json:"last_edited_time"`
}

func (LastEditedTime) Type() string { return "last_edited_time" }

func (p LastEditedTime) MarshalJSON() ([]byte, error) {
	type wire LastEditedTime
	return marshalTagged("type", p.Type(), wire(p))
}

type LastEditedBy struct {
	PropertyBase
	LastEditedBy User `json:"last_edited_by"`
}

func (LastEditedBy) Type() string { return "last_edited_by" }

func (p LastEditedBy) MarshalJSON() ([]byte, error) {
	type wire LastEditedBy
	return marshalTagged("type", p.Type(), wire(p))
}

func (p *LastEditedBy) UnmarshalJSON(data []byte) error {
	var raw struct {
		PropertyBase
		LastEditedBy json.RawMessage `json:"last_edited_by"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	user, err := DecodeUser(raw.LastEditedBy)
	if err != nil {
		return err
	}
	p.PropertyBase = raw.PropertyBase
	p.LastEditedBy = user
	return nil
}

type UniqueIDData struct {
	Number int64   `json:"number"`
	Prefix *string `json:"prefix"`
}

// String renders "PREFIX-n", or just n without a prefix.
func (d UniqueIDData) String() string {
	if d.Prefix == nil || *d.Prefix == "" {
		return fmt.Sprintf("%d", d.Number)
	}
	return fmt.Sprintf("%s-%d", *d.Prefix, d.Number)
}

type UniqueID struct {
	PropertyBase
	UniqueID UniqueIDData `json:"unique_id"`
}

func (UniqueID) Type() string { return "unique_id" }

func (p UniqueID) MarshalJSON() ([]byte, error) {
	type wire UniqueID
	return marshalTagged("type", p.Type(), wire(p))
}

type VerificationData struct {
	State      VerificationState `json:"state"`
	VerifiedBy User              `json:"verified_by"`
	Date       *DateRange        `json:"date"`
}

func (d *VerificationData) UnmarshalJSON(data []byte) error {
	var raw struct {
		State      *VerificationState `json:"state"`
		VerifiedBy json.RawMessage    `json:"verified_by"`
		Date       *DateRange         `json:"date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	user, err := DecodeUser(raw.VerifiedBy)
	if err != nil {
		return err
	}
	d.State = VerificationStateUnverified
	if raw.State != nil {
		d.State = *raw.State
	}
	d.VerifiedBy = user
	d.Date = raw.Date
	return nil
}

type Verification struct {
	PropertyBase
	Verification VerificationData `json:"verification"`
}

func (Verification) Type() string { return "verification" }

func (p *Verification) applyDefaults() {
	if p.Verification.State == "" {
		p.Verification.State = VerificationStateUnverified
	}
}

func (p Verification) MarshalJSON() ([]byte, error) {
	p.applyDefaults()
	type wire Verification
	return marshalTagged("type", p.Type(), wire(p))
}
