package model

import (
	"fmt"
	"time"

	"github.com/lychee-technology/notionmap"
	"github.com/lychee-technology/notionmap/objapi"
)

// DateRangeValue is the native value of a date with an end.
type DateRangeValue struct {
	Start objapi.Instant
	End   objapi.Instant
}

// NativeValue projects a property value onto a plain Go value. Numbers keep
// their int64/float64 distinction; absent scalars become nil.
func NativeValue(pv objapi.PropertyValue) (any, error) {
	switch v := pv.(type) {
	case nil:
		return nil, nil
	case *objapi.Title:
		return NewRichText(v.Title), nil
	case *objapi.RichText:
		return NewRichText(v.RichText), nil
	case *objapi.Number:
		if v.Number == nil {
			return nil, nil
		}
		return v.Number.Value(), nil
	case *objapi.Checkbox:
		if v.Checkbox == nil {
			return false, nil
		}
		return *v.Checkbox, nil
	case *objapi.Date:
		return nativeDate(objapi.ProjectDate(v.Date)), nil
	case *objapi.Status:
		return optionOrNil(v.Status), nil
	case *objapi.Select:
		return optionOrNil(v.Select), nil
	case *objapi.MultiSelect:
		return wrapOptions(v.MultiSelect), nil
	case *objapi.People:
		users := make([]*User, 0, len(v.People))
		for _, u := range v.People {
			users = append(users, NewUser(u))
		}
		return users, nil
	case *objapi.URL:
		return stringOrNil(v.URL), nil
	case *objapi.Email:
		return stringOrNil(v.Email), nil
	case *objapi.PhoneNumber:
		return stringOrNil(v.PhoneNumber), nil
	case *objapi.Files:
		files := make([]*File, 0, len(v.Files))
		for _, f := range v.Files {
			files = append(files, WrapFile(f))
		}
		return files, nil
	case *objapi.Formula:
		if v.Formula == nil {
			return nil, nil
		}
		return nativeDate(v.Formula.Value()), nil
	case *objapi.Rollup:
		if v.Rollup == nil {
			return nil, nil
		}
		return nativeDate(v.Rollup.Value()), nil
	case *objapi.Relation:
		ids := make([]string, 0, len(v.Relation))
		for _, ref := range v.Relation {
			ids = append(ids, ref.ID)
		}
		return ids, nil
	case *objapi.CreatedTime:
		return v.CreatedTime.Time, nil
	case *objapi.LastEditedTime:
		return v.LastEditedTime.Time, nil
	case *objapi.CreatedBy:
		return NewUser(v.CreatedBy), nil
	case *objapi.LastEditedBy:
		return NewUser(v.LastEditedBy), nil
	case *objapi.UniqueID:
		if v.UniqueID.Prefix == nil || *v.UniqueID.Prefix == "" {
			return v.UniqueID.Number, nil
		}
		return v.UniqueID.String(), nil
	case *objapi.Verification:
		return string(v.Verification.State), nil
	default:
		return nil, notionmap.NewUnknownVariantError("property value", pv.Type())
	}
}

func nativeDate(v any) any {
	if span, ok := v.(objapi.Span); ok {
		return DateRangeValue{Start: span.Start, End: span.End}
	}
	return v
}

func optionOrNil(opt *objapi.SelectOption) any {
	if opt == nil {
		return nil
	}
	return WrapOption(*opt)
}

func stringOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// Build converts a native value into the property value of column c.
// Computed columns are read-only.
func (c Column) Build(native any) (objapi.PropertyValue, error) {
	if c.Type.ReadOnly() {
		return nil, notionmap.NewReadOnlyPropertyError(c.Name, c.Type.Tag())
	}
	pv, err := buildValue(c.Type, native)
	if err != nil {
		return nil, fmt.Errorf("column '%s': %w", c.Name, err)
	}
	return pv, nil
}

func buildValue(pt PropertyType, native any) (objapi.PropertyValue, error) {
	tag := pt.Tag()
	if native == nil {
		return objapi.BuildPropertyValue(tag, nil)
	}

	switch pt.(type) {
	case Title, Text:
		text, err := toRichText(native)
		if err != nil {
			return nil, err
		}
		return objapi.BuildPropertyValue(tag, text.Obj())
	case Date:
		return toDateValue(native)
	case Select, Status:
		name, err := toOptionName(native)
		if err != nil {
			return nil, err
		}
		return objapi.BuildPropertyValue(tag, objapi.SelectOption{Name: name})
	case MultiSelect:
		names, err := toStrings(native, toOptionName)
		if err != nil {
			return nil, err
		}
		opts := make([]objapi.SelectOption, 0, len(names))
		for _, name := range names {
			opts = append(opts, objapi.SelectOption{Name: name})
		}
		return objapi.BuildPropertyValue(tag, opts)
	case People:
		ids, err := toStrings(native, toUserID)
		if err != nil {
			return nil, err
		}
		users := make(objapi.UserList, 0, len(ids))
		for _, id := range ids {
			users = append(users, &objapi.PartialUser{UserBase: objapi.UserBase{Object: "user", ID: id}})
		}
		return objapi.BuildPropertyValue(tag, users)
	case Files:
		urls, err := toStrings(native, toFileURL)
		if err != nil {
			return nil, err
		}
		files := make(objapi.FileList, 0, len(urls))
		for _, url := range urls {
			files = append(files, NewFile(url).Obj())
		}
		return objapi.BuildPropertyValue(tag, files)
	case Relation:
		ids, err := toStrings(native, toPageID)
		if err != nil {
			return nil, err
		}
		return objapi.NewRelation(ids...), nil
	default:
		return objapi.BuildPropertyValue(tag, native)
	}
}

func toRichText(native any) (RichText, error) {
	switch v := native.(type) {
	case RichText:
		return v, nil
	case string:
		return FromPlainText(v), nil
	default:
		return RichText{}, notionmap.NewValidationError("rich text", fmt.Sprintf("cannot use %T as text", native))
	}
}

func toDateValue(native any) (objapi.PropertyValue, error) {
	switch v := native.(type) {
	case objapi.Instant:
		return objapi.NewDate(v, nil), nil
	case DateRangeValue:
		end := v.End
		return objapi.NewDate(v.Start, &end), nil
	case time.Time:
		return objapi.NewDate(objapi.DateTime(v), nil), nil
	case string:
		inst, err := objapi.ParseInstant(v)
		if err != nil {
			return nil, notionmap.NewValidationError("date", err.Error())
		}
		return objapi.NewDate(inst, nil), nil
	default:
		return nil, notionmap.NewValidationError("date", fmt.Sprintf("cannot use %T as a date", native))
	}
}

func toOptionName(native any) (string, error) {
	switch v := native.(type) {
	case string:
		return v, nil
	case *Option:
		return v.Name(), nil
	default:
		return "", notionmap.NewValidationError("option", fmt.Sprintf("cannot use %T as an option", native))
	}
}

func toUserID(native any) (string, error) {
	switch v := native.(type) {
	case string:
		return v, nil
	case *User:
		return v.ID(), nil
	default:
		return "", notionmap.NewValidationError("people", fmt.Sprintf("cannot use %T as a user", native))
	}
}

func toFileURL(native any) (string, error) {
	switch v := native.(type) {
	case string:
		return v, nil
	case *File:
		return v.URL(), nil
	default:
		return "", notionmap.NewValidationError("files", fmt.Sprintf("cannot use %T as a file", native))
	}
}

func toPageID(native any) (string, error) {
	switch v := native.(type) {
	case string:
		return v, nil
	case *Page:
		return v.ID(), nil
	default:
		return "", notionmap.NewValidationError("relation", fmt.Sprintf("cannot use %T as a page", native))
	}
}

// toStrings accepts a single item or a slice of items.
func toStrings(native any, conv func(any) (string, error)) ([]string, error) {
	var items []any
	switch v := native.(type) {
	case []any:
		items = v
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	case []*Option:
		for _, o := range v {
			items = append(items, o)
		}
	case []*User:
		for _, u := range v {
			items = append(items, u)
		}
	case []*File:
		for _, f := range v {
			items = append(items, f)
		}
	case []*Page:
		for _, p := range v {
			items = append(items, p)
		}
	default:
		items = []any{native}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, err := conv(item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
