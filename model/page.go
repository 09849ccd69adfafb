package model

import (
	"encoding/json"
	"time"

	"github.com/lychee-technology/notionmap"
	"github.com/lychee-technology/notionmap/objapi"
)

// TitleKey is the key under which ToDict stores the title of a page.
const TitleKey = "title"

// Page wraps a page, usually a row of a database.
type Page struct {
	obj *objapi.Page
}

// NewPage wraps a wire page.
func NewPage(obj *objapi.Page) *Page { return &Page{obj: obj} }

func (p *Page) ID() string                { return p.obj.ID }
func (p *Page) URL() string               { return p.obj.URL }
func (p *Page) Archived() bool            { return p.obj.Archived }
func (p *Page) Parent() objapi.Parent     { return p.obj.Parent }
func (p *Page) CreatedTime() time.Time    { return p.obj.CreatedTime.Time }
func (p *Page) LastEditedTime() time.Time { return p.obj.LastEditedTime.Time }
func (p *Page) Obj() *objapi.Page         { return p.obj }

// Reload replaces the wire object, keeping the wrapper identity.
func (p *Page) Reload(obj *objapi.Page) { p.obj = obj }

// MarshalJSON encodes a page as its id, the way relation cells reference it.
func (p *Page) MarshalJSON() ([]byte, error) { return json.Marshal(p.obj.ID) }

// DatabaseID returns the id of the parent database for rows.
func (p *Page) DatabaseID() (string, bool) {
	parent, ok := p.obj.Parent.(*objapi.DatabaseParent)
	if !ok {
		return "", false
	}
	return parent.DatabaseID, true
}

// Title returns the title of the page.
func (p *Page) Title() RichText {
	_, title, ok := p.obj.TitleProperty()
	if !ok {
		return RichText{}
	}
	return NewRichText(title.Title)
}

// TitleColumn returns the name of the column holding the title.
func (p *Page) TitleColumn() string {
	name, _, _ := p.obj.TitleProperty()
	return name
}

// Columns returns the names of all properties of the page.
func (p *Page) Columns() []string {
	names := make([]string, 0, len(p.obj.Properties))
	for name := range p.obj.Properties {
		names = append(names, name)
	}
	return names
}

// Property returns the raw property value of column.
func (p *Page) Property(column string) (objapi.PropertyValue, error) {
	pv, ok := p.obj.Properties[column]
	if !ok {
		return nil, notionmap.NewMissingKeyError(column)
	}
	return pv, nil
}

// Get returns the native value of column. Unknown columns are a missing key error.
func (p *Page) Get(column string) (any, error) {
	pv, err := p.Property(column)
	if err != nil {
		return nil, err
	}
	return NativeValue(pv)
}

// ToDict converts every property to its native value. The title is stored
// under TitleKey instead of its column name.
func (p *Page) ToDict() (map[string]any, error) {
	out := make(map[string]any, len(p.obj.Properties))
	titleColumn := p.TitleColumn()
	for name, pv := range p.obj.Properties {
		value, err := NativeValue(pv)
		if err != nil {
			return nil, err
		}
		if name == titleColumn {
			out[TitleKey] = value
			continue
		}
		out[name] = value
	}
	return out, nil
}

func (p *Page) String() string {
	if title := p.Title(); !title.IsEmpty() {
		return title.String()
	}
	return p.obj.ID
}
