package objapi

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lychee-technology/notionmap"
)

// Page is a page object. Rows of a database are pages whose parent is the database.
type Page struct {
	Object         string          `json:"object"`
	ID             string          `json:"id"`
	CreatedTime    Instant         `json:"created_time"`
	LastEditedTime Instant         `json:"last_edited_time"`
	CreatedBy      User            `json:"created_by,omitempty"`
	LastEditedBy   User            `json:"last_edited_by,omitempty"`
	Archived       bool            `json:"archived"`
	InTrash        bool            `json:"in_trash,omitempty"`
	URL            string          `json:"url,omitempty"`
	PublicURL      *string         `json:"public_url,omitempty"`
	Parent         Parent          `json:"parent"`
	Icon           json.RawMessage `json:"icon,omitempty"`
	Cover          json.RawMessage `json:"cover,omitempty"`
	Properties     PropertyMap     `json:"properties"`
}

func (p *Page) UnmarshalJSON(data []byte) error {
	type wire Page
	var raw struct {
		wire
		CreatedBy    json.RawMessage `json:"created_by"`
		LastEditedBy json.RawMessage `json:"last_edited_by"`
		Parent       json.RawMessage `json:"parent"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Page(raw.wire)
	if p.Properties == nil {
		p.Properties = PropertyMap{}
	}
	return decodeResourceRefs(raw.CreatedBy, raw.LastEditedBy, raw.Parent, &p.CreatedBy, &p.LastEditedBy, &p.Parent)
}

// TitleProperty returns the column name and value of the page title.
func (p *Page) TitleProperty() (string, *Title, bool) {
	for name, value := range p.Properties {
		if title, ok := value.(*Title); ok {
			return name, title, true
		}
	}
	return "", nil, false
}

// Database is a database object with its column descriptors.
type Database struct {
	Object         string          `json:"object"`
	ID             string          `json:"id"`
	CreatedTime    Instant         `json:"created_time"`
	LastEditedTime Instant         `json:"last_edited_time"`
	CreatedBy      User            `json:"created_by,omitempty"`
	LastEditedBy   User            `json:"last_edited_by,omitempty"`
	Title          RichTextList    `json:"title"`
	Description    RichTextList    `json:"description,omitempty"`
	Archived       bool            `json:"archived"`
	InTrash        bool            `json:"in_trash,omitempty"`
	IsInline       bool            `json:"is_inline"`
	URL            string          `json:"url,omitempty"`
	Parent         Parent          `json:"parent"`
	Icon           json.RawMessage `json:"icon,omitempty"`
	Cover          json.RawMessage `json:"cover,omitempty"`
	Properties     PropertyTypeMap `json:"properties"`
}

func (d *Database) UnmarshalJSON(data []byte) error {
	type wire Database
	var raw struct {
		wire
		CreatedBy    json.RawMessage `json:"created_by"`
		LastEditedBy json.RawMessage `json:"last_edited_by"`
		Parent       json.RawMessage `json:"parent"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Database(raw.wire)
	if d.Title == nil {
		d.Title = RichTextList{}
	}
	if d.Properties == nil {
		d.Properties = PropertyTypeMap{}
	}
	return decodeResourceRefs(raw.CreatedBy, raw.LastEditedBy, raw.Parent, &d.CreatedBy, &d.LastEditedBy, &d.Parent)
}

func decodeResourceRefs(createdBy, lastEditedBy, parent json.RawMessage, createdDst, lastEditedDst *User, parentDst *Parent) error {
	var err error
	if *createdDst, err = DecodeUser(createdBy); err != nil {
		return fmt.Errorf("created_by: %w", err)
	}
	if *lastEditedDst, err = DecodeUser(lastEditedBy); err != nil {
		return fmt.Errorf("last_edited_by: %w", err)
	}
	if *parentDst, err = DecodeParent(parent); err != nil {
		return fmt.Errorf("parent: %w", err)
	}
	return nil
}

// Block is a content block. The type specific payload is kept raw in Content.
type Block struct {
	Object         string
	ID             string
	Type           string
	Parent         Parent
	CreatedTime    Instant
	LastEditedTime Instant
	HasChildren    bool
	Archived       bool
	Content        json.RawMessage
}

type blockWire struct {
	Object         string          `json:"object"`
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Parent         json.RawMessage `json:"parent,omitempty"`
	CreatedTime    Instant         `json:"created_time"`
	LastEditedTime Instant         `json:"last_edited_time"`
	HasChildren    bool            `json:"has_children"`
	Archived       bool            `json:"archived"`
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var head blockWire
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	if head.Type == "" {
		return notionmap.NewMissingTagError("block", "type")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	parent, err := DecodeParent(head.Parent)
	if err != nil {
		return fmt.Errorf("parent: %w", err)
	}
	*b = Block{
		Object:         head.Object,
		ID:             head.ID,
		Type:           head.Type,
		Parent:         parent,
		CreatedTime:    head.CreatedTime,
		LastEditedTime: head.LastEditedTime,
		HasChildren:    head.HasChildren,
		Archived:       head.Archived,
		Content:        fields[head.Type],
	}
	return nil
}

func (b Block) MarshalJSON() ([]byte, error) {
	head := blockWire{
		Object:         b.Object,
		ID:             b.ID,
		Type:           b.Type,
		CreatedTime:    b.CreatedTime,
		LastEditedTime: b.LastEditedTime,
		HasChildren:    b.HasChildren,
		Archived:       b.Archived,
	}
	if b.Parent != nil {
		parent, err := json.Marshal(b.Parent)
		if err != nil {
			return nil, err
		}
		head.Parent = parent
	}
	encoded, err := json.Marshal(head)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, err
	}
	content := b.Content
	if len(content) == 0 {
		content = json.RawMessage(`{}`)
	}
	fields[b.Type] = content
	return json.Marshal(fields)
}

// List is one page of results of a paginated endpoint.
type List struct {
	Object     string            `json:"object"`
	Type       string            `json:"type,omitempty"`
	Results    []json.RawMessage `json:"results"`
	NextCursor *string           `json:"next_cursor"`
	HasMore    bool              `json:"has_more"`
}

// DecodeObject dispatches a top-level resource on its "object" field and
// returns *Page, *Database, User, *Block, PropertyValue or *List.
func DecodeObject(data []byte) (any, error) {
	tag, err := probeTag(data, "object", "object")
	if err != nil {
		return nil, err
	}
	switch tag {
	case "page":
		var page Page
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, wrapDecode("page", err)
		}
		return &page, nil
	case "database":
		var db Database
		if err := json.Unmarshal(data, &db); err != nil {
			return nil, wrapDecode("database", err)
		}
		return &db, nil
	case "user":
		return DecodeUser(data)
	case "block":
		var block Block
		if err := json.Unmarshal(data, &block); err != nil {
			return nil, wrapDecode("block", err)
		}
		return &block, nil
	case "property_item":
		return DecodePropertyItem(data)
	case "list":
		var list List
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, wrapDecode("list", err)
		}
		return &list, nil
	default:
		return nil, notionmap.NewUnknownVariantError("object", tag)
	}
}

// DecodePage decodes a page payload.
func DecodePage(data []byte) (*Page, error) {
	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, wrapDecode("page", err)
	}
	return &page, nil
}

// DecodeDatabase decodes a database payload.
func DecodeDatabase(data []byte) (*Database, error) {
	var db Database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, wrapDecode("database", err)
	}
	return &db, nil
}

// DecodeBlock decodes a block payload.
func DecodeBlock(data []byte) (*Block, error) {
	var block Block
	if err := json.Unmarshal(data, &block); err != nil {
		return nil, wrapDecode("block", err)
	}
	return &block, nil
}

func wrapDecode(kind string, err error) error {
	var typed *notionmap.Error
	if errors.As(err, &typed) {
		return err
	}
	return notionmap.NewDecodeError(fmt.Sprintf("decode %s", kind), err)
}

// DatabaseCreate is the payload creating a database.
type DatabaseCreate struct {
	Parent     Parent          `json:"parent"`
	Title      RichTextList    `json:"title"`
	Properties PropertyTypeMap `json:"properties"`
	IsInline   bool            `json:"is_inline,omitempty"`
}

// DatabaseUpdate is the payload updating a database. Property entries are
// descriptors, renames (see ColumnRename) or nil to drop a column.
type DatabaseUpdate struct {
	Title      RichTextList   `json:"title,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// ColumnRename is a property update entry that only renames a column.
func ColumnRename(name string) any {
	return map[string]string{"name": name}
}

// PageCreate is the payload creating a page.
type PageCreate struct {
	Parent     Parent            `json:"parent"`
	Properties PropertyMap       `json:"properties"`
	Children   []json.RawMessage `json:"children,omitempty"`
}
