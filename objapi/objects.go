package objapi

import (
	"encoding/json"
	"fmt"
)

// SelectOption is an option of a select, multi-select or status column.
type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color Color  `json:"color,omitempty"`
}

// StatusGroup groups status options.
type StatusGroup struct {
	ID        string   `json:"id,omitempty"`
	Name      string   `json:"name"`
	Color     Color    `json:"color,omitempty"`
	OptionIDs []string `json:"option_ids"`
}

// ObjectReference points at another object by id.
type ObjectReference struct {
	ID string `json:"id"`
}

// FileObject is a file attached to a page or a files column.
type FileObject interface {
	Tagged
	FileURL() string
	FileName() string
}

type FileBase struct {
	Name *string `json:"name,omitempty"`
}

func (f FileBase) FileName() string {
	if f.Name == nil {
		return ""
	}
	return *f.Name
}

type ExternalData struct {
	URL string `json:"url"`
}

// ExternalFile is a file hosted outside the workspace.
type ExternalFile struct {
	FileBase
	External ExternalData `json:"external"`
}

func (ExternalFile) Type() string      { return "external" }
func (f ExternalFile) FileURL() string { return f.External.URL }

func (f ExternalFile) MarshalJSON() ([]byte, error) {
	type wire ExternalFile
	return marshalTagged("type", f.Type(), wire(f))
}

type HostedData struct {
	URL        string   `json:"url"`
	ExpiryTime *Instant `json:"expiry_time,omitempty"`
}

// HostedFile is a file uploaded to the workspace; its URL expires.
type HostedFile struct {
	FileBase
	File HostedData `json:"file"`
}

func (HostedFile) Type() string      { return "file" }
func (f HostedFile) FileURL() string { return f.File.URL }

func (f HostedFile) MarshalJSON() ([]byte, error) {
	type wire HostedFile
	return marshalTagged("type", f.Type(), wire(f))
}

var fileRegistry = func() *Registry[FileObject] {
	r := NewRegistry[FileObject]("file type", "type")
	r.Register(
		func() FileObject { return &ExternalFile{} },
		func() FileObject { return &HostedFile{} },
	)
	return r
}()

// DecodeFile decodes a file object.
func DecodeFile(data []byte) (FileObject, error) {
	return fileRegistry.DecodeOptional(data)
}

// FileList is a JSON array of file objects.
type FileList []FileObject

func (l *FileList) UnmarshalJSON(data []byte) error {
	files, err := fileRegistry.DecodeList(data)
	if err != nil {
		return err
	}
	*l = files
	return nil
}

// Parent locates an object in the workspace hierarchy.
type Parent interface {
	Tagged
	ParentID() string
}

type PageParent struct {
	PageID string `json:"page_id"`
}

func (PageParent) Type() string       { return "page_id" }
func (p PageParent) ParentID() string { return p.PageID }

func (p PageParent) MarshalJSON() ([]byte, error) {
	type wire PageParent
	return marshalTagged("type", p.Type(), wire(p))
}

type DatabaseParent struct {
	DatabaseID string `json:"database_id"`
}

func (DatabaseParent) Type() string       { return "database_id" }
func (p DatabaseParent) ParentID() string { return p.DatabaseID }

func (p DatabaseParent) MarshalJSON() ([]byte, error) {
	type wire DatabaseParent
	return marshalTagged("type", p.Type(), wire(p))
}

type BlockParent struct {
	BlockID string `json:"block_id"`
}

func (BlockParent) Type() string       { return "block_id" }
func (p BlockParent) ParentID() string { return p.BlockID }

func (p BlockParent) MarshalJSON() ([]byte, error) {
	type wire BlockParent
	return marshalTagged("type", p.Type(), wire(p))
}

// WorkspaceParent marks top-level objects.
type WorkspaceParent struct {
	Workspace bool `json:"workspace"`
}

func (WorkspaceParent) Type() string     { return "workspace" }
func (WorkspaceParent) ParentID() string { return "" }

func (p WorkspaceParent) MarshalJSON() ([]byte, error) {
	type wire WorkspaceParent
	return marshalTagged("type", p.Type(), wire(p))
}

var parentRegistry = func() *Registry[Parent] {
	r := NewRegistry[Parent]("parent type", "type")
	r.Register(
		func() Parent { return &PageParent{} },
		func() Parent { return &DatabaseParent{} },
		func() Parent { return &BlockParent{} },
		func() Parent { return &WorkspaceParent{} },
	)
	return r
}()

// DecodeParent decodes a parent reference.
func DecodeParent(data []byte) (Parent, error) {
	return parentRegistry.DecodeOptional(data)
}

// decodeField decodes the raw field named key with fn, leaving dst untouched when absent.
func decodeField[T any](fields map[string]json.RawMessage, key string, fn func([]byte) (T, error), dst *T) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	v, err := fn(raw)
	if err != nil {
		return fmt.Errorf("field '%s': %w", key, err)
	}
	*dst = v
	return nil
}
