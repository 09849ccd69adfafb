package model

import (
	"encoding/json"

	"github.com/lychee-technology/notionmap/objapi"
)

// User wraps a person or a bot. Users are equal when their ids are.
type User struct {
	obj objapi.User
}

// NewUser wraps a wire user; nil yields nil.
func NewUser(obj objapi.User) *User {
	if obj == nil {
		return nil
	}
	return &User{obj: obj}
}

func (u *User) ID() string   { return u.obj.UserID() }
func (u *User) Name() string { return u.obj.DisplayName() }

func (u *User) IsPerson() bool {
	_, ok := u.obj.(*objapi.Person)
	return ok
}

func (u *User) IsBot() bool {
	_, ok := u.obj.(*objapi.Bot)
	return ok
}

// Email is nil for bots, partial users and persons without a shared address.
func (u *User) Email() *string {
	person, ok := u.obj.(*objapi.Person)
	if !ok {
		return nil
	}
	return person.Person.Email
}

func (u *User) AvatarURL() *string {
	switch v := u.obj.(type) {
	case *objapi.Person:
		return v.AvatarURL
	case *objapi.Bot:
		return v.AvatarURL
	default:
		return nil
	}
}

// Equal compares users by id.
func (u *User) Equal(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.ID() == other.ID()
}

func (u *User) String() string {
	if name := u.Name(); name != "" {
		return name
	}
	return u.ID()
}

func (u *User) Obj() objapi.User { return u.obj }

// Reload replaces the wrapped user, keeping the wrapper's identity.
func (u *User) Reload(obj objapi.User) {
	if obj != nil {
		u.obj = obj
	}
}

// MarshalJSON renders the user id.
func (u *User) MarshalJSON() ([]byte, error) { return json.Marshal(u.ID()) }

// Option is an option of a select, multi-select or status column.
type Option struct {
	obj objapi.SelectOption
}

// NewOption creates an option that does not exist remotely yet.
func NewOption(name string, color objapi.Color) *Option {
	return &Option{obj: objapi.SelectOption{Name: name, Color: color}}
}

// WrapOption wraps a wire option.
func WrapOption(obj objapi.SelectOption) *Option { return &Option{obj: obj} }

func (o *Option) ID() string               { return o.obj.ID }
func (o *Option) Name() string             { return o.obj.Name }
func (o *Option) Color() objapi.Color      { return o.obj.Color }
func (o *Option) String() string           { return o.obj.Name }
func (o *Option) Obj() objapi.SelectOption { return o.obj }

// Equal compares options by name.
func (o *Option) Equal(other *Option) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.obj.Name == other.obj.Name
}

// MarshalJSON renders the option name.
func (o *Option) MarshalJSON() ([]byte, error) { return json.Marshal(o.obj.Name) }

// File is a reference to a file by URL.
type File struct {
	obj objapi.FileObject
}

// NewFile references an external file. Its name is the URL itself.
func NewFile(url string) *File {
	name := url
	return &File{obj: &objapi.ExternalFile{
		FileBase: objapi.FileBase{Name: &name},
		External: objapi.ExternalData{URL: url},
	}}
}

// WrapFile wraps a wire file.
func WrapFile(obj objapi.FileObject) *File { return &File{obj: obj} }

func (f *File) Name() string           { return f.obj.FileName() }
func (f *File) URL() string            { return f.obj.FileURL() }
func (f *File) IsExternal() bool       { return f.obj.Type() == "external" }
func (f *File) String() string         { return f.obj.FileName() }
func (f *File) Obj() objapi.FileObject { return f.obj }

// MarshalJSON renders the URL.
func (f *File) MarshalJSON() ([]byte, error) { return json.Marshal(f.URL()) }
