package objapi

import (
	"encoding/json"
	"fmt"
)

// User is a person or a bot. Partial users (an id without a type) decode to *PartialUser.
type User interface {
	Tagged
	UserID() string
	DisplayName() string
}

// UserBase carries the fields shared by all user variants.
type UserBase struct {
	Object    string  `json:"object,omitempty"`
	ID        string  `json:"id"`
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

func (u UserBase) UserID() string { return u.ID }

func (u UserBase) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}

type PersonData struct {
	Email *string `json:"email,omitempty"`
}

// Person is a human member of the workspace.
type Person struct {
	UserBase
	Person PersonData `json:"person"`
}

func (Person) Type() string { return "person" }

func (u Person) MarshalJSON() ([]byte, error) {
	type wire Person
	return marshalTagged("type", u.Type(), wire(u))
}

type BotOwner struct {
	Type      string          `json:"type"`
	Workspace *bool           `json:"workspace,omitempty"`
	User      json.RawMessage `json:"user,omitempty"`
}

type BotData struct {
	Owner         *BotOwner `json:"owner,omitempty"`
	WorkspaceName *string   `json:"workspace_name,omitempty"`
}

// Bot is an integration acting in the workspace.
type Bot struct {
	UserBase
	Bot BotData `json:"bot"`
}

func (Bot) Type() string { return "bot" }

func (u Bot) MarshalJSON() ([]byte, error) {
	type wire Bot
	return marshalTagged("type", u.Type(), wire(u))
}

// PartialUser is a user reference the remote returned without its type.
type PartialUser struct {
	UserBase
}

func (PartialUser) Type() string { return "" }

var userRegistry = func() *Registry[User] {
	r := NewRegistry[User]("user type", "type")
	r.Register(
		func() User { return &Person{} },
		func() User { return &Bot{} },
	)
	return r
}()

// DecodeUser decodes a user payload. A null payload yields nil.
func DecodeUser(data []byte) (User, error) {
	if isNull(data) {
		return nil, nil
	}
	var probe struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if probe.Type == nil {
		partial := &PartialUser{}
		if err := json.Unmarshal(data, &partial.UserBase); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		return partial, nil
	}
	return userRegistry.Decode(data)
}

// UserList is a JSON array of users.
type UserList []User

func (l *UserList) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*l = UserList{}
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	users := make(UserList, 0, len(raws))
	for i, raw := range raws {
		u, err := DecodeUser(raw)
		if err != nil {
			return fmt.Errorf("user #%d: %w", i, err)
		}
		users = append(users, u)
	}
	*l = users
	return nil
}
