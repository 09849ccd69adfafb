package objapi

import (
	"encoding/json"
	"strings"
)

// MaxTextLength is the largest content the remote accepts in a single text span.
const MaxTextLength = 2000

// Annotations style a rich text span.
type Annotations struct {
	Bold          bool  `json:"bold"`
	Italic        bool  `json:"italic"`
	Strikethrough bool  `json:"strikethrough"`
	Underline     bool  `json:"underline"`
	Code          bool  `json:"code"`
	Color         Color `json:"color"`
}

// RichTextObject is one inline span: text, equation or mention.
type RichTextObject interface {
	Tagged
	PlainTextValue() string
}

// RichTextBase carries the rendering fields shared by all spans.
type RichTextBase struct {
	PlainText   string       `json:"plain_text,omitempty"`
	Href        *string      `json:"href,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

type Link struct {
	URL string `json:"url"`
}

type TextContent struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

// TextObject is a run of literal text.
type TextObject struct {
	RichTextBase
	Text TextContent `json:"text"`
}

// NewText returns a text span whose plain text equals content.
func NewText(content string) *TextObject {
	return &TextObject{
		RichTextBase: RichTextBase{PlainText: content},
		Text:         TextContent{Content: content},
	}
}

func (TextObject) Type() string { return "text" }

func (t TextObject) PlainTextValue() string {
	if t.PlainText != "" {
		return t.PlainText
	}
	return t.Text.Content
}

func (t TextObject) MarshalJSON() ([]byte, error) {
	type wire TextObject
	return marshalTagged("type", t.Type(), wire(t))
}

type EquationContent struct {
	Expression string `json:"expression"`
}

// EquationObject is an inline KaTeX expression.
type EquationObject struct {
	RichTextBase
	Equation EquationContent `json:"equation"`
}

func (EquationObject) Type() string { return "equation" }

func (e EquationObject) PlainTextValue() string {
	if e.PlainText != "" {
		return e.PlainText
	}
	return e.Equation.Expression
}

func (e EquationObject) MarshalJSON() ([]byte, error) {
	type wire EquationObject
	return marshalTagged("type", e.Type(), wire(e))
}

// Mention is the target of a mention span.
type Mention interface {
	Tagged
}

type MentionUser struct {
	User User `json:"user"`
}

func (MentionUser) Type() string { return "user" }

func (m MentionUser) MarshalJSON() ([]byte, error) {
	type wire MentionUser
	return marshalTagged("type", m.Type(), wire(m))
}

func (m *MentionUser) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	return decodeField(fields, "user", DecodeUser, &m.User)
}

type MentionPage struct {
	Page ObjectReference `json:"page"`
}

func (MentionPage) Type() string { return "page" }

func (m MentionPage) MarshalJSON() ([]byte, error) {
	type wire MentionPage
	return marshalTagged("type", m.Type(), wire(m))
}

type MentionDatabase struct {
	Database ObjectReference `json:"database"`
}

func (MentionDatabase) Type() string { return "database" }

func (m MentionDatabase) MarshalJSON() ([]byte, error) {
	type wire MentionDatabase
	return marshalTagged("type", m.Type(), wire(m))
}

type MentionDate struct {
	Date DateRange `json:"date"`
}

func (MentionDate) Type() string { return "date" }

func (m MentionDate) MarshalJSON() ([]byte, error) {
	type wire MentionDate
	return marshalTagged("type", m.Type(), wire(m))
}

type MentionLinkPreview struct {
	LinkPreview Link `json:"link_preview"`
}

func (MentionLinkPreview) Type() string { return "link_preview" }

func (m MentionLinkPreview) MarshalJSON() ([]byte, error) {
	type wire MentionLinkPreview
	return marshalTagged("type", m.Type(), wire(m))
}

var mentionRegistry = func() *Registry[Mention] {
	r := NewRegistry[Mention]("mention type", "type")
	r.Register(
		func() Mention { return &MentionUser{} },
		func() Mention { return &MentionPage{} },
		func() Mention { return &MentionDatabase{} },
		func() Mention { return &MentionDate{} },
		func() Mention { return &MentionLinkPreview{} },
	)
	return r
}()

// MentionObject references a user, page, database, date or link inline.
type MentionObject struct {
	RichTextBase
	Mention Mention `json:"mention"`
}

func (MentionObject) Type() string { return "mention" }

func (m MentionObject) PlainTextValue() string { return m.PlainText }

func (m MentionObject) MarshalJSON() ([]byte, error) {
	type wire MentionObject
	return marshalTagged("type", m.Type(), wire(m))
}

func (m *MentionObject) UnmarshalJSON(data []byte) error {
	var raw struct {
		RichTextBase
		Mention json.RawMessage `json:"mention"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	mention, err := mentionRegistry.DecodeOptional(raw.Mention)
	if err != nil {
		return err
	}
	m.RichTextBase = raw.RichTextBase
	m.Mention = mention
	return nil
}

var richTextRegistry = func() *Registry[RichTextObject] {
	r := NewRegistry[RichTextObject]("rich text type", "type")
	r.Register(
		func() RichTextObject { return &TextObject{} },
		func() RichTextObject { return &EquationObject{} },
		func() RichTextObject { return &MentionObject{} },
	)
	return r
}()

// DecodeRichText decodes a single rich text span.
func DecodeRichText(data []byte) (RichTextObject, error) {
	return richTextRegistry.Decode(data)
}

// RichTextList is the wire form of rich text: an ordered array of spans.
type RichTextList []RichTextObject

func (l *RichTextList) UnmarshalJSON(data []byte) error {
	spans, err := richTextRegistry.DecodeList(data)
	if err != nil {
		return err
	}
	*l = spans
	return nil
}

// PlainText concatenates the plain text of every span.
func (l RichTextList) PlainText() string {
	var sb strings.Builder
	for _, span := range l {
		sb.WriteString(span.PlainTextValue())
	}
	return sb.String()
}
