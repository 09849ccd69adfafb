package model

import (
	"encoding/json"

	"github.com/lychee-technology/notionmap"
	"github.com/lychee-technology/notionmap/internal"
	"github.com/lychee-technology/notionmap/objapi"
)

// RichTextElem is a single span of rich text.
type RichTextElem struct {
	obj objapi.RichTextObject
}

// Kind is "text", "equation" or "mention".
func (e RichTextElem) Kind() string { return e.obj.Type() }

// PlainText renders the span without formatting.
func (e RichTextElem) PlainText() string { return e.obj.PlainTextValue() }

// Obj returns the wire span.
func (e RichTextElem) Obj() objapi.RichTextObject { return e.obj }

// RichText is an ordered sequence of spans.
type RichText struct {
	elems []RichTextElem
}

// NewRichText wraps wire spans.
func NewRichText(spans objapi.RichTextList) RichText {
	elems := make([]RichTextElem, 0, len(spans))
	for _, span := range spans {
		if span == nil {
			continue
		}
		elems = append(elems, RichTextElem{obj: span})
	}
	return RichText{elems: elems}
}

// FromPlainText builds one text span per chunk of at most objapi.MaxTextLength
// runes. The chunks concatenate back to text.
func FromPlainText(text string) RichText {
	chunks := internal.ChunkText(text, objapi.MaxTextLength)
	elems := make([]RichTextElem, 0, len(chunks))
	for _, chunk := range chunks {
		elems = append(elems, RichTextElem{obj: objapi.NewText(chunk)})
	}
	return RichText{elems: elems}
}

// FromMarkdown is not supported yet.
func FromMarkdown(string) (RichText, error) {
	return RichText{}, notionmap.NewNotImplementedError("rich text from markdown")
}

// ToMarkdown is not supported yet.
func (r RichText) ToMarkdown() (string, error) {
	return "", notionmap.NewNotImplementedError("rich text to markdown")
}

// ToPlainText concatenates the plain text of every span in order. An empty
// sequence has no plain text and reports false.
func (r RichText) ToPlainText() (string, bool) {
	if len(r.elems) == 0 {
		return "", false
	}
	var out []byte
	for _, elem := range r.elems {
		if text := elem.PlainText(); text != "" {
			out = append(out, text...)
		}
	}
	return string(out), true
}

func (r RichText) String() string {
	text, _ := r.ToPlainText()
	return text
}

func (r RichText) Len() int { return len(r.elems) }

func (r RichText) IsEmpty() bool { return len(r.elems) == 0 }

// Elems returns a copy of the spans.
func (r RichText) Elems() []RichTextElem {
	return append([]RichTextElem(nil), r.elems...)
}

// Obj returns the wire form; an empty RichText yields an empty, non-nil list.
func (r RichText) Obj() objapi.RichTextList {
	spans := make(objapi.RichTextList, 0, len(r.elems))
	for _, elem := range r.elems {
		spans = append(spans, elem.obj)
	}
	return spans
}

// MarshalJSON renders the plain text, or null for an empty sequence.
func (r RichText) MarshalJSON() ([]byte, error) {
	text, ok := r.ToPlainText()
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(text)
}
