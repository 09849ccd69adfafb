package model

import (
	"strings"
	"testing"

	"github.com/lychee-technology/notionmap"
	"github.com/lychee-technology/notionmap/objapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPlainText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		minSpans int
		maxSpans int
	}{
		{"short", "Hello world", 1, 1},
		{"at limit", strings.Repeat("a", objapi.MaxTextLength), 1, 1},
		{"twice the limit", strings.Repeat("b", 2*objapi.MaxTextLength), 2, 2},
		{"long prose", strings.Repeat("lorem ipsum dolor ", 500), 5, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := FromPlainText(tt.text)
			second := FromPlainText(tt.text)

			assert.GreaterOrEqual(t, first.Len(), tt.minSpans)
			assert.LessOrEqual(t, first.Len(), tt.maxSpans)
			assert.Equal(t, first.Len(), second.Len())

			text, ok := first.ToPlainText()
			require.True(t, ok)
			assert.Equal(t, tt.text, text)

			for _, elem := range first.Elems() {
				assert.Equal(t, "text", elem.Kind())
				assert.LessOrEqual(t, len([]rune(elem.PlainText())), objapi.MaxTextLength)
			}
		})
	}
}

func TestToPlainTextOfEmpty(t *testing.T) {
	text, ok := RichText{}.ToPlainText()
	assert.False(t, ok)
	assert.Empty(t, text)

	empty := FromPlainText("")
	_, ok = empty.ToPlainText()
	assert.False(t, ok)
	assert.True(t, empty.IsEmpty())
	assert.NotNil(t, empty.Obj())
}

func TestToPlainTextSkipsEmptySpans(t *testing.T) {
	rt := NewRichText(objapi.RichTextList{
		objapi.NewText("a"),
		&objapi.TextObject{},
		&objapi.EquationObject{Equation: objapi.EquationContent{Expression: "x^2"}},
	})
	text, ok := rt.ToPlainText()
	require.True(t, ok)
	assert.Equal(t, "ax^2", text)
}

func TestMarkdownIsNotImplemented(t *testing.T) {
	_, err := FromMarkdown("**bold**")
	assert.True(t, notionmap.IsNotImplementedError(err))

	_, err = FromPlainText("x").ToMarkdown()
	assert.True(t, notionmap.IsNotImplementedError(err))
}
