package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// JSONSchema describes the native row input accepted for pages of this schema:
// one property per column, text as strings, references (options, users, files,
// related pages) as names, ids or URLs. Computed columns are marked read-only.
func (s *PageSchema) JSONSchema() (*jsonschema.Schema, error) {
	props := make(map[string]any, len(s.columns))
	for _, col := range s.columns {
		props[col.Name] = columnSchema(col.Type)
	}
	doc := map[string]any{
		"title":                s.title,
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal row schema: %w", err)
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into jsonschema.Schema: %w", err)
	}
	return &schema, nil
}

func nullable(types ...string) []string {
	return append(types, "null")
}

func columnSchema(pt PropertyType) map[string]any {
	if pt.ReadOnly() {
		return map[string]any{"readOnly": true, "description": pt.Tag() + " is computed"}
	}
	switch v := pt.(type) {
	case Number:
		return map[string]any{"type": nullable("number")}
	case Checkbox:
		return map[string]any{"type": nullable("boolean")}
	case Date:
		return map[string]any{"type": nullable("string", "object"), "description": "ISO 8601 date or date-time"}
	case URL:
		return map[string]any{"type": nullable("string"), "format": "uri"}
	case Email:
		return map[string]any{"type": nullable("string"), "format": "email"}
	case Status:
		schema := map[string]any{"type": nullable("string")}
		if len(v.Options) > 0 {
			enum := make([]any, 0, len(v.Options)+1)
			for _, opt := range v.Options {
				enum = append(enum, opt.Name())
			}
			schema["enum"] = append(enum, nil)
		}
		return schema
	case MultiSelect, People, Files, Relation:
		return map[string]any{
			"type":  nullable("array", "string"),
			"items": map[string]any{"type": "string"},
		}
	default:
		return map[string]any{"type": nullable("string")}
	}
}
