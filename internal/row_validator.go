package internal

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/lychee-technology/notionmap"
)

// RowValidator checks native row input against a resolved JSON Schema.
type RowValidator struct {
	resolved *jsonschema.Resolved
}

// NewRowValidator resolves schema once so it can validate many rows.
func NewRowValidator(schema *jsonschema.Schema) (*RowValidator, error) {
	if schema == nil {
		return nil, notionmap.NewInternalError("row schema is nil", nil)
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve JSON schema: %w", err)
	}
	return &RowValidator{resolved: resolved}, nil
}

// Validate marshals row to its JSON form, so wrappers validate as they would be sent,
// and checks the result against the schema.
func (v *RowValidator) Validate(row map[string]any) error {
	raw, err := json.Marshal(row)
	if err != nil {
		return notionmap.NewValidationError("row", "row is not JSON serializable").WithCause(err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return notionmap.NewInternalError("failed to unmarshal row", err)
	}
	if err := v.resolved.Validate(data); err != nil {
		return notionmap.NewValidationError("row", fmt.Sprintf("JSON validation failed: %v", err)).WithCause(err)
	}
	return nil
}
