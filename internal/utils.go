package internal

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// quoteTableName quotes a possibly schema-qualified table name for use in SQL text.
func quoteTableName(name string) string {
	if name == "" {
		return ""
	}
	parts := strings.Split(name, ".")
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.Trim(part, " \"")
		if trimmed == "" {
			continue
		}
		clean = append(clean, pq.QuoteIdentifier(trimmed))
	}
	if len(clean) == 0 {
		return pq.QuoteIdentifier(name)
	}
	return strings.Join(clean, ".")
}

// toUUID accepts the id shapes handed around by the session: uuid values, dashed or
// undashed hex strings, and raw 16-byte slices.
func toUUID(obj any) (uuid.UUID, bool) {
	switch v := obj.(type) {
	case uuid.UUID:
		return v, true
	case *uuid.UUID:
		if v == nil {
			return uuid.Nil, false
		}
		return *v, true
	case string:
		data, err := uuid.Parse(v)
		return data, err == nil
	case *string:
		if v == nil {
			return uuid.Nil, false
		}
		data, err := uuid.Parse(*v)
		return data, err == nil
	case []byte:
		if len(v) == 16 {
			data, err := uuid.FromBytes(v)
			return data, err == nil
		}
		data, err := uuid.Parse(string(v))
		return data, err == nil
	default:
		return uuid.Nil, false
	}
}
