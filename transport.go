package notionmap

import (
	"context"
	"encoding/json"
)

// ObjectKind names a top-level resource of the remote API.
type ObjectKind string

const (
	ObjectKindPage     ObjectKind = "page"
	ObjectKindDatabase ObjectKind = "database"
	ObjectKindUser     ObjectKind = "user"
	ObjectKindBlock    ObjectKind = "block"
)

// SearchQuery filters a workspace search.
type SearchQuery struct {
	Query  string     `json:"query,omitempty"`
	Object ObjectKind `json:"object,omitempty"` // restricts results to pages or databases
}

// Transport is the request/response collaborator that talks to the remote API.
// Implementations return *Error values of type connectivity or remote; the
// typed layer never retries.
type Transport interface {
	Retrieve(ctx context.Context, kind ObjectKind, id string) (json.RawMessage, error)
	Create(ctx context.Context, kind ObjectKind, payload json.RawMessage) (json.RawMessage, error)
	Update(ctx context.Context, kind ObjectKind, id string, payload json.RawMessage) (json.RawMessage, error)
	Search(ctx context.Context, query SearchQuery) ([]json.RawMessage, error)
	QueryDatabase(ctx context.Context, id string) ([]json.RawMessage, error)
	Me(ctx context.Context) (json.RawMessage, error)
	ListUsers(ctx context.Context) ([]json.RawMessage, error)
	Close() error
}
