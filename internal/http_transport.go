package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lychee-technology/notionmap"
	"go.uber.org/zap"
)

const maxPageSize = 100

// HTTPTransportOptions configures an HTTPTransport.
type HTTPTransportOptions struct {
	BaseURL string
	Version string
	Token   string
	Timeout time.Duration
	Breaker *CircuitBreaker
	Client  *http.Client
	Logger  *zap.Logger
}

// HTTPTransport implements notionmap.Transport over the remote REST API.
type HTTPTransport struct {
	client  *http.Client
	baseURL string
	version string
	token   string
	breaker *CircuitBreaker
	logger  *zap.Logger
}

var _ notionmap.Transport = (*HTTPTransport)(nil)

// NewHTTPTransport builds a transport from options, filling unset fields from notionmap.DefaultConfig.
func NewHTTPTransport(opts HTTPTransportOptions) *HTTPTransport {
	defaults := notionmap.DefaultConfig().API
	if opts.BaseURL == "" {
		opts.BaseURL = defaults.BaseURL
	}
	if opts.Version == "" {
		opts.Version = defaults.Version
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}
	return &HTTPTransport{
		client:  client,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		version: opts.Version,
		token:   opts.Token,
		breaker: opts.Breaker,
		logger:  logger.Named("transport"),
	}
}

func endpointFor(kind notionmap.ObjectKind) (string, error) {
	switch kind {
	case notionmap.ObjectKindPage, notionmap.ObjectKindDatabase, notionmap.ObjectKindUser, notionmap.ObjectKindBlock:
		return string(kind) + "s", nil
	default:
		return "", notionmap.NewValidationError("kind", fmt.Sprintf("unsupported object kind '%s'", kind))
	}
}

// Retrieve fetches a single object.
func (t *HTTPTransport) Retrieve(ctx context.Context, kind notionmap.ObjectKind, id string) (json.RawMessage, error) {
	endpoint, err := endpointFor(kind)
	if err != nil {
		return nil, err
	}
	return t.do(ctx, http.MethodGet, endpoint+"/"+url.PathEscape(id), nil)
}

// Create posts a new object.
func (t *HTTPTransport) Create(ctx context.Context, kind notionmap.ObjectKind, payload json.RawMessage) (json.RawMessage, error) {
	endpoint, err := endpointFor(kind)
	if err != nil {
		return nil, err
	}
	return t.do(ctx, http.MethodPost, endpoint, payload)
}

// Update patches an existing object.
func (t *HTTPTransport) Update(ctx context.Context, kind notionmap.ObjectKind, id string, payload json.RawMessage) (json.RawMessage, error) {
	endpoint, err := endpointFor(kind)
	if err != nil {
		return nil, err
	}
	return t.do(ctx, http.MethodPatch, endpoint+"/"+url.PathEscape(id), payload)
}

// Search runs a workspace search and follows cursors until exhausted.
func (t *HTTPTransport) Search(ctx context.Context, query notionmap.SearchQuery) ([]json.RawMessage, error) {
	return t.collect(ctx, func(cursor string) (string, string, json.RawMessage, error) {
		body := map[string]any{"page_size": maxPageSize}
		if query.Query != "" {
			body["query"] = query.Query
		}
		if query.Object != "" {
			body["filter"] = map[string]any{"property": "object", "value": string(query.Object)}
		}
		if cursor != "" {
			body["start_cursor"] = cursor
		}
		payload, err := json.Marshal(body)
		return http.MethodPost, "search", payload, err
	})
}

// QueryDatabase returns every page of a database.
func (t *HTTPTransport) QueryDatabase(ctx context.Context, id string) ([]json.RawMessage, error) {
	path := "databases/" + url.PathEscape(id) + "/query"
	return t.collect(ctx, func(cursor string) (string, string, json.RawMessage, error) {
		body := map[string]any{"page_size": maxPageSize}
		if cursor != "" {
			body["start_cursor"] = cursor
		}
		payload, err := json.Marshal(body)
		return http.MethodPost, path, payload, err
	})
}

// Me returns the bot user behind the token.
func (t *HTTPTransport) Me(ctx context.Context) (json.RawMessage, error) {
	return t.do(ctx, http.MethodGet, "users/me", nil)
}

// ListUsers returns every user of the workspace.
func (t *HTTPTransport) ListUsers(ctx context.Context) ([]json.RawMessage, error) {
	return t.collect(ctx, func(cursor string) (string, string, json.RawMessage, error) {
		q := url.Values{}
		q.Set("page_size", fmt.Sprint(maxPageSize))
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}
		return http.MethodGet, "users?" + q.Encode(), nil, nil
	})
}

// Close releases idle connections.
func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

type listPage struct {
	Results    []json.RawMessage `json:"results"`
	NextCursor *string           `json:"next_cursor"`
	HasMore    bool              `json:"has_more"`
}

type pageRequest func(cursor string) (method, path string, payload json.RawMessage, err error)

func (t *HTTPTransport) collect(ctx context.Context, next pageRequest) ([]json.RawMessage, error) {
	results := make([]json.RawMessage, 0)
	cursor := ""
	for {
		method, path, payload, err := next(cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		raw, err := t.do(ctx, method, path, payload)
		if err != nil {
			return nil, err
		}
		var page listPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, notionmap.NewDecodeError("malformed list response", err)
		}
		results = append(results, page.Results...)
		if !page.HasMore || page.NextCursor == nil || *page.NextCursor == "" {
			return results, nil
		}
		cursor = *page.NextCursor
	}
}

type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, payload json.RawMessage) (json.RawMessage, error) {
	if t.breaker.IsOpen() {
		return nil, notionmap.NewConnectionError("circuit breaker is open", nil).WithDetail("path", path)
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+"/"+path, body)
	if err != nil {
		return nil, notionmap.NewInternalError("failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("Notion-Version", t.version)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	endpoint := strings.SplitN(path, "?", 2)[0]
	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.breaker.RecordFailure()
		t.logger.Warn("request failed", zap.String("method", method), zap.String("path", endpoint), zap.Error(err))
		return nil, notionmap.NewConnectionError(fmt.Sprintf("%s %s failed", method, endpoint), err)
	}
	defer resp.Body.Close()
	EmitRequestLatency(ctx, method, endpoint, resp.StatusCode, time.Since(start).Milliseconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.breaker.RecordFailure()
		return nil, notionmap.NewConnectionError("failed to read response body", err)
	}

	if resp.StatusCode >= 500 {
		t.breaker.RecordFailure()
	} else {
		t.breaker.RecordSuccess()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		if apiErr.Status == 0 {
			apiErr.Status = resp.StatusCode
		}
		t.logger.Warn("request rejected",
			zap.String("method", method),
			zap.String("path", endpoint),
			zap.Int("status", apiErr.Status),
			zap.String("code", apiErr.Code),
		)
		return nil, notionmap.NewRemoteError(apiErr.Status, apiErr.Code, apiErr.Message)
	}

	t.logger.Debug("request completed", zap.String("method", method), zap.String("path", endpoint), zap.Int("status", resp.StatusCode))
	return json.RawMessage(raw), nil
}
