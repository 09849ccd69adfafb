// Package session holds the explicit handle through which typed objects are
// fetched, created and cached. At most one session is active per process.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/lychee-technology/notionmap"
	"github.com/lychee-technology/notionmap/internal"
	"github.com/lychee-technology/notionmap/model"
	"go.uber.org/zap"
)

// Options configures a new session. When Transport is nil an HTTP transport is
// built from Config (or notionmap.DefaultConfig) and Token.
type Options struct {
	Token     string
	Config    *notionmap.Config
	Transport notionmap.Transport
	Snapshots notionmap.SnapshotStore
	Logger    *zap.Logger
}

var (
	activeMu sync.Mutex
	active   *Session
)

// Session is the handle for all remote operations.
type Session struct {
	transport notionmap.Transport
	snapshots notionmap.SnapshotStore
	cache     *internal.ObjectCache
	logger    *zap.Logger

	mu      sync.Mutex
	closed  bool
	pending map[*model.PageSchema][]pendingRelation
}

// New creates and registers a session. It fails fast when another session is active.
func New(opts Options) (*Session, error) {
	activeMu.Lock()
	defer activeMu.Unlock()
	return newLocked(opts)
}

func newLocked(opts Options) (*Session, error) {
	if active != nil {
		return nil, notionmap.NewSessionActiveError()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}
	logger = logger.Named("session")

	transport := opts.Transport
	if transport == nil {
		var err error
		if transport, err = httpTransport(opts, logger); err != nil {
			return nil, err
		}
	}

	s := &Session{
		transport: transport,
		snapshots: opts.Snapshots,
		cache:     internal.NewObjectCache(),
		logger:    logger,
		pending:   make(map[*model.PageSchema][]pendingRelation),
	}
	active = s
	logger.Info("initializing session", zap.Bool("snapshots", opts.Snapshots != nil))
	return s, nil
}

func httpTransport(opts Options, logger *zap.Logger) (notionmap.Transport, error) {
	cfg := notionmap.DefaultConfig()
	if opts.Config != nil {
		copied := *opts.Config
		cfg = &copied
	}
	if opts.Token != "" {
		cfg.API.Token = opts.Token
	}
	token, err := cfg.ResolveToken()
	if err != nil {
		return nil, err
	}
	return internal.NewHTTPTransport(internal.HTTPTransportOptions{
		BaseURL: cfg.API.BaseURL,
		Version: cfg.API.Version,
		Token:   token,
		Timeout: cfg.API.Timeout,
		Breaker: internal.NewCircuitBreaker(cfg.API.BreakerThreshold, cfg.API.BreakerWindow, cfg.API.BreakerOpenDuration),
		Logger:  logger,
	}), nil
}

// Active returns the registered session.
func Active() (*Session, error) {
	activeMu.Lock()
	defer activeMu.Unlock()
	if active == nil {
		return nil, notionmap.NewNoActiveSessionError()
	}
	return active, nil
}

// GetOrCreate returns the active session or creates one from opts.
func GetOrCreate(opts Options) (*Session, error) {
	activeMu.Lock()
	defer activeMu.Unlock()
	if active != nil {
		return active, nil
	}
	return newLocked(opts)
}

// Close releases the transport and snapshot store, drops every cached object
// and deregisters the session. Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.pending = make(map[*model.PageSchema][]pendingRelation)
	s.mu.Unlock()

	activeMu.Lock()
	if active == s {
		active = nil
	}
	activeMu.Unlock()

	s.logger.Info("closing session", zap.Int("cached", s.cache.Len()))
	s.cache.Clear()
	if s.snapshots != nil {
		s.snapshots.Close()
	}
	return s.transport.Close()
}

// IsClosed reports whether the session was closed or can no longer reach the remote.
func (s *Session) IsClosed(ctx context.Context) bool {
	return s.RaiseForStatus(ctx) != nil
}

// RaiseForStatus confirms the session works by asking the remote who it is.
// Transport failures come back as session errors that keep their cause.
func (s *Session) RaiseForStatus(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if _, err := s.Whoami(ctx); err != nil {
		if notionmap.IsConnectivityError(err) || notionmap.IsRemoteError(err) {
			return notionmap.NewSessionStatusError(err)
		}
		return err
	}
	return nil
}

// CachedObjects returns the number of materialized objects held by the session.
func (s *Session) CachedObjects() int { return s.cache.Len() }

func (s *Session) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return notionmap.NewSessionClosedError()
	}
	return nil
}

// remember stores a fetched payload in the snapshot store. Failures are logged,
// the remote stays the source of truth.
func (s *Session) remember(ctx context.Context, kind notionmap.ObjectKind, id string, raw json.RawMessage) {
	if s.snapshots == nil {
		return
	}
	err := s.snapshots.Save(ctx, notionmap.Snapshot{ID: id, Kind: kind, Payload: raw})
	if err != nil {
		s.logger.Warn("snapshot not saved", zap.String("id", id), zap.String("kind", string(kind)), zap.Error(err))
	}
}

// cached returns the cached wrapper of id if it has type T.
func cached[T any](ctx context.Context, s *Session, id string) (T, bool) {
	var zero T
	v, ok := s.cache.Get(ctx, id)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// adopt caches wrapper unless a wrapper for id exists, and returns the cached one.
func adopt[T any](s *Session, id string, wrapper T) T {
	actual, _ := s.cache.GetOrSet(id, wrapper)
	if typed, ok := actual.(T); ok {
		return typed
	}
	s.cache.Set(id, wrapper)
	return wrapper
}
