package internal

import (
	"context"
	"strconv"
	"sync"
)

// Lightweight telemetry hook layer. Callers may register a real metrics emitter
// (or a test stub) via RegisterTelemetryEmitter; the default emitter drops everything.

type telemetryEmitter func(ctx context.Context, name string, labels map[string]string, value any)

var (
	teleMu   sync.Mutex
	teleImpl telemetryEmitter = func(ctx context.Context, name string, labels map[string]string, value any) {}
)

// RegisterTelemetryEmitter registers a custom emitter function. Passing nil restores the no-op emitter.
func RegisterTelemetryEmitter(fn func(ctx context.Context, name string, labels map[string]string, value any)) {
	teleMu.Lock()
	defer teleMu.Unlock()
	if fn == nil {
		teleImpl = func(ctx context.Context, name string, labels map[string]string, value any) {}
		return
	}
	teleImpl = fn
}

func emit(ctx context.Context, name string, labels map[string]string, value any) {
	teleMu.Lock()
	fn := teleImpl
	teleMu.Unlock()
	fn(ctx, name, labels, value)
}

// EmitRequestLatency records a remote request latency in milliseconds.
// name: "api_request_latency_ms" with labels {"method", "endpoint", "status"}
func EmitRequestLatency(ctx context.Context, method, endpoint string, status int, ms int64) {
	emit(ctx, "api_request_latency_ms", map[string]string{
		"method":   method,
		"endpoint": endpoint,
		"status":   strconv.Itoa(status),
	}, ms)
}

// EmitCacheLookup records an identity cache lookup.
// name: "object_cache_lookup" with label {"result": "hit"|"miss"}
func EmitCacheLookup(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	emit(ctx, "object_cache_lookup", map[string]string{"result": result}, int64(1))
}

// EmitSnapshotWrite records a snapshot store write.
// name: "snapshot_write" with labels {"kind", "ok"}
func EmitSnapshotWrite(ctx context.Context, kind string, ok bool) {
	emit(ctx, "snapshot_write", map[string]string{"kind": kind, "ok": strconv.FormatBool(ok)}, int64(1))
}
