package internal

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectCache_GetOrSetKeepsFirst(t *testing.T) {
	ctx := context.Background()
	cache := NewObjectCache()
	id := uuid.New()

	first, loaded := cache.GetOrSet(id.String(), "first")
	assert.False(t, loaded)
	assert.Equal(t, "first", first)

	// undashed form of the same id resolves to the same entry
	second, loaded := cache.GetOrSet(strings.ReplaceAll(id.String(), "-", ""), "second")
	assert.True(t, loaded)
	assert.Equal(t, "first", second)

	got, ok := cache.Get(ctx, id)
	require.True(t, ok)
	assert.Equal(t, "first", got)
	assert.Equal(t, 1, cache.Len())
}

func TestObjectCache_SetDeleteClear(t *testing.T) {
	ctx := context.Background()
	cache := NewObjectCache()
	a, b := uuid.New(), uuid.New()

	cache.Set(a, 1)
	cache.Set(a, 2)
	cache.Set(b, 3)
	v, ok := cache.Get(ctx, a)
	require.True(t, ok)
	assert.Equal(t, 2, v)

	cache.Delete(a)
	_, ok = cache.Get(ctx, a)
	assert.False(t, ok)

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestObjectCache_InvalidIDNeverStored(t *testing.T) {
	ctx := context.Background()
	cache := NewObjectCache()

	v, loaded := cache.GetOrSet("nope", "x")
	assert.False(t, loaded)
	assert.Equal(t, "x", v)
	_, ok := cache.Get(ctx, "nope")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestObjectCache_EmitsLookups(t *testing.T) {
	var mu sync.Mutex
	results := map[string]int{}
	RegisterTelemetryEmitter(func(ctx context.Context, name string, labels map[string]string, value any) {
		if name != "object_cache_lookup" {
			return
		}
		mu.Lock()
		results[labels["result"]]++
		mu.Unlock()
	})
	t.Cleanup(func() { RegisterTelemetryEmitter(nil) })

	ctx := context.Background()
	cache := NewObjectCache()
	id := uuid.New()
	cache.Get(ctx, id)
	cache.Set(id, "v")
	cache.Get(ctx, id)

	assert.Equal(t, map[string]int{"hit": 1, "miss": 1}, results)
}

func TestObjectCache_ConcurrentGetOrSet(t *testing.T) {
	cache := NewObjectCache()
	id := uuid.New()

	var wg sync.WaitGroup
	winners := make(chan any, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _ := cache.GetOrSet(id, i)
			winners <- v
		}(i)
	}
	wg.Wait()
	close(winners)

	var first any
	for v := range winners {
		if first == nil {
			first = v
		}
		assert.Equal(t, first, v)
	}
}
