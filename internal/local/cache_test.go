package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtz-stock-sync/internal/model"
	"vtz-stock-sync/internal/store"
)

func TestProductCacheLoadFreshInstall(t *testing.T) {
	cache := NewProductCache(store.NewMemoryStateStore())
	require.NoError(t, cache.Load(context.Background()))
	assert.Equal(t, 0, cache.Len())
}

func TestProductCacheUpsert(t *testing.T) {
	cache := NewProductCache(store.NewMemoryStateStore())
	ctx := context.Background()

	require.NoError(t, cache.Upsert(ctx, model.Product{ID: "p1", Name: "Arroz", Code: "A1", Quantity: 3}))
	require.NoError(t, cache.Upsert(ctx, model.Product{ID: "p2", Name: "Feijao", Code: "F1", Quantity: 2}))
	assert.Equal(t, 2, cache.Len())

	// Same id updates in place instead of appending.
	require.NoError(t, cache.Upsert(ctx, model.Product{ID: "p1", Name: "Arroz", Code: "A1", Quantity: 9}))
	assert.Equal(t, 2, cache.Len())

	p, ok := cache.Get("p1")
	require.True(t, ok)
	assert.Equal(t, 9, p.Quantity)
}

func TestProductCacheRemove(t *testing.T) {
	cache := NewProductCache(store.NewMemoryStateStore())
	ctx := context.Background()

	require.NoError(t, cache.Upsert(ctx, model.Product{ID: "p1", Name: "Arroz", Code: "A1"}))
	require.NoError(t, cache.Remove(ctx, "p1"))

	_, ok := cache.Get("p1")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())

	// Removing an unknown id is a no-op.
	require.NoError(t, cache.Remove(ctx, "ghost"))
}

func TestProductCacheReplaceAll(t *testing.T) {
	cache := NewProductCache(store.NewMemoryStateStore())
	ctx := context.Background()

	require.NoError(t, cache.Upsert(ctx, model.Product{ID: "stale", Name: "Velho", Code: "V1"}))
	require.NoError(t, cache.ReplaceAll(ctx, []model.Product{
		{ID: "p1", Name: "Arroz", Code: "A1"},
		{ID: "p2", Name: "Feijao", Code: "F1"},
	}))

	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Get("stale")
	assert.False(t, ok, "replace discards everything not in the new list")
}

func TestProductCachePersistsAcrossLoad(t *testing.T) {
	st := store.NewMemoryStateStore()
	ctx := context.Background()

	cache := NewProductCache(st)
	require.NoError(t, cache.Upsert(ctx, model.Product{ID: "p1", Name: "Arroz", Code: "A1", Quantity: 3}))

	reloaded := NewProductCache(st)
	require.NoError(t, reloaded.Load(ctx))

	p, ok := reloaded.Get("p1")
	require.True(t, ok)
	assert.Equal(t, "Arroz", p.Name)
	assert.Equal(t, 3, p.Quantity)
}

func TestProductCacheAllReturnsCopy(t *testing.T) {
	cache := NewProductCache(store.NewMemoryStateStore())
	ctx := context.Background()
	require.NoError(t, cache.Upsert(ctx, model.Product{ID: "p1", Name: "Arroz", Code: "A1"}))

	snapshot := cache.All()
	snapshot[0].Name = "mutated"

	p, _ := cache.Get("p1")
	assert.Equal(t, "Arroz", p.Name)
}
