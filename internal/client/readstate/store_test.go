package readstate

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/dmitrijs2005/legaltrack/internal/client/cachestore"
	"github.com/dmitrijs2005/legaltrack/internal/client/client"
	"github.com/dmitrijs2005/legaltrack/internal/client/repositories/cache"
	"github.com/dmitrijs2005/legaltrack/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) *cachestore.Cache {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "read.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return cachestore.New(cache.NewSQLiteRepository(db), logging.Nop())
}

func TestAdd_PersistsAcrossInstances(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	s := New(c)
	require.NoError(t, s.Add(ctx, "5|10|01.02.24", "6|11|02.02.24"))
	assert.True(t, s.Contains("5|10|01.02.24"))

	fresh := New(c)
	assert.False(t, fresh.Contains("5|10|01.02.24"), "nothing is known before Load")

	set := fresh.Load(ctx)
	assert.Len(t, set, 2)
	assert.True(t, fresh.Contains("6|11|02.02.24"))

	raw, ok := cachestore.Load[[]string](ctx, c, cachestore.KeyReadNotificationKeys)
	require.True(t, ok)
	assert.Equal(t, []string{"5|10|01.02.24", "6|11|02.02.24"}, raw, "stored sorted")
}

func TestSaveReplacesSet(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	s := New(c)

	require.NoError(t, s.Add(ctx, "a"))
	require.NoError(t, s.Save(ctx, map[string]struct{}{"b": {}, "c": {}}))

	got := New(c).Load(ctx)
	assert.Equal(t, map[string]struct{}{"b": {}, "c": {}}, got)
}

func TestKeysAreNeverDroppedImplicitly(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	s := New(c)

	keys := make([]string, 0, 12000)
	for i := 0; i < 12000; i++ {
		keys = append(keys, strconv.Itoa(i)+"|1|01.01.24")
	}
	require.NoError(t, s.Add(ctx, keys...))
	require.NoError(t, s.Add(ctx, "extra"))

	assert.Equal(t, 12001, len(New(c).Load(ctx)))
	assert.True(t, s.Contains("extra"))
}

func TestClear(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	s := New(c)

	require.NoError(t, s.Add(ctx, "x"))
	require.NoError(t, s.Clear(ctx))

	assert.Zero(t, s.Len())
	assert.False(t, c.Has(ctx, cachestore.KeyReadNotificationKeys))
	assert.Empty(t, New(c).Load(ctx))
}

func TestAdd_NoopDoesNotWrite(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	s := New(c)

	require.NoError(t, s.Add(ctx))
	assert.False(t, c.Has(ctx, cachestore.KeyReadNotificationKeys))
}

func TestCorruptPayloadLoadsEmpty(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.Save(ctx, cachestore.KeyReadNotificationKeys, map[string]int{"x": 1}))

	assert.Empty(t, New(c).Load(ctx))
}
