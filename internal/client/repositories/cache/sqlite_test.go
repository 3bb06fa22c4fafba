package cache

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/legaltrack/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE cache_entries (
  key      TEXT PRIMARY KEY,
  payload  BLOB NOT NULL,
  saved_at INTEGER NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestPutAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	at := time.UnixMilli(1_700_000_000_123)

	require.NoError(t, r.Put(ctx, models.CacheEntry{Key: "cases", Payload: []byte(`[{"id":1}]`), SavedAt: at}))

	e, err := r.Get(ctx, "cases")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "cases", e.Key)
	assert.JSONEq(t, `[{"id":1}]`, string(e.Payload))
	assert.True(t, at.Equal(e.SavedAt))
}

func TestGet_Absent_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	e, err := r.Get(context.Background(), "case_detail:1")
	require.NoError(t, err)
	require.Nil(t, e)
}

func TestPut_ReplacesWholeRow(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, models.CacheEntry{Key: "cases", Payload: []byte(`[1]`), SavedAt: time.UnixMilli(1)}))
	require.NoError(t, r.Put(ctx, models.CacheEntry{Key: "cases", Payload: []byte(`[1,2]`), SavedAt: time.UnixMilli(2)}))

	e, err := r.Get(ctx, "cases")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2]`), e.Payload)
	assert.Equal(t, int64(2), e.SavedAt.UnixMilli())

	keys, err := r.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"cases"}, keys)
}

func TestDeletePrefixAndKeys(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	for _, k := range []string{"notifications:page:1", "notifications:page:2", "cases", "case_detail:7"} {
		require.NoError(t, r.Put(ctx, models.CacheEntry{Key: k, Payload: []byte(`{}`), SavedAt: time.Now()}))
	}

	keys, err := r.Keys(ctx, "notifications:page:")
	require.NoError(t, err)
	assert.Equal(t, []string{"notifications:page:1", "notifications:page:2"}, keys)

	require.NoError(t, r.DeletePrefix(ctx, "notifications:page:"))

	keys, err = r.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"case_detail:7", "cases"}, keys)
}

func TestDelete_IsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, models.CacheEntry{Key: "x", Payload: []byte(`1`), SavedAt: time.Now()}))
	require.NoError(t, r.Delete(ctx, "x"))
	require.NoError(t, r.Delete(ctx, "x"))

	e, err := r.Get(ctx, "x")
	require.NoError(t, err)
	require.Nil(t, e)
}

func TestSizeAndClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	n, err := r.Size(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, r.Put(ctx, models.CacheEntry{Key: "a", Payload: []byte("1234"), SavedAt: time.Now()}))
	require.NoError(t, r.Put(ctx, models.CacheEntry{Key: "b", Payload: []byte("56"), SavedAt: time.Now()}))

	n, err = r.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	require.NoError(t, r.Clear(ctx))
	keys, err := r.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestErrorsAreWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("disk I/O error")
	mock.ExpectQuery("SELECT payload, saved_at FROM cache_entries").WillReturnError(boom)
	mock.ExpectExec("INSERT INTO cache_entries").WillReturnError(boom)
	mock.ExpectExec("DELETE FROM cache_entries WHERE key").WillReturnError(boom)
	mock.ExpectExec("DELETE FROM cache_entries").WillReturnError(boom)

	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err = r.Get(ctx, "k")
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "failed to get cache[k]")

	err = r.Put(ctx, models.CacheEntry{Key: "k", Payload: []byte("1"), SavedAt: time.Now()})
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "failed to put cache[k]")

	err = r.Delete(ctx, "k")
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "failed to delete cache[k]")

	err = r.Clear(ctx)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "failed to clear cache")

	require.NoError(t, mock.ExpectationsWereMet())
}
