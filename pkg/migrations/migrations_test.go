package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func tableExists(t *testing.T, db *bun.DB, name string) bool {
	t.Helper()
	var count int
	err := db.NewRaw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(context.Background(), &count)
	require.NoError(t, err)
	return count > 0
}

func TestBringUpToDateAndReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newDB(t)

	group, err := BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.NotZero(t, group.ID)
	assert.True(t, tableExists(t, db, "books"))
	assert.True(t, tableExists(t, db, "pending_blob_deletions"))

	group, err = BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, group.ID)

	groups, err := Reset(ctx, db)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
	assert.False(t, tableExists(t, db, "books"))

	groups, err = Reset(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, groups)
}
