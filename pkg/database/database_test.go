package database

import (
	"database/sql"
	"database/sql/driver"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kusalwijekoon97/ml-be/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func TestNew_SQLiteConcurrentWrites(t *testing.T) {
	t.Parallel()

	cfg := config.NewForTest()
	cfg.DatabaseDSN = filepath.Join(t.TempDir(), "test.db")

	db, err := New(cfg)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE writes (id TEXT PRIMARY KEY, worker INTEGER NOT NULL)`)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				_, err := db.Exec(`INSERT INTO writes (id, worker) VALUES (?, ?)`, filepath.Join("w", string(rune('a'+w)), string(rune('a'+i))), w)
				if err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM writes`).Scan(&count))
	assert.Equal(t, 100, count)
}

// openOnlyDriver hides any OpenConnector method of the wrapped driver.
type openOnlyDriver struct {
	driver.Driver
}

func TestSQLiteConnector_FallsBackToOpen(t *testing.T) {
	t.Parallel()

	dsn := filepath.Join(t.TempDir(), "fallback.db")
	connector, err := sqliteConnector(openOnlyDriver{sqliteshim.Driver()}, dsn)
	require.NoError(t, err)
	require.IsType(t, &driverConnector{}, connector)

	sqldb := sql.OpenDB(newRetryConnector(connector, 3))
	defer sqldb.Close()

	var one int
	require.NoError(t, sqldb.QueryRow(`SELECT 1`).Scan(&one))
	assert.Equal(t, 1, one)
}
