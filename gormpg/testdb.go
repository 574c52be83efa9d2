package gormpg

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fulcrumproject/taskdb/datasource"
)

// TestDB is a throwaway database created on the server described by the main options
type TestDB struct {
	DB         *gorm.DB
	MainOpts   datasource.RuntimeOptions
	Conf       *Conf
	TestDBName string
}

// NewTestDB creates a uniquely named database next to the one in opts, connects to it
// and runs migrate. Schema synchronization of the main options is not applied to the admin connection.
func NewTestDB(t *testing.T, opts datasource.RuntimeOptions, conf *Conf, migrate func(db *gorm.DB) error) *TestDB {
	uuidStr := strings.ReplaceAll(uuid.New().String(), "-", "")
	dbName := fmt.Sprintf("task_test_%s", uuidStr)

	adminDB, err := NewConnection(adminOptions(opts), conf)
	if err != nil {
		t.Fatalf("Failed to connect to postgres database: %v", err)
	}
	defer closeDB(t, adminDB)

	sql := fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName)
	if err := adminDB.Exec(sql).Error; err != nil {
		t.Fatalf("Failed to drop test database: %v", err)
	}

	sql = fmt.Sprintf("CREATE DATABASE %s", dbName)
	if err := adminDB.Exec(sql).Error; err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	testOpts := opts
	testOpts.Options = opts.Options.WithDatabase(dbName)
	db, err := NewConnection(testOpts, conf)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if migrate != nil {
		if err := migrate(db); err != nil {
			t.Fatalf("Failed to migrate test database: %v", err)
		}
	}

	return &TestDB{
		DB:         db,
		MainOpts:   opts,
		Conf:       conf,
		TestDBName: dbName,
	}
}

// Cleanup closes the test connection and drops the test database
func (tdb *TestDB) Cleanup(t *testing.T) {
	sqlDB, err := tdb.DB.DB()
	if err != nil {
		t.Errorf("Failed to get underlying *sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		t.Errorf("Failed to close database connection: %v", err)
		return
	}

	adminDB, err := NewConnection(adminOptions(tdb.MainOpts), tdb.Conf)
	if err != nil {
		t.Errorf("Failed to connect to postgres database: %v", err)
		return
	}
	defer closeDB(t, adminDB)

	sql := fmt.Sprintf(`
		SELECT pg_terminate_backend(pg_stat_activity.pid)
		FROM pg_stat_activity
		WHERE pg_stat_activity.datname = '%s'
		AND pid <> pg_backend_pid()`,
		tdb.TestDBName,
	)
	if err := adminDB.Exec(sql).Error; err != nil {
		t.Errorf("Failed to terminate database connections: %v", err)
	}

	sql = fmt.Sprintf("DROP DATABASE IF EXISTS %s", tdb.TestDBName)
	if err := adminDB.Exec(sql).Error; err != nil {
		t.Errorf("Failed to drop test database: %v", err)
	}
}

func adminOptions(opts datasource.RuntimeOptions) datasource.RuntimeOptions {
	opts.Synchronize = false
	return opts
}

func closeDB(t *testing.T, db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("Failed to get underlying *sql.DB: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("Failed to close database connection: %v", err)
	}
}
