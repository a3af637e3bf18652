package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"   // PostgreSQL driver (production)
	_ "modernc.org/sqlite" // Pure Go SQLite driver (development)
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

type Store struct {
	DB     *sqlx.DB
	driver string
}

func NewStore(driver, dataSourceName string) (*Store, error) {
	if driver == DriverSQLite {
		dataSourceName = sqliteDSN(dataSourceName)
	}
	db, err := sqlx.Open(driver, dataSourceName)
	if err != nil {
		return nil, err
	}

	if driver == DriverPostgres {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	slog.Info("Database connected", "driver", driver)
	return &Store{DB: db, driver: driver}, nil
}

// NewFromDB wraps an already opened handle, e.g. sqlmock in tests.
func NewFromDB(db *sqlx.DB) *Store {
	return &Store{DB: db, driver: db.DriverName()}
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (s *Store) Driver() string {
	return s.driver
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// rebind converts ? placeholders to the driver's bindvar style.
func (s *Store) rebind(query string) string {
	return s.DB.Rebind(query)
}

func now() time.Time {
	return time.Now().UTC()
}
