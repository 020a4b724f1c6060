// Package dbpool lazily initializes the process-wide Postgres connection
// pool used by every repository, sized exactly as spec §5 requires and
// matching the teacher's cmd/worker/main.go pool setup.
package dbpool

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/lib/pq"

	"github.com/ignite/careertrack/internal/config"
)

var (
	once sync.Once
	pool *sql.DB
	err  error
)

// Open returns the process-wide *sql.DB, opening and configuring it on
// first call and reusing it afterward.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	once.Do(func() {
		var db *sql.DB
		db, err = sql.Open("postgres", cfg.URL)
		if err != nil {
			err = fmt.Errorf("dbpool: open: %w", err)
			return
		}
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
		pool = db
	})
	return pool, err
}
