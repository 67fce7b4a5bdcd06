package sqlstore

import (
    "context"
    "database/sql"
    "errors"
    "fmt"

    "github.com/go-sql-driver/mysql"
    "modernc.org/sqlite"
    sqlite3 "modernc.org/sqlite/lib"
)

type Dialect string

const (
    SQLite Dialect = "sqlite"
    MySQL  Dialect = "mysql"
)

var schemas = map[Dialect][]string{
    SQLite: {
        `CREATE TABLE IF NOT EXISTS records (
            type TEXT NOT NULL,
            id TEXT NOT NULL,
            lock_version INTEGER NOT NULL,
            data TEXT NOT NULL,
            PRIMARY KEY (type, id)
        )`,
        `CREATE TABLE IF NOT EXISTS replicas (
            type TEXT NOT NULL,
            id TEXT NOT NULL,
            last_applied_sequence INTEGER NOT NULL,
            data TEXT NOT NULL,
            PRIMARY KEY (type, id)
        )`,
        `CREATE TABLE IF NOT EXISTS events (
            aggregate TEXT NOT NULL,
            event_id INTEGER NOT NULL,
            aggregate_id TEXT NOT NULL,
            body TEXT NOT NULL,
            PRIMARY KEY (aggregate, event_id)
        )`,
        `CREATE INDEX IF NOT EXISTS events_by_aggregate ON events (aggregate, aggregate_id, event_id)`,
        `CREATE TABLE IF NOT EXISTS sequences (
            stream_key TEXT NOT NULL PRIMARY KEY,
            value INTEGER NOT NULL
        )`,
    },
    MySQL: {
        `CREATE TABLE IF NOT EXISTS records (
            type VARCHAR(64) NOT NULL,
            id VARCHAR(191) NOT NULL,
            lock_version BIGINT UNSIGNED NOT NULL,
            data JSON NOT NULL,
            PRIMARY KEY (type, id)
        )`,
        `CREATE TABLE IF NOT EXISTS replicas (
            type VARCHAR(64) NOT NULL,
            id VARCHAR(191) NOT NULL,
            last_applied_sequence BIGINT UNSIGNED NOT NULL,
            data JSON NOT NULL,
            PRIMARY KEY (type, id)
        )`,
        `CREATE TABLE IF NOT EXISTS events (
            aggregate VARCHAR(64) NOT NULL,
            event_id BIGINT UNSIGNED NOT NULL,
            aggregate_id VARCHAR(191) NOT NULL,
            body JSON NOT NULL,
            PRIMARY KEY (aggregate, event_id),
            INDEX events_by_aggregate (aggregate, aggregate_id, event_id)
        )`,
        `CREATE TABLE IF NOT EXISTS sequences (
            stream_key VARCHAR(191) NOT NULL PRIMARY KEY,
            value BIGINT UNSIGNED NOT NULL
        )`,
    },
}

// Open connects to the database and creates the tables the stores use.
func Open(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
    statements, ok := schemas[dialect]
    if !ok {
        return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
    }
    db, err := sql.Open(string(dialect), dsn)
    if err != nil {
        return nil, err
    }
    if dialect == SQLite {
        // sqlite allows a single writer; one connection avoids SQLITE_BUSY
        db.SetMaxOpenConns(1)
    }
    if err := db.PingContext(ctx); err != nil {
        db.Close()
        return nil, fmt.Errorf("failed to ping %s: %w", dialect, err)
    }
    for _, statement := range statements {
        if _, err := db.ExecContext(ctx, statement); err != nil {
            db.Close()
            return nil, fmt.Errorf("failed creating schema: %w", err)
        }
    }
    return db, nil
}

func isDuplicateKey(err error) bool {
    var mysqlErr *mysql.MySQLError
    if errors.As(err, &mysqlErr) {
        return mysqlErr.Number == 1062
    }
    var sqliteErr *sqlite.Error
    if errors.As(err, &sqliteErr) {
        return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
    }
    return false
}

type execer interface {
    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
