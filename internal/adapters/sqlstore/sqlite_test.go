package sqlstore

import (
    "context"
    "database/sql"
    "path/filepath"
    "testing"

    "github.com/walletera/food-delivery/internal/adapters/storetest"

    "github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sql.DB {
    t.Helper()
    db, err := Open(context.Background(), SQLite, filepath.Join(t.TempDir(), "food-delivery.db"))
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    return db
}

func TestSQLiteSequencer(t *testing.T) {
    storetest.RunSequencer(t, NewSequencer(openSQLite(t), SQLite))
}

func TestSQLiteEventStore(t *testing.T) {
    storetest.RunEventStore(t, NewEventStore(openSQLite(t)))
}

func TestSQLiteRecordStore(t *testing.T) {
    db := openSQLite(t)
    storetest.RunRecordStore(t, NewRecordStore(db), NewEventStore(db))
}

func TestSQLiteReplicaStore(t *testing.T) {
    storetest.RunReplicaStore(t, NewReplicaStore(openSQLite(t)))
}

func TestOpenIsIdempotent(t *testing.T) {
    path := filepath.Join(t.TempDir(), "food-delivery.db")
    for range 2 {
        db, err := Open(context.Background(), SQLite, path)
        require.NoError(t, err)
        require.NoError(t, db.Close())
    }
}

func TestOpenRejectsUnknownDialect(t *testing.T) {
    _, err := Open(context.Background(), Dialect("postgres"), "")
    require.Error(t, err)
}
