package sqlstore

import (
    "context"
    "database/sql"
    "errors"
    "fmt"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/eventstore"
)

var _ aggregates.RecordStore = (*RecordStore)(nil)

// RecordStore writes records with an optimistic lock on lock_version and
// appends the produced envelopes in the same transaction.
type RecordStore struct {
    db *sql.DB
}

func NewRecordStore(db *sql.DB) *RecordStore {
    return &RecordStore{db: db}
}

func (r *RecordStore) Get(ctx context.Context, recordType string, id string) (aggregates.Record, error) {
    record := aggregates.Record{Type: recordType, ID: id}
    var data []byte
    err := r.db.QueryRowContext(
        ctx,
        `SELECT lock_version, data FROM records WHERE type = ? AND id = ?`,
        recordType, id,
    ).Scan(&record.LockVersion, &data)
    if errors.Is(err, sql.ErrNoRows) {
        return aggregates.Record{}, fmt.Errorf("%s %s: %w", recordType, id, shared.ErrNotFound)
    }
    if err != nil {
        return aggregates.Record{}, fmt.Errorf("query record: %w", err)
    }
    record.Data = data
    return record, nil
}

// Find filters snapshots in process so that both dialects share one query.
func (r *RecordStore) Find(ctx context.Context, recordType string, filter aggregates.Filter) ([]aggregates.Record, error) {
    rows, err := r.db.QueryContext(
        ctx,
        `SELECT id, lock_version, data FROM records WHERE type = ? ORDER BY id`,
        recordType,
    )
    if err != nil {
        return nil, fmt.Errorf("query records: %w", err)
    }
    defer rows.Close()
    var records []aggregates.Record
    for rows.Next() {
        record := aggregates.Record{Type: recordType}
        var data []byte
        if err := rows.Scan(&record.ID, &record.LockVersion, &data); err != nil {
            return nil, fmt.Errorf("scan record: %w", err)
        }
        record.Data = data
        matches, err := filter.Matches(record.Data)
        if err != nil {
            return nil, err
        }
        if matches {
            records = append(records, record)
        }
    }
    return records, rows.Err()
}

func (r *RecordStore) Create(ctx context.Context, record aggregates.Record, envelopes []eventstore.Envelope) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return fmt.Errorf("begin tx: %w", err)
    }
    defer tx.Rollback()

    _, err = tx.ExecContext(
        ctx,
        `INSERT INTO records (type, id, lock_version, data) VALUES (?, ?, ?, ?)`,
        record.Type, record.ID, record.LockVersion, string(record.Data),
    )
    if isDuplicateKey(err) {
        return fmt.Errorf("%s %s: %w", record.Type, record.ID, shared.ErrAlreadyExists)
    }
    if err != nil {
        return fmt.Errorf("insert record: %w", err)
    }
    if err := appendEnvelopes(ctx, tx, envelopes); err != nil {
        return err
    }
    return tx.Commit()
}

func (r *RecordStore) Update(ctx context.Context, record aggregates.Record, envelopes []eventstore.Envelope) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return fmt.Errorf("begin tx: %w", err)
    }
    defer tx.Rollback()

    result, err := tx.ExecContext(
        ctx,
        `UPDATE records SET lock_version = ?, data = ? WHERE type = ? AND id = ? AND lock_version = ?`,
        record.LockVersion, string(record.Data), record.Type, record.ID, record.LockVersion-1,
    )
    if err != nil {
        return fmt.Errorf("update record: %w", err)
    }
    rows, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if rows == 0 {
        return fmt.Errorf("%s %s is not at version %d: %w", record.Type, record.ID, record.LockVersion-1, shared.ErrConcurrencyConflict)
    }
    if err := appendEnvelopes(ctx, tx, envelopes); err != nil {
        return err
    }
    return tx.Commit()
}
