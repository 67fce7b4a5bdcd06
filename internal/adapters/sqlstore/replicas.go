package sqlstore

import (
    "context"
    "database/sql"
    "errors"
    "fmt"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/projection"
)

var _ projection.ReplicaStore = (*ReplicaStore)(nil)

type ReplicaStore struct {
    db *sql.DB
}

func NewReplicaStore(db *sql.DB) *ReplicaStore {
    return &ReplicaStore{db: db}
}

func (r *ReplicaStore) Get(ctx context.Context, replicaType string, id string) (projection.Replica, error) {
    replica := projection.Replica{Type: replicaType, ID: id}
    var data []byte
    err := r.db.QueryRowContext(
        ctx,
        `SELECT last_applied_sequence, data FROM replicas WHERE type = ? AND id = ?`,
        replicaType, id,
    ).Scan(&replica.LastAppliedSequence, &data)
    if errors.Is(err, sql.ErrNoRows) {
        return projection.Replica{}, fmt.Errorf("%s %s: %w", replicaType, id, shared.ErrNotFound)
    }
    if err != nil {
        return projection.Replica{}, fmt.Errorf("query replica: %w", err)
    }
    replica.Data = data
    return replica, nil
}

func (r *ReplicaStore) Find(ctx context.Context, replicaType string, filter aggregates.Filter) ([]projection.Replica, error) {
    rows, err := r.db.QueryContext(
        ctx,
        `SELECT id, last_applied_sequence, data FROM replicas WHERE type = ? ORDER BY id`,
        replicaType,
    )
    if err != nil {
        return nil, fmt.Errorf("query replicas: %w", err)
    }
    defer rows.Close()
    var replicas []projection.Replica
    for rows.Next() {
        replica := projection.Replica{Type: replicaType}
        var data []byte
        if err := rows.Scan(&replica.ID, &replica.LastAppliedSequence, &data); err != nil {
            return nil, fmt.Errorf("scan replica: %w", err)
        }
        replica.Data = data
        matches, err := filter.Matches(replica.Data)
        if err != nil {
            return nil, err
        }
        if matches {
            replicas = append(replicas, replica)
        }
    }
    return replicas, rows.Err()
}

func (r *ReplicaStore) Put(ctx context.Context, replica projection.Replica, previousSequence uint64, existed bool) error {
    if !existed {
        _, err := r.db.ExecContext(
            ctx,
            `INSERT INTO replicas (type, id, last_applied_sequence, data) VALUES (?, ?, ?, ?)`,
            replica.Type, replica.ID, replica.LastAppliedSequence, string(replica.Data),
        )
        if isDuplicateKey(err) {
            return fmt.Errorf("%s %s was created concurrently: %w", replica.Type, replica.ID, shared.ErrConcurrencyConflict)
        }
        if err != nil {
            return fmt.Errorf("insert replica: %w", err)
        }
        return nil
    }
    result, err := r.db.ExecContext(
        ctx,
        `UPDATE replicas SET last_applied_sequence = ?, data = ? WHERE type = ? AND id = ? AND last_applied_sequence = ?`,
        replica.LastAppliedSequence, string(replica.Data), replica.Type, replica.ID, previousSequence,
    )
    if err != nil {
        return fmt.Errorf("update replica: %w", err)
    }
    rows, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if rows == 0 {
        return fmt.Errorf("%s %s changed concurrently: %w", replica.Type, replica.ID, shared.ErrConcurrencyConflict)
    }
    return nil
}
