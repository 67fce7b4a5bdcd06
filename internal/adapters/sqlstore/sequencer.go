package sqlstore

import (
    "context"
    "database/sql"
    "fmt"

    "github.com/walletera/food-delivery/internal/eventstore"
)

var _ eventstore.Sequencer = (*Sequencer)(nil)

type Sequencer struct {
    db      *sql.DB
    dialect Dialect
}

func NewSequencer(db *sql.DB, dialect Dialect) *Sequencer {
    return &Sequencer{db: db, dialect: dialect}
}

// Next increments the counter of streamKey in one statement, inserting it
// at 1 when missing.
func (s *Sequencer) Next(ctx context.Context, streamKey string) (uint64, error) {
    if s.dialect == MySQL {
        result, err := s.db.ExecContext(
            ctx,
            `INSERT INTO sequences (stream_key, value) VALUES (?, LAST_INSERT_ID(1))
             ON DUPLICATE KEY UPDATE value = LAST_INSERT_ID(value + 1)`,
            streamKey,
        )
        if err != nil {
            return 0, fmt.Errorf("failed incrementing sequence %s: %w", streamKey, err)
        }
        value, err := result.LastInsertId()
        if err != nil {
            return 0, err
        }
        return uint64(value), nil
    }
    var value uint64
    err := s.db.QueryRowContext(
        ctx,
        `INSERT INTO sequences (stream_key, value) VALUES (?, 1)
         ON CONFLICT (stream_key) DO UPDATE SET value = value + 1
         RETURNING value`,
        streamKey,
    ).Scan(&value)
    if err != nil {
        return 0, fmt.Errorf("failed incrementing sequence %s: %w", streamKey, err)
    }
    return value, nil
}
