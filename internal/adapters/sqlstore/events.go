package sqlstore

import (
    "context"
    "database/sql"
    "encoding/json"
    "fmt"

    "github.com/walletera/food-delivery/internal/eventstore"
)

var _ eventstore.Store = (*EventStore)(nil)

// EventStore keeps each envelope as its wire json in the events table.
type EventStore struct {
    db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
    return &EventStore{db: db}
}

func (e *EventStore) Append(ctx context.Context, envelopes ...eventstore.Envelope) error {
    tx, err := e.db.BeginTx(ctx, nil)
    if err != nil {
        return fmt.Errorf("begin tx: %w", err)
    }
    defer tx.Rollback()
    if err := appendEnvelopes(ctx, tx, envelopes); err != nil {
        return err
    }
    return tx.Commit()
}

func (e *EventStore) ReadStream(ctx context.Context, aggregateType string, afterSequence uint64, limit int) ([]eventstore.Envelope, error) {
    query := `SELECT body FROM events WHERE aggregate = ? AND event_id > ? ORDER BY event_id`
    args := []any{aggregateType, afterSequence}
    if limit > 0 {
        query += ` LIMIT ?`
        args = append(args, limit)
    }
    return e.query(ctx, query, args...)
}

func (e *EventStore) ReadAggregate(ctx context.Context, aggregateType string, aggregateID string) ([]eventstore.Envelope, error) {
    return e.query(
        ctx,
        `SELECT body FROM events WHERE aggregate = ? AND aggregate_id = ? ORDER BY event_id`,
        aggregateType, aggregateID,
    )
}

func (e *EventStore) query(ctx context.Context, query string, args ...any) ([]eventstore.Envelope, error) {
    rows, err := e.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, fmt.Errorf("query events: %w", err)
    }
    defer rows.Close()
    var envelopes []eventstore.Envelope
    for rows.Next() {
        var body []byte
        if err := rows.Scan(&body); err != nil {
            return nil, fmt.Errorf("scan event: %w", err)
        }
        var envelope eventstore.Envelope
        if err := json.Unmarshal(body, &envelope); err != nil {
            return nil, err
        }
        envelopes = append(envelopes, envelope)
    }
    return envelopes, rows.Err()
}

func appendEnvelopes(ctx context.Context, tx execer, envelopes []eventstore.Envelope) error {
    for _, envelope := range envelopes {
        body, err := json.Marshal(envelope)
        if err != nil {
            return err
        }
        _, err = tx.ExecContext(
            ctx,
            `INSERT INTO events (aggregate, event_id, aggregate_id, body) VALUES (?, ?, ?, ?)`,
            envelope.AggregateType, envelope.SequenceNumber, envelope.AggregateID, string(body),
        )
        if isDuplicateKey(err) {
            return fmt.Errorf("envelope %s: %w", envelope.ID(), eventstore.ErrSequenceTaken)
        }
        if err != nil {
            return fmt.Errorf("insert event %s: %w", envelope.ID(), err)
        }
    }
    return nil
}
