package saga

import (
    "encoding/json"
    "fmt"
    "time"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/events"
)

type Status string

const (
    Running      Status = "RUNNING"
    Compensating Status = "COMPENSATING"
    Completed    Status = "COMPLETED"
    Compensated  Status = "COMPENSATED"
    Failed       Status = "FAILED"
)

const snapshotVersion = 1

var ErrRunNotFound = shared.NewError(shared.ErrNotFound, "saga run not found")

func (s Status) Terminal() bool {
    return s == Completed || s == Compensated
}

// RunID identifies the run started by one trigger event, so a redelivered
// trigger finds the run it already started.
func RunID(aggregateType string, aggregateID string, eventID uint64) string {
    return fmt.Sprintf("%s@%s@EVENTID@%d", aggregateType, aggregateID, eventID)
}

// Run is the persisted progress of one saga execution.
type Run struct {
    aggregates.Base
    SagaName string
    Status   Status
    // Cursor is the index of the next forward step.
    Cursor int
    // Attempts counts executions of the current step or compensation. A
    // value above zero means the step may already have been applied.
    Attempts int
    // CompensationStack holds the forward steps that succeeded, oldest first.
    CompensationStack []string
    // PendingCompensations is the queue of compensations still to run once
    // the run started compensating.
    PendingCompensations []string
    Data                 map[string]json.RawMessage
    FailedStep           string
    ErrorCode            string
    Error                string
    CreatedAt            time.Time
    UpdatedAt            time.Time
}

func NewRun() *Run {
    return &Run{Data: map[string]json.RawMessage{}}
}

func (r *Run) AggregateType() string {
    return events.AggregateSaga
}

// Merge copies every field of value, which must marshal to a json object,
// into the run data.
func (r *Run) Merge(value any) error {
    if value == nil {
        return nil
    }
    raw, err := json.Marshal(value)
    if err != nil {
        return err
    }
    if string(raw) == "null" {
        return nil
    }
    fields := map[string]json.RawMessage{}
    if err := json.Unmarshal(raw, &fields); err != nil {
        return fmt.Errorf("saga data must be a json object: %w", err)
    }
    for key, field := range fields {
        r.Data[key] = field
    }
    return nil
}

type snapshot struct {
    aggregates.SnapshotHeader
    ID                   string                     `json:"id"`
    SagaName             string                     `json:"saga_name"`
    Status               Status                     `json:"status"`
    Cursor               int                        `json:"cursor"`
    Attempts             int                        `json:"attempts"`
    CompensationStack    []string                   `json:"compensation_stack"`
    PendingCompensations []string                   `json:"pending_compensations"`
    Data                 map[string]json.RawMessage `json:"data"`
    FailedStep           string                     `json:"failed_step,omitempty"`
    ErrorCode            string                     `json:"error_code,omitempty"`
    Error                string                     `json:"error,omitempty"`
    CreatedAt            shared.Timestamp           `json:"created_at"`
    UpdatedAt            shared.Timestamp           `json:"updated_at"`
}

func (r *Run) MarshalSnapshot() ([]byte, error) {
    return json.Marshal(snapshot{
        SnapshotHeader:       aggregates.SnapshotHeader{SchemaVersion: snapshotVersion},
        ID:                   r.ID,
        SagaName:             r.SagaName,
        Status:               r.Status,
        Cursor:               r.Cursor,
        Attempts:             r.Attempts,
        CompensationStack:    r.CompensationStack,
        PendingCompensations: r.PendingCompensations,
        Data:                 r.Data,
        FailedStep:           r.FailedStep,
        ErrorCode:            r.ErrorCode,
        Error:                r.Error,
        CreatedAt:            shared.NewTimestamp(r.CreatedAt),
        UpdatedAt:            shared.NewTimestamp(r.UpdatedAt),
    })
}

func (r *Run) UnmarshalSnapshot(data []byte) error {
    var s snapshot
    if err := aggregates.UnmarshalSnapshot(data, &s, snapshotVersion); err != nil {
        return err
    }
    r.ID = s.ID
    r.SagaName = s.SagaName
    r.Status = s.Status
    r.Cursor = s.Cursor
    r.Attempts = s.Attempts
    r.CompensationStack = s.CompensationStack
    r.PendingCompensations = s.PendingCompensations
    r.Data = s.Data
    if r.Data == nil {
        r.Data = map[string]json.RawMessage{}
    }
    r.FailedStep = s.FailedStep
    r.ErrorCode = s.ErrorCode
    r.Error = s.Error
    r.CreatedAt = s.CreatedAt.Time
    r.UpdatedAt = s.UpdatedAt.Time
    return nil
}
