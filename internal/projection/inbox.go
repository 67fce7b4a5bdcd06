package projection

import (
    "context"
    "errors"
    "log/slog"

    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/pkg/logattr"
)

type checkpoint struct {
    Stream string `json:"stream"`
}

// Inbox guards local commands triggered by remote events with the same
// sequence check the Applier uses for replicas. A command answering
// UnsupportedStateTransition for an event seen for the first time here means
// the command already ran before the checkpoint was written.
type Inbox struct {
    applier *Applier[checkpoint]
    logger  *slog.Logger
}

func NewInbox(store ReplicaStore, name string, logger *slog.Logger) *Inbox {
    return &Inbox{
        applier: NewApplier[checkpoint](store, name+".inbox", logger),
        logger:  logger,
    }
}

func (i *Inbox) Handle(ctx context.Context, stream string, aggregateID string, sequenceNumber uint64, command func(ctx context.Context) error) error {
    _, err := i.applier.Apply(ctx, stream+"/"+aggregateID, sequenceNumber, func(current checkpoint, exists bool) (checkpoint, error) {
        err := command(ctx)
        if errors.Is(err, shared.ErrUnsupportedStateTransition) {
            i.logger.Warn(
                "command already applied",
                logattr.StreamName(stream),
                logattr.AggregateId(aggregateID),
                logattr.SequenceNumber(sequenceNumber),
                logattr.Error(err.Error()),
            )
            err = nil
        }
        return checkpoint{Stream: stream}, err
    })
    return err
}
