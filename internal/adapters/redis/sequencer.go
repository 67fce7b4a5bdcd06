package redis

import (
    "context"
    "fmt"

    "github.com/walletera/food-delivery/internal/eventstore"

    goredis "github.com/redis/go-redis/v9"
)

const sequenceKeyPrefix = "sequence:"

var _ eventstore.Sequencer = (*Sequencer)(nil)

// Sequencer draws sequence numbers with INCR, which creates a missing key
// at zero before incrementing it.
type Sequencer struct {
    client *goredis.Client
}

func NewSequencer(client *goredis.Client) *Sequencer {
    return &Sequencer{client: client}
}

func (s *Sequencer) Next(ctx context.Context, streamKey string) (uint64, error) {
    value, err := s.client.Incr(ctx, sequenceKeyPrefix+streamKey).Result()
    if err != nil {
        return 0, fmt.Errorf("failed incrementing sequence %s: %w", streamKey, err)
    }
    return uint64(value), nil
}
