package projection_test

import (
    "context"
    "errors"
    "io"
    "log/slog"
    "testing"

    "github.com/walletera/food-delivery/internal/adapters/memory"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/projection"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

type restaurantName struct {
    Name string `json:"name"`
}

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func rename(name string) func(restaurantName, bool) (restaurantName, error) {
    return func(restaurantName, bool) (restaurantName, error) {
        return restaurantName{Name: name}, nil
    }
}

func TestApplyingTwiceEqualsApplyingOnce(t *testing.T) {
    ctx := context.Background()
    applier := projection.NewApplier[restaurantName](memory.NewReplicaStore(), "restaurant", logger)

    applied, err := applier.Apply(ctx, "r-1", 1, rename("Ajanta"))
    require.NoError(t, err)
    assert.True(t, applied)

    folds := 0
    applied, err = applier.Apply(ctx, "r-1", 1, func(current restaurantName, exists bool) (restaurantName, error) {
        folds++
        return restaurantName{Name: "changed"}, nil
    })
    require.NoError(t, err)
    assert.False(t, applied)
    assert.Zero(t, folds)

    replica, err := applier.FindByID(ctx, "r-1")
    require.NoError(t, err)
    assert.Equal(t, "Ajanta", replica.Name)
}

func TestOutOfOrderEnvelopesKeepTheHigherSequence(t *testing.T) {
    ctx := context.Background()
    applier := projection.NewApplier[restaurantName](memory.NewReplicaStore(), "restaurant", logger)

    _, err := applier.Apply(ctx, "r-1", 5, rename("newer"))
    require.NoError(t, err)
    applied, err := applier.Apply(ctx, "r-1", 3, rename("older"))
    require.NoError(t, err)
    assert.False(t, applied)

    replica, err := applier.FindByID(ctx, "r-1")
    require.NoError(t, err)
    assert.Equal(t, "newer", replica.Name)
}

func TestFoldErrorsLeaveTheReplicaUntouched(t *testing.T) {
    ctx := context.Background()
    applier := projection.NewApplier[restaurantName](memory.NewReplicaStore(), "restaurant", logger)
    boom := errors.New("boom")

    _, err := applier.Apply(ctx, "r-1", 1, func(restaurantName, bool) (restaurantName, error) {
        return restaurantName{}, boom
    })
    require.ErrorIs(t, err, boom)

    _, err = applier.FindByID(ctx, "r-1")
    require.ErrorIs(t, err, shared.ErrNotFound)
}

// racingStore loses the first conditional write to simulate a concurrent
// applier.
type racingStore struct {
    projection.ReplicaStore
    lost bool
}

func (s *racingStore) Put(ctx context.Context, replica projection.Replica, previousSequence uint64, existed bool) error {
    if !s.lost {
        s.lost = true
        return shared.NewError(shared.ErrConcurrencyConflict, "lost the race")
    }
    return s.ReplicaStore.Put(ctx, replica, previousSequence, existed)
}

func TestConflictsAreRetriedWithFreshState(t *testing.T) {
    ctx := context.Background()
    store := &racingStore{ReplicaStore: memory.NewReplicaStore()}
    applier := projection.NewApplier[restaurantName](store, "restaurant", logger)

    applied, err := applier.Apply(ctx, "r-1", 1, rename("Ajanta"))
    require.NoError(t, err)
    assert.True(t, applied)
    assert.True(t, store.lost)
}

func TestFindBy(t *testing.T) {
    ctx := context.Background()
    applier := projection.NewApplier[restaurantName](memory.NewReplicaStore(), "restaurant", logger)
    _, err := applier.Apply(ctx, "r-1", 1, rename("Ajanta"))
    require.NoError(t, err)
    _, err = applier.Apply(ctx, "r-2", 2, rename("Sushi Go"))
    require.NoError(t, err)

    found, err := applier.FindBy(ctx, map[string]any{"name": "Sushi Go"})
    require.NoError(t, err)
    assert.Equal(t, []restaurantName{{Name: "Sushi Go"}}, found)
}

func TestInboxRunsEachCommandOnce(t *testing.T) {
    ctx := context.Background()
    inbox := projection.NewInbox(memory.NewReplicaStore(), "delivery", logger)

    runs := 0
    command := func(context.Context) error {
        runs++
        return nil
    }
    require.NoError(t, inbox.Handle(ctx, "ORDER", "o-1", 4, command))
    require.NoError(t, inbox.Handle(ctx, "ORDER", "o-1", 4, command))
    require.NoError(t, inbox.Handle(ctx, "ORDER", "o-1", 2, command))
    assert.Equal(t, 1, runs)

    require.NoError(t, inbox.Handle(ctx, "ORDER", "o-2", 2, command))
    assert.Equal(t, 2, runs)
}

func TestInboxTreatsUnsupportedTransitionAsAlreadyApplied(t *testing.T) {
    ctx := context.Background()
    inbox := projection.NewInbox(memory.NewReplicaStore(), "delivery", logger)

    err := inbox.Handle(ctx, "TICKET", "t-1", 1, func(context.Context) error {
        return shared.UnsupportedTransition("Delivery", "schedule", "SCHEDULED")
    })
    require.NoError(t, err)

    boom := errors.New("boom")
    err = inbox.Handle(ctx, "TICKET", "t-1", 2, func(context.Context) error { return boom })
    require.ErrorIs(t, err, boom)
}
