package aggregates

// Aggregate is an entity persisted as a versioned snapshot. The repository
// owns the lock version: it is 1 after creation and grows by one on every
// persisted mutation.
type Aggregate interface {
    AggregateType() string
    AggregateID() string
    Version() uint64
    SetVersion(version uint64)
    MarshalSnapshot() ([]byte, error)
    UnmarshalSnapshot(data []byte) error
}

// Base carries the identity and lock version shared by every aggregate.
type Base struct {
    ID          string
    LockVersion uint64
}

func (b *Base) AggregateID() string {
    return b.ID
}

func (b *Base) Version() uint64 {
    return b.LockVersion
}

func (b *Base) SetVersion(version uint64) {
    b.LockVersion = version
}
