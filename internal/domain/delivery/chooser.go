package delivery

import (
    "math/rand"
    "sort"
    "sync"

    "github.com/walletera/food-delivery/internal/domain/shared"
)

var ErrNoAvailableCourier = shared.NewError(shared.ErrBusinessRuleViolation, "no available courier")

type CourierChooser interface {
    Choose(couriers []*Courier) (*Courier, error)
}

// RandomChooser picks uniformly among the given couriers. Couriers are
// ordered by id first so a seeded chooser is reproducible whatever order the
// store returned them in.
type RandomChooser struct {
    mu     sync.Mutex
    random *rand.Rand
}

func NewRandomChooser(seed int64) *RandomChooser {
    return &RandomChooser{random: rand.New(rand.NewSource(seed))}
}

func (r *RandomChooser) Choose(couriers []*Courier) (*Courier, error) {
    if len(couriers) == 0 {
        return nil, ErrNoAvailableCourier
    }
    sorted := make([]*Courier, len(couriers))
    copy(sorted, couriers)
    sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
    r.mu.Lock()
    defer r.mu.Unlock()
    return sorted[r.random.Intn(len(sorted))], nil
}
