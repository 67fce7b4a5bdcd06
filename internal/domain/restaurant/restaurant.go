package restaurant

import (
    "encoding/json"
    "strings"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/events"
)

const snapshotVersion = 1

var (
    ErrRestaurantNotFound = shared.NewError(shared.ErrNotFound, "restaurant not found")
    ErrMenuItemNotFound   = shared.NewError(shared.ErrNotFound, "menu item not found")
    ErrInvalidMenu        = shared.NewError(shared.ErrBusinessRuleViolation, "invalid menu")
    ErrInvalidName        = shared.NewError(shared.ErrBusinessRuleViolation, "restaurant name is required")
)

type Restaurant struct {
    aggregates.Base
    Name      string
    Address   shared.Address
    MenuItems []shared.MenuItem
}

func New() *Restaurant {
    return &Restaurant{}
}

// Create builds a restaurant together with its RestaurantCreated event.
func Create(id string, name string, address shared.Address, menuItems []shared.MenuItem) (*Restaurant, events.RestaurantCreated, error) {
    if strings.TrimSpace(name) == "" {
        return nil, events.RestaurantCreated{}, ErrInvalidName
    }
    if err := validateMenu(menuItems); err != nil {
        return nil, events.RestaurantCreated{}, err
    }
    r := &Restaurant{
        Base:      aggregates.Base{ID: id},
        Name:      name,
        Address:   address,
        MenuItems: menuItems,
    }
    return r, events.RestaurantCreated{
        RestaurantID:      id,
        RestaurantName:    name,
        RestaurantAddress: address,
        MenuItems:         menuItems,
    }, nil
}

func (r *Restaurant) ReviseMenu(menuItems []shared.MenuItem) (events.MenuRevised, error) {
    if err := validateMenu(menuItems); err != nil {
        return events.MenuRevised{}, err
    }
    r.MenuItems = menuItems
    return events.MenuRevised{RestaurantID: r.ID, MenuItems: menuItems}, nil
}

func (r *Restaurant) AggregateType() string {
    return events.AggregateRestaurant
}

type snapshot struct {
    aggregates.SnapshotHeader
    ID        string            `json:"id"`
    Name      string            `json:"name"`
    Address   shared.Address    `json:"address"`
    MenuItems []shared.MenuItem `json:"menu_items"`
}

func (r *Restaurant) MarshalSnapshot() ([]byte, error) {
    return json.Marshal(snapshot{
        SnapshotHeader: aggregates.SnapshotHeader{SchemaVersion: snapshotVersion},
        ID:             r.ID,
        Name:           r.Name,
        Address:        r.Address,
        MenuItems:      r.MenuItems,
    })
}

func (r *Restaurant) UnmarshalSnapshot(data []byte) error {
    var s snapshot
    if err := aggregates.UnmarshalSnapshot(data, &s, snapshotVersion); err != nil {
        return err
    }
    r.ID = s.ID
    r.Name = s.Name
    r.Address = s.Address
    r.MenuItems = s.MenuItems
    return nil
}

func validateMenu(menuItems []shared.MenuItem) error {
    seen := make(map[string]bool, len(menuItems))
    for _, item := range menuItems {
        if item.MenuID == "" || seen[item.MenuID] || item.Price.Value < 0 {
            return ErrInvalidMenu
        }
        seen[item.MenuID] = true
    }
    return nil
}
