package events

import "github.com/walletera/food-delivery/internal/domain/shared"

const (
    RestaurantCreatedType = "RestaurantCreated"
    MenuRevisedType       = "MenuRevised"
)

type RestaurantCreated struct {
    RestaurantID      string            `json:"restaurant_id"`
    RestaurantName    string            `json:"restaurant_name"`
    RestaurantAddress shared.Address    `json:"restaurant_address"`
    MenuItems         []shared.MenuItem `json:"menu_items"`
}

func (RestaurantCreated) EventType() string  { return RestaurantCreatedType }
func (RestaurantCreated) SchemaVersion() int { return 1 }

type MenuRevised struct {
    RestaurantID string            `json:"restaurant_id"`
    MenuItems    []shared.MenuItem `json:"menu_items"`
}

func (MenuRevised) EventType() string  { return MenuRevisedType }
func (MenuRevised) SchemaVersion() int { return 1 }
