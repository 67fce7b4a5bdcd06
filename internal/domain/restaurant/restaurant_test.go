package restaurant_test

import (
    "context"
    "testing"

    "github.com/walletera/food-delivery/internal/domain/kitchen"
    "github.com/walletera/food-delivery/internal/domain/restaurant"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/events"
    "github.com/walletera/food-delivery/internal/testkit"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestCreateRestaurantValidation(t *testing.T) {
    price := shared.NewMoney(500, testkit.Currency)
    tests := []struct {
        name      string
        menuItems []shared.MenuItem
        restName  string
        wantErr   error
    }{
        {"blank name", testkit.Menu(), "  ", restaurant.ErrInvalidName},
        {"duplicated menu id", []shared.MenuItem{{MenuID: "1", Price: price}, {MenuID: "1", Price: price}}, "Ajanta", restaurant.ErrInvalidMenu},
        {"missing menu id", []shared.MenuItem{{MenuName: "Naan", Price: price}}, "Ajanta", restaurant.ErrInvalidMenu},
        {"negative price", []shared.MenuItem{{MenuID: "1", Price: shared.NewMoney(-1, testkit.Currency)}}, "Ajanta", restaurant.ErrInvalidMenu},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            k := testkit.New(t)
            _, err := k.Restaurants.CreateRestaurant(context.Background(), tt.restName, shared.Address{}, tt.menuItems)
            require.ErrorIs(t, err, tt.wantErr)
            require.ErrorIs(t, err, shared.ErrBusinessRuleViolation)
        })
    }
}

func TestReplicasFollowTheMenu(t *testing.T) {
    ctx := context.Background()
    k := testkit.New(t)
    replicas := restaurant.NewReplicas(k.Replicas, "test", k.Logger)
    created := k.CreateRestaurant(t)

    revisedMenu := append(testkit.Menu(), shared.MenuItem{MenuID: "4", MenuName: "Mango Lassi", Price: shared.NewMoney(300, testkit.Currency)})
    revised, err := k.Restaurants.ReviseMenu(ctx, created.ID, revisedMenu)
    require.NoError(t, err)
    assert.Len(t, revised.MenuItems, 4)

    handler := kitchen.NewEventsHandler(replicas)
    k.Deliver(t, events.AggregateRestaurant, handler)
    k.Deliver(t, events.AggregateRestaurant, handler)

    replica, err := replicas.FindByID(ctx, created.ID)
    require.NoError(t, err)
    assert.Equal(t, "Ajanta", replica.Name)
    assert.Equal(t, "1 Main Street", replica.Address.Street1)
    item, err := replica.FindMenuItem("4")
    require.NoError(t, err)
    assert.Equal(t, "Mango Lassi", item.MenuName)

    _, err = replica.FindMenuItem("99")
    require.ErrorIs(t, err, restaurant.ErrMenuItemNotFound)
}

func TestReplicasAreKeptPerOwner(t *testing.T) {
    k := testkit.New(t)
    created := k.CreateRestaurant(t)

    _, err := restaurant.NewReplicas(k.Replicas, "accounting", k.Logger).FindByID(context.Background(), created.ID)
    require.ErrorIs(t, err, restaurant.ErrRestaurantNotFound)
}

func TestReviseMissingRestaurant(t *testing.T) {
    k := testkit.New(t)
    _, err := k.Restaurants.ReviseMenu(context.Background(), "missing", testkit.Menu())
    require.ErrorIs(t, err, restaurant.ErrRestaurantNotFound)

    _, err = k.Restaurants.FindByID(context.Background(), "missing")
    require.ErrorIs(t, err, restaurant.ErrRestaurantNotFound)
}
