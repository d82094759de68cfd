package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/popup-pos/feed"
	"github.com/yeremiapane/popup-pos/models"
	"github.com/yeremiapane/popup-pos/repository"
)

func snapshotOf(t *testing.T, repo repository.OrderRepository, orderID uint) *models.Order {
	t.Helper()
	order, err := repo.FetchOrderAggregate(orderID)
	require.NoError(t, err)
	return order
}

func TestKitchenInitialSetOldestFirst(t *testing.T) {
	_, repo, svc, hub := setupViewModelTest(t)

	first := placeOrder(t, svc, "Ayu")
	second := placeOrder(t, svc, "Ben")

	vm := NewKitchenViewModel(repo, svc, hub, 1)
	require.NoError(t, vm.Start())
	defer vm.Stop()

	orders := vm.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, first.ID, orders[0].ID)
	assert.Equal(t, second.ID, orders[1].ID)
}

// An order leaving the kitchen-visible statuses must drop off the display
// on the next event, even though it was present before.
func TestKitchenVisibilityFilterRemovesPickedUp(t *testing.T) {
	_, repo, svc, hub := setupViewModelTest(t)

	order := placeOrder(t, svc, "Ayu")
	vm := NewKitchenViewModel(repo, svc, hub, 1)
	require.NoError(t, vm.Start())
	defer vm.Stop()
	require.Len(t, vm.Orders(), 1)

	itemIDs := []uint{order.OrderItems[0].ID, order.OrderItems[1].ID}
	require.NoError(t, svc.SetItemsStatus(itemIDs, models.ItemStatusDone))
	require.NoError(t, svc.SetItemsStatus(itemIDs, models.ItemStatusPickedUp))

	hub.PublishOrder(feed.EventUpdated, 1, snapshotOf(t, repo, order.ID))

	assert.Empty(t, vm.Orders())
}

func TestKitchenVisibilityFilterRemovesCancelled(t *testing.T) {
	_, repo, svc, hub := setupViewModelTest(t)

	order := placeOrder(t, svc, "Ayu")
	vm := NewKitchenViewModel(repo, svc, hub, 1)
	require.NoError(t, vm.Start())
	defer vm.Stop()

	itemIDs := []uint{order.OrderItems[0].ID, order.OrderItems[1].ID}
	require.NoError(t, svc.SetItemsStatus(itemIDs, models.ItemStatusCancelled))
	hub.PublishOrder(feed.EventUpdated, 1, snapshotOf(t, repo, order.ID))

	assert.Empty(t, vm.Orders())
}

// A newly visible order is inserted in age order, not appended blindly.
func TestKitchenInsertKeepsAgeOrder(t *testing.T) {
	_, repo, svc, hub := setupViewModelTest(t)

	first := placeOrder(t, svc, "Ayu")
	vm := NewKitchenViewModel(repo, svc, hub, 1)
	require.NoError(t, vm.Start())
	defer vm.Stop()

	second := placeOrder(t, svc, "Ben")
	// Deliver the newer order first, then the older one again; age order
	// must hold regardless of delivery order.
	hub.PublishOrder(feed.EventInserted, 1, snapshotOf(t, repo, second.ID))
	hub.PublishOrder(feed.EventUpdated, 1, snapshotOf(t, repo, first.ID))

	orders := vm.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, first.ID, orders[0].ID)
	assert.Equal(t, second.ID, orders[1].ID)
}

func TestKitchenLanes(t *testing.T) {
	_, repo, svc, hub := setupViewModelTest(t)

	fresh := placeOrder(t, svc, "Ayu")
	cooking := placeOrder(t, svc, "Ben")
	waiting := placeOrder(t, svc, "Cem")

	require.NoError(t, svc.SetItemsStatus([]uint{cooking.OrderItems[0].ID}, models.ItemStatusInProgress))
	require.NoError(t, svc.SetItemsStatus([]uint{waiting.OrderItems[0].ID, waiting.OrderItems[1].ID}, models.ItemStatusDone))

	vm := NewKitchenViewModel(repo, svc, hub, 1)
	require.NoError(t, vm.Start())
	defer vm.Stop()

	lanes := vm.Lanes()
	require.Len(t, lanes.New, 1)
	require.Len(t, lanes.InProgress, 1)
	require.Len(t, lanes.Ready, 1)
	assert.Equal(t, fresh.ID, lanes.New[0].ID)
	assert.Equal(t, cooking.ID, lanes.InProgress[0].ID)
	assert.Equal(t, waiting.ID, lanes.Ready[0].ID)
}

// The station view classifies each order over only the items of one
// category, with the same rule as the full aggregate.
func TestKitchenLanesForCategory(t *testing.T) {
	_, repo, svc, hub := setupViewModelTest(t)

	// Latte is category 1 (Drinks), Cookie category 2 (Snacks).
	order := placeOrder(t, svc, "Ayu")
	require.NoError(t, svc.SetItemsStatus([]uint{order.OrderItems[0].ID}, models.ItemStatusInProgress))

	vm := NewKitchenViewModel(repo, svc, hub, 1)
	require.NoError(t, vm.Start())
	defer vm.Stop()

	drinks := vm.LanesForCategory(1)
	require.Len(t, drinks.InProgress, 1)
	assert.Empty(t, drinks.New)

	snacks := vm.LanesForCategory(2)
	require.Len(t, snacks.New, 1)
	assert.Empty(t, snacks.InProgress)

	// A subset fully picked up leaves the station view even while the
	// order as a whole is still visible.
	require.NoError(t, svc.SetItemsStatus([]uint{order.OrderItems[0].ID}, models.ItemStatusDone))
	require.NoError(t, svc.SetItemsStatus([]uint{order.OrderItems[0].ID}, models.ItemStatusPickedUp))
	require.NoError(t, vm.Refresh())

	drinks = vm.LanesForCategory(1)
	assert.Empty(t, drinks.New)
	assert.Empty(t, drinks.InProgress)
	assert.Empty(t, drinks.Ready)
}

// The fixed-interval poll is an independent repair path: state mutated
// without any feed delivery still converges on Refresh.
func TestKitchenRefreshHealsMissedEvents(t *testing.T) {
	_, repo, svc, hub := setupViewModelTest(t)

	order := placeOrder(t, svc, "Ayu")
	vm := NewKitchenViewModel(repo, svc, hub, 1)
	require.NoError(t, vm.Start())
	defer vm.Stop()

	itemIDs := []uint{order.OrderItems[0].ID, order.OrderItems[1].ID}
	require.NoError(t, svc.SetItemsStatus(itemIDs, models.ItemStatusDone))
	require.NoError(t, svc.SetItemsStatus(itemIDs, models.ItemStatusPickedUp))

	// No feed event delivered; the stale entry survives until the poll.
	require.Len(t, vm.Orders(), 1)
	require.NoError(t, vm.Refresh())
	assert.Empty(t, vm.Orders())
}

func TestKitchenBatchActions(t *testing.T) {
	_, repo, svc, hub := setupViewModelTest(t)

	order := placeOrder(t, svc, "Ayu")
	vm := NewKitchenViewModel(repo, svc, hub, 1)
	require.NoError(t, vm.Start())
	defer vm.Stop()

	itemIDs := []uint{order.OrderItems[0].ID, order.OrderItems[1].ID}
	require.NoError(t, vm.StartItems(itemIDs))
	assert.Equal(t, models.OrderStatusInProgress, snapshotOf(t, repo, order.ID).Status)

	require.NoError(t, vm.FinishItems(itemIDs))
	assert.Equal(t, models.OrderStatusReady, snapshotOf(t, repo, order.ID).Status)
}
