package viewmodel

import (
	"sort"
	"sync"
	"time"

	"github.com/yeremiapane/popup-pos/feed"
	"github.com/yeremiapane/popup-pos/models"
	"github.com/yeremiapane/popup-pos/repository"
	"github.com/yeremiapane/popup-pos/services"
	"github.com/yeremiapane/popup-pos/utils"
)

// Lanes are the kitchen display's three columns.
type Lanes struct {
	New        []models.Order `json:"new"`
	InProgress []models.Order `json:"in_progress"`
	Ready      []models.Order `json:"ready"`
}

// KitchenViewModel keeps the campaign's working set of kitchen-visible
// orders (new, in_progress, ready) sorted oldest first; the kitchen triages
// by age, not recency. It reconciles against the change feed and, fully
// independently, re-fetches the whole set on a fixed interval. The poll is
// the correctness backstop for dropped feed events, the feed the low-latency
// hint; neither replaces the other.
type KitchenViewModel struct {
	repo       repository.OrderRepository
	svc        *services.OrderService
	hub        *feed.Hub
	campaignID uint

	// RefreshInterval is the fallback poll period. Set before Start.
	RefreshInterval time.Duration

	mu     sync.Mutex
	orders []models.Order

	stop       chan struct{}
	unsubOrder func()
	unsubItems func()
}

func NewKitchenViewModel(repo repository.OrderRepository, svc *services.OrderService, hub *feed.Hub, campaignID uint) *KitchenViewModel {
	return &KitchenViewModel{
		repo:            repo,
		svc:             svc,
		hub:             hub,
		campaignID:      campaignID,
		RefreshInterval: 30 * time.Second,
		stop:            make(chan struct{}),
	}
}

// Start performs the initial fetch, subscribes to both the order feed and
// the item feed, and launches the fallback poll.
func (vm *KitchenViewModel) Start() error {
	if err := vm.Refresh(); err != nil {
		return err
	}

	vm.unsubOrder = vm.hub.Subscribe(vm.campaignID, vm.applyEvent)
	vm.unsubItems = vm.hub.SubscribeItems(vm.applyEvent)

	go func() {
		ticker := time.NewTicker(vm.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				// A failed poll is logged and retried on the next tick;
				// there is no backoff escalation.
				if err := vm.Refresh(); err != nil {
					utils.ErrorLogger.Printf("kitchen refresh: %v", err)
				}
			case <-vm.stop:
				return
			}
		}
	}()
	return nil
}

func (vm *KitchenViewModel) Stop() {
	close(vm.stop)
	if vm.unsubOrder != nil {
		vm.unsubOrder()
	}
	if vm.unsubItems != nil {
		vm.unsubItems()
	}
}

// Refresh replaces the working set with the store's current truth. Safe to
// call at any time; also the manual-refresh affordance.
func (vm *KitchenViewModel) Refresh() error {
	orders, err := vm.repo.FetchActiveOrders(vm.campaignID)
	if err != nil {
		return err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.orders = orders
	return nil
}

// Orders returns the working set, oldest first.
func (vm *KitchenViewModel) Orders() []models.Order {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]models.Order, len(vm.orders))
	copy(out, vm.orders)
	return out
}

// applyEvent reconciles one feed event against the working set, with the
// kitchen visibility filter on top: an order whose new status is picked_up
// or cancelled is removed even if it was present, a newly visible one is
// inserted in age order. Snapshots are full, so re-delivery is harmless.
func (vm *KitchenViewModel) applyEvent(event feed.EventType, order *models.Order) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if event == feed.EventDeleted || !order.KitchenVisible() {
		vm.removeLocked(order.ID)
		return
	}

	for i := range vm.orders {
		if vm.orders[i].ID == order.ID {
			vm.orders[i] = *order
			return
		}
	}
	vm.orders = append(vm.orders, *order)
	sort.SliceStable(vm.orders, func(i, j int) bool {
		if vm.orders[i].CreatedAt.Equal(vm.orders[j].CreatedAt) {
			return vm.orders[i].ID < vm.orders[j].ID
		}
		return vm.orders[i].CreatedAt.Before(vm.orders[j].CreatedAt)
	})
}

// removeLocked requires vm.mu held.
func (vm *KitchenViewModel) removeLocked(orderID uint) {
	for i := range vm.orders {
		if vm.orders[i].ID == orderID {
			vm.orders = append(vm.orders[:i], vm.orders[i+1:]...)
			return
		}
	}
}

// Lanes buckets the working set into the three display columns by the
// order's aggregate status.
func (vm *KitchenViewModel) Lanes() Lanes {
	var lanes Lanes
	for _, order := range vm.Orders() {
		switch order.Status {
		case models.OrderStatusNew:
			lanes.New = append(lanes.New, order)
		case models.OrderStatusInProgress:
			lanes.InProgress = append(lanes.InProgress, order)
		case models.OrderStatusReady:
			lanes.Ready = append(lanes.Ready, order)
		}
	}
	return lanes
}

// LanesForCategory buckets by the status derived over only the items in one
// menu category: the station view. This reuses the server's classification
// rule on the item subset, so a station lane can disagree with the order's
// aggregate status only in the direction the subset implies. Orders with no
// item in the category, or whose subset derives to picked_up or cancelled,
// are left out.
func (vm *KitchenViewModel) LanesForCategory(categoryID uint) Lanes {
	var lanes Lanes
	for _, order := range vm.Orders() {
		var statuses []string
		for _, item := range order.OrderItems {
			if item.MenuItem.CategoryID == categoryID {
				statuses = append(statuses, item.Status)
			}
		}
		if len(statuses) == 0 {
			continue
		}
		switch services.DeriveOrderStatus(statuses) {
		case models.OrderStatusNew:
			lanes.New = append(lanes.New, order)
		case models.OrderStatusInProgress:
			lanes.InProgress = append(lanes.InProgress, order)
		case models.OrderStatusReady:
			lanes.Ready = append(lanes.Ready, order)
		}
	}
	return lanes
}

// StartItems advances a batch of items into preparation.
func (vm *KitchenViewModel) StartItems(itemIDs []uint) error {
	return vm.svc.SetItemsStatus(itemIDs, models.ItemStatusInProgress)
}

// FinishItems marks a batch of items done.
func (vm *KitchenViewModel) FinishItems(itemIDs []uint) error {
	return vm.svc.SetItemsStatus(itemIDs, models.ItemStatusDone)
}
