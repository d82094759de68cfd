package viewmodel

import (
	"fmt"
	"sync"

	"github.com/yeremiapane/popup-pos/feed"
	"github.com/yeremiapane/popup-pos/models"
	"github.com/yeremiapane/popup-pos/repository"
	"github.com/yeremiapane/popup-pos/services"
	"github.com/yeremiapane/popup-pos/utils"
)

// TerminalViewModel keeps the terminal's most-recent-first order list for
// one campaign live. It holds two layers: a confirmed snapshot maintained
// from fetches and feed events, and a pending overlay of optimistic local
// mutations that is merged for display and dropped on confirmation or
// repaired on failure. The store stays authoritative; the overlay only
// bridges the window until the write is confirmed.
type TerminalViewModel struct {
	repo       repository.OrderRepository
	svc        *services.OrderService
	hub        *feed.Hub
	campaignID uint
	pageSize   int

	mu        sync.Mutex
	confirmed []models.Order
	pending   map[uint]models.Order
	page      int
	hasMore   bool
	total     int64
	unsub     func()
}

func NewTerminalViewModel(repo repository.OrderRepository, svc *services.OrderService, hub *feed.Hub, campaignID uint, pageSize int) *TerminalViewModel {
	if pageSize < 1 {
		pageSize = 20
	}
	return &TerminalViewModel{
		repo:       repo,
		svc:        svc,
		hub:        hub,
		campaignID: campaignID,
		pageSize:   pageSize,
		pending:    make(map[uint]models.Order),
	}
}

// Start loads page 1 and subscribes to the change feed.
func (vm *TerminalViewModel) Start() error {
	if err := vm.Reset(); err != nil {
		return err
	}
	vm.unsub = vm.hub.Subscribe(vm.campaignID, vm.applyEvent)
	return nil
}

func (vm *TerminalViewModel) Stop() {
	if vm.unsub != nil {
		vm.unsub()
		vm.unsub = nil
	}
}

// Reset throws the cache away and reloads page 1. Also the manual-refresh
// affordance and the fallback repair path when a failed write cannot be
// pinned to a single order.
func (vm *TerminalViewModel) Reset() error {
	page, err := vm.repo.FetchOrdersPage(vm.campaignID, 1, vm.pageSize, nil)
	if err != nil {
		return err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.confirmed = page.Orders
	vm.pending = make(map[uint]models.Order)
	vm.page = 1
	vm.hasMore = page.HasMore
	vm.total = page.TotalCount
	return nil
}

// LoadMore fetches the next page and appends it.
func (vm *TerminalViewModel) LoadMore() error {
	vm.mu.Lock()
	next := vm.page + 1
	vm.mu.Unlock()

	page, err := vm.repo.FetchOrdersPage(vm.campaignID, next, vm.pageSize, nil)
	if err != nil {
		return err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	for _, order := range page.Orders {
		if vm.indexOf(order.ID) < 0 {
			vm.confirmed = append(vm.confirmed, order)
		}
	}
	vm.page = next
	vm.hasMore = page.HasMore
	vm.total = page.TotalCount
	return nil
}

func (vm *TerminalViewModel) HasMore() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.hasMore
}

// Orders returns the display list: confirmed snapshots with any pending
// optimistic overlay applied on top.
func (vm *TerminalViewModel) Orders() []models.Order {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	out := make([]models.Order, len(vm.confirmed))
	for i, order := range vm.confirmed {
		if overlay, ok := vm.pending[order.ID]; ok {
			out[i] = overlay
		} else {
			out[i] = order
		}
	}
	return out
}

// MarkItemPickedUp is the terminal's one fulfillment action: a done item is
// handed to the customer. The cached order is patched optimistically before
// the write; a failed write re-fetches the affected order (or resets to
// page 1 when the order cannot be identified) so the guess never lingers.
func (vm *TerminalViewModel) MarkItemPickedUp(itemID uint) error {
	orderID, patched := vm.patchOptimistic(itemID, models.ItemStatusPickedUp)

	_, err := vm.svc.SetItemStatus(itemID, models.ItemStatusPickedUp)
	if err == nil {
		return nil
	}

	if !patched {
		if resetErr := vm.Reset(); resetErr != nil {
			utils.ErrorLogger.Printf("terminal reset after failed pickup: %v", resetErr)
		}
		return err
	}
	if repairErr := vm.repairOrder(orderID); repairErr != nil {
		utils.ErrorLogger.Printf("terminal repair of order %d: %v", orderID, repairErr)
	}
	return err
}

// patchOptimistic applies the item status locally, re-deriving the
// order-level status with the same rule the server uses.
func (vm *TerminalViewModel) patchOptimistic(itemID uint, status string) (uint, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	for _, order := range vm.confirmed {
		base := order
		if overlay, ok := vm.pending[order.ID]; ok {
			base = overlay
		}
		for i := range base.OrderItems {
			if base.OrderItems[i].ID != itemID {
				continue
			}
			patched := cloneOrder(base)
			patched.OrderItems[i].Status = status
			patched.Status = services.DeriveOrderStatus(patched.ItemStatuses())
			vm.pending[order.ID] = patched
			return order.ID, true
		}
	}
	return 0, false
}

// repairOrder replaces the cached copy with the store's truth and drops the
// overlay.
func (vm *TerminalViewModel) repairOrder(orderID uint) error {
	order, err := vm.repo.FetchOrderAggregate(orderID)
	if err != nil {
		return fmt.Errorf("fetch order %d: %w", orderID, err)
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	delete(vm.pending, orderID)
	if idx := vm.indexOf(orderID); idx >= 0 {
		vm.confirmed[idx] = *order
	}
	return nil
}

// applyEvent reconciles one feed event. Events are full snapshots, so the
// handling is idempotent: insert prepends, update replaces in place at any
// pagination depth, delete removes. A confirmed snapshot supersedes any
// pending overlay for the same order.
func (vm *TerminalViewModel) applyEvent(event feed.EventType, order *models.Order) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	switch event {
	case feed.EventInserted:
		if vm.indexOf(order.ID) < 0 {
			vm.confirmed = append([]models.Order{*order}, vm.confirmed...)
			vm.total++
		}
		delete(vm.pending, order.ID)
	case feed.EventUpdated:
		if idx := vm.indexOf(order.ID); idx >= 0 {
			vm.confirmed[idx] = *order
		}
		delete(vm.pending, order.ID)
	case feed.EventDeleted:
		if idx := vm.indexOf(order.ID); idx >= 0 {
			vm.confirmed = append(vm.confirmed[:idx], vm.confirmed[idx+1:]...)
			vm.total--
		}
		delete(vm.pending, order.ID)
	}
}

// indexOf requires vm.mu held.
func (vm *TerminalViewModel) indexOf(orderID uint) int {
	for i := range vm.confirmed {
		if vm.confirmed[i].ID == orderID {
			return i
		}
	}
	return -1
}

func cloneOrder(order models.Order) models.Order {
	clone := order
	clone.OrderItems = make([]models.OrderItem, len(order.OrderItems))
	copy(clone.OrderItems, order.OrderItems)
	return clone
}
