package services

import (
	"errors"
	"strings"
	"time"

	"github.com/yeremiapane/popup-pos/models"
	"github.com/yeremiapane/popup-pos/repository"
	"github.com/yeremiapane/popup-pos/utils"
	"gorm.io/gorm"
)

// OrderService owns every order/item mutation and funnels each one into the
// status aggregation, so the order-level status can never drift from its
// items outside the optimistic-update window on clients.
type OrderService struct {
	Repo repository.OrderRepository
}

func NewOrderService(repo repository.OrderRepository) *OrderService {
	return &OrderService{Repo: repo}
}

// OrderLine is one requested line at order placement.
type OrderLine struct {
	MenuItemID  uint   `json:"menu_item_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required"`
	Notes       string `json:"notes"`
	ModifierIDs []uint `json:"modifier_ids"`
}

// PlaceOrderRequest is the cart handed over by the terminal UI.
type PlaceOrderRequest struct {
	CampaignID   uint        `json:"campaign_id"`
	CustomerName string      `json:"customer_name"`
	Notes        string      `json:"notes"`
	Lines        []OrderLine `json:"lines"`
}

// EditItemRequest replaces an item's quantity, notes and full modifier set.
type EditItemRequest struct {
	Quantity    int     `json:"quantity" binding:"required"`
	Notes       *string `json:"notes"`
	ModifierIDs []uint  `json:"modifier_ids"`
}

// PlaceOrder creates the order row, its items and its modifier snapshots as
// three dependent writes without a cross-table transaction. A failed item
// write triggers a best-effort compensating delete of the whole order; a
// failed modifier snapshot is logged and swallowed (losing a modifier beats
// losing the order). Lines whose catalog item skips prep start out done.
func (s *OrderService) PlaceOrder(req PlaceOrderRequest) (*models.Order, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, ErrCustomerNameRequired
	}
	if len(req.Lines) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, line := range req.Lines {
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	now := time.Now()
	order := models.Order{
		CampaignID:   req.CampaignID,
		CustomerName: strings.TrimSpace(req.CustomerName),
		Status:       models.OrderStatusNew,
		Subtotal:     0,
		Notes:        req.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.CreateOrder(&order); err != nil {
		return nil, err
	}

	for _, line := range req.Lines {
		menuItem, err := s.Repo.GetMenuItem(line.MenuItemID)
		if err != nil {
			s.compensateOrder(order.ID)
			return nil, err
		}

		status := models.ItemStatusNew
		if menuItem.SkipPrep {
			status = models.ItemStatusDone
		}

		item := models.OrderItem{
			OrderID:    order.ID,
			MenuItemID: menuItem.ID,
			Quantity:   line.Quantity,
			Price:      menuItem.Price,
			Notes:      line.Notes,
			Status:     status,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.Repo.CreateOrderItem(&item); err != nil {
			s.compensateOrder(order.ID)
			return nil, err
		}

		// Modifier snapshots are best effort: the order and its items
		// already exist, so a failure here must not fail the placement.
		for _, snapshot := range s.snapshotModifiers(line.ModifierIDs) {
			snapshot.OrderItemID = item.ID
			if err := s.Repo.CreateItemModifier(&snapshot); err != nil {
				utils.ErrorLogger.Printf("create modifier snapshot for item %d: %v", item.ID, err)
			}
		}
	}

	if err := s.RecomputeSubtotal(order.ID); err != nil {
		return nil, err
	}
	if err := s.RecomputeOrderStatus(order.ID); err != nil {
		return nil, err
	}

	return s.Repo.FetchOrderAggregate(order.ID)
}

// compensateOrder deletes a half-created order after an item write failed.
func (s *OrderService) compensateOrder(orderID uint) {
	if err := s.Repo.DeleteOrder(orderID); err != nil {
		utils.ErrorLogger.Printf("compensating delete of order %d failed: %v", orderID, err)
	}
}

// snapshotModifiers copies name and price delta from the live catalog.
// Missing modifiers are skipped with a log line.
func (s *OrderService) snapshotModifiers(modifierIDs []uint) []models.OrderItemModifier {
	if len(modifierIDs) == 0 {
		return nil
	}
	mods, err := s.Repo.GetModifiers(modifierIDs)
	if err != nil {
		utils.ErrorLogger.Printf("fetch modifiers %v: %v", modifierIDs, err)
		return nil
	}
	snapshots := make([]models.OrderItemModifier, 0, len(mods))
	for _, mod := range mods {
		id := mod.ID
		snapshots = append(snapshots, models.OrderItemModifier{
			ModifierID: &id,
			Label:      mod.Name,
			PriceDelta: mod.PriceDelta,
			CreatedAt:  time.Now(),
		})
	}
	return snapshots
}

// SetItemStatus writes one item's status, appends a transition event and
// re-derives the owning order's status. Reachability of the transition is
// not checked here; the action endpoints gate what each UI may request.
func (s *OrderService) SetItemStatus(itemID uint, newStatus string) (*models.OrderItem, error) {
	if !models.ValidItemStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	item, err := s.Repo.GetOrderItem(itemID)
	if err != nil {
		return nil, err
	}
	if item.Status == newStatus {
		// Idempotent re-delivery; nothing to write, nothing to log.
		return item, nil
	}

	oldStatus := item.Status
	item.Status = newStatus
	item.UpdatedAt = time.Now()
	if err := s.Repo.SaveOrderItem(item); err != nil {
		return nil, err
	}

	s.recordTransition(item.ID, oldStatus, newStatus)

	if err := s.RecomputeOrderStatus(item.OrderID); err != nil {
		return nil, err
	}
	return item, nil
}

// SetItemsStatus applies one status to a set of items, then recomputes each
// distinct affected order once. Missing items are skipped; the first write
// failure is reported after the recompute pass so orders touched before the
// failure still converge.
func (s *OrderService) SetItemsStatus(itemIDs []uint, newStatus string) error {
	if !models.ValidItemStatus(newStatus) {
		return ErrInvalidStatus
	}

	affected := make(map[uint]struct{})
	var firstErr error

	for _, itemID := range itemIDs {
		item, err := s.Repo.GetOrderItem(itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.ErrorLogger.Printf("batch status update: item %d not found", itemID)
				continue
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if item.Status == newStatus {
			continue
		}

		oldStatus := item.Status
		item.Status = newStatus
		item.UpdatedAt = time.Now()
		if err := s.Repo.SaveOrderItem(item); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.recordTransition(item.ID, oldStatus, newStatus)
		affected[item.OrderID] = struct{}{}
	}

	for orderID := range affected {
		if err := s.RecomputeOrderStatus(orderID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// recordTransition appends to the status transition log. The log is
// diagnostic only, so a failed append never blocks or rolls back the
// status write it describes.
func (s *OrderService) recordTransition(itemID uint, oldStatus, newStatus string) {
	event := models.OrderItemStatusEvent{
		OrderItemID: itemID,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		CreatedAt:   time.Now(),
	}
	if err := s.Repo.AppendStatusEvent(&event); err != nil {
		utils.ErrorLogger.Printf("record status transition item=%d %s->%s: %v",
			itemID, oldStatus, newStatus, err)
	}
}

// RecomputeOrderStatus derives the order status from its items and persists
// it only when it changed, keeping redundant rows out of the change feed.
//
// Two guards protect against racing sibling-item updates (there is no
// transaction spanning the order and its items): a cancelled order never
// leaves cancelled, and a picked_up order only accepts a re-derivation that
// still yields picked_up, so a late stale item write cannot reopen it.
func (s *OrderService) RecomputeOrderStatus(orderID uint) error {
	order, err := s.Repo.FetchOrderAggregate(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if len(order.OrderItems) == 0 {
		return nil
	}

	next := DeriveOrderStatus(order.ItemStatuses())

	if order.Status == models.OrderStatusCancelled {
		return nil
	}
	if order.Status == models.OrderStatusPickedUp && next != models.OrderStatusPickedUp {
		return nil
	}
	if next == order.Status {
		return nil
	}

	return s.Repo.UpdateOrderStatus(orderID, next)
}

// RecomputeSubtotal re-derives subtotal = sum of
// (base price + modifier deltas) * quantity over all items.
func (s *OrderService) RecomputeSubtotal(orderID uint) error {
	order, err := s.Repo.FetchOrderAggregate(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	var subtotal float64
	for i := range order.OrderItems {
		subtotal += order.OrderItems[i].LineTotal()
	}
	if subtotal == order.Subtotal {
		return nil
	}
	return s.Repo.UpdateOrderSubtotal(orderID, subtotal)
}

// EditOrderItem updates quantity and notes and replaces the full modifier
// set (delete then reinsert), then recomputes the subtotal. Quantity zero
// is rejected here; removing a line goes through DeleteOrderItem.
func (s *OrderService) EditOrderItem(itemID uint, req EditItemRequest) (*models.OrderItem, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.Repo.GetOrderItem(itemID)
	if err != nil {
		return nil, err
	}

	item.Quantity = req.Quantity
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	item.UpdatedAt = time.Now()
	if err := s.Repo.SaveOrderItem(item); err != nil {
		return nil, err
	}

	if err := s.Repo.ReplaceItemModifiers(item.ID, s.snapshotModifiers(req.ModifierIDs)); err != nil {
		return nil, err
	}

	if err := s.RecomputeSubtotal(item.OrderID); err != nil {
		return nil, err
	}
	return s.Repo.GetOrderItem(item.ID)
}

// DeleteOrderItem removes one line. Deleting the last line removes the
// whole order; otherwise subtotal and status are recomputed.
func (s *OrderService) DeleteOrderItem(itemID uint) error {
	item, err := s.Repo.GetOrderItem(itemID)
	if err != nil {
		return err
	}
	orderID := item.OrderID

	if err := s.Repo.DeleteOrderItem(itemID); err != nil {
		return err
	}

	remaining, err := s.Repo.CountOrderItems(orderID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		return s.Repo.DeleteOrder(orderID)
	}

	if err := s.RecomputeSubtotal(orderID); err != nil {
		return err
	}
	return s.RecomputeOrderStatus(orderID)
}
