package feed

import (
	"sync"

	"github.com/google/uuid"
	"github.com/yeremiapane/popup-pos/models"
)

// EventType is the normalized three-way change tag.
type EventType string

const (
	EventInserted EventType = "inserted"
	EventUpdated  EventType = "updated"
	EventDeleted  EventType = "deleted"
)

// Message is the wire envelope pushed to websocket clients.
type Message struct {
	Event EventType     `json:"event"`
	Data  *models.Order `json:"data"`
}

// Callback receives a change event together with the full current order
// snapshot (never a partial diff). For deleted events only the order ID is
// populated. Callbacks must be idempotent: the hub may re-deliver the same
// snapshot, and delivery order is best effort.
type Callback func(event EventType, order *models.Order)

type orderSubscriber struct {
	campaignID uint
	fn         Callback
}

// Hub fans storage change notifications out to in-process subscribers:
// campaign-scoped order subscribers and item-table subscribers (consumers
// that need item-level changes even when the parent order row is untouched).
type Hub struct {
	mu        sync.Mutex
	orderSubs map[string]orderSubscriber
	itemSubs  map[string]Callback
}

func NewHub() *Hub {
	return &Hub{
		orderSubs: make(map[string]orderSubscriber),
		itemSubs:  make(map[string]Callback),
	}
}

// Subscribe registers fn for order-row events in one campaign and returns
// an unsubscribe handle.
func (h *Hub) Subscribe(campaignID uint, fn Callback) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := uuid.NewString()
	h.orderSubs[key] = orderSubscriber{campaignID: campaignID, fn: fn}
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.orderSubs, key)
	}
}

// SubscribeItems registers fn for events sourced from the order_items
// table. The delivered snapshot is still the full parent order.
func (h *Hub) SubscribeItems(fn Callback) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := uuid.NewString()
	h.itemSubs[key] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.itemSubs, key)
	}
}

// PublishOrder delivers an order-row event to matching campaign
// subscribers. campaignID 0 means the campaign could not be determined
// (a deleted row); such events go to every subscriber, and consumers
// reconcile by ID.
func (h *Hub) PublishOrder(event EventType, campaignID uint, order *models.Order) {
	h.mu.Lock()
	subs := make([]Callback, 0, len(h.orderSubs))
	for _, sub := range h.orderSubs {
		if campaignID == 0 || sub.campaignID == campaignID {
			subs = append(subs, sub.fn)
		}
	}
	h.mu.Unlock()

	// Deliver outside the lock so callbacks may subscribe/unsubscribe.
	for _, fn := range subs {
		fn(event, order)
	}
}

// PublishItems delivers an item-sourced event to item-table subscribers.
func (h *Hub) PublishItems(event EventType, order *models.Order) {
	h.mu.Lock()
	subs := make([]Callback, 0, len(h.itemSubs))
	for _, fn := range h.itemSubs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(event, order)
	}
}
