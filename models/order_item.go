package models

import "time"

// Order item status values. Items use "done" where orders use "ready";
// both mean all active work finished, awaiting pickup.
const (
	ItemStatusNew        = "new"
	ItemStatusInProgress = "in_progress"
	ItemStatusDone       = "done"
	ItemStatusPickedUp   = "picked_up"
	ItemStatusCancelled  = "cancelled"
)

// ValidItemStatus reports whether s is one of the known item statuses.
func ValidItemStatus(s string) bool {
	switch s {
	case ItemStatusNew, ItemStatusInProgress, ItemStatusDone, ItemStatusPickedUp, ItemStatusCancelled:
		return true
	}
	return false
}

type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order      Order               `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuItemID uint                `gorm:"not null" json:"menu_item_id"`
	MenuItem   MenuItem            `gorm:"foreignKey:MenuItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"menu_item"`
	Quantity   int                 `gorm:"not null" json:"quantity"`
	Price      float64             `gorm:"type:decimal(10,2);not null" json:"price"`
	Notes      string              `gorm:"type:text" json:"notes"`
	Status     string              `gorm:"type:varchar(20);not null;default:'new'" json:"status"`
	Modifiers  []OrderItemModifier `gorm:"foreignKey:OrderItemID" json:"modifiers"`
	CreatedAt  time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time           `gorm:"not null" json:"updated_at"`
}

// LineTotal is (base price + sum of modifier deltas) * quantity.
func (i *OrderItem) LineTotal() float64 {
	unit := i.Price
	for _, m := range i.Modifiers {
		unit += m.PriceDelta
	}
	return unit * float64(i.Quantity)
}
