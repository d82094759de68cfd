package models

import "time"

// Order status values. The order-level status is always derived from the
// statuses of its items; it is never set directly by a user action.
const (
	OrderStatusNew        = "new"
	OrderStatusInProgress = "in_progress"
	OrderStatusReady      = "ready"
	OrderStatusPickedUp   = "picked_up"
	OrderStatusCancelled  = "cancelled"
)

type Order struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	CampaignID   uint        `gorm:"not null;index" json:"campaign_id"`
	Campaign     Campaign    `gorm:"foreignKey:CampaignID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CustomerName string      `gorm:"type:varchar(255);not null" json:"customer_name"`
	Status       string      `gorm:"type:varchar(20);not null;default:'new'" json:"status"`
	Subtotal     float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"subtotal"`
	Notes        string      `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"not null" json:"updated_at"`
	OrderItems   []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
}

// KitchenVisible reports whether the order belongs on the kitchen display.
// Picked-up and cancelled orders disappear from the kitchen entirely.
func (o *Order) KitchenVisible() bool {
	switch o.Status {
	case OrderStatusNew, OrderStatusInProgress, OrderStatusReady:
		return true
	}
	return false
}

// ItemStatuses collects the status of every loaded item, in item order.
func (o *Order) ItemStatuses() []string {
	statuses := make([]string, 0, len(o.OrderItems))
	for _, item := range o.OrderItems {
		statuses = append(statuses, item.Status)
	}
	return statuses
}
