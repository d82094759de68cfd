package models

import "time"

// OrderItemModifier is an immutable snapshot of a modifier at the moment it
// was attached to an order item. Label and PriceDelta are copied so later
// catalog edits never change historical orders; ModifierID is nullable
// because the catalog modifier may be deleted afterwards.
type OrderItemModifier struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderItemID uint      `gorm:"not null;index" json:"order_item_id"`
	ModifierID  *uint     `json:"modifier_id,omitempty"`
	Label       string    `gorm:"type:varchar(255);not null" json:"label"`
	PriceDelta  float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"price_delta"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}
