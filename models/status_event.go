package models

import "time"

// OrderItemStatusEvent is one row of the append-only transition log: which
// item changed status, from what, to what, when. Rows are never updated or
// deleted; the log is diagnostic, not authoritative.
type OrderItemStatusEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderItemID uint      `gorm:"not null;index" json:"order_item_id"`
	OldStatus   string    `gorm:"type:varchar(20);not null" json:"old_status"`
	NewStatus   string    `gorm:"type:varchar(20);not null" json:"new_status"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}
