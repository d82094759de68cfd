package models

import "time"

// DBChange is the change-feed spool. SQL triggers on orders and order_items
// append a row for every INSERT/UPDATE/DELETE; the change monitor drains
// unprocessed rows and turns them into feed events.
type DBChange struct {
	ID         uint      `gorm:"primaryKey"`
	TableName  string    `gorm:"type:varchar(50);not null;index:idx_table_action"`
	RecordID   int64     `gorm:"not null"`
	ActionType string    `gorm:"type:varchar(10);not null;index:idx_table_action"`
	ChangedAt  time.Time `gorm:"not null;autoCreateTime"`
	Processed  bool      `gorm:"default:false;index:idx_processed"`
}
