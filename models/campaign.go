package models

import "time"

// Campaign is one time-boxed selling session (a market day, a pop-up).
// Orders are always scoped to a campaign.
type Campaign struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Status    string     `gorm:"type:varchar(20);not null;default:'open'" json:"status"` // open, closed
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}
