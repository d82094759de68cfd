package models

import "time"

// Modifier is a catalog-level option (extra shot, oat milk) with a price
// delta relative to the base item price.
type Modifier struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	PriceDelta float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"price_delta"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

// MenuItemModifier links a modifier to the menu items it can be applied to.
type MenuItemModifier struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	MenuItemID uint     `gorm:"not null;index:idx_item_modifier,unique" json:"menu_item_id"`
	ModifierID uint     `gorm:"not null;index:idx_item_modifier,unique" json:"modifier_id"`
	MenuItem   MenuItem `gorm:"foreignKey:MenuItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Modifier   Modifier `gorm:"foreignKey:ModifierID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"modifier"`
}
