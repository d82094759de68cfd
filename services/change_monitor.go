package services

import (
	"errors"
	"time"

	"github.com/yeremiapane/popup-pos/feed"
	"github.com/yeremiapane/popup-pos/models"
	"github.com/yeremiapane/popup-pos/repository"
	"github.com/yeremiapane/popup-pos/utils"
	"gorm.io/gorm"
)

// ChangeMonitor drains the db_changes spool that SQL triggers fill on every
// orders/order_items row change, re-fetches the full order aggregate for
// each change and publishes it to the feed hub. Subscribers always get a
// complete snapshot, never a field-level diff.
type ChangeMonitor struct {
	DB       *gorm.DB
	Repo     repository.OrderRepository
	Hub      *feed.Hub
	StopChan chan struct{}
	Interval time.Duration
}

func NewChangeMonitor(db *gorm.DB, repo repository.OrderRepository, hub *feed.Hub) *ChangeMonitor {
	return &ChangeMonitor{
		DB:       db,
		Repo:     repo,
		Hub:      hub,
		StopChan: make(chan struct{}),
		Interval: 500 * time.Millisecond,
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.checkChanges()
			case <-cm.StopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	close(cm.StopChan)
}

func (cm *ChangeMonitor) checkChanges() {
	var changes []models.DBChange

	tx := cm.DB.Begin()

	if err := tx.Where("processed = ?", false).
		Order("changed_at ASC, id ASC").
		Limit(100).
		Find(&changes).Error; err != nil {
		tx.Rollback()
		utils.ErrorLogger.Printf("fetch pending changes: %v", err)
		return
	}

	for _, change := range changes {
		switch change.TableName {
		case "orders":
			cm.processOrderChange(change)
		case "order_items":
			cm.processItemChange(change)
		}

		if err := tx.Model(&models.DBChange{}).
			Where("id = ?", change.ID).
			Update("processed", true).Error; err != nil {
			tx.Rollback()
			utils.ErrorLogger.Printf("mark change %d processed: %v", change.ID, err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.ErrorLogger.Printf("commit change batch: %v", err)
		tx.Rollback()
	}
}

func (cm *ChangeMonitor) processOrderChange(change models.DBChange) {
	if change.ActionType == "DELETE" {
		// The row is gone, so the campaign is unknown; every subscriber
		// gets the tombstone and reconciles by ID.
		cm.Hub.PublishOrder(feed.EventDeleted, 0, &models.Order{ID: uint(change.RecordID)})
		return
	}

	order, err := cm.Repo.FetchOrderAggregate(uint(change.RecordID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deleted between the trigger and the poll; the DELETE change
			// behind it in the spool will carry the tombstone.
			return
		}
		utils.ErrorLogger.Printf("fetch order %d for change feed: %v", change.RecordID, err)
		return
	}

	switch change.ActionType {
	case "INSERT":
		cm.Hub.PublishOrder(feed.EventInserted, order.CampaignID, order)
	case "UPDATE":
		cm.Hub.PublishOrder(feed.EventUpdated, order.CampaignID, order)
	}
}

// processItemChange handles changes that touch only the order_items table.
// A status write that leaves the derived order status unchanged never
// touches the parent row, so item subscribers would otherwise miss it.
func (cm *ChangeMonitor) processItemChange(change models.DBChange) {
	if change.ActionType == "DELETE" {
		// The item row is gone and carries the only link to its order.
		// Item deletion always rewrites the parent (subtotal or full
		// removal), so the orders-table change covers subscribers.
		return
	}

	item, err := cm.Repo.GetOrderItem(uint(change.RecordID))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorLogger.Printf("fetch item %d for change feed: %v", change.RecordID, err)
		}
		return
	}

	order, err := cm.Repo.FetchOrderAggregate(item.OrderID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorLogger.Printf("fetch order %d for change feed: %v", item.OrderID, err)
		}
		return
	}

	cm.Hub.PublishItems(feed.EventUpdated, order)
	cm.Hub.PublishOrder(feed.EventUpdated, order.CampaignID, order)
}
