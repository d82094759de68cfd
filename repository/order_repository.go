package repository

import (
	"github.com/yeremiapane/popup-pos/models"
	"gorm.io/gorm"
)

// OrderPage is one slice of the terminal's most-recent-first order list.
type OrderPage struct {
	Orders     []models.Order `json:"orders"`
	TotalCount int64          `json:"total_count"`
	HasMore    bool           `json:"has_more"`
}

// OrderRepository is the persistence boundary for the status engine and the
// view-models. Everything that mutates orders goes through here so the core
// can be exercised against any GORM backend (MySQL in production, in-memory
// SQLite in tests).
type OrderRepository interface {
	// FetchOrderAggregate returns the full order snapshot: order, items in
	// creation sequence, item modifiers, menu items. gorm.ErrRecordNotFound
	// when the order does not exist.
	FetchOrderAggregate(orderID uint) (*models.Order, error)
	// FetchOrdersPage returns one most-recent-first page for a campaign.
	// statusFilter, when non-empty, restricts to the given order statuses.
	FetchOrdersPage(campaignID uint, page, pageSize int, statusFilter []string) (*OrderPage, error)
	// FetchActiveOrders returns kitchen-visible orders (new, in_progress,
	// ready), oldest first.
	FetchActiveOrders(campaignID uint) ([]models.Order, error)

	CreateOrder(order *models.Order) error
	DeleteOrder(orderID uint) error
	UpdateOrderStatus(orderID uint, status string) error
	UpdateOrderSubtotal(orderID uint, subtotal float64) error

	GetOrderItem(itemID uint) (*models.OrderItem, error)
	CreateOrderItem(item *models.OrderItem) error
	SaveOrderItem(item *models.OrderItem) error
	DeleteOrderItem(itemID uint) error
	CountOrderItems(orderID uint) (int64, error)

	CreateItemModifier(mod *models.OrderItemModifier) error
	ReplaceItemModifiers(itemID uint, mods []models.OrderItemModifier) error

	AppendStatusEvent(event *models.OrderItemStatusEvent) error

	GetMenuItem(menuItemID uint) (*models.MenuItem, error)
	GetModifiers(modifierIDs []uint) ([]models.Modifier, error)
}

type gormOrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

func (r *gormOrderRepository) FetchOrderAggregate(orderID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.created_at ASC, order_items.id ASC")
		}).
		Preload("OrderItems.Modifiers").
		Preload("OrderItems.MenuItem").
		First(&order, orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) FetchOrdersPage(campaignID uint, page, pageSize int, statusFilter []string) (*OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	query := r.db.Model(&models.Order{}).Where("campaign_id = ?", campaignID)
	if len(statusFilter) > 0 {
		query = query.Where("status IN ?", statusFilter)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []models.Order
	err := query.
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.created_at ASC, order_items.id ASC")
		}).
		Preload("OrderItems.Modifiers").
		Preload("OrderItems.MenuItem").
		Order("created_at DESC, id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return &OrderPage{
		Orders:     orders,
		TotalCount: total,
		HasMore:    int64(page*pageSize) < total,
	}, nil
}

func (r *gormOrderRepository) FetchActiveOrders(campaignID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.created_at ASC, order_items.id ASC")
		}).
		Preload("OrderItems.Modifiers").
		Preload("OrderItems.MenuItem").
		Where("campaign_id = ? AND status IN ?", campaignID,
			[]string{models.OrderStatusNew, models.OrderStatusInProgress, models.OrderStatusReady}).
		Order("created_at ASC, id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *gormOrderRepository) CreateOrder(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *gormOrderRepository) DeleteOrder(orderID uint) error {
	// Items and their modifier snapshots go with the order.
	if err := r.db.
		Where("order_item_id IN (?)", r.db.Model(&models.OrderItem{}).Select("id").Where("order_id = ?", orderID)).
		Delete(&models.OrderItemModifier{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Order{}, orderID).Error
}

func (r *gormOrderRepository) UpdateOrderStatus(orderID uint, status string) error {
	return r.db.Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}

func (r *gormOrderRepository) UpdateOrderSubtotal(orderID uint, subtotal float64) error {
	return r.db.Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("subtotal", subtotal).Error
}

func (r *gormOrderRepository) GetOrderItem(itemID uint) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.db.Preload("Modifiers").First(&item, itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *gormOrderRepository) CreateOrderItem(item *models.OrderItem) error {
	return r.db.Create(item).Error
}

func (r *gormOrderRepository) SaveOrderItem(item *models.OrderItem) error {
	return r.db.Save(item).Error
}

func (r *gormOrderRepository) DeleteOrderItem(itemID uint) error {
	if err := r.db.Where("order_item_id = ?", itemID).Delete(&models.OrderItemModifier{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.OrderItem{}, itemID).Error
}

func (r *gormOrderRepository) CountOrderItems(orderID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.OrderItem{}).Where("order_id = ?", orderID).Count(&count).Error
	return count, err
}

func (r *gormOrderRepository) CreateItemModifier(mod *models.OrderItemModifier) error {
	return r.db.Create(mod).Error
}

func (r *gormOrderRepository) ReplaceItemModifiers(itemID uint, mods []models.OrderItemModifier) error {
	// Full replacement, delete then reinsert; no incremental diffing.
	if err := r.db.Where("order_item_id = ?", itemID).Delete(&models.OrderItemModifier{}).Error; err != nil {
		return err
	}
	for i := range mods {
		mods[i].OrderItemID = itemID
		if err := r.db.Create(&mods[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *gormOrderRepository) AppendStatusEvent(event *models.OrderItemStatusEvent) error {
	return r.db.Create(event).Error
}

func (r *gormOrderRepository) GetMenuItem(menuItemID uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.First(&item, menuItemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *gormOrderRepository) GetModifiers(modifierIDs []uint) ([]models.Modifier, error) {
	if len(modifierIDs) == 0 {
		return nil, nil
	}
	var mods []models.Modifier
	if err := r.db.Where("id IN ?", modifierIDs).Find(&mods).Error; err != nil {
		return nil, err
	}
	return mods, nil
}
