package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/popup-pos/controllers"
	"github.com/yeremiapane/popup-pos/models"
	"github.com/yeremiapane/popup-pos/repository"
	"github.com/yeremiapane/popup-pos/services"
	"github.com/yeremiapane/popup-pos/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

func setupTestDBForOrders(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Campaign{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Modifier{},
		&models.MenuItemModifier{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemModifier{},
		&models.OrderItemStatusEvent{},
	))

	db.Create(&models.Campaign{Name: "Test Market", Status: "open"})
	db.Create(&models.MenuCategory{Name: "Drinks"})
	db.Create(&models.MenuItem{CategoryID: 1, Name: "Latte", Price: 3.50, Available: true})
	db.Create(&models.Modifier{Name: "Oat Milk", PriceDelta: 1.50})
	return db
}

// setupOrderRouter wires the order routes behind a stub auth middleware
// that injects the given role.
func setupOrderRouter(db *gorm.DB, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	repo := repository.NewOrderRepository(db)
	svc := services.NewOrderService(repo)
	orderCtrl := controllers.NewOrderController(repo, svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", uint(1))
		c.Set("role", role)
		c.Next()
	})

	router.POST("/campaigns/:campaign_id/orders", orderCtrl.PlaceOrder)
	router.GET("/campaigns/:campaign_id/orders", orderCtrl.GetOrdersPage)
	router.GET("/campaigns/:campaign_id/orders/active", orderCtrl.GetActiveOrders)
	router.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	router.DELETE("/order-items/:item_id", orderCtrl.DeleteOrderItem)
	router.POST("/order-items/status", orderCtrl.UpdateItemsStatus)
	router.POST("/order-items/:item_id/start", orderCtrl.StartItem)
	router.POST("/order-items/:item_id/finish", orderCtrl.FinishItem)
	router.POST("/order-items/:item_id/pickup", orderCtrl.PickUpItem)

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, url string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func placeOrderHTTP(t *testing.T, router *gin.Engine) uint {
	t.Helper()

	w := doJSON(t, router, "POST", "/campaigns/1/orders", gin.H{
		"customer_name": "Ayu",
		"lines": []gin.H{
			{"menu_item_id": 1, "quantity": 2, "modifier_ids": []uint{1}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data models.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.ID
}

func TestPlaceAndGetOrder(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupOrderRouter(db, "terminal")

	orderID := placeOrderHTTP(t, router)

	w := doJSON(t, router, "GET", fmt.Sprintf("/orders/%d", orderID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data models.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, orderID, resp.Data.ID)
	assert.InDelta(t, 10.00, resp.Data.Subtotal, 0.001) // (3.50+1.50)*2
	require.Len(t, resp.Data.OrderItems, 1)
}

func TestPlaceOrderValidationOverHTTP(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupOrderRouter(db, "terminal")

	w := doJSON(t, router, "POST", "/campaigns/1/orders", gin.H{
		"customer_name": "",
		"lines":         []gin.H{{"menu_item_id": 1, "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// The gated action endpoints encode which transitions each screen may
// request; wrong-state requests bounce with 400.
func TestGatedTransitions(t *testing.T) {
	db := setupTestDBForOrders(t)
	kitchen := setupOrderRouter(db, "kitchen")
	terminal := setupOrderRouter(db, "terminal")

	orderID := placeOrderHTTP(t, terminal)

	var item models.OrderItem
	require.NoError(t, db.Where("order_id = ?", orderID).First(&item).Error)

	// Terminal cannot pick up an item that is not done yet.
	w := doJSON(t, terminal, "POST", fmt.Sprintf("/order-items/%d/pickup", item.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Kitchen-only actions are forbidden for the terminal role.
	w = doJSON(t, terminal, "POST", fmt.Sprintf("/order-items/%d/start", item.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Kitchen walks the item forward.
	w = doJSON(t, kitchen, "POST", fmt.Sprintf("/order-items/%d/start", item.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, kitchen, "POST", fmt.Sprintf("/order-items/%d/finish", item.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Now the terminal may hand it over.
	w = doJSON(t, terminal, "POST", fmt.Sprintf("/order-items/%d/pickup", item.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, terminal, "GET", fmt.Sprintf("/orders/%d", orderID), nil)
	var resp struct {
		Data models.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.OrderStatusPickedUp, resp.Data.Status)
}

func TestBatchStatusEndpointRequiresKitchenRole(t *testing.T) {
	db := setupTestDBForOrders(t)
	terminal := setupOrderRouter(db, "terminal")
	kitchen := setupOrderRouter(db, "kitchen")

	orderID := placeOrderHTTP(t, terminal)
	var item models.OrderItem
	require.NoError(t, db.Where("order_id = ?", orderID).First(&item).Error)

	w := doJSON(t, terminal, "POST", "/order-items/status", gin.H{
		"item_ids": []uint{item.ID},
		"status":   models.ItemStatusInProgress,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, kitchen, "POST", "/order-items/status", gin.H{
		"item_ids": []uint{item.ID},
		"status":   models.ItemStatusInProgress,
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

// Deleting the last item removes the order; a later fetch is a 404.
func TestDeleteLastItemRemovesOrderOverHTTP(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupOrderRouter(db, "terminal")

	orderID := placeOrderHTTP(t, router)
	var item models.OrderItem
	require.NoError(t, db.Where("order_id = ?", orderID).First(&item).Error)

	w := doJSON(t, router, "DELETE", fmt.Sprintf("/order-items/%d", item.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", fmt.Sprintf("/orders/%d", orderID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActiveOrdersExcludesPickedUp(t *testing.T) {
	db := setupTestDBForOrders(t)
	kitchen := setupOrderRouter(db, "kitchen")
	terminal := setupOrderRouter(db, "terminal")

	orderID := placeOrderHTTP(t, terminal)
	var item models.OrderItem
	require.NoError(t, db.Where("order_id = ?", orderID).First(&item).Error)

	w := doJSON(t, kitchen, "GET", "/campaigns/1/orders/active", nil)
	var resp struct {
		Data []models.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)

	require.NoError(t, db.Model(&models.OrderItem{}).Where("id = ?", item.ID).Update("status", models.ItemStatusPickedUp).Error)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", orderID).Update("status", models.OrderStatusPickedUp).Error)

	w = doJSON(t, kitchen, "GET", "/campaigns/1/orders/active", nil)
	resp.Data = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data)
}
