package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/popup-pos/models"
	"github.com/yeremiapane/popup-pos/repository"
	"github.com/yeremiapane/popup-pos/services"
	"github.com/yeremiapane/popup-pos/utils"
)

type OrderController struct {
	Repo    repository.OrderRepository
	Service *services.OrderService
}

func NewOrderController(repo repository.OrderRepository, service *services.OrderService) *OrderController {
	return &OrderController{Repo: repo, Service: service}
}

// respondServiceError maps service-layer failures onto HTTP codes.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCustomerNameRequired),
		errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidStatus):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// PlaceOrder -> the cart hands over customer name, note and lines.
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	campaignID, _ := strconv.Atoi(c.Param("campaign_id"))

	var req services.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	req.CampaignID = uint(campaignID)

	order, err := oc.Service.PlaceOrder(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order placed", order)
}

// GetOrdersPage -> the terminal's most-recent-first page.
func (oc *OrderController) GetOrdersPage(c *gin.Context) {
	campaignID, _ := strconv.Atoi(c.Param("campaign_id"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	var statusFilter []string
	if raw := c.Query("status"); raw != "" {
		statusFilter = strings.Split(raw, ",")
	}

	result, err := oc.Repo.FetchOrdersPage(uint(campaignID), page, pageSize, statusFilter)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders page", result)
}

// GetActiveOrders -> the kitchen's working set, oldest first.
func (oc *OrderController) GetActiveOrders(c *gin.Context) {
	campaignID, _ := strconv.Atoi(c.Param("campaign_id"))

	orders, err := oc.Repo.FetchActiveOrders(uint(campaignID))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active orders", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("order_id"))

	order, err := oc.Repo.FetchOrderAggregate(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// EditOrderItem -> quantity, notes and the full modifier set.
func (oc *OrderController) EditOrderItem(c *gin.Context) {
	itemID, _ := strconv.Atoi(c.Param("item_id"))

	var req services.EditItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := oc.Service.EditOrderItem(uint(itemID), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order item updated", item)
}

// DeleteOrderItem -> removing the last line removes the order too.
func (oc *OrderController) DeleteOrderItem(c *gin.Context) {
	itemID, _ := strconv.Atoi(c.Param("item_id"))

	if err := oc.Service.DeleteOrderItem(uint(itemID)); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order item deleted", gin.H{"item_id": itemID})
}

// UpdateItemStatus -> direct status write, admin only. No reachability
// check: the engine takes any status, the role-gated action endpoints below
// are what normal UIs use.
func (oc *OrderController) UpdateItemStatus(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	itemID, _ := strconv.Atoi(c.Param("item_id"))

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := oc.Service.SetItemStatus(uint(itemID), req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item status updated", item)
}

// UpdateItemsStatus -> batch advance, used when the kitchen moves a whole
// category-filtered group at once.
func (oc *OrderController) UpdateItemsStatus(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "kitchen" && role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req struct {
		ItemIDs []uint `json:"item_ids" binding:"required"`
		Status  string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := oc.Service.SetItemsStatus(req.ItemIDs, req.Status); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Items status updated", gin.H{
		"item_ids": req.ItemIDs,
		"status":   req.Status,
	})
}

/*
========================================
 GATED ITEM ACTIONS

 The engine accepts any transition; which transitions each screen may
 request is enforced here, at the UI boundary.
========================================
*/

// StartItem -> kitchen takes a new item into preparation.
func (oc *OrderController) StartItem(c *gin.Context) {
	oc.gatedTransition(c, []string{"kitchen", "admin"}, models.ItemStatusNew, models.ItemStatusInProgress, "Item in progress")
}

// FinishItem -> kitchen marks an in-progress item done.
func (oc *OrderController) FinishItem(c *gin.Context) {
	oc.gatedTransition(c, []string{"kitchen", "admin"}, models.ItemStatusInProgress, models.ItemStatusDone, "Item done")
}

// PickUpItem -> terminal hands a done item to the customer.
func (oc *OrderController) PickUpItem(c *gin.Context) {
	oc.gatedTransition(c, []string{"terminal", "admin"}, models.ItemStatusDone, models.ItemStatusPickedUp, "Item picked up")
}

// CancelItem -> any staff role may cancel from any state.
func (oc *OrderController) CancelItem(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "terminal" && role != "kitchen" && role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	itemID, _ := strconv.Atoi(c.Param("item_id"))
	item, err := oc.Service.SetItemStatus(uint(itemID), models.ItemStatusCancelled)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item cancelled", item)
}

func (oc *OrderController) gatedTransition(c *gin.Context, roles []string, fromStatus, toStatus, message string) {
	role, _ := c.Get("role")
	allowed := false
	for _, r := range roles {
		if role == r {
			allowed = true
			break
		}
	}
	if !allowed {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	itemID, _ := strconv.Atoi(c.Param("item_id"))

	item, err := oc.Repo.GetOrderItem(uint(itemID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if item.Status != fromStatus {
		utils.RespondError(c, http.StatusBadRequest,
			fmt.Errorf("item not in %s status", fromStatus))
		return
	}

	item, err = oc.Service.SetItemStatus(item.ID, toStatus)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, message, item)
}
