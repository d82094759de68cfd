package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/popup-pos/models"
	"github.com/yeremiapane/popup-pos/utils"
	"gorm.io/gorm"
)

type ModifierController struct {
	DB *gorm.DB
}

func NewModifierController(db *gorm.DB) *ModifierController {
	return &ModifierController{DB: db}
}

func (mc *ModifierController) GetAllModifiers(c *gin.Context) {
	var modifiers []models.Modifier
	if err := mc.DB.Order("name ASC").Find(&modifiers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of modifiers", modifiers)
}

func (mc *ModifierController) CreateModifier(c *gin.Context) {
	var req struct {
		Name       string  `json:"name" binding:"required"`
		PriceDelta float64 `json:"price_delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	modifier := models.Modifier{
		Name:       req.Name,
		PriceDelta: req.PriceDelta,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := mc.DB.Create(&modifier).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Modifier created", modifier)
}

func (mc *ModifierController) UpdateModifier(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("modifier_id"))

	var modifier models.Modifier
	if err := mc.DB.First(&modifier, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Name       *string  `json:"name"`
		PriceDelta *float64 `json:"price_delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// Historical orders keep their snapshots; edits only affect future use.
	if req.Name != nil {
		modifier.Name = *req.Name
	}
	if req.PriceDelta != nil {
		modifier.PriceDelta = *req.PriceDelta
	}
	modifier.UpdatedAt = time.Now()

	if err := mc.DB.Save(&modifier).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Modifier updated", modifier)
}

func (mc *ModifierController) DeleteModifier(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("modifier_id"))

	// Snapshots on past order items keep their copied label and delta;
	// only their ModifierID reference goes stale, which is allowed.
	if err := mc.DB.Where("modifier_id = ?", id).Delete(&models.MenuItemModifier{}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := mc.DB.Delete(&models.Modifier{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Modifier deleted", gin.H{"modifier_id": id})
}

// LinkModifier attaches a modifier to a menu item.
func (mc *ModifierController) LinkModifier(c *gin.Context) {
	itemID, _ := strconv.Atoi(c.Param("item_id"))
	modifierID, _ := strconv.Atoi(c.Param("modifier_id"))

	var item models.MenuItem
	if err := mc.DB.First(&item, itemID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	var modifier models.Modifier
	if err := mc.DB.First(&modifier, modifierID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	link := models.MenuItemModifier{
		MenuItemID: item.ID,
		ModifierID: modifier.ID,
	}
	if err := mc.DB.Create(&link).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Modifier linked", link)
}

func (mc *ModifierController) UnlinkModifier(c *gin.Context) {
	itemID, _ := strconv.Atoi(c.Param("item_id"))
	modifierID, _ := strconv.Atoi(c.Param("modifier_id"))

	if err := mc.DB.
		Where("menu_item_id = ? AND modifier_id = ?", itemID, modifierID).
		Delete(&models.MenuItemModifier{}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Modifier unlinked", gin.H{
		"item_id":     itemID,
		"modifier_id": modifierID,
	})
}
