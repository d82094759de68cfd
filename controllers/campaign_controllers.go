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

type CampaignController struct {
	DB *gorm.DB
}

func NewCampaignController(db *gorm.DB) *CampaignController {
	return &CampaignController{DB: db}
}

// GetAllCampaigns -> newest first.
func (cc *CampaignController) GetAllCampaigns(c *gin.Context) {
	var campaigns []models.Campaign
	if err := cc.DB.Order("created_at DESC").Find(&campaigns).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of campaigns", campaigns)
}

func (cc *CampaignController) GetCampaignByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("campaign_id"))

	var campaign models.Campaign
	if err := cc.DB.First(&campaign, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Campaign detail", campaign)
}

func (cc *CampaignController) CreateCampaign(c *gin.Context) {
	var req struct {
		Name     string     `json:"name" binding:"required"`
		StartsAt *time.Time `json:"starts_at"`
		EndsAt   *time.Time `json:"ends_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	campaign := models.Campaign{
		Name:      req.Name,
		Status:    "open",
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := cc.DB.Create(&campaign).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Campaign created", campaign)
}

func (cc *CampaignController) UpdateCampaign(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("campaign_id"))

	var campaign models.Campaign
	if err := cc.DB.First(&campaign, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Name     *string    `json:"name"`
		Status   *string    `json:"status"`
		StartsAt *time.Time `json:"starts_at"`
		EndsAt   *time.Time `json:"ends_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		campaign.Name = *req.Name
	}
	if req.Status != nil {
		campaign.Status = *req.Status
	}
	if req.StartsAt != nil {
		campaign.StartsAt = req.StartsAt
	}
	if req.EndsAt != nil {
		campaign.EndsAt = req.EndsAt
	}
	campaign.UpdatedAt = time.Now()

	if err := cc.DB.Save(&campaign).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Campaign updated", campaign)
}

// CloseCampaign -> no further orders; the feed and kitchen naturally drain.
func (cc *CampaignController) CloseCampaign(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("campaign_id"))

	var campaign models.Campaign
	if err := cc.DB.First(&campaign, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	campaign.Status = "closed"
	campaign.UpdatedAt = time.Now()
	if err := cc.DB.Save(&campaign).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Campaign closed", campaign)
}
