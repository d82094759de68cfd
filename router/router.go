package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/popup-pos/controllers"
	"github.com/yeremiapane/popup-pos/feed"
	"github.com/yeremiapane/popup-pos/middlewares"
	"github.com/yeremiapane/popup-pos/repository"
	"github.com/yeremiapane/popup-pos/services"
)

func SetupRouter(db *gorm.DB, repo repository.OrderRepository, orderService *services.OrderService, hub *feed.Hub) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(db)
	campaignCtrl := controllers.NewCampaignController(db)
	categoryCtrl := controllers.NewMenuCategoryController(db)
	menuCtrl := controllers.NewMenuController(db)
	modifierCtrl := controllers.NewModifierController(db)
	orderCtrl := controllers.NewOrderController(repo, orderService)
	streamCtrl := controllers.NewStreamController(hub)

	// Public
	r.POST("/auth/register", userCtrl.Register)
	r.POST("/auth/login", userCtrl.Login)

	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.GET("/profile", userCtrl.GetProfile)

		// Campaigns
		auth.GET("/campaigns", campaignCtrl.GetAllCampaigns)
		auth.GET("/campaigns/:campaign_id", campaignCtrl.GetCampaignByID)
		auth.POST("/campaigns", campaignCtrl.CreateCampaign)
		auth.PATCH("/campaigns/:campaign_id", campaignCtrl.UpdateCampaign)
		auth.POST("/campaigns/:campaign_id/close", campaignCtrl.CloseCampaign)

		// Menu catalog
		auth.GET("/menu-categories", categoryCtrl.GetAllCategories)
		auth.POST("/menu-categories", categoryCtrl.CreateCategory)
		auth.PATCH("/menu-categories/:category_id", categoryCtrl.UpdateCategory)
		auth.DELETE("/menu-categories/:category_id", categoryCtrl.DeleteCategory)

		auth.GET("/menu-items", menuCtrl.GetAllMenuItems)
		auth.GET("/menu-items/:item_id", menuCtrl.GetMenuItemByID)
		auth.POST("/menu-items", menuCtrl.CreateMenuItem)
		auth.PATCH("/menu-items/:item_id", menuCtrl.UpdateMenuItem)
		auth.DELETE("/menu-items/:item_id", menuCtrl.DeleteMenuItem)

		auth.GET("/modifiers", modifierCtrl.GetAllModifiers)
		auth.POST("/modifiers", modifierCtrl.CreateModifier)
		auth.PATCH("/modifiers/:modifier_id", modifierCtrl.UpdateModifier)
		auth.DELETE("/modifiers/:modifier_id", modifierCtrl.DeleteModifier)
		auth.POST("/menu-items/:item_id/modifiers/:modifier_id", modifierCtrl.LinkModifier)
		auth.DELETE("/menu-items/:item_id/modifiers/:modifier_id", modifierCtrl.UnlinkModifier)

		// Orders
		auth.POST("/campaigns/:campaign_id/orders", orderCtrl.PlaceOrder)
		auth.GET("/campaigns/:campaign_id/orders", orderCtrl.GetOrdersPage)
		auth.GET("/campaigns/:campaign_id/orders/active", orderCtrl.GetActiveOrders)
		auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)

		// Order items
		auth.PATCH("/order-items/:item_id", orderCtrl.EditOrderItem)
		auth.DELETE("/order-items/:item_id", orderCtrl.DeleteOrderItem)
		auth.PATCH("/order-items/:item_id/status", orderCtrl.UpdateItemStatus)
		auth.POST("/order-items/status", orderCtrl.UpdateItemsStatus)
		auth.POST("/order-items/:item_id/start", orderCtrl.StartItem)
		auth.POST("/order-items/:item_id/finish", orderCtrl.FinishItem)
		auth.POST("/order-items/:item_id/pickup", orderCtrl.PickUpItem)
		auth.POST("/order-items/:item_id/cancel", orderCtrl.CancelItem)

		// Change feed stream
		auth.GET("/ws", streamCtrl.Stream)
	}

	return r
}
