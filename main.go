package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/yeremiapane/popup-pos/config"
	"github.com/yeremiapane/popup-pos/database"
	"github.com/yeremiapane/popup-pos/feed"
	"github.com/yeremiapane/popup-pos/models"
	"github.com/yeremiapane/popup-pos/repository"
	"github.com/yeremiapane/popup-pos/router"
	"github.com/yeremiapane/popup-pos/services"
	"github.com/yeremiapane/popup-pos/utils"
)

func main() {
	utils.InitLogger()

	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	repo := repository.NewOrderRepository(db)
	orderService := services.NewOrderService(repo)
	hub := feed.NewHub()

	monitor := services.NewChangeMonitor(db, repo, hub)
	monitor.Start()
	defer monitor.Stop()

	r := router.SetupRouter(db, repo, orderService, hub)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Campaign{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Modifier{},
		&models.MenuItemModifier{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemModifier{},
		&models.OrderItemStatusEvent{},
		&models.DBChange{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	// Change-feed triggers are MySQL only.
	if os.Getenv("DB_DRIVER") != "sqlite" {
		if err := database.ExecuteTriggers(db); err != nil {
			utils.ErrorLogger.Printf("Error setting up triggers: %v", err)
		}
	}
}
