package main

import (
	"fmt"
	"log"
	"os"

	"crmaize-backend/config"
	"crmaize-backend/models"
	"crmaize-backend/repository"
	"crmaize-backend/routes"
	"crmaize-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Campaign{},
		&models.CampaignVariant{},
		&models.CampaignSchedule{},
		&models.CampaignLog{},
	)
}

func main() {
	scheduler := services.NewCampaignScheduler(
		repository.NewCampaignRepository(config.DB),
		repository.NewCustomerRepository(config.DB),
		services.NewEmailService(),
	)
	cronRunner := scheduler.StartScheduler()
	defer cronRunner.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
