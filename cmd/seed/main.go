// Command seed populates the database with a demo admin user and a batch of
// fake customers, scored and segmented the same way the API does it.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"crmaize-backend/config"
	"crmaize-backend/models"
	"crmaize-backend/repository"
	"crmaize-backend/services"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"
)

func main() {
	count := flag.Int("customers", 50, "number of fake customers to create")
	flag.Parse()

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

	seedAdmin()
	seedCustomers(*count)
}

func seedAdmin() {
	var existing models.User
	if err := config.DB.Where("email = ?", "admin@crmaize.test").First(&existing).Error; err == nil {
		fmt.Println("Admin user already exists, skipping")
		return
	}

	admin := models.User{
		Email:    "admin@crmaize.test",
		Password: "changeme123",
		Name:     "Admin",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := config.DB.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	fmt.Println("Created admin user admin@crmaize.test (password: changeme123)")
}

func seedCustomers(count int) {
	customers := repository.NewCustomerRepository(config.DB)
	ai := services.NewAIService()

	created := 0
	for i := 0; i < count; i++ {
		customer := models.Customer{
			Email:      gofakeit.Email(),
			FirstName:  gofakeit.FirstName(),
			LastName:   gofakeit.LastName(),
			TotalSpent: gofakeit.Float64Range(0, 2500),
			OrderCount: gofakeit.Number(0, 20),
		}
		if customer.OrderCount > 0 {
			last := time.Now().AddDate(0, 0, -gofakeit.Number(1, 400))
			customer.LastOrderDate = &last
		}

		existing, err := customers.ByEmail(customer.Email)
		if err != nil {
			log.Fatalf("Failed to check customer email: %v", err)
		}
		if existing != nil {
			continue
		}

		customer.ChurnRisk = ai.CalculateChurnRisk(customer)
		customer.Segment = ai.DetermineSegment(customer)

		if err := customers.Create(&customer); err != nil {
			log.Fatalf("Failed to create customer: %v", err)
		}
		created++
	}

	fmt.Printf("Created %d customers\n", created)
}
