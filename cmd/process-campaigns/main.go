// Command process-campaigns runs a single scheduler tick: it dispatches every
// due scheduled campaign and prints what is still queued. Intended for cron or
// manual runs alongside the in-process scheduler.
package main

import (
	"fmt"
	"log"
	"os"

	"crmaize-backend/config"
	"crmaize-backend/repository"
	"crmaize-backend/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	scheduler := services.NewCampaignScheduler(
		repository.NewCampaignRepository(config.DB),
		repository.NewCustomerRepository(config.DB),
		services.NewEmailService(),
	)

	fmt.Println("Processing scheduled campaigns...")
	results, err := scheduler.ProcessScheduledCampaigns()
	if err != nil {
		log.Printf("Processing failed: %v", err)
		os.Exit(1)
	}

	if len(results) == 0 {
		fmt.Println("No campaigns due.")
	}
	for _, r := range results {
		fmt.Printf("- %s (%s): %s\n", r.CampaignName, r.CampaignID, r.Result.Message)
		for _, e := range r.Result.Errors {
			fmt.Printf("    %s\n", e)
		}
	}

	upcoming, err := scheduler.GetUpcomingScheduledCampaigns()
	if err != nil {
		log.Printf("Failed to list upcoming campaigns: %v", err)
		os.Exit(1)
	}

	fmt.Printf("\nUpcoming scheduled campaigns: %d\n", len(upcoming))
	for _, campaign := range upcoming {
		when := ""
		if campaign.ScheduledAt != nil {
			when = campaign.ScheduledAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("- %s (%s) at %s\n", campaign.Name, campaign.ID, when)
	}
}
