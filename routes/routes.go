package routes

import (
	"crmaize-backend/config"
	"crmaize-backend/controllers"
	"crmaize-backend/repository"
	"crmaize-backend/services"
	"crmaize-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	customerRepo := repository.NewCustomerRepository(config.DB)
	campaignRepo := repository.NewCampaignRepository(config.DB)

	aiService := services.NewAIService()
	emailService := services.NewEmailService()
	scheduler := services.NewCampaignScheduler(campaignRepo, customerRepo, emailService)

	customerController := controllers.NewCustomerController(customerRepo, aiService)
	campaignController := controllers.NewCampaignController(campaignRepo, customerRepo, aiService, scheduler)
	aiController := controllers.NewAIController(customerRepo, aiService)
	analyticsController := controllers.NewAnalyticsController(customerRepo, campaignRepo)
	importExportController := controllers.NewImportExportController(customerRepo, campaignRepo, aiService)
	emailSettingsController := controllers.NewEmailSettingsController(emailService)

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", customerController.Create)
			customers.GET("", customerController.List)
			customers.GET("/segments", customerController.Segments)
			customers.GET("/at-risk", customerController.AtRisk)
			customers.GET("/:id", customerController.Get)
			customers.PUT("/:id", customerController.Update)
			customers.DELETE("/:id", customerController.Delete)
		}

		// Campaign routes
		campaigns := api.Group("/campaigns")
		{
			campaigns.POST("", campaignController.Create)
			campaigns.GET("", campaignController.List)
			campaigns.GET("/upcoming", campaignController.Upcoming)
			campaigns.POST("/process-due", campaignController.ProcessDue)
			campaigns.GET("/:id", campaignController.Get)
			campaigns.PUT("/:id", campaignController.Update)
			campaigns.DELETE("/:id", campaignController.Delete)
			campaigns.POST("/:id/send", campaignController.Send)
			campaigns.POST("/:id/schedule", campaignController.Schedule)
			campaigns.POST("/:id/cancel", campaignController.Cancel)
			campaigns.POST("/:id/variants", campaignController.GenerateVariants)
			campaigns.GET("/:id/variants", campaignController.Variants)
		}

		// AI helper routes
		ai := api.Group("/ai")
		{
			ai.GET("/subject-line", aiController.SubjectLine)
			ai.GET("/discount", aiController.Discount)
			ai.GET("/coupon", aiController.Coupon)
			ai.GET("/send-time", aiController.SendTime)
		}

		// Analytics routes
		api.GET("/analytics", analyticsController.GetAnalytics)

		// Import/export routes
		api.POST("/import/customers", importExportController.ImportCustomers)
		api.GET("/import/customers/template", importExportController.CustomerTemplate)
		api.GET("/export/customers.csv", importExportController.ExportCustomersCSV)
		api.GET("/export/customers.xlsx", importExportController.ExportCustomersXLSX)
		api.GET("/export/campaigns.csv", importExportController.ExportCampaignsCSV)

		// Email settings
		api.GET("/email/status", emailSettingsController.Status)
	}

	return r
}
