package controllers

import (
	"net/http"

	"crmaize-backend/models"
	"crmaize-backend/repository"
	"crmaize-backend/services"
	"crmaize-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AIController exposes the content generator's suggestions to the UI.
type AIController struct {
	customers *repository.CustomerRepository
	ai        *services.AIService
}

func NewAIController(customers *repository.CustomerRepository, ai *services.AIService) *AIController {
	return &AIController{customers: customers, ai: ai}
}

// customerFromQuery resolves the optional customerId query parameter; without
// one the suggestion is generated for a blank customer.
func (ac *AIController) customerFromQuery(c *gin.Context) (models.Customer, bool) {
	raw := c.Query("customerId")
	if raw == "" {
		return models.Customer{}, true
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return models.Customer{}, false
	}

	customer, err := ac.customers.ByID(id)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return models.Customer{}, false
	}
	if customer == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return models.Customer{}, false
	}

	return *customer, true
}

func (ac *AIController) SubjectLine(c *gin.Context) {
	customer, ok := ac.customerFromQuery(c)
	if !ok {
		return
	}

	campaignType := c.DefaultQuery("type", models.CampaignTypeEmail)
	c.JSON(http.StatusOK, gin.H{
		"subject_line": ac.ai.GenerateSubjectLine(campaignType, customer),
	})
}

func (ac *AIController) Discount(c *gin.Context) {
	customer, ok := ac.customerFromQuery(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"discount_percent": ac.ai.SuggestDiscount(customer),
		"coupon_code":      ac.ai.GenerateCouponCode(),
	})
}

func (ac *AIController) Coupon(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"coupon_code": ac.ai.GenerateCouponCode()})
}

func (ac *AIController) SendTime(c *gin.Context) {
	customer, ok := ac.customerFromQuery(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"optimal_send_time": ac.ai.SuggestOptimalSendTime(customer),
	})
}
