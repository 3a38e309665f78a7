package controllers

import (
	"net/http"
	"time"

	"crmaize-backend/models"
	"crmaize-backend/repository"
	"crmaize-backend/services"
	"crmaize-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CustomerController serves customer CRUD plus the scoring refresh path.
type CustomerController struct {
	customers *repository.CustomerRepository
	ai        *services.AIService
}

func NewCustomerController(customers *repository.CustomerRepository, ai *services.AIService) *CustomerController {
	return &CustomerController{customers: customers, ai: ai}
}

// CreateCustomerInput defines the expected JSON structure for creating a customer
type CreateCustomerInput struct {
	Email         string     `json:"email" binding:"required"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	TotalSpent    float64    `json:"totalSpent"`
	OrderCount    int        `json:"orderCount"`
	LastOrderDate *time.Time `json:"lastOrderDate"`
}

// UpdateCustomerInput defines the expected JSON structure for updating a customer
type UpdateCustomerInput struct {
	Email         *string    `json:"email"`
	FirstName     *string    `json:"firstName"`
	LastName      *string    `json:"lastName"`
	TotalSpent    *float64   `json:"totalSpent"`
	OrderCount    *int       `json:"orderCount"`
	LastOrderDate *time.Time `json:"lastOrderDate"`
}

func (cc *CustomerController) Create(c *gin.Context) {
	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidateEmail(input.Email) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid email address")
		return
	}
	if input.TotalSpent < 0 || input.OrderCount < 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Spent amount and order count must be non-negative")
		return
	}

	existing, err := cc.customers.ByEmail(input.Email)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if existing != nil {
		utils.RespondWithError(c, http.StatusConflict, "Customer with this email already exists")
		return
	}

	customer := models.Customer{
		Email:         input.Email,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		TotalSpent:    input.TotalSpent,
		OrderCount:    input.OrderCount,
		LastOrderDate: input.LastOrderDate,
	}
	customer.ChurnRisk = cc.ai.CalculateChurnRisk(customer)
	customer.Segment = cc.ai.DetermineSegment(customer)

	if err := cc.customers.Create(&customer); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// List returns all customers with freshly recomputed segment and churn risk.
// The recomputed values are written back so the stored snapshot stays usable
// for segment-targeted queries.
func (cc *CustomerController) List(c *gin.Context) {
	customers, err := cc.customers.All()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	for i := range customers {
		risk := cc.ai.CalculateChurnRisk(customers[i])
		segment := cc.ai.DetermineSegment(customers[i])

		if risk != customers[i].ChurnRisk || segment != customers[i].Segment {
			if err := cc.customers.UpdateScore(customers[i].ID, risk, segment); err != nil {
				utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer scores")
				return
			}
		}
		customers[i].ChurnRisk = risk
		customers[i].Segment = segment
	}

	c.JSON(http.StatusOK, customers)
}

func (cc *CustomerController) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	customer, err := cc.customers.ByID(id)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if customer == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (cc *CustomerController) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	customer, err := cc.customers.ByID(id)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if customer == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	if input.Email != nil {
		if !utils.ValidateEmail(*input.Email) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid email address")
			return
		}
		if customer.Email != *input.Email {
			existing, err := cc.customers.ByEmail(*input.Email)
			if err != nil {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
				return
			}
			if existing != nil {
				utils.RespondWithError(c, http.StatusConflict, "Another customer with this email already exists")
				return
			}
		}
		customer.Email = *input.Email
	}
	if input.FirstName != nil {
		customer.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		customer.LastName = *input.LastName
	}
	if input.TotalSpent != nil {
		if *input.TotalSpent < 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Spent amount must be non-negative")
			return
		}
		customer.TotalSpent = *input.TotalSpent
	}
	if input.OrderCount != nil {
		if *input.OrderCount < 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Order count must be non-negative")
			return
		}
		customer.OrderCount = *input.OrderCount
	}
	if input.LastOrderDate != nil {
		customer.LastOrderDate = input.LastOrderDate
	}

	// Purchase fields changed, refresh the derived snapshot
	customer.ChurnRisk = cc.ai.CalculateChurnRisk(*customer)
	customer.Segment = cc.ai.DetermineSegment(*customer)

	if err := cc.customers.Save(customer); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer")
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (cc *CustomerController) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	deleted, err := cc.customers.Delete(id)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}
	if !deleted {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}

// Segments returns stored per-segment customer counts.
func (cc *CustomerController) Segments(c *gin.Context) {
	counts, err := cc.customers.SegmentCounts()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve segment counts")
		return
	}

	c.JSON(http.StatusOK, counts)
}

// AtRisk lists the customers with the highest stored churn risk.
func (cc *CustomerController) AtRisk(c *gin.Context) {
	customers, err := cc.customers.AtRisk(10)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve at-risk customers")
		return
	}

	c.JSON(http.StatusOK, customers)
}
