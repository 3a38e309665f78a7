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

// CampaignController serves campaign CRUD, interactive dispatch, schedule
// management and A/B variants.
type CampaignController struct {
	campaigns *repository.CampaignRepository
	customers *repository.CustomerRepository
	ai        *services.AIService
	scheduler *services.CampaignScheduler
}

func NewCampaignController(
	campaigns *repository.CampaignRepository,
	customers *repository.CustomerRepository,
	ai *services.AIService,
	scheduler *services.CampaignScheduler,
) *CampaignController {
	return &CampaignController{
		campaigns: campaigns,
		customers: customers,
		ai:        ai,
		scheduler: scheduler,
	}
}

type CreateCampaignInput struct {
	Name            string `json:"name" binding:"required"`
	Type            string `json:"type" binding:"required"`
	TargetSegment   string `json:"targetSegment"`
	DiscountPercent *int   `json:"discountPercent"`
	SubjectLine     string `json:"subjectLine"`
	EmailContent    string `json:"emailContent"`
}

type UpdateCampaignInput struct {
	Name            *string `json:"name"`
	Type            *string `json:"type"`
	TargetSegment   *string `json:"targetSegment"`
	DiscountPercent *int    `json:"discountPercent"`
	SubjectLine     *string `json:"subjectLine"`
	EmailContent    *string `json:"emailContent"`
}

type ScheduleCampaignInput struct {
	ScheduleType string     `json:"scheduleType" binding:"required"`
	ScheduledAt  *time.Time `json:"scheduledAt"`
	Timezone     string     `json:"timezone"`
}

type GenerateVariantsInput struct {
	Count int `json:"count"`
}

// sampleCustomer picks a representative customer for generated suggestions,
// falling back to a zero-value record when the base is empty.
func (cc *CampaignController) sampleCustomer() models.Customer {
	customers, err := cc.customers.All()
	if err != nil || len(customers) == 0 {
		return models.Customer{}
	}
	return customers[0]
}

// Create stores a draft campaign. Missing subject lines and discount
// percentages are filled in with generated suggestions.
func (cc *CampaignController) Create(c *gin.Context) {
	var input CreateCampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Name and type are required")
		return
	}

	if input.Type != models.CampaignTypeEmail && input.Type != models.CampaignTypeDiscount {
		utils.RespondWithError(c, http.StatusBadRequest, "Type must be 'email' or 'discount'")
		return
	}

	if input.SubjectLine == "" {
		input.SubjectLine = cc.ai.GenerateSubjectLine(input.Type, cc.sampleCustomer())
	}
	if input.DiscountPercent == nil && input.Type == models.CampaignTypeDiscount {
		discount := cc.ai.SuggestDiscount(cc.sampleCustomer())
		input.DiscountPercent = &discount
	}

	campaign := models.Campaign{
		Name:            input.Name,
		Type:            input.Type,
		TargetSegment:   input.TargetSegment,
		DiscountPercent: input.DiscountPercent,
		SubjectLine:     input.SubjectLine,
		EmailContent:    input.EmailContent,
		Status:          models.CampaignStatusDraft,
	}

	if userID, exists := c.Get("userId"); exists {
		if parsed, err := uuid.Parse(userID.(string)); err == nil {
			campaign.CreatedBy = &parsed
		}
	}

	if err := cc.campaigns.Create(&campaign); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create campaign")
		return
	}

	c.JSON(http.StatusCreated, campaign)
}

func (cc *CampaignController) List(c *gin.Context) {
	campaigns, err := cc.campaigns.All()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve campaigns")
		return
	}

	c.JSON(http.StatusOK, campaigns)
}

// Get returns a campaign together with its resolved target customers for
// preview.
func (cc *CampaignController) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid campaign ID format")
		return
	}

	campaign, err := cc.campaigns.GetByID(id)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if campaign == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Campaign not found")
		return
	}

	var customers []models.Customer
	switch campaign.TargetSegment {
	case "":
	case models.TargetAll:
		customers, err = cc.customers.All()
	default:
		customers, err = cc.customers.BySegment(campaign.TargetSegment)
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to resolve target customers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaign":  campaign,
		"customers": customers,
	})
}

func (cc *CampaignController) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid campaign ID format")
		return
	}

	var input UpdateCampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	campaign, err := cc.campaigns.GetByID(id)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if campaign == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Campaign not found")
		return
	}

	if input.Name != nil {
		campaign.Name = *input.Name
	}
	if input.Type != nil {
		if *input.Type != models.CampaignTypeEmail && *input.Type != models.CampaignTypeDiscount {
			utils.RespondWithError(c, http.StatusBadRequest, "Type must be 'email' or 'discount'")
			return
		}
		campaign.Type = *input.Type
	}
	if input.TargetSegment != nil {
		campaign.TargetSegment = *input.TargetSegment
	}
	if input.DiscountPercent != nil {
		campaign.DiscountPercent = input.DiscountPercent
	}
	if input.SubjectLine != nil {
		campaign.SubjectLine = *input.SubjectLine
	}
	if input.EmailContent != nil {
		campaign.EmailContent = *input.EmailContent
	}

	if err := cc.campaigns.Save(campaign); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update campaign")
		return
	}

	c.JSON(http.StatusOK, campaign)
}

func (cc *CampaignController) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid campaign ID format")
		return
	}

	deleted, err := cc.campaigns.Delete(id)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete campaign")
		return
	}
	if !deleted {
		utils.RespondWithError(c, http.StatusNotFound, "Campaign not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Campaign deleted successfully"})
}

// Send dispatches a campaign to its target segment immediately.
func (cc *CampaignController) Send(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid campaign ID format")
		return
	}

	result, err := cc.scheduler.SendCampaignNow(id)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to send campaign")
		return
	}
	if !result.Success && result.Message == "Campaign not found" {
		utils.RespondWithError(c, http.StatusNotFound, result.Message)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Schedule moves a campaign into the scheduled state.
func (cc *CampaignController) Schedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid campaign ID format")
		return
	}

	var input ScheduleCampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if errs := cc.scheduler.ValidateSchedule(input.ScheduleType, input.ScheduledAt); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	ok, err := cc.scheduler.ScheduleCampaign(id, input.ScheduleType, input.ScheduledAt, input.Timezone)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to schedule campaign")
		return
	}
	if !ok {
		utils.RespondWithError(c, http.StatusNotFound, "Campaign not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Campaign scheduled"})
}

// Cancel cancels a scheduled campaign.
func (cc *CampaignController) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid campaign ID format")
		return
	}

	ok, err := cc.scheduler.CancelScheduledCampaign(id)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel campaign")
		return
	}
	if !ok {
		utils.RespondWithError(c, http.StatusConflict, "Campaign is not in scheduled state")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Campaign cancelled"})
}

// Upcoming lists active, still-future scheduled campaigns.
func (cc *CampaignController) Upcoming(c *gin.Context) {
	campaigns, err := cc.scheduler.GetUpcomingScheduledCampaigns()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve upcoming campaigns")
		return
	}

	c.JSON(http.StatusOK, campaigns)
}

// ProcessDue triggers one scheduler tick. Meant for an external periodic
// invoker; also reachable from the CLI runner.
func (cc *CampaignController) ProcessDue(c *gin.Context) {
	results, err := cc.scheduler.ProcessScheduledCampaigns()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to process scheduled campaigns")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"processed": len(results),
		"results":   results,
	})
}

// GenerateVariants creates A/B test variants for a campaign, control first.
func (cc *CampaignController) GenerateVariants(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid campaign ID format")
		return
	}

	var input GenerateVariantsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Count < 2 {
		input.Count = 2
	}

	campaign, err := cc.campaigns.GetByID(id)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if campaign == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Campaign not found")
		return
	}

	variants := cc.ai.GenerateABTestVariants(campaign.Type, cc.sampleCustomer(), input.Count)
	for i := range variants {
		variants[i].CampaignID = campaign.ID
		if err := cc.campaigns.CreateVariant(&variants[i]); err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to store variants")
			return
		}
	}

	c.JSON(http.StatusCreated, variants)
}

// Variants lists a campaign's stored A/B variants.
func (cc *CampaignController) Variants(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid campaign ID format")
		return
	}

	variants, err := cc.campaigns.Variants(id)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve variants")
		return
	}

	c.JSON(http.StatusOK, variants)
}
