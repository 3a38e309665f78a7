package controllers

import (
	"math"
	"net/http"

	"crmaize-backend/repository"
	"crmaize-backend/utils"

	"github.com/gin-gonic/gin"
)

// AnalyticsController aggregates the dashboard KPIs.
type AnalyticsController struct {
	customers *repository.CustomerRepository
	campaigns *repository.CampaignRepository
}

func NewAnalyticsController(customers *repository.CustomerRepository, campaigns *repository.CampaignRepository) *AnalyticsController {
	return &AnalyticsController{customers: customers, campaigns: campaigns}
}

// AnalyticsSummary is the dashboard payload.
type AnalyticsSummary struct {
	TotalCustomers int64            `json:"totalCustomers"`
	TotalRevenue   float64          `json:"totalRevenue"`
	AvgOrderValue  float64          `json:"avgOrderValue"`
	ChurnRate      float64          `json:"churnRate"`
	Segments       map[string]int64 `json:"segments"`
	RecentCampaigns interface{}     `json:"recentCampaigns"`
}

func (ac *AnalyticsController) GetAnalytics(c *gin.Context) {
	totalCustomers, err := ac.customers.TotalCount()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute analytics")
		return
	}

	totalRevenue, err := ac.customers.TotalRevenue()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute analytics")
		return
	}

	churnRate, err := ac.customers.AverageChurnRisk()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute analytics")
		return
	}

	segments, err := ac.customers.SegmentCounts()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute analytics")
		return
	}

	recentCampaigns, err := ac.campaigns.Recent(5)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute analytics")
		return
	}

	avgOrderValue := 0.0
	if totalCustomers > 0 {
		avgOrderValue = math.Round(totalRevenue/float64(totalCustomers)*100) / 100
	}

	c.JSON(http.StatusOK, AnalyticsSummary{
		TotalCustomers:  totalCustomers,
		TotalRevenue:    totalRevenue,
		AvgOrderValue:   avgOrderValue,
		ChurnRate:       churnRate,
		Segments:        segments,
		RecentCampaigns: recentCampaigns,
	})
}
