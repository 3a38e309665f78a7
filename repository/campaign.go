package repository

import (
	"errors"
	"time"

	"crmaize-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// GetByID returns (nil, nil) when the campaign does not exist; state-machine
// callers treat that as a no-op rather than an error.
func (r *CampaignRepository) GetByID(id uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.First(&campaign, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *CampaignRepository) All() ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := r.db.Order("created_at DESC").Find(&campaigns).Error
	return campaigns, err
}

func (r *CampaignRepository) Recent(limit int) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := r.db.Order("created_at DESC").Limit(limit).Find(&campaigns).Error
	return campaigns, err
}

func (r *CampaignRepository) Create(campaign *models.Campaign) error {
	return r.db.Create(campaign).Error
}

func (r *CampaignRepository) Save(campaign *models.Campaign) error {
	return r.db.Save(campaign).Error
}

func (r *CampaignRepository) Delete(id uuid.UUID) (bool, error) {
	result := r.db.Delete(&models.Campaign{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

func (r *CampaignRepository) UpdateStatus(id uuid.UUID, status string) error {
	return r.db.Model(&models.Campaign{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *CampaignRepository) UpdateScheduledAt(id uuid.UUID, at time.Time) error {
	return r.db.Model(&models.Campaign{}).Where("id = ?", id).
		Update("scheduled_at", at).Error
}

func (r *CampaignRepository) UpdateSentAt(id uuid.UUID, at time.Time) error {
	return r.db.Model(&models.Campaign{}).Where("id = ?", id).
		Update("sent_at", at).Error
}

// AddSentCount bumps the monotonic sent counter by the number of successful
// deliveries in one dispatch.
func (r *CampaignRepository) AddSentCount(id uuid.UUID, n int) error {
	return r.db.Model(&models.Campaign{}).Where("id = ?", id).
		Update("sent_count", gorm.Expr("sent_count + ?", n)).Error
}

func (r *CampaignRepository) CreateSchedule(schedule *models.CampaignSchedule) error {
	return r.db.Create(schedule).Error
}

func (r *CampaignRepository) DeactivateSchedules(campaignID uuid.UUID) error {
	return r.db.Model(&models.CampaignSchedule{}).
		Where("campaign_id = ?", campaignID).
		Update("is_active", false).Error
}

// DueScheduled selects scheduled campaigns whose active schedule is due at or
// before now. Dispatched campaigns leave the scheduled status and fall out of
// this query on the next tick.
func (r *CampaignRepository) DueScheduled(now time.Time) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := r.db.
		Joins("INNER JOIN campaign_schedules cs ON cs.campaign_id = campaigns.id").
		Where("campaigns.status = ? AND cs.is_active = ? AND cs.scheduled_at <= ?",
			models.CampaignStatusScheduled, true, now).
		Find(&campaigns).Error
	return campaigns, err
}

// UpcomingScheduled lists still-future scheduled campaigns with their active
// schedules, soonest first.
func (r *CampaignRepository) UpcomingScheduled(now time.Time) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := r.db.
		Joins("INNER JOIN campaign_schedules cs ON cs.campaign_id = campaigns.id").
		Where("campaigns.status = ? AND cs.is_active = ? AND cs.scheduled_at > ?",
			models.CampaignStatusScheduled, true, now).
		Order("cs.scheduled_at ASC").
		Preload("Schedules", "is_active = ?", true).
		Find(&campaigns).Error
	return campaigns, err
}

// LogSend appends one audit row for a successful delivery.
func (r *CampaignRepository) LogSend(campaignID, customerID uuid.UUID, at time.Time) error {
	entry := models.CampaignLog{
		CampaignID: campaignID,
		CustomerID: customerID,
		Status:     models.LogStatusSent,
		SentAt:     at,
	}
	return r.db.Create(&entry).Error
}

func (r *CampaignRepository) CreateVariant(variant *models.CampaignVariant) error {
	return r.db.Create(variant).Error
}

// Variants returns a campaign's A/B variants, control first.
func (r *CampaignRepository) Variants(campaignID uuid.UUID) ([]models.CampaignVariant, error) {
	var variants []models.CampaignVariant
	err := r.db.Where("campaign_id = ?", campaignID).
		Order("is_control DESC, created_at ASC").
		Find(&variants).Error
	return variants, err
}
