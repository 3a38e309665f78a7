package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Campaign status values. Transitions are one-directional:
// draft -> scheduled -> sent, with scheduled -> cancelled as the only side exit.
// An immediate send moves draft -> sent directly.
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusSent      = "sent"
	CampaignStatusCancelled = "cancelled"
)

const (
	CampaignTypeEmail    = "email"
	CampaignTypeDiscount = "discount"
)

// TargetAll addresses a campaign to every customer instead of one segment.
const TargetAll = "all"

type Campaign struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key"`

	Name            string `gorm:"not null"`
	Type            string `gorm:"type:varchar(20);not null"`
	TargetSegment   string `gorm:"type:varchar(20)"`
	DiscountPercent *int
	SubjectLine     string
	EmailContent    string `gorm:"type:text"`

	Status    string     `gorm:"type:varchar(20);default:'draft'"`
	SentCount int        `gorm:"default:0"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`

	ScheduledAt *time.Time
	SentAt      *time.Time

	Variants  []CampaignVariant  `gorm:"foreignKey:CampaignID"`
	Schedules []CampaignSchedule `gorm:"foreignKey:CampaignID"`

	gorm.Model
}

func (c *Campaign) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CampaignStatusDraft
	}
	return
}
