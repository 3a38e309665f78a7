package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Delivery outcomes recorded per recipient.
const (
	LogStatusSent    = "sent"
	LogStatusOpened  = "opened"
	LogStatusClicked = "clicked"
	LogStatusBounced = "bounced"
)

// CampaignLog is the append-only audit trail written by the dispatch loop,
// one row per delivery attempt.
type CampaignLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	CampaignID uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`

	Status string `gorm:"type:varchar(20);not null"`
	SentAt time.Time

	gorm.Model
}

func (l *CampaignLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}
