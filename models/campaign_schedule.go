package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ScheduleTypeImmediate = "immediate"
	ScheduleTypeScheduled = "scheduled"
	ScheduleTypeRecurring = "recurring"
)

// CampaignSchedule records when a campaign should be auto-dispatched. A
// campaign keeps at most one active schedule at a time; cancelling deactivates
// the row instead of deleting it so the history survives.
type CampaignSchedule struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	CampaignID uuid.UUID `gorm:"type:uuid;index;not null"`

	ScheduleType string `gorm:"type:varchar(20);not null"`
	ScheduledAt  *time.Time
	Timezone     string `gorm:"type:varchar(64);default:'UTC'"`
	IsActive     bool   `gorm:"default:true"`

	gorm.Model
}

func (s *CampaignSchedule) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
