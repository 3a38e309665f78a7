package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CampaignVariant is one arm of an A/B test. Variant 0 is always the control.
type CampaignVariant struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	CampaignID uuid.UUID `gorm:"type:uuid;index;not null"`

	VariantName     string `gorm:"not null"`
	SubjectLine     string
	EmailContent    string `gorm:"type:text"`
	DiscountPercent *int
	IsControl       bool `gorm:"default:false"`

	gorm.Model
}

func (v *CampaignVariant) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}
