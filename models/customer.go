package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Segment labels assigned by the scoring engine.
const (
	SegmentHighValue = "high_value"
	SegmentAtRisk    = "at_risk"
	SegmentLoyal     = "loyal"
	SegmentNew       = "new"
	SegmentInactive  = "inactive"
)

// AllSegments lists every segment bucket in rule-evaluation order.
var AllSegments = []string{
	SegmentHighValue,
	SegmentAtRisk,
	SegmentLoyal,
	SegmentNew,
	SegmentInactive,
}

type Customer struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key"`

	Email     string `gorm:"uniqueIndex;not null"`
	FirstName string
	LastName  string

	TotalSpent    float64 `gorm:"type:decimal(10,2);default:0.0"`
	OrderCount    int     `gorm:"default:0"`
	LastOrderDate *time.Time

	// Denormalized snapshot written back by the scoring engine; not authoritative.
	Segment   string  `gorm:"type:varchar(20)"`
	ChurnRisk float64 `gorm:"default:0"`

	gorm.Model
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
