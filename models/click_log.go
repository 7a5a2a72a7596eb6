package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClickLog records one inbound click and the routing decision it received
type ClickLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ClickID      string    `gorm:"type:varchar(128);index" json:"click_id"`
	IP           string    `gorm:"type:varchar(45);index" json:"ip"`
	UserAgent    string    `gorm:"type:text" json:"user_agent"`
	Country      string    `gorm:"type:varchar(2);index" json:"country"`
	Device       string    `gorm:"type:varchar(8)" json:"device"`
	LandingID    string    `gorm:"type:varchar(64)" json:"landing_id"`
	DecisionType string    `gorm:"type:varchar(1);index" json:"decision_type"` // "A" or "B"
	Target       string    `gorm:"type:text" json:"target"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (ClickLog) TableName() string {
	return "click_logs"
}

func (c *ClickLog) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ClickLogFilter for querying click logs
type ClickLogFilter struct {
	Country      *string
	DecisionType *string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
