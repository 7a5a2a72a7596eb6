package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostbackDirection string

const (
	PostbackOut PostbackDirection = "out"
	PostbackIn  PostbackDirection = "in"
)

// PostbackLog records outbound conversion notifications and inbound
// affiliate-network postbacks.
type PostbackLog struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Direction PostbackDirection `gorm:"type:varchar(3);not null;index" json:"direction"`
	URL       string            `gorm:"type:text" json:"url"`
	ClickID   string            `gorm:"type:varchar(128);index" json:"click_id"`
	Country   string            `gorm:"type:varchar(2)" json:"country"`
	Device    string            `gorm:"type:varchar(8)" json:"device"`
	Payout    float64           `json:"payout"`
	Status    int               `json:"status"` // HTTP status, 0 on transport failure
	Body      string            `gorm:"type:varchar(512)" json:"body"`
	Success   bool              `gorm:"index" json:"success"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
}

func (PostbackLog) TableName() string {
	return "postback_logs"
}

func (p *PostbackLog) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
