package models

import (
	"time"

	"github.com/lib/pq"
)

// CountryFilterMode selects how the country list is interpreted.
type CountryFilterMode string

const (
	FilterAll       CountryFilterMode = "all"
	FilterWhitelist CountryFilterMode = "whitelist"
	FilterBlacklist CountryFilterMode = "blacklist"
)

// GateConfig is the singleton system configuration row. There is exactly
// one row; SchemaVersion guards the shape at the storage boundary.
type GateConfig struct {
	ID            uint `gorm:"primaryKey" json:"-"`
	SchemaVersion int  `gorm:"not null;default:1" json:"-"`

	Enabled bool `gorm:"not null;default:false" json:"enabled"`

	// Candidate redirect destinations for Decision A
	TargetURLs pq.StringArray `gorm:"type:text[]" json:"target_urls"`

	CountryFilterMode CountryFilterMode `gorm:"type:varchar(16);not null;default:all" json:"country_filter_mode"`
	CountryFilterList pq.StringArray    `gorm:"type:text[]" json:"country_filter_list"`

	PostbackEnabled     bool    `gorm:"not null;default:false" json:"postback_enabled"`
	PostbackURLTemplate string  `gorm:"type:text" json:"postback_url_template"`
	DefaultPayout       float64 `gorm:"not null;default:0" json:"default_payout"`

	// Rolling counters, zeroed once per calendar day
	DecisionACount int64 `gorm:"not null;default:0" json:"decision_a_count"`
	DecisionBCount int64 `gorm:"not null;default:0" json:"decision_b_count"`

	StatsResetAt time.Time `json:"stats_reset_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	CreatedAt    time.Time `json:"-"`
}

func (GateConfig) TableName() string {
	return "gate_config"
}

// DefaultGateConfig is the row created on first boot: system off, no
// targets, filter wide open.
func DefaultGateConfig() *GateConfig {
	return &GateConfig{
		ID:                1,
		SchemaVersion:     1,
		Enabled:           false,
		TargetURLs:        pq.StringArray{},
		CountryFilterMode: FilterAll,
		CountryFilterList: pq.StringArray{},
		StatsResetAt:      time.Now(),
	}
}

// UpdateGateConfigRequest is the admin settings update body. Pointer
// fields distinguish "leave alone" from "set to zero value".
type UpdateGateConfigRequest struct {
	Enabled             *bool     `json:"enabled"`
	TargetURLs          *[]string `json:"target_urls"`
	CountryFilterMode   *string   `json:"country_filter_mode"`
	CountryFilterList   *[]string `json:"country_filter_list"`
	PostbackEnabled     *bool     `json:"postback_enabled"`
	PostbackURLTemplate *string   `json:"postback_url_template"`
	DefaultPayout       *float64  `json:"default_payout"`
}

// GateStatsResponse is the dashboard stats payload.
type GateStatsResponse struct {
	Enabled        bool      `json:"enabled"`
	Muted          bool      `json:"muted"`
	DecisionACount int64     `json:"decision_a_count"`
	DecisionBCount int64     `json:"decision_b_count"`
	TotalDecisions int64     `json:"total_decisions"`
	SharePercentA  float64   `json:"share_percent_a"`
	StatsResetAt   time.Time `json:"stats_reset_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
