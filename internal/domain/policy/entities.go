package policy

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("rate policy not found")

// Severity orders climate events low < moderate < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityOrder = []Severity{SeverityLow, SeverityModerate, SeverityHigh, SeverityCritical}

// Level returns the numeric rank of the severity, or -1 if unknown.
func (s Severity) Level() int {
	for i, v := range severityOrder {
		if v == s {
			return i
		}
	}
	return -1
}

func ParseSeverity(raw string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	if s.Level() < 0 {
		return "", fmt.Errorf("unknown climate severity %q", raw)
	}
	return s, nil
}

// RatePolicy is a bank's lending rate configuration. Exactly one policy per
// bank is active at a time.
type RatePolicy struct {
	ID                    uint64    `gorm:"primaryKey;column:id" json:"-"`
	BankID                string    `gorm:"size:32;index:idx_policies_bank_active" json:"bank_id"`
	MinRate               float64   `gorm:"type:decimal(6,2)" json:"min_rate"`
	MaxRate               float64   `gorm:"type:decimal(6,2)" json:"max_rate"`
	ClimateResetThreshold Severity  `gorm:"size:20;default:'high'" json:"climate_reset_threshold"`
	ClimateFloorRate      float64   `gorm:"type:decimal(6,2)" json:"climate_floor_rate"`
	AutoResetEnabled      bool      `gorm:"default:true" json:"auto_reset_enabled"`
	IsActive              bool      `gorm:"default:true;index:idx_policies_bank_active" json:"is_active"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RatePolicy) TableName() string { return "rate_policies" }

// Validate enforces min_rate <= climate_floor_rate <= max_rate.
func (p *RatePolicy) Validate() error {
	if p.MinRate > p.ClimateFloorRate {
		return fmt.Errorf("climate floor rate %.2f below min rate %.2f", p.ClimateFloorRate, p.MinRate)
	}
	if p.ClimateFloorRate > p.MaxRate {
		return fmt.Errorf("climate floor rate %.2f above max rate %.2f", p.ClimateFloorRate, p.MaxRate)
	}
	return nil
}
