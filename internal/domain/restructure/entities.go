package restructure

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"croplend/internal/domain/policy"
)

var (
	ErrNotFound          = errors.New("restructure not found")
	ErrInvalidTransition = errors.New("invalid restructure state transition")

	ErrAdjustmentNotFound = errors.New("rate adjustment not found")
)

type Reason string

const (
	ReasonClimateEvent Reason = "climate_event"
	ReasonDefaultRisk  Reason = "default_risk"
	ReasonManual       Reason = "manual"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

type AdjustmentStatus string

const (
	AdjustmentPending  AdjustmentStatus = "pending"
	AdjustmentApplied  AdjustmentStatus = "applied"
	AdjustmentRejected AdjustmentStatus = "rejected"
)

// RateAdjustment records a climate-triggered rate reset proposal for one
// loan. Pending adjustments await bank review unless the policy auto-applies.
type RateAdjustment struct {
	ID             uint64           `gorm:"primaryKey;column:id" json:"-"`
	AdjustmentID   string           `gorm:"size:32;uniqueIndex:ux_adjustments_public_id" json:"adjustment_id"`
	LoanID         uint64           `gorm:"column:loan_id;not null;index" json:"-"`
	BankID         string           `gorm:"size:32;index:idx_adjustments_bank_status" json:"bank_id"`
	ClimateEventID string           `gorm:"size:100;index" json:"climate_event_id"`
	Severity       policy.Severity  `gorm:"size:20" json:"severity"`
	Region         string           `gorm:"size:100" json:"region"`
	OldRate        float64          `gorm:"type:decimal(6,2)" json:"old_rate"`
	NewRate        float64          `gorm:"type:decimal(6,2)" json:"new_rate"`
	Reason         string           `gorm:"type:text" json:"reason"`
	Status         AdjustmentStatus `gorm:"size:20;default:'pending';index:idx_adjustments_bank_status" json:"status"`
	ReviewedBy     *string          `gorm:"size:32" json:"reviewed_by"`
	ReviewedAt     *time.Time       `json:"reviewed_at"`
	AppliedAt      *time.Time       `json:"applied_at"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (RateAdjustment) TableName() string { return "climate_rate_adjustments" }

// Restructure is a full plan change (rate and/or term) on a loan. It snapshots
// the old terms so the superseded plan stays reconstructable.
type Restructure struct {
	ID                    uint64          `gorm:"primaryKey;column:id" json:"-"`
	RestructureID         string          `gorm:"size:32;uniqueIndex:ux_restructures_public_id" json:"restructure_id"`
	LoanID                uint64          `gorm:"column:loan_id;not null;index" json:"-"`
	BankID                string          `gorm:"size:32;index:idx_restructures_bank_status" json:"bank_id"`
	Reason                Reason          `gorm:"size:50" json:"reason"`
	AdjustmentID          *uint64         `gorm:"column:adjustment_id" json:"-"`
	Notes                 string          `gorm:"type:text" json:"notes"`
	OldInterestRate       float64         `gorm:"type:decimal(6,2)" json:"old_interest_rate"`
	OldTermMonths         int             `json:"old_term_months"`
	OldMonthlyPayment     decimal.Decimal `gorm:"type:decimal(12,2)" json:"old_monthly_payment"`
	OldOutstandingBalance decimal.Decimal `gorm:"type:decimal(12,2)" json:"old_outstanding_balance"`
	NewInterestRate       float64         `gorm:"type:decimal(6,2)" json:"new_interest_rate"`
	NewTermMonths         int             `json:"new_term_months"`
	NewMonthlyPayment     decimal.Decimal `gorm:"type:decimal(12,2)" json:"new_monthly_payment"`
	Status                Status          `gorm:"size:20;default:'pending';index:idx_restructures_bank_status" json:"status"`
	ReviewedBy            *string         `gorm:"size:32" json:"reviewed_by"`
	ReviewedAt            *time.Time      `json:"reviewed_at"`
	CompletedAt           *time.Time      `json:"completed_at"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Restructure) TableName() string { return "loan_restructures" }
