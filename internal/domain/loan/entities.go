package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Platform-wide lending bounds. Bank policies may narrow these but never
// exceed them.
const (
	PlatformMinRate = 2.0  // % per annum
	PlatformMaxRate = 36.0 // % per annum
	MinimumScore    = 300  // applications below this are auto-rejected
	MaxScore        = 1000
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusDisbursed Status = "disbursed"
	StatusRepaid    Status = "repaid"
	StatusDefaulted Status = "defaulted"
)

var (
	ErrNotFound          = errors.New("loan not found")
	ErrInvalidTransition = errors.New("invalid loan state transition")
	ErrRejectedByPolicy  = errors.New("loan rejected by rate policy")
)

// Application is the core loan aggregate. Intake creates it in 'pending';
// every later state change flows through the usecases and writes an audit
// record in the same transaction.
type Application struct {
	ID                 uint64          `gorm:"primaryKey;column:id" json:"-"`
	ApplicationID      string          `gorm:"size:32;uniqueIndex:ux_loans_application_id" json:"application_id"`
	FarmerID           string          `gorm:"size:32;index:idx_loans_farmer" json:"farmer_id"`
	BankID             string          `gorm:"size:32;index:idx_loans_bank_status" json:"bank_id"`
	RequestedAmount    decimal.Decimal `gorm:"type:decimal(12,2)" json:"requested_amount"`
	ApprovedAmount     decimal.Decimal `gorm:"type:decimal(12,2)" json:"approved_amount"`
	InterestRate       float64         `gorm:"type:decimal(6,2)" json:"interest_rate"`
	InterestRateCap    float64         `gorm:"type:decimal(6,2)" json:"interest_rate_cap"`
	TermMonths         int             `gorm:"column:term_months" json:"term_months"`
	LoanPurpose        string          `gorm:"size:100" json:"loan_purpose"`
	ScoreAtApplication int             `gorm:"column:score_at_application" json:"score_at_application"`
	ClimateProtected   bool            `gorm:"default:false" json:"climate_protected"`
	Status             Status          `gorm:"type:enum('pending','approved','rejected','disbursed','repaid','defaulted');default:'pending';index:idx_loans_bank_status" json:"status"`
	ReviewedAt         *time.Time      `json:"reviewed_at"`
	DisbursedAt        *time.Time      `json:"disbursed_at"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Application) TableName() string { return "loan_applications" }

// Active reports whether the loan is disbursed and still open.
func (a *Application) Active() bool { return a.Status == StatusDisbursed }
