package schedule

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrScheduleExists = errors.New("current repayment schedule already exists")
	ErrNoBalance      = errors.New("no outstanding balance to reschedule")
	ErrNotFound       = errors.New("repayment schedule not found")
)

// RepaymentSchedule is one plan version. Exactly one schedule per loan is
// current at any time; superseded schedules are retained, never deleted.
type RepaymentSchedule struct {
	ID               uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID           uint64          `gorm:"column:loan_id;not null;index:idx_schedules_loan_current" json:"-"`
	TotalInstalments int             `json:"total_instalments"`
	MonthlyPayment   decimal.Decimal `gorm:"type:decimal(12,2)" json:"monthly_payment"`
	TotalInterest    decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_interest"`
	TotalRepayment   decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_repayment"`
	StartDate        time.Time       `gorm:"type:date" json:"start_date"`
	EndDate          time.Time       `gorm:"type:date" json:"end_date"`
	InterestRateUsed float64         `gorm:"type:decimal(6,2)" json:"interest_rate_used"`
	IsCurrent        bool            `gorm:"default:true;index:idx_schedules_loan_current" json:"is_current"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (RepaymentSchedule) TableName() string { return "repayment_schedules" }

// Instalment belongs to the loan, not to a schedule row, so paid instalments
// survive restructures as permanent payment history.
type Instalment struct {
	ID                    uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID                uint64          `gorm:"column:loan_id;not null;uniqueIndex:ux_instalments_loan_number" json:"-"`
	PaymentNumber         int             `gorm:"uniqueIndex:ux_instalments_loan_number" json:"payment_number"`
	DueDate               time.Time       `gorm:"type:date;index:idx_instalments_due_paid" json:"due_date"`
	AmountDue             decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount_due"`
	AmountPaid            decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"amount_paid"`
	PaidDate              *time.Time      `gorm:"type:date" json:"paid_date"`
	IsPaid                bool            `gorm:"default:false;index:idx_instalments_due_paid" json:"is_paid"`
	IsLate                bool            `gorm:"default:false" json:"is_late"`
	DaysLate              int             `gorm:"default:0" json:"days_late"`
	ExternalTransactionID *string         `gorm:"size:50" json:"external_transaction_id"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Instalment) TableName() string { return "loan_instalments" }

// Outstanding is the unpaid remainder of this instalment. Overpayment means
// this can be negative; callers treat anything <= 0 as settled.
func (i *Instalment) Outstanding() decimal.Decimal {
	return i.AmountDue.Sub(i.AmountPaid)
}

// PaymentReceipt records one applied gateway transaction. The instalment only
// keeps the latest transaction id, so the replay guard checks receipts: a
// partial payment followed by another must still reject a replay of the
// first transaction.
type PaymentReceipt struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID        uint64          `gorm:"column:loan_id;not null;uniqueIndex:ux_receipts_loan_tx" json:"-"`
	InstalmentID  uint64          `gorm:"column:instalment_id;not null" json:"-"`
	TransactionID string          `gorm:"size:50;uniqueIndex:ux_receipts_loan_tx" json:"transaction_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	ReceivedAt    time.Time       `json:"received_at"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (PaymentReceipt) TableName() string { return "loan_payment_receipts" }
