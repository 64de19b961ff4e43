package audit

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrImmutable is returned by the gorm hooks below: audit rows are
// append-only and the storage layer refuses updates and deletes outright.
var ErrImmutable = errors.New("audit records are append-only")

type Action string

const (
	ActionStatusChange      Action = "status_change"
	ActionRateChange        Action = "rate_change"
	ActionDisbursement      Action = "disbursement"
	ActionRepayment         Action = "repayment"
	ActionRestructure       Action = "restructure"
	ActionClimateAdjustment Action = "climate_adjustment"
)

// Record is one immutable entry in the loan audit trail. PerformedBy is nil
// for system-triggered mutations.
type Record struct {
	ID                uint64         `gorm:"primaryKey;column:id" json:"-"`
	LoanID            uint64         `gorm:"column:loan_id;not null;index:idx_audit_loan_created" json:"-"`
	Action            Action         `gorm:"size:50;index" json:"action"`
	OldValue          datatypes.JSON `json:"old_value"`
	NewValue          datatypes.JSON `json:"new_value"`
	Details           string         `gorm:"type:text" json:"details"`
	PerformedBy       *string        `gorm:"size:32" json:"performed_by"`
	TriggeredBySystem bool           `gorm:"default:false" json:"triggered_by_system"`
	CreatedAt         time.Time      `gorm:"autoCreateTime;index:idx_audit_loan_created" json:"created_at"`
}

func (Record) TableName() string { return "loan_audit_logs" }

func (*Record) BeforeUpdate(*gorm.DB) error { return ErrImmutable }
func (*Record) BeforeDelete(*gorm.DB) error { return ErrImmutable }

// Values marshals a snapshot map into the JSON column type. Marshal of
// map[string]any with scalar values cannot fail; a nil map yields nil.
func Values(m map[string]any) datatypes.JSON {
	if m == nil {
		return nil
	}
	b, _ := json.Marshal(m)
	return datatypes.JSON(b)
}
