package scheduling

import (
	"time"

	"github.com/shopspring/decimal"
)

type RegenerateInput struct {
	ApplicationID string
	NewRate       float64
	NewTermMonths int
	// OutstandingBalance overrides the computed balance (restructures pass
	// the snapshot captured at initiation). Nil = sum of unpaid remainders.
	OutstandingBalance *decimal.Decimal
	StartDate          *time.Time
}
