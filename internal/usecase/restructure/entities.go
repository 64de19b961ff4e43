package restructure

import (
	"croplend/internal/domain/policy"
	domain "croplend/internal/domain/restructure"
)

type InitiateInput struct {
	ApplicationID string
	NewRate       float64
	NewTermMonths int
	Reason        domain.Reason
	Notes         string
	AutoApprove   bool
	ReviewedBy    *string
}

// ClimateEvent is the inbound climate event contract.
type ClimateEvent struct {
	EventID     string          `json:"event_id"`
	Severity    policy.Severity `json:"severity"`
	Region      string          `json:"region"`
	Description string          `json:"description"`
}

// FanOutResult reports a climate fan-out run. Per-loan failures are collected,
// not fatal: adjustments already applied for other loans stay applied.
type FanOutResult struct {
	AdjustmentsCreated int      `json:"adjustments_created"`
	AutoApplied        int      `json:"auto_applied"`
	Failures           []string `json:"failures,omitempty"`
}

// AdjustmentOutcome makes the adjustment->restructure chaining visible: when
// the loan was disbursed, Restructure holds the completed restructure the
// rate change triggered.
type AdjustmentOutcome struct {
	Adjustment  *domain.RateAdjustment `json:"adjustment"`
	Restructure *domain.Restructure    `json:"restructure,omitempty"`
}
