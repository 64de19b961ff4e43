package approval

import "croplend/internal/domain/loan"

type Evaluation struct {
	Approved      bool    `json:"approved"`
	SuggestedRate float64 `json:"suggested_rate"`
	Reason        string  `json:"reason"`
	Score         int     `json:"score"`
}

type ApproveInput struct {
	ApplicationID string
	ReviewedBy    *string  // nil = system
	OverrideRate  *float64 // bank manual override, re-clamped to platform bounds
}

type RejectInput struct {
	ApplicationID string
	Reason        string
	ReviewedBy    *string
}

type Decision struct {
	ApplicationID string      `json:"application_id"`
	Status        loan.Status `json:"status"`
	InterestRate  float64     `json:"interest_rate,omitempty"`
	RateCap       float64     `json:"interest_rate_cap,omitempty"`
	Reason        string      `json:"reason"`
}

type BulkResult struct {
	TotalPending   int `json:"total_pending"`
	AutoApprovable int `json:"auto_approvable"`
	AutoRejectable int `json:"auto_rejectable"`
	ManualReview   int `json:"require_manual_review"`
}
