package restructure

import "context"

type Repository interface {
	Create(ctx context.Context, r *Restructure) error
	Save(ctx context.Context, r *Restructure) error
	GetByRestructureID(ctx context.Context, restructureID string) (*Restructure, error)
	ListByLoan(ctx context.Context, loanID uint64) ([]Restructure, error)
}

type AdjustmentRepository interface {
	Create(ctx context.Context, a *RateAdjustment) error
	Save(ctx context.Context, a *RateAdjustment) error
	GetByAdjustmentID(ctx context.Context, adjustmentID string) (*RateAdjustment, error)
	GetByID(ctx context.Context, id uint64) (*RateAdjustment, error)
	ListByEvent(ctx context.Context, climateEventID string) ([]RateAdjustment, error)
}
