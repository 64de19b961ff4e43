package policy

import "context"

type Repository interface {
	Create(ctx context.Context, p *RatePolicy) error
	Save(ctx context.Context, p *RatePolicy) error
	GetActiveByBank(ctx context.Context, bankID string) (*RatePolicy, error)
	ListActive(ctx context.Context) ([]RatePolicy, error)
}
