package policymock

import (
	"context"

	domain "croplend/internal/domain/policy"
)

// Repo is a function-backed mock for domain.Repository.
type Repo struct {
	CreateFn          func(ctx context.Context, p *domain.RatePolicy) error
	SaveFn            func(ctx context.Context, p *domain.RatePolicy) error
	GetActiveByBankFn func(ctx context.Context, bankID string) (*domain.RatePolicy, error)
	ListActiveFn      func(ctx context.Context) ([]domain.RatePolicy, error)
}

func (m *Repo) Create(ctx context.Context, p *domain.RatePolicy) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, p *domain.RatePolicy) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetActiveByBank(ctx context.Context, bankID string) (*domain.RatePolicy, error) {
	if m.GetActiveByBankFn != nil {
		return m.GetActiveByBankFn(ctx, bankID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListActive(ctx context.Context) ([]domain.RatePolicy, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx)
	}
	return nil, nil
}
