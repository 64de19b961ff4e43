package restructuremock

import (
	"context"

	domain "croplend/internal/domain/restructure"
)

// Repo is a function-backed mock for domain.Repository.
type Repo struct {
	CreateFn             func(ctx context.Context, r *domain.Restructure) error
	SaveFn               func(ctx context.Context, r *domain.Restructure) error
	GetByRestructureIDFn func(ctx context.Context, restructureID string) (*domain.Restructure, error)
	ListByLoanFn         func(ctx context.Context, loanID uint64) ([]domain.Restructure, error)
}

func (m *Repo) Create(ctx context.Context, r *domain.Restructure) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, r *domain.Restructure) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByRestructureID(ctx context.Context, restructureID string) (*domain.Restructure, error) {
	if m.GetByRestructureIDFn != nil {
		return m.GetByRestructureIDFn(ctx, restructureID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByLoan(ctx context.Context, loanID uint64) ([]domain.Restructure, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanID)
	}
	return nil, nil
}

// AdjustmentRepo is a function-backed mock for domain.AdjustmentRepository.
type AdjustmentRepo struct {
	CreateFn            func(ctx context.Context, a *domain.RateAdjustment) error
	SaveFn              func(ctx context.Context, a *domain.RateAdjustment) error
	GetByAdjustmentIDFn func(ctx context.Context, adjustmentID string) (*domain.RateAdjustment, error)
	GetByIDFn           func(ctx context.Context, id uint64) (*domain.RateAdjustment, error)
	ListByEventFn       func(ctx context.Context, climateEventID string) ([]domain.RateAdjustment, error)
}

func (m *AdjustmentRepo) Create(ctx context.Context, a *domain.RateAdjustment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *AdjustmentRepo) Save(ctx context.Context, a *domain.RateAdjustment) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

func (m *AdjustmentRepo) GetByAdjustmentID(ctx context.Context, adjustmentID string) (*domain.RateAdjustment, error) {
	if m.GetByAdjustmentIDFn != nil {
		return m.GetByAdjustmentIDFn(ctx, adjustmentID)
	}
	return nil, context.Canceled
}

func (m *AdjustmentRepo) GetByID(ctx context.Context, id uint64) (*domain.RateAdjustment, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *AdjustmentRepo) ListByEvent(ctx context.Context, climateEventID string) ([]domain.RateAdjustment, error) {
	if m.ListByEventFn != nil {
		return m.ListByEventFn(ctx, climateEventID)
	}
	return nil, nil
}
