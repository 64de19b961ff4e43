package loanmock

import (
	"context"
	"time"

	domain "croplend/internal/domain/loan"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only methods you need are included; add more as tests require.
type Repo struct {
	CreateFn                         func(ctx context.Context, l *domain.Application) error
	GetByApplicationIDFn             func(ctx context.Context, applicationID string) (*domain.Application, error)
	GetByApplicationIDForUpdateFn    func(ctx context.Context, applicationID string) (*domain.Application, error)
	GetByIDForUpdateFn               func(ctx context.Context, id uint64) (*domain.Application, error)
	SaveFn                           func(ctx context.Context, l *domain.Application) error
	ListByBankAndStatusFn            func(ctx context.Context, bankID string, st domain.Status) ([]domain.Application, error)
	ListDisbursedWithOverdueBeforeFn func(ctx context.Context, cutoff time.Time) ([]domain.Application, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Application) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*domain.Application, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*domain.Application, error) {
	if m.GetByApplicationIDForUpdateFn != nil {
		return m.GetByApplicationIDForUpdateFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Application, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, l *domain.Application) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) ListByBankAndStatus(ctx context.Context, bankID string, st domain.Status) ([]domain.Application, error) {
	if m.ListByBankAndStatusFn != nil {
		return m.ListByBankAndStatusFn(ctx, bankID, st)
	}
	return nil, nil
}

func (m *Repo) ListDisbursedWithOverdueBefore(ctx context.Context, cutoff time.Time) ([]domain.Application, error) {
	if m.ListDisbursedWithOverdueBeforeFn != nil {
		return m.ListDisbursedWithOverdueBeforeFn(ctx, cutoff)
	}
	return nil, nil
}
