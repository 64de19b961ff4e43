package uowmock

import (
	"context"
	"errors"

	"croplend/internal/domain/loan"
	"croplend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn     func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinLoanTxFn func(ctx context.Context, applicationID string, fn func(r uow.Repos, l *loan.Application) error) error
}

func New() *UoW { return &UoW{} }

// Passthrough returns a UoW whose transactions simply run the body against
// the given repos; WithinLoanTx resolves the loan via Repos.Loans the way the
// real implementation does.
func Passthrough(r uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(ctx context.Context, fn func(r uow.Repos) error) error {
			return fn(r)
		},
		WithinLoanTxFn: func(ctx context.Context, applicationID string, fn func(rr uow.Repos, l *loan.Application) error) error {
			l, err := r.Loans.GetByApplicationIDForUpdate(ctx, applicationID)
			if err != nil {
				return err
			}
			return fn(r, l)
		},
	}
}

func (m *UoW) Reset() { *m = UoW{} }

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinLoanTx(ctx context.Context, applicationID string, fn func(r uow.Repos, l *loan.Application) error) error {
	if m.WithinLoanTxFn != nil {
		return m.WithinLoanTxFn(ctx, applicationID, fn)
	}
	return errUnimplemented
}
