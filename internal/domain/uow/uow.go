package uow

import (
	"context"

	"croplend/internal/domain/audit"
	"croplend/internal/domain/loan"
	"croplend/internal/domain/policy"
	"croplend/internal/domain/restructure"
	"croplend/internal/domain/schedule"
)

// Repos bundles every repository bound to one transaction.
type Repos struct {
	Loans        loan.Repository
	Schedules    schedule.ScheduleRepository
	Instalments  schedule.InstalmentRepository
	Policies     policy.Repository
	Restructures restructure.Repository
	Adjustments  restructure.AdjustmentRepository
	Audit        audit.Recorder
}

// UnitOfWork scopes multi-entity mutations to a single transaction. Audit
// writes ride the same transaction, so no state change can commit without its
// trail entry.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row first; two transactions touching the
	// same loan serialize, transactions on different loans run in parallel.
	WithinLoanTx(ctx context.Context, applicationID string, fn func(r Repos, l *loan.Application) error) error
}
