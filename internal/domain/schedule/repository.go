package schedule

import (
	"context"
	"time"
)

type ScheduleRepository interface {
	Create(ctx context.Context, s *RepaymentSchedule) error
	GetCurrentByLoan(ctx context.Context, loanID uint64) (*RepaymentSchedule, error)
	// SupersedeCurrent flips is_current=false on the loan's current schedule.
	// Superseded rows are never deleted.
	SupersedeCurrent(ctx context.Context, loanID uint64) error
	ListByLoan(ctx context.Context, loanID uint64) ([]RepaymentSchedule, error)
}

type InstalmentRepository interface {
	CreateBatch(ctx context.Context, rows []Instalment) error
	Save(ctx context.Context, i *Instalment) error
	ListByLoan(ctx context.Context, loanID uint64) ([]Instalment, error)
	// ListUnpaidByLoan returns unpaid instalments ordered by payment_number.
	ListUnpaidByLoan(ctx context.Context, loanID uint64) ([]Instalment, error)
	// DeleteUnpaidByLoan removes unpaid instalments during a restructure.
	// Paid instalments are permanent payment history and are never touched.
	DeleteUnpaidByLoan(ctx context.Context, loanID uint64) error
	MaxPaymentNumber(ctx context.Context, loanID uint64) (int, error)
	// CreateReceipt persists the applied transaction. Receipts are the
	// replay-guard source of truth; each applied transaction id is kept even
	// when a later partial payment overwrites the instalment's latest-id slot.
	CreateReceipt(ctx context.Context, rec *PaymentReceipt) error
	// HasTransaction reports whether this external transaction id was already
	// applied to the loan (payment replay guard, backed by receipts).
	HasTransaction(ctx context.Context, loanID uint64, transactionID string) (bool, error)
	// ListUnpaidDueBefore returns unpaid instalments due strictly before
	// cutoff, across all loans. Used by the overdue marker job.
	ListUnpaidDueBefore(ctx context.Context, cutoff time.Time) ([]Instalment, error)
	// MarkLate writes is_late/days_late and nothing else. The overdue sweep
	// runs without the loan lock, so it must never write payment fields a
	// concurrent repayment may have changed since the sweep's read.
	MarkLate(ctx context.Context, instalmentID uint64, daysLate int) error
}
