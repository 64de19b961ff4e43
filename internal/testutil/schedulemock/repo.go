package schedulemock

import (
	"context"
	"time"

	domain "croplend/internal/domain/schedule"
)

// ScheduleRepo is a function-backed mock for domain.ScheduleRepository.
type ScheduleRepo struct {
	CreateFn           func(ctx context.Context, s *domain.RepaymentSchedule) error
	GetCurrentByLoanFn func(ctx context.Context, loanID uint64) (*domain.RepaymentSchedule, error)
	SupersedeCurrentFn func(ctx context.Context, loanID uint64) error
	ListByLoanFn       func(ctx context.Context, loanID uint64) ([]domain.RepaymentSchedule, error)
}

func (m *ScheduleRepo) Create(ctx context.Context, s *domain.RepaymentSchedule) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, s)
	}
	return nil
}

func (m *ScheduleRepo) GetCurrentByLoan(ctx context.Context, loanID uint64) (*domain.RepaymentSchedule, error) {
	if m.GetCurrentByLoanFn != nil {
		return m.GetCurrentByLoanFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *ScheduleRepo) SupersedeCurrent(ctx context.Context, loanID uint64) error {
	if m.SupersedeCurrentFn != nil {
		return m.SupersedeCurrentFn(ctx, loanID)
	}
	return nil
}

func (m *ScheduleRepo) ListByLoan(ctx context.Context, loanID uint64) ([]domain.RepaymentSchedule, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanID)
	}
	return nil, nil
}

// InstalmentRepo is a function-backed mock for domain.InstalmentRepository.
type InstalmentRepo struct {
	CreateBatchFn        func(ctx context.Context, rows []domain.Instalment) error
	SaveFn               func(ctx context.Context, i *domain.Instalment) error
	ListByLoanFn         func(ctx context.Context, loanID uint64) ([]domain.Instalment, error)
	ListUnpaidByLoanFn   func(ctx context.Context, loanID uint64) ([]domain.Instalment, error)
	DeleteUnpaidByLoanFn func(ctx context.Context, loanID uint64) error
	MaxPaymentNumberFn   func(ctx context.Context, loanID uint64) (int, error)
	HasTransactionFn     func(ctx context.Context, loanID uint64, transactionID string) (bool, error)
	CreateReceiptFn      func(ctx context.Context, rec *domain.PaymentReceipt) error
	MarkLateFn           func(ctx context.Context, instalmentID uint64, daysLate int) error
	ListUnpaidDueBeforeFn func(ctx context.Context, cutoff time.Time) ([]domain.Instalment, error)
}

func (m *InstalmentRepo) CreateBatch(ctx context.Context, rows []domain.Instalment) error {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, rows)
	}
	return nil
}

func (m *InstalmentRepo) Save(ctx context.Context, i *domain.Instalment) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, i)
	}
	return nil
}

func (m *InstalmentRepo) ListByLoan(ctx context.Context, loanID uint64) ([]domain.Instalment, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanID)
	}
	return nil, nil
}

func (m *InstalmentRepo) ListUnpaidByLoan(ctx context.Context, loanID uint64) ([]domain.Instalment, error) {
	if m.ListUnpaidByLoanFn != nil {
		return m.ListUnpaidByLoanFn(ctx, loanID)
	}
	return nil, nil
}

func (m *InstalmentRepo) DeleteUnpaidByLoan(ctx context.Context, loanID uint64) error {
	if m.DeleteUnpaidByLoanFn != nil {
		return m.DeleteUnpaidByLoanFn(ctx, loanID)
	}
	return nil
}

func (m *InstalmentRepo) MaxPaymentNumber(ctx context.Context, loanID uint64) (int, error) {
	if m.MaxPaymentNumberFn != nil {
		return m.MaxPaymentNumberFn(ctx, loanID)
	}
	return 0, nil
}

func (m *InstalmentRepo) HasTransaction(ctx context.Context, loanID uint64, transactionID string) (bool, error) {
	if m.HasTransactionFn != nil {
		return m.HasTransactionFn(ctx, loanID, transactionID)
	}
	return false, nil
}

func (m *InstalmentRepo) CreateReceipt(ctx context.Context, rec *domain.PaymentReceipt) error {
	if m.CreateReceiptFn != nil {
		return m.CreateReceiptFn(ctx, rec)
	}
	return nil
}

func (m *InstalmentRepo) MarkLate(ctx context.Context, instalmentID uint64, daysLate int) error {
	if m.MarkLateFn != nil {
		return m.MarkLateFn(ctx, instalmentID, daysLate)
	}
	return nil
}

func (m *InstalmentRepo) ListUnpaidDueBefore(ctx context.Context, cutoff time.Time) ([]domain.Instalment, error) {
	if m.ListUnpaidDueBeforeFn != nil {
		return m.ListUnpaidDueBeforeFn(ctx, cutoff)
	}
	return nil, nil
}
