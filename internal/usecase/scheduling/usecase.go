package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"croplend/internal/amortization"
	"croplend/internal/domain/audit"
	"croplend/internal/domain/loan"
	"croplend/internal/domain/schedule"
	"croplend/internal/domain/uow"
)

// Usecase materializes and regenerates repayment schedules. Generation is
// deliberately not idempotent: a second Generate on the same loan fails with
// schedule.ErrScheduleExists and leaves the first plan untouched.
type Usecase struct {
	uow uow.UnitOfWork
	now func() time.Time
}

func NewUsecase(tx uow.UnitOfWork) *Usecase {
	return &Usecase{uow: tx, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the clock. Tests only.
func (u *Usecase) WithClock(now func() time.Time) *Usecase { u.now = now; return u }

// Generate creates the initial schedule and instalment set for an approved or
// freshly disbursed loan.
func (u *Usecase) Generate(ctx context.Context, applicationID string, startDate *time.Time) (*schedule.RepaymentSchedule, error) {
	var out *schedule.RepaymentSchedule
	err := u.uow.WithinLoanTx(ctx, applicationID, func(r uow.Repos, l *loan.Application) error {
		s, err := u.GenerateIn(ctx, r, l, startDate)
		if err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateIn is Generate inside a caller-owned transaction, so disbursement
// can flip the loan status and materialize the plan atomically.
func (u *Usecase) GenerateIn(ctx context.Context, r uow.Repos, l *loan.Application, startDate *time.Time) (*schedule.RepaymentSchedule, error) {
	if l.Status != loan.StatusApproved && l.Status != loan.StatusDisbursed {
		return nil, fmt.Errorf("cannot generate schedule for loan in %q status: %w", l.Status, loan.ErrInvalidTransition)
	}

	if _, err := r.Schedules.GetCurrentByLoan(ctx, l.ID); err == nil {
		return nil, fmt.Errorf("loan %s: %w", l.ApplicationID, schedule.ErrScheduleExists)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, schedule.ErrNotFound) {
		return nil, err
	}

	start := u.defaultStart()
	if startDate != nil {
		start = *startDate
	}

	plan, err := amortization.GenerateSchedule(l.ApprovedAmount, l.InterestRate, l.TermMonths, start)
	if err != nil {
		return nil, err
	}

	s, err := u.persistPlan(ctx, r, l, plan, l.InterestRate, l.TermMonths, 0)
	if err != nil {
		return nil, err
	}

	rec := &audit.Record{
		LoanID: l.ID,
		Action: audit.ActionStatusChange,
		NewValue: audit.Values(map[string]any{
			"schedule_created":  true,
			"monthly_payment":   s.MonthlyPayment.String(),
			"total_instalments": s.TotalInstalments,
			"start_date":        s.StartDate.Format("2006-01-02"),
			"end_date":          s.EndDate.Format("2006-01-02"),
		}),
		Details:           fmt.Sprintf("Repayment schedule generated: %d payments of %s", s.TotalInstalments, s.MonthlyPayment),
		TriggeredBySystem: true,
	}
	if err := r.Audit.Append(ctx, rec); err != nil {
		return nil, err
	}
	return s, nil
}

// Regenerate replaces the remaining plan of a disbursed loan: the current
// schedule is superseded (kept, flagged not-current), unpaid instalments are
// deleted, paid ones are preserved permanently, and a fresh plan is generated
// off the outstanding balance at the new rate and term.
func (u *Usecase) Regenerate(ctx context.Context, in RegenerateInput) (*schedule.RepaymentSchedule, error) {
	var out *schedule.RepaymentSchedule
	err := u.uow.WithinLoanTx(ctx, in.ApplicationID, func(r uow.Repos, l *loan.Application) error {
		s, err := u.RegenerateIn(ctx, r, l, in)
		if err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RegenerateIn is Regenerate inside a caller-owned transaction (restructure
// completion runs it alongside its own state change).
func (u *Usecase) RegenerateIn(ctx context.Context, r uow.Repos, l *loan.Application, in RegenerateInput) (*schedule.RepaymentSchedule, error) {
	if l.Status != loan.StatusDisbursed {
		return nil, fmt.Errorf("cannot regenerate schedule for loan in %q status: %w", l.Status, loan.ErrInvalidTransition)
	}

	outstanding := decimal.Zero
	if in.OutstandingBalance != nil {
		outstanding = *in.OutstandingBalance
	} else {
		unpaid, err := r.Instalments.ListUnpaidByLoan(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		for i := range unpaid {
			outstanding = outstanding.Add(unpaid[i].Outstanding())
		}
	}
	if outstanding.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("loan %s: %w", l.ApplicationID, schedule.ErrNoBalance)
	}

	oldSchedule, err := r.Schedules.GetCurrentByLoan(ctx, l.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, schedule.ErrNotFound) {
		return nil, err
	}

	if err := r.Schedules.SupersedeCurrent(ctx, l.ID); err != nil {
		return nil, err
	}
	if err := r.Instalments.DeleteUnpaidByLoan(ctx, l.ID); err != nil {
		return nil, err
	}

	// Paid instalments keep their numbers; new ones continue the sequence so
	// payment_number stays unique per loan and earliest-unpaid ordering holds.
	offset, err := r.Instalments.MaxPaymentNumber(ctx, l.ID)
	if err != nil {
		return nil, err
	}

	start := u.defaultStart()
	if in.StartDate != nil {
		start = *in.StartDate
	}

	plan, err := amortization.GenerateSchedule(outstanding, in.NewRate, in.NewTermMonths, start)
	if err != nil {
		return nil, err
	}

	s, err := u.persistPlan(ctx, r, l, plan, in.NewRate, in.NewTermMonths, offset)
	if err != nil {
		return nil, err
	}

	l.InterestRate = in.NewRate
	l.TermMonths = in.NewTermMonths
	if err := r.Loans.Save(ctx, l); err != nil {
		return nil, err
	}

	oldValues := map[string]any{"outstanding_balance": outstanding.String()}
	if oldSchedule != nil {
		oldValues["interest_rate"] = oldSchedule.InterestRateUsed
		oldValues["monthly_payment"] = oldSchedule.MonthlyPayment.String()
	}
	rec := &audit.Record{
		LoanID:   l.ID,
		Action:   audit.ActionRestructure,
		OldValue: audit.Values(oldValues),
		NewValue: audit.Values(map[string]any{
			"interest_rate":   in.NewRate,
			"term_months":     in.NewTermMonths,
			"monthly_payment": s.MonthlyPayment.String(),
			"start_date":      s.StartDate.Format("2006-01-02"),
			"end_date":        s.EndDate.Format("2006-01-02"),
		}),
		Details:           fmt.Sprintf("Schedule regenerated: %d payments of %s at %.2f%%", in.NewTermMonths, s.MonthlyPayment, in.NewRate),
		TriggeredBySystem: true,
	}
	if err := r.Audit.Append(ctx, rec); err != nil {
		return nil, err
	}
	return s, nil
}

// CurrentSchedule returns the active plan for a loan.
func (u *Usecase) CurrentSchedule(ctx context.Context, applicationID string) (*schedule.RepaymentSchedule, []schedule.Instalment, error) {
	var (
		s    *schedule.RepaymentSchedule
		rows []schedule.Instalment
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByApplicationID(ctx, applicationID)
		if err != nil {
			return err
		}
		if s, err = r.Schedules.GetCurrentByLoan(ctx, l.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return schedule.ErrNotFound
			}
			return err
		}
		rows, err = r.Instalments.ListByLoan(ctx, l.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return s, rows, nil
}

func (u *Usecase) persistPlan(ctx context.Context, r uow.Repos, l *loan.Application, plan *amortization.Plan, rate float64, months, numberOffset int) (*schedule.RepaymentSchedule, error) {
	s := &schedule.RepaymentSchedule{
		LoanID:           l.ID,
		TotalInstalments: months,
		MonthlyPayment:   plan.MonthlyPayment,
		TotalInterest:    plan.TotalInterest,
		TotalRepayment:   plan.TotalRepayment,
		StartDate:        plan.StartDate,
		EndDate:          plan.EndDate,
		InterestRateUsed: rate,
		IsCurrent:        true,
	}
	if err := r.Schedules.Create(ctx, s); err != nil {
		return nil, err
	}

	rows := make([]schedule.Instalment, 0, len(plan.Rows))
	for _, row := range plan.Rows {
		rows = append(rows, schedule.Instalment{
			LoanID:        l.ID,
			PaymentNumber: numberOffset + row.PaymentNumber,
			DueDate:       row.DueDate,
			AmountDue:     row.Instalment,
			AmountPaid:    decimal.Zero,
		})
	}
	if err := r.Instalments.CreateBatch(ctx, rows); err != nil {
		return nil, err
	}
	return s, nil
}

// defaultStart is the first day of the month after the current one.
func (u *Usecase) defaultStart() time.Time {
	today := u.now()
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, 0)
}
