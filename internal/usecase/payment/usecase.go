package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"croplend/internal/domain/audit"
	"croplend/internal/domain/loan"
	"croplend/internal/domain/schedule"
	"croplend/internal/domain/uow"
	"croplend/internal/usecase/scheduling"
)

// DefaultOverdueThresholdDays is the default window before a disbursed loan
// with an unpaid instalment is flagged as defaulted.
const DefaultOverdueThresholdDays = 90

type Usecase struct {
	uow       uow.UnitOfWork
	scheduler *scheduling.Usecase
	now       func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, scheduler *scheduling.Usecase) *Usecase {
	return &Usecase{uow: tx, scheduler: scheduler, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the clock. Tests only.
func (u *Usecase) WithClock(now func() time.Time) *Usecase { u.now = now; return u }

// Disburse consumes the external gateway result. On success the loan moves
// approved -> disbursed and the repayment schedule is generated, all in one
// transaction. A failed gateway result mutates nothing.
func (u *Usecase) Disburse(ctx context.Context, applicationID string, result DisbursementResult) error {
	if !result.Success {
		return fmt.Errorf("disbursement failed for loan %s: %s", applicationID, result.Message)
	}
	return u.uow.WithinLoanTx(ctx, applicationID, func(r uow.Repos, l *loan.Application) error {
		if l.Status != loan.StatusApproved {
			return fmt.Errorf("cannot disburse loan in %q status: %w", l.Status, loan.ErrInvalidTransition)
		}

		now := u.now()
		l.Status = loan.StatusDisbursed
		l.DisbursedAt = &now
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		if _, err := u.scheduler.GenerateIn(ctx, r, l, nil); err != nil {
			return err
		}

		txID := ""
		if result.TransactionID != nil {
			txID = *result.TransactionID
		}
		rec := &audit.Record{
			LoanID:   l.ID,
			Action:   audit.ActionDisbursement,
			OldValue: audit.Values(map[string]any{"status": string(loan.StatusApproved)}),
			NewValue: audit.Values(map[string]any{
				"status":         string(loan.StatusDisbursed),
				"amount":         l.ApprovedAmount.String(),
				"transaction_id": txID,
				"disbursed_at":   now.Format(time.RFC3339),
			}),
			Details:           fmt.Sprintf("Loan disbursed: %s (transaction %s)", l.ApprovedAmount, txID),
			TriggeredBySystem: true,
		}
		return r.Audit.Append(ctx, rec)
	})
}

// ApplyPayment reconciles one inbound payment event. The entire amount is
// applied to the earliest unpaid instalment, even past its amount due; there
// is no carry-forward. Every applied payment writes a receipt in the same
// transaction, and a transaction id with an existing receipt on the loan is
// rejected as a replay. Failures that are business rejections return a
// PaymentResult with Success=false and a nil error.
func (u *Usecase) ApplyPayment(ctx context.Context, ev PaymentEvent) (*PaymentResult, error) {
	if ev.LoanReference == "" {
		return rejected(ev, "missing loan reference"), nil
	}
	if ev.TransactionID == "" {
		return rejected(ev, "missing transaction id"), nil
	}
	if ev.Amount.LessThanOrEqual(decimal.Zero) {
		return rejected(ev, "non-positive amount"), nil
	}

	var out *PaymentResult
	err := u.uow.WithinLoanTx(ctx, ev.LoanReference, func(r uow.Repos, l *loan.Application) error {
		if l.Status != loan.StatusDisbursed {
			out = rejected(ev, fmt.Sprintf("loan %s not disbursed (status %s)", ev.LoanReference, l.Status))
			return nil
		}

		dup, err := r.Instalments.HasTransaction(ctx, l.ID, ev.TransactionID)
		if err != nil {
			return err
		}
		if dup {
			out = rejected(ev, fmt.Sprintf("transaction %s already applied", ev.TransactionID))
			return nil
		}

		unpaid, err := r.Instalments.ListUnpaidByLoan(ctx, l.ID)
		if err != nil {
			return err
		}
		if len(unpaid) == 0 {
			out = &PaymentResult{
				Success:         true,
				Message:         "loan already fully paid",
				LoanReference:   ev.LoanReference,
				AmountProcessed: decimal.Zero,
			}
			return nil
		}

		inst := &unpaid[0]
		today := dateOnly(u.now())
		paidBefore := inst.AmountPaid

		inst.AmountPaid = inst.AmountPaid.Add(ev.Amount)
		inst.ExternalTransactionID = &ev.TransactionID
		inst.PaidDate = &today
		if inst.AmountPaid.GreaterThanOrEqual(inst.AmountDue) {
			inst.IsPaid = true
			if today.After(inst.DueDate) {
				inst.IsLate = true
				inst.DaysLate = daysBetween(inst.DueDate, today)
			}
		}
		if err := r.Instalments.Save(ctx, inst); err != nil {
			return err
		}
		receipt := &schedule.PaymentReceipt{
			LoanID:        l.ID,
			InstalmentID:  inst.ID,
			TransactionID: ev.TransactionID,
			Amount:        ev.Amount,
			ReceivedAt:    ev.Timestamp,
		}
		if err := r.Instalments.CreateReceipt(ctx, receipt); err != nil {
			return err
		}

		rec := &audit.Record{
			LoanID: l.ID,
			Action: audit.ActionRepayment,
			OldValue: audit.Values(map[string]any{
				"payment_number":     inst.PaymentNumber,
				"amount_paid_before": paidBefore.String(),
			}),
			NewValue: audit.Values(map[string]any{
				"payment_number":    inst.PaymentNumber,
				"amount_paid_after": inst.AmountPaid.String(),
				"transaction_id":    ev.TransactionID,
				"is_paid":           inst.IsPaid,
			}),
			Details:           fmt.Sprintf("Repayment received: %s (transaction %s)", ev.Amount, ev.TransactionID),
			TriggeredBySystem: true,
		}
		if err := r.Audit.Append(ctx, rec); err != nil {
			return err
		}

		repaid := false
		if inst.IsPaid {
			remaining, err := r.Instalments.ListUnpaidByLoan(ctx, l.ID)
			if err != nil {
				return err
			}
			if len(remaining) == 0 {
				l.Status = loan.StatusRepaid
				if err := r.Loans.Save(ctx, l); err != nil {
					return err
				}
				done := &audit.Record{
					LoanID:            l.ID,
					Action:            audit.ActionStatusChange,
					OldValue:          audit.Values(map[string]any{"status": string(loan.StatusDisbursed)}),
					NewValue:          audit.Values(map[string]any{"status": string(loan.StatusRepaid)}),
					Details:           "Loan fully repaid",
					TriggeredBySystem: true,
				}
				if err := r.Audit.Append(ctx, done); err != nil {
					return err
				}
				repaid = true
			}
		}

		out = &PaymentResult{
			Success:         true,
			Message:         fmt.Sprintf("payment of %s applied to instalment %d", ev.Amount, inst.PaymentNumber),
			LoanReference:   ev.LoanReference,
			PaymentNumber:   inst.PaymentNumber,
			AmountProcessed: ev.Amount,
			LoanRepaid:      repaid,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, loan.ErrNotFound) {
			return rejected(ev, fmt.Sprintf("loan %s not found", ev.LoanReference)), nil
		}
		return nil, err
	}
	return out, nil
}

// MarkOverdue refreshes is_late/days_late on every unpaid instalment past its
// due date. It never changes loan status; FlagDefaults acts on the signal.
// The sweep reads without loan locks, so it must only touch the late columns:
// a full-row write here could clobber a payment applied after the read.
func (u *Usecase) MarkOverdue(ctx context.Context) (int, error) {
	count := 0
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		today := dateOnly(u.now())
		overdue, err := r.Instalments.ListUnpaidDueBefore(ctx, today)
		if err != nil {
			return err
		}
		for i := range overdue {
			inst := &overdue[i]
			if err := r.Instalments.MarkLate(ctx, inst.ID, daysBetween(inst.DueDate, today)); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// FlagDefaults moves disbursed loans with an instalment overdue beyond the
// threshold to defaulted. Each loan is its own transaction; one failing loan
// does not roll back the others.
func (u *Usecase) FlagDefaults(ctx context.Context, thresholdDays int) (int, error) {
	if thresholdDays <= 0 {
		thresholdDays = DefaultOverdueThresholdDays
	}
	cutoff := dateOnly(u.now()).AddDate(0, 0, -thresholdDays)

	var candidates []loan.Application
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		candidates, err = r.Loans.ListDisbursedWithOverdueBefore(ctx, cutoff)
		return err
	})
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range candidates {
		appID := candidates[i].ApplicationID
		flagged := false
		err := u.uow.WithinLoanTx(ctx, appID, func(r uow.Repos, l *loan.Application) error {
			if l.Status != loan.StatusDisbursed {
				return nil // raced with a repayment or another job run
			}
			l.Status = loan.StatusDefaulted
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			rec := &audit.Record{
				LoanID:            l.ID,
				Action:            audit.ActionStatusChange,
				OldValue:          audit.Values(map[string]any{"status": string(loan.StatusDisbursed)}),
				NewValue:          audit.Values(map[string]any{"status": string(loan.StatusDefaulted)}),
				Details:           fmt.Sprintf("Flagged as defaulted: payment overdue by %d+ days", thresholdDays),
				TriggeredBySystem: true,
			}
			if err := r.Audit.Append(ctx, rec); err != nil {
				return err
			}
			flagged = true
			return nil
		})
		if err != nil {
			log.Printf("flag defaults: loan %s: %v", appID, err)
			continue
		}
		if flagged {
			count++
		}
	}
	return count, nil
}

func rejected(ev PaymentEvent, msg string) *PaymentResult {
	return &PaymentResult{
		Success:         false,
		Message:         msg,
		LoanReference:   ev.LoanReference,
		AmountProcessed: decimal.Zero,
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(dateOnly(to).Sub(dateOnly(from)).Hours() / 24)
}
