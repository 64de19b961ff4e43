package restructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"croplend/internal/domain/audit"
	"croplend/internal/domain/loan"
	"croplend/internal/domain/policy"
	domain "croplend/internal/domain/restructure"
	"croplend/internal/domain/schedule"
	"croplend/internal/domain/uow"
	"croplend/internal/usecase/scheduling"
	"croplend/pkg/id"
)

// Usecase drives the restructure state machine
// (pending -> approved -> completed, or pending -> rejected) and the
// climate-event fan-out. A rate adjustment on a disbursed loan always chains
// into a schedule-regenerating restructure: a rate change without a new
// schedule is economically meaningless.
type Usecase struct {
	loans     loan.Repository
	policies  policy.Repository
	uow       uow.UnitOfWork
	scheduler *scheduling.Usecase
	now       func() time.Time
}

func NewUsecase(loans loan.Repository, policies policy.Repository, tx uow.UnitOfWork, scheduler *scheduling.Usecase) *Usecase {
	return &Usecase{
		loans:     loans,
		policies:  policies,
		uow:       tx,
		scheduler: scheduler,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the clock. Tests only.
func (u *Usecase) WithClock(now func() time.Time) *Usecase { u.now = now; return u }

// Initiate creates a restructure in pending status, snapshotting the current
// plan's terms. AutoApprove runs the approve (and, for disbursed loans,
// complete) steps inside the same transaction.
func (u *Usecase) Initiate(ctx context.Context, in InitiateInput) (*domain.Restructure, error) {
	var out *domain.Restructure
	err := u.uow.WithinLoanTx(ctx, in.ApplicationID, func(r uow.Repos, l *loan.Application) error {
		rst, err := u.initiateIn(ctx, r, l, in, nil)
		if err != nil {
			return err
		}
		out = rst
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Approve moves pending -> approved. For disbursed loans it chains straight
// into Complete inside the same transaction.
func (u *Usecase) Approve(ctx context.Context, restructureID string, reviewedBy *string) (*domain.Restructure, error) {
	var out *domain.Restructure
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		rst, err := r.Restructures.GetByRestructureID(ctx, restructureID)
		if err != nil {
			return notFound(err, domain.ErrNotFound)
		}
		l, err := r.Loans.GetByIDForUpdate(ctx, rst.LoanID)
		if err != nil {
			return err
		}
		if err := u.approveIn(ctx, r, rst, l, reviewedBy); err != nil {
			return err
		}
		out = rst
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Complete regenerates the schedule with the restructure's new terms.
func (u *Usecase) Complete(ctx context.Context, restructureID string) (*domain.Restructure, error) {
	var out *domain.Restructure
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		rst, err := r.Restructures.GetByRestructureID(ctx, restructureID)
		if err != nil {
			return notFound(err, domain.ErrNotFound)
		}
		l, err := r.Loans.GetByIDForUpdate(ctx, rst.LoanID)
		if err != nil {
			return err
		}
		if err := u.completeIn(ctx, r, rst, l); err != nil {
			return err
		}
		out = rst
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reject declines a pending restructure and cascades the rejection to any
// linked rate adjustment.
func (u *Usecase) Reject(ctx context.Context, restructureID string, reviewedBy *string, notes string) (*domain.Restructure, error) {
	var out *domain.Restructure
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		rst, err := r.Restructures.GetByRestructureID(ctx, restructureID)
		if err != nil {
			return notFound(err, domain.ErrNotFound)
		}
		if rst.Status != domain.StatusPending {
			return fmt.Errorf("cannot reject restructure in %q status: %w", rst.Status, domain.ErrInvalidTransition)
		}

		now := u.now()
		rst.Status = domain.StatusRejected
		rst.ReviewedBy = reviewedBy
		rst.ReviewedAt = &now
		if notes != "" {
			if rst.Notes != "" {
				rst.Notes += "\n"
			}
			rst.Notes += "Rejection: " + notes
		}
		if err := r.Restructures.Save(ctx, rst); err != nil {
			return err
		}

		if rst.AdjustmentID != nil {
			adj, err := r.Adjustments.GetByID(ctx, *rst.AdjustmentID)
			if err != nil {
				return err
			}
			adj.Status = domain.AdjustmentRejected
			adj.ReviewedBy = reviewedBy
			adj.ReviewedAt = &now
			if err := r.Adjustments.Save(ctx, adj); err != nil {
				return err
			}
		}
		out = rst
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// OnClimateEvent fans the event out: for every bank whose active policy's
// threshold the severity meets, every disbursed loan still above the policy's
// floor rate gets one pending adjustment, auto-applied when the policy says
// so. Each loan is its own transaction; partial success is expected at this
// scale and failures are collected, not fatal.
func (u *Usecase) OnClimateEvent(ctx context.Context, ev ClimateEvent) (*FanOutResult, error) {
	if ev.Severity.Level() < 0 {
		return nil, fmt.Errorf("unknown climate severity %q", ev.Severity)
	}

	policies, err := u.policies.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	res := &FanOutResult{}
	for pi := range policies {
		p := &policies[pi]
		if p.ClimateResetThreshold.Level() > ev.Severity.Level() {
			continue
		}

		loans, err := u.loans.ListByBankAndStatus(ctx, p.BankID, loan.StatusDisbursed)
		if err != nil {
			res.Failures = append(res.Failures, fmt.Sprintf("bank %s: %v", p.BankID, err))
			continue
		}

		for li := range loans {
			if loans[li].InterestRate <= p.ClimateFloorRate {
				continue
			}
			appID := loans[li].ApplicationID
			created, applied := false, false
			err := u.uow.WithinLoanTx(ctx, appID, func(r uow.Repos, l *loan.Application) error {
				if l.Status != loan.StatusDisbursed || l.InterestRate <= p.ClimateFloorRate {
					return nil // changed since the listing
				}
				// a replayed event must not pile up duplicate adjustments
				existing, err := r.Adjustments.ListByEvent(ctx, ev.EventID)
				if err != nil {
					return err
				}
				for ei := range existing {
					if existing[ei].LoanID == l.ID {
						return nil
					}
				}

				adj := &domain.RateAdjustment{
					AdjustmentID:   id.NewID32(),
					LoanID:         l.ID,
					BankID:         l.BankID,
					ClimateEventID: ev.EventID,
					Severity:       ev.Severity,
					Region:         ev.Region,
					OldRate:        l.InterestRate,
					NewRate:        p.ClimateFloorRate,
					Reason:         eventReason(ev),
					Status:         domain.AdjustmentPending,
				}
				if err := r.Adjustments.Create(ctx, adj); err != nil {
					return err
				}
				created = true

				if p.AutoResetEnabled {
					if _, err := u.applyAdjustmentIn(ctx, r, adj, l, nil, true); err != nil {
						return err
					}
					applied = true
				}
				return nil
			})
			// count only what actually committed; a rolled-back loan lands
			// in Failures instead
			if err != nil {
				res.Failures = append(res.Failures, fmt.Sprintf("loan %s: %v", appID, err))
				continue
			}
			if created {
				res.AdjustmentsCreated++
			}
			if applied {
				res.AutoApplied++
			}
		}
	}
	return res, nil
}

// ApplyRateAdjustment approves and applies a pending adjustment. The outcome
// carries the chained restructure when the loan was disbursed.
func (u *Usecase) ApplyRateAdjustment(ctx context.Context, adjustmentID string, reviewedBy *string) (*AdjustmentOutcome, error) {
	var out *AdjustmentOutcome
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		adj, err := r.Adjustments.GetByAdjustmentID(ctx, adjustmentID)
		if err != nil {
			return notFound(err, domain.ErrAdjustmentNotFound)
		}
		l, err := r.Loans.GetByIDForUpdate(ctx, adj.LoanID)
		if err != nil {
			return err
		}
		rst, err := u.applyAdjustmentIn(ctx, r, adj, l, reviewedBy, reviewedBy == nil)
		if err != nil {
			return err
		}
		out = &AdjustmentOutcome{Adjustment: adj, Restructure: rst}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Usecase) applyAdjustmentIn(ctx context.Context, r uow.Repos, adj *domain.RateAdjustment, l *loan.Application, reviewedBy *string, auto bool) (*domain.Restructure, error) {
	if adj.Status != domain.AdjustmentPending {
		return nil, fmt.Errorf("cannot apply adjustment in %q status: %w", adj.Status, domain.ErrInvalidTransition)
	}

	now := u.now()
	adj.Status = domain.AdjustmentApplied
	adj.ReviewedBy = reviewedBy
	adj.ReviewedAt = &now
	adj.AppliedAt = &now
	if err := r.Adjustments.Save(ctx, adj); err != nil {
		return nil, err
	}

	oldRate := l.InterestRate
	l.InterestRate = adj.NewRate
	l.ClimateProtected = true
	if err := r.Loans.Save(ctx, l); err != nil {
		return nil, err
	}

	rec := &audit.Record{
		LoanID:   l.ID,
		Action:   audit.ActionClimateAdjustment,
		OldValue: audit.Values(map[string]any{"interest_rate": oldRate}),
		NewValue: audit.Values(map[string]any{
			"interest_rate":     adj.NewRate,
			"climate_protected": true,
			"climate_event_id":  adj.ClimateEventID,
		}),
		Details:           fmt.Sprintf("Climate rate reset: %.2f%% to %.2f%% (severity: %s)", oldRate, adj.NewRate, adj.Severity),
		PerformedBy:       reviewedBy,
		TriggeredBySystem: auto,
	}
	if err := r.Audit.Append(ctx, rec); err != nil {
		return nil, err
	}

	// A rate change on an already-disbursed loan must regenerate the
	// remaining schedule; chain into an auto-approved restructure.
	if l.Status != loan.StatusDisbursed {
		return nil, nil
	}
	in := InitiateInput{
		ApplicationID: l.ApplicationID,
		NewRate:       adj.NewRate,
		NewTermMonths: l.TermMonths,
		Reason:        domain.ReasonClimateEvent,
		Notes:         "Auto-restructure from climate event: " + adj.Reason,
		AutoApprove:   true,
	}
	return u.initiateIn(ctx, r, l, in, adj)
}

func (u *Usecase) initiateIn(ctx context.Context, r uow.Repos, l *loan.Application, in InitiateInput, adj *domain.RateAdjustment) (*domain.Restructure, error) {
	if l.Status != loan.StatusApproved && l.Status != loan.StatusDisbursed {
		return nil, fmt.Errorf("cannot restructure loan in %q status: %w", l.Status, loan.ErrInvalidTransition)
	}

	current, err := r.Schedules.GetCurrentByLoan(ctx, l.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, schedule.ErrNotFound) {
		return nil, err
	}
	if current == nil && l.Status == loan.StatusDisbursed {
		return nil, fmt.Errorf("no current schedule for disbursed loan %s: %w", l.ApplicationID, schedule.ErrNotFound)
	}

	oldRate := l.InterestRate
	oldMonthly := decimal.Zero
	if current != nil {
		oldRate = current.InterestRateUsed
		oldMonthly = current.MonthlyPayment
	}

	outstanding := l.ApprovedAmount
	if l.Status == loan.StatusDisbursed {
		unpaid, err := r.Instalments.ListUnpaidByLoan(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		outstanding = decimal.Zero
		for i := range unpaid {
			outstanding = outstanding.Add(unpaid[i].Outstanding())
		}
	}

	rst := &domain.Restructure{
		RestructureID:         id.NewID32(),
		LoanID:                l.ID,
		BankID:                l.BankID,
		Reason:                in.Reason,
		Notes:                 in.Notes,
		OldInterestRate:       oldRate,
		OldTermMonths:         l.TermMonths,
		OldMonthlyPayment:     oldMonthly,
		OldOutstandingBalance: outstanding,
		NewInterestRate:       in.NewRate,
		NewTermMonths:         in.NewTermMonths,
		Status:                domain.StatusPending,
	}
	if adj != nil {
		rst.AdjustmentID = &adj.ID
	}
	if err := r.Restructures.Create(ctx, rst); err != nil {
		return nil, err
	}

	if in.AutoApprove {
		if err := u.approveIn(ctx, r, rst, l, in.ReviewedBy); err != nil {
			return nil, err
		}
	}
	return rst, nil
}

func (u *Usecase) approveIn(ctx context.Context, r uow.Repos, rst *domain.Restructure, l *loan.Application, reviewedBy *string) error {
	if rst.Status != domain.StatusPending {
		return fmt.Errorf("cannot approve restructure in %q status: %w", rst.Status, domain.ErrInvalidTransition)
	}

	now := u.now()
	rst.Status = domain.StatusApproved
	rst.ReviewedBy = reviewedBy
	rst.ReviewedAt = &now
	if err := r.Restructures.Save(ctx, rst); err != nil {
		return err
	}

	if l.Status == loan.StatusDisbursed {
		return u.completeIn(ctx, r, rst, l)
	}
	return nil
}

func (u *Usecase) completeIn(ctx context.Context, r uow.Repos, rst *domain.Restructure, l *loan.Application) error {
	if rst.Status != domain.StatusApproved {
		return fmt.Errorf("cannot complete restructure in %q status: %w", rst.Status, domain.ErrInvalidTransition)
	}

	balance := rst.OldOutstandingBalance
	s, err := u.scheduler.RegenerateIn(ctx, r, l, scheduling.RegenerateInput{
		ApplicationID:      l.ApplicationID,
		NewRate:            rst.NewInterestRate,
		NewTermMonths:      rst.NewTermMonths,
		OutstandingBalance: &balance,
	})
	if err != nil {
		return err
	}

	now := u.now()
	rst.NewMonthlyPayment = s.MonthlyPayment
	rst.Status = domain.StatusCompleted
	rst.CompletedAt = &now
	if err := r.Restructures.Save(ctx, rst); err != nil {
		return err
	}

	if rst.Reason == domain.ReasonClimateEvent && !l.ClimateProtected {
		l.ClimateProtected = true
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func eventReason(ev ClimateEvent) string {
	if ev.Description != "" {
		return ev.Description
	}
	return fmt.Sprintf("%s climate event in %s", ev.Severity, ev.Region)
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
