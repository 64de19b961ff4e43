package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"croplend/internal/domain/audit"
	"croplend/internal/domain/loan"
	"croplend/internal/domain/policy"
	"croplend/internal/domain/uow"
)

// Default bounds used when a bank has no active rate policy.
const (
	fallbackMinRate = 5.0
	fallbackMaxRate = 24.0
)

// Score at or above which a pending loan can be approved without a human in
// the loop (bulk triage only; Approve itself is caller-gated).
const autoApproveScore = 700

type Usecase struct {
	loans    loan.Repository
	policies policy.Repository
	uow      uow.UnitOfWork
}

func NewUsecase(loans loan.Repository, policies policy.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{loans: loans, policies: policies, uow: tx}
}

// Evaluate is a pure decision: reject below the minimum score, otherwise
// interpolate the rate linearly between the policy's max (at the minimum
// qualifying score) and min (at a perfect score), clamped to platform bounds.
// Higher score yields a lower rate.
func Evaluate(l *loan.Application, p *policy.RatePolicy) Evaluation {
	score := l.ScoreAtApplication
	if score < loan.MinimumScore {
		return Evaluation{
			Approved: false,
			Reason:   fmt.Sprintf("pulse score %d below minimum threshold (%d)", score, loan.MinimumScore),
			Score:    score,
		}
	}

	policyMin, policyMax := fallbackMinRate, fallbackMaxRate
	if p != nil {
		policyMin, policyMax = p.MinRate, p.MaxRate
	}

	normalized := float64(score-loan.MinimumScore) / float64(loan.MaxScore-loan.MinimumScore)
	rate := policyMax - normalized*(policyMax-policyMin)
	rate = clampRate(rate)

	return Evaluation{
		Approved:      true,
		SuggestedRate: round2f(rate),
		Reason:        fmt.Sprintf("pulse score %d qualifies for %.2f%% rate", score, rate),
		Score:         score,
	}
}

// Approve runs the evaluation and transitions pending -> approved, assigning
// the final rate and recording the bank's cap separately. The loan update and
// its audit record commit in one transaction.
func (u *Usecase) Approve(ctx context.Context, in ApproveInput) (*Decision, error) {
	var out *Decision
	err := u.uow.WithinLoanTx(ctx, in.ApplicationID, func(r uow.Repos, l *loan.Application) error {
		if l.Status != loan.StatusPending {
			return fmt.Errorf("cannot approve loan in %q status: %w", l.Status, loan.ErrInvalidTransition)
		}

		p, err := activePolicy(ctx, r.Policies, l.BankID)
		if err != nil {
			return err
		}

		eval := Evaluate(l, p)
		if !eval.Approved {
			return fmt.Errorf("%s: %w", eval.Reason, loan.ErrRejectedByPolicy)
		}

		finalRate := eval.SuggestedRate
		if in.OverrideRate != nil {
			finalRate = clampRate(*in.OverrideRate)
		}

		rateCap := loan.PlatformMaxRate
		if p != nil {
			rateCap = p.MaxRate
		}

		if l.ApprovedAmount.IsZero() {
			l.ApprovedAmount = l.RequestedAmount
		}

		now := time.Now().UTC()
		l.Status = loan.StatusApproved
		l.InterestRate = finalRate
		l.InterestRateCap = rateCap
		l.ReviewedAt = &now
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		rec := &audit.Record{
			LoanID:   l.ID,
			Action:   audit.ActionStatusChange,
			OldValue: audit.Values(map[string]any{"status": string(loan.StatusPending)}),
			NewValue: audit.Values(map[string]any{
				"status":            string(loan.StatusApproved),
				"interest_rate":     finalRate,
				"interest_rate_cap": rateCap,
				"approved_amount":   l.ApprovedAmount.String(),
			}),
			Details:           fmt.Sprintf("Approved with %.2f%% interest rate (pulse score: %d)", finalRate, l.ScoreAtApplication),
			PerformedBy:       in.ReviewedBy,
			TriggeredBySystem: in.ReviewedBy == nil,
		}
		if err := r.Audit.Append(ctx, rec); err != nil {
			return err
		}

		out = &Decision{
			ApplicationID: l.ApplicationID,
			Status:        l.Status,
			InterestRate:  finalRate,
			RateCap:       rateCap,
			Reason:        eval.Reason,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reject transitions pending -> rejected, logging the reason verbatim.
func (u *Usecase) Reject(ctx context.Context, in RejectInput) (*Decision, error) {
	var out *Decision
	err := u.uow.WithinLoanTx(ctx, in.ApplicationID, func(r uow.Repos, l *loan.Application) error {
		if l.Status != loan.StatusPending {
			return fmt.Errorf("cannot reject loan in %q status: %w", l.Status, loan.ErrInvalidTransition)
		}

		now := time.Now().UTC()
		l.Status = loan.StatusRejected
		l.ReviewedAt = &now
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		rec := &audit.Record{
			LoanID:            l.ID,
			Action:            audit.ActionStatusChange,
			OldValue:          audit.Values(map[string]any{"status": string(loan.StatusPending)}),
			NewValue:          audit.Values(map[string]any{"status": string(loan.StatusRejected)}),
			Details:           "Rejected: " + in.Reason,
			PerformedBy:       in.ReviewedBy,
			TriggeredBySystem: in.ReviewedBy == nil,
		}
		if err := r.Audit.Append(ctx, rec); err != nil {
			return err
		}

		out = &Decision{ApplicationID: l.ApplicationID, Status: l.Status, Reason: in.Reason}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BulkEvaluate triages a bank's pending loans without mutating anything.
func (u *Usecase) BulkEvaluate(ctx context.Context, bankID string) (*BulkResult, error) {
	pending, err := u.loans.ListByBankAndStatus(ctx, bankID, loan.StatusPending)
	if err != nil {
		return nil, err
	}
	p, err := activePolicy(ctx, u.policies, bankID)
	if err != nil {
		return nil, err
	}

	res := &BulkResult{TotalPending: len(pending)}
	for i := range pending {
		eval := Evaluate(&pending[i], p)
		switch {
		case !eval.Approved:
			res.AutoRejectable++
		case eval.Score >= autoApproveScore:
			res.AutoApprovable++
		default:
			res.ManualReview++
		}
	}
	return res, nil
}

func activePolicy(ctx context.Context, repo policy.Repository, bankID string) (*policy.RatePolicy, error) {
	p, err := repo.GetActiveByBank(ctx, bankID)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, policy.ErrNotFound):
		return nil, nil // fall back to platform defaults
	default:
		return nil, err
	}
}

func clampRate(rate float64) float64 {
	if rate < loan.PlatformMinRate {
		return loan.PlatformMinRate
	}
	if rate > loan.PlatformMaxRate {
		return loan.PlatformMaxRate
	}
	return rate
}

func round2f(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}
