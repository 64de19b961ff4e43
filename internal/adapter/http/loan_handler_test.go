package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"croplend/internal/domain/audit"
	"croplend/internal/domain/loan"
	"croplend/internal/domain/policy"
	"croplend/internal/domain/schedule"
	"croplend/internal/domain/uow"
	"croplend/internal/testutil/auditmock"
	"croplend/internal/testutil/loanmock"
	"croplend/internal/testutil/policymock"
	"croplend/internal/testutil/schedulemock"
	"croplend/internal/testutil/uowmock"
	"croplend/internal/usecase/approval"
	"croplend/internal/usecase/payment"
	"croplend/internal/usecase/scheduling"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type loanFixture struct {
	h           *LoanHandler
	loans       *loanmock.Repo
	schedules   *schedulemock.ScheduleRepo
	instalments *schedulemock.InstalmentRepo
	trail       *auditmock.Recorder
}

// newLoanFixture wires the full console surface over function-backed repos:
// loan resolution by application id, an 8-15% rate policy, and an empty
// schedule store.
func newLoanFixture(l *loan.Application, pol *policy.RatePolicy) *loanFixture {
	f := &loanFixture{
		loans: &loanmock.Repo{
			GetByApplicationIDFn: func(ctx context.Context, appID string) (*loan.Application, error) {
				if l == nil || appID != l.ApplicationID {
					return nil, gorm.ErrRecordNotFound
				}
				return l, nil
			},
			GetByApplicationIDForUpdateFn: func(ctx context.Context, appID string) (*loan.Application, error) {
				if l == nil || appID != l.ApplicationID {
					return nil, gorm.ErrRecordNotFound
				}
				return l, nil
			},
		},
		schedules: &schedulemock.ScheduleRepo{
			GetCurrentByLoanFn: func(ctx context.Context, loanID uint64) (*schedule.RepaymentSchedule, error) {
				return nil, gorm.ErrRecordNotFound
			},
		},
		instalments: &schedulemock.InstalmentRepo{},
		trail:       &auditmock.Recorder{},
	}
	policies := &policymock.Repo{
		GetActiveByBankFn: func(ctx context.Context, bankID string) (*policy.RatePolicy, error) {
			if pol == nil {
				return nil, gorm.ErrRecordNotFound
			}
			return pol, nil
		},
	}
	repos := uow.Repos{
		Loans:       f.loans,
		Schedules:   f.schedules,
		Instalments: f.instalments,
		Policies:    policies,
		Audit:       f.trail,
	}
	tx := uowmock.Passthrough(repos)
	scheduler := scheduling.NewUsecase(tx)
	approvals := approval.NewUsecase(f.loans, policies, tx)
	payments := payment.NewUsecase(tx, scheduler)
	f.h = NewLoanHandler(approvals, payments, scheduler, f.loans, f.trail)
	return f
}

func pendingLoan(score int) *loan.Application {
	return &loan.Application{
		ID:                 42,
		ApplicationID:      testAppID,
		BankID:             testBankID,
		RequestedAmount:    decimal.NewFromInt(100000),
		TermMonths:         12,
		ScoreAtApplication: score,
		Status:             loan.StatusPending,
	}
}

func standardPolicy() *policy.RatePolicy {
	return &policy.RatePolicy{BankID: testBankID, MinRate: 8.0, MaxRate: 15.0, IsActive: true}
}

func loanCtx(e *echo.Echo, method, body, appID string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := jsonCtx(e, method, "/", body)
	c.SetParamNames("application_id")
	c.SetParamValues(appID)
	return c, rec
}

func TestApproveLoan(t *testing.T) {
	e := newEcho()

	t.Run("happy path", func(t *testing.T) {
		f := newLoanFixture(pendingLoan(800), standardPolicy())
		c, rec := loanCtx(e, http.MethodPost, `{}`, testAppID)

		if err := f.h.ApproveLoan(c); err != nil {
			t.Fatalf("ApproveLoan: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
		var dec approval.Decision
		decodeBody(t, rec, &dec)
		if dec.Status != loan.StatusApproved || dec.InterestRate != 10.0 {
			t.Errorf("decision = %+v", dec)
		}
		if len(f.trail.Records) != 1 {
			t.Errorf("audit records = %d, want 1", len(f.trail.Records))
		}
	})

	t.Run("invalid path param", func(t *testing.T) {
		f := newLoanFixture(pendingLoan(800), standardPolicy())
		c, rec := loanCtx(e, http.MethodPost, `{}`, "not-a-valid-id")

		if err := f.h.ApproveLoan(c); err != nil {
			t.Fatalf("ApproveLoan: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %d", rec.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newLoanFixture(pendingLoan(800), standardPolicy())
		c, rec := loanCtx(e, http.MethodPost, `{not json`, testAppID)

		if err := f.h.ApproveLoan(c); err != nil {
			t.Fatalf("ApproveLoan: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %d", rec.Code)
		}
	})

	t.Run("negative override rate fails validation", func(t *testing.T) {
		f := newLoanFixture(pendingLoan(800), standardPolicy())
		c, rec := loanCtx(e, http.MethodPost, `{"override_rate": -3}`, testAppID)

		if err := f.h.ApproveLoan(c); err != nil {
			t.Fatalf("ApproveLoan: %v", err)
		}
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("code = %d", rec.Code)
		}
		var resp ErrorResponse
		decodeBody(t, rec, &resp)
		if !containsFieldMsg(resp.Details, "OverrideRate", "greater than") {
			t.Errorf("details = %+v", resp.Details)
		}
	})

	t.Run("unknown loan is 404", func(t *testing.T) {
		f := newLoanFixture(nil, standardPolicy())
		c, rec := loanCtx(e, http.MethodPost, `{}`, testAppID)

		if err := f.h.ApproveLoan(c); err != nil {
			t.Fatalf("ApproveLoan: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("policy rejection is 422", func(t *testing.T) {
		f := newLoanFixture(pendingLoan(250), standardPolicy())
		c, rec := loanCtx(e, http.MethodPost, `{}`, testAppID)

		if err := f.h.ApproveLoan(c); err != nil {
			t.Fatalf("ApproveLoan: %v", err)
		}
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("wrong status is 409", func(t *testing.T) {
		l := pendingLoan(800)
		l.Status = loan.StatusDisbursed
		f := newLoanFixture(l, standardPolicy())
		c, rec := loanCtx(e, http.MethodPost, `{}`, testAppID)

		if err := f.h.ApproveLoan(c); err != nil {
			t.Fatalf("ApproveLoan: %v", err)
		}
		if rec.Code != http.StatusConflict {
			t.Errorf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
	})
}

func TestRejectLoan(t *testing.T) {
	e := newEcho()

	t.Run("happy path", func(t *testing.T) {
		f := newLoanFixture(pendingLoan(400), standardPolicy())
		c, rec := loanCtx(e, http.MethodPost, `{"reason": "income not verifiable"}`, testAppID)

		if err := f.h.RejectLoan(c); err != nil {
			t.Fatalf("RejectLoan: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
		var dec approval.Decision
		decodeBody(t, rec, &dec)
		if dec.Status != loan.StatusRejected {
			t.Errorf("decision = %+v", dec)
		}
	})

	t.Run("missing reason fails validation", func(t *testing.T) {
		f := newLoanFixture(pendingLoan(400), standardPolicy())
		c, rec := loanCtx(e, http.MethodPost, `{}`, testAppID)

		if err := f.h.RejectLoan(c); err != nil {
			t.Fatalf("RejectLoan: %v", err)
		}
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("code = %d", rec.Code)
		}
		var resp ErrorResponse
		decodeBody(t, rec, &resp)
		if !containsFieldMsg(resp.Details, "Reason", "required") {
			t.Errorf("details = %+v", resp.Details)
		}
	})
}

func TestDisburseLoan(t *testing.T) {
	e := newEcho()

	t.Run("happy path generates schedule", func(t *testing.T) {
		l := pendingLoan(800)
		l.Status = loan.StatusApproved
		l.ApprovedAmount = decimal.NewFromInt(100000)
		l.InterestRate = 12.0
		f := newLoanFixture(l, standardPolicy())

		var batch []schedule.Instalment
		f.instalments.CreateBatchFn = func(ctx context.Context, rows []schedule.Instalment) error {
			batch = rows
			return nil
		}

		c, rec := loanCtx(e, http.MethodPost, `{"success": true, "transaction_id": "MPESA-001"}`, testAppID)
		if err := f.h.DisburseLoan(c); err != nil {
			t.Fatalf("DisburseLoan: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
		if l.Status != loan.StatusDisbursed {
			t.Errorf("loan status = %s", l.Status)
		}
		if len(batch) != 12 {
			t.Errorf("instalments generated = %d, want 12", len(batch))
		}
	})

	t.Run("already disbursed is 409", func(t *testing.T) {
		l := pendingLoan(800)
		l.Status = loan.StatusDisbursed
		f := newLoanFixture(l, standardPolicy())

		c, rec := loanCtx(e, http.MethodPost, `{"success": true}`, testAppID)
		if err := f.h.DisburseLoan(c); err != nil {
			t.Fatalf("DisburseLoan: %v", err)
		}
		if rec.Code != http.StatusConflict {
			t.Errorf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
	})
}

func TestGetLoan(t *testing.T) {
	e := newEcho()

	t.Run("happy path", func(t *testing.T) {
		f := newLoanFixture(pendingLoan(700), nil)
		c, rec := loanCtx(e, http.MethodGet, "", testAppID)

		if err := f.h.GetLoan(c); err != nil {
			t.Fatalf("GetLoan: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d", rec.Code)
		}
		var got loan.Application
		decodeBody(t, rec, &got)
		if got.ApplicationID != testAppID {
			t.Errorf("loan = %+v", got)
		}
	})

	t.Run("unknown loan is 404", func(t *testing.T) {
		f := newLoanFixture(nil, nil)
		c, rec := loanCtx(e, http.MethodGet, "", testAppID)

		if err := f.h.GetLoan(c); err != nil {
			t.Fatalf("GetLoan: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %d", rec.Code)
		}
	})
}

func TestGetSchedule(t *testing.T) {
	e := newEcho()
	l := pendingLoan(800)
	l.Status = loan.StatusDisbursed
	f := newLoanFixture(l, nil)

	f.schedules.GetCurrentByLoanFn = func(ctx context.Context, loanID uint64) (*schedule.RepaymentSchedule, error) {
		return &schedule.RepaymentSchedule{
			ID: 1, LoanID: loanID, IsCurrent: true,
			TotalInstalments: 12,
			MonthlyPayment:   decimal.RequireFromString("8884.88"),
		}, nil
	}
	f.instalments.ListByLoanFn = func(ctx context.Context, loanID uint64) ([]schedule.Instalment, error) {
		return []schedule.Instalment{
			{LoanID: loanID, PaymentNumber: 1, DueDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), AmountDue: decimal.RequireFromString("8884.88")},
		}, nil
	}

	c, rec := loanCtx(e, http.MethodGet, "", testAppID)
	if err := f.h.GetSchedule(c); err != nil {
		t.Fatalf("GetSchedule: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Schedule    schedule.RepaymentSchedule `json:"schedule"`
		Instalments []schedule.Instalment      `json:"instalments"`
	}
	decodeBody(t, rec, &body)
	if body.Schedule.TotalInstalments != 12 || len(body.Instalments) != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestGetSchedule_NoCurrentPlan(t *testing.T) {
	e := newEcho()
	f := newLoanFixture(pendingLoan(800), nil)

	c, rec := loanCtx(e, http.MethodGet, "", testAppID)
	if err := f.h.GetSchedule(c); err != nil {
		t.Fatalf("GetSchedule: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestGetAuditTrail(t *testing.T) {
	e := newEcho()
	f := newLoanFixture(pendingLoan(800), nil)
	f.trail.Records = []audit.Record{
		{LoanID: 42, Action: audit.ActionStatusChange},
		{LoanID: 42, Action: audit.ActionRepayment},
		{LoanID: 99, Action: audit.ActionDisbursement},
	}

	c, rec := loanCtx(e, http.MethodGet, "", testAppID)
	if err := f.h.GetAuditTrail(c); err != nil {
		t.Fatalf("GetAuditTrail: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		ApplicationID string         `json:"application_id"`
		Records       []audit.Record `json:"records"`
	}
	decodeBody(t, rec, &body)
	if body.ApplicationID != testAppID || len(body.Records) != 2 {
		t.Errorf("body = %+v", body)
	}
}

func TestBulkEvaluate(t *testing.T) {
	e := newEcho()

	t.Run("invalid bank id", func(t *testing.T) {
		f := newLoanFixture(nil, nil)
		c, rec := jsonCtx(e, http.MethodGet, "/", "")
		c.SetParamNames("bank_id")
		c.SetParamValues("BANK-1")

		if err := f.h.BulkEvaluate(c); err != nil {
			t.Fatalf("BulkEvaluate: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %d", rec.Code)
		}
	})

	t.Run("triage buckets", func(t *testing.T) {
		f := newLoanFixture(nil, nil)
		f.loans.ListByBankAndStatusFn = func(ctx context.Context, bankID string, st loan.Status) ([]loan.Application, error) {
			return []loan.Application{
				*pendingLoan(250),
				*pendingLoan(750),
				*pendingLoan(500),
			}, nil
		}
		c, rec := jsonCtx(e, http.MethodGet, "/", "")
		c.SetParamNames("bank_id")
		c.SetParamValues(testBankID)

		if err := f.h.BulkEvaluate(c); err != nil {
			t.Fatalf("BulkEvaluate: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
		var res approval.BulkResult
		decodeBody(t, rec, &res)
		if res.TotalPending != 3 || res.AutoRejectable != 1 || res.AutoApprovable != 1 || res.ManualReview != 1 {
			t.Errorf("result = %+v", res)
		}
	})
}
