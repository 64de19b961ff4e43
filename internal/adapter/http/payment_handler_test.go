package http

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"croplend/internal/domain/loan"
	"croplend/internal/domain/schedule"
	"croplend/internal/domain/uow"
	"croplend/internal/testutil/auditmock"
	"croplend/internal/testutil/loanmock"
	"croplend/internal/testutil/schedulemock"
	"croplend/internal/testutil/uowmock"
	"croplend/internal/usecase/payment"
	"croplend/internal/usecase/scheduling"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// newPaymentFixture wires a disbursed loan with one unpaid instalment of
// 8884.88 behind the webhook handler.
func newPaymentFixture(l *loan.Application) (*PaymentHandler, *schedulemock.InstalmentRepo) {
	loans := &loanmock.Repo{
		GetByApplicationIDForUpdateFn: func(ctx context.Context, appID string) (*loan.Application, error) {
			if l == nil || appID != l.ApplicationID {
				return nil, gorm.ErrRecordNotFound
			}
			return l, nil
		},
	}
	instalments := &schedulemock.InstalmentRepo{
		ListUnpaidByLoanFn: func(ctx context.Context, loanID uint64) ([]schedule.Instalment, error) {
			return []schedule.Instalment{{
				LoanID:        loanID,
				PaymentNumber: 1,
				DueDate:       time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
				AmountDue:     decimal.RequireFromString("8884.88"),
				AmountPaid:    decimal.Zero,
			}}, nil
		},
	}
	repos := uow.Repos{
		Loans:       loans,
		Schedules:   &schedulemock.ScheduleRepo{},
		Instalments: instalments,
		Audit:       &auditmock.Recorder{},
	}
	tx := uowmock.Passthrough(repos)
	uc := payment.NewUsecase(tx, scheduling.NewUsecase(tx))
	return NewPaymentHandler(uc), instalments
}

func disbursedLoan() *loan.Application {
	return &loan.Application{
		ID:             7,
		ApplicationID:  testAppID,
		BankID:         testBankID,
		ApprovedAmount: decimal.NewFromInt(100000),
		InterestRate:   12.0,
		TermMonths:     12,
		Status:         loan.StatusDisbursed,
	}
}

func TestWebhook_HappyPath(t *testing.T) {
	e := newEcho()
	h, instalments := newPaymentFixture(disbursedLoan())

	var saved *schedule.Instalment
	instalments.SaveFn = func(ctx context.Context, i *schedule.Instalment) error {
		saved = i
		return nil
	}

	body := `{"transaction_id": "MPESA-900", "amount": "8884.88", "loan_reference": "` + testAppID + `", "payer_msisdn": "+254700000001", "timestamp": "2026-06-10T12:00:00Z"}`
	c, rec := jsonCtx(e, http.MethodPost, "/payments/webhook", body)
	if err := h.Webhook(c); err != nil {
		t.Fatalf("Webhook: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res payment.PaymentResult
	decodeBody(t, rec, &res)
	if !res.Success || res.PaymentNumber != 1 {
		t.Errorf("result = %+v", res)
	}
	if saved == nil || !saved.IsPaid {
		t.Errorf("instalment not stamped: %+v", saved)
	}
}

func TestWebhook_MissingFields(t *testing.T) {
	e := newEcho()
	h, _ := newPaymentFixture(disbursedLoan())

	c, rec := jsonCtx(e, http.MethodPost, "/payments/webhook", `{"amount": "100.00"}`)
	if err := h.Webhook(c); err != nil {
		t.Fatalf("Webhook: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("code = %d", rec.Code)
	}
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if !containsFieldMsg(resp.Details, "TransactionID", "required") ||
		!containsFieldMsg(resp.Details, "LoanReference", "required") {
		t.Errorf("details = %+v", resp.Details)
	}
}

func TestWebhook_BadAmount(t *testing.T) {
	e := newEcho()
	h, _ := newPaymentFixture(disbursedLoan())

	body := `{"transaction_id": "TX-1", "amount": "12.x", "loan_reference": "` + testAppID + `"}`
	c, rec := jsonCtx(e, http.MethodPost, "/payments/webhook", body)
	if err := h.Webhook(c); err != nil {
		t.Fatalf("Webhook: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("code = %d", rec.Code)
	}
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if !containsFieldMsg(resp.Details, "amount", "decimal") {
		t.Errorf("details = %+v", resp.Details)
	}
}

func TestWebhook_BadTimestamp(t *testing.T) {
	e := newEcho()
	h, _ := newPaymentFixture(disbursedLoan())

	body := `{"transaction_id": "TX-1", "amount": "100.00", "loan_reference": "` + testAppID + `", "timestamp": "yesterday"}`
	c, rec := jsonCtx(e, http.MethodPost, "/payments/webhook", body)
	if err := h.Webhook(c); err != nil {
		t.Fatalf("Webhook: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestWebhook_MalformedJSON(t *testing.T) {
	e := newEcho()
	h, _ := newPaymentFixture(disbursedLoan())

	c, rec := jsonCtx(e, http.MethodPost, "/payments/webhook", `{broken`)
	if err := h.Webhook(c); err != nil {
		t.Fatalf("Webhook: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %d", rec.Code)
	}
}

// Unknown loans come back 200 with success=false so the gateway parks the
// event instead of retrying it.
func TestWebhook_UnknownLoanSoftRejects(t *testing.T) {
	e := newEcho()
	h, _ := newPaymentFixture(nil)

	body := `{"transaction_id": "TX-1", "amount": "100.00", "loan_reference": "` + testAppID + `"}`
	c, rec := jsonCtx(e, http.MethodPost, "/payments/webhook", body)
	if err := h.Webhook(c); err != nil {
		t.Fatalf("Webhook: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res payment.PaymentResult
	decodeBody(t, rec, &res)
	if res.Success {
		t.Fatalf("expected soft rejection, got %+v", res)
	}
	if !strings.Contains(res.Message, "not found") {
		t.Errorf("message = %q", res.Message)
	}
}
