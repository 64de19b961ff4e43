package http

import (
	"net/http"
	"time"

	"croplend/internal/usecase/payment"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct{ uc *payment.Usecase }

func NewPaymentHandler(uc *payment.Usecase) *PaymentHandler { return &PaymentHandler{uc: uc} }

type paymentWebhookReq struct {
	TransactionID string  `json:"transaction_id" validate:"required"`
	Amount        string  `json:"amount"         validate:"required"`
	LoanReference string  `json:"loan_reference" validate:"required"`
	PayerMSISDN   string  `json:"payer_msisdn"`
	Timestamp     *string `json:"timestamp"`
}

// Webhook ingests a settled-payment callback. Business rejections (unknown
// loan, duplicate transaction, wrong status) come back 200 with
// success=false so the gateway does not retry them.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	var req paymentWebhookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: []FieldError{{Field: "amount", Message: "must be a decimal string"}},
		})
	}
	ts := time.Now().UTC()
	if req.Timestamp != nil {
		parsed, err := time.Parse(time.RFC3339, *req.Timestamp)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "validation failed",
				Details: []FieldError{{Field: "timestamp", Message: "must be RFC3339"}},
			})
		}
		ts = parsed.UTC()
	}

	res, err := h.uc.ApplyPayment(c.Request().Context(), payment.PaymentEvent{
		TransactionID: req.TransactionID,
		Amount:        amount,
		LoanReference: req.LoanReference,
		PayerMSISDN:   req.PayerMSISDN,
		Timestamp:     ts,
	})
	if err != nil {
		return c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, res)
}
