package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentEvent is the inbound webhook payload contract: the payment gateway's
// view of one settled transaction. LoanReference must equal a loan's
// application id. Events may arrive unordered and duplicated.
type PaymentEvent struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	LoanReference string          `json:"loan_reference"`
	PayerMSISDN   string          `json:"payer_msisdn"`
	Timestamp     time.Time       `json:"timestamp"`
}

// PaymentResult is a structured outcome: business rejections (unknown loan,
// duplicate transaction, wrong status) come back here with Success=false
// rather than as errors, so the transport layer can park the event for manual
// reconciliation instead of retrying.
type PaymentResult struct {
	Success         bool            `json:"success"`
	Message         string          `json:"message"`
	LoanReference   string          `json:"loan_reference"`
	PaymentNumber   int             `json:"payment_number,omitempty"`
	AmountProcessed decimal.Decimal `json:"amount_processed"`
	LoanRepaid      bool            `json:"loan_repaid"`
}

// DisbursementResult is the contract produced by the external payment
// initiation collaborator; the engine only consumes its outcome.
type DisbursementResult struct {
	Success       bool    `json:"success"`
	TransactionID *string `json:"transaction_id"`
	Message       string  `json:"message"`
}
